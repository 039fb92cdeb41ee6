package discord

import (
	"context"
	"fmt"
	"runtime/debug"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/oklog/ulid/v2"

	"github.com/hpungsan/warden/internal/errors"
	"github.com/hpungsan/warden/internal/logger"
	"github.com/hpungsan/warden/internal/submission"
	"github.com/hpungsan/warden/internal/workflow"
)

// HandlerTimeout bounds one gateway event, retries included.
const HandlerTimeout = 2 * time.Minute

// Bot routes gateway events for one guild into the workflow controller.
// discordgo runs each handler on its own goroutine, so events are handled
// concurrently; the controller serializes work per card.
type Bot struct {
	session *discordgo.Session
	ctl     *workflow.Controller
	guildID string
	log     *logger.Logger
}

func NewBot(s *discordgo.Session, ctl *workflow.Controller, guildID int64, log *logger.Logger) *Bot {
	if log == nil {
		log = logger.Nop()
	}
	return &Bot{session: s, ctl: ctl, guildID: snowflake(guildID), log: log}
}

// Register installs the event handlers and returns a func that removes them.
func (b *Bot) Register() func() {
	removers := []func(){
		b.session.AddHandler(b.onMessageCreate),
		b.session.AddHandler(b.onInteractionCreate),
		b.session.AddHandler(b.onMemberRemove),
	}
	return func() {
		for _, remove := range removers {
			remove()
		}
	}
}

// Run opens the gateway and blocks until ctx is done.
func (b *Bot) Run(ctx context.Context) error {
	remove := b.Register()
	defer remove()

	if err := b.session.Open(); err != nil {
		return fmt.Errorf("open gateway: %w", err)
	}
	b.log.Info("gateway connected", "guild_id", b.guildID)

	<-ctx.Done()

	if err := b.session.Close(); err != nil {
		b.log.Warn("gateway close failed", "error", err)
	}
	b.log.Info("gateway closed")
	return nil
}

// dispatch runs fn with a per-event logger and deadline. A panic is logged
// and swallowed so one bad event cannot take the gateway down.
func (b *Bot) dispatch(kind string, fn func(ctx context.Context, log *logger.Logger)) {
	log := b.log.With("event_id", ulid.Make().String(), "event", kind)
	defer func() {
		if r := recover(); r != nil {
			log.Error("handler panic", "panic", r, "stack", string(debug.Stack()))
		}
	}()

	ctx, cancel := context.WithTimeout(context.Background(), HandlerTimeout)
	defer cancel()
	fn(ctx, log)
}

func (b *Bot) onMessageCreate(_ *discordgo.Session, m *discordgo.MessageCreate) {
	if m.Message == nil || m.GuildID != b.guildID {
		return
	}
	ev, err := submissionFromMessage(m.Message)
	if err != nil {
		return
	}

	b.dispatch("message_create", func(ctx context.Context, log *logger.Logger) {
		res, err := b.ctl.OnSubmission(ctx, ev)
		if err != nil {
			log.Error("submission failed", "message_id", ev.MessageID, "error", err)
			return
		}
		if res.Outcome != workflow.IntakeIgnored {
			log.Debug("submission handled", "message_id", ev.MessageID, "outcome", res.Outcome.String())
		}
	})
}

func (b *Bot) onInteractionCreate(s *discordgo.Session, i *discordgo.InteractionCreate) {
	if i.Interaction == nil || i.GuildID != b.guildID || i.Type != discordgo.InteractionMessageComponent {
		return
	}

	b.dispatch("interaction_create", func(ctx context.Context, log *logger.Logger) {
		ev, err := actionFromInteraction(i.Interaction)
		if err != nil {
			log.Warn("unrecognized interaction", "error", err)
			err = s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
				Type: discordgo.InteractionResponseChannelMessageWithSource,
				Data: &discordgo.InteractionResponseData{
					Flags:  discordgo.MessageFlagsEphemeral,
					Embeds: []*discordgo.MessageEmbed{errorEmbed("This control is not recognized")},
				},
			})
			if err != nil {
				log.Warn("interaction response failed", "error", err)
			}
			return
		}

		// Acknowledge first; the directory calls can outlast the interaction window.
		err = s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
			Type: discordgo.InteractionResponseDeferredChannelMessageWithSource,
			Data: &discordgo.InteractionResponseData{Flags: discordgo.MessageFlagsEphemeral},
		})
		if err != nil {
			log.Error("interaction ack failed", "card_id", ev.CardID, "error", err)
			return
		}

		var embed *discordgo.MessageEmbed
		res, err := b.ctl.OnReviewAction(ctx, ev)
		if err != nil {
			log.Warn("review action failed", "card_id", ev.CardID, "action", ev.Action.String(), "error", err)
			embed = errorEmbed(moderatorMessage(err))
		} else {
			embed = resultEmbed(res)
		}

		embeds := []*discordgo.MessageEmbed{embed}
		if _, err := s.InteractionResponseEdit(i.Interaction, &discordgo.WebhookEdit{Embeds: &embeds}); err != nil {
			log.Warn("interaction response failed", "card_id", ev.CardID, "error", err)
		}
	})
}

func (b *Bot) onMemberRemove(_ *discordgo.Session, m *discordgo.GuildMemberRemove) {
	if m.Member == nil || m.User == nil || m.GuildID != b.guildID {
		return
	}
	userID, err := parseSnowflake(m.User.ID)
	if err != nil {
		return
	}

	b.dispatch("guild_member_remove", func(ctx context.Context, log *logger.Logger) {
		res, err := b.ctl.OnMemberDeparture(ctx, userID)
		if err != nil {
			log.Error("departure reconciliation failed", "user_id", userID, "error", err)
			return
		}
		if res.Reconciled {
			log.Debug("departure reconciled", "user_id", userID, "card_id", res.CardID,
				"card_update_failed", res.CardUpdateFailed)
		}
	})
}

// submissionFromMessage converts a gateway message into a submission event.
func submissionFromMessage(m *discordgo.Message) (workflow.SubmissionEvent, error) {
	if m.Author == nil {
		return workflow.SubmissionEvent{}, fmt.Errorf("message %s has no author", m.ID)
	}
	messageID, err := parseSnowflake(m.ID)
	if err != nil {
		return workflow.SubmissionEvent{}, err
	}
	channelID, err := parseSnowflake(m.ChannelID)
	if err != nil {
		return workflow.SubmissionEvent{}, err
	}
	authorID, err := parseSnowflake(m.Author.ID)
	if err != nil {
		return workflow.SubmissionEvent{}, err
	}

	ev := workflow.SubmissionEvent{
		MessageID: messageID,
		ChannelID: channelID,
		AuthorID:  authorID,
	}
	for _, e := range m.Embeds {
		if e == nil {
			continue
		}
		fields := make([]submission.Field, 0, len(e.Fields))
		for _, f := range e.Fields {
			if f == nil {
				continue
			}
			fields = append(fields, submission.Field{Name: f.Name, Value: f.Value})
		}
		ev.Embeds = append(ev.Embeds, fields)
	}
	return ev, nil
}

// actionFromInteraction converts a button press into an action event.
func actionFromInteraction(i *discordgo.Interaction) (workflow.ActionEvent, error) {
	if i.Type != discordgo.InteractionMessageComponent {
		return workflow.ActionEvent{}, fmt.Errorf("interaction %s is not a component press", i.ID)
	}
	if i.Message == nil {
		return workflow.ActionEvent{}, fmt.Errorf("interaction %s has no message", i.ID)
	}
	customID := i.MessageComponentData().CustomID
	action, ok := actionFromCustomID(customID)
	if !ok {
		return workflow.ActionEvent{}, fmt.Errorf("unknown custom id %q", customID)
	}

	cardID, err := parseSnowflake(i.Message.ID)
	if err != nil {
		return workflow.ActionEvent{}, err
	}
	channelID, err := parseSnowflake(i.ChannelID)
	if err != nil {
		return workflow.ActionEvent{}, err
	}

	var moderator *discordgo.User
	switch {
	case i.Member != nil && i.Member.User != nil:
		moderator = i.Member.User
	case i.User != nil:
		moderator = i.User
	default:
		return workflow.ActionEvent{}, fmt.Errorf("interaction %s has no user", i.ID)
	}
	moderatorID, err := parseSnowflake(moderator.ID)
	if err != nil {
		return workflow.ActionEvent{}, err
	}

	return workflow.ActionEvent{
		CardID:      cardID,
		ChannelID:   channelID,
		ModeratorID: moderatorID,
		Action:      action,
	}, nil
}

// moderatorMessage maps a workflow error to the text shown to the moderator.
func moderatorMessage(err error) string {
	switch {
	case errors.Is(err, errors.ErrRecordNotFound):
		return "Could not find message in database"
	case errors.Is(err, errors.ErrAlreadyResolved):
		return "This submission has already been handled"
	case errors.Is(err, errors.ErrDirectoryMutationFailed):
		return "The action could not be applied to the user. The card is still open, try again."
	}
	return "Something went wrong handling this action"
}
