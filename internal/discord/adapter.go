package discord

import (
	"context"
	"fmt"

	"github.com/bwmarrin/discordgo"

	"github.com/hpungsan/warden/internal/decision"
	"github.com/hpungsan/warden/internal/retry"
	"github.com/hpungsan/warden/internal/workflow"
)

// Adapter implements workflow.Directory and workflow.Cards for one guild.
// Every REST call is retried under the configured policy.
type Adapter struct {
	rest    rest
	guildID string
	policy  retry.Policy
}

var (
	_ workflow.Directory = (*Adapter)(nil)
	_ workflow.Cards     = (*Adapter)(nil)
)

// NewAdapter binds s to guildID. A policy without a Transient classifier
// retries only rate limits, server errors, and network failures.
func NewAdapter(s *discordgo.Session, guildID int64, p retry.Policy) *Adapter {
	return newAdapter(sessionREST{s: s}, guildID, p)
}

func newAdapter(r rest, guildID int64, p retry.Policy) *Adapter {
	if p.Transient == nil {
		p.Transient = transient
	}
	return &Adapter{rest: r, guildID: snowflake(guildID), policy: p}
}

// SearchMembers returns guild members whose name starts with query.
func (a *Adapter) SearchMembers(ctx context.Context, query string, limit int) ([]workflow.Member, error) {
	found, err := retry.Value(ctx, a.policy, func(ctx context.Context) ([]*discordgo.Member, error) {
		return a.rest.searchMembers(a.guildID, query, limit)
	})
	if err != nil {
		return nil, fmt.Errorf("search members %q: %w", query, err)
	}

	members := make([]workflow.Member, 0, len(found))
	for _, m := range found {
		if m == nil || m.User == nil {
			continue
		}
		id, err := parseSnowflake(m.User.ID)
		if err != nil {
			continue
		}
		members = append(members, workflow.Member{
			ID:      id,
			Tag:     userTag(m.User),
			RoleIDs: m.Roles,
		})
	}
	return members, nil
}

func (a *Adapter) GrantRole(ctx context.Context, userID int64, roleID string) error {
	return retry.Do(ctx, a.policy, func(ctx context.Context) error {
		return a.rest.addRole(a.guildID, snowflake(userID), roleID)
	})
}

func (a *Adapter) Ban(ctx context.Context, userID int64, reason string) error {
	return retry.Do(ctx, a.policy, func(ctx context.Context) error {
		return a.rest.ban(a.guildID, snowflake(userID), reason)
	})
}

func (a *Adapter) Kick(ctx context.Context, userID int64, reason string) error {
	return retry.Do(ctx, a.policy, func(ctx context.Context) error {
		return a.rest.kick(a.guildID, snowflake(userID), reason)
	})
}

// PublishReview posts a review card and returns its message id.
func (a *Adapter) PublishReview(ctx context.Context, channelID int64, card workflow.ReviewCard) (int64, error) {
	msg := reviewMessage(card)
	sent, err := retry.Value(ctx, a.policy, func(ctx context.Context) (*discordgo.Message, error) {
		return a.rest.send(snowflake(channelID), msg)
	})
	if err != nil {
		return 0, fmt.Errorf("publish review card: %w", err)
	}
	return parseSnowflake(sent.ID)
}

func (a *Adapter) PublishNotice(ctx context.Context, channelID int64, n workflow.Notice) error {
	msg := noticeMessage(n)
	_, err := retry.Value(ctx, a.policy, func(ctx context.Context) (*discordgo.Message, error) {
		return a.rest.send(snowflake(channelID), msg)
	})
	if err != nil {
		return fmt.Errorf("publish notice: %w", err)
	}
	return nil
}

// SetCardState swaps a card's actions for a disabled outcome button.
// The embed is left untouched.
func (a *Adapter) SetCardState(ctx context.Context, channelID, cardID int64, state decision.Status) error {
	components := terminalComponents(state)
	edit := discordgo.NewMessageEdit(snowflake(channelID), snowflake(cardID))
	edit.Components = &components
	_, err := retry.Value(ctx, a.policy, func(ctx context.Context) (*discordgo.Message, error) {
		return a.rest.edit(edit)
	})
	if err != nil {
		return fmt.Errorf("set card %d state: %w", cardID, err)
	}
	return nil
}

func (a *Adapter) DeleteMessage(ctx context.Context, channelID, messageID int64) error {
	return retry.Do(ctx, a.policy, func(ctx context.Context) error {
		return a.rest.deleteMessage(snowflake(channelID), snowflake(messageID))
	})
}
