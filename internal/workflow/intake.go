package workflow

import (
	"context"
	"fmt"
	"strings"

	"github.com/hpungsan/warden/internal/decision"
	"github.com/hpungsan/warden/internal/errors"
	"github.com/hpungsan/warden/internal/roles"
	"github.com/hpungsan/warden/internal/submission"
)

// SubmissionEvent is a new message in the intake channel.
type SubmissionEvent struct {
	MessageID int64
	ChannelID int64
	AuthorID  int64

	// Embeds holds the fields of each rich-content block on the message.
	Embeds [][]submission.Field
}

// IntakeOutcome says how a submission event was handled.
type IntakeOutcome int

const (
	IntakeIgnored IntakeOutcome = iota
	IntakeQueued
	IntakeUnmatched
	IntakeMalformed
)

func (o IntakeOutcome) String() string {
	switch o {
	case IntakeIgnored:
		return "ignored"
	case IntakeQueued:
		return "queued"
	case IntakeUnmatched:
		return "unmatched"
	case IntakeMalformed:
		return "malformed"
	}
	return "unknown"
}

// IntakeResult describes the effect of OnSubmission.
type IntakeResult struct {
	Outcome     IntakeOutcome
	CardID      int64
	SubmitterID int64
	Reason      string
}

// OnSubmission turns an upstream submission into a pending review card.
//
// Messages from anyone but the upstream author are ignored. A submission that
// does not parse gets a malformed notice and is left in place for inspection.
// A submission whose claimed identity has no unverified member match gets an
// unmatched notice and is deleted. Otherwise a review card is published, its
// decision record stored, and the raw submission deleted.
//
// Publish and persist are not atomic: if Put fails the card is orphaned and a
// later action on it fails with RECORD_NOT_FOUND.
func (c *Controller) OnSubmission(ctx context.Context, ev SubmissionEvent) (*IntakeResult, error) {
	if ev.AuthorID != c.opts.UpstreamAuthorID {
		return &IntakeResult{Outcome: IntakeIgnored}, nil
	}

	log := c.log.With("message_id", ev.MessageID, "channel_id", ev.ChannelID)

	if len(ev.Embeds) == 0 {
		return c.rejectMalformed(ctx, ev, errors.NewMalformedSubmission("submission carries no embed"))
	}

	answers, err := submission.Parse(ev.Embeds[0])
	if err != nil {
		return c.rejectMalformed(ctx, ev, err)
	}

	member, err := c.matchSubmitter(ctx, answers.ClaimedIdentity)
	if errors.Is(err, errors.ErrSubmitterNotFound) {
		log.Info("submitter not found", "claimed_identity", answers.ClaimedIdentity)
		notice := Notice{Kind: NoticeUnmatched, Subject: answers.ClaimedIdentity}
		if err := c.cards.PublishNotice(ctx, ev.ChannelID, notice); err != nil {
			return nil, err
		}
		if err := c.cards.DeleteMessage(ctx, ev.ChannelID, ev.MessageID); err != nil {
			log.Warn("delete unmatched submission failed", "error", err)
		}
		return &IntakeResult{Outcome: IntakeUnmatched, Reason: err.Error()}, nil
	}
	if err != nil {
		return nil, err
	}

	cardID, err := c.cards.PublishReview(ctx, ev.ChannelID, ReviewCard{
		Fields:       ev.Embeds[0],
		SubmitterID:  member.ID,
		SubmitterTag: member.Tag,
	})
	if err != nil {
		return nil, err
	}

	rec := decision.New(cardID, ev.ChannelID, member.ID, answers)
	if err := c.store.Put(ctx, rec); err != nil {
		log.Error("review card published without a decision record", "card_id", cardID, "error", err)
		return nil, err
	}

	if err := c.cards.DeleteMessage(ctx, ev.ChannelID, ev.MessageID); err != nil {
		log.Warn("delete processed submission failed", "card_id", cardID, "error", err)
	}

	log.Info("submission queued for review", "card_id", cardID, "submitter_id", member.ID)
	return &IntakeResult{Outcome: IntakeQueued, CardID: cardID, SubmitterID: member.ID}, nil
}

// rejectMalformed reports an unparseable submission and keeps the raw message.
func (c *Controller) rejectMalformed(ctx context.Context, ev SubmissionEvent, cause error) (*IntakeResult, error) {
	c.log.Warn("malformed submission", "message_id", ev.MessageID, "error", cause)

	notice := Notice{Kind: NoticeMalformed, Detail: cause.Error()}
	if err := c.cards.PublishNotice(ctx, ev.ChannelID, notice); err != nil {
		return nil, err
	}
	return &IntakeResult{Outcome: IntakeMalformed, Reason: cause.Error()}, nil
}

// matchSubmitter resolves the claimed identity under the configured policy.
// Only MatchExactTag exists: the first search result whose full tag equals the
// claimed identity and who does not yet hold the verified role.
func (c *Controller) matchSubmitter(ctx context.Context, claimed string) (*Member, error) {
	if c.opts.MatchPolicy != MatchExactTag {
		return nil, fmt.Errorf("unsupported match policy %q", c.opts.MatchPolicy)
	}
	members, err := c.dir.SearchMembers(ctx, searchQuery(claimed), c.opts.SearchLimit)
	if err != nil {
		return nil, err
	}

	verified := c.opts.Roles[roles.Verified]
	for _, m := range members {
		if m.Tag != claimed {
			continue
		}
		if verified != "" && m.HasRole(verified) {
			continue
		}
		return &m, nil
	}
	return nil, errors.NewSubmitterNotFound(claimed)
}

// searchQuery strips a legacy "#discriminator" suffix; member search matches
// on name prefixes only.
func searchQuery(tag string) string {
	if i := strings.LastIndex(tag, "#"); i > 0 {
		return tag[:i]
	}
	return tag
}
