package workflow

import (
	"context"
	"fmt"

	"github.com/hpungsan/warden/internal/decision"
	"github.com/hpungsan/warden/internal/errors"
	"github.com/hpungsan/warden/internal/roles"
)

// ActionEvent is a moderator pressing an action on a review card.
type ActionEvent struct {
	CardID      int64
	ChannelID   int64
	ModeratorID int64
	Action      Action
}

// ActionResult describes a completed transition.
type ActionResult struct {
	Action      Action
	Status      decision.Status
	SubmitterID int64

	// Granted and FailedRoles list platform role ids (approve only).
	Granted     []string
	FailedRoles []string

	// Unbound lists derived role kinds with no configured id.
	Unbound []roles.Role

	// CardUpdateFailed is set when the card could not be redrawn; the
	// transition itself is durable.
	CardUpdateFailed bool
}

// Partial reports whether an approval granted fewer roles than derived.
func (r *ActionResult) Partial() bool {
	return len(r.FailedRoles) > 0 || len(r.Unbound) > 0
}

// OnReviewAction applies a moderator decision to a pending review card.
//
// The card is claimed (pending -> terminal) before any directory mutation, so
// a second action on the same card fails with ALREADY_RESOLVED and mutates
// nothing. Approvals grant every derived role best-effort and never roll back.
// A ban or kick that fails reopens the card and returns
// DIRECTORY_MUTATION_FAILED so the moderator can try again.
func (c *Controller) OnReviewAction(ctx context.Context, ev ActionEvent) (*ActionResult, error) {
	to, ok := ev.Action.Outcome()
	if !ok {
		return nil, errors.NewInvalidRequest(fmt.Sprintf("unknown action %s", ev.Action))
	}

	unlock := c.locks.Lock(ev.CardID)
	defer unlock()

	log := c.log.With("card_id", ev.CardID, "action", ev.Action.String(), "moderator_id", ev.ModeratorID)

	rec, err := c.store.GetByCardID(ctx, ev.CardID)
	if err != nil {
		log.Warn("review action without record", "error", err)
		return nil, err
	}
	if rec.Status != decision.StatusPending {
		return nil, errors.NewAlreadyResolved(ev.CardID, string(rec.Status))
	}

	moderator := ev.ModeratorID
	if err := c.store.Resolve(ctx, ev.CardID, to, &moderator); err != nil {
		return nil, err
	}

	result := &ActionResult{Action: ev.Action, Status: to, SubmitterID: rec.SubmitterID}
	reason := fmt.Sprintf("intake review card %d", ev.CardID)

	switch ev.Action {
	case ActionApprove:
		c.grantRoles(ctx, rec, result)
	case ActionBan:
		err = c.dir.Ban(ctx, rec.SubmitterID, reason)
	case ActionKick:
		err = c.dir.Kick(ctx, rec.SubmitterID, reason)
	}
	if err != nil {
		// The claim must be released even when ctx expired mid-call.
		if reopenErr := c.store.Reopen(context.WithoutCancel(ctx), ev.CardID, to); reopenErr != nil {
			log.Error("reopen after failed directory call", "error", reopenErr)
		}
		log.Warn("directory mutation failed", "submitter_id", rec.SubmitterID, "error", err)
		return nil, errors.NewDirectoryMutationFailed(ev.Action.String(), rec.SubmitterID, err)
	}

	if err := c.cards.SetCardState(ctx, c.cardChannel(rec, ev.ChannelID), ev.CardID, to); err != nil {
		log.Warn("card state update failed", "error", err)
		result.CardUpdateFailed = true
	}

	log.Info("review card resolved", "status", string(to), "submitter_id", rec.SubmitterID,
		"granted", len(result.Granted), "failed", len(result.FailedRoles))
	return result, nil
}

// grantRoles grants each derived role, continuing past individual failures.
func (c *Controller) grantRoles(ctx context.Context, rec *decision.Record, result *ActionResult) {
	ids, unbound := c.opts.Roles.IDs(roles.Derive(rec))
	result.Unbound = unbound

	for _, id := range ids {
		if err := c.dir.GrantRole(ctx, rec.SubmitterID, id); err != nil {
			c.log.Warn("role grant failed", "submitter_id", rec.SubmitterID, "role_id", id, "error", err)
			result.FailedRoles = append(result.FailedRoles, id)
			continue
		}
		result.Granted = append(result.Granted, id)
	}
}
