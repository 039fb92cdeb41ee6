package workflow

import (
	"context"

	"github.com/hpungsan/warden/internal/decision"
	"github.com/hpungsan/warden/internal/errors"
)

// DepartureResult describes the effect of OnMemberDeparture.
type DepartureResult struct {
	CardID     int64
	Reconciled bool

	// CardUpdateFailed is set when the card could not be redrawn as left;
	// the stored status still moved to left.
	CardUpdateFailed bool
}

// OnMemberDeparture closes the pending review card of a member who left.
// Members without a record, and cards that already carry a moderator outcome,
// are left alone. The record itself is kept.
func (c *Controller) OnMemberDeparture(ctx context.Context, userID int64) (*DepartureResult, error) {
	rec, err := c.store.GetBySubmitterID(ctx, userID)
	if errors.Is(err, errors.ErrRecordNotFound) {
		return &DepartureResult{}, nil
	}
	if err != nil {
		return nil, err
	}

	unlock := c.locks.Lock(rec.CardID)
	defer unlock()

	result := &DepartureResult{CardID: rec.CardID}

	err = c.store.Resolve(ctx, rec.CardID, decision.StatusLeft, nil)
	if errors.Is(err, errors.ErrAlreadyResolved) {
		return result, nil
	}
	if err != nil {
		return nil, err
	}
	result.Reconciled = true

	if err := c.cards.SetCardState(ctx, c.cardChannel(rec, 0), rec.CardID, decision.StatusLeft); err != nil {
		c.log.Warn("card state update failed", "card_id", rec.CardID, "error", err)
		result.CardUpdateFailed = true
	}

	c.log.Info("pending card closed after departure", "card_id", rec.CardID, "submitter_id", userID)
	return result, nil
}
