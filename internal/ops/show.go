package ops

import (
	"context"
	"database/sql"

	"github.com/hpungsan/warden/internal/db"
)

// Show returns the record backing a review card.
func Show(ctx context.Context, database *sql.DB, cardID int64) (*RecordView, error) {
	r, err := db.GetByCardID(ctx, database, cardID)
	if err != nil {
		return nil, err
	}
	v := newRecordView(r)
	return &v, nil
}

// Lookup returns a member's most recent record.
func Lookup(ctx context.Context, database *sql.DB, userID int64) (*RecordView, error) {
	r, err := db.GetBySubmitterID(ctx, database, userID)
	if err != nil {
		return nil, err
	}
	v := newRecordView(r)
	return &v, nil
}
