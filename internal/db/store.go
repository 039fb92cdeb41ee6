package db

import (
	"context"
	"database/sql"

	"github.com/hpungsan/warden/internal/decision"
)

// RecordStore exposes the decision record queries over a single database handle.
type RecordStore struct {
	db *sql.DB
}

// NewRecordStore wraps an initialized database.
func NewRecordStore(database *sql.DB) *RecordStore {
	return &RecordStore{db: database}
}

func (s *RecordStore) Put(ctx context.Context, r *decision.Record) error {
	return Insert(ctx, s.db, r)
}

func (s *RecordStore) GetByCardID(ctx context.Context, cardID int64) (*decision.Record, error) {
	return GetByCardID(ctx, s.db, cardID)
}

func (s *RecordStore) GetBySubmitterID(ctx context.Context, userID int64) (*decision.Record, error) {
	return GetBySubmitterID(ctx, s.db, userID)
}

func (s *RecordStore) Resolve(ctx context.Context, cardID int64, to decision.Status, resolvedBy *int64) error {
	return Resolve(ctx, s.db, cardID, to, resolvedBy)
}

func (s *RecordStore) Reopen(ctx context.Context, cardID int64, from decision.Status) error {
	return Reopen(ctx, s.db, cardID, from)
}
