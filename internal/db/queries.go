package db

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/hpungsan/warden/internal/decision"
	"github.com/hpungsan/warden/internal/errors"
	"github.com/hpungsan/warden/internal/submission"
)

const recordColumns = `
	message_id, channel_id, user_id, gender, is_female, is_18_plus, is_30_plus,
	diagnosis_status, status, created_at, resolved_at, resolved_by
`

// Insert stores a new decision record.
// Sets CreatedAt if unset. Returns DUPLICATE_KEY if the card already has a record.
func Insert(ctx context.Context, db *sql.DB, r *decision.Record) error {
	if r.CreatedAt == 0 {
		r.CreatedAt = time.Now().Unix()
	}
	if r.Status == "" {
		r.Status = decision.StatusPending
	}

	query := `
		INSERT INTO formanswers (` + recordColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, NULL, NULL)
	`

	_, err := db.ExecContext(ctx, query,
		r.CardID, r.ChannelID, r.SubmitterID, string(r.Gender),
		r.IsFemale, r.IsAdult, r.IsSenior,
		string(r.DiagnosisStatus), string(r.Status), r.CreatedAt,
	)
	if err != nil {
		if isUniqueConstraintError(err) {
			return errors.NewDuplicateKey(r.CardID)
		}
		return errors.NewInternal(err)
	}

	return nil
}

// isUniqueConstraintError checks if the error is a SQLite UNIQUE or PRIMARY KEY violation.
func isUniqueConstraintError(err error) bool {
	if err == nil {
		return false
	}
	// SQLite returns "UNIQUE constraint failed: ..." for both
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}

// GetByCardID retrieves the record backing a review card.
func GetByCardID(ctx context.Context, db *sql.DB, cardID int64) (*decision.Record, error) {
	query := `SELECT ` + recordColumns + ` FROM formanswers WHERE message_id = ?`

	r, err := scanRecord(db.QueryRowContext(ctx, query, cardID))
	if err == sql.ErrNoRows {
		return nil, errors.NewRecordNotFound("card_id", cardID)
	}
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	return r, nil
}

// GetBySubmitterID retrieves the most recently created record for a submitter.
func GetBySubmitterID(ctx context.Context, db *sql.DB, userID int64) (*decision.Record, error) {
	// Snowflake ids grow with time, so message_id breaks created_at ties
	query := `SELECT ` + recordColumns + ` FROM formanswers
		WHERE user_id = ?
		ORDER BY created_at DESC, message_id DESC
		LIMIT 1`

	r, err := scanRecord(db.QueryRowContext(ctx, query, userID))
	if err == sql.ErrNoRows {
		return nil, errors.NewRecordNotFound("user_id", userID)
	}
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	return r, nil
}

// Resolve moves a pending card to a terminal status.
// resolvedBy may be nil (departures have no acting moderator).
// Returns RECORD_NOT_FOUND if the card has no record and ALREADY_RESOLVED if
// it is no longer pending.
func Resolve(ctx context.Context, db *sql.DB, cardID int64, to decision.Status, resolvedBy *int64) error {
	if !to.Terminal() {
		return errors.NewInvalidRequest("resolve target must be a terminal status, got " + string(to))
	}

	now := time.Now().Unix()
	var by sql.NullInt64
	if resolvedBy != nil {
		by = sql.NullInt64{Int64: *resolvedBy, Valid: true}
	}

	result, err := db.ExecContext(ctx, `
		UPDATE formanswers
		SET status = ?, resolved_at = ?, resolved_by = ?
		WHERE message_id = ? AND status = ?
	`, string(to), now, by, cardID, string(decision.StatusPending))
	if err != nil {
		return errors.NewInternal(err)
	}

	return explainNoop(ctx, db, result, cardID)
}

// Reopen moves a card from the given terminal status back to pending.
// Only used to roll back a claim whose directory mutation failed.
func Reopen(ctx context.Context, db *sql.DB, cardID int64, from decision.Status) error {
	result, err := db.ExecContext(ctx, `
		UPDATE formanswers
		SET status = ?, resolved_at = NULL, resolved_by = NULL
		WHERE message_id = ? AND status = ?
	`, string(decision.StatusPending), cardID, string(from))
	if err != nil {
		return errors.NewInternal(err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return errors.NewInternal(err)
	}
	if rowsAffected == 0 {
		if _, err := GetByCardID(ctx, db, cardID); err != nil {
			return err
		}
		return errors.NewInvalidRequest("card is not " + string(from))
	}
	return nil
}

// explainNoop turns a zero-row status update into NOT_FOUND or ALREADY_RESOLVED.
func explainNoop(ctx context.Context, db *sql.DB, result sql.Result, cardID int64) error {
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return errors.NewInternal(err)
	}
	if rowsAffected > 0 {
		return nil
	}

	current, err := GetByCardID(ctx, db, cardID)
	if err != nil {
		return err
	}
	return errors.NewAlreadyResolved(cardID, string(current.Status))
}

// ListRecords returns records newest first, optionally filtered by status,
// plus the total count for the filter.
func ListRecords(ctx context.Context, db *sql.DB, status *decision.Status, limit, offset int) ([]decision.Record, int, error) {
	where := ""
	var args []any
	if status != nil {
		where = " WHERE status = ?"
		args = append(args, string(*status))
	}

	var total int
	if err := db.QueryRowContext(ctx, "SELECT COUNT(*) FROM formanswers"+where, args...).Scan(&total); err != nil {
		return nil, 0, errors.NewInternal(err)
	}

	query := `SELECT ` + recordColumns + ` FROM formanswers` + where + `
		ORDER BY created_at DESC, message_id DESC
		LIMIT ? OFFSET ?`

	rows, err := db.QueryContext(ctx, query, append(args, limit, offset)...)
	if err != nil {
		return nil, 0, errors.NewInternal(err)
	}
	defer rows.Close()

	var out []decision.Record
	for rows.Next() {
		r, err := scanRecord(rows)
		if err != nil {
			return nil, 0, errors.NewInternal(err)
		}
		out = append(out, *r)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, errors.NewInternal(err)
	}

	return out, total, nil
}

// PurgeResolved permanently deletes resolved records.
// If olderThanDays is set, only records resolved before (now - N days) are removed.
// Pending records are never purged.
func PurgeResolved(ctx context.Context, db *sql.DB, olderThanDays *int) (int, error) {
	query := `DELETE FROM formanswers WHERE status != ? AND resolved_at IS NOT NULL`
	args := []any{string(decision.StatusPending)}

	if olderThanDays != nil {
		cutoff := time.Now().Unix() - int64(*olderThanDays)*24*60*60
		query += " AND resolved_at < ?"
		args = append(args, cutoff)
	}

	result, err := db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, errors.NewInternal(err)
	}

	n, err := result.RowsAffected()
	if err != nil {
		return 0, errors.NewInternal(err)
	}
	return int(n), nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

// scanRecord scans a single row into a Record.
func scanRecord(row rowScanner) (*decision.Record, error) {
	var (
		r          decision.Record
		gender     string
		diagnosis  sql.NullString
		status     string
		resolvedAt sql.NullInt64
		resolvedBy sql.NullInt64
	)

	err := row.Scan(
		&r.CardID, &r.ChannelID, &r.SubmitterID, &gender,
		&r.IsFemale, &r.IsAdult, &r.IsSenior,
		&diagnosis, &status, &r.CreatedAt, &resolvedAt, &resolvedBy,
	)
	if err != nil {
		return nil, err
	}

	r.Gender = submission.Gender(gender)
	r.DiagnosisStatus = submission.DiagnosisStatus(diagnosis.String)
	r.Status = decision.Status(status)
	if resolvedAt.Valid {
		v := resolvedAt.Int64
		r.ResolvedAt = &v
	}
	if resolvedBy.Valid {
		v := resolvedBy.Int64
		r.ResolvedBy = &v
	}

	return &r, nil
}
