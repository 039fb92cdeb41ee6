package ops

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/hpungsan/warden/internal/db"
)

// PurgeInput contains parameters for the Purge operation.
type PurgeInput struct {
	OlderThanDays *int // optional, only purge if resolved_at < (now - N days)
}

// PurgeOutput contains the result of the Purge operation.
type PurgeOutput struct {
	Purged  int    `json:"purged"`
	Message string `json:"message"`
}

// Purge permanently deletes resolved decision records. Pending records stay.
func Purge(ctx context.Context, database *sql.DB, input PurgeInput) (*PurgeOutput, error) {
	count, err := db.PurgeResolved(ctx, database, input.OlderThanDays)
	if err != nil {
		return nil, err
	}

	return &PurgeOutput{
		Purged:  count,
		Message: formatPurgeMessage(count, input.OlderThanDays),
	}, nil
}

// formatPurgeMessage creates a human-readable message for the purge result.
func formatPurgeMessage(count int, olderThanDays *int) string {
	if count == 0 {
		return "No resolved records to purge"
	}

	word := "record"
	if count > 1 {
		word = "records"
	}

	msg := fmt.Sprintf("Permanently deleted %d resolved %s", count, word)
	if olderThanDays != nil {
		msg += fmt.Sprintf(" (resolved more than %d days ago)", *olderThanDays)
	}
	return msg
}
