package ops

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/hpungsan/warden/internal/db"
	"github.com/hpungsan/warden/internal/decision"
	"github.com/hpungsan/warden/internal/errors"
)

// ListInput contains parameters for the List operation.
type ListInput struct {
	Status string // optional filter; empty lists every status
	Limit  int    // default: 20, max: 100
	Offset int    // default: 0
}

// ListOutput contains the result of the List operation.
type ListOutput struct {
	Items      []RecordView `json:"items"`
	Pagination Pagination   `json:"pagination"`
	Sort       string       `json:"sort"`
}

// List retrieves decision records newest first with pagination.
func List(ctx context.Context, database *sql.DB, input ListInput) (*ListOutput, error) {
	var status *decision.Status
	if input.Status != "" {
		s := decision.Status(input.Status)
		if !s.Valid() {
			return nil, errors.NewInvalidRequest(fmt.Sprintf("unknown status %q", input.Status))
		}
		status = &s
	}

	limit := input.Limit
	if limit <= 0 {
		limit = DefaultListLimit
	}
	if limit > MaxListLimit {
		limit = MaxListLimit
	}

	offset := max(input.Offset, 0)

	records, total, err := db.ListRecords(ctx, database, status, limit, offset)
	if err != nil {
		return nil, err
	}

	items := make([]RecordView, 0, len(records))
	for i := range records {
		items = append(items, newRecordView(&records[i]))
	}

	return &ListOutput{
		Items: items,
		Pagination: Pagination{
			Limit:   limit,
			Offset:  offset,
			HasMore: offset+len(items) < total,
			Total:   total,
		},
		Sort: "created_at_desc",
	}, nil
}
