// Package ops implements the offline admin operations over the decision
// record store. Outputs are JSON-ready views.
package ops

import (
	"strconv"
	"time"

	"github.com/hpungsan/warden/internal/decision"
	"github.com/hpungsan/warden/internal/errors"
)

// Pagination limits
const (
	DefaultListLimit = 20
	MaxListLimit     = 100
)

// Pagination contains pagination metadata for list operations.
type Pagination struct {
	Limit   int  `json:"limit"`
	Offset  int  `json:"offset"`
	HasMore bool `json:"has_more"`
	Total   int  `json:"total"`
}

// RecordView is the JSON form of a decision record. Snowflakes are rendered
// as strings so they survive JSON number precision.
type RecordView struct {
	CardID          string  `json:"card_id"`
	ChannelID       string  `json:"channel_id,omitempty"`
	SubmitterID     string  `json:"submitter_id"`
	DiagnosisStatus string  `json:"diagnosis_status"`
	Gender          string  `json:"gender"`
	IsFemale        bool    `json:"is_female"`
	IsAdult         bool    `json:"is_adult"`
	IsSenior        bool    `json:"is_senior"`
	Status          string  `json:"status"`
	CreatedAt       *string `json:"created_at,omitempty"`
	ResolvedAt      *string `json:"resolved_at,omitempty"`
	ResolvedBy      string  `json:"resolved_by,omitempty"`
}

func newRecordView(r *decision.Record) RecordView {
	v := RecordView{
		CardID:          formatID(r.CardID),
		SubmitterID:     formatID(r.SubmitterID),
		DiagnosisStatus: string(r.DiagnosisStatus),
		Gender:          string(r.Gender),
		IsFemale:        r.IsFemale,
		IsAdult:         r.IsAdult,
		IsSenior:        r.IsSenior,
		Status:          string(r.Status),
	}
	// Records adopted from the legacy table carry zero channel and creation time.
	if r.ChannelID != 0 {
		v.ChannelID = formatID(r.ChannelID)
	}
	if r.CreatedAt != 0 {
		v.CreatedAt = formatTime(r.CreatedAt)
	}
	if r.ResolvedAt != nil {
		v.ResolvedAt = formatTime(*r.ResolvedAt)
	}
	if r.ResolvedBy != nil {
		v.ResolvedBy = formatID(*r.ResolvedBy)
	}
	return v
}

func formatID(id int64) string {
	return strconv.FormatInt(id, 10)
}

func formatTime(unix int64) *string {
	s := time.Unix(unix, 0).UTC().Format(time.RFC3339)
	return &s
}

// ParseID parses a snowflake given on the command line.
func ParseID(name, s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, errors.NewInvalidRequest(name + " must be a positive numeric id")
	}
	return id, nil
}
