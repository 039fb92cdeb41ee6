// Package decision defines the durable record that correlates a review card
// with the submitter and answers it was published for.
package decision

import "github.com/hpungsan/warden/internal/submission"

// Status is the server-side state of a review card.
type Status string

const (
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
	StatusBanned   Status = "banned"
	StatusKicked   Status = "kicked"
	StatusLeft     Status = "left"
)

// Terminal reports whether s closes the card.
func (s Status) Terminal() bool {
	switch s {
	case StatusApproved, StatusBanned, StatusKicked, StatusLeft:
		return true
	}
	return false
}

// Valid reports whether s is a known status.
func (s Status) Valid() bool {
	return s == StatusPending || s.Terminal()
}

// Record is a decision record, keyed by the review card it backs.
// The answer fields are written once; only the status columns move.
type Record struct {
	// CardID is the review card's message id (primary key)
	CardID int64

	// ChannelID is the channel the review card lives in
	ChannelID int64

	// SubmitterID is the resolved directory identity
	SubmitterID int64

	DiagnosisStatus submission.DiagnosisStatus
	Gender          submission.Gender
	IsFemale        bool
	IsAdult         bool
	IsSenior        bool

	// Status is pending until exactly one terminal transition happens
	Status Status

	// CreatedAt is the Unix timestamp when the record was written
	CreatedAt int64

	// ResolvedAt is the Unix timestamp of the terminal transition (nullable)
	ResolvedAt *int64

	// ResolvedBy is the moderator who resolved the card (nullable; nil for departures)
	ResolvedBy *int64
}

// New builds a pending record from parsed answers.
func New(cardID, channelID, submitterID int64, a *submission.Answers) *Record {
	return &Record{
		CardID:          cardID,
		ChannelID:       channelID,
		SubmitterID:     submitterID,
		DiagnosisStatus: a.DiagnosisStatus,
		Gender:          a.Gender,
		IsFemale:        a.IsFemale,
		IsAdult:         a.IsAdult,
		IsSenior:        a.IsSenior,
		Status:          StatusPending,
	}
}
