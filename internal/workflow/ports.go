// Package workflow implements the submission-to-decision workflow: intake of
// webhook submissions, moderator review actions, and departure reconciliation.
//
// Controllers talk to the chat platform only through the Directory and Cards
// ports, and to persistence only through Store.
package workflow

import (
	"context"

	"github.com/hpungsan/warden/internal/decision"
	"github.com/hpungsan/warden/internal/submission"
)

// Member is a directory entry returned by a member search.
type Member struct {
	ID      int64
	Tag     string
	RoleIDs []string
}

// HasRole reports whether m holds roleID.
func (m Member) HasRole(roleID string) bool {
	for _, id := range m.RoleIDs {
		if id == roleID {
			return true
		}
	}
	return false
}

// Directory is the live member directory.
type Directory interface {
	SearchMembers(ctx context.Context, query string, limit int) ([]Member, error)
	GrantRole(ctx context.Context, userID int64, roleID string) error
	Ban(ctx context.Context, userID int64, reason string) error
	Kick(ctx context.Context, userID int64, reason string) error
}

// ReviewCard is the moderator-facing summary of a matched submission.
type ReviewCard struct {
	Fields       []submission.Field
	SubmitterID  int64
	SubmitterTag string
}

// NoticeKind distinguishes informational cards that carry no actions.
type NoticeKind int

const (
	NoticeUnmatched NoticeKind = iota
	NoticeMalformed
)

// Notice is an informational card with no actions.
type Notice struct {
	Kind    NoticeKind
	Subject string
	Detail  string
}

// Cards publishes and mutates messages in the review channel.
type Cards interface {
	PublishReview(ctx context.Context, channelID int64, card ReviewCard) (cardID int64, err error)
	PublishNotice(ctx context.Context, channelID int64, n Notice) error
	SetCardState(ctx context.Context, channelID, cardID int64, state decision.Status) error
	DeleteMessage(ctx context.Context, channelID, messageID int64) error
}

// Store persists decision records.
type Store interface {
	Put(ctx context.Context, r *decision.Record) error
	GetByCardID(ctx context.Context, cardID int64) (*decision.Record, error)
	GetBySubmitterID(ctx context.Context, userID int64) (*decision.Record, error)
	Resolve(ctx context.Context, cardID int64, to decision.Status, resolvedBy *int64) error
	Reopen(ctx context.Context, cardID int64, from decision.Status) error
}
