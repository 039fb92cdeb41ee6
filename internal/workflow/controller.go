package workflow

import (
	"fmt"

	"github.com/hpungsan/warden/internal/decision"
	"github.com/hpungsan/warden/internal/logger"
	"github.com/hpungsan/warden/internal/roles"
)

// Options binds the controller to one community.
type Options struct {
	// UpstreamAuthorID is the only author whose messages are submissions.
	UpstreamAuthorID int64

	// Roles maps role kinds to platform role ids.
	Roles roles.Bindings

	// SearchLimit bounds the member search (default 100).
	SearchLimit int

	// MatchPolicy decides which search result is the submitter (default exact_tag).
	MatchPolicy MatchPolicy

	// ReviewChannelID is where review cards live. It locates cards whose
	// record predates per-card channel tracking.
	ReviewChannelID int64
}

// MatchPolicy names how a claimed identity is resolved to a member.
type MatchPolicy string

// MatchExactTag picks the first search result whose full tag equals the
// claimed identity, case-sensitively, among members without the verified role.
const MatchExactTag MatchPolicy = "exact_tag"

// ParseMatchPolicy validates a configured policy name. Empty means MatchExactTag.
func ParseMatchPolicy(s string) (MatchPolicy, error) {
	switch MatchPolicy(s) {
	case "", MatchExactTag:
		return MatchExactTag, nil
	}
	return "", fmt.Errorf("unknown match policy %q", s)
}

// Controller runs the intake, review and departure workflows. It is safe for
// concurrent use; transitions on the same card are serialized.
type Controller struct {
	store Store
	dir   Directory
	cards Cards
	opts  Options
	log   *logger.Logger
	locks *keyLock
}

// New creates a Controller. A nil logger discards output.
func New(store Store, dir Directory, cards Cards, opts Options, log *logger.Logger) *Controller {
	if opts.SearchLimit <= 0 {
		opts.SearchLimit = 100
	}
	if opts.MatchPolicy == "" {
		opts.MatchPolicy = MatchExactTag
	}
	if log == nil {
		log = logger.Nop()
	}
	return &Controller{
		store: store,
		dir:   dir,
		cards: cards,
		opts:  opts,
		log:   log,
		locks: newKeyLock(),
	}
}

// cardChannel locates the card of rec. Legacy records carry no channel, so
// the event's channel is used when known, then the configured review channel.
func (c *Controller) cardChannel(rec *decision.Record, eventChannel int64) int64 {
	if rec.ChannelID != 0 {
		return rec.ChannelID
	}
	if eventChannel != 0 {
		return eventChannel
	}
	return c.opts.ReviewChannelID
}
