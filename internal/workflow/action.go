package workflow

import (
	"fmt"

	"github.com/hpungsan/warden/internal/decision"
)

// Action is a moderator decision on a review card.
type Action int

const (
	ActionApprove Action = iota + 1
	ActionBan
	ActionKick
)

func (a Action) String() string {
	switch a {
	case ActionApprove:
		return "approve"
	case ActionBan:
		return "ban"
	case ActionKick:
		return "kick"
	}
	return fmt.Sprintf("Action(%d)", int(a))
}

// Outcome is the terminal status the action leads to.
func (a Action) Outcome() (decision.Status, bool) {
	switch a {
	case ActionApprove:
		return decision.StatusApproved, true
	case ActionBan:
		return decision.StatusBanned, true
	case ActionKick:
		return decision.StatusKicked, true
	}
	return "", false
}
