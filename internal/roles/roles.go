// Package roles maps a decision record to the entitlement roles an approval grants.
package roles

import (
	"fmt"
	"sort"

	"github.com/hpungsan/warden/internal/decision"
	"github.com/hpungsan/warden/internal/submission"
)

// Role is a platform-independent role kind.
type Role string

const (
	Verified        Role = "verified"
	Adult           Role = "adult"
	Senior          Role = "senior"
	Minor           Role = "minor"
	FemaleAdult     Role = "female_adult"
	FemaleMinor     Role = "female_minor"
	PeerSupport     Role = "peer_support"
	PrimaryIdentity Role = "primary_identity"
	Male            Role = "male"
	Female          Role = "female"
	Other           Role = "other"
)

// All lists every role kind in grant order.
var All = []Role{
	Verified, Adult, Senior, Minor, FemaleAdult, FemaleMinor,
	PeerSupport, PrimaryIdentity, Male, Female, Other,
}

// Derive returns the roles an approval of r grants, in grant order.
// The result never contains duplicates.
func Derive(r *decision.Record) []Role {
	out := []Role{Verified}

	if r.IsAdult {
		out = append(out, Adult)
	}
	if r.IsSenior {
		out = append(out, Senior)
	}

	grownUp := r.IsAdult || r.IsSenior
	if !grownUp {
		out = append(out, Minor)
	}

	if r.IsFemale {
		if grownUp {
			out = append(out, FemaleAdult)
		} else {
			out = append(out, FemaleMinor)
		}
	}

	if r.DiagnosisStatus == submission.DiagnosisFamilyOrFriend {
		out = append(out, PeerSupport)
	} else {
		out = append(out, PrimaryIdentity)
	}

	switch r.Gender {
	case submission.GenderMale:
		out = append(out, Male)
	case submission.GenderFemale:
		out = append(out, Female)
	default:
		out = append(out, Other)
	}

	return out
}

// Bindings maps role kinds to platform role ids.
type Bindings map[Role]string

// Valid reports whether r is a known role kind.
func (r Role) Valid() bool {
	for _, k := range All {
		if r == k {
			return true
		}
	}
	return false
}

// Validate checks that every role kind is bound and no unknown kind is present.
func (b Bindings) Validate() error {
	var unknown []string
	for r := range b {
		if !r.Valid() {
			unknown = append(unknown, string(r))
		}
	}
	if len(unknown) > 0 {
		sort.Strings(unknown)
		return fmt.Errorf("unknown role kinds: %v", unknown)
	}

	var missing []Role
	for _, r := range All {
		if b[r] == "" {
			missing = append(missing, r)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("unbound roles: %v", missing)
	}
	return nil
}

// IDs resolves role kinds to platform ids, skipping unbound kinds.
// The second return value lists the kinds that had no binding.
func (b Bindings) IDs(rs []Role) (ids []string, unbound []Role) {
	ids = make([]string, 0, len(rs))
	for _, r := range rs {
		id := b[r]
		if id == "" {
			unbound = append(unbound, r)
			continue
		}
		ids = append(ids, id)
	}
	return ids, unbound
}
