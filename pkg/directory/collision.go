package directory

import (
	"fmt"
	"strings"
)

// Assignment tags the collision-policy outcome for one person.
type Assignment int

const (
	// AssignBase assigns the primary {first-initial}{last} candidate.
	AssignBase Assignment = iota
	// AssignDotted assigns the {first}.{last} candidate.
	AssignDotted
	// AssignInitials assigns the {first-initial}{middle-initial}{last} candidate.
	AssignInitials
	// AssignNumbered assigns the base candidate with a numeric suffix.
	AssignNumbered
)

// String returns the policy tag name.
func (a Assignment) String() string {
	switch a {
	case AssignBase:
		return "base"
	case AssignDotted:
		return "dotted"
	case AssignInitials:
		return "initials"
	case AssignNumbered:
		return "numbered"
	default:
		return fmt.Sprintf("Assignment(%d)", int(a))
	}
}

// decideAssignment picks an outcome from how many people already claimed the
// base candidate and whether the person has a middle name to disambiguate
// with. Pure decision table, one row per prior-claim count.
func decideAssignment(claims int, hasMiddle bool) Assignment {
	switch {
	case claims == 0:
		return AssignBase
	case claims == 1:
		return AssignDotted
	case claims == 2 && hasMiddle:
		return AssignInitials
	default:
		return AssignNumbered
	}
}

// claimCounter tracks, per base candidate, how many people have already
// claimed it during one build. It is owned by a single Build call and never
// shared between builds.
type claimCounter struct {
	claims map[string]int
}

func newClaimCounter() *claimCounter {
	return &claimCounter{claims: make(map[string]int)}
}

// count returns how many people already claimed the base candidate.
func (c *claimCounter) count(base string) int {
	return c.claims[base]
}

// claim records one more claimant for the base candidate. The counter always
// tracks the base, not the identifier actually assigned, so it reflects how
// many people share the root name pattern regardless of which tiebreak
// resolved each of them.
func (c *claimCounter) claim(base string) {
	c.claims[base]++
}

// numberedIdentifier inserts a numeric suffix before the domain separator:
// "jsmith@x.com" with suffix 3 becomes "jsmith3@x.com".
func numberedIdentifier(base string, suffix int) string {
	at := strings.LastIndex(base, "@")
	if at < 0 {
		return fmt.Sprintf("%s%d", base, suffix)
	}
	return fmt.Sprintf("%s%d%s", base[:at], suffix, base[at:])
}
