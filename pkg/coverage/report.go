// Package coverage summarizes how much of a vendor export could be
// attributed against the canonical directory, and lists the gaps that need
// human curation.
package coverage

import (
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/otherjamesbrown/orgmatch/pkg/alias"
	"github.com/otherjamesbrown/orgmatch/pkg/directory"
	"github.com/otherjamesbrown/orgmatch/pkg/match"
)

// Gap is one identity that could not be attributed. Aliased distinguishes
// "no alias recorded" from "alias recorded but its target is not canonical"
// - the two failure modes need different curation fixes.
type Gap struct {
	ExternalID  string `json:"external_id"`
	DisplayName string `json:"display_name,omitempty"`
	Resolved    string `json:"resolved"`
	Aliased     bool   `json:"aliased"`
	InDirectory bool   `json:"in_directory"`
}

// Report is the coverage summary for one export.
type Report struct {
	RunID     string `json:"run_id"`
	Matched   int    `json:"matched"`
	Unmatched int    `json:"unmatched"`
	Percent   int    `json:"percent"`
	Gaps      []Gap  `json:"gaps,omitempty"`
}

// Build computes coverage of the external identities against the directory
// with the alias store applied.
func Build(identities []match.ExternalIdentity, dir *directory.Directory, store *alias.Store) (*Report, error) {
	if dir == nil {
		return nil, match.ErrNoDirectory
	}
	if store == nil {
		store = alias.NewStore()
	}

	report := &Report{RunID: uuid.New().String()}
	for _, identity := range identities {
		normalized := alias.Normalize(identity.ID)
		resolved := store.Resolve(normalized)
		inDirectory := dir.Contains(resolved)

		if inDirectory {
			report.Matched++
			continue
		}
		report.Unmatched++
		report.Gaps = append(report.Gaps, Gap{
			ExternalID:  identity.ID,
			DisplayName: identity.DisplayName,
			Resolved:    resolved,
			Aliased:     resolved != normalized,
			InDirectory: inDirectory,
		})
	}

	report.Percent = match.CoveragePercent(report.Matched, report.Matched+report.Unmatched)
	return report, nil
}

// String renders the report for console display.
func (r *Report) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Coverage: %d%% (%d matched, %d unmatched)\n", r.Percent, r.Matched, r.Unmatched)

	if len(r.Gaps) == 0 {
		b.WriteString("No gaps - every identity attributes to the directory.\n")
		return b.String()
	}

	b.WriteString("Unresolved identities:\n")
	for _, gap := range r.Gaps {
		name := gap.DisplayName
		if name == "" {
			name = "(no display name)"
		}
		reason := "no alias recorded"
		if gap.Aliased {
			reason = fmt.Sprintf("alias points to %s, which is not canonical", gap.Resolved)
		}
		fmt.Fprintf(&b, "  %-40s %-30s %s\n", gap.ExternalID, name, reason)
	}
	return b.String()
}
