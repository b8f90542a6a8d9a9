// Package directory builds the canonical employee directory from a
// hierarchical org structure. Every person is assigned a unique canonical
// identifier derived from the organization's email naming convention, plus
// the department and team context implied by their position in the tree.
package directory

import "sort"

// OrgNode is a node in the org structure export. The root is the
// organization lead; its direct children are department heads.
type OrgNode struct {
	Name              string     `yaml:"name" json:"name"`
	Title             string     `yaml:"title,omitempty" json:"title,omitempty"`
	DirectReports     int        `yaml:"direct_reports,omitempty" json:"direct_reports,omitempty"`
	TotalSubordinates int        `yaml:"total_subordinates,omitempty" json:"total_subordinates,omitempty"`
	Children          []*OrgNode `yaml:"children,omitempty" json:"children,omitempty"`
}

// hasSubordinates reports whether the node leads anyone.
func (n *OrgNode) hasSubordinates() bool {
	return len(n.Children) > 0 || n.DirectReports > 0 || n.TotalSubordinates > 0
}

// Entry is a canonical identity in the directory.
type Entry struct {
	// ID is the canonical identifier (an email address under the
	// organization's domain). Unique across the directory.
	ID string `yaml:"id" json:"id"`

	DisplayName string `yaml:"display_name" json:"display_name"`
	Title       string `yaml:"title,omitempty" json:"title,omitempty"`

	// Department is the remapped name of the top-level branch this person
	// belongs to. Team is the nearest intermediate leader strictly below the
	// department head, or empty.
	Department string `yaml:"department" json:"department"`
	Team       string `yaml:"team,omitempty" json:"team,omitempty"`

	IsDepartmentHead bool `yaml:"is_department_head,omitempty" json:"is_department_head,omitempty"`
	IsTeamLead       bool `yaml:"is_team_lead,omitempty" json:"is_team_lead,omitempty"`
}

// Attribution is the department/team grouping reported for an identifier.
type Attribution struct {
	Department       string `json:"department"`
	Team             string `json:"team,omitempty"`
	IsDepartmentHead bool   `json:"is_department_head,omitempty"`
	IsTeamLead       bool   `json:"is_team_lead,omitempty"`
}

// UnknownDepartment is the sentinel bucket for identifiers that could not be
// attributed. Aggregation must keep it as its own bucket, never drop it.
const UnknownDepartment = "Unknown"

// UnknownAttribution returns the explicit "could not attribute" sentinel.
func UnknownAttribution() Attribution {
	return Attribution{Department: UnknownDepartment}
}

// Directory is the canonical identity set published by a build. It is
// immutable once built; concurrent reads are safe.
type Directory struct {
	entries map[string]*Entry
	order   []string
}

// Lookup returns the entry for a canonical identifier.
func (d *Directory) Lookup(id string) (*Entry, bool) {
	e, ok := d.entries[id]
	return e, ok
}

// Contains reports whether the identifier is a canonical identifier.
func (d *Directory) Contains(id string) bool {
	_, ok := d.entries[id]
	return ok
}

// Entries returns all entries in insertion (traversal) order.
func (d *Directory) Entries() []*Entry {
	out := make([]*Entry, 0, len(d.order))
	for _, id := range d.order {
		out = append(out, d.entries[id])
	}
	return out
}

// Len returns the number of canonical identities.
func (d *Directory) Len() int {
	return len(d.order)
}

// Attribution returns the department/team attribution for a canonical
// identifier, or the Unknown sentinel when the identifier is not canonical.
func (d *Directory) Attribution(id string) Attribution {
	e, ok := d.entries[id]
	if !ok {
		return UnknownAttribution()
	}
	return Attribution{
		Department:       e.Department,
		Team:             e.Team,
		IsDepartmentHead: e.IsDepartmentHead,
		IsTeamLead:       e.IsTeamLead,
	}
}

// HeadcountByDepartment returns entry counts per department. Used by
// downstream allocation logic.
func (d *Directory) HeadcountByDepartment() map[string]int {
	counts := make(map[string]int)
	for _, id := range d.order {
		counts[d.entries[id].Department]++
	}
	return counts
}

// Departments returns the distinct department labels, sorted.
func (d *Directory) Departments() []string {
	seen := make(map[string]bool)
	var out []string
	for _, id := range d.order {
		dept := d.entries[id].Department
		if !seen[dept] {
			seen[dept] = true
			out = append(out, dept)
		}
	}
	sort.Strings(out)
	return out
}

// add inserts an entry. Only the builder calls this; the published
// directory is never mutated.
func (d *Directory) add(e *Entry) {
	if d.entries == nil {
		d.entries = make(map[string]*Entry)
	}
	d.entries[e.ID] = e
	d.order = append(d.order, e.ID)
}
