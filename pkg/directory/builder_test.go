package directory

import (
	"context"
	"testing"

	"github.com/otherjamesbrown/orgmatch/pkg/logging"
)

const testDomain = "corp.example.com"

func testBuilder(opts ...BuilderOption) *Builder {
	opts = append([]BuilderOption{WithBuilderLogger(logging.NewNopLogger())}, opts...)
	return NewBuilder(testDomain, opts...)
}

func leaf(name, title string) *OrgNode {
	return &OrgNode{Name: name, Title: title}
}

func TestBuild_NilRoot(t *testing.T) {
	_, err := testBuilder().Build(context.Background(), nil)
	if err != ErrNilRoot {
		t.Fatalf("expected ErrNilRoot, got %v", err)
	}
}

func TestBuild_UniqueIdentifiers_TwoWayCollision(t *testing.T) {
	// Two people with the identical name: the second must fall back to the
	// dotted form, never re-emit the base.
	root := &OrgNode{
		Name: "Olivia Chen",
		Children: []*OrgNode{
			{
				Name:          "Luis Amadeo",
				DirectReports: 1,
				Children:      []*OrgNode{leaf("Luis Amadeo", "Engineer")},
			},
		},
	}

	dir, err := testBuilder().Build(context.Background(), root)
	if err != nil {
		t.Fatal(err)
	}

	if !dir.Contains("lamadeo@" + testDomain) {
		t.Error("expected first Luis Amadeo to get lamadeo@")
	}
	if !dir.Contains("luis.amadeo@" + testDomain) {
		t.Error("expected second Luis Amadeo to fall back to luis.amadeo@")
	}
}

func TestBuild_ThreeWayCollision_WithMiddleName(t *testing.T) {
	root := &OrgNode{
		Name: "Olivia Chen",
		Children: []*OrgNode{
			{
				Name:          "Dept Head",
				DirectReports: 3,
				Children: []*OrgNode{
					leaf("John Smith", "Engineer"),
					leaf("Jane Smith", "Engineer"),
					leaf("Joan Alice Smith", "Engineer"),
				},
			},
		},
	}

	dir, err := testBuilder().Build(context.Background(), root)
	if err != nil {
		t.Fatal(err)
	}

	for _, id := range []string{
		"jsmith@" + testDomain,     // first claimant keeps the base
		"jane.smith@" + testDomain, // second gets the dotted form
		"jasmith@" + testDomain,    // third has a middle name to use
	} {
		if !dir.Contains(id) {
			t.Errorf("expected canonical identifier %q", id)
		}
	}
}

func TestBuild_ThreeWayCollision_WithoutMiddleName(t *testing.T) {
	root := &OrgNode{
		Name: "Olivia Chen",
		Children: []*OrgNode{
			{
				Name:          "Dept Head",
				DirectReports: 3,
				Children: []*OrgNode{
					leaf("John Smith", ""),
					leaf("Jane Smith", ""),
					leaf("Jack Smith", ""),
				},
			},
		},
	}

	dir, err := testBuilder().Build(context.Background(), root)
	if err != nil {
		t.Fatal(err)
	}

	if !dir.Contains("jsmith@" + testDomain) {
		t.Error("expected base identifier for first claimant")
	}
	if !dir.Contains("jane.smith@" + testDomain) {
		t.Error("expected dotted identifier for second claimant")
	}
	if !dir.Contains("jsmith3@" + testDomain) {
		t.Error("expected numeric-suffix identifier for third claimant")
	}
}

func TestBuild_NoTwoEntriesCollide(t *testing.T) {
	// A pathological department full of same-base names, some with identical
	// middle initials. Every entry must still get a distinct identifier.
	root := &OrgNode{
		Name: "Olivia Chen",
		Children: []*OrgNode{
			{
				Name:          "Dept Head",
				DirectReports: 6,
				Children: []*OrgNode{
					leaf("John Smith", ""),
					leaf("Jane Smith", ""),
					leaf("Joan Alice Smith", ""),
					leaf("Jake Adam Smith", ""), // same middle-initial form as Joan Alice
					leaf("Jim Smith", ""),
					leaf("Jill Smith", ""),
				},
			},
		},
	}

	dir, err := testBuilder().Build(context.Background(), root)
	if err != nil {
		t.Fatal(err)
	}

	// 1 root + 1 head + 6 reports, all distinct by construction of the map.
	if dir.Len() != 8 {
		ids := make([]string, 0)
		for _, e := range dir.Entries() {
			ids = append(ids, e.ID)
		}
		t.Errorf("expected 8 distinct entries, got %d: %v", dir.Len(), ids)
	}
}

func TestBuild_DepartmentAndTeamAttribution(t *testing.T) {
	root := &OrgNode{
		Name:  "Olivia Chen",
		Title: "CEO",
		Children: []*OrgNode{
			{
				Name:          "Marcus Webb",
				Title:         "VP Engineering",
				DirectReports: 2,
				Children: []*OrgNode{
					{
						Name:          "Sara Lindqvist",
						Title:         "Platform Lead",
						DirectReports: 1,
						Children:      []*OrgNode{leaf("Tom Ito", "Engineer")},
					},
					leaf("Priya Nair", "Staff Engineer"),
				},
			},
		},
	}

	remap := map[string]string{"Marcus Webb": "Engineering"}
	dir, err := testBuilder(WithDepartmentRemap(remap)).Build(context.Background(), root)
	if err != nil {
		t.Fatal(err)
	}

	head, ok := dir.Lookup("mwebb@" + testDomain)
	if !ok {
		t.Fatal("department head missing from directory")
	}
	if head.Department != "Engineering" {
		t.Errorf("head department = %q, want Engineering (remapped)", head.Department)
	}
	if !head.IsDepartmentHead || head.IsTeamLead {
		t.Errorf("head flags = dept:%v team:%v, want dept:true team:false", head.IsDepartmentHead, head.IsTeamLead)
	}
	if head.Team != "" {
		t.Errorf("department head team = %q, want empty", head.Team)
	}

	lead, ok := dir.Lookup("slindqvist@" + testDomain)
	if !ok {
		t.Fatal("team lead missing from directory")
	}
	if !lead.IsTeamLead || lead.IsDepartmentHead {
		t.Error("intermediate leader should be team lead only")
	}
	if lead.Team != "Sara Lindqvist" {
		t.Errorf("team lead team = %q, want their own team", lead.Team)
	}

	member, ok := dir.Lookup("tito@" + testDomain)
	if !ok {
		t.Fatal("team member missing from directory")
	}
	if member.Department != "Engineering" || member.Team != "Sara Lindqvist" {
		t.Errorf("member attribution = %q/%q, want Engineering/Sara Lindqvist", member.Department, member.Team)
	}

	// Direct report of the department head with no intermediate leader.
	direct, ok := dir.Lookup("pnair@" + testDomain)
	if !ok {
		t.Fatal("direct report missing from directory")
	}
	if direct.Team != "" {
		t.Errorf("direct report team = %q, want empty", direct.Team)
	}
}

func TestBuild_SkipsUnparseableNames(t *testing.T) {
	root := &OrgNode{
		Name: "Olivia Chen",
		Children: []*OrgNode{
			{
				Name:          "Marcus Webb",
				DirectReports: 2,
				Children: []*OrgNode{
					leaf("Cher", "Performer"),
					leaf("Tom Ito", "Engineer"),
				},
			},
		},
	}

	dir, err := testBuilder().Build(context.Background(), root)
	if err != nil {
		t.Fatal(err)
	}

	// Root, head, Tom Ito. Cher is skipped.
	if dir.Len() != 3 {
		t.Errorf("expected 3 entries, got %d", dir.Len())
	}
	for _, e := range dir.Entries() {
		if e.DisplayName == "Cher" {
			t.Error("unparseable name should not appear in the directory")
		}
	}
}

func TestBuild_HeadcountByDepartment(t *testing.T) {
	root := &OrgNode{
		Name: "Olivia Chen",
		Children: []*OrgNode{
			{
				Name:          "Marcus Webb",
				DirectReports: 2,
				Children:      []*OrgNode{leaf("Tom Ito", ""), leaf("Priya Nair", "")},
			},
			{
				Name:          "Dana Cole",
				DirectReports: 1,
				Children:      []*OrgNode{leaf("Ben Ortiz", "")},
			},
		},
	}

	remap := map[string]string{"Marcus Webb": "Engineering", "Dana Cole": "Sales"}
	dir, err := testBuilder(WithDepartmentRemap(remap)).Build(context.Background(), root)
	if err != nil {
		t.Fatal(err)
	}

	counts := dir.HeadcountByDepartment()
	if counts["Engineering"] != 3 {
		t.Errorf("Engineering headcount = %d, want 3", counts["Engineering"])
	}
	if counts["Sales"] != 2 {
		t.Errorf("Sales headcount = %d, want 2", counts["Sales"])
	}
	if counts["Olivia Chen"] != 1 {
		t.Errorf("org lead bucket = %d, want 1", counts["Olivia Chen"])
	}
}

func TestDirectory_Attribution_UnknownSentinel(t *testing.T) {
	dir := &Directory{}
	attr := dir.Attribution("ghost@x.com")
	if attr.Department != UnknownDepartment {
		t.Errorf("department = %q, want %q", attr.Department, UnknownDepartment)
	}
	if attr.Team != "" || attr.IsDepartmentHead || attr.IsTeamLead {
		t.Error("unknown attribution must have empty team and false flags")
	}
}

func TestBuild_RepeatedBuildsDoNotLeakClaimState(t *testing.T) {
	root := &OrgNode{
		Name: "Olivia Chen",
		Children: []*OrgNode{
			{
				Name:          "Marcus Webb",
				DirectReports: 1,
				Children:      []*OrgNode{leaf("John Smith", "")},
			},
		},
	}

	b := testBuilder()
	first, err := b.Build(context.Background(), root)
	if err != nil {
		t.Fatal(err)
	}
	second, err := b.Build(context.Background(), root)
	if err != nil {
		t.Fatal(err)
	}

	// If claim counts leaked between builds, John Smith would be pushed to
	// the dotted form on the second build.
	if !first.Contains("jsmith@"+testDomain) || !second.Contains("jsmith@"+testDomain) {
		t.Error("claim state leaked between builds")
	}
}
