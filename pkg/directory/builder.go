package directory

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/otherjamesbrown/orgmatch/pkg/logging"
	"github.com/otherjamesbrown/orgmatch/pkg/observability"
)

// ErrNilRoot is returned when a build is attempted without an org structure.
var ErrNilRoot = errors.New("directory: org structure root is nil")

// Builder constructs a Directory from an org structure root.
type Builder struct {
	domain  string
	remap   map[string]string
	logger  logging.Logger
	metrics *observability.Metrics
	tracer  *observability.Tracer
}

// BuilderOption configures the builder.
type BuilderOption func(*Builder)

// WithDepartmentRemap sets the leader-name to department-label table.
// The source hierarchy sometimes uses a person's name as a department's
// identity (headless departments, deputies standing in); this table turns
// those names into stable labels. It is configuration, not code: entries
// break silently when the named individuals leave.
func WithDepartmentRemap(remap map[string]string) BuilderOption {
	return func(b *Builder) {
		b.remap = remap
	}
}

// WithBuilderLogger sets the logger.
func WithBuilderLogger(logger logging.Logger) BuilderOption {
	return func(b *Builder) {
		b.logger = logger
	}
}

// WithBuilderMetrics sets the metrics sink.
func WithBuilderMetrics(m *observability.Metrics) BuilderOption {
	return func(b *Builder) {
		b.metrics = m
	}
}

// WithBuilderTracer sets the tracer.
func WithBuilderTracer(t *observability.Tracer) BuilderOption {
	return func(b *Builder) {
		b.tracer = t
	}
}

// NewBuilder creates a builder for the given email domain.
func NewBuilder(domain string, opts ...BuilderOption) *Builder {
	b := &Builder{
		domain: domain,
		logger: logging.MustGlobal(),
	}
	for _, opt := range opts {
		opt(b)
	}
	b.logger = b.logger.With(logging.F("component", "directory_builder"))
	return b
}

// traversalContext carries the ambient department/team state threaded down
// the tree. Passed by value so sibling branches never see each other's state.
type traversalContext struct {
	department string
	team       string
	depth      int
}

// Build walks the org structure and publishes a fresh Directory. The
// directory is rebuilt from scratch on every call; no claim state leaks
// between builds.
func (b *Builder) Build(ctx context.Context, root *OrgNode) (*Directory, error) {
	if root == nil {
		return nil, ErrNilRoot
	}

	_, span := b.tracer.StartBuildSpan(ctx)
	defer span.End()
	start := time.Now()

	dir := &Directory{}
	counter := newClaimCounter()

	// The root (organization lead) belongs to no department branch; their
	// own remapped name stands in as the label.
	b.addPerson(dir, counter, root, traversalContext{
		department: b.departmentLabel(root.Name),
		depth:      0,
	})

	for _, head := range root.Children {
		b.walk(dir, counter, head, traversalContext{
			department: b.departmentLabel(head.Name),
			depth:      1,
		})
	}

	if b.metrics != nil {
		b.metrics.DirectorySize.Set(float64(dir.Len()))
		b.metrics.BuildSeconds.Observe(time.Since(start).Seconds())
	}

	b.logger.Info("directory built",
		logging.F("entries", dir.Len()),
		logging.F("departments", len(dir.HeadcountByDepartment())),
		logging.F("duration", time.Since(start)))

	return dir, nil
}

// walk visits a node and its subtree, threading department/team context.
func (b *Builder) walk(dir *Directory, counter *claimCounter, node *OrgNode, tc traversalContext) {
	// An intermediate leader below the department head names the team for
	// themself and everyone beneath them; the nearest leader wins.
	if tc.depth > 1 && node.hasSubordinates() {
		tc.team = displayName(node.Name)
	}

	b.addPerson(dir, counter, node, tc)

	child := tc
	child.depth++
	for _, c := range node.Children {
		b.walk(dir, counter, c, child)
	}
}

// addPerson assigns a canonical identifier via the collision policy and
// records the entry. People whose names produce no candidates are skipped;
// they will surface in needs-resolution for any export that references them.
func (b *Builder) addPerson(dir *Directory, counter *claimCounter, node *OrgNode, tc traversalContext) {
	variants := GenerateVariants(node.Name, b.domain)
	if len(variants) == 0 {
		b.logger.Warn("skipping person with unparseable name",
			logging.F("name", node.Name),
			logging.F("department", tc.department))
		return
	}

	base := variants[0]
	hasMiddle := len(nameTokens(node.Name)) >= 3
	claims := counter.count(base)

	var id string
	outcome := decideAssignment(claims, hasMiddle)
	switch outcome {
	case AssignBase:
		id = base
	case AssignDotted:
		id = variants[1]
	case AssignInitials:
		id = variants[2]
	default:
		id = numberedIdentifier(base, claims+1)
	}

	// The decision table resolves same-base collisions, but distinct tiebreak
	// forms can still land on an identifier another branch already owns (two
	// three-way collisions sharing a middle initial, or a dotted form equal
	// to someone's base). Uniqueness is the whole point, so fall back to
	// numbering until free.
	if dir.Contains(id) {
		n := claims + 1
		for {
			id = numberedIdentifier(base, n)
			if !dir.Contains(id) {
				break
			}
			n++
		}
		outcome = AssignNumbered
	}

	counter.claim(base)

	if outcome != AssignBase {
		b.logger.Debug("collision resolved",
			logging.F("name", node.Name),
			logging.F("base", base),
			logging.F("assigned", id),
			logging.F("policy", outcome.String()))
	}

	dir.add(&Entry{
		ID:               id,
		DisplayName:      displayName(node.Name),
		Title:            node.Title,
		Department:       tc.department,
		Team:             tc.team,
		IsDepartmentHead: tc.depth == 1 && node.hasSubordinates(),
		IsTeamLead:       tc.depth > 1 && node.hasSubordinates(),
	})
}

// departmentLabel remaps a department-head name to its stable label, or
// falls back to the name itself.
func (b *Builder) departmentLabel(leaderName string) string {
	name := displayName(leaderName)
	if label, ok := b.remap[name]; ok {
		return label
	}
	return name
}

// displayName collapses runs of whitespace in a raw hierarchy name.
func displayName(raw string) string {
	return strings.Join(strings.Fields(raw), " ")
}
