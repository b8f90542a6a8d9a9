package match

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/otherjamesbrown/orgmatch/pkg/alias"
	"github.com/otherjamesbrown/orgmatch/pkg/directory"
	omerrors "github.com/otherjamesbrown/orgmatch/pkg/errors"
	"github.com/otherjamesbrown/orgmatch/pkg/logging"
	"github.com/otherjamesbrown/orgmatch/pkg/observability"
)

// ErrNoDirectory is returned when resolution is attempted before a
// directory is built. This is a sequencing bug in the caller; fail fast.
var ErrNoDirectory = errors.New("match: no directory built")

// Method tags how an auto-match was produced.
type Method string

const (
	MethodAlias   Method = "alias"
	MethodExact   Method = "exact"
	MethodVariant Method = "variant"
	MethodFuzzy   Method = "fuzzy"
)

// ExternalIdentity is one identifier from a vendor usage export: a real
// identifier plus a best-effort display name. Extra attributes (seat tier,
// status) pass through untouched.
type ExternalIdentity struct {
	ID          string            `yaml:"id" json:"id"`
	DisplayName string            `yaml:"display_name,omitempty" json:"display_name,omitempty"`
	Attributes  map[string]string `yaml:"attributes,omitempty" json:"attributes,omitempty"`
}

// AutoMatch is a resolution accepted without human review.
type AutoMatch struct {
	ExternalID  string `json:"external_id"`
	CanonicalID string `json:"canonical_id"`
	Score       int    `json:"score"`
	Method      Method `json:"method"`
}

// CandidateMatch is one ranked suggestion for manual review.
type CandidateMatch struct {
	CanonicalID string `json:"canonical_id"`
	DisplayName string `json:"display_name"`
	Score       int    `json:"score"`
}

// ReviewItem is an identity the engine could not confidently resolve,
// surfaced with ranked candidates for a human to pick from.
type ReviewItem struct {
	ExternalID  string           `json:"external_id"`
	DisplayName string           `json:"display_name,omitempty"`
	Candidates  []CandidateMatch `json:"candidates"`
}

// Stats summarizes one resolution run.
type Stats struct {
	Total           int `json:"total"`
	AutoMatched     int `json:"auto_matched"`
	NeedsResolution int `json:"needs_resolution"`
	CoveragePercent int `json:"coverage_percent"`
}

// Result is the classification of one batch of external identities.
type Result struct {
	AutoMatched     []AutoMatch  `json:"auto_matched"`
	NeedsResolution []ReviewItem `json:"needs_resolution"`
	Stats           Stats        `json:"stats"`
}

// Config holds resolution tuning knobs.
type Config struct {
	// Threshold is the minimum fuzzy score for auto-acceptance.
	Threshold int

	// Margin is how far the top fuzzy candidate must outscore the runner-up
	// before auto-acceptance. A heuristic tie-break; kept configurable.
	Margin int

	// CandidateFloor is the minimum score for a candidate to be suggested.
	CandidateFloor int

	// MaxCandidates caps the suggestions attached to a review item.
	MaxCandidates int
}

// DefaultConfig returns the standard thresholds.
func DefaultConfig() Config {
	return Config{
		Threshold:      80,
		Margin:         10,
		CandidateFloor: 50,
		MaxCandidates:  5,
	}
}

// Validate checks the thresholds are sane.
func (c Config) Validate() error {
	if c.Threshold < 0 || c.Threshold > 100 {
		return fmt.Errorf("threshold must be 0-100, got %d: %w", c.Threshold, omerrors.ErrValidation)
	}
	if c.CandidateFloor < 0 || c.CandidateFloor > 100 {
		return fmt.Errorf("candidate floor must be 0-100, got %d: %w", c.CandidateFloor, omerrors.ErrValidation)
	}
	if c.Margin < 0 {
		return fmt.Errorf("margin must be non-negative, got %d: %w", c.Margin, omerrors.ErrValidation)
	}
	if c.MaxCandidates < 1 {
		return fmt.Errorf("max candidates must be positive, got %d: %w", c.MaxCandidates, omerrors.ErrValidation)
	}
	return nil
}

// Resolver classifies external identities against a canonical directory.
// It is pure: human decisions are persisted into the alias store by an
// explicit separate step, never by the resolver itself.
type Resolver struct {
	config  Config
	aliases *alias.Store
	domain  string
	logger  logging.Logger
	metrics *observability.Metrics
	tracer  *observability.Tracer
}

// ResolverOption configures the resolver.
type ResolverOption func(*Resolver)

// WithAliases sets the curated override store consulted before any
// algorithmic step.
func WithAliases(store *alias.Store) ResolverOption {
	return func(r *Resolver) {
		r.aliases = store
	}
}

// WithConfig overrides the default thresholds.
func WithConfig(cfg Config) ResolverOption {
	return func(r *Resolver) {
		r.config = cfg
	}
}

// WithLogger sets the logger.
func WithLogger(logger logging.Logger) ResolverOption {
	return func(r *Resolver) {
		r.logger = logger
	}
}

// WithMetrics sets the metrics sink.
func WithMetrics(m *observability.Metrics) ResolverOption {
	return func(r *Resolver) {
		r.metrics = m
	}
}

// WithTracer sets the tracer.
func WithTracer(t *observability.Tracer) ResolverOption {
	return func(r *Resolver) {
		r.tracer = t
	}
}

// NewResolver creates a resolver for identities under the given email
// domain.
func NewResolver(domain string, opts ...ResolverOption) *Resolver {
	r := &Resolver{
		config:  DefaultConfig(),
		aliases: alias.NewStore(),
		domain:  domain,
		logger:  logging.MustGlobal(),
	}
	for _, opt := range opts {
		opt(r)
	}
	if err := r.config.Validate(); err != nil {
		r.config = DefaultConfig()
	}
	r.logger = r.logger.With(logging.F("component", "resolver"))
	return r
}

// Resolve classifies each external identity as auto-matched or
// needs-resolution. Per identity, first success wins: alias lookup, exact
// identifier match, generated-variant match, fuzzy display-name match.
func (r *Resolver) Resolve(ctx context.Context, dir *directory.Directory, identities []ExternalIdentity) (*Result, error) {
	if dir == nil {
		return nil, ErrNoDirectory
	}

	_, span := r.tracer.StartResolveSpan(ctx, len(identities), r.config.Threshold)
	start := time.Now()

	result := &Result{
		AutoMatched:     []AutoMatch{},
		NeedsResolution: []ReviewItem{},
	}

	for _, identity := range identities {
		if match, ok := r.resolveOne(dir, identity); ok {
			result.AutoMatched = append(result.AutoMatched, *match)
			if r.metrics != nil {
				r.metrics.ResolutionsTotal.WithLabelValues(string(match.Method)).Inc()
			}
			continue
		}

		review := r.reviewItem(dir, identity)
		result.NeedsResolution = append(result.NeedsResolution, review)
		if r.metrics != nil {
			r.metrics.NeedsResolutionTotal.Inc()
		}
	}

	result.Stats = Stats{
		Total:           len(identities),
		AutoMatched:     len(result.AutoMatched),
		NeedsResolution: len(result.NeedsResolution),
		CoveragePercent: CoveragePercent(len(result.AutoMatched), len(identities)),
	}

	if r.metrics != nil {
		r.metrics.CoveragePercent.Set(float64(result.Stats.CoveragePercent))
		r.metrics.ResolveSeconds.Observe(time.Since(start).Seconds())
	}
	observability.EndResolveSpan(span, result.Stats.AutoMatched, result.Stats.NeedsResolution, result.Stats.CoveragePercent)

	r.logger.Info("resolution run complete",
		logging.F("total", result.Stats.Total),
		logging.F("auto_matched", result.Stats.AutoMatched),
		logging.F("needs_resolution", result.Stats.NeedsResolution),
		logging.F("coverage_percent", result.Stats.CoveragePercent))

	return result, nil
}

// resolveOne attempts the auto-match cascade for one identity.
func (r *Resolver) resolveOne(dir *directory.Directory, identity ExternalIdentity) (*AutoMatch, bool) {
	normalized := alias.Normalize(identity.ID)

	// Curated overrides win outright. An identifier with a recorded alias
	// never falls through to fuzzy matching, even when the alias target is
	// stale: that case belongs to the review queue, not the scorer.
	if r.aliases.Has(normalized) {
		canonical := r.aliases.Resolve(normalized)
		if dir.Contains(canonical) {
			return &AutoMatch{
				ExternalID:  identity.ID,
				CanonicalID: canonical,
				Score:       100,
				Method:      MethodAlias,
			}, true
		}
		r.logger.Warn("alias target not in directory",
			logging.F("external_id", identity.ID),
			logging.F("alias_target", canonical))
		return nil, false
	}

	if dir.Contains(normalized) {
		return &AutoMatch{
			ExternalID:  identity.ID,
			CanonicalID: normalized,
			Score:       100,
			Method:      MethodExact,
		}, true
	}

	// An initial-only given name ("J. Doe") could stand for anyone sharing
	// the surname; the primary variant would pick one of them blind. Those
	// identities go through the fuzzy margin rule instead.
	if !initialOnlyGiven(identity.DisplayName) {
		for _, variant := range directory.GenerateVariants(identity.DisplayName, r.domain) {
			if dir.Contains(variant) {
				return &AutoMatch{
					ExternalID:  identity.ID,
					CanonicalID: variant,
					Score:       95,
					Method:      MethodVariant,
				}, true
			}
		}
	}

	candidates := r.fuzzyCandidates(dir, identity.DisplayName)
	if len(candidates) == 0 {
		return nil, false
	}

	top := candidates[0]
	clearWinner := len(candidates) == 1 || top.Score-candidates[1].Score >= r.config.Margin
	if top.Score >= r.config.Threshold && clearWinner {
		return &AutoMatch{
			ExternalID:  identity.ID,
			CanonicalID: top.CanonicalID,
			Score:       top.Score,
			Method:      MethodFuzzy,
		}, true
	}

	return nil, false
}

// initialOnlyGiven reports whether the display name's given name is a bare
// initial after normalization.
func initialOnlyGiven(displayName string) bool {
	tokens := strings.Fields(normalizeName(displayName))
	return len(tokens) > 0 && len(tokens[0]) == 1
}

// reviewItem builds the needs-resolution entry with ranked candidates. The
// candidates are attached even when none reached the threshold, so the
// reviewer has context; an identity with no candidates at all is still
// emitted, with an empty list.
func (r *Resolver) reviewItem(dir *directory.Directory, identity ExternalIdentity) ReviewItem {
	candidates := r.fuzzyCandidates(dir, identity.DisplayName)
	if len(candidates) > r.config.MaxCandidates {
		candidates = candidates[:r.config.MaxCandidates]
	}
	return ReviewItem{
		ExternalID:  identity.ID,
		DisplayName: identity.DisplayName,
		Candidates:  candidates,
	}
}

// fuzzyCandidates scores the display name against every directory entry and
// returns those at or above the candidate floor, best first. Ties break on
// canonical identifier for deterministic output.
func (r *Resolver) fuzzyCandidates(dir *directory.Directory, displayName string) []CandidateMatch {
	if displayName == "" {
		return []CandidateMatch{}
	}

	candidates := []CandidateMatch{}
	for _, entry := range dir.Entries() {
		score := Similarity(displayName, entry.DisplayName)
		if score >= r.config.CandidateFloor {
			candidates = append(candidates, CandidateMatch{
				CanonicalID: entry.ID,
				DisplayName: entry.DisplayName,
				Score:       score,
			})
		}
	}

	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].Score != candidates[j].Score {
			return candidates[i].Score > candidates[j].Score
		}
		return candidates[i].CanonicalID < candidates[j].CanonicalID
	})
	return candidates
}

// CoveragePercent is round(100 * matched / total), with 0/0 defined as 100:
// an empty input set has nothing uncovered.
func CoveragePercent(matched, total int) int {
	if total == 0 {
		return 100
	}
	return int(math.Round(100 * float64(matched) / float64(total)))
}
