package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/otherjamesbrown/orgmatch/config"
	"github.com/otherjamesbrown/orgmatch/pkg/directory"
	"github.com/otherjamesbrown/orgmatch/pkg/logging"
	"github.com/otherjamesbrown/orgmatch/pkg/match"
	"github.com/otherjamesbrown/orgmatch/pkg/observability"
)

// Resolve command flags
var (
	resolveOutput     string
	resolveOrg        string
	resolveIdentities string
	resolveDomain     string
	resolveThreshold  int
	resolveNoAliases  bool
)

// ResolveCommandDeps holds the dependencies for the resolve command.
type ResolveCommandDeps struct {
	Config     *config.CLIConfig
	LoadConfig func() (*config.CLIConfig, error)
}

// DefaultResolveDeps returns the default dependencies for production use.
func DefaultResolveDeps() *ResolveCommandDeps {
	return &ResolveCommandDeps{
		LoadConfig: config.LoadConfig,
	}
}

func (d *ResolveCommandDeps) config() (*config.CLIConfig, error) {
	if d.Config != nil {
		return d.Config, nil
	}
	return d.LoadConfig()
}

// NewResolveCommand creates the resolve command.
func NewResolveCommand(deps *ResolveCommandDeps) *cobra.Command {
	if deps == nil {
		deps = DefaultResolveDeps()
	}

	cmd := &cobra.Command{
		Use:   "resolve",
		Short: "Attribute external identities to directory entries",
		Long: `Resolve external identities from a SaaS export against the directory.

Each identity is tried in order: alias override, exact directory match,
generated name variants, then fuzzy name matching. Identities the engine
cannot confidently attribute are listed with ranked candidates for review.

Examples:
  orgmatch resolve --org org.yaml --identities export.yaml
  orgmatch resolve --org org.yaml --identities export.yaml --threshold 90
  orgmatch resolve --org org.yaml --identities export.yaml -o json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runResolve(cmd, deps)
		},
	}

	cmd.Flags().StringVarP(&resolveOutput, "output", "o", "", "Output format: text, json, yaml")
	cmd.Flags().StringVar(&resolveOrg, "org", "", "Path to the org structure YAML file")
	cmd.Flags().StringVar(&resolveIdentities, "identities", "", "Path to the external identities YAML file")
	cmd.Flags().StringVar(&resolveDomain, "domain", "", "Email domain for canonical identifiers (overrides config)")
	cmd.Flags().IntVar(&resolveThreshold, "threshold", 0, "Minimum fuzzy score for auto-acceptance (overrides config)")
	cmd.Flags().BoolVar(&resolveNoAliases, "no-aliases", false, "Skip alias overrides")
	cmd.MarkFlagRequired("org")
	cmd.MarkFlagRequired("identities")

	return cmd
}

func runResolve(cmd *cobra.Command, deps *ResolveCommandDeps) error {
	ctx := cmd.Context()

	cfg, err := deps.config()
	if err != nil {
		return fmt.Errorf("loading configuration: %w", err)
	}

	domain := resolveDomain
	if domain == "" {
		domain = cfg.Domain
	}
	if domain == "" {
		return fmt.Errorf("email domain is not set (use --domain or set domain in config)")
	}

	root, err := loadOrgChart(resolveOrg)
	if err != nil {
		return err
	}

	identities, err := loadIdentities(resolveIdentities)
	if err != nil {
		return err
	}

	logger := logging.MustGlobal()

	builder := directory.NewBuilder(domain,
		directory.WithDepartmentRemap(cfg.DepartmentRemap),
		directory.WithBuilderLogger(logger),
		directory.WithBuilderMetrics(commandMetrics()),
		directory.WithBuilderTracer(observability.NewTracer()),
	)
	dir, err := builder.Build(ctx, root)
	if err != nil {
		return fmt.Errorf("building directory: %w", err)
	}

	matchCfg := resolverConfig(cfg)
	if resolveThreshold > 0 {
		matchCfg.Threshold = resolveThreshold
	}
	if err := matchCfg.Validate(); err != nil {
		return err
	}

	opts := []match.ResolverOption{
		match.WithConfig(matchCfg),
		match.WithLogger(logger),
		match.WithMetrics(commandMetrics()),
		match.WithTracer(observability.NewTracer()),
	}

	if !resolveNoAliases {
		store, err := loadAliasStore(ctx, cfg)
		if err != nil {
			return fmt.Errorf("loading aliases: %w", err)
		}
		opts = append(opts, match.WithAliases(store))
	}

	resolver := match.NewResolver(domain, opts...)
	result, err := resolver.Resolve(ctx, dir, identities)
	if err != nil {
		return err
	}

	return outputResult(cmd, resolveFormat(resolveOutput, cfg), result)
}

func outputResult(cmd *cobra.Command, format config.OutputFormat, result *match.Result) error {
	out := cmd.OutOrStdout()

	if format != config.OutputFormatText {
		return printStructured(out, format, result)
	}

	if len(result.AutoMatched) > 0 {
		fmt.Fprintln(out, "Resolved:")
		for _, m := range result.AutoMatched {
			fmt.Fprintf(out, "  %-40s -> %-40s %3d  %s\n", m.ExternalID, m.CanonicalID, m.Score, m.Method)
		}
	}

	if len(result.NeedsResolution) > 0 {
		fmt.Fprintln(out, "Needs resolution:")
		for _, item := range result.NeedsResolution {
			fmt.Fprintf(out, "  %s", item.ExternalID)
			if item.DisplayName != "" {
				fmt.Fprintf(out, " (%s)", item.DisplayName)
			}
			fmt.Fprintln(out)
			for _, c := range item.Candidates {
				fmt.Fprintf(out, "    %3d  %-40s %s\n", c.Score, c.CanonicalID, c.DisplayName)
			}
			if len(item.Candidates) == 0 {
				fmt.Fprintln(out, "    no candidates")
			}
		}
	}

	fmt.Fprintf(out, "\n%d of %d resolved (%d%% coverage), %d need review\n",
		result.Stats.AutoMatched, result.Stats.Total,
		result.Stats.CoveragePercent, result.Stats.NeedsResolution)
	return nil
}
