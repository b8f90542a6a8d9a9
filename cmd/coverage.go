package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/otherjamesbrown/orgmatch/config"
	"github.com/otherjamesbrown/orgmatch/pkg/coverage"
	"github.com/otherjamesbrown/orgmatch/pkg/directory"
	"github.com/otherjamesbrown/orgmatch/pkg/logging"
	"github.com/otherjamesbrown/orgmatch/pkg/observability"
)

// Coverage command flags
var (
	coverageOutput     string
	coverageOrg        string
	coverageIdentities string
	coverageDomain     string
)

// CoverageCommandDeps holds the dependencies for the coverage command.
type CoverageCommandDeps struct {
	Config     *config.CLIConfig
	LoadConfig func() (*config.CLIConfig, error)
}

// DefaultCoverageDeps returns the default dependencies for production use.
func DefaultCoverageDeps() *CoverageCommandDeps {
	return &CoverageCommandDeps{
		LoadConfig: config.LoadConfig,
	}
}

func (d *CoverageCommandDeps) config() (*config.CLIConfig, error) {
	if d.Config != nil {
		return d.Config, nil
	}
	return d.LoadConfig()
}

// NewCoverageCommand creates the coverage command.
func NewCoverageCommand(deps *CoverageCommandDeps) *cobra.Command {
	if deps == nil {
		deps = DefaultCoverageDeps()
	}

	cmd := &cobra.Command{
		Use:   "coverage",
		Short: "Report how much of an export maps cleanly to the directory",
		Long: `Report alias coverage of an external export against the directory.

An identity counts as covered when it is canonical itself or its alias
points at a canonical identifier. Gaps distinguish identities with no
alias recorded from identities whose alias points at a stale target,
since the two need different fixes.

Examples:
  orgmatch coverage --org org.yaml --identities export.yaml
  orgmatch coverage --org org.yaml --identities export.yaml -o json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCoverage(cmd, deps)
		},
	}

	cmd.Flags().StringVarP(&coverageOutput, "output", "o", "", "Output format: text, json, yaml")
	cmd.Flags().StringVar(&coverageOrg, "org", "", "Path to the org structure YAML file")
	cmd.Flags().StringVar(&coverageIdentities, "identities", "", "Path to the external identities YAML file")
	cmd.Flags().StringVar(&coverageDomain, "domain", "", "Email domain for canonical identifiers (overrides config)")
	cmd.MarkFlagRequired("org")
	cmd.MarkFlagRequired("identities")

	return cmd
}

func runCoverage(cmd *cobra.Command, deps *CoverageCommandDeps) error {
	ctx := cmd.Context()

	cfg, err := deps.config()
	if err != nil {
		return fmt.Errorf("loading configuration: %w", err)
	}

	domain := coverageDomain
	if domain == "" {
		domain = cfg.Domain
	}
	if domain == "" {
		return fmt.Errorf("email domain is not set (use --domain or set domain in config)")
	}

	root, err := loadOrgChart(coverageOrg)
	if err != nil {
		return err
	}

	identities, err := loadIdentities(coverageIdentities)
	if err != nil {
		return err
	}

	builder := directory.NewBuilder(domain,
		directory.WithDepartmentRemap(cfg.DepartmentRemap),
		directory.WithBuilderLogger(logging.MustGlobal()),
		directory.WithBuilderMetrics(commandMetrics()),
		directory.WithBuilderTracer(observability.NewTracer()),
	)
	dir, err := builder.Build(ctx, root)
	if err != nil {
		return fmt.Errorf("building directory: %w", err)
	}

	store, err := loadAliasStore(ctx, cfg)
	if err != nil {
		return fmt.Errorf("loading aliases: %w", err)
	}

	_, span := observability.NewTracer().StartCoverageSpan(ctx, dir.Len(), len(identities))
	report, err := coverage.Build(identities, dir, store)
	if err != nil {
		observability.RecordError(span, err)
		span.End()
		return err
	}
	span.End()

	format := resolveFormat(coverageOutput, cfg)
	if format != config.OutputFormatText {
		return printStructured(cmd.OutOrStdout(), format, report)
	}

	fmt.Fprint(cmd.OutOrStdout(), report.String())
	return nil
}
