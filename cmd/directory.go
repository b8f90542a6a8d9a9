package cmd

import (
	"context"
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/otherjamesbrown/orgmatch/config"
	"github.com/otherjamesbrown/orgmatch/pkg/directory"
	"github.com/otherjamesbrown/orgmatch/pkg/logging"
	"github.com/otherjamesbrown/orgmatch/pkg/observability"
)

// Directory command flags
var (
	directoryOutput string
	directoryDomain string
	directoryOrg    string
)

// DirectoryCommandDeps holds the dependencies for directory commands.
type DirectoryCommandDeps struct {
	Config     *config.CLIConfig
	LoadConfig func() (*config.CLIConfig, error)
}

// DefaultDirectoryDeps returns the default dependencies for production use.
func DefaultDirectoryDeps() *DirectoryCommandDeps {
	return &DirectoryCommandDeps{
		LoadConfig: config.LoadConfig,
	}
}

func (d *DirectoryCommandDeps) config() (*config.CLIConfig, error) {
	if d.Config != nil {
		return d.Config, nil
	}
	return d.LoadConfig()
}

// NewDirectoryCommand creates the root directory command with all subcommands.
func NewDirectoryCommand(deps *DirectoryCommandDeps) *cobra.Command {
	if deps == nil {
		deps = DefaultDirectoryDeps()
	}

	cmd := &cobra.Command{
		Use:   "directory",
		Short: "Build and inspect the canonical employee directory",
		Long: `Build the canonical employee directory from an org structure export.

Every person in the org chart is assigned a unique canonical email
identifier under the configured domain. When two people would claim the
same identifier, later claimants fall back to dotted, initialed, or
numbered forms so the directory never contains duplicates.

Examples:
  orgmatch directory build --org org.yaml
  orgmatch directory build --org org.yaml --domain corp.example.com -o json
  orgmatch directory headcount --org org.yaml`,
	}

	cmd.PersistentFlags().StringVarP(&directoryOutput, "output", "o", "", "Output format: text, json, yaml")
	cmd.PersistentFlags().StringVar(&directoryOrg, "org", "", "Path to the org structure YAML file")
	cmd.PersistentFlags().StringVar(&directoryDomain, "domain", "", "Email domain for canonical identifiers (overrides config)")

	cmd.AddCommand(newDirectoryBuildCommand(deps))
	cmd.AddCommand(newDirectoryHeadcountCommand(deps))

	return cmd
}

// newDirectoryBuildCommand creates the 'directory build' subcommand.
func newDirectoryBuildCommand(deps *DirectoryCommandDeps) *cobra.Command {
	return &cobra.Command{
		Use:   "build",
		Short: "Build the directory and list every canonical identifier",
		Long: `Build the directory from the org structure and print every entry
with its canonical identifier, department, and team.

Examples:
  orgmatch directory build --org org.yaml
  orgmatch directory build --org org.yaml -o json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, cfg, err := buildDirectory(cmd.Context(), deps)
			if err != nil {
				return err
			}
			return outputDirectory(cmd, resolveFormat(directoryOutput, cfg), dir)
		},
	}
}

// newDirectoryHeadcountCommand creates the 'directory headcount' subcommand.
func newDirectoryHeadcountCommand(deps *DirectoryCommandDeps) *cobra.Command {
	return &cobra.Command{
		Use:   "headcount",
		Short: "Show headcount grouped by department",
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, cfg, err := buildDirectory(cmd.Context(), deps)
			if err != nil {
				return err
			}
			return outputHeadcount(cmd, resolveFormat(directoryOutput, cfg), dir)
		},
	}
}

// buildDirectory loads the org chart and builds the directory using the
// configured domain and department remap.
func buildDirectory(ctx context.Context, deps *DirectoryCommandDeps) (*directory.Directory, *config.CLIConfig, error) {
	cfg, err := deps.config()
	if err != nil {
		return nil, nil, fmt.Errorf("loading configuration: %w", err)
	}

	if directoryOrg == "" {
		return nil, nil, fmt.Errorf("--org is required")
	}

	domain := directoryDomain
	if domain == "" {
		domain = cfg.Domain
	}
	if domain == "" {
		return nil, nil, fmt.Errorf("email domain is not set (use --domain or set domain in config)")
	}

	root, err := loadOrgChart(directoryOrg)
	if err != nil {
		return nil, nil, err
	}

	builder := directory.NewBuilder(domain,
		directory.WithDepartmentRemap(cfg.DepartmentRemap),
		directory.WithBuilderLogger(logging.MustGlobal()),
		directory.WithBuilderMetrics(commandMetrics()),
		directory.WithBuilderTracer(observability.NewTracer()),
	)

	dir, err := builder.Build(ctx, root)
	if err != nil {
		return nil, nil, fmt.Errorf("building directory: %w", err)
	}
	return dir, cfg, nil
}

func outputDirectory(cmd *cobra.Command, format config.OutputFormat, dir *directory.Directory) error {
	out := cmd.OutOrStdout()

	if format != config.OutputFormatText {
		return printStructured(out, format, dir.Entries())
	}

	for _, e := range dir.Entries() {
		fmt.Fprintf(out, "%-40s %s", e.ID, e.DisplayName)
		if e.Department != directory.UnknownDepartment {
			fmt.Fprintf(out, "  [%s]", e.Department)
		}
		if e.Team != "" {
			fmt.Fprintf(out, " (%s)", e.Team)
		}
		fmt.Fprintln(out)
	}
	fmt.Fprintf(out, "\n%d entries\n", dir.Len())
	return nil
}

func outputHeadcount(cmd *cobra.Command, format config.OutputFormat, dir *directory.Directory) error {
	out := cmd.OutOrStdout()
	counts := dir.HeadcountByDepartment()

	if format != config.OutputFormatText {
		return printStructured(out, format, counts)
	}

	departments := make([]string, 0, len(counts))
	for dept := range counts {
		departments = append(departments, dept)
	}
	sort.Strings(departments)

	for _, dept := range departments {
		fmt.Fprintf(out, "%-30s %d\n", dept, counts[dept])
	}
	fmt.Fprintf(out, "\n%d people across %d departments\n", dir.Len(), len(departments))
	return nil
}
