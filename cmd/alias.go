package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/otherjamesbrown/orgmatch/config"
	"github.com/otherjamesbrown/orgmatch/pkg/alias"
	"github.com/otherjamesbrown/orgmatch/pkg/directory"
	omerrors "github.com/otherjamesbrown/orgmatch/pkg/errors"
	"github.com/otherjamesbrown/orgmatch/pkg/logging"
)

// Alias command flags
var (
	aliasOutput    string
	aliasOrg       string
	aliasDomain    string
	aliasOverwrite bool
)

// AliasCommandDeps holds the dependencies for alias commands.
type AliasCommandDeps struct {
	Config     *config.CLIConfig
	LoadConfig func() (*config.CLIConfig, error)
}

// DefaultAliasDeps returns the default dependencies for production use.
func DefaultAliasDeps() *AliasCommandDeps {
	return &AliasCommandDeps{
		LoadConfig: config.LoadConfig,
	}
}

func (d *AliasCommandDeps) config() (*config.CLIConfig, error) {
	if d.Config != nil {
		return d.Config, nil
	}
	return d.LoadConfig()
}

// NewAliasCommand creates the root alias command with all subcommands.
func NewAliasCommand(deps *AliasCommandDeps) *cobra.Command {
	if deps == nil {
		deps = DefaultAliasDeps()
	}

	cmd := &cobra.Command{
		Use:   "alias",
		Short: "Manage external-to-canonical identity overrides",
		Long: `Manage alias overrides that map external identifiers to canonical ones.

Aliases are consulted before any matching logic runs, so a recorded
alias always wins over exact, variant, and fuzzy resolution. Keys are
normalized (lowercased, whitespace stripped) before lookup.

The backend is selected by alias_backend in the config: a YAML file
under the config directory, a shared PostgreSQL table, or a Redis hash.

Examples:
  orgmatch alias list
  orgmatch alias add jsmith@oldcorp.com john.smith@corp.example.com
  orgmatch alias import overrides.yaml`,
	}

	cmd.PersistentFlags().StringVarP(&aliasOutput, "output", "o", "", "Output format: text, json, yaml")

	cmd.AddCommand(newAliasListCommand(deps))
	cmd.AddCommand(newAliasAddCommand(deps))
	cmd.AddCommand(newAliasImportCommand(deps))

	return cmd
}

// newAliasListCommand creates the 'alias list' subcommand.
func newAliasListCommand(deps *AliasCommandDeps) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all recorded aliases",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := deps.config()
			if err != nil {
				return fmt.Errorf("loading configuration: %w", err)
			}

			store, err := loadAliasStore(cmd.Context(), cfg)
			if err != nil {
				return fmt.Errorf("loading aliases: %w", err)
			}

			out := cmd.OutOrStdout()
			format := resolveFormat(aliasOutput, cfg)
			if format != config.OutputFormatText {
				return printStructured(out, format, store.Entries())
			}

			for _, e := range store.Entries() {
				fmt.Fprintf(out, "%-40s -> %s\n", e.External, e.Canonical)
			}
			fmt.Fprintf(out, "\n%d aliases\n", store.Len())
			return nil
		},
	}
}

// newAliasAddCommand creates the 'alias add' subcommand.
func newAliasAddCommand(deps *AliasCommandDeps) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "add <external> <canonical>",
		Short: "Record one alias override",
		Long: `Record an alias mapping an external identifier to a canonical one.

With --org, the canonical side is checked against the directory built from
that org structure and the add is rejected when it does not exist there.
An existing alias with the same key is only replaced with --overwrite.

Examples:
  orgmatch alias add jsmith@oldcorp.com john.smith@corp.example.com
  orgmatch alias add "J Smith" john.smith@corp.example.com --org org.yaml`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := deps.config()
			if err != nil {
				return fmt.Errorf("loading configuration: %w", err)
			}

			if aliasOrg != "" {
				if err := checkCanonical(cmd.Context(), cfg, args[1]); err != nil {
					return err
				}
			}

			if !aliasOverwrite {
				store, err := loadAliasStore(cmd.Context(), cfg)
				if err != nil {
					return fmt.Errorf("loading aliases: %w", err)
				}
				if store.Has(args[0]) {
					return fmt.Errorf("alias %s: %w (use --overwrite to replace it)", args[0], omerrors.ErrAlreadyExists)
				}
			}

			if err := setAlias(cmd.Context(), cfg, args[0], args[1]); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "alias recorded: %s -> %s\n", args[0], args[1])
			return nil
		},
	}
	cmd.Flags().StringVar(&aliasOrg, "org", "", "Validate the canonical identifier against this org structure YAML")
	cmd.Flags().StringVar(&aliasDomain, "domain", "", "Email domain when validating against --org (overrides config)")
	cmd.Flags().BoolVar(&aliasOverwrite, "overwrite", false, "Replace an existing alias with the same key")
	return cmd
}

// checkCanonical builds the directory from --org and rejects a canonical
// identifier that is not in it.
func checkCanonical(ctx context.Context, cfg *config.CLIConfig, canonical string) error {
	domain := aliasDomain
	if domain == "" {
		domain = cfg.Domain
	}
	if domain == "" {
		return fmt.Errorf("email domain is not set (use --domain or set domain in config)")
	}

	root, err := loadOrgChart(aliasOrg)
	if err != nil {
		return err
	}

	builder := directory.NewBuilder(domain,
		directory.WithDepartmentRemap(cfg.DepartmentRemap),
		directory.WithBuilderLogger(logging.MustGlobal()),
	)
	dir, err := builder.Build(ctx, root)
	if err != nil {
		return fmt.Errorf("building directory: %w", err)
	}

	if !dir.Contains(alias.Normalize(canonical)) {
		return fmt.Errorf("canonical identifier %s is not in the directory", canonical)
	}
	return nil
}

// newAliasImportCommand creates the 'alias import' subcommand.
func newAliasImportCommand(deps *AliasCommandDeps) *cobra.Command {
	return &cobra.Command{
		Use:   "import <file>",
		Short: "Import aliases from a YAML mapping file",
		Long: `Import aliases from a YAML file mapping external to canonical identifiers.

The file is a flat mapping:

  jsmith@oldcorp.com: john.smith@corp.example.com
  "J Smith": john.smith@corp.example.com

Existing aliases with the same key are overwritten.

Examples:
  orgmatch alias import overrides.yaml`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := deps.config()
			if err != nil {
				return fmt.Errorf("loading configuration: %w", err)
			}

			data, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("reading alias import file: %w", err)
			}

			var raw map[string]string
			if err := yaml.Unmarshal(data, &raw); err != nil {
				return fmt.Errorf("parsing alias import file %s: %w", args[0], err)
			}

			for external, canonical := range raw {
				if err := setAlias(cmd.Context(), cfg, external, canonical); err != nil {
					return fmt.Errorf("recording alias %s: %w", external, err)
				}
			}

			fmt.Fprintf(cmd.OutOrStdout(), "imported %d aliases\n", len(raw))
			return nil
		},
	}
}
