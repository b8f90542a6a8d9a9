// Package main provides the orgmatch CLI entry point.
// orgmatch attributes external SaaS identities to canonical employees
// in an organization directory.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/otherjamesbrown/orgmatch/cmd"
	"github.com/otherjamesbrown/orgmatch/config"
	"github.com/otherjamesbrown/orgmatch/pkg/buildinfo"
	"github.com/otherjamesbrown/orgmatch/pkg/logging"
)

// Global flags and state.
var (
	outputFormat string
	debug        bool

	// cfg holds the loaded configuration.
	cfg *config.CLIConfig
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "orgmatch",
	Short: "Identity resolution for SaaS exports against an org directory",
	Long: `orgmatch builds a canonical employee directory from an org structure
export and attributes noisy external identities (SaaS seat lists, license
exports, access reviews) to the people in it.

COMMON WORKFLOWS:
  Build the directory:  orgmatch directory build --org org.yaml
  Resolve an export:    orgmatch resolve --org org.yaml --identities export.yaml
  Check coverage:       orgmatch coverage --org org.yaml --identities export.yaml
  Curate aliases:       orgmatch alias list  →  orgmatch alias add <ext> <canonical>

DISCOVERY:
  orgmatch <command> --help   Subcommands, flags, and examples for any command`,
	PersistentPreRunE: func(c *cobra.Command, args []string) error {
		// Skip initialization for commands that don't need it.
		if c.Name() == "version" || c.Name() == "help" || c.Name() == "completion" {
			return nil
		}

		// Root flags flow through the environment overlay so every
		// subcommand's config load sees them.
		if outputFormat != "" {
			os.Setenv("ORGMATCH_OUTPUT_FORMAT", outputFormat)
		}
		if debug {
			os.Setenv("ORGMATCH_DEBUG", "1")
		}

		var err error
		cfg, err = config.LoadConfig()
		if err != nil {
			return fmt.Errorf("loading configuration: %w", err)
		}

		logCfg := logging.DefaultConfig()
		logCfg.Component = "orgmatch"
		if cfg.Debug {
			logCfg.Level = logging.LevelDebug
		} else {
			logCfg.Level = logging.LevelWarn
		}
		logging.SetGlobal(logging.NewLogger(logCfg))

		return nil
	},
}

// versionCmd prints version information.
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Long:  `Print the version, commit hash, and build time of the orgmatch CLI.`,
	RunE: func(c *cobra.Command, args []string) error {
		info := buildinfo.Get("orgmatch")
		out := c.OutOrStdout()
		fmt.Fprintf(out, "orgmatch version %s\n", info.Version)
		fmt.Fprintf(out, "  commit:     %s\n", info.Commit)
		fmt.Fprintf(out, "  built:      %s\n", info.BuildTime)
		fmt.Fprintf(out, "  go:         %s\n", info.GoVersion)
		return nil
	},
}

func init() {
	// Global flags.
	rootCmd.PersistentFlags().StringVar(&outputFormat, "output", "", "output format: text, json, yaml")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(cmd.NewDirectoryCommand(nil))
	rootCmd.AddCommand(cmd.NewResolveCommand(nil))
	rootCmd.AddCommand(cmd.NewCoverageCommand(nil))
	rootCmd.AddCommand(cmd.NewAliasCommand(nil))
}

func main() {
	// Set up signal handling for graceful shutdown.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-sigChan
		fmt.Println("\nReceived interrupt signal, shutting down...")
		cancel()
		os.Exit(0)
	}()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
