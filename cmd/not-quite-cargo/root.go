package main

import (
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/lczyk/not-quite-cargo/internal/version"
	"github.com/lczyk/not-quite-cargo/pkg/config"
	"github.com/lczyk/not-quite-cargo/pkg/logging"
	"github.com/lczyk/not-quite-cargo/pkg/paths"
)

var (
	verbosity int
	logFormat string

	rootCmd = &cobra.Command{
		Use:   "not-quite-cargo",
		Short: "Replay captured Cargo build plans",
		Long: `not-quite-cargo patches captured Cargo build plans into a portable form
and replays them on machines where Cargo itself is unavailable. Machine
specific paths are substituted with symbolic placeholders at patch time and
resolved back at run time.`,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			level, format := effectiveLogging(cmd)
			logging.SetupLogger(level, format)
			log.Debug().Str("command", cmd.Name()).Msg("Command started")
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}
)

// Execute runs the root command. Called once from main.
func Execute() error {
	return rootCmd.Execute()
}

// effectiveLogging combines the configured logging baseline with the
// command-line flags: -v only ever raises the level above the config file's
// baseline, and --log-format wins over the configured format when given
// explicitly. Configuration problems here are deferred to the command
// itself, which loads the config again and reports properly.
func effectiveLogging(cmd *cobra.Command) (int, string) {
	level := verbosity
	format := logFormat

	projectRoot, err := paths.FindProjectRoot()
	if err != nil {
		return level, format
	}
	cfg, err := config.Load(projectRoot)
	if err != nil {
		return level, format
	}

	if baseline, err := cfg.Logging.Verbosity(); err == nil && baseline > level {
		level = baseline
	}
	if !cmd.Root().PersistentFlags().Changed("log-format") && cfg.Logging.Format != "" {
		format = cfg.Logging.Format
	}
	return level, format
}

func init() {
	rootCmd.PersistentFlags().CountVarP(&verbosity, "verbose", "v", "Increase verbosity (-v DEBUG, -vv TRACE)")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", logging.FormatConsole, "Log output format (console or json)")

	configCmd.Flags().StringVar(&configDumpFormat, "format", config.DumpTOML, "Output format (toml or yaml)")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(completionCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(patchCmd)
	rootCmd.AddCommand(runCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Long:  `Print version information for not-quite-cargo`,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("not-quite-cargo version %s\n", version.Version)
		fmt.Printf("  commit: %s\n", version.Commit)
		fmt.Printf("  built:  %s\n", version.Date)
	},
}

var completionCmd = &cobra.Command{
	Use:   "completion [bash|zsh|fish|powershell]",
	Short: "Generate shell completion script",
	Long: `To load completions:

Bash:
  $ source <(not-quite-cargo completion bash)

Zsh:
  $ not-quite-cargo completion zsh > "${fpath[1]}/_not-quite-cargo"

Fish:
  $ not-quite-cargo completion fish | source

PowerShell:
  PS> not-quite-cargo completion powershell | Out-String | Invoke-Expression
`,
	DisableFlagsInUseLine: true,
	ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
	Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
	Run: func(cmd *cobra.Command, args []string) {
		switch args[0] {
		case "bash":
			if err := cmd.Root().GenBashCompletion(cmd.OutOrStdout()); err != nil {
				log.Error().Err(err).Msg("Failed to generate bash completion")
			}
		case "zsh":
			if err := cmd.Root().GenZshCompletion(cmd.OutOrStdout()); err != nil {
				log.Error().Err(err).Msg("Failed to generate zsh completion")
			}
		case "fish":
			if err := cmd.Root().GenFishCompletion(cmd.OutOrStdout(), true); err != nil {
				log.Error().Err(err).Msg("Failed to generate fish completion")
			}
		case "powershell":
			if err := cmd.Root().GenPowerShellCompletionWithDesc(cmd.OutOrStdout()); err != nil {
				log.Error().Err(err).Msg("Failed to generate powershell completion")
			}
		}
	},
}

var configDumpFormat string

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Print the effective configuration",
	Long: `Print the merged configuration (defaults, project config file,
NQC_ environment overrides) in a form that can be saved as a project
config file.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		projectRoot, err := paths.FindProjectRoot()
		if err != nil {
			return err
		}

		cfg, err := config.Load(projectRoot)
		if err != nil {
			return err
		}

		out, err := cfg.Dump(configDumpFormat)
		if err != nil {
			return err
		}
		fmt.Fprint(cmd.OutOrStdout(), out)
		return nil
	},
}
