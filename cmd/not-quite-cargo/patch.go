package main

import (
	"github.com/spf13/cobra"

	"github.com/lczyk/not-quite-cargo/pkg/config"
	"github.com/lczyk/not-quite-cargo/pkg/logging"
	"github.com/lczyk/not-quite-cargo/pkg/paths"
	"github.com/lczyk/not-quite-cargo/pkg/placeholder"
	"github.com/lczyk/not-quite-cargo/pkg/plan"
)

var patchCmd = &cobra.Command{
	Use:   "patch <build-plan.json>",
	Short: "Make a captured build plan portable",
	Long: `Patch rewrites a captured Cargo build plan in place: machine specific
paths become symbolic placeholders, captured Cargo bookkeeping environment
variables are dropped, and terminal-dependent arguments are stripped. The
patched plan can be replayed on another machine with the run command.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		logger := logging.GetLogger("cmd.patch")
		planPath := args[0]

		set, err := resolveSet()
		if err != nil {
			return err
		}

		logger.Debug().
			Str("projectRoot", set.ProjectRoot).
			Str("cargoHome", set.CargoHome).
			Str("rustc", set.Rustc).
			Msg("Resolved placeholder sources")

		doc, err := plan.LoadDocument(planPath)
		if err != nil {
			return err
		}

		doc.Patch(set)

		if err := doc.Save(); err != nil {
			return err
		}

		logger.Info().Str("plan", planPath).Msg("Patched build plan")
		return nil
	},
}

// resolveSet builds the placeholder set from the environment, the project
// configuration, and discovery.
func resolveSet() (set placeholder.Set, err error) {
	projectRoot, err := paths.FindProjectRoot()
	if err != nil {
		return set, err
	}

	cfg, err := config.Load(projectRoot)
	if err != nil {
		return set, err
	}

	return paths.ResolvePlaceholders(paths.Overrides{
		ProjectRoot: cfg.Placeholders.ProjectRoot,
		CargoHome:   cfg.Placeholders.CargoHome,
		Rustc:       cfg.Placeholders.Rustc,
	})
}
