package main

import (
	"github.com/spf13/cobra"

	"github.com/lczyk/not-quite-cargo/pkg/executor"
	"github.com/lczyk/not-quite-cargo/pkg/logging"
	"github.com/lczyk/not-quite-cargo/pkg/plan"
	"github.com/lczyk/not-quite-cargo/pkg/resolver"
)

var runCmd = &cobra.Command{
	Use:   "run <build-plan.json>",
	Short: "Replay a patched build plan",
	Long: `Run replays a patched build plan on this machine: placeholders are
expanded with locally resolved paths, invocations are ordered by their
dependencies, and each is executed in turn. Build script output is parsed
for directives and fed to later invocations of the same package.

The plan file itself is not modified.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		logger := logging.GetLogger("cmd.run")
		planPath := args[0]

		set, err := resolveSet()
		if err != nil {
			return err
		}

		logger.Debug().
			Str("projectRoot", set.ProjectRoot).
			Str("cargoHome", set.CargoHome).
			Str("rustc", set.Rustc).
			Msg("Resolved placeholder values")

		exec := executor.New(set)
		if err := exec.ProbeCompiler(); err != nil {
			return err
		}

		doc, err := plan.LoadDocument(planPath)
		if err != nil {
			return err
		}

		invocations, err := doc.Rehydrate(set)
		if err != nil {
			return err
		}
		logger.Info().Int("invocations", len(invocations)).Str("plan", planPath).Msg("Loaded build plan")

		ordered, err := resolver.Order(invocations)
		if err != nil {
			return err
		}

		return exec.Execute(ordered)
	},
}
