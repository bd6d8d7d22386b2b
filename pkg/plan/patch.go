package plan

import (
	"strings"

	"github.com/lczyk/not-quite-cargo/pkg/logging"
	"github.com/lczyk/not-quite-cargo/pkg/placeholder"
)

// Environment variables stripped from every invocation during patching.
// CARGO points at the orchestrator that produced the plan; the other three
// are re-injected with replay-host values at run time.
var droppedEnvVars = []string{"CARGO", "PROJECT_ROOT", "CARGO_HOME", "RUSTC"}

// diagnosticWidthPrefix marks terminal-width arguments that are
// capture-host specific and meaningless on replay.
const diagnosticWidthPrefix = "--diagnostic-width"

// Patch rewrites the document in place from literal to portable form:
// orchestrator-specific env entries and arguments are dropped, the program
// field is rewritten to the rustc token when it matches the resolved
// compiler, and every remaining literal path becomes a symbolic token. The
// rustc literal is never substituted into the persisted document.
func (d *Document) Patch(set placeholder.Set) {
	logger := logging.GetLogger("plan.patch")

	invocations := d.invocations()
	for i, raw := range invocations {
		inv, ok := raw.(map[string]interface{})
		if !ok {
			logger.Warn().Int("invocation", i).Msg("Skipping invocation with unexpected shape")
			continue
		}

		if env, ok := inv["env"].(map[string]interface{}); ok {
			for _, name := range droppedEnvVars {
				delete(env, name)
			}
		}

		if args, ok := inv["args"].([]interface{}); ok {
			kept := make([]interface{}, 0, len(args))
			for _, arg := range args {
				if s, ok := arg.(string); ok && strings.HasPrefix(s, diagnosticWidthPrefix) {
					continue
				}
				kept = append(kept, arg)
			}
			inv["args"] = kept
		}

		// Must happen before the textual pass: if rustc lives under the
		// cargo home, the restore pairs would mangle the literal first.
		if program, ok := inv["program"].(string); ok && program == set.Rustc {
			inv["program"] = placeholder.TokenRustc
		}

		invocations[i] = inv
	}

	patched := placeholder.Apply(d.root, set.Restore())
	d.root = patched.(map[string]interface{})

	logger.Debug().
		Int("invocations", len(invocations)).
		Msg("Patched build plan to portable form")
}
