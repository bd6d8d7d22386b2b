package paths

import (
	"os"

	"github.com/lczyk/not-quite-cargo/pkg/placeholder"
)

// Overrides carries configuration-file values for the placeholder sources.
// Empty fields mean no override.
type Overrides struct {
	ProjectRoot string
	CargoHome   string
	Rustc       string
}

// ResolvePlaceholders builds the resolved placeholder set for a run. Each
// value comes from its environment variable first, the configuration
// override second, and discovery last. The environment stays on top so the
// capture convention (PROJECT_ROOT=... not-quite-cargo run) always wins.
func ResolvePlaceholders(o Overrides) (placeholder.Set, error) {
	var set placeholder.Set

	if os.Getenv(EnvProjectRoot) == "" && o.ProjectRoot != "" {
		set.ProjectRoot = expandHome(o.ProjectRoot)
	} else {
		root, err := FindProjectRoot()
		if err != nil {
			return set, err
		}
		set.ProjectRoot = root
	}

	if os.Getenv(EnvCargoHome) == "" && o.CargoHome != "" {
		set.CargoHome = expandHome(o.CargoHome)
	} else {
		home, err := FindCargoHome()
		if err != nil {
			return set, err
		}
		set.CargoHome = home
	}

	if os.Getenv(EnvRustc) == "" && o.Rustc != "" {
		set.Rustc = expandHome(o.Rustc)
	} else {
		set.Rustc = FindRustc()
	}

	return set, nil
}
