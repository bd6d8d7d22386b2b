// Package paths resolves the three machine-specific locations a portable
// build plan is parameterized over: the project root, the cargo home
// directory, and the rustc executable. Each has an environment override
// and a discovery fallback.
package paths

import (
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/lczyk/not-quite-cargo/pkg/errors"
	"github.com/lczyk/not-quite-cargo/pkg/logging"
)

// Environment variable names
const (
	// EnvProjectRoot overrides the project root directory
	EnvProjectRoot = "PROJECT_ROOT"

	// EnvCargoHome overrides the cargo home directory
	EnvCargoHome = "CARGO_HOME"

	// EnvRustc overrides the rustc executable path
	EnvRustc = "RUSTC"

	// EnvHome is the standard home directory variable
	EnvHome = "HOME"
)

// DefaultCargoDir is the directory under $HOME holding the toolchain cache
const DefaultCargoDir = ".cargo"

// FindProjectRoot determines the project root: the PROJECT_ROOT environment
// variable if set, otherwise the current working directory.
func FindProjectRoot() (string, error) {
	if root := os.Getenv(EnvProjectRoot); root != "" {
		return expandHome(root), nil
	}

	cwd, err := os.Getwd()
	if err != nil {
		return "", errors.Wrapf(err, errors.ErrFileAccess, "failed to get current directory")
	}
	return cwd, nil
}

// FindCargoHome determines the cargo home: the CARGO_HOME environment
// variable if set, otherwise ~/.cargo.
func FindCargoHome() (string, error) {
	if home := os.Getenv(EnvCargoHome); home != "" {
		return expandHome(home), nil
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		if home := os.Getenv(EnvHome); home != "" {
			return filepath.Join(home, DefaultCargoDir), nil
		}
		return "", errors.Wrapf(err, errors.ErrFileAccess, "failed to get home directory")
	}
	return filepath.Join(homeDir, DefaultCargoDir), nil
}

// FindRustc locates the rustc executable, trying in order: the RUSTC
// environment variable, `rustup which rustc`, a PATH lookup, and finally
// the bare name "rustc" in the hope that the shell can resolve it.
func FindRustc() string {
	logger := logging.GetLogger("paths")

	if path := os.Getenv(EnvRustc); path != "" {
		logger.Debug().Str("rustc", path).Msg("Using rustc from RUSTC environment variable")
		return path
	}

	if rustup, err := exec.LookPath("rustup"); err == nil {
		cmd := exec.Command(rustup, "which", "rustc")
		// Run from / so a rust-toolchain file in cwd cannot redirect the answer
		cmd.Dir = "/"
		if output, err := cmd.Output(); err == nil {
			path := strings.TrimSpace(string(output))
			if path != "" {
				logger.Debug().Str("rustc", path).Msg("Found rustc using rustup")
				return path
			}
		}
	}

	if path, err := exec.LookPath("rustc"); err == nil {
		logger.Debug().Str("rustc", path).Msg("Found rustc in PATH")
		return path
	}

	logger.Warn().Msg("Could not locate rustc, falling back to bare 'rustc'")
	return "rustc"
}

// expandHome expands a leading ~ to the home directory
func expandHome(path string) string {
	if path == "" || path[0] != '~' {
		return path
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		homeDir = os.Getenv(EnvHome)
		if homeDir == "" {
			return path
		}
	}

	if len(path) == 1 {
		return homeDir
	}
	if path[1] == '/' || path[1] == filepath.Separator {
		return filepath.Join(homeDir, path[2:])
	}

	// ~something (not the user's home)
	return path
}

// ExpandHome expands ~ in paths. Exposed for the config layer.
func ExpandHome(path string) string {
	return expandHome(path)
}
