// Package config loads layered settings: embedded defaults, an optional
// project-root config file (TOML or YAML), then NQC_-prefixed environment
// variables. The bare PROJECT_ROOT, CARGO_HOME, and RUSTC variables are NOT
// handled here; they are the capture-convention override channel and are
// resolved above configuration in pkg/paths.
package config

import (
	_ "embed"
	stderrors "errors"

	"github.com/lczyk/not-quite-cargo/pkg/errors"
)

//go:embed embedded/defaults.toml
var defaultConfig []byte

// Config is the fully merged configuration tree. The toml and yaml tags
// keep Dump output round-trippable as a project config file.
type Config struct {
	Placeholders PlaceholdersConfig `koanf:"placeholders" toml:"placeholders" yaml:"placeholders"`
	Logging      LoggingConfig      `koanf:"logging" toml:"logging" yaml:"logging"`
}

// PlaceholdersConfig overrides placeholder-source discovery. Empty values
// mean the usual discovery runs (cwd, ~/.cargo, rustup/PATH).
type PlaceholdersConfig struct {
	ProjectRoot string `koanf:"project_root" toml:"project_root" yaml:"project_root"`
	CargoHome   string `koanf:"cargo_home" toml:"cargo_home" yaml:"cargo_home"`
	Rustc       string `koanf:"rustc" toml:"rustc" yaml:"rustc"`
}

// LoggingConfig controls the baseline log level and output format. The -v
// flag raises the level above whatever is configured here.
type LoggingConfig struct {
	Level  string `koanf:"level" toml:"level" yaml:"level"`
	Format string `koanf:"format" toml:"format" yaml:"format"`
}

// rawBytesProvider implements koanf's Provider over an in-memory byte slice.
type rawBytesProvider struct{ bytes []byte }

func (r *rawBytesProvider) ReadBytes() ([]byte, error) { return r.bytes, nil }
func (r *rawBytesProvider) Read() (map[string]interface{}, error) {
	return nil, stderrors.New("not implemented")
}

// Verbosity maps the configured level name to the -v count the logger
// understands. Unknown names fall back to the default level with an error
// so a typo in a config file is not silently swallowed.
func (l LoggingConfig) Verbosity() (int, error) {
	switch l.Level {
	case "", "info":
		return 0, nil
	case "debug":
		return 1, nil
	case "trace":
		return 2, nil
	default:
		return 0, errors.Newf(errors.ErrConfigParse, "unknown logging level %q", l.Level)
	}
}
