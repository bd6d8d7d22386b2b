package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/lczyk/not-quite-cargo/pkg/errors"
)

// EnvPrefix namespaces the environment override channel, e.g.
// NQC_LOGGING_LEVEL=debug or NQC_PLACEHOLDERS_CARGO_HOME=/opt/cargo.
const EnvPrefix = "NQC_"

// Config file names probed in the project root, first hit wins. A hidden
// TOML file is the canonical form; YAML is accepted for projects that keep
// their tooling config in one dialect.
var configFileNames = []string{
	".not-quite-cargo.toml",
	"not-quite-cargo.toml",
	".not-quite-cargo.yaml",
	"not-quite-cargo.yaml",
}

// Load builds the merged configuration for a run rooted at projectRoot.
// Layers, lowest priority first: embedded defaults, project config file,
// NQC_-prefixed environment variables.
func Load(projectRoot string) (*Config, error) {
	k := koanf.New(".")

	// 1. Embedded defaults
	if err := k.Load(&rawBytesProvider{bytes: defaultConfig}, toml.Parser()); err != nil {
		return nil, errors.Wrap(err, errors.ErrConfigLoad, "failed to load default configuration")
	}

	// 2. Project config file, if present
	for _, name := range configFileNames {
		path := filepath.Join(projectRoot, name)
		if _, err := os.Stat(path); err != nil {
			continue
		}
		if err := k.Load(file.Provider(path), parserFor(path)); err != nil {
			return nil, errors.Wrapf(err, errors.ErrConfigParse,
				"failed to parse config file %s", path)
		}
		break
	}

	// 3. Environment overrides. Only the first underscore separates the
	// section from the key, so NQC_PLACEHOLDERS_PROJECT_ROOT maps to
	// placeholders.project_root.
	err := k.Load(env.Provider(EnvPrefix, ".", func(s string) string {
		return strings.Replace(strings.ToLower(strings.TrimPrefix(s, EnvPrefix)), "_", ".", 1)
	}), nil)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrConfigLoad, "failed to load environment overrides")
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, errors.Wrap(err, errors.ErrConfigParse, "failed to unmarshal configuration")
	}
	return &cfg, nil
}

// parserFor picks the koanf parser by file extension. Anything that is not
// YAML is treated as TOML.
func parserFor(path string) koanf.Parser {
	switch filepath.Ext(path) {
	case ".yaml", ".yml":
		return yaml.Parser()
	default:
		return toml.Parser()
	}
}
