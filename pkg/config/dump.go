package config

import (
	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/lczyk/not-quite-cargo/pkg/errors"
)

// Output dialects accepted by Dump.
const (
	DumpTOML = "toml"
	DumpYAML = "yaml"
)

// Dump renders the effective configuration in the requested dialect. The
// output is valid input for a project config file, so a run's settings can
// be frozen by piping them into .not-quite-cargo.toml.
func (c *Config) Dump(format string) (string, error) {
	switch format {
	case DumpTOML, "":
		data, err := toml.Marshal(c)
		if err != nil {
			return "", errors.Wrap(err, errors.ErrInternal, "failed to render configuration as TOML")
		}
		return string(data), nil
	case DumpYAML:
		data, err := yaml.Marshal(c)
		if err != nil {
			return "", errors.Wrap(err, errors.ErrInternal, "failed to render configuration as YAML")
		}
		return string(data), nil
	default:
		return "", errors.Newf(errors.ErrInvalidInput, "unknown dump format %q", format)
	}
}
