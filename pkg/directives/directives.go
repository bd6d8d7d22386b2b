// Package directives interprets the captured standard output of a build
// script into the extra compiler flags and environment variables the real
// toolchain would apply to later invocations of the same package.
//
// See https://doc.rust-lang.org/cargo/reference/build-scripts.html for the
// directive contract being emulated.
package directives

import (
	"strings"

	"github.com/lczyk/not-quite-cargo/pkg/logging"
	"github.com/rs/zerolog"
)

// Prefix marks the stdout lines a build script addresses to the toolchain.
const Prefix = "cargo:"

// Directive keys with a one-shot-replay meaning. Rerun conditions are
// irrelevant here: the plan is replayed exactly once.
const (
	keyRerunIfChanged    = "rerun-if-changed"
	keyRerunIfEnvChanged = "rerun-if-env-changed"
	keyRustcCfg          = "rustc-cfg"
	keyRustcCheckCfg     = "rustc-check-cfg"
	keyRustcLinkLib      = "rustc-link-lib"
	keyRustcLinkArg      = "rustc-link-arg"
	keyRustcLinkSearch   = "rustc-link-search"
	keyRustcEnv          = "rustc-env"
)

// Flag is one (compiler flag, value) pair emitted by a build script.
type Flag struct {
	Name  string
	Value string
}

// Directives is the structured result of parsing one build script's output:
// an ordered flag list and an environment overlay, both applied to every
// later invocation of the script's package.
type Directives struct {
	Flags []Flag
	Env   map[string]string
}

// Parse interprets the raw stdout of a run-custom-build invocation.
// Malformed or unrecognized lines are logged and skipped; parsing never
// fails the run.
func Parse(output string) *Directives {
	logger := logging.GetLogger("directives")

	d := &Directives{
		Flags: []Flag{},
		Env:   make(map[string]string),
	}

	for _, line := range strings.Split(output, "\n") {
		line = strings.TrimSpace(line)
		if !strings.HasPrefix(line, Prefix) {
			// Build scripts may print anything; only the prefix speaks to us
			continue
		}
		rest := strings.TrimPrefix(line, Prefix)

		key, value, found := strings.Cut(rest, "=")
		if !found {
			logger.Warn().Str("line", rest).Msg("Malformed build script output line (no '=')")
			continue
		}

		switch key {
		case keyRerunIfChanged, keyRerunIfEnvChanged:
			// Rerun conditions have no effect on a one-shot replay
		case keyRustcCfg:
			d.Flags = append(d.Flags, Flag{Name: "--cfg", Value: value})
		case keyRustcCheckCfg:
			d.Flags = append(d.Flags, Flag{Name: "--check-cfg", Value: value})
		case keyRustcLinkLib:
			d.Flags = append(d.Flags, Flag{Name: "-l", Value: value})
		case keyRustcLinkArg:
			d.Flags = append(d.Flags, Flag{Name: "-C", Value: "link-arg=" + value})
		case keyRustcLinkSearch:
			d.Flags = append(d.Flags, parseLinkSearch(value, logger))
		case keyRustcEnv:
			name, envValue, found := strings.Cut(value, "=")
			if !found {
				logger.Warn().Str("line", rest).Msg("Malformed rustc-env directive (no '=')")
				continue
			}
			d.Env[name] = envValue
		default:
			logger.Warn().Str("line", rest).Msg("Unknown build script output line")
		}
	}

	return d
}

// parseLinkSearch handles the optional kind prefix of rustc-link-search.
// Only the "native" kind is unwrapped; unrecognized kinds pass through
// unchanged with a warning.
func parseLinkSearch(value string, logger zerolog.Logger) Flag {
	kind, path, found := strings.Cut(value, "=")
	if !found {
		return Flag{Name: "-L", Value: value}
	}
	if kind == "native" {
		return Flag{Name: "-L", Value: path}
	}
	logger.Warn().
		Str("kind", kind).
		Str("value", value).
		Msg("Unknown rustc-link-search kind, passing through unchanged")
	return Flag{Name: "-L", Value: value}
}

// Apply extends an argument list with the recorded flags and merges the
// recorded environment variables into env. The returned slice is the new
// argument list; env is mutated in place.
func (d *Directives) Apply(args []string, env map[string]string) []string {
	for _, flag := range d.Flags {
		args = append(args, flag.Name, flag.Value)
	}
	for name, value := range d.Env {
		env[name] = value
	}
	return args
}

// IsEmpty reports whether the build script emitted nothing applicable.
func (d *Directives) IsEmpty() bool {
	return len(d.Flags) == 0 && len(d.Env) == 0
}
