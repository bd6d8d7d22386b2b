// Package executor drives a resolved build plan: it prepares output
// directories, assembles each invocation's command line and environment,
// runs the external process, creates declared symbolic links, and
// propagates build-script directives to later invocations of the same
// package.
//
// Execution is strictly sequential. Directive propagation and log ordering
// depend on a single well-defined timeline, so no invocation starts before
// its predecessor's process has exited and its outputs, links, and
// directives have been finalized.
package executor

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/rs/zerolog"

	"github.com/lczyk/not-quite-cargo/pkg/directives"
	"github.com/lczyk/not-quite-cargo/pkg/errors"
	"github.com/lczyk/not-quite-cargo/pkg/logging"
	"github.com/lczyk/not-quite-cargo/pkg/placeholder"
	"github.com/lczyk/not-quite-cargo/pkg/plan"
)

// EnvOutDir is the build-script output directory variable; when present in
// an assembled environment the directory is created before launch.
const EnvOutDir = "OUT_DIR"

// Executor replays invocations in resolved order. It owns the per-run
// package→directives table; the table lives only for one Execute call and
// is never persisted.
type Executor struct {
	set        placeholder.Set
	runner     CommandRunner
	directives map[string]*directives.Directives
	logger     zerolog.Logger
}

// New creates an Executor that runs real processes.
func New(set placeholder.Set) *Executor {
	return NewWithRunner(set, execRunner{})
}

// NewWithRunner creates an Executor with a custom CommandRunner.
func NewWithRunner(set placeholder.Set, runner CommandRunner) *Executor {
	return &Executor{
		set:        set,
		runner:     runner,
		directives: make(map[string]*directives.Directives),
		logger:     logging.GetLogger("executor"),
	}
}

// ProbeCompiler verifies the resolved compiler is invocable by running a
// version probe, and logs the reported version.
func (e *Executor) ProbeCompiler() error {
	result, err := e.runner.Run(e.set.Rustc, []string{"-vV"}, os.Environ(), "")
	if err != nil {
		return errors.Wrapf(err, errors.ErrCompilerProbe,
			"failed to invoke %s", e.restoreForLog(e.set.Rustc))
	}
	if result.ExitCode != 0 {
		e.logger.Error().Str("stdout", result.Stdout).Str("stderr", result.Stderr).
			Msg("Compiler version probe failed")
		return errors.Newf(errors.ErrCompilerProbe,
			"%s -vV exited with status %d", e.restoreForLog(e.set.Rustc), result.ExitCode)
	}

	version := strings.SplitN(strings.TrimSpace(result.Stdout), "\n", 2)[0]
	e.logger.Info().Str("version", version).Msg("{{RUSTC}} version")
	return nil
}

// Execute runs every invocation in the given (already resolved) order.
// The first failure aborts the run; outputs of completed invocations are
// left in place.
func (e *Executor) Execute(invocations []plan.Invocation) error {
	if err := e.prepareOutputDirs(invocations); err != nil {
		return err
	}

	total := len(invocations)
	for i, inv := range invocations {
		if err := e.runOne(inv, i+1, total); err != nil {
			return err
		}
	}

	e.logger.Info().Int("invocations", total).Msg("Build plan execution complete")
	return nil
}

// prepareOutputDirs creates every directory implied by declared outputs.
// Creation is recursive and idempotent; invocations whose outputs share a
// parent simply find it already present.
func (e *Executor) prepareOutputDirs(invocations []plan.Invocation) error {
	dirs := make(map[string]bool)
	for _, inv := range invocations {
		for _, output := range inv.Outputs {
			dirs[filepath.Dir(output)] = true
		}
	}

	for dir := range dirs {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return errors.Wrapf(err, errors.ErrDirCreate,
				"failed to create output directory %s", e.restoreForLog(dir))
		}
	}
	return nil
}

// runOne walks a single invocation through assemble, launch, link
// post-processing, and directive capture.
func (e *Executor) runOne(inv plan.Invocation, position, total int) error {
	args, env := e.assemble(inv)

	if outDir, ok := env[EnvOutDir]; ok {
		if err := os.MkdirAll(outDir, 0755); err != nil {
			return errors.Wrapf(err, errors.ErrDirCreate,
				"failed to create OUT_DIR %s", e.restoreForLog(outDir))
		}
	}

	e.logger.Info().
		Str("program", e.restoreForLog(inv.Program)).
		Str("package", inv.PackageName).
		Str("version", inv.PackageVersion).
		Msgf("(%d/%d) Running invocation", position, total)

	if inv.IsCustomBuild() {
		switch inv.CompileMode {
		case plan.CompileModeBuild:
			e.logger.Info().Msg("This invocation is compiling a custom build script")
		case plan.CompileModeRunCustomBuild:
			e.logger.Info().Msg("This invocation is running a custom build script")
		default:
			e.logger.Warn().Str("compileMode", inv.CompileMode).
				Msg("Unknown compile mode for custom-build invocation")
		}
	}

	e.logger.Debug().
		Str("command", e.restoreForLog(inv.Program+" "+strings.Join(extraEscape(args), " "))).
		Str("cwd", e.restoreForLog(inv.Cwd)).
		Interface("env", inv.Env).
		Msg("Invoking")

	result, err := e.runner.Run(inv.Program, args, flattenEnv(env), inv.Cwd)
	if err != nil {
		return errors.Wrapf(err, errors.ErrProcessStart,
			"failed to run %s", e.restoreForLog(inv.Program))
	}

	if result.ExitCode != 0 {
		e.logger.Error().Msgf("stdout:\n%s", result.Stdout)
		e.logger.Error().Msgf("stderr:\n%s", result.Stderr)
		e.logger.Error().Int("exitStatus", result.ExitCode).Msg("Command failed")
		return errors.Newf(errors.ErrProcessExit,
			"%s exited with status %d", e.restoreForLog(inv.Program), result.ExitCode).
			WithExitStatus(result.ExitCode)
	}

	if err := e.createLinks(inv); err != nil {
		return err
	}

	if inv.RunsBuildScript() {
		d := directives.Parse(result.Stdout)
		e.directives[inv.PackageName] = d
		if !d.IsEmpty() {
			e.logger.Debug().
				Str("package", inv.PackageName).
				Int("flags", len(d.Flags)).
				Int("envVars", len(d.Env)).
				Msg("Captured build script directives")
		}
	}

	return nil
}

// assemble builds the final argument list and environment: base process
// environment, the invocation's captured overlay, the resolved placeholder
// values re-injected by name, then any directives recorded for this
// invocation's package.
func (e *Executor) assemble(inv plan.Invocation) ([]string, map[string]string) {
	args := make([]string, len(inv.Args))
	copy(args, inv.Args)

	env := environMap(os.Environ())
	for name, value := range inv.Env {
		env[name] = value
	}
	for name, value := range e.set.Env() {
		env[name] = value
	}

	if d, ok := e.directives[inv.PackageName]; ok {
		args = d.Apply(args, env)
	}

	return args, env
}

// createLinks materializes the invocation's declared symbolic links. An
// existing entry at a link path is removed with a warning; any creation
// failure is fatal to the run.
func (e *Executor) createLinks(inv plan.Invocation) error {
	links := make([]string, 0, len(inv.Links))
	for link := range inv.Links {
		links = append(links, link)
	}
	sort.Strings(links)

	for _, link := range links {
		target := inv.Links[link]

		if _, err := os.Lstat(link); err == nil {
			e.logger.Warn().
				Str("link", e.restoreForLog(link)).
				Msg("Link already exists, overwriting")
			if err := os.Remove(link); err != nil {
				return errors.Wrapf(err, errors.ErrSymlinkCreate,
					"failed to remove existing entry at %s", e.restoreForLog(link))
			}
		}

		if err := os.Symlink(target, link); err != nil {
			return errors.Wrapf(err, errors.ErrSymlinkCreate,
				"failed to create symlink %s -> %s", e.restoreForLog(link), e.restoreForLog(target))
		}

		e.logger.Info().
			Str("link", e.restoreForLog(link)).
			Str("target", e.restoreForLog(target)).
			Msg("Created symlink")
	}
	return nil
}

// Directives exposes the directives recorded so far for a package, if any.
func (e *Executor) Directives(packageName string) (*directives.Directives, bool) {
	d, ok := e.directives[packageName]
	return d, ok
}

// restoreForLog rewrites literal machine paths back to their symbolic form
// so resolved paths do not leak into log output.
func (e *Executor) restoreForLog(s string) string {
	pairs := append(e.set.Restore(), placeholder.Pair{Old: e.set.Rustc, New: placeholder.TokenRustc})
	return placeholder.ReplaceAll(s, pairs)
}

// environMap converts KEY=VALUE pairs into a map; later duplicates win.
func environMap(environ []string) map[string]string {
	env := make(map[string]string, len(environ))
	for _, kv := range environ {
		name, value, found := strings.Cut(kv, "=")
		if !found {
			continue
		}
		env[name] = value
	}
	return env
}

// flattenEnv converts an environment map back to sorted KEY=VALUE form.
// Sorting keeps child process environments reproducible across runs.
func flattenEnv(env map[string]string) []string {
	out := make([]string, 0, len(env))
	for name, value := range env {
		out = append(out, fmt.Sprintf("%s=%s", name, value))
	}
	sort.Strings(out)
	return out
}

// extraEscape quotes cfg and check-cfg values so the debug-logged command
// can be pasted into a shell unchanged.
func extraEscape(args []string) []string {
	out := make([]string, len(args))
	copy(out, args)
	for i, arg := range out {
		if (arg == "--cfg" || arg == "--check-cfg") && i+1 < len(out) {
			out[i+1] = "'" + out[i+1] + "'"
		}
	}
	return out
}
