package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lczyk/not-quite-cargo/pkg/errors"
	"github.com/lczyk/not-quite-cargo/pkg/testutil"
)

// execute runs the root command with the given arguments and captures
// stdout output.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func setupRun(t *testing.T) (projectRoot string) {
	t.Helper()

	projectRoot = t.TempDir()
	rustc := testutil.CreateExecutable(t, projectRoot, "fake-rustc",
		"#!/bin/sh\necho 'rustc 1.78.0 (fake)'\n")

	t.Setenv("PROJECT_ROOT", projectRoot)
	t.Setenv("CARGO_HOME", filepath.Join(projectRoot, ".cargo"))
	t.Setenv("RUSTC", rustc)
	t.Setenv("XDG_STATE_HOME", filepath.Join(projectRoot, "state"))
	return projectRoot
}

func TestVersionCmd(t *testing.T) {
	setupRun(t)

	_, err := execute(t, "version")
	require.NoError(t, err)
}

func TestConfigCmd(t *testing.T) {
	projectRoot := setupRun(t)
	testutil.CreateFile(t, projectRoot, ".not-quite-cargo.toml", `[logging]
level = "debug"
`)

	// The config command reads the project root from PROJECT_ROOT, which
	// setupRun pointed at our temp directory.
	out, err := execute(t, "config")
	require.NoError(t, err)
	assert.Contains(t, out, `level = 'debug'`)

	out, err = execute(t, "config", "--format", "yaml")
	require.NoError(t, err)
	assert.Contains(t, out, "level: debug")
}

func TestEffectiveLogging(t *testing.T) {
	projectRoot := setupRun(t)
	testutil.CreateFile(t, projectRoot, ".not-quite-cargo.toml", `[logging]
level = "debug"
format = "json"
`)

	oldVerbosity, oldFormat := verbosity, logFormat
	t.Cleanup(func() { verbosity, logFormat = oldVerbosity, oldFormat })

	// The configured baseline applies when the flags are silent.
	verbosity = 0
	level, format := effectiveLogging(rootCmd)
	assert.Equal(t, 1, level)
	assert.Equal(t, "json", format)

	// -vv raises the level above the configured baseline, never below.
	verbosity = 2
	level, _ = effectiveLogging(rootCmd)
	assert.Equal(t, 2, level)
}

func TestPatchCmd(t *testing.T) {
	projectRoot := setupRun(t)
	rustc := os.Getenv("RUSTC")

	planPath := testutil.CreateFile(t, projectRoot, "build-plan.json", `{
    "invocations": [
        {
            "package_name": "mylib",
            "package_version": "0.1.0",
            "target_kind": ["lib"],
            "kind": null,
            "compile_mode": "build",
            "deps": [],
            "outputs": ["`+projectRoot+`/target/debug/libmylib.rlib"],
            "links": {},
            "program": "`+rustc+`",
            "args": ["--crate-name", "mylib", "--diagnostic-width=120"],
            "env": {"CARGO": "/usr/bin/cargo", "CARGO_MANIFEST_DIR": "`+projectRoot+`"},
            "cwd": "`+projectRoot+`"
        }
    ],
    "inputs": ["`+projectRoot+`/Cargo.toml"]
}`)

	_, err := execute(t, "patch", planPath)
	require.NoError(t, err)

	data, err := os.ReadFile(planPath)
	require.NoError(t, err)
	text := string(data)

	assert.Contains(t, text, "{{PROJECT_ROOT}}")
	assert.Contains(t, text, "{{RUSTC}}")
	assert.NotContains(t, text, projectRoot)
	assert.NotContains(t, text, `"CARGO"`)
	assert.NotContains(t, text, "--diagnostic-width")
}

func TestPatchCmdMissingPlan(t *testing.T) {
	setupRun(t)

	_, err := execute(t, "patch", "/nonexistent/build-plan.json")
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrFileRead))
}

func TestRunCmd(t *testing.T) {
	projectRoot := setupRun(t)

	marker := filepath.Join(projectRoot, "ran")
	program := testutil.CreateExecutable(t, projectRoot, "step.sh",
		"#!/bin/sh\ntouch "+marker+"\n")

	planPath := testutil.CreateFile(t, projectRoot, "build-plan.json", `{
    "invocations": [
        {
            "package_name": "step",
            "package_version": "0.1.0",
            "target_kind": ["lib"],
            "kind": null,
            "compile_mode": "build",
            "deps": [],
            "outputs": [],
            "links": {},
            "program": "`+program+`",
            "args": [],
            "env": {},
            "cwd": "{{PROJECT_ROOT}}"
        }
    ]
}`)

	_, err := execute(t, "run", planPath)
	require.NoError(t, err)

	_, err = os.Stat(marker)
	assert.NoError(t, err)
}

func TestRunCmdRejectsNonPlan(t *testing.T) {
	projectRoot := setupRun(t)
	planPath := testutil.CreateFile(t, projectRoot, "not-a-plan.json", `{"foo": 1}`)

	_, err := execute(t, "run", planPath)
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrPlanFormat))
}

func TestCompletionCmd(t *testing.T) {
	setupRun(t)

	out, err := execute(t, "completion", "bash")
	require.NoError(t, err)
	assert.True(t, strings.Contains(out, "not-quite-cargo"))
}
