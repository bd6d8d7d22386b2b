package plan_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/lczyk/not-quite-cargo/pkg/plan"
	"github.com/lczyk/not-quite-cargo/pkg/testutil"
	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// patchFixture copies the fixture plan into a temp dir, patches it there,
// and returns the written bytes.
func patchFixture(t *testing.T) []byte {
	t.Helper()

	fixture, err := os.ReadFile(filepath.Join("testdata", "build_plan.json"))
	require.NoError(t, err)

	dir := t.TempDir()
	path := testutil.CreateFile(t, dir, "build_plan.json", string(fixture))

	doc, err := plan.LoadDocument(path)
	require.NoError(t, err)

	doc.Patch(testSet())
	require.NoError(t, doc.Save())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return data
}

func TestPatch(t *testing.T) {
	data := patchFixture(t)

	g := goldie.New(t)
	g.Assert(t, "patched", data)
}

func TestPatchProperties(t *testing.T) {
	data := patchFixture(t)
	text := string(data)

	// No literal machine path survives
	assert.NotContains(t, text, "/home/user/project")
	assert.NotContains(t, text, "/home/user/.cargo")

	// The rustc literal is gone but only via the program rewrite; the
	// rustc token is the one placeholder resolved fresh at replay time
	assert.NotContains(t, text, "/home/user/.rustup")
	assert.Contains(t, text, `"program": "{{RUSTC}}"`)

	// Orchestrator env vars and diagnostic-width args are dropped
	assert.NotContains(t, text, `"CARGO"`)
	assert.NotContains(t, text, "CARGO_HOME\":")
	assert.NotContains(t, text, "--diagnostic-width")
}

func TestPatchIdempotent(t *testing.T) {
	fixture, err := os.ReadFile(filepath.Join("testdata", "build_plan.json"))
	require.NoError(t, err)

	dir := t.TempDir()
	path := testutil.CreateFile(t, dir, "build_plan.json", string(fixture))

	doc, err := plan.LoadDocument(path)
	require.NoError(t, err)
	doc.Patch(testSet())
	require.NoError(t, doc.Save())

	once, err := os.ReadFile(path)
	require.NoError(t, err)

	doc, err = plan.LoadDocument(path)
	require.NoError(t, err)
	doc.Patch(testSet())
	require.NoError(t, doc.Save())

	twice, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, string(once), string(twice))
}

// Patch then rehydrate must reproduce the original literal invocations.
func TestPatchRunRoundTrip(t *testing.T) {
	fixture, err := os.ReadFile(filepath.Join("testdata", "build_plan.json"))
	require.NoError(t, err)

	dir := t.TempDir()
	path := testutil.CreateFile(t, dir, "build_plan.json", string(fixture))

	doc, err := plan.LoadDocument(path)
	require.NoError(t, err)
	doc.Patch(testSet())
	require.NoError(t, doc.Save())

	portable, err := plan.LoadDocument(path)
	require.NoError(t, err)
	invocations, err := portable.Rehydrate(testSet())
	require.NoError(t, err)
	require.Len(t, invocations, 1)

	inv := invocations[0]
	assert.Equal(t, "libc", inv.PackageName)
	assert.Equal(t, testSet().Rustc, inv.Program)
	assert.Equal(t, "/home/user/project", inv.Cwd)
	assert.Equal(t, []string{"/home/user/project/target/debug/deps/liblibc.rlib"}, inv.Outputs)
	assert.Equal(t,
		"/home/user/.cargo/registry/src/index.crates.io/libc-0.2.155",
		inv.Env["CARGO_MANIFEST_DIR"])
	// Dropped during patching, re-injected by the executor instead
	assert.NotContains(t, inv.Env, "CARGO")
	assert.NotContains(t, inv.Env, "CARGO_HOME")
	assert.NotContains(t, inv.Args, "--diagnostic-width=180")
}
