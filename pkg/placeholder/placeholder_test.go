package placeholder

import (
	"testing"

	"github.com/lczyk/not-quite-cargo/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testSet() Set {
	return Set{
		ProjectRoot: "/home/user/project",
		CargoHome:   "/home/user/.cargo",
		Rustc:       "/home/user/.rustup/toolchains/stable/bin/rustc",
	}
}

func TestApply(t *testing.T) {
	tests := []struct {
		name  string
		doc   interface{}
		pairs []Pair
		want  interface{}
	}{
		{
			name:  "string leaf",
			doc:   "build at {{PROJECT_ROOT}}/src",
			pairs: testSet().Expand(),
			want:  "build at /home/user/project/src",
		},
		{
			name: "nested structure",
			doc: map[string]interface{}{
				"outputs": []interface{}{"{{PROJECT_ROOT}}/target/debug/libfoo.rlib"},
				"env": map[string]interface{}{
					"CARGO_MANIFEST_DIR": "{{PROJECT_ROOT}}",
				},
			},
			pairs: testSet().Expand(),
			want: map[string]interface{}{
				"outputs": []interface{}{"/home/user/project/target/debug/libfoo.rlib"},
				"env": map[string]interface{}{
					"CARGO_MANIFEST_DIR": "/home/user/project",
				},
			},
		},
		{
			name: "map keys are rewritten too",
			doc: map[string]interface{}{
				"{{PROJECT_ROOT}}/target/debug/foo": "{{PROJECT_ROOT}}/target/debug/deps/foo-abc",
			},
			pairs: testSet().Expand(),
			want: map[string]interface{}{
				"/home/user/project/target/debug/foo": "/home/user/project/target/debug/deps/foo-abc",
			},
		},
		{
			name:  "non-string scalars untouched",
			doc:   map[string]interface{}{"deps": []interface{}{float64(0), float64(3)}, "kind": nil},
			pairs: testSet().Expand(),
			want:  map[string]interface{}{"deps": []interface{}{float64(0), float64(3)}, "kind": nil},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Apply(tt.doc, tt.pairs))
		})
	}
}

// When one literal is a prefix of another, the longer form must be
// replaced first or the shorter pair corrupts it.
func TestApplyOverlappingPairs(t *testing.T) {
	set := Set{
		ProjectRoot: "/home/user",
		CargoHome:   "/home/user/.cargo",
	}

	got := Apply("/home/user/.cargo/registry", set.Restore())
	assert.Equal(t, "{{CARGO_HOME}}/registry", got)

	// Declaration order must not matter
	reversed := []Pair{
		{Old: "/home/user", New: TokenProjectRoot},
		{Old: "/home/user/.cargo", New: TokenCargoHome},
	}
	got = Apply("/home/user/.cargo/registry", reversed)
	assert.Equal(t, "{{CARGO_HOME}}/registry", got)
}

func TestApplyIdempotent(t *testing.T) {
	doc := map[string]interface{}{
		"cwd":     "{{PROJECT_ROOT}}",
		"program": "{{RUSTC}}",
		"args":    []interface{}{"--out-dir", "{{PROJECT_ROOT}}/target/debug"},
	}
	pairs := testSet().Expand()

	once := Apply(doc, pairs)
	twice := Apply(once, pairs)
	assert.Equal(t, once, twice)
}

func TestRoundTrip(t *testing.T) {
	set := testSet()
	literal := map[string]interface{}{
		"cwd":     "/home/user/project",
		"outputs": []interface{}{"/home/user/.cargo/registry/src/lib.rs"},
	}

	portable := Apply(literal, set.Restore())
	back := Apply(portable, set.Expand())
	assert.Equal(t, literal, back)
}

func TestRestoreOmitsRustc(t *testing.T) {
	for _, p := range testSet().Restore() {
		assert.NotEqual(t, TokenRustc, p.New)
	}
}

func TestVerifyAbsent(t *testing.T) {
	set := testSet()

	clean := Apply("{{PROJECT_ROOT}}/src/main.rs", set.Expand())
	require.NoError(t, VerifyAbsent(clean, []string{TokenProjectRoot, TokenCargoHome, TokenRustc}))

	dirty := map[string]interface{}{"program": "{{RUSTC}}"}
	err := VerifyAbsent(dirty, []string{TokenRustc})
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrPlaceholderLeak))
}

func TestEnv(t *testing.T) {
	env := testSet().Env()
	assert.Equal(t, map[string]string{
		"PROJECT_ROOT": "/home/user/project",
		"CARGO_HOME":   "/home/user/.cargo",
		"RUSTC":        "/home/user/.rustup/toolchains/stable/bin/rustc",
	}, env)
}
