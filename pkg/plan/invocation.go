package plan

// Compile modes a build plan distinguishes. "build" also covers compiling a
// build script; "run-custom-build" executes one.
const (
	CompileModeBuild          = "build"
	CompileModeRunCustomBuild = "run-custom-build"
)

// TargetKindCustomBuild marks an invocation that belongs to a build script,
// whether compiling or running it.
const TargetKindCustomBuild = "custom-build"

// Invocation is one unit of work from a captured build plan. The sequence
// number doubles as the invocation's dependency-graph node id.
type Invocation struct {
	Number         int               `json:"-"`
	PackageName    string            `json:"package_name"`
	PackageVersion string            `json:"package_version"`
	TargetKind     []string          `json:"target_kind"`
	Kind           *string           `json:"kind"`
	CompileMode    string            `json:"compile_mode"`
	Deps           []int             `json:"deps"`
	Outputs        []string          `json:"outputs"`
	Links          map[string]string `json:"links"`
	Program        string            `json:"program"`
	Args           []string          `json:"args"`
	Env            map[string]string `json:"env"`
	Cwd            string            `json:"cwd"`
}

// IsCustomBuild reports whether the invocation belongs to a build script.
func (inv *Invocation) IsCustomBuild() bool {
	for _, kind := range inv.TargetKind {
		if kind == TargetKindCustomBuild {
			return true
		}
	}
	return false
}

// RunsBuildScript reports whether the invocation executes a build script
// (as opposed to merely compiling one). Only these invocations produce
// directives for later invocations of the same package.
func (inv *Invocation) RunsBuildScript() bool {
	return inv.CompileMode == CompileModeRunCustomBuild
}
