// Package placeholder implements the symbolic tokens that make a captured
// build plan portable, and the textual substitution that moves a plan
// between its literal and portable forms.
//
// Substitution is purely textual: it knows nothing about shell quoting or
// path semantics. Pairs are applied longest-old-form first so that when one
// literal is a prefix of another (cargo home nested inside the project
// root, say) the longer form wins and no partial replacement occurs.
package placeholder

import (
	"encoding/json"
	"sort"
	"strings"

	"github.com/lczyk/not-quite-cargo/pkg/errors"
)

// Symbolic tokens substituted throughout a portable plan.
const (
	TokenProjectRoot = "{{PROJECT_ROOT}}"
	TokenCargoHome   = "{{CARGO_HOME}}"
	TokenRustc       = "{{RUSTC}}"
)

// Pair is a single substring rewrite: every occurrence of Old becomes New.
type Pair struct {
	Old string
	New string
}

// Set holds the literal values the three tokens stand for during one run.
type Set struct {
	ProjectRoot string
	CargoHome   string
	Rustc       string
}

// Expand returns the pairs that turn a portable document back into literal
// form (token → literal). All three tokens are expanded; the compiler path
// is resolved fresh on the replay host.
func (s Set) Expand() []Pair {
	return []Pair{
		{Old: TokenProjectRoot, New: s.ProjectRoot},
		{Old: TokenCargoHome, New: s.CargoHome},
		{Old: TokenRustc, New: s.Rustc},
	}
}

// Restore returns the pairs that turn literal text back into portable form
// (literal → token). The rustc pair is deliberately absent: the compiler
// location is replay-host-specific and must never be baked into the
// persisted plan.
func (s Set) Restore() []Pair {
	return []Pair{
		{Old: s.ProjectRoot, New: TokenProjectRoot},
		{Old: s.CargoHome, New: TokenCargoHome},
	}
}

// Env returns the resolved values re-injected into every invocation's
// environment at replay time.
func (s Set) Env() map[string]string {
	return map[string]string{
		"PROJECT_ROOT": s.ProjectRoot,
		"CARGO_HOME":   s.CargoHome,
		"RUSTC":        s.Rustc,
	}
}

// ReplaceAll applies pairs to a single string, longest old form first.
func ReplaceAll(s string, pairs []Pair) string {
	for _, p := range ordered(pairs) {
		if p.Old == "" {
			continue
		}
		s = strings.ReplaceAll(s, p.Old, p.New)
	}
	return s
}

// Apply walks a decoded JSON document (maps, slices, scalars) and applies
// pairs to every string leaf, map keys included. The structure is rebuilt;
// non-string scalars pass through untouched.
func Apply(doc interface{}, pairs []Pair) interface{} {
	return apply(doc, ordered(pairs))
}

func apply(doc interface{}, pairs []Pair) interface{} {
	switch v := doc.(type) {
	case map[string]interface{}:
		result := make(map[string]interface{}, len(v))
		for key, value := range v {
			newKey := replaceOrdered(key, pairs)
			result[newKey] = apply(value, pairs)
		}
		return result
	case []interface{}:
		result := make([]interface{}, len(v))
		for i, item := range v {
			result[i] = apply(item, pairs)
		}
		return result
	case string:
		return replaceOrdered(v, pairs)
	default:
		return v
	}
}

// replaceOrdered assumes pairs are already sorted
func replaceOrdered(s string, pairs []Pair) string {
	for _, p := range pairs {
		if p.Old == "" {
			continue
		}
		s = strings.ReplaceAll(s, p.Old, p.New)
	}
	return s
}

// ordered returns a copy of pairs sorted longest old form first, original
// order preserved among equal lengths.
func ordered(pairs []Pair) []Pair {
	sorted := make([]Pair, len(pairs))
	copy(sorted, pairs)
	sort.SliceStable(sorted, func(i, j int) bool {
		return len(sorted[i].Old) > len(sorted[j].Old)
	})
	return sorted
}

// VerifyAbsent re-serializes the document and errors if any of the old
// forms survived substitution. This catches variants the replacement pass
// did not anticipate, such as escaped paths.
func VerifyAbsent(doc interface{}, olds []string) error {
	data, err := json.Marshal(doc)
	if err != nil {
		return errors.Wrap(err, errors.ErrInternal, "failed to re-serialize document for verification")
	}
	text := string(data)
	for _, old := range olds {
		if old == "" {
			continue
		}
		if strings.Contains(text, old) {
			return errors.Newf(errors.ErrPlaceholderLeak,
				"substitution left %q in the document", old)
		}
	}
	return nil
}
