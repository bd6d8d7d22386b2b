// Package plan models a captured Cargo build plan: loading and format
// validation, the patch operation that makes a plan portable, and the
// rehydration that turns a portable plan back into typed invocations on
// the replay host.
package plan

import (
	"encoding/json"
	"os"

	"github.com/lczyk/not-quite-cargo/pkg/errors"
	"github.com/lczyk/not-quite-cargo/pkg/placeholder"
)

// invocationsKey is the required top-level field of a build plan document.
const invocationsKey = "invocations"

// inputsKey is the optional top-level list of input manifest paths.
const inputsKey = "inputs"

// Document is a build plan as an untyped JSON tree. The patch operation
// works on this form so unknown fields survive a round trip.
type Document struct {
	Path string
	root map[string]interface{}
}

// LoadDocument reads and validates a build plan file. A document without
// an invocations list is rejected before any patch or run logic proceeds.
func LoadDocument(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrFileRead, "failed to read build plan %s", path)
	}

	var root map[string]interface{}
	if err := json.Unmarshal(data, &root); err != nil {
		return nil, errors.Wrapf(err, errors.ErrPlanParse, "failed to parse build plan %s", path)
	}

	if _, ok := root[invocationsKey].([]interface{}); !ok {
		return nil, errors.Newf(errors.ErrPlanFormat,
			"%s does not look like a Cargo build plan file (missing %q list)", path, invocationsKey)
	}

	return &Document{Path: path, root: root}, nil
}

// Save writes the document back to its path as indented JSON.
func (d *Document) Save() error {
	data, err := json.MarshalIndent(d.root, "", "    ")
	if err != nil {
		return errors.Wrap(err, errors.ErrInternal, "failed to marshal build plan")
	}
	data = append(data, '\n')

	if err := os.WriteFile(d.Path, data, 0644); err != nil {
		return errors.Wrapf(err, errors.ErrFileWrite, "failed to write build plan %s", d.Path)
	}
	return nil
}

// invocations returns the raw invocation list. Presence is validated at
// load time.
func (d *Document) invocations() []interface{} {
	invs, _ := d.root[invocationsKey].([]interface{})
	return invs
}

// Rehydrate expands the document's invocations to literal form with the
// given placeholder set and decodes them into typed records numbered by
// their position in the captured order. It fails if any symbolic token
// survives expansion or if a dependency id points outside the plan.
func (d *Document) Rehydrate(set placeholder.Set) ([]Invocation, error) {
	expanded := placeholder.Apply(d.invocations(), set.Expand())

	tokens := []string{placeholder.TokenProjectRoot, placeholder.TokenCargoHome, placeholder.TokenRustc}
	if err := placeholder.VerifyAbsent(expanded, tokens); err != nil {
		return nil, err
	}

	data, err := json.Marshal(expanded)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrInternal, "failed to re-serialize invocations")
	}

	var invocations []Invocation
	if err := json.Unmarshal(data, &invocations); err != nil {
		return nil, errors.Wrap(err, errors.ErrPlanParse, "failed to decode invocations")
	}

	for i := range invocations {
		invocations[i].Number = i
	}

	if err := validateDeps(invocations); err != nil {
		return nil, err
	}

	return invocations, nil
}

// validateDeps checks that every dependency id names an invocation present
// in the same plan.
func validateDeps(invocations []Invocation) error {
	for _, inv := range invocations {
		for _, dep := range inv.Deps {
			if dep < 0 || dep >= len(invocations) {
				return errors.Newf(errors.ErrGraphMissingDep,
					"invocation %d (%s) depends on unknown invocation %d", inv.Number, inv.PackageName, dep)
			}
		}
	}
	return nil
}
