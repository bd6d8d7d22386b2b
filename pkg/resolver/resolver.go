// Package resolver computes a valid execution order over a build plan's
// invocations: every invocation is placed after all invocations it depends
// on. A plan whose dependency relation contains a cycle is rejected whole;
// no partial order is ever returned.
package resolver

import (
	"fmt"
	"sort"
	"strings"

	"github.com/lczyk/not-quite-cargo/pkg/errors"
	"github.com/lczyk/not-quite-cargo/pkg/plan"
)

// Order sorts invocations so that each appears after all of its
// dependencies. Ties among simultaneously eligible invocations break on
// the lowest sequence number, which keeps output layout and logs stable
// across runs.
//
// The algorithm is iterative removal (a Kahn variant): repeatedly scan the
// remaining invocations for one whose dependency set is already satisfied,
// move it to the output, and rescan. A full scan that frees nothing while
// work remains means a cycle or a dependency on a node outside the plan.
func Order(invocations []plan.Invocation) ([]plan.Invocation, error) {
	remaining := make([]plan.Invocation, len(invocations))
	copy(remaining, invocations)
	sort.SliceStable(remaining, func(i, j int) bool {
		return remaining[i].Number < remaining[j].Number
	})

	ordered := make([]plan.Invocation, 0, len(invocations))
	satisfied := make(map[int]bool, len(invocations))

	for len(remaining) > 0 {
		picked := -1
		for i, inv := range remaining {
			if depsSatisfied(inv, satisfied) {
				picked = i
				break
			}
		}
		if picked == -1 {
			return nil, errors.Newf(errors.ErrGraphCycle,
				"could not resolve invocation order (cycle or missing dependency) among invocations %s",
				numbersOf(remaining))
		}

		inv := remaining[picked]
		ordered = append(ordered, inv)
		satisfied[inv.Number] = true
		remaining = append(remaining[:picked], remaining[picked+1:]...)
	}

	return ordered, nil
}

func depsSatisfied(inv plan.Invocation, satisfied map[int]bool) bool {
	for _, dep := range inv.Deps {
		if !satisfied[dep] {
			return false
		}
	}
	return true
}

func numbersOf(invocations []plan.Invocation) string {
	numbers := make([]string, len(invocations))
	for i, inv := range invocations {
		numbers[i] = fmt.Sprintf("%d", inv.Number)
	}
	return strings.Join(numbers, ", ")
}
