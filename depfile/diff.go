// Copyright 2023 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package depfile

import (
	"fmt"
	"slices"

	"go.chromium.org/luci/common/data/stringset"

	"go.chromium.org/infra/build/mkdeps/toolsupport/makeutil"
)

// ChangeKind is a kind of rule change.
type ChangeKind string

const (
	// Added is a rule only in new rules.
	Added ChangeKind = "added"
	// Removed is a rule only in old rules.
	Removed ChangeKind = "removed"
	// Changed is a rule whose inputs differ.
	Changed ChangeKind = "changed"
)

// Change is a change of a rule of the target.
type Change struct {
	Target string
	Kind   ChangeKind
}

func (c Change) String() string {
	return fmt.Sprintf("%s %s", c.Kind, c.Target)
}

// Diff returns changes from oldRules to newRules, sorted by target.
// For a target that has multiple rules, the last one is used.
func Diff(oldRules, newRules []makeutil.Rule) []Change {
	oldm := make(map[string][]string)
	newm := make(map[string][]string)
	targets := stringset.New(len(oldRules) + len(newRules))
	for _, r := range oldRules {
		oldm[r.Target] = r.Inputs
		targets.Add(r.Target)
	}
	for _, r := range newRules {
		newm[r.Target] = r.Inputs
		targets.Add(r.Target)
	}
	var changes []Change
	for _, target := range targets.ToSortedSlice() {
		oldInputs, inOld := oldm[target]
		newInputs, inNew := newm[target]
		switch {
		case !inOld:
			changes = append(changes, Change{Target: target, Kind: Added})
		case !inNew:
			changes = append(changes, Change{Target: target, Kind: Removed})
		case !slices.Equal(oldInputs, newInputs):
			changes = append(changes, Change{Target: target, Kind: Changed})
		}
	}
	return changes
}
