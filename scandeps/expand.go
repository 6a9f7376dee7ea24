// Copyright 2023 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package scandeps

import (
	"context"

	"go.chromium.org/luci/common/data/stringset"

	"go.chromium.org/infra/build/mkdeps/o11y/clog"
)

// Entry is dependencies of a source file.
type Entry struct {
	// Source is the scanned path of the source file.
	Source string
	// Includes are files included by the source, sorted and deduplicated.
	Includes []string
	// Deps are Includes and files included by Includes, sorted and deduplicated.
	// Files included by Includes' includes are not followed.
	Deps []string
}

// Expand returns entries of source files that have includes,
// in sorted order of source path.
// It should be called after Resolve.
func (t *Table) Expand(ctx context.Context) []Entry {
	var entries []Entry
	for _, fname := range t.Paths() {
		if !IsSource(fname) {
			continue
		}
		incs := t.files[fname]
		if len(incs) == 0 {
			continue
		}
		deps := stringset.NewFromSlice(incs...)
		for _, inc := range incs {
			deps.AddAll(t.files[inc])
		}
		e := Entry{
			Source:   fname,
			Includes: stringset.NewFromSlice(incs...).ToSortedSlice(),
			Deps:     deps.ToSortedSlice(),
		}
		if clog.V(ctx) {
			clog.Debugf(ctx, "%s: deps %q", e.Source, e.Deps)
		}
		entries = append(entries, e)
	}
	return entries
}
