// Copyright 2023 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package scandeps

import (
	"context"
	"fmt"
	"io/fs"
	"slices"
	"strings"

	"go.chromium.org/infra/build/mkdeps/o11y/clog"
)

// UnresolvedIncludeError is an error when no scanned file matches the include name.
type UnresolvedIncludeError struct {
	// File is the scanned file that has the include.
	File string
	// Include is the include name.
	Include string
}

func (e *UnresolvedIncludeError) Error() string {
	return fmt.Sprintf("%s: no file found matching include %q", e.File, e.Include)
}

// Unwrap returns fs.ErrNotExist, so errors.Is(err, fs.ErrNotExist) is true.
func (e *UnresolvedIncludeError) Unwrap() error {
	return fs.ErrNotExist
}

// AmbiguousIncludeError is an error when more than one scanned file
// matches the include name.
type AmbiguousIncludeError struct {
	// File is the scanned file that has the include.
	File string
	// Include is the include name.
	Include string
	// Candidates are matched scanned paths, in sorted order.
	Candidates []string
}

func (e *AmbiguousIncludeError) Error() string {
	return fmt.Sprintf("%s: ambiguous include %q: multiple files match %q", e.File, e.Include, e.Candidates)
}

// resolver resolves include names to scanned paths.
type resolver struct {
	table *Table
	// sorted paths and their path components.
	paths []string
	comps [][]string
}

func newResolver(t *Table) *resolver {
	r := &resolver{
		table: t,
		paths: t.Paths(),
	}
	r.comps = make([][]string, len(r.paths))
	for i, p := range r.paths {
		r.comps[i] = strings.Split(p, "/")
	}
	return r
}

// resolve resolves include name inc in fname.
// It returns inc if inc is a scanned path.
// Otherwise, it returns the only scanned path whose trailing components
// equal the components of inc.
func (r *resolver) resolve(fname, inc string) (string, error) {
	if r.table.Has(inc) {
		return inc, nil
	}
	icomps := strings.Split(inc, "/")
	var matches []string
	for i, pcomps := range r.comps {
		if len(pcomps) < len(icomps) {
			continue
		}
		if slices.Equal(pcomps[len(pcomps)-len(icomps):], icomps) {
			matches = append(matches, r.paths[i])
		}
	}
	switch len(matches) {
	case 0:
		return "", &UnresolvedIncludeError{File: fname, Include: inc}
	case 1:
		return matches[0], nil
	default:
		return "", &AmbiguousIncludeError{File: fname, Include: inc, Candidates: matches}
	}
}

// ResolveInclude resolves include name inc in fname to a scanned path.
func (t *Table) ResolveInclude(fname, inc string) (string, error) {
	return newResolver(t).resolve(fname, inc)
}

// Resolve replaces include names in the table with scanned paths.
// Files are processed in sorted order, and it stops at the first
// include that can't be resolved, which would be
// *UnresolvedIncludeError or *AmbiguousIncludeError.
// After it succeeds, every include in the table is a path in the table.
func (t *Table) Resolve(ctx context.Context) error {
	r := newResolver(t)
	v := clog.V(ctx)
	for _, fname := range r.paths {
		incs := t.files[fname]
		for i, inc := range incs {
			incpath, err := r.resolve(fname, inc)
			if err != nil {
				return err
			}
			if v && incpath != inc {
				clog.Debugf(ctx, "%s: resolve %q -> %s", fname, inc, incpath)
			}
			incs[i] = incpath
		}
	}
	return nil
}
