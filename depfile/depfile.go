// Copyright 2023 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

// Package depfile generates make dependency file of C/C++ sources.
//
// It scans source trees, resolves `#include "..."` to scanned files,
// and writes `<object> : <source> <headers...>` rules.
// The dependency file is rewritten only when its contents change,
// so make won't see a newer timestamp for unchanged dependencies.
package depfile

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"slices"
	"strings"

	"go.chromium.org/infra/build/mkdeps/o11y/clog"
	"go.chromium.org/infra/build/mkdeps/scandeps"
	"go.chromium.org/infra/build/mkdeps/toolsupport/makeutil"
)

// DefaultFilename is the default dependency file name.
const DefaultFilename = "Makefile.deps"

// FileSystem is filesystem access used by depfile.
type FileSystem interface {
	scandeps.FileSystem
	// WriteFile replaces the named file with data.
	WriteFile(ctx context.Context, name string, data []byte, perm fs.FileMode) error
}

// Mode is a form of generated rules.
type Mode string

const (
	// ModeObject generates `<objdir>/<name>.o : <source> <deps...>`.
	ModeObject Mode = "object"
	// ModeSource generates `<source> : <includes...>`.
	ModeSource Mode = "source"
	// ModeSourceExpanded generates `<source> : <deps...>`.
	ModeSourceExpanded Mode = "source-expanded"
)

var modes = []Mode{ModeObject, ModeSource, ModeSourceExpanded}

// String returns the mode name. It implements flag.Value.
func (m *Mode) String() string {
	if m == nil || *m == "" {
		return string(ModeObject)
	}
	return string(*m)
}

// Set sets the mode by name. It implements flag.Value.
func (m *Mode) Set(s string) error {
	for _, mode := range modes {
		if Mode(s) == mode {
			*m = mode
			return nil
		}
	}
	return fmt.Errorf("unknown mode %q: want one of %q", s, modes)
}

// Option is an option of Generate.
type Option struct {
	// Roots are directories to scan.
	Roots []string

	// ObjDir is a prefix of object file names.
	// '/' is appended if it doesn't end with '/'.
	ObjDir string

	// Mode is a form of generated rules. Default is ModeObject.
	Mode Mode
}

// Result is a result of Generate.
type Result struct {
	// Table is the resolved dependency table.
	Table *scandeps.Table
	// Entries are dependencies of source files.
	Entries []scandeps.Entry
	// Rules are generated make rules.
	Rules []makeutil.Rule
	// Lines are lines of the dependency file.
	Lines []string
}

// Generate scans opt.Roots and generates the dependency file lines.
// It fails if any `#include "..."` can't be resolved to exactly one
// scanned file.
func Generate(ctx context.Context, fsys scandeps.FileSystem, opt Option) (*Result, error) {
	if len(opt.Roots) == 0 {
		return nil, errors.New("no root directories to scan")
	}
	s := scandeps.New(fsys)
	table, err := s.Scan(ctx, opt.Roots...)
	if err != nil {
		return nil, err
	}
	clog.Debugf(ctx, "scanned %d files in %q", table.Len(), opt.Roots)
	err = table.Resolve(ctx)
	if err != nil {
		return nil, err
	}
	entries := table.Expand(ctx)
	rules := Rules(entries, opt.Mode, opt.ObjDir)
	clog.Debugf(ctx, "generated %d rules", len(rules))
	return &Result{
		Table:   table,
		Entries: entries,
		Rules:   rules,
		Lines:   makeutil.Lines(rules),
	}, nil
}

// Rules returns make rules of entries in mode.
func Rules(entries []scandeps.Entry, mode Mode, objdir string) []makeutil.Rule {
	var rules []makeutil.Rule
	for _, e := range entries {
		var r makeutil.Rule
		switch mode {
		case ModeSource:
			r = makeutil.Rule{Target: e.Source, Inputs: e.Includes}
		case ModeSourceExpanded:
			r = makeutil.Rule{Target: e.Source, Inputs: e.Deps}
		default:
			r = makeutil.Rule{
				Target: makeutil.ObjectName(objdir, e.Source),
				Inputs: append([]string{e.Source}, e.Deps...),
			}
		}
		rules = append(rules, r)
	}
	return rules
}

// fileLines splits b into lines, and trims spaces of each line.
// The last newline doesn't start a new line.
func fileLines(b []byte) []string {
	var lines []string
	for len(b) > 0 {
		var line string
		i := bytes.IndexByte(b, '\n')
		if i < 0 {
			line = string(b)
			b = nil
		} else {
			line = string(b[:i])
			b = b[i+1:]
		}
		lines = append(lines, strings.TrimSpace(line))
	}
	return lines
}

func trimLines(lines []string) []string {
	trimmed := make([]string, 0, len(lines))
	for _, line := range lines {
		trimmed = append(trimmed, strings.TrimSpace(line))
	}
	return trimmed
}

// UpToDate reports whether the file fname has lines.
// Lines are compared after trimming spaces.
// It returns false if fname doesn't exist.
func UpToDate(ctx context.Context, fsys scandeps.FileSystem, fname string, lines []string) (bool, error) {
	buf, err := fsys.ReadFile(ctx, fname)
	if errors.Is(err, fs.ErrNotExist) {
		clog.Debugf(ctx, "%s doesn't exist", fname)
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return slices.Equal(trimLines(lines), fileLines(buf)), nil
}

// Update writes lines to fname unless fname is up to date.
// It reports whether fname is updated.
func Update(ctx context.Context, fsys FileSystem, fname string, lines []string) (bool, error) {
	ok, err := UpToDate(ctx, fsys, fname, lines)
	if err != nil {
		return false, err
	}
	if ok {
		return false, nil
	}
	err = fsys.WriteFile(ctx, fname, makeutil.Format(lines), 0644)
	if err != nil {
		return false, err
	}
	return true, nil
}
