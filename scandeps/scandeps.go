// Copyright 2023 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package scandeps

import (
	"context"
	"encoding/json"
	"io/fs"
	"path"
	"sort"
	"strings"
)

// FileSystem is filesystem access used by ScanDeps.
type FileSystem interface {
	// WalkDir walks the file tree rooted at root in lexical order.
	WalkDir(ctx context.Context, root string, fn fs.WalkDirFunc) error
	// Stat returns a FileInfo describing the named file, following symlinks.
	Stat(ctx context.Context, name string) (fs.FileInfo, error)
	// ReadFile reads the named file.
	ReadFile(ctx context.Context, name string) ([]byte, error)
}

// ScanDeps is a simple C/C++ dependency scanner.
type ScanDeps struct {
	fs FileSystem
}

// New creates new ScanDeps.
func New(fsys FileSystem) *ScanDeps {
	return &ScanDeps{fs: fsys}
}

var (
	sourceExts = map[string]bool{
		"c":   true,
		"cpp": true,
		"cxx": true,
	}
	headerExts = map[string]bool{
		"h":   true,
		"hpp": true,
		"hxx": true,
	}
)

// ext returns lower-cased extension of the base name of fname.
// It returns false if the base name has no extension, or nothing before it.
func ext(fname string) (string, bool) {
	base := path.Base(fname)
	i := strings.LastIndexByte(base, '.')
	if i <= 0 {
		return "", false
	}
	return strings.ToLower(base[i+1:]), true
}

// IsSource reports whether fname is a C/C++ source file,
// i.e. its extension is c, cpp or cxx (case-insensitive).
func IsSource(fname string) bool {
	e, ok := ext(fname)
	return ok && sourceExts[e]
}

// IsHeader reports whether fname is a C/C++ header file,
// i.e. its extension is h, hpp or hxx (case-insensitive).
func IsHeader(fname string) bool {
	e, ok := ext(fname)
	return ok && headerExts[e]
}

// FileRecord is a scanned file and its include names.
type FileRecord struct {
	Path     string   `json:"path"`
	Includes []string `json:"includes"`
}

// Table is a dependency table of scanned files.
// It maps a scanned path (slash separated) to include names in the file.
// Include names are raw strings as written in `#include "..."` until
// Resolve replaces them with scanned paths.
type Table struct {
	files map[string][]string
}

// NewTable creates an empty table.
func NewTable() *Table {
	return &Table{files: make(map[string][]string)}
}

// Add sets includes for fname. It replaces the previous entry of fname.
func (t *Table) Add(fname string, includes []string) {
	if includes == nil {
		includes = []string{}
	}
	t.files[fname] = includes
}

// Includes returns includes of fname.
func (t *Table) Includes(fname string) ([]string, bool) {
	incs, ok := t.files[fname]
	return incs, ok
}

// Has reports whether fname is in the table.
func (t *Table) Has(fname string) bool {
	_, ok := t.files[fname]
	return ok
}

// Len returns the number of files in the table.
func (t *Table) Len() int {
	return len(t.files)
}

// Paths returns scanned paths in sorted order.
func (t *Table) Paths() []string {
	paths := make([]string, 0, len(t.files))
	for p := range t.files {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths
}

// Records returns file records in sorted order of path.
func (t *Table) Records() []FileRecord {
	var records []FileRecord
	for _, p := range t.Paths() {
		records = append(records, FileRecord{
			Path:     p,
			Includes: append([]string{}, t.files[p]...),
		})
	}
	return records
}

// MarshalJSON marshals the table as a list of file records.
func (t *Table) MarshalJSON() ([]byte, error) {
	records := t.Records()
	if records == nil {
		records = []FileRecord{}
	}
	return json.Marshal(records)
}
