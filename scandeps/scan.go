// Copyright 2023 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package scandeps

import (
	"context"
	"fmt"
	"io/fs"
	"path/filepath"

	"go.chromium.org/infra/build/mkdeps/o11y/clog"
)

// Scan scans C/C++ source/header files under roots and returns
// the dependency table with raw include names.
// Paths in the table are root joined with the relative path in the root,
// in slash separated form.
func (s *ScanDeps) Scan(ctx context.Context, roots ...string) (*Table, error) {
	t := NewTable()
	for _, root := range roots {
		err := s.scanDir(ctx, t, root)
		if err != nil {
			return nil, fmt.Errorf("scan %s: %w", root, err)
		}
	}
	return t, nil
}

func (s *ScanDeps) scanDir(ctx context.Context, t *Table, root string) error {
	n := 0
	err := s.fs.WalkDir(ctx, root, func(pathname string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		if !IsSource(d.Name()) && !IsHeader(d.Name()) {
			return nil
		}
		if !d.Type().IsRegular() {
			// symlink etc.
			fi, err := s.fs.Stat(ctx, pathname)
			if err != nil {
				return err
			}
			if !fi.Mode().IsRegular() {
				if clog.V(ctx) {
					clog.Debugf(ctx, "skip non regular file %s %s", pathname, fi.Mode())
				}
				return nil
			}
		}
		buf, err := s.fs.ReadFile(ctx, pathname)
		if err != nil {
			return err
		}
		fname := filepath.ToSlash(pathname)
		t.Add(fname, QuoteIncludes(ctx, fname, buf))
		n++
		return nil
	})
	if err != nil {
		return err
	}
	clog.Debugf(ctx, "scanned %d files in %s", n, root)
	return nil
}
