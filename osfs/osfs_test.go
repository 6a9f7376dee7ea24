// Copyright 2024 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package osfs

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestWriteFile(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	fname := filepath.Join(dir, "Makefile.deps")
	ofs := New("test")

	for _, data := range []string{"a.o : a.c b.h\n\n", ""} {
		err := ofs.WriteFile(ctx, fname, []byte(data), 0644)
		if err != nil {
			t.Fatalf("WriteFile(ctx, %q, %q, 0644)=%v; want nil err", fname, data, err)
		}
		got, err := ofs.ReadFile(ctx, fname)
		if err != nil {
			t.Fatalf("ReadFile(ctx, %q)=%v; want nil err", fname, err)
		}
		if string(got) != data {
			t.Errorf("ReadFile(ctx, %q)=%q; want %q", fname, got, data)
		}
	}

	ents, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	var names []string
	for _, ent := range ents {
		names = append(names, ent.Name())
	}
	if diff := cmp.Diff([]string{"Makefile.deps"}, names); diff != "" {
		t.Errorf("files in dir diff -want +got:\n%s", diff)
	}

	st := ofs.Stats()
	if st.WOps != 2 || st.ROps != 2 || st.WErrs != 0 {
		t.Errorf("ofs.Stats()=%v; want 2 writes, 2 reads, no errors", st)
	}
}

func TestWriteFile_NoDir(t *testing.T) {
	ctx := context.Background()
	ofs := New("test")
	fname := filepath.Join(t.TempDir(), "nodir", "Makefile.deps")
	err := ofs.WriteFile(ctx, fname, []byte("x\n"), 0644)
	if !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("WriteFile(ctx, %q)=%v; want %v", fname, err, fs.ErrNotExist)
	}
	if st := ofs.Stats(); st.WErrs != 1 {
		t.Errorf("ofs.Stats().WErrs=%d; want 1", st.WErrs)
	}
}

func TestWalkDir(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	for _, fname := range []string{"b.c", "a.h", "sub/z.h", "sub/y.c"} {
		fname = filepath.Join(dir, fname)
		err := os.MkdirAll(filepath.Dir(fname), 0755)
		if err != nil {
			t.Fatal(err)
		}
		err = os.WriteFile(fname, nil, 0644)
		if err != nil {
			t.Fatal(err)
		}
	}
	ofs := New("test")
	var got []string
	err := ofs.WalkDir(ctx, dir, func(pathname string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(dir, pathname)
		if err != nil {
			return err
		}
		got = append(got, filepath.ToSlash(rel))
		return nil
	})
	if err != nil {
		t.Fatalf("WalkDir(ctx, %q)=%v; want nil err", dir, err)
	}
	want := []string{".", "a.h", "b.c", "sub", "sub/y.c", "sub/z.h"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("WalkDir order diff -want +got:\n%s", diff)
	}
}

func TestWalkDir_Canceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	ofs := New("test")
	err := ofs.WalkDir(ctx, t.TempDir(), func(string, fs.DirEntry, error) error {
		t.Errorf("walk func called after cancel")
		return nil
	})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("WalkDir(canceled ctx)=%v; want %v", err, context.Canceled)
	}
}
