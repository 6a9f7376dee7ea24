// Copyright 2023 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package depfile

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"go.chromium.org/infra/build/mkdeps/osfs"
	"go.chromium.org/infra/build/mkdeps/scandeps"
	"go.chromium.org/infra/build/mkdeps/toolsupport/makeutil"
)

func setupFiles(t *testing.T, dir string, files map[string]string) {
	t.Helper()
	for fname, content := range files {
		fname := filepath.Join(dir, fname)
		err := os.MkdirAll(filepath.Dir(fname), 0755)
		if err != nil {
			t.Fatal(err)
		}
		err = os.WriteFile(fname, []byte(content), 0644)
		if err != nil {
			t.Fatal(err)
		}
	}
}

func chdir(t *testing.T, dir string) {
	t.Helper()
	wd, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	err = os.Chdir(dir)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() {
		err := os.Chdir(wd)
		if err != nil {
			t.Fatal(err)
		}
	})
}

func TestGenerate(t *testing.T) {
	ctx := context.Background()
	for _, tc := range []struct {
		name  string
		files map[string]string
		opt   Option
		want  []string
	}{
		{
			name: "scenario-a",
			files: map[string]string{
				"a.c": `#include "b.h"`,
				"b.h": "",
			},
			opt:  Option{Roots: []string{"."}},
			want: []string{"a.o : a.c b.h", ""},
		},
		{
			name: "scenario-b",
			files: map[string]string{
				"a.c":     `#include "sub/b.h"`,
				"sub/b.h": `#include "c.h"`,
				"sub/c.h": "",
			},
			opt:  Option{Roots: []string{"."}},
			want: []string{"a.o : a.c sub/b.h sub/c.h", ""},
		},
		{
			name: "scenario-e",
			files: map[string]string{
				"a.c": `#include "b.h"`,
				"b.h": "",
			},
			opt:  Option{Roots: []string{"."}, ObjDir: "build/"},
			want: []string{"build/a.o : a.c b.h", ""},
		},
		{
			name: "objdir-without-slash",
			files: map[string]string{
				"a.c": `#include "b.h"`,
				"b.h": "",
			},
			opt:  Option{Roots: []string{"."}, ObjDir: "build"},
			want: []string{"build/a.o : a.c b.h", ""},
		},
		{
			name: "no-sources",
			files: map[string]string{
				"a.h": `#include "b.h"`,
				"b.h": "",
			},
			opt:  Option{Roots: []string{"."}},
			want: []string{},
		},
		{
			name: "third-level-not-followed",
			files: map[string]string{
				"src/main.cpp":  "#include <stdio.h>\n#include \"base/a.h\"\n",
				"src/base/a.h":  `#include "base/b.h"`,
				"src/base/b.h":  `#include "base/c.h"`,
				"src/base/c.h":  "",
				"src/util.c":    "#include \"base/b.h\"\n#include \"base/b.h\"\n",
				"src/empty.cxx": "int x;\n",
			},
			opt: Option{Roots: []string{"src"}, ObjDir: "out"},
			want: []string{
				"out/main.o : src/main.cpp src/base/a.h src/base/b.h",
				"",
				"out/util.o : src/util.c src/base/b.h src/base/c.h",
				"",
			},
		},
		{
			name: "mode-source",
			files: map[string]string{
				"a.c":     `#include "sub/b.h"`,
				"sub/b.h": `#include "c.h"`,
				"sub/c.h": "",
			},
			opt:  Option{Roots: []string{"."}, Mode: ModeSource},
			want: []string{"a.c : sub/b.h", ""},
		},
		{
			name: "mode-source-expanded",
			files: map[string]string{
				"a.c":     `#include "sub/b.h"`,
				"sub/b.h": `#include "c.h"`,
				"sub/c.h": "",
			},
			opt:  Option{Roots: []string{"."}, Mode: ModeSourceExpanded},
			want: []string{"a.c : sub/b.h sub/c.h", ""},
		},
	} {
		t.Run(tc.name, func(t *testing.T) {
			dir := t.TempDir()
			setupFiles(t, dir, tc.files)
			chdir(t, dir)

			r, err := Generate(ctx, osfs.New("test"), tc.opt)
			if err != nil {
				t.Fatalf("Generate(ctx, fs, %v)=%v; want nil err", tc.opt, err)
			}
			if diff := cmp.Diff(tc.want, r.Lines); diff != "" {
				t.Errorf("Generate(ctx, fs, %v) lines diff -want +got:\n%s", tc.opt, diff)
			}
			for _, rule := range r.Rules {
				for _, in := range rule.Inputs {
					if !r.Table.Has(in) {
						t.Errorf("rule %q has input %q not in scanned files", rule.Target, in)
					}
				}
			}
		})
	}
}

func TestGenerate_Errors(t *testing.T) {
	ctx := context.Background()

	t.Run("scenario-c-ambiguous", func(t *testing.T) {
		dir := t.TempDir()
		setupFiles(t, dir, map[string]string{
			"a.c":   `#include "b.h"`,
			"x/b.h": "",
			"y/b.h": "",
		})
		chdir(t, dir)
		_, err := Generate(ctx, osfs.New("test"), Option{Roots: []string{"."}})
		var aerr *scandeps.AmbiguousIncludeError
		if !errors.As(err, &aerr) {
			t.Fatalf("Generate(ctx, fs, opt)=%v; want AmbiguousIncludeError", err)
		}
		if diff := cmp.Diff([]string{"x/b.h", "y/b.h"}, aerr.Candidates); diff != "" {
			t.Errorf("candidates diff -want +got:\n%s", diff)
		}
	})

	t.Run("scenario-d-not-found", func(t *testing.T) {
		dir := t.TempDir()
		setupFiles(t, dir, map[string]string{
			"a.c": "#include \"b.h\"\n#include \"missing.h\"\n",
			"b.h": "",
		})
		chdir(t, dir)
		_, err := Generate(ctx, osfs.New("test"), Option{Roots: []string{"."}})
		var uerr *scandeps.UnresolvedIncludeError
		if !errors.As(err, &uerr) {
			t.Fatalf("Generate(ctx, fs, opt)=%v; want UnresolvedIncludeError", err)
		}
		if uerr.File != "a.c" || uerr.Include != "missing.h" {
			t.Errorf("Generate(ctx, fs, opt)=%v; want error for missing.h in a.c", err)
		}
	})

	t.Run("no-roots", func(t *testing.T) {
		_, err := Generate(ctx, osfs.New("test"), Option{})
		if err == nil {
			t.Errorf("Generate(ctx, fs, Option{})=nil; want error")
		}
	})
}

func TestUpdate(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	fname := filepath.Join(dir, DefaultFilename)
	fsys := osfs.New("test")
	lines := []string{"a.o : a.c b.h", ""}

	updated, err := Update(ctx, fsys, fname, lines)
	if err != nil || !updated {
		t.Fatalf("Update(ctx, fs, %q, lines)=%t, %v; want true, nil", fname, updated, err)
	}
	buf, err := os.ReadFile(fname)
	if err != nil {
		t.Fatal(err)
	}
	if got, want := string(buf), "a.o : a.c b.h\n\n"; got != want {
		t.Errorf("%s=%q; want %q", fname, got, want)
	}

	mtime := time.Now().Add(-1 * time.Hour).Truncate(time.Second)
	err = os.Chtimes(fname, mtime, mtime)
	if err != nil {
		t.Fatal(err)
	}
	updated, err = Update(ctx, fsys, fname, lines)
	if err != nil || updated {
		t.Fatalf("Update(ctx, fs, %q, lines) again=%t, %v; want false, nil", fname, updated, err)
	}
	fi, err := os.Stat(fname)
	if err != nil {
		t.Fatal(err)
	}
	if !fi.ModTime().Equal(mtime) {
		t.Errorf("mtime=%v; want %v (unchanged)", fi.ModTime(), mtime)
	}

	// trailing spaces in the existing file are ignored.
	err = os.WriteFile(fname, []byte("a.o : a.c b.h  \r\n\n"), 0644)
	if err != nil {
		t.Fatal(err)
	}
	updated, err = Update(ctx, fsys, fname, lines)
	if err != nil || updated {
		t.Errorf("Update(ctx, fs, %q, lines) with trailing spaces=%t, %v; want false, nil", fname, updated, err)
	}

	newLines := []string{"a.o : a.c b.h c.h", ""}
	updated, err = Update(ctx, fsys, fname, newLines)
	if err != nil || !updated {
		t.Errorf("Update(ctx, fs, %q, newLines)=%t, %v; want true, nil", fname, updated, err)
	}
	buf, err = os.ReadFile(fname)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]makeutil.Rule{{Target: "a.o", Inputs: []string{"a.c", "b.h", "c.h"}}}, makeutil.ParseRules(buf)); diff != "" {
		t.Errorf("ParseRules(%s) diff -want +got:\n%s", fname, diff)
	}
}

func TestUpdate_Empty(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	fname := filepath.Join(dir, DefaultFilename)
	fsys := osfs.New("test")

	updated, err := Update(ctx, fsys, fname, nil)
	if err != nil || !updated {
		t.Fatalf("Update(ctx, fs, %q, nil)=%t, %v; want true, nil", fname, updated, err)
	}
	fi, err := os.Stat(fname)
	if err != nil {
		t.Fatal(err)
	}
	if fi.Size() != 0 {
		t.Errorf("size of %s=%d; want 0", fname, fi.Size())
	}
	updated, err = Update(ctx, fsys, fname, nil)
	if err != nil || updated {
		t.Errorf("Update(ctx, fs, %q, nil) again=%t, %v; want false, nil", fname, updated, err)
	}

	// stale rules are removed.
	err = os.WriteFile(fname, []byte("a.o : a.c\n\n"), 0644)
	if err != nil {
		t.Fatal(err)
	}
	updated, err = Update(ctx, fsys, fname, []string{})
	if err != nil || !updated {
		t.Errorf("Update(ctx, fs, %q, empty)=%t, %v; want true, nil", fname, updated, err)
	}
}

func TestUpdate_NoDir(t *testing.T) {
	ctx := context.Background()
	fname := filepath.Join(t.TempDir(), "nodir", DefaultFilename)
	_, err := Update(ctx, osfs.New("test"), fname, []string{"a.o : a.c", ""})
	if !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("Update(ctx, fs, %q, lines)=%v; want %v", fname, err, fs.ErrNotExist)
	}
}

func TestFileLines(t *testing.T) {
	for _, tc := range []struct {
		input string
		want  []string
	}{
		{input: ""},
		{input: "a\n", want: []string{"a"}},
		{input: "a\n\n", want: []string{"a", ""}},
		{input: " a \r\n\tb", want: []string{"a", "b"}},
		{input: "\n\n\n", want: []string{"", "", ""}},
	} {
		got := fileLines([]byte(tc.input))
		if diff := cmp.Diff(tc.want, got); diff != "" {
			t.Errorf("fileLines(%q) diff -want +got:\n%s", tc.input, diff)
		}
	}
}

func TestModeFlag(t *testing.T) {
	var m Mode
	if got, want := m.String(), "object"; got != want {
		t.Errorf("Mode{}.String()=%q; want %q", got, want)
	}
	for _, s := range []string{"object", "source", "source-expanded"} {
		err := m.Set(s)
		if err != nil {
			t.Errorf("m.Set(%q)=%v; want nil err", s, err)
		}
		if got := m.String(); got != s {
			t.Errorf("m.String()=%q; want %q", got, s)
		}
	}
	if err := m.Set("dep"); err == nil {
		t.Errorf("m.Set(%q)=nil; want error", "dep")
	}
}
