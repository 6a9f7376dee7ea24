// Copyright 2023 The Chromium Authors. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package makeutil

import (
	"bytes"
	"path"
	"strings"
)

// Rule is a make rule without recipe.
type Rule struct {
	Target string
	Inputs []string
}

// String returns the rule in `<target> : <inputs...>` form.
// Names are written as is, without escaping.
func (r Rule) String() string {
	if len(r.Inputs) == 0 {
		return r.Target + " :"
	}
	return r.Target + " : " + strings.Join(r.Inputs, " ")
}

// Lines returns lines of deps file for rules.
// Each rule is followed by an empty line.
func Lines(rules []Rule) []string {
	lines := make([]string, 0, 2*len(rules))
	for _, r := range rules {
		lines = append(lines, r.String(), "")
	}
	return lines
}

// Format returns deps file contents of lines.
func Format(lines []string) []byte {
	var buf bytes.Buffer
	for _, line := range lines {
		buf.WriteString(line)
		buf.WriteByte('\n')
	}
	return buf.Bytes()
}

// NormalizeObjDir returns objdir ending with '/', or "" for empty objdir.
func NormalizeObjDir(objdir string) string {
	if objdir == "" || strings.HasSuffix(objdir, "/") {
		return objdir
	}
	return objdir + "/"
}

// ObjectName returns object file name for the source file src in objdir.
// It is the base name of src up to the first '.', with ".o" suffix.
//
//	ObjectName("build", "src/foo.test.c") == "build/foo.o"
func ObjectName(objdir, src string) string {
	name, _, _ := strings.Cut(path.Base(src), ".")
	return NormalizeObjDir(objdir) + name + ".o"
}
