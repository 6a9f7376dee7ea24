// Copyright 2023 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

// Package scandeps provides a simple C/C++ header dependency scanner
// for generating make dependency rules.
//
// It only checks the following form of #include, which must be
// the whole line (leading and trailing spaces are ignored)
//
//	#include "foo.h"
//
// `#include <foo.h>` and `#include FOO_H` are ignored, since system
// headers are not tracked.
//
// It indexes files by scanned tree path, and resolves include names
// by matching trailing path components, so `#include "base/foo.h"`
// resolves to `src/base/foo.h` when `src` is scanned.
// An include name that matches no file, or more than one file,
// is an error.
//
// Dependencies of a source file are its includes and their includes.
// Deeper includes are not followed.
package scandeps
