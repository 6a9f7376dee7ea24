// Copyright 2023 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package scandeps

import (
	"bytes"
	"context"
	"time"

	"go.chromium.org/infra/build/mkdeps/o11y/clog"
)

var includeDirective = []byte("#include")

// QuoteIncludes scans `#include "name"` lines in buf, and returns names
// in the order they appear.
func QuoteIncludes(ctx context.Context, fname string, buf []byte) []string {
	started := time.Now()
	v := clog.V(ctx)

	includes := []string{}
	for len(buf) > 0 {
		var line []byte
		i := bytes.IndexByte(buf, '\n')
		if i < 0 {
			line = buf
			buf = nil
		} else {
			line = buf[:i]
			buf = buf[i+1:]
		}
		line = bytes.TrimSpace(line)
		if !bytes.HasPrefix(line, includeDirective) {
			continue
		}
		name, ok := parseQuoteInclude(line)
		if !ok {
			// `#include <foo.h>`, `#include FOO_H` or
			// `#include "foo.h" // comment`.
			if v {
				clog.Debugf(ctx, "%s: skip %q", fname, line)
			}
			continue
		}
		if v {
			clog.Debugf(ctx, "%s: include %q", fname, name)
		}
		includes = append(includes, name)
	}
	dur := time.Since(started)
	if dur > time.Second {
		clog.Infof(ctx, "slow include scan %s %s", fname, dur)
	}
	return includes
}

// parseQuoteInclude parses trimmed line as `#include "name"`.
// whitespaces between `#include` and `"` are optional.
// name is everything between the first and the last `"`.
func parseQuoteInclude(line []byte) (string, bool) {
	line, ok := bytes.CutPrefix(line, includeDirective)
	if !ok {
		return "", false
	}
	line = bytes.TrimLeft(line, " \t\v\f\r")
	if len(line) < 2 || line[0] != '"' || line[len(line)-1] != '"' {
		return "", false
	}
	return string(line[1 : len(line)-1]), true
}
