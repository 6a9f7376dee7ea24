// Copyright 2023 The Chromium Authors. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

// Package makeutil provides utilities for make.
package makeutil

import (
	"bytes"
	"strings"
)

// ParseDeps parses deps and returns a list of inputs of the first rule.
func ParseDeps(b []byte) []string {
	rules := ParseRules(b)
	if len(rules) == 0 {
		return nil
	}
	return rules[0].Inputs
}

// ParseRules parses deps file contents, and returns rules in it.
// Rules with multiple targets are returned as one rule per target.
func ParseRules(b []byte) []Rule {
	// deps contents
	// <output>: <input> ...
	// <input> is space separated
	// '\'+newline is space
	// '\'+space is escaped space (not separator)
	// rules are separated by newline.
	var rules []Rule
	for _, line := range logicalLines(b) {
		i := bytes.IndexByte(line, ':')
		if i < 0 {
			continue
		}
		targets := tokens(line[:i])
		inputs := tokens(line[i+1:])
		for _, target := range targets {
			rules = append(rules, Rule{
				Target: target,
				Inputs: inputs,
			})
		}
	}
	return rules
}

// logicalLines splits b into lines, joining lines continued by '\'+newline.
func logicalLines(b []byte) [][]byte {
	var lines [][]byte
	var line []byte
	for i := 0; i < len(b); i++ {
		if b[i] == '\\' && i+1 < len(b) && b[i+1] == '\n' {
			line = append(line, ' ')
			i++
			continue
		}
		if b[i] == '\\' && i+2 < len(b) && b[i+1] == '\r' && b[i+2] == '\n' {
			line = append(line, ' ')
			i += 2
			continue
		}
		if b[i] == '\n' {
			lines = append(lines, line)
			line = nil
			continue
		}
		line = append(line, b[i])
	}
	if len(line) > 0 {
		lines = append(lines, line)
	}
	return lines
}

func tokens(s []byte) []string {
	var token string
	var toks []string
	for len(s) > 0 {
		token, s = nextToken(s)
		if token != "" {
			toks = append(toks, token)
		}
	}
	return toks
}

func nextToken(s []byte) (string, []byte) {
	var sb strings.Builder
	// skip spaces
skipSpaces:
	for i := 0; i < len(s); i++ {
		if s[i] == '\\' && i+1 < len(s) && s[i+1] == '\n' {
			i++
			continue
		}
		if s[i] == '\\' && i+2 < len(s) && s[i+1] == '\r' && s[i+2] == '\n' {
			i += 2
			continue
		}
		switch s[i] {
		case ' ', '\t', '\n', '\r':
			continue
		default:
			s = s[i:]
			break skipSpaces
		}
	}
	// extract next space not escaped
	for i := 0; i < len(s); i++ {
		if s[i] == '\\' && i+1 < len(s) {
			i++
			switch s[i] {
			case ' ':
				sb.WriteByte(s[i])
			case '\r', '\n':
				// '\'+newline is space
				return sb.String(), s[i+1:]
			default:
				sb.WriteByte('\\')
				sb.WriteByte(s[i])
			}
			continue
		}
		switch s[i] {
		case ' ', '\t', '\n', '\r':
			return sb.String(), s[i+1:]
		}
		sb.WriteByte(s[i])
	}
	return sb.String(), nil
}
