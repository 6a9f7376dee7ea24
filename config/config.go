// Copyright 2023 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

// Package config loads mkdeps configuration file.
//
// Example:
//
//	# .mkdeps.yaml
//	roots:
//	  - src
//	  - test/src
//	objdir: build
//	file: Makefile.deps
//	mode: object
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// Config is mkdeps configuration.
// Empty fields mean defaults.
type Config struct {
	// Roots are directories to scan.
	Roots []string `yaml:"roots,omitempty"`
	// ObjDir is a prefix of object file names.
	ObjDir string `yaml:"objdir,omitempty"`
	// File is the dependency file name.
	File string `yaml:"file,omitempty"`
	// Mode is a form of generated rules.
	Mode string `yaml:"mode,omitempty"`
	// Verbose enables debug logs.
	Verbose bool `yaml:"verbose,omitempty"`
}

// Load loads configuration file fname.
func Load(fname string) (*Config, error) {
	buf, err := os.ReadFile(fname)
	if err != nil {
		return nil, err
	}
	cfg, err := Parse(buf)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", fname, err)
	}
	return cfg, nil
}

// Parse parses configuration in buf.
// Unknown fields are errors.
func Parse(buf []byte) (*Config, error) {
	cfg := &Config{}
	dec := yaml.NewDecoder(bytes.NewReader(buf))
	dec.KnownFields(true)
	err := dec.Decode(cfg)
	if err != nil && !errors.Is(err, io.EOF) {
		return nil, err
	}
	return cfg, nil
}
