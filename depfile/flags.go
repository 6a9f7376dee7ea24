// Copyright 2023 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package depfile

import (
	"flag"
	"fmt"
	"os"

	"go.chromium.org/infra/build/mkdeps/config"
	"go.chromium.org/infra/build/mkdeps/toolsupport/makeutil"
)

// Flags are command line flags to generate dependency file.
type Flags struct {
	Dir        string
	ConfigFile string
	ObjDir     string
	Filename   string
	Mode       Mode
	Verbose    bool
}

// RegisterFlags registers flags on flagSet.
func (f *Flags) RegisterFlags(flagSet *flag.FlagSet) {
	flagSet.StringVar(&f.Dir, "C", ".", "directory to run in. roots, -f and -config are relative to it")
	flagSet.StringVar(&f.ConfigFile, "config", "", "yaml config file for roots, objdir, file, mode and verbose")
	flagSet.BoolVar(&f.Verbose, "v", false, "verbose logging")
	flagSet.BoolVar(&f.Verbose, "verbose", false, "same as -v")
	flagSet.StringVar(&f.ObjDir, "o", "", "prefix of object file names. '/' is appended if missing")
	flagSet.StringVar(&f.ObjDir, "objdir", "", "same as -o")
	flagSet.StringVar(&f.Filename, "f", DefaultFilename, "dependency file to write")
	flagSet.StringVar(&f.Filename, "file", DefaultFilename, "same as -f")
	flagSet.Var(&f.Mode, "mode", `form of rules. "object": <obj> : <src> <deps>, "source": <src> : <includes>, "source-expanded": <src> : <deps>`)
}

// Settings are settings of a run.
type Settings struct {
	Option
	// Filename is the dependency file name.
	Filename string
	// Verbose enables debug logs.
	Verbose bool
}

// Settings changes the working directory to f.Dir, and returns settings
// for positional args (root directories).
// Values in the config file are used unless they are set on the command line.
func (f *Flags) Settings(flagSet *flag.FlagSet, args []string) (Settings, error) {
	if f.Dir != "" && f.Dir != "." {
		err := os.Chdir(f.Dir)
		if err != nil {
			return Settings{}, fmt.Errorf("failed to chdir %s: %w", f.Dir, err)
		}
	}
	s := Settings{
		Option: Option{
			Roots:  args,
			ObjDir: makeutil.NormalizeObjDir(f.ObjDir),
			Mode:   f.Mode,
		},
		Filename: f.Filename,
		Verbose:  f.Verbose,
	}
	if f.ConfigFile != "" {
		cfg, err := config.Load(f.ConfigFile)
		if err != nil {
			return Settings{}, err
		}
		set := make(map[string]bool)
		flagSet.Visit(func(fl *flag.Flag) {
			set[fl.Name] = true
		})
		if len(s.Roots) == 0 {
			s.Roots = cfg.Roots
		}
		if !set["o"] && !set["objdir"] && cfg.ObjDir != "" {
			s.ObjDir = makeutil.NormalizeObjDir(cfg.ObjDir)
		}
		if !set["f"] && !set["file"] && cfg.File != "" {
			s.Filename = cfg.File
		}
		if !set["mode"] && cfg.Mode != "" {
			err := s.Mode.Set(cfg.Mode)
			if err != nil {
				return Settings{}, fmt.Errorf("config %s: %w", f.ConfigFile, err)
			}
		}
		if !set["v"] && !set["verbose"] {
			s.Verbose = cfg.Verbose
		}
	}
	if len(s.Roots) == 0 {
		return Settings{}, fmt.Errorf("no root directories: %w", flag.ErrHelp)
	}
	if s.Filename == "" {
		return Settings{}, fmt.Errorf("empty dependency file name: %w", flag.ErrHelp)
	}
	return s, nil
}
