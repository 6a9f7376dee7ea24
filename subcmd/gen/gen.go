// Copyright 2023 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

// Package gen provides gen subcommand.
package gen

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"runtime/debug"

	"github.com/maruel/subcommands"

	"go.chromium.org/luci/common/cli"

	"go.chromium.org/infra/build/mkdeps/depfile"
	"go.chromium.org/infra/build/mkdeps/o11y/clog"
	"go.chromium.org/infra/build/mkdeps/osfs"
	"go.chromium.org/infra/build/mkdeps/subcmd/version"
)

const usage = `generate make dependency file.

 $ mkdeps gen [-o <objdir>] [-f <file>] <root>...

It scans C/C++ files (*.c *.cpp *.cxx *.h *.hpp *.hxx) under <root>s,
resolves #include "..." to the scanned files, and writes rules

  <objdir>/<name>.o : <source> <headers>...

to <file> (Makefile.deps by default). Headers are files included by
the source and files included by them.
<file> is not modified if its contents would not change.

It fails if an #include "..." matches no file or more than one file.
`

// Cmd returns the Command for the `gen` subcommand provided by this package.
func Cmd() *subcommands.Command {
	return &subcommands.Command{
		UsageLine: "gen [-o <objdir>] [-f <file>] <root>...",
		ShortDesc: "generate make dependency file (default command)",
		LongDesc:  usage,
		CommandRun: func() subcommands.CommandRun {
			c := &run{}
			c.init()
			return c
		},
	}
}

type run struct {
	subcommands.CommandRunBase

	flags depfile.Flags
}

func (c *run) init() {
	c.flags.RegisterFlags(&c.Flags)
}

func (c *run) Run(a subcommands.Application, args []string, env subcommands.Env) int {
	ctx := cli.GetContext(a, c, env)
	err := c.run(ctx, a.GetErr(), args)
	if err != nil {
		switch {
		case errors.Is(err, flag.ErrHelp):
			fmt.Fprintf(a.GetErr(), "%v\n%s\n", err, usage)
			return 2
		default:
			fmt.Fprintf(a.GetErr(), "Error: %v\n", err)
		}
		return 1
	}
	return 0
}

func (c *run) run(ctx context.Context, w io.Writer, args []string) error {
	s, err := c.flags.Settings(&c.Flags, args)
	if err != nil {
		return err
	}
	ctx = clog.NewContext(ctx, clog.New(w, s.Verbose))
	if buildInfo, ok := debug.ReadBuildInfo(); ok && clog.V(ctx) {
		clog.Debugf(ctx, "main module: %s %s", version.ModuleInfo(&buildInfo.Main), version.VCSInfo(buildInfo))
	}
	fsys := osfs.New("mkdeps")
	defer func() {
		clog.Debugf(ctx, "io %s: %s", fsys.Name(), fsys.Stats())
	}()

	r, err := depfile.Generate(ctx, fsys, s.Option)
	if err != nil {
		return err
	}
	updated, err := depfile.Update(ctx, fsys, s.Filename, r.Lines)
	if err != nil {
		return err
	}
	if updated {
		fmt.Fprintf(w, "%s is updated.\n", s.Filename)
	} else {
		fmt.Fprintf(w, "%s is upto date.\n", s.Filename)
	}
	return nil
}
