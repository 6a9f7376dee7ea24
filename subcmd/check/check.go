// Copyright 2023 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

// Package check provides check subcommand.
package check

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"io/fs"

	"github.com/maruel/subcommands"

	"go.chromium.org/luci/common/cli"

	"go.chromium.org/infra/build/mkdeps/depfile"
	"go.chromium.org/infra/build/mkdeps/o11y/clog"
	"go.chromium.org/infra/build/mkdeps/osfs"
	"go.chromium.org/infra/build/mkdeps/toolsupport/makeutil"
)

const usage = `check make dependency file is up to date.

 $ mkdeps check [-o <objdir>] [-f <file>] <root>...

It takes the same flags as gen, but never writes <file>.
It exits with 0 if <file> is up to date. Otherwise, it prints
stale rules of <file> and exits with 1.
`

var errStale = errors.New("dependency file is stale")

// Cmd returns the Command for the `check` subcommand provided by this package.
func Cmd() *subcommands.Command {
	return &subcommands.Command{
		UsageLine: "check [-o <objdir>] [-f <file>] <root>...",
		ShortDesc: "check make dependency file is up to date",
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
	err := c.run(ctx, a.GetOut(), a.GetErr(), args)
	if err != nil {
		switch {
		case errors.Is(err, flag.ErrHelp):
			fmt.Fprintf(a.GetErr(), "%v\n%s\n", err, usage)
			return 2
		case errors.Is(err, errStale):
		default:
			fmt.Fprintf(a.GetErr(), "Error: %v\n", err)
		}
		return 1
	}
	return 0
}

func (c *run) run(ctx context.Context, stdout, stderr io.Writer, args []string) error {
	s, err := c.flags.Settings(&c.Flags, args)
	if err != nil {
		return err
	}
	ctx = clog.NewContext(ctx, clog.New(stderr, s.Verbose))
	fsys := osfs.New("mkdeps")

	r, err := depfile.Generate(ctx, fsys, s.Option)
	if err != nil {
		return err
	}
	ok, err := depfile.UpToDate(ctx, fsys, s.Filename, r.Lines)
	if err != nil {
		return err
	}
	if ok {
		fmt.Fprintf(stderr, "%s is upto date.\n", s.Filename)
		return nil
	}
	buf, err := fsys.ReadFile(ctx, s.Filename)
	if errors.Is(err, fs.ErrNotExist) {
		fmt.Fprintf(stderr, "%s doesn't exist.\n", s.Filename)
		return errStale
	}
	if err != nil {
		return err
	}
	changes := depfile.Diff(makeutil.ParseRules(buf), r.Rules)
	for _, change := range changes {
		fmt.Fprintln(stdout, change)
	}
	// rules are same, but formatting differs.
	if len(changes) == 0 {
		fmt.Fprintf(stdout, "reformat %s\n", s.Filename)
	}
	fmt.Fprintf(stderr, "%s is stale.\n", s.Filename)
	return errStale
}
