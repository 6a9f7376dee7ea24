// Copyright 2023 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

// Package scandeps is scandeps subcommand for debugging scandeps.
package scandeps

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/maruel/subcommands"

	"go.chromium.org/luci/common/cli"

	"go.chromium.org/infra/build/mkdeps/o11y/clog"
	"go.chromium.org/infra/build/mkdeps/osfs"
	"go.chromium.org/infra/build/mkdeps/scandeps"
)

const usage = `run scandeps

 $ mkdeps scandeps [-C <dir>] [-raw] <root>...

It scans <root>s and prints the dependency table in json.
Includes are resolved to scanned files unless -raw is given.
`

// Cmd returns the Command for the `scandeps` subcommand provided by this package.
func Cmd() *subcommands.Command {
	return &subcommands.Command{
		UsageLine: "scandeps <args>...",
		ShortDesc: "run scandeps",
		LongDesc:  usage,
		Advanced:  true,
		CommandRun: func() subcommands.CommandRun {
			c := &run{}
			c.init()
			return c
		},
	}
}

type run struct {
	subcommands.CommandRunBase

	dir     string
	raw     bool
	verbose bool
}

func (c *run) init() {
	c.Flags.StringVar(&c.dir, "C", ".", "change to dir before scanning")
	c.Flags.BoolVar(&c.raw, "raw", false, "print includes as written in files, without resolving")
	c.Flags.BoolVar(&c.verbose, "v", false, "verbose logging")
}

func (c *run) Run(a subcommands.Application, args []string, env subcommands.Env) int {
	ctx := cli.GetContext(a, c, env)
	ctx = clog.NewContext(ctx, clog.New(a.GetErr(), c.verbose))
	err := c.run(ctx, a.GetOut(), args)
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
	if len(args) == 0 {
		return fmt.Errorf("no root: %w", flag.ErrHelp)
	}
	if c.dir != "" && c.dir != "." {
		err := os.Chdir(c.dir)
		if err != nil {
			return err
		}
	}
	s := scandeps.New(osfs.New("scandeps"))
	table, err := s.Scan(ctx, args...)
	if err != nil {
		return err
	}
	if !c.raw {
		err = table.Resolve(ctx)
		if err != nil {
			return err
		}
	}
	buf, err := json.MarshalIndent(table, "", " ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(w, "%s\n", buf)
	return err
}
