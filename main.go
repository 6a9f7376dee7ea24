// Copyright 2023 The Chromium Authors. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

// mkdeps generates make dependency file of C/C++ sources.
package main

import (
	"context"
	"fmt"
	"os"
	"runtime"

	"github.com/maruel/subcommands"

	"go.chromium.org/luci/common/cli"
	"go.chromium.org/luci/common/system/signals"

	"go.chromium.org/infra/build/mkdeps/subcmd/check"
	"go.chromium.org/infra/build/mkdeps/subcmd/gen"
	"go.chromium.org/infra/build/mkdeps/subcmd/help"
	"go.chromium.org/infra/build/mkdeps/subcmd/scandeps"
	"go.chromium.org/infra/build/mkdeps/subcmd/version"
)

const (
	executableVersion = "v1.0.0"
	defaultCommand    = "gen"
)

func main() {
	os.Exit(mkdepsMain(os.Args[1:]))
}

func mkdepsMain(args []string) (exitCode int) {
	ctx, cancel := context.WithCancel(context.Background())
	defer signals.HandleInterrupt(cancel)()

	// Print a stack trace when a panic occurs.
	defer func() {
		if r := recover(); r != nil {
			const size = 64 << 10
			buf := make([]byte, size)
			buf = buf[:runtime.Stack(buf, false)]
			fmt.Fprintf(os.Stderr, "panic: %v\n%s", r, buf)
			exitCode = 1
		}
	}()

	app := getApplication(ctx)
	return subcommands.Run(app, withDefaultCommand(app, args))
}

func getApplication(ctx context.Context) *cli.Application {
	return &cli.Application{
		Name:  "mkdeps",
		Title: "make dependency generator for C/C++ sources",
		Context: func(context.Context) context.Context {
			return ctx
		},
		Commands: []*subcommands.Command{
			gen.Cmd(),
			check.Cmd(),
			scandeps.Cmd(),
			help.Cmd(defaultCommand),
			version.Cmd(executableVersion),
		},
	}
}

// withDefaultCommand returns args to run defaultCommand when args
// doesn't start with a command name.
func withDefaultCommand(app subcommands.Application, args []string) []string {
	if len(args) == 0 {
		return args
	}
	for _, c := range app.GetCommands() {
		if c.Name() == args[0] {
			return args
		}
	}
	return append([]string{defaultCommand}, args...)
}
