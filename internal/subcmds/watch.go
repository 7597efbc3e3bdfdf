// Copyright 2025 The AYNI Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package subcmds

import (
	"context"
	"fmt"

	"github.com/maruel/subcommands"
	"go.chromium.org/luci/common/cli"
	"go.chromium.org/luci/common/errors"

	"github.com/Brownbull/ayni-be/internal/cmdlib"
	"github.com/Brownbull/ayni-be/internal/stack"
)

const watchCmdName = "watch"

// CmdWatch keeps the stack converged with its files.
var CmdWatch = &subcommands.Command{
	UsageLine: fmt.Sprintf("%s [FLAGS...]", watchCmdName),
	ShortDesc: "keep the stack running and in sync with its files",
	LongDesc: `Keep the stack running and in sync with its files.

Brings the stack up, then watches the compose file and the env files and
reruns up whenever they change. A converge that fails is reported and
retried on the next change. Stop with ctrl-c.`,
	CommandRun: func() subcommands.CommandRun {
		c := &watchRun{}
		c.registerFlags()
		c.Flags.BoolVar(&c.build, "build", false, "Rebuild images on every converge.")
		return c
	},
}

type watchRun struct {
	baseRun
	build bool
}

func (c *watchRun) Run(a subcommands.Application, args []string, env subcommands.Env) int {
	if err := c.innerRun(a, args, env); err != nil {
		cmdlib.PrintError(a, err)
		return 1
	}
	return 0
}

func (c *watchRun) innerRun(a subcommands.Application, args []string, env subcommands.Env) error {
	if len(args) > 0 {
		return cmdlib.NewUsageError(c.Flags, "unexpected arguments %v", args)
	}
	ctx := cli.GetContext(a, c, env)
	ctx, stop := notifyShutdown(ctx)
	defer stop()
	s, err := c.newStack(ctx)
	if err != nil {
		return err
	}
	err = s.Watch(ctx, stack.UpOptions{Build: c.build})
	if err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	fmt.Fprintf(a.GetOut(), "\nwatch stopped\n")
	return nil
}
