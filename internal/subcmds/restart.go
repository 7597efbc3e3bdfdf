// Copyright 2025 The AYNI Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package subcmds

import (
	"fmt"

	"github.com/maruel/subcommands"
	"go.chromium.org/luci/common/cli"

	"github.com/Brownbull/ayni-be/internal/cmdlib"
	"github.com/Brownbull/ayni-be/internal/stack"
)

const restartCmdName = "restart"

// CmdRestart stops and starts services.
var CmdRestart = &subcommands.Command{
	UsageLine: fmt.Sprintf("%s [FLAGS...] [SERVICE...]", restartCmdName),
	ShortDesc: "restart the stack and wait until it is healthy",
	LongDesc: `Restart the stack and wait until it is healthy.

Services stop in reverse order and come back in dependency order, with
the same health gating as up. Naming services restarts just those, handy
after editing backend code that only celery has loaded.`,
	CommandRun: func() subcommands.CommandRun {
		c := &restartRun{}
		c.registerFlags()
		c.Flags.BoolVar(&c.build, "build", false, "Rebuild images before starting.")
		c.Flags.BoolVar(&c.noWait, "no-wait", false, "Start everything and return without waiting for health.")
		return c
	},
}

type restartRun struct {
	baseRun
	build  bool
	noWait bool
}

func (c *restartRun) Run(a subcommands.Application, args []string, env subcommands.Env) int {
	if err := c.innerRun(a, args, env); err != nil {
		cmdlib.PrintError(a, err)
		return 1
	}
	return 0
}

func (c *restartRun) innerRun(a subcommands.Application, args []string, env subcommands.Env) error {
	ctx := cli.GetContext(a, c, env)
	s, err := c.newStack(ctx)
	if err != nil {
		return err
	}
	return s.Restart(ctx, args, stack.UpOptions{Build: c.build, NoWait: c.noWait})
}
