// Copyright 2025 The AYNI Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package subcmds

import (
	"fmt"

	"github.com/maruel/subcommands"
	"go.chromium.org/luci/common/cli"

	"github.com/Brownbull/ayni-be/internal/cmdlib"
)

const waitCmdName = "wait"

// CmdWait blocks until the stack is healthy.
var CmdWait = &subcommands.Command{
	UsageLine: fmt.Sprintf("%s [FLAGS...] [SERVICE...]", waitCmdName),
	ShortDesc: "wait until services are healthy, without starting anything",
	LongDesc: `Wait until services are healthy, without starting anything.

Runs the same health sequence as up against an already-started stack.
Useful after up -no-wait, or as a gate in scripts: the exit status says
whether the stack came up within its deadlines.`,
	CommandRun: func() subcommands.CommandRun {
		c := &waitRun{}
		c.registerFlags()
		return c
	},
}

type waitRun struct {
	baseRun
}

func (c *waitRun) Run(a subcommands.Application, args []string, env subcommands.Env) int {
	if err := c.innerRun(a, args, env); err != nil {
		cmdlib.PrintError(a, err)
		return 1
	}
	return 0
}

func (c *waitRun) innerRun(a subcommands.Application, args []string, env subcommands.Env) error {
	ctx := cli.GetContext(a, c, env)
	s, err := c.newStack(ctx)
	if err != nil {
		return err
	}
	return s.Wait(ctx, args)
}
