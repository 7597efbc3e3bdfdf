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

const stopCmdName = "stop"

// CmdStop stops services without removing anything.
var CmdStop = &subcommands.Command{
	UsageLine: fmt.Sprintf("%s [FLAGS...] [SERVICE...]", stopCmdName),
	ShortDesc: "stop the stack, keeping containers and data",
	LongDesc: `Stop the stack, keeping containers and data.

Services stop in reverse start order, workers before the data stores.
Naming services stops exactly those: stopping the backend does not take
the database down with it. Containers and volumes stay around, so the
next up is fast.`,
	CommandRun: func() subcommands.CommandRun {
		c := &stopRun{}
		c.registerFlags()
		return c
	},
}

type stopRun struct {
	baseRun
}

func (c *stopRun) Run(a subcommands.Application, args []string, env subcommands.Env) int {
	if err := c.innerRun(a, args, env); err != nil {
		cmdlib.PrintError(a, err)
		return 1
	}
	return 0
}

func (c *stopRun) innerRun(a subcommands.Application, args []string, env subcommands.Env) error {
	ctx := cli.GetContext(a, c, env)
	s, err := c.newStack(ctx)
	if err != nil {
		return err
	}
	return s.Stop(ctx, args)
}
