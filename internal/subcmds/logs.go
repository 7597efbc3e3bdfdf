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

const logsCmdName = "logs"

// CmdLogs streams service logs.
var CmdLogs = &subcommands.Command{
	UsageLine: fmt.Sprintf("%s [FLAGS...] [SERVICE...]", logsCmdName),
	ShortDesc: "show service logs",
	LongDesc: `Show service logs.

With no arguments every service's log is shown. -f follows the stream
until interrupted; -tail limits how much backlog each container prints
first.`,
	CommandRun: func() subcommands.CommandRun {
		c := &logsRun{}
		c.registerFlags()
		c.Flags.BoolVar(&c.follow, "f", false, "Follow the log stream.")
		c.Flags.IntVar(&c.tail, "tail", 0, "Lines of backlog per container. 0 shows everything.")
		return c
	},
}

type logsRun struct {
	baseRun
	follow bool
	tail   int
}

func (c *logsRun) Run(a subcommands.Application, args []string, env subcommands.Env) int {
	if err := c.innerRun(a, args, env); err != nil {
		cmdlib.PrintError(a, err)
		return 1
	}
	return 0
}

func (c *logsRun) innerRun(a subcommands.Application, args []string, env subcommands.Env) error {
	ctx := cli.GetContext(a, c, env)
	s, err := c.newStack(ctx)
	if err != nil {
		return err
	}
	return s.Logs(ctx, args, c.follow, c.tail)
}
