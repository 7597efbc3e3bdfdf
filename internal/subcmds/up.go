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

const upCmdName = "up"

// CmdUp starts the stack and waits for it to become healthy.
var CmdUp = &subcommands.Command{
	UsageLine: fmt.Sprintf("%s [FLAGS...] [SERVICE...]", upCmdName),
	ShortDesc: "start the stack and wait until it is healthy",
	LongDesc: `Start the stack and wait until it is healthy.

With no arguments the whole stack comes up in dependency order: the data
stores first, then the backend, then the Celery workers and Flower.
Naming services starts just those plus whatever they depend on.

Before anything starts, .env is created from .env.example if it does not
exist yet. Each stage is then gated on real probes: a Postgres
handshake, a Redis PING, HTTP checks against the backend admin and the
Flower dashboard. The command fails when Docker is not running, when
both env files are missing, or when a service does not come up within
its deadline.`,
	CommandRun: func() subcommands.CommandRun {
		c := &upRun{}
		c.registerFlags()
		c.Flags.BoolVar(&c.build, "build", false, "Rebuild images before starting.")
		c.Flags.BoolVar(&c.noWait, "no-wait", false, "Start everything and return without waiting for health.")
		return c
	},
}

type upRun struct {
	baseRun
	build  bool
	noWait bool
}

func (c *upRun) Run(a subcommands.Application, args []string, env subcommands.Env) int {
	if err := c.innerRun(a, args, env); err != nil {
		cmdlib.PrintError(a, err)
		return 1
	}
	return 0
}

func (c *upRun) innerRun(a subcommands.Application, args []string, env subcommands.Env) error {
	ctx := cli.GetContext(a, c, env)
	s, err := c.newStack(ctx)
	if err != nil {
		return err
	}
	return s.Up(ctx, args, stack.UpOptions{Build: c.build, NoWait: c.noWait})
}
