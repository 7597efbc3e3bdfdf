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

const statusCmdName = "status"

// CmdStatus reports what is running.
var CmdStatus = &subcommands.Command{
	UsageLine: fmt.Sprintf("%s [FLAGS...]", statusCmdName),
	ShortDesc: "show the state of every service",
	LongDesc: `Show the state of every service.

One line per service: container state, docker health, published ports
and age, plus what the last aynistack command did. With -probe each
running service is also checked the way up checks it, and the Celery
queue backlog is reported.`,
	CommandRun: func() subcommands.CommandRun {
		c := &statusRun{}
		c.registerFlags()
		c.Flags.BoolVar(&c.probe, "probe", false, "Run each service's health check once and report the results.")
		return c
	},
}

type statusRun struct {
	baseRun
	probe bool
}

func (c *statusRun) Run(a subcommands.Application, args []string, env subcommands.Env) int {
	if err := c.innerRun(a, args, env); err != nil {
		cmdlib.PrintError(a, err)
		return 1
	}
	return 0
}

func (c *statusRun) innerRun(a subcommands.Application, args []string, env subcommands.Env) error {
	if len(args) > 0 {
		return cmdlib.NewUsageError(c.Flags, "unexpected arguments %v", args)
	}
	ctx := cli.GetContext(a, c, env)
	s, err := c.newStack(ctx)
	if err != nil {
		return err
	}
	return s.Status(ctx, c.probe)
}
