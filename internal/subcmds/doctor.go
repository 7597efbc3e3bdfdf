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

const doctorCmdName = "doctor"

// CmdDoctor checks the host setup.
var CmdDoctor = &subcommands.Command{
	UsageLine: fmt.Sprintf("%s [FLAGS...]", doctorCmdName),
	ShortDesc: "check that the host can run the stack",
	LongDesc: `Check that the host can run the stack.

Walks through everything up needs: the docker CLI and daemon, a compose
CLI, the env files, a valid compose file, free host ports, and enough
disk and memory. Each finding is printed as ok, warn or FAIL; the
command fails if any check does.`,
	CommandRun: func() subcommands.CommandRun {
		c := &doctorRun{}
		c.registerFlags()
		return c
	},
}

type doctorRun struct {
	baseRun
}

func (c *doctorRun) Run(a subcommands.Application, args []string, env subcommands.Env) int {
	if err := c.innerRun(a, args, env); err != nil {
		cmdlib.PrintError(a, err)
		return 1
	}
	return 0
}

func (c *doctorRun) innerRun(a subcommands.Application, args []string, env subcommands.Env) error {
	if len(args) > 0 {
		return cmdlib.NewUsageError(c.Flags, "unexpected arguments %v", args)
	}
	ctx := cli.GetContext(a, c, env)
	opts, err := c.stackOptions()
	if err != nil {
		return err
	}
	return stack.Doctor(ctx, opts)
}
