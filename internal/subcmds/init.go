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

const initCmdName = "init"

// CmdInit bootstraps a project checkout.
var CmdInit = &subcommands.Command{
	UsageLine: fmt.Sprintf("%s [FLAGS...]", initCmdName),
	ShortDesc: "create .env and validate the compose file",
	LongDesc: `Create .env from .env.example and validate the compose file.

Nothing is started and Docker does not need to be running. Run this
after a fresh clone to get a working .env to edit before the first up.`,
	CommandRun: func() subcommands.CommandRun {
		c := &initRun{}
		c.registerFlags()
		return c
	},
}

type initRun struct {
	baseRun
}

func (c *initRun) Run(a subcommands.Application, args []string, env subcommands.Env) int {
	if err := c.innerRun(a, args, env); err != nil {
		cmdlib.PrintError(a, err)
		return 1
	}
	return 0
}

func (c *initRun) innerRun(a subcommands.Application, args []string, env subcommands.Env) error {
	if len(args) > 0 {
		return cmdlib.NewUsageError(c.Flags, "unexpected arguments %v", args)
	}
	ctx := cli.GetContext(a, c, env)
	opts, err := c.stackOptions()
	if err != nil {
		return err
	}
	return stack.Init(ctx, opts)
}
