// Copyright 2025 The AYNI Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package subcmds

import (
	"fmt"
	"os"

	"github.com/maruel/subcommands"
	"go.chromium.org/luci/common/cli"

	"github.com/Brownbull/ayni-be/internal/cmdlib"
)

const downCmdName = "down"

// CmdDown removes the stack.
var CmdDown = &subcommands.Command{
	UsageLine: fmt.Sprintf("%s [FLAGS...]", downCmdName),
	ShortDesc: "stop the stack and remove its containers",
	LongDesc: `Stop the stack and remove its containers and networks.

Named volumes survive by default, so the database keeps its data. Pass
-volumes to delete them too and start over from an empty database; that
asks for confirmation unless -y is given.`,
	CommandRun: func() subcommands.CommandRun {
		c := &downRun{}
		c.registerFlags()
		c.Flags.BoolVar(&c.volumes, "volumes", false, "Also delete named volumes. This wipes the database.")
		c.Flags.BoolVar(&c.yes, "y", false, "Skip the confirmation prompt.")
		return c
	},
}

type downRun struct {
	baseRun
	volumes bool
	yes     bool
}

func (c *downRun) Run(a subcommands.Application, args []string, env subcommands.Env) int {
	if err := c.innerRun(a, args, env); err != nil {
		cmdlib.PrintError(a, err)
		return 1
	}
	return 0
}

func (c *downRun) innerRun(a subcommands.Application, args []string, env subcommands.Env) error {
	if len(args) > 0 {
		return cmdlib.NewUsageError(c.Flags, "unexpected arguments %v", args)
	}
	ctx := cli.GetContext(a, c, env)
	if c.volumes && !c.yes {
		if !cmdlib.Confirm(a.GetOut(), os.Stdin, "Remove the stack and delete its volumes? All database data is lost.") {
			fmt.Fprintf(a.GetOut(), "aborted\n")
			return nil
		}
	}
	s, err := c.newStack(ctx)
	if err != nil {
		return err
	}
	return s.Down(ctx, c.volumes)
}
