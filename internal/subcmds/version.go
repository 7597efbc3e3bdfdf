// Copyright 2025 The AYNI Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package subcmds

import (
	"fmt"

	"github.com/maruel/subcommands"

	"github.com/Brownbull/ayni-be/internal/site"
)

// CmdVersion prints the tool version.
var CmdVersion = &subcommands.Command{
	UsageLine: "version",
	ShortDesc: "print the version",
	LongDesc:  "Print the version.",
	CommandRun: func() subcommands.CommandRun {
		return &versionRun{}
	},
}

type versionRun struct {
	subcommands.CommandRunBase
}

func (c *versionRun) Run(a subcommands.Application, args []string, env subcommands.Env) int {
	fmt.Fprintf(a.GetOut(), "%s %s\n", site.AppPrefix, site.Version)
	return 0
}
