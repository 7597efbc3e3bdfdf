// Copyright 2025 The AYNI Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

// Command aynistack manages the AYNI backend development stack.
//
// It drives docker compose to run Postgres, Redis, the Django backend,
// the Celery workers and Flower, and waits until each service actually
// answers before declaring the stack up.
package main

import (
	"context"
	"os"

	"github.com/maruel/subcommands"
	"go.chromium.org/luci/common/cli"
	"go.chromium.org/luci/common/logging/gologger"

	"github.com/Brownbull/ayni-be/internal/site"
	"github.com/Brownbull/ayni-be/internal/subcmds"
)

var application = &cli.Application{
	Name: site.AppPrefix,
	Title: `Development stack manager for the AYNI backend

Runs the db, redis, backend, celery, celery-beat and flower services
through docker compose and gates each start stage on real health checks.`,
	Context: func(ctx context.Context) context.Context {
		return gologger.StdConfig.Use(ctx)
	},
	Commands: []*subcommands.Command{
		subcommands.CmdHelp,
		subcommands.Section("Stack lifecycle"),
		subcmds.CmdUp,
		subcmds.CmdStop,
		subcmds.CmdRestart,
		subcmds.CmdDown,
		subcmds.CmdWatch,
		subcommands.Section("Diagnostics"),
		subcmds.CmdStatus,
		subcmds.CmdWait,
		subcmds.CmdLogs,
		subcmds.CmdDoctor,
		subcommands.Section("Setup"),
		subcmds.CmdInit,
		subcmds.CmdVersion,
	},
}

func main() {
	os.Exit(subcommands.Run(application, nil))
}
