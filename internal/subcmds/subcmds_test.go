// Copyright 2025 The AYNI Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package subcmds

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/maruel/subcommands"
	"github.com/mitchellh/go-homedir"
	"go.chromium.org/luci/common/logging"

	"github.com/Brownbull/ayni-be/internal/assert"
)

func TestStackOptionsExpandsHome(t *testing.T) {
	t.Parallel()
	home, err := homedir.Dir()
	assert.NilError(t, err)

	c := &baseRun{dir: "~/ayni-be", file: "~/ayni-be/compose.override.yml", timeoutScale: 2}
	opts, err := c.stackOptions()
	assert.NilError(t, err)
	assert.StringsEqual(t, opts.Dir, filepath.Join(home, "ayni-be"))
	assert.StringsEqual(t, opts.File, filepath.Join(home, "ayni-be", "compose.override.yml"))
	if opts.WaitScale != 2 {
		t.Errorf("WaitScale = %v, want 2", opts.WaitScale)
	}
}

func TestVerboseRaisesLogLevel(t *testing.T) {
	t.Parallel()
	quiet := &baseRun{}
	if got := logging.GetLevel(quiet.ModifyContext(context.Background())); got == logging.Debug {
		t.Errorf("default level should not be debug")
	}
	loud := &baseRun{verbose: true}
	if got := logging.GetLevel(loud.ModifyContext(context.Background())); got != logging.Debug {
		t.Errorf("-verbose should set debug, got %s", got)
	}
}

func TestFlagRegistration(t *testing.T) {
	t.Parallel()
	c := CmdUp.CommandRun().(*upRun)
	assert.NilError(t, c.GetFlags().Parse([]string{
		"-C", "/work/ayni", "-build", "-no-wait", "-timeout-scale", "3",
	}))
	assert.StringsEqual(t, c.dir, "/work/ayni")
	assert.Assert(t, c.build)
	assert.Assert(t, c.noWait)
	if c.timeoutScale != 3 {
		t.Errorf("timeoutScale = %v, want 3", c.timeoutScale)
	}

	d := CmdDown.CommandRun().(*downRun)
	assert.NilError(t, d.GetFlags().Parse([]string{"-volumes", "-y"}))
	assert.Assert(t, d.volumes)
	assert.Assert(t, d.yes)

	l := CmdLogs.CommandRun().(*logsRun)
	assert.NilError(t, l.GetFlags().Parse([]string{"-f", "-tail", "200"}))
	assert.Assert(t, l.follow)
	assert.IntsEqual(t, l.tail, 200)
}

func TestEveryCommandIsDocumented(t *testing.T) {
	t.Parallel()
	cmds := []*subcommands.Command{
		CmdUp, CmdStop, CmdRestart, CmdDown, CmdWatch,
		CmdStatus, CmdWait, CmdLogs, CmdDoctor, CmdInit, CmdVersion,
	}
	for _, cmd := range cmds {
		if cmd.UsageLine == "" || cmd.ShortDesc == "" || cmd.LongDesc == "" {
			t.Errorf("%q is missing usage or docs", cmd.UsageLine)
		}
		if cmd.CommandRun() == nil {
			t.Errorf("%q has no CommandRun", cmd.UsageLine)
		}
	}
}
