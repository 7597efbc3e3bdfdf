// Copyright 2025 The AYNI Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package cmd

import (
	"context"
	"fmt"
	"io"
	"reflect"
)

// FakeCommandRunner does not run a command; it asserts the invocation it
// receives and plays back canned output.
type FakeCommandRunner struct {
	Stdout string
	Stderr string
	// ExpectedCmd, if set, is compared against name plus args.
	ExpectedCmd []string
	// ExpectedDir, if set, is compared against the run directory.
	ExpectedDir string
	FailCommand bool
	FailError   error
}

// RunCommand implements CommandRunner.
func (c FakeCommandRunner) RunCommand(ctx context.Context, stdoutBuf, stderrBuf io.Writer, dir, name string, args ...string) error {
	got := append([]string{name}, args...)
	if len(c.ExpectedCmd) > 0 && !reflect.DeepEqual(got, c.ExpectedCmd) {
		return fmt.Errorf("wrong command\ngot:  %v\nwant: %v", got, c.ExpectedCmd)
	}
	if c.ExpectedDir != "" && dir != c.ExpectedDir {
		return fmt.Errorf("wrong directory: got %q, want %q", dir, c.ExpectedDir)
	}
	if stdoutBuf != nil {
		if _, err := io.WriteString(stdoutBuf, c.Stdout); err != nil {
			return err
		}
	}
	if stderrBuf != nil {
		if _, err := io.WriteString(stderrBuf, c.Stderr); err != nil {
			return err
		}
	}
	if c.FailCommand {
		if c.FailError != nil {
			return c.FailError
		}
		return fmt.Errorf("command failed")
	}
	return nil
}

// FakeCommandRunnerMulti plays a script of expected invocations in order.
type FakeCommandRunnerMulti struct {
	run            int
	CommandRunners []FakeCommandRunner
}

// RunCommand implements CommandRunner, dispatching to the next runner in
// the script.
func (c *FakeCommandRunnerMulti) RunCommand(ctx context.Context, stdoutBuf, stderrBuf io.Writer, dir, name string, args ...string) error {
	if c.run >= len(c.CommandRunners) {
		return fmt.Errorf("unexpected command #%d: `%s %v`", c.run+1, name, args)
	}
	next := c.CommandRunners[c.run]
	c.run++
	return next.RunCommand(ctx, stdoutBuf, stderrBuf, dir, name, args...)
}

// Calls returns how many commands have been dispatched so far.
func (c *FakeCommandRunnerMulti) Calls() int {
	return c.run
}
