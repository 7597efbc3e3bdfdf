// Copyright 2025 The AYNI Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

// Package cmd provides a mockable interface for running external commands.
// Everything the stack CLI does to docker goes through it, so tests never
// need a live daemon.
package cmd

import (
	"bytes"
	"context"
	"io"
	"os/exec"
	"strings"
	"time"

	"go.chromium.org/luci/common/errors"
	"go.chromium.org/luci/common/logging"
)

// CommandRunner runs a single external command to completion.
type CommandRunner interface {
	RunCommand(ctx context.Context, stdoutBuf, stderrBuf io.Writer, dir, name string, args ...string) error
}

// RealCommandRunner runs commands on the host.
type RealCommandRunner struct{}

// RunCommand runs the command in dir (empty means the current directory),
// streaming stdout and stderr into the given writers.
func (c RealCommandRunner) RunCommand(ctx context.Context, stdoutBuf, stderrBuf io.Writer, dir, name string, args ...string) error {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdout = stdoutBuf
	cmd.Stderr = stderrBuf
	cmd.Dir = dir
	logging.Debugf(ctx, "running `%s %s`", name, strings.Join(args, " "))
	return cmd.Run()
}

// Output runs the command and returns its captured stdout and stderr.
// A failure is annotated with the command line and the tail of stderr,
// which is usually the only part of a docker error worth reading.
func Output(ctx context.Context, runner CommandRunner, dir, name string, args ...string) (stdout, stderr string, err error) {
	var stdoutBuf, stderrBuf bytes.Buffer
	err = runner.RunCommand(ctx, &stdoutBuf, &stderrBuf, dir, name, args...)
	stdout = stdoutBuf.String()
	stderr = stderrBuf.String()
	if err != nil {
		return stdout, stderr, errors.Annotate(err, "running `%s %s`: %s", name, strings.Join(args, " "), tail(stderr)).Err()
	}
	return stdout, stderr, nil
}

// RunWithTimeout runs the command under its own deadline on top of any
// deadline already in ctx. Expiry surfaces as a timeout error rather than
// the raw SIGKILL exit status.
func RunWithTimeout(ctx context.Context, runner CommandRunner, timeout time.Duration, dir, name string, args ...string) (stdout, stderr string, err error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	stdout, stderr, err = Output(ctx, runner, dir, name, args...)
	if err != nil && ctx.Err() == context.DeadlineExceeded {
		return stdout, stderr, errors.Annotate(ctx.Err(), "`%s %s` did not finish within %s", name, strings.Join(args, " "), timeout).Err()
	}
	return stdout, stderr, err
}

// tail returns the last non-empty line of s, trimmed.
func tail(s string) string {
	lines := strings.Split(strings.TrimSpace(s), "\n")
	for i := len(lines) - 1; i >= 0; i-- {
		if l := strings.TrimSpace(lines[i]); l != "" {
			return l
		}
	}
	return ""
}
