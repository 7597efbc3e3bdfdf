// Copyright 2025 The AYNI Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package compose

import (
	"context"
	"io"
	"strconv"
	"strings"

	"go.chromium.org/luci/common/errors"
	"go.chromium.org/luci/common/logging"

	"github.com/Brownbull/ayni-be/internal/cmd"
)

// Tool identifies the installed compose CLI flavor. The zero value acts
// as the `docker compose` plugin.
type Tool struct {
	argv []string
	// Version as reported by `version --short`.
	Version string
}

func (t Tool) command() []string {
	if len(t.argv) == 0 {
		return []string{"docker", "compose"}
	}
	return t.argv
}

// String returns the command prefix, e.g. "docker compose".
func (t Tool) String() string {
	return strings.Join(t.command(), " ")
}

// Plugin reports whether the tool is the docker CLI plugin rather than a
// standalone docker-compose binary.
func (t Tool) Plugin() bool {
	return len(t.command()) == 2
}

// Detect finds the compose CLI, preferring the `docker compose` plugin
// and falling back to standalone `docker-compose`.
func Detect(ctx context.Context, runner cmd.CommandRunner) (Tool, error) {
	if out, _, err := cmd.Output(ctx, runner, "", "docker", "compose", "version", "--short"); err == nil {
		t := Tool{argv: []string{"docker", "compose"}, Version: strings.TrimSpace(out)}
		logging.Debugf(ctx, "using %s %s", t, t.Version)
		return t, nil
	}
	if out, _, err := cmd.Output(ctx, runner, "", "docker-compose", "version", "--short"); err == nil {
		t := Tool{argv: []string{"docker-compose"}, Version: strings.TrimSpace(out)}
		logging.Debugf(ctx, "using %s %s", t, t.Version)
		return t, nil
	}
	return Tool{}, errors.Reason("docker compose is not available; install the compose plugin or docker-compose").Err()
}

// Client drives the compose CLI for one project.
type Client struct {
	Runner cmd.CommandRunner
	Tool   Tool
	// Dir is the project directory commands run in.
	Dir string
	// File is the compose file path passed with -f.
	File string
	// Stdout and Stderr receive streamed output from up, stop and logs.
	// Nil writers discard.
	Stdout io.Writer
	Stderr io.Writer
}

// Up starts the given services detached, or the whole stack when services
// is empty. With build set, images are rebuilt first.
func (c *Client) Up(ctx context.Context, services []string, build bool) error {
	args := []string{"up", "--detach"}
	if build {
		args = append(args, "--build")
	}
	return c.run(ctx, append(args, services...)...)
}

// Stop stops services without removing their containers.
func (c *Client) Stop(ctx context.Context, services []string) error {
	return c.run(ctx, append([]string{"stop"}, services...)...)
}

// Down stops the stack and removes its containers and networks. With
// removeVolumes set the named volumes go too, which destroys the
// database.
func (c *Client) Down(ctx context.Context, removeVolumes bool) error {
	args := []string{"down", "--remove-orphans"}
	if removeVolumes {
		args = append(args, "--volumes")
	}
	return c.run(ctx, args...)
}

// Restart restarts the given services, or the whole stack.
func (c *Client) Restart(ctx context.Context, services []string) error {
	return c.run(ctx, append([]string{"restart"}, services...)...)
}

// Logs streams service logs to the client's Stdout. tail limits the
// backlog per container; 0 means everything.
func (c *Client) Logs(ctx context.Context, services []string, follow bool, tail int) error {
	args := []string{"logs"}
	if follow {
		args = append(args, "--follow")
	}
	if tail > 0 {
		args = append(args, "--tail", strconv.Itoa(tail))
	}
	return c.run(ctx, append(args, services...)...)
}

// PS returns the status of the project's containers, including stopped
// ones.
func (c *Client) PS(ctx context.Context) ([]ContainerStatus, error) {
	out, err := c.capture(ctx, "ps", "--all", "--format", "json")
	if err != nil {
		return nil, err
	}
	statuses, err := parsePS(out)
	if err != nil {
		return nil, errors.Annotate(err, "parse `%s ps` output", c.Tool).Err()
	}
	return statuses, nil
}

// Exec runs a command inside a running service container and returns its
// stdout.
func (c *Client) Exec(ctx context.Context, service string, command ...string) (string, error) {
	args := append([]string{"exec", "-T", service}, command...)
	return c.capture(ctx, args...)
}

// run streams a compose command to the client's writers.
func (c *Client) run(ctx context.Context, args ...string) error {
	name, full := c.argv(args)
	stdout, stderr := c.Stdout, c.Stderr
	if stdout == nil {
		stdout = io.Discard
	}
	if stderr == nil {
		stderr = io.Discard
	}
	logging.Debugf(ctx, "%s %s", c.Tool, strings.Join(args, " "))
	if err := c.Runner.RunCommand(ctx, stdout, stderr, c.Dir, name, full...); err != nil {
		return errors.Annotate(err, "%s %s", c.Tool, args[0]).Err()
	}
	return nil
}

// capture runs a compose command and returns its stdout.
func (c *Client) capture(ctx context.Context, args ...string) (string, error) {
	name, full := c.argv(args)
	out, _, err := cmd.Output(ctx, c.Runner, c.Dir, name, full...)
	if err != nil {
		return out, errors.Annotate(err, "%s %s", c.Tool, args[0]).Err()
	}
	return out, nil
}

// argv assembles the full command line: tool prefix, -f file, then args.
func (c *Client) argv(args []string) (name string, full []string) {
	prefix := c.Tool.command()
	full = append([]string{}, prefix[1:]...)
	if c.File != "" {
		full = append(full, "-f", c.File)
	}
	full = append(full, args...)
	return prefix[0], full
}
