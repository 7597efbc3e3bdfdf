// Copyright 2025 The AYNI Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package compose

import (
	"bytes"
	"context"
	"testing"

	"github.com/Brownbull/ayni-be/internal/assert"
	"github.com/Brownbull/ayni-be/internal/cmd"
)

func testClient(runner cmd.CommandRunner) *Client {
	return &Client{
		Runner: runner,
		Tool:   Tool{argv: []string{"docker", "compose"}},
		Dir:    "/proj",
		File:   "docker-compose.yml",
	}
}

func TestDetectPrefersPlugin(t *testing.T) {
	t.Parallel()
	runner := &cmd.FakeCommandRunner{
		ExpectedCmd: []string{"docker", "compose", "version", "--short"},
		Stdout:      "2.24.5\n",
	}
	tool, err := Detect(context.Background(), runner)
	assert.NilError(t, err)
	assert.Assert(t, tool.Plugin())
	assert.StringsEqual(t, tool.String(), "docker compose")
	assert.StringsEqual(t, tool.Version, "2.24.5")
}

func TestDetectFallsBackToStandalone(t *testing.T) {
	t.Parallel()
	runner := &cmd.FakeCommandRunnerMulti{
		CommandRunners: []cmd.FakeCommandRunner{
			{
				ExpectedCmd: []string{"docker", "compose", "version", "--short"},
				FailCommand: true,
			},
			{
				ExpectedCmd: []string{"docker-compose", "version", "--short"},
				Stdout:      "1.29.2\n",
			},
		},
	}
	tool, err := Detect(context.Background(), runner)
	assert.NilError(t, err)
	assert.Assert(t, !tool.Plugin())
	assert.StringsEqual(t, tool.String(), "docker-compose")
}

func TestDetectNeitherInstalled(t *testing.T) {
	t.Parallel()
	runner := &cmd.FakeCommandRunnerMulti{
		CommandRunners: []cmd.FakeCommandRunner{
			{FailCommand: true},
			{FailCommand: true},
		},
	}
	_, err := Detect(context.Background(), runner)
	assert.ErrorContains(t, err, "not available")
}

func TestUp(t *testing.T) {
	t.Parallel()
	runner := &cmd.FakeCommandRunner{
		ExpectedCmd: []string{"docker", "compose", "-f", "docker-compose.yml", "up", "--detach", "db", "redis"},
		ExpectedDir: "/proj",
	}
	c := testClient(runner)
	assert.NilError(t, c.Up(context.Background(), []string{"db", "redis"}, false))
}

func TestUpWithBuild(t *testing.T) {
	t.Parallel()
	runner := &cmd.FakeCommandRunner{
		ExpectedCmd: []string{"docker", "compose", "-f", "docker-compose.yml", "up", "--detach", "--build"},
	}
	c := testClient(runner)
	assert.NilError(t, c.Up(context.Background(), nil, true))
}

func TestStopAndDown(t *testing.T) {
	t.Parallel()
	runner := &cmd.FakeCommandRunnerMulti{
		CommandRunners: []cmd.FakeCommandRunner{
			{ExpectedCmd: []string{"docker", "compose", "-f", "docker-compose.yml", "stop", "flower"}},
			{ExpectedCmd: []string{"docker", "compose", "-f", "docker-compose.yml", "down", "--remove-orphans"}},
			{ExpectedCmd: []string{"docker", "compose", "-f", "docker-compose.yml", "down", "--remove-orphans", "--volumes"}},
		},
	}
	c := testClient(runner)
	ctx := context.Background()
	assert.NilError(t, c.Stop(ctx, []string{"flower"}))
	assert.NilError(t, c.Down(ctx, false))
	assert.NilError(t, c.Down(ctx, true))
	assert.IntsEqual(t, runner.Calls(), 3)
}

func TestLogsStreamToClientWriters(t *testing.T) {
	t.Parallel()
	runner := &cmd.FakeCommandRunner{
		ExpectedCmd: []string{"docker", "compose", "-f", "docker-compose.yml", "logs", "--follow", "--tail", "100", "backend"},
		Stdout:      "backend-1  | Starting development server\n",
	}
	c := testClient(runner)
	var out bytes.Buffer
	c.Stdout = &out
	assert.NilError(t, c.Logs(context.Background(), []string{"backend"}, true, 100))
	assert.StringsEqual(t, out.String(), "backend-1  | Starting development server\n")
}

func TestExecCapturesStdout(t *testing.T) {
	t.Parallel()
	runner := &cmd.FakeCommandRunner{
		ExpectedCmd: []string{"docker", "compose", "-f", "docker-compose.yml", "exec", "-T", "celery", "celery", "-A", "config", "inspect", "ping"},
		Stdout:      "->  celery@worker: OK\n",
	}
	c := testClient(runner)
	out, err := c.Exec(context.Background(), "celery", "celery", "-A", "config", "inspect", "ping")
	assert.NilError(t, err)
	assert.StringsEqual(t, out, "->  celery@worker: OK\n")
}

func TestCommandFailureIsAnnotated(t *testing.T) {
	t.Parallel()
	runner := &cmd.FakeCommandRunner{FailCommand: true}
	c := testClient(runner)
	err := c.Up(context.Background(), nil, false)
	assert.ErrorContains(t, err, "docker compose up")
}
