// Copyright 2025 The AYNI Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package docker

import (
	"context"
	"testing"

	"github.com/Brownbull/ayni-be/internal/assert"
	"github.com/Brownbull/ayni-be/internal/cmd"
)

func TestPing(t *testing.T) {
	t.Parallel()
	runner := &cmd.FakeCommandRunner{
		ExpectedCmd: []string{"docker", "version", "--format", "{{.Server.Version}}"},
		Stdout:      "26.1.3\n",
	}
	version, err := Ping(context.Background(), runner)
	assert.NilError(t, err)
	assert.StringsEqual(t, version, "26.1.3")
}

func TestPingDaemonDown(t *testing.T) {
	t.Parallel()
	runner := &cmd.FakeCommandRunner{
		Stderr:      "Cannot connect to the Docker daemon at unix:///var/run/docker.sock",
		FailCommand: true,
	}
	_, err := Ping(context.Background(), runner)
	assert.ErrorContains(t, err, "Docker daemon is not running")
}
