// Copyright 2025 The AYNI Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

// Package docker probes the docker CLI and daemon. Stack mutations go
// through the compose wrapper; this package only answers "is docker
// usable at all", which every command needs before doing anything else.
package docker

import (
	"context"
	"os/exec"
	"strings"

	"go.chromium.org/luci/common/errors"
	"go.chromium.org/luci/common/logging"

	"github.com/Brownbull/ayni-be/internal/cmd"
)

// Binary returns the path of the docker CLI, or an error when it is not
// installed at all.
func Binary() (string, error) {
	path, err := exec.LookPath("docker")
	if err != nil {
		return "", errors.Annotate(err, "docker is not installed or not on PATH").Err()
	}
	return path, nil
}

// Ping checks that the docker daemon is up and answering, returning the
// server version. A dead daemon is the very first thing to rule out, so
// the error spells out what to do about it.
func Ping(ctx context.Context, runner cmd.CommandRunner) (string, error) {
	out, _, err := cmd.Output(ctx, runner, "", "docker", "version", "--format", "{{.Server.Version}}")
	if err != nil {
		return "", errors.Annotate(err, "the Docker daemon is not running; start Docker Desktop (or dockerd) and retry").Err()
	}
	version := strings.TrimSpace(out)
	logging.Debugf(ctx, "docker daemon %s is up", version)
	return version, nil
}
