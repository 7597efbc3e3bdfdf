// Copyright 2025 The AYNI Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package health

import (
	"context"
	"fmt"
	"strings"

	"go.chromium.org/luci/common/errors"

	"github.com/Brownbull/ayni-be/internal/compose"
)

// ContainerChecker asks compose about the container's state. It is the
// probe for workers that expose no port: celery and celery-beat are
// healthy when their container stays up.
type ContainerChecker struct {
	Client  *compose.Client
	Service string
	// NeedHealthy additionally requires docker's own healthcheck to
	// pass, for services that define one in the compose file.
	NeedHealthy bool
}

// Name implements Checker.
func (c *ContainerChecker) Name() string {
	return fmt.Sprintf("container (%s)", c.Service)
}

// Check implements Checker.
func (c *ContainerChecker) Check(ctx context.Context) error {
	statuses, err := c.Client.PS(ctx)
	if err != nil {
		return err
	}
	s, ok := compose.ByService(statuses)[c.Service]
	if !ok {
		return errors.Reason("no container for service %s", c.Service).Err()
	}
	if s.State == compose.StateExited {
		return errors.Reason("container %s exited with code %d", s.Name, s.ExitCode).Err()
	}
	if !s.Running() {
		return errors.Reason("container %s is %s", s.Name, s.State).Err()
	}
	if c.NeedHealthy && !s.Healthy() {
		return errors.Reason("container %s health is %q", s.Name, s.Health).Err()
	}
	return nil
}

// CeleryChecker asks the worker itself whether it is consuming, via
// celery's inspect ping run inside the container. Slower and stricter
// than ContainerChecker; used by deep status probes.
type CeleryChecker struct {
	Client  *compose.Client
	Service string
	// App is the Django package holding the Celery application.
	App string
}

// Name implements Checker.
func (c *CeleryChecker) Name() string {
	return fmt.Sprintf("celery (%s)", c.Service)
}

// Check implements Checker.
func (c *CeleryChecker) Check(ctx context.Context) error {
	out, err := c.Client.Exec(ctx, c.Service, "celery", "-A", c.App, "inspect", "ping", "--timeout", "5")
	if err != nil {
		return errors.Annotate(err, "inspect ping").Err()
	}
	if !strings.Contains(out, "pong") && !strings.Contains(out, "OK") {
		return errors.Reason("worker did not answer ping: %s", strings.TrimSpace(out)).Err()
	}
	return nil
}
