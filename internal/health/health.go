// Copyright 2025 The AYNI Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

// Package health decides when a stack service counts as ready.
//
// Each service gets a Checker probing it the way a client would: a real
// Postgres handshake, a Redis PING, an HTTP GET. Poll drives a checker
// until it passes or its deadline expires; waiting is always bounded.
package health

import (
	"context"
	"time"

	"go.chromium.org/luci/common/errors"
	"go.chromium.org/luci/common/logging"
)

// Checker probes one service once.
type Checker interface {
	// Name identifies the probe in logs and errors.
	Name() string
	// Check returns nil when the service is ready.
	Check(ctx context.Context) error
}

// Options bounds and paces a Poll.
type Options struct {
	// Timeout is the overall deadline. Zero means DefaultTimeout.
	Timeout time.Duration
	// Interval is the delay before the second attempt. Zero means
	// DefaultInterval. Each retry multiplies it by Backoff up to
	// MaxInterval, so a slow service is probed gently instead of being
	// hammered once a second for two minutes.
	Interval    time.Duration
	Backoff     float64
	MaxInterval time.Duration
}

// Defaults for Options fields left zero.
const (
	DefaultTimeout     = 2 * time.Minute
	DefaultInterval    = time.Second
	DefaultBackoff     = 1.5
	DefaultMaxInterval = 8 * time.Second
)

func (o *Options) withDefaults() Options {
	out := Options{}
	if o != nil {
		out = *o
	}
	if out.Timeout <= 0 {
		out.Timeout = DefaultTimeout
	}
	if out.Interval <= 0 {
		out.Interval = DefaultInterval
	}
	if out.Backoff < 1 {
		out.Backoff = DefaultBackoff
	}
	if out.MaxInterval <= 0 {
		out.MaxInterval = DefaultMaxInterval
	}
	return out
}

// Poll runs the checker until it passes or the deadline expires. The
// returned error wraps the last probe failure, which is what the user
// needs to see, not merely "timed out".
func Poll(ctx context.Context, c Checker, opts *Options) error {
	o := opts.withDefaults()
	ctx, cancel := context.WithTimeout(ctx, o.Timeout)
	defer cancel()

	interval := o.Interval
	for attempt := 1; ; attempt++ {
		err := c.Check(ctx)
		if err == nil {
			logging.Debugf(ctx, "%s ready after %d attempt(s)", c.Name(), attempt)
			return nil
		}
		logging.Debugf(ctx, "%s not ready (attempt %d): %s", c.Name(), attempt, err)

		select {
		case <-ctx.Done():
			return errors.Annotate(err, "%s did not become healthy within %s", c.Name(), o.Timeout).Err()
		case <-time.After(interval):
		}
		interval = time.Duration(float64(interval) * o.Backoff)
		if interval > o.MaxInterval {
			interval = o.MaxInterval
		}
	}
}
