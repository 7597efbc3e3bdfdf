// Copyright 2025 The AYNI Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

// Package subcmds implements the aynistack commands.
package subcmds

import (
	"context"

	"github.com/maruel/subcommands"
	"github.com/mitchellh/go-homedir"
	"go.chromium.org/luci/common/errors"
	"go.chromium.org/luci/common/logging"

	"github.com/Brownbull/ayni-be/internal/site"
	"github.com/Brownbull/ayni-be/internal/stack"
)

// baseRun carries the flags every stack command shares.
type baseRun struct {
	subcommands.CommandRunBase
	dir          string
	file         string
	timeoutScale float64
	verbose      bool
}

func (c *baseRun) registerFlags() {
	c.Flags.StringVar(&c.dir, "C", ".", "Project directory holding "+site.ComposeFilename+".")
	c.Flags.StringVar(&c.file, "f", "", "Compose file path. Overrides the standard names under -C.")
	c.Flags.Float64Var(&c.timeoutScale, "timeout-scale", 1, "Multiplier applied to every health deadline. Use >1 on slow machines.")
	c.Flags.BoolVar(&c.verbose, "verbose", false, "Log every external command and probe attempt.")
}

// ModifyContext implements cli.ContextModificator, raising the log level
// with -verbose.
func (c *baseRun) ModifyContext(ctx context.Context) context.Context {
	if c.verbose {
		ctx = logging.SetLevel(ctx, logging.Debug)
	}
	return ctx
}

// stackOptions resolves the shared flags into stack options.
func (c *baseRun) stackOptions() (stack.Options, error) {
	dir, err := homedir.Expand(c.dir)
	if err != nil {
		return stack.Options{}, errors.Annotate(err, "expand -C").Err()
	}
	file := c.file
	if file != "" {
		if file, err = homedir.Expand(file); err != nil {
			return stack.Options{}, errors.Annotate(err, "expand -f").Err()
		}
	}
	return stack.Options{Dir: dir, File: file, WaitScale: c.timeoutScale}, nil
}

// newStack builds the Stack for the shared flags.
func (c *baseRun) newStack(ctx context.Context) (*stack.Stack, error) {
	opts, err := c.stackOptions()
	if err != nil {
		return nil, err
	}
	return stack.New(ctx, opts)
}
