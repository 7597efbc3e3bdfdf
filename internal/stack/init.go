// Copyright 2025 The AYNI Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package stack

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/Brownbull/ayni-be/internal/envfile"
	"github.com/Brownbull/ayni-be/internal/site"
)

// Init bootstraps a project without starting it: .env is created from
// the template when missing and the compose file is parsed and
// validated. Docker does not need to be running.
func Init(ctx context.Context, opts Options) error {
	if err := opts.normalize(); err != nil {
		return err
	}
	created, err := envfile.Ensure(opts.Dir)
	if err != nil {
		return err
	}
	if created {
		fmt.Fprintf(opts.Stdout, "created %s from %s\n", site.EnvFilename, site.EnvExampleFilename)
	} else {
		fmt.Fprintf(opts.Stdout, "%s already present\n", site.EnvFilename)
	}
	env, err := envfile.ReadProject(opts.Dir)
	if err != nil {
		return err
	}
	file, path, err := loadComposeFile(&opts, env)
	if err != nil {
		return err
	}
	if err := file.Validate(); err != nil {
		return err
	}
	fmt.Fprintf(opts.Stdout, "%s ok: %d services\n", filepath.Base(path), len(file.Services))
	return nil
}
