// Copyright 2025 The AYNI Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package stack

import (
	"context"
	"fmt"
	"strings"

	"go.chromium.org/luci/common/logging"

	"github.com/Brownbull/ayni-be/internal/docker"
	"github.com/Brownbull/ayni-be/internal/envfile"
	"github.com/Brownbull/ayni-be/internal/site"
)

// UpOptions configure Up and Restart.
type UpOptions struct {
	// Build rebuilds images before starting.
	Build bool
	// NoWait skips the health gates.
	NoWait bool
}

// Up brings the requested services (default: the whole stack) to
// healthy: bootstrap .env if needed, start stage by stage, gate each
// stage on its health probes, then print where everything listens.
func (s *Stack) Up(ctx context.Context, services []string, opts UpOptions) error {
	return s.withLock(func() error { return s.up(ctx, services, opts) })
}

func (s *Stack) up(ctx context.Context, services []string, opts UpOptions) (err error) {
	st := newState("up", services)
	defer s.record(ctx, st, &err)

	if _, err := docker.Ping(ctx, s.opts.Runner); err != nil {
		return err
	}
	created, err := envfile.Ensure(s.opts.Dir)
	if err != nil {
		return err
	}
	if created {
		fmt.Fprintf(s.opts.Stdout, "created %s from %s\n", site.EnvFilename, site.EnvExampleFilename)
	}
	if err := s.load(ctx); err != nil {
		return err
	}
	stages, err := s.stages(services)
	if err != nil {
		return err
	}
	if err := s.startStages(ctx, stages, opts); err != nil {
		return err
	}
	s.printEndpoints(len(services) == 0)
	return nil
}

// startStages runs the plan: compose up per stage, then that stage's
// health gates.
func (s *Stack) startStages(ctx context.Context, stages [][]string, opts UpOptions) error {
	for i, stage := range stages {
		fmt.Fprintf(s.opts.Stdout, "starting %s (stage %d/%d)\n", strings.Join(stage, ", "), i+1, len(stages))
		if err := s.client.Up(ctx, stage, opts.Build); err != nil {
			return err
		}
		if opts.NoWait {
			continue
		}
		if err := s.waitStage(ctx, stage); err != nil {
			return err
		}
	}
	return nil
}

// Stop stops the requested services, or the whole stack, in reverse
// start order. Containers stay around for a fast next Up.
func (s *Stack) Stop(ctx context.Context, services []string) error {
	return s.withLock(func() error { return s.stop(ctx, services) })
}

func (s *Stack) stop(ctx context.Context, services []string) (err error) {
	st := newState("stop", services)
	defer s.record(ctx, st, &err)

	if _, err := docker.Ping(ctx, s.opts.Runner); err != nil {
		return err
	}
	if err := s.load(ctx); err != nil {
		return err
	}
	stages, err := s.stopStages(services)
	if err != nil {
		return err
	}
	for _, stage := range stages {
		fmt.Fprintf(s.opts.Stdout, "stopping %s\n", strings.Join(stage, ", "))
		if err := s.client.Stop(ctx, stage); err != nil {
			return err
		}
	}
	fmt.Fprintf(s.opts.Stdout, "Stack stopped.\n")
	return nil
}

// Down stops the stack and removes its containers and networks. With
// removeVolumes the named volumes are deleted too, wiping the database.
func (s *Stack) Down(ctx context.Context, removeVolumes bool) error {
	return s.withLock(func() error { return s.down(ctx, removeVolumes) })
}

func (s *Stack) down(ctx context.Context, removeVolumes bool) (err error) {
	st := newState("down", nil)
	defer s.record(ctx, st, &err)

	if _, err := docker.Ping(ctx, s.opts.Runner); err != nil {
		return err
	}
	if err := s.load(ctx); err != nil {
		return err
	}
	if err := s.client.Down(ctx, removeVolumes); err != nil {
		return err
	}
	if removeVolumes {
		fmt.Fprintf(s.opts.Stdout, "Stack removed, volumes included.\n")
	} else {
		fmt.Fprintf(s.opts.Stdout, "Stack removed. Volumes kept.\n")
	}
	return nil
}

// Restart stops and starts the requested services, or the whole stack,
// under one lock and one state record.
func (s *Stack) Restart(ctx context.Context, services []string, opts UpOptions) error {
	return s.withLock(func() error { return s.restart(ctx, services, opts) })
}

func (s *Stack) restart(ctx context.Context, services []string, opts UpOptions) (err error) {
	st := newState("restart", services)
	defer s.record(ctx, st, &err)

	if _, err := docker.Ping(ctx, s.opts.Runner); err != nil {
		return err
	}
	if err := s.load(ctx); err != nil {
		return err
	}
	stopOrder, err := s.stopStages(services)
	if err != nil {
		return err
	}
	for _, stage := range stopOrder {
		fmt.Fprintf(s.opts.Stdout, "stopping %s\n", strings.Join(stage, ", "))
		if err := s.client.Stop(ctx, stage); err != nil {
			return err
		}
	}
	stages, err := s.stages(services)
	if err != nil {
		return err
	}
	if err := s.startStages(ctx, stages, opts); err != nil {
		return err
	}
	s.printEndpoints(len(services) == 0)
	return nil
}

// Wait runs the health sequence against an already-started stack without
// touching it.
func (s *Stack) Wait(ctx context.Context, services []string) error {
	if _, err := docker.Ping(ctx, s.opts.Runner); err != nil {
		return err
	}
	if err := s.load(ctx); err != nil {
		return err
	}
	stages, err := s.stages(services)
	if err != nil {
		return err
	}
	if err := s.waitStages(ctx, stages); err != nil {
		return err
	}
	fmt.Fprintf(s.opts.Stdout, "All services healthy.\n")
	return nil
}

// Logs streams service logs through compose.
func (s *Stack) Logs(ctx context.Context, services []string, follow bool, tail int) error {
	if err := s.load(ctx); err != nil {
		return err
	}
	for _, name := range services {
		if _, err := s.file.Service(name); err != nil {
			return err
		}
	}
	return s.client.Logs(ctx, services, follow, tail)
}

// record finishes the state file for a mutation; failures to write it
// are logged, never fatal.
func (s *Stack) record(ctx context.Context, st *State, err *error) {
	if werr := st.finish(s.opts.Dir, *err == nil); werr != nil {
		logging.Warningf(ctx, "state not recorded: %s", werr)
	}
}

// printEndpoints tells the developer where the stack listens. The two
// URLs people actually open are the admin and the API docs.
func (s *Stack) printEndpoints(whole bool) {
	w := s.opts.Stdout
	if whole {
		fmt.Fprintf(w, "\nStack is up.\n")
	} else {
		fmt.Fprintf(w, "\nServices started.\n")
	}
	if _, ok := s.file.Services[site.ServiceBackend]; ok {
		base := site.BackendURL(s.ports.Backend)
		fmt.Fprintf(w, "  backend: %s  (admin %s%s, api docs %s%s)\n",
			base, base, site.BackendHealthPath, base, site.BackendDocsPath)
	}
	if _, ok := s.file.Services[site.ServiceFlower]; ok {
		fmt.Fprintf(w, "  flower:  %s\n", site.FlowerURL(s.ports.Flower))
	}
}
