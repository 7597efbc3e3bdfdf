// Copyright 2025 The AYNI Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package stack

import (
	"context"
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"

	"github.com/Brownbull/ayni-be/internal/compose"
	"github.com/Brownbull/ayni-be/internal/docker"
	"github.com/Brownbull/ayni-be/internal/graph"
	"github.com/Brownbull/ayni-be/internal/health"
	"github.com/Brownbull/ayni-be/internal/site"
)

// Status prints one line per service: container state, docker health,
// published ports and age. With probe set it also runs each service's
// health check once and reports the Celery queue backlog.
func (s *Stack) Status(ctx context.Context, probe bool) error {
	if _, err := docker.Ping(ctx, s.opts.Runner); err != nil {
		return err
	}
	if err := s.load(ctx); err != nil {
		return err
	}
	statuses, err := s.client.PS(ctx)
	if err != nil {
		return err
	}
	byService := compose.ByService(statuses)
	w := s.opts.Stdout

	if st := readState(s.opts.Dir); st != nil {
		verdict := "ok"
		if !st.OK {
			verdict = "failed"
		}
		fmt.Fprintf(w, "last action: %s (%s) %s\n\n", st.Command, verdict, humanize.Time(st.FinishedAt))
	}

	stages, err := s.stages(nil)
	if err != nil {
		return err
	}
	order := graph.Flatten(stages)

	fmt.Fprintf(w, "%-14s %-12s %-10s %-28s %s\n", "SERVICE", "STATE", "HEALTH", "PORTS", "CREATED")
	for _, name := range order {
		cs, ok := byService[name]
		if !ok {
			fmt.Fprintf(w, "%-14s %-12s %-10s %-28s %s\n", name, "-", "-", "-", "-")
			continue
		}
		healthCol := cs.Health
		if healthCol == "" {
			healthCol = "-"
		}
		created := "-"
		if t := cs.CreatedAt(); !t.IsZero() {
			created = humanize.Time(t)
		}
		fmt.Fprintf(w, "%-14s %-12s %-10s %-28s %s\n", name, cs.State, healthCol, formatPorts(cs.Publishers), created)
	}

	if !probe {
		return nil
	}
	fmt.Fprintf(w, "\nprobes:\n")
	for _, name := range order {
		cs, ok := byService[name]
		if !ok || !cs.Running() {
			fmt.Fprintf(w, "  %-14s skipped (not running)\n", name)
			continue
		}
		if err := s.probeChecker(name).Check(ctx); err != nil {
			fmt.Fprintf(w, "  %-14s FAIL: %s\n", name, err)
		} else {
			fmt.Fprintf(w, "  %-14s ok\n", name)
		}
	}
	if cs, ok := byService[site.ServiceRedis]; ok && cs.Running() {
		rc := &health.RedisChecker{Host: "localhost", Port: s.ports.Redis}
		if depth, err := rc.QueueDepth(ctx, site.CeleryQueue); err == nil {
			fmt.Fprintf(w, "\nqueue %q: %d pending task(s)\n", site.CeleryQueue, depth)
		}
	}
	return nil
}

// probeChecker is the checker used by deep status probes. The worker
// gets asked directly whether it consumes; everything else keeps its
// wait-path checker. celery-beat stays on the container check since only
// workers answer inspect ping.
func (s *Stack) probeChecker(name string) health.Checker {
	if name == site.ServiceCelery {
		return &health.CeleryChecker{Client: s.client, Service: name, App: site.CeleryApp}
	}
	return s.checker(name)
}

func formatPorts(pubs []compose.Publisher) string {
	parts := make([]string, 0, len(pubs))
	for _, p := range pubs {
		if p.PublishedPort == 0 {
			continue
		}
		parts = append(parts, fmt.Sprintf("%s:%d->%d/%s", p.URL, p.PublishedPort, p.TargetPort, p.Protocol))
	}
	if len(parts) == 0 {
		return "-"
	}
	return strings.Join(parts, ", ")
}
