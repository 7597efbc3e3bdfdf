// Copyright 2025 The AYNI Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package stack

import (
	"context"
	"fmt"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/Brownbull/ayni-be/internal/envfile"
	"github.com/Brownbull/ayni-be/internal/health"
	"github.com/Brownbull/ayni-be/internal/site"
)

// checker returns the health probe for one service. The data stores and
// HTTP surfaces get real client probes; anything else is judged by its
// container state, honoring a compose healthcheck when the service
// defines one.
func (s *Stack) checker(service string) health.Checker {
	switch service {
	case site.ServiceDB:
		return &health.PostgresChecker{
			Host:     "localhost",
			Port:     s.ports.DB,
			User:     envfile.Lookup(s.env, site.EnvKeyPostgresUser, site.DefaultPostgresUser),
			Password: envfile.Lookup(s.env, site.EnvKeyPostgresPassword, site.DefaultPostgresPassword),
			DBName:   envfile.Lookup(s.env, site.EnvKeyPostgresDB, site.DefaultPostgresDB),
		}
	case site.ServiceRedis:
		return &health.RedisChecker{Host: "localhost", Port: s.ports.Redis}
	case site.ServiceBackend:
		return &health.HTTPChecker{URL: site.BackendURL(s.ports.Backend) + site.BackendHealthPath}
	case site.ServiceFlower:
		return &health.HTTPChecker{URL: site.FlowerURL(s.ports.Flower) + site.FlowerHealthPath}
	default:
		needHealthy := false
		if svc, ok := s.file.Services[service]; ok {
			needHealthy = svc.HealthcheckDefined()
		}
		return &health.ContainerChecker{Client: s.client, Service: service, NeedHealthy: needHealthy}
	}
}

// waitTimeout returns the service deadline scaled by the run options.
func (s *Stack) waitTimeout(service string) time.Duration {
	return time.Duration(float64(site.ReadyTimeout(service)) * s.opts.WaitScale)
}

// waitStage probes every service of one stage in parallel and returns
// when all are healthy. The first failure cancels the rest; a stage with
// a dead member is failed regardless.
func (s *Stack) waitStage(ctx context.Context, services []string) error {
	g, ctx := errgroup.WithContext(ctx)
	for _, service := range services {
		service := service
		c := s.checker(service)
		g.Go(func() error {
			return health.Poll(ctx, c, &health.Options{Timeout: s.waitTimeout(service)})
		})
	}
	return g.Wait()
}

// waitStages walks the stages in order, gating each on the previous.
func (s *Stack) waitStages(ctx context.Context, stages [][]string) error {
	for _, stage := range stages {
		fmt.Fprintf(s.opts.Stdout, "waiting for %s\n", strings.Join(stage, ", "))
		if err := s.waitStage(ctx, stage); err != nil {
			return err
		}
	}
	return nil
}
