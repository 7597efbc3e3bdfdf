// Copyright 2025 The AYNI Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

// Package stack orchestrates the AYNI development stack: it plans start
// stages from the compose file, drives the compose CLI, and gates each
// stage on real health probes.
package stack

import (
	"context"
	"io"
	"os"
	"path/filepath"

	"go.chromium.org/luci/common/errors"

	"github.com/Brownbull/ayni-be/internal/cmd"
	"github.com/Brownbull/ayni-be/internal/compose"
	"github.com/Brownbull/ayni-be/internal/envfile"
	"github.com/Brownbull/ayni-be/internal/graph"
	"github.com/Brownbull/ayni-be/internal/site"
)

// Options configures a Stack.
type Options struct {
	// Dir is the project directory holding docker-compose.yml.
	Dir string
	// File overrides the compose file path. Empty means the standard
	// names under Dir.
	File string
	// Runner executes external commands; tests inject fakes here.
	Runner cmd.CommandRunner
	// Stdout and Stderr receive user-facing output.
	Stdout io.Writer
	Stderr io.Writer
	// WaitScale multiplies every health deadline. Zero means 1.
	WaitScale float64
}

func (o *Options) normalize() error {
	if o.Runner == nil {
		o.Runner = cmd.RealCommandRunner{}
	}
	if o.Stdout == nil {
		o.Stdout = os.Stdout
	}
	if o.Stderr == nil {
		o.Stderr = os.Stderr
	}
	if o.WaitScale <= 0 {
		o.WaitScale = 1
	}
	abs, err := filepath.Abs(o.Dir)
	if err != nil {
		return errors.Annotate(err, "resolve project directory").Err()
	}
	o.Dir = abs
	return nil
}

// Stack operates on one project directory.
type Stack struct {
	opts   Options
	client *compose.Client

	// Populated by load.
	env   map[string]string
	file  *compose.File
	path  string
	ports Ports
}

// Ports holds the resolved host ports of the addressable services.
type Ports struct {
	DB      int
	Redis   int
	Backend int
	Flower  int
}

// New builds a Stack for the project in opts.Dir. It requires a working
// compose CLI but does not touch the project files yet; every operation
// loads them fresh so a converge loop sees edits.
func New(ctx context.Context, opts Options) (*Stack, error) {
	if err := opts.normalize(); err != nil {
		return nil, err
	}
	tool, err := compose.Detect(ctx, opts.Runner)
	if err != nil {
		return nil, err
	}
	return &Stack{
		opts: opts,
		client: &compose.Client{
			Runner: opts.Runner,
			Tool:   tool,
			Dir:    opts.Dir,
			Stdout: opts.Stdout,
			Stderr: opts.Stderr,
		},
	}, nil
}

// Dir returns the project directory the stack operates on.
func (s *Stack) Dir() string {
	return s.opts.Dir
}

// load reads .env and the compose file and resolves ports. Called at the
// start of every operation.
func (s *Stack) load(ctx context.Context) error {
	env, err := envfile.ReadProject(s.opts.Dir)
	if err != nil {
		return err
	}
	file, path, err := loadComposeFile(&s.opts, env)
	if err != nil {
		return err
	}
	if err := file.Validate(); err != nil {
		return err
	}
	ports, err := resolvePorts(file, env)
	if err != nil {
		return err
	}
	s.env = env
	s.file = file
	s.path = path
	s.ports = ports
	s.client.File = path
	return nil
}

// loadComposeFile reads the compose file named by opts, falling back to
// the standard names under the project directory.
func loadComposeFile(opts *Options, env map[string]string) (*compose.File, string, error) {
	if opts.File == "" {
		return compose.Load(opts.Dir, env)
	}
	data, err := os.ReadFile(opts.File)
	if err != nil {
		return nil, "", errors.Annotate(err, "read compose file %s", opts.File).Err()
	}
	file, err := compose.Parse(data, env)
	if err != nil {
		return nil, "", errors.Annotate(err, "parse %s", opts.File).Err()
	}
	return file, opts.File, nil
}

// resolvePorts picks each service's host port: a port published in the
// compose file wins, then a .env override, then the site default.
func resolvePorts(file *compose.File, env map[string]string) (Ports, error) {
	ports := Ports{}
	for _, pick := range []struct {
		service   string
		envKey    string
		def       int
		container int
		out       *int
	}{
		{site.ServiceDB, site.EnvKeyDBPort, site.DefaultDBPort, 5432, &ports.DB},
		{site.ServiceRedis, site.EnvKeyRedisPort, site.DefaultRedisPort, 6379, &ports.Redis},
		{site.ServiceBackend, site.EnvKeyBackendPort, site.DefaultBackendPort, 8000, &ports.Backend},
		{site.ServiceFlower, site.EnvKeyFlowerPort, site.DefaultFlowerPort, 5555, &ports.Flower},
	} {
		p, err := envfile.Port(env, pick.envKey, pick.def)
		if err != nil {
			return Ports{}, err
		}
		if svc, ok := file.Services[pick.service]; ok {
			if hp, published := svc.PublishedPort(pick.container); published {
				p = hp
			}
		}
		*pick.out = p
	}
	return ports, nil
}

// stages plans the start order for the requested services, or the whole
// stack when requested is empty. With depends_on edges in the file the
// plan follows them; otherwise the fixed site order applies.
func (s *Stack) stages(requested []string) ([][]string, error) {
	for _, name := range requested {
		if _, err := s.file.Service(name); err != nil {
			return nil, err
		}
	}
	if s.file.HasDependencies() {
		deps := graph.Deps{}
		for name, svc := range s.file.Services {
			deps[name] = svc.DependsOn.Services()
		}
		return graph.Plan(deps, requested)
	}
	want := map[string]bool{}
	for _, name := range requested {
		want[name] = true
	}
	all := len(requested) == 0
	var stages [][]string
	for _, stage := range site.DefaultStages() {
		var keep []string
		for _, svc := range stage {
			if _, ok := s.file.Services[svc]; ok && (all || want[svc]) {
				keep = append(keep, svc)
			}
		}
		if len(keep) > 0 {
			stages = append(stages, keep)
		}
	}
	var extra []string
	for _, name := range s.file.ServiceNames() {
		if !site.IsKnownService(name) && (all || want[name]) {
			extra = append(extra, name)
		}
	}
	if len(extra) > 0 {
		stages = append(stages, extra)
	}
	return stages, nil
}

// stopStages returns the reverse staging restricted to exactly the
// requested services. Stopping never expands to dependencies; stopping
// the backend must not take the database down with it.
func (s *Stack) stopStages(requested []string) ([][]string, error) {
	stages, err := s.stages(nil)
	if err != nil {
		return nil, err
	}
	if len(requested) > 0 {
		for _, name := range requested {
			if _, err := s.file.Service(name); err != nil {
				return nil, err
			}
		}
		want := map[string]bool{}
		for _, name := range requested {
			want[name] = true
		}
		var filtered [][]string
		for _, stage := range stages {
			var keep []string
			for _, svc := range stage {
				if want[svc] {
					keep = append(keep, svc)
				}
			}
			if len(keep) > 0 {
				filtered = append(filtered, keep)
			}
		}
		stages = filtered
	}
	return graph.Reverse(stages), nil
}
