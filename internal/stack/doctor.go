// Copyright 2025 The AYNI Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package stack

import (
	"context"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/hashicorp/go-multierror"
	"github.com/shirou/gopsutil/v3/disk"
	"github.com/shirou/gopsutil/v3/mem"
	"go.chromium.org/luci/common/errors"

	"github.com/Brownbull/ayni-be/internal/compose"
	"github.com/Brownbull/ayni-be/internal/docker"
	"github.com/Brownbull/ayni-be/internal/envfile"
	"github.com/Brownbull/ayni-be/internal/site"
)

const (
	diskWarnBytes = 2 << 30 // 2 GiB
	memWarnBytes  = 1 << 30 // 1 GiB
)

// Doctor checks the host for everything the stack needs and prints a
// checklist. It is deliberately not built on New: half of what it
// diagnoses is exactly the state that makes New fail, so it probes each
// layer itself and keeps going past failures. The returned error
// aggregates every FAIL line; warnings never fail the run.
func Doctor(ctx context.Context, opts Options) error {
	if err := opts.normalize(); err != nil {
		return err
	}
	w := opts.Stdout
	var merr *multierror.Error

	fail := func(format string, args ...interface{}) {
		err := errors.Reason(format, args...).Err()
		fmt.Fprintf(w, "FAIL: %s\n", err)
		merr = multierror.Append(merr, err)
	}
	pass := func(format string, args ...interface{}) {
		fmt.Fprintf(w, "  ok: %s\n", fmt.Sprintf(format, args...))
	}
	warn := func(format string, args ...interface{}) {
		fmt.Fprintf(w, "warn: %s\n", fmt.Sprintf(format, args...))
	}

	if path, err := docker.Binary(); err != nil {
		fail("%s", err)
	} else {
		pass("docker CLI at %s", path)
	}

	daemonUp := false
	if version, err := docker.Ping(ctx, opts.Runner); err != nil {
		fail("%s", err)
	} else {
		daemonUp = true
		pass("docker daemon %s is running", version)
	}

	var tool compose.Tool
	toolOK := false
	if t, err := compose.Detect(ctx, opts.Runner); err != nil {
		fail("%s", err)
	} else {
		tool = t
		toolOK = true
		pass("%s %s", t, t.Version)
		if !t.Plugin() {
			warn("standalone docker-compose is deprecated; install the docker compose plugin")
		}
	}

	env, err := envfile.ReadProject(opts.Dir)
	if err != nil {
		fail("%s", err)
		env = map[string]string{}
	}
	examplePath := filepath.Join(opts.Dir, site.EnvExampleFilename)
	if _, statErr := os.Stat(filepath.Join(opts.Dir, site.EnvFilename)); os.IsNotExist(statErr) {
		if _, exErr := os.Stat(examplePath); os.IsNotExist(exErr) {
			fail("neither %s nor %s exists in %s", site.EnvFilename, site.EnvExampleFilename, opts.Dir)
		} else {
			warn("%s is missing; up will create it from %s", site.EnvFilename, site.EnvExampleFilename)
		}
	} else {
		pass("%s present", site.EnvFilename)
		if _, exErr := os.Stat(examplePath); exErr == nil {
			if missing, mErr := envfile.MissingKeys(opts.Dir); mErr == nil && len(missing) > 0 {
				warn("%s lacks keys declared in %s: %s",
					site.EnvFilename, site.EnvExampleFilename, strings.Join(missing, ", "))
			}
		}
	}

	var file *compose.File
	if f, path, err := loadComposeFile(&opts, env); err != nil {
		fail("%s", err)
	} else if verr := f.Validate(); verr != nil {
		fail("%s", verr)
	} else {
		file = f
		pass("%s defines %d services", filepath.Base(path), len(f.Services))
	}

	if file != nil {
		checkPorts(ctx, fail, pass, &opts, file, tool, daemonUp && toolOK)
	}

	if du, err := disk.UsageWithContext(ctx, opts.Dir); err == nil {
		if du.Free < diskWarnBytes {
			warn("only %s of disk free under %s; image pulls may fail", humanize.IBytes(du.Free), opts.Dir)
		} else {
			pass("%s of disk free", humanize.IBytes(du.Free))
		}
	}
	if vm, err := mem.VirtualMemoryWithContext(ctx); err == nil {
		if vm.Available < memWarnBytes {
			warn("only %s of memory available; the stack wants at least %s",
				humanize.IBytes(vm.Available), humanize.IBytes(memWarnBytes))
		} else {
			pass("%s of memory available", humanize.IBytes(vm.Available))
		}
	}

	if err := merr.ErrorOrNil(); err != nil {
		return err
	}
	fmt.Fprintf(w, "\nAll checks passed.\n")
	return nil
}

// checkPorts verifies that every host port the compose file publishes is
// still free. Ports held by the stack's own running containers are fine;
// a port held by anything else would make up fail later.
func checkPorts(ctx context.Context, fail, pass func(string, ...interface{}),
	opts *Options, file *compose.File, tool compose.Tool, psAvailable bool) {
	owned := map[string]bool{}
	if psAvailable {
		client := &compose.Client{Runner: opts.Runner, Tool: tool, Dir: opts.Dir, File: opts.File}
		if statuses, err := client.PS(ctx); err == nil {
			for svc, cs := range compose.ByService(statuses) {
				if cs.Running() {
					owned[svc] = true
				}
			}
		}
	}
	problems := 0
	for _, name := range file.ServiceNames() {
		if owned[name] {
			continue
		}
		for _, pm := range file.Services[name].Ports {
			hp := pm.Binding.HostPort
			if hp == "" {
				continue
			}
			l, err := net.Listen("tcp", net.JoinHostPort("", hp))
			if err != nil {
				fail("host port %s (wanted by %s) is already in use", hp, name)
				problems++
				continue
			}
			l.Close()
		}
	}
	if problems == 0 {
		pass("published host ports are free")
	}
}
