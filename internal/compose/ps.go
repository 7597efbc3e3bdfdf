// Copyright 2025 The AYNI Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package compose

import (
	"encoding/json"
	"strings"
	"time"

	"go.chromium.org/luci/common/errors"
)

// Container states reported by compose ps.
const (
	StateRunning    = "running"
	StateExited     = "exited"
	StateRestarting = "restarting"
)

// Docker health states, empty when the container has no healthcheck.
const (
	HealthHealthy  = "healthy"
	HealthStarting = "starting"
)

// ContainerStatus is one row of `compose ps --format json`.
type ContainerStatus struct {
	ID         string      `json:"ID"`
	Name       string      `json:"Name"`
	Service    string      `json:"Service"`
	State      string      `json:"State"`
	Status     string      `json:"Status"`
	Health     string      `json:"Health"`
	ExitCode   int         `json:"ExitCode"`
	Created    int64       `json:"Created"`
	Publishers []Publisher `json:"Publishers"`
}

// Publisher is one published port of a container.
type Publisher struct {
	URL           string `json:"URL"`
	TargetPort    int    `json:"TargetPort"`
	PublishedPort int    `json:"PublishedPort"`
	Protocol      string `json:"Protocol"`
}

// Running reports whether the container is up, healthy or not.
func (s ContainerStatus) Running() bool {
	return s.State == StateRunning
}

// Healthy reports whether the container is running and, when docker
// tracks a healthcheck for it, that docker considers it healthy.
func (s ContainerStatus) Healthy() bool {
	if !s.Running() {
		return false
	}
	return s.Health == "" || s.Health == HealthHealthy
}

// CreatedAt returns the container creation time, zero if unknown.
func (s ContainerStatus) CreatedAt() time.Time {
	if s.Created == 0 {
		return time.Time{}
	}
	return time.Unix(s.Created, 0)
}

// parsePS handles both compose ps JSON shapes: one array (older v2) and
// NDJSON with one object per line (v2.21 and later).
func parsePS(out string) ([]ContainerStatus, error) {
	out = strings.TrimSpace(out)
	if out == "" {
		return nil, nil
	}
	if strings.HasPrefix(out, "[") {
		var statuses []ContainerStatus
		if err := json.Unmarshal([]byte(out), &statuses); err != nil {
			return nil, errors.Annotate(err, "JSON array").Err()
		}
		return statuses, nil
	}
	var statuses []ContainerStatus
	for _, line := range strings.Split(out, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		var s ContainerStatus
		if err := json.Unmarshal([]byte(line), &s); err != nil {
			return nil, errors.Annotate(err, "JSON line %q", line).Err()
		}
		statuses = append(statuses, s)
	}
	return statuses, nil
}

// ByService indexes statuses by service name. Duplicate rows for one
// service (scaled containers) keep the first running one.
func ByService(statuses []ContainerStatus) map[string]ContainerStatus {
	byService := map[string]ContainerStatus{}
	for _, s := range statuses {
		if prev, ok := byService[s.Service]; ok && prev.Running() {
			continue
		}
		byService[s.Service] = s
	}
	return byService
}
