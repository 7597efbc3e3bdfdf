// Copyright 2025 The AYNI Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package compose

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/Brownbull/ayni-be/internal/assert"
)

const psNDJSON = `{"ID":"1f0c","Name":"ayni-db-1","Service":"db","State":"running","Health":"healthy","ExitCode":0,"Publishers":[{"URL":"0.0.0.0","TargetPort":5432,"PublishedPort":5432,"Protocol":"tcp"}]}
{"ID":"2a9e","Name":"ayni-backend-1","Service":"backend","State":"running","Health":"","ExitCode":0,"Publishers":[{"URL":"0.0.0.0","TargetPort":8000,"PublishedPort":8000,"Protocol":"tcp"}]}
{"ID":"3b11","Name":"ayni-celery-1","Service":"celery","State":"exited","Health":"","ExitCode":1,"Publishers":null}
`

const psArray = `[
  {"ID":"1f0c","Name":"ayni-db-1","Service":"db","State":"running","Health":"healthy","ExitCode":0},
  {"ID":"4c42","Name":"ayni-redis-1","Service":"redis","State":"running","Health":"","ExitCode":0}
]`

func TestParsePSNDJSON(t *testing.T) {
	t.Parallel()
	statuses, err := parsePS(psNDJSON)
	assert.NilError(t, err)
	want := []ContainerStatus{
		{
			ID: "1f0c", Name: "ayni-db-1", Service: "db", State: "running", Health: "healthy",
			Publishers: []Publisher{{URL: "0.0.0.0", TargetPort: 5432, PublishedPort: 5432, Protocol: "tcp"}},
		},
		{
			ID: "2a9e", Name: "ayni-backend-1", Service: "backend", State: "running",
			Publishers: []Publisher{{URL: "0.0.0.0", TargetPort: 8000, PublishedPort: 8000, Protocol: "tcp"}},
		},
		{
			ID: "3b11", Name: "ayni-celery-1", Service: "celery", State: "exited", ExitCode: 1,
		},
	}
	if diff := cmp.Diff(want, statuses); diff != "" {
		t.Errorf("parsePS returned unexpected statuses (-want +got):\n%s", diff)
	}
}

func TestParsePSArray(t *testing.T) {
	t.Parallel()
	statuses, err := parsePS(psArray)
	assert.NilError(t, err)
	assert.IntsEqual(t, len(statuses), 2)
	assert.StringsEqual(t, statuses[1].Service, "redis")
}

func TestParsePSEmptyAndGarbage(t *testing.T) {
	t.Parallel()
	statuses, err := parsePS("  \n")
	assert.NilError(t, err)
	assert.IntsEqual(t, len(statuses), 0)

	_, err = parsePS("not json")
	assert.NonNilError(t, err)
}

func TestHealthy(t *testing.T) {
	t.Parallel()
	for _, tc := range []struct {
		name string
		s    ContainerStatus
		want bool
	}{
		{"running with passing healthcheck", ContainerStatus{State: StateRunning, Health: HealthHealthy}, true},
		{"running without healthcheck", ContainerStatus{State: StateRunning}, true},
		{"still starting", ContainerStatus{State: StateRunning, Health: HealthStarting}, false},
		{"exited", ContainerStatus{State: StateExited}, false},
	} {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			assert.BoolsEqual(t, tc.s.Healthy(), tc.want)
		})
	}
}

func TestByService(t *testing.T) {
	t.Parallel()
	statuses := []ContainerStatus{
		{Name: "ayni-celery-1", Service: "celery", State: StateExited},
		{Name: "ayni-celery-2", Service: "celery", State: StateRunning},
		{Name: "ayni-db-1", Service: "db", State: StateRunning},
	}
	byService := ByService(statuses)
	assert.IntsEqual(t, len(byService), 2)
	// The running container wins over the exited duplicate.
	assert.StringsEqual(t, byService["celery"].Name, "ayni-celery-2")
}
