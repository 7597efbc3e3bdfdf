// Copyright 2025 The AYNI Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package stack

import (
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"go.chromium.org/luci/common/errors"

	"github.com/Brownbull/ayni-be/internal/site"
)

const stateFilename = "state.json"

// State records the last stack mutation for `status` to report. It is
// advisory: a corrupt or missing file never blocks an operation.
type State struct {
	RunID      string    `json:"run_id"`
	Command    string    `json:"command"`
	Services   []string  `json:"services,omitempty"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`
	OK         bool      `json:"ok"`
}

// newState starts a state record for a mutation.
func newState(command string, services []string) *State {
	return &State{
		RunID:     uuid.NewString(),
		Command:   command,
		Services:  services,
		StartedAt: time.Now().UTC(),
	}
}

// finish stamps the record and writes it under the project state dir.
func (st *State) finish(dir string, ok bool) error {
	st.FinishedAt = time.Now().UTC()
	st.OK = ok
	stateDir := filepath.Join(dir, site.StateDirname)
	if err := os.MkdirAll(stateDir, 0755); err != nil {
		return errors.Annotate(err, "create %s", stateDir).Err()
	}
	data, err := json.MarshalIndent(st, "", "  ")
	if err != nil {
		return errors.Annotate(err, "marshal state").Err()
	}
	path := filepath.Join(stateDir, stateFilename)
	if err := os.WriteFile(path, append(data, '\n'), 0644); err != nil {
		return errors.Annotate(err, "write %s", path).Err()
	}
	return nil
}

// readState returns the last recorded mutation, nil when none exists or
// the file is unreadable.
func readState(dir string) *State {
	data, err := os.ReadFile(filepath.Join(dir, site.StateDirname, stateFilename))
	if err != nil {
		return nil
	}
	var st State
	if err := json.Unmarshal(data, &st); err != nil {
		return nil
	}
	return &st
}
