// Copyright 2025 The AYNI Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package stack

import (
	"os"
	"path/filepath"

	"github.com/gofrs/flock"
	"go.chromium.org/luci/common/errors"

	"github.com/Brownbull/ayni-be/internal/site"
)

const lockFilename = "stack.lock"

// withLock serializes stack mutations per project. Contention fails fast
// instead of queueing; the second invocation racing a first would only
// fight compose over the same containers.
func (s *Stack) withLock(fn func() error) error {
	dir := filepath.Join(s.opts.Dir, site.StateDirname)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return errors.Annotate(err, "create %s", dir).Err()
	}
	fl := flock.New(filepath.Join(dir, lockFilename))
	locked, err := fl.TryLock()
	if err != nil {
		return errors.Annotate(err, "acquire project lock").Err()
	}
	if !locked {
		return errors.Reason("another %s command is already running for this project", site.AppPrefix).Err()
	}
	defer fl.Unlock()
	return fn()
}
