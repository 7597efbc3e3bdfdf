// Copyright 2025 The AYNI Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package stack

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.chromium.org/luci/common/errors"
	"go.chromium.org/luci/common/logging"

	"github.com/Brownbull/ayni-be/internal/site"
)

// watchDebounce is how long Watch waits after the last relevant file
// event before reconverging. Editors save in bursts of writes and
// renames; converging once per burst is enough.
const watchDebounce = 500 * time.Millisecond

// Watch converges the stack, then watches the project directory and
// reconverges whenever the compose file or env files change. A failed
// converge is reported and watched through, not fatal: the next edit is
// usually the fix. Watch returns when ctx is cancelled.
func (s *Stack) Watch(ctx context.Context, upOpts UpOptions) error {
	if err := s.Up(ctx, nil, upOpts); err != nil {
		fmt.Fprintf(s.opts.Stderr, "converge failed: %s\n", err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return errors.Annotate(err, "create file watcher").Err()
	}
	defer watcher.Close()
	if err := watcher.Add(s.opts.Dir); err != nil {
		return errors.Annotate(err, "watch %s", s.opts.Dir).Err()
	}
	fmt.Fprintf(s.opts.Stdout, "watching %s for changes (ctrl-c to stop)\n", s.opts.Dir)

	// The timer is armed by events and fires one converge per burst.
	timer := time.NewTimer(watchDebounce)
	if !timer.Stop() {
		<-timer.C
	}
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event, ok := <-watcher.Events:
			if !ok {
				return errors.Reason("file watcher closed").Err()
			}
			if !s.watchRelevant(event) {
				continue
			}
			logging.Debugf(ctx, "change detected: %s", event)
			if !timer.Stop() {
				select {
				case <-timer.C:
				default:
				}
			}
			timer.Reset(watchDebounce)
		case err, ok := <-watcher.Errors:
			if !ok {
				return errors.Reason("file watcher closed").Err()
			}
			logging.Warningf(ctx, "file watcher: %s", err)
		case <-timer.C:
			fmt.Fprintf(s.opts.Stdout, "stack inputs changed; reconverging\n")
			if err := s.Up(ctx, nil, upOpts); err != nil {
				fmt.Fprintf(s.opts.Stderr, "converge failed: %s\n", err)
			}
		}
	}
}

// watchRelevant reports whether the event touches a file the stack is
// built from. Everything else in the project directory, the Django tree
// included, is noise here.
func (s *Stack) watchRelevant(event fsnotify.Event) bool {
	if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
		return false
	}
	base := filepath.Base(event.Name)
	switch base {
	case site.ComposeFilename, site.ComposeFilenameAlt, site.EnvFilename, site.EnvExampleFilename:
		return true
	}
	return s.opts.File != "" && base == filepath.Base(s.opts.File)
}
