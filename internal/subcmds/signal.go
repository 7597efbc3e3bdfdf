// Copyright 2025 The AYNI Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package subcmds

import (
	"context"
	"os"
	"os/signal"
	"syscall"
)

// notifyShutdown returns a context which is cancelled when SIGINT or
// SIGTERM is received.
func notifyShutdown(ctx context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
}
