// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

// Package concurrent runs process lifecycle steps in parallel.
package concurrent

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"golang.org/x/sync/errgroup"
)

// Closer releases one resource during shutdown.
type Closer struct {
	Name  string
	Close func(context.Context) error
}

// CloseAll runs every closer, at most limit at a time, and waits for all of
// them even when some fail. Failures are returned joined, in closer order.
func CloseAll(ctx context.Context, limit int, closers ...Closer) error {
	if len(closers) == 0 {
		return nil
	}
	if limit <= 0 {
		limit = len(closers)
	}

	errs := make([]error, len(closers))
	var mu sync.Mutex

	g := new(errgroup.Group)
	g.SetLimit(limit)

	for i, c := range closers {
		g.Go(func() error {
			if c.Close == nil {
				return nil
			}
			// closers still run after ctx is done so they can release what they hold
			err := c.Close(ctx)
			if err != nil {
				slog.ErrorContext(ctx, "shutdown step failed", "step", c.Name, "error", err)
				mu.Lock()
				errs[i] = fmt.Errorf("%s: %w", c.Name, err)
				mu.Unlock()
				return nil
			}
			slog.DebugContext(ctx, "shutdown step done", "step", c.Name)
			return nil
		})
	}

	_ = g.Wait()
	return errors.Join(errs...)
}
