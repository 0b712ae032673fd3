// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package main

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"

	"github.com/linuxfoundation/lfx-v2-zoom-admin/internal/infrastructure/zoom/api"
	"github.com/linuxfoundation/lfx-v2-zoom-admin/internal/infrastructure/zoom/token"
	"github.com/linuxfoundation/lfx-v2-zoom-admin/internal/logging"
	"github.com/linuxfoundation/lfx-v2-zoom-admin/pkg/concurrent"
)

const (
	natsConnectTimeout = 10 * time.Second
	natsDrainTimeout   = 15 * time.Second
	natsMaxReconnects  = 5
)

// setupTokenStore opens the store selected by TOKEN_STORE. The returned closers
// release whatever the store holds open.
func setupTokenStore(ctx context.Context, env environment) (token.Store, []concurrent.Closer, error) {
	if env.TokenStore != tokenStoreNats {
		slog.DebugContext(ctx, "using file token store", "path", env.TokenFile)
		return token.NewFileStore(env.TokenFile), nil, nil
	}

	nc, err := setupNATS(ctx, env)
	if err != nil {
		return nil, nil, err
	}
	closer := concurrent.Closer{Name: "nats", Close: func(ctx context.Context) error {
		return drainNATS(ctx, nc)
	}}

	js, err := jetstream.New(nc)
	if err != nil {
		nc.Close()
		return nil, nil, fmt.Errorf("failed to create JetStream context: %w", err)
	}

	store, err := token.OpenNatsStore(ctx, js)
	if err != nil {
		nc.Close()
		return nil, nil, err
	}

	slog.DebugContext(ctx, "using NATS token store", "url", env.NatsURL, "bucket", token.KVBucketName)
	return store, []concurrent.Closer{closer}, nil
}

// setupNATS connects to the NATS server with reconnect and lifecycle logging.
func setupNATS(ctx context.Context, env environment) (*nats.Conn, error) {
	slog.DebugContext(ctx, "connecting to NATS", "url", env.NatsURL)

	nc, err := nats.Connect(
		env.NatsURL,
		nats.Name("lfx-v2-zoom-admin"),
		nats.Timeout(natsConnectTimeout),
		nats.DrainTimeout(natsDrainTimeout),
		nats.MaxReconnects(natsMaxReconnects),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				slog.With(logging.ErrKey, err).Warn("NATS disconnected")
			}
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			slog.Info("NATS reconnected", "url", nc.ConnectedUrl())
		}),
		nats.ErrorHandler(func(_ *nats.Conn, _ *nats.Subscription, err error) {
			slog.With(logging.ErrKey, err).Error("NATS async error")
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS at %s: %w", env.NatsURL, err)
	}
	return nc, nil
}

// drainNATS drains the connection and waits until it is closed or ctx ends.
func drainNATS(ctx context.Context, nc *nats.Conn) error {
	if nc.IsClosed() {
		return nil
	}
	if err := nc.Drain(); err != nil {
		nc.Close()
		return fmt.Errorf("failed to drain NATS connection: %w", err)
	}

	ticker := time.NewTicker(50 * time.Millisecond)
	defer ticker.Stop()
	for !nc.IsClosed() {
		select {
		case <-ctx.Done():
			nc.Close()
			return ctx.Err()
		case <-ticker.C:
		}
	}
	return nil
}

// newZoomClient builds the Zoom client on top of store.
func newZoomClient(ctx context.Context, env environment, store token.Store) *api.Client {
	return api.NewClient(ctx, env.apiConfig(), api.WithTokenStore(store))
}

// closeAll releases closers with a bounded grace period.
func closeAll(closers []concurrent.Closer) error {
	ctx, cancel := context.WithTimeout(context.Background(), natsDrainTimeout+time.Second)
	defer cancel()
	return concurrent.CloseAll(ctx, len(closers), closers...)
}
