// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package main

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"golang.org/x/sync/errgroup"

	"github.com/linuxfoundation/lfx-v2-zoom-admin/internal/handlers"
	"github.com/linuxfoundation/lfx-v2-zoom-admin/internal/logging"
	"github.com/linuxfoundation/lfx-v2-zoom-admin/internal/middleware"
	"github.com/linuxfoundation/lfx-v2-zoom-admin/pkg/concurrent"
	"github.com/linuxfoundation/lfx-v2-zoom-admin/pkg/utils"
)

const (
	readHeaderTimeout   = 3 * time.Second
	gracefulShutdownDur = 25 * time.Second
	sessionSecretLen    = 32
)

// serveOptions are the flags of the serve command.
type serveOptions struct {
	Port string
	Bind string
}

func newServeCommand(root *rootOptions) *cobra.Command {
	opts := &serveOptions{}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the admin HTTP API",
		Long: `Run the admin HTTP API.

The API fronts the Zoom REST API and drives the OAuth flow: open /oauth/authorize
in a browser to grant access, Zoom then redirects to /oauth/callback and the
token is stored.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd.Context(), root, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.Port, "port", "p", "", "listen port (defaults to PORT or 8080)")
	cmd.Flags().StringVar(&opts.Bind, "bind", "*", "interface to bind on")

	return cmd
}

// listenAddr joins bind and port; "*" binds every interface.
func listenAddr(bind, port string) string {
	if bind == "*" || bind == "" {
		return ":" + port
	}
	return net.JoinHostPort(bind, port)
}

// newHTTPHandler wraps the admin router in the middleware chain.
func newHTTPHandler(router http.Handler) http.Handler {
	handler := router

	// Note: Order matters - RequestIDMiddleware should come first in the chain,
	// so it is added after the logger since middleware runs in reverse order.
	handler = middleware.BodyLimitMiddleware(middleware.DefaultMaxBodyBytes)(handler)
	handler = middleware.RequestLoggerMiddleware()(handler)
	handler = middleware.RequestIDMiddleware()(handler)
	return otelhttp.NewHandler(handler, "zoom-admin")
}

// sessionSecret returns SESSION_SECRET, or a random key when unset. A random
// key only lives as long as the process, which is enough for one OAuth round trip.
func sessionSecret(ctx context.Context, env environment) ([]byte, error) {
	if env.SessionSecret != "" {
		return []byte(env.SessionSecret), nil
	}
	slog.WarnContext(ctx, "SESSION_SECRET is not set, using a random key for this process")
	key := make([]byte, sessionSecretLen)
	if _, err := rand.Read(key); err != nil {
		return nil, fmt.Errorf("failed to generate session secret: %w", err)
	}
	return key, nil
}

func runServe(ctx context.Context, root *rootOptions, opts *serveOptions) error {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	env, err := parseEnv(root.TokenFile)
	if err != nil {
		return err
	}
	if err := env.requireCredentials(); err != nil {
		return err
	}

	otelShutdown, err := utils.SetupOTelSDK(ctx)
	if err != nil {
		return fmt.Errorf("failed to set up OpenTelemetry: %w", err)
	}
	closers := []concurrent.Closer{{Name: "otel", Close: otelShutdown}}

	store, storeClosers, err := setupTokenStore(ctx, env)
	if err != nil {
		_ = closeAll(closers)
		return err
	}
	closers = append(closers, storeClosers...)

	secret, err := sessionSecret(ctx, env)
	if err != nil {
		_ = closeAll(closers)
		return err
	}

	client := newZoomClient(ctx, env, store)
	admin := handlers.NewAdminHandler(client, client.OAuth(), handlers.NewSessionStore(secret, env.secureCookies()))

	port := utils.CoalesceString(opts.Port, env.Port)
	httpServer := &http.Server{
		Addr:              listenAddr(opts.Bind, port),
		Handler:           newHTTPHandler(admin.Router()),
		ReadHeaderTimeout: readHeaderTimeout,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		slog.With("addr", httpServer.Addr).Info("starting http server")
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http listener error: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		slog.Info("shutting down http server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), gracefulShutdownDur)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("http shutdown error: %w", err)
		}
		return nil
	})

	serveErr := g.Wait()
	if serveErr != nil {
		slog.With(logging.ErrKey, serveErr).Error("http server stopped with error")
	}

	// the server is down, release the rest together
	closeErr := closeAll(closers)
	slog.Info("graceful shutdown complete")

	return errors.Join(serveErr, closeErr)
}
