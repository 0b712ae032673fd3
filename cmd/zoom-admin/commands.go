// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/linuxfoundation/lfx-v2-zoom-admin/internal/handlers"
	"github.com/linuxfoundation/lfx-v2-zoom-admin/internal/infrastructure/zoom/api"
)

// zoomSession is what a one-shot command gets to work with.
type zoomSession struct {
	env    environment
	client *api.Client
}

// withZoomClient opens the token store, builds a client, runs fn and releases
// the store. Token commands pass autoRefresh=false so nothing is refreshed
// behind their back.
func withZoomClient(ctx context.Context, root *rootOptions, autoRefresh bool, fn func(context.Context, *zoomSession) error) error {
	if ctx == nil {
		ctx = context.Background()
	}

	env, err := parseEnv(root.TokenFile)
	if err != nil {
		return err
	}
	if err := env.requireCredentials(); err != nil {
		return err
	}
	env.AutoRefresh = env.AutoRefresh && autoRefresh

	store, closers, err := setupTokenStore(ctx, env)
	if err != nil {
		return err
	}

	runErr := fn(ctx, &zoomSession{env: env, client: newZoomClient(ctx, env, store)})
	return errors.Join(runErr, closeAll(closers))
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func newTokenCommand(root *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Zoom OAuth token commands",
		Long:  "Commands for inspecting and renewing the stored Zoom OAuth token",
	}

	cmd.AddCommand(newTokenShowCommand(root))
	cmd.AddCommand(newTokenExchangeCommand(root))
	cmd.AddCommand(newTokenRefreshCommand(root))
	cmd.AddCommand(newTokenAuthorizeURLCommand(root))

	return cmd
}

func newTokenShowCommand(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show the stored token status",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withZoomClient(cmd.Context(), root, false, func(_ context.Context, s *zoomSession) error {
				return printJSON(cmd.OutOrStdout(), handlers.NewTokenStatus(s.client.OAuth().Record(), time.Now()))
			})
		},
	}
}

func newTokenExchangeCommand(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "exchange CODE",
		Short: "Exchange an authorization code for a token",
		Long: `Exchange the code Zoom appended to the redirect URI for an access token
and store the result.

Examples:
  zoom-admin token authorize-url
  # open the URL, grant access, copy ?code= from the redirect
  zoom-admin token exchange Xy12AbCdEf`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withZoomClient(cmd.Context(), root, false, func(ctx context.Context, s *zoomSession) error {
				flow := s.client.OAuth()
				if err := flow.ExchangeAuthorizationCode(ctx, args[0]); err != nil {
					return fmt.Errorf("failed to exchange authorization code: %w", err)
				}
				return printJSON(cmd.OutOrStdout(), handlers.NewTokenStatus(flow.Record(), time.Now()))
			})
		},
	}
}

func newTokenRefreshCommand(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "refresh",
		Short: "Refresh the stored token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withZoomClient(cmd.Context(), root, false, func(ctx context.Context, s *zoomSession) error {
				flow := s.client.OAuth()
				if err := flow.Refresh(ctx); err != nil {
					return fmt.Errorf("failed to refresh token: %w", err)
				}
				return printJSON(cmd.OutOrStdout(), handlers.NewTokenStatus(flow.Record(), time.Now()))
			})
		},
	}
}

func newTokenAuthorizeURLCommand(root *rootOptions) *cobra.Command {
	var state string

	cmd := &cobra.Command{
		Use:   "authorize-url",
		Short: "Print the Zoom consent page URL",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withZoomClient(cmd.Context(), root, false, func(_ context.Context, s *zoomSession) error {
				if state == "" {
					state = uuid.NewString()
				}
				_, err := fmt.Fprintln(cmd.OutOrStdout(), s.client.OAuth().AuthCodeURL(state))
				return err
			})
		},
	}

	cmd.Flags().StringVar(&state, "state", "", "OAuth state value (random when empty)")

	return cmd
}

func newUsersCommand(root *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "users",
		Short: "Zoom user commands",
	}

	var details bool
	list := &cobra.Command{
		Use:   "list",
		Short: "List every user of the account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withZoomClient(cmd.Context(), root, true, func(ctx context.Context, s *zoomSession) error {
				users, err := s.client.GetAllUsers(ctx, details)
				truncated := errors.Is(err, api.ErrPageLimitReached)
				if err != nil && !truncated {
					return fmt.Errorf("failed to list users: %w", err)
				}
				if err := printJSON(cmd.OutOrStdout(), users); err != nil {
					return err
				}
				if truncated {
					fmt.Fprintln(cmd.ErrOrStderr(), "warning: page limit reached, the list is incomplete")
				}
				return nil
			})
		},
	}
	list.Flags().BoolVar(&details, "details", false, "fetch the full profile of every user")

	cmd.AddCommand(list)
	return cmd
}
