// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

// Package main is the Zoom admin tool. It serves an admin HTTP API in front of
// the Zoom REST API and exposes the token lifecycle on the command line.
package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/linuxfoundation/lfx-v2-zoom-admin/internal/logging"
)

// Build information, set with -ldflags.
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

// rootOptions are the persistent flags shared by every command.
type rootOptions struct {
	Debug     bool
	EnvFile   string
	TokenFile string
}

func main() {
	rootCmd := newRootCommand()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:           "zoom-admin",
		Short:         "Zoom account administration",
		Long:          "Admin API and CLI over the Zoom REST API, with an OAuth token kept on disk or in NATS",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return initCommand(cmd, opts)
		},
	}

	cmd.PersistentFlags().BoolVarP(&opts.Debug, "debug", "d", false, "enable debug logging")
	cmd.PersistentFlags().StringVar(&opts.EnvFile, "env-file", ".env", "dotenv file loaded before reading the environment")
	cmd.PersistentFlags().StringVar(&opts.TokenFile, "token-file", "", "token record file (overrides ZOOM_TOKEN_FILE)")

	cmd.AddCommand(newServeCommand(opts))
	cmd.AddCommand(newTokenCommand(opts))
	cmd.AddCommand(newUsersCommand(opts))
	cmd.AddCommand(newVersionCommand())

	return cmd
}

// initCommand loads the dotenv file and sets up logging before any command runs.
func initCommand(cmd *cobra.Command, opts *rootOptions) error {
	if err := loadEnvFile(opts.EnvFile, cmd.Flags().Changed("env-file")); err != nil {
		return err
	}

	// Based on the debug flag, set the log level environment variable used by [logging.InitStructureLogConfig]
	if opts.Debug {
		if err := os.Setenv("LOG_LEVEL", "debug"); err != nil {
			return fmt.Errorf("failed to set log level: %w", err)
		}
	}

	logging.InitStructureLogConfig()
	return nil
}

// loadEnvFile loads path without overriding variables already set. A missing
// default file is ignored; a missing file named on the command line is not.
func loadEnvFile(path string, explicit bool) error {
	if path == "" {
		return nil
	}
	err := godotenv.Load(path)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, fs.ErrNotExist) && !explicit:
		return nil
	default:
		return fmt.Errorf("failed to load env file %s: %w", path, err)
	}
}

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		// skip the root hook, nothing to configure
		PersistentPreRun: func(*cobra.Command, []string) {},
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "zoom-admin %s (commit %s, built %s)\n", Version, GitCommit, BuildTime)
		},
	}
}
