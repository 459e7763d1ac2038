/*
Copyright © 2025 NVIDIA Corporation
SPDX-License-Identifier: Apache-2.0
*/

package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v3"

	"github.com/NVIDIA/cpr-recipe/pkg/errors"
	"github.com/NVIDIA/cpr-recipe/pkg/logging"
)

const (
	name           = "cprpkg"
	versionDefault = "dev"
)

var (
	// overridden during build with ldflags
	version = versionDefault
	commit  = "unknown"
	date    = "unknown"
)

// Execute runs the root command and exits non-zero on failure.
// This is called by main.main().
func Execute() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle SIGINT/SIGTERM so a running build tool is stopped cleanly
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-sigCh
		fmt.Fprintln(os.Stderr, "\nReceived interrupt signal, shutting down gracefully...")
		cancel()
	}()

	if err := newRootCmd().Run(ctx, os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		if tail := buildOutputTail(err); tail != "" {
			fmt.Fprintf(os.Stderr, "\nbuild tool output (tail):\n%s\n", tail)
		}
		cancel()
		os.Exit(exitCode(err))
	}
}

func newRootCmd() *cli.Command {
	return &cli.Command{
		Name:                  name,
		Usage:                 "Build and package the cpr C++ HTTP library",
		Version:               fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date),
		EnableShellCompletion: true,
		Description: `Builds cpr (C++ Requests) from a declarative option set.

A run resolves the configuration, computes the dependency set, renders
the CMake invocation, runs the build tool, copies headers and libraries
into a package directory and writes a package.yaml descriptor.

Options use the package manager convention: -o key=value, repeatable.`,
		Flags: []cli.Flag{
			logLevelFlag(),
			recipeFlag(),
			registryDirFlag(),
			optionFlag(),
			settingFlag(),
		},
		Before: func(ctx context.Context, cmd *cli.Command) (context.Context, error) {
			logging.SetDefaultStructuredLoggerWithLevel(name, version, cmd.String(flagLogLevel))
			slog.Debug("starting",
				"name", name,
				"version", version,
				"commit", commit,
				"date", date,
			)
			return ctx, nil
		},
		Commands: []*cli.Command{
			depsCmd(),
			commandCmd(),
			createCmd(),
			packageCmd(),
			infoCmd(),
			serveCmd(),
		},
		ShellComplete: commandLister,
	}
}

// exitCode maps an error to the process exit status. Build tool failures
// propagate the tool's own status.
func exitCode(err error) int {
	if err == nil {
		return 0
	}
	if errors.IsCode(err, errors.ErrCodeBuildFailure) {
		if code, ok := errors.ExitCode(err); ok && code > 0 && code < 256 {
			return code
		}
	}
	return 1
}

func commandLister(_ context.Context, cmd *cli.Command) {
	if cmd == nil || cmd.Root() == nil {
		return
	}
	for _, c := range cmd.Root().Commands {
		if c.Hidden {
			continue
		}
		fmt.Println(c.Name)
	}
}
