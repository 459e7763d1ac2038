/*
Copyright © 2025 NVIDIA Corporation
SPDX-License-Identifier: Apache-2.0
*/

package cli

import (
	"context"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/NVIDIA/cpr-recipe/pkg/builder"
	"github.com/NVIDIA/cpr-recipe/pkg/defaults"
	"github.com/NVIDIA/cpr-recipe/pkg/executor"
	"github.com/NVIDIA/cpr-recipe/pkg/packager"
	"github.com/NVIDIA/cpr-recipe/pkg/source"
)

const (
	flagTimeout = "timeout"
	flagNoFetch = "no-fetch"
	flagQuiet   = "quiet"
)

func createCmd() *cli.Command {
	return &cli.Command{
		Name:                  "create",
		EnableShellCompletion: true,
		Usage:                 "Fetch, build and package cpr",
		Description: `Runs the complete pipeline in a single forward pass:

  1. clone the recipe source into --source (skipped when it is populated)
  2. resolve dependencies
  3. render and run the CMake configure and build invocations
  4. copy headers and libraries into --package-dir
  5. write package.yaml

A non-zero exit from the build tool stops the run before any artifact
is collected; the tool's exit status becomes the exit status of cprpkg.

# Examples

  cprpkg create
  cprpkg create -o linkage=shared -o ssl_backend=none -s build_type=Debug
  cprpkg create --archive ./dist --push oci://ghcr.io/nvidia/cpr`,
		Flags: append(append(pathFlags(),
			&cli.BoolFlag{
				Name:  flagNoFetch,
				Usage: "Do not clone the recipe source; --source must already hold it",
			},
			&cli.DurationFlag{
				Name:  flagTimeout,
				Value: defaults.BuildTimeout,
				Usage: "Limit for the build tool invocations (0 means no limit)",
			},
			&cli.BoolFlag{
				Name:  flagQuiet,
				Usage: "Do not stream build tool output to stderr",
			},
			allowMissingFlag(),
			outputFlag(),
			formatFlag(),
		), publishFlags()...),
		Action: func(ctx context.Context, cmd *cli.Command) error {
			pub, err := parsePublishOptions(cmd)
			if err != nil {
				return err
			}
			defer pub.writeMetrics()

			execOpts := []executor.Option{executor.WithTimeout(cmd.Duration(flagTimeout))}
			if !cmd.Bool(flagQuiet) {
				execOpts = append(execOpts, executor.WithOutput(os.Stderr))
			}

			opts := []builder.Option{
				builder.WithExecutor(executor.New(execOpts...)),
				builder.WithPackager(packager.New(packager.WithAllowMissing(cmd.Bool(flagAllowMissing)))),
			}
			if !cmd.Bool(flagNoFetch) {
				opts = append(opts, builder.WithFetcher(source.NewGitFetcher()))
			}

			b, err := newBuilder(cmd, opts...)
			if err != nil {
				return err
			}
			cfg, err := resolveConfig(cmd, b)
			if err != nil {
				return err
			}

			out, err := b.Make(ctx, cfg, pathsFromCmd(cmd))
			if err != nil {
				return err
			}

			rep, err := pub.publish(ctx, out)
			if err != nil {
				return err
			}
			return writeOutput(ctx, cmd, rep)
		},
	}
}
