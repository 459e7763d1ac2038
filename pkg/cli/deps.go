/*
Copyright © 2025 NVIDIA Corporation
SPDX-License-Identifier: Apache-2.0
*/

package cli

import (
	"context"

	"github.com/urfave/cli/v3"
)

func depsCmd() *cli.Command {
	return &cli.Command{
		Name:                  "deps",
		EnableShellCompletion: true,
		Usage:                 "Print the dependencies required by a build configuration",
		Description: `Resolves the dependency set for the given options without building.

  - ssl_backend=openssl adds openssl and builds curl with_openssl=True
  - build_tests=true adds gtest (always static)
  - use_system_curl=true replaces the vendored libcurl with the host library
    and lists the host package for each supported package manager

# Examples

  cprpkg deps
  cprpkg deps -o ssl_backend=none -o build_tests=true --format json
  cprpkg deps -o use_system_curl=true`,
		Flags: []cli.Flag{
			outputFlag(),
			formatFlag(),
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			b, err := newBuilder(cmd)
			if err != nil {
				return err
			}
			cfg, err := resolveConfig(cmd, b)
			if err != nil {
				return err
			}

			deps, err := b.Dependencies(cfg)
			if err != nil {
				return err
			}
			return writeOutput(ctx, cmd, deps)
		},
	}
}
