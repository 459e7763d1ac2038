/*
Copyright © 2025 NVIDIA Corporation
SPDX-License-Identifier: Apache-2.0
*/

package cli

import (
	"context"

	"github.com/urfave/cli/v3"

	"github.com/NVIDIA/cpr-recipe/pkg/builder"
	"github.com/NVIDIA/cpr-recipe/pkg/packager"
)

func packageCmd() *cli.Command {
	return &cli.Command{
		Name:                  "package",
		EnableShellCompletion: true,
		Usage:                 "Package artifacts from an existing build tree",
		Description: `Copies headers from --source and libraries from --build into
--package-dir and writes package.yaml, without running the build tool.

# Examples

  cprpkg package --source ./cpr --build ./cpr/build
  cprpkg package -o linkage=shared --allow-missing --archive ./dist`,
		Flags: append(append(pathFlags(),
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

			b, err := newBuilder(cmd,
				builder.WithPackager(packager.New(packager.WithAllowMissing(cmd.Bool(flagAllowMissing)))),
			)
			if err != nil {
				return err
			}
			cfg, err := resolveConfig(cmd, b)
			if err != nil {
				return err
			}

			out, err := b.Package(ctx, cfg, pathsFromCmd(cmd))
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
