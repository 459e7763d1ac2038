/*
Copyright © 2025 NVIDIA Corporation
SPDX-License-Identifier: Apache-2.0
*/

package cli

import (
	"context"

	"github.com/urfave/cli/v3"

	"github.com/NVIDIA/cpr-recipe/pkg/descriptor"
)

func infoCmd() *cli.Command {
	return &cli.Command{
		Name:                  "info",
		EnableShellCompletion: true,
		Usage:                 "Print the package descriptor",
		Description: `Prints the package descriptor (libs, include and lib directories,
requirements, package id) for a build configuration. With --from, reads
package.yaml from an existing package directory instead.

# Examples

  cprpkg info -o use_system_curl=true
  cprpkg info --from ./package --format table`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "from",
				Usage: "Read package.yaml from this package directory",
			},
			outputFlag(),
			formatFlag(),
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			if dir := cmd.String("from"); dir != "" {
				d, err := descriptor.Read(dir)
				if err != nil {
					return err
				}
				return writeOutput(ctx, cmd, d)
			}

			b, err := newBuilder(cmd)
			if err != nil {
				return err
			}
			cfg, err := resolveConfig(cmd, b)
			if err != nil {
				return err
			}

			d, err := b.Describe(cfg)
			if err != nil {
				return err
			}
			return writeOutput(ctx, cmd, d)
		},
	}
}
