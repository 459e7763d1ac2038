/*
Copyright © 2025 NVIDIA Corporation
SPDX-License-Identifier: Apache-2.0
*/

package cli

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/NVIDIA/cpr-recipe/pkg/builder"
)

func commandCmd() *cli.Command {
	return &cli.Command{
		Name:                  "command",
		EnableShellCompletion: true,
		Usage:                 "Print the CMake invocation for a build configuration",
		Description: `Renders the configure and build invocations without running them.
Every boolean option renders an explicit ON or OFF define.

# Examples

  cprpkg command --shell
  cprpkg command -o linkage=shared -s build_type=Debug --format json`,
		Flags: append(pathFlags(),
			&cli.BoolFlag{
				Name:  "shell",
				Usage: "Print a single shell command line instead of structured output",
			},
			outputFlag(),
			formatFlag(),
		),
		Action: func(ctx context.Context, cmd *cli.Command) error {
			b, err := newBuilder(cmd)
			if err != nil {
				return err
			}
			cfg, err := resolveConfig(cmd, b)
			if err != nil {
				return err
			}

			inv, err := b.Command(cfg, pathsFromCmd(cmd))
			if err != nil {
				return err
			}

			if cmd.Bool("shell") {
				_, err := fmt.Fprintln(cmd.Root().Writer, inv.String())
				return err
			}
			return writeOutput(ctx, cmd, builder.NewCommandOutput(inv))
		},
	}
}
