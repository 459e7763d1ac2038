/*
Copyright © 2025 NVIDIA Corporation
SPDX-License-Identifier: Apache-2.0
*/

package cli

import (
	"context"

	"github.com/urfave/cli/v3"
	"golang.org/x/time/rate"

	"github.com/NVIDIA/cpr-recipe/pkg/api"
	"github.com/NVIDIA/cpr-recipe/pkg/errors"
	"github.com/NVIDIA/cpr-recipe/pkg/server"
)

func serveCmd() *cli.Command {
	return &cli.Command{
		Name:                  "serve",
		EnableShellCompletion: true,
		Usage:                 "Serve dependency, command and descriptor queries over HTTP",
		Description: `Starts a read-only HTTP API for the loaded recipe. Each endpoint takes
option overrides as query parameters and never runs the build tool.

  GET /v1/deps?ssl_backend=none
  GET /v1/command?linkage=shared&build_type=Debug
  GET /v1/info?use_system_curl=true

Health, readiness and Prometheus metrics are served on /health, /ready
and /metrics.

# Examples

  cprpkg serve --port 9090
  cprpkg serve --recipe ./cpr.yaml --rate-limit 20`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "address",
				Usage: "Listen address (default: all interfaces)",
			},
			&cli.IntFlag{
				Name:    "port",
				Value:   8080,
				Usage:   "Listen port",
				Sources: cli.EnvVars("PORT"),
			},
			&cli.FloatFlag{
				Name:  "rate-limit",
				Value: 100,
				Usage: "Sustained API requests per second",
			},
			&cli.IntFlag{
				Name:  "rate-limit-burst",
				Value: 200,
				Usage: "Maximum API request burst",
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			if cmd.Int("port") < 1 || cmd.Int("port") > 65535 {
				return errors.NewWithContext(errors.ErrCodeInvalidRequest, "port must be between 1 and 65535",
					map[string]any{"port": cmd.Int("port")})
			}

			b, err := newBuilder(cmd)
			if err != nil {
				return err
			}

			return api.Serve(ctx, b,
				server.WithVersion(version),
				server.WithAddress(cmd.String("address")),
				server.WithPort(int(cmd.Int("port"))),
				server.WithRateLimit(rate.Limit(cmd.Float("rate-limit")), int(cmd.Int("rate-limit-burst"))),
			)
		},
	}
}
