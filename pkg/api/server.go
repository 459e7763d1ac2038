/*
Copyright © 2025 NVIDIA Corporation
SPDX-License-Identifier: Apache-2.0
*/

package api

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/NVIDIA/cpr-recipe/pkg/builder"
	"github.com/NVIDIA/cpr-recipe/pkg/errors"
	"github.com/NVIDIA/cpr-recipe/pkg/server"
)

// Name identifies the API server on its root route.
const Name = "cprpkg-api"

// API routes.
const (
	RouteDependencies = "/v1/deps"
	RouteCommand      = "/v1/command"
	RouteInfo         = "/v1/info"
)

// Routes maps the API paths to b's handlers.
func Routes(b *builder.Builder) map[string]http.HandlerFunc {
	return map[string]http.HandlerFunc{
		RouteDependencies: b.HandleDependencies,
		RouteCommand:      b.HandleCommand,
		RouteInfo:         b.HandleInfo,
	}
}

// Serve runs the API server for b until ctx is canceled. opts are applied
// after the API routes so callers can override the name, address or limits.
func Serve(ctx context.Context, b *builder.Builder, opts ...server.Option) error {
	if b == nil {
		return errors.New(errors.ErrCodeInvalidRequest, "builder is required")
	}

	r := b.Recipe()
	slog.Info("starting api",
		"name", Name,
		"recipe", r.Name,
		"recipeVersion", r.Version,
	)

	s := server.New(append([]server.Option{
		server.WithName(Name),
		server.WithHandler(Routes(b)),
	}, opts...)...)

	if err := s.Run(ctx); err != nil {
		slog.Error("server exited with error", "error", err)
		return err
	}
	return nil
}
