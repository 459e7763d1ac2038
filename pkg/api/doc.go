/*
Copyright © 2025 NVIDIA Corporation
SPDX-License-Identifier: Apache-2.0
*/

// Package api exposes the read-only recipe operations over HTTP.
//
// It is a thin layer over pkg/server that registers the builder's handlers.
// Nothing here runs the build tool: creating packages stays a CLI operation.
//
// # Endpoints
//
//	GET /v1/deps     resolved requirement set
//	GET /v1/command  rendered CMake configure and build invocations
//	GET /v1/info     package descriptor
//
// Query parameters are option overrides using the same keys as -o on the
// command line, e.g. /v1/deps?ssl_backend=none&build_tests=true. The
// command route also accepts "source" and "build" directories.
//
// # Usage
//
//	b, err := builder.New()
//	if err != nil {
//	    return err
//	}
//	return api.Serve(ctx, b, server.WithPort(8080))
package api
