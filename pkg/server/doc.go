// Copyright (c) 2025, NVIDIA CORPORATION.  All rights reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package server provides the HTTP server behind "cprpkg serve".
//
// The server itself is domain-agnostic: API routes are supplied with
// WithHandler and wrapped in a middleware chain, while system routes are
// served directly.
//
// # Middleware
//
// API routes pass through, outermost first:
//
//   - Prometheus request metrics (count, latency, in-flight)
//   - API version negotiation via Accept: application/vnd.nvidia.cprpkg.v1+json
//   - X-Request-Id propagation or generation
//   - Panic recovery
//   - Token bucket rate limiting (golang.org/x/time/rate)
//   - Debug request logging
//
// # System Endpoints
//
//	GET /         name, version, readiness and route list
//	GET /health   liveness
//	GET /ready    readiness; 503 until Serve starts and after Shutdown
//	GET /metrics  Prometheus exposition
//
// # Errors
//
// Every error response is an ErrorResponse carrying a code from pkg/errors,
// the request ID and a retryable hint. WriteErrorFromErr maps structured
// errors to HTTP status codes.
//
// # Usage
//
//	s := server.New(
//	    server.WithName("cprpkg"),
//	    server.WithHandler(map[string]http.HandlerFunc{"/v1/deps": h}),
//	)
//	if err := s.Run(ctx); err != nil {
//	    return err
//	}
//
// # Configuration
//
// Defaults come from pkg/defaults. The PORT and SHUTDOWN_TIMEOUT_SECONDS
// environment variables override the listen port and shutdown grace period.
package server
