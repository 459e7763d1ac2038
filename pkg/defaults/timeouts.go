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

package defaults

import "time"

// Source timeouts for fetching recipe sources.
const (
	// SourceFetchTimeout bounds a git clone of the recipe source tree.
	SourceFetchTimeout = 10 * time.Minute

	// SourceCloneDepth is the history depth for source clones.
	SourceCloneDepth = 1
)

// Build timeouts for the external build tool.
const (
	// BuildTimeout is the default limit for a single build tool invocation.
	// Zero means no limit; a hung build tool blocks until it exits.
	BuildTimeout time.Duration = 0

	// BuildOutputTailBytes is how much subprocess output is kept for error reports.
	BuildOutputTailBytes = 4096
)

// Packaging limits.
const (
	// ChecksumConcurrency caps the number of files hashed in parallel.
	ChecksumConcurrency = 8
)

// Registry timeouts for OCI operations.
const (
	// OCIPushTimeout bounds pushing a packaged artifact to a remote registry.
	OCIPushTimeout = 5 * time.Minute
)

// HTTP transport timeouts for outbound registry requests. No total client
// timeout is set; pushes are bounded by OCIPushTimeout instead.
const (
	// HTTPTLSHandshakeTimeout is the timeout for TLS handshake.
	HTTPTLSHandshakeTimeout = 5 * time.Second

	// HTTPResponseHeaderTimeout is the timeout for reading response headers.
	HTTPResponseHeaderTimeout = 10 * time.Second

	// HTTPIdleConnTimeout is the timeout for idle connections in the pool.
	HTTPIdleConnTimeout = 90 * time.Second
)

// Server timeouts for the recipe API.
const (
	// ServerReadTimeout is the maximum duration for reading the entire request.
	ServerReadTimeout = 10 * time.Second

	// ServerWriteTimeout is the maximum duration before timing out writes of the response.
	ServerWriteTimeout = 30 * time.Second

	// ServerIdleTimeout is the maximum time to wait for the next request on keep-alive connections.
	ServerIdleTimeout = 120 * time.Second

	// ServerShutdownTimeout is the maximum time to wait for in-flight requests during shutdown.
	ServerShutdownTimeout = 30 * time.Second

	// APICacheTTL is the Cache-Control max-age of recipe API responses.
	APICacheTTL = 5 * time.Minute
)
