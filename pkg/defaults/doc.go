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

// Package defaults provides centralized configuration constants for the recipe builder.
//
// This package defines timeout values, concurrency limits, and other configuration
// defaults used across the codebase. Centralizing these values ensures consistency
// and makes tuning easier.
//
// # Timeout Categories
//
//   - Source timeouts: For fetching the recipe source tree
//   - Build timeouts: For the external build tool (unbounded unless requested)
//   - Registry timeouts: For pushing packages to OCI registries
//   - HTTP transport timeouts: For outbound registry requests
//   - Server timeouts: For the recipe API served by "cprpkg serve"
//
// # Usage
//
//	import "github.com/NVIDIA/cpr-recipe/pkg/defaults"
//
//	ctx, cancel := context.WithTimeout(ctx, defaults.SourceFetchTimeout)
//	defer cancel()
package defaults
