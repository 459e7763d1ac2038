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

// Package resolver computes the dependency requirements implied by a build
// configuration.
//
// Rules:
//   - ssl_backend=openssl adds openssl and sets the curl option with_openssl=True;
//     ssl_backend=none omits openssl and sets with_openssl=False.
//   - build_tests=true adds gtest with shared=False; otherwise gtest is omitted.
//   - use_system_curl=true omits the vendored libcurl and adds a system
//     requirement resolved through the system library registry.
//   - Vendored libraries follow the configured linkage.
//
// The result is sorted by name and depends only on its inputs.
package resolver
