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

// Package checksum writes and verifies sha256sum-compatible checksum files
// for package directories.
//
// Each line holds a hex SHA-256 digest, two spaces and the slash-separated
// path relative to the package root, sorted by path:
//
//	3a7bd3e2...  include/cpr/cpr.h
//	9f86d081...  lib/libcpr.a
//
// The file can be checked with "sha256sum -c checksums.txt" from the
// package root.
package checksum
