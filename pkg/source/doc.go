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

// Package source fetches library sources into the build's source directory.
//
// GitFetcher performs a shallow, single-reference clone of the recipe's
// source URL with go-git. The recipe ref may name a tag or a branch; tags
// win when both exist. A source directory that already holds files is
// used as-is, so local checkouts and repeated builds skip the network.
package source
