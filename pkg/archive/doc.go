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

// Package archive exports package directories as .tar.xz files.
//
// Archives are reproducible: entries are written in lexical order with
// zero ownership and a fixed modification time taken from
// SOURCE_DATE_EPOCH when set, or the Unix epoch otherwise. Extract reverses
// Create and rejects entries that would escape the destination.
package archive
