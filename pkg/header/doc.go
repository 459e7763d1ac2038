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

// Package header provides the common document header carried by recipes,
// package descriptors and build results.
//
// The header follows Kubernetes-style conventions:
//
//	kind: Recipe
//	apiVersion: cprpkg.nvidia.com/v1alpha1
//	metadata:
//	  recipe-timestamp: "2025-01-01T00:00:00Z"
//	  recipe-version: v0.3.0
//
// Use New with functional options to build a header, or Init to stamp an
// existing one with a kind, API version and tool version.
package header
