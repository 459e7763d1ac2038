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

// Package descriptor produces the package metadata published to consumers.
//
// A descriptor lists the libraries to link, the include and library
// directories relative to the package root, system libraries expected on
// the host, the resolved requirements and the configuration the package
// was built with. It is written as package.yaml in the package root:
//
//	kind: Package
//	name: cpr
//	version: 1.2.0
//	package_id: 5b0c...
//	libs: [cpr]
//	include_dirs: [include/cpr]
//	lib_dirs: [lib]
//
// The package id is the SHA-256 of the recipe reference and the canonical
// configuration, so identical inputs always map to the same id.
package descriptor
