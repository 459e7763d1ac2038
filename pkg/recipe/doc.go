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

// Package recipe defines the declarative description of a packaged library.
//
// A recipe names the library and its version, the git source to fetch,
// option defaults, pinned versions of optional dependencies, the CMake
// flag bound to each option, the package copy rules and the link
// information published in the package descriptor.
//
// The recipe for cpr is embedded and returned by Default. Load reads a
// recipe from a YAML or JSON file; unknown fields are rejected.
//
//	r, err := recipe.Default()
//	if err != nil {
//		return err
//	}
//	opts, err := r.DefaultOptions()
package recipe
