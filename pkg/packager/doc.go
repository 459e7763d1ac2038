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

// Package packager copies build artifacts into the package layout.
//
// Copy rules come from the recipe. Each rule names a root (the source
// tree or the build tree), a directory under it, a destination inside the
// package and file patterns. Patterns match at any depth and matched files
// keep their path relative to the rule's directory:
//
//	*.h   from <source>/include  ->  include/cpr
//	*.a   from <build>/lib       ->  lib
//
// A rule that matches nothing fails with ARTIFACT_MISSING. Rules marked
// optional, or a Packager created with WithAllowMissing, log a warning
// instead. A rule counts as matched even when every match was already
// copied by an earlier rule.
//
// Collect clears each rule destination before copying, so a rebuild into
// the same package directory drops files the new configuration no longer
// produces. Files outside the rule destinations are left alone. Seal then
// writes checksums.txt to the package root, covering every copied file plus
// any extra files written afterwards, such as package.yaml.
package packager
