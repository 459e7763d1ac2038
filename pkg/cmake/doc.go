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

// Package cmake renders the CMake invocations for a build configuration.
//
// Every option bound to a CMake variable by the recipe renders as an
// explicit -DNAME=ON or -DNAME=OFF token; disabled options are never
// dropped. The ssl_backend option renders ON only for openssl and the
// linkage option renders BUILD_SHARED_LIBS.
//
// An Invocation holds two argument vectors:
//
//	cmake -S <source> -B <build> -DCMAKE_BUILD_TYPE=Release -DBUILD_CPR_TESTS=OFF ...
//	cmake --build <build> --config Release
//
// Rendering is pure: identical inputs produce byte-identical output.
package cmake
