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

// Package executor runs the external build tool.
//
// Each argument vector runs as a subprocess without a shell. Steps run in
// order; the first non-zero exit stops execution and returns a
// BUILD_FAILURE structured error carrying the exit code, the argument
// vector and the tail of the tool's combined output. Failures are never
// retried.
//
// No timeout is applied unless WithTimeout is given; cancelling the
// context terminates the running tool.
//
// Tests replace the subprocess with a RunnerFunc:
//
//	ex := executor.New(executor.WithRunner(executor.RunnerFunc(
//		func(ctx context.Context, cmd executor.Command) (int, error) { return 0, nil })))
package executor
