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

package executor

import (
	"context"
	stderrors "errors"
	"fmt"
	"os"
	"os/exec"
	"syscall"
	"time"

	"github.com/NVIDIA/cpr-recipe/pkg/errors"
)

// waitDelay bounds how long output pipes are drained after the tool is killed.
const waitDelay = 5 * time.Second

// ExecRunner runs commands with os/exec.
type ExecRunner struct{}

// Run starts argv[0] with the remaining arguments and waits for it to exit.
func (ExecRunner) Run(ctx context.Context, c Command) (int, error) {
	path, err := exec.LookPath(c.Argv[0])
	if err != nil {
		return -1, errors.WrapWithContext(errors.ErrCodeNotFound,
			fmt.Sprintf("build tool %q not found", c.Argv[0]), err,
			map[string]any{"argv": c.Argv})
	}

	cmd := exec.CommandContext(ctx, path, c.Argv[1:]...) //nolint:gosec // argv comes from the rendered build command
	cmd.Dir = c.Dir
	cmd.Stdout = c.Output
	cmd.Stderr = c.Output
	cmd.Cancel = func() error {
		return cmd.Process.Signal(syscall.SIGTERM)
	}
	cmd.WaitDelay = waitDelay
	if len(c.Env) > 0 {
		cmd.Env = append(os.Environ(), c.Env...)
	}

	err = cmd.Run()
	if err == nil {
		return 0, nil
	}

	var exitErr *exec.ExitError
	if stderrors.As(err, &exitErr) && ctx.Err() == nil {
		return exitErr.ExitCode(), nil
	}
	if ctx.Err() != nil {
		return -1, ctx.Err()
	}
	return -1, errors.WrapWithContext(errors.ErrCodeInternal,
		fmt.Sprintf("failed to run %s", c.Argv[0]), err,
		map[string]any{"argv": c.Argv})
}
