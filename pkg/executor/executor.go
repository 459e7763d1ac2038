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
	"io"
	"log/slog"
	"time"

	"github.com/NVIDIA/cpr-recipe/pkg/defaults"
	"github.com/NVIDIA/cpr-recipe/pkg/errors"
)

// Command is a single subprocess invocation.
type Command struct {
	Argv   []string
	Dir    string
	Env    []string
	Output io.Writer
}

// Runner runs a command and reports its exit code. A non-nil error means
// the command could not be run at all; a non-zero exit is not an error.
type Runner interface {
	Run(ctx context.Context, cmd Command) (int, error)
}

// RunnerFunc adapts a function to the Runner interface.
type RunnerFunc func(ctx context.Context, cmd Command) (int, error)

// Run calls f(ctx, cmd).
func (f RunnerFunc) Run(ctx context.Context, cmd Command) (int, error) {
	return f(ctx, cmd)
}

// StepResult records one completed subprocess.
type StepResult struct {
	Argv     []string      `json:"argv" yaml:"argv"`
	ExitCode int           `json:"exit_code" yaml:"exit_code"`
	Duration time.Duration `json:"duration" yaml:"duration"`
}

// Executor runs argument vectors in order.
type Executor struct {
	runner    Runner
	timeout   time.Duration
	dir       string
	env       []string
	output    io.Writer
	tailBytes int
}

// Option configures an Executor.
type Option func(*Executor)

// WithRunner replaces the subprocess runner.
func WithRunner(r Runner) Option {
	return func(e *Executor) {
		if r != nil {
			e.runner = r
		}
	}
}

// WithTimeout bounds the total execution time. Zero disables the bound.
func WithTimeout(d time.Duration) Option {
	return func(e *Executor) {
		e.timeout = d
	}
}

// WithDir sets the working directory of every step.
func WithDir(dir string) Option {
	return func(e *Executor) {
		e.dir = dir
	}
}

// WithEnv appends KEY=VALUE entries to the inherited environment.
func WithEnv(env ...string) Option {
	return func(e *Executor) {
		e.env = append(e.env, env...)
	}
}

// WithOutput streams the tool's output to w in addition to the captured tail.
func WithOutput(w io.Writer) Option {
	return func(e *Executor) {
		e.output = w
	}
}

// WithTailBytes sets how much trailing output is kept for failure reports.
func WithTailBytes(n int) Option {
	return func(e *Executor) {
		if n > 0 {
			e.tailBytes = n
		}
	}
}

// New creates an Executor backed by os/exec unless WithRunner is given.
func New(opts ...Option) *Executor {
	e := &Executor{
		runner:    ExecRunner{},
		timeout:   defaults.BuildTimeout,
		tailBytes: defaults.BuildOutputTailBytes,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Execute runs steps in order and stops at the first failure.
// The results of the steps that completed are returned alongside any error.
func (e *Executor) Execute(ctx context.Context, steps ...[]string) ([]StepResult, error) {
	if len(steps) == 0 {
		return nil, errors.New(errors.ErrCodeInvalidRequest, "no build steps to execute")
	}

	if e.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.timeout)
		defer cancel()
	}

	results := make([]StepResult, 0, len(steps))
	for i, argv := range steps {
		if len(argv) == 0 {
			return results, errors.New(errors.ErrCodeInvalidRequest, fmt.Sprintf("build step %d is empty", i))
		}
		if err := ctx.Err(); err != nil {
			return results, contextError(err, argv)
		}

		res, err := e.run(ctx, argv)
		if err != nil {
			return results, err
		}
		results = append(results, *res)
	}
	return results, nil
}

func (e *Executor) run(ctx context.Context, argv []string) (*StepResult, error) {
	tail := newTailBuffer(e.tailBytes)
	var out io.Writer = tail
	if e.output != nil {
		out = io.MultiWriter(tail, e.output)
	}

	slog.Info("running build step", "argv", argv, "dir", e.dir)
	start := time.Now()
	code, err := e.runner.Run(ctx, Command{
		Argv:   append([]string(nil), argv...),
		Dir:    e.dir,
		Env:    e.env,
		Output: out,
	})
	elapsed := time.Since(start)

	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, contextError(ctxErr, argv)
		}
		return nil, err
	}

	if code != 0 {
		slog.Error("build step failed", "argv", argv, "exit_code", code, "duration", elapsed)
		return nil, errors.NewWithContext(errors.ErrCodeBuildFailure,
			fmt.Sprintf("%s exited with status %d", argv[0], code),
			map[string]any{
				errors.ContextKeyExitCode: code,
				"argv":                    argv,
				"output":                  tail.String(),
			})
	}

	slog.Debug("build step completed", "argv", argv, "duration", elapsed)
	return &StepResult{Argv: argv, ExitCode: code, Duration: elapsed}, nil
}

func contextError(err error, argv []string) error {
	if stderrors.Is(err, context.DeadlineExceeded) {
		return errors.WrapWithContext(errors.ErrCodeTimeout, "build timed out", err, map[string]any{"argv": argv})
	}
	return errors.WrapWithContext(errors.ErrCodeInternal, "build canceled", err, map[string]any{"argv": argv})
}

// OutputTail returns the captured output recorded on a build failure.
func OutputTail(err error) string {
	var se *errors.StructuredError
	if stderrors.As(err, &se) {
		if s, ok := se.Context["output"].(string); ok {
			return s
		}
	}
	return ""
}
