/*
Copyright © 2025 NVIDIA Corporation
SPDX-License-Identifier: Apache-2.0
*/

package builder

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/NVIDIA/cpr-recipe/pkg/cmake"
	"github.com/NVIDIA/cpr-recipe/pkg/descriptor"
	"github.com/NVIDIA/cpr-recipe/pkg/errors"
	"github.com/NVIDIA/cpr-recipe/pkg/executor"
	"github.com/NVIDIA/cpr-recipe/pkg/option"
	"github.com/NVIDIA/cpr-recipe/pkg/packager"
	"github.com/NVIDIA/cpr-recipe/pkg/recipe"
	"github.com/NVIDIA/cpr-recipe/pkg/registry"
	"github.com/NVIDIA/cpr-recipe/pkg/resolver"
	"github.com/NVIDIA/cpr-recipe/pkg/source"
)

// Builder turns a recipe and a build configuration into a package directory.
//
// Every run is a single forward pass:
//
//	fetch → resolve → render → configure → build → collect → describe
//
// A BUILD_FAILURE from the build tool aborts the run before any artifact
// is collected. Builder holds no per-run state and is safe for concurrent
// use as long as runs use distinct directories.
type Builder struct {
	recipe   *recipe.Recipe
	registry *registry.Registry
	executor *executor.Executor
	packager *packager.Packager
	fetcher  source.Fetcher
	version  string
}

// Option defines a functional option for configuring Builder.
type Option func(*Builder)

// WithRecipe sets the recipe. The embedded cpr recipe is used otherwise.
func WithRecipe(r *recipe.Recipe) Option {
	return func(b *Builder) {
		if r != nil {
			b.recipe = r
		}
	}
}

// WithRegistry sets the system library registry used for system curl.
func WithRegistry(reg *registry.Registry) Option {
	return func(b *Builder) {
		if reg != nil {
			b.registry = reg
		}
	}
}

// WithExecutor sets the executor that runs the build tool.
func WithExecutor(e *executor.Executor) Option {
	return func(b *Builder) {
		if e != nil {
			b.executor = e
		}
	}
}

// WithPackager sets the packager that collects artifacts.
func WithPackager(p *packager.Packager) Option {
	return func(b *Builder) {
		if p != nil {
			b.packager = p
		}
	}
}

// WithFetcher enables the fetch stage. Without a fetcher the source
// directory must already hold the sources.
func WithFetcher(f source.Fetcher) Option {
	return func(b *Builder) {
		b.fetcher = f
	}
}

// WithVersion sets the tool version recorded in package descriptors.
func WithVersion(version string) Option {
	return func(b *Builder) {
		b.version = version
	}
}

// New creates a Builder with the given options.
//
// Example:
//
//	b, err := builder.New(
//	    builder.WithFetcher(source.NewGitFetcher()),
//	    builder.WithPackager(packager.New(packager.WithAllowMissing(true))),
//	)
func New(opts ...Option) (*Builder, error) {
	b := &Builder{
		registry: registry.Default(),
		executor: executor.New(),
		packager: packager.New(),
	}
	for _, opt := range opts {
		opt(b)
	}

	if b.recipe == nil {
		r, err := recipe.Default()
		if err != nil {
			return nil, err
		}
		b.recipe = r
	}
	if err := b.recipe.Validate(); err != nil {
		return nil, err
	}
	return b, nil
}

// Recipe returns the recipe the builder packages.
func (b *Builder) Recipe() *recipe.Recipe {
	return b.recipe
}

// Config resolves the build configuration: recipe defaults first, then opts.
func (b *Builder) Config(opts ...option.Option) (*option.Config, error) {
	defaults, err := b.recipe.DefaultOptions()
	if err != nil {
		return nil, err
	}
	cfg := option.NewConfig(append(defaults, opts...)...)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Dependencies returns the packages cfg requires, sorted by name.
func (b *Builder) Dependencies(cfg *option.Config) ([]resolver.RequiredPackage, error) {
	if cfg == nil {
		return nil, errors.New(errors.ErrCodeInvalidRequest, "build configuration is required")
	}
	return resolver.New(b.recipe, b.registry).Resolve(cfg)
}

// Command renders the build tool invocation for cfg.
func (b *Builder) Command(cfg *option.Config, paths packager.Paths) (*cmake.Invocation, error) {
	if cfg == nil {
		return nil, errors.New(errors.ErrCodeInvalidRequest, "build configuration is required")
	}
	return cmake.Render(b.recipe, cfg, paths.Source, paths.Build)
}

// Describe returns the package descriptor for cfg.
func (b *Builder) Describe(cfg *option.Config) (*descriptor.Descriptor, error) {
	deps, err := b.Dependencies(cfg)
	if err != nil {
		return nil, err
	}
	return descriptor.Describe(b.recipe, cfg, deps, b.version)
}

// Make runs the complete pipeline and returns its output. Nothing is
// collected unless both build tool invocations exit with status zero.
func (b *Builder) Make(ctx context.Context, cfg *option.Config, paths packager.Paths) (out *Output, err error) {
	start := time.Now()
	defer func() { observe(start, err) }()

	out, err = b.prepare(cfg, paths)
	if err != nil {
		return nil, err
	}
	paths = out.Paths

	slog.Info("building package",
		"build_id", out.BuildID,
		"recipe", out.Recipe,
		"options", cfg.Canonical(),
	)

	if b.fetcher != nil {
		t := time.Now()
		res, fetchErr := b.fetcher.Fetch(ctx, b.recipe.Source, paths.Source)
		detail := ""
		if res != nil {
			detail = res.Commit
		}
		out.record(StageFetch, t, fetchErr, detail)
		if fetchErr != nil {
			return nil, fetchErr
		}
		out.Source = res
	}

	deps, err := b.resolve(out, cfg)
	if err != nil {
		return nil, err
	}

	t := time.Now()
	inv, err := b.Command(cfg, paths)
	out.record(StageRender, t, err, "")
	if err != nil {
		return nil, err
	}
	out.Command = inv.String()

	if err := os.MkdirAll(paths.Build, 0o755); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, "failed to create build directory", err)
	}

	if err := b.run(ctx, out, StageConfigure, inv.Configure); err != nil {
		return nil, err
	}
	if err := b.run(ctx, out, StageBuild, inv.Build); err != nil {
		return nil, err
	}

	if err := b.finish(ctx, out, cfg, deps); err != nil {
		return nil, err
	}

	out.TotalDuration = time.Since(start)
	slog.Info("package complete",
		"build_id", out.BuildID,
		"package", paths.Package,
		"files", out.TotalFiles,
		"duration", out.TotalDuration,
	)
	return out, nil
}

// Package collects artifacts from an existing build tree without running
// the build tool, then writes the descriptor.
func (b *Builder) Package(ctx context.Context, cfg *option.Config, paths packager.Paths) (out *Output, err error) {
	start := time.Now()
	defer func() { observe(start, err) }()

	out, err = b.prepare(cfg, paths)
	if err != nil {
		return nil, err
	}

	deps, err := b.resolve(out, cfg)
	if err != nil {
		return nil, err
	}
	if err := b.finish(ctx, out, cfg, deps); err != nil {
		return nil, err
	}

	out.TotalDuration = time.Since(start)
	return out, nil
}

func (b *Builder) prepare(cfg *option.Config, paths packager.Paths) (*Output, error) {
	if cfg == nil {
		return nil, errors.New(errors.ErrCodeInvalidRequest, "build configuration is required")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if err := paths.Validate(); err != nil {
		return nil, err
	}

	abs, err := absPaths(paths)
	if err != nil {
		return nil, err
	}

	return &Output{
		BuildID: uuid.NewString(),
		Recipe:  b.recipe.Ref(),
		Options: cfg.Map(),
		Paths:   abs,
	}, nil
}

func (b *Builder) resolve(out *Output, cfg *option.Config) ([]resolver.RequiredPackage, error) {
	t := time.Now()
	deps, err := b.Dependencies(cfg)
	out.record(StageResolve, t, err, fmt.Sprintf("%d requirements", len(deps)))
	if err != nil {
		return nil, err
	}

	out.Requires = make([]string, 0, len(deps))
	for _, d := range deps {
		out.Requires = append(out.Requires, d.String())
	}
	slog.Debug("dependencies resolved", "requires", out.Requires)
	return deps, nil
}

func (b *Builder) run(ctx context.Context, out *Output, stage string, argv []string) error {
	t := time.Now()
	_, err := b.executor.Execute(ctx, argv)
	detail := ""
	if code, ok := errors.ExitCode(err); ok {
		detail = fmt.Sprintf("exit status %d", code)
	}
	out.record(stage, t, err, detail)
	return err
}

func (b *Builder) finish(ctx context.Context, out *Output, cfg *option.Config, deps []resolver.RequiredPackage) error {
	t := time.Now()
	layout, err := b.packager.Collect(ctx, b.recipe.RulesFor(cfg), out.Paths)
	detail := ""
	if layout != nil {
		detail = fmt.Sprintf("%d files", len(layout.Files))
	}
	out.record(StageCollect, t, err, detail)
	if err != nil {
		return err
	}
	out.TotalFiles = len(layout.Files)
	out.TotalSize = layout.TotalSize
	out.Rules = layout.Rules
	packagedFiles.Add(float64(len(layout.Files)))

	t = time.Now()
	d, err := descriptor.Describe(b.recipe, cfg, deps, b.version)
	if err == nil {
		out.DescriptorPath, err = descriptor.Write(out.Paths.Package, d)
	}
	if err == nil {
		err = b.packager.Seal(ctx, layout, descriptor.FileName)
	}
	out.record(StageDescribe, t, err, descriptor.FileName)
	if err != nil {
		return err
	}
	out.Descriptor = d
	return nil
}

func observe(start time.Time, err error) {
	buildDuration.Observe(time.Since(start).Seconds())
	buildsTotal.WithLabelValues(status(err)).Inc()
}

func absPaths(p packager.Paths) (packager.Paths, error) {
	var err error
	for _, dir := range []*string{&p.Source, &p.Build, &p.Package} {
		if *dir, err = filepath.Abs(*dir); err != nil {
			return p, errors.Wrap(errors.ErrCodeInvalidRequest, "invalid directory", err)
		}
	}
	return p, nil
}
