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

package builder

import (
	"context"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/NVIDIA/cpr-recipe/pkg/descriptor"
	"github.com/NVIDIA/cpr-recipe/pkg/errors"
	"github.com/NVIDIA/cpr-recipe/pkg/executor"
	"github.com/NVIDIA/cpr-recipe/pkg/option"
	"github.com/NVIDIA/cpr-recipe/pkg/packager"
	"github.com/NVIDIA/cpr-recipe/pkg/packager/checksum"
	"github.com/NVIDIA/cpr-recipe/pkg/recipe"
	"github.com/NVIDIA/cpr-recipe/pkg/source"
)

func write(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func dirs(t *testing.T) packager.Paths {
	t.Helper()
	base := t.TempDir()
	return packager.Paths{
		Source:  filepath.Join(base, "src"),
		Build:   filepath.Join(base, "build"),
		Package: filepath.Join(base, "pkg"),
	}
}

func writeSources(t *testing.T, dir string) {
	t.Helper()
	write(t, filepath.Join(dir, "CMakeLists.txt"), "project(cpr)\n")
	write(t, filepath.Join(dir, "include", "cpr", "cpr.h"), "#pragma once\n")
}

// fakeBuild stands in for cmake. The build step leaves libraries in
// <build>/lib; exitCodes overrides the status of the n-th invocation.
type fakeBuild struct {
	mu        sync.Mutex
	calls     [][]string
	libs      []string
	exitCodes map[int]int
}

func (f *fakeBuild) Run(_ context.Context, cmd executor.Command) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := len(f.calls)
	f.calls = append(f.calls, cmd.Argv)
	if code, ok := f.exitCodes[n]; ok && code != 0 {
		return code, nil
	}
	if i := slices.Index(cmd.Argv, "--build"); i >= 0 {
		for _, lib := range f.libs {
			path := filepath.Join(cmd.Argv[i+1], "lib", lib)
			if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
				return 0, err
			}
			if err := os.WriteFile(path, []byte("lib"), 0o644); err != nil {
				return 0, err
			}
		}
	}
	return 0, nil
}

func newBuilder(t *testing.T, run executor.Runner, opts ...Option) *Builder {
	t.Helper()
	all := append([]Option{
		WithExecutor(executor.New(executor.WithRunner(run))),
		WithVersion("v0.1.0"),
	}, opts...)
	b, err := New(all...)
	require.NoError(t, err)
	return b
}

func stepNames(out *Output) []string {
	names := make([]string, 0, len(out.Steps))
	for _, s := range out.Steps {
		names = append(names, s.Name)
	}
	return names
}

func TestMakeDefault(t *testing.T) {
	paths := dirs(t)
	writeSources(t, paths.Source)
	run := &fakeBuild{libs: []string{"libcpr.a"}}
	b := newBuilder(t, run)

	cfg, err := b.Config()
	require.NoError(t, err)

	out, err := b.Make(context.Background(), cfg, paths)
	require.NoError(t, err)

	require.Len(t, run.calls, 2)
	assert.Contains(t, run.calls[0], "-DCMAKE_USE_OPENSSL=ON")
	assert.Contains(t, run.calls[0], "-DBUILD_CPR_TESTS=OFF")
	assert.Contains(t, run.calls[0], "-DBUILD_SHARED_LIBS=OFF")
	assert.Equal(t, []string{"cmake", "--build", paths.Build, "--config", "Release"}, run.calls[1])

	assert.Equal(t, []string{StageResolve, StageRender, StageConfigure, StageBuild, StageCollect, StageDescribe}, stepNames(out))
	assert.Equal(t, len(out.Steps), out.SuccessCount())
	assert.NotEmpty(t, out.BuildID)
	assert.Equal(t, "cpr/1.2.0", out.Recipe)
	assert.Equal(t, []string{"libcurl/7.56.1", "openssl/1.0.2l"}, out.Requires)
	assert.Equal(t, 2, out.TotalFiles)

	d := out.Descriptor
	require.NotNil(t, d)
	assert.Equal(t, []string{"cpr"}, d.Libs)
	assert.Equal(t, []string{"include/cpr"}, d.IncludeDirs)
	assert.Empty(t, d.SystemLibs)
	for _, req := range d.Requires {
		assert.False(t, strings.HasPrefix(req, "gtest/"), "unexpected testing dependency %s", req)
	}

	assert.Equal(t, filepath.Join(paths.Package, descriptor.FileName), out.DescriptorPath)
	onDisk, err := descriptor.Read(paths.Package)
	require.NoError(t, err)
	assert.Equal(t, d.PackageID, onDisk.PackageID)
	assert.FileExists(t, filepath.Join(paths.Package, "lib", "libcpr.a"))
	assert.FileExists(t, filepath.Join(paths.Package, "include", "cpr", "cpr", "cpr.h"))

	entries, err := checksum.ReadChecksums(paths.Package)
	require.NoError(t, err)
	sums := make([]string, 0, len(entries))
	for _, e := range entries {
		sums = append(sums, e.Path)
	}
	assert.Contains(t, sums, descriptor.FileName)
	assert.Len(t, sums, out.TotalFiles+1)
	bad, err := checksum.VerifyChecksums(context.Background(), paths.Package)
	require.NoError(t, err)
	assert.Empty(t, bad)
}

func TestMakeBuildFailureSkipsCollection(t *testing.T) {
	paths := dirs(t)
	writeSources(t, paths.Source)
	run := &fakeBuild{libs: []string{"libcpr.a"}, exitCodes: map[int]int{1: 1}}
	b := newBuilder(t, run)

	out, err := b.Make(context.Background(), option.NewConfig(), paths)
	require.Error(t, err)
	assert.Nil(t, out)
	assert.True(t, errors.IsCode(err, errors.ErrCodeBuildFailure))

	code, ok := errors.ExitCode(err)
	require.True(t, ok)
	assert.Equal(t, 1, code)

	assert.Len(t, run.calls, 2)
	assert.NoDirExists(t, paths.Package)
}

func TestMakeConfigureFailureStopsBuild(t *testing.T) {
	paths := dirs(t)
	writeSources(t, paths.Source)
	run := &fakeBuild{exitCodes: map[int]int{0: 2}}
	b := newBuilder(t, run)

	_, err := b.Make(context.Background(), option.NewConfig(), paths)
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrCodeBuildFailure))
	assert.Len(t, run.calls, 1)
	assert.NoDirExists(t, paths.Package)
}

func TestMakeSystemCurl(t *testing.T) {
	paths := dirs(t)
	writeSources(t, paths.Source)
	b := newBuilder(t, &fakeBuild{libs: []string{"libcpr.a"}})

	cfg, err := b.Config(option.WithUseSystemCurl(true), option.WithSSLBackend(option.SSLNone))
	require.NoError(t, err)

	out, err := b.Make(context.Background(), cfg, paths)
	require.NoError(t, err)

	assert.Equal(t, []string{"curl"}, out.Descriptor.SystemLibs)
	assert.Empty(t, out.Descriptor.Requires)
	assert.Contains(t, out.Command, "-DUSE_SYSTEM_CURL=ON")
	assert.NotContains(t, out.Command, "-DCMAKE_USE_OPENSSL=ON")
}

func TestMakeSharedWithTests(t *testing.T) {
	paths := dirs(t)
	writeSources(t, paths.Source)
	b := newBuilder(t, &fakeBuild{libs: []string{"libcpr.so.1"}})

	cfg, err := b.Config(option.WithLinkage(option.LinkageShared), option.WithBuildTests(true))
	require.NoError(t, err)

	out, err := b.Make(context.Background(), cfg, paths)
	require.NoError(t, err)
	assert.Contains(t, out.Requires, "gtest/1.8.0")
	assert.FileExists(t, filepath.Join(paths.Package, "lib", "libcpr.so.1"))
}

func TestMakeArtifactMissing(t *testing.T) {
	paths := dirs(t)
	writeSources(t, paths.Source)

	_, err := newBuilder(t, &fakeBuild{}).Make(context.Background(), option.NewConfig(), paths)
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrCodeArtifactMissing))

	b := newBuilder(t, &fakeBuild{}, WithPackager(packager.New(packager.WithAllowMissing(true))))
	out, err := b.Make(context.Background(), option.NewConfig(), paths)
	require.NoError(t, err)
	assert.Equal(t, 1, out.TotalFiles)
	assert.Equal(t, []packager.RuleResult{
		{Name: "headers", Copied: 1},
		{Name: "libraries", Missing: true},
	}, out.Rules)
}

type fetcherFunc func(ctx context.Context, src recipe.Source, dir string) (*source.Result, error)

func (f fetcherFunc) Fetch(ctx context.Context, src recipe.Source, dir string) (*source.Result, error) {
	return f(ctx, src, dir)
}

func TestMakeFetchesSources(t *testing.T) {
	paths := dirs(t)
	var fetched recipe.Source
	fetch := fetcherFunc(func(_ context.Context, src recipe.Source, dir string) (*source.Result, error) {
		fetched = src
		writeSources(t, dir)
		return &source.Result{Dir: dir, URL: src.URL, Ref: src.Ref, Commit: "abc123"}, nil
	})
	b := newBuilder(t, &fakeBuild{libs: []string{"libcpr.a"}}, WithFetcher(fetch))

	out, err := b.Make(context.Background(), option.NewConfig(), paths)
	require.NoError(t, err)

	assert.Equal(t, "1.2.0", fetched.Ref)
	require.NotNil(t, out.Source)
	assert.Equal(t, "abc123", out.Source.Commit)
	step, ok := out.Step(StageFetch)
	require.True(t, ok)
	assert.Equal(t, "abc123", step.Detail)
}

func TestMakeFetchFailure(t *testing.T) {
	run := &fakeBuild{}
	fetch := fetcherFunc(func(context.Context, recipe.Source, string) (*source.Result, error) {
		return nil, errors.New(errors.ErrCodeNotFound, "ref not found")
	})
	b := newBuilder(t, run, WithFetcher(fetch))

	_, err := b.Make(context.Background(), option.NewConfig(), dirs(t))
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrCodeNotFound))
	assert.Empty(t, run.calls)
}

func TestPackageExistingBuild(t *testing.T) {
	paths := dirs(t)
	writeSources(t, paths.Source)
	write(t, filepath.Join(paths.Build, "lib", "libcpr.a"), "!<arch>\n")

	never := executor.RunnerFunc(func(context.Context, executor.Command) (int, error) {
		t.Fatal("build tool must not run")
		return 0, nil
	})
	b := newBuilder(t, never)

	out, err := b.Package(context.Background(), option.NewConfig(), paths)
	require.NoError(t, err)
	assert.Equal(t, []string{StageResolve, StageCollect, StageDescribe}, stepNames(out))
	assert.Empty(t, out.Command)
	assert.FileExists(t, filepath.Join(paths.Package, descriptor.FileName))
}

func TestMakeInvalidInput(t *testing.T) {
	b := newBuilder(t, &fakeBuild{})

	_, err := b.Make(context.Background(), nil, dirs(t))
	assert.True(t, errors.IsCode(err, errors.ErrCodeInvalidRequest))

	_, err = b.Make(context.Background(), option.NewConfig(), packager.Paths{})
	assert.True(t, errors.IsCode(err, errors.ErrCodeInvalidRequest))

	_, err = b.Make(context.Background(), option.NewConfig(option.WithLinkage("dynamic")), dirs(t))
	assert.True(t, errors.IsCode(err, errors.ErrCodeInvalidRequest))
}

func TestConfigAppliesRecipeDefaults(t *testing.T) {
	base, err := recipe.Default()
	require.NoError(t, err)
	r := *base
	r.Defaults = maps.Clone(base.Defaults)
	r.Defaults[option.KeyLinkage] = string(option.LinkageShared)

	b := newBuilder(t, &fakeBuild{}, WithRecipe(&r))

	cfg, err := b.Config()
	require.NoError(t, err)
	assert.Equal(t, option.LinkageShared, cfg.Linkage())

	cfg, err = b.Config(option.WithLinkage(option.LinkageStatic))
	require.NoError(t, err)
	assert.Equal(t, option.LinkageStatic, cfg.Linkage())
}

func TestNewRejectsInvalidRecipe(t *testing.T) {
	_, err := New(WithRecipe(&recipe.Recipe{}))
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrCodeInvalidRequest))
}

func TestDescribeWithoutBuild(t *testing.T) {
	b := newBuilder(t, &fakeBuild{})
	d, err := b.Describe(option.NewConfig(option.WithUseSystemCurl(true)))
	require.NoError(t, err)
	assert.Equal(t, []string{"curl"}, d.SystemLibs)
	assert.Equal(t, "v0.1.0", d.Metadata["package-version"])
}
