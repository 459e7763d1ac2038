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

package recipe

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/NVIDIA/cpr-recipe/pkg/errors"
	"github.com/NVIDIA/cpr-recipe/pkg/header"
	"github.com/NVIDIA/cpr-recipe/pkg/option"
)

func TestDefault(t *testing.T) {
	r, err := Default()
	require.NoError(t, err)

	assert.Equal(t, header.KindRecipe, r.Kind)
	assert.Equal(t, "cpr", r.Name)
	assert.Equal(t, "1.2.0", r.Version)
	assert.Equal(t, "cpr/1.2.0", r.Ref())
	assert.NotEmpty(t, r.Source.URL)

	for _, name := range []string{"libcurl", "openssl", "gtest"} {
		req, ok := r.Requirement(name)
		assert.True(t, ok, name)
		assert.NotEmpty(t, req.Version, name)
	}
	_, ok := r.Requirement("zlib")
	assert.False(t, ok)

	flag, ok := r.Flag(option.KeyBuildTests)
	assert.True(t, ok)
	assert.Equal(t, "BUILD_CPR_TESTS", flag)
	assert.Equal(t, []string{
		option.KeyBuildTests,
		option.KeyGenerateCoverage,
		option.KeyInsecureMode,
		option.KeyLinkage,
		option.KeySSLBackend,
		option.KeyUseSystemCurl,
	}, r.FlagKeys())

	assert.Equal(t, []string{"cpr"}, r.Info.Libs)
	assert.Equal(t, []string{"include/cpr"}, r.Info.IncludeDirs)
	assert.Equal(t, []string{"lib"}, r.Info.LibDirs)
}

func TestDefaultOptionsMatchConfigDefaults(t *testing.T) {
	r, err := Default()
	require.NoError(t, err)

	opts, err := r.DefaultOptions()
	require.NoError(t, err)
	assert.Equal(t, option.NewConfig().Canonical(), option.NewConfig(opts...).Canonical())
}

func TestRulesFor(t *testing.T) {
	r, err := Default()
	require.NoError(t, err)

	static := r.RulesFor(option.NewConfig())
	require.Len(t, static, 2)
	assert.Equal(t, []string{"*.h"}, static[0].Patterns)
	assert.Equal(t, []string{"*.lib", "*.a"}, static[1].Patterns)

	shared := r.RulesFor(option.NewConfig(option.WithLinkage(option.LinkageShared)))
	require.Len(t, shared, 2)
	assert.Equal(t, []string{"*.lib", "*.a", "*.so*", "*.dylib", "*.dll"}, shared[1].Patterns)

	// the shared view must not leak into the recipe itself
	assert.Equal(t, []string{"*.lib", "*.a"}, r.Package.Rules[1].Patterns)
}

const validRecipe = `
name: demo
version: 0.1.0
source:
  url: https://example.com/demo.git
cmake:
  flags:
    build_tests: DEMO_TESTS
package:
  rules:
    - name: libs
      root: build
      dst: lib
      patterns: ["*.a"]
info:
  libs: [demo]
  include_dirs: [include]
  lib_dirs: [lib]
`

func TestParse(t *testing.T) {
	r, err := Parse([]byte(validRecipe))
	require.NoError(t, err)
	assert.Equal(t, "demo/0.1.0", r.Ref())
	assert.Empty(t, r.Requires)
}

func TestParseInvalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    string
	}{
		{name: "unknown field", content: validRecipe + "colour: blue\n", want: "colour"},
		{name: "bad version", content: strings.Replace(validRecipe, "0.1.0", "one", 1), want: "version"},
		{name: "missing source", content: strings.Replace(validRecipe, "https://example.com/demo.git", "", 1), want: "source.url"},
		{name: "bad root", content: strings.Replace(validRecipe, "root: build", "root: install", 1), want: "root"},
		{name: "unknown flag option", content: strings.Replace(validRecipe, "build_tests: DEMO_TESTS", "with_http2: DEMO_HTTP2", 1), want: "with_http2"},
		{name: "bad flag name", content: strings.Replace(validRecipe, "DEMO_TESTS", "\"DEMO TESTS\"", 1), want: "invalid variable"},
		{name: "bad default", content: validRecipe + "defaults:\n  linkage: dynamic\n", want: "defaults"},
		{name: "wrong kind", content: "kind: Package\n" + validRecipe, want: "kind"},
		{name: "bad requirement", content: validRecipe + "requires:\n  - name: zlib\n    version: latest\n", want: "zlib"},
		{name: "duplicate requirement", content: validRecipe + "requires:\n  - name: zlib\n    version: 1.2.11\n  - name: zlib\n    version: 1.2.12\n", want: "duplicate"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.content))
			require.Error(t, err)
			assert.True(t, errors.IsCode(err, errors.ErrCodeInvalidRequest))
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "demo.yaml")
	require.NoError(t, os.WriteFile(path, []byte(validRecipe), 0o600))

	r, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "demo", r.Name)

	_, err = Load(filepath.Join(dir, "missing.yaml"))
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrCodeInvalidRequest))
}
