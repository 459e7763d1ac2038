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

package cmake

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/NVIDIA/cpr-recipe/pkg/errors"
	"github.com/NVIDIA/cpr-recipe/pkg/option"
	"github.com/NVIDIA/cpr-recipe/pkg/recipe"
)

func defaultRecipe(t *testing.T) *recipe.Recipe {
	t.Helper()
	r, err := recipe.Default()
	require.NoError(t, err)
	return r
}

func TestRenderDefaults(t *testing.T) {
	inv, err := Render(defaultRecipe(t), option.NewConfig(), "/src/cpr", "/build")
	require.NoError(t, err)

	assert.Equal(t, []string{
		"cmake", "-S", "/src/cpr", "-B", "/build",
		"-DCMAKE_BUILD_TYPE=Release",
		"-DBUILD_CPR_TESTS=OFF",
		"-DINSECURE_CURL=OFF",
		"-DGENERATE_COVERAGE=OFF",
		"-DCMAKE_USE_OPENSSL=ON",
		"-DUSE_SYSTEM_CURL=OFF",
		"-DBUILD_SHARED_LIBS=OFF",
	}, inv.Configure)
	assert.Equal(t, []string{"cmake", "--build", "/build", "--config", "Release"}, inv.Build)
	assert.Len(t, inv.Steps(), 2)
}

func TestRenderAllEnabled(t *testing.T) {
	cfg := option.NewConfig(
		option.WithBuildTests(true),
		option.WithInsecureMode(true),
		option.WithGenerateCoverage(true),
		option.WithUseSystemCurl(true),
		option.WithLinkage(option.LinkageShared),
		option.WithBuildType(option.BuildTypeDebug),
	)
	inv, err := Render(defaultRecipe(t), cfg, "src", "build")
	require.NoError(t, err)

	for _, want := range []string{
		"-DCMAKE_BUILD_TYPE=Debug",
		"-DBUILD_CPR_TESTS=ON",
		"-DINSECURE_CURL=ON",
		"-DGENERATE_COVERAGE=ON",
		"-DUSE_SYSTEM_CURL=ON",
		"-DBUILD_SHARED_LIBS=ON",
	} {
		assert.Contains(t, inv.Configure, want)
	}
	assert.Equal(t, "Debug", inv.Build[len(inv.Build)-1])
}

func TestRenderSSLNone(t *testing.T) {
	cfg := option.NewConfig(option.WithSSLBackend(option.SSLNone))
	inv, err := Render(defaultRecipe(t), cfg, "src", "build")
	require.NoError(t, err)

	s := inv.String()
	assert.NotContains(t, s, "CMAKE_USE_OPENSSL=ON")
	assert.Contains(t, s, "-DCMAKE_USE_OPENSSL=OFF")
}

func TestRenderNoEmptyTokens(t *testing.T) {
	for _, tests := range []bool{false, true} {
		for _, backend := range []option.SSLBackend{option.SSLNone, option.SSLOpenSSL} {
			cfg := option.NewConfig(option.WithBuildTests(tests), option.WithSSLBackend(backend))
			inv, err := Render(defaultRecipe(t), cfg, "src", "build")
			require.NoError(t, err)
			for _, step := range inv.Steps() {
				for _, tok := range step {
					assert.NotEmpty(t, strings.TrimSpace(tok))
				}
			}
			// one token per bound option plus the build type
			assert.Len(t, inv.Configure, 5+1+6)
		}
	}
}

func TestRenderIdempotent(t *testing.T) {
	r := defaultRecipe(t)
	cfg := option.NewConfig(option.WithBuildTests(true), option.WithInsecureMode(true))

	first, err := Render(r, cfg, "/tmp/src dir", "/tmp/build")
	require.NoError(t, err)
	second, err := Render(r, cfg, "/tmp/src dir", "/tmp/build")
	require.NoError(t, err)

	assert.Equal(t, first.String(), second.String())
	assert.Equal(t, first, second)
}

func TestString(t *testing.T) {
	inv, err := Render(defaultRecipe(t), option.NewConfig(), "/tmp/src dir", "/tmp/build")
	require.NoError(t, err)

	s := inv.String()
	assert.True(t, strings.HasPrefix(s, "cmake -S '/tmp/src dir' -B /tmp/build "))
	assert.True(t, strings.HasSuffix(s, " && cmake --build /tmp/build --config Release"))
}

func TestRenderGeneratorAndExtra(t *testing.T) {
	r, err := recipe.Parse([]byte(`
name: demo
version: 1.0.0
source:
  url: https://example.com/demo.git
cmake:
  generator: Ninja
  flags:
    linkage: DEMO_SHARED
  extra: ["-DDEMO_DOCS=OFF"]
package:
  rules:
    - name: libs
      root: build
      dst: lib
      patterns: ["*.a"]
`))
	require.NoError(t, err)

	inv, err := Render(r, option.NewConfig(), "s", "b")
	require.NoError(t, err)
	assert.Equal(t, []string{
		"cmake", "-S", "s", "-B", "b", "-G", "Ninja",
		"-DCMAKE_BUILD_TYPE=Release",
		"-DDEMO_SHARED=OFF",
		"-DDEMO_DOCS=OFF",
	}, inv.Configure)
}

func TestRenderErrors(t *testing.T) {
	r := defaultRecipe(t)

	tests := []struct {
		name   string
		recipe *recipe.Recipe
		cfg    *option.Config
		src    string
		dst    string
	}{
		{name: "nil recipe", cfg: option.NewConfig(), src: "s", dst: "b"},
		{name: "nil config", recipe: r, src: "s", dst: "b"},
		{name: "empty source", recipe: r, cfg: option.NewConfig(), dst: "b"},
		{name: "empty target", recipe: r, cfg: option.NewConfig(), src: "s", dst: " "},
		{name: "invalid config", recipe: r, cfg: option.NewConfig(option.WithLinkage("dynamic")), src: "s", dst: "b"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Render(tt.recipe, tt.cfg, tt.src, tt.dst)
			require.Error(t, err)
			assert.True(t, errors.IsCode(err, errors.ErrCodeInvalidRequest))
		})
	}
}

func TestFlags(t *testing.T) {
	flags, err := Flags(defaultRecipe(t), option.NewConfig(option.WithSSLBackend(option.SSLNone)))
	require.NoError(t, err)

	assert.Equal(t, map[string]string{
		"CMAKE_BUILD_TYPE":  "Release",
		"BUILD_CPR_TESTS":   "OFF",
		"INSECURE_CURL":     "OFF",
		"GENERATE_COVERAGE": "OFF",
		"CMAKE_USE_OPENSSL": "OFF",
		"USE_SYSTEM_CURL":   "OFF",
		"BUILD_SHARED_LIBS": "OFF",
	}, flags)
}
