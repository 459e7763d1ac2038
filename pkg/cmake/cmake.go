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
	"fmt"
	"strings"

	shellquote "github.com/kballard/go-shellquote"

	"github.com/NVIDIA/cpr-recipe/pkg/errors"
	"github.com/NVIDIA/cpr-recipe/pkg/option"
	"github.com/NVIDIA/cpr-recipe/pkg/recipe"
)

// Program is the build tool executable.
const Program = "cmake"

// VarBuildType is the CMake cache variable carrying the build type.
const VarBuildType = "CMAKE_BUILD_TYPE"

// Invocation is a rendered build command.
type Invocation struct {
	Configure []string `json:"configure" yaml:"configure"`
	Build     []string `json:"build" yaml:"build"`
}

// Steps returns the argument vectors in execution order.
func (i *Invocation) Steps() [][]string {
	return [][]string{i.Configure, i.Build}
}

// String renders both steps shell-quoted and joined with " && ".
func (i *Invocation) String() string {
	return shellquote.Join(i.Configure...) + " && " + shellquote.Join(i.Build...)
}

// Render builds the CMake invocation for cfg. sourceDir holds the library
// sources and targetDir receives the build tree.
func Render(r *recipe.Recipe, cfg *option.Config, sourceDir, targetDir string) (*Invocation, error) {
	if r == nil || cfg == nil {
		return nil, errors.New(errors.ErrCodeInvalidRequest, "recipe and configuration are required")
	}
	if strings.TrimSpace(sourceDir) == "" || strings.TrimSpace(targetDir) == "" {
		return nil, errors.NewWithContext(errors.ErrCodeInvalidRequest, "source and target directories are required",
			map[string]any{"source": sourceDir, "target": targetDir})
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	configure := []string{Program, "-S", sourceDir, "-B", targetDir}
	if r.CMake.Generator != "" {
		configure = append(configure, "-G", r.CMake.Generator)
	}
	configure = append(configure, define(VarBuildType, string(cfg.BuildType())))

	for _, key := range order(r) {
		flag, _ := r.Flag(key)
		on, err := enabled(cfg, key)
		if err != nil {
			return nil, err
		}
		configure = append(configure, define(flag, onOff(on)))
	}
	configure = append(configure, r.CMake.Extra...)

	build := []string{Program, "--build", targetDir, "--config", string(cfg.BuildType())}

	return &Invocation{Configure: configure, Build: build}, nil
}

// Flags returns the -D tokens rendered for cfg, keyed by variable name.
func Flags(r *recipe.Recipe, cfg *option.Config) (map[string]string, error) {
	out := map[string]string{VarBuildType: string(cfg.BuildType())}
	for _, key := range r.FlagKeys() {
		flag, _ := r.Flag(key)
		on, err := enabled(cfg, key)
		if err != nil {
			return nil, err
		}
		out[flag] = onOff(on)
	}
	return out, nil
}

// order lists the bound option keys in a fixed order, known keys first.
func order(r *recipe.Recipe) []string {
	preferred := []string{
		option.KeyBuildTests,
		option.KeyInsecureMode,
		option.KeyGenerateCoverage,
		option.KeySSLBackend,
		option.KeyUseSystemCurl,
		option.KeyLinkage,
	}

	keys := make([]string, 0, len(preferred))
	seen := make(map[string]bool, len(preferred))
	for _, k := range preferred {
		if _, ok := r.Flag(k); ok {
			keys = append(keys, k)
			seen[k] = true
		}
	}
	for _, k := range r.FlagKeys() {
		if !seen[k] {
			keys = append(keys, k)
		}
	}
	return keys
}

func enabled(cfg *option.Config, key string) (bool, error) {
	switch key {
	case option.KeyBuildTests:
		return cfg.BuildTests(), nil
	case option.KeyInsecureMode:
		return cfg.InsecureMode(), nil
	case option.KeyGenerateCoverage:
		return cfg.GenerateCoverage(), nil
	case option.KeySSLBackend:
		return cfg.SSLBackend() == option.SSLOpenSSL, nil
	case option.KeyUseSystemCurl:
		return cfg.UseSystemCurl(), nil
	case option.KeyLinkage:
		return cfg.Shared(), nil
	default:
		return false, errors.New(errors.ErrCodeInvalidRequest, fmt.Sprintf("option %q cannot be rendered as a CMake flag", key))
	}
}

func define(name, value string) string {
	return "-D" + name + "=" + value
}

func onOff(b bool) string {
	if b {
		return "ON"
	}
	return "OFF"
}
