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
	_ "embed"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"

	"github.com/NVIDIA/cpr-recipe/pkg/errors"
	"github.com/NVIDIA/cpr-recipe/pkg/header"
	"github.com/NVIDIA/cpr-recipe/pkg/option"
	"github.com/NVIDIA/cpr-recipe/pkg/serializer"
	"github.com/NVIDIA/cpr-recipe/pkg/version"
)

//go:embed data/cpr.yaml
var defaultRecipe []byte

var (
	defaultOnce   sync.Once
	cachedDefault *Recipe
	cachedErr     error
)

// Rule roots.
const (
	RootSource = "source"
	RootBuild  = "build"
)

// Recipe describes how a library is fetched, built and packaged.
type Recipe struct {
	header.Header `json:",inline" yaml:",inline"`

	Name        string            `json:"name" yaml:"name"`
	Version     string            `json:"version" yaml:"version"`
	Description string            `json:"description,omitempty" yaml:"description,omitempty"`
	License     string            `json:"license,omitempty" yaml:"license,omitempty"`
	URL         string            `json:"url,omitempty" yaml:"url,omitempty"`
	Source      Source            `json:"source" yaml:"source"`
	Defaults    map[string]string `json:"defaults,omitempty" yaml:"defaults,omitempty"`
	Requires    []Requirement     `json:"requires,omitempty" yaml:"requires,omitempty"`
	CMake       CMake             `json:"cmake" yaml:"cmake"`
	Package     Package           `json:"package" yaml:"package"`
	Info        Info              `json:"info" yaml:"info"`
}

// Source is the git location of the library sources.
type Source struct {
	URL string `json:"url" yaml:"url"`
	Ref string `json:"ref,omitempty" yaml:"ref,omitempty"`
}

// Requirement pins an optional dependency.
type Requirement struct {
	Name    string            `json:"name" yaml:"name"`
	Version string            `json:"version" yaml:"version"`
	Options map[string]string `json:"options,omitempty" yaml:"options,omitempty"`
}

// CMake holds the CMake cache variable bound to each option key.
type CMake struct {
	Generator string            `json:"generator,omitempty" yaml:"generator,omitempty"`
	Flags     map[string]string `json:"flags" yaml:"flags"`
	Extra     []string          `json:"extra,omitempty" yaml:"extra,omitempty"`
}

// Package lists the copy rules applied after a build.
type Package struct {
	Rules []Rule `json:"rules" yaml:"rules"`
}

// Rule copies files matching any pattern under Root/Src into Dst,
// keeping paths relative to Src. SharedPatterns apply only to shared builds.
type Rule struct {
	Name           string   `json:"name" yaml:"name"`
	Root           string   `json:"root" yaml:"root"`
	Src            string   `json:"src,omitempty" yaml:"src,omitempty"`
	Dst            string   `json:"dst" yaml:"dst"`
	Patterns       []string `json:"patterns" yaml:"patterns"`
	SharedPatterns []string `json:"shared_patterns,omitempty" yaml:"shared_patterns,omitempty"`
	Optional       bool     `json:"optional,omitempty" yaml:"optional,omitempty"`
}

// Info is the link information published for consumers.
type Info struct {
	Libs        []string `json:"libs" yaml:"libs"`
	IncludeDirs []string `json:"include_dirs" yaml:"include_dirs"`
	LibDirs     []string `json:"lib_dirs" yaml:"lib_dirs"`
}

// Default returns the embedded cpr recipe. The result is shared; callers must not modify it.
func Default() (*Recipe, error) {
	defaultOnce.Do(func() {
		cachedDefault, cachedErr = Parse(defaultRecipe)
	})
	return cachedDefault, cachedErr
}

// Parse decodes and validates a YAML recipe.
func Parse(content []byte) (*Recipe, error) {
	r, err := serializer.FromBytes[Recipe](serializer.FormatYAML, content)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidRequest, "failed to parse recipe", err)
	}
	if err := r.Validate(); err != nil {
		return nil, err
	}
	return r, nil
}

// Load reads and validates the recipe file at path.
func Load(path string) (*Recipe, error) {
	r, err := serializer.FromFile[Recipe](path)
	if err != nil {
		return nil, errors.WrapWithContext(errors.ErrCodeInvalidRequest, "failed to load recipe", err,
			map[string]any{"path": path})
	}
	if err := r.Validate(); err != nil {
		return nil, err
	}
	slog.Debug("recipe loaded", "path", path, "name", r.Name, "version", r.Version)
	return r, nil
}

// Ref returns the "name/version" reference of the recipe.
func (r *Recipe) Ref() string {
	return r.Name + "/" + r.Version
}

// Validate checks that the recipe is complete and internally consistent.
func (r *Recipe) Validate() error {
	var problems []string

	if err := r.Header.Check(header.KindRecipe); err != nil {
		problems = append(problems, err.Error())
	}
	if strings.TrimSpace(r.Name) == "" {
		problems = append(problems, "name is required")
	}
	if _, err := version.ParseVersion(r.Version); err != nil {
		problems = append(problems, fmt.Sprintf("version %q: %v", r.Version, err))
	}
	if r.Source.URL == "" {
		problems = append(problems, "source.url is required")
	}

	seen := make(map[string]bool, len(r.Requires))
	for _, req := range r.Requires {
		if req.Name == "" {
			problems = append(problems, "requires: name is required")
			continue
		}
		if seen[req.Name] {
			problems = append(problems, fmt.Sprintf("requires: duplicate %q", req.Name))
		}
		seen[req.Name] = true
		if _, err := version.ParseVersion(req.Version); err != nil {
			problems = append(problems, fmt.Sprintf("requires %s: version %q: %v", req.Name, req.Version, err))
		}
	}

	for key, flag := range r.CMake.Flags {
		if !isOptionKey(key) || key == option.KeyBuildType {
			problems = append(problems, fmt.Sprintf("cmake.flags: unknown option %q", key))
		}
		if strings.TrimSpace(flag) == "" || strings.ContainsAny(flag, " =") {
			problems = append(problems, fmt.Sprintf("cmake.flags.%s: invalid variable name %q", key, flag))
		}
	}

	if len(r.Package.Rules) == 0 {
		problems = append(problems, "package.rules: at least one rule is required")
	}
	for i, rule := range r.Package.Rules {
		if rule.Root != RootSource && rule.Root != RootBuild {
			problems = append(problems, fmt.Sprintf("package.rules[%d]: root must be %q or %q", i, RootSource, RootBuild))
		}
		if len(rule.Patterns) == 0 && len(rule.SharedPatterns) == 0 {
			problems = append(problems, fmt.Sprintf("package.rules[%d]: at least one pattern is required", i))
		}
		if rule.Dst == "" {
			problems = append(problems, fmt.Sprintf("package.rules[%d]: dst is required", i))
		}
	}

	if _, err := r.DefaultOptions(); err != nil {
		problems = append(problems, fmt.Sprintf("defaults: %v", err))
	}

	if len(problems) > 0 {
		return errors.NewWithContext(errors.ErrCodeInvalidRequest,
			fmt.Sprintf("invalid recipe %s: %s", r.Name, strings.Join(problems, "; ")),
			map[string]any{"recipe": r.Name, "problems": problems})
	}
	return nil
}

// DefaultOptions converts the recipe defaults into configuration options.
// Overrides appended after them take precedence.
func (r *Recipe) DefaultOptions() ([]option.Option, error) {
	return option.FromMap(r.Defaults)
}

// Requirement returns the pinned requirement for name.
func (r *Recipe) Requirement(name string) (Requirement, bool) {
	for _, req := range r.Requires {
		if req.Name == name {
			return req, true
		}
	}
	return Requirement{}, false
}

// Flag returns the CMake variable bound to an option key.
func (r *Recipe) Flag(key string) (string, bool) {
	flag, ok := r.CMake.Flags[key]
	return flag, ok && flag != ""
}

// FlagKeys returns the option keys with a bound CMake variable, sorted.
func (r *Recipe) FlagKeys() []string {
	keys := make([]string, 0, len(r.CMake.Flags))
	for k, v := range r.CMake.Flags {
		if v != "" {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	return keys
}

// RulesFor returns the copy rules with patterns resolved for cfg.
func (r *Recipe) RulesFor(cfg *option.Config) []Rule {
	rules := make([]Rule, 0, len(r.Package.Rules))
	for _, rule := range r.Package.Rules {
		resolved := rule
		resolved.Patterns = append([]string(nil), rule.Patterns...)
		if cfg.Shared() {
			resolved.Patterns = append(resolved.Patterns, rule.SharedPatterns...)
		}
		resolved.SharedPatterns = nil
		if len(resolved.Patterns) == 0 {
			continue
		}
		rules = append(rules, resolved)
	}
	return rules
}

func isOptionKey(key string) bool {
	for _, k := range option.Keys() {
		if k == key {
			return true
		}
	}
	return false
}
