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

package resolver

import (
	"fmt"
	"log/slog"
	"maps"
	"sort"
	"strings"

	"github.com/NVIDIA/cpr-recipe/pkg/errors"
	"github.com/NVIDIA/cpr-recipe/pkg/option"
	"github.com/NVIDIA/cpr-recipe/pkg/recipe"
	"github.com/NVIDIA/cpr-recipe/pkg/registry"
	"github.com/NVIDIA/cpr-recipe/pkg/version"
)

// Well-known dependency names.
const (
	Curl       = "libcurl"
	OpenSSL    = "openssl"
	GTest      = "gtest"
	SystemCurl = "curl"
)

// RequiredPackage is a single dependency of the build.
type RequiredPackage struct {
	Name    string            `json:"name" yaml:"name"`
	Version string            `json:"version,omitempty" yaml:"version,omitempty"`
	Options map[string]string `json:"options,omitempty" yaml:"options,omitempty"`

	// System marks a library expected to be installed on the host.
	System bool `json:"system,omitempty" yaml:"system,omitempty"`
	// Libs are the link names of a system library.
	Libs []string `json:"libs,omitempty" yaml:"libs,omitempty"`
	// Packages maps package managers to the host package providing the library.
	Packages map[string]string `json:"packages,omitempty" yaml:"packages,omitempty"`
}

// String renders "name/version", or "name (system)" for system libraries.
func (p RequiredPackage) String() string {
	if p.System {
		return p.Name + " (system)"
	}
	return p.Name + "/" + p.Version
}

// Reference renders the requirement with its options,
// e.g. "libcurl/7.56.1 shared=False with_openssl=True".
func (p RequiredPackage) Reference() string {
	keys := make([]string, 0, len(p.Options))
	for k := range p.Options {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := []string{p.String()}
	for _, k := range keys {
		parts = append(parts, k+"="+p.Options[k])
	}
	return strings.Join(parts, " ")
}

// Resolver resolves requirements against a recipe's pinned versions.
type Resolver struct {
	recipe   *recipe.Recipe
	registry *registry.Registry
}

// New creates a Resolver. A nil registry selects the embedded one.
func New(r *recipe.Recipe, reg *registry.Registry) *Resolver {
	if reg == nil {
		reg = registry.Default()
	}
	return &Resolver{recipe: r, registry: reg}
}

// Resolve returns the requirements for cfg, sorted by name.
func (r *Resolver) Resolve(cfg *option.Config) ([]RequiredPackage, error) {
	if cfg == nil {
		return nil, errors.New(errors.ErrCodeInvalidRequest, "configuration is required")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	var pkgs []RequiredPackage

	if cfg.UseSystemCurl() {
		sys, err := r.system(SystemCurl)
		if err != nil {
			return nil, err
		}
		pkgs = append(pkgs, sys)
	} else {
		curl, err := r.pinned(Curl, map[string]string{
			"with_openssl": pyBool(cfg.SSLBackend() == option.SSLOpenSSL),
			"shared":       pyBool(cfg.Shared()),
		})
		if err != nil {
			return nil, err
		}
		pkgs = append(pkgs, curl)
	}

	if cfg.SSLBackend() == option.SSLOpenSSL {
		ssl, err := r.pinned(OpenSSL, map[string]string{
			"shared": pyBool(cfg.Shared()),
		})
		if err != nil {
			return nil, err
		}
		pkgs = append(pkgs, ssl)
	}

	if cfg.BuildTests() {
		// the test framework is always linked statically
		gtest, err := r.pinned(GTest, map[string]string{
			"shared": pyBool(false),
		})
		if err != nil {
			return nil, err
		}
		pkgs = append(pkgs, gtest)
	}

	sort.Slice(pkgs, func(i, j int) bool {
		return pkgs[i].Name < pkgs[j].Name
	})

	slog.Debug("dependencies resolved", "config", cfg.Canonical(), "count", len(pkgs))
	return pkgs, nil
}

func (r *Resolver) pinned(name string, opts map[string]string) (RequiredPackage, error) {
	req, ok := r.recipe.Requirement(name)
	if !ok {
		return RequiredPackage{}, errors.NewWithContext(errors.ErrCodeNotFound,
			fmt.Sprintf("recipe %s does not pin a version for %s", r.recipe.Ref(), name),
			map[string]any{"recipe": r.recipe.Ref(), "dependency": name})
	}

	v, err := version.ParseVersion(req.Version)
	if err != nil {
		return RequiredPackage{}, errors.Wrap(errors.ErrCodeInvalidRequest,
			fmt.Sprintf("invalid version for %s", name), err)
	}

	merged := make(map[string]string, len(req.Options)+len(opts))
	maps.Copy(merged, req.Options)
	maps.Copy(merged, opts)

	return RequiredPackage{
		Name:    name,
		Version: v.Full(),
		Options: merged,
	}, nil
}

func (r *Resolver) system(name string) (RequiredPackage, error) {
	entry, err := r.registry.Load(name)
	if err != nil {
		return RequiredPackage{}, err
	}
	return RequiredPackage{
		Name:     entry.Name,
		System:   true,
		Libs:     append([]string(nil), entry.Libs...),
		Packages: maps.Clone(entry.Backends),
	}, nil
}

// SystemLibs returns the link names of every system requirement, in order.
func SystemLibs(pkgs []RequiredPackage) []string {
	var libs []string
	for _, p := range pkgs {
		if p.System {
			libs = append(libs, p.Libs...)
		}
	}
	return libs
}

// Find returns the requirement named name.
func Find(pkgs []RequiredPackage, name string) (RequiredPackage, bool) {
	for _, p := range pkgs {
		if p.Name == name {
			return p, true
		}
	}
	return RequiredPackage{}, false
}

// pyBool renders booleans the way package-manager option values spell them.
func pyBool(b bool) string {
	if b {
		return "True"
	}
	return "False"
}
