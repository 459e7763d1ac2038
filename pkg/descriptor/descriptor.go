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

package descriptor

import (
	"crypto/sha256"
	"encoding/hex"
	"path/filepath"

	"github.com/NVIDIA/cpr-recipe/pkg/errors"
	"github.com/NVIDIA/cpr-recipe/pkg/header"
	"github.com/NVIDIA/cpr-recipe/pkg/option"
	"github.com/NVIDIA/cpr-recipe/pkg/recipe"
	"github.com/NVIDIA/cpr-recipe/pkg/resolver"
	"github.com/NVIDIA/cpr-recipe/pkg/serializer"
)

// FileName is the descriptor file written to the package root.
const FileName = "package.yaml"

// Descriptor is the consumer-facing package metadata.
type Descriptor struct {
	header.Header `json:",inline" yaml:",inline"`

	Name        string            `json:"name" yaml:"name"`
	Version     string            `json:"version" yaml:"version"`
	PackageID   string            `json:"package_id" yaml:"package_id"`
	Libs        []string          `json:"libs" yaml:"libs"`
	SystemLibs  []string          `json:"system_libs,omitempty" yaml:"system_libs,omitempty"`
	IncludeDirs []string          `json:"include_dirs" yaml:"include_dirs"`
	LibDirs     []string          `json:"lib_dirs" yaml:"lib_dirs"`
	Requires    []string          `json:"requires,omitempty" yaml:"requires,omitempty"`
	Options     map[string]string `json:"options" yaml:"options"`
}

// Describe builds the descriptor for a recipe built with cfg against deps.
func Describe(r *recipe.Recipe, cfg *option.Config, deps []resolver.RequiredPackage, toolVersion string) (*Descriptor, error) {
	if r == nil || cfg == nil {
		return nil, errors.New(errors.ErrCodeInvalidRequest, "recipe and configuration are required")
	}

	d := &Descriptor{
		Name:        r.Name,
		Version:     r.Version,
		PackageID:   PackageID(r, cfg),
		Libs:        clone(r.Info.Libs),
		SystemLibs:  resolver.SystemLibs(deps),
		IncludeDirs: clone(r.Info.IncludeDirs),
		LibDirs:     clone(r.Info.LibDirs),
		Options:     cfg.Map(),
	}
	d.Init(header.KindPackage, header.APIVersion, toolVersion)

	for _, dep := range deps {
		if !dep.System {
			d.Requires = append(d.Requires, dep.String())
		}
	}

	return d, nil
}

// PackageID returns the SHA-256 of the recipe reference and canonical configuration.
func PackageID(r *recipe.Recipe, cfg *option.Config) string {
	sum := sha256.Sum256([]byte(r.Ref() + "\n" + cfg.Canonical()))
	return hex.EncodeToString(sum[:])
}

// Write stores d as package.yaml in packageDir and returns the file path.
func Write(packageDir string, d *Descriptor) (string, error) {
	path := filepath.Join(packageDir, FileName)
	if err := serializer.WriteFile(path, serializer.FormatYAML, d); err != nil {
		return "", errors.Wrap(errors.ErrCodeInternal, "failed to write package descriptor", err)
	}
	return path, nil
}

// Read loads package.yaml from packageDir.
func Read(packageDir string) (*Descriptor, error) {
	d, err := serializer.FromFile[Descriptor](filepath.Join(packageDir, FileName))
	if err != nil {
		return nil, errors.WrapWithContext(errors.ErrCodeNotFound, "failed to read package descriptor", err,
			map[string]any{"dir": packageDir})
	}
	if err := d.Check(header.KindPackage); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidRequest, "invalid package descriptor", err)
	}
	return d, nil
}

func clone(s []string) []string {
	if s == nil {
		return []string{}
	}
	return append([]string(nil), s...)
}
