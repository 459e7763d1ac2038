/*
Copyright © 2025 NVIDIA Corporation
SPDX-License-Identifier: Apache-2.0
*/

package registry

import (
	"embed"
	stderrors "errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"sort"
	"strings"
	"sync"

	"github.com/BurntSushi/toml"

	"github.com/NVIDIA/cpr-recipe/pkg/errors"
)

//go:embed data/*.toml
var dataFS embed.FS

// Entry describes a single system library.
type Entry struct {
	Name     string            `toml:"name" yaml:"name" json:"name"`
	Libs     []string          `toml:"libs" yaml:"libs" json:"libs"`
	Backends map[string]string `toml:"backends" yaml:"backends,omitempty" json:"backends,omitempty"`
}

// Registry provides lookup of system library entries.
type Registry struct {
	fsys fs.FS
}

var (
	defaultOnce     sync.Once
	defaultRegistry *Registry
)

// New creates a Registry reading <name>.toml entries from the root of fsys.
func New(fsys fs.FS) *Registry {
	return &Registry{fsys: fsys}
}

// NewFromDir creates a Registry backed by a directory of entries.
func NewFromDir(dir string) *Registry {
	return New(os.DirFS(dir))
}

// Default returns the embedded registry.
func Default() *Registry {
	defaultOnce.Do(func() {
		sub, err := fs.Sub(dataFS, "data")
		if err != nil {
			panic(fmt.Sprintf("registry: embedded data: %v", err))
		}
		defaultRegistry = New(sub)
	})
	return defaultRegistry
}

// Load reads and parses the entry for name.
func (r *Registry) Load(name string) (*Entry, error) {
	key := strings.ToLower(strings.TrimSpace(name))
	if key == "" || strings.ContainsAny(key, `/\`) {
		return nil, errors.New(errors.ErrCodeInvalidRequest, fmt.Sprintf("invalid system library name %q", name))
	}

	data, err := fs.ReadFile(r.fsys, key+".toml")
	if err != nil {
		if stderrors.Is(err, fs.ErrNotExist) {
			return nil, errors.NewWithContext(errors.ErrCodeNotFound,
				fmt.Sprintf("system library %q not found in registry", name),
				map[string]any{"library": name})
		}
		return nil, errors.Wrap(errors.ErrCodeInternal, fmt.Sprintf("failed to read registry entry %q", name), err)
	}

	var entry Entry
	if _, err := toml.Decode(string(data), &entry); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidRequest, fmt.Sprintf("failed to parse registry entry %q", name), err)
	}
	if entry.Name == "" {
		entry.Name = key
	}
	if len(entry.Libs) == 0 {
		entry.Libs = []string{entry.Name}
	}

	return &entry, nil
}

// Resolve returns the backend-specific package name for a library,
// e.g. Resolve("curl", "apt") returns "libcurl4-openssl-dev".
func (r *Registry) Resolve(name, backend string) (string, error) {
	entry, err := r.Load(name)
	if err != nil {
		return "", err
	}

	pkgName, ok := entry.Backends[backend]
	if !ok {
		return "", errors.NewWithContext(errors.ErrCodeNotFound,
			fmt.Sprintf("system library %q has no package for backend %q", name, backend),
			map[string]any{"library": name, "backend": backend, "backends": entry.BackendNames()})
	}

	return pkgName, nil
}

// Names lists the libraries available in the registry, sorted.
func (r *Registry) Names() ([]string, error) {
	matches, err := fs.Glob(r.fsys, "*.toml")
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, "failed to list registry entries", err)
	}
	names := make([]string, 0, len(matches))
	for _, m := range matches {
		names = append(names, strings.TrimSuffix(path.Base(m), ".toml"))
	}
	sort.Strings(names)
	return names, nil
}

// BackendNames returns the package managers the entry covers, sorted.
func (e *Entry) BackendNames() []string {
	names := make([]string, 0, len(e.Backends))
	for b := range e.Backends {
		names = append(names, b)
	}
	sort.Strings(names)
	return names
}
