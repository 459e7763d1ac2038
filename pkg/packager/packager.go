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

package packager

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"sort"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/NVIDIA/cpr-recipe/pkg/errors"
	"github.com/NVIDIA/cpr-recipe/pkg/packager/checksum"
	"github.com/NVIDIA/cpr-recipe/pkg/recipe"
)

// Paths are the directories a build works with.
type Paths struct {
	Source  string `json:"source" yaml:"source"`
	Build   string `json:"build" yaml:"build"`
	Package string `json:"package" yaml:"package"`
}

// Validate checks that every directory is set.
func (p Paths) Validate() error {
	missing := []string{}
	if p.Source == "" {
		missing = append(missing, "source")
	}
	if p.Build == "" {
		missing = append(missing, "build")
	}
	if p.Package == "" {
		missing = append(missing, "package")
	}
	if len(missing) > 0 {
		return errors.NewWithContext(errors.ErrCodeInvalidRequest,
			fmt.Sprintf("missing directories: %v", missing),
			map[string]any{"missing": missing})
	}
	return nil
}

// File is a single copied artifact.
type File struct {
	Path   string `json:"path" yaml:"path"`
	Source string `json:"source" yaml:"source"`
	Size   int64  `json:"size" yaml:"size"`
	Rule   string `json:"rule" yaml:"rule"`
}

// RuleResult summarizes what a rule copied.
type RuleResult struct {
	Name    string `json:"name" yaml:"name"`
	Copied  int    `json:"copied" yaml:"copied"`
	Missing bool   `json:"missing,omitempty" yaml:"missing,omitempty"`
}

// Layout is the populated package directory.
type Layout struct {
	Root      string       `json:"root" yaml:"root"`
	Files     []File       `json:"files" yaml:"files"`
	Rules     []RuleResult `json:"rules" yaml:"rules"`
	TotalSize int64        `json:"total_size" yaml:"total_size"`
	Checksums string       `json:"checksums" yaml:"checksums"`
}

// Paths returns the absolute paths of every copied file.
func (l *Layout) Paths() []string {
	out := make([]string, 0, len(l.Files))
	for _, f := range l.Files {
		out = append(out, filepath.Join(l.Root, filepath.FromSlash(f.Path)))
	}
	return out
}

// Packager applies copy rules.
type Packager struct {
	allowMissing bool
}

// Option configures a Packager.
type Option func(*Packager)

// WithAllowMissing downgrades ARTIFACT_MISSING to a warning for every rule.
func WithAllowMissing(allow bool) Option {
	return func(p *Packager) {
		p.allowMissing = allow
	}
}

// New creates a Packager.
func New(opts ...Option) *Packager {
	p := &Packager{}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Collect copies the files matched by rules into paths.Package. Each rule
// destination is cleared first so files from an earlier build do not
// survive. Call Seal once every file in the package is written.
func (p *Packager) Collect(ctx context.Context, rules []recipe.Rule, paths Paths) (*Layout, error) {
	if err := paths.Validate(); err != nil {
		return nil, err
	}

	root, err := filepath.Abs(paths.Package)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidRequest, "invalid package directory", err)
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, "failed to create package directory", err)
	}

	if err := clean(root, rules, paths); err != nil {
		return nil, err
	}

	layout := &Layout{Root: root}
	copied := make(map[string]string)

	for _, rule := range rules {
		if err := ctx.Err(); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInternal, "packaging canceled", err)
		}

		files, matched, err := p.apply(rule, paths, root, copied)
		if err != nil {
			return nil, err
		}

		result := RuleResult{Name: rule.Name, Copied: len(files)}
		if matched == 0 {
			result.Missing = true
			dir := ruleDir(rule, paths)
			if !rule.Optional && !p.allowMissing {
				return nil, errors.NewWithContext(errors.ErrCodeArtifactMissing,
					fmt.Sprintf("rule %q matched no files in %s", rule.Name, dir),
					map[string]any{"rule": rule.Name, "dir": dir, "patterns": rule.Patterns})
			}
			slog.Warn("package rule matched no files",
				"rule", rule.Name, "dir", dir, "patterns", rule.Patterns, "optional", rule.Optional)
		}

		layout.Rules = append(layout.Rules, result)
		layout.Files = append(layout.Files, files...)
	}

	sort.Slice(layout.Files, func(i, j int) bool {
		return layout.Files[i].Path < layout.Files[j].Path
	})
	for _, f := range layout.Files {
		layout.TotalSize += f.Size
	}

	slog.Debug("artifacts collected",
		"package", root,
		"files", len(layout.Files),
		"size", layout.TotalSize,
	)
	return layout, nil
}

// Seal writes checksums.txt covering the collected files plus extra, given
// as slash-separated paths relative to the package root.
func (p *Packager) Seal(ctx context.Context, layout *Layout, extra ...string) error {
	files := layout.Paths()
	for _, rel := range extra {
		files = append(files, filepath.Join(layout.Root, filepath.FromSlash(rel)))
	}
	if _, err := checksum.GenerateChecksums(ctx, layout.Root, files); err != nil {
		return errors.Wrap(errors.ErrCodeInternal, "failed to generate checksums", err)
	}
	layout.Checksums = checksum.ChecksumFileName
	return nil
}

// clean removes every rule destination and any previous checksums.txt
// under root. A destination outside root, or one holding a rule's input
// directory, is rejected; "." empties root.
func clean(root string, rules []recipe.Rule, paths Paths) error {
	targets := []string{checksum.ChecksumFileName}
	all := false
	for _, rule := range rules {
		dst := path.Clean(rule.Dst)
		if !filepath.IsLocal(filepath.FromSlash(dst)) {
			return errors.NewWithContext(errors.ErrCodeInvalidRequest,
				fmt.Sprintf("rule %q destination %q is outside the package", rule.Name, rule.Dst),
				map[string]any{"rule": rule.Name, "dst": rule.Dst})
		}
		if dst == "." {
			all = true
		}
		targets = append(targets, dst)
	}

	if all {
		entries, err := os.ReadDir(root)
		if err != nil {
			return errors.Wrap(errors.ErrCodeInternal, "failed to read package directory", err)
		}
		targets = targets[:0]
		for _, e := range entries {
			targets = append(targets, e.Name())
		}
	}

	for _, t := range targets {
		target := filepath.Join(root, filepath.FromSlash(t))
		for _, rule := range rules {
			if dir, err := filepath.Abs(ruleDir(rule, paths)); err == nil && within(target, dir) {
				return errors.NewWithContext(errors.ErrCodeInvalidRequest,
					fmt.Sprintf("package path %s holds the input of rule %q", target, rule.Name),
					map[string]any{"rule": rule.Name, "path": target, "dir": dir})
			}
		}
		if err := os.RemoveAll(target); err != nil {
			return errors.WrapWithContext(errors.ErrCodeInternal,
				"failed to clear package destination", err,
				map[string]any{"path": t})
		}
	}
	return nil
}

// within reports whether child is parent or lies below it.
func within(parent, child string) bool {
	rel, err := filepath.Rel(parent, child)
	return err == nil && filepath.IsLocal(rel)
}

func ruleDir(rule recipe.Rule, paths Paths) string {
	base := paths.Build
	if rule.Root == recipe.RootSource {
		base = paths.Source
	}
	return filepath.Join(base, filepath.FromSlash(rule.Src))
}

// apply copies the files matched by a single rule and returns them with the
// number of matches. copied tracks package paths already written so
// overlapping patterns and rules copy once; a match written by an earlier
// rule still counts toward this rule.
func (p *Packager) apply(rule recipe.Rule, paths Paths, root string, copied map[string]string) ([]File, int, error) {
	dir := ruleDir(rule, paths)
	info, err := os.Stat(dir)
	if err != nil || !info.IsDir() {
		slog.Debug("rule directory not present", "rule", rule.Name, "dir", dir)
		return nil, 0, nil
	}

	matches, err := match(dir, rule.Patterns)
	if err != nil {
		return nil, 0, errors.WrapWithContext(errors.ErrCodeInvalidRequest,
			fmt.Sprintf("invalid pattern in rule %q", rule.Name), err,
			map[string]any{"rule": rule.Name, "patterns": rule.Patterns})
	}

	var files []File
	for _, rel := range matches {
		dst := path.Join(rule.Dst, rel)
		if prev, ok := copied[dst]; ok {
			slog.Debug("artifact already packaged", "path", dst, "rule", prev)
			continue
		}

		src := filepath.Join(dir, filepath.FromSlash(rel))
		size, err := copyFile(src, filepath.Join(root, filepath.FromSlash(dst)))
		if err != nil {
			return nil, 0, errors.WrapWithContext(errors.ErrCodeInternal,
				fmt.Sprintf("failed to copy %s", src), err,
				map[string]any{"rule": rule.Name, "path": dst})
		}
		copied[dst] = rule.Name
		files = append(files, File{Path: dst, Source: src, Size: size, Rule: rule.Name})
	}
	return files, len(matches), nil
}

// match returns the slash-separated regular files under dir matching any
// pattern at any depth, sorted and deduplicated.
func match(dir string, patterns []string) ([]string, error) {
	fsys := os.DirFS(dir)
	seen := make(map[string]bool)
	var out []string

	for _, pattern := range patterns {
		if !doublestar.ValidatePattern(pattern) {
			return nil, fmt.Errorf("bad pattern %q", pattern)
		}
		matches, err := doublestar.Glob(fsys, "**/"+pattern, doublestar.WithFilesOnly())
		if err != nil {
			return nil, err
		}
		for _, m := range matches {
			if seen[m] {
				continue
			}
			// symlinked libraries (libcpr.so -> libcpr.so.1) are copied as regular files
			info, err := os.Stat(filepath.Join(dir, filepath.FromSlash(m)))
			if err != nil || !info.Mode().IsRegular() {
				continue
			}
			seen[m] = true
			out = append(out, m)
		}
	}

	sort.Strings(out)
	return out, nil
}

func copyFile(src, dst string) (int64, error) {
	in, err := os.Open(src)
	if err != nil {
		return 0, err
	}
	defer in.Close()

	info, err := in.Stat()
	if err != nil {
		return 0, err
	}

	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return 0, err
	}

	out, err := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, info.Mode().Perm())
	if err != nil {
		return 0, err
	}

	n, err := io.Copy(out, in)
	if closeErr := out.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		return 0, err
	}
	return n, nil
}
