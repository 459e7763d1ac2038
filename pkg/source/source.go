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

package source

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/go-git/go-git/v5"
	gitconfig "github.com/go-git/go-git/v5/config"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/transport"
	"github.com/go-git/go-git/v5/storage/memory"

	"github.com/NVIDIA/cpr-recipe/pkg/defaults"
	"github.com/NVIDIA/cpr-recipe/pkg/errors"
	"github.com/NVIDIA/cpr-recipe/pkg/recipe"
)

// Result describes a fetched source tree.
type Result struct {
	Dir     string `json:"dir" yaml:"dir"`
	URL     string `json:"url,omitempty" yaml:"url,omitempty"`
	Ref     string `json:"ref,omitempty" yaml:"ref,omitempty"`
	Commit  string `json:"commit,omitempty" yaml:"commit,omitempty"`
	Skipped bool   `json:"skipped,omitempty" yaml:"skipped,omitempty"`
}

// Fetcher populates dir with the sources described by src.
type Fetcher interface {
	Fetch(ctx context.Context, src recipe.Source, dir string) (*Result, error)
}

// GitFetcher clones sources with go-git.
type GitFetcher struct {
	depth    int
	progress io.Writer
	auth     transport.AuthMethod
}

// Option configures a GitFetcher.
type Option func(*GitFetcher)

// WithDepth sets the clone depth. Zero fetches full history.
func WithDepth(depth int) Option {
	return func(f *GitFetcher) {
		if depth >= 0 {
			f.depth = depth
		}
	}
}

// WithProgress streams clone progress to w.
func WithProgress(w io.Writer) Option {
	return func(f *GitFetcher) {
		f.progress = w
	}
}

// WithAuth sets credentials for private remotes.
func WithAuth(auth transport.AuthMethod) Option {
	return func(f *GitFetcher) {
		f.auth = auth
	}
}

// NewGitFetcher creates a GitFetcher with a shallow clone depth.
func NewGitFetcher(opts ...Option) *GitFetcher {
	f := &GitFetcher{depth: defaults.SourceCloneDepth}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Fetch clones src into dir unless dir already holds files.
func (f *GitFetcher) Fetch(ctx context.Context, src recipe.Source, dir string) (*Result, error) {
	if dir == "" {
		return nil, errors.New(errors.ErrCodeInvalidRequest, "source directory is required")
	}

	populated, err := hasEntries(dir)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, "failed to inspect source directory", err)
	}
	if populated {
		slog.Info("using existing source tree", "dir", dir)
		return &Result{Dir: dir, Commit: headCommit(dir), Skipped: true}, nil
	}

	if src.URL == "" {
		return nil, errors.New(errors.ErrCodeInvalidRequest, "source url is required")
	}

	if defaults.SourceFetchTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, defaults.SourceFetchTimeout)
		defer cancel()
	}

	refName, err := f.resolveRef(ctx, src)
	if err != nil {
		return nil, err
	}

	opts := &git.CloneOptions{
		URL:          src.URL,
		Auth:         f.auth,
		Depth:        f.depth,
		SingleBranch: true,
		Tags:         git.NoTags,
		Progress:     f.progress,
	}
	if refName != "" {
		opts.ReferenceName = refName
	}

	slog.Info("cloning source", "url", src.URL, "ref", src.Ref, "dir", dir, "depth", f.depth)
	repo, err := git.PlainCloneContext(ctx, dir, false, opts)
	if err != nil {
		return nil, classifyCloneError(ctx, src, err)
	}

	res := &Result{Dir: dir, URL: src.URL, Ref: src.Ref}
	if head, err := repo.Head(); err == nil {
		res.Commit = head.Hash().String()
	}
	slog.Info("source cloned", "url", src.URL, "commit", res.Commit)
	return res, nil
}

// resolveRef finds the tag or branch named by src.Ref on the remote.
func (f *GitFetcher) resolveRef(ctx context.Context, src recipe.Source) (plumbing.ReferenceName, error) {
	if src.Ref == "" {
		return "", nil
	}

	remote := git.NewRemote(memory.NewStorage(), &gitconfig.RemoteConfig{
		Name: git.DefaultRemoteName,
		URLs: []string{src.URL},
	})
	refs, err := remote.ListContext(ctx, &git.ListOptions{Auth: f.auth})
	if err != nil {
		return "", classifyCloneError(ctx, src, err)
	}

	tag := plumbing.NewTagReferenceName(src.Ref)
	branch := plumbing.NewBranchReferenceName(src.Ref)
	var found plumbing.ReferenceName
	for _, ref := range refs {
		switch ref.Name() {
		case tag:
			return tag, nil
		case branch:
			found = branch
		}
	}
	if found != "" {
		return found, nil
	}

	return "", errors.NewWithContext(errors.ErrCodeNotFound,
		fmt.Sprintf("ref %q not found at %s", src.Ref, src.URL),
		map[string]any{"url": src.URL, "ref": src.Ref})
}

func classifyCloneError(ctx context.Context, src recipe.Source, err error) error {
	ctxInfo := map[string]any{"url": src.URL, "ref": src.Ref}
	switch {
	case stderrors.Is(ctx.Err(), context.DeadlineExceeded):
		return errors.WrapWithContext(errors.ErrCodeTimeout, "source fetch timed out", err, ctxInfo)
	case stderrors.Is(err, transport.ErrRepositoryNotFound):
		return errors.WrapWithContext(errors.ErrCodeNotFound, "source repository not found", err, ctxInfo)
	case stderrors.Is(err, transport.ErrAuthenticationRequired), stderrors.Is(err, transport.ErrAuthorizationFailed):
		return errors.WrapWithContext(errors.ErrCodeInvalidRequest, "source repository requires credentials", err, ctxInfo)
	default:
		return errors.WrapWithContext(errors.ErrCodeInternal, "failed to fetch source", err, ctxInfo)
	}
}

func hasEntries(dir string) (bool, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if stderrors.Is(err, os.ErrNotExist) {
			return false, nil
		}
		return false, err
	}
	return len(entries) > 0, nil
}

func headCommit(dir string) string {
	repo, err := git.PlainOpen(dir)
	if err != nil {
		return ""
	}
	head, err := repo.Head()
	if err != nil {
		return ""
	}
	return head.Hash().String()
}
