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

package checksum

import (
	"bufio"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/NVIDIA/cpr-recipe/pkg/defaults"
)

// ChecksumFileName is the standard name for checksum files.
const ChecksumFileName = "checksums.txt"

// Entry is a single file digest.
type Entry struct {
	Path   string
	Digest string
}

// GenerateChecksums writes checksums.txt into packageDir for the given
// absolute file paths. Files are hashed concurrently; the output is sorted
// by relative path.
func GenerateChecksums(ctx context.Context, packageDir string, files []string) ([]Entry, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context cancelled: %w", err)
	}

	entries := make([]Entry, len(files))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(defaults.ChecksumConcurrency)

	for i, file := range files {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			digest, err := HashFile(file)
			if err != nil {
				return err
			}
			relPath, err := filepath.Rel(packageDir, file)
			if err != nil {
				relPath = file
			}
			entries[i] = Entry{Path: filepath.ToSlash(relPath), Digest: digest}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Path < entries[j].Path
	})

	var b strings.Builder
	for _, e := range entries {
		fmt.Fprintf(&b, "%s  %s\n", e.Digest, e.Path)
	}

	checksumPath := GetChecksumFilePath(packageDir)
	if err := os.WriteFile(checksumPath, []byte(b.String()), 0o600); err != nil {
		return nil, fmt.Errorf("failed to write checksums: %w", err)
	}

	slog.Debug("checksums generated",
		"file_count", len(entries),
		"path", checksumPath,
	)

	return entries, nil
}

// HashFile returns the hex SHA-256 digest of the file at path.
func HashFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("failed to read %s for checksum: %w", path, err)
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", fmt.Errorf("failed to hash %s: %w", path, err)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// ReadChecksums parses the checksums.txt file in packageDir.
func ReadChecksums(packageDir string) ([]Entry, error) {
	f, err := os.Open(GetChecksumFilePath(packageDir))
	if err != nil {
		return nil, fmt.Errorf("failed to open checksums: %w", err)
	}
	defer f.Close()

	var entries []Entry
	scanner := bufio.NewScanner(f)
	line := 0
	for scanner.Scan() {
		line++
		text := strings.TrimSpace(scanner.Text())
		if text == "" {
			continue
		}
		digest, path, ok := strings.Cut(text, "  ")
		if !ok || len(digest) != sha256.Size*2 {
			return nil, fmt.Errorf("invalid checksum entry on line %d: %q", line, text)
		}
		entries = append(entries, Entry{Path: path, Digest: digest})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read checksums: %w", err)
	}
	return entries, nil
}

// VerifyChecksums recomputes every digest listed in packageDir's checksums.txt
// and returns the paths that are missing or do not match.
func VerifyChecksums(ctx context.Context, packageDir string) ([]string, error) {
	entries, err := ReadChecksums(packageDir)
	if err != nil {
		return nil, err
	}

	var mismatched []string
	for _, e := range entries {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("context cancelled: %w", err)
		}
		digest, err := HashFile(filepath.Join(packageDir, filepath.FromSlash(e.Path)))
		if err != nil || digest != e.Digest {
			mismatched = append(mismatched, e.Path)
		}
	}
	return mismatched, nil
}

// GetChecksumFilePath returns the full path to the checksums.txt file
// in the given package directory.
func GetChecksumFilePath(packageDir string) string {
	return filepath.Join(packageDir, ChecksumFileName)
}
