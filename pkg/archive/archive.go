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

package archive

import (
	"archive/tar"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/ulikunitz/xz"

	"github.com/NVIDIA/cpr-recipe/pkg/errors"
)

// Extension is the archive file suffix.
const Extension = ".tar.xz"

// EnvSourceDateEpoch overrides the timestamp recorded for every entry.
const EnvSourceDateEpoch = "SOURCE_DATE_EPOCH"

// Result describes a written archive.
type Result struct {
	Path   string `json:"path" yaml:"path"`
	Files  int    `json:"files" yaml:"files"`
	Size   int64  `json:"size" yaml:"size"`
	SHA256 string `json:"sha256" yaml:"sha256"`
}

// FileName returns the archive name for a package, e.g. "cpr-1.2.0-5b0c1d2e3f4a.tar.xz".
func FileName(name, version, packageID string) string {
	id := packageID
	if len(id) > 12 {
		id = id[:12]
	}
	parts := []string{name, version}
	if id != "" {
		parts = append(parts, id)
	}
	return strings.Join(parts, "-") + Extension
}

// Create writes the contents of dir to dst as a reproducible .tar.xz archive.
func Create(ctx context.Context, dir, dst string) (*Result, error) {
	info, err := os.Stat(dir)
	if err != nil || !info.IsDir() {
		return nil, errors.NewWithContext(errors.ErrCodeInvalidRequest,
			fmt.Sprintf("package directory %s does not exist", dir),
			map[string]any{"dir": dir})
	}

	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, "failed to create archive directory", err)
	}

	tmp := dst + ".tmp"
	out, err := os.Create(tmp)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, "failed to create archive", err)
	}
	defer os.Remove(tmp)

	hash := sha256.New()
	count, err := write(ctx, dir, dst, io.MultiWriter(out, hash))
	if closeErr := out.Close(); err == nil && closeErr != nil {
		err = closeErr
	}
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, "failed to write archive", err)
	}

	if err := os.Rename(tmp, dst); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, "failed to finalize archive", err)
	}

	st, err := os.Stat(dst)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, "failed to stat archive", err)
	}

	res := &Result{
		Path:   dst,
		Files:  count,
		Size:   st.Size(),
		SHA256: hex.EncodeToString(hash.Sum(nil)),
	}
	slog.Debug("archive written", "path", dst, "files", count, "size", res.Size)
	return res, nil
}

func write(ctx context.Context, dir, dst string, w io.Writer) (int, error) {
	xw, err := xz.NewWriter(w)
	if err != nil {
		return 0, err
	}
	tw := tar.NewWriter(xw)

	absDst, _ := filepath.Abs(dst)
	mtime := SourceDate()
	count := 0

	err = filepath.WalkDir(dir, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if err := ctx.Err(); err != nil {
			return err
		}

		rel, err := filepath.Rel(dir, path)
		if err != nil || rel == "." {
			return err
		}
		if abs, _ := filepath.Abs(path); abs == absDst || abs == absDst+".tmp" {
			return nil
		}

		info, err := d.Info()
		if err != nil {
			return err
		}

		hdr := &tar.Header{
			Name:    filepath.ToSlash(rel),
			ModTime: mtime,
			Mode:    int64(info.Mode().Perm()),
			Format:  tar.FormatPAX,
		}

		switch {
		case d.IsDir():
			hdr.Typeflag = tar.TypeDir
			hdr.Name += "/"
			return tw.WriteHeader(hdr)
		case info.Mode().IsRegular():
			hdr.Typeflag = tar.TypeReg
			hdr.Size = info.Size()
			if err := tw.WriteHeader(hdr); err != nil {
				return err
			}
			if err := copyInto(tw, path); err != nil {
				return err
			}
			count++
			return nil
		default:
			slog.Warn("skipping non-regular file", "path", path, "mode", info.Mode().String())
			return nil
		}
	})
	if err != nil {
		return 0, err
	}

	if err := tw.Close(); err != nil {
		return 0, err
	}
	if err := xw.Close(); err != nil {
		return 0, err
	}
	return count, nil
}

func copyInto(w io.Writer, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	_, err = io.Copy(w, f)
	return err
}

// SourceDate returns the timestamp recorded in reproducible outputs: the value of
// SOURCE_DATE_EPOCH when set and valid, otherwise the Unix epoch.
func SourceDate() time.Time {
	if v := os.Getenv(EnvSourceDateEpoch); v != "" {
		if sec, err := strconv.ParseInt(v, 10, 64); err == nil {
			return time.Unix(sec, 0).UTC()
		}
		slog.Warn("ignoring invalid SOURCE_DATE_EPOCH", "value", v)
	}
	return time.Unix(0, 0).UTC()
}

// Extract unpacks a .tar.xz archive into dst and returns the number of files written.
func Extract(ctx context.Context, src, dst string) (int, error) {
	f, err := os.Open(src)
	if err != nil {
		return 0, errors.Wrap(errors.ErrCodeNotFound, "failed to open archive", err)
	}
	defer f.Close()

	xr, err := xz.NewReader(f)
	if err != nil {
		return 0, errors.Wrap(errors.ErrCodeInvalidRequest, "invalid xz stream", err)
	}
	tr := tar.NewReader(xr)

	root, err := filepath.Abs(dst)
	if err != nil {
		return 0, errors.Wrap(errors.ErrCodeInvalidRequest, "invalid destination", err)
	}

	count := 0
	for {
		if err := ctx.Err(); err != nil {
			return count, errors.Wrap(errors.ErrCodeInternal, "extraction canceled", err)
		}

		hdr, err := tr.Next()
		if err == io.EOF {
			return count, nil
		}
		if err != nil {
			return count, errors.Wrap(errors.ErrCodeInvalidRequest, "invalid tar stream", err)
		}

		target := filepath.Join(root, filepath.FromSlash(hdr.Name))
		if target != root && !strings.HasPrefix(target, root+string(os.PathSeparator)) {
			return count, errors.NewWithContext(errors.ErrCodeInvalidRequest,
				fmt.Sprintf("archive entry %q escapes destination", hdr.Name),
				map[string]any{"entry": hdr.Name})
		}

		switch hdr.Typeflag {
		case tar.TypeDir:
			if err := os.MkdirAll(target, 0o755); err != nil {
				return count, errors.Wrap(errors.ErrCodeInternal, "failed to create directory", err)
			}
		case tar.TypeReg:
			if err := extractFile(tr, target, os.FileMode(hdr.Mode).Perm()); err != nil {
				return count, errors.Wrap(errors.ErrCodeInternal, fmt.Sprintf("failed to extract %s", hdr.Name), err)
			}
			count++
		default:
			slog.Debug("skipping archive entry", "name", hdr.Name, "type", hdr.Typeflag)
		}
	}
}

func extractFile(r io.Reader, target string, mode os.FileMode) error {
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return err
	}
	out, err := os.OpenFile(target, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, mode)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, r); err != nil { //nolint:gosec // archives are produced by Create
		out.Close()
		return err
	}
	return out.Close()
}
