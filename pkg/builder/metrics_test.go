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

package builder

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/NVIDIA/cpr-recipe/pkg/errors"
	"github.com/NVIDIA/cpr-recipe/pkg/option"
)

func TestStatus(t *testing.T) {
	assert.Equal(t, statusSuccess, status(nil))
	assert.Equal(t, statusBuildFailure, status(errors.New(errors.ErrCodeBuildFailure, "exit 1")))
	assert.Equal(t, statusArtifactMissing, status(errors.New(errors.ErrCodeArtifactMissing, "no libs")))
	assert.Equal(t, statusError, status(errors.New(errors.ErrCodeInternal, "boom")))
}

func TestWriteMetrics(t *testing.T) {
	paths := dirs(t)
	writeSources(t, paths.Source)
	_, err := newBuilder(t, &fakeBuild{libs: []string{"libcpr.a"}}).Make(context.Background(), option.NewConfig(), paths)
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "cprpkg.prom")
	require.NoError(t, WriteMetrics(path))

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	text := string(content)
	assert.Contains(t, text, `cprpkg_builds_total{status="success"}`)
	assert.Contains(t, text, "cprpkg_build_duration_seconds_bucket")
	assert.Contains(t, text, `cprpkg_stage_duration_seconds_count{stage="build"}`)
	assert.Contains(t, text, "cprpkg_packaged_files_total")
}

func TestWriteMetricsInvalidPath(t *testing.T) {
	err := WriteMetrics(filepath.Join(t.TempDir(), "missing", "cprpkg.prom"))
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrCodeInternal))
}
