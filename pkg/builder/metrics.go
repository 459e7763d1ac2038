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
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/NVIDIA/cpr-recipe/pkg/errors"
)

var (
	buildDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "cprpkg_build_duration_seconds",
			Help:    "Time taken by a complete build and package run",
			Buckets: []float64{1, 5, 10, 30, 60, 120, 300, 600, 1800},
		},
	)

	buildsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cprpkg_builds_total",
			Help: "Total number of build and package runs",
		},
		[]string{"status"}, // success, build_failure, artifact_missing, error
	)

	stageDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "cprpkg_stage_duration_seconds",
			Help:    "Time taken by individual pipeline stages",
			Buckets: []float64{0.01, 0.1, 1, 5, 30, 120, 600},
		},
		[]string{"stage"},
	)

	packagedFiles = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "cprpkg_packaged_files_total",
			Help: "Total number of artifacts copied into package directories",
		},
	)
)

const (
	statusSuccess         = "success"
	statusBuildFailure    = "build_failure"
	statusArtifactMissing = "artifact_missing"
	statusError           = "error"
)

func status(err error) string {
	switch {
	case err == nil:
		return statusSuccess
	case errors.IsCode(err, errors.ErrCodeBuildFailure):
		return statusBuildFailure
	case errors.IsCode(err, errors.ErrCodeArtifactMissing):
		return statusArtifactMissing
	default:
		return statusError
	}
}

// WriteMetrics writes every registered metric to path in the Prometheus
// text format, suitable for the node exporter textfile collector.
func WriteMetrics(path string) error {
	if err := prometheus.WriteToTextfile(path, prometheus.DefaultGatherer); err != nil {
		return errors.WrapWithContext(errors.ErrCodeInternal, "failed to write metrics", err,
			map[string]any{"path": path})
	}
	return nil
}
