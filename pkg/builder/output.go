/*
Copyright © 2025 NVIDIA Corporation
SPDX-License-Identifier: Apache-2.0
*/

package builder

import (
	"fmt"
	"time"

	"github.com/NVIDIA/cpr-recipe/pkg/descriptor"
	"github.com/NVIDIA/cpr-recipe/pkg/packager"
	"github.com/NVIDIA/cpr-recipe/pkg/source"
)

// Stage names recorded in Output.Steps.
const (
	StageFetch     = "fetch"
	StageResolve   = "resolve"
	StageRender    = "render"
	StageConfigure = "configure"
	StageBuild     = "build"
	StageCollect   = "collect"
	StageDescribe  = "describe"
)

// Step records one pipeline stage.
type Step struct {
	Name     string        `json:"name" yaml:"name"`
	Success  bool          `json:"success" yaml:"success"`
	Duration time.Duration `json:"duration" yaml:"duration"`
	Detail   string        `json:"detail,omitempty" yaml:"detail,omitempty"`
}

// Output summarizes a build and package run.
type Output struct {
	BuildID string `json:"build_id" yaml:"build_id"`

	// Recipe is the name/version reference of the packaged library.
	Recipe string `json:"recipe" yaml:"recipe"`

	Options map[string]string `json:"options" yaml:"options"`

	Paths packager.Paths `json:"paths" yaml:"paths"`

	// Source is set when the source tree was fetched or checked.
	Source *source.Result `json:"source,omitempty" yaml:"source,omitempty"`

	Requires []string `json:"requires" yaml:"requires"`

	// Command is the rendered build tool invocation.
	Command string `json:"command,omitempty" yaml:"command,omitempty"`

	Steps []Step `json:"steps" yaml:"steps"`

	TotalFiles int   `json:"total_files" yaml:"total_files"`
	TotalSize  int64 `json:"total_size_bytes" yaml:"total_size_bytes"`

	Rules []packager.RuleResult `json:"rules,omitempty" yaml:"rules,omitempty"`

	Descriptor     *descriptor.Descriptor `json:"descriptor" yaml:"descriptor"`
	DescriptorPath string                 `json:"descriptor_path" yaml:"descriptor_path"`

	TotalDuration time.Duration `json:"total_duration" yaml:"total_duration"`
}

func (o *Output) record(name string, start time.Time, err error, detail string) {
	d := time.Since(start)
	stageDuration.WithLabelValues(name).Observe(d.Seconds())
	o.Steps = append(o.Steps, Step{
		Name:     name,
		Success:  err == nil,
		Duration: d,
		Detail:   detail,
	})
}

// SuccessCount returns the number of successful steps.
func (o *Output) SuccessCount() int {
	count := 0
	for _, s := range o.Steps {
		if s.Success {
			count++
		}
	}
	return count
}

// Step returns the named step, if it ran.
func (o *Output) Step(name string) (Step, bool) {
	for _, s := range o.Steps {
		if s.Name == name {
			return s, true
		}
	}
	return Step{}, false
}

// Summary returns a human-readable summary of the run.
func (o *Output) Summary() string {
	return fmt.Sprintf(
		"Packaged %s: %d files (%s) in %v. Steps: %d/%d succeeded.",
		o.Recipe,
		o.TotalFiles,
		formatBytes(o.TotalSize),
		o.TotalDuration.Round(time.Millisecond),
		o.SuccessCount(),
		len(o.Steps),
	)
}

// formatBytes formats bytes into human-readable format.
func formatBytes(bytes int64) string {
	const unit = 1024
	if bytes < unit {
		return fmt.Sprintf("%d B", bytes)
	}
	div, exp := int64(unit), 0
	for n := bytes / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(bytes)/float64(div), "KMGTPE"[exp])
}
