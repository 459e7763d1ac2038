/*
Copyright © 2025 NVIDIA Corporation
SPDX-License-Identifier: Apache-2.0
*/

package builder

import (
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"slices"

	"github.com/NVIDIA/cpr-recipe/pkg/cmake"
	"github.com/NVIDIA/cpr-recipe/pkg/defaults"
	"github.com/NVIDIA/cpr-recipe/pkg/errors"
	"github.com/NVIDIA/cpr-recipe/pkg/option"
	"github.com/NVIDIA/cpr-recipe/pkg/packager"
	"github.com/NVIDIA/cpr-recipe/pkg/resolver"
	"github.com/NVIDIA/cpr-recipe/pkg/serializer"
	"github.com/NVIDIA/cpr-recipe/pkg/server"
)

// Query parameters of GET /v1/command that name directories rather than options.
const (
	QuerySourceDir = "source"
	QueryBuildDir  = "build"
)

// DependenciesOutput is the resolved requirement set for a configuration.
type DependenciesOutput struct {
	Options  map[string]string          `json:"options" yaml:"options"`
	Requires []resolver.RequiredPackage `json:"requires" yaml:"requires"`
}

// CommandOutput is a rendered build tool invocation.
type CommandOutput struct {
	Configure []string `json:"configure" yaml:"configure"`
	Build     []string `json:"build" yaml:"build"`
	Shell     string   `json:"shell" yaml:"shell"`
}

// NewCommandOutput converts an invocation into its serializable form.
func NewCommandOutput(inv *cmake.Invocation) CommandOutput {
	return CommandOutput{
		Configure: inv.Configure,
		Build:     inv.Build,
		Shell:     inv.String(),
	}
}

// HandleDependencies serves GET /v1/deps. Query parameters are option
// overrides, e.g. ?ssl_backend=none&build_tests=true.
func (b *Builder) HandleDependencies(w http.ResponseWriter, r *http.Request) {
	cfg, ok := b.configFromRequest(w, r)
	if !ok {
		return
	}

	deps, err := b.Dependencies(cfg)
	if err != nil {
		server.WriteErrorFromErr(w, r, err, "Failed to resolve dependencies", nil)
		return
	}

	respond(w, DependenciesOutput{Options: cfg.Map(), Requires: deps})
}

// HandleCommand serves GET /v1/command. Besides option overrides it accepts
// "source" and "build" directories, defaulting to the CLI defaults.
func (b *Builder) HandleCommand(w http.ResponseWriter, r *http.Request) {
	cfg, ok := b.configFromRequest(w, r, QuerySourceDir, QueryBuildDir)
	if !ok {
		return
	}

	q := r.URL.Query()
	paths := packager.Paths{
		Source: queryOrDefault(q, QuerySourceDir, "source"),
		Build:  queryOrDefault(q, QueryBuildDir, "build"),
	}

	inv, err := b.Command(cfg, paths)
	if err != nil {
		server.WriteErrorFromErr(w, r, err, "Failed to render build command", nil)
		return
	}

	respond(w, NewCommandOutput(inv))
}

// HandleInfo serves GET /v1/info with the package descriptor for the
// configuration in the query.
func (b *Builder) HandleInfo(w http.ResponseWriter, r *http.Request) {
	cfg, ok := b.configFromRequest(w, r)
	if !ok {
		return
	}

	d, err := b.Describe(cfg)
	if err != nil {
		server.WriteErrorFromErr(w, r, err, "Failed to describe package", nil)
		return
	}

	respond(w, d)
}

// configFromRequest enforces GET and resolves the configuration from the
// query string, skipping the reserved parameters. It writes the error
// response itself and reports whether the handler should continue.
func (b *Builder) configFromRequest(w http.ResponseWriter, r *http.Request, reserved ...string) (*option.Config, bool) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", http.MethodGet)
		server.WriteError(w, r, http.StatusMethodNotAllowed, errors.ErrCodeMethodNotAllowed,
			"Method not allowed", false, map[string]any{
				"method":  r.Method,
				"allowed": []string{http.MethodGet},
			})
		return nil, false
	}

	values := map[string]string{}
	for key, v := range r.URL.Query() {
		if slices.Contains(reserved, key) || len(v) == 0 {
			continue
		}
		values[key] = v[len(v)-1]
	}

	opts, err := option.FromMap(values)
	if err != nil {
		server.WriteErrorFromErr(w, r, err, "Invalid build configuration", nil)
		return nil, false
	}

	cfg, err := b.Config(opts...)
	if err != nil {
		server.WriteErrorFromErr(w, r, err, "Invalid build configuration", nil)
		return nil, false
	}

	slog.Debug("api configuration", "path", r.URL.Path, "config", cfg.Canonical())
	return cfg, true
}

func respond(w http.ResponseWriter, v any) {
	w.Header().Set("Cache-Control", fmt.Sprintf("public, max-age=%d", int(defaults.APICacheTTL.Seconds())))
	serializer.RespondJSON(w, http.StatusOK, v)
}

func queryOrDefault(q url.Values, key, def string) string {
	if v := q.Get(key); v != "" {
		return v
	}
	return def
}
