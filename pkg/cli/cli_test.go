/*
Copyright © 2025 NVIDIA Corporation
SPDX-License-Identifier: Apache-2.0
*/

package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v3"
	"gopkg.in/yaml.v3"

	"github.com/NVIDIA/cpr-recipe/pkg/builder"
	"github.com/NVIDIA/cpr-recipe/pkg/descriptor"
	"github.com/NVIDIA/cpr-recipe/pkg/errors"
	"github.com/NVIDIA/cpr-recipe/pkg/resolver"
	"github.com/NVIDIA/cpr-recipe/pkg/serializer"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var buf bytes.Buffer
	root := newRootCmd()
	root.Writer = &buf
	root.ErrWriter = &bytes.Buffer{}
	err := root.Run(context.Background(), append([]string{name, "--log-level", "error"}, args...))
	return buf.String(), err
}

func hasName(flag cli.Flag, name string) bool {
	for _, n := range flag.Names() {
		if n == name {
			return true
		}
	}
	return false
}

func TestRootCmd_CommandStructure(t *testing.T) {
	root := newRootCmd()

	want := []string{"deps", "command", "create", "package", "info", "serve"}
	var got []string
	for _, c := range root.Commands {
		got = append(got, c.Name)
		assert.NotEmpty(t, c.Usage, "%s usage", c.Name)
		assert.NotEmpty(t, c.Description, "%s description", c.Name)
		assert.NotNil(t, c.Action, "%s action", c.Name)
	}
	assert.Equal(t, want, got)

	for _, flagName := range []string{"log-level", "recipe", "registry-dir", "option", "o", "setting", "s"} {
		found := false
		for _, f := range root.Flags {
			if hasName(f, flagName) {
				found = true
				break
			}
		}
		assert.True(t, found, "global flag %q not found", flagName)
	}
}

func TestServeCmd_InvalidPort(t *testing.T) {
	_, err := run(t, "serve", "--port", "0")
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrCodeInvalidRequest))
}

func TestCreateCmd_Flags(t *testing.T) {
	cmd := createCmd()
	for _, flagName := range []string{
		"source", "build", "package-dir", "no-fetch", "timeout", "quiet",
		"allow-missing", "output", "format", "archive", "push", "plain-http",
		"insecure-tls", "metrics-file",
	} {
		found := false
		for _, f := range cmd.Flags {
			if hasName(f, flagName) {
				found = true
				break
			}
		}
		assert.True(t, found, "create flag %q not found", flagName)
	}
}

func TestParseOutputFormat(t *testing.T) {
	tests := []struct {
		name       string
		format     string
		wantFormat serializer.Format
		wantErr    bool
	}{
		{"yaml", "yaml", serializer.FormatYAML, false},
		{"json", "json", serializer.FormatJSON, false},
		{"table", "table", serializer.FormatTable, false},
		{"upper case", "JSON", serializer.FormatJSON, false},
		{"xml", "xml", "", true},
		{"empty", "", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd := &cli.Command{
				Flags: []cli.Flag{
					&cli.StringFlag{Name: flagFormat, Value: tt.format},
				},
				Action: func(_ context.Context, c *cli.Command) error {
					got, err := parseOutputFormat(c)
					if (err != nil) != tt.wantErr {
						t.Errorf("parseOutputFormat() error = %v, wantErr %v", err, tt.wantErr)
						return nil
					}
					if !tt.wantErr && got != tt.wantFormat {
						t.Errorf("parseOutputFormat() = %v, want %v", got, tt.wantFormat)
					}
					return nil
				},
			}
			require.NoError(t, cmd.Run(context.Background(), []string{"test"}))
		})
	}
}

func TestParseOverrides(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		wantErr bool
	}{
		{"none", nil, false},
		{"options", []string{"-o", "linkage=shared", "--option", "ssl_backend=none"}, false},
		{"legacy option", []string{"-o", "use_openssl=False"}, false},
		{"setting", []string{"-s", "build_type=Debug"}, false},
		{"build type as option", []string{"-o", "build_type=Debug"}, true},
		{"unknown setting", []string{"-s", "compiler=gcc"}, true},
		{"unknown option", []string{"-o", "with_http2=true"}, true},
		{"malformed option", []string{"-o", "linkage"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var parseErr error
			cmd := &cli.Command{
				Flags: []cli.Flag{optionFlag(), settingFlag()},
				Action: func(_ context.Context, c *cli.Command) error {
					_, parseErr = parseOverrides(c)
					return nil
				},
			}
			require.NoError(t, cmd.Run(context.Background(), append([]string{"test"}, tt.args...)))
			if (parseErr != nil) != tt.wantErr {
				t.Errorf("parseOverrides() error = %v, wantErr %v", parseErr, tt.wantErr)
			}
		})
	}
}

func TestExitCode(t *testing.T) {
	assert.Equal(t, 0, exitCode(nil))
	assert.Equal(t, 1, exitCode(errors.New(errors.ErrCodeInvalidRequest, "bad")))
	assert.Equal(t, 2, exitCode(errors.NewWithContext(errors.ErrCodeBuildFailure, "cmake failed",
		map[string]any{errors.ContextKeyExitCode: 2})))
	assert.Equal(t, 1, exitCode(errors.NewWithContext(errors.ErrCodeBuildFailure, "killed",
		map[string]any{errors.ContextKeyExitCode: -1})))
	assert.Equal(t, 1, exitCode(errors.New(errors.ErrCodeArtifactMissing, "no libs")))
}

func TestDepsCmd(t *testing.T) {
	out, err := run(t, "deps", "--format", "json")
	require.NoError(t, err)

	var deps []resolver.RequiredPackage
	require.NoError(t, json.Unmarshal([]byte(out), &deps))
	require.Len(t, deps, 2)
	assert.Equal(t, "libcurl", deps[0].Name)
	assert.Equal(t, "True", deps[0].Options["with_openssl"])
	assert.Equal(t, "openssl", deps[1].Name)

	out, err = run(t, "deps", "-o", "ssl_backend=none", "-o", "build_tests=true", "--format", "json")
	require.NoError(t, err)
	deps = nil
	require.NoError(t, json.Unmarshal([]byte(out), &deps))
	require.Len(t, deps, 2)
	assert.Equal(t, "gtest", deps[0].Name)
	assert.Equal(t, "False", deps[0].Options["shared"])
	assert.Equal(t, "libcurl", deps[1].Name)
	assert.Equal(t, "False", deps[1].Options["with_openssl"])
}

func TestDepsCmdInvalidOption(t *testing.T) {
	_, err := run(t, "deps", "-o", "linkage=dynamic")
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrCodeInvalidRequest))
}

func TestCommandCmdShell(t *testing.T) {
	out, err := run(t, "command", "--shell", "--source", "/src/cpr", "--build", "/build/cpr", "-o", "ssl_backend=none")
	require.NoError(t, err)

	line := strings.TrimSpace(out)
	assert.True(t, strings.HasPrefix(line, "cmake -S /src/cpr -B /build/cpr -DCMAKE_BUILD_TYPE=Release"), line)
	assert.Contains(t, line, "-DCMAKE_USE_OPENSSL=OFF")
	assert.NotContains(t, line, "-DCMAKE_USE_OPENSSL=ON")
	assert.True(t, strings.HasSuffix(line, "&& cmake --build /build/cpr --config Release"), line)
}

func TestCommandCmdStructured(t *testing.T) {
	out, err := run(t, "command", "-s", "build_type=Debug", "--format", "yaml")
	require.NoError(t, err)

	var got builder.CommandOutput
	require.NoError(t, yaml.Unmarshal([]byte(out), &got))
	assert.Equal(t, "cmake", got.Configure[0])
	assert.Contains(t, got.Configure, "-DCMAKE_BUILD_TYPE=Debug")
	assert.Equal(t, []string{"cmake", "--build", defaultBuildDir, "--config", "Debug"}, got.Build)
}

func TestInfoCmd(t *testing.T) {
	out, err := run(t, "info", "-o", "use_system_curl=true", "--format", "yaml")
	require.NoError(t, err)

	var d descriptor.Descriptor
	require.NoError(t, yaml.Unmarshal([]byte(out), &d))
	assert.Equal(t, "cpr", d.Name)
	assert.Equal(t, []string{"cpr"}, d.Libs)
	assert.Equal(t, []string{"curl"}, d.SystemLibs)
	assert.NotContains(t, d.Requires, "libcurl/7.56.1")
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestPackageCmd(t *testing.T) {
	base := t.TempDir()
	src := filepath.Join(base, "src")
	build := filepath.Join(base, "build")
	pkg := filepath.Join(base, "pkg")
	dist := filepath.Join(base, "dist")
	metrics := filepath.Join(base, "cprpkg.prom")
	writeFile(t, filepath.Join(src, "include", "cpr", "cpr.h"), "#pragma once\n")
	writeFile(t, filepath.Join(build, "lib", "libcpr.a"), "!<arch>\n")

	out, err := run(t, "package",
		"--source", src, "--build", build, "--package-dir", pkg,
		"--archive", dist, "--metrics-file", metrics, "--format", "json")
	require.NoError(t, err)

	var rep struct {
		Recipe     string `json:"recipe"`
		TotalFiles int    `json:"total_files"`
		Archive    *struct {
			Path string `json:"path"`
		} `json:"archive"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &rep))
	assert.Equal(t, "cpr/1.2.0", rep.Recipe)
	assert.Equal(t, 2, rep.TotalFiles)
	require.NotNil(t, rep.Archive)
	assert.FileExists(t, rep.Archive.Path)
	assert.FileExists(t, metrics)

	d, err := descriptor.Read(pkg)
	require.NoError(t, err)
	assert.Equal(t, []string{"include/cpr"}, d.IncludeDirs)

	out, err = run(t, "info", "--from", pkg, "--format", "json")
	require.NoError(t, err)
	assert.Contains(t, out, d.PackageID)
}

func TestPackageCmdMissingArtifacts(t *testing.T) {
	base := t.TempDir()
	src := filepath.Join(base, "src")
	writeFile(t, filepath.Join(src, "include", "cpr", "cpr.h"), "#pragma once\n")

	args := []string{"package", "--source", src, "--build", filepath.Join(base, "build"), "--package-dir", filepath.Join(base, "pkg")}

	_, err := run(t, args...)
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrCodeArtifactMissing))

	_, err = run(t, append(args, "--allow-missing")...)
	require.NoError(t, err)
}

func TestPackageCmdInvalidPushTarget(t *testing.T) {
	base := t.TempDir()
	_, err := run(t, "package",
		"--source", base, "--build", base, "--package-dir", filepath.Join(base, "pkg"),
		"--push", "ghcr.io/nvidia/cpr:1.2.0")
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrCodeInvalidRequest))
	assert.NoDirExists(t, filepath.Join(base, "pkg"))
}
