/*
Copyright © 2025 NVIDIA Corporation
SPDX-License-Identifier: Apache-2.0
*/

package cli

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/NVIDIA/cpr-recipe/pkg/builder"
	"github.com/NVIDIA/cpr-recipe/pkg/errors"
	"github.com/NVIDIA/cpr-recipe/pkg/executor"
	"github.com/NVIDIA/cpr-recipe/pkg/option"
	"github.com/NVIDIA/cpr-recipe/pkg/packager"
	"github.com/NVIDIA/cpr-recipe/pkg/recipe"
	"github.com/NVIDIA/cpr-recipe/pkg/registry"
	"github.com/NVIDIA/cpr-recipe/pkg/serializer"
)

// parseOutputFormat returns the --format value or an error for unknown formats.
func parseOutputFormat(cmd *cli.Command) (serializer.Format, error) {
	f := serializer.Format(strings.ToLower(cmd.String(flagFormat)))
	if f.IsUnknown() {
		return "", fmt.Errorf("unknown output format: %q (supported: %s)",
			f, strings.Join(serializer.SupportedFormats(), ", "))
	}
	return f, nil
}

// loadRecipe returns the --recipe file or the embedded cpr recipe.
func loadRecipe(cmd *cli.Command) (*recipe.Recipe, error) {
	path := cmd.String(flagRecipe)
	if path == "" {
		return recipe.Default()
	}
	slog.Debug("loading recipe", "path", path)
	return recipe.Load(path)
}

// loadRegistry returns the --registry-dir registry or nil for the embedded one.
func loadRegistry(cmd *cli.Command) *registry.Registry {
	if dir := cmd.String(flagRegistryDir); dir != "" {
		return registry.NewFromDir(dir)
	}
	return nil
}

// parseOverrides merges --option and --setting values, settings last.
// Settings only accept build_type.
func parseOverrides(cmd *cli.Command) ([]option.Option, error) {
	options := cmd.StringSlice(flagOption)
	for _, o := range options {
		key, _, _ := strings.Cut(o, "=")
		if strings.EqualFold(strings.TrimSpace(key), option.KeyBuildType) {
			return nil, errors.New(errors.ErrCodeInvalidRequest,
				fmt.Sprintf("%s is a setting, use --setting %s=<value>", option.KeyBuildType, option.KeyBuildType))
		}
	}

	settings := cmd.StringSlice(flagSetting)
	for _, s := range settings {
		key, _, _ := strings.Cut(s, "=")
		if !strings.EqualFold(strings.TrimSpace(key), option.KeyBuildType) {
			return nil, errors.NewWithContext(errors.ErrCodeInvalidRequest,
				fmt.Sprintf("unknown setting %q", key),
				map[string]any{"supported": []string{option.KeyBuildType}})
		}
	}

	return option.ParseOverrides(append(append([]string{}, options...), settings...))
}

// newBuilder creates a builder from the global flags.
func newBuilder(cmd *cli.Command, opts ...builder.Option) (*builder.Builder, error) {
	r, err := loadRecipe(cmd)
	if err != nil {
		return nil, err
	}
	all := append([]builder.Option{
		builder.WithRecipe(r),
		builder.WithRegistry(loadRegistry(cmd)),
		builder.WithVersion(version),
	}, opts...)
	return builder.New(all...)
}

// resolveConfig applies the recipe defaults and the command line overrides.
func resolveConfig(cmd *cli.Command, b *builder.Builder) (*option.Config, error) {
	overrides, err := parseOverrides(cmd)
	if err != nil {
		return nil, err
	}
	return b.Config(overrides...)
}

// pathsFromCmd reads the source, build and package directories.
func pathsFromCmd(cmd *cli.Command) packager.Paths {
	return packager.Paths{
		Source:  cmd.String(flagSourceDir),
		Build:   cmd.String(flagBuildDir),
		Package: cmd.String(flagPackageDir),
	}
}

// writeOutput serializes v to --output (or stdout) in --format.
func writeOutput(ctx context.Context, cmd *cli.Command, v any) error {
	format, err := parseOutputFormat(cmd)
	if err != nil {
		return err
	}

	var ser *serializer.Writer
	if path := cmd.String(flagOutput); path != "" {
		ser = serializer.NewFileWriterOrStdout(format, path)
	} else {
		ser = serializer.NewWriter(format, cmd.Root().Writer)
	}
	defer func() {
		if err := ser.Close(); err != nil {
			slog.Warn("failed to close serializer", "error", err)
		}
	}()

	return ser.Serialize(ctx, v)
}

// buildOutputTail returns the captured build tool output of a build failure.
func buildOutputTail(err error) string {
	if !errors.IsCode(err, errors.ErrCodeBuildFailure) {
		return ""
	}
	return executor.OutputTail(err)
}
