/*
Copyright © 2025 NVIDIA Corporation
SPDX-License-Identifier: Apache-2.0
*/

package cli

import (
	"fmt"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/NVIDIA/cpr-recipe/pkg/option"
	"github.com/NVIDIA/cpr-recipe/pkg/serializer"
)

const (
	defaultSourceDir  = "source"
	defaultBuildDir   = "build"
	defaultPackageDir = "package"
)

// Flag names.
const (
	flagLogLevel     = "log-level"
	flagRecipe       = "recipe"
	flagRegistryDir  = "registry-dir"
	flagOption       = "option"
	flagSetting      = "setting"
	flagOutput       = "output"
	flagFormat       = "format"
	flagSourceDir    = "source"
	flagBuildDir     = "build"
	flagPackageDir   = "package-dir"
	flagAllowMissing = "allow-missing"
	flagArchive      = "archive"
	flagPush         = "push"
	flagPlainHTTP    = "plain-http"
	flagInsecureTLS  = "insecure-tls"
	flagMetricsFile  = "metrics-file"
)

func logLevelFlag() cli.Flag {
	return &cli.StringFlag{
		Name:    flagLogLevel,
		Value:   "info",
		Usage:   "Log level (debug, info, warn, error)",
		Sources: cli.EnvVars("LOG_LEVEL"),
	}
}

func recipeFlag() cli.Flag {
	return &cli.StringFlag{
		Name:    flagRecipe,
		Aliases: []string{"r"},
		Usage:   "Path to a recipe file (default: embedded cpr recipe)",
	}
}

func registryDirFlag() cli.Flag {
	return &cli.StringFlag{
		Name:  flagRegistryDir,
		Usage: "Directory of system library TOML entries (default: embedded registry)",
	}
}

func optionFlag() cli.Flag {
	return &cli.StringSliceFlag{
		Name:    flagOption,
		Aliases: []string{"o"},
		Usage: fmt.Sprintf("Build option override as key=value, can be repeated (keys: %s)",
			strings.Join(optionKeys(), ", ")),
	}
}

func settingFlag() cli.Flag {
	return &cli.StringSliceFlag{
		Name:    flagSetting,
		Aliases: []string{"s"},
		Usage: fmt.Sprintf("Build setting as key=value, can be repeated (build_type: %s)",
			strings.Join(option.SupportedBuildTypes(), ", ")),
	}
}

func outputFlag() cli.Flag {
	return &cli.StringFlag{
		Name:  flagOutput,
		Usage: "Output file path (default: stdout)",
	}
}

func formatFlag() cli.Flag {
	return &cli.StringFlag{
		Name:    flagFormat,
		Aliases: []string{"t"},
		Value:   string(serializer.FormatYAML),
		Usage:   fmt.Sprintf("Output format (supported: %s)", strings.Join(serializer.SupportedFormats(), ", ")),
	}
}

func sourceDirFlag() cli.Flag {
	return &cli.StringFlag{
		Name:  flagSourceDir,
		Value: defaultSourceDir,
		Usage: "Source tree directory",
	}
}

func buildDirFlag() cli.Flag {
	return &cli.StringFlag{
		Name:  flagBuildDir,
		Value: defaultBuildDir,
		Usage: "Build tree directory",
	}
}

func packageDirFlag() cli.Flag {
	return &cli.StringFlag{
		Name:  flagPackageDir,
		Value: defaultPackageDir,
		Usage: "Package directory receiving headers, libraries and package.yaml",
	}
}

func allowMissingFlag() cli.Flag {
	return &cli.BoolFlag{
		Name:  flagAllowMissing,
		Usage: "Warn instead of failing when a copy rule matches no files",
	}
}

func archiveFlag() cli.Flag {
	return &cli.StringFlag{
		Name:  flagArchive,
		Usage: "Directory to write a reproducible .tar.xz of the package to",
	}
}

func pushFlag() cli.Flag {
	return &cli.StringFlag{
		Name:  flagPush,
		Usage: "Package as an OCI artifact and push it (format: oci://registry/repository[:tag], tag defaults to the recipe version)",
	}
}

func plainHTTPFlag() cli.Flag {
	return &cli.BoolFlag{
		Name:  flagPlainHTTP,
		Usage: "Use HTTP instead of HTTPS for the OCI registry (for local development)",
	}
}

func insecureTLSFlag() cli.Flag {
	return &cli.BoolFlag{
		Name:  flagInsecureTLS,
		Usage: "Skip TLS certificate verification for the OCI registry",
	}
}

func metricsFileFlag() cli.Flag {
	return &cli.StringFlag{
		Name:  flagMetricsFile,
		Usage: "Write Prometheus metrics for the run to this file (textfile collector format)",
	}
}

// optionKeys lists the keys accepted by --option.
func optionKeys() []string {
	keys := make([]string, 0, len(option.Keys()))
	for _, k := range option.Keys() {
		if k != option.KeyBuildType {
			keys = append(keys, k)
		}
	}
	return keys
}

func pathFlags() []cli.Flag {
	return []cli.Flag{sourceDirFlag(), buildDirFlag(), packageDirFlag()}
}

func publishFlags() []cli.Flag {
	return []cli.Flag{archiveFlag(), pushFlag(), plainHTTPFlag(), insecureTLSFlag(), metricsFileFlag()}
}
