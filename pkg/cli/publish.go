/*
Copyright © 2025 NVIDIA Corporation
SPDX-License-Identifier: Apache-2.0
*/

package cli

import (
	"context"
	"log/slog"
	"path/filepath"

	ociv1 "github.com/opencontainers/image-spec/specs-go/v1"
	"github.com/urfave/cli/v3"

	"github.com/NVIDIA/cpr-recipe/pkg/archive"
	"github.com/NVIDIA/cpr-recipe/pkg/builder"
	"github.com/NVIDIA/cpr-recipe/pkg/defaults"
	"github.com/NVIDIA/cpr-recipe/pkg/oci"
)

// annotationPackageID carries the descriptor package id on OCI manifests.
const annotationPackageID = "com.nvidia.cprpkg.package-id"

// report is the printed result of create and package.
type report struct {
	builder.Output `json:",inline" yaml:",inline"`

	Archive  *archive.Result    `json:"archive,omitempty" yaml:"archive,omitempty"`
	Artifact *oci.PackageResult `json:"artifact,omitempty" yaml:"artifact,omitempty"`
	Pushed   *oci.PushResult    `json:"pushed,omitempty" yaml:"pushed,omitempty"`
}

// publishOptions are the parsed --archive and --push flags.
type publishOptions struct {
	archiveDir  string
	push        *oci.Reference
	plainHTTP   bool
	insecureTLS bool
	metricsFile string
}

// parsePublishOptions validates publish flags before any work is done.
func parsePublishOptions(cmd *cli.Command) (*publishOptions, error) {
	opts := &publishOptions{
		archiveDir:  cmd.String(flagArchive),
		plainHTTP:   cmd.Bool(flagPlainHTTP),
		insecureTLS: cmd.Bool(flagInsecureTLS),
		metricsFile: cmd.String(flagMetricsFile),
	}
	if target := cmd.String(flagPush); target != "" {
		ref, err := oci.ParseReference(target)
		if err != nil {
			return nil, err
		}
		opts.push = ref
	}
	return opts, nil
}

// writeMetrics dumps run metrics when --metrics-file is set.
func (p *publishOptions) writeMetrics() {
	if p.metricsFile == "" {
		return
	}
	if err := builder.WriteMetrics(p.metricsFile); err != nil {
		slog.Warn("failed to write metrics", "error", err)
	}
}

// publish archives and pushes a completed package as requested.
func (p *publishOptions) publish(ctx context.Context, out *builder.Output) (*report, error) {
	rep := &report{Output: *out}
	d := out.Descriptor

	if p.archiveDir != "" {
		dst := filepath.Join(p.archiveDir, archive.FileName(d.Name, d.Version, d.PackageID))
		res, err := archive.Create(ctx, out.Paths.Package, dst)
		if err != nil {
			return nil, err
		}
		slog.Info("package archived", "path", res.Path, "sha256", res.SHA256)
		rep.Archive = res
	}

	if p.push != nil {
		ref := p.push
		if ref.Tag == "" {
			ref = ref.WithTag(d.Version)
		}

		pkg, err := oci.Package(ctx, oci.PackageOptions{
			SourceDir: out.Paths.Package,
			OutputDir: out.Paths.Build,
			Tag:       ref.Tag,
			Annotations: map[string]string{
				ociv1.AnnotationTitle:   d.Name,
				ociv1.AnnotationVersion: d.Version,
				ociv1.AnnotationVendor:  "NVIDIA",
				annotationPackageID:     d.PackageID,
			},
		})
		if err != nil {
			return nil, err
		}
		rep.Artifact = pkg

		pushCtx, cancel := context.WithTimeout(ctx, defaults.OCIPushTimeout)
		defer cancel()

		slog.Info("pushing package", "reference", ref.ImageReference())
		pushed, err := oci.PushFromStore(pushCtx, pkg.StorePath, oci.PushOptions{
			Reference:   ref,
			PlainHTTP:   p.plainHTTP,
			InsecureTLS: p.insecureTLS,
		})
		if err != nil {
			return nil, err
		}
		slog.Info("package pushed", "reference", pushed.Reference, "digest", pushed.Digest)
		rep.Pushed = pushed
	}

	return rep, nil
}
