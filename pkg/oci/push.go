/*
Copyright © 2025 NVIDIA Corporation
SPDX-License-Identifier: Apache-2.0
*/

package oci

import (
	"context"
	"crypto/tls"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"time"

	ociv1 "github.com/opencontainers/image-spec/specs-go/v1"
	oras "oras.land/oras-go/v2"
	"oras.land/oras-go/v2/content/file"
	ocilayout "oras.land/oras-go/v2/content/oci"
	"oras.land/oras-go/v2/registry/remote"
	"oras.land/oras-go/v2/registry/remote/auth"
	"oras.land/oras-go/v2/registry/remote/credentials"
	"oras.land/oras-go/v2/registry/remote/retry"

	"github.com/NVIDIA/cpr-recipe/pkg/archive"
	"github.com/NVIDIA/cpr-recipe/pkg/defaults"
	apperrors "github.com/NVIDIA/cpr-recipe/pkg/errors"
)

// ArtifactType is the media type of packaged cpr artifacts.
const ArtifactType = "application/vnd.nvidia.cprpkg.package"

// StoreDirName is the OCI image layout directory created by Package.
const StoreDirName = "oci-layout"

// PackageOptions configures local OCI packaging.
type PackageOptions struct {
	// SourceDir is the package directory to wrap as a single layer.
	SourceDir string
	// OutputDir receives the OCI image layout in StoreDirName.
	OutputDir string
	// Tag names the manifest inside the layout.
	Tag string
	// Annotations are added to the manifest. The created annotation
	// defaults to archive.SourceDate so digests are reproducible.
	Annotations map[string]string
}

// PackageResult describes a packaged artifact.
type PackageResult struct {
	Digest    string `json:"digest" yaml:"digest"`
	Tag       string `json:"tag" yaml:"tag"`
	StorePath string `json:"storePath" yaml:"storePath"`
}

// PushOptions configures the push of a packaged artifact.
type PushOptions struct {
	Reference   *Reference
	PlainHTTP   bool
	InsecureTLS bool
}

// PushResult contains the result of a successful push.
type PushResult struct {
	Digest    string `json:"digest" yaml:"digest"`
	Reference string `json:"reference" yaml:"reference"`
}

// Package wraps opts.SourceDir as a reproducible gzip layer, packs an OCI 1.1
// manifest with ArtifactType and copies it into a local OCI image layout.
func Package(ctx context.Context, opts PackageOptions) (*PackageResult, error) {
	if opts.Tag == "" {
		return nil, apperrors.New(apperrors.ErrCodeInvalidRequest, "tag is required for OCI packaging")
	}
	if opts.SourceDir == "" || opts.OutputDir == "" {
		return nil, apperrors.New(apperrors.ErrCodeInvalidRequest, "source and output directories are required for OCI packaging")
	}

	absSource, err := filepath.Abs(opts.SourceDir)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrCodeInternal, "failed to resolve source directory", err)
	}
	if info, statErr := os.Stat(absSource); statErr != nil || !info.IsDir() {
		return nil, apperrors.NewWithContext(apperrors.ErrCodeNotFound,
			"package directory not found", map[string]any{"dir": absSource})
	}

	storePath, err := filepath.Abs(filepath.Join(opts.OutputDir, StoreDirName))
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrCodeInternal, "failed to resolve output directory", err)
	}
	store, err := ocilayout.New(storePath)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrCodeInternal, "failed to create OCI layout store", err)
	}

	fs, err := file.New(absSource)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrCodeInternal, "failed to create file store", err)
	}
	defer func() { _ = fs.Close() }()
	fs.TarReproducible = true

	layer, err := fs.Add(ctx, ".", ociv1.MediaTypeImageLayerGzip, absSource)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrCodeInternal, "failed to add package directory to store", err)
	}

	annotations := make(map[string]string, len(opts.Annotations)+1)
	for k, v := range opts.Annotations {
		annotations[k] = v
	}
	if _, ok := annotations[ociv1.AnnotationCreated]; !ok {
		annotations[ociv1.AnnotationCreated] = archive.SourceDate().Format(time.RFC3339)
	}

	manifest, err := oras.PackManifest(ctx, fs, oras.PackManifestVersion1_1, ArtifactType, oras.PackManifestOptions{
		Layers:              []ociv1.Descriptor{layer},
		ManifestAnnotations: annotations,
	})
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrCodeInternal, "failed to pack manifest", err)
	}
	if err := fs.Tag(ctx, manifest, opts.Tag); err != nil {
		return nil, apperrors.Wrap(apperrors.ErrCodeInternal, "failed to tag manifest", err)
	}

	desc, err := oras.Copy(ctx, fs, opts.Tag, store, opts.Tag, oras.DefaultCopyOptions)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrCodeInternal, "failed to copy artifact into OCI layout", err)
	}

	slog.Debug("packaged OCI artifact",
		"digest", desc.Digest.String(),
		"tag", opts.Tag,
		"store", storePath,
	)

	return &PackageResult{
		Digest:    desc.Digest.String(),
		Tag:       opts.Tag,
		StorePath: storePath,
	}, nil
}

// PushFromStore copies the artifact tagged opts.Reference.Tag from the OCI
// layout at storePath to the remote repository.
func PushFromStore(ctx context.Context, storePath string, opts PushOptions) (*PushResult, error) {
	ref := opts.Reference
	if ref == nil {
		return nil, apperrors.New(apperrors.ErrCodeInvalidRequest, "registry reference is required")
	}
	if ref.Tag == "" {
		return nil, apperrors.New(apperrors.ErrCodeInvalidRequest, "tag is required to push OCI artifact")
	}
	if err := ValidateRegistryReference(ref.Registry, ref.Repository); err != nil {
		return nil, err
	}

	store, err := ocilayout.NewWithContext(ctx, storePath)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrCodeInternal, "failed to open OCI layout store", err)
	}

	host := stripProtocol(ref.Registry)
	repo, err := remote.NewRepository(host + "/" + ref.Repository)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrCodeInvalidRequest, "failed to initialize remote repository", err)
	}
	repo.PlainHTTP = opts.PlainHTTP
	repo.Client = createAuthClient(opts.PlainHTTP, opts.InsecureTLS)

	desc, err := oras.Copy(ctx, store, ref.Tag, repo, ref.Tag, oras.DefaultCopyOptions)
	if err != nil {
		return nil, apperrors.WrapWithContext(apperrors.ErrCodeInternal,
			"failed to push artifact to registry", err, map[string]any{"reference": ref.ImageReference()})
	}

	return &PushResult{
		Digest:    desc.Digest.String(),
		Reference: host + "/" + ref.Repository + ":" + ref.Tag,
	}, nil
}

// createAuthClient builds a retrying client that reads Docker credentials.
func createAuthClient(plainHTTP, insecureTLS bool) *auth.Client {
	credStore, err := credentials.NewStoreFromDocker(credentials.StoreOptions{})
	if err != nil {
		slog.Debug("docker credential store unavailable", "error", err)
	}

	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.TLSHandshakeTimeout = defaults.HTTPTLSHandshakeTimeout
	transport.ResponseHeaderTimeout = defaults.HTTPResponseHeaderTimeout
	transport.IdleConnTimeout = defaults.HTTPIdleConnTimeout
	if !plainHTTP && insecureTLS {
		if transport.TLSClientConfig == nil {
			transport.TLSClientConfig = &tls.Config{InsecureSkipVerify: true} //nolint:gosec
		} else {
			transport.TLSClientConfig.InsecureSkipVerify = true //nolint:gosec
		}
	}

	client := &auth.Client{
		Client: &http.Client{Transport: retry.NewTransport(transport)},
		Cache:  auth.NewCache(),
	}
	if credStore != nil {
		client.Credential = credentials.Credential(credStore)
	}
	return client
}
