// Package oci publishes package directories as OCI artifacts.
//
// Package wraps a package directory as a single reproducible layer, packs an
// OCI 1.1 manifest with ArtifactType and stores it in a local OCI image
// layout. PushFromStore copies a tagged artifact from that layout to a
// remote registry. Both use ORAS.
//
//	ref, err := oci.ParseReference("oci://ghcr.io/nvidia/cpr:1.2.0")
//	if err != nil {
//	    return err
//	}
//	pkg, err := oci.Package(ctx, oci.PackageOptions{
//	    SourceDir: "./package",
//	    OutputDir: "./out",
//	    Tag:       ref.Tag,
//	})
//	if err != nil {
//	    return err
//	}
//	res, err := oci.PushFromStore(ctx, pkg.StorePath, oci.PushOptions{Reference: ref})
//
// # Authentication
//
// Credentials come from the Docker configuration (~/.docker/config.json)
// through the ORAS credentials package. PlainHTTP targets local development
// registries; InsecureTLS skips certificate verification.
//
// # Artifact Type
//
// Artifacts carry the media type "application/vnd.nvidia.cprpkg.package" and
// are not runnable container images. The manifest created annotation follows
// SOURCE_DATE_EPOCH so identical package directories yield identical digests.
package oci
