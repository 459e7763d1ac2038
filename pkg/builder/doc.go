// Package builder orchestrates a complete recipe build.
//
// A Builder combines the recipe, the dependency resolver, the CMake renderer,
// the executor and the packager into one forward pass:
//
//	b, err := builder.New(builder.WithVersion(version))
//	cfg, err := b.Config(option.WithLinkage(option.LinkageShared))
//	out, err := b.Make(ctx, cfg, packager.Paths{
//	    Source:  "./src",
//	    Build:   "./build",
//	    Package: "./package",
//	})
//	fmt.Println(out.Summary())
//
// Make stops at the first failing stage. A BUILD_FAILURE from the build tool
// means no artifacts are collected and no descriptor is written. Package
// skips the build tool and collects from an existing build tree.
//
// Runs are instrumented with Prometheus metrics (prefix cprpkg_). WriteMetrics
// dumps them in text format for the node exporter textfile collector.
package builder
