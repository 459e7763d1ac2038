/*
Copyright © 2025 NVIDIA Corporation
SPDX-License-Identifier: Apache-2.0
*/

// Package option defines the Build Configuration consumed by the recipe builder.
//
// A Config is immutable once created: every field is private and exposed
// through getters, so the configuration that resolves dependencies is
// guaranteed to be the one that renders the build command.
//
// Recognized options:
//
//	build_tests        bool               build and package the test suite
//	insecure_mode      bool               disable TLS peer verification in curl
//	generate_coverage  bool               instrument the build for coverage
//	ssl_backend        none | openssl     TLS implementation linked into curl
//	linkage            static | shared    library linkage of cpr and vendored deps
//	use_system_curl    bool               link the system libcurl instead of vendoring it
//
// Recognized settings:
//
//	build_type         Release | Debug | RelWithDebInfo | MinSizeRel
//
// Usage:
//
//	opts, err := option.ParseOverrides([]string{"ssl_backend=none", "build_tests=true"})
//	if err != nil {
//	    return err
//	}
//	cfg := option.NewConfig(opts...)
//	if err := cfg.Validate(); err != nil {
//	    return err
//	}
package option
