/*
Copyright © 2025 NVIDIA Corporation
SPDX-License-Identifier: Apache-2.0
*/

// Package registry maps system libraries to their link names and to the
// package names used by each platform package manager.
//
// Entries are TOML documents named <library>.toml:
//
//	name = "curl"
//	libs = ["curl"]
//
//	[backends]
//	apt = "libcurl4-openssl-dev"
//	dnf = "libcurl-devel"
//
// A registry for curl and openssl is embedded; New accepts any fs.FS so a
// directory of entries can replace it.
package registry
