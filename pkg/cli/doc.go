// Package cli implements the cprpkg command-line interface.
//
// # Overview
//
// cprpkg builds and packages cpr (C++ Requests) from a declarative option set.
// Options follow the package manager convention and are passed as -o key=value;
// the build type is a setting passed as -s build_type=<value>.
//
// # Commands
//
// deps - Print the resolved dependency set:
//
//	cprpkg deps [-o ssl_backend=none] [--format yaml|json|table]
//
// command - Print the CMake configure and build invocations:
//
//	cprpkg command [--shell] [--source DIR] [--build DIR]
//
// create - Fetch, build and package:
//
//	cprpkg create [-o linkage=shared] [--archive DIR] [--push oci://registry/repo:tag]
//
// package - Package an existing build tree without running the build tool:
//
//	cprpkg package --source DIR --build DIR [--allow-missing]
//
// info - Print the package descriptor:
//
//	cprpkg info [--from PACKAGE_DIR]
//
// serve - Serve deps, command and info queries over HTTP:
//
//	cprpkg serve [--port 8080] [--rate-limit 100]
//
// # Global Flags
//
//	--log-level     Log level: debug, info, warn, error (env: LOG_LEVEL)
//	--recipe, -r    Recipe file (default: embedded cpr recipe)
//	--registry-dir  System library registry directory (default: embedded)
//	--option, -o    Build option key=value, repeatable
//	--setting, -s   Build setting key=value, repeatable
//	--version, -v   Show version information
//
// # Exit Status
//
// A build tool failure exits with the tool's own status. Every other error
// exits with status 1.
package cli
