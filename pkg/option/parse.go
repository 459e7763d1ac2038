/*
Copyright © 2025 NVIDIA Corporation
SPDX-License-Identifier: Apache-2.0
*/

package option

import (
	"fmt"
	"sort"
	"strings"

	"golang.org/x/text/cases"

	"github.com/NVIDIA/cpr-recipe/pkg/errors"
)

// legacyKeys maps option names used by earlier recipe revisions to current keys.
var legacyKeys = map[string]string{
	"build_cpr_tests": KeyBuildTests,
	"insecure_curl":   KeyInsecureMode,
	"use_openssl":     KeySSLBackend,
	"shared":          KeyLinkage,
}

var fold = cases.Fold()

// ParseOverrides parses "key=value" overrides into options, one per
// override in input order. Keys and values are case-insensitive and
// options apply in order, so the last override of a key wins whatever its
// spelling.
func ParseOverrides(overrides []string) ([]Option, error) {
	opts := make([]Option, 0, len(overrides))
	for _, raw := range overrides {
		key, value, ok := strings.Cut(strings.TrimSpace(raw), "=")
		if !ok {
			return nil, errors.NewWithContext(errors.ErrCodeInvalidRequest,
				fmt.Sprintf("invalid option override %q (expected key=value)", raw),
				map[string]any{"override": raw})
		}
		opt, err := Parse(key, value)
		if err != nil {
			return nil, err
		}
		opts = append(opts, opt)
	}
	return opts, nil
}

// FromMap converts a key/value map (recipe defaults, profile files) into options.
// Keys are applied in sorted order so the result does not depend on map iteration.
func FromMap(values map[string]string) ([]Option, error) {
	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	opts := make([]Option, 0, len(keys))
	for _, key := range keys {
		opt, err := Parse(key, values[key])
		if err != nil {
			return nil, err
		}
		opts = append(opts, opt)
	}
	return opts, nil
}

// Parse converts a single key and value into an Option.
func Parse(key, value string) (Option, error) {
	k := fold.String(strings.TrimSpace(key))
	if current, ok := legacyKeys[k]; ok {
		return parseLegacy(k, current, value)
	}

	v := fold.String(strings.TrimSpace(value))

	switch k {
	case KeyBuildTests:
		b, err := parseBool(k, value)
		return WithBuildTests(b), err
	case KeyInsecureMode:
		b, err := parseBool(k, value)
		return WithInsecureMode(b), err
	case KeyGenerateCoverage:
		b, err := parseBool(k, value)
		return WithGenerateCoverage(b), err
	case KeyUseSystemCurl:
		b, err := parseBool(k, value)
		return WithUseSystemCurl(b), err
	case KeySSLBackend:
		switch SSLBackend(v) {
		case SSLNone, SSLOpenSSL:
			return WithSSLBackend(SSLBackend(v)), nil
		}
		return nil, invalid(k, value, SupportedSSLBackends())
	case KeyLinkage:
		switch Linkage(v) {
		case LinkageStatic, LinkageShared:
			return WithLinkage(Linkage(v)), nil
		}
		return nil, invalid(k, value, SupportedLinkages())
	case KeyBuildType:
		for _, bt := range SupportedBuildTypes() {
			if fold.String(bt) == v {
				return WithBuildType(BuildType(bt)), nil
			}
		}
		return nil, invalid(k, value, SupportedBuildTypes())
	default:
		return nil, errors.NewWithContext(errors.ErrCodeInvalidRequest,
			fmt.Sprintf("unknown option %q (supported options: %s)", key, strings.Join(Keys(), ", ")),
			map[string]any{"option": key})
	}
}

// parseLegacy translates boolean options from earlier recipe revisions.
func parseLegacy(legacy, current, value string) (Option, error) {
	b, err := parseBool(legacy, value)
	if err != nil {
		return nil, err
	}
	switch current {
	case KeySSLBackend:
		if b {
			return WithSSLBackend(SSLOpenSSL), nil
		}
		return WithSSLBackend(SSLNone), nil
	case KeyLinkage:
		if b {
			return WithLinkage(LinkageShared), nil
		}
		return WithLinkage(LinkageStatic), nil
	case KeyBuildTests:
		return WithBuildTests(b), nil
	default:
		return WithInsecureMode(b), nil
	}
}

func parseBool(key, value string) (bool, error) {
	switch fold.String(strings.TrimSpace(value)) {
	case "true", "1", "yes", "on":
		return true, nil
	case "false", "0", "no", "off":
		return false, nil
	default:
		return false, invalid(key, value, []string{"true", "false"})
	}
}
