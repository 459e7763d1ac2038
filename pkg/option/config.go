/*
Copyright © 2025 NVIDIA Corporation
SPDX-License-Identifier: Apache-2.0
*/

package option

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/NVIDIA/cpr-recipe/pkg/errors"
)

// Option keys as they appear in overrides, recipe defaults, and descriptors.
const (
	KeyBuildTests       = "build_tests"
	KeyInsecureMode     = "insecure_mode"
	KeyGenerateCoverage = "generate_coverage"
	KeySSLBackend       = "ssl_backend"
	KeyLinkage          = "linkage"
	KeyUseSystemCurl    = "use_system_curl"
	KeyBuildType        = "build_type"
)

// SSLBackend selects the TLS implementation linked into curl.
type SSLBackend string

const (
	SSLNone    SSLBackend = "none"
	SSLOpenSSL SSLBackend = "openssl"
)

// Linkage selects static or shared libraries.
type Linkage string

const (
	LinkageStatic Linkage = "static"
	LinkageShared Linkage = "shared"
)

// BuildType is the CMake build configuration.
type BuildType string

const (
	BuildTypeRelease        BuildType = "Release"
	BuildTypeDebug          BuildType = "Debug"
	BuildTypeRelWithDebInfo BuildType = "RelWithDebInfo"
	BuildTypeMinSizeRel     BuildType = "MinSizeRel"
)

// Config provides the immutable Build Configuration.
// All fields are read-only after creation; build a new Config to change anything.
type Config struct {
	buildTests       bool
	insecureMode     bool
	generateCoverage bool
	sslBackend       SSLBackend
	linkage          Linkage
	useSystemCurl    bool
	buildType        BuildType
}

// BuildTests returns whether the test suite is built.
func (c *Config) BuildTests() bool {
	return c.buildTests
}

// InsecureMode returns whether curl skips TLS peer verification.
func (c *Config) InsecureMode() bool {
	return c.insecureMode
}

// GenerateCoverage returns whether coverage instrumentation is enabled.
func (c *Config) GenerateCoverage() bool {
	return c.generateCoverage
}

// SSLBackend returns the TLS backend.
func (c *Config) SSLBackend() SSLBackend {
	return c.sslBackend
}

// Linkage returns the library linkage.
func (c *Config) Linkage() Linkage {
	return c.linkage
}

// Shared is shorthand for Linkage() == LinkageShared.
func (c *Config) Shared() bool {
	return c.linkage == LinkageShared
}

// UseSystemCurl returns whether the system libcurl is used instead of a vendored one.
func (c *Config) UseSystemCurl() bool {
	return c.useSystemCurl
}

// BuildType returns the CMake build type.
func (c *Config) BuildType() BuildType {
	return c.buildType
}

// Validate checks that enum options hold supported values.
func (c *Config) Validate() error {
	switch c.sslBackend {
	case SSLNone, SSLOpenSSL:
	default:
		return invalid(KeySSLBackend, string(c.sslBackend), SupportedSSLBackends())
	}

	switch c.linkage {
	case LinkageStatic, LinkageShared:
	default:
		return invalid(KeyLinkage, string(c.linkage), SupportedLinkages())
	}

	switch c.buildType {
	case BuildTypeRelease, BuildTypeDebug, BuildTypeRelWithDebInfo, BuildTypeMinSizeRel:
	default:
		return invalid(KeyBuildType, string(c.buildType), SupportedBuildTypes())
	}

	return nil
}

// Map returns the configuration as key/value strings.
func (c *Config) Map() map[string]string {
	return map[string]string{
		KeyBuildTests:       strconv.FormatBool(c.buildTests),
		KeyInsecureMode:     strconv.FormatBool(c.insecureMode),
		KeyGenerateCoverage: strconv.FormatBool(c.generateCoverage),
		KeySSLBackend:       string(c.sslBackend),
		KeyLinkage:          string(c.linkage),
		KeyUseSystemCurl:    strconv.FormatBool(c.useSystemCurl),
		KeyBuildType:        string(c.buildType),
	}
}

// Canonical returns a stable, sorted "key=value" rendering of the configuration.
func (c *Config) Canonical() string {
	m := c.Map()
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+"="+m[k])
	}
	return strings.Join(parts, ";")
}

// String implements fmt.Stringer.
func (c *Config) String() string {
	return c.Canonical()
}

// Option defines a functional option for configuring a Config.
type Option func(*Config)

// WithBuildTests sets whether the test suite is built.
func WithBuildTests(enabled bool) Option {
	return func(c *Config) {
		c.buildTests = enabled
	}
}

// WithInsecureMode sets whether curl skips TLS peer verification.
func WithInsecureMode(enabled bool) Option {
	return func(c *Config) {
		c.insecureMode = enabled
	}
}

// WithGenerateCoverage sets whether coverage instrumentation is enabled.
func WithGenerateCoverage(enabled bool) Option {
	return func(c *Config) {
		c.generateCoverage = enabled
	}
}

// WithSSLBackend sets the TLS backend.
func WithSSLBackend(backend SSLBackend) Option {
	return func(c *Config) {
		c.sslBackend = backend
	}
}

// WithLinkage sets the library linkage.
func WithLinkage(linkage Linkage) Option {
	return func(c *Config) {
		c.linkage = linkage
	}
}

// WithUseSystemCurl sets whether the system libcurl is used.
func WithUseSystemCurl(enabled bool) Option {
	return func(c *Config) {
		c.useSystemCurl = enabled
	}
}

// WithBuildType sets the CMake build type.
func WithBuildType(bt BuildType) Option {
	return func(c *Config) {
		c.buildType = bt
	}
}

// NewConfig returns a Config with default values, then applies options in order.
func NewConfig(options ...Option) *Config {
	c := &Config{
		buildTests:       false,
		insecureMode:     false,
		generateCoverage: false,
		sslBackend:       SSLOpenSSL,
		linkage:          LinkageStatic,
		useSystemCurl:    false,
		buildType:        BuildTypeRelease,
	}
	for _, opt := range options {
		if opt != nil {
			opt(c)
		}
	}
	return c
}

// SupportedSSLBackends returns the accepted ssl_backend values.
func SupportedSSLBackends() []string {
	return []string{string(SSLNone), string(SSLOpenSSL)}
}

// SupportedLinkages returns the accepted linkage values.
func SupportedLinkages() []string {
	return []string{string(LinkageStatic), string(LinkageShared)}
}

// SupportedBuildTypes returns the accepted build_type values.
func SupportedBuildTypes() []string {
	return []string{
		string(BuildTypeRelease),
		string(BuildTypeDebug),
		string(BuildTypeRelWithDebInfo),
		string(BuildTypeMinSizeRel),
	}
}

// Keys returns every recognized option and setting key, sorted.
func Keys() []string {
	return []string{
		KeyBuildTests,
		KeyBuildType,
		KeyGenerateCoverage,
		KeyInsecureMode,
		KeyLinkage,
		KeySSLBackend,
		KeyUseSystemCurl,
	}
}

func invalid(key, value string, supported []string) error {
	return errors.NewWithContext(errors.ErrCodeInvalidRequest,
		fmt.Sprintf("invalid %s value %q (supported values: %s)", key, value, strings.Join(supported, ", ")),
		map[string]any{"option": key, "value": value})
}
