/*
Copyright © 2025 NVIDIA Corporation
SPDX-License-Identifier: Apache-2.0
*/

package option

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/NVIDIA/cpr-recipe/pkg/errors"
)

func TestNewConfigDefaults(t *testing.T) {
	cfg := NewConfig()

	assert.False(t, cfg.BuildTests())
	assert.False(t, cfg.InsecureMode())
	assert.False(t, cfg.GenerateCoverage())
	assert.Equal(t, SSLOpenSSL, cfg.SSLBackend())
	assert.Equal(t, LinkageStatic, cfg.Linkage())
	assert.False(t, cfg.Shared())
	assert.False(t, cfg.UseSystemCurl())
	assert.Equal(t, BuildTypeRelease, cfg.BuildType())
	assert.NoError(t, cfg.Validate())
}

func TestNewConfigOptionsApplyInOrder(t *testing.T) {
	cfg := NewConfig(
		WithSSLBackend(SSLNone),
		WithLinkage(LinkageShared),
		WithBuildTests(true),
		WithSSLBackend(SSLOpenSSL),
		nil,
	)

	assert.Equal(t, SSLOpenSSL, cfg.SSLBackend())
	assert.True(t, cfg.Shared())
	assert.True(t, cfg.BuildTests())
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		opts    []Option
		wantErr bool
	}{
		{name: "defaults", opts: nil},
		{name: "all enabled", opts: []Option{WithBuildTests(true), WithInsecureMode(true), WithGenerateCoverage(true), WithUseSystemCurl(true)}},
		{name: "bad ssl backend", opts: []Option{WithSSLBackend("gnutls")}, wantErr: true},
		{name: "bad linkage", opts: []Option{WithLinkage("dynamic")}, wantErr: true},
		{name: "bad build type", opts: []Option{WithBuildType("Fast")}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := NewConfig(tt.opts...).Validate()
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errors.IsCode(err, errors.ErrCodeInvalidRequest))
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestCanonicalIsStable(t *testing.T) {
	a := NewConfig(WithBuildTests(true), WithLinkage(LinkageShared))
	b := NewConfig(WithLinkage(LinkageShared), WithBuildTests(true))

	assert.Equal(t, a.Canonical(), b.Canonical())
	assert.Equal(t,
		"build_tests=true;build_type=Release;generate_coverage=false;insecure_mode=false;linkage=shared;ssl_backend=openssl;use_system_curl=false",
		a.Canonical())
	assert.Equal(t, a.Canonical(), a.String())
}

func TestMapCoversAllKeys(t *testing.T) {
	m := NewConfig().Map()
	for _, k := range Keys() {
		assert.Contains(t, m, k)
	}
	assert.Len(t, m, len(Keys()))
}
