/*
Copyright © 2025 NVIDIA Corporation
SPDX-License-Identifier: Apache-2.0
*/

package oci

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/NVIDIA/cpr-recipe/pkg/errors"
)

func TestParseReference(t *testing.T) {
	tests := []struct {
		name     string
		target   string
		wantErr  bool
		wantReg  string
		wantRepo string
		wantTag  string
	}{
		{
			name:     "registry with tag",
			target:   "oci://ghcr.io/nvidia/cpr:1.2.0",
			wantReg:  "ghcr.io",
			wantRepo: "nvidia/cpr",
			wantTag:  "1.2.0",
		},
		{
			name:     "registry without tag",
			target:   "oci://ghcr.io/nvidia/cpr",
			wantReg:  "ghcr.io",
			wantRepo: "nvidia/cpr",
		},
		{
			name:     "localhost with port",
			target:   "oci://localhost:5000/cpr:dev",
			wantReg:  "localhost:5000",
			wantRepo: "cpr",
			wantTag:  "dev",
		},
		{
			name:     "nested repository",
			target:   "oci://registry.example.com/org/team/cpr:v1",
			wantReg:  "registry.example.com",
			wantRepo: "org/team/cpr",
			wantTag:  "v1",
		},
		{
			name:    "missing scheme",
			target:  "ghcr.io/nvidia/cpr:1.2.0",
			wantErr: true,
		},
		{
			name:    "uppercase repository",
			target:  "oci://ghcr.io/NVIDIA/CPR:1.2.0",
			wantErr: true,
		},
		{
			name:    "digest reference",
			target:  "oci://ghcr.io/nvidia/cpr@sha256:" + "0123456789abcdef0123456789abcdef0123456789abcdef0123456789abcdef",
			wantErr: true,
		},
		{
			name:    "empty after scheme",
			target:  "oci://",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ref, err := ParseReference(tt.target)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, apperrors.IsCode(err, apperrors.ErrCodeInvalidRequest))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantReg, ref.Registry)
			assert.Equal(t, tt.wantRepo, ref.Repository)
			assert.Equal(t, tt.wantTag, ref.Tag)
		})
	}
}

func TestReference_String(t *testing.T) {
	ref := &Reference{Registry: "ghcr.io", Repository: "nvidia/cpr", Tag: "1.2.0"}
	assert.Equal(t, "oci://ghcr.io/nvidia/cpr:1.2.0", ref.String())
	assert.Equal(t, "ghcr.io/nvidia/cpr:1.2.0", ref.ImageReference())

	untagged := &Reference{Registry: "ghcr.io", Repository: "nvidia/cpr"}
	assert.Equal(t, "oci://ghcr.io/nvidia/cpr", untagged.String())
	assert.Equal(t, "ghcr.io/nvidia/cpr", untagged.ImageReference())
}

func TestReference_WithTag(t *testing.T) {
	ref := &Reference{Registry: "ghcr.io", Repository: "nvidia/cpr"}
	tagged := ref.WithTag("1.2.0")

	assert.Equal(t, "1.2.0", tagged.Tag)
	assert.Equal(t, "ghcr.io", tagged.Registry)
	assert.Empty(t, ref.Tag, "original must not change")
}

func TestValidateRegistryReference(t *testing.T) {
	tests := []struct {
		name       string
		registry   string
		repository string
		wantErr    bool
	}{
		{"valid ghcr.io", "ghcr.io", "nvidia/cpr", false},
		{"valid localhost with port", "localhost:5000", "test/repo", false},
		{"valid with https prefix", "https://ghcr.io", "nvidia/cpr", false},
		{"valid complex repository", "registry.example.com:5000", "org/team/project", false},
		{"empty registry", "", "test/repo", true},
		{"empty repository", "ghcr.io", "", true},
		{"registry with spaces", "invalid registry", "test/repo", true},
		{"uppercase repository", "ghcr.io", "NVIDIA/Cpr", true},
		{"repository with tag", "ghcr.io", "test/repo:latest", true},
		{"repository with special chars", "ghcr.io", "test/repo@latest", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateRegistryReference(tt.registry, tt.repository)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateRegistryReference() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
