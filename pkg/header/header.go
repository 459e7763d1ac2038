// Copyright (c) 2025, NVIDIA CORPORATION.  All rights reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package header

import (
	"fmt"
	"strings"
	"time"
)

// APIVersion is the schema version of documents produced by this module.
const APIVersion = "cprpkg.nvidia.com/v1alpha1"

// Kind represents the type of document.
type Kind string

const (
	KindRecipe  Kind = "Recipe"
	KindPackage Kind = "Package"
	KindBuild   Kind = "Build"
)

// String returns the string representation of the Kind.
func (k Kind) String() string {
	return string(k)
}

// IsValid checks if the Kind is one of the recognized kinds.
func (k Kind) IsValid() bool {
	switch k {
	case KindRecipe, KindPackage, KindBuild:
		return true
	default:
		return false
	}
}

// Header contains versioning information and metadata for a document.
type Header struct {
	Kind       Kind              `json:"kind,omitempty" yaml:"kind,omitempty"`
	APIVersion string            `json:"apiVersion,omitempty" yaml:"apiVersion,omitempty"`
	Metadata   map[string]string `json:"metadata,omitempty" yaml:"metadata,omitempty"`
}

// Option is a functional option for configuring Header instances.
type Option func(*Header)

// WithKind sets the Kind field of the Header.
func WithKind(kind Kind) Option {
	return func(h *Header) {
		h.Kind = kind
	}
}

// WithAPIVersion sets the APIVersion field of the Header.
func WithAPIVersion(version string) Option {
	return func(h *Header) {
		h.APIVersion = version
	}
}

// WithMetadata adds a metadata key-value pair to the Header.
func WithMetadata(key, value string) Option {
	return func(h *Header) {
		if h.Metadata == nil {
			h.Metadata = make(map[string]string)
		}
		h.Metadata[key] = value
	}
}

// New creates a new Header with the provided functional options.
func New(opts ...Option) *Header {
	h := &Header{
		Metadata: make(map[string]string),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Init stamps the Header with kind, apiVersion, a UTC timestamp and the
// tool version. Metadata keys are prefixed with the lowercased kind,
// e.g. "package-timestamp".
func (h *Header) Init(kind Kind, apiVersion string, version string) {
	h.Kind = kind
	h.APIVersion = apiVersion
	if h.Metadata == nil {
		h.Metadata = make(map[string]string)
	}

	prefix := strings.ToLower(string(kind))
	h.Metadata[fmt.Sprintf("%s-timestamp", prefix)] = time.Now().UTC().Format(time.RFC3339)
	if version != "" {
		h.Metadata[fmt.Sprintf("%s-version", prefix)] = version
	}
}

// Check verifies that the header declares the expected kind and a supported API version.
// An empty header is accepted so hand-written documents may omit it.
func (h *Header) Check(kind Kind) error {
	if h.Kind == "" && h.APIVersion == "" {
		return nil
	}
	if h.Kind != kind {
		return fmt.Errorf("unexpected kind %q (expected %q)", h.Kind, kind)
	}
	if h.APIVersion != "" && h.APIVersion != APIVersion {
		return fmt.Errorf("unsupported apiVersion %q (expected %q)", h.APIVersion, APIVersion)
	}
	return nil
}
