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

package defaults

import (
	"testing"
	"time"
)

func TestTimeoutConstants(t *testing.T) {
	tests := []struct {
		name     string
		timeout  time.Duration
		minValue time.Duration
		maxValue time.Duration
	}{
		{"SourceFetchTimeout", SourceFetchTimeout, time.Minute, 30 * time.Minute},
		{"OCIPushTimeout", OCIPushTimeout, time.Minute, 15 * time.Minute},
		{"HTTPTLSHandshakeTimeout", HTTPTLSHandshakeTimeout, 2 * time.Second, 15 * time.Second},
		{"HTTPResponseHeaderTimeout", HTTPResponseHeaderTimeout, 5 * time.Second, 30 * time.Second},
		{"HTTPIdleConnTimeout", HTTPIdleConnTimeout, 30 * time.Second, 5 * time.Minute},
		{"ServerReadTimeout", ServerReadTimeout, 5 * time.Second, time.Minute},
		{"ServerWriteTimeout", ServerWriteTimeout, 10 * time.Second, 2 * time.Minute},
		{"ServerIdleTimeout", ServerIdleTimeout, 30 * time.Second, 5 * time.Minute},
		{"ServerShutdownTimeout", ServerShutdownTimeout, 5 * time.Second, time.Minute},
		{"APICacheTTL", APICacheTTL, time.Minute, time.Hour},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.timeout < tt.minValue {
				t.Errorf("%s = %v, below minimum %v", tt.name, tt.timeout, tt.minValue)
			}
			if tt.timeout > tt.maxValue {
				t.Errorf("%s = %v, above maximum %v", tt.name, tt.timeout, tt.maxValue)
			}
		})
	}
}

func TestBuildTimeoutUnbounded(t *testing.T) {
	if BuildTimeout != 0 {
		t.Errorf("BuildTimeout = %v, want 0 (unbounded)", BuildTimeout)
	}
}

func TestPackagingLimits(t *testing.T) {
	if ChecksumConcurrency < 1 {
		t.Errorf("ChecksumConcurrency = %d, must be positive", ChecksumConcurrency)
	}
	if SourceCloneDepth < 1 {
		t.Errorf("SourceCloneDepth = %d, must be positive", SourceCloneDepth)
	}
	if BuildOutputTailBytes < 256 {
		t.Errorf("BuildOutputTailBytes = %d, too small to be useful", BuildOutputTailBytes)
	}
}
