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

package server

import (
	"context"
	"encoding/json"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testHandlers() map[string]http.HandlerFunc {
	return map[string]http.HandlerFunc{
		"/v1/echo": func(w http.ResponseWriter, r *http.Request) {
			_, _ = io.WriteString(w, r.URL.Query().Get("msg"))
		},
	}
}

func TestNew_AppliesOptions(t *testing.T) {
	s := New(
		WithName("cprpkg"),
		WithVersion("1.2.3"),
		WithAddress("127.0.0.1"),
		WithPort(9191),
		WithRateLimit(5, 10),
		WithHandler(testHandlers()),
	)

	assert.Equal(t, "cprpkg", s.config.Name)
	assert.Equal(t, "1.2.3", s.config.Version)
	assert.Equal(t, "127.0.0.1:9191", s.httpServer.Addr)
	assert.InDelta(t, 5, float64(s.rateLimiter.Limit()), 0.001)
	assert.Equal(t, 10, s.rateLimiter.Burst())
	assert.Contains(t, s.config.Handlers, "/v1/echo")
}

func TestNew_IgnoresNonPositiveOverrides(t *testing.T) {
	t.Setenv("PORT", "")
	s := New(WithPort(0), WithRateLimit(0, 0))

	assert.Equal(t, 8080, s.config.Port)
	assert.Equal(t, 200, s.config.RateLimitBurst)
}

func TestRoutes(t *testing.T) {
	s := New(WithName("cprpkg"), WithHandler(testHandlers()))
	h := s.Handler()

	t.Run("root lists routes", func(t *testing.T) {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
		require.Equal(t, http.StatusOK, rec.Code)

		var body struct {
			Name   string   `json:"name"`
			Ready  bool     `json:"ready"`
			Routes []string `json:"routes"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.Equal(t, "cprpkg", body.Name)
		assert.False(t, body.Ready)
		assert.Equal(t, "GET /v1/echo", body.Routes[0])
		assert.Contains(t, body.Routes, "GET /metrics")
	})

	t.Run("unknown path is 404", func(t *testing.T) {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/nope", nil))
		assert.Equal(t, http.StatusNotFound, rec.Code)
		assert.Contains(t, rec.Body.String(), `"NOT_FOUND"`)
	})

	t.Run("api route passes through middleware", func(t *testing.T) {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/echo?msg=hi", nil))
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "hi", rec.Body.String())
		assert.NotEmpty(t, rec.Header().Get("X-Request-Id"))
		assert.Equal(t, DefaultAPIVersion, rec.Header().Get("X-API-Version"))
		assert.NotEmpty(t, rec.Header().Get("X-RateLimit-Limit"))
	})

	t.Run("health", func(t *testing.T) {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), "healthy")
	})

	t.Run("health rejects POST", func(t *testing.T) {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/health", nil))
		assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	})

	t.Run("metrics exposition", func(t *testing.T) {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), "cprpkg_http_requests_total")
	})
}

func TestReadiness(t *testing.T) {
	s := New()
	h := s.Handler()

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ready", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, rec.Body.String(), "not_ready")

	s.SetReady(true)
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ready", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestServe_ShutsDownOnCancel(t *testing.T) {
	s := New(WithHandler(testHandlers()))

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Serve(ctx, ln) }()

	url := "http://" + ln.Addr().String() + "/v1/echo?msg=up"
	require.Eventually(t, func() bool {
		resp, err := http.Get(url) //nolint:noctx
		if err != nil {
			return false
		}
		defer resp.Body.Close()
		b, _ := io.ReadAll(resp.Body)
		return strings.TrimSpace(string(b)) == "up"
	}, 5*time.Second, 20*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(10 * time.Second):
		t.Fatal("server did not shut down")
	}
	assert.False(t, s.isReady())
}
