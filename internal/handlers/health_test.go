package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"testing"

	"playlist-player/internal/startup"
)

func TestHealthCheck(t *testing.T) {
	tests := []struct {
		name       string
		ready      bool
		storeErr   error
		wantCode   int
		wantStatus string
	}{
		{"starting", false, nil, http.StatusServiceUnavailable, statusStarting},
		{"healthy", true, nil, http.StatusOK, statusHealthy},
		{"store down", true, errors.New("connection refused"), http.StatusOK, statusDegraded},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			api := newTestAPI(t)
			api.add(t, "a.mp4", 10)
			api.h.store = fakeHealth{err: tt.storeErr}
			api.h.SetReady(tt.ready)

			w := api.do(t, http.MethodGet, "/health", nil)
			if w.Code != tt.wantCode {
				t.Fatalf("status = %d, want %d", w.Code, tt.wantCode)
			}
			var resp HealthResponse
			if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if resp.Status != tt.wantStatus {
				t.Errorf("Status = %q, want %q", resp.Status, tt.wantStatus)
			}
			if resp.Entries != 1 || resp.ActiveIndex != 0 {
				t.Errorf("playlist summary = %d entries, active %d", resp.Entries, resp.ActiveIndex)
			}
			if (tt.storeErr != nil) != (resp.StoreError != "") {
				t.Errorf("StoreError = %q", resp.StoreError)
			}
		})
	}
}

func TestLivenessCheck(t *testing.T) {
	api := newTestAPI(t)

	for _, method := range []string{http.MethodGet, http.MethodHead} {
		t.Run(method, func(t *testing.T) {
			w := api.do(t, method, "/livez", nil)
			if w.Code != http.StatusOK {
				t.Fatalf("status = %d, want 200", w.Code)
			}
			if method == http.MethodHead && w.Body.Len() != 0 {
				t.Errorf("HEAD returned a body: %q", w.Body.String())
			}
			if method == http.MethodGet && w.Body.Len() == 0 {
				t.Error("GET returned no body")
			}
		})
	}
}

func TestReadinessCheck(t *testing.T) {
	api := newTestAPI(t)

	w := api.do(t, http.MethodGet, "/readyz", nil)
	if w.Code != http.StatusServiceUnavailable {
		t.Errorf("before ready status = %d, want 503", w.Code)
	}

	api.h.SetReady(true)
	w = api.do(t, http.MethodGet, "/readyz", nil)
	if w.Code != http.StatusOK {
		t.Errorf("after ready status = %d, want 200", w.Code)
	}
}

func TestGetVersion(t *testing.T) {
	api := newTestAPI(t)

	w := api.do(t, http.MethodGet, "/version", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	if got := w.Header().Get("Cache-Control"); got != "no-cache" {
		t.Errorf("Cache-Control = %q, want no-cache", got)
	}
	var info startup.BuildInfo
	if err := json.NewDecoder(w.Body).Decode(&info); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if info.Version != startup.Version {
		t.Errorf("Version = %q, want %q", info.Version, startup.Version)
	}
}
