package backend_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/impactlens/dashboard-bff/backend"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"
)

// protectedBackend simulates a backend whose protected endpoint rejects
// T1 with the invalid-token code and accepts T2.
func protectedBackend(t *testing.T, refreshResponses map[string]func(w http.ResponseWriter, r *http.Request)) (*httptest.Server, *atomic.Int32) {
	t.Helper()

	var refreshCalls atomic.Int32
	mux := http.NewServeMux()
	mux.HandleFunc("GET /reports/list/biz-1", func(w http.ResponseWriter, r *http.Request) {
		switch r.Header.Get("Authorization") {
		case "Bearer T2":
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte(`[]`))
		default:
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"detail":{"code":"INVALID_TOKEN"}}`))
		}
	})
	for path, handler := range refreshResponses {
		h := handler
		mux.HandleFunc("POST "+path, func(w http.ResponseWriter, r *http.Request) {
			refreshCalls.Add(1)
			h(w, r)
		})
	}
	return httptest.NewServer(mux), &refreshCalls
}

func TestDoWithRefreshRecoversTransparently(t *testing.T) {
	var refreshBody []byte
	ts, refreshCalls := protectedBackend(t, map[string]func(w http.ResponseWriter, r *http.Request){
		"/auth/refresh": func(w http.ResponseWriter, r *http.Request) {
			http.NotFound(w, r) // old route, gone in this backend version
		},
		"/auth/token/refresh": func(w http.ResponseWriter, r *http.Request) {
			refreshBody, _ = io.ReadAll(r.Body)
			w.Header().Set("Content-Type", "application/json")
			_ = json.NewEncoder(w).Encode(map[string]string{"access_token": "T2"})
		},
	})
	defer ts.Close()

	client := backend.NewClient(ts.URL,
		backend.WithRefreshEndpoints([]string{"/auth/refresh", "/auth/token/refresh"}))
	store := newSessionStore(t, "T1", "R1")

	resp, err := client.DoWithRefresh(context.Background(), store, func() (*http.Request, error) {
		return http.NewRequest(http.MethodGet, ts.URL+"/reports/list/biz-1", nil)
	}, backend.DoOptions{})
	require.NoError(t, err)
	defer resp.Body.Close()

	// The failure never surfaces: the retry with T2 succeeded
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, "T2", store.AccessToken())
	require.Equal(t, "R1", gjson.GetBytes(refreshBody, "refresh_token").String())
	require.Equal(t, int32(2), refreshCalls.Load(), "both candidates should have been tried, in order")
}

func TestDoWithRefreshAllCandidatesFail(t *testing.T) {
	ts, _ := protectedBackend(t, map[string]func(w http.ResponseWriter, r *http.Request){
		"/auth/refresh": func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		},
		"/auth/token/refresh": func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		},
	})
	defer ts.Close()

	client := backend.NewClient(ts.URL,
		backend.WithRefreshEndpoints([]string{"/auth/refresh", "/auth/token/refresh"}))
	store := newSessionStore(t, "T1", "R1")

	resp, err := client.DoWithRefresh(context.Background(), store, func() (*http.Request, error) {
		return http.NewRequest(http.MethodGet, ts.URL+"/reports/list/biz-1", nil)
	}, backend.DoOptions{})
	require.NoError(t, err)
	defer resp.Body.Close()

	// Caller sees the original 401 and the stored token is untouched
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.Equal(t, "INVALID_TOKEN", gjson.GetBytes(body, "detail.code").String())
	require.Equal(t, "T1", store.AccessToken())
}

func TestDoWithRefreshNoStoredRefreshToken(t *testing.T) {
	ts, refreshCalls := protectedBackend(t, map[string]func(w http.ResponseWriter, r *http.Request){
		"/auth/refresh": func(w http.ResponseWriter, r *http.Request) {
			_ = json.NewEncoder(w).Encode(map[string]string{"access_token": "T2"})
		},
	})
	defer ts.Close()

	client := backend.NewClient(ts.URL, backend.WithRefreshEndpoints([]string{"/auth/refresh"}))
	store := newSessionStore(t, "T1", "")

	resp, err := client.DoWithRefresh(context.Background(), store, func() (*http.Request, error) {
		return http.NewRequest(http.MethodGet, ts.URL+"/reports/list/biz-1", nil)
	}, backend.DoOptions{})
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	require.Equal(t, int32(0), refreshCalls.Load(), "refresh must not run without a refresh token")
	require.Equal(t, "T1", store.AccessToken())
}

func TestDoWithRefreshIgnoresOther401Causes(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /reports/list/biz-1", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"detail":{"code":"ACCOUNT_SUSPENDED"}}`))
	})
	var refreshCalls atomic.Int32
	mux.HandleFunc("POST /auth/refresh", func(w http.ResponseWriter, r *http.Request) {
		refreshCalls.Add(1)
	})
	ts := httptest.NewServer(mux)
	defer ts.Close()

	client := backend.NewClient(ts.URL, backend.WithRefreshEndpoints([]string{"/auth/refresh"}))
	store := newSessionStore(t, "T1", "R1")

	resp, err := client.DoWithRefresh(context.Background(), store, func() (*http.Request, error) {
		return http.NewRequest(http.MethodGet, ts.URL+"/reports/list/biz-1", nil)
	}, backend.DoOptions{})
	require.NoError(t, err)
	defer resp.Body.Close()

	// Any other 401 reason passes through; refresh would only mask it
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	require.Equal(t, int32(0), refreshCalls.Load())
	// And the fetch-level auth policy applies: the session is torn down
	require.Equal(t, "", store.AccessToken())
}
