package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/impactlens/dashboard-bff/session"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Client talks to the remote reporting backend. It attaches the session's
// bearer token to every request and owns the invalid-token recovery flow.
type Client struct {
	baseURL          string
	httpClient       *http.Client
	refreshEndpoints []string
	log              zerolog.Logger
}

type ClientOption func(*Client)

func WithHTTPClient(httpClient *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// WithRefreshEndpoints sets the ordered candidate refresh paths tried when
// an access token has expired.
func WithRefreshEndpoints(endpoints []string) ClientOption {
	return func(c *Client) {
		c.refreshEndpoints = endpoints
	}
}

func WithLogger(logger zerolog.Logger) ClientOption {
	return func(c *Client) {
		c.log = logger
	}
}

func NewClient(baseURL string, options ...ClientOption) *Client {
	c := &Client{
		baseURL:          strings.TrimRight(baseURL, "/"),
		httpClient:       &http.Client{Timeout: 30 * time.Second},
		refreshEndpoints: []string{"/auth/refresh", "/auth/token/refresh", "/api/auth/refresh"},
		log:              log.Logger,
	}
	for _, opt := range options {
		opt(c)
	}
	return c
}

// DoOptions controls per-request auth behavior.
type DoOptions struct {
	// NoAuthRedirect suppresses the token-clearing reaction to 401/403.
	// Required for the login call itself and for fetching
	// potentially-public resources, where an auth failure must not tear
	// down the session.
	NoAuthRedirect bool
}

// Do performs the request with the session's bearer token attached, when
// one exists. The response is returned untouched for every status; on
// 401/403 (unless NoAuthRedirect is set) the store is cleared first so the
// next navigation lands on the login view.
func (c *Client) Do(ctx context.Context, store *session.Store, req *http.Request, opts DoOptions) (*http.Response, error) {
	if token := store.AccessToken(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	if req.Header.Get("Accept") == "" {
		req.Header.Set("Accept", "application/json")
	}
	// Bodyless requests must not be forced into a Content-Type
	if req.Body != nil && req.Header.Get("Content-Type") == "" {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req.WithContext(ctx))
	if err != nil {
		return nil, errors.Wrap(err, "[Client.Do] httpClient.Do")
	}

	if isAuthFailure(resp.StatusCode) && !opts.NoAuthRedirect {
		c.log.Debug().Int("status", resp.StatusCode).Str("url", req.URL.Path).
			Msg("authorization failure, clearing session tokens")
		store.Clear()
	}
	return resp, nil
}

func isAuthFailure(status int) bool {
	return status == http.StatusUnauthorized || status == http.StatusForbidden
}

func is2xx(status int) bool {
	return status >= 200 && status < 300
}

// newRequest builds a request against the backend base URL. body may be
// nil for bodyless requests.
func (c *Client) newRequest(ctx context.Context, method, path string, body any) (*http.Request, error) {
	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, errors.Wrap(err, "[Client.newRequest] json.Marshal")
		}
		reader = bytes.NewReader(payload)
	}

	url := path
	if strings.HasPrefix(path, "/") {
		url = c.baseURL + path
	}

	if reader == nil {
		req, err := http.NewRequestWithContext(ctx, method, url, nil)
		return req, errors.Wrap(err, "[Client.newRequest] http.NewRequestWithContext")
	}
	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	return req, errors.Wrap(err, "[Client.newRequest] http.NewRequestWithContext")
}
