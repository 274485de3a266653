package backend

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"strings"

	"github.com/impactlens/dashboard-bff/session"
	"github.com/pkg/errors"
	"github.com/tidwall/gjson"
)

// invalidTokenCode is the only 401 cause that triggers an automatic
// refresh. Any other 401 reason (bad scope, bad input) passes through so
// real authorization errors are never masked.
const invalidTokenCode = "INVALID_TOKEN"

// RequestFactory builds a fresh request for each attempt, so a retried
// request gets a replayable body and the new bearer token.
type RequestFactory func() (*http.Request, error)

// DoWithRefresh performs the request and transparently recovers from an
// expired access token exactly once. On unrecoverable auth failure the
// original response is returned with the stored token untouched; the
// caller is expected to surface the 401 and let the gate redirect.
func (c *Client) DoWithRefresh(ctx context.Context, store *session.Store, makeRequest RequestFactory, opts DoOptions) (*http.Response, error) {
	req, err := makeRequest()
	if err != nil {
		return nil, errors.Wrap(err, "[Client.DoWithRefresh] makeRequest")
	}

	resp, err := c.Do(ctx, store, req, DoOptions{NoAuthRedirect: true})
	if err != nil {
		return nil, err
	}

	// Common case: anything but 401 is not refresh territory.
	if resp.StatusCode != http.StatusUnauthorized {
		if resp.StatusCode == http.StatusForbidden && !opts.NoAuthRedirect {
			store.Clear()
		}
		return resp, nil
	}

	body, readErr := io.ReadAll(resp.Body)
	resp.Body.Close()
	resp.Body = io.NopCloser(bytes.NewReader(body))
	if readErr != nil {
		return resp, nil
	}

	if !isInvalidTokenResponse(body) {
		if !opts.NoAuthRedirect {
			store.Clear()
		}
		return resp, nil
	}

	newToken, refreshErr := c.refreshAccessToken(ctx, store)
	if refreshErr != nil {
		c.log.Warn().Err(refreshErr).Msg("access token refresh failed")
		return resp, nil
	}

	if err := store.SetAccessToken(newToken); err != nil {
		c.log.Warn().Err(err).Msg("failed to store refreshed access token")
		return resp, nil
	}

	retryReq, err := makeRequest()
	if err != nil {
		return resp, nil
	}
	retryResp, err := c.Do(ctx, store, retryReq, DoOptions{NoAuthRedirect: true})
	if err != nil {
		return resp, nil
	}
	return retryResp, nil
}

// refreshAccessToken exchanges the stored refresh token for a new access
// token, trying each candidate endpoint in order. The route name changed
// across backend versions; the first endpoint answering 2xx with a usable
// token wins.
func (c *Client) refreshAccessToken(ctx context.Context, store *session.Store) (string, error) {
	refreshToken := store.RefreshToken()
	if refreshToken == "" {
		return "", ErrNoRefreshToken
	}

	for _, endpoint := range c.refreshEndpoints {
		req, err := c.newRequest(ctx, http.MethodPost, endpoint, map[string]string{"refresh_token": refreshToken})
		if err != nil {
			continue
		}
		req.Header.Set("Content-Type", "application/json")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			c.log.Debug().Err(err).Str("endpoint", endpoint).Msg("refresh endpoint unreachable")
			continue
		}
		body, readErr := io.ReadAll(resp.Body)
		resp.Body.Close()
		if readErr != nil || !is2xx(resp.StatusCode) {
			continue
		}

		token := gjson.GetBytes(body, "access_token").String()
		if token == "" {
			token = gjson.GetBytes(body, "token").String()
		}
		if token != "" {
			return token, nil
		}
	}
	return "", ErrRefreshFailed
}

func isInvalidTokenResponse(body []byte) bool {
	code := gjson.GetBytes(body, "detail.code").String()
	if code == "" {
		code = gjson.GetBytes(body, "code").String()
	}
	return strings.EqualFold(code, invalidTokenCode)
}
