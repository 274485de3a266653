package backend

import (
	"context"
	"encoding/json"
	"io"
	"net/http"

	"github.com/impactlens/dashboard-bff/session"
	"github.com/pkg/errors"
	"github.com/tidwall/gjson"
)

// LoginResult is the decoded successful login response. The backend has
// returned the access token as either `access_token` or `token`.
type LoginResult struct {
	AccessToken  string
	RefreshToken string
	Profile      json.RawMessage
}

// Login authenticates against the backend. Auth failures here must not
// tear down anything, so the call always runs with NoAuthRedirect.
func (c *Client) Login(ctx context.Context, store *session.Store, email, password string) (*LoginResult, error) {
	req, err := c.newRequest(ctx, http.MethodPost, "/auth/login", map[string]string{
		"email":    email,
		"password": password,
	})
	if err != nil {
		return nil, err
	}

	resp, err := c.Do(ctx, store, req, DoOptions{NoAuthRedirect: true})
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.Wrap(err, "[Client.Login] io.ReadAll")
	}
	if !is2xx(resp.StatusCode) {
		return nil, &APIError{StatusCode: resp.StatusCode, Message: ExtractMessage(body)}
	}

	parsed := gjson.ParseBytes(body)
	accessToken := parsed.Get("access_token").String()
	if accessToken == "" {
		accessToken = parsed.Get("token").String()
	}
	if accessToken == "" {
		// Fail closed rather than guessing at further field names
		return nil, errors.New("[Client.Login] login response carried no access token")
	}

	result := &LoginResult{
		AccessToken:  accessToken,
		RefreshToken: parsed.Get("refresh_token").String(),
	}
	if profile := parsed.Get("profile"); profile.Exists() {
		result.Profile = json.RawMessage(profile.Raw)
	}
	return result, nil
}

// CurrentUser fetches the authenticated user's profile.
func (c *Client) CurrentUser(ctx context.Context, store *session.Store) (json.RawMessage, error) {
	resp, err := c.DoWithRefresh(ctx, store, func() (*http.Request, error) {
		return c.newRequest(ctx, http.MethodGet, "/auth/me", nil)
	}, DoOptions{})
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.Wrap(err, "[Client.CurrentUser] io.ReadAll")
	}
	if !is2xx(resp.StatusCode) {
		return nil, &APIError{StatusCode: resp.StatusCode, Message: ExtractMessage(body)}
	}
	return json.RawMessage(body), nil
}

// ListReports returns the raw report list payload for a business. The
// shape varies across backend versions, so normalization is left to the
// reports package.
func (c *Client) ListReports(ctx context.Context, store *session.Store, businessID string) (json.RawMessage, error) {
	if businessID == "" {
		return nil, errors.New("[Client.ListReports] businessID is required")
	}

	resp, err := c.DoWithRefresh(ctx, store, func() (*http.Request, error) {
		return c.newRequest(ctx, http.MethodGet, "/reports/list/"+businessID, nil)
	}, DoOptions{})
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.Wrap(err, "[Client.ListReports] io.ReadAll")
	}
	if !is2xx(resp.StatusCode) {
		return nil, &APIError{StatusCode: resp.StatusCode, Message: ExtractMessage(body)}
	}
	return json.RawMessage(body), nil
}

// GenerateRequest describes a report generation call.
type GenerateRequest struct {
	BusinessID string         `json:"business_id"`
	ReportType string         `json:"report_type"`
	Options    map[string]any `json:"options,omitempty"`
}

// GenerateResult is the decoded generation response. Both fields are
// optional upstream.
type GenerateResult struct {
	ReportID           string `json:"report_id"`
	RemainingAICredits *int64 `json:"remaining_ai_credits,omitempty"`
}

// GenerateReport asks the backend to produce a new report. Generation is
// not cancellable once the backend accepts it; the context only bounds
// the HTTP exchange.
func (c *Client) GenerateReport(ctx context.Context, store *session.Store, genReq GenerateRequest) (*GenerateResult, error) {
	if genReq.BusinessID == "" {
		return nil, errors.New("[Client.GenerateReport] businessID is required")
	}

	resp, err := c.DoWithRefresh(ctx, store, func() (*http.Request, error) {
		return c.newRequest(ctx, http.MethodPost, "/reports/generate-business-overview", genReq)
	}, DoOptions{})
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.Wrap(err, "[Client.GenerateReport] io.ReadAll")
	}
	if !is2xx(resp.StatusCode) {
		return nil, &APIError{StatusCode: resp.StatusCode, Message: ExtractMessage(body)}
	}

	parsed := gjson.ParseBytes(body)
	result := &GenerateResult{
		ReportID: parsed.Get("report_id").String(),
	}
	if credits := parsed.Get("remaining_ai_credits"); credits.Type == gjson.Number {
		v := credits.Int()
		result.RemainingAICredits = &v
	}
	return result, nil
}

// ReportContent fetches a report's JSON content, preferring the report's
// own json_url when one exists. The content URL may be public, so a 401
// there must not clear the session. An unparsable body is treated as "no
// content".
func (c *Client) ReportContent(ctx context.Context, store *session.Store, reportID, jsonURL string) (json.RawMessage, error) {
	path := jsonURL
	if path == "" {
		if reportID == "" {
			return nil, errors.New("[Client.ReportContent] reportID is required")
		}
		path = "/reports/" + reportID
	}

	resp, err := c.DoWithRefresh(ctx, store, func() (*http.Request, error) {
		return c.newRequest(ctx, http.MethodGet, path, nil)
	}, DoOptions{NoAuthRedirect: true})
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.Wrap(err, "[Client.ReportContent] io.ReadAll")
	}
	if !is2xx(resp.StatusCode) || !gjson.ValidBytes(body) {
		return nil, ErrNoContent
	}
	return json.RawMessage(body), nil
}

// CreditsBalance is the normalized credits/plan state for a business.
type CreditsBalance struct {
	Remaining int64  `json:"credits_remaining"`
	Total     int64  `json:"credits_total"`
	PlanName  string `json:"plan_name"`
}

// DefaultCreditsBalance is what views render before (or instead of) a
// successful balance fetch.
var DefaultCreditsBalance = CreditsBalance{PlanName: "free"}

var creditsEndpoints = []string{"/api/tokens/balance", "/api/ai-credits"}

// Credits fetches the credit balance. Failures are not surfaced: the
// defaults are retained and the error is only logged, since the balance
// is a background decoration on the dashboard.
func (c *Client) Credits(ctx context.Context, store *session.Store) CreditsBalance {
	for _, endpoint := range creditsEndpoints {
		resp, err := c.DoWithRefresh(ctx, store, func() (*http.Request, error) {
			return c.newRequest(ctx, http.MethodGet, endpoint, nil)
		}, DoOptions{NoAuthRedirect: true})
		if err != nil {
			c.log.Debug().Err(err).Str("endpoint", endpoint).Msg("credits fetch failed")
			continue
		}
		body, readErr := io.ReadAll(resp.Body)
		resp.Body.Close()
		if readErr != nil || !is2xx(resp.StatusCode) {
			continue
		}

		parsed := gjson.ParseBytes(body)
		balance := DefaultCreditsBalance
		if v := firstNumber(parsed, "credits_remaining", "remaining", "balance"); v != nil {
			balance.Remaining = *v
		}
		if v := firstNumber(parsed, "credits_total", "total"); v != nil {
			balance.Total = *v
		}
		if plan := parsed.Get("plan_name").String(); plan != "" {
			balance.PlanName = plan
		} else if plan := parsed.Get("plan").String(); plan != "" {
			balance.PlanName = plan
		}
		return balance
	}
	return DefaultCreditsBalance
}

func firstNumber(parsed gjson.Result, fields ...string) *int64 {
	for _, field := range fields {
		if value := parsed.Get(field); value.Type == gjson.Number {
			v := value.Int()
			return &v
		}
	}
	return nil
}
