// Package backend binds the portal to the hosted backend-as-a-service: a
// PostgREST table API under /rest/v1 and a GoTrue credential API under
// /auth/v1. One Client is built at startup and shared by the whole process;
// end-user credentials travel in the request context.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	apperrors "github.com/Yasserk123/HealthVision-Projet/pkg/errors"
	"github.com/Yasserk123/HealthVision-Projet/pkg/metrics"
)

const (
	restPath = "/rest/v1/"
	authPath = "/auth/v1/"

	defaultTimeout = 10 * time.Second
)

type Config struct {
	URL     string
	APIKey  string
	Timeout time.Duration
}

type Client struct {
	baseURL    *url.URL
	apiKey     string
	httpClient *http.Client
	metrics    *metrics.Metrics
}

type Option func(*Client)

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithMetrics records request counts and latency.
func WithMetrics(m *metrics.Metrics) Option {
	return func(c *Client) { c.metrics = m }
}

func New(cfg Config, opts ...Option) (*Client, error) {
	if cfg.URL == "" || cfg.APIKey == "" {
		return nil, fmt.Errorf("backend URL and API key are required")
	}
	u, err := url.Parse(strings.TrimRight(cfg.URL, "/"))
	if err != nil {
		return nil, fmt.Errorf("invalid backend URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("invalid backend URL scheme %q", u.Scheme)
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	c := &Client{
		baseURL:    u,
		apiKey:     cfg.APIKey,
		httpClient: &http.Client{Timeout: timeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Ping checks that the credential endpoint answers.
func (c *Client) Ping(ctx context.Context) error {
	return c.do(ctx, request{
		op:     "auth.health",
		method: http.MethodGet,
		path:   authPath + "health",
	}, nil)
}

type request struct {
	op      string
	method  string
	path    string
	query   url.Values
	body    interface{}
	headers map[string]string
	// token overrides the context access token.
	token string
}

// APIError is the error payload returned by either backend API.
type APIError struct {
	Status  int    `json:"-"`
	Code    string `json:"code"`
	Message string `json:"message"`
	Details string `json:"details"`
	Hint    string `json:"hint"`
}

func (e *APIError) Error() string {
	msg := fmt.Sprintf("backend returned %d", e.Status)
	if e.Code != "" {
		msg += " (" + e.Code + ")"
	}
	if e.Message != "" {
		msg += ": " + e.Message
	}
	return msg
}

// authErrorBody covers both GoTrue error encodings.
type authErrorBody struct {
	Code             json.RawMessage `json:"code"`
	ErrorCode        string          `json:"error_code"`
	Msg              string          `json:"msg"`
	Message          string          `json:"message"`
	Error            string          `json:"error"`
	ErrorDescription string          `json:"error_description"`
}

func decodeAPIError(status int, body []byte) *APIError {
	apiErr := &APIError{Status: status}
	if len(body) == 0 {
		apiErr.Message = http.StatusText(status)
		return apiErr
	}

	var raw authErrorBody
	if err := json.Unmarshal(body, &raw); err != nil {
		apiErr.Message = strings.TrimSpace(string(body))
		return apiErr
	}

	var code string
	if err := json.Unmarshal(raw.Code, &code); err == nil {
		apiErr.Code = code
	}
	var detail struct {
		Details string `json:"details"`
		Hint    string `json:"hint"`
	}
	_ = json.Unmarshal(body, &detail)
	apiErr.Details = detail.Details
	apiErr.Hint = detail.Hint

	switch {
	case raw.ErrorCode != "":
		apiErr.Code = raw.ErrorCode
	case apiErr.Code == "" && raw.Error != "":
		apiErr.Code = raw.Error
	}

	for _, m := range []string{raw.Message, raw.Msg, raw.ErrorDescription, raw.Error} {
		if m != "" {
			apiErr.Message = m
			break
		}
	}
	if apiErr.Message == "" {
		apiErr.Message = http.StatusText(status)
	}
	return apiErr
}

func (c *Client) do(ctx context.Context, req request, dest interface{}) (err error) {
	start := time.Now()
	status := 0
	defer func() {
		if c.metrics == nil {
			return
		}
		c.metrics.BackendRequests.WithLabelValues(req.op, strconv.Itoa(status)).Inc()
		c.metrics.BackendLatency.WithLabelValues(req.op).Observe(time.Since(start).Seconds())
	}()

	u := *c.baseURL
	u.Path = strings.TrimRight(u.Path, "/") + req.path
	if len(req.query) > 0 {
		u.RawQuery = req.query.Encode()
	}

	var body io.Reader
	if req.body != nil {
		payload, err := json.Marshal(req.body)
		if err != nil {
			return fmt.Errorf("failed to marshal %s request: %w", req.op, err)
		}
		body = bytes.NewReader(payload)
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.method, u.String(), body)
	if err != nil {
		return fmt.Errorf("failed to build %s request: %w", req.op, err)
	}

	token := req.token
	if token == "" {
		token = AccessToken(ctx)
	}
	if token == "" {
		token = c.apiKey
	}
	httpReq.Header.Set("apikey", c.apiKey)
	httpReq.Header.Set("Authorization", "Bearer "+token)
	httpReq.Header.Set("Accept", "application/json")
	if body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	for k, v := range req.headers {
		httpReq.Header.Set(k, v)
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return apperrors.NewRemote(0, "backend unreachable", err)
	}
	defer resp.Body.Close()
	status = resp.StatusCode

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return apperrors.NewRemote(status, "failed to read backend response", err)
	}

	if status >= http.StatusBadRequest {
		apiErr := decodeAPIError(status, respBody)
		if status == http.StatusNotAcceptable && apiErr.Code == "PGRST116" {
			return apperrors.NewNotFound("record", apiErr)
		}
		return apperrors.NewRemote(status, apiErr.Message, apiErr)
	}

	if dest == nil || len(bytes.TrimSpace(respBody)) == 0 {
		return nil
	}
	if err := json.Unmarshal(respBody, dest); err != nil {
		return apperrors.NewMalformed(req.op, err)
	}
	return nil
}
