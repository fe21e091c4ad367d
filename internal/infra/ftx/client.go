package ftx

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"grid_go/internal/domain"
)

// FTX API Constants
const (
	DefaultRestURL = "https://ftx.com"
	DefaultWSURL   = "wss://ftx.com/ws/"

	apiPrefix = "/api"
)

// Client is the signed FTX REST API client (Boundary Layer).
// The underlying http.Client reuses connections across calls; callers must
// not depend on that.
type Client struct {
	baseURL    string
	httpClient *http.Client
	signer     *Signer
	logger     *slog.Logger
}

// NewClient creates a new FTX API client. Subaccount may be empty.
func NewClient(key, secret, subaccount string) *Client {
	return NewClientWithURL(DefaultRestURL, key, secret, subaccount)
}

// NewClientWithURL creates a client against a custom base URL (httptest in tests).
func NewClientWithURL(baseURL, key, secret, subaccount string) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
			Transport: &http.Transport{
				MaxIdleConns:    10,
				IdleConnTimeout: 30 * time.Second,
			},
		},
		signer: NewSigner(key, secret, subaccount),
		logger: slog.Default().With("module", "ftx_client"),
	}
}

// get executes a signed GET. Query parameters with absent values must not be
// set in params at all; they are omitted, not sent as empty.
func (c *Client) get(ctx context.Context, path string, params url.Values, out any) error {
	return c.do(ctx, http.MethodGet, path, params, nil, out)
}

// post executes a signed POST with a JSON body.
func (c *Client) post(ctx context.Context, path string, body any, out any) error {
	return c.do(ctx, http.MethodPost, path, nil, body, out)
}

// delete executes a signed DELETE, optionally with a JSON body.
func (c *Client) delete(ctx context.Context, path string, body any, out any) error {
	return c.do(ctx, http.MethodDelete, path, nil, body, out)
}

// do builds, signs and sends one request, then unwraps the envelope.
// On success the envelope's result is decoded into out (if non-nil).
// Failures surface as exactly one of the typed errors from internal/domain:
// TransportError, HTTPStatusError, ExchangeError.
func (c *Client) do(ctx context.Context, method, path string, params url.Values, body any, out any) error {
	requestPath := apiPrefix + path
	if len(params) > 0 {
		requestPath += "?" + params.Encode()
	}

	var bodyBytes []byte
	var bodyReader io.Reader
	if body != nil {
		var err error
		bodyBytes, err = json.Marshal(body)
		if err != nil {
			return &domain.ValidationError{Field: "body", Reason: err.Error()}
		}
		bodyReader = bytes.NewReader(bodyBytes)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+requestPath, bodyReader)
	if err != nil {
		return &domain.ValidationError{Field: "request", Reason: err.Error()}
	}

	// Sign Request. The payload embeds a fresh timestamp per call.
	for k, v := range c.signer.Headers(method, requestPath, bodyBytes) {
		req.Header.Set(k, v)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return domain.NewTransportError("send", err)
	}
	defer resp.Body.Close()

	respBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return domain.NewTransportError("read", err)
	}

	var env envelope
	if err := json.Unmarshal(respBytes, &env); err != nil {
		// Not a well-formed envelope: surface the HTTP-level failure.
		return &domain.HTTPStatusError{Status: resp.StatusCode, Body: truncate(string(respBytes), 256)}
	}

	if !env.Success {
		return &domain.ExchangeError{Message: env.Error, Status: resp.StatusCode}
	}

	if out != nil && len(env.Result) > 0 {
		if err := json.Unmarshal(env.Result, out); err != nil {
			return &domain.HTTPStatusError{Status: resp.StatusCode, Body: "unparseable result: " + err.Error()}
		}
	}

	return nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
