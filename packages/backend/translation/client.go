package translation

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"unitranslate/packages/backend/language"
)

// DefaultClientTimeout bounds a single call to the Translation API.
const DefaultClientTimeout = 30 * time.Second

// maxErrorBody limits how much of an error reply is kept in APIError.
const maxErrorBody = 4 << 10

// Client calls a remote Translation API over HTTP.
type Client struct {
	baseURL    *url.URL
	httpClient *http.Client
}

// ClientOption configures a Client during construction.
type ClientOption func(*Client)

// WithHTTPClient replaces the underlying http.Client.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) { c.httpClient = hc }
}

// WithTimeout sets the per-request timeout of the default http.Client.
func WithTimeout(timeout time.Duration) ClientOption {
	return func(c *Client) { c.httpClient = &http.Client{Timeout: timeout} }
}

// NewClient creates a client for the API rooted at baseURL.
func NewClient(baseURL string, opts ...ClientOption) (*Client, error) {
	parsed, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("parse api base url: %w", err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return nil, fmt.Errorf("api base url must be http or https: %q", baseURL)
	}

	c := &Client{
		baseURL:    parsed,
		httpClient: &http.Client{Timeout: DefaultClientTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// BaseURL returns the API root the client targets.
func (c *Client) BaseURL() string {
	return c.baseURL.String()
}

// Languages fetches GET /languages.
func (c *Client) Languages(ctx context.Context) (language.Catalog, error) {
	var catalog language.Catalog
	if err := c.do(ctx, http.MethodGet, "/languages", nil, nil, &catalog); err != nil {
		return nil, err
	}
	return catalog, nil
}

// Translate posts req to /translate.
func (c *Client) Translate(ctx context.Context, req Request) (Response, error) {
	var resp Response
	if err := c.do(ctx, http.MethodPost, "/translate", nil, req, &resp); err != nil {
		return Response{}, err
	}
	return resp, nil
}

// Detect fetches GET /detect for text.
func (c *Client) Detect(ctx context.Context, text string) (DetectResponse, error) {
	var resp DetectResponse
	query := url.Values{"text": {text}}
	if err := c.do(ctx, http.MethodGet, "/detect", query, nil, &resp); err != nil {
		return DetectResponse{}, err
	}
	return resp, nil
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out any) error {
	endpoint := c.baseURL.JoinPath(path)
	if query != nil {
		endpoint.RawQuery = query.Encode()
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal %s payload: %w", path, err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint.String(), reader)
	if err != nil {
		return fmt.Errorf("build %s request: %w", path, err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return decodeAPIError(resp)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s response: %w", path, err)
	}
	return nil
}

func decodeAPIError(resp *http.Response) error {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	apiErr := &APIError{StatusCode: resp.StatusCode}

	var payload struct {
		Error  string `json:"error"`
		Detail string `json:"detail"`
	}
	switch {
	case json.Unmarshal(raw, &payload) == nil && payload.Error != "":
		apiErr.Message = payload.Error
	case payload.Detail != "":
		apiErr.Message = payload.Detail
	default:
		apiErr.Message = strings.TrimSpace(string(raw))
	}
	return apiErr
}
