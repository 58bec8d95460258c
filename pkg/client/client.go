// Package client is a Go SDK for the Stockflows HTTP API. It speaks the
// envelope contract, carries the session cookie, and scopes requests to an
// org and branch via headers.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"sync"
	"time"
)

// Org/branch scope headers
const (
	orgIDHeader    = "X-Org-Id"
	branchIDHeader = "X-Branch-Id"
)

// Client is a Stockflows API client. It is safe for concurrent use.
type Client struct {
	baseURL    string
	httpClient *http.Client

	mu       sync.RWMutex
	orgID    string
	branchID string

	onUnauthorized     func()
	unauthorizedOnce   sync.Once
	unauthorizedActive bool
}

// Option configures a Client
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client. A cookie jar is
// installed if the given client has none.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithTimeout sets the request timeout, default 30s
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.httpClient.Timeout = d }
}

// WithUnauthorizedCallback registers a handler invoked exactly once on the
// first 401 response (login excepted). Typical use: redirect to login.
func WithUnauthorizedCallback(fn func()) Option {
	return func(c *Client) {
		c.onUnauthorized = fn
		c.unauthorizedActive = true
	}
}

// New creates a client for the API at baseURL
func New(baseURL string, opts ...Option) (*Client, error) {
	if _, err := url.Parse(baseURL); err != nil {
		return nil, fmt.Errorf("invalid base URL: %w", err)
	}

	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}

	if c.httpClient.Jar == nil {
		jar, err := cookiejar.New(nil)
		if err != nil {
			return nil, err
		}
		c.httpClient.Jar = jar
	}
	return c, nil
}

// SetOrg scopes subsequent requests to an org; empty clears the scope
func (c *Client) SetOrg(orgID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.orgID = orgID
}

// SetBranch scopes subsequent requests to a branch; empty clears the scope
func (c *Client) SetBranch(branchID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.branchID = branchID
}

// envelope is the success wrapper the API returns
type envelope struct {
	Data json.RawMessage `json:"data"`
	Meta *Meta           `json:"meta"`
}

// Meta is the pagination block of list responses
type Meta struct {
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"totalPages"`
}

// Get issues a GET and decodes the envelope's data into out
func (c *Client) Get(ctx context.Context, path string, out interface{}) (*Meta, error) {
	return c.doJSON(ctx, http.MethodGet, path, nil, out)
}

// Post issues a POST with a JSON body and decodes the envelope's data into out
func (c *Client) Post(ctx context.Context, path string, body, out interface{}) (*Meta, error) {
	return c.doJSON(ctx, http.MethodPost, path, body, out)
}

// Put issues a PUT with a JSON body and decodes the envelope's data into out
func (c *Client) Put(ctx context.Context, path string, body, out interface{}) (*Meta, error) {
	return c.doJSON(ctx, http.MethodPut, path, body, out)
}

// Patch issues a PATCH with a JSON body and decodes the envelope's data into out
func (c *Client) Patch(ctx context.Context, path string, body, out interface{}) (*Meta, error) {
	return c.doJSON(ctx, http.MethodPatch, path, body, out)
}

// Delete issues a DELETE
func (c *Client) Delete(ctx context.Context, path string) error {
	_, err := c.doJSON(ctx, http.MethodDelete, path, nil, nil)
	return err
}

// Blob downloads a binary response, returning its bytes, content type and
// suggested filename
func (c *Client) Blob(ctx context.Context, path string) ([]byte, string, string, error) {
	req, err := c.newRequest(ctx, http.MethodGet, path, nil, "")
	if err != nil {
		return nil, "", "", err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, "", "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, "", "", c.apiError(resp, path)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, "", "", err
	}
	return data, resp.Header.Get("Content-Type"), filenameFromDisposition(resp.Header.Get("Content-Disposition")), nil
}

// Upload sends a multipart form with one file field plus extra form fields,
// decoding the envelope's data into out
func (c *Client) Upload(ctx context.Context, path, field, filename string, file io.Reader, fields map[string]string, out interface{}) (*Meta, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	part, err := mw.CreateFormFile(field, filename)
	if err != nil {
		return nil, err
	}
	if _, err := io.Copy(part, file); err != nil {
		return nil, err
	}
	for k, v := range fields {
		if err := mw.WriteField(k, v); err != nil {
			return nil, err
		}
	}
	if err := mw.Close(); err != nil {
		return nil, err
	}

	req, err := c.newRequest(ctx, http.MethodPost, path, &buf, mw.FormDataContentType())
	if err != nil {
		return nil, err
	}
	return c.do(req, path, out)
}

func (c *Client) doJSON(ctx context.Context, method, path string, body, out interface{}) (*Meta, error) {
	var reader io.Reader
	contentType := ""
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return nil, err
		}
		reader = bytes.NewReader(encoded)
		contentType = "application/json"
	}

	req, err := c.newRequest(ctx, method, path, reader, contentType)
	if err != nil {
		return nil, err
	}
	return c.do(req, path, out)
}

func (c *Client) newRequest(ctx context.Context, method, path string, body io.Reader, contentType string) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, err
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	req.Header.Set("Accept", "application/json")

	c.mu.RLock()
	if c.orgID != "" {
		req.Header.Set(orgIDHeader, c.orgID)
	}
	if c.branchID != "" {
		req.Header.Set(branchIDHeader, c.branchID)
	}
	c.mu.RUnlock()

	return req, nil
}

func (c *Client) do(req *http.Request, path string, out interface{}) (*Meta, error) {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, c.apiError(resp, path)
	}

	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil, nil
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, fmt.Errorf("decoding response: %w", err)
	}
	if env.Data == nil {
		// not enveloped; decode the body directly
		if err := json.Unmarshal(raw, out); err != nil {
			return nil, fmt.Errorf("decoding response: %w", err)
		}
		return nil, nil
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return nil, fmt.Errorf("decoding response data: %w", err)
	}
	return env.Meta, nil
}

func (c *Client) apiError(resp *http.Response, path string) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	apiErr := parseAPIError(resp.StatusCode, body)

	if resp.StatusCode == http.StatusUnauthorized && !isLoginPath(path) && c.unauthorizedActive {
		c.unauthorizedOnce.Do(func() {
			if c.onUnauthorized != nil {
				c.onUnauthorized()
			}
		})
	}
	return apiErr
}

func isLoginPath(path string) bool {
	return strings.HasSuffix(strings.TrimRight(path, "/"), "/auth/login")
}

func filenameFromDisposition(disposition string) string {
	const marker = `filename="`
	idx := strings.Index(disposition, marker)
	if idx < 0 {
		return ""
	}
	rest := disposition[idx+len(marker):]
	if end := strings.Index(rest, `"`); end >= 0 {
		return rest[:end]
	}
	return ""
}
