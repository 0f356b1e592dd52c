package writer

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"writer-example/internal/domain"
)

const (
	defaultBaseURL = "https://api.writer.com"
	defaultTimeout = 60 * time.Second

	maxErrorBody    = 4096
	maxResponseBody = 1 << 20
)

// HTTPStatusError captures non-2xx upstream responses with status-aware context.
type HTTPStatusError struct {
	StatusCode int
	URL        string
	Body       string
}

func (e *HTTPStatusError) Error() string {
	return fmt.Sprintf("writer: unexpected status %d from %s: %s", e.StatusCode, e.URL, e.Body)
}

func (e *HTTPStatusError) HTTPStatusCode() int {
	return e.StatusCode
}

// Client calls the Writer chat completion endpoint.
type Client struct {
	baseURL    string
	httpClient *http.Client
	apiKey     domain.Credential
}

type Option func(*Client)

func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		c.baseURL = strings.TrimSpace(baseURL)
	}
}

func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// NewClient creates a Client for the given key. The key is not validated; an
// empty or wrong key surfaces as an authentication error from ChatComplete.
func NewClient(apiKey domain.Credential, opts ...Option) *Client {
	c := &Client{
		baseURL:    defaultBaseURL,
		httpClient: &http.Client{Timeout: defaultTimeout},
		apiKey:     apiKey,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) resolvedHTTPClient() *http.Client {
	if c.httpClient != nil {
		return c.httpClient
	}
	return &http.Client{Timeout: defaultTimeout}
}

func chatURL(baseURL string) string {
	base := strings.TrimRight(baseURL, "/")
	if base == "" {
		base = defaultBaseURL
	}
	if strings.HasSuffix(base, "/v1") {
		return base + "/chat"
	}
	return base + "/v1/chat"
}

// ChatComplete sends one chat request and returns the decoded response. The
// response is returned even when it carries no choices.
func (c *Client) ChatComplete(ctx context.Context, in domain.ChatRequest) (domain.ChatResponse, error) {
	if in.Model == "" {
		return domain.ChatResponse{}, errors.New("writer: model must not be empty")
	}

	body, err := json.Marshal(in)
	if err != nil {
		return domain.ChatResponse{}, fmt.Errorf("writer: marshal request: %w", err)
	}

	url := chatURL(c.baseURL)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return domain.ChatResponse{}, fmt.Errorf("writer: create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey.Expose())

	raw, err := c.doJSONRequest(req, url)
	if err != nil {
		return domain.ChatResponse{}, fmt.Errorf("writer: request failed: %w", err)
	}

	var out domain.ChatResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		return domain.ChatResponse{}, fmt.Errorf("writer: decode response: %w", err)
	}
	return out, nil
}

func (c *Client) doJSONRequest(req *http.Request, url string) ([]byte, error) {
	res, err := c.resolvedHTTPClient().Do(req)
	if err != nil {
		return nil, err
	}
	defer func() { _ = res.Body.Close() }()

	if res.StatusCode < 200 || res.StatusCode >= 300 {
		buf, _ := io.ReadAll(io.LimitReader(res.Body, maxErrorBody))
		return nil, &HTTPStatusError{
			StatusCode: res.StatusCode,
			URL:        url,
			Body:       strings.TrimSpace(string(buf)),
		}
	}

	buf, err := io.ReadAll(io.LimitReader(res.Body, maxResponseBody))
	if err != nil {
		return nil, fmt.Errorf("read response body: %w", err)
	}
	return buf, nil
}
