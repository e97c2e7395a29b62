// Package wordpress is a client for the WordPress REST API (wp/v2),
// authenticated with an application password.
package wordpress

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/dfryer1193/tusitala/blog/domain"
	"github.com/rs/zerolog/log"
)

const (
	apiPrefix          = "/wp-json/wp/v2"
	defaultHTTPTimeout = 30 * time.Second
	maxErrorBody       = 4096
)

// Config describes the WordPress client configuration.
type Config struct {
	BaseURL     string
	Username    string
	AppPassword string
	HTTPClient  *http.Client
	Timeout     time.Duration
}

// Client wraps the WordPress REST API.
type Client struct {
	baseURL     string
	username    string
	appPassword string
	http        *http.Client
}

var _ domain.RemoteBlog = (*Client)(nil)

// New creates a Client from the supplied configuration.
func New(cfg Config) (*Client, error) {
	base := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if base == "" {
		return nil, errors.New("wordpress: base url is required")
	}
	parsed, err := url.Parse(base)
	if err != nil {
		return nil, fmt.Errorf("wordpress: parse base url: %w", err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return nil, fmt.Errorf("wordpress: base url %q must be http or https", base)
	}

	client := cfg.HTTPClient
	if client == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = defaultHTTPTimeout
		}
		client = &http.Client{Timeout: timeout}
	}

	return &Client{
		baseURL:     base,
		username:    cfg.Username,
		appPassword: cfg.AppPassword,
		http:        client,
	}, nil
}

// BaseURL returns the site URL the client talks to.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// PostURL returns the canonical short link of a post.
func (c *Client) PostURL(id int) string {
	return fmt.Sprintf("%s/?p=%d", c.baseURL, id)
}

// TestConnection reports whether the API is reachable with the configured
// credentials.
func (c *Client) TestConnection(ctx context.Context) bool {
	if err := c.doJSON(ctx, "test connection", http.MethodGet, "/posts?per_page=1", nil, nil); err != nil {
		log.Warn().Err(err).Str("base_url", c.baseURL).Msg("WordPress connection test failed")
		return false
	}
	return true
}

func (c *Client) endpoint(path string) string {
	return c.baseURL + apiPrefix + path
}

// newRequest builds a request with basic auth applied.
func (c *Client) newRequest(ctx context.Context, method, path string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.endpoint(path), body)
	if err != nil {
		return nil, err
	}
	req.SetBasicAuth(c.username, c.appPassword)
	req.Header.Set("Accept", "application/json")
	return req, nil
}

// doJSON sends payload (when non-nil) as JSON and decodes the response into
// out (when non-nil).
func (c *Client) doJSON(ctx context.Context, op, method, path string, payload any, out any) error {
	var body io.Reader
	if payload != nil {
		encoded, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("wordpress: %s: encode request: %w", op, err)
		}
		body = bytes.NewReader(encoded)
	}

	req, err := c.newRequest(ctx, method, path, body)
	if err != nil {
		return fmt.Errorf("wordpress: %s: build request: %w", op, err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	return c.do(req, op, out)
}

func (c *Client) do(req *http.Request, op string, out any) error {
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("wordpress: %s request failed: %w", op, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return newRemoteAPIError(op, resp.StatusCode, raw)
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("wordpress: %s: decode response: %w", op, err)
	}
	return nil
}

// errorBody is the shape of a WordPress REST error response.
type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Data    struct {
		Status int `json:"status"`
		TermID int `json:"term_id"`
	} `json:"data"`
}

func newRemoteAPIError(op string, status int, raw []byte) *domain.RemoteAPIError {
	apiErr := &domain.RemoteAPIError{
		Op:         op,
		StatusCode: status,
		Body:       strings.TrimSpace(string(raw)),
	}

	var parsed errorBody
	if json.Unmarshal(raw, &parsed) == nil {
		apiErr.Code = parsed.Code
	}

	return apiErr
}

// existingTermID extracts the id of the conflicting term from a term_exists
// rejection.
func existingTermID(err error) (int, bool) {
	var apiErr *domain.RemoteAPIError
	if !errors.As(err, &apiErr) || apiErr.Code != "term_exists" {
		return 0, false
	}

	var parsed errorBody
	if json.Unmarshal([]byte(apiErr.Body), &parsed) != nil || parsed.Data.TermID <= 0 {
		return 0, false
	}
	return parsed.Data.TermID, true
}

// renderedText is the {"rendered": "..."} envelope WordPress returns for text fields.
type renderedText struct {
	Rendered string `json:"rendered"`
}

// rawText is the {"raw": "..."} envelope accepted for text fields on write.
type rawText struct {
	Raw string `json:"raw"`
}
