// Package api is the REST client for the resident-management backend. It
// speaks JSON, authenticates with bearer tokens and unwraps the optional
// {"data": ...} envelope the backend puts around payloads.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"

	"golang.org/x/net/publicsuffix"
	"golang.org/x/oauth2"
	"golang.org/x/time/rate"
)

// Options configures a Client.
type Options struct {
	// BaseURL is the API root, e.g. "http://192.168.1.16:8000/api".
	BaseURL string
	// Timeout bounds every request. Zero means 15s.
	Timeout time.Duration
	// CSRFPreflight fetches <origin>/sanctum/csrf-cookie before login.
	CSRFPreflight bool
	// Limiter paces outbound requests; nil disables pacing.
	Limiter *rate.Limiter
	// Transport overrides the base round tripper (tests).
	Transport http.RoundTripper
	Logger    *slog.Logger
}

// Client implements ports.Backend and ports.ResourceBackend over HTTP.
type Client struct {
	base   *url.URL
	origin *url.URL
	csrf   bool

	transport http.RoundTripper
	jar       http.CookieJar
	timeout   time.Duration
	logger    *slog.Logger
}

const maxBodyBytes = 8 << 20

// New creates a Client.
func New(opts Options) (*Client, error) {
	raw := strings.TrimRight(strings.TrimSpace(opts.BaseURL), "/")
	if raw == "" {
		return nil, errors.New("api base URL is required")
	}
	base, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("parse api base URL: %w", err)
	}
	if base.Scheme != "http" && base.Scheme != "https" {
		return nil, fmt.Errorf("api base URL must be http or https, got %q", base.Scheme)
	}

	jar, err := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
	if err != nil {
		return nil, fmt.Errorf("cookie jar: %w", err)
	}

	baseTransport := opts.Transport
	if baseTransport == nil {
		baseTransport = http.DefaultTransport
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Client{
		base:      base,
		origin:    &url.URL{Scheme: base.Scheme, Host: base.Host},
		csrf:      opts.CSRFPreflight,
		transport: &headerTransport{base: baseTransport, limiter: opts.Limiter},
		jar:       jar,
		timeout:   timeout,
		logger:    logger.With("component", "api_client"),
	}, nil
}

// Origin returns scheme://host of the API, where storage and CSRF endpoints live.
func (c *Client) Origin() string { return c.origin.String() }

// httpClient returns a client that adds the bearer token when token is set.
func (c *Client) httpClient(token string) *http.Client {
	rt := c.transport
	if token != "" {
		rt = &oauth2.Transport{
			Source: oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token, TokenType: "Bearer"}),
			Base:   c.transport,
		}
	}
	return &http.Client{Transport: rt, Jar: c.jar, Timeout: c.timeout}
}

func (c *Client) endpoint(path string, query url.Values) string {
	u := *c.base
	u.Path = strings.TrimRight(u.Path, "/") + "/" + strings.TrimLeft(path, "/")
	u.RawQuery = query.Encode()
	return u.String()
}

// do sends a request and decodes a successful JSON response into out (which
// may be nil). Non-2xx responses become *StatusError.
func (c *Client) do(ctx context.Context, token, method, target string, body any, extra http.Header, out any) error {
	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, vs := range extra {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}

	start := time.Now()
	resp, err := c.httpClient(token).Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, req.URL.Path, err)
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}
	c.logger.DebugContext(ctx, "api request",
		"method", method,
		"path", req.URL.Path,
		"status", resp.StatusCode,
		"duration_ms", time.Since(start).Milliseconds(),
	)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return newStatusError(resp.StatusCode, payload)
	}
	if out == nil || len(bytes.TrimSpace(payload)) == 0 {
		return nil
	}
	if err := json.Unmarshal(payload, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// unwrap returns the value under "data" when raw is an object carrying that
// key, otherwise raw itself.
func unwrap(raw json.RawMessage) json.RawMessage {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return trimmed
	}
	var env map[string]json.RawMessage
	if err := json.Unmarshal(trimmed, &env); err != nil {
		return trimmed
	}
	if data, ok := env["data"]; ok {
		return data
	}
	return trimmed
}
