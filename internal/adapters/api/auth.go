package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	domainauth "github.com/Mendozape/PayComMobile/internal/domain/auth"
	"github.com/Mendozape/PayComMobile/internal/ports"
)

// ErrMissingToken is returned when a 2xx login response carries no token.
var ErrMissingToken = errors.New("login response has no token")

const xsrfCookie = "XSRF-TOKEN"

// Login posts the credentials to /login, after the CSRF-cookie preflight when
// enabled, and returns the issued token.
func (c *Client) Login(ctx context.Context, in ports.LoginInput) (ports.LoginResult, error) {
	headers := http.Header{}
	if c.csrf {
		xsrf, err := c.csrfPreflight(ctx)
		if err != nil {
			return ports.LoginResult{}, err
		}
		if xsrf != "" {
			headers.Set("X-XSRF-TOKEN", xsrf)
		}
	}

	var out struct {
		Token       string `json:"token"`
		AccessToken string `json:"access_token"`
	}
	body := map[string]string{"email": in.Email, "password": in.Password}
	if err := c.do(ctx, "", http.MethodPost, c.endpoint("login", nil), body, headers, &out); err != nil {
		return ports.LoginResult{}, fmt.Errorf("login: %w", err)
	}

	token := out.Token
	if token == "" {
		token = out.AccessToken
	}
	if token == "" {
		return ports.LoginResult{}, ErrMissingToken
	}
	return ports.LoginResult{Token: token}, nil
}

// csrfPreflight primes the cookie jar and returns the decoded XSRF token.
func (c *Client) csrfPreflight(ctx context.Context) (string, error) {
	target := c.origin.JoinPath("sanctum", "csrf-cookie")
	if err := c.do(ctx, "", http.MethodGet, target.String(), nil, nil, nil); err != nil {
		return "", fmt.Errorf("csrf preflight: %w", err)
	}
	for _, ck := range c.jar.Cookies(c.base) {
		if ck.Name == xsrfCookie {
			v, err := url.QueryUnescape(ck.Value)
			if err != nil {
				return ck.Value, nil //nolint:nilerr // an undecodable cookie is sent as-is
			}
			return v, nil
		}
	}
	return "", nil
}

// CurrentUser fetches /user with the bearer token.
func (c *Client) CurrentUser(ctx context.Context, token string) (domainauth.User, error) {
	if strings.TrimSpace(token) == "" {
		return domainauth.User{}, errors.New("token is required")
	}
	var raw json.RawMessage
	if err := c.do(ctx, token, http.MethodGet, c.endpoint("user", nil), nil, nil, &raw); err != nil {
		return domainauth.User{}, fmt.Errorf("current user: %w", err)
	}

	var u domainauth.User
	if err := json.Unmarshal(unwrap(raw), &u); err != nil {
		return domainauth.User{}, fmt.Errorf("decode user: %w", err)
	}
	if u.ID == 0 && u.Email == "" {
		return domainauth.User{}, errors.New("current user payload is empty")
	}
	return u, nil
}
