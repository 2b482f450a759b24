package visiology

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"
)

const (
	tokenPath     = "keycloak/realms/Visiology/protocol/openid-connect/token"
	oauthClientID = "visiology_designer"
	oauthScope    = "openid data_management_service formula_engine workspace_service dashboard_service"

	// refresh slightly before Keycloak expires the token
	tokenLeeway = 30 * time.Second
)

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int64  `json:"expires_in"`
}

type authState struct {
	mu     sync.Mutex
	header string
	expiry time.Time
	now    func() time.Time
}

// AuthHeader returns a bearer Authorization header value, performing the
// password-grant exchange when no still-valid token is cached. Every caller
// therefore holds a valid credential without re-authenticating per request.
func (c *Client) AuthHeader(ctx context.Context) (string, error) {
	c.auth.mu.Lock()
	defer c.auth.mu.Unlock()

	if c.auth.header != "" && c.auth.now().Before(c.auth.expiry) {
		return c.auth.header, nil
	}

	token, err := c.authenticate(ctx)
	if err != nil {
		return "", err
	}

	c.auth.header = "Bearer " + token.AccessToken
	c.auth.expiry = c.auth.now().Add(time.Duration(token.ExpiresIn)*time.Second - tokenLeeway)
	return c.auth.header, nil
}

func (c *Client) authenticate(ctx context.Context) (tokenResponse, error) {
	form := url.Values{
		"client_id":  {oauthClientID},
		"grant_type": {"password"},
		"scope":      {oauthScope},
		"username":   {c.username},
		"password":   {c.password},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint(tokenPath),
		strings.NewReader(form.Encode()))
	if err != nil {
		return tokenResponse{}, &AuthError{Err: err}
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.http.Do(req)
	if err != nil {
		return tokenResponse{}, &AuthError{Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return tokenResponse{}, &AuthError{Status: resp.StatusCode}
	}

	var token tokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&token); err != nil {
		return tokenResponse{}, &AuthError{Err: err}
	}
	if token.AccessToken == "" {
		return tokenResponse{}, &AuthError{Err: errMissingAccessToken}
	}
	return token, nil
}

var errMissingAccessToken = errors.New("token response has no access_token field")
