package api

import (
	"context"
	"net/http"
	"strings"

	"github.com/rs/zerolog"

	clienterrors "github.com/lightingmap/go-client/internal/errors"
	"github.com/lightingmap/go-client/users"
)

// AuthClient talks to the authentication and refresh endpoints on a bare
// HTTP client, outside the interceptor pipeline: login has no token to
// attach, and a refresh call must never trigger a reactive refresh of
// itself.
type AuthClient struct {
	baseURL    string
	httpClient *http.Client
	log        zerolog.Logger
}

// AuthClientOption defines a function type to modify the AuthClient instance.
type AuthClientOption func(*AuthClient)

// WithAuthHTTPClient replaces the underlying HTTP client (primarily for
// injecting test servers and timeouts).
func WithAuthHTTPClient(hc *http.Client) AuthClientOption {
	return func(c *AuthClient) {
		c.httpClient = hc
	}
}

// WithAuthLogger sets the structured logger.
func WithAuthLogger(log zerolog.Logger) AuthClientOption {
	return func(c *AuthClient) {
		c.log = log
	}
}

// NewAuthClient creates a client for the unauthenticated auth surface.
func NewAuthClient(baseURL string, options ...AuthClientOption) *AuthClient {
	client := &AuthClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: http.DefaultClient,
		log:        zerolog.Nop(),
	}
	for _, opt := range options {
		opt(client)
	}
	return client
}

// Login exchanges credentials for a user profile and access token.
// A rejected login surfaces the server's error; no session state is
// touched here.
func (c *AuthClient) Login(ctx context.Context, email, password string) (*users.User, string, error) {
	payload := map[string]string{
		"email":    email,
		"password": password,
	}

	var out loginResponse
	if err := doJSON(ctx, c.httpClient, http.MethodPost, c.baseURL+"/login", "", payload, &out); err != nil {
		var apiErr *APIError
		if clienterrors.As(err, &apiErr) {
			return nil, "", clienterrors.Wrapf(clienterrors.ErrInvalidCredentials, "%v", apiErr)
		}
		return nil, "", err
	}
	if out.User == nil || out.Token == "" {
		return nil, "", clienterrors.ErrMalformedResponse
	}

	c.log.Info().Str("email", email).Msg("login succeeded")
	return out.User, out.Token, nil
}

// RefreshToken exchanges the current token for a new one. The call is
// authenticated with the current token; the endpoint takes no body.
func (c *AuthClient) RefreshToken(ctx context.Context, currentToken string) (string, error) {
	var out refreshResponse
	if err := doJSON(ctx, c.httpClient, http.MethodPost, c.baseURL+"/users/refresh-token", currentToken, nil, &out); err != nil {
		return "", err
	}
	if out.Token == "" {
		return "", clienterrors.ErrMalformedResponse
	}
	return out.Token, nil
}
