// Package api is the Lighting-Map REST client. The authenticated surface
// rides on the transport pipeline, which handles bearer attachment and
// 401 recovery; call sites here never see tokens.
package api

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/lightingmap/go-client/transport"
	"github.com/lightingmap/go-client/users"
)

// Client is the authenticated CRUD surface of the dashboard backend.
type Client struct {
	baseURL    string
	httpClient *http.Client
	log        zerolog.Logger
}

// ClientOption defines a function type to modify the Client instance.
type ClientOption func(*Client)

// WithTimeout overrides the request timeout applied to every call.
func WithTimeout(d time.Duration) ClientOption {
	return func(c *Client) {
		c.httpClient.Timeout = d
	}
}

// WithLogger sets the structured logger.
func WithLogger(log zerolog.Logger) ClientOption {
	return func(c *Client) {
		c.log = log
	}
}

// NewClient creates the authenticated API client. Every request flows
// through an AuthTransport built from the given token reader and
// refresher.
func NewClient(baseURL string, tokens transport.TokenReader, refresher transport.Refresher, options ...ClientOption) (*Client, error) {
	if tokens == nil {
		return nil, errors.New("[NewClient] token reader is required")
	}
	if refresher == nil {
		return nil, errors.New("[NewClient] refresher is required")
	}

	client := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		log:     zerolog.Nop(),
	}
	client.httpClient = &http.Client{
		Transport: &transport.AuthTransport{
			Tokens:    tokens,
			Refresher: refresher,
		},
		Timeout: 30 * time.Second,
	}

	for _, opt := range options {
		opt(client)
	}

	if at, ok := client.httpClient.Transport.(*transport.AuthTransport); ok {
		at.Log = client.log
	}

	return client, nil
}

// ListComuni returns every comune visible to the current user.
func (c *Client) ListComuni(ctx context.Context) ([]Comune, error) {
	var out []Comune
	if err := doJSON(ctx, c.httpClient, http.MethodGet, c.baseURL+"/comuni", "", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// GetComune fetches a single comune by ID.
func (c *Client) GetComune(ctx context.Context, comuneID string) (*Comune, error) {
	var out Comune
	if err := doJSON(ctx, c.httpClient, http.MethodGet, c.comunePath(comuneID), "", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// CreateComune registers a new comune and returns the stored record.
func (c *Client) CreateComune(ctx context.Context, comune Comune) (*Comune, error) {
	var out Comune
	if err := doJSON(ctx, c.httpClient, http.MethodPost, c.baseURL+"/comuni", "", comune, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateComune applies a partial update; nil fields are left unchanged.
func (c *Client) UpdateComune(ctx context.Context, comuneID string, update ComuneUpdate) (*Comune, error) {
	var out Comune
	if err := doJSON(ctx, c.httpClient, http.MethodPut, c.comunePath(comuneID), "", update, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// DeleteComune removes a comune and its lamp inventory.
func (c *Client) DeleteComune(ctx context.Context, comuneID string) error {
	return doJSON(ctx, c.httpClient, http.MethodDelete, c.comunePath(comuneID), "", nil, nil)
}

// ListUsers returns the dashboard users visible to the current user.
func (c *Client) ListUsers(ctx context.Context) ([]users.User, error) {
	var out []users.User
	if err := doJSON(ctx, c.httpClient, http.MethodGet, c.baseURL+"/users", "", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// UpdateUserProfile syncs a profile edit to the server and returns the
// stored record. Callers then push it into the session store via
// UpdateUser.
func (c *Client) UpdateUserProfile(ctx context.Context, user *users.User) (*users.User, error) {
	var out users.User
	path := c.baseURL + "/users/" + url.PathEscape(user.ID)
	if err := doJSON(ctx, c.httpClient, http.MethodPut, path, "", user, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ListOrganizations returns every organization.
func (c *Client) ListOrganizations(ctx context.Context) ([]Organization, error) {
	var out []Organization
	if err := doJSON(ctx, c.httpClient, http.MethodGet, c.baseURL+"/organizations", "", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// ExportLamps triggers the CSV export of a comune's street-light
// inventory and returns the raw bytes.
func (c *Client) ExportLamps(ctx context.Context, comuneID string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.comunePath(comuneID)+"/lamps/export", nil)
	if err != nil {
		return nil, errors.Wrap(err, "[ExportLamps] failed to build request")
	}
	req.Header.Set("Accept", "text/csv")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, "[ExportLamps] request failed")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, decodeAPIError(resp)
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.Wrap(err, "[ExportLamps] failed to read export")
	}
	return data, nil
}

func (c *Client) comunePath(comuneID string) string {
	return fmt.Sprintf("%s/comuni/%s", c.baseURL, url.PathEscape(comuneID))
}
