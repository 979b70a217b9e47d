package api

import (
	"fmt"
	"net/http"

	clienterrors "github.com/lightingmap/go-client/internal/errors"
	"github.com/lightingmap/go-client/users"
)

// APIError is the decoded error payload of a non-2xx response.
type APIError struct {
	StatusCode int    `json:"-"`
	Message    string `json:"message"`
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("server returned %d", e.StatusCode)
	}
	return fmt.Sprintf("server returned %d: %s", e.StatusCode, e.Message)
}

// Unwrap maps well-known status codes onto the client's sentinel errors
// so callers can match with errors.Is.
func (e *APIError) Unwrap() error {
	switch e.StatusCode {
	case http.StatusUnauthorized:
		return clienterrors.ErrUnauthenticated
	case http.StatusForbidden:
		return clienterrors.ErrUserNotApproved
	case http.StatusNotFound:
		return clienterrors.ErrNotFound
	default:
		return nil
	}
}

// Comune is a municipality managed through the dashboard.
type Comune struct {
	ID        string  `json:"id,omitempty"`
	Name      string  `json:"name,omitempty"`
	Province  string  `json:"province,omitempty"`
	Region    string  `json:"region,omitempty"`
	Latitude  float64 `json:"lat,omitempty"`
	Longitude float64 `json:"lng,omitempty"`
	LampCount int     `json:"lamp_count,omitempty"` // Size of the street-light inventory
}

// ComuneUpdate carries the editable fields of a comune; nil fields are
// left unchanged by the server.
type ComuneUpdate struct {
	Name     *string `json:"name,omitempty"`
	Province *string `json:"province,omitempty"`
	Region   *string `json:"region,omitempty"`
}

// Organization groups users and their assigned comuni.
type Organization struct {
	ID        string   `json:"id,omitempty"`
	Name      string   `json:"name,omitempty"`
	ComuneIDs []string `json:"comuni,omitempty"`
}

// loginResponse is the authentication endpoint's success payload.
type loginResponse struct {
	User  *users.User `json:"user"`
	Token string      `json:"token"`
}

// refreshResponse is the refresh endpoint's success payload. Any other
// shape is treated as a refresh failure.
type refreshResponse struct {
	Token string `json:"token"`
}
