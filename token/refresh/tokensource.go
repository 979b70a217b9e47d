package refresh

import (
	"context"

	"golang.org/x/oauth2"

	clienterrors "github.com/lightingmap/go-client/internal/errors"
	"github.com/lightingmap/go-client/token"
)

// TokenSource adapts the coordinator to golang.org/x/oauth2 for embedders
// that already speak that interface. Token returns the session's current
// credential, refreshing it first when it falls within the lead time.
func (c *Coordinator) TokenSource() oauth2.TokenSource {
	return tokenSource{coordinator: c}
}

type tokenSource struct {
	coordinator *Coordinator
}

var _ oauth2.TokenSource = tokenSource{}

func (ts tokenSource) Token() (*oauth2.Token, error) {
	c := ts.coordinator

	raw := c.session.AccessToken()
	if raw == "" {
		return nil, clienterrors.ErrNoToken
	}

	exp, err := token.DecodeExpiry(raw)
	if err == nil && exp.Sub(c.nowTime()) <= c.leadTime {
		refreshed, refreshErr := c.Refresh(context.Background())
		if refreshErr != nil {
			return nil, refreshErr
		}
		raw = refreshed
		exp, _ = token.DecodeExpiry(raw)
	}

	return &oauth2.Token{
		AccessToken: raw,
		TokenType:   "Bearer",
		Expiry:      exp,
	}, nil
}
