// Package token reads claims out of the access token issued by the
// Lighting-Map API. No secret is available client-side, so tokens are
// decoded without signature verification and are never re-encoded.
package token

import (
	"errors"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"

	clienterrors "github.com/lightingmap/go-client/internal/errors"
)

// NowTimeFunc returns the current time. It can be overridden in tests.
var NowTimeFunc = time.Now

// DecodeExpiry extracts the exp claim from a raw access token.
// The token is treated as read-only: the three base64url segments are
// parsed in place and never mutated or re-encoded.
func DecodeExpiry(rawToken string) (time.Time, error) {
	if rawToken == "" {
		return time.Time{}, clienterrors.ErrNoToken
	}

	unverifiedToken, _, err := jwtlib.NewParser().ParseUnverified(rawToken, jwtlib.MapClaims{})
	if err != nil {
		return time.Time{}, clienterrors.Wrapf(clienterrors.ErrInvalidToken, "failed to parse token, %v", err)
	}

	claims, ok := unverifiedToken.Claims.(jwtlib.MapClaims)
	if !ok {
		return time.Time{}, errors.New("error extracting claims from token")
	}

	exp, ok := claims["exp"].(float64)
	if !ok {
		return time.Time{}, clienterrors.ErrMissingExpiry
	}

	return time.Unix(int64(exp), 0), nil
}

// ExpiresWithin reports whether the token's expiry falls within the given
// lead time from now. The boundary is inclusive: a token exactly leadTime
// away counts as expiring.
func ExpiresWithin(rawToken string, leadTime time.Duration) (bool, error) {
	exp, err := DecodeExpiry(rawToken)
	if err != nil {
		return false, err
	}
	return exp.Sub(NowTimeFunc()) <= leadTime, nil
}
