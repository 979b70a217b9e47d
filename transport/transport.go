// Package transport wraps every outgoing API call so call sites never
// touch tokens: the current bearer credential is attached per request and
// a 401 response triggers one refresh-and-retry pass.
package transport

import (
	"context"
	"io"
	"net/http"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

const (
	// HeaderRequestID correlates client log lines with server logs.
	HeaderRequestID = "X-Request-ID"

	headerAuthorization = "Authorization"
	bearerPrefix        = "Bearer "
)

// TokenReader exposes the session's current access token. The transport
// reads it on every request, so the attached token is always current and
// no re-registration on token change is needed.
type TokenReader interface {
	AccessToken() string
}

// Refresher renews the token after a 401. On failure the refresher is
// responsible for destroying the session (logout).
type Refresher interface {
	Refresh(ctx context.Context) (string, error)
}

// retriedKey marks a request as already retried once. The marker travels
// with the request through the context, immutable, so the retry-once
// guarantee holds no matter how the request is cloned.
type contextKey string

const retriedKey contextKey = "auth_retried"

func markRetried(ctx context.Context) context.Context {
	return context.WithValue(ctx, retriedKey, true)
}

func wasRetried(ctx context.Context) bool {
	retried, _ := ctx.Value(retriedKey).(bool)
	return retried
}

// AuthTransport is an http.RoundTripper implementing the interceptor
// pipeline. Requests without a session token pass through untouched, so
// unauthenticated calls such as login are unaffected.
type AuthTransport struct {
	Base      http.RoundTripper // nil means http.DefaultTransport
	Tokens    TokenReader
	Refresher Refresher
	Log       zerolog.Logger
}

var _ http.RoundTripper = (*AuthTransport)(nil)

func (t *AuthTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	resp, err := t.send(req, t.Tokens.AccessToken())
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusUnauthorized {
		return resp, nil
	}
	if wasRetried(req.Context()) {
		// Already retried once; the 401 propagates as-is.
		return resp, nil
	}

	newToken, refreshErr := t.Refresher.Refresh(req.Context())
	if refreshErr != nil {
		// The refresher has logged out; the original 401 propagates so
		// the caller can abandon whatever it was doing.
		t.Log.Warn().Err(refreshErr).Str("url", req.URL.Path).Msg("reactive refresh failed")
		return resp, nil
	}

	retry, ok := t.rewind(req)
	if !ok {
		return resp, nil
	}
	drain(resp)

	t.Log.Debug().Str("url", req.URL.Path).Msg("retrying request with refreshed token")
	// The retry carries the token produced by this specific refresh, not
	// a re-read that could observe a stale value captured earlier.
	return t.send(retry, newToken)
}

// send clones the request, attaches the bearer credential and a request
// ID, and dispatches it on the base transport. The caller's request is
// never mutated, per the RoundTripper contract.
func (t *AuthTransport) send(req *http.Request, accessToken string) (*http.Response, error) {
	out := req.Clone(req.Context())
	if out.Header.Get(HeaderRequestID) == "" {
		out.Header.Set(HeaderRequestID, uuid.New().String())
	}
	if accessToken != "" {
		out.Header.Set(headerAuthorization, bearerPrefix+accessToken)
	}
	return t.base().RoundTrip(out)
}

// rewind produces a retryable copy of the request, marked retried. A
// consumed body is recreated via GetBody; a request whose body cannot be
// replayed is not retried.
func (t *AuthTransport) rewind(req *http.Request) (*http.Request, bool) {
	retry := req.Clone(markRetried(req.Context()))
	if req.Body == nil || req.GetBody == nil {
		if req.Body != nil {
			return nil, false
		}
		return retry, true
	}

	body, err := req.GetBody()
	if err != nil {
		t.Log.Warn().Err(err).Msg("request body could not be replayed, skipping retry")
		return nil, false
	}
	retry.Body = body
	return retry, true
}

func (t *AuthTransport) base() http.RoundTripper {
	if t.Base != nil {
		return t.Base
	}
	return http.DefaultTransport
}

func drain(resp *http.Response) {
	if resp.Body == nil {
		return
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	_ = resp.Body.Close()
}
