// Package refresh keeps the session's access token from expiring. A
// periodic check renews the token shortly before its exp claim is
// reached, and the transport's reactive path renews it after a 401.
// Overlapping triggers converge on a single network call.
package refresh

import (
	"context"
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	clienterrors "github.com/lightingmap/go-client/internal/errors"
	"github.com/lightingmap/go-client/token"
)

const (
	defaultLeadTime      = 300 * time.Second
	defaultCheckInterval = 60 * time.Second
)

// SessionStore is the slice of the session store the coordinator needs:
// read the current token, replace it after a refresh, and destroy the
// session on terminal failure.
type SessionStore interface {
	AccessToken() string
	UpdateToken(accessToken string) error
	Logout()
}

// Client performs the refresh-token endpoint call, authenticated with the
// current (possibly near-expired but not yet rejected) token.
type Client interface {
	RefreshToken(ctx context.Context, currentToken string) (newToken string, err error)
}

// attempt is one refresh call shared by every trigger that fires while it
// is in flight.
type attempt struct {
	done  chan struct{}
	token string
	err   error
}

// Coordinator serializes refresh attempts: concurrent triggers join the
// in-flight attempt and observe its outcome, so the session's token is
// written at most once per actual refresh and a stale token can never
// overwrite a newer one.
type Coordinator struct {
	session  SessionStore
	client   Client
	leadTime time.Duration
	interval time.Duration
	nowTime  func() time.Time
	log      zerolog.Logger

	lock     sync.Mutex
	inflight *attempt

	stopOnce sync.Once
	stop     chan struct{}
}

// CoordinatorOption defines a function type to modify the Coordinator instance.
type CoordinatorOption func(*Coordinator)

// WithLeadTime overrides the margin before expiry at which a proactive
// refresh triggers.
func WithLeadTime(d time.Duration) CoordinatorOption {
	return func(c *Coordinator) {
		c.leadTime = d
	}
}

// WithCheckInterval overrides the periodic check interval.
func WithCheckInterval(d time.Duration) CoordinatorOption {
	return func(c *Coordinator) {
		c.interval = d
	}
}

// WithNowTime sets the now time function (primarily for testing)
func WithNowTime(nowFunc func() time.Time) CoordinatorOption {
	return func(c *Coordinator) {
		c.nowTime = nowFunc
	}
}

// WithLogger sets the structured logger.
func WithLogger(log zerolog.Logger) CoordinatorOption {
	return func(c *Coordinator) {
		c.log = log
	}
}

// NewCoordinator initializes a refresh coordinator with required
// dependencies. Optional configuration can be provided via options.
func NewCoordinator(session SessionStore, client Client, options ...CoordinatorOption) (*Coordinator, error) {
	if session == nil {
		return nil, errors.New("[NewCoordinator] session store is required")
	}
	if client == nil {
		return nil, errors.New("[NewCoordinator] refresh client is required")
	}

	coordinator := &Coordinator{
		session:  session,
		client:   client,
		leadTime: defaultLeadTime,
		interval: defaultCheckInterval,
		nowTime:  time.Now,
		stop:     make(chan struct{}),
	}

	for _, opt := range options {
		opt(coordinator)
	}

	return coordinator, nil
}

// Refresh renews the access token, coalescing concurrent callers onto one
// network call. On success the session's token is replaced wholesale and
// the new token is returned. On failure the session is logged out and the
// error is returned; every caller joined to the attempt sees the same
// outcome.
func (c *Coordinator) Refresh(ctx context.Context) (string, error) {
	c.lock.Lock()
	if c.inflight != nil {
		joined := c.inflight
		c.lock.Unlock()
		select {
		case <-joined.done:
			return joined.token, joined.err
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}

	a := &attempt{done: make(chan struct{})}
	c.inflight = a
	c.lock.Unlock()

	a.token, a.err = c.refresh(ctx)

	c.lock.Lock()
	c.inflight = nil
	c.lock.Unlock()
	close(a.done)

	return a.token, a.err
}

func (c *Coordinator) refresh(ctx context.Context) (string, error) {
	currentToken := c.session.AccessToken()
	if currentToken == "" {
		return "", clienterrors.ErrNoToken
	}

	newToken, err := c.client.RefreshToken(ctx, currentToken)
	if err != nil {
		c.log.Error().Err(err).Msg("token refresh failed, logging out")
		c.session.Logout()
		return "", clienterrors.Wrapf(clienterrors.ErrRefreshFailed, "%v", err)
	}

	if err := c.session.UpdateToken(newToken); err != nil {
		return "", errors.Wrap(err, "[Refresh] failed to store refreshed token")
	}

	c.log.Debug().Msg("access token refreshed")
	return newToken, nil
}

// Start launches the periodic expiry checker. It runs until the context
// is cancelled or Stop is called.
func (c *Coordinator) Start(ctx context.Context) {
	go c.run(ctx)
}

// Stop terminates the periodic checker. Safe to call multiple times.
func (c *Coordinator) Stop() {
	c.stopOnce.Do(func() {
		close(c.stop)
	})
}

func (c *Coordinator) run(ctx context.Context) {
	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-c.stop:
			return
		case <-ticker.C:
			c.CheckExpiry(ctx)
		}
	}
}

// CheckExpiry performs one proactive check: if a token is held and its
// exp claim falls within the lead time of now (boundary inclusive), a
// refresh is issued. A token that cannot be decoded is logged and the
// cycle skipped; expiry cannot be determined, so no refresh fires.
func (c *Coordinator) CheckExpiry(ctx context.Context) {
	currentToken := c.session.AccessToken()
	if currentToken == "" {
		return
	}

	exp, err := token.DecodeExpiry(currentToken)
	if err != nil {
		c.log.Warn().Err(err).Msg("expiry check: could not decode access token")
		return
	}

	if exp.Sub(c.nowTime()) > c.leadTime {
		return
	}

	if _, err := c.Refresh(ctx); err != nil {
		c.log.Warn().Err(err).Msg("proactive refresh failed")
	}
}
