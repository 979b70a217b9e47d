package config

import "time"

type AuthConfig interface {
	GetRefreshLeadTime() time.Duration
	GetExpiryCheckInterval() time.Duration
	GetRequestTimeout() time.Duration
}

type Auth struct{}

var _ AuthConfig = Auth{}

// GetRefreshLeadTime is the margin before token expiry at which a
// proactive refresh is triggered.
func (Auth) GetRefreshLeadTime() time.Duration {
	return 300 * time.Second
}

// GetExpiryCheckInterval is how often the periodic expiry check runs
// while a token is held.
func (Auth) GetExpiryCheckInterval() time.Duration {
	return 60 * time.Second
}

// GetRequestTimeout applies to every API call, refresh calls included.
func (Auth) GetRequestTimeout() time.Duration {
	return 30 * time.Second
}
