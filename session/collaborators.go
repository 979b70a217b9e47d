package session

import (
	"github.com/rs/zerolog"
)

// Notifier delivers fire-and-forget success/failure toasts to the end
// user. Not required for correctness; purely observability.
type Notifier interface {
	Success(message string)
	Error(message string)
}

// Navigator sends the user to the login entry point after logout.
type Navigator interface {
	GotoLogin()
}

// LogNotifier is the default Notifier: it writes notifications to the
// structured log instead of a UI surface.
type LogNotifier struct {
	Log zerolog.Logger
}

var _ Notifier = LogNotifier{}

func (n LogNotifier) Success(message string) {
	n.Log.Info().Str("notification", "success").Msg(message)
}

func (n LogNotifier) Error(message string) {
	n.Log.Warn().Str("notification", "error").Msg(message)
}

// NopNavigator is the default Navigator for embedders with no navigation
// surface of their own.
type NopNavigator struct{}

var _ Navigator = NopNavigator{}

func (NopNavigator) GotoLogin() {}
