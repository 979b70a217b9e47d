package session

import (
	"github.com/lightingmap/go-client/users"
)

// Session is the combination of the authenticated user profile and the
// current access token. Both fields are set together on login and cleared
// together on logout; the only single-field mutations are UpdateUser
// (profile edits) and UpdateToken (refresh).
type Session struct {
	User        *users.User // nil when logged out
	AccessToken string      // empty when logged out
}

// Authenticated reports whether the session holds a credential.
func (s Session) Authenticated() bool {
	return s.AccessToken != ""
}
