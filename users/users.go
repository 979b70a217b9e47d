package users

// UserType represents the role a dashboard user holds
type UserType string

const (
	TypeAdmin        UserType = "admin"        // Can manage every comune, user, and organization
	TypeOrganization UserType = "organization" // Manages the comuni assigned to their organization
	TypeOperator     UserType = "operator"     // Field operator limited to assigned comuni
)

// User is the dashboard user profile as returned by the server.
// The profile is owned exclusively by the session store: it is replaced
// wholesale on login or profile update and cleared on logout.
type User struct {
	ID           string   `json:"id,omitempty"`           // Unique identifier for the user
	Name         string   `json:"name,omitempty"`         // First name
	Surname      string   `json:"surname,omitempty"`      // Last name
	Email        string   `json:"email,omitempty"`        // User's email address
	Type         UserType `json:"user_type,omitempty"`    // Role of the user
	Approved     bool     `json:"approved,omitempty"`     // Whether an admin has approved the account
	ComuneIDs    []string `json:"comuni,omitempty"`       // Comuni this user may manage
	Organization string   `json:"organization,omitempty"` // Owning organization, if any
}

// FullName returns "Name Surname" for display and notifications.
func (u *User) FullName() string {
	if u == nil {
		return ""
	}
	return u.Name + " " + u.Surname
}

// IsAdmin reports whether the user holds the admin role.
func (u *User) IsAdmin() bool {
	return u != nil && u.Type == TypeAdmin
}

// AssignedTo reports whether the user may manage the given comune.
// Admins are implicitly assigned to every comune.
func (u *User) AssignedTo(comuneID string) bool {
	if u == nil {
		return false
	}
	if u.IsAdmin() {
		return true
	}
	for _, id := range u.ComuneIDs {
		if id == comuneID {
			return true
		}
	}
	return false
}
