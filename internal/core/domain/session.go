package domain

import (
	"encoding/json"
	"strings"
)

// EnterpriseID identifies an enterprise on the marketplace. Values <= 0 mean
// "no enterprise".
type EnterpriseID int64

// Valid reports whether id refers to a real enterprise.
func (id EnterpriseID) Valid() bool { return id > 0 }

// User is the record the marketplace returns on login and the portal stores
// under the session's "user" key.
type User struct {
	ID           int64  `json:"id"`
	Email        string `json:"email,omitempty"`
	FullName     string `json:"full_name,omitempty"`
	Role         string `json:"role,omitempty"`
	EnterpriseID *int64 `json:"enterprise_id,omitempty"`
}

// Session is the typed view of one browser session.
type Session struct {
	ID           string       `json:"id"`
	UserID       int64        `json:"user_id"`
	Email        string       `json:"email,omitempty"`
	FullName     string       `json:"full_name,omitempty"`
	Role         Role         `json:"role"`
	EnterpriseID EnterpriseID `json:"enterprise_id,omitempty"`

	// Token is the marketplace bearer credential. Never rendered.
	Token string `json:"-"`
}

// DisplayName prefers the full name and falls back to the email.
func (s Session) DisplayName() string {
	if name := strings.TrimSpace(s.FullName); name != "" {
		return name
	}
	return s.Email
}

// DecodeSession builds a Session from a stored user record. It never fails:
// an absent or malformed record yields a demand session without enterprise.
func DecodeSession(id, token string, rawUser []byte) Session {
	s := Session{ID: id, Token: token, Role: RoleDemand}
	if len(rawUser) == 0 {
		return s
	}

	var u User
	if err := json.Unmarshal(rawUser, &u); err != nil {
		return s
	}

	s.UserID = u.ID
	s.Email = u.Email
	s.FullName = u.FullName
	s.Role = ParseRole(u.Role)
	if u.EnterpriseID != nil {
		s.EnterpriseID = EnterpriseID(*u.EnterpriseID)
	}
	return s
}
