package auth

import (
	"encoding/json"
	"time"
)

// Logical keys of the persisted session. Stores keep them together in one
// serialized record so a login or logout is observed all at once.
const (
	KeyLoggedIn     = "isLoggedIn"
	KeyToken        = "userToken"
	KeyEmail        = "userEmail"
	KeyUserData     = "userData"
	KeyProfilePhoto = "userProfilePhoto"
)

// SessionKeys lists every key a logout must remove.
var SessionKeys = []string{KeyLoggedIn, KeyToken, KeyEmail, KeyUserData, KeyProfilePhoto}

// Session is the on-device record of a signed-in user.
type Session struct {
	ID           string    `json:"id"`
	Email        string    `json:"userEmail"`
	LoggedIn     bool      `json:"isLoggedIn"`
	Token        string    `json:"userToken"`
	ProfilePhoto string    `json:"userProfilePhoto,omitempty"`
	User         *User     `json:"userData,omitempty"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Active reports whether the record represents a usable session. A login flag
// without a token is treated as no session.
func (s Session) Active() bool { return s.LoggedIn && s.Token != "" }

// Lookup returns the string form of a logical session key as it would be read
// from a flat key-value store. Unset keys report false.
func (s Session) Lookup(key string) (string, bool) {
	switch key {
	case KeyLoggedIn:
		if !s.LoggedIn {
			return "", false
		}
		return "true", true
	case KeyToken:
		return s.Token, s.Token != ""
	case KeyEmail:
		return s.Email, s.Email != ""
	case KeyProfilePhoto:
		return s.ProfilePhoto, s.ProfilePhoto != ""
	case KeyUserData:
		if s.User == nil {
			return "", false
		}
		b, err := json.Marshal(s.User)
		if err != nil {
			return "", false
		}
		return string(b), true
	default:
		return "", false
	}
}

// WithUser returns a copy of s carrying the refreshed user and photo URL.
// A nil user leaves the cached value untouched.
func (s Session) WithUser(u *User, photoURL string) Session {
	if u == nil {
		return s
	}
	s.User = u
	if photoURL != "" {
		s.ProfilePhoto = photoURL
	}
	return s
}
