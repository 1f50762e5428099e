package model

import "time"

// Identity is what the board needs to know about who is signed in.
// A zero Identity is the anonymous user.
type Identity struct {
	UserID string `json:"id"`
	Name   string `json:"name,omitempty"`
	Email  string `json:"email,omitempty"`
}

// Anonymous is the identity used when nobody is logged in
var Anonymous = Identity{}

// IsAuthenticated returns true when the identity carries a user id
func (i Identity) IsAuthenticated() bool {
	return i.UserID != ""
}

// DisplayName returns the name, falling back to email and then "anonymous"
func (i Identity) DisplayName() string {
	switch {
	case i.Name != "":
		return i.Name
	case i.Email != "":
		return i.Email
	case i.UserID != "":
		return i.UserID
	default:
		return "anonymous"
	}
}

// Account is a registered local user
type Account struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"password_hash"`
	CreatedAt    time.Time `json:"created_at"`
}

// Identity returns the board identity for the account
func (a Account) Identity() Identity {
	return Identity{UserID: a.ID, Name: a.Name, Email: a.Email}
}

// Settings are per-user preferences
type Settings struct {
	Theme         string `json:"theme"`
	Notifications bool   `json:"notifications"`
}

// DefaultSettings returns the settings used when none are stored
func DefaultSettings() Settings {
	return Settings{
		Theme:         "nord",
		Notifications: true,
	}
}
