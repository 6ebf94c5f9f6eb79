package model

import "time"

// LoginType tells how an account signed up.
type LoginType string

const (
	LoginTypeEmailPassword LoginType = "EMAIL_PASSWORD"
	LoginTypeGoogle        LoginType = "GOOGLE"
	LoginTypeFacebook      LoginType = "FACEBOOK"
)

// Role is the account's role on the remote service.
type Role string

const (
	RoleAdmin Role = "ADMIN"
	RoleUser  Role = "USER"
)

// Account is the identity record a Profile belongs to.
type Account struct {
	ID        string    `json:"_id"`
	LocalPath string    `json:"localPath"`
	URL       string    `json:"url"`
	Email     string    `json:"email"`
	Username  string    `json:"username"`
	LoginType LoginType `json:"loginType,omitempty"`
	Role      Role      `json:"role,omitempty"`
}

// Image is a stored media reference (cover image, post image).
type Image struct {
	ID        string `json:"_id"`
	LocalPath string `json:"localPath"`
	URL       string `json:"url"`
}

// Session describes the authenticated viewer derived from an access token.
type Session struct {
	Account   Account
	ExpiresAt time.Time
}

// Expired reports whether the session is no longer valid at now.
func (s Session) Expired(now time.Time) bool {
	return !s.ExpiresAt.IsZero() && !now.Before(s.ExpiresAt)
}
