package auth

import "time"

// User is the stored credential record. The auth core only ever reads
// it; accounts are created and updated by the admin seed tooling.
type User struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email,omitempty"`
	FullName     string    `json:"full_name,omitempty"`
	PasswordHash string    `json:"-"`
	Disabled     bool      `json:"disabled"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Token is the login response body.
type Token struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

// Claims is the payload carried inside an access token. Subject and
// ExpiresAt are the only fields the core acts on; Extra round-trips
// any additional claims a call site wants to embed.
type Claims struct {
	Subject   string
	ExpiresAt time.Time
	Extra     map[string]any
}
