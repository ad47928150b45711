package models

import "github.com/golang-jwt/jwt/v5"

// Claims is the access token payload: the caller identity plus the standard
// registered claims (the token id lives in RegisteredClaims.ID).
type Claims struct {
	UserID   int64  `json:"user_id"`
	Username string `json:"username"`
	Role     Role   `json:"role"`
	jwt.RegisteredClaims
}

// Identity returns the caller identity carried by the token.
func (c *Claims) Identity() UserData {
	return UserData{
		UserID:   c.UserID,
		Username: c.Username,
		Role:     c.Role,
	}
}

// LoginResult is returned by a successful login.
type LoginResult struct {
	User      *UserData `json:"user"`
	JWT       string    `json:"jwt"`
	ExpiresAt int64     `json:"expires_at"`
}
