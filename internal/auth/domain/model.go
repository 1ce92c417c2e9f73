// Package domain contains the manager unlock and session types.
package domain

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const (
	RoleRequestor = "requestor"
	RoleManager   = "manager"
)

// Claims is the payload of a signed manager session.
type Claims struct {
	Role string `json:"role"`
	Name string `json:"name,omitempty"`
	jwt.RegisteredClaims
}

// Session is an issued manager session.
type Session struct {
	Token     string    `json:"-"`
	Role      string    `json:"role"`
	Name      string    `json:"name,omitempty"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Principal is the identity resolved from a session token.
type Principal struct {
	Role string
	Name string
}
