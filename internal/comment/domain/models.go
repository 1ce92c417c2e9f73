package domain

import (
	"strings"
	"time"
)

type Role string

const (
	RoleRequestor Role = "requestor"
	RoleManager   Role = "manager"
)

func ParseRole(value string) (Role, error) {
	switch Role(strings.ToLower(strings.TrimSpace(value))) {
	case RoleRequestor:
		return RoleRequestor, nil
	case RoleManager:
		return RoleManager, nil
	}
	return "", ErrInvalidRole
}

// Opposite is the side that has not yet seen a comment written by r.
func (r Role) Opposite() Role {
	if r == RoleManager {
		return RoleRequestor
	}
	return RoleManager
}

type Comment struct {
	ID         int64     `json:"id"`
	RequestID  int64     `json:"request_id"`
	AuthorRole Role      `json:"author_role"`
	AuthorName string    `json:"author_name,omitempty"`
	Text       string    `json:"text"`
	CreatedAt  time.Time `json:"created_at"`
}
