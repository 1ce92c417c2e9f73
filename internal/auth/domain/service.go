package domain

import "context"

type UnlockRequest struct {
	PIN  string
	Name string
}

type ChangePINRequest struct {
	PIN     string
	Confirm string
}

type Service interface {
	// Unlock checks the manager PIN and issues a signed session.
	Unlock(ctx context.Context, req UnlockRequest) (*Session, error)
	ChangePIN(ctx context.Context, req ChangePINRequest) error
	ParseSession(ctx context.Context, token string) (Principal, error)
}
