package domain

import "errors"

var (
	ErrInvalidPIN     = errors.New("invalid_pin")
	ErrPINRequired    = errors.New("pin_required")
	ErrPINMismatch    = errors.New("pin_mismatch")
	ErrInvalidName    = errors.New("invalid_name")
	ErrInvalidSession = errors.New("invalid_session")
	ErrSessionExpired = errors.New("session_expired")
)
