// Package common defines shared constants and sentinel errors used across
// client and server layers of Daybreak. Callers should use errors.Is to
// match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrNotFound = errors.New("not found")
	ErrStorage  = errors.New("storage unavailable")

	// Pairing / payload errors.
	ErrValidation    = errors.New("validation error")
	ErrState         = errors.New("invalid state")
	ErrCrypto        = errors.New("crypto failure")
	ErrInviteExpired = errors.New("invite expired")

	// Sync errors. ErrNetwork is recoverable and leaves the queue entry in
	// place; ErrValidation from the backend is terminal for that entry.
	ErrNetwork = errors.New("network error")

	// Auth errors.
	ErrUnauthorized        = errors.New("unauthorized")
	ErrInvalidToken        = errors.New("invalid token")
	ErrTokenExpired        = errors.New("token expired")
	ErrRefreshTokenExpired = errors.New("refresh token expired")
)
