// Package common defines shared constants and sentinel errors used across
// client and server layers of Speakance. Callers should use errors.Is to
// match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrNotFound = errors.New("not found")

	// Service-level errors (generic/internal flow control).
	ErrInternal = errors.New("internal error")

	// Auth errors. A missing or expired session pauses sync work instead of
	// failing it: the condition clears on its own once the user signs in.
	ErrUnauthorized = errors.New("unauthorized")
	ErrInvalidToken = errors.New("invalid token")

	// Validation errors (malformed or incomplete request, no state mutated).
	ErrValidation = errors.New("validation error")

	// ErrQuotaExceeded is the daily voice-capture limit. It is a distinct
	// outcome, not a failure path.
	ErrQuotaExceeded = errors.New("daily voice limit exceeded")

	// ErrProtocol marks a response whose status value is outside the agreed
	// set. The item is failed, never crashed on.
	ErrProtocol = errors.New("protocol violation")
)
