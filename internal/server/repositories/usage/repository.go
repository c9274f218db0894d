// Package usage tracks per-user daily voice-parse counts for quota gating.
package usage

import "context"

// Repository counts voice parses per user per local calendar day. Day strings
// are 2006-01-02 in the caller's timezone.
type Repository interface {
	// IncrementVoice bumps the count for the day and returns the new value.
	IncrementVoice(ctx context.Context, userID, day string) (int, error)

	// VoiceCount returns the current count for the day (0 when absent).
	VoiceCount(ctx context.Context, userID, day string) (int, error)
}
