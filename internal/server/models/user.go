package models

import "time"

// User is an account row. DailyVoiceLimit caps voice parses per local
// calendar day; DefaultCurrency seeds parsing when no hint is present.
type User struct {
	ID              string
	Username        string
	PasswordHash    string
	DefaultCurrency string
	DailyVoiceLimit int
	CreatedAt       time.Time
}

// VoiceUsage is one user's voice-parse count for one local calendar day.
// Day is the caller-timezone date in 2006-01-02 form.
type VoiceUsage struct {
	UserID string
	Day    string
	Count  int
}
