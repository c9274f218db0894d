package models

import "time"

// Category is a user-defined taxonomy entry. Hints are free-text keywords
// used by alias matching on both server and client.
type Category struct {
	ID     string   `json:"id"`
	Name   string   `json:"name"`
	Hints  []string `json:"hints,omitempty"`
	UserID string   `json:"-"`
}

// PaymentMethod is a card or account the user pays with. Aliases cover
// nicknames and the card network name.
type PaymentMethod struct {
	ID      string   `json:"id"`
	Name    string   `json:"name"`
	Network string   `json:"network,omitempty"`
	Aliases []string `json:"aliases,omitempty"`
	UserID  string   `json:"-"`
}

// Trip groups expenses taken on one journey.
type Trip struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	StartDate time.Time `json:"start_date"`
	EndDate   time.Time `json:"end_date"`
	UserID    string    `json:"-"`
}

// Profile is the per-user settings snapshot exchanged during metadata sync.
type Profile struct {
	DefaultCurrency string `json:"default_currency"`
	DailyVoiceLimit int    `json:"daily_voice_limit"`
}

// MetadataSnapshot is the full taxonomy exchanged by metadata sync/fetch.
type MetadataSnapshot struct {
	Categories     []Category      `json:"categories"`
	PaymentMethods []PaymentMethod `json:"payment_methods"`
	Trips          []Trip          `json:"trips"`
	Profile        Profile         `json:"profile"`
}
