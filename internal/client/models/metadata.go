package models

import "time"

// Category is a user-defined taxonomy entry; Hints feed both the remote
// parser and the local refinement pass.
type Category struct {
	ID    string   `json:"id"`
	Name  string   `json:"name"`
	Hints []string `json:"hints,omitempty"`
}

// PaymentMethod is a card or account; Aliases cover nicknames and the
// network name.
type PaymentMethod struct {
	ID      string   `json:"id"`
	Name    string   `json:"name"`
	Network string   `json:"network,omitempty"`
	Aliases []string `json:"aliases,omitempty"`
}

type Trip struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	StartDate time.Time `json:"start_date"`
	EndDate   time.Time `json:"end_date"`
}

type Profile struct {
	DefaultCurrency string `json:"default_currency"`
	DailyVoiceLimit int    `json:"daily_voice_limit"`
}

// MetadataSnapshot is the taxonomy exchanged with the server and cached
// locally.
type MetadataSnapshot struct {
	Categories     []Category      `json:"categories"`
	PaymentMethods []PaymentMethod `json:"payment_methods"`
	Trips          []Trip          `json:"trips"`
	Profile        Profile         `json:"profile"`
}
