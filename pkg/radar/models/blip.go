// Package models defines the radar domain model produced by ingestion.
package models

// BlipRecord is a normalized input row: every field trimmed, quadrant and
// ring still carried as the raw strings seen in the source.
type BlipRecord struct {
	// Name is the assessed technology or methodology.
	Name string `json:"name"`
	// Quadrant is the raw quadrant name (grouping is case-insensitive).
	Quadrant string `json:"quadrant"`
	// Ring is the raw ring name (grouping is exact on the trimmed string).
	Ring string `json:"ring"`
	// IsNew reports whether the item appeared on the radar for the first time.
	IsNew bool `json:"isNew"`
	// Topic is an optional free-form grouping label.
	Topic string `json:"topic,omitempty"`
	// Description is the assessment text.
	Description string `json:"description"`
}

// Blip is one placed item on the radar. It is owned by exactly one Quadrant
// and holds a non-owning reference to its Ring.
type Blip struct {
	Name        string `json:"name"`
	Ring        *Ring  `json:"ring"`
	IsNew       bool   `json:"isNew"`
	Topic       string `json:"topic,omitempty"`
	Description string `json:"description"`
}
