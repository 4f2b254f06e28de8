package domain

import "time"

// Provenance of a weight entry.
const (
	MethodManual = "manual"
	MethodOCR    = "ocr"
)

// WeightEntry is a single weight measurement owned by exactly one user.
// Immutable except for deletion. Timestamp is stored as Unix seconds
// ("ts") so the user_id-ts GSI can range-query it.
type WeightEntry struct {
	EntryID   string    `json:"id" dynamodbav:"entry_id"`
	UserID    string    `json:"-" dynamodbav:"user_id"`
	Weight    float64   `json:"weight" dynamodbav:"weight"`
	Timestamp time.Time `json:"timestamp" dynamodbav:"ts,unixtime"`
	Method    string    `json:"method" dynamodbav:"method"`
	ImageKey  string    `json:"image_key,omitempty" dynamodbav:"image_key,omitempty"`
}
