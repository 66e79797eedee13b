package dto

import "encoding/json"

// Event is a notification addressed to one user, carried over the community event stream.
type Event struct {
	Type        string          `json:"type"`
	RecipientID uint            `json:"recipient_id"`
	Payload     json.RawMessage `json:"payload"`
}
