package dto

import "time"

type SendMessageRequest struct {
	ReceiverID uint   `json:"receiver_id" validate:"required"`
	Body       string `json:"body"`
}

type MessageResponse struct {
	ID         uint      `json:"id"`
	SenderID   uint      `json:"sender_id"`
	ReceiverID uint      `json:"receiver_id"`
	Body       string    `json:"body"`
	Read       bool      `json:"read"`
	CreatedAt  time.Time `json:"created_at"`
}

// UnreadCountResponse holds the total and a per-sender breakdown.
type UnreadCountResponse struct {
	Total    int64          `json:"total"`
	BySender map[uint]int64 `json:"by_sender"`
}

type SenderCount struct {
	SenderID uint
	Count    int64
}

type MarkReadResponse struct {
	Updated int64 `json:"updated"`
}

type CanMessageResponse struct {
	CanMessage bool `json:"can_message"`
}
