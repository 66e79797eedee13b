package entity

import "time"

// Message is a direct message between two mutual followers.
type Message struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	SenderID   uint      `gorm:"not null;index" json:"sender_id"`
	ReceiverID uint      `gorm:"not null;index:idx_messages_receiver_read" json:"receiver_id"`
	Body       string    `gorm:"type:text;not null" json:"body"`
	Read       bool      `gorm:"column:is_read;not null;default:false;index:idx_messages_receiver_read" json:"read"`
	CreatedAt  time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (Message) TableName() string {
	return "messages"
}
