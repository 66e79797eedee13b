package repository

import (
	"context"

	"golang-stock-circle/internal/community/dto"
	"golang-stock-circle/internal/entity"

	"gorm.io/gorm"
)

// MessageRepository defines the interface for direct messages.
type MessageRepository interface {
	Create(ctx context.Context, message *entity.Message) error
	MarkRead(ctx context.Context, receiverID, senderID uint) (int64, error)
	CountUnread(ctx context.Context, receiverID uint) (int64, error)
	CountUnreadBySender(ctx context.Context, receiverID uint) ([]dto.SenderCount, error)
	Conversation(ctx context.Context, userA, userB uint, limit int) ([]entity.Message, error)
}

func NewMessageRepository(db *gorm.DB) MessageRepository {
	return &messageRepository{db: db}
}

type messageRepository struct {
	db *gorm.DB
}

func (r *messageRepository) Create(ctx context.Context, message *entity.Message) error {
	return r.db.WithContext(ctx).Create(message).Error
}

// MarkRead flags every unread message from sender to receiver as read.
func (r *messageRepository) MarkRead(ctx context.Context, receiverID, senderID uint) (int64, error) {
	result := r.db.WithContext(ctx).Model(&entity.Message{}).
		Where("receiver_id = ? AND sender_id = ? AND is_read = ?", receiverID, senderID, false).
		Update("is_read", true)
	return result.RowsAffected, result.Error
}

func (r *messageRepository) CountUnread(ctx context.Context, receiverID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&entity.Message{}).
		Where("receiver_id = ? AND is_read = ?", receiverID, false).
		Count(&count).Error
	return count, err
}

func (r *messageRepository) CountUnreadBySender(ctx context.Context, receiverID uint) ([]dto.SenderCount, error) {
	var rows []dto.SenderCount
	err := r.db.WithContext(ctx).Model(&entity.Message{}).
		Select("sender_id, COUNT(*) AS count").
		Where("receiver_id = ? AND is_read = ?", receiverID, false).
		Group("sender_id").
		Scan(&rows).Error
	return rows, err
}

// Conversation returns the latest limit messages between the pair, oldest first.
func (r *messageRepository) Conversation(ctx context.Context, userA, userB uint, limit int) ([]entity.Message, error) {
	var messages []entity.Message
	err := r.db.WithContext(ctx).
		Where("(sender_id = ? AND receiver_id = ?) OR (sender_id = ? AND receiver_id = ?)", userA, userB, userB, userA).
		Order("created_at desc, id desc").
		Limit(limit).
		Find(&messages).Error
	if err != nil {
		return nil, err
	}
	for i, j := 0, len(messages)-1; i < j; i, j = i+1, j-1 {
		messages[i], messages[j] = messages[j], messages[i]
	}
	return messages, nil
}
