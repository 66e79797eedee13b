package service

import (
	"context"
	"strings"

	"golang-stock-circle/internal/community/dto"
	"golang-stock-circle/internal/community/repository"
	"golang-stock-circle/internal/entity"
	"golang-stock-circle/pkg/apperror"
	"golang-stock-circle/pkg/common"
	"golang-stock-circle/pkg/logger"
)

const (
	defaultConversationLimit = 50
	maxConversationLimit     = 200
)

// MessagingService sends direct messages between mutual followers.
type MessagingService interface {
	// CanMessage reports whether a and b follow each other. It is symmetric.
	CanMessage(ctx context.Context, a, b uint) (bool, error)
	Send(ctx context.Context, senderID, receiverID uint, body string) (*dto.MessageResponse, error)
	MarkRead(ctx context.Context, receiverID, senderID uint) (int64, error)
	// UnreadCount is computed from storage on every call.
	UnreadCount(ctx context.Context, userID uint) (*dto.UnreadCountResponse, error)
	Conversation(ctx context.Context, userID, otherID uint, limit int) ([]dto.MessageResponse, error)
}

func NewMessagingService(
	messages repository.MessageRepository,
	follows repository.FollowRepository,
	users repository.UserRepository,
	publisher repository.EventPublisher,
	log *logger.Logger,
) MessagingService {
	return &messagingService{
		messages:  messages,
		follows:   follows,
		users:     users,
		publisher: publisher,
		logger:    log,
	}
}

type messagingService struct {
	messages  repository.MessageRepository
	follows   repository.FollowRepository
	users     repository.UserRepository
	publisher repository.EventPublisher
	logger    *logger.Logger
}

func (s *messagingService) CanMessage(ctx context.Context, a, b uint) (bool, error) {
	if a == b {
		return false, nil
	}
	forward, err := s.follows.Exists(ctx, a, b)
	if err != nil || !forward {
		return false, err
	}
	return s.follows.Exists(ctx, b, a)
}

func (s *messagingService) Send(ctx context.Context, senderID, receiverID uint, body string) (*dto.MessageResponse, error) {
	body = strings.TrimSpace(body)
	if body == "" {
		return nil, apperror.Validation("message body is required")
	}
	if _, err := s.users.FindByID(ctx, receiverID); err != nil {
		return nil, lookupErr(err, "user", receiverID)
	}

	ok, err := s.CanMessage(ctx, senderID, receiverID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, apperror.NotMutual("you can only message users who follow you back")
	}

	message := &entity.Message{SenderID: senderID, ReceiverID: receiverID, Body: body}
	if err := s.messages.Create(ctx, message); err != nil {
		s.logger.Error("Failed to store message", logger.ErrorField(err),
			logger.UintField("sender_id", senderID), logger.UintField("receiver_id", receiverID))
		return nil, err
	}

	resp := toMessageResponse(message)
	if err := s.publisher.Publish(ctx, common.EventMessageSent, receiverID, resp); err != nil {
		s.logger.Warn("Failed to publish message event", logger.ErrorField(err), logger.UintField("message_id", message.ID))
	}
	return &resp, nil
}

func (s *messagingService) MarkRead(ctx context.Context, receiverID, senderID uint) (int64, error) {
	return s.messages.MarkRead(ctx, receiverID, senderID)
}

func (s *messagingService) UnreadCount(ctx context.Context, userID uint) (*dto.UnreadCountResponse, error) {
	total, err := s.messages.CountUnread(ctx, userID)
	if err != nil {
		return nil, err
	}
	rows, err := s.messages.CountUnreadBySender(ctx, userID)
	if err != nil {
		return nil, err
	}
	resp := &dto.UnreadCountResponse{Total: total, BySender: make(map[uint]int64, len(rows))}
	for _, row := range rows {
		resp.BySender[row.SenderID] = row.Count
	}
	return resp, nil
}

func (s *messagingService) Conversation(ctx context.Context, userID, otherID uint, limit int) ([]dto.MessageResponse, error) {
	if limit <= 0 {
		limit = defaultConversationLimit
	}
	if limit > maxConversationLimit {
		limit = maxConversationLimit
	}
	messages, err := s.messages.Conversation(ctx, userID, otherID, limit)
	if err != nil {
		return nil, err
	}
	resp := make([]dto.MessageResponse, 0, len(messages))
	for i := range messages {
		resp = append(resp, toMessageResponse(&messages[i]))
	}
	return resp, nil
}

func toMessageResponse(m *entity.Message) dto.MessageResponse {
	return dto.MessageResponse{
		ID:         m.ID,
		SenderID:   m.SenderID,
		ReceiverID: m.ReceiverID,
		Body:       m.Body,
		Read:       m.Read,
		CreatedAt:  m.CreatedAt,
	}
}
