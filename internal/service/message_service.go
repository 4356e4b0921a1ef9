package service

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/makerlink/makerlink-backend/internal/common"
	"github.com/makerlink/makerlink-backend/internal/domain"
	"github.com/makerlink/makerlink-backend/internal/repository"
	"gorm.io/gorm"
)

// MessageService business logic for direct messages between members
type MessageService interface {
	SendMessage(senderID string, req *domain.SendMessageRequest) (*domain.MessageResponse, error)
	// GetConversation returns one page of the conversation with
	// partnerID, oldest first, and marks the viewer's incoming unread
	// messages from that partner as read.
	GetConversation(viewerID, partnerID string, page, limit int) (*domain.ConversationResponse, *common.Meta, error)
	ListConversations(viewerID string, page, limit int) ([]*domain.ConversationSummary, *common.Meta, error)
	// CanMessage reports whether actor and target mutually follow each
	// other. Checked fresh on every send; follow edges change between
	// messages.
	CanMessage(actorID, targetID string) (bool, error)
}

type messageService struct {
	repo          repository.MessageRepository
	memberRepo    repository.MemberRepository
	followRepo    repository.FollowRepository
	notifications NotificationService
}

// NewMessageService creates a new MessageService
func NewMessageService(
	repo repository.MessageRepository,
	memberRepo repository.MemberRepository,
	followRepo repository.FollowRepository,
	notifications NotificationService,
) MessageService {
	return &messageService{
		repo:          repo,
		memberRepo:    memberRepo,
		followRepo:    followRepo,
		notifications: notifications,
	}
}

func (s *messageService) SendMessage(senderID string, req *domain.SendMessageRequest) (*domain.MessageResponse, error) {
	content := strings.TrimSpace(req.Content)
	if content == "" {
		return nil, fmt.Errorf("message content is empty: %w", common.ErrValidation)
	}
	if senderID == req.ToUserID {
		return nil, fmt.Errorf("cannot message yourself: %w", common.ErrValidation)
	}

	recipient, err := s.memberRepo.FindByUserID(req.ToUserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("recipient %s: %w", req.ToUserID, common.ErrNotFound)
		}
		return nil, err
	}

	allowed, err := s.CanMessage(senderID, req.ToUserID)
	if err != nil {
		return nil, err
	}
	if !allowed {
		return nil, fmt.Errorf("members must follow each other to message: %w", common.ErrUnauthorized)
	}

	msg := &domain.Message{
		SenderID:   senderID,
		ReceiverID: recipient.UserID,
		Content:    content,
		CreatedAt:  time.Now(),
	}
	if req.Ref != nil {
		msg.RefKind = req.Ref.Kind
		msg.RefID = req.Ref.ID
		msg.RefTitle = req.Ref.Title
	}

	if err := s.repo.Append(msg); err != nil {
		return nil, err
	}
	messagesSent.Inc()

	// The message is durable at this point; a notification problem is
	// logged, never reported as a failed send.
	event := domain.MessageEvent{ActorID: senderID, ActorName: s.displayName(senderID)}
	if _, err := s.notifications.Emit(recipient.UserID, event); err != nil {
		warnEmitFailure("message", err)
	}

	return msg.ToResponse(), nil
}

func (s *messageService) GetConversation(viewerID, partnerID string, page, limit int) (*domain.ConversationResponse, *common.Meta, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 30
	}

	partner, err := s.memberRepo.FindByUserID(partnerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, fmt.Errorf("partner %s: %w", partnerID, common.ErrNotFound)
		}
		return nil, nil, err
	}

	// Opening the conversation reads it: transition before listing so
	// the returned page reflects the new read state.
	if _, err := s.repo.MarkRead(viewerID, partnerID); err != nil {
		return nil, nil, err
	}

	messages, total, err := s.repo.ListBetween(viewerID, partnerID, page, limit)
	if err != nil {
		return nil, nil, err
	}

	responses := make([]*domain.MessageResponse, len(messages))
	for i, m := range messages {
		responses[i] = m.ToResponse()
	}

	meta := &common.Meta{
		Page:  page,
		Limit: limit,
		Total: total,
	}

	return &domain.ConversationResponse{
		Messages: responses,
		Partner:  partner.ToResponse(),
	}, meta, nil
}

func (s *messageService) ListConversations(viewerID string, page, limit int) ([]*domain.ConversationSummary, *common.Meta, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 50 {
		limit = 20
	}

	summaries, total, err := s.repo.ListConversations(viewerID, page, limit)
	if err != nil {
		return nil, nil, err
	}

	for _, summary := range summaries {
		summary.PartnerName = s.displayName(summary.PartnerID)
	}

	meta := &common.Meta{
		Page:  page,
		Limit: limit,
		Total: total,
	}

	return summaries, meta, nil
}

func (s *messageService) CanMessage(actorID, targetID string) (bool, error) {
	follows, err := s.followRepo.Exists(actorID, targetID)
	if err != nil {
		return false, err
	}
	if !follows {
		return false, nil
	}
	followed, err := s.followRepo.Exists(targetID, actorID)
	if err != nil {
		return false, err
	}
	return followed, nil
}

// displayName resolves a member's nickname, falling back to the ID
func (s *messageService) displayName(userID string) string {
	member, err := s.memberRepo.FindByUserID(userID)
	if err != nil || member.Nickname == "" {
		return userID
	}
	return member.Nickname
}
