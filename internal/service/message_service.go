package service

import (
	"context"
	"errors"
	"strings"

	"github.com/socialsight/socialsight/internal/models"
	"github.com/socialsight/socialsight/internal/repository"
)

var (
	ErrConversationNotFound = errors.New("conversation not found")
	ErrMessageNotFound      = errors.New("message not found")
	ErrNotParticipant       = errors.New("not a participant of this conversation")
	ErrSearchTooShort       = errors.New("search term must be at least 2 characters")
)

const (
	messagePageSize    = 50
	searchResultsLimit = 50
)

type MessageService interface {
	Send(ctx context.Context, senderID, receiverID int64, body, mediaURL string, replyTo *int64) (*models.Message, error)
	Conversations(ctx context.Context, userID int64) ([]*models.Conversation, error)
	History(ctx context.Context, userID, conversationID int64, page int) ([]*models.Message, error)
	MarkRead(ctx context.Context, userID, conversationID int64) (int64, error)
	// Delete hides the message for the caller; once both participants have
	// deleted it the message is removed for everyone.
	Delete(ctx context.Context, userID, messageID int64) error
	UnreadCount(ctx context.Context, userID int64) (int64, error)
	Search(ctx context.Context, userID int64, term string) ([]*models.Message, error)
}

type messageService struct {
	cr repository.ConversationRepository
	mr repository.MessageRepository
	ur repository.UserRepository
}

func NewMessageService(
	cr repository.ConversationRepository,
	mr repository.MessageRepository,
	ur repository.UserRepository) MessageService {
	return &messageService{
		cr: cr,
		mr: mr,
		ur: ur,
	}
}

func (s *messageService) Send(ctx context.Context, senderID, receiverID int64, body, mediaURL string, replyTo *int64) (*models.Message, error) {
	if senderID == receiverID {
		return nil, errors.New("cannot message yourself")
	}
	if strings.TrimSpace(body) == "" && mediaURL == "" {
		return nil, errors.New("message body cannot be empty")
	}

	receiver, err := s.ur.GetByID(ctx, receiverID)
	if err != nil {
		return nil, err
	}
	if receiver == nil {
		return nil, ErrUserNotFound
	}

	conversation, err := s.cr.GetOrCreate(ctx, senderID, receiverID)
	if err != nil {
		return nil, err
	}

	if replyTo != nil {
		parent, err := s.mr.GetByID(ctx, *replyTo)
		if err != nil {
			return nil, err
		}
		if parent == nil || parent.ConversationID != conversation.ID {
			return nil, ErrMessageNotFound
		}
	}

	message := &models.Message{
		ConversationID: conversation.ID,
		SenderID:       senderID,
		ReceiverID:     receiverID,
		Body:           body,
		MediaURL:       mediaURL,
		ReplyTo:        replyTo,
	}
	id, err := s.mr.Create(ctx, message)
	if err != nil {
		return nil, err
	}
	message.ID = id

	if err := s.cr.UpdateLastMessage(ctx, conversation.ID, id); err != nil {
		return nil, err
	}
	return message, nil
}

func (s *messageService) Conversations(ctx context.Context, userID int64) ([]*models.Conversation, error) {
	return s.cr.ListByUser(ctx, userID)
}

func (s *messageService) History(ctx context.Context, userID, conversationID int64, page int) ([]*models.Message, error) {
	if err := s.requireParticipant(ctx, conversationID, userID); err != nil {
		return nil, err
	}
	if page < 1 {
		page = 1
	}
	offset := (page - 1) * messagePageSize
	return s.mr.ListByConversation(ctx, conversationID, userID, messagePageSize, offset)
}

func (s *messageService) MarkRead(ctx context.Context, userID, conversationID int64) (int64, error) {
	if err := s.requireParticipant(ctx, conversationID, userID); err != nil {
		return 0, err
	}
	return s.mr.MarkRead(ctx, conversationID, userID)
}

func (s *messageService) Delete(ctx context.Context, userID, messageID int64) error {
	message, err := s.mr.GetByID(ctx, messageID)
	if err != nil {
		return err
	}
	if message == nil || message.IsDeleted {
		return ErrMessageNotFound
	}
	if message.SenderID != userID && message.ReceiverID != userID {
		return ErrMessageNotFound
	}

	if err := s.mr.AddDeletion(ctx, messageID, userID); err != nil {
		return err
	}

	count, err := s.mr.CountDeletions(ctx, messageID)
	if err != nil {
		return err
	}
	if count >= 2 {
		return s.mr.MarkDeleted(ctx, messageID)
	}
	return nil
}

func (s *messageService) UnreadCount(ctx context.Context, userID int64) (int64, error) {
	return s.mr.UnreadCount(ctx, userID)
}

func (s *messageService) Search(ctx context.Context, userID int64, term string) ([]*models.Message, error) {
	term = strings.TrimSpace(term)
	if len(term) < 2 {
		return nil, ErrSearchTooShort
	}
	return s.mr.Search(ctx, userID, term, searchResultsLimit)
}

func (s *messageService) requireParticipant(ctx context.Context, conversationID, userID int64) error {
	conversation, err := s.cr.GetByID(ctx, conversationID)
	if err != nil {
		return err
	}
	if conversation == nil {
		return ErrConversationNotFound
	}
	ok, err := s.cr.IsParticipant(ctx, conversationID, userID)
	if err != nil {
		return err
	}
	if !ok {
		return ErrNotParticipant
	}
	return nil
}
