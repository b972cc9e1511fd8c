package service

import (
	"context"
	"testing"

	"github.com/socialsight/socialsight/internal/models"
	"github.com/stretchr/testify/assert"
)

func newMessageFixture() (*fakeConversationRepo, *fakeMessageRepo, MessageService) {
	users := &fakeUserRepo{users: map[int64]*models.User{
		1: {ID: 1},
		2: {ID: 2},
	}}
	cr := &fakeConversationRepo{conversations: map[int64]*models.Conversation{}}
	mr := &fakeMessageRepo{}
	return cr, mr, NewMessageService(cr, mr, users)
}

func TestSendMessage(t *testing.T) {
	ctx := context.Background()

	t.Run("creates message and bumps conversation", func(t *testing.T) {
		cr, _, s := newMessageFixture()

		msg, err := s.Send(ctx, 1, 2, "hello", "", nil)
		assert.NoError(t, err)
		assert.Equal(t, int64(1), msg.ID)
		assert.Equal(t, int64(1), msg.SenderID)
		assert.Equal(t, int64(2), msg.ReceiverID)
		assert.Equal(t, msg.ID, cr.lastMessage[msg.ConversationID])
	})

	t.Run("rejects self message", func(t *testing.T) {
		_, _, s := newMessageFixture()
		_, err := s.Send(ctx, 1, 1, "hello", "", nil)
		assert.Error(t, err)
	})

	t.Run("rejects empty body without media", func(t *testing.T) {
		_, _, s := newMessageFixture()
		_, err := s.Send(ctx, 1, 2, "   ", "", nil)
		assert.Error(t, err)
	})

	t.Run("allows media-only message", func(t *testing.T) {
		_, _, s := newMessageFixture()
		msg, err := s.Send(ctx, 1, 2, "", "https://cdn.example.com/pic.jpg", nil)
		assert.NoError(t, err)
		assert.Equal(t, "https://cdn.example.com/pic.jpg", msg.MediaURL)
	})

	t.Run("unknown receiver", func(t *testing.T) {
		_, _, s := newMessageFixture()
		_, err := s.Send(ctx, 1, 99, "hello", "", nil)
		assert.ErrorIs(t, err, ErrUserNotFound)
	})

	t.Run("reply must stay in the same conversation", func(t *testing.T) {
		_, mr, s := newMessageFixture()

		first, err := s.Send(ctx, 1, 2, "hello", "", nil)
		assert.NoError(t, err)

		reply, err := s.Send(ctx, 2, 1, "hi back", "", &first.ID)
		assert.NoError(t, err)
		assert.Equal(t, first.ConversationID, reply.ConversationID)

		// a reply to a message from another conversation is refused
		stray := &models.Message{ConversationID: 999}
		strayID, _ := mr.Create(ctx, stray)
		_, err = s.Send(ctx, 1, 2, "reply", "", &strayID)
		assert.ErrorIs(t, err, ErrMessageNotFound)
	})
}

func TestDeleteMessage(t *testing.T) {
	ctx := context.Background()

	t.Run("single delete hides but keeps the message", func(t *testing.T) {
		_, mr, s := newMessageFixture()
		msg, err := s.Send(ctx, 1, 2, "hello", "", nil)
		assert.NoError(t, err)

		assert.NoError(t, s.Delete(ctx, 1, msg.ID))
		assert.False(t, mr.deleted[msg.ID])
	})

	t.Run("both parties deleting removes the message", func(t *testing.T) {
		_, mr, s := newMessageFixture()
		msg, err := s.Send(ctx, 1, 2, "hello", "", nil)
		assert.NoError(t, err)

		assert.NoError(t, s.Delete(ctx, 1, msg.ID))
		assert.NoError(t, s.Delete(ctx, 2, msg.ID))
		assert.True(t, mr.deleted[msg.ID])
	})

	t.Run("only sender or receiver may delete", func(t *testing.T) {
		_, _, s := newMessageFixture()
		msg, err := s.Send(ctx, 1, 2, "hello", "", nil)
		assert.NoError(t, err)

		assert.ErrorIs(t, s.Delete(ctx, 3, msg.ID), ErrMessageNotFound)
	})

	t.Run("unknown message", func(t *testing.T) {
		_, _, s := newMessageFixture()
		assert.ErrorIs(t, s.Delete(ctx, 1, 42), ErrMessageNotFound)
	})
}

func TestHistoryRequiresParticipant(t *testing.T) {
	ctx := context.Background()
	cr, _, s := newMessageFixture()
	cr.conversations[5] = &models.Conversation{ID: 5, Participants: []int64{1, 2}}

	_, err := s.History(ctx, 3, 5, 1)
	assert.ErrorIs(t, err, ErrNotParticipant)

	_, err = s.History(ctx, 1, 99, 1)
	assert.ErrorIs(t, err, ErrConversationNotFound)
}

func TestSearchTermLength(t *testing.T) {
	ctx := context.Background()
	_, _, s := newMessageFixture()

	_, err := s.Search(ctx, 1, "a")
	assert.ErrorIs(t, err, ErrSearchTooShort)

	_, err = s.Search(ctx, 1, "  x  ")
	assert.ErrorIs(t, err, ErrSearchTooShort)
}
