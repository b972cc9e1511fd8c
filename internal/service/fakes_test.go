package service

import (
	"context"
	"time"

	"github.com/socialsight/socialsight/internal/models"
	"github.com/socialsight/socialsight/internal/repository"
)

// The fakes embed the repository interfaces so only the methods a test
// exercises need an override; anything else panics loudly.

type fakeUserRepo struct {
	repository.UserRepository
	users map[int64]*models.User
}

func (f *fakeUserRepo) GetByID(ctx context.Context, id int64) (*models.User, error) {
	return f.users[id], nil
}

type fakePostRepo struct {
	repository.PostRepository
	countSince int64
	lastSince  time.Time
	posts      map[int64]*models.Post
	statuses   map[int64]string
}

func (f *fakePostRepo) CountByUserSince(ctx context.Context, userID int64, since time.Time) (int64, error) {
	f.lastSince = since
	return f.countSince, nil
}

func (f *fakePostRepo) GetByID(ctx context.Context, id int64) (*models.Post, error) {
	return f.posts[id], nil
}

func (f *fakePostRepo) CheckByUserID(ctx context.Context, postID, userID int64) (bool, error) {
	p := f.posts[postID]
	return p != nil && p.UserID == userID, nil
}

func (f *fakePostRepo) UpdateStatus(ctx context.Context, id int64, status string, publishedAt *time.Time) error {
	if f.statuses == nil {
		f.statuses = make(map[int64]string)
	}
	f.statuses[id] = status
	return nil
}

// fakePlatformPostRepo mirrors the conditional updates of the real
// repository: Claim only moves scheduled records and MarkScheduled only
// promotes drafts.
type fakePlatformPostRepo struct {
	repository.PlatformPostRepository
	records map[int64]*models.PlatformPost
	claims  int
}

func (f *fakePlatformPostRepo) ListByPostID(ctx context.Context, postID int64) ([]*models.PlatformPost, error) {
	var out []*models.PlatformPost
	for _, r := range f.records {
		if r.PostID == postID {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakePlatformPostRepo) MarkScheduled(ctx context.Context, postID int64, scheduledFor *time.Time) error {
	for _, r := range f.records {
		if r.PostID == postID && r.Status == models.PlatformStatusDraft {
			r.Status = models.PlatformStatusScheduled
			r.ScheduledFor = scheduledFor
		}
	}
	return nil
}

func (f *fakePlatformPostRepo) Claim(ctx context.Context, id int64) (bool, error) {
	r, ok := f.records[id]
	if !ok || r.Status != models.PlatformStatusScheduled {
		return false, nil
	}
	f.claims++
	r.Status = models.PlatformStatusPublishing
	return true, nil
}

func (f *fakePlatformPostRepo) MarkPublished(ctx context.Context, id int64, platformPostID string, publishedAt time.Time) error {
	r := f.records[id]
	r.Status = models.PlatformStatusPublished
	r.PlatformPostID = platformPostID
	r.PublishedAt = &publishedAt
	return nil
}

func (f *fakePlatformPostRepo) MarkFailed(ctx context.Context, id int64, message, code string) error {
	r := f.records[id]
	r.Status = models.PlatformStatusFailed
	r.ErrorMessage = message
	r.ErrorCode = code
	return nil
}

type fakeMediaRepo struct {
	repository.MediaRepository
	assets map[int64][]*models.MediaAsset
}

func (f *fakeMediaRepo) ListAssetsByPostID(ctx context.Context, postID int64) ([]*models.MediaAsset, error) {
	return f.assets[postID], nil
}

type fakeSocialAccountRepo struct {
	repository.SocialAccountRepository
	activeCount int64
	accounts    map[string]*models.SocialAccount
}

func (f *fakeSocialAccountRepo) CountActiveByUser(ctx context.Context, userID int64) (int64, error) {
	return f.activeCount, nil
}

func (f *fakeSocialAccountRepo) GetActiveByUserPlatform(ctx context.Context, userID int64, platform string) (*models.SocialAccount, error) {
	return f.accounts[platform], nil
}

type fakeConversationRepo struct {
	repository.ConversationRepository
	conversations map[int64]*models.Conversation
	lastMessage   map[int64]int64
}

func (f *fakeConversationRepo) GetByID(ctx context.Context, id int64) (*models.Conversation, error) {
	return f.conversations[id], nil
}

func (f *fakeConversationRepo) GetOrCreate(ctx context.Context, userA, userB int64) (*models.Conversation, error) {
	for _, c := range f.conversations {
		if contains(c.Participants, userA) && contains(c.Participants, userB) {
			return c, nil
		}
	}
	c := &models.Conversation{ID: int64(len(f.conversations) + 1), Participants: []int64{userA, userB}}
	if f.conversations == nil {
		f.conversations = make(map[int64]*models.Conversation)
	}
	f.conversations[c.ID] = c
	return c, nil
}

func (f *fakeConversationRepo) IsParticipant(ctx context.Context, conversationID, userID int64) (bool, error) {
	c := f.conversations[conversationID]
	return c != nil && contains(c.Participants, userID), nil
}

func (f *fakeConversationRepo) UpdateLastMessage(ctx context.Context, conversationID, messageID int64) error {
	if f.lastMessage == nil {
		f.lastMessage = make(map[int64]int64)
	}
	f.lastMessage[conversationID] = messageID
	return nil
}

func contains(ids []int64, id int64) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}

type fakeMessageRepo struct {
	repository.MessageRepository
	messages  map[int64]*models.Message
	nextID    int64
	deletions map[int64]int64
	deleted   map[int64]bool
}

func (f *fakeMessageRepo) Create(ctx context.Context, m *models.Message) (int64, error) {
	f.nextID++
	if f.messages == nil {
		f.messages = make(map[int64]*models.Message)
	}
	m.ID = f.nextID
	f.messages[m.ID] = m
	return m.ID, nil
}

func (f *fakeMessageRepo) GetByID(ctx context.Context, id int64) (*models.Message, error) {
	return f.messages[id], nil
}

func (f *fakeMessageRepo) AddDeletion(ctx context.Context, messageID, userID int64) error {
	if f.deletions == nil {
		f.deletions = make(map[int64]int64)
	}
	f.deletions[messageID]++
	return nil
}

func (f *fakeMessageRepo) CountDeletions(ctx context.Context, messageID int64) (int64, error) {
	return f.deletions[messageID], nil
}

func (f *fakeMessageRepo) MarkDeleted(ctx context.Context, messageID int64) error {
	if f.deleted == nil {
		f.deleted = make(map[int64]bool)
	}
	f.deleted[messageID] = true
	return nil
}
