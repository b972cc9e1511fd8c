package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	config "github.com/socialsight/socialsight/configs"
	"github.com/socialsight/socialsight/internal/models"
	"github.com/socialsight/socialsight/internal/platforms"
	"github.com/socialsight/socialsight/pkg/utils"
)

const publishTestKey = "0123456789abcdef0123456789abcdef"

func newPublishFixture(t *testing.T) (*publishService, *fakePostRepo, *fakePlatformPostRepo, *fakeSocialAccountRepo) {
	t.Helper()
	cfg := config.Config{SecretKey: publishTestKey}

	token, err := utils.Encrypt([]byte("platform-token"), []byte(publishTestKey))
	assert.NoError(t, err)

	pr := &fakePostRepo{posts: map[int64]*models.Post{
		42: {ID: 42, UserID: 7, Body: "release notes", Status: models.PostStatusDraft},
	}}
	pp := &fakePlatformPostRepo{records: map[int64]*models.PlatformPost{
		1: {ID: 1, PostID: 42, Platform: "instagram", Status: models.PlatformStatusDraft},
	}}
	sa := &fakeSocialAccountRepo{accounts: map[string]*models.SocialAccount{
		"instagram": {ID: 3, UserID: 7, Platform: "instagram", PlatformUserID: "ig-1", AccessToken: token, IsActive: true},
	}}
	md := &fakeMediaRepo{}

	s := NewPublishService(cfg, platforms.NewRegistry(cfg), pr, pp, sa, md).(*publishService)
	return s, pr, pp, sa
}

func TestPublishNowFromDraft(t *testing.T) {
	s, pr, pp, _ := newPublishFixture(t)

	err := s.PublishNow(context.Background(), 7, 42)
	assert.NoError(t, err)

	// The draft record must be promoted and claimed, not silently
	// skipped. Instagram refuses a post without media, so the attempt
	// ends in a failed record here, but the point is that an attempt
	// happened at all.
	assert.Equal(t, 1, pp.claims)
	record := pp.records[1]
	assert.Equal(t, models.PlatformStatusFailed, record.Status)
	assert.Contains(t, record.ErrorMessage, "at least one image")
	assert.Equal(t, models.PostStatusFailed, pr.statuses[42])
}

func TestPublishNowRequiresOwnership(t *testing.T) {
	s, _, pp, _ := newPublishFixture(t)

	err := s.PublishNow(context.Background(), 99, 42)
	assert.ErrorIs(t, err, ErrPostNotFound)
	assert.Equal(t, models.PlatformStatusDraft, pp.records[1].Status)
	assert.Zero(t, pp.claims)
}

func TestPublishPostLeavesPublishedRecordsAlone(t *testing.T) {
	s, pr, pp, _ := newPublishFixture(t)
	pp.records[1].Status = models.PlatformStatusPublished

	err := s.PublishPost(context.Background(), 42)
	assert.NoError(t, err)
	assert.Zero(t, pp.claims)
	assert.Equal(t, models.PostStatusPublished, pr.statuses[42])
}

func TestBuildContentCarriesStoryFlag(t *testing.T) {
	s, pr, _, sa := newPublishFixture(t)
	post := pr.posts[42]
	post.IsStory = true

	record := &models.PlatformPost{ID: 1, PostID: 42, Platform: "instagram"}
	content, err := s.buildContent(context.Background(), post, record, sa.accounts["instagram"])
	assert.NoError(t, err)
	assert.True(t, content.IsStory)
	assert.Equal(t, "ig-1", content.PageID)
}
