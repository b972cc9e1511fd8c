package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	config "github.com/socialsight/socialsight/configs"
	"github.com/socialsight/socialsight/internal/models"
	"github.com/socialsight/socialsight/internal/platforms"
	"github.com/socialsight/socialsight/internal/repository"
	"github.com/socialsight/socialsight/pkg/utils"
)

var ErrNotRetryable = errors.New("only failed platform posts can be retried")

// PublishService pushes due posts out to their platforms. Each platform
// record is claimed with a conditional update before any network call, so
// overlapping runs never double-publish.
type PublishService interface {
	PublishPost(ctx context.Context, postID int64) error
	// PublishNow is the user-triggered variant with an ownership check.
	PublishNow(ctx context.Context, userID, postID int64) error
	RetryPlatform(ctx context.Context, userID, postID int64, platform string) error
}

type publishService struct {
	cfg      config.Config
	registry *platforms.Registry
	pr       repository.PostRepository
	pp       repository.PlatformPostRepository
	sa       repository.SocialAccountRepository
	md       repository.MediaRepository
}

func NewPublishService(
	cfg config.Config,
	registry *platforms.Registry,
	pr repository.PostRepository,
	pp repository.PlatformPostRepository,
	sa repository.SocialAccountRepository,
	md repository.MediaRepository) PublishService {
	return &publishService{
		cfg:      cfg,
		registry: registry,
		pr:       pr,
		pp:       pp,
		sa:       sa,
		md:       md,
	}
}

// PublishPost attempts every claimable platform record of the post. A
// failure on one platform never stops the others; the post status is
// re-derived from the records afterwards.
func (s *publishService) PublishPost(ctx context.Context, postID int64) error {
	post, err := s.pr.GetByID(ctx, postID)
	if err != nil {
		return err
	}
	if post == nil || post.IsDeleted {
		return nil
	}

	records, err := s.pp.ListByPostID(ctx, postID)
	if err != nil {
		return err
	}

	for _, record := range records {
		claimed, err := s.pp.Claim(ctx, record.ID)
		if err != nil {
			return err
		}
		if !claimed {
			continue
		}
		s.publishRecord(ctx, post, record)
	}

	return s.syncPostStatus(ctx, postID)
}

func (s *publishService) PublishNow(ctx context.Context, userID, postID int64) error {
	owned, err := s.pr.CheckByUserID(ctx, postID, userID)
	if err != nil {
		return err
	}
	if !owned {
		return ErrPostNotFound
	}
	// Drafts have never been scheduled, so Claim would skip them. Promote
	// them first so an immediate publish works from any starting state.
	now := time.Now()
	if err := s.pp.MarkScheduled(ctx, postID, &now); err != nil {
		return err
	}
	return s.PublishPost(ctx, postID)
}

// RetryPlatform re-runs one failed platform record on demand.
func (s *publishService) RetryPlatform(ctx context.Context, userID, postID int64, platform string) error {
	isValid, err := s.pr.CheckByUserID(ctx, postID, userID)
	if err != nil {
		return err
	}
	if !isValid {
		return ErrPostNotFound
	}

	record, err := s.pp.GetByPostPlatform(ctx, postID, platform)
	if err != nil {
		return err
	}
	if record == nil {
		return fmt.Errorf("no %s record for post %d", platform, postID)
	}
	if !models.CanRetry(record.Status) {
		return ErrNotRetryable
	}

	claimed, err := s.pp.MarkRetrying(ctx, record.ID)
	if err != nil {
		return err
	}
	if !claimed {
		return ErrNotRetryable
	}

	post, err := s.pr.GetByID(ctx, postID)
	if err != nil {
		return err
	}
	if post == nil {
		return ErrPostNotFound
	}

	s.publishRecord(ctx, post, record)
	return s.syncPostStatus(ctx, postID)
}

func (s *publishService) publishRecord(ctx context.Context, post *models.Post, record *models.PlatformPost) {
	result, err := s.attempt(ctx, post, record)
	if err != nil {
		code := "publish_error"
		var perr *platforms.PlatformError
		if errors.As(err, &perr) {
			code = perr.Code
		}
		slog.Info(err.Error())
		if markErr := s.pp.MarkFailed(ctx, record.ID, err.Error(), code); markErr != nil {
			slog.Info(markErr.Error())
		}
		return
	}

	if err := s.pp.MarkPublished(ctx, record.ID, result.PlatformPostID, time.Now()); err != nil {
		slog.Info(err.Error())
	}
}

func (s *publishService) attempt(ctx context.Context, post *models.Post, record *models.PlatformPost) (*platforms.PublishResult, error) {
	adapter, err := s.registry.Get(record.Platform)
	if err != nil {
		return nil, err
	}

	account, err := s.sa.GetActiveByUserPlatform(ctx, post.UserID, record.Platform)
	if err != nil {
		return nil, err
	}
	if account == nil {
		return nil, fmt.Errorf("no connected account for platform %s", record.Platform)
	}

	accessToken, err := utils.Decrypt(account.AccessToken, []byte(s.cfg.SecretKey))
	if err != nil {
		return nil, err
	}
	token := &platforms.Token{
		AccessToken: accessToken,
		ExpiresAt:   account.TokenExpiresAt,
	}

	content, err := s.buildContent(ctx, post, record, account)
	if err != nil {
		return nil, err
	}

	return adapter.Publish(ctx, token, content)
}

func (s *publishService) buildContent(ctx context.Context, post *models.Post, record *models.PlatformPost, account *models.SocialAccount) (*platforms.Content, error) {
	body := post.Body
	if record.CustomBody != "" {
		body = record.CustomBody
	}
	body = composeBody(body, post.Hashtags, post.Mentions)

	assets, err := s.md.ListAssetsByPostID(ctx, post.ID)
	if err != nil {
		return nil, err
	}

	mediaURLs := make([]string, 0, len(assets))
	mediaType := ""
	for _, a := range assets {
		mediaURLs = append(mediaURLs, a.FileURL)
		if strings.HasPrefix(a.FileType, "video") {
			mediaType = "video"
		} else if mediaType == "" {
			mediaType = "image"
		}
	}

	pageID := record.PageID
	if pageID == "" {
		pageID = account.PlatformUserID
	}

	pageToken := ""
	if record.PageID != "" {
		page, err := s.sa.GetPage(ctx, account.ID, record.PageID)
		if err != nil {
			return nil, err
		}
		if page != nil && page.AccessToken != "" {
			pageToken, err = utils.Decrypt(page.AccessToken, []byte(s.cfg.SecretKey))
			if err != nil {
				return nil, err
			}
		}
	}

	return &platforms.Content{
		Body:      body,
		Hashtags:  post.Hashtags,
		Mentions:  post.Mentions,
		MediaURLs: mediaURLs,
		MediaType: mediaType,
		PageID:    pageID,
		PageToken: pageToken,
		IsStory:   post.IsStory,
	}, nil
}

// composeBody appends hashtags and mentions that are not already inline.
func composeBody(body string, hashtags, mentions []string) string {
	var extra []string
	for _, tag := range hashtags {
		if !strings.HasPrefix(tag, "#") {
			tag = "#" + tag
		}
		if !strings.Contains(body, tag) {
			extra = append(extra, tag)
		}
	}
	for _, mention := range mentions {
		if !strings.HasPrefix(mention, "@") {
			mention = "@" + mention
		}
		if !strings.Contains(body, mention) {
			extra = append(extra, mention)
		}
	}
	if len(extra) == 0 {
		return body
	}
	return body + "\n\n" + strings.Join(extra, " ")
}

func (s *publishService) syncPostStatus(ctx context.Context, postID int64) error {
	records, err := s.pp.ListByPostID(ctx, postID)
	if err != nil {
		return err
	}

	status := models.DeriveStatus(records)
	var publishedAt *time.Time
	if status == models.PostStatusPublished {
		now := time.Now()
		publishedAt = &now
	}
	return s.pr.UpdateStatus(ctx, postID, status, publishedAt)
}
