package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"time"

	"github.com/h2non/filetype"
	"github.com/h2non/filetype/types"
	"github.com/socialsight/socialsight/internal/models"
	"github.com/socialsight/socialsight/internal/repository"
	"github.com/socialsight/socialsight/internal/transfer"
	gonanoid "github.com/matoous/go-nanoid/v2"
)

var (
	ErrPostNotFound  = errors.New("post doesn't exist")
	ErrPostQuota     = errors.New("monthly post limit reached for plan")
	ErrPostImmutable = errors.New("post can no longer be edited")
)

const defaultPageSize = 20

type PostService interface {
	CreatePost(ctx context.Context, userID int64, pc *transfer.PostCreation, files []*multipart.FileHeader) (int64, time.Duration, error)
	UpdatePost(ctx context.Context, userID, postID int64, update *transfer.PostUpdate) error
	List(ctx context.Context, userID int64, page int) (*transfer.PostPage, error)
	// ListAll pages over every user's posts, newest first.
	ListAll(ctx context.Context, page int) ([]*models.Post, error)
	PostInfo(ctx context.Context, postID, userID int64) (*models.Post, []*models.PlatformPost, []*models.MediaAsset, error)
	Upcoming(ctx context.Context, userID int64, limit int) ([]*models.Post, error)
	Remove(ctx context.Context, userID, postID int64) error
}

type postService struct {
	db  *sql.DB
	pr  repository.PostRepository
	pp  repository.PlatformPostRepository
	sa  repository.SocialAccountRepository
	md  repository.MediaRepository
	st  *StorageService
	sub SubscriptionService
}

func NewPostService(
	db *sql.DB,
	pr repository.PostRepository,
	pp repository.PlatformPostRepository,
	sa repository.SocialAccountRepository,
	md repository.MediaRepository,
	st *StorageService,
	sub SubscriptionService) PostService {
	return &postService{
		db:  db,
		pr:  pr,
		pp:  pp,
		sa:  sa,
		md:  md,
		st:  st,
		sub: sub,
	}
}

// CreatePost validates the payload, writes the post with its platform
// records and media inside one transaction, and returns the delay until the
// scheduled time. A zero delay with an empty ScheduledTime means draft.
func (s *postService) CreatePost(ctx context.Context, userID int64, pc *transfer.PostCreation, files []*multipart.FileHeader) (int64, time.Duration, error) {
	if pc == nil {
		err := errors.New("post creation data is nil")
		slog.Error(err.Error())
		return 0, 0, err
	}
	if pc.Body == "" {
		err := errors.New("body cannot be empty")
		slog.Info(err.Error())
		return 0, 0, err
	}

	ok, err := s.sub.CanCreatePost(ctx, userID)
	if err != nil {
		return 0, 0, err
	}
	if !ok {
		return 0, 0, ErrPostQuota
	}

	var scheduledTime *time.Time
	if pc.ScheduledTime != "" {
		t, err := time.Parse("2006-01-02T15:04", pc.ScheduledTime)
		if err != nil {
			err = fmt.Errorf("invalid scheduled time format: %w", err)
			slog.Error(err.Error())
			return 0, 0, err
		}
		scheduledTime = &t
	}

	platformNames, err := parsePlatforms(pc.Platforms)
	if err != nil {
		return 0, 0, err
	}

	hashtags, err := parseStringList(pc.Hashtags)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid hashtags format: %w", err)
	}
	mentions, err := parseStringList(pc.Mentions)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid mentions format: %w", err)
	}

	for _, platform := range platformNames {
		account, err := s.sa.GetActiveByUserPlatform(ctx, userID, platform)
		if err != nil {
			return 0, 0, err
		}
		if account == nil {
			return 0, 0, fmt.Errorf("no connected account for platform %s", platform)
		}
	}

	status := models.PostStatusDraft
	platformStatus := models.PlatformStatusDraft
	if scheduledTime != nil {
		status = models.PostStatusScheduled
		platformStatus = models.PlatformStatusScheduled
	}

	tx, err := s.db.BeginTx(ctx, &sql.TxOptions{})
	if err != nil {
		return 0, 0, fmt.Errorf("failed to start transaction: %w", err)
	}
	defer func() {
		if p := recover(); p != nil {
			tx.Rollback()
			panic(p)
		} else if err != nil {
			tx.Rollback()
		}
	}()

	post := models.Post{
		UserID:        userID,
		Title:         pc.Title,
		Body:          pc.Body,
		Hashtags:      hashtags,
		Mentions:      mentions,
		IsStory:       pc.IsStory == "true",
		Status:        status,
		ScheduledTime: scheduledTime,
	}

	postID, err := s.pr.Create(ctx, tx, &post)
	if err != nil {
		return 0, 0, fmt.Errorf("error creating post: %w", err)
	}

	for _, platform := range platformNames {
		record := models.PlatformPost{
			PostID:       postID,
			Platform:     platform,
			Status:       platformStatus,
			ScheduledFor: scheduledTime,
		}
		if _, err = s.pp.Create(ctx, tx, &record); err != nil {
			return 0, 0, fmt.Errorf("error saving platform record %s: %w", platform, err)
		}
	}

	if err = s.processFiles(ctx, tx, userID, postID, files); err != nil {
		return 0, 0, fmt.Errorf("error processing files: %w", err)
	}

	if err = tx.Commit(); err != nil {
		return 0, 0, fmt.Errorf("failed to commit transaction: %w", err)
	}

	if scheduledTime == nil {
		return postID, 0, nil
	}
	delay := time.Until(*scheduledTime)
	if delay < 0 {
		delay = 0
	}
	return postID, delay, nil
}

func parsePlatforms(raw string) ([]string, error) {
	var names []string
	if err := json.Unmarshal([]byte(raw), &names); err != nil {
		err = fmt.Errorf("invalid platforms format: %w", err)
		slog.Error(err.Error())
		return nil, err
	}
	if len(names) == 0 {
		err := errors.New("no platforms selected")
		slog.Error(err.Error())
		return nil, err
	}
	seen := make(map[string]struct{}, len(names))
	for _, name := range names {
		if !models.IsKnownPlatform(name) {
			return nil, fmt.Errorf("unknown platform: %s", name)
		}
		if _, dup := seen[name]; dup {
			return nil, fmt.Errorf("duplicate platform: %s", name)
		}
		seen[name] = struct{}{}
	}
	return names, nil
}

func parseStringList(raw string) ([]string, error) {
	if raw == "" {
		return nil, nil
	}
	var list []string
	if err := json.Unmarshal([]byte(raw), &list); err != nil {
		return nil, err
	}
	return list, nil
}

func (s *postService) processFiles(ctx context.Context, tx *sql.Tx, userID, postID int64, files []*multipart.FileHeader) error {
	allowedTypes := map[string]struct{}{
		"mp4": {}, "mov": {}, "jpeg": {}, "png": {}, "jpg": {},
	}

	for i, file := range files {
		fileContent, err := file.Open()
		if err != nil {
			return fmt.Errorf("error opening file: %w", err)
		}
		defer fileContent.Close()

		fileBytes, err := io.ReadAll(fileContent)
		if err != nil {
			return fmt.Errorf("error reading file content: %w", err)
		}

		fileType, err := filetype.Match(fileBytes)
		if err != nil || fileType == types.Unknown {
			return fmt.Errorf("unsupported file type: %w", err)
		}
		if _, ok := allowedTypes[fileType.Extension]; !ok {
			return fmt.Errorf("file type %s is not allowed", fileType.Extension)
		}

		assetID, err := s.saveFile(ctx, tx, userID, fileType.MIME.Value, fileBytes)
		if err != nil {
			return fmt.Errorf("error uploading file: %w", err)
		}

		if err := s.md.AttachToPost(ctx, tx, postID, assetID, i); err != nil {
			return fmt.Errorf("error saving media file: %w", err)
		}
	}
	return nil
}

func (s *postService) saveFile(ctx context.Context, tx *sql.Tx, userID int64, fileType string, file []byte) (int64, error) {
	id, err := gonanoid.New()
	if err != nil {
		slog.Info(err.Error())
		return 0, err
	}
	if err = s.st.Upload(ctx, id, file, fileType); err != nil {
		return 0, err
	}

	ma := models.MediaAsset{
		UserID:   userID,
		FileName: id,
		FileType: fileType,
		FileSize: int64(len(file)),
		FileURL:  s.st.PublicURL(id),
	}
	return s.md.CreateAsset(ctx, tx, &ma)
}

// UpdatePost edits a draft or scheduled post. Once any platform record has
// started publishing the post is frozen. Concurrent edits are caught by the
// post's version column.
func (s *postService) UpdatePost(ctx context.Context, userID, postID int64, update *transfer.PostUpdate) error {
	post, err := s.ownedPost(ctx, postID, userID)
	if err != nil {
		return err
	}

	records, err := s.pp.ListByPostID(ctx, postID)
	if err != nil {
		return err
	}
	for _, r := range records {
		if r.Status == models.PlatformStatusPublishing || r.Status == models.PlatformStatusPublished {
			return ErrPostImmutable
		}
	}

	if update.Title != "" {
		post.Title = update.Title
	}
	if update.Body != "" {
		post.Body = update.Body
	}
	if update.ScheduledTime != "" {
		t, err := time.Parse("2006-01-02T15:04", update.ScheduledTime)
		if err != nil {
			return fmt.Errorf("invalid scheduled time format: %w", err)
		}
		post.ScheduledTime = &t
		post.Status = models.PostStatusScheduled
		if err := s.pp.MarkScheduled(ctx, postID, &t); err != nil {
			return err
		}
	}
	return s.pr.Update(ctx, post)
}

func (s *postService) List(ctx context.Context, userID int64, page int) (*transfer.PostPage, error) {
	if page < 1 {
		page = 1
	}
	offset := (page - 1) * defaultPageSize

	posts, err := s.pr.ListByUserID(ctx, userID, defaultPageSize, offset)
	if err != nil {
		return nil, err
	}
	total, err := s.pr.CountByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}

	pages := int((total + defaultPageSize - 1) / defaultPageSize)
	return &transfer.PostPage{
		Posts: posts,
		Page:  page,
		Pages: pages,
		Total: total,
	}, nil
}

func (s *postService) ListAll(ctx context.Context, page int) ([]*models.Post, error) {
	if page < 1 {
		page = 1
	}
	offset := (page - 1) * defaultPageSize
	return s.pr.ListAll(ctx, defaultPageSize, offset)
}

func (s *postService) PostInfo(ctx context.Context, postID, userID int64) (*models.Post, []*models.PlatformPost, []*models.MediaAsset, error) {
	post, err := s.ownedPost(ctx, postID, userID)
	if err != nil {
		return nil, nil, nil, err
	}

	records, err := s.pp.ListByPostID(ctx, postID)
	if err != nil {
		return nil, nil, nil, err
	}
	assets, err := s.md.ListAssetsByPostID(ctx, postID)
	if err != nil {
		return nil, nil, nil, err
	}
	return post, records, assets, nil
}

func (s *postService) Upcoming(ctx context.Context, userID int64, limit int) ([]*models.Post, error) {
	if limit <= 0 {
		limit = 10
	}
	return s.pr.ListUpcoming(ctx, userID, time.Now(), limit)
}

func (s *postService) Remove(ctx context.Context, userID, postID int64) error {
	if _, err := s.ownedPost(ctx, postID, userID); err != nil {
		return err
	}
	return s.pr.SoftDelete(ctx, postID)
}

func (s *postService) ownedPost(ctx context.Context, postID, userID int64) (*models.Post, error) {
	isValid, err := s.pr.CheckByUserID(ctx, postID, userID)
	if err != nil {
		return nil, err
	}
	if !isValid {
		slog.Info(ErrPostNotFound.Error())
		return nil, ErrPostNotFound
	}

	post, err := s.pr.GetByID(ctx, postID)
	if err != nil {
		return nil, err
	}
	if post == nil {
		return nil, ErrPostNotFound
	}
	return post, nil
}
