package job

import (
	"context"
	"log/slog"
	"time"

	config "github.com/socialsight/socialsight/configs"
	"github.com/socialsight/socialsight/internal/models"
	"github.com/socialsight/socialsight/internal/platforms"
	"github.com/socialsight/socialsight/internal/repository"
	"github.com/socialsight/socialsight/internal/service"
	"github.com/socialsight/socialsight/pkg/utils"
)

const metricsLookback = 30 * 24 * time.Hour

// MetricsJob pulls fresh engagement counters for recently published posts
// and recomputes each post's cached performance rollup.
type MetricsJob struct {
	cfg      config.Config
	registry *platforms.Registry
	pr       repository.PostRepository
	pp       repository.PlatformPostRepository
	sa       repository.SocialAccountRepository
	mr       repository.MetricsRepository
}

func NewMetricsJob(
	cfg config.Config,
	registry *platforms.Registry,
	pr repository.PostRepository,
	pp repository.PlatformPostRepository,
	sa repository.SocialAccountRepository,
	mr repository.MetricsRepository) *MetricsJob {
	return &MetricsJob{
		cfg:      cfg,
		registry: registry,
		pr:       pr,
		pp:       pp,
		sa:       sa,
		mr:       mr,
	}
}

func (j *MetricsJob) RefreshMetrics() {
	ctx := context.Background()

	records, err := j.pp.ListPublishedSince(ctx, time.Now().Add(-metricsLookback))
	if err != nil {
		slog.Info(err.Error())
		return
	}

	touched := make(map[int64]struct{})
	for _, record := range records {
		if err := j.pull(ctx, record); err != nil {
			slog.Info(err.Error())
			continue
		}
		touched[record.PostID] = struct{}{}
	}

	for postID := range touched {
		metrics, err := j.mr.ListByPostID(ctx, postID)
		if err != nil {
			slog.Info(err.Error())
			continue
		}
		perf := service.Recompute(postID, metrics, time.Now())
		if err := j.mr.UpsertPerformance(ctx, perf); err != nil {
			slog.Info(err.Error())
		}
	}
}

func (j *MetricsJob) pull(ctx context.Context, record *models.PlatformPost) error {
	adapter, err := j.registry.Get(record.Platform)
	if err != nil {
		return err
	}

	post, err := j.pr.GetByID(ctx, record.PostID)
	if err != nil {
		return err
	}
	if post == nil {
		return nil
	}

	account, err := j.sa.GetActiveByUserPlatform(ctx, post.UserID, record.Platform)
	if err != nil {
		return err
	}
	if account == nil {
		return nil
	}

	accessToken, err := utils.Decrypt(account.AccessToken, []byte(j.cfg.SecretKey))
	if err != nil {
		return err
	}
	token := &platforms.Token{AccessToken: accessToken}

	pageToken := ""
	if record.PageID != "" {
		page, err := j.sa.GetPage(ctx, account.ID, record.PageID)
		if err != nil {
			return err
		}
		if page != nil && page.AccessToken != "" {
			pageToken, err = utils.Decrypt(page.AccessToken, []byte(j.cfg.SecretKey))
			if err != nil {
				return err
			}
		}
	}

	metrics, err := adapter.FetchMetrics(ctx, token, record.PlatformPostID, pageToken)
	if err != nil {
		return err
	}

	return j.mr.Upsert(ctx, &models.PostMetrics{
		PostID:      record.PostID,
		Platform:    record.Platform,
		Likes:       metrics.Likes,
		Comments:    metrics.Comments,
		Shares:      metrics.Shares,
		Reach:       metrics.Reach,
		Impressions: metrics.Impressions,
		LastUpdated: time.Now(),
	})
}
