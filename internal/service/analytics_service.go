package service

import (
	"context"
	"errors"
	"time"

	"github.com/socialsight/socialsight/internal/models"
	"github.com/socialsight/socialsight/internal/repository"
	"github.com/socialsight/socialsight/internal/transfer"
)

var ErrAnalyticsNotIncluded = errors.New("analytics is not included in the current plan")

// timeRanges maps the API's range names to durations.
var timeRanges = map[string]time.Duration{
	"24h": 24 * time.Hour,
	"7d":  7 * 24 * time.Hour,
	"30d": 30 * 24 * time.Hour,
	"90d": 90 * 24 * time.Hour,
}

// RangeSince resolves a named time range to its start time. "all" has no
// lower bound and resolves to the zero time; unknown names fall back to
// 30 days.
func RangeSince(name string, now time.Time) (string, time.Time) {
	if name == "all" {
		return name, time.Time{}
	}
	d, ok := timeRanges[name]
	if !ok {
		name, d = "30d", timeRanges["30d"]
	}
	return name, now.Add(-d)
}

type AnalyticsService interface {
	Dashboard(ctx context.Context, userID int64, timeRange string) (*transfer.Dashboard, error)
	EngagementSeries(ctx context.Context, userID int64, timeRange, platform string) ([]transfer.EngagementPoint, error)
	ScheduleReport(ctx context.Context, userID int64, timeRange string) (*transfer.ScheduleReport, error)
	ContentReport(ctx context.Context, userID int64, timeRange string) (*transfer.ContentReport, error)
	// PostAnalytics returns the stored per-platform metrics of one post
	// together with a freshly recomputed rollup.
	PostAnalytics(ctx context.Context, userID, postID int64) ([]*models.PostMetrics, *models.Performance, error)
}

type analyticsService struct {
	ar  repository.AnalyticsRepository
	pr  repository.PostRepository
	mr  repository.MetricsRepository
	sub SubscriptionService
}

func NewAnalyticsService(
	ar repository.AnalyticsRepository,
	pr repository.PostRepository,
	mr repository.MetricsRepository,
	sub SubscriptionService) AnalyticsService {
	return &analyticsService{
		ar:  ar,
		pr:  pr,
		mr:  mr,
		sub: sub,
	}
}

func (s *analyticsService) gate(ctx context.Context, userID int64) error {
	ok, err := s.sub.HasAnalytics(ctx, userID)
	if err != nil {
		return err
	}
	if !ok {
		return ErrAnalyticsNotIncluded
	}
	return nil
}

func (s *analyticsService) Dashboard(ctx context.Context, userID int64, timeRange string) (*transfer.Dashboard, error) {
	if err := s.gate(ctx, userID); err != nil {
		return nil, err
	}
	name, since := RangeSince(timeRange, time.Now())

	overview, err := s.ar.Overview(ctx, userID, since)
	if err != nil {
		return nil, err
	}
	distribution, err := s.ar.PlatformDistribution(ctx, userID, since)
	if err != nil {
		return nil, err
	}
	daily, err := s.ar.DailyActivity(ctx, userID, since)
	if err != nil {
		return nil, err
	}
	top, err := s.ar.TopPosts(ctx, userID, since, 10)
	if err != nil {
		return nil, err
	}

	return &transfer.Dashboard{
		Overview:             *overview,
		PlatformDistribution: distribution,
		DailyActivity:        daily,
		TopPosts:             top,
		TimeRange:            name,
	}, nil
}

func (s *analyticsService) EngagementSeries(ctx context.Context, userID int64, timeRange, platform string) ([]transfer.EngagementPoint, error) {
	if err := s.gate(ctx, userID); err != nil {
		return nil, err
	}
	if platform != "" && !models.IsKnownPlatform(platform) {
		return nil, errors.New("unknown platform: " + platform)
	}
	_, since := RangeSince(timeRange, time.Now())
	return s.ar.EngagementSeries(ctx, userID, since, platform)
}

func (s *analyticsService) ScheduleReport(ctx context.Context, userID int64, timeRange string) (*transfer.ScheduleReport, error) {
	if err := s.gate(ctx, userID); err != nil {
		return nil, err
	}
	_, since := RangeSince(timeRange, time.Now())

	optimal, err := s.ar.OptimalTimes(ctx, userID, since, 5)
	if err != nil {
		return nil, err
	}
	upcoming, err := s.pr.ListUpcoming(ctx, userID, time.Now(), 10)
	if err != nil {
		return nil, err
	}
	weekly, err := s.ar.WeeklyDistribution(ctx, userID, since)
	if err != nil {
		return nil, err
	}

	return &transfer.ScheduleReport{
		OptimalTimes:       optimal,
		UpcomingPosts:      upcoming,
		WeeklyDistribution: weekly,
	}, nil
}

func (s *analyticsService) ContentReport(ctx context.Context, userID int64, timeRange string) (*transfer.ContentReport, error) {
	if err := s.gate(ctx, userID); err != nil {
		return nil, err
	}
	name, since := RangeSince(timeRange, time.Now())

	types, err := s.ar.ContentTypes(ctx, userID, since)
	if err != nil {
		return nil, err
	}
	hashtags, err := s.ar.HashtagPerformance(ctx, userID, since, 20)
	if err != nil {
		return nil, err
	}

	return &transfer.ContentReport{
		ContentTypes: types,
		Hashtags:     hashtags,
		TimeRange:    name,
	}, nil
}

func (s *analyticsService) PostAnalytics(ctx context.Context, userID, postID int64) ([]*models.PostMetrics, *models.Performance, error) {
	if err := s.gate(ctx, userID); err != nil {
		return nil, nil, err
	}
	owned, err := s.pr.CheckByUserID(ctx, postID, userID)
	if err != nil {
		return nil, nil, err
	}
	if !owned {
		return nil, nil, ErrPostNotFound
	}

	metrics, err := s.mr.ListByPostID(ctx, postID)
	if err != nil {
		return nil, nil, err
	}
	perf := Recompute(postID, metrics, time.Now())
	if err := s.mr.UpsertPerformance(ctx, perf); err != nil {
		return nil, nil, err
	}
	return metrics, perf, nil
}

// Recompute rolls per-platform metrics up into a post performance record.
// The engagement rate is engagement over impressions as a percentage, zero
// when there are no impressions. The best platform is the one with the
// highest raw engagement; ties keep the earlier platform in the fixed
// platform order.
func Recompute(postID int64, metrics []*models.PostMetrics, now time.Time) *models.Performance {
	byPlatform := make(map[string]*models.PostMetrics, len(metrics))
	perf := &models.Performance{
		PostID:         postID,
		LastCalculated: now,
	}

	for _, m := range metrics {
		perf.TotalEngagement += m.Engagement()
		perf.TotalReach += m.Reach
		perf.TotalImpressions += m.Impressions
		byPlatform[m.Platform] = m
	}

	if perf.TotalImpressions > 0 {
		perf.EngagementRate = float64(perf.TotalEngagement) / float64(perf.TotalImpressions) * 100
	}

	var best int64 = -1
	for _, platform := range models.Platforms {
		m, ok := byPlatform[platform]
		if !ok {
			continue
		}
		if e := m.Engagement(); e > best {
			best = e
			perf.BestPlatform = platform
		}
	}
	return perf
}
