package service

import (
	"testing"
	"time"

	"github.com/socialsight/socialsight/internal/models"
	"github.com/stretchr/testify/assert"
)

func TestRecompute(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	t.Run("no metrics", func(t *testing.T) {
		perf := Recompute(7, nil, now)
		assert.Equal(t, int64(7), perf.PostID)
		assert.Equal(t, int64(0), perf.TotalEngagement)
		assert.Equal(t, float64(0), perf.EngagementRate)
		assert.Equal(t, "", perf.BestPlatform)
		assert.Equal(t, now, perf.LastCalculated)
	})

	t.Run("zero impressions yields zero rate", func(t *testing.T) {
		metrics := []*models.PostMetrics{
			{Platform: "twitter", Likes: 50, Comments: 10},
		}
		perf := Recompute(1, metrics, now)
		assert.Equal(t, int64(60), perf.TotalEngagement)
		assert.Equal(t, float64(0), perf.EngagementRate)
		assert.Equal(t, "twitter", perf.BestPlatform)
	})

	t.Run("rate is engagement over impressions", func(t *testing.T) {
		metrics := []*models.PostMetrics{
			{Platform: "facebook", Likes: 10, Comments: 5, Shares: 3, Reach: 80, Impressions: 100},
		}
		perf := Recompute(1, metrics, now)
		assert.Equal(t, int64(18), perf.TotalEngagement)
		assert.Equal(t, int64(80), perf.TotalReach)
		assert.Equal(t, int64(100), perf.TotalImpressions)
		assert.InDelta(t, 18.0, perf.EngagementRate, 0.0001)
	})

	t.Run("sums across platforms", func(t *testing.T) {
		metrics := []*models.PostMetrics{
			{Platform: "facebook", Likes: 10, Impressions: 100},
			{Platform: "instagram", Likes: 30, Impressions: 100},
		}
		perf := Recompute(1, metrics, now)
		assert.Equal(t, int64(40), perf.TotalEngagement)
		assert.Equal(t, int64(200), perf.TotalImpressions)
		assert.InDelta(t, 20.0, perf.EngagementRate, 0.0001)
		assert.Equal(t, "instagram", perf.BestPlatform)
	})

	t.Run("tie goes to the earlier platform", func(t *testing.T) {
		metrics := []*models.PostMetrics{
			{Platform: "twitter", Likes: 25},
			{Platform: "facebook", Likes: 25},
		}
		perf := Recompute(1, metrics, now)
		assert.Equal(t, "facebook", perf.BestPlatform)
	})
}

func TestRangeSince(t *testing.T) {
	now := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)

	cases := []struct {
		in       string
		resolved string
		hours    int
	}{
		{"24h", "24h", 24},
		{"7d", "7d", 7 * 24},
		{"30d", "30d", 30 * 24},
		{"90d", "90d", 90 * 24},
		{"bogus", "30d", 30 * 24},
		{"", "30d", 30 * 24},
	}

	for _, tc := range cases {
		name, since := RangeSince(tc.in, now)
		assert.Equal(t, tc.resolved, name, "range %q", tc.in)
		assert.Equal(t, now.Add(-time.Duration(tc.hours)*time.Hour), since, "range %q", tc.in)
	}

	name, since := RangeSince("all", now)
	assert.Equal(t, "all", name)
	assert.True(t, since.IsZero())
}
