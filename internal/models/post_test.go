package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsKnownPlatform(t *testing.T) {
	for _, p := range Platforms {
		assert.True(t, IsKnownPlatform(p), "expected %s to be known", p)
	}
	assert.False(t, IsKnownPlatform("myspace"))
	assert.False(t, IsKnownPlatform(""))
	assert.False(t, IsKnownPlatform("Facebook"))
}

func TestCanTransition(t *testing.T) {
	cases := []struct {
		from    string
		to      string
		allowed bool
	}{
		{PlatformStatusDraft, PlatformStatusScheduled, true},
		{PlatformStatusDraft, PlatformStatusFailed, true},
		{PlatformStatusDraft, PlatformStatusPublished, false},
		{PlatformStatusScheduled, PlatformStatusPublishing, true},
		{PlatformStatusScheduled, PlatformStatusFailed, true},
		{PlatformStatusScheduled, PlatformStatusDraft, false},
		{PlatformStatusPublishing, PlatformStatusPublished, true},
		{PlatformStatusPublishing, PlatformStatusFailed, true},
		{PlatformStatusPublishing, PlatformStatusScheduled, false},
		{PlatformStatusPublished, PlatformStatusFailed, false},
		{PlatformStatusPublished, PlatformStatusPublishing, false},
		{PlatformStatusFailed, PlatformStatusPublishing, false},
		{PlatformStatusFailed, PlatformStatusScheduled, false},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.allowed, CanTransition(tc.from, tc.to), "%s -> %s", tc.from, tc.to)
	}
}

func TestCanRetry(t *testing.T) {
	assert.True(t, CanRetry(PlatformStatusFailed))
	assert.False(t, CanRetry(PlatformStatusDraft))
	assert.False(t, CanRetry(PlatformStatusScheduled))
	assert.False(t, CanRetry(PlatformStatusPublishing))
	assert.False(t, CanRetry(PlatformStatusPublished))
}

func TestDeriveStatus(t *testing.T) {
	records := func(statuses ...string) []*PlatformPost {
		out := make([]*PlatformPost, 0, len(statuses))
		for _, s := range statuses {
			out = append(out, &PlatformPost{Status: s})
		}
		return out
	}

	cases := []struct {
		name     string
		records  []*PlatformPost
		expected string
	}{
		{"no records", nil, PostStatusDraft},
		{"all drafts", records(PlatformStatusDraft, PlatformStatusDraft), PostStatusDraft},
		{"all scheduled", records(PlatformStatusScheduled, PlatformStatusScheduled), PostStatusScheduled},
		{"one publishing", records(PlatformStatusDraft, PlatformStatusPublishing), PostStatusScheduled},
		{"one published wins", records(PlatformStatusFailed, PlatformStatusPublished), PostStatusPublished},
		{"published beats scheduled", records(PlatformStatusScheduled, PlatformStatusPublished), PostStatusPublished},
		{"all failed", records(PlatformStatusFailed, PlatformStatusFailed), PostStatusFailed},
		{"partial failure stays scheduled", records(PlatformStatusFailed, PlatformStatusScheduled), PostStatusScheduled},
		{"failed with draft stays draft", records(PlatformStatusFailed, PlatformStatusDraft), PostStatusDraft},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, DeriveStatus(tc.records))
		})
	}
}

func TestPostMetricsEngagement(t *testing.T) {
	m := &PostMetrics{Likes: 10, Comments: 5, Shares: 3}
	assert.Equal(t, int64(18), m.Engagement())

	empty := &PostMetrics{}
	assert.Equal(t, int64(0), empty.Engagement())
}
