package service

import (
	"context"
	"testing"
	"time"

	"github.com/socialsight/socialsight/internal/models"
	"github.com/stretchr/testify/assert"
)

func TestFeaturesFor(t *testing.T) {
	assert.Equal(t, int64(10), FeaturesFor(models.PlanFree).MaxPosts)
	assert.Equal(t, int64(3), FeaturesFor(models.PlanFree).MaxPlatforms)
	assert.False(t, FeaturesFor(models.PlanFree).Analytics)

	assert.Equal(t, int64(50), FeaturesFor(models.PlanBasic).MaxPosts)
	assert.True(t, FeaturesFor(models.PlanBasic).Analytics)

	assert.Equal(t, int64(200), FeaturesFor(models.PlanPro).MaxPosts)

	assert.Equal(t, int64(-1), FeaturesFor(models.PlanEnterprise).MaxPosts)
	assert.Equal(t, int64(-1), FeaturesFor(models.PlanEnterprise).MaxPlatforms)

	// unknown plans degrade to free
	assert.Equal(t, FeaturesFor(models.PlanFree), FeaturesFor("platinum"))
	assert.Equal(t, FeaturesFor(models.PlanFree), FeaturesFor(""))
}

func TestFeaturesExpiredPlanBehavesAsFree(t *testing.T) {
	expired := time.Now().Add(-time.Hour)
	users := &fakeUserRepo{users: map[int64]*models.User{
		1: {ID: 1, Plan: models.PlanPro, PlanExpiresAt: &expired},
	}}
	s := NewSubscriptionService(users, &fakePostRepo{}, &fakeSocialAccountRepo{})

	features, err := s.Features(context.Background(), 1)
	assert.NoError(t, err)
	assert.Equal(t, FeaturesFor(models.PlanFree), features)
}

func TestCanCreatePost(t *testing.T) {
	cases := []struct {
		name       string
		plan       string
		monthCount int64
		allowed    bool
	}{
		{"free under quota", models.PlanFree, 9, true},
		{"free at quota", models.PlanFree, 10, false},
		{"free over quota", models.PlanFree, 11, false},
		{"basic under quota", models.PlanBasic, 49, true},
		{"basic at quota", models.PlanBasic, 50, false},
		{"enterprise is unlimited", models.PlanEnterprise, 100000, true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			users := &fakeUserRepo{users: map[int64]*models.User{
				1: {ID: 1, Plan: tc.plan},
			}}
			posts := &fakePostRepo{countSince: tc.monthCount}
			s := NewSubscriptionService(users, posts, &fakeSocialAccountRepo{})

			ok, err := s.CanCreatePost(context.Background(), 1)
			assert.NoError(t, err)
			assert.Equal(t, tc.allowed, ok)
		})
	}
}

func TestCanCreatePostCountsCalendarMonth(t *testing.T) {
	users := &fakeUserRepo{users: map[int64]*models.User{1: {ID: 1, Plan: models.PlanFree}}}
	posts := &fakePostRepo{}
	s := NewSubscriptionService(users, posts, &fakeSocialAccountRepo{})

	_, err := s.CanCreatePost(context.Background(), 1)
	assert.NoError(t, err)

	now := time.Now().UTC()
	assert.Equal(t, 1, posts.lastSince.Day())
	assert.Equal(t, now.Month(), posts.lastSince.Month())
	assert.Equal(t, 0, posts.lastSince.Hour())
	assert.Equal(t, time.UTC, posts.lastSince.Location())
}

func TestCanAddPlatform(t *testing.T) {
	cases := []struct {
		name    string
		plan    string
		active  int64
		allowed bool
	}{
		{"free under limit", models.PlanFree, 2, true},
		{"free at limit", models.PlanFree, 3, false},
		{"pro under limit", models.PlanPro, 9, true},
		{"pro at limit", models.PlanPro, 10, false},
		{"enterprise is unlimited", models.PlanEnterprise, 500, true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			users := &fakeUserRepo{users: map[int64]*models.User{
				1: {ID: 1, Plan: tc.plan},
			}}
			accounts := &fakeSocialAccountRepo{activeCount: tc.active}
			s := NewSubscriptionService(users, &fakePostRepo{}, accounts)

			ok, err := s.CanAddPlatform(context.Background(), 1)
			assert.NoError(t, err)
			assert.Equal(t, tc.allowed, ok)
		})
	}
}

func TestHasAnalytics(t *testing.T) {
	users := &fakeUserRepo{users: map[int64]*models.User{
		1: {ID: 1, Plan: models.PlanFree},
		2: {ID: 2, Plan: models.PlanBasic},
	}}
	s := NewSubscriptionService(users, &fakePostRepo{}, &fakeSocialAccountRepo{})

	ok, err := s.HasAnalytics(context.Background(), 1)
	assert.NoError(t, err)
	assert.False(t, ok)

	ok, err = s.HasAnalytics(context.Background(), 2)
	assert.NoError(t, err)
	assert.True(t, ok)
}
