package service

import (
	"context"
	"time"

	"github.com/socialsight/socialsight/internal/models"
	"github.com/socialsight/socialsight/internal/repository"
)

// PlanFeatures describes what one plan allows. Unlimited is -1.
type PlanFeatures struct {
	MaxPosts     int64 `json:"max_posts"`
	MaxPlatforms int64 `json:"max_platforms"`
	Analytics    bool  `json:"analytics"`
	Scheduling   bool  `json:"scheduling"`
}

var planFeatures = map[string]PlanFeatures{
	models.PlanFree:       {MaxPosts: 10, MaxPlatforms: 3, Analytics: false, Scheduling: true},
	models.PlanBasic:      {MaxPosts: 50, MaxPlatforms: 5, Analytics: true, Scheduling: true},
	models.PlanPro:        {MaxPosts: 200, MaxPlatforms: 10, Analytics: true, Scheduling: true},
	models.PlanEnterprise: {MaxPosts: -1, MaxPlatforms: -1, Analytics: true, Scheduling: true},
}

// FeaturesFor returns the feature set of a plan name; unknown plans get free.
func FeaturesFor(plan string) PlanFeatures {
	if f, ok := planFeatures[plan]; ok {
		return f
	}
	return planFeatures[models.PlanFree]
}

type SubscriptionService interface {
	Features(ctx context.Context, userID int64) (PlanFeatures, error)
	// CanCreatePost checks the calendar-month post quota.
	CanCreatePost(ctx context.Context, userID int64) (bool, error)
	// CanAddPlatform checks the connected-account quota.
	CanAddPlatform(ctx context.Context, userID int64) (bool, error)
	HasAnalytics(ctx context.Context, userID int64) (bool, error)
}

type subscriptionService struct {
	u  repository.UserRepository
	p  repository.PostRepository
	sa repository.SocialAccountRepository
}

func NewSubscriptionService(
	u repository.UserRepository,
	p repository.PostRepository,
	sa repository.SocialAccountRepository) SubscriptionService {
	return &subscriptionService{
		u:  u,
		p:  p,
		sa: sa,
	}
}

func (s *subscriptionService) Features(ctx context.Context, userID int64) (PlanFeatures, error) {
	user, err := s.u.GetByID(ctx, userID)
	if err != nil {
		return PlanFeatures{}, err
	}
	if user == nil {
		return FeaturesFor(models.PlanFree), nil
	}
	return FeaturesFor(user.EffectivePlan(time.Now())), nil
}

func (s *subscriptionService) CanCreatePost(ctx context.Context, userID int64) (bool, error) {
	features, err := s.Features(ctx, userID)
	if err != nil {
		return false, err
	}
	if features.MaxPosts < 0 {
		return true, nil
	}

	now := time.Now().UTC()
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	count, err := s.p.CountByUserSince(ctx, userID, monthStart)
	if err != nil {
		return false, err
	}
	return count < features.MaxPosts, nil
}

func (s *subscriptionService) CanAddPlatform(ctx context.Context, userID int64) (bool, error) {
	features, err := s.Features(ctx, userID)
	if err != nil {
		return false, err
	}
	if features.MaxPlatforms < 0 {
		return true, nil
	}

	count, err := s.sa.CountActiveByUser(ctx, userID)
	if err != nil {
		return false, err
	}
	return count < features.MaxPlatforms, nil
}

func (s *subscriptionService) HasAnalytics(ctx context.Context, userID int64) (bool, error) {
	features, err := s.Features(ctx, userID)
	if err != nil {
		return false, err
	}
	return features.Analytics, nil
}
