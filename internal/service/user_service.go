package service

import (
	"context"
	"errors"

	"github.com/socialsight/socialsight/internal/models"
	"github.com/socialsight/socialsight/internal/repository"
	"github.com/socialsight/socialsight/internal/transfer"
)

var ErrUserNotFound = errors.New("user not found")

type UserService interface {
	Profile(ctx context.Context, userID int64) (*models.User, int64, int64, error)
	UpdateProfile(ctx context.Context, userID int64, update *transfer.ProfileUpdate) error
	Follow(ctx context.Context, followerID, followedID int64) error
	Unfollow(ctx context.Context, followerID, followedID int64) error
}

type userService struct {
	u repository.UserRepository
}

func NewUserService(u repository.UserRepository) UserService {
	return &userService{u: u}
}

// Profile returns the user with follower and following counts.
func (s *userService) Profile(ctx context.Context, userID int64) (*models.User, int64, int64, error) {
	user, err := s.u.GetByID(ctx, userID)
	if err != nil {
		return nil, 0, 0, err
	}
	if user == nil {
		return nil, 0, 0, ErrUserNotFound
	}

	followers, err := s.u.CountFollowers(ctx, userID)
	if err != nil {
		return nil, 0, 0, err
	}
	following, err := s.u.CountFollowing(ctx, userID)
	if err != nil {
		return nil, 0, 0, err
	}
	return user, followers, following, nil
}

func (s *userService) UpdateProfile(ctx context.Context, userID int64, update *transfer.ProfileUpdate) error {
	user, err := s.u.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	if user == nil {
		return ErrUserNotFound
	}

	if update.Name != "" {
		user.Name = update.Name
	}
	if update.Bio != "" {
		user.Bio = update.Bio
	}
	if update.Location != "" {
		user.Location = update.Location
	}
	if update.Website != "" {
		user.Website = update.Website
	}
	if update.Avatar != "" {
		user.Avatar = update.Avatar
	}
	if update.Timezone != "" {
		user.Timezone = update.Timezone
	}
	return s.u.UpdateProfile(ctx, user)
}

func (s *userService) Follow(ctx context.Context, followerID, followedID int64) error {
	if followerID == followedID {
		return errors.New("cannot follow yourself")
	}
	target, err := s.u.GetByID(ctx, followedID)
	if err != nil {
		return err
	}
	if target == nil {
		return ErrUserNotFound
	}
	return s.u.Follow(ctx, followerID, followedID)
}

func (s *userService) Unfollow(ctx context.Context, followerID, followedID int64) error {
	return s.u.Unfollow(ctx, followerID, followedID)
}
