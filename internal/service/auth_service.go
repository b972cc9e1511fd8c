package service

import (
	"context"
	"errors"
	"log/slog"
	"strconv"
	"time"

	config "github.com/socialsight/socialsight/configs"
	"github.com/socialsight/socialsight/internal/models"
	"github.com/socialsight/socialsight/internal/repository"
	"github.com/socialsight/socialsight/internal/transfer"
	"github.com/socialsight/socialsight/pkg/utils"
)

var (
	ErrEmailTaken         = errors.New("email is already registered")
	ErrUsernameTaken      = errors.New("username is already taken")
	ErrInvalidCredentials = errors.New("invalid email or password")
)

const sessionDuration = 7 * 24 * time.Hour

type AuthService interface {
	Register(ctx context.Context, req *transfer.RegisterRequest) (string, int64, error)
	Login(ctx context.Context, req *transfer.LoginRequest) (string, int64, error)
}

type authService struct {
	cfg config.Config
	u   repository.UserRepository
}

func NewAuthService(cfg config.Config, u repository.UserRepository) AuthService {
	return &authService{
		cfg: cfg,
		u:   u,
	}
}

// Register creates the account on the free plan and returns a session token.
func (s *authService) Register(ctx context.Context, req *transfer.RegisterRequest) (string, int64, error) {
	if req.Email == "" || req.Username == "" || req.Password == "" {
		return "", 0, errors.New("email, username and password are required")
	}
	if len(req.Password) < 8 {
		return "", 0, errors.New("password must be at least 8 characters")
	}

	existing, err := s.u.GetByEmail(ctx, req.Email)
	if err != nil {
		return "", 0, err
	}
	if existing != nil {
		return "", 0, ErrEmailTaken
	}

	existing, err = s.u.GetByUsername(ctx, req.Username)
	if err != nil {
		return "", 0, err
	}
	if existing != nil {
		return "", 0, ErrUsernameTaken
	}

	hash, err := utils.HashPassword(req.Password)
	if err != nil {
		slog.Info(err.Error())
		return "", 0, err
	}

	userID, err := s.u.Create(ctx, &models.User{
		Email:        req.Email,
		Username:     req.Username,
		PasswordHash: hash,
		Name:         req.Name,
		Plan:         models.PlanFree,
		Timezone:     "UTC",
	})
	if err != nil {
		return "", 0, err
	}

	token, err := utils.GenerateToken(s.cfg.SecretKey, strconv.FormatInt(userID, 10), sessionDuration)
	if err != nil {
		return "", 0, err
	}
	return token, userID, nil
}

func (s *authService) Login(ctx context.Context, req *transfer.LoginRequest) (string, int64, error) {
	user, err := s.u.GetByEmail(ctx, req.Email)
	if err != nil {
		return "", 0, err
	}
	if user == nil || !user.IsActive {
		return "", 0, ErrInvalidCredentials
	}

	if !utils.CheckPassword(req.Password, user.PasswordHash) {
		return "", 0, ErrInvalidCredentials
	}

	if err := s.u.UpdateLastSeen(ctx, user.ID); err != nil {
		slog.Info(err.Error())
	}

	token, err := utils.GenerateToken(s.cfg.SecretKey, strconv.FormatInt(user.ID, 10), sessionDuration)
	if err != nil {
		return "", 0, err
	}
	return token, user.ID, nil
}
