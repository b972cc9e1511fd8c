package service

import (
	"context"
	"errors"
	"log/slog"
	"strconv"

	config "github.com/socialsight/socialsight/configs"
	"github.com/socialsight/socialsight/internal/models"
	"github.com/socialsight/socialsight/internal/platforms"
	"github.com/socialsight/socialsight/internal/repository"
	"github.com/socialsight/socialsight/pkg/utils"
)

var (
	ErrPlatformQuota   = errors.New("platform connection limit reached for plan")
	ErrAccountNotFound = errors.New("social account not found")
)

// PlatformService runs the OAuth connection lifecycle for every platform
// through the adapter registry.
type PlatformService interface {
	AuthURL(ctx context.Context, userID int64, platform string) (string, error)
	Callback(ctx context.Context, state, code string) (int64, string, error)
	ListAccounts(ctx context.Context, userID int64) ([]*models.SocialAccount, error)
	ListPages(ctx context.Context, userID, accountID int64) ([]*models.SocialPage, error)
	Disconnect(ctx context.Context, userID, accountID int64) error
}

type platformService struct {
	cfg      config.Config
	registry *platforms.Registry
	sa       repository.SocialAccountRepository
	sub      SubscriptionService
}

func NewPlatformService(
	cfg config.Config,
	registry *platforms.Registry,
	sa repository.SocialAccountRepository,
	sub SubscriptionService) PlatformService {
	return &platformService{
		cfg:      cfg,
		registry: registry,
		sa:       sa,
		sub:      sub,
	}
}

// AuthURL builds the provider consent URL with a signed state token so the
// callback can be tied back to the initiating user.
func (s *platformService) AuthURL(ctx context.Context, userID int64, platform string) (string, error) {
	adapter, err := s.registry.Get(platform)
	if err != nil {
		return "", err
	}

	// Reconnecting an already linked platform does not consume quota.
	existing, err := s.sa.GetActiveByUserPlatform(ctx, userID, platform)
	if err != nil {
		return "", err
	}
	if existing == nil {
		ok, err := s.sub.CanAddPlatform(ctx, userID)
		if err != nil {
			return "", err
		}
		if !ok {
			return "", ErrPlatformQuota
		}
	}

	state, err := utils.GenerateStateToken(s.cfg.SecretKey, strconv.FormatInt(userID, 10), platform)
	if err != nil {
		return "", err
	}
	return adapter.AuthURL(state), nil
}

// Callback validates the state, exchanges the code, fetches the profile and
// pages, and replaces any prior connection for the platform. Tokens are
// encrypted before they touch the database.
func (s *platformService) Callback(ctx context.Context, state, code string) (int64, string, error) {
	if code == "" || state == "" {
		err := errors.New("code or state is empty")
		slog.Info(err.Error())
		return 0, "", err
	}

	claims, err := utils.ValidateStateToken(s.cfg.SecretKey, state)
	if err != nil {
		return 0, "", err
	}
	userID, err := strconv.ParseInt(claims.UserID, 10, 64)
	if err != nil {
		slog.Info(err.Error())
		return 0, "", err
	}

	adapter, err := s.registry.Get(claims.Platform)
	if err != nil {
		return 0, "", err
	}

	existing, err := s.sa.GetActiveByUserPlatform(ctx, userID, claims.Platform)
	if err != nil {
		return 0, "", err
	}
	if existing == nil {
		ok, err := s.sub.CanAddPlatform(ctx, userID)
		if err != nil {
			return 0, "", err
		}
		if !ok {
			return 0, "", ErrPlatformQuota
		}
	}

	token, err := adapter.ExchangeCode(ctx, code)
	if err != nil {
		return 0, "", err
	}

	profile, err := adapter.FetchProfile(ctx, token)
	if err != nil {
		return 0, "", err
	}

	remotePages, err := adapter.FetchPages(ctx, token)
	if err != nil {
		return 0, "", err
	}

	encryptedAccess, err := utils.Encrypt([]byte(token.AccessToken), []byte(s.cfg.SecretKey))
	if err != nil {
		return 0, "", err
	}
	encryptedRefresh := ""
	if token.RefreshToken != "" {
		encryptedRefresh, err = utils.Encrypt([]byte(token.RefreshToken), []byte(s.cfg.SecretKey))
		if err != nil {
			return 0, "", err
		}
	}

	account := &models.SocialAccount{
		UserID:         userID,
		Platform:       claims.Platform,
		PlatformUserID: profile.ID,
		Username:       profile.Username,
		DisplayName:    profile.DisplayName,
		Avatar:         profile.Avatar,
		AccessToken:    encryptedAccess,
		RefreshToken:   encryptedRefresh,
		TokenExpiresAt: token.ExpiresAt,
		Scopes:         token.Scopes,
	}

	pages := make([]*models.SocialPage, 0, len(remotePages))
	for _, p := range remotePages {
		encryptedPageToken := ""
		if p.AccessToken != "" {
			encryptedPageToken, err = utils.Encrypt([]byte(p.AccessToken), []byte(s.cfg.SecretKey))
			if err != nil {
				return 0, "", err
			}
		}
		pages = append(pages, &models.SocialPage{
			PageID:      p.ID,
			Name:        p.Name,
			AccessToken: encryptedPageToken,
			PageType:    p.PageType,
			Followers:   p.Followers,
		})
	}

	accountID, err := s.sa.Replace(ctx, account, pages)
	if err != nil {
		return 0, "", err
	}
	return accountID, claims.Platform, nil
}

func (s *platformService) ListAccounts(ctx context.Context, userID int64) ([]*models.SocialAccount, error) {
	return s.sa.ListByUserID(ctx, userID)
}

func (s *platformService) ListPages(ctx context.Context, userID, accountID int64) ([]*models.SocialPage, error) {
	exists, err := s.sa.CheckByUserID(ctx, accountID, userID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, ErrAccountNotFound
	}
	return s.sa.ListPagesByAccount(ctx, accountID)
}

func (s *platformService) Disconnect(ctx context.Context, userID, accountID int64) error {
	exists, err := s.sa.CheckByUserID(ctx, accountID, userID)
	if err != nil {
		return err
	}
	if !exists {
		return ErrAccountNotFound
	}
	return s.sa.Remove(ctx, accountID, userID)
}
