package job

import (
	"context"
	"log/slog"
	"sync"
	"time"

	config "github.com/socialsight/socialsight/configs"
	"github.com/socialsight/socialsight/internal/models"
	"github.com/socialsight/socialsight/internal/platforms"
	"github.com/socialsight/socialsight/internal/repository"
	"github.com/socialsight/socialsight/pkg/utils"
)

// TokenRefreshJob refreshes OAuth tokens expiring within the next half
// hour. A failed refresh leaves the stored token untouched; the next run
// picks the account up again while it is still inside the window.
type TokenRefreshJob struct {
	cfg      config.Config
	registry *platforms.Registry
	sr       repository.SocialAccountRepository
}

func NewTokenRefreshJob(
	cfg config.Config,
	registry *platforms.Registry,
	sr repository.SocialAccountRepository) *TokenRefreshJob {
	return &TokenRefreshJob{
		cfg:      cfg,
		registry: registry,
		sr:       sr,
	}
}

func (c *TokenRefreshJob) RefreshTokens() {
	ctx := context.Background()

	currentTime := time.Now()
	timeIn30Minutes := currentTime.Add(30 * time.Minute)

	accounts, err := c.sr.ListExpiring(ctx, currentTime, timeIn30Minutes)
	if err != nil {
		slog.Info(err.Error())
		return
	}

	var wg sync.WaitGroup

	concurrencyLimit := 10
	semaphore := make(chan struct{}, concurrencyLimit)

	for _, acc := range accounts {

		wg.Add(1)
		semaphore <- struct{}{}

		go func(acc *models.SocialAccount) {
			defer wg.Done()
			defer func() { <-semaphore }()

			if err := c.refresh(ctx, acc); err != nil {
				slog.Info("Unable to refresh token for " + acc.Platform)
			}
		}(acc)
	}

	wg.Wait()
}

func (c *TokenRefreshJob) refresh(ctx context.Context, acc *models.SocialAccount) error {
	adapter, err := c.registry.Get(acc.Platform)
	if err != nil {
		return err
	}

	refreshToken, err := utils.Decrypt(acc.RefreshToken, []byte(c.cfg.SecretKey))
	if err != nil {
		return err
	}

	token, err := adapter.RefreshToken(ctx, refreshToken)
	if err != nil {
		return err
	}

	encryptedAccess, err := utils.Encrypt([]byte(token.AccessToken), []byte(c.cfg.SecretKey))
	if err != nil {
		return err
	}
	encryptedRefresh := acc.RefreshToken
	if token.RefreshToken != "" {
		encryptedRefresh, err = utils.Encrypt([]byte(token.RefreshToken), []byte(c.cfg.SecretKey))
		if err != nil {
			return err
		}
	}

	return c.sr.SetToken(ctx, acc.ID, encryptedAccess, encryptedRefresh, token.ExpiresAt)
}
