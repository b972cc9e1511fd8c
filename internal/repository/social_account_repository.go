package repository

import (
	"context"
	"database/sql"
	"log/slog"
	"time"

	"github.com/socialsight/socialsight/internal/models"
)

type SocialAccountRepository interface {
	// Replace removes any existing account for the user/platform pair and
	// inserts the new one with its pages in a single transaction.
	Replace(ctx context.Context, account *models.SocialAccount, pages []*models.SocialPage) (int64, error)
	GetByID(ctx context.Context, id int64) (*models.SocialAccount, error)
	GetActiveByUserPlatform(ctx context.Context, userID int64, platform string) (*models.SocialAccount, error)
	ListByUserID(ctx context.Context, userID int64) ([]*models.SocialAccount, error)
	CountActiveByUser(ctx context.Context, userID int64) (int64, error)
	ListExpiring(ctx context.Context, initial, final time.Time) ([]*models.SocialAccount, error)
	SetToken(ctx context.Context, id int64, accessToken, refreshToken string, expiresAt *time.Time) error
	UpdateLastSync(ctx context.Context, id int64) error
	Remove(ctx context.Context, id, userID int64) error
	CheckByUserID(ctx context.Context, id, userID int64) (bool, error)
	ListPagesByAccount(ctx context.Context, accountID int64) ([]*models.SocialPage, error)
	GetPage(ctx context.Context, accountID int64, pageID string) (*models.SocialPage, error)
}

type socialAccountRepository struct {
	db *sql.DB
}

func NewSocialAccountRepository(db *sql.DB) SocialAccountRepository {
	return &socialAccountRepository{db: db}
}

const accountColumns = `id, user_id, platform, platform_user_id, username, display_name, avatar,
	access_token, refresh_token, token_expires_at, scopes, is_active, last_sync, connected_at, updated_at`

func scanAccount(row interface{ Scan(...interface{}) error }) (*models.SocialAccount, error) {
	var a models.SocialAccount
	err := row.Scan(&a.ID, &a.UserID, &a.Platform, &a.PlatformUserID, &a.Username,
		&a.DisplayName, &a.Avatar, &a.AccessToken, &a.RefreshToken, &a.TokenExpiresAt,
		&a.Scopes, &a.IsActive, &a.LastSync, &a.ConnectedAt, &a.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *socialAccountRepository) Replace(ctx context.Context, account *models.SocialAccount, pages []*models.SocialPage) (int64, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		slog.Info(err.Error())
		return 0, err
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`DELETE FROM social_accounts WHERE user_id = $1 AND platform = $2`,
		account.UserID, account.Platform)
	if err != nil {
		slog.Info(err.Error())
		return 0, err
	}

	query := `
		INSERT INTO social_accounts (user_id, platform, platform_user_id, username,
			display_name, avatar, access_token, refresh_token, token_expires_at, scopes)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id
	`
	var id int64
	err = tx.QueryRowContext(ctx, query, account.UserID, account.Platform,
		account.PlatformUserID, account.Username, account.DisplayName, account.Avatar,
		account.AccessToken, account.RefreshToken, account.TokenExpiresAt, account.Scopes).Scan(&id)
	if err != nil {
		slog.Info(err.Error())
		return 0, err
	}

	for _, p := range pages {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO social_pages (account_id, page_id, name, access_token, page_type, followers)
			VALUES ($1, $2, $3, $4, $5, $6)
		`, id, p.PageID, p.Name, p.AccessToken, p.PageType, p.Followers)
		if err != nil {
			slog.Info(err.Error())
			return 0, err
		}
	}

	if err := tx.Commit(); err != nil {
		slog.Info(err.Error())
		return 0, err
	}
	return id, nil
}

func (r *socialAccountRepository) GetByID(ctx context.Context, id int64) (*models.SocialAccount, error) {
	query := `SELECT ` + accountColumns + ` FROM social_accounts WHERE id = $1`
	a, err := scanAccount(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		slog.Info(err.Error())
		return nil, err
	}
	return a, nil
}

func (r *socialAccountRepository) GetActiveByUserPlatform(ctx context.Context, userID int64, platform string) (*models.SocialAccount, error) {
	query := `SELECT ` + accountColumns + `
		FROM social_accounts WHERE user_id = $1 AND platform = $2 AND is_active = true`
	a, err := scanAccount(r.db.QueryRowContext(ctx, query, userID, platform))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		slog.Info(err.Error())
		return nil, err
	}
	return a, nil
}

func (r *socialAccountRepository) ListByUserID(ctx context.Context, userID int64) ([]*models.SocialAccount, error) {
	query := `SELECT ` + accountColumns + `
		FROM social_accounts WHERE user_id = $1 ORDER BY connected_at ASC`
	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	defer rows.Close()

	var accounts []*models.SocialAccount
	for rows.Next() {
		a, err := scanAccount(rows)
		if err != nil {
			slog.Info(err.Error())
			return nil, err
		}
		accounts = append(accounts, a)
	}
	return accounts, rows.Err()
}

func (r *socialAccountRepository) CountActiveByUser(ctx context.Context, userID int64) (int64, error) {
	var count int64
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM social_accounts WHERE user_id = $1 AND is_active = true`,
		userID).Scan(&count)
	if err != nil {
		slog.Info(err.Error())
		return 0, err
	}
	return count, nil
}

func (r *socialAccountRepository) ListExpiring(ctx context.Context, initial, final time.Time) ([]*models.SocialAccount, error) {
	query := `SELECT ` + accountColumns + `
		FROM social_accounts
		WHERE is_active = true AND refresh_token <> ''
			AND token_expires_at IS NOT NULL
			AND token_expires_at >= $1 AND token_expires_at <= $2`
	rows, err := r.db.QueryContext(ctx, query, initial, final)
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	defer rows.Close()

	var accounts []*models.SocialAccount
	for rows.Next() {
		a, err := scanAccount(rows)
		if err != nil {
			slog.Info(err.Error())
			return nil, err
		}
		accounts = append(accounts, a)
	}
	return accounts, rows.Err()
}

func (r *socialAccountRepository) SetToken(ctx context.Context, id int64, accessToken, refreshToken string, expiresAt *time.Time) error {
	query := `
		UPDATE social_accounts
		SET access_token = $2, refresh_token = $3, token_expires_at = $4, updated_at = NOW()
		WHERE id = $1
	`
	_, err := r.db.ExecContext(ctx, query, id, accessToken, refreshToken, expiresAt)
	if err != nil {
		slog.Info(err.Error())
	}
	return err
}

func (r *socialAccountRepository) UpdateLastSync(ctx context.Context, id int64) error {
	query := `UPDATE social_accounts SET last_sync = NOW() WHERE id = $1`
	_, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		slog.Info(err.Error())
	}
	return err
}

func (r *socialAccountRepository) Remove(ctx context.Context, id, userID int64) error {
	query := `DELETE FROM social_accounts WHERE id = $1 AND user_id = $2`
	_, err := r.db.ExecContext(ctx, query, id, userID)
	if err != nil {
		slog.Info(err.Error())
	}
	return err
}

func (r *socialAccountRepository) CheckByUserID(ctx context.Context, id, userID int64) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM social_accounts WHERE id = $1 AND user_id = $2)`,
		id, userID).Scan(&exists)
	if err != nil {
		slog.Info(err.Error())
		return false, err
	}
	return exists, nil
}

func (r *socialAccountRepository) ListPagesByAccount(ctx context.Context, accountID int64) ([]*models.SocialPage, error) {
	query := `
		SELECT id, account_id, page_id, name, access_token, page_type, followers, is_active, created_at
		FROM social_pages WHERE account_id = $1 ORDER BY id ASC
	`
	rows, err := r.db.QueryContext(ctx, query, accountID)
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	defer rows.Close()

	var pages []*models.SocialPage
	for rows.Next() {
		var p models.SocialPage
		err := rows.Scan(&p.ID, &p.AccountID, &p.PageID, &p.Name, &p.AccessToken,
			&p.PageType, &p.Followers, &p.IsActive, &p.CreatedAt)
		if err != nil {
			slog.Info(err.Error())
			return nil, err
		}
		pages = append(pages, &p)
	}
	return pages, rows.Err()
}

func (r *socialAccountRepository) GetPage(ctx context.Context, accountID int64, pageID string) (*models.SocialPage, error) {
	query := `
		SELECT id, account_id, page_id, name, access_token, page_type, followers, is_active, created_at
		FROM social_pages WHERE account_id = $1 AND page_id = $2
	`
	var p models.SocialPage
	err := r.db.QueryRowContext(ctx, query, accountID, pageID).Scan(&p.ID, &p.AccountID,
		&p.PageID, &p.Name, &p.AccessToken, &p.PageType, &p.Followers, &p.IsActive, &p.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		slog.Info(err.Error())
		return nil, err
	}
	return &p, nil
}
