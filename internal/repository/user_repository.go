package repository

import (
	"context"
	"database/sql"
	"log/slog"
	"time"

	"github.com/socialsight/socialsight/internal/models"
)

type UserRepository interface {
	Create(ctx context.Context, u *models.User) (int64, error)
	GetByID(ctx context.Context, id int64) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	UpdateProfile(ctx context.Context, u *models.User) error
	UpdatePlan(ctx context.Context, id int64, plan string, expiresAt *time.Time) error
	UpdateLastSeen(ctx context.Context, id int64) error
	Follow(ctx context.Context, followerID, followedID int64) error
	Unfollow(ctx context.Context, followerID, followedID int64) error
	CountFollowers(ctx context.Context, id int64) (int64, error)
	CountFollowing(ctx context.Context, id int64) (int64, error)
}

type userRepository struct {
	db *sql.DB
}

func NewUserRepository(db *sql.DB) UserRepository {
	return &userRepository{db: db}
}

const userColumns = `id, email, username, password_hash, name, avatar, bio, location, website,
	is_active, plan, plan_expires_at, timezone, last_seen, created_at, updated_at`

func scanUser(row interface{ Scan(...interface{}) error }) (*models.User, error) {
	var u models.User
	err := row.Scan(&u.ID, &u.Email, &u.Username, &u.PasswordHash, &u.Name, &u.Avatar,
		&u.Bio, &u.Location, &u.Website, &u.IsActive, &u.Plan, &u.PlanExpiresAt,
		&u.Timezone, &u.LastSeen, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *userRepository) Create(ctx context.Context, u *models.User) (int64, error) {
	query := `
		INSERT INTO users (email, username, password_hash, name, plan, timezone)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id
	`
	var id int64
	err := r.db.QueryRowContext(ctx, query, u.Email, u.Username, u.PasswordHash,
		u.Name, u.Plan, u.Timezone).Scan(&id)
	if err != nil {
		slog.Info(err.Error())
		return 0, err
	}
	return id, nil
}

func (r *userRepository) GetByID(ctx context.Context, id int64) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	u, err := scanUser(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		slog.Info(err.Error())
		return nil, err
	}
	return u, nil
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1`
	u, err := scanUser(r.db.QueryRowContext(ctx, query, email))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		slog.Info(err.Error())
		return nil, err
	}
	return u, nil
}

func (r *userRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE username = $1`
	u, err := scanUser(r.db.QueryRowContext(ctx, query, username))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		slog.Info(err.Error())
		return nil, err
	}
	return u, nil
}

func (r *userRepository) UpdateProfile(ctx context.Context, u *models.User) error {
	query := `
		UPDATE users
		SET name = $2, avatar = $3, bio = $4, location = $5, website = $6,
			timezone = $7, updated_at = NOW()
		WHERE id = $1
	`
	_, err := r.db.ExecContext(ctx, query, u.ID, u.Name, u.Avatar, u.Bio,
		u.Location, u.Website, u.Timezone)
	if err != nil {
		slog.Info(err.Error())
	}
	return err
}

func (r *userRepository) UpdatePlan(ctx context.Context, id int64, plan string, expiresAt *time.Time) error {
	query := `UPDATE users SET plan = $2, plan_expires_at = $3, updated_at = NOW() WHERE id = $1`
	_, err := r.db.ExecContext(ctx, query, id, plan, expiresAt)
	if err != nil {
		slog.Info(err.Error())
	}
	return err
}

func (r *userRepository) UpdateLastSeen(ctx context.Context, id int64) error {
	query := `UPDATE users SET last_seen = NOW() WHERE id = $1`
	_, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		slog.Info(err.Error())
	}
	return err
}

func (r *userRepository) Follow(ctx context.Context, followerID, followedID int64) error {
	query := `
		INSERT INTO user_follows (follower_id, followed_id)
		VALUES ($1, $2)
		ON CONFLICT (follower_id, followed_id) DO NOTHING
	`
	_, err := r.db.ExecContext(ctx, query, followerID, followedID)
	if err != nil {
		slog.Info(err.Error())
	}
	return err
}

func (r *userRepository) Unfollow(ctx context.Context, followerID, followedID int64) error {
	query := `DELETE FROM user_follows WHERE follower_id = $1 AND followed_id = $2`
	_, err := r.db.ExecContext(ctx, query, followerID, followedID)
	if err != nil {
		slog.Info(err.Error())
	}
	return err
}

func (r *userRepository) CountFollowers(ctx context.Context, id int64) (int64, error) {
	var count int64
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM user_follows WHERE followed_id = $1`, id).Scan(&count)
	if err != nil {
		slog.Info(err.Error())
		return 0, err
	}
	return count, nil
}

func (r *userRepository) CountFollowing(ctx context.Context, id int64) (int64, error) {
	var count int64
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM user_follows WHERE follower_id = $1`, id).Scan(&count)
	if err != nil {
		slog.Info(err.Error())
		return 0, err
	}
	return count, nil
}
