package repository

import (
	"context"
	"database/sql"
	"log/slog"

	"github.com/socialsight/socialsight/internal/models"
)

type MediaRepository interface {
	CreateAsset(ctx context.Context, tx *sql.Tx, asset *models.MediaAsset) (int64, error)
	GetAssetByID(ctx context.Context, id int64) (*models.MediaAsset, error)
	AttachToPost(ctx context.Context, tx *sql.Tx, postID, assetID int64, displayOrder int) error
	ListAssetsByPostID(ctx context.Context, postID int64) ([]*models.MediaAsset, error)
}

type mediaRepository struct {
	db *sql.DB
}

func NewMediaRepository(db *sql.DB) MediaRepository {
	return &mediaRepository{db: db}
}

func (r *mediaRepository) CreateAsset(ctx context.Context, tx *sql.Tx, asset *models.MediaAsset) (int64, error) {
	query := `
		INSERT INTO media_assets (user_id, file_name, file_type, file_size, file_url, thumbnail_url)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id
	`
	var id int64
	err := tx.QueryRowContext(ctx, query, asset.UserID, asset.FileName, asset.FileType,
		asset.FileSize, asset.FileURL, asset.ThumbnailURL).Scan(&id)
	if err != nil {
		slog.Info(err.Error())
		return 0, err
	}
	return id, nil
}

func (r *mediaRepository) GetAssetByID(ctx context.Context, id int64) (*models.MediaAsset, error) {
	query := `
		SELECT id, user_id, file_name, file_type, file_size, file_url, thumbnail_url, created_at
		FROM media_assets WHERE id = $1
	`
	var a models.MediaAsset
	err := r.db.QueryRowContext(ctx, query, id).Scan(&a.ID, &a.UserID, &a.FileName,
		&a.FileType, &a.FileSize, &a.FileURL, &a.ThumbnailURL, &a.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		slog.Info(err.Error())
		return nil, err
	}
	return &a, nil
}

func (r *mediaRepository) AttachToPost(ctx context.Context, tx *sql.Tx, postID, assetID int64, displayOrder int) error {
	query := `INSERT INTO post_media (post_id, asset_id, display_order) VALUES ($1, $2, $3)`
	_, err := tx.ExecContext(ctx, query, postID, assetID, displayOrder)
	if err != nil {
		slog.Info(err.Error())
	}
	return err
}

// ListAssetsByPostID returns assets in their attachment order.
func (r *mediaRepository) ListAssetsByPostID(ctx context.Context, postID int64) ([]*models.MediaAsset, error) {
	query := `
		SELECT a.id, a.user_id, a.file_name, a.file_type, a.file_size, a.file_url, a.thumbnail_url, a.created_at
		FROM media_assets a
		JOIN post_media pm ON pm.asset_id = a.id
		WHERE pm.post_id = $1
		ORDER BY pm.display_order ASC
	`
	rows, err := r.db.QueryContext(ctx, query, postID)
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	defer rows.Close()

	var assets []*models.MediaAsset
	for rows.Next() {
		var a models.MediaAsset
		err := rows.Scan(&a.ID, &a.UserID, &a.FileName, &a.FileType, &a.FileSize,
			&a.FileURL, &a.ThumbnailURL, &a.CreatedAt)
		if err != nil {
			slog.Info(err.Error())
			return nil, err
		}
		assets = append(assets, &a)
	}
	return assets, rows.Err()
}
