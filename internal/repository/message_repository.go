package repository

import (
	"context"
	"database/sql"
	"log/slog"
	"strings"

	"github.com/socialsight/socialsight/internal/models"
)

type MessageRepository interface {
	Create(ctx context.Context, m *models.Message) (int64, error)
	GetByID(ctx context.Context, id int64) (*models.Message, error)
	// ListByConversation pages newest-first and hides messages the viewing
	// user has deleted for themselves, plus fully deleted messages.
	ListByConversation(ctx context.Context, conversationID, viewerID int64, limit, offset int) ([]*models.Message, error)
	MarkRead(ctx context.Context, conversationID, readerID int64) (int64, error)
	AddDeletion(ctx context.Context, messageID, userID int64) error
	CountDeletions(ctx context.Context, messageID int64) (int64, error)
	MarkDeleted(ctx context.Context, messageID int64) error
	UnreadCount(ctx context.Context, userID int64) (int64, error)
	Search(ctx context.Context, userID int64, term string, limit int) ([]*models.Message, error)
}

type messageRepository struct {
	db *sql.DB
}

func NewMessageRepository(db *sql.DB) MessageRepository {
	return &messageRepository{db: db}
}

const messageColumns = `id, conversation_id, sender_id, receiver_id, body, media_url,
	reply_to, is_read, read_at, is_deleted, created_at`

func scanMessage(row interface{ Scan(...interface{}) error }) (*models.Message, error) {
	var m models.Message
	err := row.Scan(&m.ID, &m.ConversationID, &m.SenderID, &m.ReceiverID, &m.Body,
		&m.MediaURL, &m.ReplyTo, &m.IsRead, &m.ReadAt, &m.IsDeleted, &m.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func (r *messageRepository) Create(ctx context.Context, m *models.Message) (int64, error) {
	query := `
		INSERT INTO messages (conversation_id, sender_id, receiver_id, body, media_url, reply_to)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id
	`
	var id int64
	err := r.db.QueryRowContext(ctx, query, m.ConversationID, m.SenderID, m.ReceiverID,
		m.Body, m.MediaURL, m.ReplyTo).Scan(&id)
	if err != nil {
		slog.Info(err.Error())
		return 0, err
	}
	return id, nil
}

func (r *messageRepository) GetByID(ctx context.Context, id int64) (*models.Message, error) {
	query := `SELECT ` + messageColumns + ` FROM messages WHERE id = $1`
	m, err := scanMessage(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		slog.Info(err.Error())
		return nil, err
	}
	return m, nil
}

func (r *messageRepository) ListByConversation(ctx context.Context, conversationID, viewerID int64, limit, offset int) ([]*models.Message, error) {
	query := `
		SELECT ` + messageColumns + `
		FROM messages m
		WHERE m.conversation_id = $1 AND m.is_deleted = false
			AND NOT EXISTS (
				SELECT 1 FROM message_deletions d
				WHERE d.message_id = m.id AND d.user_id = $2)
		ORDER BY m.created_at DESC
		LIMIT $3 OFFSET $4
	`
	rows, err := r.db.QueryContext(ctx, query, conversationID, viewerID, limit, offset)
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	defer rows.Close()

	var messages []*models.Message
	for rows.Next() {
		m, err := scanMessage(rows)
		if err != nil {
			slog.Info(err.Error())
			return nil, err
		}
		messages = append(messages, m)
	}
	return messages, rows.Err()
}

// MarkRead marks every unread message addressed to the reader in the
// conversation and returns how many rows changed.
func (r *messageRepository) MarkRead(ctx context.Context, conversationID, readerID int64) (int64, error) {
	query := `
		UPDATE messages
		SET is_read = true, read_at = NOW()
		WHERE conversation_id = $1 AND receiver_id = $2 AND is_read = false
	`
	res, err := r.db.ExecContext(ctx, query, conversationID, readerID)
	if err != nil {
		slog.Info(err.Error())
		return 0, err
	}
	return res.RowsAffected()
}

func (r *messageRepository) AddDeletion(ctx context.Context, messageID, userID int64) error {
	query := `
		INSERT INTO message_deletions (message_id, user_id)
		VALUES ($1, $2)
		ON CONFLICT (message_id, user_id) DO NOTHING
	`
	_, err := r.db.ExecContext(ctx, query, messageID, userID)
	if err != nil {
		slog.Info(err.Error())
	}
	return err
}

func (r *messageRepository) CountDeletions(ctx context.Context, messageID int64) (int64, error) {
	var count int64
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM message_deletions WHERE message_id = $1`, messageID).Scan(&count)
	if err != nil {
		slog.Info(err.Error())
		return 0, err
	}
	return count, nil
}

func (r *messageRepository) MarkDeleted(ctx context.Context, messageID int64) error {
	query := `UPDATE messages SET is_deleted = true WHERE id = $1`
	_, err := r.db.ExecContext(ctx, query, messageID)
	if err != nil {
		slog.Info(err.Error())
	}
	return err
}

func (r *messageRepository) UnreadCount(ctx context.Context, userID int64) (int64, error) {
	var count int64
	err := r.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM messages
		WHERE receiver_id = $1 AND is_read = false AND is_deleted = false
	`, userID).Scan(&count)
	if err != nil {
		slog.Info(err.Error())
		return 0, err
	}
	return count, nil
}

// likeEscaper neutralizes LIKE metacharacters so a search term matches
// literally.
var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func (r *messageRepository) Search(ctx context.Context, userID int64, term string, limit int) ([]*models.Message, error) {
	query := `
		SELECT ` + messageColumns + `
		FROM messages m
		WHERE (m.sender_id = $1 OR m.receiver_id = $1)
			AND m.is_deleted = false
			AND m.body ILIKE '%' || $2 || '%' ESCAPE '\'
			AND NOT EXISTS (
				SELECT 1 FROM message_deletions d
				WHERE d.message_id = m.id AND d.user_id = $1)
		ORDER BY m.created_at DESC
		LIMIT $3
	`
	rows, err := r.db.QueryContext(ctx, query, userID, likeEscaper.Replace(term), limit)
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	defer rows.Close()

	var messages []*models.Message
	for rows.Next() {
		m, err := scanMessage(rows)
		if err != nil {
			slog.Info(err.Error())
			return nil, err
		}
		messages = append(messages, m)
	}
	return messages, rows.Err()
}
