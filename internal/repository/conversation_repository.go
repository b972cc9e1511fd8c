package repository

import (
	"context"
	"database/sql"
	"log/slog"

	"github.com/lib/pq"
	"github.com/socialsight/socialsight/internal/models"
)

type ConversationRepository interface {
	// GetOrCreate looks up the conversation between the two users and
	// creates it when none exists yet.
	GetOrCreate(ctx context.Context, userA, userB int64) (*models.Conversation, error)
	GetByID(ctx context.Context, id int64) (*models.Conversation, error)
	ListByUser(ctx context.Context, userID int64) ([]*models.Conversation, error)
	IsParticipant(ctx context.Context, conversationID, userID int64) (bool, error)
	UpdateLastMessage(ctx context.Context, conversationID, messageID int64) error
}

type conversationRepository struct {
	db *sql.DB
}

func NewConversationRepository(db *sql.DB) ConversationRepository {
	return &conversationRepository{db: db}
}

func (r *conversationRepository) GetOrCreate(ctx context.Context, userA, userB int64) (*models.Conversation, error) {
	query := `
		SELECT c.id, c.last_message_id, c.last_message_at, c.created_at
		FROM conversations c
		JOIN conversation_participants pa ON pa.conversation_id = c.id AND pa.user_id = $1
		JOIN conversation_participants pb ON pb.conversation_id = c.id AND pb.user_id = $2
	`
	var c models.Conversation
	err := r.db.QueryRowContext(ctx, query, userA, userB).Scan(&c.ID, &c.LastMessageID,
		&c.LastMessageAt, &c.CreatedAt)
	if err == nil {
		c.Participants = []int64{userA, userB}
		return &c, nil
	}
	if err != sql.ErrNoRows {
		slog.Info(err.Error())
		return nil, err
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	defer tx.Rollback()

	err = tx.QueryRowContext(ctx,
		`INSERT INTO conversations DEFAULT VALUES RETURNING id, last_message_id, last_message_at, created_at`).
		Scan(&c.ID, &c.LastMessageID, &c.LastMessageAt, &c.CreatedAt)
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	_, err = tx.ExecContext(ctx,
		`INSERT INTO conversation_participants (conversation_id, user_id) VALUES ($1, $2), ($1, $3)`,
		c.ID, userA, userB)
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	c.Participants = []int64{userA, userB}
	return &c, nil
}

func (r *conversationRepository) GetByID(ctx context.Context, id int64) (*models.Conversation, error) {
	query := `
		SELECT c.id, c.last_message_id, c.last_message_at, c.created_at,
			array_agg(p.user_id ORDER BY p.user_id)
		FROM conversations c
		JOIN conversation_participants p ON p.conversation_id = c.id
		WHERE c.id = $1
		GROUP BY c.id
	`
	var c models.Conversation
	err := r.db.QueryRowContext(ctx, query, id).Scan(&c.ID, &c.LastMessageID,
		&c.LastMessageAt, &c.CreatedAt, pq.Array(&c.Participants))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		slog.Info(err.Error())
		return nil, err
	}
	return &c, nil
}

// ListByUser returns the user's conversations, most recent activity first.
func (r *conversationRepository) ListByUser(ctx context.Context, userID int64) ([]*models.Conversation, error) {
	query := `
		SELECT c.id, c.last_message_id, c.last_message_at, c.created_at,
			array_agg(p.user_id ORDER BY p.user_id)
		FROM conversations c
		JOIN conversation_participants me ON me.conversation_id = c.id AND me.user_id = $1
		JOIN conversation_participants p ON p.conversation_id = c.id
		GROUP BY c.id
		ORDER BY c.last_message_at DESC
	`
	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	defer rows.Close()

	var conversations []*models.Conversation
	for rows.Next() {
		var c models.Conversation
		err := rows.Scan(&c.ID, &c.LastMessageID, &c.LastMessageAt, &c.CreatedAt,
			pq.Array(&c.Participants))
		if err != nil {
			slog.Info(err.Error())
			return nil, err
		}
		conversations = append(conversations, &c)
	}
	return conversations, rows.Err()
}

func (r *conversationRepository) IsParticipant(ctx context.Context, conversationID, userID int64) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx, `
		SELECT EXISTS (SELECT 1 FROM conversation_participants
			WHERE conversation_id = $1 AND user_id = $2)
	`, conversationID, userID).Scan(&exists)
	if err != nil {
		slog.Info(err.Error())
		return false, err
	}
	return exists, nil
}

func (r *conversationRepository) UpdateLastMessage(ctx context.Context, conversationID, messageID int64) error {
	query := `UPDATE conversations SET last_message_id = $2, last_message_at = NOW() WHERE id = $1`
	_, err := r.db.ExecContext(ctx, query, conversationID, messageID)
	if err != nil {
		slog.Info(err.Error())
	}
	return err
}
