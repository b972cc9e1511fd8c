package models

import "time"

type Conversation struct {
	ID            int64     `db:"id" json:"id"`
	LastMessageID *int64    `db:"last_message_id" json:"last_message_id"`
	LastMessageAt time.Time `db:"last_message_at" json:"last_message_at"`
	CreatedAt     time.Time `db:"created_at" json:"created_at"`

	Participants []int64 `json:"participants"`
}

type Message struct {
	ID             int64      `db:"id" json:"id"`
	ConversationID int64      `db:"conversation_id" json:"conversation_id"`
	SenderID       int64      `db:"sender_id" json:"sender_id"`
	ReceiverID     int64      `db:"receiver_id" json:"receiver_id"`
	Body           string     `db:"body" json:"body"`
	MediaURL       string     `db:"media_url" json:"media_url,omitempty"`
	ReplyTo        *int64     `db:"reply_to" json:"reply_to"`
	IsRead         bool       `db:"is_read" json:"is_read"`
	ReadAt         *time.Time `db:"read_at" json:"read_at"`
	IsDeleted      bool       `db:"is_deleted" json:"-"`
	CreatedAt      time.Time  `db:"created_at" json:"created_at"`
}

// MessageDeletion records one participant's delete acknowledgment. A message
// is hidden from everyone only once both participants have a row here.
type MessageDeletion struct {
	MessageID int64     `db:"message_id" json:"message_id"`
	UserID    int64     `db:"user_id" json:"user_id"`
	DeletedAt time.Time `db:"deleted_at" json:"deleted_at"`
}
