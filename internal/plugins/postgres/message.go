package postgres

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"

	"github.com/tanushree1025/DESIGN-THEETA/internal/core/domain"
)

// MessageRepo owns the append-only message log.
type MessageRepo struct {
	db *sql.DB
}

func NewMessageRepo(db *sql.DB) *MessageRepo {
	return &MessageRepo{db: db}
}

// Append persists the message and returns the canonical stored form with the
// sender display fields resolved in the same round trip.
func (r *MessageRepo) Append(ctx context.Context, msg *domain.Message) (*domain.StoredMessage, error) {
	if err := msg.Validate(); err != nil {
		return nil, err
	}
	if msg.ID == uuid.Nil {
		msg.ID = uuid.New()
	}
	if msg.Timestamp.IsZero() {
		msg.Timestamp = time.Now().UTC()
	}
	exec := GetExecutor(ctx, r.db)
	stored := &domain.StoredMessage{
		ID:         msg.ID,
		ReceiverID: msg.ReceiverID,
		Role:       msg.Role,
		Body:       msg.Body,
		FileURL:    msg.FileURL,
		Kind:       msg.Kind,
		Timestamp:  msg.Timestamp,
		Sender:     domain.Sender{ID: msg.SenderID},
	}
	err := exec.QueryRowContext(ctx, `
		WITH inserted AS (
			INSERT INTO messages (id, sender_id, receiver_id, role, body, file_url, kind, created_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
			RETURNING sender_id
		)
		SELECT u.name, u.role
		FROM inserted i
		JOIN users u ON u.id = i.sender_id
	`,
		msg.ID,
		msg.SenderID,
		msg.ReceiverID,
		msg.Role,
		msg.Body,
		msg.FileURL,
		msg.Kind,
		msg.Timestamp,
	).Scan(&stored.Sender.Name, &stored.Sender.Role)
	if err != nil {
		return nil, err
	}
	return stored, nil
}

// Recent returns up to limit newest messages in ascending timestamp order.
func (r *MessageRepo) Recent(ctx context.Context, limit int) ([]domain.StoredMessage, error) {
	exec := GetExecutor(ctx, r.db)
	rows, err := exec.QueryContext(ctx, `
		SELECT m.id, m.sender_id, u.name, u.role, m.receiver_id, m.role, m.body, m.file_url, m.kind, m.created_at
		FROM messages m
		JOIN users u ON u.id = m.sender_id
		ORDER BY m.created_at DESC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var msgs []domain.StoredMessage
	for rows.Next() {
		var m domain.StoredMessage
		var receiverID sql.Null[uuid.UUID]
		if err := rows.Scan(
			&m.ID,
			&m.Sender.ID,
			&m.Sender.Name,
			&m.Sender.Role,
			&receiverID,
			&m.Role,
			&m.Body,
			&m.FileURL,
			&m.Kind,
			&m.Timestamp,
		); err != nil {
			return nil, err
		}
		if receiverID.Valid {
			id := receiverID.V
			m.ReceiverID = &id
		}
		msgs = append(msgs, m)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	// newest-first query, ascending replay
	for i, j := 0, len(msgs)-1; i < j; i, j = i+1, j-1 {
		msgs[i], msgs[j] = msgs[j], msgs[i]
	}
	return msgs, nil
}
