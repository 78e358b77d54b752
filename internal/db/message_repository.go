package db

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/jaehyo/sodam/internal/model"
	"github.com/jaehyo/sodam/internal/timefmt"
)

// Message repository errors.
var (
	ErrEmptyText   = errors.New("message text is empty")
	ErrEmptyStored = errors.New("stored time is empty")
)

// MessageRepository handles message persistence.
//
// It is the client's only view of the store of record: an opaque ordered
// append-only table reached by range query and insert.
type MessageRepository struct {
	db    *DB
	codec timefmt.Codec
}

// NewMessageRepository creates a new MessageRepository.
func NewMessageRepository(db *DB, codec timefmt.Codec) *MessageRepository {
	return &MessageRepository{db: db, codec: codec}
}

// Insert appends one message row and returns it with its generated identity.
func (r *MessageRepository) Insert(ctx context.Context, text, storedTime string) (model.Message, error) {
	if strings.TrimSpace(text) == "" {
		return model.Message{}, ErrEmptyText
	}
	if strings.TrimSpace(storedTime) == "" {
		return model.Message{}, ErrEmptyStored
	}

	id := uuid.New().String()
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO message (id, text, time) VALUES (?, ?, ?)
	`, id, text, storedTime)
	if err != nil {
		return model.Message{}, fmt.Errorf("failed to insert message: %w", err)
	}

	return r.toModel(id, text, storedTime), nil
}

// SelectPage retrieves the range [offset, offset+limit) of messages ordered
// by time descending (newest first), id descending as the tiebreak.
func (r *MessageRepository) SelectPage(ctx context.Context, offset, limit int) ([]model.Message, error) {
	if offset < 0 {
		return nil, fmt.Errorf("negative offset %d", offset)
	}
	if limit <= 0 {
		limit = 20
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT id, text, time
		FROM message
		ORDER BY time DESC, id DESC
		LIMIT ? OFFSET ?
	`, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to query messages: %w", err)
	}
	defer rows.Close()

	var messages []model.Message
	for rows.Next() {
		var id, text, stored string
		if err := rows.Scan(&id, &text, &stored); err != nil {
			return nil, fmt.Errorf("failed to scan message: %w", err)
		}
		messages = append(messages, r.toModel(id, text, stored))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating messages: %w", err)
	}

	return messages, nil
}

// Count returns the total number of stored messages.
func (r *MessageRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM message`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count messages: %w", err)
	}
	return count, nil
}

func (r *MessageRepository) toModel(id, text, stored string) model.Message {
	msg := model.Message{ID: id, Text: text}
	t, err := r.codec.Decode(stored)
	if err != nil {
		// Keep the message; it renders without date/time labels.
		r.db.logger.Warn().Err(err).Str("message_id", id).Msg("failed to parse stored time")
		return msg
	}
	msg.Time = t
	return msg
}
