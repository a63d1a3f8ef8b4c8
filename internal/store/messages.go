package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	herrors "github.com/PolarWolf314/hush/internal/errors"
	"github.com/PolarWolf314/hush/internal/messaging"
)

var _ messaging.MessageStore = (*Store)(nil)

const messageColumns = `id, sender_id, recipient_id, cipher_for_recipient, cipher_for_sender,
	content_digest, algorithm_tag, sender_fingerprint, recipient_fingerprint,
	sent_at, is_read, read_at`

func scanMessage(row scanner) (*messaging.EncryptedMessage, error) {
	var (
		m              messaging.EncryptedMessage
		sentAt, readAt int64
	)
	err := row.Scan(&m.ID, &m.SenderID, &m.RecipientID, &m.CipherForRecipient, &m.CipherForSender,
		&m.ContentDigest, &m.AlgorithmTag, &m.SenderFingerprint, &m.RecipientFingerprint,
		&sentAt, &m.IsRead, &readAt)
	if err != nil {
		return nil, err
	}
	m.SentAt = fromUnix(sentAt)
	m.ReadAt = fromUnix(readAt)
	return &m, nil
}

// InsertMessage stores a new message in a single statement.
func (s *Store) InsertMessage(ctx context.Context, m *messaging.EncryptedMessage) error {
	_, err := s.db.ExecContext(ctx, `
	INSERT INTO messages (`+messageColumns+`)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		m.ID, m.SenderID, m.RecipientID, m.CipherForRecipient, m.CipherForSender,
		m.ContentDigest, m.AlgorithmTag, m.SenderFingerprint, m.RecipientFingerprint,
		toUnix(m.SentAt), m.IsRead, toUnix(m.ReadAt),
	)
	if err != nil {
		return fmt.Errorf("insert message: %w", err)
	}
	return nil
}

// GetMessage returns the message with the given id.
func (s *Store) GetMessage(ctx context.Context, id string) (*messaging.EncryptedMessage, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+messageColumns+` FROM messages WHERE id = ?`, id)
	m, err := scanMessage(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", herrors.ErrMessageNotFound, id)
	}
	return m, err
}

// MarkRead sets an unread message read. It reports false, without error,
// when the message was already read.
func (s *Store) MarkRead(ctx context.Context, id string, readAt time.Time) (bool, error) {
	result, err := s.db.ExecContext(ctx,
		`UPDATE messages SET is_read = 1, read_at = ? WHERE id = ? AND is_read = 0`,
		toUnix(readAt), id,
	)
	if err != nil {
		return false, fmt.Errorf("mark read: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	if affected == 1 {
		return true, nil
	}

	if _, err := s.GetMessage(ctx, id); err != nil {
		return false, err
	}
	return false, nil
}

// Conversation returns every message between a and b, oldest first.
func (s *Store) Conversation(ctx context.Context, a, b string) ([]*messaging.EncryptedMessage, error) {
	return s.queryMessages(ctx, `
	SELECT `+messageColumns+` FROM messages
	WHERE (sender_id = ? AND recipient_id = ?) OR (sender_id = ? AND recipient_id = ?)
	ORDER BY sent_at, rowid`, a, b, b, a)
}

// MessagesFor returns every message sent or received by principalID, oldest
// first.
func (s *Store) MessagesFor(ctx context.Context, principalID string) ([]*messaging.EncryptedMessage, error) {
	return s.queryMessages(ctx, `
	SELECT `+messageColumns+` FROM messages
	WHERE sender_id = ? OR recipient_id = ?
	ORDER BY sent_at, rowid`, principalID, principalID)
}

// CountMessages returns the total number of stored messages.
func (s *Store) CountMessages(ctx context.Context) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM messages`).Scan(&n)
	return n, err
}

func (s *Store) queryMessages(ctx context.Context, query string, args ...any) ([]*messaging.EncryptedMessage, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var msgs []*messaging.EncryptedMessage
	for rows.Next() {
		m, err := scanMessage(rows)
		if err != nil {
			return nil, err
		}
		msgs = append(msgs, m)
	}
	return msgs, rows.Err()
}
