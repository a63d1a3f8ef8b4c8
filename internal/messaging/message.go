package messaging

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	herrors "github.com/PolarWolf314/hush/internal/errors"
)

const (
	// AlgorithmHybrid tags messages sealed with an RSA-OAEP wrapped
	// XChaCha20-Poly1305 content key.
	AlgorithmHybrid = "RSA-OAEP+XCHACHA20POLY1305"

	directTagPrefix = "RSA-"
	directTagSuffix = "-OAEP-SHA256"

	// UndecryptableText is shown in place of a message that could not be
	// decrypted.
	UndecryptableText = "[Message could not be decrypted]"
)

// Scheme selects how new messages are encrypted.
type Scheme string

const (
	SchemeDirect Scheme = "direct"
	SchemeHybrid Scheme = "hybrid"
)

// ParseScheme accepts "direct" or "hybrid", case-insensitively.
func ParseScheme(s string) (Scheme, error) {
	switch Scheme(strings.ToLower(strings.TrimSpace(s))) {
	case SchemeDirect:
		return SchemeDirect, nil
	case SchemeHybrid:
		return SchemeHybrid, nil
	}
	return "", fmt.Errorf("%w: unknown scheme %q", herrors.ErrInvalidConfig, s)
}

// DirectAlgorithmTag returns the tag for direct RSA-OAEP messages under a key
// of the given size, e.g. "RSA-2048-OAEP-SHA256".
func DirectAlgorithmTag(bits int) string {
	return fmt.Sprintf("%s%d%s", directTagPrefix, bits, directTagSuffix)
}

func isDirectTag(tag string) bool {
	return strings.HasPrefix(tag, directTagPrefix) && strings.HasSuffix(tag, directTagSuffix) &&
		len(tag) > len(directTagPrefix)+len(directTagSuffix)
}

// EncryptedMessage is the persisted form of one sent message.
type EncryptedMessage struct {
	ID                   string    `json:"id"`
	SenderID             string    `json:"sender_id"`
	RecipientID          string    `json:"recipient_id"`
	CipherForRecipient   string    `json:"cipher_for_recipient"`
	CipherForSender      string    `json:"cipher_for_sender"`
	ContentDigest        string    `json:"content_digest"`
	AlgorithmTag         string    `json:"algorithm_tag"`
	SenderFingerprint    string    `json:"sender_fingerprint"`
	RecipientFingerprint string    `json:"recipient_fingerprint"`
	SentAt               time.Time `json:"sent_at"`
	IsRead               bool      `json:"is_read"`
	ReadAt               time.Time `json:"read_at,omitzero"`
}

// Involves reports whether principalID is the sender or the recipient.
func (m *EncryptedMessage) Involves(principalID string) bool {
	return m.SenderID == principalID || m.RecipientID == principalID
}

// Partner returns the other participant from principalID's point of view.
func (m *EncryptedMessage) Partner(principalID string) string {
	if m.SenderID == principalID {
		return m.RecipientID
	}
	return m.SenderID
}

// Digest returns the hex SHA-256 of content.
func Digest(content string) string {
	sum := sha256.Sum256([]byte(content))
	return hex.EncodeToString(sum[:])
}

// ReadResult is a message as seen by one of its participants.
type ReadResult struct {
	MessageID   string    `json:"message_id"`
	SenderID    string    `json:"sender_id"`
	RecipientID string    `json:"recipient_id"`
	Content     string    `json:"content"`
	SentAt      time.Time `json:"sent_at"`
	IsRead      bool      `json:"is_read"`
	ReadAt      time.Time `json:"read_at,omitzero"`

	// IntegrityWarning is set when the decrypted content does not match the
	// stored digest.
	IntegrityWarning bool `json:"integrity_warning,omitempty"`

	// Undecryptable is set when decryption failed. Content is empty.
	Undecryptable bool `json:"undecryptable,omitempty"`

	// Err holds the decryption failure, if any.
	Err error `json:"-"`
}

// Text returns the content for display.
func (r *ReadResult) Text() string {
	if r.Undecryptable {
		return UndecryptableText
	}
	return r.Content
}

// ReadState is the outcome of MarkRead.
type ReadState int

const (
	FirstRead ReadState = iota
	AlreadyRead
)

func (s ReadState) String() string {
	if s == FirstRead {
		return "first read"
	}
	return "already read"
}

// ConversationSummary describes one conversation partner for a principal.
type ConversationSummary struct {
	PartnerID    string      `json:"partner_id"`
	LastMessage  *ReadResult `json:"last_message"`
	MessageCount int         `json:"message_count"`
	UnreadCount  int         `json:"unread_count"`
}
