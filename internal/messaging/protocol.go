package messaging

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	herrors "github.com/PolarWolf314/hush/internal/errors"
	"github.com/PolarWolf314/hush/internal/secrets"
	"github.com/google/uuid"
)

// MessageStore persists encrypted messages. Implementations must make
// InsertMessage a single atomic write and MarkRead a conditional update.
type MessageStore interface {
	InsertMessage(ctx context.Context, msg *EncryptedMessage) error
	GetMessage(ctx context.Context, id string) (*EncryptedMessage, error)

	// MarkRead sets the message read at readAt if it is unread, and reports
	// whether this call changed it.
	MarkRead(ctx context.Context, id string, readAt time.Time) (bool, error)

	// Conversation returns every message between a and b, oldest first.
	Conversation(ctx context.Context, a, b string) ([]*EncryptedMessage, error)

	// MessagesFor returns every message sent or received by principalID,
	// oldest first.
	MessagesFor(ctx context.Context, principalID string) ([]*EncryptedMessage, error)
}

// Protocol encrypts, stores and reads messages between principals.
type Protocol struct {
	keys   *secrets.KeyManager
	store  MessageStore
	scheme Scheme
	now    func() time.Time
}

// NewProtocol returns a Protocol that encrypts new messages with scheme.
func NewProtocol(keys *secrets.KeyManager, store MessageStore, scheme Scheme) *Protocol {
	return &Protocol{
		keys:   keys,
		store:  store,
		scheme: scheme,
		now:    time.Now,
	}
}

// Scheme returns the scheme used for new messages.
func (p *Protocol) Scheme() Scheme {
	return p.scheme
}

// Send encrypts plaintext for both participants and stores the result in
// one write. Leading and trailing whitespace is trimmed and blank content is
// rejected with ErrEmptyMessage. Nothing is stored on any failure.
func (p *Protocol) Send(ctx context.Context, plaintext string, sender, recipient *secrets.PrincipalKeyRecord) (*EncryptedMessage, error) {
	content := strings.TrimSpace(plaintext)
	if content == "" {
		return nil, herrors.ErrEmptyMessage
	}

	if err := sender.Validate(); err != nil {
		return nil, fmt.Errorf("sender: %w", err)
	}
	if err := recipient.Validate(); err != nil {
		return nil, fmt.Errorf("recipient: %w", err)
	}
	if sender.PrincipalID == recipient.PrincipalID {
		return nil, herrors.ErrInvalidRecipient
	}
	if !p.keys.ValidatePublicKey(sender.PublicKey) {
		return nil, fmt.Errorf("sender: %w: public key is not a usable RSA key", herrors.ErrMissingKey)
	}
	if !p.keys.ValidatePublicKey(recipient.PublicKey) {
		return nil, fmt.Errorf("recipient: %w: public key is not a usable RSA key", herrors.ErrMissingKey)
	}

	tag, err := p.algorithmTag(recipient.PublicKey)
	if err != nil {
		return nil, err
	}

	forRecipient, err := p.encrypt([]byte(content), recipient.PublicKey)
	if err != nil {
		return nil, fmt.Errorf("encrypting for recipient: %w", err)
	}
	forSender, err := p.encrypt([]byte(content), sender.PublicKey)
	if err != nil {
		return nil, fmt.Errorf("encrypting for sender: %w", err)
	}

	msg := &EncryptedMessage{
		ID:                   uuid.NewString(),
		SenderID:             sender.PrincipalID,
		RecipientID:          recipient.PrincipalID,
		CipherForRecipient:   forRecipient,
		CipherForSender:      forSender,
		ContentDigest:        Digest(content),
		AlgorithmTag:         tag,
		SenderFingerprint:    sender.Fingerprint,
		RecipientFingerprint: recipient.Fingerprint,
		SentAt:               p.now().UTC(),
	}

	if err := p.store.InsertMessage(ctx, msg); err != nil {
		return nil, fmt.Errorf("storing message: %w", err)
	}
	return msg, nil
}

func (p *Protocol) algorithmTag(recipientPublicKey string) (string, error) {
	if p.scheme == SchemeHybrid {
		return AlgorithmHybrid, nil
	}
	info, err := p.keys.KeyInfo(recipientPublicKey)
	if err != nil {
		return "", fmt.Errorf("%w: %w", herrors.ErrEncryption, err)
	}
	return DirectAlgorithmTag(info.KeySize), nil
}

func (p *Protocol) encrypt(plaintext []byte, publicKeyPEM string) (string, error) {
	if p.scheme == SchemeHybrid {
		return p.keys.SealHybrid(plaintext, publicKeyPEM)
	}
	return p.keys.EncryptWithPublic(plaintext, publicKeyPEM)
}

func (p *Protocol) decrypt(tag, ciphertext, wrappedPrivateKey string) ([]byte, error) {
	switch {
	case tag == AlgorithmHybrid:
		return p.keys.OpenHybrid(ciphertext, wrappedPrivateKey)
	case isDirectTag(tag):
		return p.keys.DecryptWithPrivate(ciphertext, wrappedPrivateKey)
	}
	return nil, fmt.Errorf("%w: unknown algorithm tag %q", herrors.ErrDecryption, tag)
}

// Read decrypts msg for readerID using the reader's own wrapped private key.
// The recipient reads the recipient ciphertext and the sender reads the
// sender ciphertext; anyone else gets ErrUnauthorizedReader. A decryption
// failure is not an error: the result is marked Undecryptable.
func (p *Protocol) Read(msg *EncryptedMessage, readerID, readerWrappedPrivateKey string) (*ReadResult, error) {
	var ciphertext string
	switch readerID {
	case msg.RecipientID:
		ciphertext = msg.CipherForRecipient
	case msg.SenderID:
		ciphertext = msg.CipherForSender
	default:
		return nil, herrors.ErrUnauthorizedReader
	}

	result := &ReadResult{
		MessageID:   msg.ID,
		SenderID:    msg.SenderID,
		RecipientID: msg.RecipientID,
		SentAt:      msg.SentAt,
		IsRead:      msg.IsRead,
		ReadAt:      msg.ReadAt,
	}

	plaintext, err := p.decrypt(msg.AlgorithmTag, ciphertext, readerWrappedPrivateKey)
	if err != nil {
		result.Undecryptable = true
		result.Err = err
		return result, nil
	}

	result.Content = string(plaintext)
	result.IntegrityWarning = Digest(result.Content) != msg.ContentDigest
	return result, nil
}

// MarkRead records that the recipient has read the message. Marking an
// already read message is not an error and returns AlreadyRead.
func (p *Protocol) MarkRead(ctx context.Context, messageID, readerID string) (ReadState, error) {
	msg, err := p.store.GetMessage(ctx, messageID)
	if err != nil {
		return AlreadyRead, err
	}
	if msg.RecipientID != readerID {
		return AlreadyRead, herrors.ErrNotRecipient
	}

	changed, err := p.store.MarkRead(ctx, messageID, p.now().UTC())
	if err != nil {
		return AlreadyRead, fmt.Errorf("marking message read: %w", err)
	}
	if changed {
		return FirstRead, nil
	}
	return AlreadyRead, nil
}

// Conversation returns every message between the reader and peerID, oldest
// first, each decrypted for the reader's role in it.
func (p *Protocol) Conversation(ctx context.Context, reader *secrets.PrincipalKeyRecord, peerID string) ([]*ReadResult, error) {
	if err := reader.Validate(); err != nil {
		return nil, err
	}

	msgs, err := p.store.Conversation(ctx, reader.PrincipalID, peerID)
	if err != nil {
		return nil, fmt.Errorf("loading conversation: %w", err)
	}

	results := make([]*ReadResult, 0, len(msgs))
	for _, msg := range msgs {
		result, err := p.Read(msg, reader.PrincipalID, reader.WrappedPrivateKey)
		if err != nil {
			return nil, err
		}
		results = append(results, result)
	}
	return results, nil
}

// Conversations lists one summary per conversation partner, most recently
// active first. Only the last message of each conversation is decrypted.
func (p *Protocol) Conversations(ctx context.Context, reader *secrets.PrincipalKeyRecord) ([]*ConversationSummary, error) {
	if err := reader.Validate(); err != nil {
		return nil, err
	}

	msgs, err := p.store.MessagesFor(ctx, reader.PrincipalID)
	if err != nil {
		return nil, fmt.Errorf("loading messages: %w", err)
	}

	type partnerState struct {
		last   *EncryptedMessage
		count  int
		unread int
	}
	partners := make(map[string]*partnerState)
	for _, msg := range msgs {
		id := msg.Partner(reader.PrincipalID)
		state, ok := partners[id]
		if !ok {
			state = &partnerState{}
			partners[id] = state
		}
		state.last = msg
		state.count++
		if msg.RecipientID == reader.PrincipalID && !msg.IsRead {
			state.unread++
		}
	}

	summaries := make([]*ConversationSummary, 0, len(partners))
	for id, state := range partners {
		last, err := p.Read(state.last, reader.PrincipalID, reader.WrappedPrivateKey)
		if err != nil {
			return nil, err
		}
		summaries = append(summaries, &ConversationSummary{
			PartnerID:    id,
			LastMessage:  last,
			MessageCount: state.count,
			UnreadCount:  state.unread,
		})
	}

	sort.Slice(summaries, func(i, j int) bool {
		a, b := summaries[i].LastMessage.SentAt, summaries[j].LastMessage.SentAt
		if a.Equal(b) {
			return summaries[i].PartnerID < summaries[j].PartnerID
		}
		return a.After(b)
	})
	return summaries, nil
}
