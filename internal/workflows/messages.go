package workflows

import (
	"context"
	"time"

	"github.com/PolarWolf314/hush/internal/audit"
	"github.com/PolarWolf314/hush/internal/messaging"
)

// SendOptions configures the send workflow.
type SendOptions struct {
	// From is the sending principal's id or username.
	From string
	// To is the recipient's id or username.
	To      string
	Content string
}

// SendResult contains the outcome of a send operation.
type SendResult struct {
	MessageID    string
	SenderID     string
	RecipientID  string
	AlgorithmTag string
	SentAt       time.Time
}

// Send encrypts a message for both participants and stores it.
//
// Returns ErrInvalidRecipient when sending to oneself.
// Returns ErrMissingKey if either participant lacks a complete key record.
// Returns ErrEmptyMessage for blank content.
// Returns ErrEncryption if the content exceeds the direct scheme's capacity.
func (e *Env) Send(ctx context.Context, opts SendOptions) (*SendResult, error) {
	sender, err := e.resolvePrincipal(ctx, opts.From)
	if err != nil {
		return nil, err
	}
	recipient, err := e.resolvePrincipal(ctx, opts.To)
	if err != nil {
		return nil, err
	}

	msg, err := e.Messages.Send(ctx, opts.Content, &sender.Keys, &recipient.Keys)
	if err != nil {
		return nil, err
	}
	e.Logger.Debugf("Stored message %s (%s)", msg.ID, msg.AlgorithmTag)

	audit.Log(audit.Entry{
		Actor:     sender.ID,
		Operation: audit.OpSend,
		Target:    recipient.ID,
		MessageID: msg.ID,
		Algorithm: msg.AlgorithmTag,
	})

	return &SendResult{
		MessageID:    msg.ID,
		SenderID:     msg.SenderID,
		RecipientID:  msg.RecipientID,
		AlgorithmTag: msg.AlgorithmTag,
		SentAt:       msg.SentAt,
	}, nil
}

// ConversationResult holds a decrypted conversation between two principals.
type ConversationResult struct {
	ReaderID     string
	PeerID       string
	PeerUsername string
	Messages     []*messaging.ReadResult

	// Counts of messages flagged on read.
	Undecryptable     int
	IntegrityWarnings int
}

// Conversation returns every message between the reader and peer, oldest
// first, decrypted with the reader's own key.
func (e *Env) Conversation(ctx context.Context, readerRef, peerRef string) (*ConversationResult, error) {
	reader, err := e.resolvePrincipal(ctx, readerRef)
	if err != nil {
		return nil, err
	}
	peer, err := e.resolvePrincipal(ctx, peerRef)
	if err != nil {
		return nil, err
	}

	results, err := e.Messages.Conversation(ctx, &reader.Keys, peer.ID)
	if err != nil {
		return nil, err
	}

	conv := &ConversationResult{
		ReaderID:     reader.ID,
		PeerID:       peer.ID,
		PeerUsername: peer.Username,
		Messages:     results,
	}
	for _, r := range results {
		if r.Undecryptable {
			conv.Undecryptable++
			e.Logger.Debugf("Message %s could not be decrypted: %v", r.MessageID, r.Err)
		}
		if r.IntegrityWarning {
			conv.IntegrityWarnings++
		}
	}
	return conv, nil
}

// ConversationEntry is one partner in a principal's conversation list.
type ConversationEntry struct {
	*messaging.ConversationSummary
	PartnerUsername string `json:"partner_username"`
}

// Conversations lists the reader's conversation partners, most recent first,
// with the last message and unread count of each.
func (e *Env) Conversations(ctx context.Context, readerRef string) ([]*ConversationEntry, error) {
	reader, err := e.resolvePrincipal(ctx, readerRef)
	if err != nil {
		return nil, err
	}

	summaries, err := e.Messages.Conversations(ctx, &reader.Keys)
	if err != nil {
		return nil, err
	}

	entries := make([]*ConversationEntry, 0, len(summaries))
	for _, s := range summaries {
		entry := &ConversationEntry{ConversationSummary: s}
		if partner, err := e.Store.GetPrincipal(ctx, s.PartnerID); err == nil {
			entry.PartnerUsername = partner.Username
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

// MarkReadResult contains the outcome of a mark-read operation.
type MarkReadResult struct {
	MessageID string
	State     messaging.ReadState
}

// MarkRead marks a message read on behalf of its recipient. Repeating it is
// not an error.
//
// Returns ErrNotRecipient if the reader did not receive the message.
// Returns ErrMessageNotFound if the message does not exist.
func (e *Env) MarkRead(ctx context.Context, readerRef, messageID string) (*MarkReadResult, error) {
	reader, err := e.resolvePrincipal(ctx, readerRef)
	if err != nil {
		return nil, err
	}

	state, err := e.Messages.MarkRead(ctx, messageID, reader.ID)
	if err != nil {
		return nil, err
	}

	if state == messaging.FirstRead {
		audit.Log(audit.Entry{
			Actor:     reader.ID,
			Operation: audit.OpRead,
			MessageID: messageID,
		})
	}

	return &MarkReadResult{MessageID: messageID, State: state}, nil
}
