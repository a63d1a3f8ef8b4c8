// Package workflows provides high-level orchestration for hush commands.
//
// Workflows coordinate the store, the key manager, the field cipher, the
// message protocol and the audit log to implement complete user-facing
// features. Each workflow handles a single command's business logic,
// independent of CLI concerns like flag parsing, spinners and output
// formatting.
//
// # Environment
//
// Workflows are methods on Env, which carries the services built from a
// validated configuration:
//
//	env, err := workflows.Open(ctx, config, log)
//	defer env.Close()
//	result, err := env.Send(ctx, workflows.SendOptions{From: "alice", To: "bob", Content: "hi"})
//
// Principals may be referred to by id or username wherever a workflow takes
// a reference.
//
// # Available Workflows
//
//   - Register, GetProfile, ListProfiles, Search: principals and their
//     encrypted personal fields
//   - KeyInfo, ValidateKeys, RotateKeys, TestEncryption, Backfill: key pairs
//   - Send, Conversation, Conversations, MarkRead: messages
//   - Log: the audit trail
//   - Doctor: health checks, usable even when the configuration is invalid
//
// # Error Handling
//
// Workflows return typed errors from the internal/errors package, allowing
// the CLI layer to provide appropriate user-facing messages without string
// matching:
//
//	_, err := env.Send(ctx, opts)
//	if errors.Is(err, herrors.ErrInvalidRecipient) {
//	    // Show user-friendly message
//	}
//
// # Concurrency
//
// Key rotation and backfill hold a per-principal lock for the whole
// generate, verify and persist sequence, and persist with a compare-and-swap
// on the previous fingerprint. Backfill runs key generation in a bounded
// errgroup.
package workflows
