// Package audit records hush operations in an append-only JSON Lines file.
//
// Registrations, key rotations, key backfills, sends and read receipts are
// each recorded as one line in:
//
//	$XDG_DATA_HOME/hush/audit.jsonl
//
// Each entry carries a UTC timestamp with microseconds, the acting
// principal, the operation name and operation-specific details such as the
// target principal, message id or key fingerprints. Entries never contain
// plaintext, secrets or key material.
//
// # Failure Handling
//
// Audit logging is best-effort. If the log cannot be written the operation
// continues without error.
//
// # Reading Logs
//
// ReadEntries parses the log, skipping malformed lines left by partial
// writes. Filter narrows the result for display.
package audit
