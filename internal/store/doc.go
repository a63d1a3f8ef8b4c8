// Package store persists principals and encrypted messages in SQLite.
//
// The database is opened through the pure-Go modernc.org/sqlite driver. Two
// tables hold all state:
//
//   - principals: profile, encrypted personal fields and the key record
//     (public key, wrapped private key, fingerprint).
//   - messages: the dual-encrypted message rows written by the messaging
//     package.
//
// Key records are only ever replaced as a whole with ReplaceKeys, a
// compare-and-swap on the current fingerprint. A send is one INSERT, and
// marking a message read is a conditional UPDATE that never reverts.
package store
