// Package messaging implements dual encryption of conversation messages.
//
// Every message is encrypted twice: once under the recipient's public key and
// once under the sender's, so either participant can recover the plaintext
// with only their own private key. A SHA-256 digest of the plaintext is
// stored alongside and recomputed on every read. The digest is unkeyed, so a
// mismatch is reported as an integrity warning and the plaintext is still
// returned.
//
// Two schemes are supported and recorded per message in its algorithm tag:
//
//   - direct: the plaintext is encrypted with RSA-OAEP (SHA-256). Messages
//     are limited to the key's OAEP capacity, 190 bytes for RSA-2048.
//   - hybrid: a fresh content key is encrypted with RSA-OAEP and the body
//     with XChaCha20-Poly1305. There is no practical length limit.
//
// Reads dispatch on the stored tag, so changing the configured scheme never
// affects existing messages.
//
// A read that cannot decrypt does not fail. It yields a ReadResult with
// Undecryptable set and empty Content; Text returns UndecryptableText for
// display.
package messaging
