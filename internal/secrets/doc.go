// Package secrets provides the cryptographic core of hush.
//
// This package holds three independent services, each constructed once at
// startup with its secret injected explicitly:
//
//   - MasterCipher wraps private key material under the master key
//   - KeyManager generates RSA key pairs and performs public-key encryption
//   - FieldCipher encrypts individual personal-data fields
//
// # Key Hierarchy
//
// Every principal owns one RSA key pair, stored as a PrincipalKeyRecord:
//
//  1. The public key is kept as PEM ("PUBLIC KEY", PKIX) text
//  2. The private key is PKCS#1 encoded, then wrapped by the MasterCipher
//  3. The fingerprint is the SHA-256 of the public key's PKIX DER bytes
//
// The private key never leaves this package unwrapped. DecryptWithPrivate
// takes the wrapped form, unwraps it in memory and discards it after use.
//
// # Algorithms
//
// The master and field secrets are configured strings, stretched into
// 256-bit keys with HKDF-SHA-256 and distinct info labels:
//
//   - Master wrapping: XChaCha20-Poly1305, random 24-byte nonce prepended
//   - Field encryption: NaCl secretbox, random 24-byte nonce prepended
//   - Public-key encryption: RSA-OAEP with SHA-256
//   - Hybrid envelopes: RSA-OAEP wraps a fresh 32-byte key that seals the
//     body with XChaCha20-Poly1305
//
// Direct RSA-OAEP can only carry MaxPayload bytes (190 for a 2048-bit key).
// Longer payloads fail with ErrEncryption; use SealHybrid instead.
//
// Both symmetric schemes are non-deterministic: encrypting the same value
// twice yields different ciphertexts. Encrypted fields therefore cannot be
// searched or compared in their stored form.
//
// # Failure Semantics
//
// No function in this package returns ciphertext in place of plaintext.
// Every failure is one of the sentinel errors from internal/errors.
//
// # Concurrency
//
// All three services are immutable after construction and safe for
// concurrent use.
package secrets
