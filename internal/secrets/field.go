package secrets

import (
	"encoding/base64"
	"fmt"
	"io"

	herrors "github.com/PolarWolf314/hush/internal/errors"
	"golang.org/x/crypto/nacl/secretbox"
)

const (
	fieldNonceSize = 24

	// RedactedField replaces a field value that could not be decrypted.
	RedactedField = "[redacted]"
)

// FieldCipher encrypts personal-data fields with a static secret that is
// independent of the master key.
type FieldCipher struct {
	key [SymmetricKeySize]byte
}

// NewFieldCipher derives the field key from the configured field secret.
func NewFieldCipher(secret string) (*FieldCipher, error) {
	key, err := deriveKey(secret, fieldKeyInfo)
	if err != nil {
		return nil, fmt.Errorf("field key: %w", err)
	}
	return &FieldCipher{key: key}, nil
}

// EncryptField seals a field value. A random nonce is drawn per call, so
// equal values produce different ciphertexts.
func (f *FieldCipher) EncryptField(plaintext string) (string, error) {
	var nonce [fieldNonceSize]byte
	if _, err := io.ReadFull(randReader, nonce[:]); err != nil {
		return "", fmt.Errorf("failed to read nonce: %w", err)
	}

	sealed := secretbox.Seal(nonce[:], []byte(plaintext), &nonce, &f.key)
	return base64.StdEncoding.EncodeToString(sealed), nil
}

// DecryptField opens a value produced by EncryptField. Malformed or foreign
// input fails with ErrFieldDecryption.
func (f *FieldCipher) DecryptField(ciphertext string) (string, error) {
	raw, err := base64.StdEncoding.DecodeString(ciphertext)
	if err != nil {
		return "", fmt.Errorf("%w: malformed encoding", herrors.ErrFieldDecryption)
	}
	if len(raw) < fieldNonceSize+secretbox.Overhead {
		return "", fmt.Errorf("%w: ciphertext too short", herrors.ErrFieldDecryption)
	}

	var nonce [fieldNonceSize]byte
	copy(nonce[:], raw[:fieldNonceSize])

	plaintext, ok := secretbox.Open(nil, raw[fieldNonceSize:], &nonce, &f.key)
	if !ok {
		return "", fmt.Errorf("%w: authentication failed", herrors.ErrFieldDecryption)
	}
	return string(plaintext), nil
}

// RevealOrRedact decrypts a field for display. On failure it returns
// RedactedField and false; the stored ciphertext is never surfaced.
func (f *FieldCipher) RevealOrRedact(ciphertext string) (string, bool) {
	if ciphertext == "" {
		return "", true
	}
	plaintext, err := f.DecryptField(ciphertext)
	if err != nil {
		return RedactedField, false
	}
	return plaintext, true
}
