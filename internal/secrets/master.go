package secrets

import (
	"encoding/base64"
	"fmt"

	herrors "github.com/PolarWolf314/hush/internal/errors"
)

// MasterCipher wraps and unwraps private key material with the master key.
type MasterCipher struct {
	key [SymmetricKeySize]byte
}

// NewMasterCipher derives the wrapping key from the configured master secret.
func NewMasterCipher(secret string) (*MasterCipher, error) {
	key, err := deriveKey(secret, masterKeyInfo)
	if err != nil {
		return nil, fmt.Errorf("master key: %w", err)
	}
	return &MasterCipher{key: key}, nil
}

// Wrap encrypts plaintext under the master key.
// Returns base64(nonce || ciphertext || tag).
func (m *MasterCipher) Wrap(plaintext []byte) (string, error) {
	sealed, err := sealXChaCha(m.key[:], plaintext)
	if err != nil {
		return "", fmt.Errorf("failed to wrap with master key: %w", err)
	}
	return base64.StdEncoding.EncodeToString(sealed), nil
}

// Unwrap reverses Wrap. Input that was not produced by Wrap under the same
// master secret fails with ErrUnwrap.
func (m *MasterCipher) Unwrap(wrapped string) ([]byte, error) {
	blob, err := base64.StdEncoding.DecodeString(wrapped)
	if err != nil {
		return nil, fmt.Errorf("%w: malformed encoding", herrors.ErrUnwrap)
	}

	plaintext, err := openXChaCha(m.key[:], blob)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", herrors.ErrUnwrap, err)
	}
	return plaintext, nil
}
