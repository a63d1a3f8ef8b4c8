package secrets

import (
	"crypto/sha256"
	"fmt"
	"io"

	herrors "github.com/PolarWolf314/hush/internal/errors"
	"golang.org/x/crypto/hkdf"
)

const (
	// SymmetricKeySize is the size of every derived or generated symmetric key.
	SymmetricKeySize = 32

	masterKeyInfo = "hush:master-key:v1"
	fieldKeyInfo  = "hush:field-key:v1"
)

// deriveKey stretches a configured secret into a 256-bit key. The info
// label separates keys derived from the same secret for different purposes.
func deriveKey(secret, info string) ([SymmetricKeySize]byte, error) {
	var key [SymmetricKeySize]byte
	if secret == "" {
		return key, herrors.ErrMissingSecret
	}

	reader := hkdf.New(sha256.New, []byte(secret), nil, []byte(info))
	if _, err := io.ReadFull(reader, key[:]); err != nil {
		return key, fmt.Errorf("failed to derive key: %w", err)
	}

	return key, nil
}
