package secrets

import (
	"encoding/base64"
	"fmt"
	"io"

	herrors "github.com/PolarWolf314/hush/internal/errors"
)

// hybridVersion prefixes every envelope so the layout can change later.
const hybridVersion byte = 1

// SealHybrid encrypts a payload of any length for the holder of publicKeyPEM.
// A fresh 32-byte key seals the body with XChaCha20-Poly1305 and is itself
// encrypted with RSA-OAEP.
//
// Envelope layout, base64 encoded:
//
//	version (1 byte) || RSA ciphertext (key size bytes) || nonce || body || tag
func (km *KeyManager) SealHybrid(plaintext []byte, publicKeyPEM string) (string, error) {
	publicKey, err := ParsePublicKey(publicKeyPEM)
	if err != nil {
		return "", fmt.Errorf("%w: %w", herrors.ErrEncryption, err)
	}

	contentKey := make([]byte, SymmetricKeySize)
	if _, err := io.ReadFull(randReader, contentKey); err != nil {
		return "", fmt.Errorf("%w: generating content key: %v", herrors.ErrEncryption, err)
	}

	wrappedKey, err := EncryptWithPublicKey(contentKey, publicKey)
	if err != nil {
		return "", err
	}

	body, err := sealXChaCha(contentKey, plaintext)
	if err != nil {
		return "", fmt.Errorf("%w: sealing body: %v", herrors.ErrEncryption, err)
	}

	envelope := make([]byte, 0, 1+len(wrappedKey)+len(body))
	envelope = append(envelope, hybridVersion)
	envelope = append(envelope, wrappedKey...)
	envelope = append(envelope, body...)
	return base64.StdEncoding.EncodeToString(envelope), nil
}

// OpenHybrid reverses SealHybrid using the recipient's wrapped private key.
func (km *KeyManager) OpenHybrid(envelope, wrappedPrivateKey string) ([]byte, error) {
	raw, err := base64.StdEncoding.DecodeString(envelope)
	if err != nil {
		return nil, fmt.Errorf("%w: malformed envelope encoding", herrors.ErrDecryption)
	}

	privateKey, err := km.unwrapPrivateKey(wrappedPrivateKey)
	if err != nil {
		return nil, err
	}

	keyLen := privateKey.Size()
	if len(raw) < 1+keyLen || raw[0] != hybridVersion {
		return nil, fmt.Errorf("%w: malformed envelope", herrors.ErrDecryption)
	}

	contentKey, err := DecryptWithPrivateKey(raw[1:1+keyLen], privateKey)
	if err != nil {
		return nil, err
	}
	if len(contentKey) != SymmetricKeySize {
		return nil, fmt.Errorf("%w: content key has %d bytes", herrors.ErrDecryption, len(contentKey))
	}

	plaintext, err := openXChaCha(contentKey, raw[1+keyLen:])
	if err != nil {
		return nil, fmt.Errorf("%w: opening body: %v", herrors.ErrDecryption, err)
	}
	return plaintext, nil
}
