package secrets

import (
	"crypto/rsa"
	"crypto/sha256"
	"crypto/x509"
	"encoding/pem"
	"errors"
	"fmt"
	"io"

	herrors "github.com/PolarWolf314/hush/internal/errors"
	"golang.org/x/crypto/chacha20poly1305"
)

const (
	publicKeyPEMType = "PUBLIC KEY"

	// oaepOverhead is 2*hLen + 2 for SHA-256.
	oaepOverhead = 2*sha256.Size + 2
)

// EncryptWithPublicKey encrypts data using RSA-OAEP with SHA-256.
func EncryptWithPublicKey(plaintext []byte, publicKey *rsa.PublicKey) ([]byte, error) {
	if max := maxOAEPPayload(publicKey); len(plaintext) > max {
		return nil, fmt.Errorf("%w: payload is %d bytes, key carries at most %d", herrors.ErrEncryption, len(plaintext), max)
	}
	ciphertext, err := rsa.EncryptOAEP(sha256.New(), randReader, publicKey, plaintext, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", herrors.ErrEncryption, err)
	}
	return ciphertext, nil
}

// DecryptWithPrivateKey decrypts data using RSA-OAEP with SHA-256.
func DecryptWithPrivateKey(ciphertext []byte, privateKey *rsa.PrivateKey) ([]byte, error) {
	plaintext, err := rsa.DecryptOAEP(sha256.New(), nil, privateKey, ciphertext, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", herrors.ErrDecryption, err)
	}
	return plaintext, nil
}

func maxOAEPPayload(publicKey *rsa.PublicKey) int {
	max := publicKey.Size() - oaepOverhead
	if max < 0 {
		return 0
	}
	return max
}

// ParsePublicKey decodes a PEM encoded PKIX RSA public key.
func ParsePublicKey(publicKeyPEM string) (*rsa.PublicKey, error) {
	block, _ := pem.Decode([]byte(publicKeyPEM))
	if block == nil || block.Type != publicKeyPEMType {
		return nil, fmt.Errorf("%w: no PEM block containing a public key", herrors.ErrInvalidPublicKey)
	}
	pub, err := x509.ParsePKIXPublicKey(block.Bytes)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", herrors.ErrInvalidPublicKey, err)
	}
	rsaPub, ok := pub.(*rsa.PublicKey)
	if !ok {
		return nil, fmt.Errorf("%w: not an RSA public key", herrors.ErrInvalidPublicKey)
	}
	return rsaPub, nil
}

// EncodePublicKey returns the PEM encoding of an RSA public key.
func EncodePublicKey(publicKey *rsa.PublicKey) (string, error) {
	der, err := x509.MarshalPKIXPublicKey(publicKey)
	if err != nil {
		return "", fmt.Errorf("failed to marshal public key: %w", err)
	}
	return string(pem.EncodeToMemory(&pem.Block{Type: publicKeyPEMType, Bytes: der})), nil
}

func parsePrivateKey(der []byte) (*rsa.PrivateKey, error) {
	key, err := x509.ParsePKCS1PrivateKey(der)
	if err != nil {
		return nil, fmt.Errorf("invalid private key encoding: %w", err)
	}
	return key, nil
}

// sealXChaCha encrypts with XChaCha20-Poly1305 and prepends the random nonce.
func sealXChaCha(key, plaintext []byte) ([]byte, error) {
	aead, err := chacha20poly1305.NewX(key)
	if err != nil {
		return nil, err
	}

	nonce := make([]byte, chacha20poly1305.NonceSizeX, chacha20poly1305.NonceSizeX+len(plaintext)+aead.Overhead())
	if _, err := io.ReadFull(randReader, nonce); err != nil {
		return nil, err
	}

	return aead.Seal(nonce, nonce, plaintext, nil), nil
}

func openXChaCha(key, blob []byte) ([]byte, error) {
	aead, err := chacha20poly1305.NewX(key)
	if err != nil {
		return nil, err
	}
	if len(blob) < chacha20poly1305.NonceSizeX+aead.Overhead() {
		return nil, errors.New("ciphertext too short")
	}

	nonce := blob[:chacha20poly1305.NonceSizeX]
	return aead.Open(nil, nonce, blob[chacha20poly1305.NonceSizeX:], nil)
}
