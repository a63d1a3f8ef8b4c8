package secrets

import (
	"crypto/rsa"
	"crypto/sha256"
	"crypto/x509"
	"encoding/base64"
	"encoding/hex"
	"fmt"

	herrors "github.com/PolarWolf314/hush/internal/errors"
)

const (
	// DefaultKeyBits is the RSA modulus size used when none is configured.
	DefaultKeyBits = 2048

	// MinKeyBits is the smallest RSA modulus accepted for new key pairs.
	MinKeyBits = 2048

	// AlgorithmRSA is reported by KeyInfo for every key this package issues.
	AlgorithmRSA = "RSA"

	// KeyFormatPEM is the textual encoding of public keys.
	KeyFormatPEM = "PEM"

	integrityProbe = "test"
)

// KeyPair is a freshly generated public key and its wrapped private key.
type KeyPair struct {
	PublicKey         string
	WrappedPrivateKey string
}

// KeyInfo describes a public key.
type KeyInfo struct {
	Algorithm   string `json:"algorithm"`
	KeySize     int    `json:"key_size"`
	Fingerprint string `json:"fingerprint"`
	Format      string `json:"format"`
}

// KeyManager issues and uses per-principal RSA key pairs. Private keys are
// only ever handled in their wrapped form outside this type.
type KeyManager struct {
	master *MasterCipher
	bits   int
}

// NewKeyManager returns a KeyManager that wraps private keys with master and
// generates keys of the given size. A zero size selects DefaultKeyBits.
func NewKeyManager(master *MasterCipher, bits int) (*KeyManager, error) {
	if master == nil {
		return nil, fmt.Errorf("key manager: %w", herrors.ErrMissingSecret)
	}
	if bits == 0 {
		bits = DefaultKeyBits
	}
	if bits < MinKeyBits {
		return nil, fmt.Errorf("key manager: %w: %d", herrors.ErrWeakKeySize, bits)
	}
	return &KeyManager{master: master, bits: bits}, nil
}

// Bits returns the default key size for GenerateKeyPair.
func (km *KeyManager) Bits() int {
	return km.bits
}

// GenerateKeyPair creates a new RSA key pair of the given size (zero means the
// manager's default), encodes the public key as PEM and wraps the private key.
// Any failure is reported as ErrKeyGeneration.
func (km *KeyManager) GenerateKeyPair(bits int) (*KeyPair, error) {
	if bits == 0 {
		bits = km.bits
	}
	if bits < MinKeyBits {
		return nil, fmt.Errorf("%w: %w: %d", herrors.ErrKeyGeneration, herrors.ErrWeakKeySize, bits)
	}

	privateKey, err := rsa.GenerateKey(randReader, bits)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", herrors.ErrKeyGeneration, err)
	}

	publicKeyPEM, err := EncodePublicKey(&privateKey.PublicKey)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", herrors.ErrKeyGeneration, err)
	}

	wrapped, err := km.master.Wrap(x509.MarshalPKCS1PrivateKey(privateKey))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", herrors.ErrKeyGeneration, err)
	}

	return &KeyPair{
		PublicKey:         publicKeyPEM,
		WrappedPrivateKey: wrapped,
	}, nil
}

// Fingerprint returns the hex SHA-256 of the public key's PKIX DER encoding.
// Hashing DER rather than PEM text makes the result independent of line
// endings and whitespace.
func (km *KeyManager) Fingerprint(publicKeyPEM string) (string, error) {
	publicKey, err := ParsePublicKey(publicKeyPEM)
	if err != nil {
		return "", err
	}
	return fingerprintKey(publicKey)
}

func fingerprintKey(publicKey *rsa.PublicKey) (string, error) {
	der, err := x509.MarshalPKIXPublicKey(publicKey)
	if err != nil {
		return "", fmt.Errorf("failed to marshal public key: %w", err)
	}
	sum := sha256.Sum256(der)
	return hex.EncodeToString(sum[:]), nil
}

// EncryptWithPublic encrypts a short payload directly with the public key and
// returns it base64 encoded. Payloads longer than MaxPayload fail with
// ErrEncryption.
func (km *KeyManager) EncryptWithPublic(plaintext []byte, publicKeyPEM string) (string, error) {
	publicKey, err := ParsePublicKey(publicKeyPEM)
	if err != nil {
		return "", fmt.Errorf("%w: %w", herrors.ErrEncryption, err)
	}

	ciphertext, err := EncryptWithPublicKey(plaintext, publicKey)
	if err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(ciphertext), nil
}

// DecryptWithPrivate unwraps the private key and decrypts a ciphertext
// produced by EncryptWithPublic. Failures match ErrDecryption, and also
// ErrUnwrap when the private key could not be unwrapped.
func (km *KeyManager) DecryptWithPrivate(ciphertext, wrappedPrivateKey string) ([]byte, error) {
	raw, err := base64.StdEncoding.DecodeString(ciphertext)
	if err != nil {
		return nil, fmt.Errorf("%w: malformed ciphertext encoding", herrors.ErrDecryption)
	}

	privateKey, err := km.unwrapPrivateKey(wrappedPrivateKey)
	if err != nil {
		return nil, err
	}

	return DecryptWithPrivateKey(raw, privateKey)
}

func (km *KeyManager) unwrapPrivateKey(wrappedPrivateKey string) (*rsa.PrivateKey, error) {
	der, err := km.master.Unwrap(wrappedPrivateKey)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", herrors.ErrDecryption, err)
	}
	privateKey, err := parsePrivateKey(der)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", herrors.ErrDecryption, err)
	}
	return privateKey, nil
}

// VerifyKeyPairIntegrity reports whether the wrapped private key decrypts a
// probe encrypted under the public key.
func (km *KeyManager) VerifyKeyPairIntegrity(publicKeyPEM, wrappedPrivateKey string) bool {
	ciphertext, err := km.EncryptWithPublic([]byte(integrityProbe), publicKeyPEM)
	if err != nil {
		return false
	}
	plaintext, err := km.DecryptWithPrivate(ciphertext, wrappedPrivateKey)
	if err != nil {
		return false
	}
	return string(plaintext) == integrityProbe
}

// Rotate generates a complete replacement key record for the principal. The
// old pair is not consulted or retained. Callers must check the new record
// with VerifyKeyPairIntegrity before persisting it.
func (km *KeyManager) Rotate(principalID string) (*PrincipalKeyRecord, error) {
	pair, err := km.GenerateKeyPair(0)
	if err != nil {
		return nil, err
	}

	fingerprint, err := km.Fingerprint(pair.PublicKey)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", herrors.ErrKeyGeneration, err)
	}

	return &PrincipalKeyRecord{
		PrincipalID:       principalID,
		PublicKey:         pair.PublicKey,
		WrappedPrivateKey: pair.WrappedPrivateKey,
		Fingerprint:       fingerprint,
	}, nil
}

// KeyInfo describes the algorithm, modulus size and fingerprint of a public key.
func (km *KeyManager) KeyInfo(publicKeyPEM string) (*KeyInfo, error) {
	publicKey, err := ParsePublicKey(publicKeyPEM)
	if err != nil {
		return nil, err
	}
	fingerprint, err := fingerprintKey(publicKey)
	if err != nil {
		return nil, err
	}
	return &KeyInfo{
		Algorithm:   AlgorithmRSA,
		KeySize:     publicKey.N.BitLen(),
		Fingerprint: fingerprint,
		Format:      KeyFormatPEM,
	}, nil
}

// ValidatePublicKey reports whether publicKeyPEM parses as an RSA public key.
func (km *KeyManager) ValidatePublicKey(publicKeyPEM string) bool {
	_, err := ParsePublicKey(publicKeyPEM)
	return err == nil
}

// MaxPayload returns the largest plaintext EncryptWithPublic accepts for the key.
func (km *KeyManager) MaxPayload(publicKeyPEM string) (int, error) {
	publicKey, err := ParsePublicKey(publicKeyPEM)
	if err != nil {
		return 0, err
	}
	return maxOAEPPayload(publicKey), nil
}
