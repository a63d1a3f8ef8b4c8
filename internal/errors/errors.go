package errors

import "errors"

// Key errors indicate key material is missing, weak, or could not be produced.
var (
	// ErrKeyGeneration indicates a key pair could not be generated. It is fatal
	// to the registration or rotation flow that requested it.
	ErrKeyGeneration = errors.New("failed to generate key pair")

	// ErrWeakKeySize indicates a requested RSA modulus is below the 2048-bit minimum.
	ErrWeakKeySize = errors.New("key size below 2048 bits")

	// ErrMissingKey indicates a principal's key record is absent or incomplete.
	ErrMissingKey = errors.New("principal does not have valid encryption keys")

	// ErrInvalidPublicKey indicates a public key could not be parsed.
	ErrInvalidPublicKey = errors.New("invalid or unsupported public key")

	// ErrIntegrityCheckFailed indicates a freshly generated or stored key pair
	// failed its encrypt/decrypt probe.
	ErrIntegrityCheckFailed = errors.New("key pair integrity check failed")
)

// Cryptographic errors indicate failures during encryption or decryption operations.
var (
	// ErrUnwrap indicates data could not be unwrapped with the master key.
	ErrUnwrap = errors.New("failed to unwrap with master key")

	// ErrEncryption indicates public-key encryption failed, usually because the
	// payload exceeds what the key can carry directly.
	ErrEncryption = errors.New("failed to encrypt with public key")

	// ErrDecryption indicates private-key decryption failed.
	ErrDecryption = errors.New("failed to decrypt with private key")

	// ErrFieldDecryption indicates an encrypted personal field could not be decrypted.
	ErrFieldDecryption = errors.New("failed to decrypt field")
)

// Message errors indicate a send or read request breaks a protocol rule.
var (
	// ErrInvalidRecipient indicates the recipient cannot receive this message,
	// for example because it is the sender.
	ErrInvalidRecipient = errors.New("cannot send message to yourself")

	// ErrEmptyMessage indicates the message content is empty after trimming.
	ErrEmptyMessage = errors.New("message content is required")

	// ErrUnauthorizedReader indicates the reader is neither sender nor recipient.
	ErrUnauthorizedReader = errors.New("reader is not a party to this message")

	// ErrNotRecipient indicates only the recipient may perform this action.
	ErrNotRecipient = errors.New("only the recipient can mark a message as read")
)

// Store errors indicate issues with persisted principals or messages.
var (
	// ErrPrincipalNotFound indicates the specified principal could not be found.
	ErrPrincipalNotFound = errors.New("principal not found")

	// ErrPrincipalExists indicates a principal with this username already exists.
	ErrPrincipalExists = errors.New("principal with this username already exists")

	// ErrMessageNotFound indicates the specified message could not be found.
	ErrMessageNotFound = errors.New("message not found")

	// ErrConcurrentRotation indicates the principal's keys changed while a
	// rotation was in flight. Retry the whole rotation.
	ErrConcurrentRotation = errors.New("principal keys changed during rotation")
)

// Config errors indicate the configuration cannot be used.
var (
	// ErrMissingSecret indicates a required secret is not configured.
	ErrMissingSecret = errors.New("required secret is not configured")

	// ErrSecretsNotDistinct indicates the master and field secrets are equal.
	ErrSecretsNotDistinct = errors.New("master key and field key must differ")

	// ErrInvalidConfig indicates the configuration is malformed or out of range.
	ErrInvalidConfig = errors.New("configuration is invalid")
)

// Input errors indicate a caller supplied malformed arguments.
var (
	// ErrInvalidInput indicates a username, email or other argument is malformed.
	ErrInvalidInput = errors.New("invalid input")

	// ErrInvalidDateFormat indicates a date is not in YYYY-MM-DD format.
	ErrInvalidDateFormat = errors.New("invalid date format")
)
