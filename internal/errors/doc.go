// Package errors provides typed error values for the hush application.
//
// Using sentinel errors allows callers to handle specific error conditions
// programmatically with errors.Is() rather than string matching. Every failure
// the cryptographic core can produce is one of these values, usually wrapped
// with additional context.
//
// # Error Categories
//
// Errors are grouped by category:
//
//   - Key errors: key material is missing or cannot be produced (ErrKeyGeneration, ErrMissingKey)
//   - Crypto errors: encryption/decryption failures (ErrUnwrap, ErrDecryption, ErrFieldDecryption)
//   - Message errors: send/read rule violations (ErrInvalidRecipient, ErrNotRecipient)
//   - Store errors: persistence lookups and conflicts (ErrPrincipalNotFound, ErrConcurrentRotation)
//   - Config errors: unusable configuration (ErrMissingSecret, ErrInvalidConfig)
//   - Input errors: malformed arguments (ErrInvalidInput, ErrInvalidDateFormat)
//
// # Usage
//
// Return errors from internal packages:
//
//	if rec.PublicKey == "" {
//	    return nil, errors.ErrMissingKey
//	}
//
// Handle errors in the CLI layer:
//
//	result, err := workflows.Send(ctx, env, opts)
//	if errors.Is(err, herrors.ErrInvalidRecipient) {
//	    // Show user-friendly message
//	}
//
// Wrap errors with additional context:
//
//	return fmt.Errorf("unwrapping key for principal %s: %w", id, errors.ErrUnwrap)
//
// A decryption failure caused by a failed unwrap matches both ErrDecryption
// and ErrUnwrap.
package errors
