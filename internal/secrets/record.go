package secrets

import (
	"fmt"

	herrors "github.com/PolarWolf314/hush/internal/errors"
)

// PrincipalKeyRecord is the persisted key state of one principal. The public
// key and wrapped private key are always generated, rotated and stored
// together.
type PrincipalKeyRecord struct {
	PrincipalID       string `json:"principal_id"`
	PublicKey         string `json:"public_key"`
	WrappedPrivateKey string `json:"-"`
	Fingerprint       string `json:"fingerprint"`
}

// HasKeys reports whether any key material is present at all.
func (r *PrincipalKeyRecord) HasKeys() bool {
	return r != nil && (r.PublicKey != "" || r.WrappedPrivateKey != "" || r.Fingerprint != "")
}

// Validate returns ErrMissingKey unless the record is complete. A record
// holding only one half of the pair must not be used.
func (r *PrincipalKeyRecord) Validate() error {
	if r == nil {
		return herrors.ErrMissingKey
	}
	var missing string
	switch {
	case r.PublicKey == "":
		missing = "public key"
	case r.WrappedPrivateKey == "":
		missing = "wrapped private key"
	case r.Fingerprint == "":
		missing = "fingerprint"
	default:
		return nil
	}
	return fmt.Errorf("principal %s: %w: %s missing", r.PrincipalID, herrors.ErrMissingKey, missing)
}
