package workflows

import (
	"context"
	"fmt"
	"sync"

	"github.com/PolarWolf314/hush/internal/audit"
	"github.com/PolarWolf314/hush/internal/messaging"
	"github.com/PolarWolf314/hush/internal/secrets"
	"golang.org/x/sync/errgroup"
)

// KeyInfoResult describes a principal's current public key.
type KeyInfoResult struct {
	PrincipalID string `json:"id"`
	Username    string `json:"username"`
	secrets.KeyInfo

	// MaxDirectPayload is the longest message the direct scheme can carry
	// to this principal.
	MaxDirectPayload int    `json:"max_direct_payload"`
	Scheme           string `json:"scheme"`
}

// KeyInfo describes a principal's public key.
//
// Returns ErrMissingKey if the principal has no complete key record.
func (e *Env) KeyInfo(ctx context.Context, ref string) (*KeyInfoResult, error) {
	p, err := e.resolvePrincipal(ctx, ref)
	if err != nil {
		return nil, err
	}
	if err := p.Keys.Validate(); err != nil {
		return nil, err
	}

	info, err := e.Keys.KeyInfo(p.Keys.PublicKey)
	if err != nil {
		return nil, err
	}
	limit, err := e.Keys.MaxPayload(p.Keys.PublicKey)
	if err != nil {
		return nil, err
	}

	return &KeyInfoResult{
		PrincipalID:      p.ID,
		Username:         p.Username,
		KeyInfo:          *info,
		MaxDirectPayload: limit,
		Scheme:           string(e.Messages.Scheme()),
	}, nil
}

// ValidateResult reports each key check separately.
type ValidateResult struct {
	PrincipalID string `json:"id"`
	Username    string `json:"username"`

	Complete           bool `json:"complete"`
	PublicKeyValid     bool `json:"public_key_valid"`
	FingerprintMatches bool `json:"fingerprint_matches"`
	PairIntegrityHolds bool `json:"pair_integrity"`
}

// Valid reports whether every check passed.
func (r *ValidateResult) Valid() bool {
	return r.Complete && r.PublicKeyValid && r.FingerprintMatches && r.PairIntegrityHolds
}

// ValidateKeys checks a principal's stored key record: completeness, public
// key parsing, fingerprint and a probe round trip through the private key.
func (e *Env) ValidateKeys(ctx context.Context, ref string) (*ValidateResult, error) {
	p, err := e.resolvePrincipal(ctx, ref)
	if err != nil {
		return nil, err
	}
	return e.validateRecord(p.ID, p.Username, &p.Keys), nil
}

func (e *Env) validateRecord(id, username string, rec *secrets.PrincipalKeyRecord) *ValidateResult {
	result := &ValidateResult{PrincipalID: id, Username: username}

	result.Complete = rec.Validate() == nil
	if !result.Complete {
		return result
	}

	result.PublicKeyValid = e.Keys.ValidatePublicKey(rec.PublicKey)
	if !result.PublicKeyValid {
		return result
	}

	fingerprint, err := e.Keys.Fingerprint(rec.PublicKey)
	result.FingerprintMatches = err == nil && fingerprint == rec.Fingerprint
	result.PairIntegrityHolds = e.Keys.VerifyKeyPairIntegrity(rec.PublicKey, rec.WrappedPrivateKey)
	return result
}

// RotateResult contains the outcome of a rotate operation.
type RotateResult struct {
	PrincipalID    string
	Username       string
	OldFingerprint string
	NewFingerprint string
}

// RotateKeys replaces a principal's key pair. The new pair is verified before
// it is persisted, and persisted only if the stored fingerprint is unchanged
// since it was read. Messages encrypted under the old key are not
// re-encrypted and become unreadable for this principal.
//
// Returns ErrIntegrityCheckFailed if the new pair fails verification.
// Returns ErrConcurrentRotation if another process rotated the keys first.
func (e *Env) RotateKeys(ctx context.Context, ref string) (*RotateResult, error) {
	p, err := e.resolvePrincipal(ctx, ref)
	if err != nil {
		return nil, err
	}

	unlock := e.locks.lock(p.ID)
	defer unlock()

	current, err := e.Store.KeyRecord(ctx, p.ID)
	if err != nil {
		return nil, err
	}

	e.Logger.Infof("Generating replacement %d-bit key pair for %s", e.Keys.Bits(), p.Username)
	rec, err := e.issueKeys(p.ID)
	if err != nil {
		return nil, err
	}

	if err := e.Store.ReplaceKeys(ctx, current.Fingerprint, rec); err != nil {
		return nil, err
	}

	audit.Log(audit.Entry{
		Actor:          p.ID,
		Operation:      audit.OpRotate,
		Target:         p.ID,
		Fingerprint:    rec.Fingerprint,
		OldFingerprint: current.Fingerprint,
	})

	return &RotateResult{
		PrincipalID:    p.ID,
		Username:       p.Username,
		OldFingerprint: current.Fingerprint,
		NewFingerprint: rec.Fingerprint,
	}, nil
}

// TestEncryptionResult reports a round trip through a principal's keys.
type TestEncryptionResult struct {
	PrincipalID      string `json:"id"`
	Scheme           string `json:"scheme"`
	Plaintext        string `json:"plaintext"`
	CiphertextLength int    `json:"ciphertext_length"`
	Decrypted        string `json:"decrypted"`
	Success          bool   `json:"success"`
}

// TestEncryption encrypts payload under a principal's public key with the
// configured scheme and decrypts it again with the private key.
func (e *Env) TestEncryption(ctx context.Context, ref, payload string) (*TestEncryptionResult, error) {
	p, err := e.resolvePrincipal(ctx, ref)
	if err != nil {
		return nil, err
	}
	if err := p.Keys.Validate(); err != nil {
		return nil, err
	}
	if payload == "" {
		payload = "Hello, this is a test message!"
	}

	result := &TestEncryptionResult{
		PrincipalID: p.ID,
		Scheme:      string(e.Messages.Scheme()),
		Plaintext:   payload,
	}

	var (
		ciphertext string
		decrypted  []byte
	)
	if e.Messages.Scheme() == messaging.SchemeHybrid {
		ciphertext, err = e.Keys.SealHybrid([]byte(payload), p.Keys.PublicKey)
		if err != nil {
			return nil, err
		}
		decrypted, err = e.Keys.OpenHybrid(ciphertext, p.Keys.WrappedPrivateKey)
	} else {
		ciphertext, err = e.Keys.EncryptWithPublic([]byte(payload), p.Keys.PublicKey)
		if err != nil {
			return nil, err
		}
		decrypted, err = e.Keys.DecryptWithPrivate(ciphertext, p.Keys.WrappedPrivateKey)
	}
	if err != nil {
		return nil, err
	}

	result.CiphertextLength = len(ciphertext)
	result.Decrypted = string(decrypted)
	result.Success = result.Decrypted == payload
	return result, nil
}

// BackfillOptions configures the backfill workflow.
type BackfillOptions struct {
	// DryRun lists principals that need keys without generating any.
	DryRun bool
}

// BackfillFailure records why one principal could not be given keys.
type BackfillFailure struct {
	PrincipalID string
	Err         error
}

// BackfillResult contains the outcome of a backfill operation.
type BackfillResult struct {
	// Pending lists principals that lacked a complete key record.
	Pending []string

	// Generated lists principals that received keys, in completion order.
	Generated []string

	Failed []BackfillFailure
}

// Backfill generates keys for every principal without a complete key record,
// using at most Config.Runtime.Workers concurrent key generations. A failure
// for one principal does not stop the others.
func (e *Env) Backfill(ctx context.Context, opts BackfillOptions) (*BackfillResult, error) {
	pending, err := e.Store.PrincipalsMissingKeys(ctx)
	if err != nil {
		return nil, fmt.Errorf("finding principals without keys: %w", err)
	}

	result := &BackfillResult{Pending: pending}
	if opts.DryRun || len(pending) == 0 {
		return result, nil
	}

	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.Config.Runtime.Workers)

	for _, id := range pending {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}

			generated, err := e.backfillOne(gctx, id)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				e.Logger.Warnf("Could not generate keys for %s: %v", id, err)
				result.Failed = append(result.Failed, BackfillFailure{PrincipalID: id, Err: err})
				return nil
			}
			if !generated {
				return nil
			}
			e.Logger.Infof("Generated keys for %s", id)
			result.Generated = append(result.Generated, id)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return result, err
	}

	audit.Log(audit.Entry{
		Operation: audit.OpBackfill,
		Count:     len(result.Generated),
		Failed:    len(result.Failed),
	})

	return result, nil
}

// backfillOne issues keys for one principal unless another writer already
// completed its record, and reports whether it generated any.
func (e *Env) backfillOne(ctx context.Context, principalID string) (bool, error) {
	unlock := e.locks.lock(principalID)
	defer unlock()

	current, err := e.Store.KeyRecord(ctx, principalID)
	if err != nil {
		return false, err
	}
	if current.Validate() == nil {
		return false, nil
	}

	rec, err := e.issueKeys(principalID)
	if err != nil {
		return false, err
	}
	if err := e.Store.ReplaceKeys(ctx, current.Fingerprint, rec); err != nil {
		return false, err
	}
	return true, nil
}
