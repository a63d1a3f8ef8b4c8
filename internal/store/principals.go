package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	herrors "github.com/PolarWolf314/hush/internal/errors"
	"github.com/PolarWolf314/hush/internal/secrets"
)

const birthdateLayout = "2006-01-02"

// Principal is a registered user. Email, MobileNumber and District hold field
// cipher ciphertext, never plaintext.
type Principal struct {
	ID           string
	Username     string
	Email        string
	MobileNumber string
	District     string
	Birthdate    time.Time
	Keys         secrets.PrincipalKeyRecord
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

const principalColumns = `id, username, email, mobile_number, district, birthdate,
	public_key, wrapped_private_key, fingerprint, created_at, updated_at`

type scanner interface {
	Scan(dest ...any) error
}

func scanPrincipal(row scanner) (*Principal, error) {
	var (
		p                    Principal
		birthdate            string
		createdAt, updatedAt int64
	)
	err := row.Scan(&p.ID, &p.Username, &p.Email, &p.MobileNumber, &p.District, &birthdate,
		&p.Keys.PublicKey, &p.Keys.WrappedPrivateKey, &p.Keys.Fingerprint, &createdAt, &updatedAt)
	if err != nil {
		return nil, err
	}

	p.Keys.PrincipalID = p.ID
	p.CreatedAt = fromUnix(createdAt)
	p.UpdatedAt = fromUnix(updatedAt)
	if birthdate != "" {
		if p.Birthdate, err = time.Parse(birthdateLayout, birthdate); err != nil {
			return nil, fmt.Errorf("principal %s: bad birthdate %q: %w", p.ID, birthdate, err)
		}
	}
	return &p, nil
}

// CreatePrincipal inserts p. The key record may be empty; it is filled later
// with ReplaceKeys. Returns ErrPrincipalExists when the id or username is
// taken.
func (s *Store) CreatePrincipal(ctx context.Context, p *Principal) error {
	var birthdate string
	if !p.Birthdate.IsZero() {
		birthdate = p.Birthdate.Format(birthdateLayout)
	}

	result, err := s.db.ExecContext(ctx, `
	INSERT INTO principals (`+principalColumns+`)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	ON CONFLICT DO NOTHING`,
		p.ID, p.Username, p.Email, p.MobileNumber, p.District, birthdate,
		p.Keys.PublicKey, p.Keys.WrappedPrivateKey, p.Keys.Fingerprint,
		toUnix(p.CreatedAt), toUnix(p.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("insert principal: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return fmt.Errorf("%w: %s", herrors.ErrPrincipalExists, p.Username)
	}
	return nil
}

// GetPrincipal returns the principal with the given id.
func (s *Store) GetPrincipal(ctx context.Context, id string) (*Principal, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+principalColumns+` FROM principals WHERE id = ?`, id)
	p, err := scanPrincipal(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", herrors.ErrPrincipalNotFound, id)
	}
	return p, err
}

// GetPrincipalByUsername returns the principal with the given username.
func (s *Store) GetPrincipalByUsername(ctx context.Context, username string) (*Principal, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+principalColumns+` FROM principals WHERE username = ?`, username)
	p, err := scanPrincipal(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", herrors.ErrPrincipalNotFound, username)
	}
	return p, err
}

// ListPrincipals returns every principal ordered by username.
func (s *Store) ListPrincipals(ctx context.Context) ([]*Principal, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+principalColumns+` FROM principals ORDER BY username`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var principals []*Principal
	for rows.Next() {
		p, err := scanPrincipal(rows)
		if err != nil {
			return nil, err
		}
		principals = append(principals, p)
	}
	return principals, rows.Err()
}

// KeyRecord returns the key record of a principal. The record may be
// incomplete; callers validate it before use.
func (s *Store) KeyRecord(ctx context.Context, principalID string) (*secrets.PrincipalKeyRecord, error) {
	rec := secrets.PrincipalKeyRecord{PrincipalID: principalID}
	err := s.db.QueryRowContext(ctx,
		`SELECT public_key, wrapped_private_key, fingerprint FROM principals WHERE id = ?`, principalID,
	).Scan(&rec.PublicKey, &rec.WrappedPrivateKey, &rec.Fingerprint)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", herrors.ErrPrincipalNotFound, principalID)
	}
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

// ReplaceKeys swaps in a complete key record, provided the stored fingerprint
// still equals expectedFingerprint (empty for a principal without keys).
// Returns ErrConcurrentRotation if another writer replaced the keys first.
func (s *Store) ReplaceKeys(ctx context.Context, expectedFingerprint string, rec *secrets.PrincipalKeyRecord) error {
	if err := rec.Validate(); err != nil {
		return err
	}

	result, err := s.db.ExecContext(ctx, `
	UPDATE principals
	SET public_key = ?, wrapped_private_key = ?, fingerprint = ?, updated_at = ?
	WHERE id = ? AND fingerprint = ?`,
		rec.PublicKey, rec.WrappedPrivateKey, rec.Fingerprint, toUnix(time.Now()),
		rec.PrincipalID, expectedFingerprint,
	)
	if err != nil {
		return fmt.Errorf("update keys: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 1 {
		return nil
	}

	if _, err := s.KeyRecord(ctx, rec.PrincipalID); err != nil {
		return err
	}
	return fmt.Errorf("%w: %s", herrors.ErrConcurrentRotation, rec.PrincipalID)
}

// PrincipalsMissingKeys returns the ids of principals without a complete key
// record, ordered by creation time.
func (s *Store) PrincipalsMissingKeys(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `
	SELECT id FROM principals
	WHERE public_key = '' OR wrapped_private_key = '' OR fingerprint = ''
	ORDER BY created_at, id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
