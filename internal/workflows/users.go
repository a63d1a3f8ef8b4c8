package workflows

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/PolarWolf314/hush/internal/audit"
	herrors "github.com/PolarWolf314/hush/internal/errors"
	"github.com/PolarWolf314/hush/internal/secrets"
	"github.com/PolarWolf314/hush/internal/store"
	"github.com/PolarWolf314/hush/internal/utils"
	"github.com/google/uuid"
)

const dateLayout = "2006-01-02"

// RegisterOptions configures the register workflow.
type RegisterOptions struct {
	Username     string
	Email        string
	MobileNumber string
	District     string

	// Birthdate in YYYY-MM-DD format. Optional.
	Birthdate string
}

// RegisterResult contains the outcome of a register operation.
type RegisterResult struct {
	PrincipalID string
	Username    string
	Fingerprint string
}

// Register creates a principal with a fresh key pair and encrypted personal
// fields. The key pair is generated and verified before anything is written,
// so a key generation failure leaves no principal behind.
//
// Returns ErrInvalidInput for a malformed username, email or mobile number.
// Returns ErrPrincipalExists if the username is taken.
// Returns ErrKeyGeneration or ErrIntegrityCheckFailed if keys cannot be issued.
func (e *Env) Register(ctx context.Context, opts RegisterOptions) (*RegisterResult, error) {
	username := strings.TrimSpace(opts.Username)
	if !utils.IsValidUsername(username) {
		return nil, fmt.Errorf("%w: username %q", herrors.ErrInvalidInput, username)
	}
	email := strings.ToLower(strings.TrimSpace(opts.Email))
	if email != "" && !utils.IsValidEmail(email) {
		return nil, fmt.Errorf("%w: email %q", herrors.ErrInvalidInput, email)
	}
	mobile := strings.TrimSpace(opts.MobileNumber)
	if mobile != "" && !utils.IsValidMobileNumber(mobile) {
		return nil, fmt.Errorf("%w: mobile number", herrors.ErrInvalidInput)
	}

	var birthdate time.Time
	if opts.Birthdate != "" {
		var err error
		birthdate, err = time.Parse(dateLayout, opts.Birthdate)
		if err != nil {
			return nil, fmt.Errorf("%w: birthdate must be YYYY-MM-DD", herrors.ErrInvalidDateFormat)
		}
	}

	id := uuid.NewString()
	e.Logger.Infof("Generating %d-bit key pair for %s", e.Keys.Bits(), username)
	rec, err := e.issueKeys(id)
	if err != nil {
		return nil, err
	}

	fields := map[string]string{"email": email, "mobile number": mobile, "district": strings.TrimSpace(opts.District)}
	encrypted := make(map[string]string, len(fields))
	for name, value := range fields {
		if value == "" {
			continue
		}
		ct, err := e.Fields.EncryptField(value)
		if err != nil {
			return nil, fmt.Errorf("encrypting %s: %w", name, err)
		}
		encrypted[name] = ct
	}

	now := e.now().UTC()
	p := &store.Principal{
		ID:           id,
		Username:     username,
		Email:        encrypted["email"],
		MobileNumber: encrypted["mobile number"],
		District:     encrypted["district"],
		Birthdate:    birthdate,
		Keys:         *rec,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := e.Store.CreatePrincipal(ctx, p); err != nil {
		return nil, err
	}

	audit.Log(audit.Entry{
		Actor:       id,
		Operation:   audit.OpRegister,
		Fingerprint: rec.Fingerprint,
	})

	return &RegisterResult{
		PrincipalID: id,
		Username:    username,
		Fingerprint: rec.Fingerprint,
	}, nil
}

// issueKeys generates a key record for principalID and verifies it.
func (e *Env) issueKeys(principalID string) (*secrets.PrincipalKeyRecord, error) {
	rec, err := e.Keys.Rotate(principalID)
	if err != nil {
		return nil, err
	}
	if !e.Keys.VerifyKeyPairIntegrity(rec.PublicKey, rec.WrappedPrivateKey) {
		return nil, fmt.Errorf("%w: principal %s", herrors.ErrIntegrityCheckFailed, principalID)
	}
	return rec, nil
}

// Profile is a principal's public view with personal fields decrypted.
// Fields that cannot be decrypted hold secrets.RedactedField and are listed
// in Redacted.
type Profile struct {
	PrincipalID  string    `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email,omitempty"`
	MobileNumber string    `json:"mobile_number,omitempty"`
	District     string    `json:"district,omitempty"`
	Birthdate    string    `json:"birthdate,omitempty"`
	Age          int       `json:"age,omitempty"`
	HasKeys      bool      `json:"has_keys"`
	Fingerprint  string    `json:"fingerprint,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	Redacted     []string  `json:"redacted,omitempty"`
}

func (e *Env) profile(p *store.Principal) *Profile {
	prof := &Profile{
		PrincipalID: p.ID,
		Username:    p.Username,
		HasKeys:     p.Keys.Validate() == nil,
		Fingerprint: p.Keys.Fingerprint,
		CreatedAt:   p.CreatedAt,
	}

	reveal := func(name, ciphertext string) string {
		value, ok := e.Fields.RevealOrRedact(ciphertext)
		if !ok {
			prof.Redacted = append(prof.Redacted, name)
			e.Logger.Debugf("Field %s of %s could not be decrypted", name, p.ID)
		}
		return value
	}
	prof.Email = reveal("email", p.Email)
	prof.MobileNumber = reveal("mobile_number", p.MobileNumber)
	prof.District = reveal("district", p.District)

	if !p.Birthdate.IsZero() {
		prof.Birthdate = p.Birthdate.Format(dateLayout)
		prof.Age = ageAt(p.Birthdate, e.now())
	}
	return prof
}

// ageAt returns the age in whole years on the given day.
func ageAt(birthdate, now time.Time) int {
	age := now.Year() - birthdate.Year()
	if now.Month() < birthdate.Month() || (now.Month() == birthdate.Month() && now.Day() < birthdate.Day()) {
		age--
	}
	return age
}

// GetProfile returns the decrypted profile of a principal, by id or username.
func (e *Env) GetProfile(ctx context.Context, ref string) (*Profile, error) {
	p, err := e.resolvePrincipal(ctx, ref)
	if err != nil {
		return nil, err
	}
	return e.profile(p), nil
}

// ListProfiles returns every principal's profile ordered by username.
func (e *Env) ListProfiles(ctx context.Context) ([]*Profile, error) {
	principals, err := e.Store.ListPrincipals(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing principals: %w", err)
	}

	profiles := make([]*Profile, 0, len(principals))
	for _, p := range principals {
		profiles = append(profiles, e.profile(p))
	}
	return profiles, nil
}

// SearchOptions configures the search workflow. Zero fields match everything.
type SearchOptions struct {
	// Query matches a substring of the username or email, case-insensitively.
	Query    string
	District string
	MinAge   int
	MaxAge   int

	// Exclude omits the principal with this id or username, usually the
	// one searching.
	Exclude string
}

// Search filters principals on decrypted fields. Encrypted fields cannot be
// indexed, so every principal is decrypted and compared in memory.
func (e *Env) Search(ctx context.Context, opts SearchOptions) ([]*Profile, error) {
	if opts.MinAge < 0 || opts.MaxAge < 0 || (opts.MaxAge > 0 && opts.MinAge > opts.MaxAge) {
		return nil, fmt.Errorf("%w: age range %d-%d", herrors.ErrInvalidInput, opts.MinAge, opts.MaxAge)
	}

	profiles, err := e.ListProfiles(ctx)
	if err != nil {
		return nil, err
	}

	query := strings.ToLower(strings.TrimSpace(opts.Query))
	district := strings.TrimSpace(opts.District)

	var matches []*Profile
	for _, prof := range profiles {
		if opts.Exclude != "" && (prof.PrincipalID == opts.Exclude || prof.Username == opts.Exclude) {
			continue
		}
		if query != "" &&
			!strings.Contains(strings.ToLower(prof.Username), query) &&
			!strings.Contains(strings.ToLower(prof.Email), query) {
			continue
		}
		if district != "" && !strings.EqualFold(prof.District, district) {
			continue
		}
		if (opts.MinAge > 0 || opts.MaxAge > 0) && prof.Birthdate == "" {
			continue
		}
		if opts.MinAge > 0 && prof.Age < opts.MinAge {
			continue
		}
		if opts.MaxAge > 0 && prof.Age > opts.MaxAge {
			continue
		}
		matches = append(matches, prof)
	}
	return matches, nil
}
