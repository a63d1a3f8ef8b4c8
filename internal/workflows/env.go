package workflows

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/PolarWolf314/hush/internal/configs"
	herrors "github.com/PolarWolf314/hush/internal/errors"
	logger "github.com/PolarWolf314/hush/internal/logging"
	"github.com/PolarWolf314/hush/internal/messaging"
	"github.com/PolarWolf314/hush/internal/secrets"
	"github.com/PolarWolf314/hush/internal/store"
)

// Env holds the services every workflow needs. It is built once per process
// from a validated configuration and passed explicitly.
type Env struct {
	Config   *configs.Config
	Store    *store.Store
	Keys     *secrets.KeyManager
	Fields   *secrets.FieldCipher
	Messages *messaging.Protocol
	Logger   logger.Logger

	locks *principalLocks
	now   func() time.Time
}

// Open validates config, derives the master and field keys and opens the
// database.
func Open(ctx context.Context, config *configs.Config, log logger.Logger) (*Env, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	master, err := secrets.NewMasterCipher(config.Crypto.MasterKey)
	if err != nil {
		return nil, err
	}
	keys, err := secrets.NewKeyManager(master, config.Crypto.KeyBits)
	if err != nil {
		return nil, err
	}
	fields, err := secrets.NewFieldCipher(config.Crypto.FieldKey)
	if err != nil {
		return nil, err
	}
	scheme, err := messaging.ParseScheme(config.Crypto.Scheme)
	if err != nil {
		return nil, err
	}

	log.Debugf("Opening database at %s", config.Storage.Database)
	db, err := store.Open(ctx, config.Storage.Database)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	if config.UsingDevSecrets() {
		log.Warnf("Using development secrets; do not use this database in production")
	}

	return &Env{
		Config:   config,
		Store:    db,
		Keys:     keys,
		Fields:   fields,
		Messages: messaging.NewProtocol(keys, db, scheme),
		Logger:   log,
		locks:    newPrincipalLocks(),
		now:      time.Now,
	}, nil
}

// Close releases the database.
func (e *Env) Close() error {
	return e.Store.Close()
}

// resolvePrincipal looks a principal up by id, then by username.
func (e *Env) resolvePrincipal(ctx context.Context, ref string) (*store.Principal, error) {
	if ref == "" {
		return nil, fmt.Errorf("%w: principal is required", herrors.ErrInvalidInput)
	}

	p, err := e.Store.GetPrincipal(ctx, ref)
	if err == nil {
		return p, nil
	}
	if !errors.Is(err, herrors.ErrPrincipalNotFound) {
		return nil, err
	}
	return e.Store.GetPrincipalByUsername(ctx, ref)
}

// principalLocks serializes key changes per principal within the process.
// The store's compare-and-swap covers other processes.
type principalLocks struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func newPrincipalLocks() *principalLocks {
	return &principalLocks{locks: make(map[string]*sync.Mutex)}
}

// lock acquires the principal's mutex and returns its unlock function.
func (l *principalLocks) lock(principalID string) func() {
	l.mu.Lock()
	m, ok := l.locks[principalID]
	if !ok {
		m = &sync.Mutex{}
		l.locks[principalID] = m
	}
	l.mu.Unlock()

	m.Lock()
	return m.Unlock
}
