package messaging

import (
	"context"
	"sort"
	"sync"
	"testing"
	"time"

	herrors "github.com/PolarWolf314/hush/internal/errors"
	"github.com/PolarWolf314/hush/internal/secrets"
)

var (
	fixtureOnce    sync.Once
	fixtureKM      *secrets.KeyManager
	fixtureRecords []*secrets.PrincipalKeyRecord
	fixtureErr     error
)

// testPrincipals returns a shared KeyManager and three principals with
// complete key records: alice, bob and carol.
func testPrincipals(t *testing.T) (*secrets.KeyManager, *secrets.PrincipalKeyRecord, *secrets.PrincipalKeyRecord, *secrets.PrincipalKeyRecord) {
	t.Helper()

	fixtureOnce.Do(func() {
		master, err := secrets.NewMasterCipher("messaging-test-master-secret")
		if err != nil {
			fixtureErr = err
			return
		}
		fixtureKM, err = secrets.NewKeyManager(master, secrets.DefaultKeyBits)
		if err != nil {
			fixtureErr = err
			return
		}
		for _, id := range []string{"alice", "bob", "carol"} {
			rec, err := fixtureKM.Rotate(id)
			if err != nil {
				fixtureErr = err
				return
			}
			fixtureRecords = append(fixtureRecords, rec)
		}
	})
	if fixtureErr != nil {
		t.Fatalf("failed to build fixture: %v", fixtureErr)
	}

	// Copies, so tests may mutate records freely.
	a, b, c := *fixtureRecords[0], *fixtureRecords[1], *fixtureRecords[2]
	return fixtureKM, &a, &b, &c
}

// memoryStore is an in-memory MessageStore.
type memoryStore struct {
	mu       sync.Mutex
	messages map[string]*EncryptedMessage
	order    []string
	inserts  int
}

func newMemoryStore() *memoryStore {
	return &memoryStore{messages: make(map[string]*EncryptedMessage)}
}

func (s *memoryStore) InsertMessage(_ context.Context, msg *EncryptedMessage) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored := *msg
	s.messages[msg.ID] = &stored
	s.order = append(s.order, msg.ID)
	s.inserts++
	return nil
}

func (s *memoryStore) GetMessage(_ context.Context, id string) (*EncryptedMessage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	msg, ok := s.messages[id]
	if !ok {
		return nil, herrors.ErrMessageNotFound
	}
	out := *msg
	return &out, nil
}

func (s *memoryStore) MarkRead(_ context.Context, id string, readAt time.Time) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	msg, ok := s.messages[id]
	if !ok {
		return false, herrors.ErrMessageNotFound
	}
	if msg.IsRead {
		return false, nil
	}
	msg.IsRead = true
	msg.ReadAt = readAt
	return true, nil
}

func (s *memoryStore) Conversation(_ context.Context, a, b string) ([]*EncryptedMessage, error) {
	return s.filter(func(m *EncryptedMessage) bool {
		return (m.SenderID == a && m.RecipientID == b) || (m.SenderID == b && m.RecipientID == a)
	}), nil
}

func (s *memoryStore) MessagesFor(_ context.Context, principalID string) ([]*EncryptedMessage, error) {
	return s.filter(func(m *EncryptedMessage) bool { return m.Involves(principalID) }), nil
}

func (s *memoryStore) filter(keep func(*EncryptedMessage) bool) []*EncryptedMessage {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*EncryptedMessage
	for _, id := range s.order {
		if msg := s.messages[id]; keep(msg) {
			copied := *msg
			out = append(out, &copied)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].SentAt.Before(out[j].SentAt) })
	return out
}

// newTestProtocol returns a Protocol whose clock advances one second per call.
func newTestProtocol(km *secrets.KeyManager, store MessageStore, scheme Scheme) *Protocol {
	p := NewProtocol(km, store, scheme)
	var mu sync.Mutex
	clock := time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)
	p.now = func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		clock = clock.Add(time.Second)
		return clock
	}
	return p
}
