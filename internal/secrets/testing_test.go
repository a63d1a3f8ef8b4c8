package secrets

import (
	"sync"
	"testing"
)

const testMasterSecret = "test-master-secret-32-chars-long!"

var (
	fixtureOnce sync.Once
	fixtureKM   *KeyManager
	fixturePair [2]*KeyPair
	fixtureErr  error
)

// testKeyManager returns a shared KeyManager and two pre-generated key pairs.
// RSA generation is slow, so tests that only need some key reuse these.
func testKeyManager(t *testing.T) (*KeyManager, *KeyPair, *KeyPair) {
	t.Helper()

	fixtureOnce.Do(func() {
		master, err := NewMasterCipher(testMasterSecret)
		if err != nil {
			fixtureErr = err
			return
		}
		fixtureKM, err = NewKeyManager(master, DefaultKeyBits)
		if err != nil {
			fixtureErr = err
			return
		}
		for i := range fixturePair {
			fixturePair[i], err = fixtureKM.GenerateKeyPair(0)
			if err != nil {
				fixtureErr = err
				return
			}
		}
	})

	if fixtureErr != nil {
		t.Fatalf("Failed to set up key fixtures: %v", fixtureErr)
	}
	return fixtureKM, fixturePair[0], fixturePair[1]
}
