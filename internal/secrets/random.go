package secrets

import (
	"crypto/rand"
	"io"
)

// randReader is the random source for key generation, nonces and content keys.
var randReader io.Reader = rand.Reader

// SetRandReaderForTesting replaces the random source and returns a function
// that restores the previous one. Tests using it must not run in parallel.
func SetRandReaderForTesting(r io.Reader) func() {
	original := randReader
	randReader = r
	return func() { randReader = original }
}
