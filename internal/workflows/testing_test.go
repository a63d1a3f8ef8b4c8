package workflows

import (
	"context"
	"errors"
	"io"
	"path/filepath"
	"testing"
	"time"

	"github.com/PolarWolf314/hush/internal/configs"
	logger "github.com/PolarWolf314/hush/internal/logging"
)

// testConfig returns a valid config rooted in dir.
func testConfig(dir string) *configs.Config {
	config := configs.Default()
	config.Crypto.MasterKey = "workflow-test-master"
	config.Crypto.FieldKey = "workflow-test-field"
	config.Storage.Database = filepath.Join(dir, "hush.db")
	config.Runtime.Workers = 2
	return config
}

// withAuditDir points the audit log at dir for the duration of the test.
func withAuditDir(t *testing.T, dir string) {
	t.Helper()
	original := configs.HushSettings
	configs.HushSettings = configs.NewSettings(filepath.Join(dir, "config"), filepath.Join(dir, "data"))
	t.Cleanup(func() { configs.HushSettings = original })
}

// newTestEnv opens an Env over a fresh database with a fixed clock.
func newTestEnv(t *testing.T, mutate ...func(*configs.Config)) *Env {
	t.Helper()
	dir := t.TempDir()
	withAuditDir(t, dir)

	config := testConfig(dir)
	for _, m := range mutate {
		m(config)
	}

	env, err := Open(context.Background(), config, logger.Logger{Out: io.Discard, Err: io.Discard})
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	env.now = func() time.Time { return time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC) }
	t.Cleanup(func() { env.Close() })
	return env
}

func mustRegister(t *testing.T, env *Env, opts RegisterOptions) *RegisterResult {
	t.Helper()
	result, err := env.Register(context.Background(), opts)
	if err != nil {
		t.Fatalf("Register(%s) failed: %v", opts.Username, err)
	}
	return result
}

// brokenEntropy is a random source that always errors.
type brokenEntropy struct{}

func (brokenEntropy) Read([]byte) (int, error) {
	return 0, errors.New("entropy source unavailable")
}
