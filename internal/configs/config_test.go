package configs

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	herrors "github.com/PolarWolf314/hush/internal/errors"
)

// clearEnv unsets every HUSH_* override for the duration of the test.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{EnvMasterKey, EnvFieldKey, EnvKeyBits, EnvScheme, EnvDatabase, EnvDevMode, EnvWorkers} {
		t.Setenv(key, "")
	}
}

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	clearEnv(t)

	config, err := Load(filepath.Join(t.TempDir(), "config.toml"))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if config.Crypto.KeyBits != MinKeyBits {
		t.Errorf("Expected KeyBits %d, got %d", MinKeyBits, config.Crypto.KeyBits)
	}
	if config.Crypto.Scheme != SchemeDirect {
		t.Errorf("Expected scheme %q, got %q", SchemeDirect, config.Crypto.Scheme)
	}
	if config.Runtime.Workers != DefaultWorkers {
		t.Errorf("Expected %d workers, got %d", DefaultWorkers, config.Runtime.Workers)
	}
	if config.Crypto.MasterKey != "" || config.Crypto.FieldKey != "" {
		t.Error("Secrets must not be defaulted outside dev mode")
	}
	if !errors.Is(config.Validate(), herrors.ErrMissingSecret) {
		t.Error("Expected Validate to report a missing secret")
	}
}

func TestLoad_FileThenEnv(t *testing.T) {
	clearEnv(t)

	path := writeConfig(t, `
[crypto]
master_key = "file-master"
field_key = "file-field"
key_bits = 3072
scheme = "hybrid"

[storage]
database = "/tmp/hush-test.db"

[runtime]
workers = 2
`)

	config, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if config.Crypto.MasterKey != "file-master" || config.Crypto.KeyBits != 3072 || config.Crypto.Scheme != SchemeHybrid {
		t.Errorf("File values not applied: %+v", config.Crypto)
	}
	if config.Storage.Database != "/tmp/hush-test.db" {
		t.Errorf("Expected database from file, got %q", config.Storage.Database)
	}

	t.Setenv(EnvMasterKey, "env-master")
	t.Setenv(EnvKeyBits, "4096")
	t.Setenv(EnvScheme, " DIRECT ")
	t.Setenv(EnvWorkers, "8")

	config, err = Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if config.Crypto.MasterKey != "env-master" {
		t.Errorf("Expected env master key, got %q", config.Crypto.MasterKey)
	}
	if config.Crypto.FieldKey != "file-field" {
		t.Errorf("Expected file field key to survive, got %q", config.Crypto.FieldKey)
	}
	if config.Crypto.KeyBits != 4096 || config.Crypto.Scheme != SchemeDirect || config.Runtime.Workers != 8 {
		t.Errorf("Env overrides not applied: %+v %+v", config.Crypto, config.Runtime)
	}
	if err := config.Validate(); err != nil {
		t.Errorf("Validate failed: %v", err)
	}
}

func TestLoad_InvalidEnv(t *testing.T) {
	tests := []struct {
		key   string
		value string
	}{
		{EnvKeyBits, "lots"},
		{EnvWorkers, "many"},
		{EnvDevMode, "perhaps"},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			clearEnv(t)
			t.Setenv(tt.key, tt.value)

			_, err := Load(filepath.Join(t.TempDir(), "config.toml"))
			if !errors.Is(err, herrors.ErrInvalidConfig) {
				t.Errorf("Expected ErrInvalidConfig, got %v", err)
			}
		})
	}
}

func TestLoad_MalformedFile(t *testing.T) {
	clearEnv(t)
	path := writeConfig(t, "[crypto\nmaster_key = ")

	if _, err := Load(path); err == nil {
		t.Fatal("Expected error for malformed TOML")
	}
}

func TestLoad_NormalizesSchemeCase(t *testing.T) {
	clearEnv(t)
	path := writeConfig(t, "[crypto]\nmaster_key = \"m\"\nfield_key = \"f\"\nscheme = \" Hybrid \"\n")

	config, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if config.Crypto.Scheme != SchemeHybrid {
		t.Errorf("Expected scheme %q, got %q", SchemeHybrid, config.Crypto.Scheme)
	}
	if err := config.Validate(); err != nil {
		t.Errorf("Validate failed: %v", err)
	}
}

func TestLoad_UnknownKeysRecorded(t *testing.T) {
	clearEnv(t)
	path := writeConfig(t, "[crypto]\nmaster_kee = \"typo\"\n")

	config, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if len(config.Unknown) != 1 || config.Unknown[0] != "crypto.master_kee" {
		t.Errorf("Expected [crypto.master_kee], got %v", config.Unknown)
	}
}

func TestLoad_DevDefaults(t *testing.T) {
	clearEnv(t)
	t.Setenv(EnvDevMode, "true")
	t.Setenv(EnvFieldKey, "explicit-field")

	config, err := Load(filepath.Join(t.TempDir(), "config.toml"))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if config.Crypto.MasterKey != DevMasterKey {
		t.Errorf("Expected dev master key, got %q", config.Crypto.MasterKey)
	}
	if config.Crypto.FieldKey != "explicit-field" {
		t.Errorf("Dev default must not override an explicit secret, got %q", config.Crypto.FieldKey)
	}
	if !config.UsingDevSecrets() {
		t.Error("Expected UsingDevSecrets to be true")
	}
	if err := config.Validate(); err != nil {
		t.Errorf("Validate failed: %v", err)
	}
}

func TestLoad_ExpandsHomeInDatabase(t *testing.T) {
	clearEnv(t)
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("no home directory")
	}
	t.Setenv(EnvDatabase, "~/hush/test.db")

	config, err := Load(filepath.Join(t.TempDir(), "config.toml"))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if want := filepath.Join(home, "hush", "test.db"); config.Storage.Database != want {
		t.Errorf("Expected %q, got %q", want, config.Storage.Database)
	}
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		c := Default()
		c.Crypto.MasterKey = "master"
		c.Crypto.FieldKey = "field"
		return c
	}

	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr error
	}{
		{"valid", func(c *Config) {}, nil},
		{"missing master", func(c *Config) { c.Crypto.MasterKey = "" }, herrors.ErrMissingSecret},
		{"missing field", func(c *Config) { c.Crypto.FieldKey = "" }, herrors.ErrMissingSecret},
		{"same secrets", func(c *Config) { c.Crypto.FieldKey = "master" }, herrors.ErrSecretsNotDistinct},
		{"weak keys", func(c *Config) { c.Crypto.KeyBits = 1024 }, herrors.ErrInvalidConfig},
		{"unknown scheme", func(c *Config) { c.Crypto.Scheme = "rot13" }, herrors.ErrInvalidConfig},
		{"no workers", func(c *Config) { c.Runtime.Workers = 0 }, herrors.ErrInvalidConfig},
		{"no database", func(c *Config) { c.Storage.Database = "" }, herrors.ErrInvalidConfig},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := valid()
			tt.mutate(c)
			err := c.Validate()
			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("Unexpected error: %v", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Expected %v, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestRedacted(t *testing.T) {
	c := Default()
	c.Crypto.MasterKey = "super-secret-master"

	r := c.Redacted()
	if strings.Contains(r.Crypto.MasterKey, "super-secret") {
		t.Error("Redacted config leaked the master key")
	}
	if r.Crypto.FieldKey != "" {
		t.Error("Unset secret should remain visibly empty")
	}
	if c.Crypto.MasterKey != "super-secret-master" {
		t.Error("Redacted must not modify the original")
	}
}

func TestSaveThenLoad(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "hush", "config.toml")

	c := Default()
	c.Crypto.MasterKey = "m"
	c.Crypto.FieldKey = "f"
	c.Crypto.Scheme = SchemeHybrid
	if err := Save(path, c); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if loaded.Crypto != c.Crypto {
		t.Errorf("Expected %+v, got %+v", c.Crypto, loaded.Crypto)
	}
}

func TestNewSettings(t *testing.T) {
	s := NewSettings("/cfg/hush", "/data/hush")

	if s.ConfigPath != filepath.Join("/cfg/hush", "config.toml") {
		t.Errorf("Unexpected ConfigPath %q", s.ConfigPath)
	}
	if s.DatabasePath != filepath.Join("/data/hush", "hush.db") {
		t.Errorf("Unexpected DatabasePath %q", s.DatabasePath)
	}
	if s.AuditLogPath != filepath.Join("/data/hush", "audit.jsonl") {
		t.Errorf("Unexpected AuditLogPath %q", s.AuditLogPath)
	}
}
