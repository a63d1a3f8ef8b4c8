package configs

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	herrors "github.com/PolarWolf314/hush/internal/errors"
)

// Message encryption schemes.
const (
	SchemeDirect = "direct"
	SchemeHybrid = "hybrid"
)

const (
	// MinKeyBits mirrors the smallest RSA modulus the key manager accepts.
	MinKeyBits = 2048

	// DefaultWorkers bounds concurrent key generation in bulk operations.
	DefaultWorkers = 4

	// Development secrets. Only applied when dev_mode is true.
	DevMasterKey = "hush-development-master-key-not-for-production"
	DevFieldKey  = "hush-development-field-key-not-for-production"

	redacted = "********"
)

// Environment variables that override the config file.
const (
	EnvMasterKey = "HUSH_MASTER_KEY"
	EnvFieldKey  = "HUSH_FIELD_KEY"
	EnvKeyBits   = "HUSH_KEY_BITS"
	EnvScheme    = "HUSH_SCHEME"
	EnvDatabase  = "HUSH_DATABASE"
	EnvDevMode   = "HUSH_DEV_MODE"
	EnvWorkers   = "HUSH_WORKERS"
)

type Config struct {
	Crypto  CryptoConfig  `toml:"crypto" json:"crypto"`
	Storage StorageConfig `toml:"storage" json:"storage"`
	Runtime RuntimeConfig `toml:"runtime" json:"runtime"`

	// Unknown lists keys in the config file that were not recognised.
	Unknown []string `toml:"-" json:"unknown,omitempty"`
}

type CryptoConfig struct {
	MasterKey string `toml:"master_key" json:"master_key"`
	FieldKey  string `toml:"field_key" json:"field_key"`
	KeyBits   int    `toml:"key_bits" json:"key_bits"`
	Scheme    string `toml:"scheme" json:"scheme"`
}

type StorageConfig struct {
	Database string `toml:"database" json:"database"`
}

type RuntimeConfig struct {
	DevMode bool `toml:"dev_mode" json:"dev_mode"`
	Workers int  `toml:"workers" json:"workers"`
}

// Default returns a Config with every non-secret field populated.
func Default() *Config {
	return &Config{
		Crypto: CryptoConfig{
			KeyBits: MinKeyBits,
			Scheme:  SchemeDirect,
		},
		Storage: StorageConfig{
			Database: HushSettings.DatabasePath,
		},
		Runtime: RuntimeConfig{
			Workers: DefaultWorkers,
		},
	}
}

// Load reads the config file at path if it exists, applies environment
// overrides and then development defaults. It does not validate; call
// Validate before using the result.
func Load(path string) (*Config, error) {
	config := Default()

	if _, err := os.Stat(path); err == nil {
		unknown, err := LoadTOML(path, config)
		if err != nil {
			return nil, fmt.Errorf("failed to load config %s: %w", path, err)
		}
		config.Unknown = unknown
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to stat config %s: %w", path, err)
	}

	if err := config.applyEnv(); err != nil {
		return nil, err
	}
	config.applyDevDefaults()
	config.Crypto.Scheme = NormalizeScheme(config.Crypto.Scheme)
	config.Storage.Database = expandHome(config.Storage.Database)

	return config, nil
}

// LoadDefault loads the config from HushSettings.ConfigPath.
func LoadDefault() (*Config, error) {
	return Load(HushSettings.ConfigPath)
}

// Save writes the config to path.
func Save(path string, config *Config) error {
	if err := SaveTOML(path, config); err != nil {
		return fmt.Errorf("failed to save config: %w", err)
	}
	return nil
}

func (c *Config) applyEnv() error {
	if v := os.Getenv(EnvMasterKey); v != "" {
		c.Crypto.MasterKey = v
	}
	if v := os.Getenv(EnvFieldKey); v != "" {
		c.Crypto.FieldKey = v
	}
	if v := os.Getenv(EnvScheme); v != "" {
		c.Crypto.Scheme = v
	}
	if v := os.Getenv(EnvDatabase); v != "" {
		c.Storage.Database = v
	}
	if v := os.Getenv(EnvKeyBits); v != "" {
		bits, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%w: %s=%q is not an integer", herrors.ErrInvalidConfig, EnvKeyBits, v)
		}
		c.Crypto.KeyBits = bits
	}
	if v := os.Getenv(EnvWorkers); v != "" {
		workers, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%w: %s=%q is not an integer", herrors.ErrInvalidConfig, EnvWorkers, v)
		}
		c.Runtime.Workers = workers
	}
	if v := os.Getenv(EnvDevMode); v != "" {
		dev, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("%w: %s=%q is not a boolean", herrors.ErrInvalidConfig, EnvDevMode, v)
		}
		c.Runtime.DevMode = dev
	}
	return nil
}

func (c *Config) applyDevDefaults() {
	if !c.Runtime.DevMode {
		return
	}
	if c.Crypto.MasterKey == "" {
		c.Crypto.MasterKey = DevMasterKey
	}
	if c.Crypto.FieldKey == "" {
		c.Crypto.FieldKey = DevFieldKey
	}
}

// NormalizeScheme lowercases and trims a scheme name.
func NormalizeScheme(scheme string) string {
	return strings.ToLower(strings.TrimSpace(scheme))
}

// Validate checks that the config can be used to build the crypto services.
func (c *Config) Validate() error {
	if c.Crypto.MasterKey == "" {
		return fmt.Errorf("%w: master_key (set %s or enable dev_mode)", herrors.ErrMissingSecret, EnvMasterKey)
	}
	if c.Crypto.FieldKey == "" {
		return fmt.Errorf("%w: field_key (set %s or enable dev_mode)", herrors.ErrMissingSecret, EnvFieldKey)
	}
	if c.Crypto.MasterKey == c.Crypto.FieldKey {
		return herrors.ErrSecretsNotDistinct
	}
	if c.Crypto.KeyBits < MinKeyBits {
		return fmt.Errorf("%w: key_bits %d is below %d", herrors.ErrInvalidConfig, c.Crypto.KeyBits, MinKeyBits)
	}
	switch c.Crypto.Scheme {
	case SchemeDirect, SchemeHybrid:
	default:
		return fmt.Errorf("%w: unknown scheme %q (want %q or %q)", herrors.ErrInvalidConfig, c.Crypto.Scheme, SchemeDirect, SchemeHybrid)
	}
	if c.Runtime.Workers < 1 {
		return fmt.Errorf("%w: workers must be at least 1, got %d", herrors.ErrInvalidConfig, c.Runtime.Workers)
	}
	if c.Storage.Database == "" {
		return fmt.Errorf("%w: storage.database is empty", herrors.ErrInvalidConfig)
	}
	return nil
}

// Redacted returns a copy safe to print. Secrets are masked, and an empty
// secret is left empty so it is visible as unset.
func (c *Config) Redacted() *Config {
	out := *c
	if out.Crypto.MasterKey != "" {
		out.Crypto.MasterKey = redacted
	}
	if out.Crypto.FieldKey != "" {
		out.Crypto.FieldKey = redacted
	}
	out.Unknown = append([]string(nil), c.Unknown...)
	return &out
}

// UsingDevSecrets reports whether either secret is a development default.
func (c *Config) UsingDevSecrets() bool {
	return c.Crypto.MasterKey == DevMasterKey || c.Crypto.FieldKey == DevFieldKey
}
