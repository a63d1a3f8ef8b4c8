// Package configs loads and validates hush configuration.
//
// Configuration is a single TOML file at $XDG_CONFIG_HOME/hush/config.toml
// with three sections:
//
//	[crypto]   master_key, field_key, key_bits, scheme
//	[storage]  database
//	[runtime]  dev_mode, workers
//
// Every value can be overridden from the environment (HUSH_MASTER_KEY,
// HUSH_FIELD_KEY, HUSH_KEY_BITS, HUSH_SCHEME, HUSH_DATABASE, HUSH_DEV_MODE,
// HUSH_WORKERS). The file is optional. When dev_mode is on and a secret is
// still empty after the file and environment are applied, a fixed
// development secret is used instead; outside dev mode an empty secret is an
// error.
//
// # Settings
//
// HushSettings holds the resolved directories for the config file, the
// default database and the audit log. It is initialized at startup from the
// XDG base directories and can be replaced in tests.
package configs
