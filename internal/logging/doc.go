// Package logger provides leveled console logging for hush commands and
// workflows.
//
// # Verbosity Levels
//
// Logging behavior is controlled by two command-line flags:
//
//   - --verbose: Shows info messages
//   - --debug: Shows info and debug messages
//
// Warnings and errors are always written to stderr.
//
// # Usage
//
//	log := Logger{Verbose: verbose, Debug: debug}
//	log.Infof("Generated key pair for %s", principalID)
//
// Never pass plaintext, secrets, or private key material to a Logger.
// Fingerprints and identifiers are fine.
package logger
