// Package utils provides small helpers shared by the workflows and commands.
//
// # String Utilities
//
// Input validation and display helpers:
//   - IsValidEmail, IsValidUsername, IsValidMobileNumber
//   - Truncate: shortens text for one-line listings
//   - ShortFingerprint: abbreviates a key fingerprint
//
// # I/O Utilities
//
// Functions for reading from stdin:
//   - ReadStdin: reads all piped data, used for message bodies
//
// # Terminal Utilities
//
// Functions for terminal detection and interaction:
//   - ReadSecret: prompts without echo, used by config init
//   - ReadLine: prompts for a visible value
//   - IsTerminal: checks if stdin is a terminal
package utils
