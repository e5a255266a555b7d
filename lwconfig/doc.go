// Package lwconfig loads server configuration from YAML, applying sensible
// defaults and validating the result before a binary starts listening.
// Command-line flag overrides are applied by the binaries themselves.
package lwconfig
