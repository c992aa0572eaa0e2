// Package config loads submatch's TOML configuration.
//
// Load resolves the config path (explicit path first, otherwise
// ~/.config/submatch/config.toml), parses it with go-toml, and fills any
// missing or blank field with a default. A missing file is not an error.
// The SUBMATCH_SERVER_URL environment variable overrides server_url after the
// file has been applied.
//
// Defaults:
//
//   - server_url: https://localhost
//   - poll_interval_ms: 5000 (clamped to at least 250)
//   - request_timeout_ms: 5000
//   - log_level: info
//   - log_file: ~/.local/state/submatch/submatch.log
package config
