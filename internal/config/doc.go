// Package config handles configuration loading and merging for ptrmux.
//
// # Configuration Precedence
//
// Configuration values are resolved in the following order (highest to lowest priority):
//
//  1. CLI flags (--policy, --max-lookahead, --max-multiple, --format, --theme, etc.)
//  2. Environment variables (PTRMUX_POLICY, PTRMUX_MAX_LOOKAHEAD, NO_COLOR, ...)
//  3. YAML config file (.ptrmux.yaml in the working directory or ~/.config/ptrmux/.ptrmux.yaml)
//  4. Hardcoded defaults
//
// When a higher-priority source sets a value, it overrides any lower-priority values.
//
// # Detection Bounds
//
// max_lookahead caps how many events base pattern detection inspects (default 32)
// and max_multiple caps the repetition multiple tried (default 8). Testers with
// more sites or longer test programs need both raised: a block of N tests at
// multiple m is only recognised when N*m fits in the lookahead.
//
// # Environment Variables
//
//   - PTRMUX_POLICY: sequential or round-robin
//   - PTRMUX_MAX_LOOKAHEAD, PTRMUX_MAX_MULTIPLE: detection bounds
//   - PTRMUX_FORMAT, PTRMUX_THEME: output format and theme
//   - PTRMUX_STORE: SQLite path to persist results
//   - PTRMUX_WORKERS: files processed concurrently
//   - PTRMUX_NO_COLOR or NO_COLOR: set to disable colors
//   - PTRMUX_DEBUG: set to any non-empty value to enable debug logging
package config
