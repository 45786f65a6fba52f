// Package config loads, normalizes, and validates Cadenza's TOML
// configuration.
//
// Load resolves the config path (explicit flag, ~/.config/cadenza/config.toml,
// or ./cadenza.toml), decodes it over the defaults, expands all path fields,
// and validates the result. Sections map one-to-one to subsystems: paths,
// mother (remote catalog), audio (render clock), bus, workers, logging.
//
// Keep defaults in defaults.go and derived values (database path, lock path)
// as methods on Config so other packages never hardcode file layout.
package config
