// Package config loads, normalizes, and validates mediabox configuration.
//
// It supplies defaults, expands user paths (including tilde shortcuts),
// reads TOML files, and honours the MEDIABOX_LOG_LEVEL environment fallback.
// Always obtain settings through this package so downstream code receives
// expanded paths, canonical log formats, and clear validation errors.
package config
