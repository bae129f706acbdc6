// Package config loads, normalizes, and validates marquee configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours the MARQUEE_INPUT environment
// override. The Config type centralizes every knob the pipeline and CLI need:
// where the CSV lives, which encodings to fall back to, how rows are cleaned,
// how the regressor is trained, and where history, logs and charts go.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths and clear validation errors.
package config
