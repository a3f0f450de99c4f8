// Package config loads, normalizes, and validates dataprep configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and resolves the deployment context into a
// dataset.Layout so every stage receives the same absolute paths. Split
// ratios, class naming, and preprocessing constants all live here.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths and clear validation errors.
package config
