// Package config loads, normalizes, and validates automan configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours environment fallbacks such as
// HF_TOKEN and AUTOMAN_NTFY_TOPIC. The Config type centralizes every knob the
// segmenter, renderer, and CLI need, including the boundary scoring weights and
// the renderer's timing constants.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, canonical log formats, and clear validation errors.
package config
