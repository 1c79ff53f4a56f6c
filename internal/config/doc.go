// Package config loads, normalizes, and validates ko-analysis configuration.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours environment fallbacks such as
// AWS_REGION, S3_BUCKET_NAME, and OPENAI_API_KEY. The Config type centralizes
// every knob the daemon and CLI need, including the acoustic scoring
// parameters (energy threshold, minimum pause duration, frame geometry, and
// segment duration), which are deliberately configuration rather than hidden
// constants.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, canonical log formats, and clear validation errors.
package config
