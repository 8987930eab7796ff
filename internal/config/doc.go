// SPDX-License-Identifier: MPL-2.0

// Package config loads the JSON configuration document into typed,
// validated structures. Loading is eager and fails fast: a malformed file,
// an unknown document kind, or a missing required block surfaces a
// ConfigError before any stage of the pipeline runs.
package config
