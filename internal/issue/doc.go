// SPDX-License-Identifier: MPL-2.0

// Package issue defines the typed error kinds surfaced by the conversion
// pipeline. Every kind carries enough context (rule kind, field name, table
// name, or file name) to diagnose a failure without re-running, and renders
// a single-line user-facing message through Error().
package issue
