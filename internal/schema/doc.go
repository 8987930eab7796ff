// SPDX-License-Identifier: MPL-2.0

// Package schema resolves logical schema file names across an ordered list
// of search roots and caches compiled schemas for the lifetime of a run.
//
// Precedence is per file, not per tree: every file reference, including
// includes reached from a lower-precedence top-level schema, is satisfied
// by the highest-precedence root that carries a file of that name. The
// search path is exposed as an fs.FS so the validation engine observes the
// same precedence for include resolution as callers do for top-level
// lookups.
package schema
