// SPDX-License-Identifier: MPL-2.0

// Package record groups source rows into logical entities and drives the
// rule interpreter over each group, yielding one intermediate record per
// grouping key. Group order follows the first appearance of each key in the
// source; row order inside a group is preserved for accumulation rules.
package record
