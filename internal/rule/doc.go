// SPDX-License-Identifier: MPL-2.0

// Package rule implements the declarative transformation rules that turn
// raw CSV rows into intermediate record fields.
//
// A rule set is an ordered list: rules execute strictly in declared order in
// a single forward pass over a named symbol table, and a rule may read any
// field produced by an earlier rule in the same set. There is no dependency
// resolution; rule authors must declare fields in dependency order. That
// forward-only constraint is part of the rule-authoring contract.
//
// Rule files are JSON arrays parsed eagerly into typed Rule values. A
// malformed file or a rule writing to a field outside the document kind's
// declared field set fails at load time, not at application time.
package rule
