// SPDX-License-Identifier: MPL-2.0

package record

import (
	"fmt"
	"strconv"
	"strings"

	"kenshin-cli/internal/csvsource"
	"kenshin-cli/internal/issue"
	"kenshin-cli/internal/rule"
)

// Record is the structured entity handed to a document generator: the final
// field snapshot of one group's rule execution plus its accumulated
// sequences. At most one record exists per grouping key.
type Record struct {
	// Key is the composite grouping value, parts joined with "|".
	Key       string
	Fields    map[string]string
	Sequences map[string]rule.Sequence
}

// Field reads a produced field.
func (r *Record) Field(name string) (string, bool) {
	v, ok := r.Fields[name]
	return v, ok
}

// Group is one grouping key with its source rows in arrival order. The
// first row is the group's representative for scalar rules.
type Group struct {
	Key  string
	Rows []csvsource.Row
}

// Builder turns grouped rows into records by applying one rule set per
// group. It is immutable after construction and safe to share.
type Builder struct {
	set      *rule.Set
	catalog  *rule.Catalog
	groupBy  []string
	declared rule.FieldSet
	defaults map[string]string
}

// NewBuilder configures a builder for one document kind. defaults are
// literal fallback values seeded into every record before rule execution;
// rules overwrite them. declared constrains output field names, nil accepts
// everything.
func NewBuilder(set *rule.Set, catalog *rule.Catalog, groupBy []string, declared rule.FieldSet, defaults map[string]string) *Builder {
	return &Builder{set: set, catalog: catalog, groupBy: groupBy, declared: declared, defaults: defaults}
}

// Groups partitions rows by the grouping fields, preserving the first-seen
// order of each key. A row missing a grouping field fails the whole batch.
// Without grouping fields every row is its own group, keyed by ordinal.
func (b *Builder) Groups(rows []csvsource.Row) ([]Group, error) {
	if len(b.groupBy) == 0 {
		groups := make([]Group, len(rows))
		for i, row := range rows {
			groups[i] = Group{Key: strconv.Itoa(i + 1), Rows: []csvsource.Row{row}}
		}
		return groups, nil
	}

	byKey := make(map[string]int)
	var groups []Group

	for _, row := range rows {
		key, err := b.groupKey(row)
		if err != nil {
			return nil, err
		}
		idx, seen := byKey[key]
		if !seen {
			idx = len(groups)
			byKey[key] = idx
			groups = append(groups, Group{Key: key})
		}
		groups[idx].Rows = append(groups[idx].Rows, row)
	}
	return groups, nil
}

// BuildRecord applies the rule set to one group: the defaults are seeded
// first, then the rules run a single forward pass over a context backed by
// the group's first row.
func (b *Builder) BuildRecord(g Group) (*Record, error) {
	groupRows := make([]map[string]string, len(g.Rows))
	for i, r := range g.Rows {
		groupRows[i] = r
	}
	ctx := rule.NewContext(groupRows[0], groupRows, b.declared)

	for name, value := range b.defaults {
		if err := ctx.Set(name, value); err != nil {
			return nil, fmt.Errorf("record %q: defaults: %w", g.Key, err)
		}
	}
	if err := rule.Apply(b.set, ctx, b.catalog); err != nil {
		return nil, fmt.Errorf("record %q: %w", g.Key, err)
	}
	return &Record{Key: g.Key, Fields: ctx.SnapshotFields(), Sequences: ctx.SnapshotSequences()}, nil
}

// Build is Groups plus BuildRecord over every group, aborting on the first
// failing record. Callers that skip failing records use the two-step form.
func (b *Builder) Build(rows []csvsource.Row) ([]*Record, error) {
	groups, err := b.Groups(rows)
	if err != nil {
		return nil, err
	}
	records := make([]*Record, 0, len(groups))
	for _, g := range groups {
		rec, err := b.BuildRecord(g)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, nil
}

func (b *Builder) groupKey(row csvsource.Row) (string, error) {
	parts := make([]string, 0, len(b.groupBy))
	for _, f := range b.groupBy {
		v, ok := row[f]
		if !ok || v == "" {
			return "", &issue.MissingFieldError{Field: f}
		}
		parts = append(parts, v)
	}
	return strings.Join(parts, "|"), nil
}
