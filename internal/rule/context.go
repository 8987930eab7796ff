// SPDX-License-Identifier: MPL-2.0

package rule

import "fmt"

// Subrecord is one accumulated sub-entity (one source row) inside a
// sequence field.
type Subrecord map[string]string

// Sequence is the ordered value of a multi_row_accumulation output field.
// Order matches the source row order inside the group.
type Sequence []Subrecord

// Values projects a single field out of every sub-record, in order.
func (s Sequence) Values(field string) []string {
	out := make([]string, 0, len(s))
	for _, sub := range s {
		out = append(out, sub[field])
	}
	return out
}

// Context is the mutable symbol table for one record's construction. It is
// seeded from the group's representative row, filled by rule execution, and
// discarded after the intermediate record is snapshotted.
type Context struct {
	row       map[string]string
	groupRows []map[string]string

	fields    map[string]string
	sequences map[string]Sequence

	declared FieldSet
}

// NewContext builds a context over the representative row and the full row
// group. declared constrains output field names; nil accepts everything.
func NewContext(row map[string]string, groupRows []map[string]string, declared FieldSet) *Context {
	return &Context{
		row:       row,
		groupRows: groupRows,
		fields:    make(map[string]string),
		sequences: make(map[string]Sequence),
		declared:  declared,
	}
}

// Input reads a field from the source row.
func (c *Context) Input(name string) (string, bool) {
	v, ok := c.row[name]
	return v, ok
}

// Get reads a produced field, falling back to the source row. Later rules
// see the output of earlier rules under the same name.
func (c *Context) Get(name string) (string, bool) {
	if v, ok := c.fields[name]; ok {
		return v, true
	}
	return c.Input(name)
}

// Field reads a produced field only.
func (c *Context) Field(name string) (string, bool) {
	v, ok := c.fields[name]
	return v, ok
}

// Set writes a produced field. Writing a name outside the declared field
// set is a programming or rule-authoring error and fails immediately.
func (c *Context) Set(name, value string) error {
	if !c.declared.Has(name) {
		return fmt.Errorf("field %q is not declared for this document kind", name)
	}
	c.fields[name] = value
	return nil
}

// Unset removes a produced field, used when a conversion yields absent.
func (c *Context) Unset(name string) {
	delete(c.fields, name)
}

// AppendSequence appends a sub-record to a sequence field in arrival order.
func (c *Context) AppendSequence(name string, sub Subrecord) error {
	if !c.declared.Has(name) {
		return fmt.Errorf("sequence field %q is not declared for this document kind", name)
	}
	c.sequences[name] = append(c.sequences[name], sub)
	return nil
}

// GroupRows returns all rows of the current group in source order.
func (c *Context) GroupRows() []map[string]string {
	return c.groupRows
}

// SnapshotFields copies the produced scalar fields.
func (c *Context) SnapshotFields() map[string]string {
	out := make(map[string]string, len(c.fields))
	for k, v := range c.fields {
		out[k] = v
	}
	return out
}

// SnapshotSequences copies the produced sequence fields.
func (c *Context) SnapshotSequences() map[string]Sequence {
	out := make(map[string]Sequence, len(c.sequences))
	for k, v := range c.sequences {
		out[k] = append(Sequence(nil), v...)
	}
	return out
}
