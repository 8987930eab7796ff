// SPDX-License-Identifier: MPL-2.0

package rule

import (
	"strconv"
	"strings"

	"kenshin-cli/internal/issue"
)

// Apply executes the rule set against ctx in declared order. Execution is a
// single forward pass: the first failing rule aborts the record and its
// error carries the rule kind and the offending field, table or value.
func Apply(set *Set, ctx *Context, catalog *Catalog) error {
	for i := range set.Rules {
		if err := applyOne(&set.Rules[i], ctx, catalog); err != nil {
			return err
		}
	}
	return nil
}

func applyOne(r *Rule, ctx *Context, catalog *Catalog) error {
	switch r.Kind {
	case KindDirectMapping:
		v, ok := ctx.Get(r.Input)
		if !ok {
			if r.Default == nil {
				return &issue.MissingFieldError{Field: r.Input, RuleKind: string(r.Kind)}
			}
			v = *r.Default
		}
		return ctx.Set(r.Output, v)

	case KindDefaultValue:
		if r.Input != "" {
			// Conditional default: only fills in when the source field is
			// empty or absent.
			if v, ok := ctx.Get(r.Input); ok && strings.TrimSpace(v) != "" {
				return nil
			}
		}
		return ctx.Set(r.Output, r.Value)

	case KindLookupValue:
		key, _ := ctx.Get(r.Input)
		if v, ok := catalog.Lookup(r.Lookup.Table, key); ok {
			return ctx.Set(r.Output, v)
		}
		if r.Lookup.DefaultOnMiss != nil {
			return ctx.Set(r.Output, *r.Lookup.DefaultOnMiss)
		}
		return &issue.MappingError{RuleKind: string(r.Kind), Table: r.Lookup.Table, Key: key}

	case KindDataTypeConversion:
		raw, _ := ctx.Get(r.Input)
		v, ok, err := convert(r.Conversion, r.Input, raw)
		if err != nil {
			return err
		}
		if !ok {
			ctx.Unset(r.Output)
			return nil
		}
		return ctx.Set(r.Output, v)

	case KindConditionalMapping:
		branch := r.Conditional.Then
		if !evalCondition(&r.Conditional.Condition, ctx) {
			if len(r.Conditional.Else) == 0 {
				return &issue.MappingError{
					RuleKind: string(r.Kind),
					Field:    r.Conditional.Condition.Field,
					Reason:   "condition did not match and no fallback branch is declared",
				}
			}
			branch = r.Conditional.Else
		}
		for i := range branch {
			if err := applyOne(&branch[i], ctx, catalog); err != nil {
				return err
			}
		}
		return nil

	case KindMultiRowAccumulation:
		for _, row := range ctx.GroupRows() {
			sub := NewContext(row, nil, nil)
			for i := range r.Accumulate.Rules {
				if err := applyOne(&r.Accumulate.Rules[i], sub, catalog); err != nil {
					return err
				}
			}
			if err := ctx.AppendSequence(r.Output, Subrecord(sub.SnapshotFields())); err != nil {
				return err
			}
		}
		return nil

	case KindConcat:
		parts := make([]string, len(r.Inputs))
		for i, in := range r.Inputs {
			parts[i], _ = ctx.Get(in)
		}
		return ctx.Set(r.Output, strings.Join(parts, r.Delimiter))

	case KindSplit:
		raw, _ := ctx.Get(r.Input)
		parts := strings.Split(raw, r.Split.Delimiter)
		for i, out := range r.Split.Outputs {
			if i >= len(parts) {
				break
			}
			if err := ctx.Set(out, parts[i]); err != nil {
				return err
			}
		}
		return nil

	case KindMapMissingValues:
		v, ok := ctx.Get(r.Input)
		if !ok || strings.TrimSpace(v) == "" || containsValue(r.Missing.Values, v) {
			return ctx.Set(r.Output, r.Missing.Mapped)
		}
		return ctx.Set(r.Output, v)

	case KindCalculate:
		params := make(map[string]float64, len(r.Calc.Inputs))
		for _, in := range r.Calc.Inputs {
			raw, ok := ctx.Get(in.Field)
			if (!ok || strings.TrimSpace(raw) == "") && in.Default != nil {
				raw = *in.Default
				ok = true
			}
			if !ok || strings.TrimSpace(raw) == "" {
				continue
			}
			f, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
			if err != nil {
				return &issue.ConversionError{Conversion: r.Calc.Name, Field: in.Field, RawValue: raw, Cause: err}
			}
			params[in.Param] = f
		}
		v, err := calculations[r.Calc.Name](params)
		if err != nil {
			return &issue.MappingError{RuleKind: string(r.Kind), Field: r.Output, Reason: err.Error()}
		}
		return ctx.Set(r.Output, v)
	}

	// KindComment rules are dropped at load time; nothing else reaches here.
	return nil
}

func evalCondition(c *Condition, ctx *Context) bool {
	var v string
	var ok bool
	if c.Source == "output" {
		v, ok = ctx.Field(c.Field)
	} else {
		v, ok = ctx.Input(c.Field)
	}

	switch c.Operator {
	case "equals":
		return ok && v == c.Value
	case "not_equals":
		return !ok || v != c.Value
	case "exists":
		return ok
	case "not_exists":
		return !ok
	case "is_empty":
		return !ok || strings.TrimSpace(v) == ""
	case "is_not_empty":
		return ok && strings.TrimSpace(v) != ""
	}
	return false
}

func containsValue(values []string, v string) bool {
	for _, candidate := range values {
		if candidate == v {
			return true
		}
	}
	return false
}
