// SPDX-License-Identifier: MPL-2.0

package rule

import (
	"encoding/json"
	"fmt"
	"os"

	"kenshin-cli/internal/issue"
)

func newFileError(path string, idx int, reason string, cause error) error {
	return &issue.RuleFileError{Path: path, RuleIndex: idx, Reason: reason, Cause: cause}
}

// Kind discriminates the closed set of rule variants.
type Kind string

const (
	KindDirectMapping        Kind = "direct_mapping"
	KindDefaultValue         Kind = "default_value"
	KindLookupValue          Kind = "lookup_value"
	KindDataTypeConversion   Kind = "data_type_conversion"
	KindConditionalMapping   Kind = "conditional_mapping"
	KindMultiRowAccumulation Kind = "multi_row_accumulation"
	KindConcat               Kind = "concat"
	KindSplit                Kind = "split"
	KindMapMissingValues     Kind = "map_missing_values"
	KindCalculate            Kind = "calculate"
	KindComment              Kind = "comment"
)

type (
	// Rule is one validated transformation rule. Exactly the parameter block
	// matching Kind is populated; all other blocks are nil. Rules are
	// immutable once loaded.
	Rule struct {
		Kind   Kind
		Input  string
		Inputs []string
		Output string

		// Default, when declared on a direct_mapping, is written instead of
		// failing when the input field is absent.
		Default *string

		// Value is the literal written by default_value.
		Value string

		Lookup      *LookupParams
		Conversion  *ConversionParams
		Conditional *ConditionalParams
		Accumulate  *AccumulateParams
		Split       *SplitParams
		Missing     *MissingParams
		Calc        *CalcParams

		// Delimiter joins the inputs of a concat rule.
		Delimiter string
	}

	// LookupParams configures a lookup_value rule.
	LookupParams struct {
		Table string
		// DefaultOnMiss, when declared, is written on a lookup miss instead
		// of failing.
		DefaultOnMiss *string
	}

	// ConversionParams configures a data_type_conversion rule.
	ConversionParams struct {
		Type   string
		Digits int
	}

	// ConditionalParams configures a conditional_mapping rule.
	ConditionalParams struct {
		Condition Condition
		Then      []Rule
		Else      []Rule
	}

	// AccumulateParams configures a multi_row_accumulation rule: the nested
	// rule set is applied once per row of the group, and each resulting
	// sub-record is appended to the output sequence field in row order.
	AccumulateParams struct {
		Rules []Rule
	}

	// SplitParams configures a split rule.
	SplitParams struct {
		Delimiter string
		Outputs   []string
	}

	// MissingParams configures a map_missing_values rule.
	MissingParams struct {
		Values []string
		Mapped string
	}

	// CalcParams configures a calculate rule.
	CalcParams struct {
		Name   string
		Inputs []CalcInput
	}

	// CalcInput binds one context field to a named parameter of the
	// calculation function.
	CalcInput struct {
		Field   string
		Param   string
		Default *string
	}

	// Condition is the predicate of a conditional_mapping rule, evaluated
	// over the input row or the fields produced so far.
	Condition struct {
		Field    string
		Operator string
		Value    string
		// Source selects where Field is read from: "input" (default, the
		// row) or "output" (fields produced by earlier rules).
		Source string
	}

	// Set is the ordered rule list for one document kind.
	Set struct {
		Rules []Rule
	}
)

// FieldSet declares the output fields a document kind accepts. A nil
// FieldSet accepts everything.
type FieldSet map[string]struct{}

// NewFieldSet builds a FieldSet from field names.
func NewFieldSet(names ...string) FieldSet {
	fs := make(FieldSet, len(names))
	for _, n := range names {
		fs[n] = struct{}{}
	}
	return fs
}

// Has reports whether name is a declared field. A nil set accepts all names.
func (fs FieldSet) Has(name string) bool {
	if fs == nil {
		return true
	}
	_, ok := fs[name]
	return ok
}

// conditionOperators is the closed operator set of conditional_mapping.
var conditionOperators = map[string]struct{}{
	"equals": {}, "not_equals": {},
	"exists": {}, "not_exists": {},
	"is_empty": {}, "is_not_empty": {},
}

// conversionTypes is the closed conversion set of data_type_conversion.
var conversionTypes = map[string]struct{}{
	"to_integer": {}, "to_date_yyyymmdd": {}, "to_boolean": {}, "round": {},
}

// ruleSpec is the raw JSON shape of a rule before validation.
type ruleSpec struct {
	RuleType      string     `json:"rule_type"`
	InputField    string     `json:"input_field"`
	InputFields   []string   `json:"input_fields"`
	OutputField   string     `json:"output_field"`
	OutputFields  []string   `json:"output_fields"`
	Value         string     `json:"value"`
	Default       *string    `json:"default"`
	LookupTable   string     `json:"lookup_table_name"`
	DefaultOnMiss *string    `json:"default_on_miss"`
	Conversion    string     `json:"conversion_type"`
	Digits        int        `json:"digits"`
	Delimiter     string     `json:"delimiter"`
	MissingValues []string   `json:"missing_values"`
	MappedValue   string     `json:"mapped_value"`
	Calculation   string     `json:"calculation_name"`
	InputMapping  []calcSpec `json:"input_mapping"`
	Condition     *condSpec  `json:"condition"`
	ThenRules     []ruleSpec `json:"then_rules"`
	ElseRules     []ruleSpec `json:"else_rules"`
	Rules         []ruleSpec `json:"rules"`
}

type calcSpec struct {
	SourceField      string  `json:"source_field"`
	ParamName        string  `json:"param_name"`
	DefaultIfMissing *string `json:"default_if_missing"`
}

type condSpec struct {
	InputField string `json:"input_field"`
	Operator   string `json:"operator"`
	Value      string `json:"value"`
	Source     string `json:"source"`
}

// LoadSet parses and validates a JSON rule file against the declared field
// set of its document kind.
func LoadSet(path string, fields FieldSet) (*Set, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, newFileError(path, -1, "cannot read rule file", err)
	}

	var specs []ruleSpec
	if err := json.Unmarshal(data, &specs); err != nil {
		return nil, newFileError(path, -1, "rule file must be a JSON array of rule objects", err)
	}

	rules, err := compile(specs, fields, path)
	if err != nil {
		return nil, err
	}
	return &Set{Rules: rules}, nil
}

func compile(specs []ruleSpec, fields FieldSet, path string) ([]Rule, error) {
	rules := make([]Rule, 0, len(specs))
	for i, spec := range specs {
		r, err := compileOne(spec, fields, path, i)
		if err != nil {
			return nil, err
		}
		if r.Kind == KindComment {
			continue
		}
		rules = append(rules, r)
	}
	return rules, nil
}

func compileOne(spec ruleSpec, fields FieldSet, path string, idx int) (Rule, error) {
	fail := func(format string, args ...any) (Rule, error) {
		return Rule{}, newFileError(path, idx, fmt.Sprintf(format, args...), nil)
	}
	checkOutput := func(name string) error {
		if !fields.Has(name) {
			return newFileError(path, idx, fmt.Sprintf("output field %q is not declared for this document kind", name), nil)
		}
		return nil
	}

	kind := Kind(spec.RuleType)
	switch kind {
	case KindComment, "":
		return Rule{Kind: KindComment}, nil

	case KindDirectMapping:
		if spec.InputField == "" || spec.OutputField == "" {
			return fail("direct_mapping requires input_field and output_field")
		}
		if err := checkOutput(spec.OutputField); err != nil {
			return Rule{}, err
		}
		return Rule{Kind: kind, Input: spec.InputField, Output: spec.OutputField, Default: spec.Default}, nil

	case KindDefaultValue:
		if spec.OutputField == "" {
			return fail("default_value requires output_field")
		}
		if err := checkOutput(spec.OutputField); err != nil {
			return Rule{}, err
		}
		// input_field, when set, makes the default conditional: it is only
		// written when that source field is empty or absent.
		return Rule{Kind: kind, Input: spec.InputField, Output: spec.OutputField, Value: spec.Value}, nil

	case KindLookupValue:
		if spec.InputField == "" || spec.OutputField == "" || spec.LookupTable == "" {
			return fail("lookup_value requires input_field, output_field and lookup_table_name")
		}
		if err := checkOutput(spec.OutputField); err != nil {
			return Rule{}, err
		}
		return Rule{
			Kind: kind, Input: spec.InputField, Output: spec.OutputField,
			Lookup: &LookupParams{Table: spec.LookupTable, DefaultOnMiss: spec.DefaultOnMiss},
		}, nil

	case KindDataTypeConversion:
		if spec.InputField == "" || spec.OutputField == "" {
			return fail("data_type_conversion requires input_field and output_field")
		}
		if _, ok := conversionTypes[spec.Conversion]; !ok {
			return fail("unknown conversion_type %q", spec.Conversion)
		}
		if err := checkOutput(spec.OutputField); err != nil {
			return Rule{}, err
		}
		return Rule{
			Kind: kind, Input: spec.InputField, Output: spec.OutputField,
			Conversion: &ConversionParams{Type: spec.Conversion, Digits: spec.Digits},
		}, nil

	case KindConditionalMapping:
		if spec.Condition == nil {
			return fail("conditional_mapping requires a condition")
		}
		if len(spec.ThenRules) == 0 {
			return fail("conditional_mapping requires then_rules")
		}
		if _, ok := conditionOperators[spec.Condition.Operator]; !ok {
			return fail("unknown condition operator %q", spec.Condition.Operator)
		}
		thenRules, err := compile(spec.ThenRules, fields, path)
		if err != nil {
			return Rule{}, err
		}
		elseRules, err := compile(spec.ElseRules, fields, path)
		if err != nil {
			return Rule{}, err
		}
		return Rule{
			Kind: kind,
			Conditional: &ConditionalParams{
				Condition: Condition{
					Field:    spec.Condition.InputField,
					Operator: spec.Condition.Operator,
					Value:    spec.Condition.Value,
					Source:   spec.Condition.Source,
				},
				Then: thenRules,
				Else: elseRules,
			},
		}, nil

	case KindMultiRowAccumulation:
		if spec.OutputField == "" || len(spec.Rules) == 0 {
			return fail("multi_row_accumulation requires output_field and a nested rules list")
		}
		if err := checkOutput(spec.OutputField); err != nil {
			return Rule{}, err
		}
		// Sub-records carry their own field names; the nested set is not
		// constrained by the parent document's field set.
		nested, err := compile(spec.Rules, nil, path)
		if err != nil {
			return Rule{}, err
		}
		return Rule{Kind: kind, Output: spec.OutputField, Accumulate: &AccumulateParams{Rules: nested}}, nil

	case KindConcat:
		if len(spec.InputFields) == 0 || spec.OutputField == "" {
			return fail("concat requires input_fields and output_field")
		}
		if err := checkOutput(spec.OutputField); err != nil {
			return Rule{}, err
		}
		return Rule{Kind: kind, Inputs: spec.InputFields, Output: spec.OutputField, Delimiter: spec.Delimiter}, nil

	case KindSplit:
		if spec.InputField == "" || len(spec.OutputFields) == 0 || spec.Delimiter == "" {
			return fail("split requires input_field, output_fields and delimiter")
		}
		for _, of := range spec.OutputFields {
			if err := checkOutput(of); err != nil {
				return Rule{}, err
			}
		}
		return Rule{Kind: kind, Input: spec.InputField, Split: &SplitParams{Delimiter: spec.Delimiter, Outputs: spec.OutputFields}}, nil

	case KindMapMissingValues:
		if spec.InputField == "" || spec.OutputField == "" {
			return fail("map_missing_values requires input_field and output_field")
		}
		if err := checkOutput(spec.OutputField); err != nil {
			return Rule{}, err
		}
		return Rule{
			Kind: kind, Input: spec.InputField, Output: spec.OutputField,
			Missing: &MissingParams{Values: spec.MissingValues, Mapped: spec.MappedValue},
		}, nil

	case KindCalculate:
		if spec.Calculation == "" || spec.OutputField == "" {
			return fail("calculate requires calculation_name and output_field")
		}
		if _, ok := calculations[spec.Calculation]; !ok {
			return fail("unknown calculation %q", spec.Calculation)
		}
		if err := checkOutput(spec.OutputField); err != nil {
			return Rule{}, err
		}
		inputs := make([]CalcInput, 0, len(spec.InputMapping))
		for _, m := range spec.InputMapping {
			if m.SourceField == "" || m.ParamName == "" {
				return fail("calculate input_mapping entries require source_field and param_name")
			}
			inputs = append(inputs, CalcInput{Field: m.SourceField, Param: m.ParamName, Default: m.DefaultIfMissing})
		}
		return Rule{Kind: kind, Output: spec.OutputField, Calc: &CalcParams{Name: spec.Calculation, Inputs: inputs}}, nil
	}

	return fail("unknown rule_type %q", spec.RuleType)
}
