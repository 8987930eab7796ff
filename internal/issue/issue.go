// SPDX-License-Identifier: MPL-2.0

package issue

import (
	"fmt"
	"strings"
)

// Violation is a single schema violation reported by the validation engine.
type Violation struct {
	// Code is the engine's error code (W3C cvc-* codes where available).
	Code string
	// Message is the engine's description of the violation.
	Message string
	// Path locates the offending node inside the document, when known.
	Path string
	// File names the document the violation was found in, when known.
	File string
	// Line and Column locate the violation in the source text (0 = unknown).
	Line   int
	Column int
}

// String renders the violation for logs and error messages.
func (v Violation) String() string {
	var b strings.Builder
	if v.File != "" {
		fmt.Fprintf(&b, "%s: ", v.File)
	}
	if v.Line > 0 {
		fmt.Fprintf(&b, "line %d:%d: ", v.Line, v.Column)
	}
	if v.Code != "" {
		fmt.Fprintf(&b, "[%s] ", v.Code)
	}
	b.WriteString(v.Message)
	if v.Path != "" {
		fmt.Fprintf(&b, " (at %s)", v.Path)
	}
	return b.String()
}

// ConfigError reports malformed or missing configuration.
type ConfigError struct {
	Path   string
	Reason string
	Cause  error
}

func (e *ConfigError) Error() string {
	msg := fmt.Sprintf("config %s: %s", e.Path, e.Reason)
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

func (e *ConfigError) Unwrap() error { return e.Cause }

// CsvStructureError reports a CSV source missing required columns.
type CsvStructureError struct {
	File    string
	Missing []string
}

func (e *CsvStructureError) Error() string {
	return fmt.Sprintf("csv %s: missing required columns: %s", e.File, strings.Join(e.Missing, ", "))
}

// MissingFieldError reports a rule or builder reading a field that is absent
// from its context and has no declared default.
type MissingFieldError struct {
	Field    string
	RuleKind string
}

func (e *MissingFieldError) Error() string {
	if e.RuleKind != "" {
		return fmt.Sprintf("%s: input field %q is absent and no default is declared", e.RuleKind, e.Field)
	}
	return fmt.Sprintf("required field %q is absent", e.Field)
}

// MappingError reports a lookup miss without a default, or a conditional
// mapping with no matching branch and no fallback.
type MappingError struct {
	RuleKind string
	Table    string
	Key      string
	Field    string
	Reason   string
}

func (e *MappingError) Error() string {
	if e.Table != "" {
		return fmt.Sprintf("%s: key %q not found in lookup table %q and no default declared", e.RuleKind, e.Key, e.Table)
	}
	return fmt.Sprintf("%s: field %q: %s", e.RuleKind, e.Field, e.Reason)
}

// ConversionError reports a data type conversion that could not parse its
// input. RawValue is the offending value as read from the source.
type ConversionError struct {
	Conversion string
	Field      string
	RawValue   string
	Cause      error
}

func (e *ConversionError) Error() string {
	return fmt.Sprintf("conversion %s on field %q: cannot convert %q", e.Conversion, e.Field, e.RawValue)
}

func (e *ConversionError) Unwrap() error { return e.Cause }

// RuleFileError reports a rule file that failed to parse or declared an
// invalid rule.
type RuleFileError struct {
	Path      string
	RuleIndex int
	Reason    string
	Cause     error
}

func (e *RuleFileError) Error() string {
	msg := fmt.Sprintf("rule file %s: rule %d: %s", e.Path, e.RuleIndex, e.Reason)
	if e.RuleIndex < 0 {
		msg = fmt.Sprintf("rule file %s: %s", e.Path, e.Reason)
	}
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

func (e *RuleFileError) Unwrap() error { return e.Cause }

// SchemaResolutionError reports a logical schema name not found in any
// configured search root.
type SchemaResolutionError struct {
	Name  string
	Roots []string
}

func (e *SchemaResolutionError) Error() string {
	return fmt.Sprintf("schema %q not found in any search root (%s)", e.Name, strings.Join(e.Roots, ", "))
}

// ValidationError reports schema violations found while validating a
// generated document.
type ValidationError struct {
	Document   string
	SchemaName string
	Violations []Violation
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("document %s failed validation against %s: %d violation(s); first: %s",
		e.Document, e.SchemaName, len(e.Violations), firstViolation(e.Violations))
}

// PackagingError reports an I/O failure while assembling the submission
// archive.
type PackagingError struct {
	Archive string
	Cause   error
}

func (e *PackagingError) Error() string {
	return fmt.Sprintf("packaging %s: %v", e.Archive, e.Cause)
}

func (e *PackagingError) Unwrap() error { return e.Cause }

// ArchiveVerificationError reports the aggregated violations found while
// re-validating a packaged archive.
type ArchiveVerificationError struct {
	Archive    string
	Violations []Violation
}

func (e *ArchiveVerificationError) Error() string {
	return fmt.Sprintf("archive %s failed verification: %d violation(s); first: %s",
		e.Archive, len(e.Violations), firstViolation(e.Violations))
}

func firstViolation(vs []Violation) string {
	if len(vs) == 0 {
		return "<none>"
	}
	return vs[0].String()
}
