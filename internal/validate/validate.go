// SPDX-License-Identifier: MPL-2.0

// Package validate checks generated XML documents against their schemas and
// converts the engine's findings into the pipeline's violation shape.
package validate

import (
	"io"

	"github.com/jacoelho/xsd"
	xsderrors "github.com/jacoelho/xsd/errors"

	"kenshin-cli/internal/issue"
	"kenshin-cli/internal/schema"
)

// Validator validates documents against schemas located through the search
// path. Schemas compile once and are reused; the validator is safe to share
// across goroutines.
type Validator struct {
	search *schema.SearchPath
}

// New builds a validator over the given search path.
func New(search *schema.SearchPath) *Validator {
	return &Validator{search: search}
}

// Validate checks doc against the named schema. A clean document returns
// nil; schema violations return a ValidationError naming the document.
// Resolution and compile failures pass through unchanged.
func (v *Validator) Validate(doc io.Reader, schemaName, docName string) error {
	s, err := v.search.Compile(schemaName)
	if err != nil {
		return err
	}
	return Against(s, doc, schemaName, docName)
}

// Against checks doc against an already compiled schema. The archive
// verifier uses this with schemas read from inside the archive.
func Against(s *xsd.Schema, doc io.Reader, schemaName, docName string) error {
	err := s.Validate(doc)
	if err == nil {
		return nil
	}
	violations, ok := AsViolations(err, docName)
	if !ok {
		return err
	}
	return &issue.ValidationError{Document: docName, SchemaName: schemaName, Violations: violations}
}

// AsViolations extracts the engine's validation findings from err and tags
// them with the file they were found in. ok is false when err is not a
// validation result (an I/O or parse-level failure).
func AsViolations(err error, file string) ([]issue.Violation, bool) {
	list, ok := xsderrors.AsValidations(err)
	if !ok {
		return nil, false
	}
	out := make([]issue.Violation, 0, len(list))
	for _, v := range list {
		out = append(out, issue.Violation{
			Code:    v.Code,
			Message: v.Message,
			Path:    v.Path,
			File:    file,
			Line:    v.Line,
			Column:  v.Column,
		})
	}
	return out, true
}
