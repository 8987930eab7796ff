// SPDX-License-Identifier: MPL-2.0

package archive

import (
	"archive/zip"
	"errors"
	"fmt"
	"io/fs"
	"path"
	"path/filepath"
	"strings"

	"github.com/jacoelho/xsd"

	"kenshin-cli/internal/document"
	"kenshin-cli/internal/issue"
	"kenshin-cli/internal/validate"
)

// Verify re-opens a produced archive and validates every XML entry against
// the schemas bundled inside that same archive. Verification is exhaustive:
// every file is checked and all findings are returned together. An empty
// result signals a submission-ready archive. The error return covers
// unreadable archives only.
func Verify(archivePath string) ([]issue.Violation, error) {
	r, err := zip.OpenReader(archivePath)
	if err != nil {
		return nil, &issue.PackagingError{Archive: archivePath, Cause: err}
	}
	defer r.Close()

	base := strings.TrimSuffix(filepath.Base(archivePath), filepath.Ext(archivePath))
	xsdFS, err := fs.Sub(&r.Reader, path.Join(base, XSDDir))
	if err != nil {
		return nil, &issue.PackagingError{Archive: archivePath, Cause: err}
	}

	v := &verifier{xsdFS: xsdFS, schemas: make(map[string]*xsd.Schema)}
	var violations []issue.Violation
	var sawIndex, sawSummary bool

	for _, entry := range r.File {
		if entry.FileInfo().IsDir() || !strings.HasSuffix(entry.Name, ".xml") {
			continue
		}
		rel := strings.TrimPrefix(entry.Name, base+"/")
		name := path.Base(entry.Name)
		switch name {
		case "index.xml":
			sawIndex = true
		case "summary.xml":
			sawSummary = true
		}

		kind, ok := document.KindForFile(name)
		if !ok {
			violations = append(violations, issue.Violation{
				File:    rel,
				Message: "no schema mapping for file name",
			})
			continue
		}
		violations = append(violations, v.check(entry, rel, kind.SchemaName())...)
	}

	if !sawIndex {
		violations = append(violations, issue.Violation{File: "index.xml", Message: "missing from archive"})
	}
	if !sawSummary {
		violations = append(violations, issue.Violation{File: "summary.xml", Message: "missing from archive"})
	}
	return violations, nil
}

// VerifyArchive wraps Verify for callers that want a single error: any
// finding becomes an ArchiveVerificationError.
func VerifyArchive(archivePath string) error {
	violations, err := Verify(archivePath)
	if err != nil {
		return err
	}
	if len(violations) > 0 {
		return &issue.ArchiveVerificationError{Archive: archivePath, Violations: violations}
	}
	return nil
}

type verifier struct {
	xsdFS   fs.FS
	schemas map[string]*xsd.Schema
}

func (v *verifier) schemaFor(name string) (*xsd.Schema, error) {
	if s, ok := v.schemas[name]; ok {
		return s, nil
	}
	s, err := xsd.Load(v.xsdFS, name)
	if err != nil {
		return nil, err
	}
	v.schemas[name] = s
	return s, nil
}

func (v *verifier) check(entry *zip.File, rel, schemaName string) []issue.Violation {
	s, err := v.schemaFor(schemaName)
	if err != nil {
		return []issue.Violation{{
			File:    rel,
			Message: fmt.Sprintf("cannot load bundled schema %s: %v", schemaName, err),
		}}
	}
	rc, err := entry.Open()
	if err != nil {
		return []issue.Violation{{File: rel, Message: fmt.Sprintf("cannot read entry: %v", err)}}
	}
	defer rc.Close()

	verr := validate.Against(s, rc, schemaName, rel)
	if verr == nil {
		return nil
	}
	var ve *issue.ValidationError
	if errors.As(verr, &ve) {
		return ve.Violations
	}
	return []issue.Violation{{File: rel, Message: verr.Error()}}
}
