// SPDX-License-Identifier: MPL-2.0

package archive

import (
	"archive/zip"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"kenshin-cli/internal/issue"
	"kenshin-cli/internal/schema"
)

// Archive layout directory names.
const (
	DataDir   = "DATA"
	ClaimsDir = "CLAIMS"
	XSDDir    = "XSD"
)

// BaseName returns the timestamped archive base name.
func BaseName(now time.Time) string {
	return "Submission_Aggregated_" + now.Format("20060102150405")
}

// Contents lists everything that goes into one submission archive.
type Contents struct {
	IndexXML   string
	SummaryXML string
	DataFiles  []string
	ClaimFiles []string
	// SchemaNames are the logical schema names to bundle under XSD/,
	// resolved through the search path. Names may carry a subdirectory
	// (coreschemas/...).
	SchemaNames []string
}

// Packager assembles submission archives, resolving bundled schemas through
// the search path.
type Packager struct {
	search *schema.SearchPath
}

// NewPackager builds a packager over the given schema search path.
func NewPackager(search *schema.SearchPath) *Packager {
	return &Packager{search: search}
}

// Create writes <baseName>.zip into outDir and returns its path. Assembly
// is atomic: the zip grows under a hidden staging name and only an
// os.Rename publishes it, so a failure never leaves a partial archive at
// the final path.
func (p *Packager) Create(c Contents, baseName, outDir string) (string, error) {
	final := filepath.Join(outDir, baseName+".zip")
	fail := func(err error) (string, error) {
		return "", &issue.PackagingError{Archive: final, Cause: err}
	}

	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return fail(err)
	}
	staging := filepath.Join(outDir, fmt.Sprintf(".%s.%s.tmp", baseName, uuid.NewString()[:8]))
	f, err := os.Create(staging)
	if err != nil {
		return fail(err)
	}
	defer os.Remove(staging)

	if err := p.write(f, c, baseName); err != nil {
		f.Close()
		return fail(err)
	}
	if err := f.Close(); err != nil {
		return fail(err)
	}
	if err := os.Rename(staging, final); err != nil {
		return fail(err)
	}
	return final, nil
}

func (p *Packager) write(w io.Writer, c Contents, baseName string) error {
	zw := zip.NewWriter(w)

	addFile := func(entryName, srcPath string) error {
		src, err := os.Open(srcPath)
		if err != nil {
			return err
		}
		defer src.Close()
		dst, err := zw.Create(path.Join(baseName, entryName))
		if err != nil {
			return err
		}
		_, err = io.Copy(dst, src)
		return err
	}

	if err := addFile("index.xml", c.IndexXML); err != nil {
		return err
	}
	if err := addFile("summary.xml", c.SummaryXML); err != nil {
		return err
	}
	for _, p := range c.DataFiles {
		if err := addFile(path.Join(DataDir, filepath.Base(p)), p); err != nil {
			return err
		}
	}
	for _, p := range c.ClaimFiles {
		if err := addFile(path.Join(ClaimsDir, filepath.Base(p)), p); err != nil {
			return err
		}
	}
	for _, name := range c.SchemaNames {
		resolved, err := p.search.Resolve(name)
		if err != nil {
			return err
		}
		if err := addFile(path.Join(XSDDir, name), resolved); err != nil {
			return err
		}
	}
	return zw.Close()
}
