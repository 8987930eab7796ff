// SPDX-License-Identifier: MPL-2.0

package document

import "strings"

// Kind is one of the six regulator-defined document kinds.
type Kind string

const (
	HC08    Kind = "hc08"
	HG08    Kind = "hg08"
	CC08    Kind = "cc08"
	GC08    Kind = "gc08"
	Index   Kind = "index"
	Summary Kind = "summary"
)

// RecordKinds are the per-record kinds, in the fixed processing order.
var RecordKinds = []Kind{HC08, HG08, CC08, GC08}

// schemaNames are the fixed regulator schema file names per kind.
var schemaNames = map[Kind]string{
	HC08:    "hc08_V08.xsd",
	HG08:    "hg08_V08.xsd",
	CC08:    "cc08_V08.xsd",
	GC08:    "gc08_V08.xsd",
	Index:   "ix08_V08.xsd",
	Summary: "su08_V08.xsd",
}

// CoreDatatypesSchema is the shared datatype schema included by the CDA
// schemas, carried into the archive under XSD/coreschemas/.
const CoreDatatypesSchema = "coreschemas/datatypes_hcgv08.xsd"

// filePrefixes name generated files so a recipient can map each file back
// to its schema without opening it.
var filePrefixes = map[Kind]string{
	HC08: "hc_cda_",
	HG08: "hg_cda_",
	CC08: "cs_",
	GC08: "gs_",
}

// archiveDirs place each kind inside the submission archive. Index and
// summary live at the archive root.
var archiveDirs = map[Kind]string{
	HC08: "DATA",
	HG08: "DATA",
	CC08: "CLAIMS",
	GC08: "CLAIMS",
}

// SchemaName returns the kind's fixed schema file name.
func (k Kind) SchemaName() string { return schemaNames[k] }

// FilePrefix returns the kind's output file name prefix. Aggregate kinds
// have none; their file names are fixed (index.xml, summary.xml).
func (k Kind) FilePrefix() string { return filePrefixes[k] }

// ArchiveDir returns the archive subdirectory holding this kind, "" for
// the aggregate kinds at the root.
func (k Kind) ArchiveDir() string { return archiveDirs[k] }

// IsClaim reports whether the kind is a settlement document.
func (k Kind) IsClaim() bool { return k == CC08 || k == GC08 }

// KindForFile maps a generated file name back to its kind by prefix, the
// same mapping a recipient applies when validating an archive.
func KindForFile(name string) (Kind, bool) {
	switch {
	case name == "index.xml":
		return Index, true
	case name == "summary.xml":
		return Summary, true
	case strings.HasPrefix(name, "hc_cda_"):
		return HC08, true
	case strings.HasPrefix(name, "hg_cda_"):
		return HG08, true
	case strings.HasPrefix(name, "cs_"):
		return CC08, true
	case strings.HasPrefix(name, "gs_"):
		return GC08, true
	}
	return "", false
}
