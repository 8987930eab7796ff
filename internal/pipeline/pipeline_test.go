// SPDX-License-Identifier: MPL-2.0

package pipeline

import (
	"archive/zip"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kenshin-cli/internal/config"
	"kenshin-cli/internal/document"
	"kenshin-cli/internal/issue"
)

// anyTypeSchema accepts any content under a fixed root element so the run
// exercises real schema validation without a full regulator schema.
func anyTypeSchema(ns, root string) string {
	return `<?xml version="1.0" encoding="UTF-8"?>
<xs:schema xmlns:xs="http://www.w3.org/2001/XMLSchema"
           targetNamespace="` + ns + `"
           xmlns:tns="` + ns + `"
           elementFormDefault="qualified">
  <xs:complexType name="openDoc">
    <xs:complexContent><xs:extension base="xs:anyType"/></xs:complexContent>
  </xs:complexType>
  <xs:element name="` + root + `" type="tns:openDoc"/>
</xs:schema>`
}

func writeFile(t *testing.T, path, body string) string {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

// openSchemaRoot writes a permissive schema set under the fixed regulator
// names and returns the root directory.
func openSchemaRoot(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	schemas := map[string]string{
		"hc08_V08.xsd": anyTypeSchema(document.NamespaceHL7, "ClinicalDocument"),
		"hg08_V08.xsd": anyTypeSchema(document.NamespaceHL7, "ClinicalDocument"),
		"cc08_V08.xsd": anyTypeSchema(document.NamespaceMHLW, "checkupClaim"),
		"gc08_V08.xsd": anyTypeSchema(document.NamespaceGuidanceClaim, "GuidanceClaimDocument"),
		"ix08_V08.xsd": anyTypeSchema(document.NamespaceMHLW, "index"),
		"su08_V08.xsd": anyTypeSchema(document.NamespaceMHLW, "summary"),
		"coreschemas/datatypes_hcgv08.xsd": `<?xml version="1.0" encoding="UTF-8"?>
<xs:schema xmlns:xs="http://www.w3.org/2001/XMLSchema">
  <xs:simpleType name="st"><xs:restriction base="xs:string"/></xs:simpleType>
</xs:schema>`,
	}
	for name, body := range schemas {
		writeFile(t, filepath.Join(root, name), body)
	}
	return root
}

const hc08Rules = `[
  {"rule_type": "comment", "value": "health checkup record mapping"},
  {"rule_type": "direct_mapping", "input_field": "patient_id", "output_field": "documentIdExtension"},
  {"rule_type": "direct_mapping", "input_field": "family", "output_field": "patientNameFamily"},
  {"rule_type": "direct_mapping", "input_field": "gender", "output_field": "patientGenderCode"}
]`

const cc08Rules = `[
  {"rule_type": "direct_mapping", "input_field": "doc_id", "output_field": "documentIdExtension"},
  {"rule_type": "data_type_conversion", "input_field": "claim_amount", "output_field": "claimAmountValue", "conversion_type": "to_integer"}
]`

// testSetup holds the directories of one pipeline fixture.
type testSetup struct {
	cfg *config.Config
}

func newSetup(t *testing.T, hc08CSV, cc08CSV string) *testSetup {
	t.Helper()
	dir := t.TempDir()
	cfg := &config.Config{
		Paths: config.Paths{
			OutputXMLDir:     filepath.Join(dir, "out"),
			ArchiveOutputDir: filepath.Join(dir, "archives"),
			XSDSearchRoots:   []string{openSchemaRoot(t)},
			JSONOutputDir:    filepath.Join(dir, "json"),
		},
		Inputs: map[string]config.Input{
			config.KindHC08: {
				CSV:     writeFile(t, filepath.Join(dir, "hc08.csv"), hc08CSV),
				GroupBy: []string{"patient_id"},
			},
			config.KindCC08: {
				CSV: writeFile(t, filepath.Join(dir, "cc08.csv"), cc08CSV),
			},
		},
		RuleFiles: map[string]string{
			config.KindHC08: writeFile(t, filepath.Join(dir, "hc08_rules.json"), hc08Rules),
			config.KindCC08: writeFile(t, filepath.Join(dir, "cc08_rules.json"), cc08Rules),
		},
		XSDFiles:      map[string]string{},
		OnRecordError: config.PolicyAbort,
	}
	return &testSetup{cfg: cfg}
}

func (s *testSetup) run(t *testing.T) (*Result, error) {
	t.Helper()
	p, err := New(s.cfg, log.New(io.Discard))
	require.NoError(t, err)
	p.now = func() time.Time { return time.Date(2025, 4, 1, 9, 30, 0, 0, time.UTC) }
	return p.Run(context.Background())
}

func (s *testSetup) readOutput(t *testing.T, name string) string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(s.cfg.Paths.OutputXMLDir, name))
	require.NoError(t, err)
	return string(data)
}

func TestRunEndToEnd(t *testing.T) {
	s := newSetup(t,
		"patient_id,family,gender\nP1,Sato,1\nP2,Suzuki,2\n",
		"doc_id,claim_amount\nC1,1000\nC2,2000\n")

	res, err := s.run(t)
	require.NoError(t, err)

	assert.Equal(t, 2, res.Generated[document.HC08])
	assert.Equal(t, 2, res.Generated[document.CC08])
	assert.Zero(t, res.Skipped[document.HC08])
	assert.Zero(t, res.Skipped[document.CC08])

	assert.Contains(t, s.readOutput(t, "hc_cda_P1.xml"), `family>Sato<`)

	// Two CDA subjects and four documents in total.
	assert.Contains(t, s.readOutput(t, "index.xml"), `<totalRecordCount value="4">`)
	summary := s.readOutput(t, "summary.xml")
	assert.Contains(t, summary, `<totalSubjectCount value="2">`)
	assert.Contains(t, summary, `value="3000" currency="JPY"`)

	assert.Equal(t,
		filepath.Join(s.cfg.Paths.ArchiveOutputDir, "Submission_Aggregated_20250401093000.zip"),
		res.ArchivePath)
	assertArchiveEntries(t, res.ArchivePath, "Submission_Aggregated_20250401093000", []string{
		"index.xml", "summary.xml",
		"DATA/hc_cda_P1.xml", "DATA/hc_cda_P2.xml",
		"CLAIMS/cs_C1.xml", "CLAIMS/cs_C2.xml",
		"XSD/hc08_V08.xsd", "XSD/coreschemas/datatypes_hcgv08.xsd",
	})

	// The diagnostic row dump is written per kind.
	_, err = os.Stat(filepath.Join(s.cfg.Paths.JSONOutputDir, "hc08_rows.json"))
	assert.NoError(t, err)
}

func assertArchiveEntries(t *testing.T, archivePath, base string, want []string) {
	t.Helper()
	r, err := zip.OpenReader(archivePath)
	require.NoError(t, err)
	defer r.Close()

	have := make(map[string]bool, len(r.File))
	for _, f := range r.File {
		have[f.Name] = true
	}
	for _, name := range want {
		assert.True(t, have[base+"/"+name], "archive should contain %s", name)
	}
}

func TestRunAbortsOnBadRecord(t *testing.T) {
	s := newSetup(t,
		"patient_id,family,gender\nP1,Sato,1\n",
		"doc_id,claim_amount\nC1,not-a-number\n")

	_, err := s.run(t)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "to_integer")
}

func TestRunClearsStaleOutputs(t *testing.T) {
	s := newSetup(t,
		"patient_id,family,gender\nP1,Sato,1\n",
		"doc_id,claim_amount\nC1,2000\n")
	require.NoError(t, os.MkdirAll(s.cfg.Paths.OutputXMLDir, 0o755))
	stale := writeFile(t, filepath.Join(s.cfg.Paths.OutputXMLDir, "hc_cda_STALE.xml"), "<old/>")

	res, err := s.run(t)
	require.NoError(t, err)

	assert.NoFileExists(t, stale)
	assert.Contains(t, s.readOutput(t, "index.xml"), `<totalRecordCount value="2">`)
	assertArchiveMisses(t, res.ArchivePath, "STALE")
}

func TestRunFailsWithoutRuleFile(t *testing.T) {
	s := newSetup(t,
		"patient_id,family,gender\nP1,Sato,1\n",
		"doc_id,claim_amount\nC1,2000\n")
	delete(s.cfg.RuleFiles, config.KindCC08)

	_, err := s.run(t)

	var ce *issue.ConfigError
	require.True(t, errors.As(err, &ce))
	assert.Contains(t, err.Error(), "cc08")
}

func TestRunSkipPolicyDropsBadRecord(t *testing.T) {
	s := newSetup(t,
		"patient_id,family,gender\nP1,Sato,1\n",
		"doc_id,claim_amount\nC1,not-a-number\nC2,2000\n")
	s.cfg.OnRecordError = config.PolicySkip

	res, err := s.run(t)
	require.NoError(t, err)

	assert.Equal(t, 1, res.Skipped[document.CC08])
	assert.Equal(t, 1, res.Generated[document.CC08])
	assert.Contains(t, s.readOutput(t, "summary.xml"), `value="2000" currency="JPY"`)
}

func TestRunSkipPolicyKeepsInvalidDocument(t *testing.T) {
	s := newSetup(t,
		"patient_id,family,gender\nP1,Sato,1\n",
		"doc_id,claim_amount\nC1,1000\n")
	s.cfg.OnRecordError = config.PolicySkip

	// A cc08 schema that requires an element the generator never emits.
	strict := writeFile(t, filepath.Join(t.TempDir(), "cc08_strict.xsd"), `<?xml version="1.0" encoding="UTF-8"?>
<xs:schema xmlns:xs="http://www.w3.org/2001/XMLSchema"
           targetNamespace="`+document.NamespaceMHLW+`"
           xmlns:tns="`+document.NamespaceMHLW+`"
           elementFormDefault="qualified">
  <xs:element name="checkupClaim">
    <xs:complexType>
      <xs:sequence><xs:element name="mandatoryBlock" type="xs:string"/></xs:sequence>
    </xs:complexType>
  </xs:element>
</xs:schema>`)
	s.cfg.XSDFiles = map[string]string{config.KindCC08: filepath.Base(strict)}
	s.cfg.Paths.XSDSearchRoots = append([]string{filepath.Dir(strict)}, s.cfg.Paths.XSDSearchRoots...)

	res, err := s.run(t)
	require.NoError(t, err)

	assert.Equal(t, 1, res.Skipped[document.CC08])
	assert.Zero(t, res.Generated[document.CC08])

	// The rejected document stays next to the output and out of the archive.
	assert.Contains(t, s.readOutput(t, "cs_C1.invalid.xml"), "checkupClaim")
	assertArchiveMisses(t, res.ArchivePath, "cs_C1")
}

func assertArchiveMisses(t *testing.T, archivePath, fragment string) {
	t.Helper()
	r, err := zip.OpenReader(archivePath)
	require.NoError(t, err)
	defer r.Close()
	for _, f := range r.File {
		assert.NotContains(t, f.Name, fragment)
	}
}
