// SPDX-License-Identifier: MPL-2.0

package validate

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kenshin-cli/internal/issue"
	"kenshin-cli/internal/schema"
)

func searchPathWith(t *testing.T, name, body string) *schema.SearchPath {
	t.Helper()
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, name), []byte(body), 0o644))
	return schema.NewSearchPath([]string{root})
}

const recordSchema = `<?xml version="1.0" encoding="UTF-8"?>
<xs:schema xmlns:xs="http://www.w3.org/2001/XMLSchema">
  <xs:element name="record">
    <xs:complexType>
      <xs:sequence>
        <xs:element name="id" type="xs:string"/>
      </xs:sequence>
    </xs:complexType>
  </xs:element>
</xs:schema>`

func TestValidateCleanDocument(t *testing.T) {
	v := New(searchPathWith(t, "record.xsd", recordSchema))

	err := v.Validate(strings.NewReader(`<record><id>A</id></record>`), "record.xsd", "hc_cda_A.xml")
	assert.NoError(t, err)
}

func TestValidateViolationsNameTheDocument(t *testing.T) {
	v := New(searchPathWith(t, "record.xsd", recordSchema))

	err := v.Validate(strings.NewReader(`<record/>`), "record.xsd", "hc_cda_A.xml")

	var ve *issue.ValidationError
	require.True(t, errors.As(err, &ve))
	assert.Equal(t, "hc_cda_A.xml", ve.Document)
	assert.Equal(t, "record.xsd", ve.SchemaName)
	require.NotEmpty(t, ve.Violations)
	assert.Equal(t, "hc_cda_A.xml", ve.Violations[0].File)
}

func TestValidateUnknownSchemaPassesThrough(t *testing.T) {
	v := New(schema.NewSearchPath([]string{t.TempDir()}))

	err := v.Validate(strings.NewReader(`<record/>`), "missing.xsd", "doc.xml")

	var sre *issue.SchemaResolutionError
	require.True(t, errors.As(err, &sre))
}
