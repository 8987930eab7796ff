// SPDX-License-Identifier: MPL-2.0

package aggregate

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kenshin-cli/internal/document"
	"kenshin-cli/internal/rule"
)

func writeGenerated(t *testing.T, dir string, kind document.Kind, docID string, fields map[string]string) string {
	t.Helper()
	if fields == nil {
		fields = map[string]string{}
	}
	fields["documentIdExtension"] = docID
	out, err := document.Generate(kind, fields, nil)
	require.NoError(t, err)
	path := filepath.Join(dir, document.FileName(kind, docID))
	require.NoError(t, os.WriteFile(path, out, 0o644))
	return path
}

func TestComputeTotals(t *testing.T) {
	dir := t.TempDir()
	data := []string{
		writeGenerated(t, dir, document.HC08, "A", nil),
		writeGenerated(t, dir, document.HC08, "B", nil),
		writeGenerated(t, dir, document.HG08, "C", nil),
	}
	claims := []string{
		writeGenerated(t, dir, document.CC08, "A", map[string]string{"claimAmountValue": "8250"}),
		writeGenerated(t, dir, document.GC08, "C", map[string]string{"claimAmountValue": "12000"}),
	}

	totals, err := Compute(data, claims)
	require.NoError(t, err)

	assert.Equal(t, 5, totals.RecordCount)
	assert.Equal(t, 3, totals.SubjectCount)
	assert.Equal(t, 20250.0, totals.ClaimAmount)
	assert.Equal(t, 20250.0, totals.CostAmount)
}

func TestIndexFieldsRecordCountMatchesInput(t *testing.T) {
	now := time.Date(2025, 4, 1, 12, 0, 0, 0, time.UTC)
	defaults := map[string]string{
		"senderIdRootOid":     "1.2.392.200119.6.101",
		"senderIdExtension":   "12345678",
		"receiverIdRootOid":   "1.2.392.200119.6.102",
		"receiverIdExtension": "87654321",
	}

	fields, err := IndexFields(Totals{RecordCount: 7}, now, defaults, nil, rule.NewCatalog(nil))
	require.NoError(t, err)

	assert.Equal(t, "7", fields["totalRecordCount"])
	assert.Equal(t, "20250401", fields["creationTime"])
	assert.Equal(t, "12345678", fields["senderIdExtension"])
}

func TestIndexFieldsWithRules(t *testing.T) {
	set := &rule.Set{Rules: []rule.Rule{
		{Kind: rule.KindDirectMapping, Input: "record_count", Output: "totalRecordCount"},
		{Kind: rule.KindDirectMapping, Input: "creation_date", Output: "creationTime"},
		{Kind: rule.KindDefaultValue, Output: "interactionType", Value: "1"},
	}}

	fields, err := IndexFields(Totals{RecordCount: 3}, time.Now(), nil, set, rule.NewCatalog(nil))
	require.NoError(t, err)

	assert.Equal(t, "3", fields["totalRecordCount"])
	assert.Equal(t, "1", fields["interactionType"])
}

func TestSummaryFieldsRoundsAmounts(t *testing.T) {
	totals := Totals{SubjectCount: 3, CostAmount: 20249.6, ClaimAmount: 20249.6}

	fields, err := SummaryFields(totals, nil, nil, rule.NewCatalog(nil))
	require.NoError(t, err)

	assert.Equal(t, "3", fields["totalSubjectCountValue"])
	assert.Equal(t, "20250", fields["totalClaimAmountValue"])
	assert.Equal(t, "20250", fields["totalCostAmountValue"])
	assert.Equal(t, "20250", fields["totalPaymentAmountValue"])
}

func TestSummaryFieldsRoundsNegativeAmounts(t *testing.T) {
	totals := Totals{SubjectCount: 1, CostAmount: -1500.6, ClaimAmount: -1500.6}

	fields, err := SummaryFields(totals, nil, nil, rule.NewCatalog(nil))
	require.NoError(t, err)

	assert.Equal(t, "-1501", fields["totalClaimAmountValue"])
	assert.Equal(t, "-1501", fields["totalCostAmountValue"])
}

func TestListGeneratedSplitsByKind(t *testing.T) {
	dir := t.TempDir()
	writeGenerated(t, dir, document.HC08, "A", nil)
	writeGenerated(t, dir, document.GC08, "B", nil)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "hc_cda_C.invalid.xml"), []byte("<x/>"), 0o644))

	data, claims, err := ListGenerated(dir)
	require.NoError(t, err)

	require.Len(t, data, 1)
	require.Len(t, claims, 1)
	assert.Equal(t, filepath.Join(dir, "hc_cda_A.xml"), data[0])
	assert.Equal(t, filepath.Join(dir, "gs_B.xml"), claims[0])
}
