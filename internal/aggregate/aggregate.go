// SPDX-License-Identifier: MPL-2.0

// Package aggregate derives the index and summary documents from the full
// set of generated per-record documents. It runs only after every record
// document exists; the sums are commutative over file order, and the
// produced fields are deterministic for identical input.
package aggregate

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"kenshin-cli/internal/csvsource"
	"kenshin-cli/internal/document"
	"kenshin-cli/internal/record"
	"kenshin-cli/internal/rule"
)

// Totals are the values read back out of the generated documents.
type Totals struct {
	// RecordCount is the number of generated data and claim documents.
	RecordCount int
	// SubjectCount is the number of CDA documents (one subject each).
	SubjectCount int
	// CostAmount and ClaimAmount sum the settlement claim amounts. The
	// submission format reports cost as the claimed total.
	CostAmount  float64
	ClaimAmount float64
}

// Compute scans the generated files and accumulates the totals.
func Compute(dataFiles, claimFiles []string) (Totals, error) {
	t := Totals{RecordCount: len(dataFiles) + len(claimFiles)}

	for _, path := range dataFiles {
		f, err := os.Open(path)
		if err != nil {
			return Totals{}, fmt.Errorf("aggregate data file: %w", err)
		}
		t.SubjectCount += document.SubjectCount(f)
		f.Close()
	}
	for _, path := range claimFiles {
		f, err := os.Open(path)
		if err != nil {
			return Totals{}, fmt.Errorf("aggregate claim file: %w", err)
		}
		amount, ok := document.ClaimAmount(f)
		f.Close()
		if !ok {
			continue
		}
		t.ClaimAmount += amount
		t.CostAmount += amount
	}
	return t, nil
}

// IndexFields builds the index document's fields: the totals become the
// rule input row, the kind's defaults seed the context, and the index rule
// set (when configured) maps everything else. Without rules the totals map
// straight onto creationTime and totalRecordCount.
func IndexFields(t Totals, now time.Time, defaults map[string]string, set *rule.Set, catalog *rule.Catalog) (map[string]string, error) {
	row := map[string]string{
		"creation_date": now.UTC().Format("20060102"),
		"record_count":  strconv.Itoa(t.RecordCount),
	}
	fields, err := applyAggregateRules(document.Index, row, defaults, set, catalog)
	if err != nil {
		return nil, err
	}
	if set == nil {
		fields["creationTime"] = row["creation_date"]
		fields["totalRecordCount"] = row["record_count"]
	}
	return fields, nil
}

// SummaryFields builds the summary document's fields from the totals, the
// same way IndexFields does for the index.
func SummaryFields(t Totals, defaults map[string]string, set *rule.Set, catalog *rule.Catalog) (map[string]string, error) {
	claim := strconv.Itoa(int(math.Round(t.ClaimAmount)))
	cost := strconv.Itoa(int(math.Round(t.CostAmount)))
	row := map[string]string{
		"total_subjects": strconv.Itoa(t.SubjectCount),
		"total_cost":     cost,
		"total_claim":    claim,
	}
	fields, err := applyAggregateRules(document.Summary, row, defaults, set, catalog)
	if err != nil {
		return nil, err
	}
	if set == nil {
		fields["totalSubjectCountValue"] = row["total_subjects"]
		fields["totalCostAmountValue"] = cost
		fields["totalPaymentAmountValue"] = claim
		fields["totalClaimAmountValue"] = claim
	}
	return fields, nil
}

func applyAggregateRules(kind document.Kind, row, defaults map[string]string, set *rule.Set, catalog *rule.Catalog) (map[string]string, error) {
	b := record.NewBuilder(emptySet(set), catalog, nil, document.Fields(kind), defaults)
	rec, err := b.BuildRecord(record.Group{Key: string(kind), Rows: []csvsource.Row{row}})
	if err != nil {
		return nil, err
	}
	return rec.Fields, nil
}

func emptySet(set *rule.Set) *rule.Set {
	if set == nil {
		return &rule.Set{}
	}
	return set
}

// ListGenerated splits a directory of generated documents into data and
// claim files by their kind prefix, sorted for deterministic aggregation.
func ListGenerated(dir string) (dataFiles, claimFiles []string, err error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, nil, err
	}
	for _, e := range entries {
		if e.IsDir() || strings.HasSuffix(e.Name(), ".invalid.xml") {
			continue
		}
		kind, ok := document.KindForFile(e.Name())
		if !ok {
			continue
		}
		path := filepath.Join(dir, e.Name())
		if kind.IsClaim() {
			claimFiles = append(claimFiles, path)
		} else if kind == document.HC08 || kind == document.HG08 {
			dataFiles = append(dataFiles, path)
		}
	}
	return dataFiles, claimFiles, nil
}
