// SPDX-License-Identifier: MPL-2.0

package csvsource

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/text/encoding/japanese"
	"golang.org/x/text/transform"

	"kenshin-cli/internal/config"
	"kenshin-cli/internal/issue"
)

// Row is one decoded CSV row keyed by column name. Cells beyond the header
// are dropped; missing trailing cells are absent from the map.
type Row map[string]string

// Result is the decoded content of one CSV file.
type Result struct {
	// Header is the declared column order.
	Header []string
	Rows   []Row
}

// ReadFile decodes the file at path using the given profile.
func ReadFile(path string, profile config.CSVProfile) (*Result, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open csv %s: %w", path, err)
	}
	defer f.Close()

	res, err := Read(f, profile)
	if err != nil {
		var cse *issue.CsvStructureError
		if errors.As(err, &cse) {
			cse.File = path
			return nil, cse
		}
		return nil, fmt.Errorf("read csv %s: %w", path, err)
	}
	return res, nil
}

// Read decodes CSV content from r using the given profile.
func Read(r io.Reader, profile config.CSVProfile) (*Result, error) {
	if profile.Encoding == "shift_jis" {
		r = transform.NewReader(r, japanese.ShiftJIS.NewDecoder())
	}

	cr := csv.NewReader(r)
	cr.Comma = delimiter(profile)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true
	if profile.SkipComments {
		cr.Comment = '#'
	}

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse csv: %w", err)
	}

	header := profile.Columns
	if profile.Header {
		if len(records) == 0 {
			return nil, fmt.Errorf("parse csv: empty file, header expected")
		}
		header = trimAll(records[0])
		records = records[1:]
	}
	if len(header) == 0 {
		return nil, fmt.Errorf("parse csv: no header row and no explicit column list in profile")
	}

	if missing := missingColumns(header, profile.RequiredColumns); len(missing) > 0 {
		return nil, &issue.CsvStructureError{Missing: missing}
	}

	rows := make([]Row, 0, len(records))
	for _, rec := range records {
		row := make(Row, len(header))
		for i, name := range header {
			if i < len(rec) {
				row[name] = rec[i]
			}
		}
		rows = append(rows, row)
	}
	return &Result{Header: header, Rows: rows}, nil
}

func delimiter(profile config.CSVProfile) rune {
	if profile.Delimiter == "" {
		return ','
	}
	return []rune(profile.Delimiter)[0]
}

func trimAll(cells []string) []string {
	out := make([]string, len(cells))
	for i, c := range cells {
		out[i] = strings.TrimSpace(c)
	}
	return out
}

func missingColumns(header, required []string) []string {
	have := make(map[string]struct{}, len(header))
	for _, h := range header {
		have[h] = struct{}{}
	}
	var missing []string
	for _, r := range required {
		if _, ok := have[r]; !ok {
			missing = append(missing, r)
		}
	}
	return missing
}
