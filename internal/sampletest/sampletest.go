// SPDX-License-Identifier: MPL-2.0

// Package sampletest converts a handful of CSV files into a naive XML
// rendering. It exists to smoke-test new input deliveries before rule
// files and schemas are written for them.
package sampletest

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/charmbracelet/log"

	"kenshin-cli/internal/config"
	"kenshin-cli/internal/csvsource"
)

// Run converts up to numFiles CSV files from each configured directory
// into <records> XML files in the output directory. numFiles <= 0 means
// all files.
func Run(cfg config.SampleTest, numFiles int, logger *log.Logger) error {
	if len(cfg.Dirs) == 0 {
		return fmt.Errorf("sample test: no input directories configured")
	}
	if cfg.OutputDir == "" {
		return fmt.Errorf("sample test: no output directory configured")
	}
	if err := os.MkdirAll(cfg.OutputDir, 0o755); err != nil {
		return fmt.Errorf("sample test: %w", err)
	}

	profile := config.CSVProfile{Delimiter: ",", Encoding: "utf-8", Header: true, SkipComments: true}
	for _, dir := range cfg.Dirs {
		files, err := listCSVs(dir, numFiles)
		if err != nil {
			return err
		}
		for _, file := range files {
			if err := convertOne(file, cfg.OutputDir, profile); err != nil {
				return err
			}
			logger.Info("sample converted", "csv", file)
		}
	}
	return nil
}

// listCSVs returns the directory's CSV files in name order, truncated to
// limit when positive.
func listCSVs(dir string, limit int) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("sample test: %w", err)
	}
	var files []string
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".csv") {
			continue
		}
		files = append(files, filepath.Join(dir, e.Name()))
	}
	sort.Strings(files)
	if limit > 0 && len(files) > limit {
		files = files[:limit]
	}
	return files, nil
}

func convertOne(csvPath, outDir string, profile config.CSVProfile) error {
	res, err := csvsource.ReadFile(csvPath, profile)
	if err != nil {
		return err
	}

	base := strings.TrimSuffix(filepath.Base(csvPath), ".csv")
	out := filepath.Join(outDir, base+".xml")
	return os.WriteFile(out, renderRecords(res), 0o644)
}

// renderRecords writes one <record> per row with the header columns as
// element names, in header order so diffs between runs stay stable.
func renderRecords(res *csvsource.Result) []byte {
	var buf bytes.Buffer
	buf.WriteString(xml.Header)
	buf.WriteString("<records>\n")
	for _, row := range res.Rows {
		buf.WriteString("  <record>\n")
		for _, col := range res.Header {
			name := elementName(col)
			buf.WriteString("    <" + name + ">")
			xml.EscapeText(&buf, []byte(row[col]))
			buf.WriteString("</" + name + ">\n")
		}
		buf.WriteString("  </record>\n")
	}
	buf.WriteString("</records>\n")
	return buf.Bytes()
}

// elementName turns a CSV column header into a safe XML element name.
func elementName(col string) string {
	var b strings.Builder
	for i, r := range col {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r == '_':
			b.WriteRune(r)
		case r >= '0' && r <= '9':
			if i == 0 {
				b.WriteByte('_')
			}
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	if b.Len() == 0 {
		return "column"
	}
	return b.String()
}
