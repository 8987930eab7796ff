// SPDX-License-Identifier: MPL-2.0

package sampletest

import (
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kenshin-cli/internal/config"
)

func writeCSV(t *testing.T, dir, name, body string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(body), 0o644))
}

func TestRunConvertsFirstN(t *testing.T) {
	in := t.TempDir()
	out := t.TempDir()
	writeCSV(t, in, "a.csv", "id,name\n1,Sato\n")
	writeCSV(t, in, "b.csv", "id,name\n2,Suzuki\n")
	writeCSV(t, in, "c.csv", "id,name\n3,Tanaka\n")
	writeCSV(t, in, "notes.txt", "not csv")

	cfg := config.SampleTest{Dirs: []string{in}, OutputDir: out}
	require.NoError(t, Run(cfg, 2, log.New(io.Discard)))

	entries, err := os.ReadDir(out)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "a.xml", entries[0].Name())
	assert.Equal(t, "b.xml", entries[1].Name())

	data, err := os.ReadFile(filepath.Join(out, "a.xml"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "<record>\n    <id>1</id>\n    <name>Sato</name>")
}

func TestRunEscapesAndSanitizes(t *testing.T) {
	in := t.TempDir()
	out := t.TempDir()
	writeCSV(t, in, "odd.csv", "item no.,desc\n1,a<b\n")

	cfg := config.SampleTest{Dirs: []string{in}, OutputDir: out}
	require.NoError(t, Run(cfg, 0, log.New(io.Discard)))

	data, err := os.ReadFile(filepath.Join(out, "odd.xml"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "<item_no_>1</item_no_>")
	assert.Contains(t, string(data), "<desc>a&lt;b</desc>")
}

func TestRunRequiresConfiguration(t *testing.T) {
	err := Run(config.SampleTest{}, 1, log.New(io.Discard))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no input directories")
}
