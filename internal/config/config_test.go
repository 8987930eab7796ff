// SPDX-License-Identifier: MPL-2.0

package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kenshin-cli/internal/issue"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

const minimalConfig = `{
  "paths": {
    "output_xml_dir": "out/xml",
    "archive_output_dir": "out/archives",
    "xsd_search_roots": ["xsd/official", "xsd/fallback"]
  },
  "csv_profiles": {
    "default": {"delimiter": ",", "encoding": "utf-8", "header": true}
  },
  "inputs": {
    "hc08": {"csv": "in/hc.csv", "profile": "default", "group_by": ["patient_id"]}
  },
  "rule_files": {"hc08": "rules/hc08.json"},
  "xsd_files": {"hc08": "hc08_V08.xsd", "index": "ix08_V08.xsd", "summary": "su08_V08.xsd"}
}`

func TestLoadMinimal(t *testing.T) {
	cfg, err := Load(writeConfig(t, minimalConfig))
	require.NoError(t, err)

	assert.Equal(t, PolicyAbort, cfg.OnRecordError)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, []string{"xsd/official", "xsd/fallback"}, cfg.Paths.XSDSearchRoots)
	assert.Equal(t, []string{"hc08"}, cfg.RecordKinds())
	assert.Equal(t, []string{"patient_id"}, cfg.Inputs["hc08"].GroupBy)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.json"))

	var ce *issue.ConfigError
	require.True(t, errors.As(err, &ce))
}

func TestLoadMalformedJSON(t *testing.T) {
	_, err := Load(writeConfig(t, `{"paths": `))

	var ce *issue.ConfigError
	require.True(t, errors.As(err, &ce))
}

func TestLoadRejectsUnknownKind(t *testing.T) {
	body := `{
  "paths": {"output_xml_dir": "o", "archive_output_dir": "a", "xsd_search_roots": ["x"]},
  "inputs": {"hc99": {"csv": "in.csv"}},
  "rule_files": {"hc08": "r.json"},
  "xsd_files": {"hc08": "hc08_V08.xsd"}
}`
	_, err := Load(writeConfig(t, body))

	var ce *issue.ConfigError
	require.True(t, errors.As(err, &ce))
	assert.Contains(t, err.Error(), "hc99")
}

func TestLoadRejectsBadPolicy(t *testing.T) {
	body := `{
  "paths": {"output_xml_dir": "o", "archive_output_dir": "a", "xsd_search_roots": ["x"]},
  "inputs": {"hc08": {"csv": "in.csv"}},
  "rule_files": {"hc08": "r.json"},
  "xsd_files": {"hc08": "hc08_V08.xsd"},
  "on_record_error": "ignore"
}`
	_, err := Load(writeConfig(t, body))

	var ce *issue.ConfigError
	require.True(t, errors.As(err, &ce))
}

func TestLoadPreservesMapKeyCasing(t *testing.T) {
	body := `{
  "paths": {"output_xml_dir": "o", "archive_output_dir": "a", "xsd_search_roots": ["x"]},
  "inputs": {"hc08": {"csv": "in.csv"}},
  "rule_files": {"hc08": "r.json"},
  "xsd_files": {"hc08": "hc08_V08.xsd"},
  "lookup_tables": {"gender_code": {"M": "1", "F": "2"}},
  "hc08_defaults": {"documentIdRootOid": "1.2.392.200119.6.1"}
}`
	cfg, err := Load(writeConfig(t, body))
	require.NoError(t, err)

	assert.Equal(t, "1", cfg.LookupTables["gender_code"]["M"])
	assert.Equal(t, "2", cfg.LookupTables["gender_code"]["F"])
	assert.Equal(t, "1.2.392.200119.6.1", cfg.HC08Defaults["documentIdRootOid"])
	assert.NotContains(t, cfg.HC08Defaults, "documentidrootoid")
}

func TestLoadRequiresRuleFilePerInput(t *testing.T) {
	body := `{
  "paths": {"output_xml_dir": "o", "archive_output_dir": "a", "xsd_search_roots": ["x"]},
  "inputs": {"hc08": {"csv": "hc.csv"}, "cc08": {"csv": "cc.csv"}},
  "rule_files": {"hc08": "r.json"},
  "xsd_files": {"hc08": "hc08_V08.xsd", "cc08": "cc08_V08.xsd"}
}`
	_, err := Load(writeConfig(t, body))

	var ce *issue.ConfigError
	require.True(t, errors.As(err, &ce))
	assert.Contains(t, err.Error(), "cc08")
}

func TestProfileFallback(t *testing.T) {
	cfg, err := Load(writeConfig(t, minimalConfig))
	require.NoError(t, err)

	p := cfg.Profile("nonexistent")
	assert.Equal(t, ",", p.Delimiter)
	assert.True(t, p.Header)
}

func TestOverrideProfile(t *testing.T) {
	cfg, err := Load(writeConfig(t, minimalConfig))
	require.NoError(t, err)

	cfg.OverrideProfile("legacy_sjis")

	assert.Equal(t, "legacy_sjis", cfg.Inputs["hc08"].Profile)
}

func TestDefaultsFor(t *testing.T) {
	body := `{
  "paths": {"output_xml_dir": "o", "archive_output_dir": "a", "xsd_search_roots": ["x"]},
  "inputs": {"gc08": {"csv": "in.csv"}},
  "rule_files": {"gc08": "r.json"},
  "xsd_files": {"gc08": "gc08_V08.xsd"},
  "gc08_defaults": {"documentIdRootOid": "1.2.392.200119.6.1"}
}`
	cfg, err := Load(writeConfig(t, body))
	require.NoError(t, err)

	assert.Equal(t, "1.2.392.200119.6.1", cfg.DefaultsFor("gc08")["documentIdRootOid"])
	assert.Nil(t, cfg.DefaultsFor("hc08"))
}
