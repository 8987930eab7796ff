// SPDX-License-Identifier: MPL-2.0

package config

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"

	"kenshin-cli/internal/issue"
)

// DefaultConfigFile is the configuration path used when --config is not given.
const DefaultConfigFile = "config_rules/config.json"

// RecordErrorPolicy selects what happens when a single record fails rule
// application or generation-time validation.
type RecordErrorPolicy string

const (
	// PolicyAbort fails the whole stage on the first bad record. This is the
	// default: for a regulatory submission, silent data loss is worse than a
	// failed run.
	PolicyAbort RecordErrorPolicy = "abort"
	// PolicySkip logs the record's error and continues with the rest.
	PolicySkip RecordErrorPolicy = "skip"
)

// Document kinds accepted in the inputs / rule_files / xsd_files blocks.
const (
	KindHC08    = "hc08"
	KindHG08    = "hg08"
	KindCC08    = "cc08"
	KindGC08    = "gc08"
	KindIndex   = "index"
	KindSummary = "summary"
)

// recordKinds are the per-record document kinds that consume CSV input.
var recordKinds = []string{KindHC08, KindHG08, KindCC08, KindGC08}

// allKinds additionally covers the aggregate documents.
var allKinds = append([]string{KindIndex, KindSummary}, recordKinds...)

type (
	// Config is the fully-parsed configuration document.
	Config struct {
		Paths        Paths                        `mapstructure:"paths" validate:"required"`
		CSVProfiles  map[string]CSVProfile        `mapstructure:"csv_profiles"`
		Inputs       map[string]Input             `mapstructure:"inputs" validate:"required,dive"`
		RuleFiles    map[string]string            `mapstructure:"rule_files" validate:"required"`
		XSDFiles     map[string]string            `mapstructure:"xsd_files" validate:"required"`
		LookupTables map[string]map[string]string `mapstructure:"lookup_tables"`

		// OIDCatalogFile is an external JSON lookup table merged into the
		// catalog under the reserved name "$oid_catalog$".
		OIDCatalogFile string `mapstructure:"oid_catalog_file"`

		HC08Defaults    map[string]string `mapstructure:"hc08_defaults"`
		HG08Defaults    map[string]string `mapstructure:"hg08_defaults"`
		CC08Defaults    map[string]string `mapstructure:"cc08_defaults"`
		GC08Defaults    map[string]string `mapstructure:"gc08_defaults"`
		IndexDefaults   map[string]string `mapstructure:"index_defaults"`
		SummaryDefaults map[string]string `mapstructure:"summary_defaults"`

		OnRecordError RecordErrorPolicy `mapstructure:"on_record_error" validate:"omitempty,oneof=abort skip"`
		Logging       Logging           `mapstructure:"logging"`
		SampleTest    SampleTest        `mapstructure:"sample_test"`
	}

	// Paths groups the filesystem locations the pipeline reads and writes.
	Paths struct {
		OutputXMLDir     string   `mapstructure:"output_xml_dir" validate:"required"`
		ArchiveOutputDir string   `mapstructure:"archive_output_dir" validate:"required"`
		// XSDSearchRoots is the schema search path, highest precedence first.
		XSDSearchRoots []string `mapstructure:"xsd_search_roots" validate:"required,min=1"`
		// JSONOutputDir, when set, receives a JSON dump of the parsed rows of
		// each input CSV for diagnosis.
		JSONOutputDir string `mapstructure:"json_output_dir"`
	}

	// CSVProfile describes how one family of CSV inputs is decoded.
	CSVProfile struct {
		Delimiter       string   `mapstructure:"delimiter"`
		Encoding        string   `mapstructure:"encoding" validate:"omitempty,oneof=utf-8 shift_jis"`
		Header          bool     `mapstructure:"header"`
		// Columns supplies explicit column names for headerless files.
		Columns         []string `mapstructure:"columns"`
		RequiredColumns []string `mapstructure:"required_columns"`
		SkipComments    bool     `mapstructure:"skip_comments"`
	}

	// Input binds one document kind to its CSV source.
	Input struct {
		CSV     string   `mapstructure:"csv" validate:"required"`
		Profile string   `mapstructure:"profile"`
		// GroupBy names the grouping key fields for multi-row entities.
		// Empty means one record per row.
		GroupBy []string `mapstructure:"group_by"`
	}

	// Logging configures the application logger.
	Logging struct {
		Level string `mapstructure:"level" validate:"omitempty,oneof=debug info warn error"`
	}

	// SampleTest configures the lightweight sample conversion mode.
	SampleTest struct {
		Dirs      []string `mapstructure:"dirs"`
		OutputDir string   `mapstructure:"output_dir"`
	}
)

// Load reads and validates the configuration document at path.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("json")

	if err := v.ReadInConfig(); err != nil {
		return nil, &issue.ConfigError{Path: path, Reason: "cannot read configuration", Cause: err}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, &issue.ConfigError{Path: path, Reason: "cannot decode configuration", Cause: err}
	}
	if err := cfg.restoreKeyCasing(path); err != nil {
		return nil, err
	}

	if cfg.OnRecordError == "" {
		cfg.OnRecordError = PolicyAbort
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}

	if err := validator.New().Struct(&cfg); err != nil {
		return nil, &issue.ConfigError{Path: path, Reason: "invalid configuration", Cause: err}
	}
	if err := cfg.checkKinds(path); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// restoreKeyCasing re-decodes the blocks whose map keys are data, not
// configuration names. Viper lowercases map keys during Unmarshal, which
// would mangle camelCase default field names and literal lookup keys, so
// those blocks are taken from a plain JSON decode of the same file.
func (c *Config) restoreKeyCasing(path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return &issue.ConfigError{Path: path, Reason: "cannot read configuration", Cause: err}
	}
	var cs struct {
		LookupTables    map[string]map[string]string `json:"lookup_tables"`
		HC08Defaults    map[string]string            `json:"hc08_defaults"`
		HG08Defaults    map[string]string            `json:"hg08_defaults"`
		CC08Defaults    map[string]string            `json:"cc08_defaults"`
		GC08Defaults    map[string]string            `json:"gc08_defaults"`
		IndexDefaults   map[string]string            `json:"index_defaults"`
		SummaryDefaults map[string]string            `json:"summary_defaults"`
	}
	if err := json.Unmarshal(raw, &cs); err != nil {
		return &issue.ConfigError{Path: path, Reason: "cannot decode configuration", Cause: err}
	}
	c.LookupTables = cs.LookupTables
	c.HC08Defaults = cs.HC08Defaults
	c.HG08Defaults = cs.HG08Defaults
	c.CC08Defaults = cs.CC08Defaults
	c.GC08Defaults = cs.GC08Defaults
	c.IndexDefaults = cs.IndexDefaults
	c.SummaryDefaults = cs.SummaryDefaults
	return nil
}

// checkKinds rejects unknown document kinds so that a misspelled block fails
// at load time instead of producing an empty run.
func (c *Config) checkKinds(path string) error {
	check := func(block string, keys []string, allowed []string) error {
		for _, k := range keys {
			if !contains(allowed, k) {
				return &issue.ConfigError{
					Path:   path,
					Reason: fmt.Sprintf("%s: unknown document kind %q (expected one of %s)", block, k, strings.Join(allowed, ", ")),
				}
			}
		}
		return nil
	}
	if err := check("inputs", sortedKeys(c.Inputs), recordKinds); err != nil {
		return err
	}
	if err := check("rule_files", sortedKeys(c.RuleFiles), allKinds); err != nil {
		return err
	}
	if err := check("xsd_files", sortedKeys(c.XSDFiles), allKinds); err != nil {
		return err
	}
	for _, k := range sortedKeys(c.Inputs) {
		if c.RuleFiles[k] == "" {
			return &issue.ConfigError{
				Path:   path,
				Reason: fmt.Sprintf("rule_files: no rule file for input kind %q", k),
			}
		}
	}
	return nil
}

// Profile returns the named CSV profile, falling back to the "default"
// profile and finally to comma-separated UTF-8 with a header row.
func (c *Config) Profile(name string) CSVProfile {
	if p, ok := c.CSVProfiles[name]; ok {
		return p
	}
	if p, ok := c.CSVProfiles["default"]; ok {
		return p
	}
	return CSVProfile{Delimiter: ",", Encoding: "utf-8", Header: true, SkipComments: true}
}

// OverrideProfile forces every input to decode with the named CSV profile,
// replacing whatever profile the input declares.
func (c *Config) OverrideProfile(name string) {
	for k, in := range c.Inputs {
		in.Profile = name
		c.Inputs[k] = in
	}
}

// DefaultsFor returns the literal fallback values for a document kind.
func (c *Config) DefaultsFor(kind string) map[string]string {
	switch kind {
	case KindHC08:
		return c.HC08Defaults
	case KindHG08:
		return c.HG08Defaults
	case KindCC08:
		return c.CC08Defaults
	case KindGC08:
		return c.GC08Defaults
	case KindIndex:
		return c.IndexDefaults
	case KindSummary:
		return c.SummaryDefaults
	}
	return nil
}

// RecordKinds lists the per-record document kinds that have a configured
// input, in fixed hc08/hg08/cc08/gc08 order so runs are deterministic.
func (c *Config) RecordKinds() []string {
	var kinds []string
	for _, k := range recordKinds {
		if _, ok := c.Inputs[k]; ok {
			kinds = append(kinds, k)
		}
	}
	return kinds
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
