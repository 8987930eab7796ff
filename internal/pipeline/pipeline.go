// SPDX-License-Identifier: MPL-2.0

// Package pipeline runs the full conversion: CSV inputs through rule
// application into regulator XML, aggregate documents, schema validation,
// and the final submission archive.
package pipeline

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"

	"kenshin-cli/internal/archive"
	"kenshin-cli/internal/config"
	"kenshin-cli/internal/csvsource"
	"kenshin-cli/internal/document"
	"kenshin-cli/internal/issue"
	"kenshin-cli/internal/record"
	"kenshin-cli/internal/rule"
	"kenshin-cli/internal/schema"
	"kenshin-cli/internal/validate"
)

// Result summarizes a completed run.
type Result struct {
	// ArchivePath is the final submission archive.
	ArchivePath string
	// Generated counts the record documents written per kind.
	Generated map[document.Kind]int
	// Skipped counts records dropped under the skip policy, per kind.
	Skipped map[document.Kind]int
}

// Pipeline wires the conversion stages together. Build one with New and
// run it once; a Pipeline is not reused across runs.
type Pipeline struct {
	cfg       *config.Config
	logger    *log.Logger
	search    *schema.SearchPath
	validator *validate.Validator
	catalog   *rule.Catalog

	// now is the run timestamp source, replaceable in tests.
	now func() time.Time
}

// New prepares a pipeline from a loaded configuration. The lookup catalog
// is assembled here so a missing OID catalog file fails before any CSV is
// read.
func New(cfg *config.Config, logger *log.Logger) (*Pipeline, error) {
	catalog := rule.NewCatalog(cfg.LookupTables)
	if cfg.OIDCatalogFile != "" {
		if err := catalog.LoadOIDCatalog(cfg.OIDCatalogFile); err != nil {
			return nil, err
		}
	}
	search := schema.NewSearchPath(cfg.Paths.XSDSearchRoots)
	return &Pipeline{
		cfg:       cfg,
		logger:    logger,
		search:    search,
		validator: validate.New(search),
		catalog:   catalog,
		now:       time.Now,
	}, nil
}

// Run executes the whole pipeline and returns the archive it produced.
// Record kinds convert in parallel; the aggregate, packaging, and
// verification stages run after all of them finish.
func (p *Pipeline) Run(ctx context.Context) (*Result, error) {
	for _, dir := range []string{p.cfg.Paths.OutputXMLDir, p.cfg.Paths.ArchiveOutputDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create output directory: %w", err)
		}
	}
	if err := p.clearGenerated(); err != nil {
		return nil, err
	}

	res := &Result{
		Generated: make(map[document.Kind]int),
		Skipped:   make(map[document.Kind]int),
	}

	g, ctx := errgroup.WithContext(ctx)
	outcomes := make([]kindOutcome, len(p.cfg.RecordKinds()))
	for i, kind := range p.cfg.RecordKinds() {
		g.Go(func() error {
			out, err := p.processKind(ctx, document.Kind(kind))
			if err != nil {
				return err
			}
			outcomes[i] = out
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	for _, out := range outcomes {
		res.Generated[out.kind] = out.generated
		res.Skipped[out.kind] = out.skipped
	}

	indexPath, summaryPath, err := p.buildAggregates()
	if err != nil {
		return nil, err
	}

	archivePath, err := p.pack(indexPath, summaryPath)
	if err != nil {
		return nil, err
	}

	p.logger.Info("verifying archive", "archive", filepath.Base(archivePath))
	if err := archive.VerifyArchive(archivePath); err != nil {
		return nil, err
	}

	res.ArchivePath = archivePath
	return res, nil
}

// clearGenerated removes generated documents left over from an earlier run
// so a reused output directory cannot leak stale records into the
// aggregates and the archive.
func (p *Pipeline) clearGenerated() error {
	dir := p.cfg.Paths.OutputXMLDir
	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("scan output directory: %w", err)
	}
	removed := 0
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		_, generated := document.KindForFile(e.Name())
		if !generated && !strings.HasSuffix(e.Name(), ".invalid.xml") {
			continue
		}
		if err := os.Remove(filepath.Join(dir, e.Name())); err != nil {
			return fmt.Errorf("remove stale output %s: %w", e.Name(), err)
		}
		removed++
	}
	if removed > 0 {
		p.logger.Warn("removed stale generated documents", "dir", dir, "count", removed)
	}
	return nil
}

type kindOutcome struct {
	kind      document.Kind
	generated int
	skipped   int
}

// processKind converts one document kind's CSV into validated XML files in
// the output directory.
func (p *Pipeline) processKind(ctx context.Context, kind document.Kind) (kindOutcome, error) {
	out := kindOutcome{kind: kind}
	logger := p.logger.With("kind", string(kind))

	input := p.cfg.Inputs[string(kind)]
	rows, err := p.readInput(kind, input)
	if err != nil {
		return out, err
	}
	logger.Info("read input", "csv", input.CSV, "rows", len(rows))

	builder, err := p.builderFor(kind, input.GroupBy)
	if err != nil {
		return out, err
	}
	groups, err := builder.Groups(rows)
	if err != nil {
		return out, err
	}

	for _, grp := range groups {
		if err := ctx.Err(); err != nil {
			return out, err
		}
		skipped, err := p.emitRecord(builder, kind, grp, logger)
		if err != nil {
			return out, err
		}
		if skipped {
			out.skipped++
		} else {
			out.generated++
		}
	}
	logger.Info("kind complete", "generated", out.generated, "skipped", out.skipped)
	return out, nil
}

// emitRecord builds, generates, validates, and writes a single record.
// Under the skip policy a bad record is logged and reported as skipped;
// under abort its error propagates.
func (p *Pipeline) emitRecord(builder *record.Builder, kind document.Kind, grp record.Group, logger *log.Logger) (skipped bool, err error) {
	rec, err := builder.BuildRecord(grp)
	if err != nil {
		if p.cfg.OnRecordError == config.PolicySkip {
			logger.Warn("skipping record", "record", grp.Key, "err", err)
			return true, nil
		}
		return false, err
	}

	xmlBytes, err := document.Generate(kind, rec.Fields, rec.Sequences)
	if err != nil {
		return false, fmt.Errorf("record %q: %w", rec.Key, err)
	}

	name := document.FileName(kind, document.DocumentID(rec.Fields))
	if err := p.validator.Validate(bytes.NewReader(xmlBytes), p.schemaFor(kind), name); err != nil {
		if p.cfg.OnRecordError == config.PolicySkip {
			// Keep the rejected document next to the output for diagnosis.
			invalid := strings.TrimSuffix(name, ".xml") + ".invalid.xml"
			if werr := p.writeOutput(invalid, xmlBytes); werr != nil {
				return false, werr
			}
			logger.Warn("skipping invalid document", "file", invalid, "err", err)
			return true, nil
		}
		return false, err
	}

	return false, p.writeOutput(name, xmlBytes)
}

// readInput decodes the kind's CSV and, when configured, dumps the parsed
// rows as JSON for diagnosis.
func (p *Pipeline) readInput(kind document.Kind, input config.Input) ([]csvsource.Row, error) {
	res, err := csvsource.ReadFile(input.CSV, p.cfg.Profile(input.Profile))
	if err != nil {
		return nil, err
	}
	if dir := p.cfg.Paths.JSONOutputDir; dir != "" {
		if err := dumpRows(dir, kind, res.Rows); err != nil {
			return nil, err
		}
	}
	return res.Rows, nil
}

func (p *Pipeline) builderFor(kind document.Kind, groupBy []string) (*record.Builder, error) {
	declared := document.Fields(kind)
	set, err := p.ruleSet(string(kind), declared)
	if err != nil {
		return nil, err
	}
	if set == nil {
		return nil, &issue.ConfigError{Reason: fmt.Sprintf("rule_files: no rule file for input kind %q", kind)}
	}
	return record.NewBuilder(set, p.catalog, groupBy, declared, p.cfg.DefaultsFor(string(kind))), nil
}

// ruleSet loads the kind's rule file. Aggregate kinds may omit theirs, in
// which case the caller falls back to direct field mapping.
func (p *Pipeline) ruleSet(kind string, declared rule.FieldSet) (*rule.Set, error) {
	path, ok := p.cfg.RuleFiles[kind]
	if !ok || path == "" {
		return nil, nil
	}
	return rule.LoadSet(path, declared)
}

// schemaFor prefers a schema name overridden in configuration, falling
// back to the kind's fixed regulator name.
func (p *Pipeline) schemaFor(kind document.Kind) string {
	if name, ok := p.cfg.XSDFiles[string(kind)]; ok && name != "" {
		return name
	}
	return kind.SchemaName()
}

func (p *Pipeline) writeOutput(name string, data []byte) error {
	return os.WriteFile(filepath.Join(p.cfg.Paths.OutputXMLDir, name), data, 0o644)
}

func dumpRows(dir string, kind document.Kind, rows []csvsource.Row) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create json output directory: %w", err)
	}
	data, err := json.MarshalIndent(rows, "", "  ")
	if err != nil {
		return fmt.Errorf("encode %s rows: %w", kind, err)
	}
	path := filepath.Join(dir, string(kind)+"_rows.json")
	return os.WriteFile(path, append(data, '\n'), 0o644)
}
