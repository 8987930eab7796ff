// SPDX-License-Identifier: MPL-2.0

package pipeline

import (
	"bytes"
	"path/filepath"

	"kenshin-cli/internal/aggregate"
	"kenshin-cli/internal/archive"
	"kenshin-cli/internal/document"
)

// buildAggregates scans the generated documents, computes the run totals,
// and writes the validated index and summary documents.
func (p *Pipeline) buildAggregates() (indexPath, summaryPath string, err error) {
	dataFiles, claimFiles, err := aggregate.ListGenerated(p.cfg.Paths.OutputXMLDir)
	if err != nil {
		return "", "", err
	}
	totals, err := aggregate.Compute(dataFiles, claimFiles)
	if err != nil {
		return "", "", err
	}
	p.logger.Info("aggregated",
		"records", totals.RecordCount,
		"subjects", totals.SubjectCount,
		"claimTotal", totals.ClaimAmount)

	indexPath, err = p.emitAggregate(document.Index, func() (map[string]string, error) {
		set, err := p.ruleSet(string(document.Index), document.Fields(document.Index))
		if err != nil {
			return nil, err
		}
		return aggregate.IndexFields(totals, p.now(), p.cfg.IndexDefaults, set, p.catalog)
	})
	if err != nil {
		return "", "", err
	}

	summaryPath, err = p.emitAggregate(document.Summary, func() (map[string]string, error) {
		set, err := p.ruleSet(string(document.Summary), document.Fields(document.Summary))
		if err != nil {
			return nil, err
		}
		return aggregate.SummaryFields(totals, p.cfg.SummaryDefaults, set, p.catalog)
	})
	if err != nil {
		return "", "", err
	}
	return indexPath, summaryPath, nil
}

// emitAggregate generates and validates one aggregate document. Aggregate
// documents always abort on failure: an archive without a clean index or
// summary is not submittable.
func (p *Pipeline) emitAggregate(kind document.Kind, fields func() (map[string]string, error)) (string, error) {
	fm, err := fields()
	if err != nil {
		return "", err
	}
	xmlBytes, err := document.Generate(kind, fm, nil)
	if err != nil {
		return "", err
	}
	name := string(kind) + ".xml"
	if err := p.validator.Validate(bytes.NewReader(xmlBytes), p.schemaFor(kind), name); err != nil {
		return "", err
	}
	if err := p.writeOutput(name, xmlBytes); err != nil {
		return "", err
	}
	return filepath.Join(p.cfg.Paths.OutputXMLDir, name), nil
}

// pack assembles the submission archive from everything generated so far.
func (p *Pipeline) pack(indexPath, summaryPath string) (string, error) {
	dataFiles, claimFiles, err := aggregate.ListGenerated(p.cfg.Paths.OutputXMLDir)
	if err != nil {
		return "", err
	}

	schemaNames := make([]string, 0, len(document.RecordKinds)+3)
	for _, k := range append(document.RecordKinds, document.Index, document.Summary) {
		schemaNames = append(schemaNames, p.schemaFor(k))
	}
	schemaNames = append(schemaNames, document.CoreDatatypesSchema)

	packager := archive.NewPackager(p.search)
	return packager.Create(archive.Contents{
		IndexXML:    indexPath,
		SummaryXML:  summaryPath,
		DataFiles:   dataFiles,
		ClaimFiles:  claimFiles,
		SchemaNames: schemaNames,
	}, archive.BaseName(p.now()), p.cfg.Paths.ArchiveOutputDir)
}
