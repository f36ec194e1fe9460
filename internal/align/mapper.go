package align

import (
	"fmt"

	"github.com/a3tai/pdf-field-mapper/internal/document"
)

// PageStats is the per-target-page mapping breakdown.
type PageStats struct {
	Page   int `json:"page"`
	Fields int `json:"fields"`
	Mapped int `json:"mapped"`
}

// Result is the outcome of one mapping run: field name to extracted
// text, plus coverage counters. Absent map entries are unmapped fields.
type Result struct {
	Fields       map[string]string `json:"fields"`
	TotalFields  int               `json:"total_fields"`
	MappedFields int               `json:"mapped_fields"`
	MissedFields int               `json:"missed_fields"`
	Pages        []PageStats       `json:"pages"`
	Transform    Transform         `json:"transform"`
	Warnings     []string          `json:"warnings,omitempty"`
}

// Mapper aligns a filled source document with a target form document
// and extracts the text belonging to every named field.
type Mapper struct {
	cfg        Config
	calibrator *Calibrator
	searcher   *Searcher
}

// NewMapper creates a mapper with the default window policy.
func NewMapper(cfg Config) *Mapper {
	return NewMapperWithPolicy(cfg, GrowthWindowPolicy{})
}

// NewMapperWithPolicy creates a mapper using a custom window sizing
// policy for the text search.
func NewMapperWithPolicy(cfg Config, policy WindowPolicy) *Mapper {
	cfg = cfg.normalized()
	return &Mapper{
		cfg:        cfg,
		calibrator: NewCalibrator(cfg),
		searcher:   NewSearcherWithPolicy(cfg, policy),
	}
}

// Map runs one full alignment pass. Processing is deterministic: pages
// and fields are visited in document order, so identical inputs yield
// identical results. Per-field misses are recorded and never interrupt
// the run; only unusable documents abort it.
//
// A field name occurring on multiple target pages is written once per
// occurrence, later pages overwriting earlier ones.
func (m *Mapper) Map(src, tgt *document.Document) (*Result, error) {
	if src == nil || src.PageCount() == 0 {
		return nil, fmt.Errorf("source document has no pages")
	}
	if tgt == nil || tgt.PageCount() == 0 {
		return nil, fmt.Errorf("target document has no pages")
	}

	transform, warnings := m.calibrator.Calibrate(src.Page(0), tgt.Page(0))

	result := &Result{
		Fields:    make(map[string]string),
		Transform: transform,
		Warnings:  warnings,
	}

	for pageIdx := range tgt.Pages {
		page := &tgt.Pages[pageIdx]
		stats := PageStats{Page: pageIdx}

		for i := range page.Fields {
			field := &page.Fields[i]
			if field.Name == "" {
				// Unnamed widgets are excluded from output and counts.
				continue
			}
			stats.Fields++
			result.TotalFields++

			text := m.extractField(src, field.Rect, transform, pageIdx)
			if text == "" {
				continue
			}
			result.Fields[field.Name] = text
			stats.Mapped++
		}

		result.Pages = append(result.Pages, stats)
	}

	result.MappedFields = len(result.Fields)
	result.MissedFields = result.TotalFields - result.MappedFields

	return result, nil
}

// extractField projects the field rectangle into source space and
// searches each candidate source page in order until text is found.
func (m *Mapper) extractField(src *document.Document, rect document.Rect, t Transform, targetPage int) string {
	projected := t.ToSource(rect)

	for _, pageIdx := range CandidatePages(targetPage, src.PageCount(), m.cfg.PageOffsets) {
		if text := m.searcher.Search(src.Page(pageIdx), projected); text != "" {
			return text
		}
	}

	return ""
}
