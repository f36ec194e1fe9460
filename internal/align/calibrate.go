package align

import (
	"strings"

	"github.com/a3tai/pdf-field-mapper/internal/document"
)

// AnchorMatch records where one anchor phrase was found on both first
// pages, plus the raw origin offset between the two occurrences.
type AnchorMatch struct {
	Phrase     string        `json:"phrase"`
	SourceRect document.Rect `json:"source_rect"`
	TargetRect document.Rect `json:"target_rect"`
	Dx         float64       `json:"dx"`
	Dy         float64       `json:"dy"`
}

// Calibrator derives the source-to-target coordinate transform from a
// fixed list of anchor phrases located on both documents' first pages.
type Calibrator struct {
	anchors      []string
	rowTolerance float64
}

// NewCalibrator creates a calibrator using the config's anchor phrases
// and row tolerance.
func NewCalibrator(cfg Config) *Calibrator {
	cfg = cfg.normalized()
	return &Calibrator{
		anchors:      cfg.AnchorPhrases,
		rowTolerance: cfg.RowTolerance,
	}
}

// Matches locates each anchor phrase on both pages. Anchors missing
// from either side are omitted. For each phrase the first occurrence
// in token stream order wins; no spatial tie-breaking is attempted.
func (c *Calibrator) Matches(src, tgt *document.Page) []AnchorMatch {
	var matches []AnchorMatch
	for _, phrase := range c.anchors {
		srcRect, srcOK := c.findPhrase(src, phrase)
		tgtRect, tgtOK := c.findPhrase(tgt, phrase)
		if !srcOK || !tgtOK {
			continue
		}
		matches = append(matches, AnchorMatch{
			Phrase:     phrase,
			SourceRect: srcRect,
			TargetRect: tgtRect,
			Dx:         tgtRect.X0 - srcRect.X0,
			Dy:         tgtRect.Y0 - srcRect.Y0,
		})
	}
	return matches
}

// Calibrate computes the transform from the anchor matches: per-axis
// scale candidates averaged first (source dimensions of one unit or
// less are considered degenerate and excluded), then offset candidates
// computed against the averaged scales. With no matches at all it
// degrades to the identity transform and reports it as a warning; it
// never fails.
func (c *Calibrator) Calibrate(src, tgt *document.Page) (Transform, []string) {
	matches := c.Matches(src, tgt)
	if len(matches) == 0 {
		return Identity(), []string{"no alignment anchors found, using identity transform"}
	}

	var sxs, sys []float64
	for _, m := range matches {
		if m.SourceRect.Width() > 1 {
			sxs = append(sxs, m.TargetRect.Width()/m.SourceRect.Width())
		}
		if m.SourceRect.Height() > 1 {
			sys = append(sys, m.TargetRect.Height()/m.SourceRect.Height())
		}
	}

	t := Identity()
	if len(sxs) > 0 {
		t.Sx = mean(sxs)
	}
	if len(sys) > 0 {
		t.Sy = mean(sys)
	}

	var dxs, dys []float64
	for _, m := range matches {
		dxs = append(dxs, m.TargetRect.X0-m.SourceRect.X0*t.Sx)
		dys = append(dys, m.TargetRect.Y0-m.SourceRect.Y0*t.Sy)
	}
	t.Dx = mean(dxs)
	t.Dy = mean(dys)

	return t, nil
}

// findPhrase locates the first occurrence of phrase within the page's
// tokens, in token stream order. A phrase may be contained in a single
// token or span several consecutive tokens on the same row; the
// returned rectangle covers the matched tokens.
func (c *Calibrator) findPhrase(page *document.Page, phrase string) (document.Rect, bool) {
	if page == nil || phrase == "" {
		return document.Rect{}, false
	}

	for i := range page.Tokens {
		first := &page.Tokens[i]
		if idx := strings.Index(first.Text, phrase); idx >= 0 {
			return phraseSubRect(first.Rect, first.Text, phrase, idx), true
		}
		if !strings.HasPrefix(phrase, first.Text) {
			continue
		}

		acc := first.Text
		rect := first.Rect
		for j := i + 1; j < len(page.Tokens) && len(acc) < len(phrase); j++ {
			next := &page.Tokens[j]
			if abs(next.Rect.Y0-first.Rect.Y0) > c.rowTolerance {
				break
			}
			acc += " " + next.Text
			rect = rect.Union(next.Rect)
			if acc == phrase {
				return rect, true
			}
			if !strings.HasPrefix(phrase, acc) {
				break
			}
		}
	}

	return document.Rect{}, false
}

// phraseSubRect estimates the horizontal span of a phrase inside a
// larger token by proportioning the token width per character. Glyph
// widths are not uniform, but the estimate stops the surrounding text
// (a token like "Name:" matching anchor "Name") from inflating the
// scale candidates derived from the anchor dimensions.
func phraseSubRect(r document.Rect, text, phrase string, idx int) document.Rect {
	if len(text) == 0 || len(text) == len(phrase) {
		return r
	}
	charWidth := r.Width() / float64(len(text))
	x0 := r.X0 + float64(idx)*charWidth
	return document.Rect{
		X0: x0,
		Y0: r.Y0,
		X1: x0 + float64(len(phrase))*charWidth,
		Y1: r.Y1,
	}
}

func mean(vs []float64) float64 {
	sum := 0.0
	for _, v := range vs {
		sum += v
	}
	return sum / float64(len(vs))
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
