package align

import (
	"math"
	"sort"
	"strings"

	"github.com/a3tai/pdf-field-mapper/internal/document"
)

// WindowPolicy produces the ordered clip windows to try around a
// projected field rectangle. Policies must scale the capture area with
// the field's own footprint: a multi-line paragraph field needs a far
// larger window than a short value field.
type WindowPolicy interface {
	Windows(projected document.Rect) []document.Rect
}

// GrowthWindowPolicy is the default window policy: a tight window with
// a small left/top margin and a right/bottom extension proportional to
// field size, followed by a wide window roughly three times as
// generous on every side.
type GrowthWindowPolicy struct{}

// Windows returns the tight window followed by the wide window.
func (GrowthWindowPolicy) Windows(r document.Rect) []document.Rect {
	w, h := r.Width(), r.Height()

	tight := document.Rect{
		X0: r.X0 - 3,
		Y0: r.Y0 - 2,
		X1: r.X1 + math.Max(20, w*0.75),
		Y1: r.Y1 + math.Max(2, h*0.5),
	}
	wide := document.Rect{
		X0: r.X0 - 10,
		Y0: r.Y0 - 10,
		X1: r.X1 + math.Max(80, w*1.5),
		Y1: r.Y1 + math.Max(10, h),
	}

	return []document.Rect{tight, wide}
}

// Searcher recovers the text belonging to a projected field rectangle
// on a candidate page. It tries each clip window in turn and returns
// the first non-empty result.
type Searcher struct {
	policy       WindowPolicy
	rowTolerance float64
}

// NewSearcher creates a searcher with the default window policy.
func NewSearcher(cfg Config) *Searcher {
	return NewSearcherWithPolicy(cfg, GrowthWindowPolicy{})
}

// NewSearcherWithPolicy creates a searcher with a custom window policy.
func NewSearcherWithPolicy(cfg Config, policy WindowPolicy) *Searcher {
	cfg = cfg.normalized()
	return &Searcher{
		policy:       policy,
		rowTolerance: cfg.RowTolerance,
	}
}

// Search collects the tokens inside each expanding window around the
// projected rectangle and assembles them into reading-order text. An
// empty result means no text was found; that is an expected outcome,
// not an error.
func (s *Searcher) Search(page *document.Page, projected document.Rect) string {
	if page == nil {
		return ""
	}

	for _, window := range s.policy.Windows(projected) {
		clip := window.Intersect(page.Box)
		if clip.IsEmpty() {
			continue
		}

		tokens := tokensInWindow(page.Tokens, clip)
		if len(tokens) == 0 {
			continue
		}

		text := cleanFieldText(s.assembleText(tokens))
		if text != "" {
			return text
		}
	}

	return ""
}

// tokensInWindow selects tokens whose center point falls inside the
// clip window. Center containment avoids capturing neighboring tokens
// whose boxes merely touch the window edge.
func tokensInWindow(tokens []document.Token, clip document.Rect) []document.Token {
	var matches []document.Token
	for i := range tokens {
		cx, cy := tokens[i].Rect.Center()
		if clip.ContainsPoint(cx, cy) {
			matches = append(matches, tokens[i])
		}
	}
	return matches
}

// assembleText sorts tokens into reading order (rounded top coordinate,
// then left coordinate) and joins them. Tokens whose rows lie within
// the row tolerance belong to the same line; lines are flattened into
// one string since form field values are single strings.
func (s *Searcher) assembleText(tokens []document.Token) string {
	sort.SliceStable(tokens, func(i, j int) bool {
		yi, yj := math.Round(tokens[i].Rect.Y0), math.Round(tokens[j].Rect.Y0)
		if yi != yj {
			return yi < yj
		}
		return tokens[i].Rect.X0 < tokens[j].Rect.X0
	})

	var lines []string
	currentLine := []string{tokens[0].Text}
	currentY := math.Round(tokens[0].Rect.Y0)

	for _, tok := range tokens[1:] {
		y := math.Round(tok.Rect.Y0)
		if math.Abs(y-currentY) > s.rowTolerance {
			lines = append(lines, strings.Join(currentLine, " "))
			currentLine = []string{tok.Text}
			currentY = y
		} else {
			currentLine = append(currentLine, tok.Text)
		}
	}
	lines = append(lines, strings.Join(currentLine, " "))

	return strings.Join(lines, " ")
}

// cleanFieldText strips a single leading colon left over from label
// bleed-through, plus surrounding whitespace.
func cleanFieldText(text string) string {
	text = strings.TrimSpace(text)
	if strings.HasPrefix(text, ":") {
		text = strings.TrimSpace(text[1:])
	}
	return text
}
