package document

import (
	"fmt"
	"os"
	"strings"

	"github.com/ledongthuc/pdf"
)

const (
	// defaultTokenHeight approximates text height when a run carries no
	// font size, matching the fallback used for widget-free pages.
	defaultTokenHeight = 12.0

	// Default page box when the page tree carries no MediaBox (US Letter).
	defaultPageWidth  = 612.0
	defaultPageHeight = 792.0
)

// Loader builds immutable Documents from PDF files. Tokens come from
// the positioned text runs of each page, field widgets from the page
// annotation arrays.
type Loader struct {
	maxFileSize int64
}

// NewLoader creates a loader with the specified file size constraint.
func NewLoader(maxFileSize int64) *Loader {
	return &Loader{
		maxFileSize: maxFileSize,
	}
}

// Load reads a PDF file and returns its Document view. A failure here
// is fatal to a mapping run; the loader never returns a partial
// document together with an error.
func (l *Loader) Load(path string) (*Document, error) {
	if path == "" {
		return nil, fmt.Errorf("path cannot be empty")
	}

	fileInfo, err := os.Stat(path)
	if os.IsNotExist(err) {
		return nil, fmt.Errorf("file does not exist: %s", path)
	}
	if err != nil {
		return nil, fmt.Errorf("cannot access file: %w", err)
	}
	if fileInfo.IsDir() {
		return nil, fmt.Errorf("path is a directory, not a file: %s", path)
	}
	if !strings.HasSuffix(strings.ToLower(path), ".pdf") {
		return nil, fmt.Errorf("file is not a PDF: %s", path)
	}
	if fileInfo.Size() > l.maxFileSize {
		return nil, fmt.Errorf("file too large: %d bytes (max: %d bytes)",
			fileInfo.Size(), l.maxFileSize)
	}

	f, pdfReader, err := pdf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open PDF: %w", err)
	}
	defer f.Close()

	doc := &Document{
		Path:  path,
		Pages: make([]Page, 0, pdfReader.NumPage()),
	}

	for pageNum := 1; pageNum <= pdfReader.NumPage(); pageNum++ {
		page := pdfReader.Page(pageNum)
		index := pageNum - 1

		if page.V.IsNull() {
			doc.Pages = append(doc.Pages, Page{
				Index: index,
				Box:   Rect{X1: defaultPageWidth, Y1: defaultPageHeight},
			})
			continue
		}

		doc.Pages = append(doc.Pages, buildPage(page, index))
	}

	return doc, nil
}

// buildPage assembles one page and normalizes its geometry to a
// top-left origin with y growing downward, the convention the
// alignment engine works in. PDF files natively use a bottom-up y
// axis, so every rectangle is flipped against the page box.
func buildPage(page pdf.Page, index int) Page {
	box := pageBox(page)
	top := box.Y1

	tokens := extractTokens(page)
	for i := range tokens {
		tokens[i].Rect = flipRect(tokens[i].Rect, top)
	}
	fields := extractWidgets(page, index)
	for i := range fields {
		fields[i].Rect = flipRect(fields[i].Rect, top)
	}

	return Page{
		Index:  index,
		Box:    Rect{X0: box.X0, Y0: 0, X1: box.X1, Y1: box.Y1 - box.Y0},
		Tokens: tokens,
		Fields: fields,
	}
}

// flipRect mirrors a rectangle from bottom-up PDF coordinates into the
// top-down page space.
func flipRect(r Rect, top float64) Rect {
	return Rect{X0: r.X0, Y0: top - r.Y1, X1: r.X1, Y1: top - r.Y0}
}

// pageBox resolves the page MediaBox, walking up the page tree for
// inherited values.
func pageBox(page pdf.Page) Rect {
	node := page.V
	for !node.IsNull() {
		box := node.Key("MediaBox")
		if box.Kind() == pdf.Array && box.Len() >= 4 {
			return Rect{
				X0: box.Index(0).Float64(),
				Y0: box.Index(1).Float64(),
				X1: box.Index(2).Float64(),
				Y1: box.Index(3).Float64(),
			}.Normalize()
		}
		node = node.Key("Parent")
	}
	return Rect{X1: defaultPageWidth, Y1: defaultPageHeight}
}

// extractTokens assembles the page's positioned text runs into
// word-level tokens. Runs arrive in content order, often one glyph at
// a time; consecutive runs on the same baseline with no significant
// horizontal gap are merged into a single token.
func extractTokens(page pdf.Page) []Token {
	content := page.Content()
	if len(content.Text) == 0 {
		return nil
	}

	var tokens []Token
	var word strings.Builder
	var wordRect Rect

	line, wordIdx := 0, 0
	var prev *pdf.Text

	flush := func() {
		text := strings.TrimSpace(word.String())
		if text != "" {
			tokens = append(tokens, Token{
				Text: text,
				Rect: wordRect.Normalize(),
				Line: line,
				Word: wordIdx,
			})
			wordIdx++
		}
		word.Reset()
	}

	for i := range content.Text {
		t := &content.Text[i]
		height := t.FontSize
		if height == 0 {
			height = defaultTokenHeight
		}
		runRect := Rect{X0: t.X, Y0: t.Y, X1: t.X + t.W, Y1: t.Y + height}

		if prev != nil {
			if newLine(prev, t) {
				flush()
				line++
				wordIdx = 0
			} else if wordBreak(prev, t) {
				flush()
			}
		}

		if strings.TrimSpace(t.S) == "" {
			// Whitespace run ends the current word.
			flush()
			prev = t
			continue
		}

		if word.Len() == 0 {
			wordRect = runRect
		} else {
			wordRect = wordRect.Union(runRect)
		}
		word.WriteString(t.S)
		prev = t
	}
	flush()

	return tokens
}

// newLine reports whether the run starts a new text line, judged by a
// baseline shift larger than a fraction of the font size.
func newLine(prev, cur *pdf.Text) bool {
	size := prev.FontSize
	if size == 0 {
		size = defaultTokenHeight
	}
	return abs(cur.Y-prev.Y) > size*0.5
}

// wordBreak reports whether the horizontal gap between two runs on the
// same line is wide enough to separate words.
func wordBreak(prev, cur *pdf.Text) bool {
	size := prev.FontSize
	if size == 0 {
		size = defaultTokenHeight
	}
	gap := cur.X - (prev.X + prev.W)
	return gap > size*0.3 || gap < -size
}

// extractWidgets collects the named form field widgets anchored to the
// page via its annotation array.
func extractWidgets(page pdf.Page, pageIndex int) []Field {
	annots := page.V.Key("Annots")
	if annots.IsNull() || annots.Kind() != pdf.Array {
		return nil
	}

	var fields []Field
	for i := 0; i < annots.Len(); i++ {
		annot := annots.Index(i)
		if annot.IsNull() {
			continue
		}
		if annot.Key("Subtype").Name() != "Widget" {
			continue
		}

		rect := annot.Key("Rect")
		if rect.IsNull() || rect.Kind() != pdf.Array || rect.Len() < 4 {
			continue
		}

		fields = append(fields, Field{
			Name: widgetName(annot),
			Rect: Rect{
				X0: rect.Index(0).Float64(),
				Y0: rect.Index(1).Float64(),
				X1: rect.Index(2).Float64(),
				Y1: rect.Index(3).Float64(),
			}.Normalize(),
			Page: pageIndex,
		})
	}

	return fields
}

// widgetName builds the fully qualified field name by walking the
// widget's Parent chain and joining partial names with dots.
func widgetName(annot pdf.Value) string {
	var parts []string
	node := annot
	for depth := 0; depth < 16 && !node.IsNull(); depth++ {
		if t := node.Key("T"); !t.IsNull() {
			if name := t.Text(); name != "" {
				parts = append(parts, name)
			}
		}
		node = node.Key("Parent")
	}
	// Parts were collected leaf-first.
	for i, j := 0, len(parts)-1; i < j; i, j = i+1, j-1 {
		parts[i], parts[j] = parts[j], parts[i]
	}
	return strings.Join(parts, ".")
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
