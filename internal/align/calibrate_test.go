package align

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/a3tai/pdf-field-mapper/internal/document"
)

func TestCalibrator_FindPhrase_SingleToken(t *testing.T) {
	c := NewCalibrator(DefaultConfig())
	page := letterPage(
		tok("Name", 50, 40, 90, 52),
	)

	rect, ok := c.findPhrase(page, "Name")
	require.True(t, ok)
	assert.Equal(t, document.Rect{X0: 50, Y0: 40, X1: 90, Y1: 52}, rect)
}

func TestCalibrator_FindPhrase_SubstringProportionsWidth(t *testing.T) {
	c := NewCalibrator(DefaultConfig())

	// The anchor occupies four of the five characters of "Name:"; its
	// rect must cover only that share of the token width, not the
	// trailing colon.
	page := letterPage(
		tok("Name:", 50, 40, 90, 52),
	)

	rect, ok := c.findPhrase(page, "Name")
	require.True(t, ok)
	assert.Equal(t, document.Rect{X0: 50, Y0: 40, X1: 82, Y1: 52}, rect)
}

func TestCalibrator_FindPhrase_MidTokenSubstring(t *testing.T) {
	c := NewCalibrator(DefaultConfig())
	page := letterPage(
		tok("(Name)", 100, 40, 160, 52),
	)

	rect, ok := c.findPhrase(page, "Name")
	require.True(t, ok)
	assert.InDelta(t, 110.0, rect.X0, 1e-9)
	assert.InDelta(t, 150.0, rect.X1, 1e-9)
}

func TestCalibrator_Calibrate_SuffixedAnchorsKeepScale(t *testing.T) {
	c := NewCalibrator(DefaultConfig())

	// Same-scale documents where one side labels the anchor with a
	// trailing colon. Proportioned anchor widths keep the scale at 1
	// instead of inflating it by the punctuation.
	src := letterPage(tok("Name:", 50, 40, 100, 52))
	tgt := letterPage(tok("Name", 50, 40, 90, 52))

	tr, warnings := c.Calibrate(src, tgt)
	assert.Empty(t, warnings)
	assert.InDelta(t, 1.0, tr.Sx, 1e-9)
	assert.InDelta(t, 1.0, tr.Sy, 1e-9)
}

func TestCalibrator_FindPhrase_SpansTokens(t *testing.T) {
	c := NewCalibrator(DefaultConfig())
	page := letterPage(
		tok("Date", 50, 40, 80, 52),
		tok("of", 85, 40, 98, 52),
		tok("birth", 103, 41, 135, 53),
	)

	rect, ok := c.findPhrase(page, "Date of birth")
	require.True(t, ok)
	assert.Equal(t, document.Rect{X0: 50, Y0: 40, X1: 135, Y1: 53}, rect)
}

func TestCalibrator_FindPhrase_RowBreakStopsAccumulation(t *testing.T) {
	c := NewCalibrator(DefaultConfig())
	page := letterPage(
		tok("Date", 50, 40, 80, 52),
		tok("of", 85, 70, 98, 82), // next row, outside the tolerance
		tok("birth", 103, 70, 135, 82),
	)

	_, ok := c.findPhrase(page, "Date of birth")
	assert.False(t, ok)
}

func TestCalibrator_FindPhrase_FirstOccurrenceWins(t *testing.T) {
	c := NewCalibrator(DefaultConfig())
	page := letterPage(
		tok("Name", 50, 40, 90, 52),
		tok("Name", 300, 500, 340, 512),
	)

	rect, ok := c.findPhrase(page, "Name")
	require.True(t, ok)
	assert.Equal(t, 50.0, rect.X0)
}

func TestCalibrator_Matches_SkipsAnchorsMissingOnEitherSide(t *testing.T) {
	c := NewCalibrator(DefaultConfig())
	src := letterPage(
		tok("Name", 50, 40, 90, 52),
		tok("Identification", 50, 80, 140, 92),
	)
	tgt := letterPage(
		tok("Name", 60, 45, 100, 57),
		// no Identification on the target side
	)

	matches := c.Matches(src, tgt)
	require.Len(t, matches, 1)
	assert.Equal(t, "Name", matches[0].Phrase)
	assert.Equal(t, 10.0, matches[0].Dx)
	assert.Equal(t, 5.0, matches[0].Dy)
}

func TestCalibrator_Calibrate_ScaleAndOffset(t *testing.T) {
	c := NewCalibrator(DefaultConfig())

	// Target anchors have exactly twice the source dimensions and
	// doubled origins, so the expected transform is a clean 2x scale
	// with zero offset.
	src := letterPage(
		tok("Name", 10, 20, 30, 30),
		tok("Identification", 10, 60, 60, 70),
	)
	tgt := letterPage(
		tok("Name", 20, 40, 60, 60),
		tok("Identification", 20, 120, 120, 140),
	)

	tr, warnings := c.Calibrate(src, tgt)
	assert.Empty(t, warnings)
	assert.InDelta(t, 2.0, tr.Sx, 1e-9)
	assert.InDelta(t, 2.0, tr.Sy, 1e-9)
	assert.InDelta(t, 0.0, tr.Dx, 1e-9)
	assert.InDelta(t, 0.0, tr.Dy, 1e-9)
}

func TestCalibrator_Calibrate_PureTranslation(t *testing.T) {
	c := NewCalibrator(DefaultConfig())

	src := letterPage(tok("Name", 50, 40, 90, 52))
	tgt := letterPage(tok("Name", 62, 55, 102, 67))

	tr, warnings := c.Calibrate(src, tgt)
	assert.Empty(t, warnings)
	assert.InDelta(t, 1.0, tr.Sx, 1e-9)
	assert.InDelta(t, 1.0, tr.Sy, 1e-9)
	assert.InDelta(t, 12.0, tr.Dx, 1e-9)
	assert.InDelta(t, 15.0, tr.Dy, 1e-9)
}

func TestCalibrator_Calibrate_DegenerateDimensionsExcluded(t *testing.T) {
	c := NewCalibrator(DefaultConfig())

	// The source anchor is a sliver: height under one unit. Its
	// vertical scale candidate would blow up and must be excluded, so
	// Sy stays at 1 while the offset still calibrates.
	src := letterPage(tok("Name", 10, 20, 50, 20.5))
	tgt := letterPage(tok("Name", 10, 120, 50, 170))

	tr, warnings := c.Calibrate(src, tgt)
	assert.Empty(t, warnings)
	assert.InDelta(t, 1.0, tr.Sx, 1e-9)
	assert.InDelta(t, 1.0, tr.Sy, 1e-9)
	assert.InDelta(t, 0.0, tr.Dx, 1e-9)
	assert.InDelta(t, 100.0, tr.Dy, 1e-9)
}

func TestCalibrator_Calibrate_NoAnchorsFallsBackToIdentity(t *testing.T) {
	c := NewCalibrator(DefaultConfig())

	src := letterPage(tok("unrelated", 10, 10, 60, 20))
	tgt := letterPage(tok("content", 10, 10, 60, 20))

	tr, warnings := c.Calibrate(src, tgt)
	assert.True(t, tr.IsIdentity())
	require.Len(t, warnings, 1)
	assert.Contains(t, warnings[0], "identity")
}

func TestCalibrator_Calibrate_NilPages(t *testing.T) {
	c := NewCalibrator(DefaultConfig())

	tr, warnings := c.Calibrate(nil, nil)
	assert.True(t, tr.IsIdentity())
	assert.NotEmpty(t, warnings)
}
