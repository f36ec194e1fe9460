package align

// Config carries the tunables of one alignment run. It is passed
// explicitly at construction so multiple runs with different tuning can
// coexist without shared process-wide state.
type Config struct {
	// AnchorPhrases are short literal strings expected to appear
	// verbatim near the top of both documents' first pages. They drive
	// the coordinate calibration.
	AnchorPhrases []string

	// PageOffsets is the search order for candidate source pages after
	// the same-index page. Forward offsets come first: inserted pages
	// shift content later far more often than earlier.
	PageOffsets []int

	// RowTolerance is the vertical bucket width, in page units, used to
	// group tokens into reading-order rows. Larger fonts may need a
	// wider bucket.
	RowTolerance float64
}

// DefaultConfig returns the tuning used for the health report forms
// this engine was built against.
func DefaultConfig() Config {
	return Config{
		AnchorPhrases: []string{"Name", "Date of birth", "Identification"},
		PageOffsets:   []int{1, 2, 3, -1},
		RowTolerance:  5.0,
	}
}

// normalized returns a copy with zero values replaced by defaults.
func (c Config) normalized() Config {
	def := DefaultConfig()
	if len(c.AnchorPhrases) == 0 {
		c.AnchorPhrases = def.AnchorPhrases
	}
	if len(c.PageOffsets) == 0 {
		c.PageOffsets = def.PageOffsets
	}
	if c.RowTolerance <= 0 {
		c.RowTolerance = def.RowTolerance
	}
	return c
}
