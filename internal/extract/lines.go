// Package extract turns a page's positioned words and image regions into
// booking records paired with the nearest mugshot crop.
package extract

import (
	"math"
	"strings"

	"github.com/joshdeansavv/booking-tracker/internal/pdfio"
)

// topTolerance absorbs sub-pixel baseline jitter between words typeset on the
// same visual row.
const topTolerance = 3.0

// Line is one visual text row with its representative top coordinate.
type Line struct {
	Text string
	Top  float64
}

// ReconstructLines groups positioned words into visual rows: a word joins the
// current row while its top coordinate stays within the tolerance of the
// row's reference top; otherwise the row is flushed and the word seeds a new
// one. Single pass, input order preserved within a row.
func ReconstructLines(words []pdfio.Word) []Line {
	if len(words) == 0 {
		return nil
	}

	var lines []Line
	refTop := words[0].Top
	bucket := make([]string, 0, 8)

	flush := func() {
		text := strings.TrimSpace(strings.Join(bucket, " "))
		lines = append(lines, Line{Text: text, Top: refTop})
		bucket = bucket[:0]
	}

	for i, w := range words {
		if i == 0 || math.Abs(w.Top-refTop) <= topTolerance {
			bucket = append(bucket, w.Text)
			continue
		}
		flush()
		refTop = w.Top
		bucket = append(bucket, w.Text)
	}
	flush()
	return lines
}

// LinesFromPlainText is the degraded path for pages without word-level data:
// every raw text line stands alone with an undefined (zero) top.
func LinesFromPlainText(raw []string) []Line {
	lines := make([]Line, 0, len(raw))
	for _, s := range raw {
		lines = append(lines, Line{Text: s})
	}
	return lines
}

// PageLines picks the word path when the page has positioned words and falls
// back to the plain-text extraction otherwise.
func PageLines(page *pdfio.Page) []Line {
	if len(page.Words) > 0 {
		return ReconstructLines(page.Words)
	}
	return LinesFromPlainText(page.PlainLines)
}
