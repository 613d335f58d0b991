package extract

import (
	"context"
	"log/slog"

	"github.com/joshdeansavv/booking-tracker/internal/pdfio"
)

// MatchedPair is one record and, when matching succeeded, its mugshot bytes.
type MatchedPair struct {
	Record Record
	Image  []byte
}

// Extractor runs the per-page pipeline over a whole document.
type Extractor struct {
	logger *slog.Logger
}

func NewExtractor(logger *slog.Logger) *Extractor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Extractor{logger: logger}
}

// ExtractDocument walks every page: reconstruct lines, parse records, collect
// image regions, assign images. Pages without records contribute nothing and
// skip the image work entirely. Pairs are returned in page order, records in
// top order within a page.
func (e *Extractor) ExtractDocument(ctx context.Context, doc pdfio.Document) ([]MatchedPair, error) {
	var out []MatchedPair

	for n := 1; n <= doc.PageCount(); n++ {
		page, err := doc.Page(ctx, n)
		if err != nil {
			return nil, err
		}

		records := ParseRecords(PageLines(page))
		if len(records) == 0 {
			continue
		}

		regions := e.pageRegions(ctx, doc, page)
		assigned := AssignImages(records, regions)

		for i, rec := range records {
			pair := MatchedPair{Record: rec}
			if assigned[i] >= 0 {
				pair.Image = regions[assigned[i]].Bytes
			}
			out = append(out, pair)
		}

		e.logger.Debug("page extracted",
			"page", n,
			"records", len(records),
			"regions", len(regions),
		)
	}
	return out, nil
}

// pageRegions prefers positioned crops from the page raster and degrades to
// the embedded-image fallback when the primary path yields nothing. Render
// failures are tolerated; they only cost the page its position data.
func (e *Extractor) pageRegions(ctx context.Context, doc pdfio.Document, page *pdfio.Page) []Region {
	render, err := doc.RenderPage(ctx, page.Number)
	if err != nil {
		e.logger.Warn("page render failed", "page", page.Number, "error", err)
		render = nil
	}

	regions := RegionsFromRender(render, page)
	if len(regions) > 0 {
		return regions
	}

	embedded, err := doc.EmbeddedImages(ctx, page.Number)
	if err != nil {
		e.logger.Warn("embedded image extraction failed", "page", page.Number, "error", err)
		return nil
	}
	return RegionsFromEmbedded(embedded)
}
