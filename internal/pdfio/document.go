// Package pdfio drives the external PDF tooling and exposes per-page data to
// the extraction pipeline: positioned words, embedded image bounding boxes, a
// raster render of the page, and directly extracted embedded images.
//
// The primary source is poppler's pdftohtml XML output; pdftoppm renders the
// raster, pdfimages pulls embedded bitmaps for pages without usable layout
// boxes, and ledongthuc/pdf provides the page count and the plain-text
// fallback stream.
package pdfio

import (
	"context"
	"image"
)

// Word is a positioned text token on a page. Top grows downward.
type Word struct {
	Text string
	Left float64
	Top  float64
}

// Box is an image bounding box in page coordinates.
type Box struct {
	X0     float64
	Top    float64
	X1     float64
	Bottom float64
}

// Page carries everything the extraction pipeline needs for one page.
type Page struct {
	Number     int // 1-based
	Width      float64
	Height     float64
	Words      []Word
	ImageBoxes []Box
	PlainLines []string // fallback when no positioned words are available
}

// Document is the read-only PDF collaborator consumed by the pipeline.
type Document interface {
	// PageCount reports the number of pages.
	PageCount() int
	// Page returns the positioned words and image boxes for a 1-based page.
	Page(ctx context.Context, n int) (*Page, error)
	// RenderPage rasterizes a page at the configured upscale. A nil image
	// with nil error means the page could not be rendered; the caller
	// degrades to the embedded-image fallback.
	RenderPage(ctx context.Context, n int) (image.Image, error)
	// EmbeddedImages extracts the page's embedded bitmaps directly, already
	// re-encoded as PNG. Extraction has no positional metadata.
	EmbeddedImages(ctx context.Context, n int) ([][]byte, error)
	// Close releases the underlying file handle.
	Close() error
}
