package extract

import (
	"bytes"
	"image"
	"image/draw"
	"image/png"

	"github.com/joshdeansavv/booking-tracker/internal/pdfio"
)

const (
	// minCropPx filters decorative logos and letterhead graphics.
	minCropPx = 50
	// headerMarginPx filters graphics pinned to the page header.
	headerMarginPx = 100
	// minImageBytes rejects degenerate encodes.
	minImageBytes = 100
)

// Region is a candidate mugshot. Bytes is nil when the crop failed
// validation; the region still records its position so index alignment with
// the matcher is preserved. HasPos is false for fallback-extracted images,
// which carry no layout coordinates.
type Region struct {
	MidY   float64
	HasPos bool
	Bytes  []byte
}

// RegionsFromRender crops each image box out of the page raster. Boxes whose
// scaled height or width falls under the crop minimum, or whose scaled top
// sits inside the header margin, are dropped entirely. A nil render yields no
// regions, pushing the page to the fallback path.
func RegionsFromRender(render image.Image, page *pdfio.Page) []Region {
	if render == nil || page.Width <= 0 || page.Height <= 0 {
		return nil
	}

	bounds := render.Bounds()
	sx := float64(bounds.Dx()) / page.Width
	sy := float64(bounds.Dy()) / page.Height

	var regions []Region
	for _, box := range page.ImageBoxes {
		if box.X1 <= box.X0 || box.Bottom <= box.Top {
			continue
		}
		if (box.Bottom-box.Top)*sy < minCropPx || (box.X1-box.X0)*sx < minCropPx {
			continue
		}
		if box.Top*sy < headerMarginPx {
			continue
		}

		rect := image.Rect(
			bounds.Min.X+int(box.X0*sx),
			bounds.Min.Y+int(box.Top*sy),
			bounds.Min.X+int(box.X1*sx),
			bounds.Min.Y+int(box.Bottom*sy),
		).Intersect(bounds)

		region := Region{MidY: (box.Top + box.Bottom) / 2, HasPos: true}
		if crop := encodeCrop(render, rect); validImageBytes(crop) {
			region.Bytes = crop
		}
		regions = append(regions, region)
	}
	return regions
}

// RegionsFromEmbedded wraps directly extracted page bitmaps as positionless
// regions, keeping only the ones that validate.
func RegionsFromEmbedded(images [][]byte) []Region {
	var regions []Region
	for _, b := range images {
		if !validImageBytes(b) {
			continue
		}
		regions = append(regions, Region{Bytes: b})
	}
	return regions
}

func encodeCrop(src image.Image, rect image.Rectangle) []byte {
	if rect.Empty() {
		return nil
	}
	crop := image.NewRGBA(image.Rect(0, 0, rect.Dx(), rect.Dy()))
	draw.Draw(crop, crop.Bounds(), src, rect.Min, draw.Src)

	var buf bytes.Buffer
	if err := png.Encode(&buf, crop); err != nil {
		return nil
	}
	return buf.Bytes()
}

func validImageBytes(b []byte) bool {
	if len(b) < minImageBytes {
		return false
	}
	_, _, err := image.Decode(bytes.NewReader(b))
	return err == nil
}
