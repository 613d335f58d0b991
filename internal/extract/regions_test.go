package extract

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joshdeansavv/booking-tracker/internal/pdfio"
)

// testRender builds a noisy raster so crops always survive the minimum-size
// validation after PNG encoding.
func testRender(w, h int) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x * 7), G: uint8(y * 13), B: uint8(x ^ y), A: 255})
		}
	}
	return img
}

func encodePNG(t *testing.T, img image.Image) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestRegionsFromRender(t *testing.T) {
	// 100x100pt page rendered at 200x200px, so every coordinate doubles.
	page := &pdfio.Page{
		Width:  100,
		Height: 100,
		ImageBoxes: []pdfio.Box{
			{X0: 10, Top: 60, X1: 60, Bottom: 90},
		},
	}
	regions := RegionsFromRender(testRender(200, 200), page)

	require.Len(t, regions, 1)
	assert.True(t, regions[0].HasPos)
	assert.Equal(t, 75.0, regions[0].MidY)
	require.NotNil(t, regions[0].Bytes)

	img, _, err := image.Decode(bytes.NewReader(regions[0].Bytes))
	require.NoError(t, err)
	assert.Equal(t, 100, img.Bounds().Dx())
	assert.Equal(t, 60, img.Bounds().Dy())
}

func TestRegionsFromRenderFiltersBoxes(t *testing.T) {
	page := &pdfio.Page{
		Width:  100,
		Height: 100,
		ImageBoxes: []pdfio.Box{
			{X0: 10, Top: 20, X1: 60, Bottom: 90},  // scaled top 40px, inside header margin
			{X0: 0, Top: 60, X1: 10, Bottom: 90},   // scaled width 20px, too narrow
			{X0: 10, Top: 60, X1: 60, Bottom: 70},  // scaled height 20px, too short
			{X0: 60, Top: 90, X1: 10, Bottom: 60},  // inverted
		},
	}
	regions := RegionsFromRender(testRender(200, 200), page)
	assert.Empty(t, regions)
}

func TestRegionsFromRenderNilRender(t *testing.T) {
	page := &pdfio.Page{
		Width:      100,
		Height:     100,
		ImageBoxes: []pdfio.Box{{X0: 10, Top: 60, X1: 60, Bottom: 90}},
	}
	assert.Nil(t, RegionsFromRender(nil, page))
}

func TestRegionsFromRenderKeepsPositionOnBadCrop(t *testing.T) {
	// The box passes the size and header filters but lies entirely outside
	// the raster, so the crop fails validation. The region must survive with
	// its position and nil bytes so matcher indexes stay aligned.
	page := &pdfio.Page{
		Width:  100,
		Height: 100,
		ImageBoxes: []pdfio.Box{
			{X0: 120, Top: 60, X1: 180, Bottom: 90},
		},
	}
	regions := RegionsFromRender(testRender(200, 200), page)

	require.Len(t, regions, 1)
	assert.True(t, regions[0].HasPos)
	assert.Equal(t, 75.0, regions[0].MidY)
	assert.Nil(t, regions[0].Bytes)
}

func TestRegionsFromEmbedded(t *testing.T) {
	valid := encodePNG(t, testRender(80, 80))
	regions := RegionsFromEmbedded([][]byte{
		valid,
		[]byte("too short"),
		bytes.Repeat([]byte{0x42}, 500), // long enough but not an image
	})

	require.Len(t, regions, 1)
	assert.False(t, regions[0].HasPos)
	assert.Equal(t, valid, regions[0].Bytes)
}
