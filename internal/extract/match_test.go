package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func posRegion(midY float64) Region {
	return Region{MidY: midY, HasPos: true, Bytes: []byte{1}}
}

func TestAssignImagesThresholdIsStrict(t *testing.T) {
	records := []Record{{Top: 0}}

	got := AssignImages(records, []Region{posRegion(200)})
	assert.Equal(t, []int{-1}, got, "distance of exactly 200 must not match")

	got = AssignImages(records, []Region{posRegion(199.9)})
	assert.Equal(t, []int{0}, got)
}

func TestAssignImagesNoCrossPairing(t *testing.T) {
	records := []Record{{Top: 10}, {Top: 500}}
	regions := []Region{posRegion(12), posRegion(505)}

	got := AssignImages(records, regions)
	assert.Equal(t, []int{0, 1}, got, "globally smallest distances win, no cross assignment")
}

func TestAssignImagesClosestRegionWins(t *testing.T) {
	// Both records are within range of the single region; the closer one
	// takes it and the other stays unmatched.
	records := []Record{{Top: 100}, {Top: 150}}
	regions := []Region{posRegion(145)}

	got := AssignImages(records, regions)
	assert.Equal(t, []int{-1, 0}, got)
}

func TestAssignImagesPositionlessRegionsUnmatched(t *testing.T) {
	records := []Record{{Top: 100}}
	regions := []Region{{Bytes: []byte{1}}}

	got := AssignImages(records, regions)
	assert.Equal(t, []int{-1}, got, "a region without coordinates has infinite distance")
}

func TestAssignImagesSortsRecordsByTop(t *testing.T) {
	records := []Record{{Name: "B", Top: 500}, {Name: "A", Top: 10}}
	regions := []Region{posRegion(505), posRegion(12)}

	got := AssignImages(records, regions)

	// Records are reordered in place by top; assignments line up with the
	// reordered slice and with the reordered regions.
	assert.Equal(t, "A", records[0].Name)
	assert.Equal(t, "B", records[1].Name)
	assert.Equal(t, []int{0, 1}, got)
	assert.Equal(t, 12.0, regions[got[0]].MidY)
	assert.Equal(t, 505.0, regions[got[1]].MidY)
}

func TestAssignImagesMoreRecordsThanRegions(t *testing.T) {
	records := []Record{{Top: 100}, {Top: 300}, {Top: 600}}
	regions := []Region{posRegion(110), posRegion(610)}

	got := AssignImages(records, regions)
	assert.Equal(t, []int{0, -1, 1}, got)
}
