package extract

import (
	"math"
	"sort"
)

// maxMatchDistance separates a mugshot block from its own name row while
// rejecting cross-assignment to a neighboring person's block. A pair at
// exactly this distance is NOT matched.
const maxMatchDistance = 200.0

type pairing struct {
	dist   float64
	record int
	region int
}

// AssignImages pairs each record with at most one region by global greedy
// nearest-distance assignment. Records are ordered by top ascending and
// regions by midY ascending (positionless regions last); every (record,
// region) pair is ranked by |midY - top| and walked in ascending order,
// committing a pair the first time both endpoints are free and the distance
// is strictly under the threshold. The returned slice holds, per record in
// top order, the index of its assigned region or -1.
//
// Greedy is not a minimum-weight bipartite matching, but the (distance,
// record, region) walk order makes the result deterministic.
func AssignImages(records []Record, regions []Region) []int {
	sort.SliceStable(records, func(i, j int) bool {
		return records[i].Top < records[j].Top
	})
	sort.SliceStable(regions, func(i, j int) bool {
		return regionSortY(regions[i]) < regionSortY(regions[j])
	})

	pairs := make([]pairing, 0, len(records)*len(regions))
	for i, rec := range records {
		for j, reg := range regions {
			d := math.Inf(1)
			if reg.HasPos {
				d = math.Abs(reg.MidY - rec.Top)
			}
			pairs = append(pairs, pairing{dist: d, record: i, region: j})
		}
	}
	sort.Slice(pairs, func(a, b int) bool {
		if pairs[a].dist != pairs[b].dist {
			return pairs[a].dist < pairs[b].dist
		}
		if pairs[a].record != pairs[b].record {
			return pairs[a].record < pairs[b].record
		}
		return pairs[a].region < pairs[b].region
	})

	assigned := make([]int, len(records))
	for i := range assigned {
		assigned[i] = -1
	}
	regionTaken := make([]bool, len(regions))

	for _, p := range pairs {
		if assigned[p.record] != -1 || regionTaken[p.region] {
			continue
		}
		if p.dist < maxMatchDistance {
			assigned[p.record] = p.region
			regionTaken[p.region] = true
		}
	}
	return assigned
}

func regionSortY(r Region) float64 {
	if !r.HasPos {
		return math.Inf(1)
	}
	return r.MidY
}
