package clustering

import (
	"math"
	"sort"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"
)

// SuggestEps derives a DBSCAN radius from the data: the sorted
// k-nearest-neighbor distance curve (k = minSamples, the conventional
// choice) rises slowly through dense regions and sharply once it
// reaches outliers; the knee of that curve is a good eps. The knee is
// found as the point with maximum perpendicular distance from the chord
// between the curve's endpoints.
//
// The result is deterministic for fixed input. Degenerate inputs (fewer
// than two points, or all points coincident) return 0 and the caller
// rejects the run.
func SuggestEps(points []orb.Point, minSamples int) float64 {
	n := len(points)
	if n < 2 {
		return 0
	}

	k := minSamples
	if k >= n {
		k = n - 1
	}

	kDistances := make([]float64, n)
	for i := range points {
		dists := make([]float64, 0, n-1)
		for j := range points {
			if i == j {
				continue
			}
			dists = append(dists, planar.Distance(points[i], points[j]))
		}
		sort.Float64s(dists)
		kDistances[i] = dists[k-1]
	}
	sort.Float64s(kDistances)

	first, last := kDistances[0], kDistances[n-1]
	if last == first {
		return last
	}

	// Perpendicular distance from each curve point to the chord
	// (0, first) -> (n-1, last).
	dx := float64(n - 1)
	dy := last - first
	norm := math.Hypot(dx, dy)

	bestIdx := 0
	bestDist := -1.0
	for i, d := range kDistances {
		dist := math.Abs(dy*float64(i)-dx*(d-first)) / norm
		if dist > bestDist {
			bestDist = dist
			bestIdx = i
		}
	}

	return kDistances[bestIdx]
}
