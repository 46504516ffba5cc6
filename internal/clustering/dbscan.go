package clustering

import (
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"
)

// noiseLabel marks points that belong to no cluster.
const noiseLabel = -1

// dbscan runs density-based clustering over planar points and returns a
// label per point, noiseLabel for noise. A point is a core point when
// its eps-neighborhood (itself included, matching scikit-learn) holds
// at least minSamples points; points reachable only transitively join
// the same cluster.
//
// Points are scanned in input order and labels are assigned in
// discovery order, so the result is deterministic for fixed input and
// eps. The plain O(n^2) region query is fine at candidate-site scale.
func dbscan(points []orb.Point, eps float64, minSamples int) []int {
	n := len(points)
	labels := make([]int, n)
	for i := range labels {
		labels[i] = noiseLabel
	}
	visited := make([]bool, n)

	epsSq := eps * eps
	regionQuery := func(i int) []int {
		var neighbors []int
		for j := 0; j < n; j++ {
			if planar.DistanceSquared(points[i], points[j]) <= epsSq {
				neighbors = append(neighbors, j)
			}
		}
		return neighbors
	}

	cluster := 0
	for i := 0; i < n; i++ {
		if visited[i] {
			continue
		}
		visited[i] = true

		neighbors := regionQuery(i)
		if len(neighbors) < minSamples {
			continue // noise unless later claimed as a border point
		}

		labels[i] = cluster
		seeds := neighbors
		for s := 0; s < len(seeds); s++ {
			j := seeds[s]
			if !visited[j] {
				visited[j] = true
				if reachable := regionQuery(j); len(reachable) >= minSamples {
					seeds = append(seeds, reachable...)
				}
			}
			if labels[j] == noiseLabel {
				labels[j] = cluster
			}
		}
		cluster++
	}

	return labels
}
