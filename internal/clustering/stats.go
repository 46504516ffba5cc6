package clustering

import (
	"math"
	"sort"

	"github.com/ahrav/go-prospect/internal/domain"
)

// Quantile returns the q-th quantile of values using linear
// interpolation between closest ranks. The input is not modified. An
// empty input returns 0.
func Quantile(values []float64, q float64) float64 {
	n := len(values)
	if n == 0 {
		return 0
	}
	if n == 1 {
		return values[0]
	}

	sorted := make([]float64, n)
	copy(sorted, values)
	sort.Float64s(sorted)

	if q <= 0 {
		return sorted[0]
	}
	if q >= 1 {
		return sorted[n-1]
	}

	pos := q * float64(n-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	if lo == hi {
		return sorted[lo]
	}
	return sorted[lo] + (pos-float64(lo))*(sorted[hi]-sorted[lo])
}

// SummarizeScores computes the member score statistics attached to each
// cluster.
func SummarizeScores(scores []float64) domain.ClusterStats {
	if len(scores) == 0 {
		return domain.ClusterStats{}
	}

	var sum float64
	min, max := scores[0], scores[0]
	for _, s := range scores {
		sum += s
		if s < min {
			min = s
		}
		if s > max {
			max = s
		}
	}

	q25 := Quantile(scores, 0.25)
	q75 := Quantile(scores, 0.75)

	return domain.ClusterStats{
		Mean:  sum / float64(len(scores)),
		Q25:   q25,
		Q75:   q75,
		IQR:   q75 - q25,
		Min:   min,
		Max:   max,
		Count: len(scores),
	}
}
