// Package cleaning suppresses per-feature outliers in a program's historical
// population before any statistic is computed. Values beyond the IQR fence
// are capped to the nearest bound; records are never dropped, so cluster
// membership downstream is preserved.
package cleaning

import (
	"sort"

	"github.com/DwDestiny/StudyAbroadMatcher/internal/feature"
	"github.com/DwDestiny/StudyAbroadMatcher/internal/stats"
)

// iqrMultiplier is the fence width: bounds are Q1-1.5*IQR and Q3+1.5*IQR.
const iqrMultiplier = 1.5

// Bounds holds the per-feature clipping fences computed for one program's
// population.
type Bounds struct {
	Lower feature.Vector `json:"lower"`
	Upper feature.Vector `json:"upper"`
}

// Capped reports how many values were clipped during a Clean pass.
type Capped struct {
	Values int
}

// Clean returns a copy of the vectors with per-feature outliers capped to
// the IQR fences of this population, along with the fences used. Bounds are
// local to the given collection; the inputs are left untouched. Collections
// of fewer than four records are returned unchanged (quartiles are not
// meaningful there) with fences at the observed min/max.
func Clean(vectors []feature.Vector) ([]feature.Vector, *Bounds, Capped) {
	out := make([]feature.Vector, len(vectors))
	for i, v := range vectors {
		out[i] = v.Clone()
	}

	bounds := &Bounds{
		Lower: make(feature.Vector, feature.Count),
		Upper: make(feature.Vector, feature.Count),
	}

	var capped Capped
	if len(vectors) == 0 {
		return out, bounds, capped
	}

	column := make([]float64, len(vectors))
	for f := 0; f < feature.Count; f++ {
		for i, v := range vectors {
			column[i] = v[f]
		}

		lo, hi := fences(column)
		bounds.Lower[f] = lo
		bounds.Upper[f] = hi

		for i := range out {
			if out[i][f] < lo {
				out[i][f] = lo
				capped.Values++
			} else if out[i][f] > hi {
				out[i][f] = hi
				capped.Values++
			}
		}
	}

	return out, bounds, capped
}

func fences(column []float64) (float64, float64) {
	if len(column) < 4 {
		return stats.MinMax(column)
	}

	sorted := make([]float64, len(column))
	copy(sorted, column)
	sort.Float64s(sorted)

	q1 := stats.QuantileSorted(sorted, 0.25)
	q3 := stats.QuantileSorted(sorted, 0.75)
	iqr := q3 - q1

	return q1 - iqrMultiplier*iqr, q3 + iqrMultiplier*iqr
}

// Contains reports whether the value of feature f lies within the fences.
func (b *Bounds) Contains(f int, value float64) bool {
	return value >= b.Lower[f] && value <= b.Upper[f]
}
