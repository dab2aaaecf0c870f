package cluster

import (
	"github.com/DwDestiny/StudyAbroadMatcher/internal/feature"
)

// Silhouette computes the mean silhouette coefficient of a labelled
// partition: for each point, (b-a)/max(a,b) where a is the mean distance to
// its own cluster and b the mean distance to the nearest other cluster.
// Values near 1 indicate well-separated clusters; singleton clusters
// contribute 0.
func Silhouette(vectors []feature.Vector, labels []int, k int) float64 {
	n := len(vectors)
	if n == 0 || k < 2 {
		return 0
	}

	counts := make([]int, k)
	for _, l := range labels {
		counts[l]++
	}

	var total float64
	sums := make([]float64, k)
	for i := range vectors {
		for c := range sums {
			sums[c] = 0
		}
		for j := range vectors {
			if i == j {
				continue
			}
			sums[labels[j]] += feature.Euclidean(vectors[i], vectors[j])
		}

		own := labels[i]
		if counts[own] < 2 {
			continue
		}
		a := sums[own] / float64(counts[own]-1)

		b := -1.0
		for c := 0; c < k; c++ {
			if c == own || counts[c] == 0 {
				continue
			}
			mean := sums[c] / float64(counts[c])
			if b < 0 || mean < b {
				b = mean
			}
		}
		if b < 0 {
			continue
		}

		if m := max(a, b); m > 0 {
			total += (b - a) / m
		}
	}

	return total / float64(n)
}

// Candidate is one evaluated path count.
type Candidate struct {
	K        int
	Quality  float64
	Balanced bool
}

// SelectBestK picks the path count from evaluated candidates: the highest
// quality among balanced candidates clearing the threshold, preferring the
// smaller k when scores are within epsilon of each other. When nothing
// clears the threshold it falls back to k=2 rather than failing; the third
// return reports that fallback.
func SelectBestK(candidates []Candidate, threshold, epsilon float64) (int, float64, bool) {
	best := -1
	for i, c := range candidates {
		if !c.Balanced || c.Quality < threshold {
			continue
		}
		if best == -1 || c.Quality > candidates[best].Quality+epsilon {
			best = i
		}
	}

	if best >= 0 {
		return candidates[best].K, candidates[best].Quality, false
	}

	for _, c := range candidates {
		if c.K == 2 {
			return 2, c.Quality, true
		}
	}
	return 2, 0, true
}

// balanced reports whether every cluster holds a sane share of the
// population: none empty, none below minShare, none above maxShare.
func balanced(labels []int, k, n int, minShare, maxShare float64) bool {
	if n == 0 {
		return false
	}
	counts := make([]int, k)
	for _, l := range labels {
		counts[l]++
	}
	for _, c := range counts {
		share := float64(c) / float64(n)
		if c == 0 || share < minShare || share > maxShare {
			return false
		}
	}
	return true
}
