package cluster

import (
	"math/rand"

	"github.com/DwDestiny/StudyAbroadMatcher/internal/feature"
)

const maxIterations = 300

// partition is one converged k-means run: per-point labels, the final
// centroids, and the total within-cluster squared distance.
type partition struct {
	centers []feature.Vector
	labels  []int
	inertia float64
}

// runKMeans clusters the vectors into k groups with Lloyd's algorithm and
// k-means++ seeding, restarting the given number of times with derived seeds
// and keeping the run with the lowest inertia. Deterministic for a fixed
// seed.
func runKMeans(vectors []feature.Vector, k int, seed int64, restarts int) partition {
	if restarts < 1 {
		restarts = 1
	}

	var best partition
	for r := 0; r < restarts; r++ {
		rng := rand.New(rand.NewSource(seed + int64(r)))
		p := lloyd(vectors, k, rng)
		if r == 0 || p.inertia < best.inertia {
			best = p
		}
	}
	return best
}

func lloyd(vectors []feature.Vector, k int, rng *rand.Rand) partition {
	n := len(vectors)
	centers := plusPlusInit(vectors, k, rng)
	labels := make([]int, n)

	for iter := 0; iter < maxIterations; iter++ {
		moved := false
		for i, v := range vectors {
			c, _ := nearest(centers, v)
			if labels[i] != c || iter == 0 {
				labels[i] = c
				moved = true
			}
		}
		if !moved {
			break
		}

		counts := make([]int, k)
		sums := make([]feature.Vector, k)
		for c := range sums {
			sums[c] = make(feature.Vector, feature.Count)
		}
		for i, v := range vectors {
			c := labels[i]
			counts[c]++
			for f := range v {
				sums[c][f] += v[f]
			}
		}

		for c := range centers {
			if counts[c] == 0 {
				// Reseed an empty cluster with the point farthest from
				// its current center.
				centers[c] = vectors[farthestPoint(vectors, centers, labels)].Clone()
				continue
			}
			for f := range sums[c] {
				sums[c][f] /= float64(counts[c])
			}
			centers[c] = sums[c]
		}
	}

	var inertia float64
	for i, v := range vectors {
		d := feature.Euclidean(v, centers[labels[i]])
		inertia += d * d
	}

	return partition{centers: centers, labels: labels, inertia: inertia}
}

// plusPlusInit chooses k initial centers: the first uniformly, each next one
// with probability proportional to the squared distance from the nearest
// already chosen center.
func plusPlusInit(vectors []feature.Vector, k int, rng *rand.Rand) []feature.Vector {
	centers := make([]feature.Vector, 0, k)
	centers = append(centers, vectors[rng.Intn(len(vectors))].Clone())

	weights := make([]float64, len(vectors))
	for len(centers) < k {
		var total float64
		for i, v := range vectors {
			_, d2 := nearest(centers, v)
			weights[i] = d2
			total += d2
		}

		if total == 0 {
			centers = append(centers, vectors[rng.Intn(len(vectors))].Clone())
			continue
		}

		target := rng.Float64() * total
		pick := len(vectors) - 1
		var acc float64
		for i, w := range weights {
			acc += w
			if acc >= target {
				pick = i
				break
			}
		}
		centers = append(centers, vectors[pick].Clone())
	}

	return centers
}

// nearest returns the index of the closest center and the squared distance
// to it.
func nearest(centers []feature.Vector, v feature.Vector) (int, float64) {
	bestIdx := 0
	bestD2 := squaredDistance(centers[0], v)
	for c := 1; c < len(centers); c++ {
		if d2 := squaredDistance(centers[c], v); d2 < bestD2 {
			bestIdx = c
			bestD2 = d2
		}
	}
	return bestIdx, bestD2
}

func squaredDistance(a, b feature.Vector) float64 {
	var sum float64
	for i := range a {
		d := a[i] - b[i]
		sum += d * d
	}
	return sum
}

func farthestPoint(vectors []feature.Vector, centers []feature.Vector, labels []int) int {
	farthest := 0
	var maxD2 float64
	for i, v := range vectors {
		d2 := squaredDistance(v, centers[labels[i]])
		if d2 > maxD2 {
			maxD2 = d2
			farthest = i
		}
	}
	return farthest
}
