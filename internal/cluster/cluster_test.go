package cluster

import (
	"errors"
	"math"
	"testing"

	"go.uber.org/zap"

	"github.com/DwDestiny/StudyAbroadMatcher/internal/corpus"
	"github.com/DwDestiny/StudyAbroadMatcher/internal/feature"
)

// blobVectors builds n vectors spread tightly around the given gpa and
// source-tier values, with the rest of the schema at defaults.
func blobVectors(t *testing.T, n int, gpa, tier float64) []feature.Vector {
	t.Helper()

	gi, ok := feature.Index(feature.GPAPercentile)
	if !ok {
		t.Fatalf("missing gpa feature")
	}
	ti, ok := feature.Index(feature.SourceUniversityTierScore)
	if !ok {
		t.Fatalf("missing tier feature")
	}

	out := make([]feature.Vector, 0, n)
	for i := 0; i < n; i++ {
		v := feature.Defaults()
		v[gi] = gpa + float64(i%7) - 3
		v[ti] = tier + float64(i%5) - 2
		out = append(out, v)
	}
	return out
}

func standardized(vectors []feature.Vector) []feature.Vector {
	return FitScaler(vectors).TransformAll(vectors)
}

func TestScalerStandardizes(t *testing.T) {
	vectors := blobVectors(t, 50, 60, 70)
	scaler := FitScaler(vectors)
	z := scaler.TransformAll(vectors)

	gi, _ := feature.Index(feature.GPAPercentile)
	var mean float64
	for _, v := range z {
		mean += v[gi]
	}
	mean /= float64(len(z))
	if math.Abs(mean) > 1e-9 {
		t.Fatalf("expected standardized mean ~0, got %v", mean)
	}

	var variance float64
	for _, v := range z {
		variance += v[gi] * v[gi]
	}
	variance /= float64(len(z))
	if math.Abs(variance-1) > 1e-9 {
		t.Fatalf("expected standardized variance ~1, got %v", variance)
	}

	// Constant features map to exactly zero.
	ci, _ := feature.Index(feature.CompetitionIndex)
	for _, v := range z {
		if v[ci] != 0 {
			t.Fatalf("expected constant feature to standardize to 0, got %v", v[ci])
		}
	}
}

func TestDiscoverTwoBlobs(t *testing.T) {
	vectors := append(blobVectors(t, 60, 30, 40), blobVectors(t, 60, 88, 85)...)

	d := NewDiscoverer(DefaultConfig(), zap.NewNop())
	res, err := d.Discover(standardized(vectors))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if res.K != 2 {
		t.Fatalf("expected 2 paths for two separated blobs, got %d", res.K)
	}
	if res.FellBack {
		t.Fatalf("well-separated blobs should not need the fallback")
	}
	if res.Quality < DefaultConfig().QualityThreshold {
		t.Fatalf("expected silhouette above threshold, got %v", res.Quality)
	}

	sizes := []int{len(res.Groups[0].Members), len(res.Groups[1].Members)}
	if sizes[0]+sizes[1] != 120 {
		t.Fatalf("member sets must cover the population, got %v", sizes)
	}
	if sizes[0] != 60 || sizes[1] != 60 {
		t.Fatalf("expected a 60/60 split, got %v", sizes)
	}
}

func TestDiscoverIsDeterministic(t *testing.T) {
	vectors := standardized(append(blobVectors(t, 70, 35, 45), blobVectors(t, 80, 85, 80)...))

	d := NewDiscoverer(DefaultConfig(), zap.NewNop())
	first, err := d.Discover(vectors)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := d.Discover(vectors)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if first.K != second.K || first.Quality != second.Quality {
		t.Fatalf("expected identical runs, got k=%d/%d quality=%v/%v", first.K, second.K, first.Quality, second.Quality)
	}
	for g := range first.Groups {
		for f := range first.Groups[g].Center {
			if first.Groups[g].Center[f] != second.Groups[g].Center[f] {
				t.Fatalf("centers differ at group %d feature %d", g, f)
			}
		}
	}
}

func TestDiscoverInsufficientData(t *testing.T) {
	vectors := standardized(blobVectors(t, 50, 60, 60))

	d := NewDiscoverer(DefaultConfig(), zap.NewNop())
	_, err := d.Discover(vectors)
	if err == nil {
		t.Fatalf("expected insufficient data error")
	}

	var insufficient *corpus.InsufficientDataError
	if !errors.As(err, &insufficient) {
		t.Fatalf("expected *corpus.InsufficientDataError, got %T: %v", err, err)
	}
	if insufficient.Have != 50 || insufficient.Need != 100 {
		t.Fatalf("unexpected counts: have=%d need=%d", insufficient.Have, insufficient.Need)
	}
}

func TestSelectBestK(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name         string
		candidates   []Candidate
		wantK        int
		wantFallback bool
	}{
		{
			name: "picks highest quality",
			candidates: []Candidate{
				{K: 2, Quality: 0.4, Balanced: true},
				{K: 3, Quality: 0.6, Balanced: true},
				{K: 4, Quality: 0.5, Balanced: true},
			},
			wantK: 3,
		},
		{
			name: "near equal prefers smaller k",
			candidates: []Candidate{
				{K: 2, Quality: 0.55, Balanced: true},
				{K: 3, Quality: 0.555, Balanced: true},
			},
			wantK: 2,
		},
		{
			name: "unbalanced candidates are skipped",
			candidates: []Candidate{
				{K: 2, Quality: 0.4, Balanced: true},
				{K: 3, Quality: 0.9, Balanced: false},
			},
			wantK: 2,
		},
		{
			name: "nothing clears threshold falls back to 2",
			candidates: []Candidate{
				{K: 2, Quality: 0.1, Balanced: true},
				{K: 3, Quality: 0.2, Balanced: true},
			},
			wantK:        2,
			wantFallback: true,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			k, _, fellBack := SelectBestK(tc.candidates, 0.3, 0.01)
			if k != tc.wantK {
				t.Fatalf("expected k=%d, got %d", tc.wantK, k)
			}
			if fellBack != tc.wantFallback {
				t.Fatalf("expected fallback=%v, got %v", tc.wantFallback, fellBack)
			}
		})
	}
}

func TestSilhouette(t *testing.T) {
	// Two tight, far-apart groups in a 2d space.
	vectors := []feature.Vector{
		{0, 0}, {0.1, 0}, {0, 0.1},
		{10, 10}, {10.1, 10}, {10, 10.1},
	}
	labels := []int{0, 0, 0, 1, 1, 1}

	high := Silhouette(vectors, labels, 2)
	if high < 0.9 {
		t.Fatalf("expected silhouette near 1 for separated groups, got %v", high)
	}

	// Interleaved labels destroy the separation.
	mixed := Silhouette(vectors, []int{0, 1, 0, 1, 0, 1}, 2)
	if mixed >= high {
		t.Fatalf("expected mixed labels to score below %v, got %v", high, mixed)
	}
}
