package feature

import (
	"errors"
	"math"
	"testing"
)

func TestDefaultsAreValid(t *testing.T) {
	v := Defaults()
	if err := v.Validate(); err != nil {
		t.Fatalf("default vector should validate, got %v", err)
	}

	got, ok := v.Get(GPAPercentile)
	if !ok || got != 50 {
		t.Fatalf("expected default gpa_percentile 50, got %v (ok=%v)", got, ok)
	}
}

func TestValidateRejectsOutOfRange(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name  string
		setup func(Vector)
	}{
		{
			name: "percentile above max",
			setup: func(v Vector) {
				i, _ := Index(GPAPercentile)
				v[i] = 150
			},
		},
		{
			name: "negative ratio",
			setup: func(v Vector) {
				i, _ := Index(MajorMatchingScore)
				v[i] = -0.2
			},
		},
		{
			name: "NaN",
			setup: func(v Vector) {
				i, _ := Index(CompetitionIndex)
				v[i] = math.NaN()
			},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			v := Defaults()
			tc.setup(v)

			err := v.Validate()
			if err == nil {
				t.Fatalf("expected validation error")
			}

			var invalid *InvalidFeatureError
			if !errors.As(err, &invalid) {
				t.Fatalf("expected *InvalidFeatureError, got %T: %v", err, err)
			}
			if invalid.Kind() != "INVALID_FEATURE" {
				t.Fatalf("unexpected kind %q", invalid.Kind())
			}
			if invalid.Suggestion() == "" {
				t.Fatalf("expected a suggestion")
			}
		})
	}
}

func TestValidateRejectsWrongCardinality(t *testing.T) {
	v := make(Vector, 3)
	if err := v.Validate(); err == nil {
		t.Fatalf("expected error for short vector")
	}
}

func TestFromMap(t *testing.T) {
	v, err := FromMap(map[string]float64{
		GPAPercentile:      82,
		MajorMatchingScore: 0.9,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got, _ := v.Get(GPAPercentile); got != 82 {
		t.Fatalf("expected gpa_percentile 82, got %v", got)
	}
	if got, _ := v.Get(LanguageScoreNormalized); got != 60 {
		t.Fatalf("expected default language score 60, got %v", got)
	}
}

func TestFromMapRejectsUnknownFeature(t *testing.T) {
	_, err := FromMap(map[string]float64{"shoe_size": 42})
	if err == nil {
		t.Fatalf("expected error for unknown feature")
	}

	var invalid *InvalidFeatureError
	if !errors.As(err, &invalid) || !invalid.Unknown {
		t.Fatalf("expected unknown-feature error, got %v", err)
	}
}

func TestEuclidean(t *testing.T) {
	a := Vector{0, 3}
	b := Vector{4, 0}
	if got := Euclidean(a, b); got != 5 {
		t.Fatalf("expected distance 5, got %v", got)
	}
}

func TestCosineBounds(t *testing.T) {
	a := Defaults()
	if got := Cosine(a, a); math.Abs(got-1) > 1e-9 {
		t.Fatalf("expected self-similarity 1, got %v", got)
	}

	zero := make(Vector, Count)
	if got := Cosine(a, zero); got != 0 {
		t.Fatalf("expected zero-vector similarity 0, got %v", got)
	}
}

func TestMeanOfVectors(t *testing.T) {
	a := Defaults()
	b := Defaults()
	i, _ := Index(GPAPercentile)
	a[i] = 40
	b[i] = 60

	m := Mean([]Vector{a, b})
	if got := m[i]; got != 50 {
		t.Fatalf("expected mean 50, got %v", got)
	}
}
