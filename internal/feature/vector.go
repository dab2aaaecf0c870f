package feature

import (
	"fmt"
	"math"
)

// Vector is an ordered feature vector over the schema. Index i holds the
// value of Specs()[i].
type Vector []float64

// InvalidFeatureError reports an input feature that is either not part of
// the schema or outside its documented valid range. Applicant input is
// rejected with this error, never silently corrected; clamping is reserved
// for the cleaning stage over historical data.
type InvalidFeatureError struct {
	Name    string
	Value   float64
	Min     float64
	Max     float64
	Unknown bool
}

func (e *InvalidFeatureError) Error() string {
	if e.Unknown {
		return fmt.Sprintf("feature %q is not part of the schema", e.Name)
	}
	return fmt.Sprintf("feature %q value %g is outside the valid range [%g, %g]", e.Name, e.Value, e.Min, e.Max)
}

// Kind returns the machine-readable error kind.
func (e *InvalidFeatureError) Kind() string { return "INVALID_FEATURE" }

// Suggestion returns an actionable hint for the caller.
func (e *InvalidFeatureError) Suggestion() string {
	if e.Unknown {
		return "remove the unknown feature or check its spelling against the published schema"
	}
	return fmt.Sprintf("supply a value for %q within [%g, %g] or omit it to use the default %g", e.Name, e.Min, e.Max, defaultOf(e.Name))
}

func defaultOf(name string) float64 {
	if i, ok := Index(name); ok {
		return specs[i].Default
	}
	return 0
}

// Defaults returns a fresh vector with every feature set to its schema
// default.
func Defaults() Vector {
	v := make(Vector, Count)
	for i, s := range specs {
		v[i] = s.Default
	}
	return v
}

// Clone returns an independent copy of the vector.
func (v Vector) Clone() Vector {
	out := make(Vector, len(v))
	copy(out, v)
	return out
}

// Get returns the value of the named feature.
func (v Vector) Get(name string) (float64, bool) {
	i, ok := Index(name)
	if !ok || i >= len(v) {
		return 0, false
	}
	return v[i], true
}

// Validate checks the vector against the schema: full cardinality, no NaN or
// Inf, every value within its documented range. The first violation is
// returned as *InvalidFeatureError.
func (v Vector) Validate() error {
	if len(v) != Count {
		return fmt.Errorf("vector has %d features, schema defines %d", len(v), Count)
	}
	for i, s := range specs {
		val := v[i]
		if math.IsNaN(val) || math.IsInf(val, 0) {
			return &InvalidFeatureError{Name: s.Name, Value: val, Min: s.Min, Max: s.Max}
		}
		if val < s.Min || val > s.Max {
			return &InvalidFeatureError{Name: s.Name, Value: val, Min: s.Min, Max: s.Max}
		}
	}
	return nil
}

// FromMap builds a validated vector from named values. Features absent from
// the map take their schema defaults. Unknown names and out-of-range values
// are rejected with *InvalidFeatureError.
func FromMap(values map[string]float64) (Vector, error) {
	v := Defaults()
	for name, val := range values {
		i, ok := Index(name)
		if !ok {
			return nil, &InvalidFeatureError{Name: name, Unknown: true}
		}
		v[i] = val
	}
	if err := v.Validate(); err != nil {
		return nil, err
	}
	return v, nil
}

// Euclidean returns the Euclidean distance between two vectors of equal
// length.
func Euclidean(a, b Vector) float64 {
	var sum float64
	for i := range a {
		d := a[i] - b[i]
		sum += d * d
	}
	return math.Sqrt(sum)
}

// Cosine returns the cosine similarity between two vectors, clamped to
// [0, 1]. Zero vectors yield 0.
func Cosine(a, b Vector) float64 {
	var dot, na, nb float64
	for i := range a {
		dot += a[i] * b[i]
		na += a[i] * a[i]
		nb += b[i] * b[i]
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return Clamp01(dot / (math.Sqrt(na) * math.Sqrt(nb)))
}

// Clamp01 clamps x into [0, 1].
func Clamp01(x float64) float64 {
	if x < 0 {
		return 0
	}
	if x > 1 {
		return 1
	}
	return x
}

// Mean returns the componentwise mean of the given vectors.
func Mean(vectors []Vector) Vector {
	if len(vectors) == 0 {
		return Defaults()
	}
	m := make(Vector, Count)
	for _, v := range vectors {
		for i := range m {
			m[i] += v[i]
		}
	}
	n := float64(len(vectors))
	for i := range m {
		m[i] /= n
	}
	return m
}
