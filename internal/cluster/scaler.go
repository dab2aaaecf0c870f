package cluster

import (
	"math"

	"github.com/DwDestiny/StudyAbroadMatcher/internal/feature"
)

// Scaler standardizes vectors into the z-space clustering operates in. It is
// fitted on a program's cleaned population and kept with the profile so
// applicants are projected into the same space at scoring time.
type Scaler struct {
	Mean feature.Vector `json:"mean"`
	Std  feature.Vector `json:"std"`
}

// FitScaler computes the per-feature mean and population standard deviation
// of the given vectors. Features with zero variance get a unit scale so the
// transform stays defined.
func FitScaler(vectors []feature.Vector) *Scaler {
	s := &Scaler{
		Mean: feature.Mean(vectors),
		Std:  make(feature.Vector, feature.Count),
	}

	n := float64(len(vectors))
	if n == 0 {
		for i := range s.Std {
			s.Std[i] = 1
		}
		return s
	}

	for _, v := range vectors {
		for i := range s.Std {
			d := v[i] - s.Mean[i]
			s.Std[i] += d * d
		}
	}
	for i := range s.Std {
		s.Std[i] = math.Sqrt(s.Std[i] / n)
		if s.Std[i] == 0 {
			s.Std[i] = 1
		}
	}

	return s
}

// Transform projects a vector into the standardized space.
func (s *Scaler) Transform(v feature.Vector) feature.Vector {
	out := make(feature.Vector, len(v))
	for i := range v {
		out[i] = (v[i] - s.Mean[i]) / s.Std[i]
	}
	return out
}

// TransformAll projects a collection of vectors into the standardized space.
func (s *Scaler) TransformAll(vectors []feature.Vector) []feature.Vector {
	out := make([]feature.Vector, len(vectors))
	for i, v := range vectors {
		out[i] = s.Transform(v)
	}
	return out
}
