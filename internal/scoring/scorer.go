// Package scoring assigns an applicant to the closest success path of a
// program and produces a calibrated 0-100 fit score with its breakdown.
// Scoring is a pure read over immutable profiles, safe to call from any
// number of goroutines.
package scoring

import (
	"fmt"
	"math"

	"go.uber.org/zap"

	"github.com/DwDestiny/StudyAbroadMatcher/internal/feature"
	"github.com/DwDestiny/StudyAbroadMatcher/internal/profile"
)

const (
	// sigmaEpsilon keeps the per-feature similarity defined for
	// zero-dispersion paths.
	sigmaEpsilon = 1e-9

	// confidenceFloor is the calibration floor below which an assignment
	// confidence is never reported.
	confidenceFloor = 0.15

	// Confidence is a weighted product of proximity, coverage and
	// representativeness; the exponents sum to 1 with distance dominating.
	proximityExponent          = 0.5
	coverageExponent           = 0.3
	representativenessExponent = 0.2

	// Tier cuts for the confidence adjustment.
	highConfidence = 0.70
	lowConfidence  = 0.40

	// Weight shares of features inside the path's inter-quartile envelope
	// that trigger the coverage adjustment.
	envelopeMajority = 0.50
	envelopeMinority = 0.25

	confidenceBonus = 5
	envelopeBonus   = 3
)

// Scorer computes match results against program profiles.
type Scorer struct {
	logger *zap.Logger
}

// NewScorer returns a Scorer logging through the given logger.
func NewScorer(logger *zap.Logger) *Scorer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Scorer{logger: logger}
}

// Score validates the applicant vector, assigns it to the closest path of
// the program and assembles the final score. Out-of-range input is rejected
// with *feature.InvalidFeatureError, never clamped.
func (s *Scorer) Score(p *profile.ProgramProfile, applicant feature.Vector) (*MatchResult, error) {
	if err := applicant.Validate(); err != nil {
		return nil, err
	}
	if len(p.Paths) == 0 {
		return nil, fmt.Errorf("program %q has no paths", p.ProgramID)
	}

	path, dist := assign(p, applicant)
	conf := confidence(path, dist)
	sim := similarity(path, applicant)

	base := sim * 100

	var confAdj float64
	switch {
	case conf >= highConfidence:
		confAdj = confidenceBonus
	case conf < lowConfidence:
		confAdj = -confidenceBonus
	}

	covAdj := envelopeAdjustment(path, applicant)

	final := base + confAdj + covAdj
	if final < 0 {
		final = 0
	}
	if final > 100 {
		final = 100
	}
	score := int(math.Round(final))

	s.logger.Debug("scored applicant",
		zap.String("program", p.ProgramID),
		zap.Int("path", path.ID),
		zap.Float64("distance", dist),
		zap.Float64("similarity", sim),
		zap.Float64("confidence", conf),
		zap.Int("score", score),
	)

	return &MatchResult{
		ProgramID:  p.ProgramID,
		Program:    p.DisplayName,
		Score:      score,
		Level:      LevelForScore(score),
		PathID:     path.ID,
		PathLabel:  path.Label,
		Confidence: conf,
		Breakdown: Breakdown{
			BaseScore:            base,
			ConfidenceAdjustment: confAdj,
			CoverageAdjustment:   covAdj,
		},
	}, nil
}

// assign picks the path whose center is nearest to the applicant in the
// standardized space the clusters were discovered in. Ties keep the lower
// path id.
func assign(p *profile.ProgramProfile, applicant feature.Vector) (*profile.Path, float64) {
	z := p.Scaler.Transform(applicant)

	best := p.Paths[0]
	bestDist := feature.Euclidean(z, p.Scaler.Transform(best.Center))
	for _, path := range p.Paths[1:] {
		if d := feature.Euclidean(z, p.Scaler.Transform(path.Center)); d < bestDist {
			best = path
			bestDist = d
		}
	}
	return best, bestDist
}

// confidence combines proximity, coverage and representativeness into a
// calibrated [0,1] reliability estimate. The product form means a path with
// near-zero coverage cannot reach high confidence however close the
// applicant sits to its center.
func confidence(path *profile.Path, dist float64) float64 {
	proximity := 1 / (1 + dist/math.Sqrt(feature.Count))
	coverage := math.Min(1, path.Coverage*10)
	rep := feature.Clamp01(path.Representativeness)

	conf := math.Pow(proximity, proximityExponent) *
		math.Pow(coverage, coverageExponent) *
		math.Pow(rep, representativenessExponent)

	if conf < confidenceFloor {
		conf = confidenceFloor
	}
	return feature.Clamp01(conf)
}

// similarity is the weighted per-feature resemblance of the applicant to
// the path, in [0,1].
func similarity(path *profile.Path, applicant feature.Vector) float64 {
	var total float64
	for i, spec := range feature.Specs() {
		if spec.Weight == 0 {
			continue
		}
		st := path.Stats[i]
		d := math.Abs(applicant[i] - st.Mean)
		sim := 1 - d/(st.Std+sigmaEpsilon)
		if sim < 0 {
			sim = 0
		}
		total += spec.Weight * sim
	}
	return feature.Clamp01(total)
}

// envelopeAdjustment rewards applicants sitting inside the path's
// inter-quartile envelope for most of the weighted features and penalizes
// those mostly outside it.
func envelopeAdjustment(path *profile.Path, applicant feature.Vector) float64 {
	var inside float64
	for i, spec := range feature.Specs() {
		if spec.Weight == 0 {
			continue
		}
		st := path.Stats[i]
		if applicant[i] >= st.Q25 && applicant[i] <= st.Q75 {
			inside += spec.Weight
		}
	}

	switch {
	case inside >= envelopeMajority:
		return envelopeBonus
	case inside < envelopeMinority:
		return -envelopeBonus
	default:
		return 0
	}
}
