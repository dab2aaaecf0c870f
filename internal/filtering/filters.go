package filtering

import (
	"fmt"

	"github.com/DwDestiny/StudyAbroadMatcher/internal/corpus"
	"github.com/DwDestiny/StudyAbroadMatcher/internal/scoring"
)

type minScoreFilter struct {
	threshold float64
}

// NewMinScore creates a filter that drops results scoring below the
// threshold.
func NewMinScore(threshold float64) Filter {
	return &minScoreFilter{threshold: threshold}
}

func (f *minScoreFilter) Name() string { return "min-score" }

func (f *minScoreFilter) Validate() error {
	if f.threshold < 0 || f.threshold > 100 {
		return fmt.Errorf("threshold %v outside [0, 100]", f.threshold)
	}
	return nil
}

func (f *minScoreFilter) Apply(_ Deps, results []*scoring.MatchResult) ([]*scoring.MatchResult, Step, error) {
	initial := len(results)
	kept := results[:0:0]
	for _, r := range results {
		if float64(r.Score) >= f.threshold {
			kept = append(kept, r)
		}
	}
	return kept, Step{Initial: initial, Dropped: initial - len(kept), Left: len(kept)}, nil
}

type minConfidenceFilter struct {
	threshold float64
}

// NewMinConfidence creates a filter that drops results whose path assignment
// confidence is below the threshold.
func NewMinConfidence(threshold float64) Filter {
	return &minConfidenceFilter{threshold: threshold}
}

func (f *minConfidenceFilter) Name() string { return "min-confidence" }

func (f *minConfidenceFilter) Validate() error {
	if f.threshold < 0 || f.threshold > 1 {
		return fmt.Errorf("threshold %v outside [0, 1]", f.threshold)
	}
	return nil
}

func (f *minConfidenceFilter) Apply(_ Deps, results []*scoring.MatchResult) ([]*scoring.MatchResult, Step, error) {
	initial := len(results)
	kept := results[:0:0]
	for _, r := range results {
		if r.Confidence >= f.threshold {
			kept = append(kept, r)
		}
	}
	return kept, Step{Initial: initial, Dropped: initial - len(kept), Left: len(kept)}, nil
}

type excludeProgramsFilter struct {
	programs []string
}

// NewExcludedPrograms creates a filter that removes the named programs from
// the results. Ids are matched after normalization, like store lookups.
func NewExcludedPrograms(programs []string) Filter {
	return &excludeProgramsFilter{programs: programs}
}

func (f *excludeProgramsFilter) Name() string { return "exclude-programs" }

func (f *excludeProgramsFilter) Validate() error { return nil }

func (f *excludeProgramsFilter) Apply(_ Deps, results []*scoring.MatchResult) ([]*scoring.MatchResult, Step, error) {
	initial := len(results)
	if len(f.programs) == 0 {
		return results, Step{Initial: initial, Left: initial}, nil
	}

	excluded := make(map[string]struct{}, len(f.programs))
	for _, p := range f.programs {
		excluded[corpus.NormalizeProgramID(p)] = struct{}{}
	}

	kept := results[:0:0]
	for _, r := range results {
		if _, ok := excluded[corpus.NormalizeProgramID(r.ProgramID)]; ok {
			continue
		}
		kept = append(kept, r)
	}
	return kept, Step{Initial: initial, Dropped: initial - len(kept), Left: len(kept)}, nil
}
