// Package filtering narrows ranked match results before they reach the
// caller. Filters run after scoring and before top-N truncation, so a
// minimum-score cut never starves the requested result count while eligible
// programs remain.
package filtering

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/DwDestiny/StudyAbroadMatcher/internal/scoring"
)

// Filter represents a single filtering step applied to ranked results.
type Filter interface {
	Name() string

	Validate() error
	Apply(deps Deps, results []*scoring.MatchResult) ([]*scoring.MatchResult, Step, error)
}

// Deps aggregates dependencies shared across all filtering steps.
type Deps struct {
	Logger *zap.Logger
}

// Step describes the result of executing a filtering step.
type Step struct {
	Initial int
	Dropped int
	Left    int
}

// Run executes the supplied filters sequentially. All filters are validated
// before the first one runs.
func Run(deps Deps, steps []Filter, results []*scoring.MatchResult) ([]*scoring.MatchResult, error) {
	for _, step := range steps {
		if err := step.Validate(); err != nil {
			return nil, fmt.Errorf("%s: %w", step.Name(), err)
		}
	}

	for _, step := range steps {
		next, info, err := step.Apply(deps, results)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", step.Name(), err)
		}

		if deps.Logger != nil {
			deps.Logger.Info("filter step",
				zap.String("name", step.Name()),
				zap.Int("initial", info.Initial),
				zap.Int("dropped", info.Dropped),
				zap.Int("left", info.Left),
			)
		}

		results = next
	}

	return results, nil
}
