// Package advice produces the guidance text attached to match results.
package advice

import (
	"context"

	"github.com/DwDestiny/StudyAbroadMatcher/internal/feature"
	"github.com/DwDestiny/StudyAbroadMatcher/internal/profile"
	"github.com/DwDestiny/StudyAbroadMatcher/internal/scoring"
)

// Advisor turns a scored match into guidance text for the applicant.
// Implementations must not modify the result or the profile.
type Advisor interface {
	Advise(ctx context.Context, applicant feature.Vector, result *scoring.MatchResult, prof *profile.ProgramProfile) (string, error)
}
