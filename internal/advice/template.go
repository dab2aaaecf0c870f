package advice

import (
	"context"
	"fmt"

	"github.com/DwDestiny/StudyAbroadMatcher/internal/feature"
	"github.com/DwDestiny/StudyAbroadMatcher/internal/profile"
	"github.com/DwDestiny/StudyAbroadMatcher/internal/scoring"
)

// focusPhrases names the improvement area for each heavyweight feature.
var focusPhrases = map[string]string{
	feature.SourceUniversityTierScore: "your university background",
	feature.GPAPercentile:             "your GPA",
	feature.MajorMatchingScore:        "your major alignment",
	feature.LanguageScoreNormalized:   "your language test score",
	feature.WorkExperienceYears:       "relevant work experience",
}

// Template renders deterministic level-based guidance. It never fails and
// serves as the fallback when an AI advisor is unavailable or errors out.
type Template struct{}

// NewTemplate returns the deterministic advisor.
func NewTemplate() *Template {
	return &Template{}
}

// Advise renders guidance from the match level, the matched path and the
// applicant's weakest area relative to that path.
func (t *Template) Advise(_ context.Context, applicant feature.Vector, result *scoring.MatchResult, prof *profile.ProgramProfile) (string, error) {
	label := result.PathLabel
	focus := t.focusArea(applicant, matchedPath(prof, result.PathID))

	var text string
	switch result.Level {
	case scoring.LevelVeryHigh:
		text = fmt.Sprintf("Your background closely matches the %s path of admitted applicants. A strong application is recommended.", label)
	case scoring.LevelHigh:
		text = fmt.Sprintf("Your background matches the %s path well. Applying is recommended, and strengthening %s would firm up the case further.", label, focus)
	case scoring.LevelMedium:
		text = fmt.Sprintf("Your background partially matches the %s path. Consider applying after strengthening %s.", label, focus)
	case scoring.LevelLow:
		text = fmt.Sprintf("There is a clear gap between your background and the %s path. Strengthen %s before applying.", label, focus)
	default:
		text = "This program is currently a poor fit for your profile. Consider alternative programs, or revisit after substantially strengthening your background."
	}

	if prof != nil && prof.Mode == profile.ModeSmallSample {
		text += " Note that this program's profile is built from a small cohort, so treat the score as indicative."
	}

	return text, nil
}

func matchedPath(prof *profile.ProgramProfile, pathID int) *profile.Path {
	if prof == nil {
		return nil
	}
	for _, p := range prof.Paths {
		if p.ID == pathID {
			return p
		}
	}
	return nil
}

// focusArea picks the heavyweight feature with the largest shortfall of the
// applicant against the matched path, normalized by schema range.
func (t *Template) focusArea(applicant feature.Vector, path *profile.Path) string {
	const fallback = "your overall profile"
	if path == nil || len(applicant) != feature.Count {
		return fallback
	}

	best := fallback
	var worst float64
	for i, spec := range feature.Specs() {
		phrase, ok := focusPhrases[spec.Name]
		if !ok {
			continue
		}
		shortfall := (path.Stats[i].Mean - applicant[i]) / spec.Range()
		if shortfall > worst {
			worst = shortfall
			best = phrase
		}
	}
	return best
}
