package advice

import (
	"context"
	"strings"
	"testing"

	"github.com/DwDestiny/StudyAbroadMatcher/internal/feature"
	"github.com/DwDestiny/StudyAbroadMatcher/internal/profile"
	"github.com/DwDestiny/StudyAbroadMatcher/internal/scoring"
)

func testProfileWithPath(t *testing.T, mode profile.BuildMode, center map[string]float64) *profile.ProgramProfile {
	t.Helper()
	stats := make([]profile.FeatureStats, feature.Count)
	v := feature.Defaults()
	for name, value := range center {
		i, ok := feature.Index(name)
		if !ok {
			t.Fatalf("unknown feature %q", name)
		}
		v[i] = value
	}
	for i := range stats {
		stats[i] = profile.FeatureStats{Mean: v[i], Std: 5}
	}
	return &profile.ProgramProfile{
		ProgramID:   "cs masters",
		DisplayName: "CS Masters",
		Mode:        mode,
		Paths: []*profile.Path{{
			ID:    0,
			Label: "Elite University-High GPA",
			Stats: stats,
		}},
	}
}

func TestTemplateAdviseLevels(t *testing.T) {
	prof := testProfileWithPath(t, profile.ModeClustered, nil)

	cases := []struct {
		level scoring.MatchLevel
		want  string
	}{
		{scoring.LevelVeryHigh, "strong application is recommended"},
		{scoring.LevelHigh, "Applying is recommended"},
		{scoring.LevelMedium, "Consider applying after strengthening"},
		{scoring.LevelLow, "clear gap"},
		{scoring.LevelVeryLow, "poor fit"},
	}

	for _, c := range cases {
		result := &scoring.MatchResult{Level: c.level, PathLabel: "Elite University-High GPA"}
		text, err := NewTemplate().Advise(context.Background(), feature.Defaults(), result, prof)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(text, c.want) {
			t.Fatalf("level %s advice %q does not mention %q", c.level, text, c.want)
		}
	}
}

func TestTemplateAdviseNamesWeakestArea(t *testing.T) {
	prof := testProfileWithPath(t, profile.ModeClustered, map[string]float64{
		feature.GPAPercentile:           90,
		feature.LanguageScoreNormalized: 85,
	})

	// GPA is far below the path mean, language only slightly.
	applicant := feature.Defaults()
	gpaIdx, _ := feature.Index(feature.GPAPercentile)
	langIdx, _ := feature.Index(feature.LanguageScoreNormalized)
	applicant[gpaIdx] = 50
	applicant[langIdx] = 80

	result := &scoring.MatchResult{Level: scoring.LevelMedium, PathID: 0, PathLabel: "Elite University-High GPA"}
	text, err := NewTemplate().Advise(context.Background(), applicant, result, prof)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(text, "your GPA") {
		t.Fatalf("expected GPA named as the weakest area, got %q", text)
	}
}

func TestTemplateAdviseSmallSampleCaveat(t *testing.T) {
	prof := testProfileWithPath(t, profile.ModeSmallSample, nil)

	result := &scoring.MatchResult{Level: scoring.LevelHigh, PathLabel: "Standard Undergraduate-Small Cohort"}
	text, err := NewTemplate().Advise(context.Background(), feature.Defaults(), result, prof)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(text, "small cohort") {
		t.Fatalf("expected small cohort caveat, got %q", text)
	}
}

func TestTemplateAdviseMentionsPathLabel(t *testing.T) {
	prof := testProfileWithPath(t, profile.ModeClustered, nil)

	result := &scoring.MatchResult{Level: scoring.LevelVeryHigh, PathLabel: "Elite University-High GPA"}
	text, err := NewTemplate().Advise(context.Background(), feature.Defaults(), result, prof)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(text, "Elite University-High GPA") {
		t.Fatalf("expected path label in advice, got %q", text)
	}
}
