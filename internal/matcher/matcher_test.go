package matcher

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/zap"

	"github.com/DwDestiny/StudyAbroadMatcher/internal/corpus"
	"github.com/DwDestiny/StudyAbroadMatcher/internal/feature"
	"github.com/DwDestiny/StudyAbroadMatcher/internal/filtering"
	"github.com/DwDestiny/StudyAbroadMatcher/internal/profile"
	"github.com/DwDestiny/StudyAbroadMatcher/internal/scoring"
	"github.com/DwDestiny/StudyAbroadMatcher/internal/store"
)

// recordsAround builds n records for one program spread tightly around the
// given gpa and source-tier values, with the rest of the schema at defaults.
func recordsAround(t *testing.T, program string, n int, gpa, tier float64) []corpus.Record {
	t.Helper()

	gi, ok := feature.Index(feature.GPAPercentile)
	if !ok {
		t.Fatalf("missing gpa feature")
	}
	ti, ok := feature.Index(feature.SourceUniversityTierScore)
	if !ok {
		t.Fatalf("missing tier feature")
	}

	out := make([]corpus.Record, 0, n)
	for i := 0; i < n; i++ {
		v := feature.Defaults()
		v[gi] = gpa + float64(i%7) - 3
		v[ti] = tier + float64(i%5) - 2
		out = append(out, corpus.Record{ProgramID: program, Features: v})
	}
	return out
}

func applicantAt(t *testing.T, gpa, tier float64) feature.Vector {
	t.Helper()

	v := feature.Defaults()
	gi, _ := feature.Index(feature.GPAPercentile)
	ti, _ := feature.Index(feature.SourceUniversityTierScore)
	v[gi] = gpa
	v[ti] = tier
	return v
}

func TestBuildAndScoreClustered(t *testing.T) {
	recs := append(
		recordsAround(t, "CS Masters", 90, 85, 80),
		recordsAround(t, "CS Masters", 60, 55, 45)...,
	)

	s := New(DefaultConfig(), zap.NewNop())
	report, err := s.Build(context.Background(), recs)
	if err != nil {
		t.Fatalf("unexpected build error: %v", err)
	}

	if report.Records != 150 || report.Programs != 1 {
		t.Fatalf("unexpected report: records=%d programs=%d", report.Records, report.Programs)
	}
	if len(report.Built) != 1 || report.Built[0] != "cs masters" {
		t.Fatalf("unexpected built list: %v", report.Built)
	}
	if report.CappedValues != 0 {
		t.Fatalf("tight blobs should not trip the outlier fences, capped %d values", report.CappedValues)
	}

	prof, err := s.Lookup("CS Masters")
	if err != nil {
		t.Fatalf("unexpected lookup error: %v", err)
	}
	if prof.Mode != profile.ModeClustered {
		t.Fatalf("expected clustered mode, got %q", prof.Mode)
	}
	if len(prof.Paths) != 2 {
		t.Fatalf("expected 2 paths for two separated blobs, got %d", len(prof.Paths))
	}

	res, err := s.Score(context.Background(), applicantAt(t, 85, 80), "cs masters")
	if err != nil {
		t.Fatalf("unexpected score error: %v", err)
	}
	if res.Level != scoring.LevelVeryHigh {
		t.Fatalf("applicant at the dominant center should score very_high, got %q (score %d)", res.Level, res.Score)
	}
	if res.Confidence < 0.7 {
		t.Fatalf("expected confident assignment, got %v", res.Confidence)
	}
	if res.Advice == "" {
		t.Fatalf("expected advice text")
	}

	var matched *profile.Path
	for _, p := range prof.Paths {
		if p.ID == res.PathID {
			matched = p
		}
	}
	if matched == nil {
		t.Fatalf("result path %d not present in the profile", res.PathID)
	}
	if matched.Size != 90 {
		t.Fatalf("expected assignment to the 90-member path, got size %d", matched.Size)
	}
	if res.PathLabel != matched.Label {
		t.Fatalf("result label %q does not match path label %q", res.PathLabel, matched.Label)
	}
}

func TestBuildSmallSampleProgram(t *testing.T) {
	s := New(DefaultConfig(), zap.NewNop())
	if _, err := s.Build(context.Background(), recordsAround(t, "MBA", 45, 70, 60)); err != nil {
		t.Fatalf("unexpected build error: %v", err)
	}

	prof, err := s.Lookup("mba")
	if err != nil {
		t.Fatalf("unexpected lookup error: %v", err)
	}
	if prof.Mode != profile.ModeSmallSample {
		t.Fatalf("expected small-sample mode for 45 records, got %q", prof.Mode)
	}
	if prof.Band != "small" {
		t.Fatalf("expected small band, got %q", prof.Band)
	}
	if len(prof.Paths) != 1 || prof.Paths[0].Coverage != 1.0 {
		t.Fatalf("small-sample profiles must have one full-coverage path, got %+v", prof.Paths)
	}

	res, err := s.Score(context.Background(), applicantAt(t, 70, 60), "MBA")
	if err != nil {
		t.Fatalf("unexpected score error: %v", err)
	}
	if !strings.Contains(res.Advice, "small cohort") {
		t.Fatalf("expected the small-cohort caveat in advice, got %q", res.Advice)
	}
}

func TestBuildSkipsTinyProgram(t *testing.T) {
	recs := append(
		recordsAround(t, "MBA", 45, 70, 60),
		recordsAround(t, "Niche PhD", 10, 90, 90)...,
	)

	s := New(DefaultConfig(), zap.NewNop())
	report, err := s.Build(context.Background(), recs)
	if err != nil {
		t.Fatalf("unexpected build error: %v", err)
	}

	if report.Programs != 1 {
		t.Fatalf("expected 1 built program, got %d", report.Programs)
	}
	reason, ok := report.Skipped["niche phd"]
	if !ok {
		t.Fatalf("expected the tiny program in the skipped map, got %v", report.Skipped)
	}
	if !strings.Contains(reason, "insufficient data") {
		t.Fatalf("unexpected skip reason: %q", reason)
	}

	_, err = s.Score(context.Background(), applicantAt(t, 90, 90), "Niche PhD")
	var unknown *store.UnknownProgramError
	if !errors.As(err, &unknown) {
		t.Fatalf("expected *store.UnknownProgramError, got %T: %v", err, err)
	}
	if len(unknown.Known) != 1 || unknown.Known[0] != "mba" {
		t.Fatalf("unexpected known list: %v", unknown.Known)
	}
}

func TestScoreBeforeBuild(t *testing.T) {
	s := New(DefaultConfig(), zap.NewNop())

	_, err := s.Score(context.Background(), applicantAt(t, 70, 60), "mba")
	var notInit *store.NotInitializedError
	if !errors.As(err, &notInit) {
		t.Fatalf("expected *store.NotInitializedError, got %T: %v", err, err)
	}
}

func TestBuildCanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	s := New(DefaultConfig(), zap.NewNop())
	_, err := s.Build(ctx, recordsAround(t, "MBA", 45, 70, 60))
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if s.Status().Initialized {
		t.Fatalf("canceled build must not install a snapshot")
	}
}

func TestBuildWhileBuildingRejected(t *testing.T) {
	s := New(DefaultConfig(), zap.NewNop())
	s.buildMu.Lock()
	defer s.buildMu.Unlock()

	_, err := s.Build(context.Background(), recordsAround(t, "MBA", 45, 70, 60))
	if !errors.Is(err, ErrBuildInProgress) {
		t.Fatalf("expected ErrBuildInProgress, got %v", err)
	}
}

func TestRecommendRanksTruncatesAndFilters(t *testing.T) {
	recs := append(
		recordsAround(t, "CS Masters", 45, 85, 80),
		recordsAround(t, "Art History", 45, 40, 30)...,
	)

	s := New(DefaultConfig(), zap.NewNop())
	if _, err := s.Build(context.Background(), recs); err != nil {
		t.Fatalf("unexpected build error: %v", err)
	}

	applicant := applicantAt(t, 85, 80)

	all, err := s.Recommend(context.Background(), applicant, 0)
	if err != nil {
		t.Fatalf("unexpected recommend error: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("expected both programs ranked, got %d", len(all))
	}
	if all[0].ProgramID != "cs masters" {
		t.Fatalf("expected the close program first, got %q", all[0].ProgramID)
	}
	if all[0].Score < all[1].Score {
		t.Fatalf("results out of order: %d before %d", all[0].Score, all[1].Score)
	}
	for _, r := range all {
		if r.Advice == "" {
			t.Fatalf("expected advice on every recommendation, missing for %q", r.ProgramID)
		}
	}

	top, err := s.Recommend(context.Background(), applicant, 1)
	if err != nil {
		t.Fatalf("unexpected recommend error: %v", err)
	}
	if len(top) != 1 || top[0].ProgramID != "cs masters" {
		t.Fatalf("unexpected top-1: %+v", top)
	}

	filtered, err := s.Recommend(context.Background(), applicant, 5, filtering.NewMinScore(80))
	if err != nil {
		t.Fatalf("unexpected recommend error: %v", err)
	}
	if len(filtered) != 1 || filtered[0].ProgramID != "cs masters" {
		t.Fatalf("min-score filter should drop the distant program, got %+v", filtered)
	}
}

func TestRecommendValidatesApplicant(t *testing.T) {
	s := New(DefaultConfig(), zap.NewNop())

	// Before any build the store error wins.
	_, err := s.Recommend(context.Background(), applicantAt(t, 70, 60), 0)
	var notInit *store.NotInitializedError
	if !errors.As(err, &notInit) {
		t.Fatalf("expected *store.NotInitializedError, got %T: %v", err, err)
	}

	if _, err := s.Build(context.Background(), recordsAround(t, "MBA", 45, 70, 60)); err != nil {
		t.Fatalf("unexpected build error: %v", err)
	}

	_, err = s.Recommend(context.Background(), applicantAt(t, 150, 60), 0)
	var invalid *feature.InvalidFeatureError
	if !errors.As(err, &invalid) {
		t.Fatalf("expected *feature.InvalidFeatureError, got %T: %v", err, err)
	}
	if invalid.Name != feature.GPAPercentile {
		t.Fatalf("unexpected feature name: %q", invalid.Name)
	}
}

func TestMoreRelevantOrdering(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		a, b *scoring.MatchResult
		want bool
	}{
		{
			name: "higher score first",
			a:    &scoring.MatchResult{Score: 80, Confidence: 0.2},
			b:    &scoring.MatchResult{Score: 60, Confidence: 0.9},
			want: true,
		},
		{
			name: "tie broken by confidence",
			a:    &scoring.MatchResult{Score: 70, Confidence: 0.8},
			b:    &scoring.MatchResult{Score: 70, Confidence: 0.5},
			want: true,
		},
		{
			name: "equal results keep input order",
			a:    &scoring.MatchResult{Score: 70, Confidence: 0.5},
			b:    &scoring.MatchResult{Score: 70, Confidence: 0.5},
			want: false,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := moreRelevant(tc.a, tc.b); got != tc.want {
				t.Fatalf("expected %v, got %v", tc.want, got)
			}
		})
	}
}

func TestBuildPersistsAndLoadArtifact(t *testing.T) {
	file := filepath.Join(t.TempDir(), "profiles.db")

	cfg := DefaultConfig()
	cfg.StoreFile = file

	s := New(cfg, zap.NewNop())
	report, err := s.Build(context.Background(), recordsAround(t, "MBA", 45, 70, 60))
	if err != nil {
		t.Fatalf("unexpected build error: %v", err)
	}
	if _, err := os.Stat(file); err != nil {
		t.Fatalf("expected the artifact on disk: %v", err)
	}

	restored := New(DefaultConfig(), zap.NewNop())
	if err := restored.LoadArtifact(file); err != nil {
		t.Fatalf("unexpected load error: %v", err)
	}

	st := restored.Status()
	if !st.Initialized || st.BuildID != report.BuildID || st.Programs != 1 {
		t.Fatalf("unexpected restored status: %+v", st)
	}

	res, err := restored.Score(context.Background(), applicantAt(t, 70, 60), "MBA")
	if err != nil {
		t.Fatalf("unexpected score error after reload: %v", err)
	}
	if res.Level == "" || res.Score < 0 || res.Score > 100 {
		t.Fatalf("unexpected restored result: %+v", res)
	}

	err = restored.LoadArtifact(filepath.Join(t.TempDir(), "missing.db"))
	if !errors.Is(err, store.ErrNoSnapshot) {
		t.Fatalf("expected ErrNoSnapshot for a missing artifact, got %v", err)
	}
}

func TestStatusLifecycle(t *testing.T) {
	s := New(DefaultConfig(), zap.NewNop())

	st := s.Status()
	if st.Initialized || st.Building || st.BuildID != "" {
		t.Fatalf("unexpected fresh status: %+v", st)
	}

	if _, err := s.Build(context.Background(), recordsAround(t, "MBA", 45, 70, 60)); err != nil {
		t.Fatalf("unexpected build error: %v", err)
	}

	st = s.Status()
	if !st.Initialized || st.Building {
		t.Fatalf("unexpected status after build: %+v", st)
	}
	if st.BuildID == "" || st.Programs != 1 || st.BuiltAt.IsZero() {
		t.Fatalf("status missing build metadata: %+v", st)
	}
}
