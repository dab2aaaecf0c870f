// Package matcher is the orchestration facade: it owns the profile store,
// runs batch builds over historical records, and serves scoring and
// recommendation against the current snapshot.
package matcher

import (
	"context"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/DwDestiny/StudyAbroadMatcher/internal/advice"
	"github.com/DwDestiny/StudyAbroadMatcher/internal/cluster"
	"github.com/DwDestiny/StudyAbroadMatcher/internal/feature"
	"github.com/DwDestiny/StudyAbroadMatcher/internal/filtering"
	"github.com/DwDestiny/StudyAbroadMatcher/internal/profile"
	"github.com/DwDestiny/StudyAbroadMatcher/internal/scoring"
	"github.com/DwDestiny/StudyAbroadMatcher/internal/store"
)

// Config tunes the matching system.
type Config struct {
	// Workers bounds the number of programs profiled concurrently during a
	// batch build.
	Workers int
	// Cluster carries the path discovery settings.
	Cluster cluster.Config
	// StoreFile, when set, is the artifact the snapshot is persisted to
	// after every successful build.
	StoreFile string
}

// DefaultConfig returns the production settings.
func DefaultConfig() Config {
	return Config{
		Workers: 4,
		Cluster: cluster.DefaultConfig(),
	}
}

// System owns the store, scorer and builders behind one matching service.
// Scoring and recommendation are safe from any number of goroutines; builds
// are serialized.
type System struct {
	cfg      Config
	store    *store.Store
	scorer   *scoring.Scorer
	builder  *profile.Builder
	disc     *cluster.Discoverer
	template *advice.Template
	advisor  advice.Advisor
	logger   *zap.Logger

	buildMu  sync.Mutex
	building atomic.Bool
}

// New assembles a System. Advice defaults to the deterministic template;
// install an AI advisor with UseAdvisor.
func New(cfg Config, logger *zap.Logger) *System {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.Workers < 1 {
		cfg.Workers = 1
	}
	if cfg.Cluster.MinK == 0 {
		cfg.Cluster = cluster.DefaultConfig()
	}

	s := &System{
		cfg:      cfg,
		store:    store.New(),
		scorer:   scoring.NewScorer(logger),
		builder:  profile.NewBuilder(logger),
		disc:     cluster.NewDiscoverer(cfg.Cluster, logger),
		template: advice.NewTemplate(),
		logger:   logger,
	}
	s.advisor = s.template
	return s
}

// UseAdvisor replaces the advice source used for single-program scoring.
// Recommendation always uses the deterministic template.
func (s *System) UseAdvisor(a advice.Advisor) {
	if a != nil {
		s.advisor = a
	}
}

// Score matches an applicant against one program: store lookup first, then
// validation and scoring, then advice. Advisor failures degrade to template
// advice and never fail the call.
func (s *System) Score(ctx context.Context, applicant feature.Vector, programID string) (*scoring.MatchResult, error) {
	prof, err := s.store.Lookup(programID)
	if err != nil {
		return nil, err
	}

	result, err := s.scorer.Score(prof, applicant)
	if err != nil {
		return nil, err
	}

	result.Advice = s.adviceFor(ctx, applicant, result, prof)
	return result, nil
}

// Recommend scores the applicant against every supported program and returns
// the ranked list: descending score, ties broken by higher confidence.
// Filters run before top-N truncation. Per-program scoring failures are
// skipped, never fatal.
func (s *System) Recommend(ctx context.Context, applicant feature.Vector, topN int, filters ...filtering.Filter) ([]*scoring.MatchResult, error) {
	snap, err := s.store.Current()
	if err != nil {
		return nil, err
	}
	if err := applicant.Validate(); err != nil {
		return nil, err
	}

	results := make([]*scoring.MatchResult, 0, snap.Len())
	for _, id := range snap.Programs() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		prof, err := snap.Lookup(id)
		if err != nil {
			continue
		}

		result, err := s.scorer.Score(prof, applicant)
		if err != nil {
			s.logger.Warn("recommend skipped a program",
				zap.String("program", id),
				zap.Error(err),
			)
			continue
		}
		if text, err := s.template.Advise(ctx, applicant, result, prof); err == nil {
			result.Advice = text
		}
		results = append(results, result)
	}

	sort.SliceStable(results, func(i, j int) bool {
		return moreRelevant(results[i], results[j])
	})

	results, err = filtering.Run(filtering.Deps{Logger: s.logger}, filters, results)
	if err != nil {
		return nil, err
	}

	if topN > 0 && len(results) > topN {
		results = results[:topN]
	}
	return results, nil
}

// moreRelevant orders results by descending score, then by descending
// assignment confidence.
func moreRelevant(a, b *scoring.MatchResult) bool {
	if a.Score != b.Score {
		return a.Score > b.Score
	}
	return a.Confidence > b.Confidence
}

func (s *System) adviceFor(ctx context.Context, applicant feature.Vector, result *scoring.MatchResult, prof *profile.ProgramProfile) string {
	text, err := s.advisor.Advise(ctx, applicant, result, prof)
	if err == nil {
		return text
	}

	s.logger.Warn("advisor failed, using template advice",
		zap.String("program", result.ProgramID),
		zap.Error(err),
	)
	text, _ = s.template.Advise(ctx, applicant, result, prof)
	return text
}

// Status reports the runtime state of the system.
type Status struct {
	Initialized bool
	Building    bool
	BuildID     string
	BuiltAt     time.Time
	Programs    int
	Skipped     map[string]string
}

// Status returns the current snapshot generation and whether a build is
// running.
func (s *System) Status() Status {
	st := Status{Building: s.building.Load()}

	snap, err := s.store.Current()
	if err != nil {
		return st
	}

	st.Initialized = true
	st.BuildID = snap.BuildID
	st.BuiltAt = snap.BuiltAt
	st.Programs = snap.Len()
	st.Skipped = snap.Skipped()
	return st
}

// ProgramInfo is the per-program summary row for listings.
type ProgramInfo struct {
	ProgramID   string            `json:"program_id"`
	DisplayName string            `json:"display_name"`
	Total       int               `json:"total_applications"`
	Mode        profile.BuildMode `json:"mode"`
	Band        string            `json:"band,omitempty"`
	Paths       int               `json:"paths"`
	Quality     float64           `json:"quality"`
}

// Overview lists the supported programs in sorted id order.
func (s *System) Overview() ([]ProgramInfo, error) {
	snap, err := s.store.Current()
	if err != nil {
		return nil, err
	}

	infos := make([]ProgramInfo, 0, snap.Len())
	for _, id := range snap.Programs() {
		p, err := snap.Lookup(id)
		if err != nil {
			continue
		}
		infos = append(infos, ProgramInfo{
			ProgramID:   p.ProgramID,
			DisplayName: p.DisplayName,
			Total:       p.Total,
			Mode:        p.Mode,
			Band:        p.Band,
			Paths:       len(p.Paths),
			Quality:     p.Quality,
		})
	}
	return infos, nil
}

// Lookup returns one program's profile.
func (s *System) Lookup(programID string) (*profile.ProgramProfile, error) {
	return s.store.Lookup(programID)
}

// LoadArtifact replaces the current snapshot with the one persisted at path.
// Missing artifacts surface store.ErrNoSnapshot.
func (s *System) LoadArtifact(path string) error {
	snap, err := store.Load(path)
	if err != nil {
		return err
	}

	s.store.Replace(snap)
	s.logger.Info("profile artifact loaded",
		zap.String("path", path),
		zap.String("build_id", snap.BuildID),
		zap.Int("programs", snap.Len()),
	)
	return nil
}
