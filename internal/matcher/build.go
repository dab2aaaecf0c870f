package matcher

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/DwDestiny/StudyAbroadMatcher/internal/cleaning"
	"github.com/DwDestiny/StudyAbroadMatcher/internal/cluster"
	"github.com/DwDestiny/StudyAbroadMatcher/internal/corpus"
	"github.com/DwDestiny/StudyAbroadMatcher/internal/profile"
	"github.com/DwDestiny/StudyAbroadMatcher/internal/store"
)

// ErrBuildInProgress is returned when a build is requested while another is
// still running.
var ErrBuildInProgress = errors.New("a profile build is already in progress")

// BuildReport summarizes one batch build.
type BuildReport struct {
	BuildID      string
	Records      int
	Programs     int
	Built        []string
	Skipped      map[string]string
	CappedValues int
	Duration     time.Duration
}

// Build profiles every program in the record set and atomically swaps the
// result in as the current snapshot. Serving continues from the previous
// snapshot until the swap. Programs that cannot be profiled are recorded in
// the report, never built partially.
//
// When a store file is configured the snapshot is persisted after the swap;
// a persistence failure returns the report together with the error, since
// the new snapshot is already live.
func (s *System) Build(ctx context.Context, records []corpus.Record) (*BuildReport, error) {
	if !s.buildMu.TryLock() {
		return nil, ErrBuildInProgress
	}
	defer s.buildMu.Unlock()

	s.building.Store(true)
	defer s.building.Store(false)

	start := time.Now()

	groups := corpus.GroupByProgram(records)
	if len(groups) == 0 {
		return nil, errors.New("dataset contains no records with a program id")
	}

	workers := s.cfg.Workers
	if workers > len(groups) {
		workers = len(groups)
	}

	var (
		mu       sync.Mutex
		profiles = make(map[string]*profile.ProgramProfile, len(groups))
		skipped  = make(map[string]string)
		capped   int
	)

	jobs := make(chan *corpus.ProgramCorpus)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for c := range jobs {
				prof, cappedValues, err := s.buildProgram(c)

				mu.Lock()
				if err != nil {
					skipped[c.ProgramID] = err.Error()
				} else {
					profiles[c.ProgramID] = prof
					capped += cappedValues
				}
				mu.Unlock()

				if err != nil {
					s.logger.Info("program skipped",
						zap.String("program", c.ProgramID),
						zap.String("reason", err.Error()),
					)
					continue
				}
				s.logger.Info("program profile built",
					zap.String("program", c.ProgramID),
					zap.String("mode", string(prof.Mode)),
					zap.Int("paths", len(prof.Paths)),
				)
			}
		}()
	}

dispatch:
	for _, c := range groups {
		select {
		case <-ctx.Done():
			break dispatch
		case jobs <- c:
		}
	}
	close(jobs)
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	snap := store.NewSnapshot(profiles, skipped)
	s.store.Replace(snap)

	report := &BuildReport{
		BuildID:      snap.BuildID,
		Records:      len(records),
		Programs:     snap.Len(),
		Built:        snap.Programs(),
		Skipped:      snap.Skipped(),
		CappedValues: capped,
		Duration:     time.Since(start),
	}

	s.logger.Info("profile build finished",
		zap.String("build_id", report.BuildID),
		zap.Int("programs", report.Programs),
		zap.Int("skipped", len(report.Skipped)),
		zap.Int("capped_values", report.CappedValues),
		zap.Duration("duration", report.Duration),
	)

	if s.cfg.StoreFile != "" {
		if err := store.Save(s.cfg.StoreFile, snap); err != nil {
			return report, fmt.Errorf("persist snapshot: %w", err)
		}
	}

	return report, nil
}

// buildProgram turns one program's corpus into a profile. Large populations
// go through path discovery; populations below the clustering minimum, and
// degenerate ones clustering cannot split, get a single-path profile.
func (s *System) buildProgram(c *corpus.ProgramCorpus) (*profile.ProgramProfile, int, error) {
	n := c.Len()
	if n < profile.MinSampleSize {
		return nil, 0, &corpus.InsufficientDataError{
			ProgramID: c.ProgramID,
			Have:      n,
			Need:      profile.MinSampleSize,
		}
	}

	cleaned, _, capped := cleaning.Clean(c.Vectors())
	scaler := cluster.FitScaler(cleaned)

	if n >= s.cfg.Cluster.MinRecords {
		res, err := s.disc.Discover(scaler.TransformAll(cleaned))
		if err == nil {
			return s.builder.FromClusters(c, cleaned, res, scaler), capped.Values, nil
		}
		s.logger.Warn("path discovery failed, profiling as a single path",
			zap.String("program", c.ProgramID),
			zap.Error(err),
		)
	}

	return s.builder.SmallSample(c, cleaned, scaler), capped.Values, nil
}
