package profile

import (
	"time"

	"go.uber.org/zap"

	"github.com/DwDestiny/StudyAbroadMatcher/internal/cluster"
	"github.com/DwDestiny/StudyAbroadMatcher/internal/corpus"
	"github.com/DwDestiny/StudyAbroadMatcher/internal/feature"
	"github.com/DwDestiny/StudyAbroadMatcher/internal/stats"
)

// Builder produces ProgramProfiles from cleaned populations.
type Builder struct {
	logger *zap.Logger
}

// NewBuilder returns a Builder logging through the given logger.
func NewBuilder(logger *zap.Logger) *Builder {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Builder{logger: logger}
}

// FromClusters builds a clustered profile: one path per discovered group,
// with per-feature statistics over the cleaned member vectors.
func (b *Builder) FromClusters(c *corpus.ProgramCorpus, cleaned []feature.Vector, res *cluster.Result, scaler *cluster.Scaler) *ProgramProfile {
	total := len(cleaned)
	programMean := feature.Mean(cleaned)

	paths := make([]*Path, 0, len(res.Groups))
	for gi, g := range res.Groups {
		members := make([]feature.Vector, 0, len(g.Members))
		for _, idx := range g.Members {
			members = append(members, cleaned[idx])
		}

		pathStats := statsFor(members)
		center := centerOf(pathStats)

		p := &Path{
			ID:                 gi + 1,
			Size:               len(members),
			Coverage:           float64(len(members)) / float64(total),
			Center:             center,
			Stats:              pathStats,
			Representativeness: cohesion(members, center),
		}
		p.Label = pathLabel(center, programMean, p.ID)
		paths = append(paths, p)

		b.logger.Debug("built path",
			zap.String("program", c.ProgramID),
			zap.Int("path", p.ID),
			zap.String("label", p.Label),
			zap.Int("size", p.Size),
			zap.Float64("coverage", p.Coverage),
			zap.Float64("representativeness", p.Representativeness),
		)
	}

	return &ProgramProfile{
		ProgramID:   c.ProgramID,
		DisplayName: c.DisplayName,
		Total:       total,
		Mode:        ModeClustered,
		Quality:     res.Quality,
		FellBack:    res.FellBack,
		Scaler:      scaler,
		Paths:       paths,
		BuiltAt:     time.Now().UTC(),
	}
}

// SmallSample builds a single-path profile for a program whose population is
// big enough to be useful but too small for clustering. Coverage is always
// 1.0 and representativeness is derived from population dispersion instead
// of cluster cohesion.
func (b *Builder) SmallSample(c *corpus.ProgramCorpus, cleaned []feature.Vector, scaler *cluster.Scaler) *ProgramProfile {
	total := len(cleaned)

	pathStats := statsFor(cleaned)
	center := centerOf(pathStats)

	band := "small"
	if total >= mediumCohort {
		band = "medium"
	}

	p := &Path{
		ID:                 1,
		Size:               total,
		Coverage:           1.0,
		Center:             center,
		Stats:              pathStats,
		Representativeness: populationTightness(pathStats),
	}
	p.Label = smallSampleLabel(center, band)

	b.logger.Debug("built small-sample path",
		zap.String("program", c.ProgramID),
		zap.String("label", p.Label),
		zap.Int("size", total),
		zap.String("band", band),
	)

	return &ProgramProfile{
		ProgramID:   c.ProgramID,
		DisplayName: c.DisplayName,
		Total:       total,
		Mode:        ModeSmallSample,
		Band:        band,
		Scaler:      scaler,
		Paths:       []*Path{p},
		BuiltAt:     time.Now().UTC(),
	}
}

// statsFor computes per-feature distribution statistics over the members.
func statsFor(members []feature.Vector) []FeatureStats {
	out := make([]FeatureStats, feature.Count)
	column := make([]float64, len(members))

	for f := 0; f < feature.Count; f++ {
		for i, v := range members {
			column[i] = v[f]
		}
		lo, hi := stats.MinMax(column)
		out[f] = FeatureStats{
			Mean:   stats.Mean(column),
			Std:    stats.StdDev(column),
			Median: stats.Median(column),
			Q25:    stats.Quantile(column, 0.25),
			Q75:    stats.Quantile(column, 0.75),
			Min:    lo,
			Max:    hi,
		}
	}
	return out
}

func centerOf(pathStats []FeatureStats) feature.Vector {
	center := make(feature.Vector, len(pathStats))
	for i, s := range pathStats {
		center[i] = s.Mean
	}
	return center
}

// cohesion is the mean cosine similarity of members to the path center.
func cohesion(members []feature.Vector, center feature.Vector) float64 {
	if len(members) == 0 {
		return 0
	}
	var sum float64
	for _, m := range members {
		sum += feature.Cosine(m, center)
	}
	return feature.Clamp01(sum / float64(len(members)))
}

// populationTightness maps per-feature dispersion to [0,1]: 1 means every
// feature is constant, lower values mean a more spread-out population.
func populationTightness(pathStats []FeatureStats) float64 {
	specs := feature.Specs()
	var sum float64
	for i, s := range pathStats {
		sum += s.Std / specs[i].Range()
	}
	return feature.Clamp01(1 - sum/float64(len(pathStats)))
}
