// Package cluster discovers the distinct "success paths" inside one
// program's historical population: k-means over standardized feature
// vectors, with the path count chosen by silhouette quality.
package cluster

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/DwDestiny/StudyAbroadMatcher/internal/corpus"
	"github.com/DwDestiny/StudyAbroadMatcher/internal/feature"
)

// Config tunes the discovery run.
type Config struct {
	// Seed drives the deterministic k-means restarts.
	Seed int64
	// Restarts is the number of k-means initializations per candidate k.
	Restarts int
	// MinRecords is the population floor below which discovery refuses to
	// run and the small-sample path applies instead.
	MinRecords int
	// MinK and MaxK bound the candidate path counts.
	MinK int
	MaxK int
	// QualityThreshold is the minimum silhouette a candidate must clear.
	QualityThreshold float64
	// QualityEpsilon treats candidate scores within this distance as equal,
	// preferring the smaller k.
	QualityEpsilon float64
	// MinClusterShare and MaxClusterShare reject candidates with a
	// pathologically small or dominant cluster.
	MinClusterShare float64
	MaxClusterShare float64
}

// DefaultConfig returns the production discovery settings.
func DefaultConfig() Config {
	return Config{
		Seed:             42,
		Restarts:         10,
		MinRecords:       100,
		MinK:             2,
		MaxK:             5,
		QualityThreshold: 0.3,
		QualityEpsilon:   0.01,
		MinClusterShare:  0.05,
		MaxClusterShare:  0.95,
	}
}

// Group is one discovered path: its centroid in the standardized space and
// the member indexes into the input collection.
type Group struct {
	Center  feature.Vector
	Members []int
}

// Result is a completed discovery for one program.
type Result struct {
	K        int
	Quality  float64
	FellBack bool
	Groups   []Group
}

// Discoverer runs path discovery over standardized program populations.
type Discoverer struct {
	cfg    Config
	logger *zap.Logger
}

// NewDiscoverer builds a Discoverer with the given settings.
func NewDiscoverer(cfg Config, logger *zap.Logger) *Discoverer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Discoverer{cfg: cfg, logger: logger}
}

// Discover clusters the standardized vectors of one program into 2-5 paths.
// Populations below the configured minimum are rejected with
// *corpus.InsufficientDataError so the caller can fall through to the
// small-sample handler. Degenerate populations that cannot sustain two
// non-empty clusters fail with a regular error.
func (d *Discoverer) Discover(vectors []feature.Vector) (*Result, error) {
	n := len(vectors)
	if n < d.cfg.MinRecords {
		return nil, &corpus.InsufficientDataError{Have: n, Need: d.cfg.MinRecords}
	}

	candidates := make([]Candidate, 0, d.cfg.MaxK-d.cfg.MinK+1)
	partitions := make(map[int]partition, d.cfg.MaxK-d.cfg.MinK+1)

	for k := d.cfg.MinK; k <= d.cfg.MaxK; k++ {
		p := runKMeans(vectors, k, d.cfg.Seed, d.cfg.Restarts)
		q := Silhouette(vectors, p.labels, k)
		b := balanced(p.labels, k, n, d.cfg.MinClusterShare, d.cfg.MaxClusterShare)

		candidates = append(candidates, Candidate{K: k, Quality: q, Balanced: b})
		partitions[k] = p

		d.logger.Debug("evaluated path count",
			zap.Int("k", k),
			zap.Float64("silhouette", q),
			zap.Bool("balanced", b),
			zap.Float64("inertia", p.inertia),
		)
	}

	k, quality, fellBack := SelectBestK(candidates, d.cfg.QualityThreshold, d.cfg.QualityEpsilon)
	chosen := partitions[k]

	groups := make([]Group, 0, k)
	for c := 0; c < k; c++ {
		g := Group{Center: chosen.centers[c]}
		for i, l := range chosen.labels {
			if l == c {
				g.Members = append(g.Members, i)
			}
		}
		if len(g.Members) > 0 {
			groups = append(groups, g)
		}
	}

	if len(groups) < d.cfg.MinK {
		return nil, fmt.Errorf("degenerate clustering: only %d non-empty clusters out of %d", len(groups), k)
	}

	if fellBack {
		d.logger.Debug("no path count cleared the quality threshold, using coarsest split",
			zap.Float64("threshold", d.cfg.QualityThreshold),
			zap.Float64("silhouette", quality),
		)
	}

	return &Result{K: len(groups), Quality: quality, FellBack: fellBack, Groups: groups}, nil
}
