// Package profile turns discovered clusters into the statistical path
// profiles that scoring runs against.
package profile

import (
	"time"

	"github.com/DwDestiny/StudyAbroadMatcher/internal/cluster"
	"github.com/DwDestiny/StudyAbroadMatcher/internal/feature"
)

// MinSampleSize is the absolute floor of historical applications a program
// needs to be supported at all. Programs below it are excluded from the
// store and reported as unsupported.
const MinSampleSize = 30

// mediumCohort separates the two small-sample bands.
const mediumCohort = 50

// BuildMode records how a program's profile was produced.
type BuildMode string

const (
	// ModeClustered means the profile carries 2-5 discovered paths.
	ModeClustered BuildMode = "clustered"
	// ModeSmallSample means the population was too small for clustering
	// and the profile carries a single whole-population path.
	ModeSmallSample BuildMode = "small_sample"
)

// FeatureStats describes one feature's distribution over a path's members,
// computed after cleaning.
type FeatureStats struct {
	Mean   float64 `json:"mean"`
	Std    float64 `json:"std"`
	Median float64 `json:"median"`
	Q25    float64 `json:"q25"`
	Q75    float64 `json:"q75"`
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
}

// Path is one success path: a cluster of historically admitted applicants
// with a recognizable shared profile.
type Path struct {
	ID                 int            `json:"id"`
	Label              string         `json:"label"`
	Size               int            `json:"size"`
	Coverage           float64        `json:"coverage"`
	Center             feature.Vector `json:"center"`
	Stats              []FeatureStats `json:"stats"`
	Representativeness float64        `json:"representativeness"`
}

// ProgramProfile owns the paths of one program. Profiles are immutable once
// built and exclusively owned by the store.
type ProgramProfile struct {
	ProgramID   string          `json:"program_id"`
	DisplayName string          `json:"display_name"`
	Total       int             `json:"total_applications"`
	Mode        BuildMode       `json:"mode"`
	Band        string          `json:"band,omitempty"`
	Quality     float64         `json:"quality"`
	FellBack    bool            `json:"fell_back,omitempty"`
	Scaler      *cluster.Scaler `json:"scaler"`
	Paths       []*Path         `json:"paths"`
	BuiltAt     time.Time       `json:"built_at"`
}
