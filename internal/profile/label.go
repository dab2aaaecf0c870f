package profile

import (
	"fmt"
	"sort"
	"strings"

	"github.com/DwDestiny/StudyAbroadMatcher/internal/feature"
)

// keyFeatures are the features considered for label generation, in priority
// order. Ties in deviation keep this order.
var keyFeatures = []string{
	feature.SourceUniversityTierScore,
	feature.GPAPercentile,
	feature.MajorMatchingScore,
	feature.LanguageScoreNormalized,
	feature.WorkExperienceYears,
}

// pathLabel renders a short descriptor for a clustered path: the key
// features are ranked by how far the path mean deviates from the program
// average (relative to the feature's range), and the top three readable
// descriptors are joined.
func pathLabel(center, programMean feature.Vector, ordinal int) string {
	type ranked struct {
		name string
		dev  float64
	}

	rankings := make([]ranked, 0, len(keyFeatures))
	for _, name := range keyFeatures {
		i, ok := feature.Index(name)
		if !ok {
			continue
		}
		spec := feature.Specs()[i]
		dev := (center[i] - programMean[i]) / spec.Range()
		if dev < 0 {
			dev = -dev
		}
		rankings = append(rankings, ranked{name: name, dev: dev})
	}

	sort.SliceStable(rankings, func(a, b int) bool {
		return rankings[a].dev > rankings[b].dev
	})

	parts := make([]string, 0, 3)
	for _, r := range rankings {
		i, _ := feature.Index(r.name)
		if d := describe(r.name, center[i]); d != "" {
			parts = append(parts, d)
		}
		if len(parts) == 3 {
			break
		}
	}

	if len(parts) == 0 {
		return fmt.Sprintf("Path %d", ordinal)
	}
	return strings.Join(parts, "-")
}

// smallSampleLabel renders the single-path descriptor: up to two key
// feature descriptors in priority order plus the cohort band.
func smallSampleLabel(center feature.Vector, band string) string {
	parts := make([]string, 0, 3)
	for _, name := range keyFeatures {
		i, ok := feature.Index(name)
		if !ok {
			continue
		}
		if d := describe(name, center[i]); d != "" {
			parts = append(parts, d)
		}
		if len(parts) == 2 {
			break
		}
	}

	if band == "medium" {
		parts = append(parts, "Medium Cohort")
	} else {
		parts = append(parts, "Small Cohort")
	}
	return strings.Join(parts, "-")
}

// describe maps a key feature value to its tier vocabulary. An empty string
// means the value is not worth surfacing.
func describe(name string, v float64) string {
	switch name {
	case feature.SourceUniversityTierScore:
		switch {
		case v >= 85:
			return "Elite University"
		case v >= 75:
			return "Key University"
		case v >= 65:
			return "Notable University"
		default:
			return "Standard Undergraduate"
		}
	case feature.GPAPercentile:
		switch {
		case v >= 85:
			return "High GPA"
		case v >= 70:
			return "Solid GPA"
		default:
			return "Modest GPA"
		}
	case feature.MajorMatchingScore:
		switch {
		case v >= 0.8:
			return "Same-Field"
		case v >= 0.6:
			return "Related-Field"
		case v >= 0.3:
			return "Adjacent-Field"
		default:
			return "Career-Changer"
		}
	case feature.LanguageScoreNormalized:
		switch {
		case v >= 80:
			return "Strong Language"
		case v >= 65:
			return "Good Language"
		default:
			return ""
		}
	case feature.WorkExperienceYears:
		if v >= 2 {
			return "Experienced"
		}
		return "Fresh Graduate"
	}
	return ""
}
