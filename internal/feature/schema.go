// Package feature defines the fixed numeric schema shared by every applicant
// and historical record in the system. All downstream stages (cleaning,
// clustering, profiling, scoring) operate on ordered vectors over this schema,
// so nothing past the boundary ever deals with partial or unknown features.
package feature

// Canonical feature names. The set is closed: inputs referencing any other
// name are rejected at the boundary.
const (
	SourceUniversityTierScore      = "source_university_tier_score"
	GPAPercentile                  = "gpa_percentile"
	MajorMatchingScore             = "major_matching_score"
	LanguageScoreNormalized        = "language_score_normalized"
	WorkExperienceYears            = "work_experience_years"
	WorkRelevanceScore             = "work_relevance_score"
	TargetUniversityTierScore      = "target_university_tier_score"
	UniversityMatchingScore        = "university_matching_score"
	CompetitionIndex               = "competition_index"
	AcademicStrengthScore          = "academic_strength_score"
	ApplicantComprehensiveStrength = "applicant_comprehensive_strength"
	SourceUniversityTier           = "source_university_tier"
	TargetUniversityQSRank         = "target_university_qs_rank"
	TargetUniversityCompetitive    = "target_university_competitiveness"
	UniversityTierGap              = "university_tier_gap"
	GPARelativeRank                = "gpa_relative_rank"
	EstimatedSuccessProbability    = "estimated_success_probability"
	HasLanguageScore               = "has_language_score"
	HasWorkExperience              = "has_work_experience"
	TimeToGraduation               = "time_to_graduation"
)

// Count is the schema cardinality. Every Vector has exactly this length.
const Count = 20

// Spec describes one schema feature: its valid range, the default used when
// an input omits it, and its weight in the scored similarity. Zero-weight
// features still participate in cleaning, clustering and path statistics.
type Spec struct {
	Name    string
	Min     float64
	Max     float64
	Default float64
	Weight  float64
}

// Range returns the width of the feature's valid interval.
func (s Spec) Range() float64 {
	return s.Max - s.Min
}

// specs is the schema, in vector order. Weights sum to 1.00: academic
// performance and major relevance carry the most, secondary context
// features the least.
var specs = [Count]Spec{
	{Name: SourceUniversityTierScore, Min: 0, Max: 100, Default: 60, Weight: 0.20},
	{Name: GPAPercentile, Min: 0, Max: 100, Default: 50, Weight: 0.18},
	{Name: MajorMatchingScore, Min: 0, Max: 1, Default: 0.5, Weight: 0.15},
	{Name: LanguageScoreNormalized, Min: 0, Max: 100, Default: 60, Weight: 0.12},
	{Name: WorkExperienceYears, Min: 0, Max: 40, Default: 0, Weight: 0.10},
	{Name: WorkRelevanceScore, Min: 0, Max: 1, Default: 0, Weight: 0.08},
	{Name: TargetUniversityTierScore, Min: 0, Max: 100, Default: 70, Weight: 0.05},
	{Name: UniversityMatchingScore, Min: 0, Max: 1, Default: 0.5, Weight: 0.04},
	{Name: CompetitionIndex, Min: 0, Max: 10, Default: 5, Weight: 0.03},
	{Name: AcademicStrengthScore, Min: 0, Max: 100, Default: 60, Weight: 0.03},
	{Name: ApplicantComprehensiveStrength, Min: 0, Max: 100, Default: 60, Weight: 0.02},
	{Name: SourceUniversityTier, Min: 1, Max: 5, Default: 3, Weight: 0},
	{Name: TargetUniversityQSRank, Min: 1, Max: 1500, Default: 500, Weight: 0},
	{Name: TargetUniversityCompetitive, Min: 0, Max: 100, Default: 50, Weight: 0},
	{Name: UniversityTierGap, Min: -4, Max: 4, Default: 0, Weight: 0},
	{Name: GPARelativeRank, Min: 0, Max: 1, Default: 0.5, Weight: 0},
	{Name: EstimatedSuccessProbability, Min: 0, Max: 1, Default: 0.5, Weight: 0},
	{Name: HasLanguageScore, Min: 0, Max: 1, Default: 0, Weight: 0},
	{Name: HasWorkExperience, Min: 0, Max: 1, Default: 0, Weight: 0},
	{Name: TimeToGraduation, Min: 0, Max: 10, Default: 1, Weight: 0},
}

var indexByName = func() map[string]int {
	m := make(map[string]int, Count)
	for i, s := range specs {
		m[s.Name] = i
	}
	return m
}()

// Specs returns the schema in vector order. Callers must not modify the
// returned slice.
func Specs() []Spec {
	return specs[:]
}

// Index returns the vector position of the named feature.
func Index(name string) (int, bool) {
	i, ok := indexByName[name]
	return i, ok
}

// Names returns all feature names in vector order.
func Names() []string {
	names := make([]string, Count)
	for i, s := range specs {
		names[i] = s.Name
	}
	return names
}
