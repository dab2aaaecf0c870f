package feature

import (
	"encoding/json"
	"fmt"

	"github.com/mitchellh/mapstructure"
)

// Applicant is the boundary representation of an applicant's features: one
// optional field per schema feature. Nil fields fall back to the schema
// defaults when the struct is turned into a Vector. JSON input with keys
// outside the schema is rejected during unmarshalling.
type Applicant struct {
	SourceUniversityTierScore      *float64 `json:"source_university_tier_score"`
	GPAPercentile                  *float64 `json:"gpa_percentile"`
	MajorMatchingScore             *float64 `json:"major_matching_score"`
	LanguageScoreNormalized        *float64 `json:"language_score_normalized"`
	WorkExperienceYears            *float64 `json:"work_experience_years"`
	WorkRelevanceScore             *float64 `json:"work_relevance_score"`
	TargetUniversityTierScore      *float64 `json:"target_university_tier_score"`
	UniversityMatchingScore        *float64 `json:"university_matching_score"`
	CompetitionIndex               *float64 `json:"competition_index"`
	AcademicStrengthScore          *float64 `json:"academic_strength_score"`
	ApplicantComprehensiveStrength *float64 `json:"applicant_comprehensive_strength"`
	SourceUniversityTier           *float64 `json:"source_university_tier"`
	TargetUniversityQSRank         *float64 `json:"target_university_qs_rank"`
	TargetUniversityCompetitive    *float64 `json:"target_university_competitiveness"`
	UniversityTierGap              *float64 `json:"university_tier_gap"`
	GPARelativeRank                *float64 `json:"gpa_relative_rank"`
	EstimatedSuccessProbability    *float64 `json:"estimated_success_probability"`
	HasLanguageScore               *float64 `json:"has_language_score"`
	HasWorkExperience              *float64 `json:"has_work_experience"`
	TimeToGraduation               *float64 `json:"time_to_graduation"`
}

// UnmarshalJSON decodes the applicant while rejecting keys that are not part
// of the schema.
func (a *Applicant) UnmarshalJSON(data []byte) error {
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	var md mapstructure.Metadata
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:   a,
		TagName:  "json",
		Metadata: &md,
	})
	if err != nil {
		return fmt.Errorf("building applicant decoder: %w", err)
	}
	if err := dec.Decode(raw); err != nil {
		return fmt.Errorf("decoding applicant features: %w", err)
	}
	if len(md.Unused) > 0 {
		return &InvalidFeatureError{Name: md.Unused[0], Unknown: true}
	}

	return nil
}

// Vector converts the applicant into a validated schema vector, filling nil
// fields with schema defaults.
func (a *Applicant) Vector() (Vector, error) {
	v := Defaults()
	for i, field := range a.fields() {
		if field != nil {
			v[i] = *field
		}
	}
	if err := v.Validate(); err != nil {
		return nil, err
	}
	return v, nil
}

// fields lists the struct fields in schema vector order.
func (a *Applicant) fields() [Count]*float64 {
	return [Count]*float64{
		a.SourceUniversityTierScore,
		a.GPAPercentile,
		a.MajorMatchingScore,
		a.LanguageScoreNormalized,
		a.WorkExperienceYears,
		a.WorkRelevanceScore,
		a.TargetUniversityTierScore,
		a.UniversityMatchingScore,
		a.CompetitionIndex,
		a.AcademicStrengthScore,
		a.ApplicantComprehensiveStrength,
		a.SourceUniversityTier,
		a.TargetUniversityQSRank,
		a.TargetUniversityCompetitive,
		a.UniversityTierGap,
		a.GPARelativeRank,
		a.EstimatedSuccessProbability,
		a.HasLanguageScore,
		a.HasWorkExperience,
		a.TimeToGraduation,
	}
}
