package scoring

// MatchLevel is the discrete band a final score falls into.
type MatchLevel string

const (
	LevelVeryHigh MatchLevel = "very_high"
	LevelHigh     MatchLevel = "high"
	LevelMedium   MatchLevel = "medium"
	LevelLow      MatchLevel = "low"
	LevelVeryLow  MatchLevel = "very_low"
)

// LevelForScore maps a final score to its band: VeryHigh >= 90,
// High 75-89, Medium 60-74, Low 45-59, VeryLow below 45.
func LevelForScore(score int) MatchLevel {
	switch {
	case score >= 90:
		return LevelVeryHigh
	case score >= 75:
		return LevelHigh
	case score >= 60:
		return LevelMedium
	case score >= 45:
		return LevelLow
	default:
		return LevelVeryLow
	}
}

// Breakdown exposes the components the final score was assembled from.
type Breakdown struct {
	BaseScore            float64 `json:"base_score"`
	ConfidenceAdjustment float64 `json:"confidence_adjustment"`
	CoverageAdjustment   float64 `json:"coverage_adjustment"`
}

// MatchResult is the outcome of scoring one applicant against one program.
// Results are created fresh per call and never persisted.
type MatchResult struct {
	ProgramID  string     `json:"program_id"`
	Program    string     `json:"program"`
	Score      int        `json:"score"`
	Level      MatchLevel `json:"match_level"`
	PathID     int        `json:"path_id"`
	PathLabel  string     `json:"matched_path_label"`
	Confidence float64    `json:"path_confidence"`
	Breakdown  Breakdown  `json:"breakdown"`
	Advice     string     `json:"advice,omitempty"`
}
