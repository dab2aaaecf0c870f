package gemini

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	_ "embed"

	"go.uber.org/zap"

	"github.com/DwDestiny/StudyAbroadMatcher/internal/feature"
	"github.com/DwDestiny/StudyAbroadMatcher/internal/logger"
	"github.com/DwDestiny/StudyAbroadMatcher/internal/profile"
	"github.com/DwDestiny/StudyAbroadMatcher/internal/scoring"
)

type contentGenerator interface {
	GenerateContent(ctx context.Context, system, message string) (string, error)
}

//go:embed prompt.md
var promptTemplate string

const systemInstruction = "You are an experienced study-abroad admissions counselor. " +
	"You explain quantitative match results to applicants in encouraging, honest, concrete language."

const (
	defaultMaxLogLength = 200

	// maxAdviceRunes gates runaway responses; the caller falls back to
	// template advice when the gate trips.
	maxAdviceRunes = 1200
)

// Advisor generates personalized guidance for a match result through Gemini.
type Advisor struct {
	generator contentGenerator
	logger    *zap.Logger
	maxLogLen int
}

// NewAdvisor wraps a content generator as an advice source.
func NewAdvisor(generator contentGenerator, log *zap.Logger, maxLogLength int) *Advisor {
	if maxLogLength <= 0 {
		maxLogLength = defaultMaxLogLength
	}
	if log == nil {
		log = zap.NewNop()
	}

	return &Advisor{generator: generator, logger: log, maxLogLen: maxLogLength}
}

// Advise renders the prompt from the applicant, result and profile and asks
// Gemini for guidance text.
func (a *Advisor) Advise(ctx context.Context, applicant feature.Vector, result *scoring.MatchResult, prof *profile.ProgramProfile) (string, error) {
	if result == nil {
		return "", errors.New("match result is required")
	}

	prompt, err := buildPrompt(applicant, result, prof)
	if err != nil {
		return "", err
	}

	a.logger.Debug("gemini advice request",
		zap.String("program", result.ProgramID),
		zap.Int("prompt_length", utf8.RuneCountInString(prompt)),
		zap.String("prompt_preview", logger.TruncateForLog(prompt, a.maxLogLen)),
	)

	raw, err := a.generator.GenerateContent(ctx, systemInstruction, prompt)
	if err != nil {
		return "", err
	}

	a.logger.Debug("gemini advice response",
		zap.String("program", result.ProgramID),
		zap.Int("response_length", utf8.RuneCountInString(raw)),
		zap.String("response_preview", logger.TruncateForLog(raw, a.maxLogLen)),
	)

	text := strings.TrimSpace(raw)
	if text == "" {
		return "", errors.New("gemini returned empty advice")
	}
	if utf8.RuneCountInString(text) > maxAdviceRunes {
		return "", fmt.Errorf("advice length %d exceeds limit %d", utf8.RuneCountInString(text), maxAdviceRunes)
	}

	return text, nil
}

func buildPrompt(applicant feature.Vector, result *scoring.MatchResult, prof *profile.ProgramProfile) (string, error) {
	features := make(map[string]float64, feature.Count)
	if len(applicant) == feature.Count {
		for i, name := range feature.Names() {
			features[name] = applicant[i]
		}
	}

	applicantJSON, err := json.MarshalIndent(features, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal applicant payload: %w", err)
	}

	resultJSON, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal result payload: %w", err)
	}

	programJSON, err := json.MarshalIndent(programSummary(result, prof), "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal program payload: %w", err)
	}

	prompt := strings.ReplaceAll(promptTemplate, "{{APPLICANT_JSON}}", string(applicantJSON))
	prompt = strings.ReplaceAll(prompt, "{{RESULT_JSON}}", string(resultJSON))
	prompt = strings.ReplaceAll(prompt, "{{PROGRAM_JSON}}", string(programJSON))
	return prompt, nil
}

func programSummary(result *scoring.MatchResult, prof *profile.ProgramProfile) map[string]any {
	if prof == nil {
		return map[string]any{"program": result.Program}
	}

	summary := map[string]any{
		"program":            prof.DisplayName,
		"total_applications": prof.Total,
		"mode":               prof.Mode,
	}
	if prof.Band != "" {
		summary["band"] = prof.Band
	}
	for _, p := range prof.Paths {
		if p.ID != result.PathID {
			continue
		}
		summary["matched_path"] = map[string]any{
			"label":              p.Label,
			"size":               p.Size,
			"coverage":           p.Coverage,
			"representativeness": p.Representativeness,
		}
	}
	return summary
}
