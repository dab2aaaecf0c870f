package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/DwDestiny/StudyAbroadMatcher/internal/advice"
	"github.com/DwDestiny/StudyAbroadMatcher/internal/advice/gemini"
	"github.com/DwDestiny/StudyAbroadMatcher/internal/feature"
	"github.com/DwDestiny/StudyAbroadMatcher/internal/logger"
	"github.com/DwDestiny/StudyAbroadMatcher/internal/matcher"
	"github.com/DwDestiny/StudyAbroadMatcher/internal/scoring"
	"github.com/DwDestiny/StudyAbroadMatcher/internal/secrets"
)

// newSystem assembles the matching system from the resolved configuration.
func newSystem(config *Config, log *zap.Logger) *matcher.System {
	cfg := matcher.DefaultConfig()
	if config != nil && config.Build != nil && config.Build.Workers > 0 {
		cfg.Workers = config.Build.Workers
	}
	cfg.StoreFile = storeFile(config)

	return matcher.New(cfg, log)
}

// storeFile resolves the artifact path: config key, then the environment
// binding, then the default next to the working directory.
func storeFile(config *Config) string {
	if config != nil {
		if path := strings.TrimSpace(config.StoreFile); path != "" {
			return path
		}
	}
	if path := strings.TrimSpace(viper.GetString("store-file")); path != "" {
		return path
	}
	return defaultStoreFile
}

// configureAdvisor installs the Gemini advisor when AI advice is enabled.
// Misconfiguration degrades to template advice with a warning, never a
// startup failure.
func configureAdvisor(ctx context.Context, system *matcher.System, config *Config, log *zap.Logger) {
	if config == nil || config.AI == nil || !config.AI.Enabled {
		return
	}

	advisor, model, err := newGeminiAdvisor(ctx, config.AI, log)
	if err != nil {
		if errors.Is(err, secrets.ErrNotConfigured) {
			log.Warn("ai advice disabled",
				zap.Error(err),
				zap.String("hint", "set ai.gemini.api-key-file, GEMINI_API_KEY or GEMINI_API_KEY_FILE"),
			)
			return
		}
		log.Warn("ai advice disabled", zap.Error(err))
		return
	}

	system.UseAdvisor(advisor)
	log.Info("ai advice enabled", logger.CommonFields("gemini", model)...)
}

func newGeminiAdvisor(ctx context.Context, cfg *AdviceConfig, log *zap.Logger) (advice.Advisor, string, error) {
	provider := strings.TrimSpace(strings.ToLower(cfg.Provider))
	if provider != "" && provider != "gemini" {
		return nil, "", fmt.Errorf("unsupported ai provider: %s", cfg.Provider)
	}
	if cfg.Gemini == nil {
		return nil, "", errors.New("gemini configuration is required when ai advice is enabled")
	}

	keyFile := strings.TrimSpace(cfg.Gemini.APIKeyFile)
	if keyFile == "" {
		keyFile = strings.TrimSpace(os.Getenv("GEMINI_API_KEY_FILE"))
	}

	apiKey, err := secrets.Load(secrets.Source{
		Name:  "gemini api key",
		Value: cfg.Gemini.APIKey,
		Env:   "GEMINI_API_KEY",
		File:  keyFile,
	})
	if err != nil {
		return nil, "", err
	}

	generator, err := gemini.NewGenerator(ctx, apiKey, cfg.Gemini.Model, cfg.Gemini.MaxRetries, log)
	if err != nil {
		return nil, "", err
	}

	advLogger := logger.WithCommonFields(log, "gemini", generator.Model())
	return gemini.NewAdvisor(generator, advLogger, cfg.Gemini.MaxLogLength), generator.Model(), nil
}

// loadApplicant reads an applicant's features from a json file of
// {"feature_name": value} pairs. Missing features take schema defaults;
// names outside the schema are rejected.
func loadApplicant(path string) (feature.Vector, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading applicant file: %w", err)
	}

	var applicant feature.Applicant
	if err := json.Unmarshal(data, &applicant); err != nil {
		return nil, fmt.Errorf("parsing applicant file %q: %w", path, err)
	}

	return applicant.Vector()
}

func printResultJSON(results any) error {
	pretty, err := json.MarshalIndent(results, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(pretty))
	return nil
}

func printResult(r *scoring.MatchResult) {
	name := r.Program
	if name == "" {
		name = r.ProgramID
	}

	fmt.Printf("%s\n", name)
	fmt.Printf("  score:      %d (%s)\n", r.Score, r.Level)
	fmt.Printf("  path:       %s (confidence %.2f)\n", r.PathLabel, r.Confidence)
	fmt.Printf("  breakdown:  base %.1f, confidence %+.0f, envelope %+.0f\n",
		r.Breakdown.BaseScore, r.Breakdown.ConfidenceAdjustment, r.Breakdown.CoverageAdjustment)
	if r.Advice != "" {
		fmt.Printf("  advice:     %s\n", r.Advice)
	}
}

func printSkipped(skipped map[string]string) {
	if len(skipped) == 0 {
		return
	}

	ids := make([]string, 0, len(skipped))
	for id := range skipped {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	fmt.Println("  skipped:")
	for _, id := range ids {
		fmt.Printf("    %s: %s\n", id, skipped[id])
	}
}
