package cmd

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/DwDestiny/StudyAbroadMatcher/internal/filtering"
	"github.com/DwDestiny/StudyAbroadMatcher/internal/logger"
	"github.com/DwDestiny/StudyAbroadMatcher/internal/scoring"
)

const PromptBack = "back"

var recommendCmd = &cobra.Command{
	Use:   "recommend",
	Short: "Rank all supported programs for one applicant",
	Run: func(cmd *cobra.Command, _ []string) {
		runRecommend(cmd)
	},
}

func init() {
	rootCmd.AddCommand(recommendCmd)

	recommendCmd.Flags().StringP("applicant", "a", "", "json file with the applicant's features")
	recommendCmd.Flags().IntP("top", "t", 10, "number of programs to return (0 for all)")
	recommendCmd.Flags().Float64("min-score", 0, "drop programs scoring below this value")
	recommendCmd.Flags().StringSlice("exclude", nil, "program ids to leave out")
	recommendCmd.Flags().Bool("json", false, "print the ranked results as json")
	recommendCmd.Flags().Bool("interactive", false, "browse the results and their breakdowns")

	recommendCmd.MarkFlagRequired("applicant")
}

func runRecommend(cmd *cobra.Command) {
	ctx := context.Background()

	logger, err := logger.New(viper.GetBool("log-json"), viper.GetBool("debug"))
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}

	config, err := getConfig()
	if err != nil {
		logger.Fatal("getting a config", zap.Error(err))
	}

	applicant, err := loadApplicant(cmd.Flag("applicant").Value.String())
	if err != nil {
		logger.Fatal("loading the applicant", zap.Error(err))
	}

	system := newSystem(config, logger)
	if err := system.LoadArtifact(storeFile(config)); err != nil {
		logger.Fatal("loading the profile artifact",
			zap.Error(err),
			zap.String("hint", "run 'studymatcher build' first"),
		)
	}

	top, err := cmd.Flags().GetInt("top")
	if err != nil {
		logger.Fatal("reading the top flag", zap.Error(err))
	}

	var filters []filtering.Filter
	if minScore, _ := cmd.Flags().GetFloat64("min-score"); minScore > 0 {
		filters = append(filters, filtering.NewMinScore(minScore))
	}
	if exclude, _ := cmd.Flags().GetStringSlice("exclude"); len(exclude) > 0 {
		filters = append(filters, filtering.NewExcludedPrograms(exclude))
	}

	results, err := system.Recommend(ctx, applicant, top, filters...)
	if err != nil {
		logger.Fatal("recommendation failed", zap.Error(err))
	}

	if len(results) == 0 {
		logger.Info("exiting", zap.String("reason", "no programs left after filters"))
		return
	}

	switch {
	case cmd.Flag("json").Value.String() == "true":
		if err := printResultJSON(results); err != nil {
			logger.Fatal("encoding the results", zap.Error(err))
		}
	case cmd.Flag("interactive").Value.String() == "true":
		if err := browseResults(results); err != nil {
			logger.Fatal("exiting", zap.Error(err))
		}
	default:
		for i, r := range results {
			name := r.Program
			if name == "" {
				name = r.ProgramID
			}
			fmt.Printf("%2d. %-30s %3d  %-10s %s\n", i+1, name, r.Score, r.Level, r.PathLabel)
		}
	}
}

// browseResults loops a selection prompt over the ranked list, printing the
// full breakdown of whichever entry is chosen.
func browseResults(results []*scoring.MatchResult) error {
	for {
		items := make([]string, 0, len(results)+1)
		for _, r := range results {
			name := r.Program
			if name == "" {
				name = r.ProgramID
			}
			items = append(items, fmt.Sprintf("%3d  %-10s %s", r.Score, r.Level, name))
		}

		prompt := promptui.Select{
			Label: "Choose a program and press ENTER",
			Items: append(items, PromptBack),
			Size:  12,
		}

		idx, choice, err := prompt.Run()
		if err != nil {
			return err
		}
		if choice == PromptBack {
			return nil
		}

		fmt.Println(strings.Repeat("-", 40))
		printResult(results[idx])
		fmt.Println(strings.Repeat("-", 40))
	}
}
