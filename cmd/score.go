package cmd

import (
	"context"
	"log"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/DwDestiny/StudyAbroadMatcher/internal/logger"
)

var scoreCmd = &cobra.Command{
	Use:   "score",
	Short: "Score one applicant against one program",
	Run: func(cmd *cobra.Command, _ []string) {
		runScore(cmd)
	},
}

func init() {
	rootCmd.AddCommand(scoreCmd)

	scoreCmd.Flags().StringP("program", "p", "", "program id to score against")
	scoreCmd.Flags().StringP("applicant", "a", "", "json file with the applicant's features")
	scoreCmd.Flags().Bool("json", false, "print the raw match result as json")

	scoreCmd.MarkFlagRequired("program")
	scoreCmd.MarkFlagRequired("applicant")
}

func runScore(cmd *cobra.Command) {
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
	configureAdvisor(ctx, system, config, logger)

	result, err := system.Score(ctx, applicant, cmd.Flag("program").Value.String())
	if err != nil {
		logger.Fatal("scoring failed", zap.Error(err))
	}

	if cmd.Flag("json").Value.String() == "true" {
		if err := printResultJSON(result); err != nil {
			logger.Fatal("encoding the result", zap.Error(err))
		}
		return
	}
	printResult(result)
}
