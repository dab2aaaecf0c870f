package cmd

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/DwDestiny/StudyAbroadMatcher/internal/corpus"
	"github.com/DwDestiny/StudyAbroadMatcher/internal/logger"
)

const (
	PromptYes = "Yes"
	PromptNo  = "No"
)

var buildCmd = &cobra.Command{
	Use:   "build",
	Short: "Build program profiles from a historical dataset and persist the artifact",
	Run: func(cmd *cobra.Command, _ []string) {
		runBuild(cmd)
	},
}

func init() {
	rootCmd.AddCommand(buildCmd)

	buildCmd.Flags().StringP("dataset", "i", "", "dataset file with historical applications (csv, jsonl or json)")
	buildCmd.Flags().BoolP("force", "f", false, "replace an existing artifact without asking")

	viper.BindPFlag("dataset", buildCmd.Flags().Lookup("dataset"))
}

func runBuild(cmd *cobra.Command) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger, err := logger.New(viper.GetBool("log-json"), viper.GetBool("debug"))
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}

	config, err := getConfig()
	if err != nil {
		logger.Fatal("getting a config", zap.Error(err))
	}

	dataset := datasetPath(config)
	if dataset == "" {
		logger.Fatal("dataset is required", zap.String("hint", "pass --dataset or set the 'dataset' key in the configuration file"))
	}

	target := storeFile(config)
	force := cmd.Flag("force").Value.String() == "true"
	if !force {
		if _, err := os.Stat(target); err == nil {
			prompt := promptui.Select{
				Label: fmt.Sprintf("Artifact %s already exists. Replace it?", target),
				Items: []string{PromptYes, PromptNo},
			}
			_, action, err := prompt.Run()
			if err != nil {
				logger.Fatal("prompt failed", zap.Error(err))
			}
			if action != PromptYes {
				logger.Info("exiting", zap.String("reason", "build not confirmed"))
				return
			}
		}
	}

	records, stats, err := corpus.NewLoader(logger).LoadFile(dataset)
	if err != nil {
		logger.Fatal("loading the dataset", zap.Error(err))
	}
	if stats.Skipped > 0 {
		logger.Warn("some dataset rows were unusable", zap.Int("skipped", stats.Skipped))
	}

	system := newSystem(config, logger)
	report, err := system.Build(ctx, records)
	if err != nil {
		logger.Fatal("building profiles", zap.Error(err))
	}

	fmt.Printf("build %s finished in %s\n", report.BuildID, report.Duration.Round(time.Millisecond))
	fmt.Printf("  records loaded:  %d\n", report.Records)
	fmt.Printf("  programs built:  %d (%s)\n", report.Programs, strings.Join(report.Built, ", "))
	fmt.Printf("  values capped:   %d\n", report.CappedValues)
	printSkipped(report.Skipped)
}

// datasetPath resolves the dataset file: flag binding first, then config.
func datasetPath(config *Config) string {
	if path := strings.TrimSpace(viper.GetString("dataset")); path != "" {
		return path
	}
	if config != nil {
		return strings.TrimSpace(config.Dataset)
	}
	return ""
}
