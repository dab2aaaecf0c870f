package cmd

import (
	"fmt"
	"log"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/DwDestiny/StudyAbroadMatcher/internal/logger"
)

var programsCmd = &cobra.Command{
	Use:   "programs [id]",
	Short: "List supported programs, or show one program's admission paths",
	Args:  cobra.MaximumNArgs(1),
	Run: func(_ *cobra.Command, args []string) {
		runPrograms(args)
	},
}

func init() {
	rootCmd.AddCommand(programsCmd)
}

func runPrograms(args []string) {
	logger, err := logger.New(viper.GetBool("log-json"), viper.GetBool("debug"))
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}

	config, err := getConfig()
	if err != nil {
		logger.Fatal("getting a config", zap.Error(err))
	}

	system := newSystem(config, logger)
	if err := system.LoadArtifact(storeFile(config)); err != nil {
		logger.Fatal("loading the profile artifact",
			zap.Error(err),
			zap.String("hint", "run 'studymatcher build' first"),
		)
	}

	if len(args) == 1 {
		prof, err := system.Lookup(args[0])
		if err != nil {
			logger.Fatal("unknown program", zap.Error(err))
		}

		fmt.Printf("%s (%s)\n", prof.DisplayName, prof.ProgramID)
		fmt.Printf("  applications: %d\n", prof.Total)
		fmt.Printf("  mode:         %s", prof.Mode)
		if prof.Band != "" {
			fmt.Printf(" (%s cohort)", prof.Band)
		}
		fmt.Println()
		if prof.Quality > 0 {
			fmt.Printf("  quality:      %.3f\n", prof.Quality)
		}
		fmt.Println("  paths:")
		for _, p := range prof.Paths {
			fmt.Printf("    %d. %-40s size %3d, coverage %.2f, representativeness %.2f\n",
				p.ID, p.Label, p.Size, p.Coverage, p.Representativeness)
		}
		return
	}

	infos, err := system.Overview()
	if err != nil {
		logger.Fatal("listing programs", zap.Error(err))
	}

	for _, info := range infos {
		fmt.Printf("%-30s %5d applications, %d path(s), %s\n",
			info.ProgramID, info.Total, info.Paths, info.Mode)
	}
}
