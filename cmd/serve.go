package cmd

import (
	"context"
	"errors"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/DwDestiny/StudyAbroadMatcher/internal/api"
	"github.com/DwDestiny/StudyAbroadMatcher/internal/corpus"
	"github.com/DwDestiny/StudyAbroadMatcher/internal/logger"
	"github.com/DwDestiny/StudyAbroadMatcher/internal/matcher"
	"github.com/DwDestiny/StudyAbroadMatcher/internal/store"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the http api",
	Run: func(cmd *cobra.Command, _ []string) {
		runServe(cmd)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringP("listen", "l", "", "listen address (default :8080)")
}

func runServe(cmd *cobra.Command) {
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

	logger.Info("starting the studymatcher api", zap.String("version", version))

	system := newSystem(config, logger)
	configureAdvisor(ctx, system, config, logger)

	artifact := storeFile(config)
	if err := system.LoadArtifact(artifact); err != nil {
		if !errors.Is(err, store.ErrNoSnapshot) {
			logger.Fatal("loading the profile artifact", zap.Error(err))
		}
		logger.Warn("no profile artifact found, serving uninitialized until a rebuild",
			zap.String("path", artifact),
		)
	}

	var rebuild api.RebuildFunc
	if dataset := datasetPath(config); dataset != "" {
		loader := corpus.NewLoader(logger)
		rebuild = func(ctx context.Context) (*matcher.BuildReport, error) {
			records, _, err := loader.LoadFile(dataset)
			if err != nil {
				return nil, err
			}
			return system.Build(ctx, records)
		}
	} else {
		logger.Warn("no dataset configured, the rebuild endpoint is disabled")
	}

	server := api.NewServer(system, api.Config{
		Debug:   viper.GetBool("debug"),
		Rebuild: rebuild,
	}, logger)

	if err := server.Run(ctx, listenAddr(cmd, config)); err != nil {
		logger.Fatal("http api failed", zap.Error(err))
	}
}

func listenAddr(cmd *cobra.Command, config *Config) string {
	if addr := strings.TrimSpace(cmd.Flag("listen").Value.String()); addr != "" {
		return addr
	}
	if config != nil && config.Server != nil {
		if addr := strings.TrimSpace(config.Server.Listen); addr != "" {
			return addr
		}
	}
	return defaultListen
}
