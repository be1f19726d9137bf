package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"codemetrics/internal/analysis"
	"codemetrics/internal/config"
	"codemetrics/internal/controller"
	"codemetrics/internal/handler"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// stringSliceFlag is a custom flag type that allows multiple values
type stringSliceFlag []string

func (s *stringSliceFlag) String() string {
	return strings.Join(*s, ",")
}

func (s *stringSliceFlag) Set(value string) error {
	*s = append(*s, value)
	return nil
}

func main() {
	os.Exit(run())
}

func run() int {
	var sourceConfigPath = flag.String("source", "source.yaml", "Path to source configuration file")
	var appConfigPath = flag.String("app", "app.yaml", "Path to app configuration file")
	var serve = flag.Bool("serve", false, "Run the HTTP server instead of a one-shot analysis")
	var format = flag.String("format", "", "Report format: text or json (overrides app.format)")
	var measure = flag.Bool("measure", false, "Include every metric value in the report")
	var output = flag.String("output", "", "Write the report to this file instead of stdout")
	var analyze stringSliceFlag
	flag.Var(&analyze, "analyze", "Repository name to analyze (can be specified multiple times, default all)")
	flag.Parse()

	cfg, err := config.LoadConfig(*appConfigPath, *sourceConfigPath)
	if err != nil {
		log.Fatal("Failed to load configuration: ", err)
	}
	if *format != "" {
		cfg.App.Format = *format
	}

	logger, err := newLogger(cfg.App)
	if err != nil {
		log.Fatal("Failed to initialize logger: ", err)
	}
	defer logger.Sync()

	logger.Info("Configuration loaded successfully",
		zap.Int("repositories", len(cfg.Source.Repositories)),
		zap.Int("rules", len(cfg.Rules)))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if *serve {
		Serve(cfg, logger)
		return 0
	}

	out := io.Writer(os.Stdout)
	if *output != "" {
		f, err := os.Create(*output)
		if err != nil {
			logger.Error("Failed to create output file", zap.String("path", *output), zap.Error(err))
			return 1
		}
		defer f.Close()
		out = f
	}

	if failed := AnalyzeCommand(ctx, cfg, logger, analyze, *measure, out); failed > 0 {
		logger.Error("Analysis failed", zap.Int("failed_repositories", failed))
		return 1
	}
	return 0
}

func newLogger(app config.App) (*zap.Logger, error) {
	cfgZap := zap.NewProductionConfig()
	level, err := zapcore.ParseLevel(app.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", app.LogLevel, err)
	}
	cfgZap.Level.SetLevel(level)
	// stdout carries the report
	cfgZap.OutputPaths = []string{"stderr"}
	if len(app.OutputPaths) > 0 {
		cfgZap.OutputPaths = app.OutputPaths
	}
	return cfgZap.Build()
}

func Serve(cfg *config.Config, logger *zap.Logger) {
	metricsController := controller.NewMetricsController(cfg, logger)
	router := handler.SetupRouter(metricsController, logger)

	logger.Info("Starting server", zap.Int("port", cfg.App.Port))
	if err := http.ListenAndServe(fmt.Sprintf(":%d", cfg.App.Port), router); err != nil {
		logger.Fatal("Failed to start server", zap.Error(err))
	}
}

// AnalyzeCommand analyses the named repositories, or every enabled one, and
// writes one report per repository. It returns the number of repositories
// that could not be analysed.
func AnalyzeCommand(ctx context.Context, cfg *config.Config, logger *zap.Logger, repoNames []string, measure bool, out io.Writer) int {
	rules, err := analysis.RulesFromConfig(cfg.Rules)
	if err != nil {
		logger.Error("Invalid rule configuration", zap.Error(err))
		return 1
	}

	if len(repoNames) == 0 {
		for _, repo := range cfg.Source.Repositories {
			if !repo.Disabled {
				repoNames = append(repoNames, repo.Name)
			}
		}
	}

	analyzer := analysis.NewAnalyzer(cfg, rules, logger)
	analyzer.SetMeasure(measure)

	failed := 0
	for _, repoName := range repoNames {
		// Validate repository exists in config
		repo, err := cfg.GetRepository(repoName)
		if err != nil {
			logger.Error("Repository not found in configuration",
				zap.String("repo_name", repoName),
				zap.Error(err))
			failed++
			continue
		}

		rep, err := analyzer.AnalyzeRepository(ctx, repo)
		if err != nil {
			logger.Error("Failed to analyze repository",
				zap.String("repo_name", repo.Name),
				zap.Error(err))
			failed++
			continue
		}

		if err := rep.Write(out, cfg.App.Format); err != nil {
			logger.Error("Failed to write report",
				zap.String("repo_name", repo.Name),
				zap.Error(err))
			failed++
		}
	}
	return failed
}
