package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"time"

	"ridgecount/internal/logging"
	"ridgecount/pkg/config"
	"ridgecount/pkg/pipeline"
)

func main() {
	// Parse command line arguments
	input := flag.String("input", "", "Fingerprint image or directory of images")
	outputDir := flag.String("output", "results", "Directory for the result images")
	configPath := flag.String("config", "", "YAML configuration file (defaults are used when absent)")
	blockSize := flag.Int("block", 0, "Block size W in pixels (overrides the configuration)")
	workers := flag.Int("workers", 0, "Number of worker goroutines (overrides the configuration)")
	saveStages := flag.Bool("save-stages", false, "Save every intermediate stage")
	montage := flag.Bool("montage", false, "Save a 2x4 overview of the pipeline stages")
	logLevel := flag.String("log-level", "", "Log level: debug, info, warn, error")
	writeConfig := flag.String("write-config", "", "Write the default configuration to this path and exit")
	flag.Parse()

	if *writeConfig != "" {
		if err := config.CreateDefaultConfigFile(*writeConfig); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to write configuration: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Default configuration written to %s\n", *writeConfig)
		return
	}

	// Validate inputs
	if *input == "" {
		flag.Usage()
		os.Exit(1)
	}

	cfg := config.DefaultConfig()
	if *configPath != "" {
		loaded, err := config.LoadConfig(*configPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
			os.Exit(1)
		}
		cfg = loaded
	}

	// Explicit flags win over the configuration file
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "block":
			cfg.Processing.BlockSize = *blockSize
		case "workers":
			cfg.Processing.Workers = *workers
		case "save-stages":
			cfg.Output.SaveStages = *saveStages
		case "montage":
			cfg.Output.Montage = *montage
		case "log-level":
			cfg.Logging.Level = *logLevel
		}
	})

	logger, err := logging.NewConsole(cfg.Logging.Level)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Invalid log level: %v\n", err)
		os.Exit(1)
	}

	params, err := pipeline.ParamsFromConfig(cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("invalid configuration")
	}

	files, err := collectInputs(*input)
	if err != nil {
		logger.Fatal().Err(err).Str("input", *input).Msg("failed to list input images")
	}
	if err := os.MkdirAll(*outputDir, 0755); err != nil {
		logger.Fatal().Err(err).Str("output", *outputDir).Msg("failed to create output directory")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	analyzer := pipeline.NewAnalyzer(params, logger)
	run := &runner{
		analyzer: analyzer,
		output:   *outputDir,
		cfg:      cfg,
		logger:   logger,
	}

	logger.Info().
		Int("images", len(files)).
		Int("block", params.BlockSize).
		Int("workers", params.Workers).
		Msg("starting fingerprint analysis")

	startTime := time.Now()
	failed := 0
	for _, file := range files {
		if err := run.processFile(ctx, file); err != nil {
			if ctx.Err() != nil {
				logger.Warn().Msg("interrupted")
				break
			}
			logger.Error().Err(err).Str("file", file).Msg("analysis failed")
			failed++
		}
	}

	logger.Info().
		Int("processed", len(files)-failed).
		Int("failed", failed).
		Dur("elapsed", time.Since(startTime)).
		Msg("done")
	if failed > 0 {
		os.Exit(1)
	}
}
