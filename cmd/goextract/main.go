package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/hyperifyio/goextract/internal/app"
)

func main() {
	// Logging setup
	zerolog.TimeFieldFormat = time.RFC3339
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	cfg, err := parseConfig(os.Args[1:])
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(0)
		}
		log.Error().Err(err).Msg("invalid arguments")
		os.Exit(2)
	}

	if cfg.Verbose {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	} else {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := run(ctx, cfg); err != nil {
		log.Error().Err(err).Msg("run failed")
		// Exit code policy: 2 when nothing was extracted, 1 for other failures.
		if errors.Is(err, app.ErrAllFailed) {
			os.Exit(2)
		}
		os.Exit(1)
	}
}

// parseConfig merges configuration with precedence flags > env > config file > defaults.
func parseConfig(args []string) (app.Config, error) {
	fs := flag.NewFlagSet("goextract", flag.ContinueOnError)
	fs.Usage = func() {
		fmt.Fprintf(fs.Output(), "Usage: goextract [flags] URL...\n\nFlags:\n")
		fs.PrintDefaults()
	}

	var (
		flags      app.Config
		configPath string
		envFile    string
	)
	fs.StringVar(&configPath, "config", os.Getenv("GOEXTRACT_CONFIG"), "Path to YAML or JSON config file")
	fs.StringVar(&envFile, "env", ".env", "Path to dotenv file loaded before reading env (missing file is ignored)")
	fs.StringVar(&flags.InputPath, "input", "", "Path to a file with one URL per line")
	fs.StringVar(&flags.OutputPath, "output", "", "Path to write results (default stdout)")
	fs.StringVar(&flags.Format, "format", "", "Output format: jsonl or json (default jsonl)")
	fs.DurationVar(&flags.Timeout, "timeout", 0, "Per-URL deadline (default 10s)")
	fs.StringVar(&flags.UserAgent, "ua", "", "User-Agent header for fetches")
	fs.Int64Var(&flags.MaxBodyBytes, "max.bodyBytes", 0, "Maximum response body bytes read per URL (default 5 MiB)")
	fs.IntVar(&flags.Concurrency, "concurrency", 0, "Maximum concurrent fetches")
	fs.BoolVar(&flags.FailFast, "fail-fast", false, "Stop the batch at the first failed URL")
	fs.BoolVar(&flags.Verbose, "v", false, "Verbose logging")
	if err := fs.Parse(args); err != nil {
		return app.Config{}, err
	}

	if err := app.LoadEnvFiles(envFile); err != nil {
		return app.Config{}, err
	}

	var cfg app.Config
	if configPath != "" {
		fc, err := app.LoadConfigFile(configPath)
		if err != nil {
			return app.Config{}, fmt.Errorf("load config: %w", err)
		}
		if err := app.ApplyFileConfig(&cfg, fc); err != nil {
			return app.Config{}, fmt.Errorf("apply config: %w", err)
		}
	}
	app.ApplyEnvOverrides(&cfg)

	// Only flags given explicitly override file and env values.
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "input":
			cfg.InputPath = flags.InputPath
		case "output":
			cfg.OutputPath = flags.OutputPath
		case "format":
			cfg.Format = flags.Format
		case "timeout":
			cfg.Timeout = flags.Timeout
		case "ua":
			cfg.UserAgent = flags.UserAgent
		case "max.bodyBytes":
			cfg.MaxBodyBytes = flags.MaxBodyBytes
		case "concurrency":
			cfg.Concurrency = flags.Concurrency
		case "fail-fast":
			cfg.FailFast = flags.FailFast
		case "v":
			cfg.Verbose = flags.Verbose
		}
	})
	if fs.NArg() > 0 {
		cfg.Inputs = fs.Args()
	}

	if err := app.ValidateConfig(cfg); err != nil {
		return app.Config{}, err
	}
	return cfg, nil
}

func run(ctx context.Context, cfg app.Config) error {
	a, err := app.New(cfg)
	if err != nil {
		return fmt.Errorf("init app: %w", err)
	}
	defer a.Close()

	return a.Run(ctx)
}
