package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"PriceForecast/internal/collector"
	"PriceForecast/internal/config"
	"PriceForecast/internal/logger"
	"PriceForecast/internal/metrics"
	"PriceForecast/internal/pipeline"
	"PriceForecast/internal/recorder"
	"PriceForecast/internal/scheduler"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "forecast: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// .env is optional
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("load .env: %w", err)
	}

	// Load config
	cfgPath := "configs/config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		cfgPath = v
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("config validation: %w", err)
	}

	log, err := logger.New(&logger.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Output: cfg.Logging.Output,
	})
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer log.Close()
	log.Info("PriceForecast starting", logger.String("config", cfgPath))

	// Init source
	var source collector.Source
	switch cfg.Data.Source {
	case "mock":
		source = &collector.MockSource{Company: cfg.Data.Company, Points: cfg.Data.MockPoints}
	default:
		source = collector.NewCSVSource(cfg.Data.Path, cfg.Data.Company, []rune(cfg.Data.Delimiter)[0])
	}
	log.Info("data source", logger.String("source", source.Name()), logger.String("company", cfg.Data.Company))

	// Init recorder
	var rec recorder.Recorder
	if cfg.Database.SQLitePath != "" {
		sr, err := recorder.NewSQLiteRecorder(cfg.Database.SQLitePath, log)
		if err != nil {
			log.Warn("init sqlite recorder failed, using noop", logger.Error(err))
			rec = recorder.NewNoopRecorder()
		} else {
			rec = sr
			defer sr.Close()
		}
	} else {
		rec = recorder.NewNoopRecorder()
	}

	var met *metrics.Recorder
	if cfg.Metrics.TextfilePath != "" {
		met = metrics.New()
	}

	// Context for graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	p := pipeline.New(cfg, source, rec, met, log)
	job := func(ctx context.Context) error {
		_, err := p.Run(ctx)
		return err
	}

	if cfg.Schedule.Cron == "" {
		return job(ctx)
	}

	sched := scheduler.NewScheduler(ctx, job, log)
	if err := sched.Register(cfg.Schedule.Cron); err != nil {
		return err
	}
	sched.Start()
	defer sched.Stop()

	// Optional: run immediately on start
	if os.Getenv("RUN_ON_START") == "true" {
		log.Info("RUN_ON_START enabled, executing forecast now")
		sched.Trigger()
	}

	log.Info("PriceForecast is running. Press Ctrl+C to stop.")
	<-ctx.Done()
	log.Info("shutdown signal received, stopping...")
	return nil
}
