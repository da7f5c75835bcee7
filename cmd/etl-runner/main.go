package main

import (
	"context"
	"flag"
	"os"

	"github.com/google/uuid"
	"github.com/joho/godotenv"

	"video-warehouse/internal/config"
	"video-warehouse/internal/database"
	"video-warehouse/internal/etl"
	"video-warehouse/internal/logging"
	"video-warehouse/internal/metrics"
	"video-warehouse/internal/runner"
)

func main() {
	var exitCode int
	defer func() {
		os.Exit(exitCode)
	}()

	configPath := flag.String("config", "config.yaml", "path to the config file")
	csvPath := flag.String("csv", "", "override the source csv path")
	driverName := flag.String("db", "", "override the database driver (mysql or postgres)")
	flag.Parse()

	godotenv.Load()
	runID := uuid.New().String()
	log := logging.New("etl-runner", runID)

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Error().Err(err).Msg("failed to load config")
		exitCode = 1
		return
	}
	if *csvPath != "" {
		cfg.CSVPath = *csvPath
	}
	if *driverName != "" {
		cfg.Driver = *driverName
	}

	creds, err := config.Credentials()
	if err != nil {
		log.Error().Err(err).Msg("failed to resolve credentials")
		exitCode = 1
		return
	}

	dsn, err := database.DSN(cfg.Driver, creds)
	if err != nil {
		log.Error().Err(err).Msg("failed to build dsn")
		exitCode = 1
		return
	}
	driver, err := database.New(cfg.Driver)
	if err != nil {
		log.Error().Err(err).Msg("unsupported driver")
		exitCode = 1
		return
	}
	if err := driver.Connect(dsn); err != nil {
		log.Error().Err(err).Str("driver", cfg.Driver).Msg("failed to connect to warehouse")
		exitCode = 1
		return
	}
	defer driver.Close()

	metrics.Serve(cfg.MetricsAddr, log)

	report := runner.New(runID)
	pipeline := &etl.Pipeline{
		DB:      driver,
		CSVPath: cfg.CSVPath,
		Log:     log,
		Report:  report,
	}

	err = pipeline.Run(context.Background())
	report.Log(log)
	if err != nil {
		log.Error().Err(err).Msg("pipeline failed")
		exitCode = 1
		return
	}
	log.Info().Msg("warehouse loaded")
}
