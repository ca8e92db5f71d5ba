package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/celerix-dev/celerix-catalog/internal/config"
	"github.com/celerix-dev/celerix-catalog/internal/engine"
	"github.com/celerix-dev/celerix-catalog/internal/logging"
	"github.com/celerix-dev/celerix-catalog/internal/server"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "catalogd:", err)
		os.Exit(1)
	}
}

func run() error {
	flags := pflag.NewFlagSet("catalogd", pflag.ExitOnError)
	configDir := flags.String("config-dir", ".", "directory holding config.yaml")
	flags.String("data-dir", "", "directory for the JSON collection files")
	flags.String("http-port", "", "port for the REST API")
	flags.String("log-file", "", "rotated log file")
	flags.String("env", "", "production or development")
	noSeed := flags.Bool("no-seed", false, "start with empty collections")
	flags.Parse(os.Args[1:])

	cfg, err := config.Load(*configDir, flags)
	if err != nil {
		return err
	}

	log, closeLog := logging.New(logging.Options{Development: cfg.Development(), File: cfg.LogFile})
	defer closeLog()

	if !cfg.Development() {
		gin.SetMode(gin.ReleaseMode)
	}

	// 1. Load persisted collections and start the engine
	persister, err := engine.NewPersistence(cfg.DataDir, log)
	if err != nil {
		return fmt.Errorf("initialize persistence: %w", err)
	}
	initialData, err := persister.LoadAll()
	if err != nil {
		log.Warn("could not load existing data", zap.Error(err))
	}
	store := engine.NewMemStore(initialData, persister)
	log.Info("engine started", zap.Int("collections", len(initialData)), zap.String("data_dir", cfg.DataDir))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 2. Seed empty collections with the sample catalog
	if !*noSeed {
		seeded, err := engine.SeedIfEmpty(ctx, store)
		if err != nil {
			return fmt.Errorf("seed: %w", err)
		}
		if len(seeded) > 0 {
			log.Info("seeded collections", zap.Strings("collections", seeded))
		}
	}

	// 3. Serve until a signal arrives
	srv := &server.Server{
		Addr:    ":" + cfg.HTTPPort,
		Handler: server.NewRouter(store, log),
		Log:     log,
	}
	err = srv.Run(ctx)

	log.Info("finalizing disk writes")
	store.Wait()
	return err
}
