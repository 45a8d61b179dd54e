package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"nestwatch/config"
	"nestwatch/logging"
	"nestwatch/notify"
	"nestwatch/scheduler"
	"nestwatch/server"
	"nestwatch/services"
	"nestwatch/storage"
)

var (
	sweepNow = flag.Bool("sweep", false, "Run one alert sweep and exit")
)

func main() {
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	log, logFile, err := logging.Setup(cfg.LogPath, cfg.LogLevel, cfg.Env)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to set up logging: %v\n", err)
		os.Exit(1)
	}
	defer logFile.Close()

	log.Info().Msg("starting nestwatch")

	ctx := context.Background()

	store, err := storage.NewPostgresStore(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to Postgres")
	}
	defer store.Close()
	log.Info().Str("db", maskConnectionString(cfg.DatabaseURL)).Msg("connected to Postgres")

	var notifier notify.Notifier
	switch cfg.Sweep.Notifier {
	case "log":
		notifier = notify.NewLogNotifier(log)
	default:
		notifier = notify.NewStoreNotifier(store)
	}

	searchService := services.NewSearchService(store)
	sweepService := services.NewSweepService(store, notifier, log, cfg.Sweep.Workers)

	if *sweepNow {
		runOnce(ctx, sweepService, log)
		return
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	sched := scheduler.New(&cfg.Sweep, sweepService, log)
	if err := sched.Start(ctx); err != nil {
		log.Fatal().Err(err).Msg("failed to start scheduler")
	}

	srv := server.New(store, searchService, sweepService, cfg.SweepSecret, log)
	go func() {
		if err := srv.Start(cfg.ListenAddr); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server stopped")
		}
	}()
	log.Info().Str("addr", cfg.ListenAddr).Msg("server listening")

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	log.Info().Msg("shutting down")
	sched.Stop()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server shutdown")
	}
}

func runOnce(ctx context.Context, sweep *services.SweepService, log zerolog.Logger) {
	log.Info().Msg("running one-shot sweep")
	report, err := sweep.Run(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("sweep failed")
	}
	log.Info().
		Int("searches", report.ProcessedSearches).
		Int("new_properties", report.NewPropertiesFound).
		Int("notified", report.EmailsSent).
		Int("failures", len(report.Failures)).
		Msg("sweep complete")
}

// maskConnectionString masks the password in a connection string for
// logging.
func maskConnectionString(connStr string) string {
	start := 0
	for i := 0; i < len(connStr)-3; i++ {
		if connStr[i:i+3] == "://" {
			start = i + 3
			break
		}
	}
	if start == 0 {
		return connStr
	}

	colonIdx := -1
	atIdx := -1
	for i := start; i < len(connStr); i++ {
		if connStr[i] == ':' && colonIdx == -1 {
			colonIdx = i
		}
		if connStr[i] == '@' {
			atIdx = i
			break
		}
	}

	if colonIdx > 0 && atIdx > colonIdx {
		return connStr[:colonIdx+1] + "****" + connStr[atIdx:]
	}
	return connStr
}
