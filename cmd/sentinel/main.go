package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"WolfHunter/internal/collector"
	"WolfHunter/internal/config"
	"WolfHunter/internal/engine"
	"WolfHunter/internal/metrics"
	"WolfHunter/internal/notifier"
	"WolfHunter/internal/recorder"
	"WolfHunter/internal/scheduler"

	"github.com/joho/godotenv"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	log.Println("[INFO] WolfHunter starting...")

	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Printf("[WARN] load .env: %v", err)
	}

	// Load config
	cfgPath := config.DefaultPath
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		cfgPath = v
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatalf("[FATAL] load config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("[FATAL] config validation: %v", err)
	}
	timeframes, err := cfg.Timeframes()
	if err != nil {
		log.Fatalf("[FATAL] %v", err)
	}

	// Init recorder
	var rec recorder.Recorder = recorder.NewNoopRecorder()
	var archive recorder.Archive
	if cfg.Database.SQLitePath != "" {
		sr, err := recorder.NewSQLiteRecorder(cfg.Database.SQLitePath)
		if err != nil {
			log.Printf("[WARN] init sqlite recorder failed, using noop: %v", err)
		} else {
			rec = sr
			archive = sr
			defer sr.Close()
		}
	}

	// Init fetcher
	fetcher, err := collector.NewFetcher(cfg, archive)
	if err != nil {
		log.Fatalf("[FATAL] init fetcher: %v", err)
	}
	if cfg.DataSource.Provider != config.ProviderArchive {
		fetcher = &collector.RecordingFetcher{Fetcher: fetcher, Recorder: rec}
	}
	log.Printf("[INFO] data source: %s (%s)", fetcher.Name(), cfg.DataSource.Symbol)

	eng := engine.New(fetcher)
	eng.Limit = cfg.DataSource.Limit

	// Init Telegram notifier
	tn := notifier.NewTelegramNotifier(cfg.Telegram.BotToken, cfg.Telegram.ChatID, cfg.Proxy)

	// Context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Init scheduler
	sched := scheduler.NewScheduler(ctx, eng, tn, cfg.DataSource.Symbol, timeframes, cfg.Alert.Threshold)
	sched.StateFile = cfg.Alert.StateFile
	if err := sched.LoadState(); err != nil {
		log.Printf("[WARN] load alert state, starting unlatched: %v", err)
	}
	if err := sched.RegisterAll(cfg.Schedule.EvaluateCron); err != nil {
		log.Fatalf("[FATAL] register cron tasks: %v", err)
	}
	sched.Start()
	defer sched.Stop()

	// Start Telegram polling
	go tn.StartPolling(ctx, sched.HandleCommand)
	log.Println("[INFO] Telegram polling started")

	// Metrics endpoint
	var srv *http.Server
	if cfg.Metrics.ListenAddr != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", metrics.Handler())
		mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
			w.Write([]byte("ok"))
		})
		srv = &http.Server{Addr: cfg.Metrics.ListenAddr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
		go func() {
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Printf("[ERROR] metrics server: %v", err)
			}
		}()
		log.Printf("[INFO] metrics listening on %s", cfg.Metrics.ListenAddr)
	}

	// Optional: run immediately on start
	if os.Getenv("RUN_ON_START") == "true" {
		log.Println("[INFO] RUN_ON_START enabled, evaluating now")
		go sched.RunEvaluateNow()
	}

	log.Println("[INFO] WolfHunter is running. Press Ctrl+C to stop.")

	// Wait for shutdown signal
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	log.Println("[INFO] shutdown signal received, stopping...")
	cancel()
	if srv != nil {
		shutdownCtx, done := context.WithTimeout(context.Background(), 5*time.Second)
		defer done()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Printf("[WARN] metrics server shutdown: %v", err)
		}
	}
	log.Println("[INFO] WolfHunter stopped")
}
