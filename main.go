package main

import (
	"log/slog"
	"net/http"
	"os"

	"github.com/joho/godotenv"

	"github.com/memeseal/casino-core/internal/api"
	"github.com/memeseal/casino-core/internal/auth"
	"github.com/memeseal/casino-core/internal/config"
	"github.com/memeseal/casino-core/internal/history"
	"github.com/memeseal/casino-core/pkg/chipbank"
)

func main() {
	// Optional .env for local development.
	_ = godotenv.Load()

	log := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(log)

	cfg := config.Load()

	math, err := config.LoadGameMath(cfg.Game.MathFile)
	if err != nil {
		log.Error("failed to load game math", "error", err)
		os.Exit(1)
	}

	slots, roulette, crash, err := math.Build()
	if err != nil {
		log.Error("invalid game math", "error", err)
		os.Exit(1)
	}

	bank := chipbank.NewClient(&chipbank.ClientConfig{
		BaseURL:    cfg.ChipBank.BaseURL,
		Timeout:    cfg.ChipBank.Timeout,
		RetryCount: cfg.ChipBank.RetryCount,
	})

	var recorder history.Recorder
	if cfg.History.PostgresDSN != "" {
		pg, err := history.NewPostgres(cfg.History.PostgresDSN)
		if err != nil {
			log.Error("failed to open history store", "error", err)
			os.Exit(1)
		}
		defer pg.Close()
		recorder = pg
	} else {
		recorder = history.NewMemory(cfg.History.Keep)
	}

	authSvc := auth.New(&cfg.Auth)
	handler := api.New(authSvc, bank, recorder, cfg, log, slots, roulette, crash)

	// No server-wide write timeout: the crash tick stream is long-lived
	// and sets per-message deadlines instead.
	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           handler.SetupRouter(),
		ReadHeaderTimeout: cfg.Server.ReadTimeout,
	}

	log.Info("casino core listening", "port", cfg.Server.Port)
	if err := srv.ListenAndServe(); err != nil {
		log.Error("server stopped", "error", err)
		os.Exit(1)
	}
}
