package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/joho/godotenv"

	"betkeeper/internal/httpapi"
	"betkeeper/internal/interfaces"
	"betkeeper/internal/ledger"
	"betkeeper/internal/ledger/ledgerobs"
	"betkeeper/internal/logger"
	"betkeeper/internal/storage"
	"betkeeper/internal/store"
	"betkeeper/internal/trace"
)

func must(err error) {
	if err != nil {
		log.Fatal(err)
	}
}

func main() {
	_ = godotenv.Load()

	configPath := flag.String("config", "config.yaml", "path to config file")
	flag.Parse()

	cfg, err := store.LoadConfig(*configPath)
	must(err)

	logger.Init()
	must(trace.Init())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	st, err := openStore(cfg)
	must(err)
	defer st.Close()

	led := ledgerobs.Wrap(ledger.New(st, cfg.SeedProfile()))
	must(led.Load(ctx))

	handler := httpapi.NewHandler(led)

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.Server.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/health", handler.HealthCheck)
	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/bankroll", handler.GetBankroll)
		r.Get("/bankroll/transactions", handler.GetTransactions)
		r.Post("/bankroll/deposits", handler.CreateDeposit)
		r.Post("/bankroll/withdrawals", handler.CreateWithdrawal)
		r.Post("/bankroll/settlements", handler.CreateSettlement)
		r.Put("/bankroll/strategy", handler.UpdateStrategy)
		r.Put("/bankroll/initial", handler.UpdateInitialBankroll)
		r.Post("/bankroll/reset", handler.ResetBankroll)
		r.Post("/valuebet", handler.AssessValueBet)
		r.Post("/betslip/quote", handler.QuoteBetSlip)
	})

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info(ctx, "Server started", "port", cfg.Server.Port, "storage", cfg.Storage.Backend)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, syscall.SIGINT, syscall.SIGTERM)
	<-sigc

	logger.Info(ctx, "Shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.ErrorWithErr(shutdownCtx, "Server shutdown failed", err)
	}
	if err := trace.Shutdown(shutdownCtx); err != nil {
		logger.ErrorWithErr(shutdownCtx, "Tracer shutdown failed", err)
	}
}

func openStore(cfg *store.Config) (interfaces.Store, error) {
	switch cfg.Storage.Backend {
	case "sqlite":
		return storage.NewSQLiteStore(cfg.Storage.Path)
	default:
		fs := storage.NewFileStore(cfg.Storage.Path, cfg.Storage.BackupRetentionDays)
		if err := fs.CompressOldBackups(); err != nil {
			log.Printf("backup compression: %v", err)
		}
		return fs, nil
	}
}
