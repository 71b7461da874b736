package main

import (
	"context"
	"database/sql"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"duonest/config"
	"duonest/config/database"
	"duonest/pkg/logger"
	"duonest/router"
	"duonest/socket"
	"duonest/store"

	"github.com/joho/godotenv"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables from OS")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	logger.Init(cfg.LogLevel)
	defer logger.Sync()

	if cfg.SecretGenerated {
		logger.Sugar.Warn("SESSION_SECRET not set; sessions will not survive a restart")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	backend, db, err := openBackend(ctx, cfg)
	if err != nil {
		logger.Sugar.Fatalf("Failed to open storage: %v", err)
	}
	if db != nil {
		defer db.Close()
	}

	st := store.New(backend)
	if err := st.Init(ctx); err != nil {
		logger.Sugar.Fatalf("Failed to initialise storage: %v", err)
	}
	if _, status := st.Load(ctx); status == store.LoadCorrupt {
		logger.Sugar.Warn("Stored document could not be read; serving defaults until the next save")
	}

	hub := socket.NewHub()
	go hub.Run()
	defer hub.Stop()

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           router.Setup(cfg, st, hub),
		ReadHeaderTimeout: 10 * time.Second,
		// Photos arrive as data URIs, so bodies can be large.
		ReadTimeout: 60 * time.Second,
		IdleTimeout: 120 * time.Second,
	}

	go func() {
		logger.Sugar.Infof("duonest listening on %s (store: %s)", srv.Addr, cfg.StoreDriver)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Sugar.Fatalf("HTTP server failed: %v", err)
		}
	}()

	<-ctx.Done()
	logger.Sugar.Info("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Sugar.Errorf("Graceful shutdown failed: %v", err)
	}
}

// openBackend picks the document backend. The returned *sql.DB is nil for
// the file backend.
func openBackend(ctx context.Context, cfg *config.Config) (store.Backend, *sql.DB, error) {
	if cfg.StoreDriver != config.DriverPostgres {
		return store.NewFileBackend(cfg.DataFile), nil, nil
	}
	db, err := database.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, nil, err
	}
	return store.NewPostgresBackend(db), db, nil
}
