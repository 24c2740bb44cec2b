package main

import (
	"context"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"

	"github.com/loltimeflash/server/internal/config"
	"github.com/loltimeflash/server/internal/httpapi"
	"github.com/loltimeflash/server/internal/hub"
	"github.com/loltimeflash/server/internal/logger"
	"github.com/loltimeflash/server/internal/riot"
)

func main() {
	// Load local .env (dev only)
	_ = godotenv.Load()

	cfg := config.Load()
	log, err := logger.New(cfg.Env)
	if err != nil {
		panic(err)
	}
	defer func() { _ = log.Sync() }()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	clock := clockwork.NewRealClock()
	h := hub.NewHub(ctx, clock, log)

	catalog := riot.NewCatalog(cfg.CatalogTTL, clock, log)
	liveGame := riot.NewLiveGame(cfg.RiotAPIKey, log)

	handler := httpapi.SetupRoutes(h, catalog, liveGame, cfg.CORSAllow, log)
	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info("listening", zap.String("addr", cfg.HTTPAddr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("server crashed", zap.Error(err))
			cancel()
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")

	shutdownCtx, stop := context.WithTimeout(context.Background(), 10*time.Second)
	defer stop()
	_ = srv.Shutdown(shutdownCtx)

	h.Inbox() <- hub.ShutdownHub{}
	log.Info("shutdown complete")
}
