package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/cors"
	"go.uber.org/zap"

	"github.com/loltimeflash/server/internal/hub"
	"github.com/loltimeflash/server/internal/riot"
	"github.com/loltimeflash/server/internal/ws"
	"github.com/loltimeflash/server/pkg/metrics"
)

// SetupRoutes wires the router with the hub and collaborators injected.
func SetupRoutes(h *hub.Hub, catalog *riot.Catalog, lg *riot.LiveGame, corsAllow []string, log *zap.Logger) http.Handler {
	r := chi.NewRouter()

	r.Post("/rooms", CreateRoom(h, log))
	r.Get("/rooms/count", Rooms(h))
	r.Get("/champions", Champions(catalog, log))
	r.Get("/live-game", LiveGame(lg))
	r.Get("/healthz", Healthz)
	r.Handle("/metrics", metrics.Handler())
	r.Get("/ws", ws.Handler(h, log))

	c := cors.New(cors.Options{
		AllowedOrigins:   corsAllow,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: true,
	})
	return c.Handler(r)
}
