package httpapi

import (
	"crypto/rand"
	"encoding/json"
	"math/big"
	"net/http"

	"go.uber.org/zap"

	"github.com/loltimeflash/server/internal/hub"
	"github.com/loltimeflash/server/internal/protocol"
	"github.com/loltimeflash/server/internal/riot"
	"github.com/loltimeflash/server/internal/room"
)

// GenerateRoomID builds a fresh 10-char alphanumeric code, the format every
// join validates against.
func GenerateRoomID() (string, error) {
	const charset = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

	code := make([]byte, protocol.RoomIDLength)
	for i := range code {
		num, err := rand.Int(rand.Reader, big.NewInt(int64(len(charset))))
		if err != nil {
			return "", err
		}
		code[i] = charset[num.Int64()]
	}
	return string(code), nil
}

// CreateRoom hands out an unused room id. The room itself is created lazily
// on first join.
func CreateRoom(h *hub.Hub, log *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var code string
		for {
			c, err := GenerateRoomID()
			if err != nil {
				http.Error(w, "failed to generate room id", http.StatusInternalServerError)
				return
			}
			reply := make(chan *room.Room, 1)
			h.Inbox() <- hub.GetRoom{Code: c, Reply: reply}
			if <-reply == nil {
				code = c
				break
			}
			log.Info("room id collision, regenerating", zap.String("room", c))
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(struct {
			RoomID string `json:"roomId"`
		}{RoomID: code})
	}
}

// Champions serves the cached Data Dragon skin catalog.
func Champions(catalog *riot.Catalog, log *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		skins, err := catalog.AllChampionSkins(r.Context())
		if err != nil {
			log.Error("champion catalog fetch failed", zap.Error(err))
			http.Error(w, "failed to fetch champions", http.StatusBadGateway)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("Cache-Control", "public, max-age=86400")
		_ = json.NewEncoder(w).Encode(skins)
	}
}

// LiveGame proxies a live-match lookup. Expected failures are a 200 with
// success:false — they are user-triggerable, not exceptional.
func LiveGame(lg *riot.LiveGame) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		summoner := r.URL.Query().Get("summoner")
		region := r.URL.Query().Get("region")
		if summoner == "" || region == "" {
			http.Error(w, "summoner and region are required", http.StatusBadRequest)
			return
		}

		result := lg.Lookup(r.Context(), summoner, region)
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(result)
	}
}

// Rooms reports the live room count, for monitoring.
func Rooms(h *hub.Hub) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		reply := make(chan int, 1)
		h.Inbox() <- hub.RoomCount{Reply: reply}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(struct {
			Rooms int `json:"rooms"`
		}{Rooms: <-reply})
	}
}

func Healthz(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
}
