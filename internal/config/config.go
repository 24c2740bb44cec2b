package config

import (
	"os"
	"strings"
	"time"

	"github.com/loltimeflash/server/internal/riot"
)

type Config struct {
	Env        string
	HTTPAddr   string
	CORSAllow  []string
	RiotAPIKey string
	CatalogTTL time.Duration
}

func Load() Config {
	cfg := Config{
		Env:        getEnv("APP_ENV", "dev"),
		HTTPAddr:   getEnv("HTTP_ADDR", ":8888"),
		RiotAPIKey: getEnv("RIOT_API_KEY", ""),
		CatalogTTL: getEnvDuration("DDRAGON_CACHE_TTL", riot.DefaultCatalogTTL),
	}
	cfg.CORSAllow = splitCSV(getEnv("CORS_ALLOW", "http://localhost:3000"))
	return cfg
}

// getEnv returns the env var or a default.
func getEnv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func getEnvDuration(k string, def time.Duration) time.Duration {
	if v := os.Getenv(k); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			return d
		}
	}
	return def
}

// splitCSV trims and filters a comma-separated list.
func splitCSV(v string) []string {
	var out []string
	for _, s := range strings.Split(v, ",") {
		s = strings.TrimSpace(s)
		if s != "" {
			out = append(out, s)
		}
	}
	return out
}
