package app

import (
	"net/http"
	"time"

	authapi "acadport/cmd/internal/auth/api"
	"acadport/cmd/internal/portal"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
)

func registerHTTP(
	mux *http.ServeMux,
	log Logger,
	cfg Config,
	dbPool *pgxpool.Pool,
	redisClient *redis.Client,
	reg *prometheus.Registry,
	auth *authapi.Handler,
	portalHandler *portal.Handler,
) {
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok\n"))
	})

	mux.HandleFunc("/readyz", func(w http.ResponseWriter, r *http.Request) {
		if cfg.ReadinessRequireStores && (dbPool == nil || redisClient == nil) {
			http.Error(w, "stores not configured", http.StatusServiceUnavailable)
			return
		}

		if dbPool != nil {
			if err := PingDB(r.Context(), dbPool, 2*time.Second); err != nil {
				http.Error(w, "db not ready", http.StatusServiceUnavailable)
				log.Info("readyz.db.not_ready", "err", err)
				return
			}
		}

		if redisClient != nil {
			if err := PingRedis(r.Context(), redisClient, 2*time.Second); err != nil {
				http.Error(w, "cache not ready", http.StatusServiceUnavailable)
				log.Info("readyz.redis.not_ready", "err", err)
				return
			}
		}

		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ready\n"))
	})

	if reg != nil {
		mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	}

	if auth != nil {
		auth.Register(mux)
		if portalHandler != nil {
			portalHandler.Register(mux, auth.RequireSession)
		}
	}
}
