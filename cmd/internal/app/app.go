// Package app wires the acadport server runtime: config, logging, stores,
// session cache, metrics, and HTTP routes.
//
// It is intentionally small and deterministic to keep CI gates strict and behavior predictable.
package app

import (
	"context"
	"errors"
	"net"
	"net/http"
	"strings"
	"time"

	"acadport/cmd/identity"
	authapi "acadport/cmd/internal/auth/api"
	authsvc "acadport/cmd/internal/auth/service"
	"acadport/cmd/internal/auth/session"
	"acadport/cmd/internal/metrics"
	"acadport/cmd/internal/portal"
	"acadport/cmd/internal/report"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"
)

// Store is a small app-level lifecycle abstraction.
// It exists to allow backing resources to be closed gracefully.
type Store interface {
	Close(ctx context.Context) error
}

// nopStore is used when everything runs in memory.
type nopStore struct{}

func (nopStore) Close(_ context.Context) error { return nil }

// App is the acadport server runtime: it owns HTTP wiring and the
// lifecycles of the Postgres pool and Redis client.
type App struct {
	cfg Config
	log Logger

	store Store

	dbPool      *pgxpool.Pool
	redisClient *redis.Client

	registry *prometheus.Registry
	metrics  *metrics.Metrics

	auth   *authapi.Handler
	portal *portal.Handler
}

// New constructs a fully wired App instance from config and logger.
//
// Unset ACADPORT_DATABASE_URL or ACADPORT_REDIS_ADDR switches the
// corresponding layer to its in-memory implementation: useful for local
// development, never for production.
func New(cfg Config, log Logger) (*App, error) {
	if log == nil {
		log = NewLogger(cfg.LogLevel, cfg.LogFormat)
	}

	ctx := context.Background()

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m := metrics.New(reg)

	idStore, roster, dbPool, err := newIdentityStores(ctx, cfg, log)
	if err != nil {
		return nil, err
	}

	cleanup := func() {
		if dbPool != nil {
			dbPool.Close()
		}
	}

	sessCfg, err := session.LoadConfigFromEnv()
	if err != nil {
		cleanup()
		return nil, err
	}

	cache, redisClient, err := newSessionCache(ctx, cfg, sessCfg, log)
	if err != nil {
		cleanup()
		return nil, err
	}

	sessions := session.NewManager(sessCfg, newInstrumentedCache(cache, m),
		session.WithLogger(log),
		session.WithSelfHealHook(m.SelfHeal),
	)

	svc := authsvc.New(idStore, sessions,
		authsvc.WithLogger(log),
		authsvc.WithMetrics(m),
	)

	authHandler := authapi.NewHandler(log, authapi.LoadConfigFromEnv(), svc, sessions)

	var reports portal.RemarkClient
	if cfg.ReportBaseURL != "" {
		client, err := report.NewClient(cfg.ReportBaseURL, cfg.ReportTimeout)
		if err != nil {
			cleanup()
			if redisClient != nil {
				_ = redisClient.Close()
			}
			return nil, err
		}
		reports = client
		log.Info("report.proxy.enabled", "base_url", cfg.ReportBaseURL)
	} else {
		log.Info("report.proxy.disabled")
	}

	portalHandler := portal.NewHandler(log, roster, reports)

	var st Store = nopStore{}
	if dbPool != nil || redisClient != nil {
		st = backingStore{pool: dbPool, redis: redisClient}
	}

	return &App{
		cfg:         cfg,
		log:         log,
		store:       st,
		dbPool:      dbPool,
		redisClient: redisClient,
		registry:    reg,
		metrics:     m,
		auth:        authHandler,
		portal:      portalHandler,
	}, nil
}

// Handler assembles the full HTTP surface including middleware.
func (a *App) Handler() http.Handler {
	mux := http.NewServeMux()
	registerHTTP(mux, a.log, a.cfg, a.dbPool, a.redisClient, a.registry, a.auth, a.portal)

	var h http.Handler = WithSecurityHeaders(mux)
	if len(a.cfg.CORSAllowedOrigins) > 0 {
		h = WithCORS(h, a.cfg, a.log)
	}
	return WithRequestLogging(h, a.log)
}

// Run starts the HTTP server and blocks until context cancellation or fatal server error.
func (a *App) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              a.cfg.HTTPAddr,
		Handler:           a.Handler(),
		ReadHeaderTimeout: nonZeroDuration(a.cfg.ReadHeaderTimeout, 5*time.Second),
		ReadTimeout:       nonZeroDuration(a.cfg.ReadTimeout, 15*time.Second),
		WriteTimeout:      nonZeroDuration(a.cfg.WriteTimeout, 15*time.Second),
		IdleTimeout:       nonZeroDuration(a.cfg.IdleTimeout, 60*time.Second),
		MaxHeaderBytes:    nonZeroInt(a.cfg.MaxHeaderBytes, 1<<20),
	}

	a.log.Info("server.start",
		"addr", a.cfg.HTTPAddr,
		"url", runtimeBaseURL(a.cfg.HTTPAddr),
		"db_enabled", a.dbPool != nil,
		"redis_enabled", a.redisClient != nil,
	)

	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		a.log.Info("server.stop", "reason", "context_done")
	case err := <-errCh:
		a.log.Error("server.fail", "err", err)
		return err
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		a.log.Error("server.shutdown.fail", "err", err)
		return err
	}

	if err := a.store.Close(shutdownCtx); err != nil {
		a.log.Error("store.close.fail", "err", err)
	}

	a.log.Info("server.stopped")
	return nil
}

func nonZeroDuration(v, def time.Duration) time.Duration {
	if v <= 0 {
		return def
	}
	return v
}

func nonZeroInt(v, def int) int {
	if v <= 0 {
		return def
	}
	return v
}

// runtimeBaseURL renders a reachable URL for the bound address, mapping
// wildcard binds to loopback.
func runtimeBaseURL(addr string) string {
	host, port, err := net.SplitHostPort(addr)
	if err != nil {
		return "http://" + addr
	}
	switch host {
	case "", "0.0.0.0", "::":
		host = "127.0.0.1"
	}
	if strings.Contains(host, ":") {
		host = "[" + host + "]"
	}
	return "http://" + host + ":" + port
}

// newIdentityStores decides between Postgres-backed persistence and the
// in-memory dev stores.
func newIdentityStores(ctx context.Context, cfg Config, log Logger) (identity.Store, portal.RosterStore, *pgxpool.Pool, error) {
	if cfg.DatabaseURL == "" {
		log.Info("db.disabled.inmemory_store")
		return identity.NewInMemoryStore(), portal.NewMemoryRosterStore(), nil, nil
	}

	pool, err := NewDBPool(ctx, cfg)
	if err != nil {
		return nil, nil, nil, err
	}

	idStore, err := identity.NewPostgresStore(pool)
	if err != nil {
		pool.Close()
		return nil, nil, nil, err
	}

	roster, err := portal.NewPostgresRosterStore(pool)
	if err != nil {
		pool.Close()
		return nil, nil, nil, err
	}

	log.Info("db.enabled.postgres_store")
	return idStore, roster, pool, nil
}

// newSessionCache decides between Redis and the in-memory dev cache.
func newSessionCache(ctx context.Context, cfg Config, sessCfg session.Config, log Logger) (session.Cache, *redis.Client, error) {
	if cfg.RedisAddr == "" {
		log.Info("redis.disabled.inmemory_cache")
		return session.NewMemoryCache(), nil, nil
	}

	client, err := NewRedisClient(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}

	log.Info("redis.enabled.session_cache", "addr", cfg.RedisAddr)
	return session.NewRedisCache(client, sessCfg.OpTimeout), client, nil
}

// backingStore owns the external store handles.
type backingStore struct {
	pool  *pgxpool.Pool
	redis *redis.Client
}

func (s backingStore) Close(_ context.Context) error {
	if s.pool != nil {
		s.pool.Close()
	}
	if s.redis != nil {
		return s.redis.Close()
	}
	return nil
}
