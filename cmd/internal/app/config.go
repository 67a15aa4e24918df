package app

import "time"

// Config contains all runtime configuration loaded from environment variables.
type Config struct {
	HTTPAddr  string
	LogLevel  string
	LogFormat string

	ReadHeaderTimeout time.Duration
	ReadTimeout       time.Duration
	WriteTimeout      time.Duration
	IdleTimeout       time.Duration
	MaxHeaderBytes    int

	DatabaseURL string
	DBMaxConns  int32
	DBMinConns  int32

	RedisAddr     string
	RedisPassword string

	// Base URL of the AI remark service. Empty disables the report proxy.
	ReportBaseURL string
	ReportTimeout time.Duration

	// If true:
	// - /readyz returns 503 unless both Postgres and Redis are configured and reachable.
	ReadinessRequireStores bool

	CORSAllowedOrigins   []string
	CORSAllowCredentials bool
	CORSMaxAgeSeconds    int
}

// LoadConfig loads Config from environment variables with defaults.
func LoadConfig() Config {
	return Config{
		HTTPAddr:  EnvString("ACADPORT_HTTP_ADDR", "0.0.0.0:8080"),
		LogLevel:  EnvString("ACADPORT_LOG_LEVEL", "info"),
		LogFormat: EnvString("ACADPORT_LOG_FORMAT", "json"),

		ReadHeaderTimeout: EnvDuration("ACADPORT_HTTP_READ_HEADER_TIMEOUT", 5*time.Second),
		ReadTimeout:       EnvDuration("ACADPORT_HTTP_READ_TIMEOUT", 15*time.Second),
		WriteTimeout:      EnvDuration("ACADPORT_HTTP_WRITE_TIMEOUT", 15*time.Second),
		IdleTimeout:       EnvDuration("ACADPORT_HTTP_IDLE_TIMEOUT", 60*time.Second),

		MaxHeaderBytes: EnvInt("ACADPORT_HTTP_MAX_HEADER_BYTES", 1<<20),

		DatabaseURL: EnvString("ACADPORT_DATABASE_URL", ""),
		DBMaxConns:  EnvInt32("ACADPORT_DB_MAX_CONNS", 10),
		DBMinConns:  EnvInt32("ACADPORT_DB_MIN_CONNS", 0),

		RedisAddr:     EnvString("ACADPORT_REDIS_ADDR", ""),
		RedisPassword: EnvString("ACADPORT_REDIS_PASSWORD", ""),

		ReportBaseURL: EnvString("ACADPORT_REPORT_URL", ""),
		ReportTimeout: EnvDuration("ACADPORT_REPORT_TIMEOUT", 30*time.Second),

		ReadinessRequireStores: EnvBool("ACADPORT_READINESS_REQUIRE_STORES", false),

		CORSAllowedOrigins:   EnvStringList("ACADPORT_CORS_ALLOWED_ORIGINS", nil),
		CORSAllowCredentials: EnvBool("ACADPORT_CORS_ALLOW_CREDENTIALS", false),
		CORSMaxAgeSeconds:    EnvInt("ACADPORT_CORS_MAX_AGE", 600),
	}
}
