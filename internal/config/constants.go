package config

import "time"

const (
	envConfigFile     = "POLL_POSITION_CONFIG"
	envPort           = "PORT"
	envProvider       = "PROVIDER"
	envAPIBaseURL     = "API_BASE_URL"
	envHTTPTimeout    = "HTTP_TIMEOUT"
	envFallbackSeason = "FALLBACK_SEASON"
	envCacheBackend   = "CACHE_BACKEND"
	envRedisURL       = "REDIS_URL"
	envCacheTTL       = "CACHE_TTL"
	envSnapshotDir    = "SNAPSHOT_DIR"
	envMetricsPort    = "METRICS_PORT"
	envMetricsOn      = "METRICS_ENABLED"
	envOtelEndpoint   = "OTEL_EXPORTER_OTLP_ENDPOINT"
	envOtelService    = "OTEL_SERVICE_NAME"
	envOtelInsecure   = "OTEL_EXPORTER_OTLP_INSECURE"
	envLogLevel       = "LOG_LEVEL"
	envLogFormat      = "LOG_FORMAT"

	defaultPort     = "4000"
	defaultProvider = ProviderPollAPI
	// Empty base URL keeps requests relative to the serving origin.
	defaultAPIBaseURL     = ""
	defaultHTTPTimeout    = 10 * Duration(time.Second)
	defaultFallbackSeason = 2024
	defaultCacheBackend   = CacheMemory
	defaultCacheTTL       = 15 * Duration(time.Minute)
	defaultMetricsPort    = "9090"
	defaultServiceName    = "poll-position"
	defaultLogLevel       = "info"
	defaultLogFormat      = "text"
)

// Provider names accepted by PROVIDER.
const (
	ProviderPollAPI = "pollapi"
	ProviderFixture = "fixture"
)

// Cache backends accepted by CACHE_BACKEND.
const (
	CacheMemory = "memory"
	CacheRedis  = "redis"
)
