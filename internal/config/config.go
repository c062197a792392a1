package config

import "os"

// Config holds runtime configuration for the service and CLI.
type Config struct {
	Port           string
	Provider       string
	FallbackSeason int
	PollAPI        PollAPIConfig
	Cache          CacheConfig
	SnapshotDir    string
	Metrics        MetricsConfig
	Log            LogConfig
}

// LogConfig selects the slog handler and level.
type LogConfig struct {
	Level  string
	Format string
}

// Load reads configuration from environment variables with sensible defaults.
func Load() Config {
	return fromEnv(defaults())
}

// LoadFile layers a YAML file between the defaults and the environment.
// An empty path falls back to POLL_POSITION_CONFIG, and then to Load.
func LoadFile(path string) (Config, error) {
	if path == "" {
		path = os.Getenv(envConfigFile)
	}
	if path == "" {
		return Load(), nil
	}
	base, err := readFile(path, defaults())
	if err != nil {
		return Config{}, err
	}
	return fromEnv(base), nil
}

func defaults() Config {
	return Config{
		Port:           defaultPort,
		Provider:       defaultProvider,
		FallbackSeason: defaultFallbackSeason,
		PollAPI: PollAPIConfig{
			BaseURL: defaultAPIBaseURL,
			Timeout: defaultHTTPTimeout,
		},
		Cache: CacheConfig{
			Backend: defaultCacheBackend,
			TTL:     defaultCacheTTL,
		},
		Metrics: MetricsConfig{
			Enabled:      true,
			Port:         defaultMetricsPort,
			ServiceName:  defaultServiceName,
			OtlpInsecure: true,
		},
		Log: LogConfig{
			Level:  defaultLogLevel,
			Format: defaultLogFormat,
		},
	}
}

// fromEnv overrides base with any environment variables that are set.
func fromEnv(base Config) Config {
	return Config{
		Port:           envOrDefault(envPort, base.Port),
		Provider:       envOrDefault(envProvider, base.Provider),
		FallbackSeason: intEnvOrDefault(envFallbackSeason, base.FallbackSeason),
		PollAPI:        loadPollAPI(base.PollAPI),
		Cache:          loadCache(base.Cache),
		SnapshotDir:    envOrDefault(envSnapshotDir, base.SnapshotDir),
		Metrics:        loadMetrics(base.Metrics),
		Log: LogConfig{
			Level:  envOrDefault(envLogLevel, base.Log.Level),
			Format: envOrDefault(envLogFormat, base.Log.Format),
		},
	}
}
