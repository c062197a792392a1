package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// fileConfig mirrors Config for YAML files. Pointers distinguish "unset" from zero values.
type fileConfig struct {
	Port           string   `yaml:"port"`
	Provider       string   `yaml:"provider"`
	FallbackSeason int      `yaml:"fallback_season"`
	APIBaseURL     *string  `yaml:"api_base_url"`
	HTTPTimeout    duration `yaml:"http_timeout"`
	SnapshotDir    string   `yaml:"snapshot_dir"`
	Cache          struct {
		Backend  string   `yaml:"backend"`
		RedisURL string   `yaml:"redis_url"`
		TTL      duration `yaml:"ttl"`
	} `yaml:"cache"`
	Metrics struct {
		Enabled      *bool  `yaml:"enabled"`
		Port         string `yaml:"port"`
		OtlpEndpoint string `yaml:"otlp_endpoint"`
		ServiceName  string `yaml:"service_name"`
		OtlpInsecure *bool  `yaml:"otlp_insecure"`
	} `yaml:"metrics"`
	Log struct {
		Level  string `yaml:"level"`
		Format string `yaml:"format"`
	} `yaml:"log"`
}

// duration accepts Go duration strings such as "15s" in YAML.
type duration time.Duration

func (d *duration) UnmarshalYAML(node *yaml.Node) error {
	var s string
	if err := node.Decode(&s); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", s, err)
	}
	*d = duration(parsed)
	return nil
}

func readFile(path string, base Config) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config file: %w", err)
	}
	return parseFile(data, base)
}

func parseFile(data []byte, base Config) (Config, error) {
	var fc fileConfig
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&fc); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, fmt.Errorf("failed to parse YAML: %w", err)
	}
	return fc.overlay(base), nil
}

func (fc fileConfig) overlay(cfg Config) Config {
	setString(&cfg.Port, fc.Port)
	setString(&cfg.Provider, fc.Provider)
	if fc.FallbackSeason > 0 {
		cfg.FallbackSeason = fc.FallbackSeason
	}
	if fc.APIBaseURL != nil {
		cfg.PollAPI.BaseURL = *fc.APIBaseURL
	}
	if fc.HTTPTimeout > 0 {
		cfg.PollAPI.Timeout = time.Duration(fc.HTTPTimeout)
	}
	setString(&cfg.SnapshotDir, fc.SnapshotDir)

	setString(&cfg.Cache.Backend, fc.Cache.Backend)
	setString(&cfg.Cache.RedisURL, fc.Cache.RedisURL)
	if fc.Cache.TTL > 0 {
		cfg.Cache.TTL = time.Duration(fc.Cache.TTL)
	}

	if fc.Metrics.Enabled != nil {
		cfg.Metrics.Enabled = *fc.Metrics.Enabled
	}
	setString(&cfg.Metrics.Port, fc.Metrics.Port)
	setString(&cfg.Metrics.OtlpEndpoint, fc.Metrics.OtlpEndpoint)
	setString(&cfg.Metrics.ServiceName, fc.Metrics.ServiceName)
	if fc.Metrics.OtlpInsecure != nil {
		cfg.Metrics.OtlpInsecure = *fc.Metrics.OtlpInsecure
	}

	setString(&cfg.Log.Level, fc.Log.Level)
	setString(&cfg.Log.Format, fc.Log.Format)
	return cfg
}

func setString(dst *string, val string) {
	if val != "" {
		*dst = val
	}
}
