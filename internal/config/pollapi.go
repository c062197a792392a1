package config

import "time"

// PollAPIConfig controls how we talk to the poll-position API.
type PollAPIConfig struct {
	BaseURL string
	Timeout time.Duration
}

func loadPollAPI(base PollAPIConfig) PollAPIConfig {
	return PollAPIConfig{
		BaseURL: envOrDefault(envAPIBaseURL, base.BaseURL),
		Timeout: durationEnvOrDefault(envHTTPTimeout, base.Timeout),
	}
}
