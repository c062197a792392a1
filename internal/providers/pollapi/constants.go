package pollapi

import "time"

const (
	defaultBaseURL     = "http://localhost"
	defaultHTTPTimeout = 10 * time.Second
	errorBodyLimit     = 512
	maxBodyBytes       = 32 << 20

	seasonsPath    = "/api/seasons"
	latestPollPath = "/api/latest-poll"
	seasonPollPath = "/api/polls/"
)
