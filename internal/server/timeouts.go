package server

import "time"

const (
	readTimeout = 10 * time.Second
	idleTimeout = 60 * time.Second

	// The first uncached /polls request fetches every season sequentially.
	writeTimeout = 2 * time.Minute
)

// shutdownTimeout remains a var for tests to override.
var shutdownTimeout = 10 * time.Second
