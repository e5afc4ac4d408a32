package providers

import "time"

const (
	// shutdownTimeout is the maximum time to wait for graceful shutdown of services.
	shutdownTimeout = 30 * time.Second

	// sessionSweepInterval is how often idle sessions are looked for.
	sessionSweepInterval = 5 * time.Minute
)
