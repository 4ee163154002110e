package config

import "time"

// Default timing configurations used throughout the gateway
const (
	// DefaultSessionMaxAge is how long an idle session survives before cleanup
	DefaultSessionMaxAge = 30 * time.Minute

	// DefaultCleanupInterval is how often stale sessions are swept
	DefaultCleanupInterval = 5 * time.Minute

	// DefaultRevisionTimeout bounds the VCS revision lookup per ledger record
	DefaultRevisionTimeout = 3 * time.Second

	// DefaultCommandTimeout bounds execute_command runs
	DefaultCommandTimeout = 2 * time.Minute

	// DefaultShutdownTimeout bounds graceful shutdown of the gRPC and API servers
	DefaultShutdownTimeout = 2 * time.Second
)
