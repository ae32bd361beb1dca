package config

import "time"

// Database connection pool settings
const (
	DBMaxOpenConns    = 25
	DBMaxIdleConns    = 5
	DBConnMaxLifetime = 5 * time.Minute
)

// HTTP server timeouts
const (
	ServerRequestTimeout  = 30 * time.Second
	ServerReadTimeout     = 15 * time.Second
	ServerIdleTimeout     = 120 * time.Second
	ServerShutdownTimeout = 30 * time.Second
)

// Database ping timeout for startup health check
const DBPingTimeout = 5 * time.Second

// Remote list endpoint page size: the whole inventory in one call.
const RemoteListLimit = 500

// Expiry watcher interval
const ExpiryWatchInterval = 10 * time.Minute

// Per-user chat command rate limit (sliding window)
const (
	CommandRateLimit  = 20
	CommandRateWindow = time.Minute
)

// Admin cap: two bound admins plus the fixed root.
const MaxBoundAdmins = 2
