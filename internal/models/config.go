package models

import "time"

// Config represents the application configuration
type Config struct {
	Database DatabaseConfig
	Ledger   LedgerConfig
}

// Storage backends selectable through DatabaseConfig.Backend
const (
	BackendSQLite = "sqlite"
	BackendMemory = "memory"
)

// DatabaseConfig holds database connection settings
type DatabaseConfig struct {
	Backend         string
	Path            string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration
	PingTimeout     time.Duration
	// LockTimeout bounds how long a unit of work waits for a row or database lock.
	LockTimeout time.Duration
}

// LedgerConfig holds the business policies that the ledger leaves to the operator
type LedgerConfig struct {
	// RejectInactiveDeactivation makes deactivating an inactive account fail
	// instead of succeeding silently.
	RejectInactiveDeactivation bool
	// RequireActiveDestination makes transfers into an inactive account fail.
	RequireActiveDestination bool
	SeedFile                 string
}
