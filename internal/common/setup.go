package common

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"strings"

	"bank-ledger-go/internal/api"
	"bank-ledger-go/internal/database"
	"bank-ledger-go/internal/memstore"
	"bank-ledger-go/internal/models"
	"bank-ledger-go/internal/store"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// init loads environment variables from .env file if it exists
func init() {
	// Try to load .env file - if it doesn't exist, that's okay
	// Environment variables can be set via other means (shell export, docker, etc.)
	if err := godotenv.Load(); err != nil {
		log.Printf("Note: No .env file found or unable to load it: %v\n", err)
	} else {
		log.Println("✓ Loaded environment variables from .env file")
	}
}

type Services struct {
	Store  store.LedgerStore
	Ledger *api.LedgerService
}

// InitializeLogger builds the production logger at LOG_LEVEL (default info)
// and installs it as the global zap logger.
func InitializeLogger() (*zap.Logger, func()) {
	cfg := zap.NewProductionConfig()
	if level := os.Getenv("LOG_LEVEL"); level != "" {
		parsed, err := zapcore.ParseLevel(level)
		if err != nil {
			log.Printf("Ignoring invalid LOG_LEVEL %q: %v\n", level, err)
		} else {
			cfg.Level = zap.NewAtomicLevelAt(parsed)
		}
	}

	logger, err := cfg.Build()
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}

	zap.ReplaceGlobals(logger)

	cleanup := func() {
		if err := logger.Sync(); err != nil {
			if !isIgnorableSyncError(err) {
				log.Printf("Failed to sync logger: %v\n", err)
			}
		}
	}

	return logger, cleanup
}

func InitializeServices(ctx context.Context, cfg *models.Config) (*Services, error) {
	ledgerStore, err := InitializeStore(ctx, cfg.Database)
	if err != nil {
		return nil, err
	}

	ledger := api.NewLedgerService(ledgerStore, cfg.Ledger)
	if err := ledger.HealthCheck(ctx); err != nil {
		ledgerStore.Close()
		return nil, err
	}

	zap.L().Info("Ledger ready",
		zap.String("backend", cfg.Database.Backend),
		zap.Bool("reject_inactive_deactivation", cfg.Ledger.RejectInactiveDeactivation),
		zap.Bool("require_active_destination", cfg.Ledger.RequireActiveDestination))

	return &Services{
		Store:  ledgerStore,
		Ledger: ledger,
	}, nil
}

// InitializeStore opens the backend named by cfg.Backend
func InitializeStore(ctx context.Context, cfg models.DatabaseConfig) (store.LedgerStore, error) {
	switch cfg.Backend {
	case models.BackendSQLite, "":
		dbService, err := database.NewService(ctx, cfg)
		if err != nil {
			return nil, err
		}
		return dbService, nil
	case models.BackendMemory:
		zap.L().Warn("Using in-memory store; nothing will be persisted")
		return memstore.New(cfg.LockTimeout), nil
	default:
		return nil, fmt.Errorf("unknown database backend %q", cfg.Backend)
	}
}

func (cs *Services) Close() {
	if cs.Store != nil {
		cs.Store.Close()
	}
}

func isIgnorableSyncError(err error) bool {
	msg := err.Error()
	return strings.Contains(msg, "sync /dev/stderr: inappropriate ioctl for device") ||
		strings.Contains(msg, "sync /dev/stdout: inappropriate ioctl for device")
}

// ExitCode maps an operation error to the CLI exit status: 0 on success, 1
// for storage faults (the operation may be retried) and 2 for rejected
// operations.
func ExitCode(err error) int {
	switch {
	case err == nil:
		return 0
	case errors.Is(err, api.ErrStorageFault):
		return 1
	default:
		return 2
	}
}

// ExitOnFailure reports a failed operation, closes the services and exits
// with ExitCode(err). It returns only when err is nil.
func (cs *Services) ExitOnFailure(msg string, err error) {
	if err == nil {
		return
	}
	fmt.Printf("\n❌ %v\n\n", err)
	logFailure := zap.L().Warn
	if errors.Is(err, api.ErrStorageFault) {
		logFailure = zap.L().Error
	}
	logFailure(msg, zap.Error(err), zap.Int("exit_code", ExitCode(err)))
	cs.Close()
	_ = zap.L().Sync()
	os.Exit(ExitCode(err))
}
