package main

import (
	"context"
	"flag"

	"bank-ledger-go/internal/common"
	"bank-ledger-go/internal/config"

	"go.uber.org/zap"
)

func seedAccounts(ctx context.Context, services *common.Services, seedFile string) {
	zap.L().Info("Loading account seeds", zap.String("file", seedFile))
	seeds, err := common.LoadAccountSeeds(seedFile)
	if err != nil {
		zap.L().Fatal("Failed to load account seeds", zap.Error(err))
	}
	zap.L().Info("Account seeds loaded", zap.Int("count", len(seeds)))

	report, err := common.SeedAccounts(ctx, services.Ledger, seeds)
	if err != nil {
		for _, account := range report.Partial {
			zap.L().Error("Seeded account left active; rerun setup to deactivate it",
				zap.Int64("account_id", account.Id),
				zap.String("bank", account.Bank.String()))
		}
		zap.L().Error("Account seeding stopped early",
			zap.Int("accounts_created", len(report.Created)),
			zap.Error(err))
		return
	}

	for _, account := range report.Deactivated {
		zap.L().Info("Deactivated existing account",
			zap.Int64("account_id", account.Id),
			zap.String("bank", account.Bank.String()))
	}

	skipped := make([]string, len(report.Skipped))
	for i, bank := range report.Skipped {
		skipped[i] = bank.String()
	}

	for _, account := range report.Created {
		zap.L().Info("Seeded account",
			zap.Int64("account_id", account.Id),
			zap.String("bank", account.Bank.String()),
			zap.String("balance", account.Balance.String()),
			zap.String("status", account.Status.String()))
	}

	if len(skipped) > 0 {
		zap.L().Warn("Account seeding skipped existing banks",
			zap.Int("accounts_created", len(report.Created)),
			zap.Strings("skipped_banks", skipped))
	} else {
		zap.L().Info("Account seeding completed successfully",
			zap.Int("accounts_created", len(report.Created)))
	}
}

func main() {
	ctx := context.Background()

	_, loggerCleanup := common.InitializeLogger()
	defer loggerCleanup()

	seedFlag := flag.String("seed", "", "Accounts YAML file (defaults to ACCOUNTS_FILE)")
	initFlag := flag.Bool("init", false, "Only create the database schema")
	flag.Parse()

	// Initialize services at top level
	cfg, err := config.Load()
	if err != nil {
		zap.L().Fatal("Failed to load config", zap.Error(err))
	}

	services, err := common.InitializeServices(ctx, cfg)
	if err != nil {
		zap.L().Fatal("Failed to initialize services", zap.Error(err))
	}
	defer services.Close()

	if *initFlag {
		zap.L().Info("Database initialized", zap.String("path", cfg.Database.Path))
		return
	}

	seedFile := cfg.Ledger.SeedFile
	if *seedFlag != "" {
		seedFile = *seedFlag
	}
	seedAccounts(ctx, services, seedFile)
}
