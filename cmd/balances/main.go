/**
 * Copyright 2025-present Coinbase Global, Inc.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *  http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package main

import (
	"context"
	"errors"
	"flag"
	"fmt"

	"bank-ledger-go/internal/api"
	"bank-ledger-go/internal/common"
	"bank-ledger-go/internal/config"
	"bank-ledger-go/internal/models"

	"go.uber.org/zap"
)

type balanceStats struct {
	totalAccounts  int
	activeAccounts int
	unbalanced     int
}

func printAccount(account models.Account, isLast bool) {
	symbol := common.BoxPrefix(isLast)

	fmt.Printf("%s %-28s: %20s (opened with %s, updated: %s)\n",
		symbol,
		common.AccountLabel(account),
		common.FormatAmount(account.Balance),
		common.FormatAmount(account.OpeningBalance),
		account.UpdatedAt.Format("2006-01-02 15:04:05"))
}

func printReconciliation(rec *models.Reconciliation, isLast bool) {
	prefix := common.BoxDetailPrefix(isLast)
	state := "OK"
	if !rec.Balanced() {
		state = "MISMATCH"
	}
	fmt.Printf("%s   reconcile: %s (%d entries, +%s -%s, expected %s)\n",
		prefix,
		state,
		rec.Entries,
		common.FormatAmount(rec.Credits),
		common.FormatAmount(rec.Debits),
		common.FormatAmount(rec.Calculated))
}

func printActiveBreakdown(balances []models.BankBalance) {
	fmt.Printf("\n┌─ Active accounts by bank\n")
	common.PrintBoxSeparator(78)
	for i, balance := range balances {
		fmt.Printf("%s %-15s: %20s\n", common.BoxPrefix(i == len(balances)-1), balance.Bank, common.FormatAmount(balance.Balance))
	}
}

func generateReport(ctx context.Context, ledger *api.LedgerService, accounts []models.Account, reconcile bool) balanceStats {
	stats := balanceStats{}

	fmt.Printf("\n┌─ Accounts: %d\n", len(accounts))
	common.PrintBoxSeparator(78)

	for i, account := range accounts {
		isLast := i == len(accounts)-1
		stats.totalAccounts++
		if account.IsActive() {
			stats.activeAccounts++
		}

		printAccount(account, isLast)
		if !reconcile {
			continue
		}

		rec, err := ledger.ReconcileAccount(ctx, account.Id)
		if err != nil && !errors.Is(err, api.ErrInvariantViolation) {
			zap.L().Error("Failed to reconcile account", zap.Int64("account_id", account.Id), zap.Error(err))
			continue
		}
		if !rec.Balanced() {
			stats.unbalanced++
		}
		printReconciliation(rec, isLast)
	}

	return stats
}

func main() {
	ctx := context.Background()

	logger, loggerCleanup := common.InitializeLogger()
	defer loggerCleanup()

	// Parse command line flags
	bankFlag := flag.String("bank", "", "Filter by bank (optional)")
	reconcileFlag := flag.Bool("reconcile", false, "Rebuild each balance from history and compare")
	flag.Parse()

	logger.Info("Starting balance query")

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Failed to load config", zap.Error(err))
	}

	logger.Info("Connecting to database", zap.String("path", cfg.Database.Path))
	services, err := common.InitializeServices(ctx, cfg)
	if err != nil {
		logger.Fatal("Failed to initialize services", zap.Error(err))
	}
	defer services.Close()

	accounts, err := common.SelectAccounts(ctx, services.Ledger, *bankFlag)
	if err != nil {
		logger.Fatal("Failed to select accounts", zap.Error(err))
	}

	common.PrintHeader("ACCOUNT BALANCE REPORT", common.DefaultWidth)

	stats := generateReport(ctx, services.Ledger, accounts, *reconcileFlag)

	if *bankFlag == "" {
		active, err := services.Ledger.ActiveBalances(ctx)
		switch {
		case errors.Is(err, api.ErrNoActiveAccounts):
			fmt.Println("\nNo active accounts.")
		case err != nil:
			logger.Error("Failed to load active balances", zap.Error(err))
		default:
			printActiveBreakdown(active)
		}
	}

	total, err := services.Ledger.TotalBalance(ctx)
	if err != nil {
		logger.Fatal("Failed to compute total balance", zap.Error(err))
	}

	summary := fmt.Sprintf("TOTAL: %s across %d accounts (%d active)",
		common.FormatAmount(total), stats.totalAccounts, stats.activeAccounts)
	if *reconcileFlag {
		summary += fmt.Sprintf(", %d unbalanced", stats.unbalanced)
	}
	common.PrintFooter(summary, common.DefaultWidth)

	logger.Info("Balance query completed",
		zap.Int("accounts", stats.totalAccounts),
		zap.Int("active_accounts", stats.activeAccounts),
		zap.String("total", total.String()))
}
