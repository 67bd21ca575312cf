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
	"flag"
	"fmt"

	"bank-ledger-go/internal/api"
	"bank-ledger-go/internal/common"
	"bank-ledger-go/internal/config"
	"bank-ledger-go/internal/models"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type action int

const (
	actionCreate action = iota
	actionActivate
	actionDeactivate
)

type accountRequest struct {
	action  action
	bank    models.Bank
	balance decimal.Decimal
	account string
}

func parseAndValidateFlags() (*accountRequest, error) {
	createFlag := flag.Bool("create", false, "Create an account")
	activateFlag := flag.Bool("activate", false, "Activate an account")
	deactivateFlag := flag.Bool("deactivate", false, "Deactivate an account with zero balance")
	bankFlag := flag.String("bank", "", "Bank for --create: Nubank, Santander, Inter, Neon or Itaú")
	balanceFlag := flag.String("balance", "0", "Initial balance for --create")
	idFlag := flag.String("id", "", "Account id or bank for --activate / --deactivate")
	flag.Parse()

	selected := 0
	for _, set := range []bool{*createFlag, *activateFlag, *deactivateFlag} {
		if set {
			selected++
		}
	}
	if selected != 1 {
		return nil, fmt.Errorf("exactly one of --create, --activate or --deactivate is required")
	}

	if *createFlag {
		bank, err := models.ParseBank(*bankFlag)
		if err != nil {
			return nil, err
		}
		balance, err := decimal.NewFromString(*balanceFlag)
		if err != nil {
			return nil, fmt.Errorf("invalid balance format: %w", err)
		}
		return &accountRequest{action: actionCreate, bank: bank, balance: balance}, nil
	}

	if *idFlag == "" {
		return nil, fmt.Errorf("--id is required")
	}
	req := &accountRequest{action: actionActivate, account: *idFlag}
	if *deactivateFlag {
		req.action = actionDeactivate
	}
	return req, nil
}

func run(ctx context.Context, ledger *api.LedgerService, req *accountRequest) (*models.Account, error) {
	if req.action == actionCreate {
		return ledger.CreateAccount(ctx, req.bank, req.balance)
	}

	id, err := common.ResolveAccountId(ctx, ledger, req.account)
	if err != nil {
		return nil, err
	}
	if req.action == actionDeactivate {
		return ledger.DeactivateAccount(ctx, id)
	}
	return ledger.ActivateAccount(ctx, id)
}

func main() {
	ctx := context.Background()

	_, loggerCleanup := common.InitializeLogger()
	defer loggerCleanup()

	req, err := parseAndValidateFlags()
	if err != nil {
		zap.L().Fatal("Invalid flags", zap.Error(err))
	}

	cfg, err := config.Load()
	if err != nil {
		zap.L().Fatal("Failed to load config", zap.Error(err))
	}

	services, err := common.InitializeServices(ctx, cfg)
	if err != nil {
		zap.L().Fatal("Failed to initialize services", zap.Error(err))
	}
	defer services.Close()

	account, err := run(ctx, services.Ledger, req)
	services.ExitOnFailure("Account operation failed", err)

	common.PrintHeader("ACCOUNT", common.DefaultWidth)
	fmt.Printf("%s\n", common.AccountLabel(*account))
	fmt.Printf("Balance: %s\n", common.FormatAmount(account.Balance))
	common.PrintFooter("✅ Done", common.DefaultWidth)
}
