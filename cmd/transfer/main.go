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

type transferRequest struct {
	movement bool
	from     string
	to       string
	account  string
	kind     models.Kind
	amount   decimal.Decimal
	date     models.Date
}

func parseAndValidateFlags() (*transferRequest, error) {
	movementFlag := flag.Bool("movement", false, "Apply a single-account credit or debit instead of a transfer")
	fromFlag := flag.String("from", "", "Source account id or bank (transfer)")
	toFlag := flag.String("to", "", "Destination account id or bank (transfer)")
	idFlag := flag.String("id", "", "Account id or bank (movement)")
	kindFlag := flag.String("kind", "", "credit or debit (movement)")
	amountFlag := flag.String("amount", "", "Amount (required)")
	dateFlag := flag.String("date", "", "Movement date as dd/mm/yyyy (defaults to today)")
	flag.Parse()

	if *amountFlag == "" {
		return nil, fmt.Errorf("--amount is required")
	}
	amount, err := decimal.NewFromString(*amountFlag)
	if err != nil {
		return nil, fmt.Errorf("invalid amount format: %w", err)
	}
	if amount.LessThanOrEqual(decimal.Zero) {
		return nil, api.ErrInvalidAmount
	}

	req := &transferRequest{movement: *movementFlag, amount: amount}
	if !req.movement {
		if *fromFlag == "" || *toFlag == "" {
			return nil, fmt.Errorf("transfers require --from and --to")
		}
		req.from, req.to = *fromFlag, *toFlag
		return req, nil
	}

	if *idFlag == "" || *kindFlag == "" {
		return nil, fmt.Errorf("movements require --id and --kind")
	}
	req.account = *idFlag
	if req.kind, err = models.ParseKind(*kindFlag); err != nil {
		return nil, err
	}
	if *dateFlag != "" {
		if req.date, err = models.ParseDate(models.DisplayDateLayout, *dateFlag); err != nil {
			return nil, err
		}
	}
	return req, nil
}

func runTransfer(ctx context.Context, ledger *api.LedgerService, req *transferRequest) error {
	fromId, err := common.ResolveAccountId(ctx, ledger, req.from)
	if err != nil {
		return err
	}
	toId, err := common.ResolveAccountId(ctx, ledger, req.to)
	if err != nil {
		return err
	}

	result, err := ledger.Transfer(ctx, fromId, toId, req.amount)
	if err != nil {
		return err
	}

	fmt.Printf("✅ Transfer completed on %s\n", result.Debit.Date.Format(models.DisplayDateLayout))
	fmt.Printf("   From:   %-28s %s\n", common.AccountLabel(result.From), common.FormatAmount(result.From.Balance))
	fmt.Printf("   To:     %-28s %s\n", common.AccountLabel(result.To), common.FormatAmount(result.To.Balance))
	fmt.Printf("   Amount: %s\n\n", common.FormatAmount(req.amount))
	return nil
}

func runMovement(ctx context.Context, ledger *api.LedgerService, req *transferRequest) error {
	accountId, err := common.ResolveAccountId(ctx, ledger, req.account)
	if err != nil {
		return err
	}

	result, err := ledger.Movement(ctx, accountId, req.kind, req.amount, req.date)
	if err != nil {
		return err
	}

	fmt.Printf("✅ %s of %s recorded on %s\n", result.Entry.Kind, common.FormatAmount(result.Entry.Amount), result.Entry.Date.Format(models.DisplayDateLayout))
	fmt.Printf("   Account: %s\n", common.AccountLabel(result.Account))
	fmt.Printf("   Balance: %s\n\n", common.FormatAmount(result.Account.Balance))
	return nil
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

	if req.movement {
		err = runMovement(ctx, services.Ledger, req)
	} else {
		err = runTransfer(ctx, services.Ledger, req)
	}
	services.ExitOnFailure("Operation failed", err)
}
