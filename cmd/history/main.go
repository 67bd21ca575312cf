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

	"bank-ledger-go/internal/common"
	"bank-ledger-go/internal/config"
	"bank-ledger-go/internal/models"

	"go.uber.org/zap"
)

func parseDateFlag(name, value string) models.Date {
	if value == "" {
		zap.L().Fatal("Missing required flag", zap.String("flag", name))
	}
	date, err := models.ParseDate(models.DisplayDateLayout, value)
	if err != nil {
		zap.L().Fatal("Invalid date", zap.String("flag", name), zap.Error(err))
	}
	return date
}

func main() {
	ctx := context.Background()

	logger, loggerCleanup := common.InitializeLogger()
	defer loggerCleanup()

	startFlag := flag.String("start", "", "Start date dd/mm/yyyy (required)")
	endFlag := flag.String("end", "", "End date dd/mm/yyyy (required)")
	flag.Parse()

	start := parseDateFlag("start", *startFlag)
	end := parseDateFlag("end", *endFlag)

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Failed to load config", zap.Error(err))
	}

	services, err := common.InitializeServices(ctx, cfg)
	if err != nil {
		logger.Fatal("Failed to initialize services", zap.Error(err))
	}
	defer services.Close()

	entries, err := services.Ledger.HistoryBetween(ctx, start, end)
	if err != nil {
		logger.Fatal("Failed to query history", zap.Error(err))
	}

	common.PrintHeader(fmt.Sprintf("HISTORY %s - %s",
		start.Format(models.DisplayDateLayout), end.Format(models.DisplayDateLayout)), common.DefaultWidth)

	if len(entries) == 0 {
		fmt.Println("No movements in this period.")
	}
	for i, entry := range entries {
		fmt.Printf("%s %s  account #%-4d %-7s %20s\n",
			common.BoxPrefix(i == len(entries)-1),
			entry.Date.Format(models.DisplayDateLayout),
			entry.AccountId,
			entry.Kind,
			common.FormatAmount(entry.Amount))
	}

	common.PrintFooter(fmt.Sprintf("%d movements", len(entries)), common.DefaultWidth)
}
