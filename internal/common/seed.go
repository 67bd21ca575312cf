package common

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"sync"

	"bank-ledger-go/internal/api"
	"bank-ledger-go/internal/models"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v2"
)

type accountSeedConfig struct {
	Bank     string `yaml:"bank"`
	Balance  string `yaml:"balance"`
	Inactive bool   `yaml:"inactive"`
}

type accountsSeedConfig struct {
	Accounts []accountSeedConfig `yaml:"accounts"`
}

// AccountSeed is one validated entry of the accounts seed file
type AccountSeed struct {
	Bank     models.Bank
	Balance  decimal.Decimal
	Inactive bool
}

// SeedReport lists what SeedAccounts created and which banks it skipped.
// Creating and deactivating an inactive seed are two separate units of work:
// Partial holds accounts created but left Active because deactivation failed,
// and Deactivated holds existing Active accounts that a rerun deactivated.
type SeedReport struct {
	Created     []models.Account
	Skipped     []models.Bank
	Partial     []models.Account
	Deactivated []models.Account
}

func LoadAccountSeeds(seedFile string) ([]AccountSeed, error) {
	var seedPath string
	if filepath.IsAbs(seedFile) {
		seedPath = seedFile
	} else {
		wd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get working directory: %w", err)
		}
		seedPath = filepath.Join(wd, seedFile)
	}

	data, err := os.ReadFile(seedPath)
	if err != nil {
		return nil, fmt.Errorf("unable to read %s: %w", seedFile, err)
	}

	var config accountsSeedConfig
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("unable to parse %s: %w", seedFile, err)
	}

	seeds := make([]AccountSeed, 0, len(config.Accounts))
	for i, account := range config.Accounts {
		if account.Bank == "" {
			return nil, fmt.Errorf("account at index %d missing bank", i)
		}
		bank, err := models.ParseBank(account.Bank)
		if err != nil {
			return nil, fmt.Errorf("account at index %d: %w", i, err)
		}

		balance := decimal.Zero
		if account.Balance != "" {
			balance, err = decimal.NewFromString(account.Balance)
			if err != nil {
				return nil, fmt.Errorf("account at index %d has invalid balance %q: %w", i, account.Balance, err)
			}
		}
		if balance.IsNegative() {
			return nil, fmt.Errorf("account at index %d: %w", i, api.ErrNegativeBalance)
		}
		if account.Inactive && !balance.IsZero() {
			return nil, fmt.Errorf("account at index %d: inactive accounts must start at zero: %w", i, api.ErrHasBalance)
		}

		seeds = append(seeds, AccountSeed{Bank: bank, Balance: balance, Inactive: account.Inactive})
	}

	return seeds, nil
}

// SeedAccounts creates every seed concurrently. Banks that already have an
// account are skipped, though an inactive seed still deactivates a leftover
// Active account with no balance. Any other failure aborts the remaining seeds.
func SeedAccounts(ctx context.Context, ledger *api.LedgerService, seeds []AccountSeed) (*SeedReport, error) {
	var mu sync.Mutex
	report := &SeedReport{}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(4)
	for _, seed := range seeds {
		g.Go(func() error {
			account, err := ledger.CreateAccount(ctx, seed.Bank, seed.Balance)
			if errors.Is(err, api.ErrDuplicateBank) {
				zap.L().Info("Account already exists, skipping", zap.String("bank", seed.Bank.String()))
				mu.Lock()
				report.Skipped = append(report.Skipped, seed.Bank)
				mu.Unlock()
				if !seed.Inactive {
					return nil
				}
				deactivated, err := completeDeactivation(ctx, ledger, seed.Bank)
				if err != nil || deactivated == nil {
					return err
				}
				mu.Lock()
				report.Deactivated = append(report.Deactivated, *deactivated)
				mu.Unlock()
				return nil
			}
			if err != nil {
				return fmt.Errorf("failed to seed %s: %w", seed.Bank, err)
			}

			if seed.Inactive {
				deactivated, err := ledger.DeactivateAccount(ctx, account.Id)
				if err != nil {
					mu.Lock()
					report.Partial = append(report.Partial, *account)
					mu.Unlock()
					return fmt.Errorf("created %s but failed to deactivate it: %w", seed.Bank, err)
				}
				account = deactivated
			}

			mu.Lock()
			report.Created = append(report.Created, *account)
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return report, err
	}

	slices.SortFunc(report.Created, func(a, b models.Account) int {
		switch {
		case a.Id < b.Id:
			return -1
		case a.Id > b.Id:
			return 1
		}
		return 0
	})
	return report, nil
}

// completeDeactivation finishes an inactive seed whose account a previous run
// created but left Active. Accounts holding a balance are left untouched.
func completeDeactivation(ctx context.Context, ledger *api.LedgerService, bank models.Bank) (*models.Account, error) {
	accounts, err := SelectAccounts(ctx, ledger, bank.String())
	if err != nil {
		return nil, fmt.Errorf("failed to look up existing %s: %w", bank, err)
	}
	existing := accounts[0]
	if !existing.IsActive() {
		return nil, nil
	}
	if !existing.Balance.IsZero() {
		zap.L().Warn("Seed marks account inactive but it holds a balance",
			zap.Int64("account_id", existing.Id),
			zap.String("bank", bank.String()),
			zap.String("balance", existing.Balance.String()))
		return nil, nil
	}

	deactivated, err := ledger.DeactivateAccount(ctx, existing.Id)
	if err != nil {
		return nil, fmt.Errorf("failed to deactivate existing %s: %w", bank, err)
	}
	zap.L().Info("Deactivated existing account to match seed",
		zap.Int64("account_id", deactivated.Id),
		zap.String("bank", bank.String()))
	return deactivated, nil
}
