package common

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"bank-ledger-go/internal/api"
	"bank-ledger-go/internal/memstore"
	"bank-ledger-go/internal/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeSeedFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "accounts.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadAccountSeeds(t *testing.T) {
	path := writeSeedFile(t, `
accounts:
  - bank: Nubank
    balance: "100.50"
  - bank: itau
  - bank: Neon
    inactive: true
`)

	seeds, err := LoadAccountSeeds(path)
	require.NoError(t, err)
	require.Len(t, seeds, 3)

	assert.Equal(t, models.BankNubank, seeds[0].Bank)
	assert.True(t, seeds[0].Balance.Equal(decimal.RequireFromString("100.50")))
	assert.Equal(t, models.BankItau, seeds[1].Bank)
	assert.True(t, seeds[1].Balance.IsZero())
	assert.True(t, seeds[2].Inactive)
}

func TestLoadAccountSeeds_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"missing bank", "accounts:\n  - balance: \"1\"\n"},
		{"unknown bank", "accounts:\n  - bank: Caixa\n"},
		{"bad balance", "accounts:\n  - bank: Inter\n    balance: \"lots\"\n"},
		{"negative balance", "accounts:\n  - bank: Inter\n    balance: \"-1\"\n"},
		{"inactive with balance", "accounts:\n  - bank: Inter\n    balance: \"5\"\n    inactive: true\n"},
		{"malformed yaml", "accounts: [\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadAccountSeeds(writeSeedFile(t, tt.content))
			assert.Error(t, err)
		})
	}

	_, err := LoadAccountSeeds(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestSeedAccounts(t *testing.T) {
	db := memstore.New(time.Second)
	defer db.Close()
	ledger := api.NewLedgerService(db, models.LedgerConfig{})

	_, err := ledger.CreateAccount(context.Background(), models.BankInter, decimal.NewFromInt(7))
	require.NoError(t, err)

	report, err := SeedAccounts(context.Background(), ledger, []AccountSeed{
		{Bank: models.BankNubank, Balance: decimal.NewFromInt(100)},
		{Bank: models.BankInter, Balance: decimal.NewFromInt(1)},
		{Bank: models.BankNeon, Inactive: true},
	})
	require.NoError(t, err)

	require.Len(t, report.Created, 2)
	assert.Equal(t, []models.Bank{models.BankInter}, report.Skipped)

	accounts, err := SelectAccounts(context.Background(), ledger, "neon")
	require.NoError(t, err)
	require.Len(t, accounts, 1)
	assert.Equal(t, models.StatusInactive, accounts[0].Status)

	total, err := ledger.TotalBalance(context.Background())
	require.NoError(t, err)
	assert.True(t, total.Equal(decimal.NewFromInt(107)))
}

func TestSeedAccounts_RerunCompletesInactiveSeed(t *testing.T) {
	db := memstore.New(time.Second)
	defer db.Close()
	ledger := api.NewLedgerService(db, models.LedgerConfig{})

	// State left by a run that created the accounts but never deactivated them
	left, err := ledger.CreateAccount(context.Background(), models.BankNeon, decimal.Zero)
	require.NoError(t, err)
	funded, err := ledger.CreateAccount(context.Background(), models.BankItau, decimal.NewFromInt(3))
	require.NoError(t, err)

	report, err := SeedAccounts(context.Background(), ledger, []AccountSeed{
		{Bank: models.BankNeon, Inactive: true},
		{Bank: models.BankItau, Inactive: true},
	})
	require.NoError(t, err)

	assert.Empty(t, report.Created)
	assert.Empty(t, report.Partial)
	assert.ElementsMatch(t, []models.Bank{models.BankNeon, models.BankItau}, report.Skipped)
	require.Len(t, report.Deactivated, 1)
	assert.Equal(t, left.Id, report.Deactivated[0].Id)

	accounts, err := SelectAccounts(context.Background(), ledger, "neon")
	require.NoError(t, err)
	assert.Equal(t, models.StatusInactive, accounts[0].Status)

	accounts, err = SelectAccounts(context.Background(), ledger, "itau")
	require.NoError(t, err)
	assert.Equal(t, funded.Id, accounts[0].Id)
	assert.Equal(t, models.StatusActive, accounts[0].Status)

	// A second rerun has nothing left to do
	report, err = SeedAccounts(context.Background(), ledger, []AccountSeed{{Bank: models.BankNeon, Inactive: true}})
	require.NoError(t, err)
	assert.Empty(t, report.Deactivated)
}

func TestResolveAccountId(t *testing.T) {
	db := memstore.New(time.Second)
	defer db.Close()
	ledger := api.NewLedgerService(db, models.LedgerConfig{})

	account, err := ledger.CreateAccount(context.Background(), models.BankSantander, decimal.Zero)
	require.NoError(t, err)

	id, err := ResolveAccountId(context.Background(), ledger, "santander")
	require.NoError(t, err)
	assert.Equal(t, account.Id, id)

	id, err = ResolveAccountId(context.Background(), ledger, "42")
	require.NoError(t, err)
	assert.Equal(t, int64(42), id)

	_, err = ResolveAccountId(context.Background(), ledger, "Nubank")
	assert.ErrorIs(t, err, api.ErrAccountNotFound)

	_, err = ResolveAccountId(context.Background(), ledger, "")
	assert.Error(t, err)
}
