package common

import (
	"fmt"
	"testing"

	"bank-ledger-go/internal/api"
	"bank-ledger-go/internal/store"

	"github.com/stretchr/testify/assert"
)

func TestExitCode(t *testing.T) {
	assert.Equal(t, 0, ExitCode(nil))
	assert.Equal(t, 2, ExitCode(fmt.Errorf("%w: account 1", api.ErrInsufficientFunds)))
	assert.Equal(t, 2, ExitCode(api.ErrDuplicateBank))
	assert.Equal(t, 1, ExitCode(store.Fault("commit unit of work", store.ErrStoreClosed)))
	assert.Equal(t, 1, ExitCode(fmt.Errorf("failed to retrieve accounts: %w", store.Fault("query accounts", store.ErrLockTimeout))))
}

func TestExitOnFailure_NilErrorReturns(t *testing.T) {
	services := &Services{}
	services.ExitOnFailure("unused", nil)
}
