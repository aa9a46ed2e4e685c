package ledger

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	apperrors "go-flight-reservation/pkg/app_errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestTokenLedger(store *memTokenStore) TokenLedger {
	return NewTokenLedger(store, time.Second)
}

func TestTokenLedger_Credit(t *testing.T) {
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		store := newMemTokenStore()
		l := newTestTokenLedger(store)

		balance, err := l.Credit(ctx, 1, 2)
		require.NoError(t, err)
		assert.Equal(t, 2, balance)
		assert.Equal(t, 2, store.balance(1))
	})

	t.Run("Failed - non-positive seats", func(t *testing.T) {
		store := newMemTokenStore()
		l := newTestTokenLedger(store)

		_, err := l.Credit(ctx, 1, 0)
		assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
		_, err = l.Credit(ctx, 1, -1)
		assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
	})

	t.Run("LoadsExistingBalance", func(t *testing.T) {
		store := newMemTokenStore()
		store.balances[7] = 5
		l := newTestTokenLedger(store)

		balance, err := l.Credit(ctx, 7, 3)
		require.NoError(t, err)
		assert.Equal(t, 8, balance)
	})
}

func TestTokenLedger_Debit(t *testing.T) {
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		store := newMemTokenStore()
		store.balances[1] = 5
		l := newTestTokenLedger(store)

		balance, err := l.Debit(ctx, 1, 5)
		require.NoError(t, err)
		assert.Equal(t, 0, balance)
	})

	t.Run("Failed - ErrInsufficientTokens leaves balance unchanged", func(t *testing.T) {
		store := newMemTokenStore()
		store.balances[1] = 3
		l := newTestTokenLedger(store)

		_, err := l.Debit(ctx, 1, 4)
		assert.ErrorIs(t, err, apperrors.ErrInsufficientTokens)

		balance, err := l.Balance(ctx, 1)
		require.NoError(t, err)
		assert.Equal(t, 3, balance)
		assert.Equal(t, 3, store.balance(1))
	})
}

func TestTokenLedger_Adjust(t *testing.T) {
	ctx := context.Background()

	t.Run("PositiveAndNegativeDelta", func(t *testing.T) {
		store := newMemTokenStore()
		store.balances[1] = 2
		l := newTestTokenLedger(store)

		balance, err := l.Adjust(ctx, 1, 1)
		require.NoError(t, err)
		assert.Equal(t, 3, balance)

		balance, err = l.Adjust(ctx, 1, -2)
		require.NoError(t, err)
		assert.Equal(t, 1, balance)
	})

	t.Run("Failed - would go negative", func(t *testing.T) {
		store := newMemTokenStore()
		store.balances[1] = 1
		l := newTestTokenLedger(store)

		_, err := l.Adjust(ctx, 1, -2)
		assert.ErrorIs(t, err, apperrors.ErrInsufficientTokens)
		assert.Equal(t, 1, store.balance(1))
	})

	t.Run("ZeroDelta is a no-op", func(t *testing.T) {
		store := newMemTokenStore()
		store.balances[1] = 4
		l := newTestTokenLedger(store)

		balance, err := l.Adjust(ctx, 1, 0)
		require.NoError(t, err)
		assert.Equal(t, 4, balance)
	})
}

func TestTokenLedger_Redeem(t *testing.T) {
	ctx := context.Background()

	t.Run("Success - full balance leaves zero", func(t *testing.T) {
		store := newMemTokenStore()
		store.balances[1] = 10
		l := newTestTokenLedger(store)

		balance, err := l.Redeem(ctx, 1, 10)
		require.NoError(t, err)
		assert.Equal(t, 0, balance)
	})

	t.Run("Failed - over balance", func(t *testing.T) {
		store := newMemTokenStore()
		store.balances[1] = 10
		l := newTestTokenLedger(store)

		_, err := l.Redeem(ctx, 1, 11)
		assert.ErrorIs(t, err, apperrors.ErrInsufficientTokens)

		balance, err := l.Balance(ctx, 1)
		require.NoError(t, err)
		assert.Equal(t, 10, balance)
	})

	t.Run("Failed - amount out of bounds", func(t *testing.T) {
		store := newMemTokenStore()
		l := newTestTokenLedger(store)

		_, err := l.Redeem(ctx, 1, 0)
		assert.ErrorIs(t, err, apperrors.ErrInvalidInput)

		_, err = l.Redeem(ctx, 1, MaxRedeemAmount+1)
		assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
	})
}

func TestTokenLedger_StoreFailureLeavesMemoryUnchanged(t *testing.T) {
	ctx := context.Background()
	store := newMemTokenStore()
	store.balances[1] = 5
	l := newTestTokenLedger(store)

	// prime the in-memory balance
	_, err := l.Balance(ctx, 1)
	require.NoError(t, err)

	store.saveErr = errors.New("db down")
	_, err = l.Credit(ctx, 1, 1)
	require.Error(t, err)

	store.saveErr = nil
	balance, err := l.Balance(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 5, balance)
}

// 併發入帳同一位顧客：總額必須精確
func TestTokenLedger_ConcurrentCredits(t *testing.T) {
	ctx := context.Background()
	store := newMemTokenStore()
	l := newTestTokenLedger(store)

	concurrent := 50
	var wg sync.WaitGroup
	for i := 0; i < concurrent; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := l.Credit(ctx, 1, 1)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	balance, err := l.Balance(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, concurrent, balance)
	assert.Equal(t, concurrent, store.balance(1))
}
