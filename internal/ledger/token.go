package ledger

import (
	"context"
	"sync"
	"time"

	apperrors "go-flight-reservation/pkg/app_errors"
)

// MaxRedeemAmount 單次兌換上限
const MaxRedeemAmount = 1000

// TokenStore 點數餘額的持久化介面
type TokenStore interface {
	FetchBalance(ctx context.Context, customerID int) (int, error)
	SaveBalance(ctx context.Context, customerID int, balance int) error
}

// TokenLedger 擁有每位顧客的點數餘額，餘額永不為負。
// 同一顧客的變動被序列化，不同顧客互不阻塞。
type TokenLedger interface {
	// 訂位成功入帳：1 座位 = 1 點
	Credit(ctx context.Context, customerID int, seats int) (int, error)
	Debit(ctx context.Context, customerID int, seats int) (int, error)
	// 改位時依座位數差額調整，delta 可為負
	Adjust(ctx context.Context, customerID int, delta int) (int, error)
	// 兌換：0 < amount <= MaxRedeemAmount，再執行 Debit
	Redeem(ctx context.Context, customerID int, amount int) (int, error)
	Balance(ctx context.Context, customerID int) (int, error)
}

type TokenLedgerImpl struct {
	store TokenStore
	locks *keyedLock

	mu       sync.Mutex
	balances map[int]int
}

func NewTokenLedger(store TokenStore, lockWait time.Duration) TokenLedger {
	return &TokenLedgerImpl{
		store:    store,
		locks:    newKeyedLock(lockWait),
		balances: make(map[int]int),
	}
}

// loadLocked 懶載入餘額，呼叫端必須已持有該顧客的 keyed lock
func (l *TokenLedgerImpl) loadLocked(ctx context.Context, customerID int) (int, error) {
	l.mu.Lock()
	balance, ok := l.balances[customerID]
	l.mu.Unlock()
	if ok {
		return balance, nil
	}

	balance, err := l.store.FetchBalance(ctx, customerID)
	if err != nil {
		return 0, err
	}

	l.mu.Lock()
	l.balances[customerID] = balance
	l.mu.Unlock()
	return balance, nil
}

// apply 是唯一的寫入路徑：store 寫入成功後才變更記憶體餘額
func (l *TokenLedgerImpl) apply(ctx context.Context, customerID int, delta int) (int, error) {
	if err := l.locks.acquire(ctx, customerID); err != nil {
		return 0, err
	}
	defer l.locks.release(customerID)

	balance, err := l.loadLocked(ctx, customerID)
	if err != nil {
		return 0, err
	}

	next := balance + delta
	if next < 0 {
		return balance, apperrors.ErrInsufficientTokens
	}
	if delta == 0 {
		return balance, nil
	}

	if err := l.store.SaveBalance(ctx, customerID, next); err != nil {
		return balance, err
	}

	l.mu.Lock()
	l.balances[customerID] = next
	l.mu.Unlock()
	return next, nil
}

func (l *TokenLedgerImpl) Credit(ctx context.Context, customerID int, seats int) (int, error) {
	if seats <= 0 {
		return 0, apperrors.ErrInvalidInput
	}
	return l.apply(ctx, customerID, seats)
}

func (l *TokenLedgerImpl) Debit(ctx context.Context, customerID int, seats int) (int, error) {
	if seats <= 0 {
		return 0, apperrors.ErrInvalidInput
	}
	return l.apply(ctx, customerID, -seats)
}

func (l *TokenLedgerImpl) Adjust(ctx context.Context, customerID int, delta int) (int, error) {
	return l.apply(ctx, customerID, delta)
}

func (l *TokenLedgerImpl) Redeem(ctx context.Context, customerID int, amount int) (int, error) {
	if amount <= 0 || amount > MaxRedeemAmount {
		return 0, apperrors.ErrInvalidInput
	}
	return l.Debit(ctx, customerID, amount)
}

func (l *TokenLedgerImpl) Balance(ctx context.Context, customerID int) (int, error) {
	if err := l.locks.acquire(ctx, customerID); err != nil {
		return 0, err
	}
	defer l.locks.release(customerID)

	return l.loadLocked(ctx, customerID)
}
