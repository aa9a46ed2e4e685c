package ledger

import (
	"context"
	"sync"
)

// memCapacityStore 測試用的記憶體 store，記錄每次 SeatChange 並可注入失敗
type memCapacityStore struct {
	mu      sync.Mutex
	changes []SeatChange
	failErr error
}

func (s *memCapacityStore) ApplySeatChange(ctx context.Context, change SeatChange) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failErr != nil {
		return s.failErr
	}
	s.changes = append(s.changes, change)
	return nil
}

func (s *memCapacityStore) changeCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.changes)
}

func (s *memCapacityStore) lastChange() SeatChange {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.changes[len(s.changes)-1]
}

// memTokenStore 測試用的點數 store
type memTokenStore struct {
	mu       sync.Mutex
	balances map[int]int
	fetchErr error
	saveErr  error
}

func newMemTokenStore() *memTokenStore {
	return &memTokenStore{balances: make(map[int]int)}
}

func (s *memTokenStore) FetchBalance(ctx context.Context, customerID int) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fetchErr != nil {
		return 0, s.fetchErr
	}
	return s.balances[customerID], nil
}

func (s *memTokenStore) SaveBalance(ctx context.Context, customerID int, balance int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.saveErr != nil {
		return s.saveErr
	}
	s.balances[customerID] = balance
	return nil
}

func (s *memTokenStore) balance(customerID int) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.balances[customerID]
}
