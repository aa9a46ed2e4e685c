package ledger

import (
	"context"
	"sync"
	"time"

	apperrors "go-flight-reservation/pkg/app_errors"
)

// keyedLock 依 key 互斥：同一 key 的寫入操作被序列化，
// 不同 key 之間互不阻塞。等待超過 wait 回傳 ErrBusy，避免卡住的請求餓死其他人。
type keyedLock struct {
	mu    sync.Mutex
	locks map[int]chan struct{}
	wait  time.Duration
}

func newKeyedLock(wait time.Duration) *keyedLock {
	return &keyedLock{
		locks: make(map[int]chan struct{}),
		wait:  wait,
	}
}

func (l *keyedLock) slot(key int) chan struct{} {
	l.mu.Lock()
	defer l.mu.Unlock()
	ch, ok := l.locks[key]
	if !ok {
		ch = make(chan struct{}, 1)
		l.locks[key] = ch
	}
	return ch
}

func (l *keyedLock) acquire(ctx context.Context, key int) error {
	ch := l.slot(key)

	timer := time.NewTimer(l.wait)
	defer timer.Stop()

	select {
	case ch <- struct{}{}:
		return nil
	case <-timer.C:
		return apperrors.ErrBusy
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (l *keyedLock) release(key int) {
	<-l.slot(key)
}
