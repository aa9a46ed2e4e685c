package ledger

import (
	"context"
	"sort"
	"sync"
	"time"

	apperrors "go-flight-reservation/pkg/app_errors"
	"go-flight-reservation/pkg/logger"

	"go.uber.org/zap"
)

// SeatChange 一次原子座位異動：Assign 與 Release 必須一起生效或一起失敗。
// Available 是異動完成後的計數值，store 端據此更新 available_seats。
type SeatChange struct {
	ScheduleID    int
	ReservationID int
	Assign        []int
	Release       []int
	Available     int
}

// CapacityStore 座位異動的持久化介面，實作端需保證單次 ApplySeatChange 的原子性
type CapacityStore interface {
	ApplySeatChange(ctx context.Context, change SeatChange) error
}

// AvailabilityPublisher 供快取層訂閱座位變動，盡力而為，失敗不影響主流程
type AvailabilityPublisher interface {
	PublishAvailability(ctx context.Context, scheduleID int, available int, assigned []int)
}

// CapacityLedger 擁有每個航班時段的座位分配關係與剩餘座位計數。
// 不變量：任何操作完成後 available == capacity - |assigned|，
// 且同一時段內一個座位號至多屬於一筆訂位。
type CapacityLedger interface {
	// 預熱：載入時段的容量與既有座位分配
	Register(scheduleID int, capacity int, assigned map[int]int)
	// 查詢：seatCount 是否不超過剩餘座位，seatCount <= 0 恆為 false
	CheckAvailability(ctx context.Context, scheduleID int, seatCount int) (bool, error)
	// 分配：全部成功或全部不生效
	AssignSeats(ctx context.Context, scheduleID int, reservationID int, seats []int) error
	// 釋放：已釋放的座位為 no-op，容忍重試的取消請求。
	// 回傳實際釋放的座位，呼叫端的補償只能指回這個子集
	ReleaseSeats(ctx context.Context, scheduleID int, reservationID int, seats []int) ([]int, error)
	// 改位：以對稱差一步完成，assign 半段失敗時 release 半段不得生效
	ReassignSeats(ctx context.Context, scheduleID int, reservationID int, oldSeats, newSeats []int) error
	// 快照：剩餘座位數與已分配座位號
	Snapshot(ctx context.Context, scheduleID int) (int, []int, error)
}

type scheduleState struct {
	mu        sync.RWMutex
	capacity  int
	available int
	seats     map[int]int // seat number -> reservation id
}

type CapacityLedgerImpl struct {
	store     CapacityStore
	publisher AvailabilityPublisher
	locks     *keyedLock

	mu        sync.RWMutex
	schedules map[int]*scheduleState
}

func NewCapacityLedger(store CapacityStore, publisher AvailabilityPublisher, lockWait time.Duration) CapacityLedger {
	return &CapacityLedgerImpl{
		store:     store,
		publisher: publisher,
		locks:     newKeyedLock(lockWait),
		schedules: make(map[int]*scheduleState),
	}
}

func (l *CapacityLedgerImpl) Register(scheduleID int, capacity int, assigned map[int]int) {
	seats := make(map[int]int, len(assigned))
	for seat, reservationID := range assigned {
		seats[seat] = reservationID
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	l.schedules[scheduleID] = &scheduleState{
		capacity:  capacity,
		available: capacity - len(seats),
		seats:     seats,
	}
}

func (l *CapacityLedgerImpl) state(scheduleID int) (*scheduleState, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	s, ok := l.schedules[scheduleID]
	return s, ok
}

func (l *CapacityLedgerImpl) CheckAvailability(ctx context.Context, scheduleID int, seatCount int) (bool, error) {
	s, ok := l.state(scheduleID)
	if !ok {
		return false, apperrors.ErrScheduleNotFound
	}
	if seatCount <= 0 {
		return false, nil
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	return seatCount <= s.available, nil
}

func (l *CapacityLedgerImpl) Snapshot(ctx context.Context, scheduleID int) (int, []int, error) {
	s, ok := l.state(scheduleID)
	if !ok {
		return 0, nil, apperrors.ErrScheduleNotFound
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	assigned := make([]int, 0, len(s.seats))
	for seat := range s.seats {
		assigned = append(assigned, seat)
	}
	sort.Ints(assigned)
	return s.available, assigned, nil
}

func (l *CapacityLedgerImpl) AssignSeats(ctx context.Context, scheduleID int, reservationID int, seats []int) error {
	_, err := l.mutate(ctx, scheduleID, reservationID, nil, seats)
	return err
}

func (l *CapacityLedgerImpl) ReleaseSeats(ctx context.Context, scheduleID int, reservationID int, seats []int) ([]int, error) {
	return l.mutate(ctx, scheduleID, reservationID, seats, nil)
}

func (l *CapacityLedgerImpl) ReassignSeats(ctx context.Context, scheduleID int, reservationID int, oldSeats, newSeats []int) error {
	release, assign := symmetricDiff(oldSeats, newSeats)
	_, err := l.mutate(ctx, scheduleID, reservationID, release, assign)
	return err
}

// mutate 是唯一的寫入路徑：先在鎖內驗證，寫入 store 成功後才變更記憶體狀態，
// store 失敗則計數與座位集完全不動。回傳實際釋放的座位 (release 中確實屬於
// reservationID 的那些)。
func (l *CapacityLedgerImpl) mutate(ctx context.Context, scheduleID int, reservationID int, release, assign []int) ([]int, error) {
	s, ok := l.state(scheduleID)
	if !ok {
		return nil, apperrors.ErrScheduleNotFound
	}

	if err := l.locks.acquire(ctx, scheduleID); err != nil {
		return nil, err
	}
	defer l.locks.release(scheduleID)

	// validate under read lock; writers are already serialized by the keyed lock
	s.mu.RLock()
	toRelease := make([]int, 0, len(release))
	for _, seat := range release {
		// idempotent guard: only release seats this reservation actually holds
		if owner, held := s.seats[seat]; held && owner == reservationID {
			toRelease = append(toRelease, seat)
		}
	}

	conflicts := []int{}
	for _, seat := range assign {
		if seat < 1 || seat > s.capacity {
			s.mu.RUnlock()
			return nil, apperrors.ErrInvalidInput
		}
		if _, taken := s.seats[seat]; taken {
			conflicts = append(conflicts, seat)
		}
	}
	if len(conflicts) > 0 {
		s.mu.RUnlock()
		return nil, apperrors.NewSeatConflictError(scheduleID, conflicts)
	}

	newAvailable := s.available + len(toRelease) - len(assign)
	s.mu.RUnlock()

	if newAvailable < 0 {
		return nil, apperrors.ErrCapacityExceeded
	}
	if len(toRelease) == 0 && len(assign) == 0 {
		return toRelease, nil
	}

	change := SeatChange{
		ScheduleID:    scheduleID,
		ReservationID: reservationID,
		Assign:        assign,
		Release:       toRelease,
		Available:     newAvailable,
	}
	if err := l.store.ApplySeatChange(ctx, change); err != nil {
		return nil, err
	}

	s.mu.Lock()
	for _, seat := range toRelease {
		delete(s.seats, seat)
	}
	for _, seat := range assign {
		s.seats[seat] = reservationID
	}
	s.available = newAvailable
	assigned := make([]int, 0, len(s.seats))
	for seat := range s.seats {
		assigned = append(assigned, seat)
	}
	s.mu.Unlock()
	sort.Ints(assigned)

	if l.publisher != nil {
		l.publisher.PublishAvailability(ctx, scheduleID, newAvailable, assigned)
	}

	logger.WithComponent("capacity_ledger").Debug("seat change applied",
		zap.Int("schedule_id", scheduleID),
		zap.Int("reservation_id", reservationID),
		zap.Ints("assigned", assign),
		zap.Ints("released", toRelease),
		zap.Int("available", newAvailable),
	)

	return toRelease, nil
}

// symmetricDiff returns (old \ new, new \ old) for two normalized seat lists.
func symmetricDiff(oldSeats, newSeats []int) (release, assign []int) {
	oldSet := make(map[int]struct{}, len(oldSeats))
	for _, seat := range oldSeats {
		oldSet[seat] = struct{}{}
	}
	newSet := make(map[int]struct{}, len(newSeats))
	for _, seat := range newSeats {
		newSet[seat] = struct{}{}
	}

	for _, seat := range oldSeats {
		if _, keep := newSet[seat]; !keep {
			release = append(release, seat)
		}
	}
	for _, seat := range newSeats {
		if _, had := oldSet[seat]; !had {
			assign = append(assign, seat)
		}
	}
	return release, assign
}
