package service

import (
	"context"
	"sync"
	"time"

	"go-flight-reservation/internal/ledger"
	"go-flight-reservation/internal/model"
	apperrors "go-flight-reservation/pkg/app_errors"
)

// ---- ledger stores ----

type memCapacityStore struct {
	mu      sync.Mutex
	failErr error
}

func (s *memCapacityStore) ApplySeatChange(ctx context.Context, change ledger.SeatChange) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.failErr
}

type memTokenStore struct {
	mu       sync.Mutex
	balances map[int]int
	saveErr  error
}

func newMemTokenStore() *memTokenStore {
	return &memTokenStore{balances: make(map[int]int)}
}

func (s *memTokenStore) FetchBalance(ctx context.Context, customerID int) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
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

// ---- authorizer ----

// stubAuthorizer 測試用授權：err 為 nil 時放行
type stubAuthorizer struct {
	err   error
	calls []int
}

func (a *stubAuthorizer) Authorize(ctx context.Context, credentials string, customerID int) error {
	a.calls = append(a.calls, customerID)
	if customerID <= 0 {
		return apperrors.ErrInvalidInput
	}
	return a.err
}

// ---- repositories ----

type fakeScheduleRepo struct {
	schedules map[int]*model.Schedule
}

func newFakeScheduleRepo() *fakeScheduleRepo {
	return &fakeScheduleRepo{schedules: make(map[int]*model.Schedule)}
}

func (r *fakeScheduleRepo) add(id, capacity int) *model.Schedule {
	s := &model.Schedule{
		ID:             id,
		FlightName:     "AX-100",
		CompanyName:    "Astra",
		LaunchTime:     "10:30",
		DepartureDate:  time.Now().AddDate(0, 0, 7),
		Capacity:       capacity,
		AvailableSeats: capacity,
	}
	r.schedules[id] = s
	return s
}

func (r *fakeScheduleRepo) FindByID(ctx context.Context, id int) (*model.Schedule, error) {
	s, ok := r.schedules[id]
	if !ok {
		return nil, apperrors.ErrScheduleNotFound
	}
	return s, nil
}

func (r *fakeScheduleRepo) List(ctx context.Context) ([]*model.Schedule, error)    { return nil, nil }
func (r *fakeScheduleRepo) ListAll(ctx context.Context) ([]*model.Schedule, error) { return nil, nil }
func (r *fakeScheduleRepo) ListByDate(ctx context.Context, date time.Time) ([]*model.Schedule, error) {
	return nil, nil
}
func (r *fakeScheduleRepo) ListDatesWithAvailability(ctx context.Context) ([]*model.ScheduleDate, error) {
	return nil, nil
}
func (r *fakeScheduleRepo) ListCompanies(ctx context.Context) ([]*model.Company, error) {
	return nil, nil
}
func (r *fakeScheduleRepo) ListFlights(ctx context.Context) ([]*model.Flight, error) {
	return nil, nil
}

type fakeReservationRepo struct {
	mu         sync.Mutex
	nextID     int
	records    map[int]*model.Reservation
	createErr  error
	updateErr  error
	deleteErr  error
	deletedIDs []int
	// staleRead 模擬併發刪除下的過期讀取：記錄已不在 records，FindByID 仍讀得到
	staleRead *model.Reservation
}

func newFakeReservationRepo() *fakeReservationRepo {
	return &fakeReservationRepo{nextID: 1, records: make(map[int]*model.Reservation)}
}

func (r *fakeReservationRepo) seed(reservation *model.Reservation) *model.Reservation {
	r.mu.Lock()
	defer r.mu.Unlock()
	reservation.ID = r.nextID
	r.nextID++
	r.records[reservation.ID] = reservation
	return reservation
}

func (r *fakeReservationRepo) Create(ctx context.Context, reservation *model.Reservation) (*model.Reservation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.createErr != nil {
		return nil, r.createErr
	}
	reservation.ID = r.nextID
	r.nextID++
	reservation.CreatedAt = time.Now()
	r.records[reservation.ID] = reservation
	return reservation, nil
}

func (r *fakeReservationRepo) FindByID(ctx context.Context, id int) (*model.Reservation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	reservation, ok := r.records[id]
	if !ok {
		if r.staleRead != nil && r.staleRead.ID == id {
			copied := *r.staleRead
			return &copied, nil
		}
		return nil, apperrors.ErrReservationNotFound
	}
	copied := *reservation
	return &copied, nil
}

func (r *fakeReservationRepo) ListByCustomer(ctx context.Context, customerID int) ([]*model.ReservationView, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	views := make([]*model.ReservationView, 0)
	for _, reservation := range r.records {
		if reservation.CustomerID == customerID {
			views = append(views, &model.ReservationView{
				ReservationID: reservation.ID,
				ScheduleID:    reservation.ScheduleID,
				ReservedSeats: reservation.ReservedSeats,
				SeatNumbers:   reservation.SeatNumbers,
			})
		}
	}
	return views, nil
}

func (r *fakeReservationRepo) UpdateSeatCount(ctx context.Context, id int, reservedSeats int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.updateErr != nil {
		return r.updateErr
	}
	reservation, ok := r.records[id]
	if !ok {
		return apperrors.ErrReservationNotFound
	}
	reservation.ReservedSeats = reservedSeats
	return nil
}

func (r *fakeReservationRepo) Delete(ctx context.Context, id int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.deleteErr != nil {
		return r.deleteErr
	}
	if _, ok := r.records[id]; !ok {
		return apperrors.ErrReservationNotFound
	}
	delete(r.records, id)
	r.deletedIDs = append(r.deletedIDs, id)
	return nil
}

func (r *fakeReservationRepo) SeatNumbersByReservation(ctx context.Context, reservationID int) ([]int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	reservation, ok := r.records[reservationID]
	if !ok {
		return nil, apperrors.ErrReservationNotFound
	}
	return reservation.SeatNumbers, nil
}

func (r *fakeReservationRepo) SeatNumbersBySchedule(ctx context.Context, scheduleID int) ([]int, error) {
	return nil, nil
}

func (r *fakeReservationRepo) LoadSeatAssignments(ctx context.Context) (map[int]map[int]int, error) {
	return nil, nil
}

// ---- test environment ----

type reservationTestEnv struct {
	authorizer *stubAuthorizer
	capStore   *memCapacityStore
	tokStore   *memTokenStore
	capacity   ledger.CapacityLedger
	tokens     ledger.TokenLedger
	schedules  *fakeScheduleRepo
	repo       *fakeReservationRepo
	service    ReservationService
}

func newReservationTestEnv() *reservationTestEnv {
	env := &reservationTestEnv{
		authorizer: &stubAuthorizer{},
		capStore:   &memCapacityStore{},
		tokStore:   newMemTokenStore(),
		schedules:  newFakeScheduleRepo(),
		repo:       newFakeReservationRepo(),
	}
	env.capacity = ledger.NewCapacityLedger(env.capStore, nil, time.Second)
	env.tokens = ledger.NewTokenLedger(env.tokStore, time.Second)
	env.service = NewReservationService(env.authorizer, env.capacity, env.tokens, env.repo, env.schedules)
	return env
}
