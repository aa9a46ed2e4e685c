package service

import (
	"context"
	"errors"
	"time"

	"go-flight-reservation/internal/cache"
	"go-flight-reservation/internal/ledger"
	"go-flight-reservation/internal/model"
	"go-flight-reservation/internal/repository"
	apperrors "go-flight-reservation/pkg/app_errors"
	"go-flight-reservation/pkg/logger"

	"go.uber.org/zap"
)

type ScheduleService interface {
	List(ctx context.Context) ([]*model.Schedule, error)
	ListByDate(ctx context.Context, date time.Time) ([]*model.Schedule, error)
	ListDates(ctx context.Context) ([]*model.ScheduleDate, error)
	ListCompanies(ctx context.Context) ([]*model.Company, error)
	ListFlights(ctx context.Context) ([]*model.Flight, error)
	// GetAvailability 先查 Redis 快取，未命中回退到 Ledger 快照並回填
	GetAvailability(ctx context.Context, scheduleID int) (*model.AvailabilityResponse, error)
	// SeatNumbersBySchedule 某時段所有已分配的座位號
	SeatNumbersBySchedule(ctx context.Context, scheduleID int) ([]int, error)
	SeatNumbersByReservation(ctx context.Context, reservationID int) ([]int, error)
	// WarmUp 啟動預熱：把全部時段的容量與座位分配載入 Ledger 與快取
	WarmUp(ctx context.Context) error
}

type ScheduleServiceImpl struct {
	repo         repository.ScheduleRepository
	reservations repository.ReservationRepository
	capacity     ledger.CapacityLedger
	availability cache.RedisAvailabilityCache
}

func NewScheduleService(
	repo repository.ScheduleRepository,
	reservations repository.ReservationRepository,
	capacity ledger.CapacityLedger,
	availability cache.RedisAvailabilityCache,
) ScheduleService {
	return &ScheduleServiceImpl{
		repo:         repo,
		reservations: reservations,
		capacity:     capacity,
		availability: availability,
	}
}

func (s *ScheduleServiceImpl) List(ctx context.Context) ([]*model.Schedule, error) {
	return s.repo.List(ctx)
}

func (s *ScheduleServiceImpl) ListByDate(ctx context.Context, date time.Time) ([]*model.Schedule, error) {
	return s.repo.ListByDate(ctx, date)
}

func (s *ScheduleServiceImpl) ListDates(ctx context.Context) ([]*model.ScheduleDate, error) {
	return s.repo.ListDatesWithAvailability(ctx)
}

func (s *ScheduleServiceImpl) ListCompanies(ctx context.Context) ([]*model.Company, error) {
	return s.repo.ListCompanies(ctx)
}

func (s *ScheduleServiceImpl) ListFlights(ctx context.Context) ([]*model.Flight, error) {
	return s.repo.ListFlights(ctx)
}

func (s *ScheduleServiceImpl) GetAvailability(ctx context.Context, scheduleID int) (*model.AvailabilityResponse, error) {
	if s.availability != nil {
		view, err := s.availability.Get(ctx, scheduleID)
		if err == nil {
			return &model.AvailabilityResponse{
				ScheduleID:          scheduleID,
				AvailableSeats:      view.Available,
				AssignedSeatNumbers: view.Assigned,
			}, nil
		}
		if !errors.Is(err, apperrors.ErrScheduleNotFound) {
			logger.WithComponent("schedule_service").Warn("availability cache read failed",
				zap.Int("schedule_id", scheduleID), zap.Error(err))
		}
	}

	available, assigned, err := s.capacity.Snapshot(ctx, scheduleID)
	if err != nil {
		return nil, err
	}

	// 回填快取，下次直接命中
	if s.availability != nil {
		s.availability.PublishAvailability(ctx, scheduleID, available, assigned)
	}

	return &model.AvailabilityResponse{
		ScheduleID:          scheduleID,
		AvailableSeats:      available,
		AssignedSeatNumbers: assigned,
	}, nil
}

func (s *ScheduleServiceImpl) SeatNumbersBySchedule(ctx context.Context, scheduleID int) ([]int, error) {
	_, assigned, err := s.capacity.Snapshot(ctx, scheduleID)
	if err != nil {
		return nil, err
	}
	return assigned, nil
}

func (s *ScheduleServiceImpl) SeatNumbersByReservation(ctx context.Context, reservationID int) ([]int, error) {
	// 先確認訂位存在，讓未知 id 得到 NotFound 而不是空清單
	if _, err := s.reservations.FindByID(ctx, reservationID); err != nil {
		return nil, err
	}
	return s.reservations.SeatNumbersByReservation(ctx, reservationID)
}

func (s *ScheduleServiceImpl) WarmUp(ctx context.Context) error {
	schedules, err := s.repo.ListAll(ctx)
	if err != nil {
		return err
	}

	assignments, err := s.reservations.LoadSeatAssignments(ctx)
	if err != nil {
		return err
	}

	log := logger.WithComponent("schedule_service")
	for _, schedule := range schedules {
		assigned := assignments[schedule.ID]
		s.capacity.Register(schedule.ID, schedule.Capacity, assigned)

		if s.availability != nil {
			available := schedule.Capacity - len(assigned)
			seats := make([]int, 0, len(assigned))
			for seat := range assigned {
				seats = append(seats, seat)
			}
			if err := s.availability.WarmUp(ctx, schedule.ID, schedule.Capacity, available, seats); err != nil {
				// 快取預熱失敗不致命，查詢會回退到 Ledger
				log.Warn("availability cache warm-up failed",
					zap.Int("schedule_id", schedule.ID), zap.Error(err))
			}
		}
	}

	log.Info("capacity ledger warmed up", zap.Int("schedules", len(schedules)))
	return nil
}
