package service

import (
	"context"
	"errors"

	"go-flight-reservation/internal/auth"
	"go-flight-reservation/internal/ledger"
	"go-flight-reservation/internal/model"
	"go-flight-reservation/internal/repository"
	apperrors "go-flight-reservation/pkg/app_errors"
	"go-flight-reservation/pkg/logger"

	"go.uber.org/zap"
)

// ReservationService 訂位核心：每個操作都是跨 Capacity Ledger、Token Ledger
// 與訂位記錄的短交易。任一步驟失敗時，已生效的步驟以補償動作反序回滾，
// 呼叫端永遠不會觀察到部分成功。
type ReservationService interface {
	Create(ctx context.Context, req model.CreateReservationRequest, credentials string) (*model.CreateReservationResponse, error)
	Modify(ctx context.Context, reservationID int, req model.ModifyReservationRequest, credentials string) (*model.ModifyReservationResponse, error)
	Cancel(ctx context.Context, reservationID int, customerID int, credentials string) error
	ListByCustomer(ctx context.Context, customerID int, credentials string) ([]*model.ReservationView, error)
}

type ReservationServiceImpl struct {
	authorizer   auth.Authorizer
	capacity     ledger.CapacityLedger
	tokens       ledger.TokenLedger
	reservations repository.ReservationRepository
	schedules    repository.ScheduleRepository
}

func NewReservationService(
	authorizer auth.Authorizer,
	capacity ledger.CapacityLedger,
	tokens ledger.TokenLedger,
	reservations repository.ReservationRepository,
	schedules repository.ScheduleRepository,
) ReservationService {
	return &ReservationServiceImpl{
		authorizer:   authorizer,
		capacity:     capacity,
		tokens:       tokens,
		reservations: reservations,
		schedules:    schedules,
	}
}

// compensation 已生效步驟的逆操作，失敗路徑上反序執行
type compensation struct {
	step string
	fn   func(ctx context.Context) error
}

// rollback 補償使用 context.Background()：用戶斷線也必須完成回滾
func rollback(comps []compensation) {
	ctx := context.Background()
	for i := len(comps) - 1; i >= 0; i-- {
		if err := comps[i].fn(ctx); err != nil {
			// 補償失敗只能記錄，留給對帳修復
			logger.WithComponent("reservation_service").Error("compensation failed",
				zap.String("step", comps[i].step), zap.Error(err))
		}
	}
}

func (s *ReservationServiceImpl) Create(ctx context.Context, req model.CreateReservationRequest, credentials string) (*model.CreateReservationResponse, error) {
	// Validating
	seats, ok := model.NormalizeSeatNumbers(req.SeatNumbers)
	if !ok || req.ReservedSeats != len(seats) {
		return nil, apperrors.ErrInvalidInput
	}

	schedule, err := s.schedules.FindByID(ctx, req.ScheduleID)
	if err != nil {
		return nil, err
	}

	// Authorizing
	if err := s.authorizer.Authorize(ctx, credentials, req.CustomerID); err != nil {
		return nil, err
	}

	// Mutating
	comps := []compensation{}

	reservation, err := s.reservations.Create(ctx, &model.Reservation{
		CustomerID:    req.CustomerID,
		ScheduleID:    schedule.ID,
		ReservedSeats: len(seats),
	})
	if err != nil {
		return nil, err
	}
	comps = append(comps, compensation{
		step: "delete reservation record",
		fn:   func(ctx context.Context) error { return s.reservations.Delete(ctx, reservation.ID) },
	})

	if err := s.capacity.AssignSeats(ctx, schedule.ID, reservation.ID, seats); err != nil {
		rollback(comps)
		return nil, err
	}
	comps = append(comps, compensation{
		step: "release seats",
		fn: func(ctx context.Context) error {
			_, err := s.capacity.ReleaseSeats(ctx, schedule.ID, reservation.ID, seats)
			return err
		},
	})

	if _, err := s.tokens.Credit(ctx, req.CustomerID, len(seats)); err != nil {
		rollback(comps)
		return nil, err
	}

	// Committed
	return &model.CreateReservationResponse{
		ReservationID: reservation.ID,
		BookingRef:    reservation.BookingRef,
		SeatNumbers:   seats,
		TokensEarned:  len(seats),
	}, nil
}

func (s *ReservationServiceImpl) Modify(ctx context.Context, reservationID int, req model.ModifyReservationRequest, credentials string) (*model.ModifyReservationResponse, error) {
	// Validating
	newSeats, ok := model.NormalizeSeatNumbers(req.SeatNumbers)
	if !ok || req.ReservedSeats != len(newSeats) {
		return nil, apperrors.ErrInvalidInput
	}

	reservation, err := s.reservations.FindByID(ctx, reservationID)
	if err != nil {
		return nil, err
	}

	// Authorizing: the caller must be the reservation's owner
	if reservation.CustomerID != req.CustomerID {
		return nil, apperrors.ErrUnauthorized
	}
	if err := s.authorizer.Authorize(ctx, credentials, reservation.CustomerID); err != nil {
		return nil, err
	}

	oldSeats, _ := model.NormalizeSeatNumbers(reservation.SeatNumbers)
	if model.SameSeatSet(oldSeats, newSeats) {
		// 兩邊 Ledger 完全不觸碰
		return &model.ModifyReservationResponse{
			ReservationID: reservation.ID,
			SeatNumbers:   oldSeats,
			NoChange:      true,
		}, nil
	}

	// Mutating
	comps := []compensation{}

	if err := s.capacity.ReassignSeats(ctx, reservation.ScheduleID, reservation.ID, oldSeats, newSeats); err != nil {
		return nil, err
	}
	comps = append(comps, compensation{
		step: "reassign seats back",
		fn: func(ctx context.Context) error {
			return s.capacity.ReassignSeats(ctx, reservation.ScheduleID, reservation.ID, newSeats, oldSeats)
		},
	})

	delta := len(newSeats) - reservation.ReservedSeats
	if delta != 0 {
		if _, err := s.tokens.Adjust(ctx, reservation.CustomerID, delta); err != nil {
			rollback(comps)
			return nil, err
		}
		comps = append(comps, compensation{
			step: "adjust tokens back",
			fn: func(ctx context.Context) error {
				_, err := s.tokens.Adjust(ctx, reservation.CustomerID, -delta)
				return err
			},
		})
	}

	if err := s.reservations.UpdateSeatCount(ctx, reservation.ID, len(newSeats)); err != nil {
		// 記錄被併發的取消刪掉了：座位要釋放而不是指回已刪除的訂位
		if errors.Is(err, apperrors.ErrReservationNotFound) {
			comps[0] = compensation{
				step: "release seats of cancelled reservation",
				fn: func(ctx context.Context) error {
					_, err := s.capacity.ReleaseSeats(ctx, reservation.ScheduleID, reservation.ID, newSeats)
					return err
				},
			}
		}
		rollback(comps)
		return nil, err
	}

	// Committed
	return &model.ModifyReservationResponse{
		ReservationID: reservation.ID,
		SeatNumbers:   newSeats,
		TokenDelta:    delta,
	}, nil
}

func (s *ReservationServiceImpl) Cancel(ctx context.Context, reservationID int, customerID int, credentials string) error {
	reservation, err := s.reservations.FindByID(ctx, reservationID)
	if err != nil {
		return err
	}

	// Authorizing
	if reservation.CustomerID != customerID {
		return apperrors.ErrUnauthorized
	}
	if err := s.authorizer.Authorize(ctx, credentials, reservation.CustomerID); err != nil {
		return err
	}

	// Mutating: 座位全數釋放，點數不扣回 (忠誠方案既定政策)
	comps := []compensation{}

	seats, _ := model.NormalizeSeatNumbers(reservation.SeatNumbers)
	if len(seats) > 0 {
		released, err := s.capacity.ReleaseSeats(ctx, reservation.ScheduleID, reservation.ID, seats)
		if err != nil {
			return err
		}
		// 補償只能指回本次實際釋放的座位：重試的取消裡釋放是 no-op，
		// 把整組座位指回去會掛在已刪除的訂位上
		if len(released) > 0 {
			comps = append(comps, compensation{
				step: "assign seats back",
				fn: func(ctx context.Context) error {
					return s.capacity.AssignSeats(ctx, reservation.ScheduleID, reservation.ID, released)
				},
			})
		}
	}

	if err := s.reservations.Delete(ctx, reservation.ID); err != nil {
		// 併發的取消已經刪了記錄：座位也已釋放，視為成功
		if errors.Is(err, apperrors.ErrReservationNotFound) {
			return nil
		}
		rollback(comps)
		return err
	}

	return nil
}

func (s *ReservationServiceImpl) ListByCustomer(ctx context.Context, customerID int, credentials string) ([]*model.ReservationView, error) {
	if err := s.authorizer.Authorize(ctx, credentials, customerID); err != nil {
		return nil, err
	}

	return s.reservations.ListByCustomer(ctx, customerID)
}
