package repository

import (
	"context"
	"time"

	"go-flight-reservation/internal/model"
	apperrors "go-flight-reservation/pkg/app_errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type ReservationRepository interface {
	Create(ctx context.Context, reservation *model.Reservation) (*model.Reservation, error)
	FindByID(ctx context.Context, id int) (*model.Reservation, error)
	ListByCustomer(ctx context.Context, customerID int) ([]*model.ReservationView, error)
	UpdateSeatCount(ctx context.Context, id int, reservedSeats int) error
	Delete(ctx context.Context, id int) error

	SeatNumbersByReservation(ctx context.Context, reservationID int) ([]int, error)
	SeatNumbersBySchedule(ctx context.Context, scheduleID int) ([]int, error)
	// LoadSeatAssignments 啟動預熱用：schedule id -> (seat number -> reservation id)
	LoadSeatAssignments(ctx context.Context) (map[int]map[int]int, error)
}

type ReservationRepositoryImpl struct {
	pool *pgxpool.Pool
}

func NewReservationRepository(pool *pgxpool.Pool) ReservationRepository {
	return &ReservationRepositoryImpl{
		pool: pool,
	}
}

func (r *ReservationRepositoryImpl) Create(ctx context.Context, reservation *model.Reservation) (*model.Reservation, error) {
	if reservation.BookingRef == uuid.Nil {
		reservation.BookingRef = uuid.New()
	}

	query := `
		INSERT INTO reservations (booking_ref, customer_id, schedule_id, reserved_seats)
		VALUES ($1, $2, $3, $4)
		RETURNING id, booking_ref, customer_id, schedule_id, reserved_seats, created_at, updated_at
	`

	err := r.pool.QueryRow(ctx, query,
		reservation.BookingRef, reservation.CustomerID, reservation.ScheduleID, reservation.ReservedSeats,
	).Scan(
		&reservation.ID,
		&reservation.BookingRef,
		&reservation.CustomerID,
		&reservation.ScheduleID,
		&reservation.ReservedSeats,
		&reservation.CreatedAt,
		&reservation.UpdatedAt,
	)

	if err != nil {
		return nil, err
	}

	return reservation, nil
}

func (r *ReservationRepositoryImpl) FindByID(ctx context.Context, id int) (*model.Reservation, error) {
	query := `
		SELECT id, booking_ref, customer_id, schedule_id, reserved_seats, created_at, updated_at
		FROM reservations
		WHERE id = $1
	`

	var reservation model.Reservation
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&reservation.ID,
		&reservation.BookingRef,
		&reservation.CustomerID,
		&reservation.ScheduleID,
		&reservation.ReservedSeats,
		&reservation.CreatedAt,
		&reservation.UpdatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, apperrors.ErrReservationNotFound
		}
		return nil, err
	}

	seats, err := r.SeatNumbersByReservation(ctx, id)
	if err != nil {
		return nil, err
	}
	reservation.SeatNumbers = seats

	return &reservation, nil
}

func (r *ReservationRepositoryImpl) ListByCustomer(ctx context.Context, customerID int) ([]*model.ReservationView, error) {
	query := `
		SELECT r.id, r.booking_ref, r.schedule_id, f.name, c.name,
			s.launch_time, s.departure_date, r.reserved_seats, r.created_at
		FROM reservations r
		JOIN schedules s ON s.id = r.schedule_id
		JOIN flights f ON f.id = s.flight_id
		JOIN companies c ON c.id = s.company_id
		WHERE r.customer_id = $1
		ORDER BY s.departure_date, s.launch_time
	`

	rows, err := r.pool.Query(ctx, query, customerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	views := make([]*model.ReservationView, 0)
	for rows.Next() {
		var v model.ReservationView
		err := rows.Scan(
			&v.ReservationID,
			&v.BookingRef,
			&v.ScheduleID,
			&v.FlightName,
			&v.CompanyName,
			&v.LaunchTime,
			&v.DepartureDate,
			&v.ReservedSeats,
			&v.CreatedAt,
		)
		if err != nil {
			return nil, err
		}
		views = append(views, &v)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	for _, v := range views {
		seats, err := r.SeatNumbersByReservation(ctx, v.ReservationID)
		if err != nil {
			return nil, err
		}
		v.SeatNumbers = seats
	}

	return views, nil
}

func (r *ReservationRepositoryImpl) UpdateSeatCount(ctx context.Context, id int, reservedSeats int) error {
	query := `
		UPDATE reservations
		SET reserved_seats = $1, updated_at = $2
		WHERE id = $3
	`

	result, err := r.pool.Exec(ctx, query, reservedSeats, time.Now().UTC(), id)
	if err != nil {
		return err
	}

	if result.RowsAffected() == 0 {
		return apperrors.ErrReservationNotFound
	}

	return nil
}

func (r *ReservationRepositoryImpl) Delete(ctx context.Context, id int) error {
	query := `
		DELETE FROM reservations
		WHERE id = $1
	`

	result, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		return err
	}

	if result.RowsAffected() == 0 {
		return apperrors.ErrReservationNotFound
	}

	return nil
}

func (r *ReservationRepositoryImpl) SeatNumbersByReservation(ctx context.Context, reservationID int) ([]int, error) {
	query := `
		SELECT seat_number
		FROM seat_assignments
		WHERE reservation_id = $1
		ORDER BY seat_number
	`

	return r.collectSeatNumbers(ctx, query, reservationID)
}

func (r *ReservationRepositoryImpl) SeatNumbersBySchedule(ctx context.Context, scheduleID int) ([]int, error) {
	query := `
		SELECT seat_number
		FROM seat_assignments
		WHERE schedule_id = $1
		ORDER BY seat_number
	`

	return r.collectSeatNumbers(ctx, query, scheduleID)
}

func (r *ReservationRepositoryImpl) collectSeatNumbers(ctx context.Context, query string, arg int) ([]int, error) {
	rows, err := r.pool.Query(ctx, query, arg)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	seats := make([]int, 0)
	for rows.Next() {
		var seat int
		if err := rows.Scan(&seat); err != nil {
			return nil, err
		}
		seats = append(seats, seat)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return seats, nil
}

func (r *ReservationRepositoryImpl) LoadSeatAssignments(ctx context.Context) (map[int]map[int]int, error) {
	query := `
		SELECT schedule_id, seat_number, reservation_id
		FROM seat_assignments
	`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	assignments := make(map[int]map[int]int)
	for rows.Next() {
		var scheduleID, seat, reservationID int
		if err := rows.Scan(&scheduleID, &seat, &reservationID); err != nil {
			return nil, err
		}
		if assignments[scheduleID] == nil {
			assignments[scheduleID] = make(map[int]int)
		}
		assignments[scheduleID][seat] = reservationID
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return assignments, nil
}
