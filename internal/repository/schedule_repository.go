package repository

import (
	"context"
	"time"

	"go-flight-reservation/internal/model"
	apperrors "go-flight-reservation/pkg/app_errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const scheduleColumns = `
	s.id, s.flight_id, s.company_id, f.name, c.name,
	s.launch_time, s.departure_date, s.capacity, s.available_seats,
	s.created_at, s.updated_at
`

type ScheduleRepository interface {
	FindByID(ctx context.Context, id int) (*model.Schedule, error)
	// List 只回傳尚未起飛的時段
	List(ctx context.Context) ([]*model.Schedule, error)
	// ListAll 含已起飛時段，供啟動預熱使用
	ListAll(ctx context.Context) ([]*model.Schedule, error)
	ListByDate(ctx context.Context, date time.Time) ([]*model.Schedule, error)
	// ListDatesWithAvailability 仍有空位的未來日期
	ListDatesWithAvailability(ctx context.Context) ([]*model.ScheduleDate, error)
	// 參考資料列表
	ListCompanies(ctx context.Context) ([]*model.Company, error)
	ListFlights(ctx context.Context) ([]*model.Flight, error)
}

type ScheduleRepositoryImpl struct {
	pool *pgxpool.Pool
}

func NewScheduleRepository(pool *pgxpool.Pool) ScheduleRepository {
	return &ScheduleRepositoryImpl{
		pool: pool,
	}
}

func scanSchedule(row pgx.Row) (*model.Schedule, error) {
	var s model.Schedule
	err := row.Scan(
		&s.ID,
		&s.FlightID,
		&s.CompanyID,
		&s.FlightName,
		&s.CompanyName,
		&s.LaunchTime,
		&s.DepartureDate,
		&s.Capacity,
		&s.AvailableSeats,
		&s.CreatedAt,
		&s.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *ScheduleRepositoryImpl) FindByID(ctx context.Context, id int) (*model.Schedule, error) {
	query := `
		SELECT ` + scheduleColumns + `
		FROM schedules s
		JOIN flights f ON f.id = s.flight_id
		JOIN companies c ON c.id = s.company_id
		WHERE s.id = $1
	`

	schedule, err := scanSchedule(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, apperrors.ErrScheduleNotFound
		}
		return nil, err
	}
	return schedule, nil
}

func (r *ScheduleRepositoryImpl) List(ctx context.Context) ([]*model.Schedule, error) {
	query := `
		SELECT ` + scheduleColumns + `
		FROM schedules s
		JOIN flights f ON f.id = s.flight_id
		JOIN companies c ON c.id = s.company_id
		WHERE s.departure_date > CURRENT_DATE
			OR (s.departure_date = CURRENT_DATE AND s.launch_time > CURRENT_TIME)
		ORDER BY s.departure_date, s.launch_time
	`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectSchedules(rows)
}

func (r *ScheduleRepositoryImpl) ListAll(ctx context.Context) ([]*model.Schedule, error) {
	query := `
		SELECT ` + scheduleColumns + `
		FROM schedules s
		JOIN flights f ON f.id = s.flight_id
		JOIN companies c ON c.id = s.company_id
		ORDER BY s.id
	`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectSchedules(rows)
}

func (r *ScheduleRepositoryImpl) ListByDate(ctx context.Context, date time.Time) ([]*model.Schedule, error) {
	query := `
		SELECT ` + scheduleColumns + `
		FROM schedules s
		JOIN flights f ON f.id = s.flight_id
		JOIN companies c ON c.id = s.company_id
		WHERE s.departure_date = $1
			AND s.available_seats > 0
			AND (s.departure_date > CURRENT_DATE
				OR (s.departure_date = CURRENT_DATE AND s.launch_time > CURRENT_TIME))
		ORDER BY s.launch_time
	`

	rows, err := r.pool.Query(ctx, query, date)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectSchedules(rows)
}

func (r *ScheduleRepositoryImpl) ListDatesWithAvailability(ctx context.Context) ([]*model.ScheduleDate, error) {
	query := `
		SELECT s.departure_date, COUNT(*)
		FROM schedules s
		WHERE s.available_seats > 0
			AND (s.departure_date > CURRENT_DATE
				OR (s.departure_date = CURRENT_DATE AND s.launch_time > CURRENT_TIME))
		GROUP BY s.departure_date
		ORDER BY s.departure_date
	`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	dates := make([]*model.ScheduleDate, 0)
	for rows.Next() {
		var d model.ScheduleDate
		if err := rows.Scan(&d.Date, &d.Schedules); err != nil {
			return nil, err
		}
		dates = append(dates, &d)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return dates, nil
}

func (r *ScheduleRepositoryImpl) ListCompanies(ctx context.Context) ([]*model.Company, error) {
	query := `
		SELECT id, name
		FROM companies
		ORDER BY name
	`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	companies := make([]*model.Company, 0)
	for rows.Next() {
		var c model.Company
		if err := rows.Scan(&c.ID, &c.Name); err != nil {
			return nil, err
		}
		companies = append(companies, &c)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return companies, nil
}

func (r *ScheduleRepositoryImpl) ListFlights(ctx context.Context) ([]*model.Flight, error) {
	query := `
		SELECT id, name
		FROM flights
		ORDER BY name
	`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	flights := make([]*model.Flight, 0)
	for rows.Next() {
		var f model.Flight
		if err := rows.Scan(&f.ID, &f.Name); err != nil {
			return nil, err
		}
		flights = append(flights, &f)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return flights, nil
}

func collectSchedules(rows pgx.Rows) ([]*model.Schedule, error) {
	schedules := make([]*model.Schedule, 0)
	for rows.Next() {
		schedule, err := scanSchedule(rows)
		if err != nil {
			return nil, err
		}
		schedules = append(schedules, schedule)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return schedules, nil
}
