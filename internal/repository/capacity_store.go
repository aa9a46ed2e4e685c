package repository

import (
	"context"
	"time"

	"go-flight-reservation/internal/ledger"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// CapacityStoreImpl 實作 ledger.CapacityStore：
// 座位列與計數在單一交易內落盤，保證 SeatChange 的原子性。
type CapacityStoreImpl struct {
	pool *pgxpool.Pool
}

func NewCapacityStore(pool *pgxpool.Pool) ledger.CapacityStore {
	return &CapacityStoreImpl{
		pool: pool,
	}
}

func (s *CapacityStoreImpl) ApplySeatChange(ctx context.Context, change ledger.SeatChange) error {
	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if len(change.Release) > 0 {
		query := `
			DELETE FROM seat_assignments
			WHERE schedule_id = $1 AND seat_number = ANY($2)
		`
		if _, err := tx.Exec(ctx, query, change.ScheduleID, change.Release); err != nil {
			return err
		}
	}

	for _, seat := range change.Assign {
		query := `
			INSERT INTO seat_assignments (schedule_id, seat_number, reservation_id)
			VALUES ($1, $2, $3)
		`
		if _, err := tx.Exec(ctx, query, change.ScheduleID, seat, change.ReservationID); err != nil {
			return err
		}
	}

	query := `
		UPDATE schedules
		SET available_seats = $1, updated_at = $2
		WHERE id = $3
	`
	if _, err := tx.Exec(ctx, query, change.Available, time.Now().UTC(), change.ScheduleID); err != nil {
		return err
	}

	return tx.Commit(ctx)
}
