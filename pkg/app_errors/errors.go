package apperrors

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var (
	ErrInvalidInput        = errors.New("invalid input")
	ErrScheduleNotFound    = errors.New("schedule not found")
	ErrReservationNotFound = errors.New("reservation not found")
	ErrCustomerNotFound    = errors.New("customer not found")
	ErrUnauthorized        = errors.New("unauthorized")
	ErrSeatConflict        = errors.New("seat already assigned")
	ErrCapacityExceeded    = errors.New("capacity exceeded")
	ErrInsufficientTokens  = errors.New("insufficient token balance")
	ErrBusy                = errors.New("resource busy")
	ErrEmailExists         = errors.New("email already exists")
	ErrInternalServerError = errors.New("internal server error")
)

// SeatConflictError 座位衝突錯誤：帶上衝突的座位號供呼叫端診斷
type SeatConflictError struct {
	ScheduleID int
	Seats      []int
}

func NewSeatConflictError(scheduleID int, seats []int) *SeatConflictError {
	sorted := make([]int, len(seats))
	copy(sorted, seats)
	sort.Ints(sorted)
	return &SeatConflictError{ScheduleID: scheduleID, Seats: sorted}
}

func (e *SeatConflictError) Error() string {
	parts := make([]string, len(e.Seats))
	for i, s := range e.Seats {
		parts[i] = fmt.Sprintf("%d", s)
	}
	return fmt.Sprintf("seat already assigned: schedule %d seats [%s]", e.ScheduleID, strings.Join(parts, ", "))
}

// Is 讓 errors.Is(err, ErrSeatConflict) 成立
func (e *SeatConflictError) Is(target error) bool {
	return target == ErrSeatConflict
}
