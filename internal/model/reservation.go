package model

import (
	"sort"
	"time"

	"github.com/google/uuid"
)

// Reservation 訂位模型：顧客在單一航班時段上的座位聲明。
// SeatNumbers 的大小必須等於 ReservedSeats，且同一時段內不得與其他訂位重疊。
type Reservation struct {
	ID            int       `json:"id" db:"id"`
	BookingRef    uuid.UUID `json:"booking_ref" db:"booking_ref"`
	CustomerID    int       `json:"customer_id" db:"customer_id"`
	ScheduleID    int       `json:"schedule_id" db:"schedule_id"`
	ReservedSeats int       `json:"reserved_seats" db:"reserved_seats"`
	SeatNumbers   []int     `json:"seat_numbers" db:"-"`
	CreatedAt     time.Time `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time `json:"updated_at" db:"updated_at"`
}

// CreateReservationRequest 創建訂位請求
type CreateReservationRequest struct {
	CustomerID    int   `json:"customer_id" binding:"required"`
	ScheduleID    int   `json:"schedule_id" binding:"required"`
	ReservedSeats int   `json:"reserved_seats" binding:"required,min=1"`
	SeatNumbers   []int `json:"seat_numbers" binding:"required,min=1"`
}

// ModifyReservationRequest 修改訂位請求
type ModifyReservationRequest struct {
	CustomerID    int   `json:"customer_id" binding:"required"`
	ReservedSeats int   `json:"reserved_seats" binding:"required,min=1"`
	SeatNumbers   []int `json:"seat_numbers" binding:"required,min=1"`
}

// CreateReservationResponse 創建訂位響應
type CreateReservationResponse struct {
	ReservationID int       `json:"reservation_id"`
	BookingRef    uuid.UUID `json:"booking_ref"`
	SeatNumbers   []int     `json:"seat_numbers"`
	TokensEarned  int       `json:"tokens_earned"`
}

// ModifyReservationResponse 修改訂位響應：NoChange 表示座位未變動、兩邊 Ledger 未觸碰
type ModifyReservationResponse struct {
	ReservationID int   `json:"reservation_id"`
	SeatNumbers   []int `json:"seat_numbers"`
	TokenDelta    int   `json:"token_delta"`
	NoChange      bool  `json:"no_change"`
}

// ReservationView 顧客訂位清單的顯示用視圖，展示欄位由 Schedule 解析而來
type ReservationView struct {
	ReservationID int       `json:"reservation_id"`
	BookingRef    uuid.UUID `json:"booking_ref"`
	ScheduleID    int       `json:"schedule_id"`
	FlightName    string    `json:"flight_name"`
	CompanyName   string    `json:"company_name"`
	LaunchTime    string    `json:"launch_time"`
	DepartureDate time.Time `json:"departure_date"`
	ReservedSeats int       `json:"reserved_seats"`
	SeatNumbers   []int     `json:"seat_numbers"`
	CreatedAt     time.Time `json:"created_at"`
}

// NormalizeSeatNumbers sorts a copy of the seat list and reports whether it is
// well formed: non-empty, all positive, no duplicates.
func NormalizeSeatNumbers(seats []int) ([]int, bool) {
	if len(seats) == 0 {
		return nil, false
	}
	sorted := make([]int, len(seats))
	copy(sorted, seats)
	sort.Ints(sorted)
	for i, s := range sorted {
		if s <= 0 {
			return nil, false
		}
		if i > 0 && sorted[i-1] == s {
			return nil, false
		}
	}
	return sorted, true
}

// SameSeatSet reports whether two normalized seat lists are identical.
func SameSeatSet(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
