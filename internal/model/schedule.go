package model

import "time"

// Schedule 航班日期模型：一個可預訂的航班時段。
// AvailableSeats 是導出不變量，只由 Capacity Ledger 變動：
// available_seats == capacity - 已分配座位數
type Schedule struct {
	ID             int       `json:"id" db:"id"`
	FlightID       int       `json:"flight_id" db:"flight_id"`
	CompanyID      int       `json:"company_id" db:"company_id"`
	FlightName     string    `json:"flight_name" db:"flight_name"`
	CompanyName    string    `json:"company_name" db:"company_name"`
	LaunchTime     string    `json:"launch_time" db:"launch_time"`
	DepartureDate  time.Time `json:"departure_date" db:"departure_date"`
	Capacity       int       `json:"capacity" db:"capacity"`
	AvailableSeats int       `json:"available_seats" db:"available_seats"`
	CreatedAt      time.Time `json:"created_at" db:"created_at"`
	UpdatedAt      time.Time `json:"updated_at" db:"updated_at"`
}

// AvailabilityResponse 航班剩餘座位查詢響應
type AvailabilityResponse struct {
	ScheduleID          int   `json:"schedule_id"`
	AvailableSeats      int   `json:"available_seats"`
	AssignedSeatNumbers []int `json:"assigned_seat_numbers"`
}

// ScheduleDate 某日期仍有空位的查詢結果
type ScheduleDate struct {
	Date      time.Time `json:"date"`
	Schedules int       `json:"schedules"`
}

// Company 航空公司參考資料
type Company struct {
	ID   int    `json:"id" db:"id"`
	Name string `json:"name" db:"name"`
}

// Flight 航班參考資料
type Flight struct {
	ID   int    `json:"id" db:"id"`
	Name string `json:"name" db:"name"`
}
