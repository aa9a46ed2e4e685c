package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"go-flight-reservation/internal/model"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func performRequest(t *testing.T, router *gin.Engine, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequest(method, path, reader)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer test-token")

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

// ---- service mocks ----

type mockReservationService struct {
	mock.Mock
}

func (m *mockReservationService) Create(ctx context.Context, req model.CreateReservationRequest, credentials string) (*model.CreateReservationResponse, error) {
	args := m.Called(ctx, req, credentials)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.CreateReservationResponse), args.Error(1)
}

func (m *mockReservationService) Modify(ctx context.Context, reservationID int, req model.ModifyReservationRequest, credentials string) (*model.ModifyReservationResponse, error) {
	args := m.Called(ctx, reservationID, req, credentials)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.ModifyReservationResponse), args.Error(1)
}

func (m *mockReservationService) Cancel(ctx context.Context, reservationID int, customerID int, credentials string) error {
	args := m.Called(ctx, reservationID, customerID, credentials)
	return args.Error(0)
}

func (m *mockReservationService) ListByCustomer(ctx context.Context, customerID int, credentials string) ([]*model.ReservationView, error) {
	args := m.Called(ctx, customerID, credentials)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.ReservationView), args.Error(1)
}

type mockScheduleService struct {
	mock.Mock
}

func (m *mockScheduleService) List(ctx context.Context) ([]*model.Schedule, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.Schedule), args.Error(1)
}

func (m *mockScheduleService) ListByDate(ctx context.Context, date time.Time) ([]*model.Schedule, error) {
	args := m.Called(ctx, date)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.Schedule), args.Error(1)
}

func (m *mockScheduleService) ListDates(ctx context.Context) ([]*model.ScheduleDate, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.ScheduleDate), args.Error(1)
}

func (m *mockScheduleService) ListCompanies(ctx context.Context) ([]*model.Company, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.Company), args.Error(1)
}

func (m *mockScheduleService) ListFlights(ctx context.Context) ([]*model.Flight, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.Flight), args.Error(1)
}

func (m *mockScheduleService) GetAvailability(ctx context.Context, scheduleID int) (*model.AvailabilityResponse, error) {
	args := m.Called(ctx, scheduleID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.AvailabilityResponse), args.Error(1)
}

func (m *mockScheduleService) SeatNumbersBySchedule(ctx context.Context, scheduleID int) ([]int, error) {
	args := m.Called(ctx, scheduleID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]int), args.Error(1)
}

func (m *mockScheduleService) SeatNumbersByReservation(ctx context.Context, reservationID int) ([]int, error) {
	args := m.Called(ctx, reservationID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]int), args.Error(1)
}

func (m *mockScheduleService) WarmUp(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

type mockCustomerService struct {
	mock.Mock
}

func (m *mockCustomerService) Register(ctx context.Context, req model.RegisterCustomerRequest) (*model.Customer, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Customer), args.Error(1)
}

func (m *mockCustomerService) Login(ctx context.Context, req model.LoginRequest) (*model.LoginResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.LoginResponse), args.Error(1)
}

func (m *mockCustomerService) GetTokens(ctx context.Context, customerID int, credentials string) (int, error) {
	args := m.Called(ctx, customerID, credentials)
	return args.Int(0), args.Error(1)
}

func (m *mockCustomerService) Redeem(ctx context.Context, customerID int, amount int, credentials string) (int, error) {
	args := m.Called(ctx, customerID, amount, credentials)
	return args.Int(0), args.Error(1)
}
