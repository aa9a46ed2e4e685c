package handler

import (
	"net/http"
	"strconv"
	"time"

	"go-flight-reservation/internal/service"
	apperrors "go-flight-reservation/pkg/app_errors"

	"github.com/gin-gonic/gin"
)

type ScheduleHandler struct {
	service service.ScheduleService
}

func NewScheduleHandler(service service.ScheduleService) *ScheduleHandler {
	return &ScheduleHandler{service: service}
}

func (h *ScheduleHandler) RegisterRoutes(r *gin.Engine) {
	router := r.Group("/api/v1")
	{
		router.GET("schedules", h.ListSchedules)
		router.GET("schedules/dates", h.ListDates)
		router.GET("schedules/:id/availability", h.GetAvailability)
		router.GET("seats", h.GetSeatNumbers)
		router.GET("companies", h.ListCompanies)
		router.GET("flights", h.ListFlights)
	}
}

func (h *ScheduleHandler) ListSchedules(c *gin.Context) {
	if dateParam := c.Query("date"); dateParam != "" {
		date, err := time.Parse("2006-01-02", dateParam)
		if err != nil {
			handleError(c, apperrors.ErrInvalidInput, "ListSchedules")
			return
		}
		schedules, err := h.service.ListByDate(c, date)
		if err != nil {
			handleError(c, err, "ListSchedules")
			return
		}
		c.JSON(http.StatusOK, schedules)
		return
	}

	schedules, err := h.service.List(c)
	if err != nil {
		handleError(c, err, "ListSchedules")
		return
	}

	c.JSON(http.StatusOK, schedules)
}

func (h *ScheduleHandler) ListDates(c *gin.Context) {
	dates, err := h.service.ListDates(c)
	if err != nil {
		handleError(c, err, "ListDates")
		return
	}

	c.JSON(http.StatusOK, dates)
}

func (h *ScheduleHandler) ListCompanies(c *gin.Context) {
	companies, err := h.service.ListCompanies(c)
	if err != nil {
		handleError(c, err, "ListCompanies")
		return
	}

	c.JSON(http.StatusOK, companies)
}

func (h *ScheduleHandler) ListFlights(c *gin.Context) {
	flights, err := h.service.ListFlights(c)
	if err != nil {
		handleError(c, err, "ListFlights")
		return
	}

	c.JSON(http.StatusOK, flights)
}

func (h *ScheduleHandler) GetAvailability(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		handleError(c, apperrors.ErrInvalidInput, "GetAvailability")
		return
	}

	availability, err := h.service.GetAvailability(c, id)
	if err != nil {
		handleError(c, err, "GetAvailability")
		return
	}

	c.JSON(http.StatusOK, availability)
}

// GetSeatNumbers 查座位表：schedule_id 或 reservation_id 擇一，不可同時給
func (h *ScheduleHandler) GetSeatNumbers(c *gin.Context) {
	scheduleParam := c.Query("schedule_id")
	reservationParam := c.Query("reservation_id")

	if (scheduleParam == "") == (reservationParam == "") {
		handleError(c, apperrors.ErrInvalidInput, "GetSeatNumbers")
		return
	}

	var seats []int
	if scheduleParam != "" {
		id, err := strconv.Atoi(scheduleParam)
		if err != nil {
			handleError(c, apperrors.ErrInvalidInput, "GetSeatNumbers")
			return
		}
		seats, err = h.service.SeatNumbersBySchedule(c, id)
		if err != nil {
			handleError(c, err, "GetSeatNumbers")
			return
		}
	} else {
		id, err := strconv.Atoi(reservationParam)
		if err != nil {
			handleError(c, apperrors.ErrInvalidInput, "GetSeatNumbers")
			return
		}
		seats, err = h.service.SeatNumbersByReservation(c, id)
		if err != nil {
			handleError(c, err, "GetSeatNumbers")
			return
		}
	}

	c.JSON(http.StatusOK, gin.H{"seat_numbers": seats})
}
