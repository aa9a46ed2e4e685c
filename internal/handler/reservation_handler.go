package handler

import (
	"net/http"
	"strconv"

	"go-flight-reservation/internal/model"
	"go-flight-reservation/internal/service"
	apperrors "go-flight-reservation/pkg/app_errors"

	"github.com/gin-gonic/gin"
)

type ReservationHandler struct {
	service service.ReservationService
}

func NewReservationHandler(service service.ReservationService) *ReservationHandler {
	return &ReservationHandler{service: service}
}

func (h *ReservationHandler) RegisterRoutes(r *gin.Engine) {
	router := r.Group("/api/v1")
	{
		router.GET("reservations", h.ListReservations)
		router.POST("reservations", h.CreateReservation)
		router.PUT("reservations/:id", h.ModifyReservation)
		router.DELETE("reservations/:id", h.CancelReservation)
	}
}

func (h *ReservationHandler) CreateReservation(c *gin.Context) {
	var req model.CreateReservationRequest
	if err := BindJson(c, &req); err != nil {
		return
	}

	created, err := h.service.Create(c, req, credentials(c))
	if err != nil {
		handleError(c, err, "CreateReservation")
		return
	}

	c.JSON(http.StatusCreated, created)
}

func (h *ReservationHandler) ModifyReservation(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		handleError(c, apperrors.ErrInvalidInput, "ModifyReservation")
		return
	}

	var req model.ModifyReservationRequest
	if err := BindJson(c, &req); err != nil {
		return
	}

	modified, err := h.service.Modify(c, id, req, credentials(c))
	if err != nil {
		handleError(c, err, "ModifyReservation")
		return
	}

	c.JSON(http.StatusOK, modified)
}

func (h *ReservationHandler) CancelReservation(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		handleError(c, apperrors.ErrInvalidInput, "CancelReservation")
		return
	}

	customerID, err := strconv.Atoi(c.Query("customer_id"))
	if err != nil {
		handleError(c, apperrors.ErrInvalidInput, "CancelReservation")
		return
	}

	if err := h.service.Cancel(c, id, customerID, credentials(c)); err != nil {
		handleError(c, err, "CancelReservation")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Reservation cancelled"})
}

func (h *ReservationHandler) ListReservations(c *gin.Context) {
	customerID, err := strconv.Atoi(c.Query("customer_id"))
	if err != nil {
		handleError(c, apperrors.ErrInvalidInput, "ListReservations")
		return
	}

	views, err := h.service.ListByCustomer(c, customerID, credentials(c))
	if err != nil {
		handleError(c, err, "ListReservations")
		return
	}

	c.JSON(http.StatusOK, views)
}
