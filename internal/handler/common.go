package handler

import (
	"errors"
	"net/http"

	apperrors "go-flight-reservation/pkg/app_errors"
	"go-flight-reservation/pkg/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func BindJson(c *gin.Context, obj interface{}) error {
	if err := c.ShouldBindJSON(obj); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid request format",
		})
		return err
	}
	return nil
}

func BindQuery(c *gin.Context, obj interface{}) error {
	if err := c.ShouldBindQuery(obj); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid request format",
		})
		return err
	}
	return nil
}

// credentials 取出請求的憑證，授權檢查自己會對格式 fail closed
func credentials(c *gin.Context) string {
	return c.GetHeader("Authorization")
}

// handleError 錯誤分類到 HTTP 狀態碼的唯一對照表
func handleError(c *gin.Context, err error, operation string) {
	log := logger.WithComponent("handler").With(zap.String("operation", operation), zap.Error(err))
	switch {
	case errors.Is(err, apperrors.ErrInvalidInput):
		log.Warn("Invalid input")
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid input",
		})
	case errors.Is(err, apperrors.ErrUnauthorized):
		log.Warn("Unauthorized")
		c.JSON(http.StatusUnauthorized, gin.H{
			"error": "Unauthorized",
		})
	case errors.Is(err, apperrors.ErrScheduleNotFound):
		log.Warn("Schedule not found")
		c.JSON(http.StatusNotFound, gin.H{
			"error": "Schedule not found",
		})
	case errors.Is(err, apperrors.ErrReservationNotFound):
		log.Warn("Reservation not found")
		c.JSON(http.StatusNotFound, gin.H{
			"error": "Reservation not found",
		})
	case errors.Is(err, apperrors.ErrCustomerNotFound):
		log.Warn("Customer not found")
		c.JSON(http.StatusNotFound, gin.H{
			"error": "Customer not found",
		})
	case errors.Is(err, apperrors.ErrSeatConflict):
		log.Warn("Seat conflict")
		payload := gin.H{"error": "Seat already assigned"}
		var conflict *apperrors.SeatConflictError
		if errors.As(err, &conflict) {
			payload["conflicting_seats"] = conflict.Seats
		}
		c.JSON(http.StatusConflict, payload)
	case errors.Is(err, apperrors.ErrCapacityExceeded):
		log.Warn("Capacity exceeded")
		c.JSON(http.StatusConflict, gin.H{
			"error": "Capacity exceeded",
		})
	case errors.Is(err, apperrors.ErrEmailExists):
		log.Warn("Email already exists")
		c.JSON(http.StatusConflict, gin.H{
			"error": "Email already exists",
		})
	case errors.Is(err, apperrors.ErrInsufficientTokens):
		log.Warn("Insufficient token balance")
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Insufficient token balance",
		})
	case errors.Is(err, apperrors.ErrBusy):
		log.Warn("Resource busy")
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"error": "Resource busy, retry later",
		})
	default:
		log.Error("Unexpected error")
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": apperrors.ErrInternalServerError.Error(),
		})
	}
}
