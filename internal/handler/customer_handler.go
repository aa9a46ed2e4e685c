package handler

import (
	"net/http"
	"strconv"

	"go-flight-reservation/internal/model"
	"go-flight-reservation/internal/service"
	apperrors "go-flight-reservation/pkg/app_errors"

	"github.com/gin-gonic/gin"
)

type CustomerHandler struct {
	service service.CustomerService
}

func NewCustomerHandler(service service.CustomerService) *CustomerHandler {
	return &CustomerHandler{service: service}
}

func (h *CustomerHandler) RegisterRoutes(r *gin.Engine) {
	router := r.Group("/api/v1")
	{
		router.POST("customers", h.Register)
		router.POST("auth/login", h.Login)
		router.GET("customers/:id/tokens", h.GetTokens)
		router.PUT("customers/:id/tokens/redeem", h.RedeemTokens)
	}
}

func (h *CustomerHandler) Register(c *gin.Context) {
	var req model.RegisterCustomerRequest
	if err := BindJson(c, &req); err != nil {
		return
	}

	customer, err := h.service.Register(c, req)
	if err != nil {
		handleError(c, err, "Register")
		return
	}

	c.JSON(http.StatusCreated, customer)
}

func (h *CustomerHandler) Login(c *gin.Context) {
	var req model.LoginRequest
	if err := BindJson(c, &req); err != nil {
		return
	}

	resp, err := h.service.Login(c, req)
	if err != nil {
		handleError(c, err, "Login")
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (h *CustomerHandler) GetTokens(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		handleError(c, apperrors.ErrInvalidInput, "GetTokens")
		return
	}

	balance, err := h.service.GetTokens(c, id, credentials(c))
	if err != nil {
		handleError(c, err, "GetTokens")
		return
	}

	c.JSON(http.StatusOK, model.TokenBalanceResponse{CustomerID: id, Tokens: balance})
}

func (h *CustomerHandler) RedeemTokens(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		handleError(c, apperrors.ErrInvalidInput, "RedeemTokens")
		return
	}

	var req model.RedeemTokensRequest
	if err := BindJson(c, &req); err != nil {
		return
	}

	balance, err := h.service.Redeem(c, id, req.Amount, credentials(c))
	if err != nil {
		handleError(c, err, "RedeemTokens")
		return
	}

	c.JSON(http.StatusOK, model.TokenBalanceResponse{CustomerID: id, Tokens: balance})
}
