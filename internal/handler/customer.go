package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"retailpos/internal/dto"
	"retailpos/internal/service"
)

type CustomerHandler struct{ svc service.CustomerService }

func NewCustomerHandler(svc service.CustomerService) *CustomerHandler {
	return &CustomerHandler{svc: svc}
}

// FindOrCreate looks a customer up by email, creating on first contact.
func (h *CustomerHandler) FindOrCreate(c *gin.Context) {
	var req dto.FindOrCreateCustomerRequest
	if !bindAndValidate(c, &req) {
		return
	}
	customer, err := h.svc.FindOrCreate(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, customer)
}

func (h *CustomerHandler) Get(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}
	customer, err := h.svc.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, customer)
}

func (h *CustomerHandler) AdjustLoyalty(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}
	var req dto.LoyaltyAdjustRequest
	if !bindAndValidate(c, &req) {
		return
	}
	customer, err := h.svc.AdjustLoyalty(c.Request.Context(), id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, customer)
}
