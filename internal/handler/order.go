package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"retailpos/internal/apierror"
	"retailpos/internal/dto"
	"retailpos/internal/middleware"
	"retailpos/internal/service"
)

type OrderHandler struct{ svc service.OrderService }

func NewOrderHandler(svc service.OrderService) *OrderHandler { return &OrderHandler{svc: svc} }

// CreatePos godoc
// @Summary Settle a POS sale atomically
// @Tags orders
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body dto.CreatePosOrderRequest true "Sale data"
// @Success 201 {object} dto.Receipt
// @Failure 400 {object} apierror.APIError
// @Failure 422 {object} apierror.APIError
// @Router /v1/orders/pos [post]
func (h *OrderHandler) CreatePos(c *gin.Context) {
	var req dto.CreatePosOrderRequest
	if !bindAndValidate(c, &req) {
		return
	}
	receipt, err := h.svc.CreatePosOrder(c.Request.Context(), middleware.UserID(c), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, receipt)
}

// CreateShop godoc
// @Summary Place an online shop order
// @Tags orders
// @Accept json
// @Produce json
// @Param body body dto.CreateShopOrderRequest true "Checkout data"
// @Success 201 {object} model.Order
// @Failure 400 {object} apierror.APIError
// @Failure 422 {object} apierror.APIError
// @Router /v1/shop/orders [post]
func (h *OrderHandler) CreateShop(c *gin.Context) {
	var req dto.CreateShopOrderRequest
	if !bindAndValidate(c, &req) {
		return
	}
	order, err := h.svc.CreateShopOrder(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, order)
}

func (h *OrderHandler) Get(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}
	order, err := h.svc.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, order)
}

func (h *OrderHandler) List(c *gin.Context) {
	var q dto.OrderListQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("invalid query: "+err.Error()))
		return
	}
	orders, total, err := h.svc.List(c.Request.Context(), q)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"data":       orders,
		"pagination": dto.Pagination{Page: q.Page, PageSize: q.Limit(), Total: total},
	})
}
