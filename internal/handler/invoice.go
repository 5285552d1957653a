package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"retailpos/internal/apierror"
	"retailpos/internal/dto"
	"retailpos/internal/middleware"
	"retailpos/internal/service"
)

type InvoiceHandler struct{ svc service.InvoiceService }

func NewInvoiceHandler(svc service.InvoiceService) *InvoiceHandler {
	return &InvoiceHandler{svc: svc}
}

// GenerateFromOrder godoc
// @Summary Generate (or fetch) the invoice for an order
// @Tags invoices
// @Produce json
// @Security BearerAuth
// @Param orderId path string true "Order ID"
// @Success 201 {object} model.Invoice
// @Failure 404 {object} apierror.APIError
// @Router /v1/invoices/from-order/{orderId} [post]
func (h *InvoiceHandler) GenerateFromOrder(c *gin.Context) {
	orderID, ok := parseUUIDParam(c, "orderId")
	if !ok {
		return
	}
	inv, err := h.svc.GenerateFromOrder(c.Request.Context(), middleware.UserID(c), orderID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, inv)
}

func (h *InvoiceHandler) Get(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}
	inv, err := h.svc.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, inv)
}

func (h *InvoiceHandler) GetByOrder(c *gin.Context) {
	orderID, ok := parseUUIDParam(c, "orderId")
	if !ok {
		return
	}
	inv, err := h.svc.GetByOrder(c.Request.Context(), orderID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, inv)
}

func (h *InvoiceHandler) List(c *gin.Context) {
	var q dto.InvoiceListQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("invalid query: "+err.Error()))
		return
	}
	invoices, total, err := h.svc.List(c.Request.Context(), q)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"data":       invoices,
		"pagination": dto.Pagination{Page: q.Page, PageSize: q.Limit(), Total: total},
	})
}

// UpdateStatus godoc
// @Summary Move an invoice through its status machine
// @Tags invoices
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Invoice ID"
// @Param body body dto.UpdateInvoiceStatusRequest true "Target status"
// @Success 200 {object} model.Invoice
// @Failure 400 {object} apierror.APIError
// @Router /v1/invoices/{id}/status [patch]
func (h *InvoiceHandler) UpdateStatus(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}
	var req dto.UpdateInvoiceStatusRequest
	if !bindAndValidate(c, &req) {
		return
	}
	inv, err := h.svc.UpdateStatus(c.Request.Context(), id, middleware.UserID(c), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, inv)
}

// Send godoc
// @Summary Queue an invoice for email delivery
// @Tags invoices
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Invoice ID"
// @Param body body dto.SendInvoiceRequest false "Recipient override"
// @Success 202 {object} map[string]string
// @Failure 404 {object} apierror.APIError
// @Router /v1/invoices/{id}/send [post]
func (h *InvoiceHandler) Send(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}
	var req dto.SendInvoiceRequest
	if c.Request.ContentLength > 0 && !bindAndValidate(c, &req) {
		return
	}
	if err := h.svc.Send(c.Request.Context(), id, middleware.UserID(c), req); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusAccepted, gin.H{"status": "queued"})
}

// CheckOverdue triggers the overdue sweep manually.
func (h *InvoiceHandler) CheckOverdue(c *gin.Context) {
	moved, err := h.svc.CheckOverdue(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.OverdueSweepResult{MarkedOverdue: moved})
}

func (h *InvoiceHandler) Stats(c *gin.Context) {
	stats, err := h.svc.Stats(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

// DownloadPDF streams the invoice PDF, rendering it on first request.
func (h *InvoiceHandler) DownloadPDF(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}
	path, err := h.svc.PDFPath(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.FileAttachment(path, "invoice.pdf")
}
