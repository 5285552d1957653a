package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"retailpos/internal/apierror"
	"retailpos/internal/dto"
	"retailpos/internal/service"
)

type AuditHandler struct{ svc service.AuditService }

func NewAuditHandler(svc service.AuditService) *AuditHandler { return &AuditHandler{svc: svc} }

// List returns audit log entries, newest first, with optional filters.
func (h *AuditHandler) List(c *gin.Context) {
	var q dto.AuditListQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("invalid query: "+err.Error()))
		return
	}
	entries, total, err := h.svc.List(c.Request.Context(), q)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"data":       entries,
		"pagination": dto.Pagination{Page: q.Page, PageSize: q.Limit(), Total: total},
	})
}
