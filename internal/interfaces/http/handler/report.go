package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/stockflows/backend/internal/application/report"
)

// ReportHandler serves the read-only reporting endpoints
type ReportHandler struct {
	BaseHandler
	service *report.ReportService
}

// NewReportHandler creates a new report handler
func NewReportHandler(service *report.ReportService) *ReportHandler {
	return &ReportHandler{service: service}
}

// Sales handles GET /reports/sales
func (h *ReportHandler) Sales(c *gin.Context) {
	rc, ok := h.RequestScope(c)
	if !ok {
		return
	}
	var query report.SalesReportQuery
	if !h.BindQuery(c, &query) {
		return
	}
	if query.BranchID == nil {
		query.BranchID = rc.BranchID
	}

	resp, err := h.service.SalesReport(c.Request.Context(), rc.OrgID, query)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.OK(c, resp)
}

// Inventory handles GET /reports/inventory
func (h *ReportHandler) Inventory(c *gin.Context) {
	rc, ok := h.RequestScope(c)
	if !ok {
		return
	}
	var query report.InventoryReportQuery
	if !h.BindQuery(c, &query) {
		return
	}
	if query.BranchID == nil {
		query.BranchID = rc.BranchID
	}

	resp, err := h.service.InventoryReport(c.Request.Context(), rc.OrgID, query)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.OK(c, resp)
}

// LowStock handles GET /reports/low-stock
func (h *ReportHandler) LowStock(c *gin.Context) {
	rc, ok := h.RequestScope(c)
	if !ok {
		return
	}
	var query report.InventoryReportQuery
	if !h.BindQuery(c, &query) {
		return
	}
	if query.BranchID == nil {
		query.BranchID = rc.BranchID
	}

	lines, err := h.service.LowStockReport(c.Request.Context(), rc.OrgID, query)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.OK(c, lines)
}
