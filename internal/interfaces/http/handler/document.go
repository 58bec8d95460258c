package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/stockflows/backend/internal/application/document"
)

// DocumentHandler serves rendered invoices and goods receipts as blobs
type DocumentHandler struct {
	BaseHandler
	service *document.DocumentService
}

// NewDocumentHandler creates a new document handler
func NewDocumentHandler(service *document.DocumentService) *DocumentHandler {
	return &DocumentHandler{service: service}
}

// Invoice handles GET /documents/invoices/:orderID
func (h *DocumentHandler) Invoice(c *gin.Context) {
	rc, ok := h.RequestScope(c)
	if !ok {
		return
	}
	orderID, ok := h.pathUUID(c, "orderID")
	if !ok {
		return
	}

	rendered, err := h.service.RenderInvoice(c.Request.Context(), rc.OrgID, orderID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.serve(c, rendered)
}

// Receipt handles GET /documents/receipts/:orderID
func (h *DocumentHandler) Receipt(c *gin.Context) {
	rc, ok := h.RequestScope(c)
	if !ok {
		return
	}
	orderID, ok := h.pathUUID(c, "orderID")
	if !ok {
		return
	}

	rendered, err := h.service.RenderReceipt(c.Request.Context(), rc.OrgID, orderID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.serve(c, rendered)
}

func (h *DocumentHandler) serve(c *gin.Context, doc *document.RenderedDocument) {
	c.Header("Content-Disposition", `attachment; filename="`+doc.Filename+`"`)
	c.Data(http.StatusOK, doc.ContentType, doc.Content)
}
