package document

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stockflows/backend/internal/domain/document"
	"github.com/stockflows/backend/internal/domain/shared"
	"github.com/stockflows/backend/internal/domain/trade"
	"go.uber.org/zap"
)

// RenderedDocument is a document blob ready to be served
type RenderedDocument struct {
	Filename    string
	ContentType string
	Content     []byte
	RenderedAt  time.Time
}

// DocumentService renders invoices and receipts from order data. The HTML is
// re-rendered on every request so it always reflects the current order state;
// the stored copy is metadata plus the latest rendering.
type DocumentService struct {
	documentRepo document.DocumentRepository
	soRepo       trade.SalesOrderRepository
	poRepo       trade.PurchaseOrderRepository
	currency     string
	logger       *zap.Logger
}

// NewDocumentService creates a new document service
func NewDocumentService(
	documentRepo document.DocumentRepository,
	soRepo trade.SalesOrderRepository,
	poRepo trade.PurchaseOrderRepository,
	currency string,
	logger *zap.Logger,
) *DocumentService {
	if currency == "" {
		currency = "USD"
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DocumentService{
		documentRepo: documentRepo,
		soRepo:       soRepo,
		poRepo:       poRepo,
		currency:     currency,
		logger:       logger,
	}
}

type invoiceLine struct {
	SKU       string
	Name      string
	Qty       decimal.Decimal
	UnitPrice decimal.Decimal
	LineTotal decimal.Decimal
}

type invoiceData struct {
	OrderNumber    string
	CustomerName   string
	OrderDate      time.Time
	Status         string
	Carrier        string
	TrackingNumber string
	Lines          []invoiceLine
	Subtotal       decimal.Decimal
	DiscountAmount decimal.Decimal
	GrandTotal     decimal.Decimal
	Currency       string
	GeneratedAt    time.Time
}

type receiptLine struct {
	SKU         string
	Name        string
	QtyOrdered  decimal.Decimal
	QtyReceived decimal.Decimal
	UnitCost    decimal.Decimal
	LineTotal   decimal.Decimal
}

type receiptData struct {
	OrderNumber   string
	SupplierName  string
	OrderDate     time.Time
	Status        string
	PaymentStatus string
	Lines         []receiptLine
	Subtotal      decimal.Decimal
	TaxAmount     decimal.Decimal
	ShippingCost  decimal.Decimal
	GrandTotal    decimal.Decimal
	PaidAmount    decimal.Decimal
	Currency      string
	GeneratedAt   time.Time
}

// RenderInvoice renders the invoice for a sales order. Draft-free: any
// existing order can be invoiced except a cancelled one.
func (s *DocumentService) RenderInvoice(ctx context.Context, orgID, orderID uuid.UUID) (*RenderedDocument, error) {
	order, err := s.soRepo.FindByIDForOrg(ctx, orgID, orderID)
	if err != nil {
		return nil, err
	}
	if order.Status == trade.SalesOrderStatusCancelled {
		return nil, shared.NewDomainError("INVALID_STATE", "Cancelled orders cannot be invoiced")
	}

	data := invoiceData{
		OrderNumber:    order.OrderNumber,
		CustomerName:   order.CustomerName,
		OrderDate:      order.CreatedAt,
		Status:         string(order.Status),
		Carrier:        order.Carrier,
		TrackingNumber: order.TrackingNumber,
		Subtotal:       order.Subtotal,
		DiscountAmount: order.DiscountAmount,
		GrandTotal:     order.GrandTotal,
		Currency:       s.currency,
		GeneratedAt:    time.Now(),
	}
	for i := range order.Items {
		item := &order.Items[i]
		data.Lines = append(data.Lines, invoiceLine{
			SKU:       item.ProductSKU,
			Name:      item.ProductName,
			Qty:       item.Qty,
			UnitPrice: item.UnitPrice,
			LineTotal: item.LineTotal,
		})
	}

	var buf bytes.Buffer
	if err := invoiceTmpl.Execute(&buf, data); err != nil {
		s.logger.Error("invoice rendering failed",
			zap.String("order_number", order.OrderNumber), zap.Error(err))
		return nil, shared.NewDomainError("RENDER_FAILED", "Failed to render invoice")
	}

	s.store(ctx, orgID, document.DocumentTypeInvoice, document.SourceTypeSalesOrder,
		order.ID, order.OrderNumber, buf.String())

	return &RenderedDocument{
		Filename:    fmt.Sprintf("invoice-%s.html", order.OrderNumber),
		ContentType: "text/html; charset=utf-8",
		Content:     buf.Bytes(),
		RenderedAt:  data.GeneratedAt,
	}, nil
}

// RenderReceipt renders the goods receipt for a purchase order. Only orders
// with received goods have a receipt.
func (s *DocumentService) RenderReceipt(ctx context.Context, orgID, orderID uuid.UUID) (*RenderedDocument, error) {
	order, err := s.poRepo.FindByIDForOrg(ctx, orgID, orderID)
	if err != nil {
		return nil, err
	}
	if order.Status != trade.PurchaseOrderStatusPartial && order.Status != trade.PurchaseOrderStatusReceived {
		return nil, shared.NewDomainError("INVALID_STATE", "No goods have been received on this order")
	}

	data := receiptData{
		OrderNumber:   order.OrderNumber,
		SupplierName:  order.SupplierName,
		OrderDate:     order.CreatedAt,
		Status:        string(order.Status),
		PaymentStatus: string(order.PaymentStatus),
		Subtotal:      order.Subtotal,
		TaxAmount:     order.TaxAmount,
		ShippingCost:  order.ShippingCost,
		GrandTotal:    order.GrandTotal,
		PaidAmount:    order.PaidAmount,
		Currency:      s.currency,
		GeneratedAt:   time.Now(),
	}
	for i := range order.Items {
		item := &order.Items[i]
		data.Lines = append(data.Lines, receiptLine{
			SKU:         item.ProductSKU,
			Name:        item.ProductName,
			QtyOrdered:  item.QtyOrdered,
			QtyReceived: item.QtyReceived,
			UnitCost:    item.UnitCost,
			LineTotal:   item.LineTotal,
		})
	}

	var buf bytes.Buffer
	if err := receiptTmpl.Execute(&buf, data); err != nil {
		s.logger.Error("receipt rendering failed",
			zap.String("order_number", order.OrderNumber), zap.Error(err))
		return nil, shared.NewDomainError("RENDER_FAILED", "Failed to render receipt")
	}

	s.store(ctx, orgID, document.DocumentTypeReceipt, document.SourceTypePurchaseOrder,
		order.ID, order.OrderNumber, buf.String())

	return &RenderedDocument{
		Filename:    fmt.Sprintf("receipt-%s.html", order.OrderNumber),
		ContentType: "text/html; charset=utf-8",
		Content:     buf.Bytes(),
		RenderedAt:  data.GeneratedAt,
	}, nil
}

// store upserts the rendered copy, best effort. Serving the blob must not
// fail because the metadata write did.
func (s *DocumentService) store(ctx context.Context, orgID uuid.UUID, docType document.DocumentType, sourceType document.SourceType, sourceID uuid.UUID, sourceNumber, content string) {
	if s.documentRepo == nil {
		return
	}

	existing, err := s.documentRepo.FindBySource(ctx, orgID, docType, sourceID)
	switch {
	case err == nil:
		existing.Replace(content)
		err = s.documentRepo.Save(ctx, existing)
	case errors.Is(err, shared.ErrNotFound):
		var doc *document.Document
		doc, err = document.NewDocument(orgID, docType, sourceType, sourceID, sourceNumber, "text/html; charset=utf-8", content)
		if err == nil {
			err = s.documentRepo.Save(ctx, doc)
		}
	}
	if err != nil {
		s.logger.Warn("failed to store rendered document",
			zap.String("source_number", sourceNumber), zap.Error(err))
	}
}
