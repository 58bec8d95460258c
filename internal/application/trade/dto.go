package trade

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stockflows/backend/internal/domain/trade"
)

// OrderItemRequest is one line of an order create request
type OrderItemRequest struct {
	ProductID uuid.UUID       `json:"product_id" binding:"required"`
	Qty       decimal.Decimal `json:"qty" binding:"required"`
	// UnitCost overrides the product's recorded cost on purchase orders;
	// UnitPrice overrides the selling price on sales orders. Nil uses the
	// catalog value.
	UnitCost  *decimal.Decimal `json:"unit_cost"`
	UnitPrice *decimal.Decimal `json:"unit_price"`
}

// CreatePurchaseOrderRequest represents a request to create a purchase order
type CreatePurchaseOrderRequest struct {
	BranchID   uuid.UUID          `json:"branch_id" binding:"required"`
	SupplierID uuid.UUID          `json:"supplier_id" binding:"required"`
	Items      []OrderItemRequest `json:"items" binding:"required,min=1,dive"`
	Discount   decimal.Decimal    `json:"discount"`
	TaxRate    decimal.Decimal    `json:"tax_rate"`
	Shipping   decimal.Decimal    `json:"shipping"`
	Notes      string             `json:"notes" binding:"omitempty,max=5000"`
}

// UpdatePurchaseOrderRequest replaces the draft's lines and charges
type UpdatePurchaseOrderRequest struct {
	Items    []OrderItemRequest `json:"items" binding:"required,min=1,dive"`
	Discount decimal.Decimal    `json:"discount"`
	TaxRate  decimal.Decimal    `json:"tax_rate"`
	Shipping decimal.Decimal    `json:"shipping"`
	Notes    string             `json:"notes" binding:"omitempty,max=5000"`
}

// ReceiveLineRequest is one entry of a receiving submission
type ReceiveLineRequest struct {
	ItemID uuid.UUID       `json:"item_id" binding:"required"`
	Qty    decimal.Decimal `json:"qty" binding:"required"`
}

// ReceivePurchaseOrderRequest represents a receiving submission
type ReceivePurchaseOrderRequest struct {
	Lines []ReceiveLineRequest `json:"lines" binding:"required,min=1,dive"`
}

// RecordPaymentRequest records a payment against a purchase order
type RecordPaymentRequest struct {
	Amount decimal.Decimal `json:"amount" binding:"required"`
}

// CancelRequest carries the mandatory reason for cancelling a document
type CancelRequest struct {
	Reason string `json:"reason" binding:"required,min=1,max=500"`
}

// CreateSalesOrderRequest represents a request to create a sales order
type CreateSalesOrderRequest struct {
	BranchID   uuid.UUID          `json:"branch_id" binding:"required"`
	CustomerID uuid.UUID          `json:"customer_id" binding:"required"`
	Items      []OrderItemRequest `json:"items" binding:"required,min=1,dive"`
	Discount   decimal.Decimal    `json:"discount"`
	Notes      string             `json:"notes" binding:"omitempty,max=5000"`
}

// ShipSalesOrderRequest records shipment details
type ShipSalesOrderRequest struct {
	Carrier        string `json:"carrier" binding:"omitempty,max=100"`
	TrackingNumber string `json:"tracking_number" binding:"omitempty,max=100"`
}

// ReturnItemRequest is one line of a return creation request
type ReturnItemRequest struct {
	ProductID   uuid.UUID       `json:"product_id" binding:"required"`
	Qty         decimal.Decimal `json:"qty" binding:"required"`
	Reason      string          `json:"reason" binding:"required"`
	Condition   string          `json:"condition" binding:"required"`
	Restockable bool            `json:"restockable"`
	Notes       string          `json:"notes" binding:"omitempty,max=500"`
}

// CreateReturnRequest files a return against a source document. SourceVersion
// is the document version the requester last saw; a mismatch is rejected.
type CreateReturnRequest struct {
	Type          string              `json:"type" binding:"required,oneof=CUSTOMER SUPPLIER"`
	SourceID      uuid.UUID           `json:"source_id" binding:"required"`
	SourceVersion int                 `json:"source_version" binding:"required,min=1"`
	Items         []ReturnItemRequest `json:"items" binding:"required,min=1,dive"`
	Notes         string              `json:"notes" binding:"omitempty,max=5000"`
}

// RejectReturnRequest carries the mandatory reject reason
type RejectReturnRequest struct {
	Reason string `json:"reason" binding:"required,min=1,max=500"`
}

// PurchaseOrderItemResponse represents a purchase order line in API responses
type PurchaseOrderItemResponse struct {
	ID          uuid.UUID       `json:"id"`
	ProductID   uuid.UUID       `json:"product_id"`
	ProductName string          `json:"product_name"`
	ProductSKU  string          `json:"product_sku"`
	UnitCost    decimal.Decimal `json:"unit_cost"`
	QtyOrdered  decimal.Decimal `json:"qty_ordered"`
	QtyReceived decimal.Decimal `json:"qty_received"`
	QtyPending  decimal.Decimal `json:"qty_pending"`
	LineTotal   decimal.Decimal `json:"line_total"`
}

// PurchaseOrderResponse represents a purchase order in API responses
type PurchaseOrderResponse struct {
	ID             uuid.UUID                   `json:"id"`
	OrderNumber    string                      `json:"order_number"`
	BranchID       uuid.UUID                   `json:"branch_id"`
	SupplierID     uuid.UUID                   `json:"supplier_id"`
	SupplierName   string                      `json:"supplier_name"`
	Items          []PurchaseOrderItemResponse `json:"items"`
	Subtotal       decimal.Decimal             `json:"subtotal"`
	DiscountAmount decimal.Decimal             `json:"discount_amount"`
	TaxRate        decimal.Decimal             `json:"tax_rate"`
	TaxAmount      decimal.Decimal             `json:"tax_amount"`
	ShippingCost   decimal.Decimal             `json:"shipping_cost"`
	GrandTotal     decimal.Decimal             `json:"grand_total"`
	PaidAmount     decimal.Decimal             `json:"paid_amount"`
	DueAmount      decimal.Decimal             `json:"due_amount"`
	PaymentStatus  string                      `json:"payment_status"`
	Status         string                      `json:"status"`
	Notes          string                      `json:"notes,omitempty"`
	Version        int                         `json:"version"`
	SubmittedAt    *time.Time                  `json:"submitted_at,omitempty"`
	ReceivedAt     *time.Time                  `json:"received_at,omitempty"`
	CancelledAt    *time.Time                  `json:"cancelled_at,omitempty"`
	CancelReason   string                      `json:"cancel_reason,omitempty"`
	CreatedAt      time.Time                   `json:"created_at"`
	UpdatedAt      time.Time                   `json:"updated_at"`
}

// ToPurchaseOrderResponse converts a domain PurchaseOrder to its API shape
func ToPurchaseOrderResponse(o *trade.PurchaseOrder) PurchaseOrderResponse {
	items := make([]PurchaseOrderItemResponse, len(o.Items))
	for i := range o.Items {
		item := &o.Items[i]
		items[i] = PurchaseOrderItemResponse{
			ID:          item.ID,
			ProductID:   item.ProductID,
			ProductName: item.ProductName,
			ProductSKU:  item.ProductSKU,
			UnitCost:    item.UnitCost,
			QtyOrdered:  item.QtyOrdered,
			QtyReceived: item.QtyReceived,
			QtyPending:  item.QtyPending(),
			LineTotal:   item.LineTotal,
		}
	}
	return PurchaseOrderResponse{
		ID:             o.ID,
		OrderNumber:    o.OrderNumber,
		BranchID:       o.BranchID,
		SupplierID:     o.SupplierID,
		SupplierName:   o.SupplierName,
		Items:          items,
		Subtotal:       o.Subtotal,
		DiscountAmount: o.DiscountAmount,
		TaxRate:        o.TaxRate,
		TaxAmount:      o.TaxAmount,
		ShippingCost:   o.ShippingCost,
		GrandTotal:     o.GrandTotal,
		PaidAmount:     o.PaidAmount,
		DueAmount:      o.DueAmount(),
		PaymentStatus:  string(o.PaymentStatus),
		Status:         string(o.Status),
		Notes:          o.Notes,
		Version:        o.Version,
		SubmittedAt:    o.SubmittedAt,
		ReceivedAt:     o.ReceivedAt,
		CancelledAt:    o.CancelledAt,
		CancelReason:   o.CancelReason,
		CreatedAt:      o.CreatedAt,
		UpdatedAt:      o.UpdatedAt,
	}
}

// ToPurchaseOrderResponses converts a slice of purchase orders
func ToPurchaseOrderResponses(orders []trade.PurchaseOrder) []PurchaseOrderResponse {
	responses := make([]PurchaseOrderResponse, len(orders))
	for i := range orders {
		responses[i] = ToPurchaseOrderResponse(&orders[i])
	}
	return responses
}

// SalesOrderItemResponse represents a sales order line in API responses
type SalesOrderItemResponse struct {
	ID          uuid.UUID       `json:"id"`
	ProductID   uuid.UUID       `json:"product_id"`
	ProductName string          `json:"product_name"`
	ProductSKU  string          `json:"product_sku"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	Qty         decimal.Decimal `json:"qty"`
	LineTotal   decimal.Decimal `json:"line_total"`
}

// SalesOrderResponse represents a sales order in API responses
type SalesOrderResponse struct {
	ID             uuid.UUID                `json:"id"`
	OrderNumber    string                   `json:"order_number"`
	BranchID       uuid.UUID                `json:"branch_id"`
	CustomerID     uuid.UUID                `json:"customer_id"`
	CustomerName   string                   `json:"customer_name"`
	Items          []SalesOrderItemResponse `json:"items"`
	Subtotal       decimal.Decimal          `json:"subtotal"`
	DiscountAmount decimal.Decimal          `json:"discount_amount"`
	GrandTotal     decimal.Decimal          `json:"grand_total"`
	Status         string                   `json:"status"`
	Carrier        string                   `json:"carrier,omitempty"`
	TrackingNumber string                   `json:"tracking_number,omitempty"`
	Notes          string                   `json:"notes,omitempty"`
	Version        int                      `json:"version"`
	ShippedAt      *time.Time               `json:"shipped_at,omitempty"`
	CompletedAt    *time.Time               `json:"completed_at,omitempty"`
	CancelledAt    *time.Time               `json:"cancelled_at,omitempty"`
	CancelReason   string                   `json:"cancel_reason,omitempty"`
	CreatedAt      time.Time                `json:"created_at"`
	UpdatedAt      time.Time                `json:"updated_at"`
}

// ToSalesOrderResponse converts a domain SalesOrder to its API shape
func ToSalesOrderResponse(o *trade.SalesOrder) SalesOrderResponse {
	items := make([]SalesOrderItemResponse, len(o.Items))
	for i := range o.Items {
		item := &o.Items[i]
		items[i] = SalesOrderItemResponse{
			ID:          item.ID,
			ProductID:   item.ProductID,
			ProductName: item.ProductName,
			ProductSKU:  item.ProductSKU,
			UnitPrice:   item.UnitPrice,
			Qty:         item.Qty,
			LineTotal:   item.LineTotal,
		}
	}
	return SalesOrderResponse{
		ID:             o.ID,
		OrderNumber:    o.OrderNumber,
		BranchID:       o.BranchID,
		CustomerID:     o.CustomerID,
		CustomerName:   o.CustomerName,
		Items:          items,
		Subtotal:       o.Subtotal,
		DiscountAmount: o.DiscountAmount,
		GrandTotal:     o.GrandTotal,
		Status:         string(o.Status),
		Carrier:        o.Carrier,
		TrackingNumber: o.TrackingNumber,
		Notes:          o.Notes,
		Version:        o.Version,
		ShippedAt:      o.ShippedAt,
		CompletedAt:    o.CompletedAt,
		CancelledAt:    o.CancelledAt,
		CancelReason:   o.CancelReason,
		CreatedAt:      o.CreatedAt,
		UpdatedAt:      o.UpdatedAt,
	}
}

// ToSalesOrderResponses converts a slice of sales orders
func ToSalesOrderResponses(orders []trade.SalesOrder) []SalesOrderResponse {
	responses := make([]SalesOrderResponse, len(orders))
	for i := range orders {
		responses[i] = ToSalesOrderResponse(&orders[i])
	}
	return responses
}

// ReturnItemResponse represents a return line in API responses
type ReturnItemResponse struct {
	ID          uuid.UUID       `json:"id"`
	ProductID   uuid.UUID       `json:"product_id"`
	ProductName string          `json:"product_name"`
	ProductSKU  string          `json:"product_sku"`
	Qty         decimal.Decimal `json:"qty"`
	Reason      string          `json:"reason"`
	Condition   string          `json:"condition"`
	Restockable bool            `json:"restockable"`
	Notes       string          `json:"notes,omitempty"`
}

// ReturnResponse represents a return request in API responses
type ReturnResponse struct {
	ID           uuid.UUID            `json:"id"`
	ReturnNumber string               `json:"return_number"`
	Type         string               `json:"type"`
	BranchID     uuid.UUID            `json:"branch_id"`
	SourceID     uuid.UUID            `json:"source_id"`
	SourceNumber string               `json:"source_number"`
	Items        []ReturnItemResponse `json:"items"`
	Status       string               `json:"status"`
	RequestedBy  uuid.UUID            `json:"requested_by"`
	Notes        string               `json:"notes,omitempty"`
	Version      int                  `json:"version"`
	ApprovedAt   *time.Time           `json:"approved_at,omitempty"`
	ResolvedAt   *time.Time           `json:"resolved_at,omitempty"`
	CompletedAt  *time.Time           `json:"completed_at,omitempty"`
	RejectedAt   *time.Time           `json:"rejected_at,omitempty"`
	RejectReason string               `json:"reject_reason,omitempty"`
	CancelledAt  *time.Time           `json:"cancelled_at,omitempty"`
	CancelReason string               `json:"cancel_reason,omitempty"`
	CreatedAt    time.Time            `json:"created_at"`
	UpdatedAt    time.Time            `json:"updated_at"`
}

// ToReturnResponse converts a domain ReturnRequest to its API shape
func ToReturnResponse(r *trade.ReturnRequest) ReturnResponse {
	items := make([]ReturnItemResponse, len(r.Items))
	for i := range r.Items {
		item := &r.Items[i]
		items[i] = ReturnItemResponse{
			ID:          item.ID,
			ProductID:   item.ProductID,
			ProductName: item.ProductName,
			ProductSKU:  item.ProductSKU,
			Qty:         item.Qty,
			Reason:      string(item.Reason),
			Condition:   string(item.Condition),
			Restockable: item.Restockable,
			Notes:       item.Notes,
		}
	}
	return ReturnResponse{
		ID:           r.ID,
		ReturnNumber: r.ReturnNumber,
		Type:         string(r.Type),
		BranchID:     r.BranchID,
		SourceID:     r.SourceID,
		SourceNumber: r.SourceNumber,
		Items:        items,
		Status:       string(r.Status),
		RequestedBy:  r.RequestedBy,
		Notes:        r.Notes,
		Version:      r.Version,
		ApprovedAt:   r.ApprovedAt,
		ResolvedAt:   r.ResolvedAt,
		CompletedAt:  r.CompletedAt,
		RejectedAt:   r.RejectedAt,
		RejectReason: r.RejectReason,
		CancelledAt:  r.CancelledAt,
		CancelReason: r.CancelReason,
		CreatedAt:    r.CreatedAt,
		UpdatedAt:    r.UpdatedAt,
	}
}

// ToReturnResponses converts a slice of return requests
func ToReturnResponses(returns []trade.ReturnRequest) []ReturnResponse {
	responses := make([]ReturnResponse, len(returns))
	for i := range returns {
		responses[i] = ToReturnResponse(&returns[i])
	}
	return responses
}
