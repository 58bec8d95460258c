package trade

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stockflows/backend/internal/domain/shared"
)

// Aggregate type constants
const (
	AggregateTypePurchaseOrder = "PurchaseOrder"
	AggregateTypeSalesOrder    = "SalesOrder"
	AggregateTypeReturnRequest = "ReturnRequest"
)

// Trade domain event types
const (
	EventTypePurchaseOrderCreated   = "PurchaseOrderCreated"
	EventTypePurchaseOrderSubmitted = "PurchaseOrderSubmitted"
	EventTypePurchaseOrderReceived  = "PurchaseOrderReceived"
	EventTypePurchaseOrderCancelled = "PurchaseOrderCancelled"
	EventTypeSalesOrderCreated      = "SalesOrderCreated"
	EventTypeSalesOrderShipped      = "SalesOrderShipped"
	EventTypeReturnRequested        = "ReturnRequested"
	EventTypeReturnApproved         = "ReturnApproved"
	EventTypeReturnCompleted        = "ReturnCompleted"
)

// PurchaseOrderCreatedEvent is published when a purchase order is created
type PurchaseOrderCreatedEvent struct {
	shared.BaseDomainEvent
	OrderNumber string    `json:"order_number"`
	SupplierID  uuid.UUID `json:"supplier_id"`
}

// NewPurchaseOrderCreatedEvent creates a new PurchaseOrderCreatedEvent
func NewPurchaseOrderCreatedEvent(o *PurchaseOrder) *PurchaseOrderCreatedEvent {
	return &PurchaseOrderCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypePurchaseOrderCreated, AggregateTypePurchaseOrder, o.ID, o.OrgID),
		OrderNumber:     o.OrderNumber,
		SupplierID:      o.SupplierID,
	}
}

// PurchaseOrderSubmittedEvent is published when a draft is submitted
type PurchaseOrderSubmittedEvent struct {
	shared.BaseDomainEvent
	OrderNumber string          `json:"order_number"`
	GrandTotal  decimal.Decimal `json:"grand_total"`
}

// NewPurchaseOrderSubmittedEvent creates a new PurchaseOrderSubmittedEvent
func NewPurchaseOrderSubmittedEvent(o *PurchaseOrder) *PurchaseOrderSubmittedEvent {
	return &PurchaseOrderSubmittedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypePurchaseOrderSubmitted, AggregateTypePurchaseOrder, o.ID, o.OrgID),
		OrderNumber:     o.OrderNumber,
		GrandTotal:      o.GrandTotal,
	}
}

// PurchaseOrderReceivedEvent is published after a receiving submission is
// applied. The inventory handler uses it to increase stock.
type PurchaseOrderReceivedEvent struct {
	shared.BaseDomainEvent
	OrderNumber   string              `json:"order_number"`
	BranchID      uuid.UUID           `json:"branch_id"`
	Status        PurchaseOrderStatus `json:"status"`
	ReceivedLines []ReceivedLineInfo  `json:"received_lines"`
}

// NewPurchaseOrderReceivedEvent creates a new PurchaseOrderReceivedEvent
func NewPurchaseOrderReceivedEvent(o *PurchaseOrder, lines []ReceivedLineInfo) *PurchaseOrderReceivedEvent {
	return &PurchaseOrderReceivedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypePurchaseOrderReceived, AggregateTypePurchaseOrder, o.ID, o.OrgID),
		OrderNumber:     o.OrderNumber,
		BranchID:        o.BranchID,
		Status:          o.Status,
		ReceivedLines:   lines,
	}
}

// PurchaseOrderCancelledEvent is published when an order is cancelled
type PurchaseOrderCancelledEvent struct {
	shared.BaseDomainEvent
	OrderNumber string `json:"order_number"`
	Reason      string `json:"reason"`
}

// NewPurchaseOrderCancelledEvent creates a new PurchaseOrderCancelledEvent
func NewPurchaseOrderCancelledEvent(o *PurchaseOrder) *PurchaseOrderCancelledEvent {
	return &PurchaseOrderCancelledEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypePurchaseOrderCancelled, AggregateTypePurchaseOrder, o.ID, o.OrgID),
		OrderNumber:     o.OrderNumber,
		Reason:          o.CancelReason,
	}
}

// SalesOrderCreatedEvent is published when a sales order is created
type SalesOrderCreatedEvent struct {
	shared.BaseDomainEvent
	OrderNumber string    `json:"order_number"`
	CustomerID  uuid.UUID `json:"customer_id"`
}

// NewSalesOrderCreatedEvent creates a new SalesOrderCreatedEvent
func NewSalesOrderCreatedEvent(o *SalesOrder) *SalesOrderCreatedEvent {
	return &SalesOrderCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeSalesOrderCreated, AggregateTypeSalesOrder, o.ID, o.OrgID),
		OrderNumber:     o.OrderNumber,
		CustomerID:      o.CustomerID,
	}
}

// ShippedLineInfo describes a shipped line, for stock decrements
type ShippedLineInfo struct {
	ProductID   uuid.UUID       `json:"product_id"`
	ProductName string          `json:"product_name"`
	ProductSKU  string          `json:"product_sku"`
	Qty         decimal.Decimal `json:"qty"`
}

// SalesOrderShippedEvent is published when an order ships. The inventory
// handler uses it to decrease stock.
type SalesOrderShippedEvent struct {
	shared.BaseDomainEvent
	OrderNumber  string            `json:"order_number"`
	BranchID     uuid.UUID         `json:"branch_id"`
	ShippedLines []ShippedLineInfo `json:"shipped_lines"`
}

// NewSalesOrderShippedEvent creates a new SalesOrderShippedEvent
func NewSalesOrderShippedEvent(o *SalesOrder) *SalesOrderShippedEvent {
	lines := make([]ShippedLineInfo, 0, len(o.Items))
	for _, item := range o.Items {
		lines = append(lines, ShippedLineInfo{
			ProductID:   item.ProductID,
			ProductName: item.ProductName,
			ProductSKU:  item.ProductSKU,
			Qty:         item.Qty,
		})
	}
	return &SalesOrderShippedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeSalesOrderShipped, AggregateTypeSalesOrder, o.ID, o.OrgID),
		OrderNumber:     o.OrderNumber,
		BranchID:        o.BranchID,
		ShippedLines:    lines,
	}
}

// ReturnRequestedEvent is published when a return is filed
type ReturnRequestedEvent struct {
	shared.BaseDomainEvent
	ReturnNumber string     `json:"return_number"`
	ReturnType   ReturnType `json:"return_type"`
	SourceID     uuid.UUID  `json:"source_id"`
}

// NewReturnRequestedEvent creates a new ReturnRequestedEvent
func NewReturnRequestedEvent(r *ReturnRequest) *ReturnRequestedEvent {
	return &ReturnRequestedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeReturnRequested, AggregateTypeReturnRequest, r.ID, r.OrgID),
		ReturnNumber:    r.ReturnNumber,
		ReturnType:      r.Type,
		SourceID:        r.SourceID,
	}
}

// ReturnApprovedEvent is published when a return is approved
type ReturnApprovedEvent struct {
	shared.BaseDomainEvent
	ReturnNumber string `json:"return_number"`
}

// NewReturnApprovedEvent creates a new ReturnApprovedEvent
func NewReturnApprovedEvent(r *ReturnRequest) *ReturnApprovedEvent {
	return &ReturnApprovedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeReturnApproved, AggregateTypeReturnRequest, r.ID, r.OrgID),
		ReturnNumber:    r.ReturnNumber,
	}
}

// RestockLineInfo describes a restockable line of a completed return
type RestockLineInfo struct {
	ProductID   uuid.UUID       `json:"product_id"`
	ProductName string          `json:"product_name"`
	ProductSKU  string          `json:"product_sku"`
	Qty         decimal.Decimal `json:"qty"`
	Condition   ItemCondition   `json:"condition"`
}

// ReturnCompletedEvent is published when a return completes. The inventory
// handler restocks customer returns and deducts supplier returns, restockable
// lines only.
type ReturnCompletedEvent struct {
	shared.BaseDomainEvent
	ReturnNumber string            `json:"return_number"`
	ReturnType   ReturnType        `json:"return_type"`
	BranchID     uuid.UUID         `json:"branch_id"`
	RestockLines []RestockLineInfo `json:"restock_lines"`
}

// NewReturnCompletedEvent creates a new ReturnCompletedEvent
func NewReturnCompletedEvent(r *ReturnRequest) *ReturnCompletedEvent {
	lines := make([]RestockLineInfo, 0)
	for _, item := range r.RestockableItems() {
		lines = append(lines, RestockLineInfo{
			ProductID:   item.ProductID,
			ProductName: item.ProductName,
			ProductSKU:  item.ProductSKU,
			Qty:         item.Qty,
			Condition:   item.Condition,
		})
	}
	return &ReturnCompletedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeReturnCompleted, AggregateTypeReturnRequest, r.ID, r.OrgID),
		ReturnNumber:    r.ReturnNumber,
		ReturnType:      r.Type,
		BranchID:        r.BranchID,
		RestockLines:    lines,
	}
}
