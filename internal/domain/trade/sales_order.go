package trade

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stockflows/backend/internal/domain/shared"
)

// SalesOrderStatus represents the status of a sales order
type SalesOrderStatus string

const (
	SalesOrderStatusPending   SalesOrderStatus = "PENDING"
	SalesOrderStatusShipped   SalesOrderStatus = "SHIPPED"
	SalesOrderStatusCompleted SalesOrderStatus = "COMPLETED"
	SalesOrderStatusCancelled SalesOrderStatus = "CANCELLED"
)

// CanTransitionTo checks if the status can transition to the target status
func (s SalesOrderStatus) CanTransitionTo(target SalesOrderStatus) bool {
	switch s {
	case SalesOrderStatusPending:
		return target == SalesOrderStatusShipped || target == SalesOrderStatusCancelled
	case SalesOrderStatusShipped:
		return target == SalesOrderStatusCompleted
	case SalesOrderStatusCompleted, SalesOrderStatusCancelled:
		return false // terminal
	}
	return false
}

// SalesOrderItem represents a line item in a sales order
type SalesOrderItem struct {
	ID          uuid.UUID       `gorm:"type:uuid;primary_key"`
	OrderID     uuid.UUID       `gorm:"type:uuid;not null;index"`
	ProductID   uuid.UUID       `gorm:"type:uuid;not null"`
	ProductName string          `gorm:"type:varchar(200);not null"`
	ProductSKU  string          `gorm:"type:varchar(50);not null"`
	UnitPrice   decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	Qty         decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	LineTotal   decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	CreatedAt   time.Time       `gorm:"not null"`
	UpdatedAt   time.Time       `gorm:"not null"`
}

// TableName returns the table name for GORM
func (SalesOrderItem) TableName() string {
	return "sales_order_items"
}

// NewSalesOrderItem creates a new sales order line
func NewSalesOrderItem(orderID, productID uuid.UUID, productName, productSKU string, qty, unitPrice decimal.Decimal) (*SalesOrderItem, error) {
	if productID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_PRODUCT", "Product ID cannot be empty")
	}
	if qty.LessThanOrEqual(decimal.Zero) {
		return nil, shared.NewDomainError("INVALID_QUANTITY", "Quantity must be positive")
	}
	if unitPrice.IsNegative() {
		return nil, shared.NewDomainError("INVALID_PRICE", "Unit price cannot be negative")
	}

	now := time.Now()
	return &SalesOrderItem{
		ID:          uuid.New(),
		OrderID:     orderID,
		ProductID:   productID,
		ProductName: productName,
		ProductSKU:  productSKU,
		UnitPrice:   unitPrice,
		Qty:         qty,
		LineTotal:   qty.Mul(unitPrice),
		CreatedAt:   now,
		UpdatedAt:   now,
	}, nil
}

// SalesOrder is the aggregate root for customer orders
type SalesOrder struct {
	shared.OrgAggregateRoot
	OrderNumber    string           `gorm:"type:varchar(50);not null;index:idx_sales_orders_org_number,unique"`
	BranchID       uuid.UUID        `gorm:"type:uuid;not null;index"` // fulfilling branch
	CustomerID     uuid.UUID        `gorm:"type:uuid;not null;index"`
	CustomerName   string           `gorm:"type:varchar(200);not null"`
	Items          []SalesOrderItem `gorm:"foreignKey:OrderID;references:ID"`
	Subtotal       decimal.Decimal  `gorm:"type:decimal(18,4);not null;default:0"`
	DiscountAmount decimal.Decimal  `gorm:"type:decimal(18,4);not null;default:0"`
	GrandTotal     decimal.Decimal  `gorm:"type:decimal(18,4);not null;default:0"`
	Status         SalesOrderStatus `gorm:"type:varchar(20);not null;default:'PENDING'"`
	Carrier        string           `gorm:"type:varchar(100)"`
	TrackingNumber string           `gorm:"type:varchar(100)"`
	Notes          string           `gorm:"type:text"`
	ShippedAt      *time.Time
	CompletedAt    *time.Time
	CancelledAt    *time.Time
	CancelReason   string `gorm:"type:varchar(500)"`
}

// TableName returns the table name for GORM
func (SalesOrder) TableName() string {
	return "sales_orders"
}

// NewSalesOrder creates a new pending sales order
func NewSalesOrder(orgID, branchID uuid.UUID, orderNumber string, customerID uuid.UUID, customerName string) (*SalesOrder, error) {
	if orderNumber == "" || len(orderNumber) > 50 {
		return nil, shared.NewDomainError("INVALID_ORDER_NUMBER", "Order number must be 1-50 characters")
	}
	if branchID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_BRANCH", "Branch ID cannot be empty")
	}
	if customerID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_CUSTOMER", "Customer ID cannot be empty")
	}

	order := &SalesOrder{
		OrgAggregateRoot: shared.NewOrgAggregateRoot(orgID),
		OrderNumber:      orderNumber,
		BranchID:         branchID,
		CustomerID:       customerID,
		CustomerName:     customerName,
		Items:            make([]SalesOrderItem, 0),
		Subtotal:         decimal.Zero,
		DiscountAmount:   decimal.Zero,
		GrandTotal:       decimal.Zero,
		Status:           SalesOrderStatusPending,
	}

	order.AddDomainEvent(NewSalesOrderCreatedEvent(order))
	return order, nil
}

// AddItem adds a line to the order. PENDING only; one line per product.
func (o *SalesOrder) AddItem(productID uuid.UUID, productName, productSKU string, qty, unitPrice decimal.Decimal) (*SalesOrderItem, error) {
	if o.Status != SalesOrderStatusPending {
		return nil, shared.NewDomainError("INVALID_STATE", "Cannot add items to a non-pending order")
	}
	for _, item := range o.Items {
		if item.ProductID == productID {
			return nil, shared.NewDomainError("DUPLICATE_PRODUCT", "Product already exists in order, update quantity instead")
		}
	}

	item, err := NewSalesOrderItem(o.ID, productID, productName, productSKU, qty, unitPrice)
	if err != nil {
		return nil, err
	}

	o.Items = append(o.Items, *item)
	o.recalculateTotals()
	o.UpdatedAt = time.Now()
	o.IncrementVersion()
	return item, nil
}

// SetDiscount applies an order-level discount. PENDING only.
func (o *SalesOrder) SetDiscount(discount decimal.Decimal) error {
	if o.Status != SalesOrderStatusPending {
		return shared.NewDomainError("INVALID_STATE", "Cannot change discount on a non-pending order")
	}
	if discount.IsNegative() {
		return shared.NewDomainError("INVALID_DISCOUNT", "Discount cannot be negative")
	}
	if discount.GreaterThan(o.Subtotal) {
		return shared.NewDomainError("INVALID_DISCOUNT", "Discount cannot exceed subtotal")
	}

	o.DiscountAmount = discount
	o.recalculateTotals()
	o.UpdatedAt = time.Now()
	o.IncrementVersion()
	return nil
}

// Ship marks the order shipped and records carrier and tracking number
func (o *SalesOrder) Ship(carrier, trackingNumber string) error {
	if !o.Status.CanTransitionTo(SalesOrderStatusShipped) {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot ship order in %s status", o.Status))
	}
	if len(o.Items) == 0 {
		return shared.NewDomainError("NO_ITEMS", "Cannot ship order without items")
	}

	now := time.Now()
	o.Status = SalesOrderStatusShipped
	o.Carrier = carrier
	o.TrackingNumber = trackingNumber
	o.ShippedAt = &now
	o.UpdatedAt = now
	o.IncrementVersion()

	o.AddDomainEvent(NewSalesOrderShippedEvent(o))
	return nil
}

// Complete closes a shipped order
func (o *SalesOrder) Complete() error {
	if !o.Status.CanTransitionTo(SalesOrderStatusCompleted) {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot complete order in %s status", o.Status))
	}

	now := time.Now()
	o.Status = SalesOrderStatusCompleted
	o.CompletedAt = &now
	o.UpdatedAt = now
	o.IncrementVersion()
	return nil
}

// Cancel cancels a pending order
func (o *SalesOrder) Cancel(reason string) error {
	if !o.Status.CanTransitionTo(SalesOrderStatusCancelled) {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot cancel order in %s status", o.Status))
	}
	if reason == "" {
		return shared.NewDomainError("INVALID_REASON", "Cancel reason is required")
	}

	now := time.Now()
	o.Status = SalesOrderStatusCancelled
	o.CancelledAt = &now
	o.CancelReason = reason
	o.UpdatedAt = now
	o.IncrementVersion()
	return nil
}

// ItemQty returns the ordered quantity for a product, zero when absent
func (o *SalesOrder) ItemQty(productID uuid.UUID) decimal.Decimal {
	for idx := range o.Items {
		if o.Items[idx].ProductID == productID {
			return o.Items[idx].Qty
		}
	}
	return decimal.Zero
}

func (o *SalesOrder) recalculateTotals() {
	subtotal := decimal.Zero
	for idx := range o.Items {
		subtotal = subtotal.Add(o.Items[idx].LineTotal)
	}
	o.Subtotal = subtotal
	if o.DiscountAmount.GreaterThan(subtotal) {
		o.DiscountAmount = subtotal
	}
	o.GrandTotal = subtotal.Sub(o.DiscountAmount)
}
