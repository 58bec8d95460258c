package trade

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stockflows/backend/internal/domain/shared"
)

// PurchaseOrderStatus represents the status of a purchase order
type PurchaseOrderStatus string

const (
	PurchaseOrderStatusDraft     PurchaseOrderStatus = "DRAFT"
	PurchaseOrderStatusPending   PurchaseOrderStatus = "PENDING"
	PurchaseOrderStatusPartial   PurchaseOrderStatus = "PARTIAL"
	PurchaseOrderStatusReceived  PurchaseOrderStatus = "RECEIVED"
	PurchaseOrderStatusCancelled PurchaseOrderStatus = "CANCELLED"
)

// IsValid checks if the status is a known PurchaseOrderStatus
func (s PurchaseOrderStatus) IsValid() bool {
	switch s {
	case PurchaseOrderStatusDraft, PurchaseOrderStatusPending, PurchaseOrderStatusPartial,
		PurchaseOrderStatusReceived, PurchaseOrderStatusCancelled:
		return true
	}
	return false
}

// String returns the string representation of the status
func (s PurchaseOrderStatus) String() string {
	return string(s)
}

// CanTransitionTo checks if the status can transition to the target status
func (s PurchaseOrderStatus) CanTransitionTo(target PurchaseOrderStatus) bool {
	switch s {
	case PurchaseOrderStatusDraft:
		return target == PurchaseOrderStatusPending
	case PurchaseOrderStatusPending:
		return target == PurchaseOrderStatusPartial || target == PurchaseOrderStatusReceived ||
			target == PurchaseOrderStatusCancelled
	case PurchaseOrderStatusPartial:
		return target == PurchaseOrderStatusPartial || target == PurchaseOrderStatusReceived ||
			target == PurchaseOrderStatusCancelled
	case PurchaseOrderStatusReceived, PurchaseOrderStatusCancelled:
		return false // terminal
	}
	return false
}

// CanReceive returns true if receiving goods is allowed in this status
func (s PurchaseOrderStatus) CanReceive() bool {
	return s == PurchaseOrderStatusPending || s == PurchaseOrderStatusPartial
}

// PaymentStatus tracks how much of the payable amount has been settled
type PaymentStatus string

const (
	PaymentStatusUnpaid  PaymentStatus = "UNPAID"
	PaymentStatusPartial PaymentStatus = "PARTIAL"
	PaymentStatusPaid    PaymentStatus = "PAID"
)

// PurchaseOrderItem represents a line item in a purchase order
type PurchaseOrderItem struct {
	ID          uuid.UUID       `gorm:"type:uuid;primary_key"`
	OrderID     uuid.UUID       `gorm:"type:uuid;not null;index"`
	ProductID   uuid.UUID       `gorm:"type:uuid;not null"`
	ProductName string          `gorm:"type:varchar(200);not null"`
	ProductSKU  string          `gorm:"type:varchar(50);not null"`
	UnitCost    decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	QtyOrdered  decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	QtyReceived decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	LineTotal   decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	CreatedAt   time.Time       `gorm:"not null"`
	UpdatedAt   time.Time       `gorm:"not null"`
}

// TableName returns the table name for GORM
func (PurchaseOrderItem) TableName() string {
	return "purchase_order_items"
}

// NewPurchaseOrderItem creates a new purchase order line
func NewPurchaseOrderItem(orderID, productID uuid.UUID, productName, productSKU string, qty, unitCost decimal.Decimal) (*PurchaseOrderItem, error) {
	if productID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_PRODUCT", "Product ID cannot be empty")
	}
	if productName == "" {
		return nil, shared.NewDomainError("INVALID_PRODUCT_NAME", "Product name cannot be empty")
	}
	if qty.LessThanOrEqual(decimal.Zero) {
		return nil, shared.NewDomainError("INVALID_QUANTITY", "Quantity must be positive")
	}
	if unitCost.IsNegative() {
		return nil, shared.NewDomainError("INVALID_COST", "Unit cost cannot be negative")
	}

	now := time.Now()
	return &PurchaseOrderItem{
		ID:          uuid.New(),
		OrderID:     orderID,
		ProductID:   productID,
		ProductName: productName,
		ProductSKU:  productSKU,
		UnitCost:    unitCost,
		QtyOrdered:  qty,
		QtyReceived: decimal.Zero,
		LineTotal:   qty.Mul(unitCost),
		CreatedAt:   now,
		UpdatedAt:   now,
	}, nil
}

// QtyPending returns the quantity still to be received
func (i *PurchaseOrderItem) QtyPending() decimal.Decimal {
	pending := i.QtyOrdered.Sub(i.QtyReceived)
	if pending.IsNegative() {
		return decimal.Zero
	}
	return pending
}

// IsFullyReceived returns true if all ordered quantity has arrived
func (i *PurchaseOrderItem) IsFullyReceived() bool {
	return i.QtyReceived.GreaterThanOrEqual(i.QtyOrdered)
}

// UpdateQuantity updates the ordered quantity and recalculates the line total
func (i *PurchaseOrderItem) UpdateQuantity(qty decimal.Decimal) error {
	if qty.LessThanOrEqual(decimal.Zero) {
		return shared.NewDomainError("INVALID_QUANTITY", "Quantity must be positive")
	}
	if qty.LessThan(i.QtyReceived) {
		return shared.NewDomainError("INVALID_QUANTITY", "Ordered quantity cannot be less than received quantity")
	}

	i.QtyOrdered = qty
	i.LineTotal = qty.Mul(i.UnitCost)
	i.UpdatedAt = time.Now()
	return nil
}

// UpdateUnitCost updates the unit cost and recalculates the line total
func (i *PurchaseOrderItem) UpdateUnitCost(unitCost decimal.Decimal) error {
	if unitCost.IsNegative() {
		return shared.NewDomainError("INVALID_COST", "Unit cost cannot be negative")
	}

	i.UnitCost = unitCost
	i.LineTotal = i.QtyOrdered.Mul(unitCost)
	i.UpdatedAt = time.Now()
	return nil
}

// ReceiveLine is one entry of a receiving submission
type ReceiveLine struct {
	ItemID uuid.UUID       `json:"item_id"`
	Qty    decimal.Decimal `json:"qty"`
}

// ReceivedLineInfo describes a line that was actually received, for stock updates
type ReceivedLineInfo struct {
	ItemID      uuid.UUID       `json:"item_id"`
	ProductID   uuid.UUID       `json:"product_id"`
	ProductName string          `json:"product_name"`
	ProductSKU  string          `json:"product_sku"`
	Qty         decimal.Decimal `json:"qty"`
	UnitCost    decimal.Decimal `json:"unit_cost"`
}

// PurchaseOrder is the aggregate root for supplier orders, from draft through
// receiving to completion
type PurchaseOrder struct {
	shared.OrgAggregateRoot
	OrderNumber    string              `gorm:"type:varchar(50);not null;index:idx_purchase_orders_org_number,unique"`
	BranchID       uuid.UUID           `gorm:"type:uuid;not null;index"` // receiving branch
	SupplierID     uuid.UUID           `gorm:"type:uuid;not null;index"`
	SupplierName   string              `gorm:"type:varchar(200);not null"`
	Items          []PurchaseOrderItem `gorm:"foreignKey:OrderID;references:ID"`
	Subtotal       decimal.Decimal     `gorm:"type:decimal(18,4);not null;default:0"`
	DiscountAmount decimal.Decimal     `gorm:"type:decimal(18,4);not null;default:0"`
	TaxRate        decimal.Decimal     `gorm:"type:decimal(8,6);not null;default:0"` // e.g. 0.07
	TaxAmount      decimal.Decimal     `gorm:"type:decimal(18,4);not null;default:0"`
	ShippingCost   decimal.Decimal     `gorm:"type:decimal(18,4);not null;default:0"`
	GrandTotal     decimal.Decimal     `gorm:"type:decimal(18,4);not null;default:0"`
	PaidAmount     decimal.Decimal     `gorm:"type:decimal(18,4);not null;default:0"`
	PaymentStatus  PaymentStatus       `gorm:"type:varchar(20);not null;default:'UNPAID'"`
	Status         PurchaseOrderStatus `gorm:"type:varchar(20);not null;default:'DRAFT'"`
	Notes          string              `gorm:"type:text"`
	SubmittedAt    *time.Time          `gorm:"index"`
	ReceivedAt     *time.Time
	CancelledAt    *time.Time
	CancelReason   string `gorm:"type:varchar(500)"`
}

// TableName returns the table name for GORM
func (PurchaseOrder) TableName() string {
	return "purchase_orders"
}

// NewPurchaseOrder creates a new draft purchase order
func NewPurchaseOrder(orgID, branchID uuid.UUID, orderNumber string, supplierID uuid.UUID, supplierName string) (*PurchaseOrder, error) {
	if orderNumber == "" || len(orderNumber) > 50 {
		return nil, shared.NewDomainError("INVALID_ORDER_NUMBER", "Order number must be 1-50 characters")
	}
	if branchID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_BRANCH", "Branch ID cannot be empty")
	}
	if supplierID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_SUPPLIER", "Supplier ID cannot be empty")
	}
	if supplierName == "" {
		return nil, shared.NewDomainError("INVALID_SUPPLIER_NAME", "Supplier name cannot be empty")
	}

	order := &PurchaseOrder{
		OrgAggregateRoot: shared.NewOrgAggregateRoot(orgID),
		OrderNumber:      orderNumber,
		BranchID:         branchID,
		SupplierID:       supplierID,
		SupplierName:     supplierName,
		Items:            make([]PurchaseOrderItem, 0),
		Subtotal:         decimal.Zero,
		DiscountAmount:   decimal.Zero,
		TaxRate:          decimal.Zero,
		TaxAmount:        decimal.Zero,
		ShippingCost:     decimal.Zero,
		GrandTotal:       decimal.Zero,
		PaidAmount:       decimal.Zero,
		PaymentStatus:    PaymentStatusUnpaid,
		Status:           PurchaseOrderStatusDraft,
	}

	order.AddDomainEvent(NewPurchaseOrderCreatedEvent(order))
	return order, nil
}

// AddItem adds a new line to the order. Only allowed in DRAFT status; a
// product may appear at most once.
func (o *PurchaseOrder) AddItem(productID uuid.UUID, productName, productSKU string, qty, unitCost decimal.Decimal) (*PurchaseOrderItem, error) {
	if o.Status != PurchaseOrderStatusDraft {
		return nil, shared.NewDomainError("INVALID_STATE", "Cannot add items to a non-draft order")
	}
	for _, item := range o.Items {
		if item.ProductID == productID {
			return nil, shared.NewDomainError("DUPLICATE_PRODUCT", "Product already exists in order, update quantity instead")
		}
	}

	item, err := NewPurchaseOrderItem(o.ID, productID, productName, productSKU, qty, unitCost)
	if err != nil {
		return nil, err
	}

	o.Items = append(o.Items, *item)
	o.recalculateTotals()
	o.UpdatedAt = time.Now()
	o.IncrementVersion()
	return item, nil
}

// UpdateItemQuantity updates the ordered quantity of a line. DRAFT only.
func (o *PurchaseOrder) UpdateItemQuantity(itemID uuid.UUID, qty decimal.Decimal) error {
	if o.Status != PurchaseOrderStatusDraft {
		return shared.NewDomainError("INVALID_STATE", "Cannot update items in a non-draft order")
	}
	for idx := range o.Items {
		if o.Items[idx].ID == itemID {
			if err := o.Items[idx].UpdateQuantity(qty); err != nil {
				return err
			}
			o.recalculateTotals()
			o.UpdatedAt = time.Now()
			o.IncrementVersion()
			return nil
		}
	}
	return shared.NewDomainError("ITEM_NOT_FOUND", "Order item not found")
}

// RemoveItem removes a line from the order. DRAFT only.
func (o *PurchaseOrder) RemoveItem(itemID uuid.UUID) error {
	if o.Status != PurchaseOrderStatusDraft {
		return shared.NewDomainError("INVALID_STATE", "Cannot remove items from a non-draft order")
	}
	for idx, item := range o.Items {
		if item.ID == itemID {
			o.Items = append(o.Items[:idx], o.Items[idx+1:]...)
			o.recalculateTotals()
			o.UpdatedAt = time.Now()
			o.IncrementVersion()
			return nil
		}
	}
	return shared.NewDomainError("ITEM_NOT_FOUND", "Order item not found")
}

// SetCharges sets order-level discount, tax rate and shipping. DRAFT only.
func (o *PurchaseOrder) SetCharges(discount, taxRate, shipping decimal.Decimal) error {
	if o.Status != PurchaseOrderStatusDraft {
		return shared.NewDomainError("INVALID_STATE", "Cannot change charges on a non-draft order")
	}
	if discount.IsNegative() {
		return shared.NewDomainError("INVALID_DISCOUNT", "Discount cannot be negative")
	}
	if discount.GreaterThan(o.Subtotal) {
		return shared.NewDomainError("INVALID_DISCOUNT", "Discount cannot exceed subtotal")
	}
	if taxRate.IsNegative() || taxRate.GreaterThan(decimal.NewFromInt(1)) {
		return shared.NewDomainError("INVALID_TAX_RATE", "Tax rate must be between 0 and 1")
	}
	if shipping.IsNegative() {
		return shared.NewDomainError("INVALID_SHIPPING", "Shipping cost cannot be negative")
	}

	o.DiscountAmount = discount
	o.TaxRate = taxRate
	o.ShippingCost = shipping
	o.recalculateTotals()
	o.UpdatedAt = time.Now()
	o.IncrementVersion()
	return nil
}

// SetNotes sets the free-form notes on the order
func (o *PurchaseOrder) SetNotes(notes string) {
	o.Notes = notes
	o.UpdatedAt = time.Now()
	o.IncrementVersion()
}

// Submit moves the order from DRAFT to PENDING. Requires at least one line.
func (o *PurchaseOrder) Submit() error {
	if !o.Status.CanTransitionTo(PurchaseOrderStatusPending) {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot submit order in %s status", o.Status))
	}
	if len(o.Items) == 0 {
		return shared.NewDomainError("NO_ITEMS", "Cannot submit order without items")
	}

	now := time.Now()
	o.Status = PurchaseOrderStatusPending
	o.SubmittedAt = &now
	o.UpdatedAt = now
	o.IncrementVersion()

	o.AddDomainEvent(NewPurchaseOrderSubmittedEvent(o))
	return nil
}

// Receive applies a receiving submission. Every line is validated before any
// state changes: a quantity outside (0, QtyPending] on any line rejects the
// whole submission. The status becomes RECEIVED when every item is fully
// received, otherwise PARTIAL.
func (o *PurchaseOrder) Receive(lines []ReceiveLine) ([]ReceivedLineInfo, error) {
	if !o.Status.CanReceive() {
		return nil, shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot receive goods for order in %s status", o.Status))
	}
	if len(lines) == 0 {
		return nil, shared.NewDomainError("NO_ITEMS", "Receive submission cannot be empty")
	}

	// Validation pass. Planned quantities accumulate per item so a submission
	// naming the same line twice is checked against the combined total.
	planned := make(map[uuid.UUID]decimal.Decimal, len(lines))
	for _, line := range lines {
		item := o.findItem(line.ItemID)
		if item == nil {
			return nil, shared.NewDomainError("ITEM_NOT_FOUND", fmt.Sprintf("Item %s not found in order", line.ItemID))
		}
		if line.Qty.LessThanOrEqual(decimal.Zero) {
			return nil, shared.NewDomainError("INVALID_QUANTITY", fmt.Sprintf("Receive quantity for item %s must be positive", line.ItemID))
		}
		total := planned[line.ItemID].Add(line.Qty)
		if total.GreaterThan(item.QtyPending()) {
			return nil, shared.NewDomainError("QUANTITY_EXCEEDED",
				fmt.Sprintf("Cannot receive %s for item %s, only %s pending", total.String(), line.ItemID, item.QtyPending().String()))
		}
		planned[line.ItemID] = total
	}

	// Apply pass. Cannot fail after validation.
	now := time.Now()
	received := make([]ReceivedLineInfo, 0, len(planned))
	for idx := range o.Items {
		item := &o.Items[idx]
		qty, ok := planned[item.ID]
		if !ok {
			continue
		}
		item.QtyReceived = item.QtyReceived.Add(qty)
		item.UpdatedAt = now
		received = append(received, ReceivedLineInfo{
			ItemID:      item.ID,
			ProductID:   item.ProductID,
			ProductName: item.ProductName,
			ProductSKU:  item.ProductSKU,
			Qty:         qty,
			UnitCost:    item.UnitCost,
		})
	}

	if o.allItemsReceived() {
		o.Status = PurchaseOrderStatusReceived
		o.ReceivedAt = &now
	} else {
		o.Status = PurchaseOrderStatusPartial
	}

	o.UpdatedAt = now
	o.IncrementVersion()

	o.AddDomainEvent(NewPurchaseOrderReceivedEvent(o, received))
	return received, nil
}

// RecordPayment adds a payment against the order's grand total
func (o *PurchaseOrder) RecordPayment(amount decimal.Decimal) error {
	if o.Status == PurchaseOrderStatusDraft || o.Status == PurchaseOrderStatusCancelled {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot record payment for order in %s status", o.Status))
	}
	if amount.LessThanOrEqual(decimal.Zero) {
		return shared.NewDomainError("INVALID_AMOUNT", "Payment amount must be positive")
	}
	if o.PaidAmount.Add(amount).GreaterThan(o.GrandTotal) {
		return shared.NewDomainError("AMOUNT_EXCEEDED", "Payment would exceed the order total")
	}

	o.PaidAmount = o.PaidAmount.Add(amount)
	switch {
	case o.PaidAmount.GreaterThanOrEqual(o.GrandTotal):
		o.PaymentStatus = PaymentStatusPaid
	case o.PaidAmount.IsPositive():
		o.PaymentStatus = PaymentStatusPartial
	default:
		o.PaymentStatus = PaymentStatusUnpaid
	}

	o.UpdatedAt = time.Now()
	o.IncrementVersion()
	return nil
}

// Cancel cancels the order. Allowed from PENDING or PARTIAL; a draft should
// be deleted instead, and a fully received order is immutable.
func (o *PurchaseOrder) Cancel(reason string) error {
	if !o.Status.CanTransitionTo(PurchaseOrderStatusCancelled) {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot cancel order in %s status", o.Status))
	}
	if reason == "" {
		return shared.NewDomainError("INVALID_REASON", "Cancel reason is required")
	}

	now := time.Now()
	o.Status = PurchaseOrderStatusCancelled
	o.CancelledAt = &now
	o.CancelReason = reason
	o.UpdatedAt = now
	o.IncrementVersion()

	o.AddDomainEvent(NewPurchaseOrderCancelledEvent(o))
	return nil
}

// CanDelete reports whether the order may be deleted. Only drafts can.
func (o *PurchaseOrder) CanDelete() bool {
	return o.Status == PurchaseOrderStatusDraft
}

// DueAmount returns the outstanding payable amount
func (o *PurchaseOrder) DueAmount() decimal.Decimal {
	due := o.GrandTotal.Sub(o.PaidAmount)
	if due.IsNegative() {
		return decimal.Zero
	}
	return due
}

func (o *PurchaseOrder) findItem(itemID uuid.UUID) *PurchaseOrderItem {
	for idx := range o.Items {
		if o.Items[idx].ID == itemID {
			return &o.Items[idx]
		}
	}
	return nil
}

func (o *PurchaseOrder) allItemsReceived() bool {
	for idx := range o.Items {
		if !o.Items[idx].IsFullyReceived() {
			return false
		}
	}
	return len(o.Items) > 0
}

// recalculateTotals recomputes the derived money fields from the lines
func (o *PurchaseOrder) recalculateTotals() {
	subtotal := decimal.Zero
	for idx := range o.Items {
		subtotal = subtotal.Add(o.Items[idx].LineTotal)
	}
	o.Subtotal = subtotal

	if o.DiscountAmount.GreaterThan(subtotal) {
		o.DiscountAmount = subtotal
	}
	taxable := subtotal.Sub(o.DiscountAmount)
	o.TaxAmount = taxable.Mul(o.TaxRate).Round(4)
	o.GrandTotal = taxable.Add(o.TaxAmount).Add(o.ShippingCost)
}
