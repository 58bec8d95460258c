package trade

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stockflows/backend/internal/domain/shared"
)

// ReturnType distinguishes goods coming back from a customer from goods
// going back to a supplier
type ReturnType string

const (
	ReturnTypeCustomer ReturnType = "CUSTOMER"
	ReturnTypeSupplier ReturnType = "SUPPLIER"
)

// IsValid checks if the return type is known
func (t ReturnType) IsValid() bool {
	return t == ReturnTypeCustomer || t == ReturnTypeSupplier
}

// ReturnReason is the closed set of reasons a return can be filed for
type ReturnReason string

const (
	ReturnReasonDefective ReturnReason = "DEFECTIVE"
	ReturnReasonWrongItem ReturnReason = "WRONG_ITEM"
	ReturnReasonDamaged   ReturnReason = "DAMAGED"
	ReturnReasonQuality   ReturnReason = "QUALITY"
	ReturnReasonOther     ReturnReason = "OTHER"
)

// IsValid checks if the reason is known
func (r ReturnReason) IsValid() bool {
	switch r {
	case ReturnReasonDefective, ReturnReasonWrongItem, ReturnReasonDamaged,
		ReturnReasonQuality, ReturnReasonOther:
		return true
	}
	return false
}

// ItemCondition is the closed set of received-item conditions
type ItemCondition string

const (
	ItemConditionNew        ItemCondition = "NEW"
	ItemConditionLikeNew    ItemCondition = "LIKE_NEW"
	ItemConditionUsed       ItemCondition = "USED"
	ItemConditionDamaged    ItemCondition = "DAMAGED"
	ItemConditionUnsellable ItemCondition = "UNSELLABLE"
)

// IsValid checks if the condition is known
func (c ItemCondition) IsValid() bool {
	switch c {
	case ItemConditionNew, ItemConditionLikeNew, ItemConditionUsed,
		ItemConditionDamaged, ItemConditionUnsellable:
		return true
	}
	return false
}

// ReturnStatus represents the status of a return request
type ReturnStatus string

const (
	ReturnStatusRequested ReturnStatus = "REQUESTED"
	ReturnStatusApproved  ReturnStatus = "APPROVED"
	ReturnStatusReceived  ReturnStatus = "RECEIVED" // customer goods arrived back
	ReturnStatusShipped   ReturnStatus = "SHIPPED"  // supplier goods sent out
	ReturnStatusCompleted ReturnStatus = "COMPLETED"
	ReturnStatusRejected  ReturnStatus = "REJECTED"
	ReturnStatusCancelled ReturnStatus = "CANCELLED"
)

// CanTransitionTo checks if the status can transition to the target status
func (s ReturnStatus) CanTransitionTo(target ReturnStatus) bool {
	switch s {
	case ReturnStatusRequested:
		return target == ReturnStatusApproved || target == ReturnStatusRejected ||
			target == ReturnStatusCancelled
	case ReturnStatusApproved:
		return target == ReturnStatusReceived || target == ReturnStatusShipped ||
			target == ReturnStatusCancelled
	case ReturnStatusReceived, ReturnStatusShipped:
		return target == ReturnStatusCompleted
	case ReturnStatusCompleted, ReturnStatusRejected, ReturnStatusCancelled:
		return false // terminal
	}
	return false
}

// IsOpen reports whether the return still counts against the source's
// returnable quantities
func (s ReturnStatus) IsOpen() bool {
	return s != ReturnStatusCancelled && s != ReturnStatusRejected
}

// ReturnItem is one product line of a return request
type ReturnItem struct {
	ID          uuid.UUID       `gorm:"type:uuid;primary_key"`
	ReturnID    uuid.UUID       `gorm:"type:uuid;not null;index"`
	ProductID   uuid.UUID       `gorm:"type:uuid;not null"`
	ProductName string          `gorm:"type:varchar(200);not null"`
	ProductSKU  string          `gorm:"type:varchar(50);not null"`
	Qty         decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	Reason      ReturnReason    `gorm:"type:varchar(20);not null"`
	Condition   ItemCondition   `gorm:"type:varchar(20);not null"`
	Restockable bool            `gorm:"not null;default:false"` // advisory, set by the requester
	Notes       string          `gorm:"type:varchar(500)"`
	CreatedAt   time.Time       `gorm:"not null"`
	UpdatedAt   time.Time       `gorm:"not null"`
}

// TableName returns the table name for GORM
func (ReturnItem) TableName() string {
	return "return_items"
}

// ReturnRequest is the aggregate root for the return approval workflow.
// It references either a sales order (customer return) or a purchase order
// (supplier return) as its source document.
type ReturnRequest struct {
	shared.OrgAggregateRoot
	ReturnNumber string       `gorm:"type:varchar(50);not null;index:idx_returns_org_number,unique"`
	Type         ReturnType   `gorm:"type:varchar(20);not null"`
	BranchID     uuid.UUID    `gorm:"type:uuid;not null;index"`
	SourceID     uuid.UUID    `gorm:"type:uuid;not null;index"`
	SourceNumber string       `gorm:"type:varchar(50);not null"`
	// SourceVersion is the source document version the requester saw when
	// filing the return. A mismatch at creation time means the source changed
	// underneath them and the request is rejected as a conflict.
	SourceVersion int          `gorm:"not null"`
	Items         []ReturnItem `gorm:"foreignKey:ReturnID;references:ID"`
	Status        ReturnStatus `gorm:"type:varchar(20);not null;default:'REQUESTED'"`
	RequestedBy   uuid.UUID    `gorm:"type:uuid;not null"`
	Notes         string       `gorm:"type:text"`
	ApprovedAt    *time.Time
	ResolvedAt    *time.Time // received or shipped
	CompletedAt   *time.Time
	RejectedAt    *time.Time
	RejectReason  string `gorm:"type:varchar(500)"`
	CancelledAt   *time.Time
	CancelReason  string `gorm:"type:varchar(500)"`
}

// TableName returns the table name for GORM
func (ReturnRequest) TableName() string {
	return "return_requests"
}

// NewReturnRequest creates a new return request against a source document
func NewReturnRequest(orgID, branchID uuid.UUID, returnNumber string, typ ReturnType, sourceID uuid.UUID, sourceNumber string, sourceVersion int, requestedBy uuid.UUID) (*ReturnRequest, error) {
	if returnNumber == "" || len(returnNumber) > 50 {
		return nil, shared.NewDomainError("INVALID_RETURN_NUMBER", "Return number must be 1-50 characters")
	}
	if !typ.IsValid() {
		return nil, shared.NewDomainError("INVALID_RETURN_TYPE", "Return type must be CUSTOMER or SUPPLIER")
	}
	if branchID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_BRANCH", "Branch ID cannot be empty")
	}
	if sourceID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_SOURCE", "Source document ID cannot be empty")
	}
	if requestedBy == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_USER", "Requesting user cannot be empty")
	}

	ret := &ReturnRequest{
		OrgAggregateRoot: shared.NewOrgAggregateRoot(orgID),
		ReturnNumber:     returnNumber,
		Type:             typ,
		BranchID:         branchID,
		SourceID:         sourceID,
		SourceNumber:     sourceNumber,
		SourceVersion:    sourceVersion,
		Items:            make([]ReturnItem, 0),
		Status:           ReturnStatusRequested,
		RequestedBy:      requestedBy,
	}

	ret.AddDomainEvent(NewReturnRequestedEvent(ret))
	return ret, nil
}

// AddItem adds a product line. REQUESTED only; a product may appear at most
// once per request.
func (r *ReturnRequest) AddItem(productID uuid.UUID, productName, productSKU string, qty decimal.Decimal, reason ReturnReason, condition ItemCondition, restockable bool, notes string) (*ReturnItem, error) {
	if r.Status != ReturnStatusRequested {
		return nil, shared.NewDomainError("INVALID_STATE", "Items can only be added to a requested return")
	}
	if productID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_PRODUCT", "Product ID cannot be empty")
	}
	if qty.LessThanOrEqual(decimal.Zero) {
		return nil, shared.NewDomainError("INVALID_QUANTITY", "Return quantity must be positive")
	}
	if !reason.IsValid() {
		return nil, shared.NewDomainError("INVALID_REASON", "Unknown return reason")
	}
	if !condition.IsValid() {
		return nil, shared.NewDomainError("INVALID_CONDITION", "Unknown item condition")
	}
	if len(notes) > 500 {
		return nil, shared.NewDomainError("INVALID_NOTES", "Notes cannot exceed 500 characters")
	}
	for _, item := range r.Items {
		if item.ProductID == productID {
			return nil, shared.NewDomainError("DUPLICATE_PRODUCT", "Product already appears in this return")
		}
	}

	now := time.Now()
	item := ReturnItem{
		ID:          uuid.New(),
		ReturnID:    r.ID,
		ProductID:   productID,
		ProductName: productName,
		ProductSKU:  productSKU,
		Qty:         qty,
		Reason:      reason,
		Condition:   condition,
		Restockable: restockable,
		Notes:       notes,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	r.Items = append(r.Items, item)
	r.UpdatedAt = now
	r.IncrementVersion()
	return &r.Items[len(r.Items)-1], nil
}

// Approve moves the return from REQUESTED to APPROVED. Requires items.
func (r *ReturnRequest) Approve() error {
	if !r.Status.CanTransitionTo(ReturnStatusApproved) {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot approve return in %s status", r.Status))
	}
	if len(r.Items) == 0 {
		return shared.NewDomainError("NO_ITEMS", "Cannot approve return without items")
	}

	now := time.Now()
	r.Status = ReturnStatusApproved
	r.ApprovedAt = &now
	r.UpdatedAt = now
	r.IncrementVersion()

	r.AddDomainEvent(NewReturnApprovedEvent(r))
	return nil
}

// Reject declines a requested return
func (r *ReturnRequest) Reject(reason string) error {
	if !r.Status.CanTransitionTo(ReturnStatusRejected) {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot reject return in %s status", r.Status))
	}
	if reason == "" {
		return shared.NewDomainError("INVALID_REASON", "Reject reason is required")
	}

	now := time.Now()
	r.Status = ReturnStatusRejected
	r.RejectedAt = &now
	r.RejectReason = reason
	r.UpdatedAt = now
	r.IncrementVersion()
	return nil
}

// MarkReceived records that customer goods arrived back. Customer returns only.
func (r *ReturnRequest) MarkReceived() error {
	if r.Type != ReturnTypeCustomer {
		return shared.NewDomainError("INVALID_STATE", "Only customer returns can be received")
	}
	if !r.Status.CanTransitionTo(ReturnStatusReceived) {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot receive return in %s status", r.Status))
	}

	now := time.Now()
	r.Status = ReturnStatusReceived
	r.ResolvedAt = &now
	r.UpdatedAt = now
	r.IncrementVersion()
	return nil
}

// MarkShipped records that supplier goods were sent out. Supplier returns only.
func (r *ReturnRequest) MarkShipped() error {
	if r.Type != ReturnTypeSupplier {
		return shared.NewDomainError("INVALID_STATE", "Only supplier returns can be shipped")
	}
	if !r.Status.CanTransitionTo(ReturnStatusShipped) {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot ship return in %s status", r.Status))
	}

	now := time.Now()
	r.Status = ReturnStatusShipped
	r.ResolvedAt = &now
	r.UpdatedAt = now
	r.IncrementVersion()
	return nil
}

// Complete closes the return. Restockable lines are announced for stock
// restoration via the completion event.
func (r *ReturnRequest) Complete() error {
	if !r.Status.CanTransitionTo(ReturnStatusCompleted) {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot complete return in %s status", r.Status))
	}

	now := time.Now()
	r.Status = ReturnStatusCompleted
	r.CompletedAt = &now
	r.UpdatedAt = now
	r.IncrementVersion()

	r.AddDomainEvent(NewReturnCompletedEvent(r))
	return nil
}

// Cancel withdraws the return. Allowed while REQUESTED or APPROVED.
func (r *ReturnRequest) Cancel(reason string) error {
	if !r.Status.CanTransitionTo(ReturnStatusCancelled) {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot cancel return in %s status", r.Status))
	}
	if reason == "" {
		return shared.NewDomainError("INVALID_REASON", "Cancel reason is required")
	}

	now := time.Now()
	r.Status = ReturnStatusCancelled
	r.CancelledAt = &now
	r.CancelReason = reason
	r.UpdatedAt = now
	r.IncrementVersion()
	return nil
}

// RestockableItems returns the lines that should go back into stock when the
// return completes
func (r *ReturnRequest) RestockableItems() []ReturnItem {
	out := make([]ReturnItem, 0, len(r.Items))
	for _, item := range r.Items {
		if item.Restockable {
			out = append(out, item)
		}
	}
	return out
}

// ItemQty returns the quantity of a product in this return, zero when absent
func (r *ReturnRequest) ItemQty(productID uuid.UUID) decimal.Decimal {
	for idx := range r.Items {
		if r.Items[idx].ProductID == productID {
			return r.Items[idx].Qty
		}
	}
	return decimal.Zero
}
