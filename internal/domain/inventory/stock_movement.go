package inventory

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stockflows/backend/internal/domain/shared"
)

// MovementType classifies why stock changed
type MovementType string

const (
	MovementTypePurchaseIn    MovementType = "PURCHASE_IN"
	MovementTypeSaleOut       MovementType = "SALE_OUT"
	MovementTypeReturnIn      MovementType = "RETURN_IN"  // customer return restocked
	MovementTypeReturnOut     MovementType = "RETURN_OUT" // goods shipped back to supplier
	MovementTypeAdjustmentIn  MovementType = "ADJUSTMENT_IN"
	MovementTypeAdjustmentOut MovementType = "ADJUSTMENT_OUT"
)

// IsValid returns true if the movement type is known
func (t MovementType) IsValid() bool {
	switch t {
	case MovementTypePurchaseIn, MovementTypeSaleOut, MovementTypeReturnIn,
		MovementTypeReturnOut, MovementTypeAdjustmentIn, MovementTypeAdjustmentOut:
		return true
	}
	return false
}

// IsInbound returns true if the movement adds stock
func (t MovementType) IsInbound() bool {
	switch t {
	case MovementTypePurchaseIn, MovementTypeReturnIn, MovementTypeAdjustmentIn:
		return true
	}
	return false
}

// ReferenceType identifies the kind of document that caused a movement
type ReferenceType string

const (
	ReferenceTypePurchaseOrder ReferenceType = "PURCHASE_ORDER"
	ReferenceTypeSalesOrder    ReferenceType = "SALES_ORDER"
	ReferenceTypeReturn        ReferenceType = "RETURN"
	ReferenceTypeManual        ReferenceType = "MANUAL"
)

// SystemActorID marks journal entries written by document workflows when no
// user is attached to the context
var SystemActorID = uuid.MustParse("00000000-0000-0000-0000-000000000001")

// StockMovement is one immutable journal entry of the stock ledger. Movements
// are only ever appended; corrections are new adjustment movements.
type StockMovement struct {
	ID              uuid.UUID       `gorm:"type:uuid;primary_key"`
	OrgID           uuid.UUID       `gorm:"type:uuid;not null;index"`
	BranchID        uuid.UUID       `gorm:"type:uuid;not null;index"`
	ProductID       uuid.UUID       `gorm:"type:uuid;not null;index"`
	Type            MovementType    `gorm:"type:varchar(20);not null"`
	Qty             decimal.Decimal `gorm:"type:decimal(18,4);not null"` // always positive
	PreviousOnHand  decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	NewOnHand       decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	ReferenceType   ReferenceType   `gorm:"type:varchar(20);not null"`
	ReferenceID     *uuid.UUID      `gorm:"type:uuid;index"`
	ReferenceNumber string          `gorm:"type:varchar(50)"`
	Reason          string          `gorm:"type:varchar(500)"`
	ActorID         uuid.UUID       `gorm:"type:uuid;not null"`
	CreatedAt       time.Time       `gorm:"not null;index"`
}

// TableName returns the table name for GORM
func (StockMovement) TableName() string {
	return "stock_movements"
}

// NewStockMovement records one stock change against a stock level
func NewStockMovement(level *StockLevel, typ MovementType, qty, previousOnHand decimal.Decimal, refType ReferenceType, refID *uuid.UUID, refNumber, reason string, actorID uuid.UUID) (*StockMovement, error) {
	if !typ.IsValid() {
		return nil, shared.NewDomainError("INVALID_MOVEMENT_TYPE", "Unknown movement type")
	}
	if qty.LessThanOrEqual(decimal.Zero) {
		return nil, shared.NewDomainError("INVALID_QUANTITY", "Movement quantity must be positive")
	}
	if actorID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_USER", "Actor cannot be empty")
	}

	return &StockMovement{
		ID:              uuid.New(),
		OrgID:           level.OrgID,
		BranchID:        level.BranchID,
		ProductID:       level.ProductID,
		Type:            typ,
		Qty:             qty,
		PreviousOnHand:  previousOnHand,
		NewOnHand:       level.OnHand,
		ReferenceType:   refType,
		ReferenceID:     refID,
		ReferenceNumber: refNumber,
		Reason:          reason,
		ActorID:         actorID,
		CreatedAt:       time.Now(),
	}, nil
}
