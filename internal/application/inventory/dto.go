package inventory

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stockflows/backend/internal/domain/inventory"
)

// StockChangeRequest describes a stock increase or decrease tied to a
// source document
type StockChangeRequest struct {
	BranchID        uuid.UUID
	ProductID       uuid.UUID
	Qty             decimal.Decimal
	Type            inventory.MovementType
	ReferenceType   inventory.ReferenceType
	ReferenceID     *uuid.UUID
	ReferenceNumber string
	Reason          string
	ActorID         uuid.UUID
}

// AdjustStockRequest is a manual correction. Reason is mandatory.
type AdjustStockRequest struct {
	BranchID  uuid.UUID       `json:"branch_id" binding:"required"`
	ProductID uuid.UUID       `json:"product_id" binding:"required"`
	Delta     decimal.Decimal `json:"delta" binding:"required"`
	Reason    string          `json:"reason" binding:"required,min=1,max=500"`
}

// SetMinStockRequest updates the low-stock threshold for a branch/product pair
type SetMinStockRequest struct {
	BranchID  uuid.UUID       `json:"branch_id" binding:"required"`
	ProductID uuid.UUID       `json:"product_id" binding:"required"`
	MinStock  decimal.Decimal `json:"min_stock"`
}

// MovementListFilter represents filter options for movement history
type MovementListFilter struct {
	Type     string `form:"type"`
	Page     int    `form:"page" binding:"omitempty,min=1"`
	PageSize int    `form:"page_size" binding:"omitempty,min=1,max=100"`
}

// StockLevelResponse represents a stock level in API responses
type StockLevelResponse struct {
	ID          uuid.UUID       `json:"id"`
	BranchID    uuid.UUID       `json:"branch_id"`
	ProductID   uuid.UUID       `json:"product_id"`
	OnHand      decimal.Decimal `json:"on_hand"`
	Reserved    decimal.Decimal `json:"reserved"`
	Available   decimal.Decimal `json:"available"`
	MinStock    decimal.Decimal `json:"min_stock"`
	BinLocation string          `json:"bin_location"`
	IsLow       bool            `json:"is_low"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// StockMovementResponse represents a journal entry in API responses
type StockMovementResponse struct {
	ID              uuid.UUID       `json:"id"`
	BranchID        uuid.UUID       `json:"branch_id"`
	ProductID       uuid.UUID       `json:"product_id"`
	Type            string          `json:"type"`
	Qty             decimal.Decimal `json:"qty"`
	PreviousOnHand  decimal.Decimal `json:"previous_on_hand"`
	NewOnHand       decimal.Decimal `json:"new_on_hand"`
	ReferenceType   string          `json:"reference_type"`
	ReferenceID     *uuid.UUID      `json:"reference_id,omitempty"`
	ReferenceNumber string          `json:"reference_number,omitempty"`
	Reason          string          `json:"reason,omitempty"`
	ActorID         uuid.UUID       `json:"actor_id"`
	CreatedAt       time.Time       `json:"created_at"`
}

// ToStockLevelResponse converts a domain StockLevel to its API shape
func ToStockLevelResponse(l *inventory.StockLevel) StockLevelResponse {
	return StockLevelResponse{
		ID:          l.ID,
		BranchID:    l.BranchID,
		ProductID:   l.ProductID,
		OnHand:      l.OnHand,
		Reserved:    l.Reserved,
		Available:   l.Available(),
		MinStock:    l.MinStock,
		BinLocation: l.BinLocation,
		IsLow:       l.IsLow(),
		UpdatedAt:   l.UpdatedAt,
	}
}

// ToStockLevelResponses converts a slice of stock levels
func ToStockLevelResponses(levels []inventory.StockLevel) []StockLevelResponse {
	responses := make([]StockLevelResponse, len(levels))
	for i := range levels {
		responses[i] = ToStockLevelResponse(&levels[i])
	}
	return responses
}

// ToStockMovementResponse converts a domain StockMovement to its API shape
func ToStockMovementResponse(m *inventory.StockMovement) StockMovementResponse {
	return StockMovementResponse{
		ID:              m.ID,
		BranchID:        m.BranchID,
		ProductID:       m.ProductID,
		Type:            string(m.Type),
		Qty:             m.Qty,
		PreviousOnHand:  m.PreviousOnHand,
		NewOnHand:       m.NewOnHand,
		ReferenceType:   string(m.ReferenceType),
		ReferenceID:     m.ReferenceID,
		ReferenceNumber: m.ReferenceNumber,
		Reason:          m.Reason,
		ActorID:         m.ActorID,
		CreatedAt:       m.CreatedAt,
	}
}

// ToStockMovementResponses converts a slice of movements
func ToStockMovementResponses(movements []inventory.StockMovement) []StockMovementResponse {
	responses := make([]StockMovementResponse, len(movements))
	for i := range movements {
		responses[i] = ToStockMovementResponse(&movements[i])
	}
	return responses
}
