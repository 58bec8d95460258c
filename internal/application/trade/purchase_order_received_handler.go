package trade

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	inventoryapp "github.com/stockflows/backend/internal/application/inventory"
	"github.com/stockflows/backend/internal/domain/inventory"
	"github.com/stockflows/backend/internal/domain/shared"
	"github.com/stockflows/backend/internal/domain/trade"
	"github.com/stockflows/backend/internal/infrastructure/logger"
	"go.uber.org/zap"
)

// PurchaseOrderReceivedHandler increases stock at the receiving branch when
// goods arrive against a purchase order
type PurchaseOrderReceivedHandler struct {
	inventoryService *inventoryapp.InventoryService
	logger           *zap.Logger
}

// NewPurchaseOrderReceivedHandler creates a new handler
func NewPurchaseOrderReceivedHandler(inventoryService *inventoryapp.InventoryService, log *zap.Logger) *PurchaseOrderReceivedHandler {
	if log == nil {
		log = zap.NewNop()
	}
	return &PurchaseOrderReceivedHandler{
		inventoryService: inventoryService,
		logger:           log,
	}
}

// EventTypes returns the event types this handler is interested in
func (h *PurchaseOrderReceivedHandler) EventTypes() []string {
	return []string{trade.EventTypePurchaseOrderReceived}
}

// Handle applies one PURCHASE_IN movement per received line
func (h *PurchaseOrderReceivedHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	e, ok := event.(*trade.PurchaseOrderReceivedEvent)
	if !ok {
		return fmt.Errorf("unexpected event type %T", event)
	}

	orderID := e.AggregateID()
	actorID := actorFromContext(ctx)
	for _, line := range e.ReceivedLines {
		_, err := h.inventoryService.IncreaseStock(ctx, e.OrgID(), inventoryapp.StockChangeRequest{
			BranchID:        e.BranchID,
			ProductID:       line.ProductID,
			Qty:             line.Qty,
			Type:            inventory.MovementTypePurchaseIn,
			ReferenceType:   inventory.ReferenceTypePurchaseOrder,
			ReferenceID:     &orderID,
			ReferenceNumber: e.OrderNumber,
			ActorID:         actorID,
		})
		if err != nil {
			h.logger.Error("failed to increase stock for received line",
				zap.String("order_number", e.OrderNumber),
				zap.String("product_sku", line.ProductSKU),
				zap.Error(err))
			return err
		}
	}
	return nil
}

// actorFromContext resolves the acting user from the request context,
// falling back to the system actor for non-request flows
func actorFromContext(ctx context.Context) uuid.UUID {
	if raw := logger.GetUserID(ctx); raw != "" {
		if id, err := uuid.Parse(raw); err == nil {
			return id
		}
	}
	return inventory.SystemActorID
}
