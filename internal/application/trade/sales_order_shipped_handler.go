package trade

import (
	"context"
	"fmt"

	inventoryapp "github.com/stockflows/backend/internal/application/inventory"
	"github.com/stockflows/backend/internal/domain/inventory"
	"github.com/stockflows/backend/internal/domain/shared"
	"github.com/stockflows/backend/internal/domain/trade"
	"go.uber.org/zap"
)

// SalesOrderShippedHandler decreases stock at the fulfilling branch when a
// sales order ships
type SalesOrderShippedHandler struct {
	inventoryService *inventoryapp.InventoryService
	logger           *zap.Logger
}

// NewSalesOrderShippedHandler creates a new handler
func NewSalesOrderShippedHandler(inventoryService *inventoryapp.InventoryService, log *zap.Logger) *SalesOrderShippedHandler {
	if log == nil {
		log = zap.NewNop()
	}
	return &SalesOrderShippedHandler{
		inventoryService: inventoryService,
		logger:           log,
	}
}

// EventTypes returns the event types this handler is interested in
func (h *SalesOrderShippedHandler) EventTypes() []string {
	return []string{trade.EventTypeSalesOrderShipped}
}

// Handle applies one SALE_OUT movement per shipped line
func (h *SalesOrderShippedHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	e, ok := event.(*trade.SalesOrderShippedEvent)
	if !ok {
		return fmt.Errorf("unexpected event type %T", event)
	}

	orderID := e.AggregateID()
	actorID := actorFromContext(ctx)
	for _, line := range e.ShippedLines {
		_, err := h.inventoryService.DecreaseStock(ctx, e.OrgID(), inventoryapp.StockChangeRequest{
			BranchID:        e.BranchID,
			ProductID:       line.ProductID,
			Qty:             line.Qty,
			Type:            inventory.MovementTypeSaleOut,
			ReferenceType:   inventory.ReferenceTypeSalesOrder,
			ReferenceID:     &orderID,
			ReferenceNumber: e.OrderNumber,
			ActorID:         actorID,
		})
		if err != nil {
			h.logger.Error("failed to decrease stock for shipped line",
				zap.String("order_number", e.OrderNumber),
				zap.String("product_sku", line.ProductSKU),
				zap.Error(err))
			return err
		}
	}
	return nil
}
