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

// ReturnCompletedHandler adjusts stock when a return completes: customer
// returns restock the branch, supplier returns deduct the goods sent back.
// Only lines flagged restockable appear in the event.
type ReturnCompletedHandler struct {
	inventoryService *inventoryapp.InventoryService
	logger           *zap.Logger
}

// NewReturnCompletedHandler creates a new handler
func NewReturnCompletedHandler(inventoryService *inventoryapp.InventoryService, log *zap.Logger) *ReturnCompletedHandler {
	if log == nil {
		log = zap.NewNop()
	}
	return &ReturnCompletedHandler{
		inventoryService: inventoryService,
		logger:           log,
	}
}

// EventTypes returns the event types this handler is interested in
func (h *ReturnCompletedHandler) EventTypes() []string {
	return []string{trade.EventTypeReturnCompleted}
}

// Handle applies RETURN_IN or RETURN_OUT movements for the restockable lines
func (h *ReturnCompletedHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	e, ok := event.(*trade.ReturnCompletedEvent)
	if !ok {
		return fmt.Errorf("unexpected event type %T", event)
	}

	returnID := e.AggregateID()
	actorID := actorFromContext(ctx)
	for _, line := range e.RestockLines {
		req := inventoryapp.StockChangeRequest{
			BranchID:        e.BranchID,
			ProductID:       line.ProductID,
			Qty:             line.Qty,
			ReferenceType:   inventory.ReferenceTypeReturn,
			ReferenceID:     &returnID,
			ReferenceNumber: e.ReturnNumber,
			Reason:          string(line.Condition),
			ActorID:         actorID,
		}

		var err error
		if e.ReturnType == trade.ReturnTypeCustomer {
			req.Type = inventory.MovementTypeReturnIn
			_, err = h.inventoryService.IncreaseStock(ctx, e.OrgID(), req)
		} else {
			req.Type = inventory.MovementTypeReturnOut
			_, err = h.inventoryService.DecreaseStock(ctx, e.OrgID(), req)
		}
		if err != nil {
			h.logger.Error("failed to apply return stock movement",
				zap.String("return_number", e.ReturnNumber),
				zap.String("product_sku", line.ProductSKU),
				zap.Error(err))
			return err
		}
	}
	return nil
}
