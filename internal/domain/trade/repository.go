package trade

import (
	"context"

	"github.com/google/uuid"
	"github.com/stockflows/backend/internal/domain/shared"
)

// PurchaseOrderRepository persists purchase orders with their items
type PurchaseOrderRepository interface {
	shared.OrgRepository[PurchaseOrder]
	FindByNumberForOrg(ctx context.Context, orgID uuid.UUID, orderNumber string) (*PurchaseOrder, error)
	// NextOrderNumber allocates the next sequential order number for the org
	NextOrderNumber(ctx context.Context, orgID uuid.UUID) (string, error)
}

// SalesOrderRepository persists sales orders with their items
type SalesOrderRepository interface {
	shared.OrgRepository[SalesOrder]
	FindByNumberForOrg(ctx context.Context, orgID uuid.UUID, orderNumber string) (*SalesOrder, error)
	NextOrderNumber(ctx context.Context, orgID uuid.UUID) (string, error)
}

// ReturnRepository persists return requests with their items
type ReturnRepository interface {
	shared.OrgRepository[ReturnRequest]
	// FindOpenBySource returns the non-cancelled, non-rejected returns filed
	// against a source document. Used to compute remaining returnable
	// quantities.
	FindOpenBySource(ctx context.Context, orgID, sourceID uuid.UUID) ([]ReturnRequest, error)
	NextReturnNumber(ctx context.Context, orgID uuid.UUID) (string, error)
}
