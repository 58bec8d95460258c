package trade

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/stockflows/backend/internal/domain/catalog"
	"github.com/stockflows/backend/internal/domain/inventory"
	"github.com/stockflows/backend/internal/domain/partner"
	"github.com/stockflows/backend/internal/domain/shared"
	"github.com/stockflows/backend/internal/domain/trade"
	"go.uber.org/zap"
)

// SalesOrderService handles the sales order lifecycle. Stock is checked
// against available quantity at creation and decremented on shipment.
type SalesOrderService struct {
	orderRepo    trade.SalesOrderRepository
	customerRepo partner.CustomerRepository
	productRepo  catalog.ProductRepository
	levelRepo    inventory.StockLevelRepository
	eventBus     shared.EventPublisher
	logger       *zap.Logger
}

// NewSalesOrderService creates a new sales order service
func NewSalesOrderService(
	orderRepo trade.SalesOrderRepository,
	customerRepo partner.CustomerRepository,
	productRepo catalog.ProductRepository,
	levelRepo inventory.StockLevelRepository,
	eventBus shared.EventPublisher,
	logger *zap.Logger,
) *SalesOrderService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SalesOrderService{
		orderRepo:    orderRepo,
		customerRepo: customerRepo,
		productRepo:  productRepo,
		levelRepo:    levelRepo,
		eventBus:     eventBus,
		logger:       logger,
	}
}

// CreateSalesOrder creates a pending sales order. Every line must be covered
// by available stock at the fulfilling branch.
func (s *SalesOrderService) CreateSalesOrder(ctx context.Context, orgID, actorID uuid.UUID, req CreateSalesOrderRequest) (*SalesOrderResponse, error) {
	customer, err := s.customerRepo.FindByIDForOrg(ctx, orgID, req.CustomerID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.NewDomainError("INVALID_CUSTOMER", "Customer not found")
		}
		return nil, err
	}
	if !customer.IsActive {
		return nil, shared.NewDomainError("INVALID_CUSTOMER", "Customer is inactive")
	}

	orderNumber, err := s.orderRepo.NextOrderNumber(ctx, orgID)
	if err != nil {
		return nil, err
	}

	order, err := trade.NewSalesOrder(orgID, req.BranchID, orderNumber, customer.ID, customer.Name)
	if err != nil {
		return nil, err
	}
	order.SetCreatedBy(actorID)

	for _, line := range req.Items {
		product, err := s.productRepo.FindByIDForOrg(ctx, orgID, line.ProductID)
		if err != nil {
			if errors.Is(err, shared.ErrNotFound) {
				return nil, shared.NewDomainError("INVALID_PRODUCT", "Product "+line.ProductID.String()+" not found")
			}
			return nil, err
		}
		if !product.IsActive() {
			return nil, shared.NewDomainError("INVALID_PRODUCT", "Product "+product.SKU+" is not active")
		}

		if err := s.checkAvailability(ctx, orgID, req.BranchID, product, line); err != nil {
			return nil, err
		}

		unitPrice := product.Price
		if line.UnitPrice != nil {
			unitPrice = *line.UnitPrice
		}
		if _, err := order.AddItem(product.ID, product.Name, product.SKU, line.Qty, unitPrice); err != nil {
			return nil, err
		}
	}

	if err := order.SetDiscount(req.Discount); err != nil {
		return nil, err
	}
	if req.Notes != "" {
		order.Notes = req.Notes
	}

	if err := s.orderRepo.Save(ctx, order); err != nil {
		return nil, err
	}

	s.publishEvents(ctx, order)
	resp := ToSalesOrderResponse(order)
	return &resp, nil
}

// GetSalesOrder returns a single sales order with its lines
func (s *SalesOrderService) GetSalesOrder(ctx context.Context, orgID, id uuid.UUID) (*SalesOrderResponse, error) {
	order, err := s.orderRepo.FindByIDForOrg(ctx, orgID, id)
	if err != nil {
		return nil, err
	}
	resp := ToSalesOrderResponse(order)
	return &resp, nil
}

// ListSalesOrders returns a paginated sales order listing
func (s *SalesOrderService) ListSalesOrders(ctx context.Context, orgID uuid.UUID, filter shared.Filter) (*shared.Paginated[SalesOrderResponse], error) {
	orders, err := s.orderRepo.FindAllForOrg(ctx, orgID, filter)
	if err != nil {
		return nil, err
	}
	total, err := s.orderRepo.CountForOrg(ctx, orgID, filter)
	if err != nil {
		return nil, err
	}
	result := shared.NewPaginated(ToSalesOrderResponses(orders), total, filter.Page, filter.PageSize)
	return &result, nil
}

// ShipSalesOrder marks an order shipped. The shipped event drives the stock
// decrease.
func (s *SalesOrderService) ShipSalesOrder(ctx context.Context, orgID, id uuid.UUID, req ShipSalesOrderRequest) (*SalesOrderResponse, error) {
	order, err := s.orderRepo.FindByIDForOrg(ctx, orgID, id)
	if err != nil {
		return nil, err
	}
	if err := order.Ship(req.Carrier, req.TrackingNumber); err != nil {
		return nil, err
	}
	if err := s.orderRepo.Save(ctx, order); err != nil {
		return nil, err
	}

	s.publishEvents(ctx, order)
	resp := ToSalesOrderResponse(order)
	return &resp, nil
}

// CompleteSalesOrder closes a shipped order
func (s *SalesOrderService) CompleteSalesOrder(ctx context.Context, orgID, id uuid.UUID) (*SalesOrderResponse, error) {
	order, err := s.orderRepo.FindByIDForOrg(ctx, orgID, id)
	if err != nil {
		return nil, err
	}
	if err := order.Complete(); err != nil {
		return nil, err
	}
	if err := s.orderRepo.Save(ctx, order); err != nil {
		return nil, err
	}
	resp := ToSalesOrderResponse(order)
	return &resp, nil
}

// CancelSalesOrder cancels a pending order
func (s *SalesOrderService) CancelSalesOrder(ctx context.Context, orgID, id uuid.UUID, req CancelRequest) (*SalesOrderResponse, error) {
	order, err := s.orderRepo.FindByIDForOrg(ctx, orgID, id)
	if err != nil {
		return nil, err
	}
	if err := order.Cancel(req.Reason); err != nil {
		return nil, err
	}
	if err := s.orderRepo.Save(ctx, order); err != nil {
		return nil, err
	}
	resp := ToSalesOrderResponse(order)
	return &resp, nil
}

// checkAvailability verifies available stock covers the requested quantity.
// A missing stock record means zero availability.
func (s *SalesOrderService) checkAvailability(ctx context.Context, orgID, branchID uuid.UUID, product *catalog.Product, line OrderItemRequest) error {
	level, err := s.levelRepo.FindByBranchProduct(ctx, orgID, branchID, product.ID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return shared.NewDomainError("INSUFFICIENT_STOCK",
				"No stock of "+product.SKU+" at this branch")
		}
		return err
	}
	if level.Available().LessThan(line.Qty) {
		return shared.NewDomainError("INSUFFICIENT_STOCK",
			"Only "+level.Available().String()+" of "+product.SKU+" available")
	}
	return nil
}

func (s *SalesOrderService) publishEvents(ctx context.Context, order *trade.SalesOrder) {
	events := order.GetDomainEvents()
	if s.eventBus == nil || len(events) == 0 {
		order.ClearDomainEvents()
		return
	}
	if err := s.eventBus.Publish(ctx, events...); err != nil {
		s.logger.Warn("failed to publish sales order events",
			zap.String("order_number", order.OrderNumber), zap.Error(err))
	}
	order.ClearDomainEvents()
}
