package trade

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/stockflows/backend/internal/domain/catalog"
	"github.com/stockflows/backend/internal/domain/partner"
	"github.com/stockflows/backend/internal/domain/shared"
	"github.com/stockflows/backend/internal/domain/trade"
	"go.uber.org/zap"
)

// PurchaseOrderService handles the purchase order lifecycle from draft
// through receiving
type PurchaseOrderService struct {
	orderRepo    trade.PurchaseOrderRepository
	supplierRepo partner.SupplierRepository
	productRepo  catalog.ProductRepository
	eventBus     shared.EventPublisher
	logger       *zap.Logger
}

// NewPurchaseOrderService creates a new purchase order service
func NewPurchaseOrderService(
	orderRepo trade.PurchaseOrderRepository,
	supplierRepo partner.SupplierRepository,
	productRepo catalog.ProductRepository,
	eventBus shared.EventPublisher,
	logger *zap.Logger,
) *PurchaseOrderService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PurchaseOrderService{
		orderRepo:    orderRepo,
		supplierRepo: supplierRepo,
		productRepo:  productRepo,
		eventBus:     eventBus,
		logger:       logger,
	}
}

// CreatePurchaseOrder creates a draft purchase order with its lines. Line
// costs default to the product's recorded cost when not given.
func (s *PurchaseOrderService) CreatePurchaseOrder(ctx context.Context, orgID, actorID uuid.UUID, req CreatePurchaseOrderRequest) (*PurchaseOrderResponse, error) {
	supplier, err := s.supplierRepo.FindByIDForOrg(ctx, orgID, req.SupplierID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.NewDomainError("INVALID_SUPPLIER", "Supplier not found")
		}
		return nil, err
	}
	if !supplier.IsActive {
		return nil, shared.NewDomainError("INVALID_SUPPLIER", "Supplier is inactive")
	}

	orderNumber, err := s.orderRepo.NextOrderNumber(ctx, orgID)
	if err != nil {
		return nil, err
	}

	order, err := trade.NewPurchaseOrder(orgID, req.BranchID, orderNumber, supplier.ID, supplier.Name)
	if err != nil {
		return nil, err
	}
	order.SetCreatedBy(actorID)

	if err := s.addLines(ctx, orgID, order, req.Items); err != nil {
		return nil, err
	}
	if err := order.SetCharges(req.Discount, req.TaxRate, req.Shipping); err != nil {
		return nil, err
	}
	if req.Notes != "" {
		order.SetNotes(req.Notes)
	}

	if err := s.orderRepo.Save(ctx, order); err != nil {
		return nil, err
	}

	s.publishEvents(ctx, order)
	resp := ToPurchaseOrderResponse(order)
	return &resp, nil
}

// GetPurchaseOrder returns a single purchase order with its lines
func (s *PurchaseOrderService) GetPurchaseOrder(ctx context.Context, orgID, id uuid.UUID) (*PurchaseOrderResponse, error) {
	order, err := s.orderRepo.FindByIDForOrg(ctx, orgID, id)
	if err != nil {
		return nil, err
	}
	resp := ToPurchaseOrderResponse(order)
	return &resp, nil
}

// ListPurchaseOrders returns a paginated purchase order listing
func (s *PurchaseOrderService) ListPurchaseOrders(ctx context.Context, orgID uuid.UUID, filter shared.Filter) (*shared.Paginated[PurchaseOrderResponse], error) {
	orders, err := s.orderRepo.FindAllForOrg(ctx, orgID, filter)
	if err != nil {
		return nil, err
	}
	total, err := s.orderRepo.CountForOrg(ctx, orgID, filter)
	if err != nil {
		return nil, err
	}
	result := shared.NewPaginated(ToPurchaseOrderResponses(orders), total, filter.Page, filter.PageSize)
	return &result, nil
}

// UpdatePurchaseOrder replaces a draft's lines and charges. Only drafts can
// be edited.
func (s *PurchaseOrderService) UpdatePurchaseOrder(ctx context.Context, orgID, id uuid.UUID, req UpdatePurchaseOrderRequest) (*PurchaseOrderResponse, error) {
	order, err := s.orderRepo.FindByIDForOrg(ctx, orgID, id)
	if err != nil {
		return nil, err
	}
	if order.Status != trade.PurchaseOrderStatusDraft {
		return nil, shared.NewDomainError("INVALID_STATE", "Only draft orders can be edited")
	}

	for _, item := range append([]trade.PurchaseOrderItem(nil), order.Items...) {
		if err := order.RemoveItem(item.ID); err != nil {
			return nil, err
		}
	}
	if err := s.addLines(ctx, orgID, order, req.Items); err != nil {
		return nil, err
	}
	if err := order.SetCharges(req.Discount, req.TaxRate, req.Shipping); err != nil {
		return nil, err
	}
	order.SetNotes(req.Notes)

	if err := s.orderRepo.Save(ctx, order); err != nil {
		return nil, err
	}
	resp := ToPurchaseOrderResponse(order)
	return &resp, nil
}

// SubmitPurchaseOrder moves a draft to PENDING
func (s *PurchaseOrderService) SubmitPurchaseOrder(ctx context.Context, orgID, id uuid.UUID) (*PurchaseOrderResponse, error) {
	order, err := s.orderRepo.FindByIDForOrg(ctx, orgID, id)
	if err != nil {
		return nil, err
	}
	if err := order.Submit(); err != nil {
		return nil, err
	}
	if err := s.orderRepo.Save(ctx, order); err != nil {
		return nil, err
	}

	s.publishEvents(ctx, order)
	resp := ToPurchaseOrderResponse(order)
	return &resp, nil
}

// ReceivePurchaseOrder applies a receiving submission. The resulting event
// drives the stock increase.
func (s *PurchaseOrderService) ReceivePurchaseOrder(ctx context.Context, orgID, id uuid.UUID, req ReceivePurchaseOrderRequest) (*PurchaseOrderResponse, error) {
	order, err := s.orderRepo.FindByIDForOrg(ctx, orgID, id)
	if err != nil {
		return nil, err
	}

	lines := make([]trade.ReceiveLine, len(req.Lines))
	for i, line := range req.Lines {
		lines[i] = trade.ReceiveLine{ItemID: line.ItemID, Qty: line.Qty}
	}
	if _, err := order.Receive(lines); err != nil {
		return nil, err
	}
	if err := s.orderRepo.Save(ctx, order); err != nil {
		return nil, err
	}

	s.publishEvents(ctx, order)
	resp := ToPurchaseOrderResponse(order)
	return &resp, nil
}

// RecordPayment records a payment against the order total
func (s *PurchaseOrderService) RecordPayment(ctx context.Context, orgID, id uuid.UUID, req RecordPaymentRequest) (*PurchaseOrderResponse, error) {
	order, err := s.orderRepo.FindByIDForOrg(ctx, orgID, id)
	if err != nil {
		return nil, err
	}
	if err := order.RecordPayment(req.Amount); err != nil {
		return nil, err
	}
	if err := s.orderRepo.Save(ctx, order); err != nil {
		return nil, err
	}
	resp := ToPurchaseOrderResponse(order)
	return &resp, nil
}

// CancelPurchaseOrder cancels a pending or partially received order
func (s *PurchaseOrderService) CancelPurchaseOrder(ctx context.Context, orgID, id uuid.UUID, req CancelRequest) (*PurchaseOrderResponse, error) {
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

	s.publishEvents(ctx, order)
	resp := ToPurchaseOrderResponse(order)
	return &resp, nil
}

// DeletePurchaseOrder deletes a draft order
func (s *PurchaseOrderService) DeletePurchaseOrder(ctx context.Context, orgID, id uuid.UUID) error {
	order, err := s.orderRepo.FindByIDForOrg(ctx, orgID, id)
	if err != nil {
		return err
	}
	if !order.CanDelete() {
		return shared.NewDomainError("INVALID_STATE", "Only draft orders can be deleted")
	}
	return s.orderRepo.Delete(ctx, order.ID)
}

func (s *PurchaseOrderService) addLines(ctx context.Context, orgID uuid.UUID, order *trade.PurchaseOrder, items []OrderItemRequest) error {
	for _, line := range items {
		product, err := s.productRepo.FindByIDForOrg(ctx, orgID, line.ProductID)
		if err != nil {
			if errors.Is(err, shared.ErrNotFound) {
				return shared.NewDomainError("INVALID_PRODUCT", "Product "+line.ProductID.String()+" not found")
			}
			return err
		}
		if !product.IsActive() {
			return shared.NewDomainError("INVALID_PRODUCT", "Product "+product.SKU+" is not active")
		}

		unitCost := product.Cost
		if line.UnitCost != nil {
			unitCost = *line.UnitCost
		}
		if _, err := order.AddItem(product.ID, product.Name, product.SKU, line.Qty, unitCost); err != nil {
			return err
		}
	}
	return nil
}

func (s *PurchaseOrderService) publishEvents(ctx context.Context, order *trade.PurchaseOrder) {
	events := order.GetDomainEvents()
	if s.eventBus == nil || len(events) == 0 {
		order.ClearDomainEvents()
		return
	}
	if err := s.eventBus.Publish(ctx, events...); err != nil {
		s.logger.Warn("failed to publish purchase order events",
			zap.String("order_number", order.OrderNumber), zap.Error(err))
	}
	order.ClearDomainEvents()
}
