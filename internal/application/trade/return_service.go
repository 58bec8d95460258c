package trade

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stockflows/backend/internal/domain/shared"
	"github.com/stockflows/backend/internal/domain/trade"
	"go.uber.org/zap"
)

// SourceLocker serializes return creation per source document so concurrent
// requests cannot both pass the returnable-quantity check. A nil locker
// skips serialization, which is acceptable for single-instance deployments.
type SourceLocker interface {
	AcquireSource(ctx context.Context, orgID, sourceID uuid.UUID) (func(), error)
}

// ReturnService handles the return request workflow for both customer and
// supplier returns
type ReturnService struct {
	returnRepo trade.ReturnRepository
	poRepo     trade.PurchaseOrderRepository
	soRepo     trade.SalesOrderRepository
	locker     SourceLocker
	eventBus   shared.EventPublisher
	logger     *zap.Logger
}

// NewReturnService creates a new return service
func NewReturnService(
	returnRepo trade.ReturnRepository,
	poRepo trade.PurchaseOrderRepository,
	soRepo trade.SalesOrderRepository,
	locker SourceLocker,
	eventBus shared.EventPublisher,
	logger *zap.Logger,
) *ReturnService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ReturnService{
		returnRepo: returnRepo,
		poRepo:     poRepo,
		soRepo:     soRepo,
		locker:     locker,
		eventBus:   eventBus,
		logger:     logger,
	}
}

// sourceDocument is the slice of a source order the return validation needs
type sourceDocument struct {
	number  string
	version int
	// returnable quantity per product before subtracting open returns
	quantities map[uuid.UUID]decimal.Decimal
	names      map[uuid.UUID]string
	skus       map[uuid.UUID]string
}

// CreateReturn files a return request against a sales order (customer
// return) or purchase order (supplier return). Per-product quantities are
// capped at the source quantity minus everything already claimed by open
// returns; creation for the same source is serialized through the locker.
func (s *ReturnService) CreateReturn(ctx context.Context, orgID, branchID, actorID uuid.UUID, req CreateReturnRequest) (*ReturnResponse, error) {
	returnType := trade.ReturnType(req.Type)
	if !returnType.IsValid() {
		return nil, shared.NewDomainError("INVALID_RETURN_TYPE", "Return type must be CUSTOMER or SUPPLIER")
	}

	if s.locker != nil {
		release, err := s.locker.AcquireSource(ctx, orgID, req.SourceID)
		if err != nil {
			return nil, err
		}
		defer release()
	}

	source, err := s.loadSource(ctx, orgID, returnType, req.SourceID)
	if err != nil {
		return nil, err
	}
	if source.version != req.SourceVersion {
		return nil, shared.ErrConcurrencyConflict
	}

	remaining, err := s.remainingQuantities(ctx, orgID, req.SourceID, source)
	if err != nil {
		return nil, err
	}

	for _, item := range req.Items {
		limit, inSource := remaining[item.ProductID]
		if !inSource {
			return nil, shared.NewDomainError("INVALID_PRODUCT",
				"Product "+item.ProductID.String()+" is not part of the source order")
		}
		if item.Qty.GreaterThan(limit) {
			return nil, shared.NewDomainError("QUANTITY_EXCEEDED",
				"Only "+limit.String()+" of "+source.skus[item.ProductID]+" can still be returned")
		}
	}

	returnNumber, err := s.returnRepo.NextReturnNumber(ctx, orgID)
	if err != nil {
		return nil, err
	}

	ret, err := trade.NewReturnRequest(orgID, branchID, returnNumber, returnType,
		req.SourceID, source.number, req.SourceVersion, actorID)
	if err != nil {
		return nil, err
	}
	for _, item := range req.Items {
		_, err := ret.AddItem(item.ProductID, source.names[item.ProductID], source.skus[item.ProductID],
			item.Qty, trade.ReturnReason(item.Reason), trade.ItemCondition(item.Condition),
			item.Restockable, item.Notes)
		if err != nil {
			return nil, err
		}
	}
	if req.Notes != "" {
		ret.Notes = req.Notes
	}

	if err := s.returnRepo.Save(ctx, ret); err != nil {
		return nil, err
	}

	s.publishEvents(ctx, ret)
	resp := ToReturnResponse(ret)
	return &resp, nil
}

// GetReturn returns a single return request with its lines
func (s *ReturnService) GetReturn(ctx context.Context, orgID, id uuid.UUID) (*ReturnResponse, error) {
	ret, err := s.returnRepo.FindByIDForOrg(ctx, orgID, id)
	if err != nil {
		return nil, err
	}
	resp := ToReturnResponse(ret)
	return &resp, nil
}

// ListReturns returns a paginated return listing
func (s *ReturnService) ListReturns(ctx context.Context, orgID uuid.UUID, filter shared.Filter) (*shared.Paginated[ReturnResponse], error) {
	returns, err := s.returnRepo.FindAllForOrg(ctx, orgID, filter)
	if err != nil {
		return nil, err
	}
	total, err := s.returnRepo.CountForOrg(ctx, orgID, filter)
	if err != nil {
		return nil, err
	}
	result := shared.NewPaginated(ToReturnResponses(returns), total, filter.Page, filter.PageSize)
	return &result, nil
}

// ApproveReturn approves a requested return
func (s *ReturnService) ApproveReturn(ctx context.Context, orgID, id uuid.UUID) (*ReturnResponse, error) {
	return s.transition(ctx, orgID, id, func(r *trade.ReturnRequest) error {
		return r.Approve()
	})
}

// RejectReturn declines a requested return
func (s *ReturnService) RejectReturn(ctx context.Context, orgID, id uuid.UUID, req RejectReturnRequest) (*ReturnResponse, error) {
	return s.transition(ctx, orgID, id, func(r *trade.ReturnRequest) error {
		return r.Reject(req.Reason)
	})
}

// ReceiveReturn records that customer goods arrived back at the branch
func (s *ReturnService) ReceiveReturn(ctx context.Context, orgID, id uuid.UUID) (*ReturnResponse, error) {
	return s.transition(ctx, orgID, id, func(r *trade.ReturnRequest) error {
		return r.MarkReceived()
	})
}

// ShipReturn records that supplier goods were sent out
func (s *ReturnService) ShipReturn(ctx context.Context, orgID, id uuid.UUID) (*ReturnResponse, error) {
	return s.transition(ctx, orgID, id, func(r *trade.ReturnRequest) error {
		return r.MarkShipped()
	})
}

// CompleteReturn closes the return. The completion event drives stock
// restoration for restockable lines.
func (s *ReturnService) CompleteReturn(ctx context.Context, orgID, id uuid.UUID) (*ReturnResponse, error) {
	return s.transition(ctx, orgID, id, func(r *trade.ReturnRequest) error {
		return r.Complete()
	})
}

// CancelReturn withdraws a requested or approved return
func (s *ReturnService) CancelReturn(ctx context.Context, orgID, id uuid.UUID, req CancelRequest) (*ReturnResponse, error) {
	return s.transition(ctx, orgID, id, func(r *trade.ReturnRequest) error {
		return r.Cancel(req.Reason)
	})
}

func (s *ReturnService) transition(ctx context.Context, orgID, id uuid.UUID, mutate func(*trade.ReturnRequest) error) (*ReturnResponse, error) {
	ret, err := s.returnRepo.FindByIDForOrg(ctx, orgID, id)
	if err != nil {
		return nil, err
	}
	if err := mutate(ret); err != nil {
		return nil, err
	}
	if err := s.returnRepo.Save(ctx, ret); err != nil {
		return nil, err
	}
	s.publishEvents(ctx, ret)
	resp := ToReturnResponse(ret)
	return &resp, nil
}

// loadSource reads the source order and projects it to the quantities that
// can come back: shipped quantities for customer returns, received
// quantities for supplier returns.
func (s *ReturnService) loadSource(ctx context.Context, orgID uuid.UUID, returnType trade.ReturnType, sourceID uuid.UUID) (*sourceDocument, error) {
	doc := &sourceDocument{
		quantities: make(map[uuid.UUID]decimal.Decimal),
		names:      make(map[uuid.UUID]string),
		skus:       make(map[uuid.UUID]string),
	}

	switch returnType {
	case trade.ReturnTypeCustomer:
		order, err := s.soRepo.FindByIDForOrg(ctx, orgID, sourceID)
		if err != nil {
			if errors.Is(err, shared.ErrNotFound) {
				return nil, shared.NewDomainError("INVALID_SOURCE", "Source sales order not found")
			}
			return nil, err
		}
		if order.Status != trade.SalesOrderStatusShipped && order.Status != trade.SalesOrderStatusCompleted {
			return nil, shared.NewDomainError("INVALID_STATE", "Customer returns require a shipped or completed order")
		}
		doc.number = order.OrderNumber
		doc.version = order.Version
		for i := range order.Items {
			item := &order.Items[i]
			doc.quantities[item.ProductID] = item.Qty
			doc.names[item.ProductID] = item.ProductName
			doc.skus[item.ProductID] = item.ProductSKU
		}
	case trade.ReturnTypeSupplier:
		order, err := s.poRepo.FindByIDForOrg(ctx, orgID, sourceID)
		if err != nil {
			if errors.Is(err, shared.ErrNotFound) {
				return nil, shared.NewDomainError("INVALID_SOURCE", "Source purchase order not found")
			}
			return nil, err
		}
		if !order.Status.CanReceive() && order.Status != trade.PurchaseOrderStatusReceived {
			return nil, shared.NewDomainError("INVALID_STATE", "Supplier returns require received goods")
		}
		doc.number = order.OrderNumber
		doc.version = order.Version
		for i := range order.Items {
			item := &order.Items[i]
			if item.QtyReceived.IsPositive() {
				doc.quantities[item.ProductID] = item.QtyReceived
				doc.names[item.ProductID] = item.ProductName
				doc.skus[item.ProductID] = item.ProductSKU
			}
		}
	}
	return doc, nil
}

// remainingQuantities subtracts every open return's quantities from the
// source quantities
func (s *ReturnService) remainingQuantities(ctx context.Context, orgID, sourceID uuid.UUID, source *sourceDocument) (map[uuid.UUID]decimal.Decimal, error) {
	open, err := s.returnRepo.FindOpenBySource(ctx, orgID, sourceID)
	if err != nil {
		return nil, err
	}

	remaining := make(map[uuid.UUID]decimal.Decimal, len(source.quantities))
	for productID, qty := range source.quantities {
		remaining[productID] = qty
	}
	for i := range open {
		for _, item := range open[i].Items {
			if current, ok := remaining[item.ProductID]; ok {
				left := current.Sub(item.Qty)
				if left.IsNegative() {
					left = decimal.Zero
				}
				remaining[item.ProductID] = left
			}
		}
	}
	return remaining, nil
}

func (s *ReturnService) publishEvents(ctx context.Context, ret *trade.ReturnRequest) {
	events := ret.GetDomainEvents()
	if s.eventBus == nil || len(events) == 0 {
		ret.ClearDomainEvents()
		return
	}
	if err := s.eventBus.Publish(ctx, events...); err != nil {
		s.logger.Warn("failed to publish return events",
			zap.String("return_number", ret.ReturnNumber), zap.Error(err))
	}
	ret.ClearDomainEvents()
}
