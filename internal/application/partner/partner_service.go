package partner

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/stockflows/backend/internal/domain/partner"
	"github.com/stockflows/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// SupplierService handles supplier administration
type SupplierService struct {
	supplierRepo partner.SupplierRepository
	logger       *zap.Logger
}

// NewSupplierService creates a new supplier service
func NewSupplierService(supplierRepo partner.SupplierRepository, logger *zap.Logger) *SupplierService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SupplierService{supplierRepo: supplierRepo, logger: logger}
}

// CreateSupplier creates a supplier in the org
func (s *SupplierService) CreateSupplier(ctx context.Context, orgID uuid.UUID, req CreateSupplierRequest) (*SupplierResponse, error) {
	supplier, err := partner.NewSupplier(orgID, req.Name)
	if err != nil {
		return nil, err
	}
	if err := supplier.SetContact(req.Email, req.Phone, req.Address); err != nil {
		return nil, err
	}
	if err := s.supplierRepo.Save(ctx, supplier); err != nil {
		return nil, err
	}
	s.logger.Info("supplier created",
		zap.String("org_id", orgID.String()),
		zap.String("supplier_id", supplier.ID.String()))
	resp := ToSupplierResponse(supplier)
	return &resp, nil
}

// GetSupplier returns a single supplier
func (s *SupplierService) GetSupplier(ctx context.Context, orgID, id uuid.UUID) (*SupplierResponse, error) {
	supplier, err := s.supplierRepo.FindByIDForOrg(ctx, orgID, id)
	if err != nil {
		return nil, err
	}
	resp := ToSupplierResponse(supplier)
	return &resp, nil
}

// ListSuppliers returns a paginated supplier listing
func (s *SupplierService) ListSuppliers(ctx context.Context, orgID uuid.UUID, filter shared.Filter) (*shared.Paginated[SupplierResponse], error) {
	suppliers, err := s.supplierRepo.FindAllForOrg(ctx, orgID, filter)
	if err != nil {
		return nil, err
	}
	total, err := s.supplierRepo.CountForOrg(ctx, orgID, filter)
	if err != nil {
		return nil, err
	}
	result := shared.NewPaginated(ToSupplierResponses(suppliers), total, filter.Page, filter.PageSize)
	return &result, nil
}

// UpdateSupplier updates name and contact details
func (s *SupplierService) UpdateSupplier(ctx context.Context, orgID, id uuid.UUID, req UpdateSupplierRequest) (*SupplierResponse, error) {
	supplier, err := s.supplierRepo.FindByIDForOrg(ctx, orgID, id)
	if err != nil {
		return nil, err
	}

	name := strings.TrimSpace(req.Name)
	if name == "" || len(name) > 200 {
		return nil, shared.NewDomainError("INVALID_NAME", "Name must be 1-200 characters")
	}
	supplier.Name = name
	if err := supplier.SetContact(req.Email, req.Phone, req.Address); err != nil {
		return nil, err
	}

	if err := s.supplierRepo.Save(ctx, supplier); err != nil {
		return nil, err
	}
	resp := ToSupplierResponse(supplier)
	return &resp, nil
}

// DeactivateSupplier hides the supplier from new purchase orders. Existing
// documents keep their snapshot of the supplier name.
func (s *SupplierService) DeactivateSupplier(ctx context.Context, orgID, id uuid.UUID) error {
	supplier, err := s.supplierRepo.FindByIDForOrg(ctx, orgID, id)
	if err != nil {
		return err
	}
	supplier.Deactivate()
	return s.supplierRepo.Save(ctx, supplier)
}

// CustomerService handles customer administration
type CustomerService struct {
	customerRepo partner.CustomerRepository
	logger       *zap.Logger
}

// NewCustomerService creates a new customer service
func NewCustomerService(customerRepo partner.CustomerRepository, logger *zap.Logger) *CustomerService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CustomerService{customerRepo: customerRepo, logger: logger}
}

// CreateCustomer creates a customer in the org
func (s *CustomerService) CreateCustomer(ctx context.Context, orgID uuid.UUID, req CreateCustomerRequest) (*CustomerResponse, error) {
	customer, err := partner.NewCustomer(orgID, req.Name)
	if err != nil {
		return nil, err
	}
	if err := customer.SetContact(req.Email, req.Phone, req.Address); err != nil {
		return nil, err
	}
	if err := s.customerRepo.Save(ctx, customer); err != nil {
		return nil, err
	}
	s.logger.Info("customer created",
		zap.String("org_id", orgID.String()),
		zap.String("customer_id", customer.ID.String()))
	resp := ToCustomerResponse(customer)
	return &resp, nil
}

// GetCustomer returns a single customer
func (s *CustomerService) GetCustomer(ctx context.Context, orgID, id uuid.UUID) (*CustomerResponse, error) {
	customer, err := s.customerRepo.FindByIDForOrg(ctx, orgID, id)
	if err != nil {
		return nil, err
	}
	resp := ToCustomerResponse(customer)
	return &resp, nil
}

// ListCustomers returns a paginated customer listing
func (s *CustomerService) ListCustomers(ctx context.Context, orgID uuid.UUID, filter shared.Filter) (*shared.Paginated[CustomerResponse], error) {
	customers, err := s.customerRepo.FindAllForOrg(ctx, orgID, filter)
	if err != nil {
		return nil, err
	}
	total, err := s.customerRepo.CountForOrg(ctx, orgID, filter)
	if err != nil {
		return nil, err
	}
	result := shared.NewPaginated(ToCustomerResponses(customers), total, filter.Page, filter.PageSize)
	return &result, nil
}

// UpdateCustomer updates name and contact details
func (s *CustomerService) UpdateCustomer(ctx context.Context, orgID, id uuid.UUID, req UpdateCustomerRequest) (*CustomerResponse, error) {
	customer, err := s.customerRepo.FindByIDForOrg(ctx, orgID, id)
	if err != nil {
		return nil, err
	}

	name := strings.TrimSpace(req.Name)
	if name == "" || len(name) > 200 {
		return nil, shared.NewDomainError("INVALID_NAME", "Name must be 1-200 characters")
	}
	customer.Name = name
	if err := customer.SetContact(req.Email, req.Phone, req.Address); err != nil {
		return nil, err
	}

	if err := s.customerRepo.Save(ctx, customer); err != nil {
		return nil, err
	}
	resp := ToCustomerResponse(customer)
	return &resp, nil
}

// DeactivateCustomer hides the customer from new sales orders
func (s *CustomerService) DeactivateCustomer(ctx context.Context, orgID, id uuid.UUID) error {
	customer, err := s.customerRepo.FindByIDForOrg(ctx, orgID, id)
	if err != nil {
		return err
	}
	customer.Deactivate()
	return s.customerRepo.Save(ctx, customer)
}
