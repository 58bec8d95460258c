package partner

import (
	"time"

	"github.com/google/uuid"
	"github.com/stockflows/backend/internal/domain/partner"
)

// CreateSupplierRequest carries data for creating a supplier
type CreateSupplierRequest struct {
	Name    string `json:"name" binding:"required,max=200"`
	Email   string `json:"email" binding:"omitempty,email"`
	Phone   string `json:"phone" binding:"max=50"`
	Address string `json:"address"`
}

// UpdateSupplierRequest carries data for updating a supplier
type UpdateSupplierRequest struct {
	Name    string `json:"name" binding:"required,max=200"`
	Email   string `json:"email" binding:"omitempty,email"`
	Phone   string `json:"phone" binding:"max=50"`
	Address string `json:"address"`
}

// CreateCustomerRequest carries data for creating a customer
type CreateCustomerRequest struct {
	Name    string `json:"name" binding:"required,max=200"`
	Email   string `json:"email" binding:"omitempty,email"`
	Phone   string `json:"phone" binding:"max=50"`
	Address string `json:"address"`
}

// UpdateCustomerRequest carries data for updating a customer
type UpdateCustomerRequest struct {
	Name    string `json:"name" binding:"required,max=200"`
	Email   string `json:"email" binding:"omitempty,email"`
	Phone   string `json:"phone" binding:"max=50"`
	Address string `json:"address"`
}

// SupplierResponse is the supplier representation in API responses
type SupplierResponse struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email,omitempty"`
	Phone     string    `json:"phone,omitempty"`
	Address   string    `json:"address,omitempty"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// CustomerResponse is the customer representation in API responses
type CustomerResponse struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email,omitempty"`
	Phone     string    `json:"phone,omitempty"`
	Address   string    `json:"address,omitempty"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ToSupplierResponse converts a Supplier to SupplierResponse
func ToSupplierResponse(s *partner.Supplier) SupplierResponse {
	return SupplierResponse{
		ID:        s.ID,
		Name:      s.Name,
		Email:     s.Email,
		Phone:     s.Phone,
		Address:   s.Address,
		IsActive:  s.IsActive,
		CreatedAt: s.CreatedAt,
		UpdatedAt: s.UpdatedAt,
	}
}

// ToSupplierResponses converts a slice of suppliers
func ToSupplierResponses(suppliers []partner.Supplier) []SupplierResponse {
	out := make([]SupplierResponse, len(suppliers))
	for i := range suppliers {
		out[i] = ToSupplierResponse(&suppliers[i])
	}
	return out
}

// ToCustomerResponse converts a Customer to CustomerResponse
func ToCustomerResponse(c *partner.Customer) CustomerResponse {
	return CustomerResponse{
		ID:        c.ID,
		Name:      c.Name,
		Email:     c.Email,
		Phone:     c.Phone,
		Address:   c.Address,
		IsActive:  c.IsActive,
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}
}

// ToCustomerResponses converts a slice of customers
func ToCustomerResponses(customers []partner.Customer) []CustomerResponse {
	out := make([]CustomerResponse, len(customers))
	for i := range customers {
		out[i] = ToCustomerResponse(&customers[i])
	}
	return out
}
