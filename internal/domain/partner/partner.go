package partner

import (
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/stockflows/backend/internal/domain/shared"
)

var partnerEmailPattern = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

// Supplier is a vendor the org purchases from
type Supplier struct {
	shared.OrgAggregateRoot
	Name     string `gorm:"type:varchar(200);not null"`
	Email    string `gorm:"type:varchar(200)"`
	Phone    string `gorm:"type:varchar(50)"`
	Address  string `gorm:"type:text"`
	IsActive bool   `gorm:"not null;default:true"`
}

// TableName returns the table name for GORM
func (Supplier) TableName() string {
	return "suppliers"
}

// NewSupplier creates a new active supplier
func NewSupplier(orgID uuid.UUID, name string) (*Supplier, error) {
	if err := validatePartnerName(name); err != nil {
		return nil, err
	}
	return &Supplier{
		OrgAggregateRoot: shared.NewOrgAggregateRoot(orgID),
		Name:             strings.TrimSpace(name),
		IsActive:         true,
	}, nil
}

// SetContact sets contact details
func (s *Supplier) SetContact(email, phone, address string) error {
	if email != "" && !partnerEmailPattern.MatchString(email) {
		return shared.NewDomainError("INVALID_EMAIL", "Email address is invalid")
	}
	s.Email = strings.ToLower(email)
	s.Phone = phone
	s.Address = address
	s.UpdatedAt = time.Now()
	s.IncrementVersion()
	return nil
}

// Deactivate hides the supplier from new orders
func (s *Supplier) Deactivate() {
	s.IsActive = false
	s.UpdatedAt = time.Now()
	s.IncrementVersion()
}

// Customer is a buyer the org sells to
type Customer struct {
	shared.OrgAggregateRoot
	Name     string `gorm:"type:varchar(200);not null"`
	Email    string `gorm:"type:varchar(200)"`
	Phone    string `gorm:"type:varchar(50)"`
	Address  string `gorm:"type:text"`
	IsActive bool   `gorm:"not null;default:true"`
}

// TableName returns the table name for GORM
func (Customer) TableName() string {
	return "customers"
}

// NewCustomer creates a new active customer
func NewCustomer(orgID uuid.UUID, name string) (*Customer, error) {
	if err := validatePartnerName(name); err != nil {
		return nil, err
	}
	return &Customer{
		OrgAggregateRoot: shared.NewOrgAggregateRoot(orgID),
		Name:             strings.TrimSpace(name),
		IsActive:         true,
	}, nil
}

// SetContact sets contact details
func (c *Customer) SetContact(email, phone, address string) error {
	if email != "" && !partnerEmailPattern.MatchString(email) {
		return shared.NewDomainError("INVALID_EMAIL", "Email address is invalid")
	}
	c.Email = strings.ToLower(email)
	c.Phone = phone
	c.Address = address
	c.UpdatedAt = time.Now()
	c.IncrementVersion()
	return nil
}

// Deactivate hides the customer from new orders
func (c *Customer) Deactivate() {
	c.IsActive = false
	c.UpdatedAt = time.Now()
	c.IncrementVersion()
}

func validatePartnerName(name string) error {
	name = strings.TrimSpace(name)
	if name == "" || len(name) > 200 {
		return shared.NewDomainError("INVALID_NAME", "Name must be 1-200 characters")
	}
	return nil
}
