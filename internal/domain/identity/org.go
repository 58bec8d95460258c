package identity

import (
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/stockflows/backend/internal/domain/shared"
)

// OrgStatus represents the status of an organization
type OrgStatus string

const (
	OrgStatusActive    OrgStatus = "active"
	OrgStatusInactive  OrgStatus = "inactive"
	OrgStatusSuspended OrgStatus = "suspended"
)

// Org represents a tenant organization. All business data is scoped to one org.
type Org struct {
	shared.BaseAggregateRoot
	Code         string    `gorm:"type:varchar(50);not null;uniqueIndex"`
	Name         string    `gorm:"type:varchar(200);not null"`
	Status       OrgStatus `gorm:"type:varchar(20);not null;default:'active'"`
	ContactName  string    `gorm:"type:varchar(100)"`
	ContactPhone string    `gorm:"type:varchar(50)"`
	ContactEmail string    `gorm:"type:varchar(200)"`
	Address      string    `gorm:"type:text"`
	Currency     string    `gorm:"type:varchar(3);not null;default:'USD'"`
	Timezone     string    `gorm:"type:varchar(64);not null;default:'UTC'"`
}

// TableName returns the table name for GORM
func (Org) TableName() string {
	return "orgs"
}

var orgCodePattern = regexp.MustCompile(`^[A-Z0-9][A-Z0-9-]{1,49}$`)

// NewOrg creates a new organization
func NewOrg(code, name string) (*Org, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if !orgCodePattern.MatchString(code) {
		return nil, shared.NewDomainError("INVALID_ORG_CODE", "Org code must be 2-50 uppercase letters, digits or dashes")
	}
	name = strings.TrimSpace(name)
	if name == "" || len(name) > 200 {
		return nil, shared.NewDomainError("INVALID_ORG_NAME", "Org name must be 1-200 characters")
	}

	return &Org{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Code:              code,
		Name:              name,
		Status:            OrgStatusActive,
		Currency:          "USD",
		Timezone:          "UTC",
	}, nil
}

// IsActive reports whether the org may be used for requests
func (o *Org) IsActive() bool {
	return o.Status == OrgStatusActive
}

// Suspend suspends the organization
func (o *Org) Suspend() error {
	if o.Status == OrgStatusSuspended {
		return shared.NewDomainError("ALREADY_SUSPENDED", "Org is already suspended")
	}
	o.Status = OrgStatusSuspended
	o.UpdatedAt = time.Now()
	o.IncrementVersion()
	return nil
}

// Activate re-activates the organization
func (o *Org) Activate() {
	o.Status = OrgStatusActive
	o.UpdatedAt = time.Now()
	o.IncrementVersion()
}

// Branch is a physical location of an org (store, warehouse). Stock is held per branch.
type Branch struct {
	shared.OrgAggregateRoot
	Code     string `gorm:"type:varchar(50);not null;index:idx_branches_org_code,unique"`
	Name     string `gorm:"type:varchar(200);not null"`
	Address  string `gorm:"type:text"`
	Phone    string `gorm:"type:varchar(50)"`
	IsActive bool   `gorm:"not null;default:true"`
}

// TableName returns the table name for GORM
func (Branch) TableName() string {
	return "branches"
}

// NewBranch creates a new branch under an org
func NewBranch(orgID uuid.UUID, code, name string) (*Branch, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" || len(code) > 50 {
		return nil, shared.NewDomainError("INVALID_BRANCH_CODE", "Branch code must be 1-50 characters")
	}
	name = strings.TrimSpace(name)
	if name == "" || len(name) > 200 {
		return nil, shared.NewDomainError("INVALID_BRANCH_NAME", "Branch name must be 1-200 characters")
	}

	return &Branch{
		OrgAggregateRoot: shared.NewOrgAggregateRoot(orgID),
		Code:             code,
		Name:             name,
		IsActive:         true,
	}, nil
}

// Deactivate marks the branch as inactive
func (b *Branch) Deactivate() {
	b.IsActive = false
	b.UpdatedAt = time.Now()
	b.IncrementVersion()
}
