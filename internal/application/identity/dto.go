package identity

import (
	"time"

	"github.com/google/uuid"
	"github.com/stockflows/backend/internal/domain/identity"
)

// LoginRequest carries sign-in credentials
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// SwitchOrgRequest selects another org for the session
type SwitchOrgRequest struct {
	OrgID uuid.UUID `json:"org_id" binding:"required"`
}

// SwitchBranchRequest selects another branch for the session
type SwitchBranchRequest struct {
	BranchID uuid.UUID `json:"branch_id" binding:"required"`
}

// CreateUserRequest carries data for creating a user
type CreateUserRequest struct {
	Email    string     `json:"email" binding:"required,email"`
	Password string     `json:"password" binding:"required,min=8,max=72"`
	Name     string     `json:"name" binding:"required,max=200"`
	Role     string     `json:"role" binding:"required"`
	BranchID *uuid.UUID `json:"branch_id"`
}

// UpdateUserRequest carries data for updating a user
type UpdateUserRequest struct {
	Name     string     `json:"name" binding:"required,max=200"`
	Role     string     `json:"role" binding:"required"`
	BranchID *uuid.UUID `json:"branch_id"`
}

// ResetPasswordRequest carries an admin password reset
type ResetPasswordRequest struct {
	Password string `json:"password" binding:"required,min=8,max=72"`
}

// CreateOrgRequest carries data for creating an org
type CreateOrgRequest struct {
	Code         string `json:"code" binding:"required,max=50"`
	Name         string `json:"name" binding:"required,max=200"`
	ContactName  string `json:"contact_name" binding:"max=100"`
	ContactPhone string `json:"contact_phone" binding:"max=50"`
	ContactEmail string `json:"contact_email" binding:"omitempty,email"`
	Address      string `json:"address"`
	Currency     string `json:"currency" binding:"omitempty,len=3"`
	Timezone     string `json:"timezone" binding:"max=64"`
}

// UpdateOrgRequest carries data for updating org contact details
type UpdateOrgRequest struct {
	Name         string `json:"name" binding:"required,max=200"`
	ContactName  string `json:"contact_name" binding:"max=100"`
	ContactPhone string `json:"contact_phone" binding:"max=50"`
	ContactEmail string `json:"contact_email" binding:"omitempty,email"`
	Address      string `json:"address"`
	Currency     string `json:"currency" binding:"omitempty,len=3"`
	Timezone     string `json:"timezone" binding:"max=64"`
}

// CreateBranchRequest carries data for creating a branch
type CreateBranchRequest struct {
	Code    string `json:"code" binding:"required,max=50"`
	Name    string `json:"name" binding:"required,max=200"`
	Address string `json:"address"`
	Phone   string `json:"phone" binding:"max=50"`
}

// UpdateBranchRequest carries data for updating a branch
type UpdateBranchRequest struct {
	Name    string `json:"name" binding:"required,max=200"`
	Address string `json:"address"`
	Phone   string `json:"phone" binding:"max=50"`
}

// UserResponse is the user representation returned to clients. The password
// hash never leaves the service layer.
type UserResponse struct {
	ID          uuid.UUID  `json:"id"`
	OrgID       uuid.UUID  `json:"org_id"`
	Email       string     `json:"email"`
	Name        string     `json:"name"`
	Role        string     `json:"role"`
	BranchID    *uuid.UUID `json:"branch_id,omitempty"`
	IsActive    bool       `json:"is_active"`
	LastLoginAt *time.Time `json:"last_login_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// OrgResponse is the org representation in API responses
type OrgResponse struct {
	ID           uuid.UUID `json:"id"`
	Code         string    `json:"code"`
	Name         string    `json:"name"`
	Status       string    `json:"status"`
	ContactName  string    `json:"contact_name,omitempty"`
	ContactPhone string    `json:"contact_phone,omitempty"`
	ContactEmail string    `json:"contact_email,omitempty"`
	Address      string    `json:"address,omitempty"`
	Currency     string    `json:"currency"`
	Timezone     string    `json:"timezone"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// BranchResponse is the branch representation in API responses
type BranchResponse struct {
	ID        uuid.UUID `json:"id"`
	OrgID     uuid.UUID `json:"org_id"`
	Code      string    `json:"code"`
	Name      string    `json:"name"`
	Address   string    `json:"address,omitempty"`
	Phone     string    `json:"phone,omitempty"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// SessionResponse is the session context returned from login and /auth/me
type SessionResponse struct {
	User        UserResponse `json:"user"`
	OrgID       uuid.UUID    `json:"org_id"`
	BranchID    *uuid.UUID   `json:"branch_id,omitempty"`
	Permissions []string     `json:"permissions"`
}

// ToUserResponse converts a User to UserResponse
func ToUserResponse(u *identity.User) UserResponse {
	return UserResponse{
		ID:          u.ID,
		OrgID:       u.OrgID,
		Email:       u.Email,
		Name:        u.Name,
		Role:        string(u.Role),
		BranchID:    u.BranchID,
		IsActive:    u.IsActive,
		LastLoginAt: u.LastLoginAt,
		CreatedAt:   u.CreatedAt,
		UpdatedAt:   u.UpdatedAt,
	}
}

// ToUserResponses converts a slice of users
func ToUserResponses(users []identity.User) []UserResponse {
	out := make([]UserResponse, len(users))
	for i := range users {
		out[i] = ToUserResponse(&users[i])
	}
	return out
}

// ToOrgResponse converts an Org to OrgResponse
func ToOrgResponse(o *identity.Org) OrgResponse {
	return OrgResponse{
		ID:           o.ID,
		Code:         o.Code,
		Name:         o.Name,
		Status:       string(o.Status),
		ContactName:  o.ContactName,
		ContactPhone: o.ContactPhone,
		ContactEmail: o.ContactEmail,
		Address:      o.Address,
		Currency:     o.Currency,
		Timezone:     o.Timezone,
		CreatedAt:    o.CreatedAt,
		UpdatedAt:    o.UpdatedAt,
	}
}

// ToOrgResponses converts a slice of orgs
func ToOrgResponses(orgs []identity.Org) []OrgResponse {
	out := make([]OrgResponse, len(orgs))
	for i := range orgs {
		out[i] = ToOrgResponse(&orgs[i])
	}
	return out
}

// ToBranchResponse converts a Branch to BranchResponse
func ToBranchResponse(b *identity.Branch) BranchResponse {
	return BranchResponse{
		ID:        b.ID,
		OrgID:     b.OrgID,
		Code:      b.Code,
		Name:      b.Name,
		Address:   b.Address,
		Phone:     b.Phone,
		IsActive:  b.IsActive,
		CreatedAt: b.CreatedAt,
		UpdatedAt: b.UpdatedAt,
	}
}

// ToBranchResponses converts a slice of branches
func ToBranchResponses(branches []identity.Branch) []BranchResponse {
	out := make([]BranchResponse, len(branches))
	for i := range branches {
		out[i] = ToBranchResponse(&branches[i])
	}
	return out
}

func permissionStrings(role identity.Role) []string {
	perms := identity.PermissionsForRole(role)
	out := make([]string, len(perms))
	for i, p := range perms {
		out[i] = string(p)
	}
	return out
}
