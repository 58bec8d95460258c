package identity

import (
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/stockflows/backend/internal/domain/shared"
	"golang.org/x/crypto/bcrypt"
)

const bcryptCost = 12

var emailPattern = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

// User is a person who can sign in. Users belong to one org; staff and branch
// managers are additionally pinned to a branch.
type User struct {
	shared.OrgAggregateRoot
	Email        string `gorm:"type:varchar(200);not null;index:idx_users_org_email,unique"`
	PasswordHash string `gorm:"type:varchar(100);not null"`
	Name         string `gorm:"type:varchar(200);not null"`
	Role         Role   `gorm:"type:varchar(30);not null"`
	BranchID     *uuid.UUID
	IsActive     bool `gorm:"not null;default:true"`
	LastLoginAt  *time.Time
}

// TableName returns the table name for GORM
func (User) TableName() string {
	return "users"
}

// NewUser creates a new active user with a hashed password
func NewUser(orgID uuid.UUID, email, password, name string, role Role) (*User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if !emailPattern.MatchString(email) {
		return nil, shared.NewDomainError("INVALID_EMAIL", "Email address is invalid")
	}
	if err := validatePassword(password); err != nil {
		return nil, err
	}
	name = strings.TrimSpace(name)
	if name == "" || len(name) > 200 {
		return nil, shared.NewDomainError("INVALID_NAME", "Name must be 1-200 characters")
	}
	if !role.IsValid() {
		return nil, shared.NewDomainError("INVALID_ROLE", "Unknown role")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return nil, shared.NewDomainError("PASSWORD_HASH_ERROR", "Failed to hash password")
	}

	user := &User{
		OrgAggregateRoot: shared.NewOrgAggregateRoot(orgID),
		Email:            email,
		PasswordHash:     string(hash),
		Name:             name,
		Role:             role,
		IsActive:         true,
	}
	user.AddDomainEvent(NewUserCreatedEvent(user))
	return user, nil
}

func validatePassword(password string) error {
	if len(password) < 8 {
		return shared.NewDomainError("INVALID_PASSWORD", "Password must be at least 8 characters")
	}
	if len(password) > 72 {
		return shared.NewDomainError("INVALID_PASSWORD", "Password cannot exceed 72 characters")
	}
	return nil
}

// VerifyPassword reports whether the provided password matches
func (u *User) VerifyPassword(password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) == nil
}

// SetPassword replaces the password hash (admin reset)
func (u *User) SetPassword(password string) error {
	if err := validatePassword(password); err != nil {
		return err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return shared.NewDomainError("PASSWORD_HASH_ERROR", "Failed to hash password")
	}
	u.PasswordHash = string(hash)
	u.UpdatedAt = time.Now()
	u.IncrementVersion()
	return nil
}

// ChangeRole changes the user's role
func (u *User) ChangeRole(role Role) error {
	if !role.IsValid() {
		return shared.NewDomainError("INVALID_ROLE", "Unknown role")
	}
	u.Role = role
	u.UpdatedAt = time.Now()
	u.IncrementVersion()
	return nil
}

// AssignBranch pins the user to a branch. Platform and org admins may roam;
// staff and branch managers operate within their assigned branch.
func (u *User) AssignBranch(branchID *uuid.UUID) {
	u.BranchID = branchID
	u.UpdatedAt = time.Now()
	u.IncrementVersion()
}

// HasPermission reports whether the user's role grants the permission
func (u *User) HasPermission(perm Permission) bool {
	return RoleHasPermission(u.Role, perm)
}

// RecordLogin stamps the last login time
func (u *User) RecordLogin(at time.Time) {
	u.LastLoginAt = &at
	u.UpdatedAt = at
}

// Deactivate disables sign-in for the user
func (u *User) Deactivate() error {
	if !u.IsActive {
		return shared.NewDomainError("ALREADY_INACTIVE", "User is already deactivated")
	}
	u.IsActive = false
	u.UpdatedAt = time.Now()
	u.IncrementVersion()
	u.AddDomainEvent(NewUserDeactivatedEvent(u))
	return nil
}

// Activate re-enables sign-in for the user
func (u *User) Activate() {
	u.IsActive = true
	u.UpdatedAt = time.Now()
	u.IncrementVersion()
}
