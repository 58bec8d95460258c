package identity

import (
	"context"

	"github.com/google/uuid"
	"github.com/stockflows/backend/internal/domain/shared"
)

// OrgRepository persists orgs
type OrgRepository interface {
	shared.Repository[Org]
	FindByCode(ctx context.Context, code string) (*Org, error)
}

// BranchRepository persists branches
type BranchRepository interface {
	shared.OrgRepository[Branch]
	FindByCodeForOrg(ctx context.Context, orgID uuid.UUID, code string) (*Branch, error)
}

// UserRepository persists users
type UserRepository interface {
	shared.OrgRepository[User]
	FindByEmailForOrg(ctx context.Context, orgID uuid.UUID, email string) (*User, error)
	// FindByEmail looks a user up across orgs, for login before org context exists
	FindByEmail(ctx context.Context, email string) (*User, error)
}
