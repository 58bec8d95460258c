package identity

import (
	"github.com/stockflows/backend/internal/domain/shared"
)

// Aggregate type constants
const (
	AggregateTypeUser = "User"
)

// Identity domain event types
const (
	EventTypeUserCreated     = "UserCreated"
	EventTypeUserDeactivated = "UserDeactivated"
)

// UserCreatedEvent is published when a user is created
type UserCreatedEvent struct {
	shared.BaseDomainEvent
	Email string `json:"email"`
	Role  Role   `json:"role"`
}

// NewUserCreatedEvent creates a new UserCreatedEvent
func NewUserCreatedEvent(user *User) *UserCreatedEvent {
	return &UserCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeUserCreated, AggregateTypeUser, user.ID, user.OrgID),
		Email:           user.Email,
		Role:            user.Role,
	}
}

// UserDeactivatedEvent is published when a user is deactivated
type UserDeactivatedEvent struct {
	shared.BaseDomainEvent
	Email string `json:"email"`
}

// NewUserDeactivatedEvent creates a new UserDeactivatedEvent
func NewUserDeactivatedEvent(user *User) *UserDeactivatedEvent {
	return &UserDeactivatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeUserDeactivated, AggregateTypeUser, user.ID, user.OrgID),
		Email:           user.Email,
	}
}
