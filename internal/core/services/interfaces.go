package services

import (
	"context"

	"libapp/internal/adapters/persistence/models"
	"libapp/internal/core/domain"
)

// Note: IdentityService implementation is in identity_service.go
// Note: SeedService implementation is in seed_service.go

// SeedStore is the unit of work the seeder writes lookup and catalog rows through
type SeedStore interface {
	IsEmpty(ctx context.Context, collection domain.Collection) (bool, error)
	AddMembershipTypes(rows ...models.MembershipType)
	AddGenres(rows ...models.Genre)
	AddBooks(rows ...models.Book)
	SaveChanges(ctx context.Context) error
	Discard()
}

// AccountManager creates roles and accounts. It persists on its own,
// outside any SeedStore transaction.
type AccountManager interface {
	CreateRole(ctx context.Context, name string) (*models.Role, error)
	RoleExists(ctx context.Context, name string) (bool, error)
	CreateAccount(ctx context.Context, input *CreateAccountInput) (*models.Customer, error)
	AddToRole(ctx context.Context, customer *models.Customer, roleName string) error
}

// CreateAccountInput represents account creation input
type CreateAccountInput struct {
	Name             string `json:"name" validate:"required,max=255"`
	Email            string `json:"email" validate:"required,email"`
	UserName         string `json:"user_name" validate:"omitempty,max=256"` // defaults to Email when empty
	Password         string `json:"password" validate:"required"`
	MembershipTypeID uint   `json:"membership_type_id" validate:"required"`
	EmailConfirmed   bool   `json:"email_confirmed"`
}
