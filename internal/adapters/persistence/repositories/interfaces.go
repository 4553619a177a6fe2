package repositories

import (
	"context"

	"libapp/internal/adapters/persistence/models"
)

// CustomerRepository defines customer repository interface
type CustomerRepository interface {
	Create(ctx context.Context, customer *models.Customer) error
	GetByID(ctx context.Context, id string) (*models.Customer, error)
	GetByNormalizedEmail(ctx context.Context, normalizedEmail string) (*models.Customer, error)
	GetByNormalizedUserName(ctx context.Context, normalizedUserName string) (*models.Customer, error)
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, offset, limit int) ([]*models.Customer, int64, error)
	ExistsByNormalizedEmail(ctx context.Context, normalizedEmail string) (bool, error)
	ExistsByNormalizedUserName(ctx context.Context, normalizedUserName string) (bool, error)
}

// RoleRepository defines role repository interface
type RoleRepository interface {
	Create(ctx context.Context, role *models.Role) error
	GetByNormalizedName(ctx context.Context, normalizedName string) (*models.Role, error)
	List(ctx context.Context) ([]*models.Role, error)
	AddCustomer(ctx context.Context, customerID, roleID string) error
	HasCustomer(ctx context.Context, customerID, roleID string) (bool, error)
	ListByCustomer(ctx context.Context, customerID string) ([]*models.Role, error)
}

// RefreshTokenRepository defines refresh token repository interface
type RefreshTokenRepository interface {
	Create(ctx context.Context, token *models.RefreshToken) error
	GetByTokenHash(ctx context.Context, tokenHash string) (*models.RefreshToken, error)
	Revoke(ctx context.Context, id uint) error
	RevokeByTokenHash(ctx context.Context, tokenHash string) error
	RevokeAllByCustomerID(ctx context.Context, customerID string) error
	DeleteExpired(ctx context.Context) (int64, error)
	CountActiveByCustomerID(ctx context.Context, customerID string) (int64, error)
}
