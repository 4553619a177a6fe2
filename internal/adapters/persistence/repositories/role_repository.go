package repositories

import (
	"context"

	"libapp/internal/adapters/persistence/models"

	"gorm.io/gorm"
)

// roleRepository implements RoleRepository interface
type roleRepository struct {
	db *gorm.DB
}

// NewRoleRepository creates a new role repository
func NewRoleRepository(db *gorm.DB) RoleRepository {
	return &roleRepository{db: db}
}

// Create creates a new role
func (r *roleRepository) Create(ctx context.Context, role *models.Role) error {
	return r.db.WithContext(ctx).Create(role).Error
}

// GetByNormalizedName gets a role by its normalized name
func (r *roleRepository) GetByNormalizedName(ctx context.Context, normalizedName string) (*models.Role, error) {
	var role models.Role
	err := r.db.WithContext(ctx).Where("normalized_name = ?", normalizedName).First(&role).Error
	if err != nil {
		return nil, err
	}
	return &role, nil
}

// List lists all roles
func (r *roleRepository) List(ctx context.Context) ([]*models.Role, error) {
	var roles []*models.Role
	err := r.db.WithContext(ctx).Order("name").Find(&roles).Error
	return roles, err
}

// AddCustomer assigns a role to a customer
func (r *roleRepository) AddCustomer(ctx context.Context, customerID, roleID string) error {
	return r.db.WithContext(ctx).Create(&models.CustomerRole{CustomerID: customerID, RoleID: roleID}).Error
}

// HasCustomer checks if a customer holds a role
func (r *roleRepository) HasCustomer(ctx context.Context, customerID, roleID string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.CustomerRole{}).
		Where("customer_id = ? AND role_id = ?", customerID, roleID).
		Count(&count).Error
	return count > 0, err
}

// ListByCustomer lists roles assigned to a customer
func (r *roleRepository) ListByCustomer(ctx context.Context, customerID string) ([]*models.Role, error) {
	var roles []*models.Role
	err := r.db.WithContext(ctx).
		Joins("JOIN customer_roles ON customer_roles.role_id = roles.id").
		Where("customer_roles.customer_id = ?", customerID).
		Order("roles.name").
		Find(&roles).Error
	return roles, err
}
