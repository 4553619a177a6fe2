package repositories

import (
	"context"

	"libapp/internal/adapters/persistence/models"

	"gorm.io/gorm"
)

// customerRepository implements CustomerRepository interface
type customerRepository struct {
	db *gorm.DB
}

// NewCustomerRepository creates a new customer repository
func NewCustomerRepository(db *gorm.DB) CustomerRepository {
	return &customerRepository{db: db}
}

// Create creates a new customer
func (r *customerRepository) Create(ctx context.Context, customer *models.Customer) error {
	return r.db.WithContext(ctx).Omit("Roles").Create(customer).Error
}

// GetByID gets a customer by ID with roles loaded
func (r *customerRepository) GetByID(ctx context.Context, id string) (*models.Customer, error) {
	return r.first(ctx, "id = ?", id)
}

// GetByNormalizedEmail gets a customer by normalized email
func (r *customerRepository) GetByNormalizedEmail(ctx context.Context, normalizedEmail string) (*models.Customer, error) {
	return r.first(ctx, "normalized_email = ?", normalizedEmail)
}

// GetByNormalizedUserName gets a customer by normalized user name
func (r *customerRepository) GetByNormalizedUserName(ctx context.Context, normalizedUserName string) (*models.Customer, error) {
	return r.first(ctx, "normalized_user_name = ?", normalizedUserName)
}

func (r *customerRepository) first(ctx context.Context, query string, arg interface{}) (*models.Customer, error) {
	var customer models.Customer
	err := r.db.WithContext(ctx).Preload("Roles").Where(query, arg).First(&customer).Error
	if err != nil {
		return nil, err
	}
	return &customer, nil
}

// Delete soft deletes a customer
func (r *customerRepository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Delete(&models.Customer{}, "id = ?", id).Error
}

// List lists customers with pagination
func (r *customerRepository) List(ctx context.Context, offset, limit int) ([]*models.Customer, int64, error) {
	var customers []*models.Customer
	var total int64

	if err := r.db.WithContext(ctx).Model(&models.Customer{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if err := r.db.WithContext(ctx).
		Preload("Roles").
		Order("created_at, id").
		Offset(offset).
		Limit(limit).
		Find(&customers).Error; err != nil {
		return nil, 0, err
	}

	return customers, total, nil
}

// ExistsByNormalizedEmail checks if email exists
func (r *customerRepository) ExistsByNormalizedEmail(ctx context.Context, normalizedEmail string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Customer{}).Where("normalized_email = ?", normalizedEmail).Count(&count).Error
	return count > 0, err
}

// ExistsByNormalizedUserName checks if user name exists
func (r *customerRepository) ExistsByNormalizedUserName(ctx context.Context, normalizedUserName string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Customer{}).Where("normalized_user_name = ?", normalizedUserName).Count(&count).Error
	return count > 0, err
}
