package repositories

import (
	"context"

	"libapp/internal/adapters/persistence/models"

	"gorm.io/gorm"
)

// MembershipTypeRepository handles membership type data access
type MembershipTypeRepository struct {
	db *gorm.DB
}

// NewMembershipTypeRepository creates a new membership type repository
func NewMembershipTypeRepository(db *gorm.DB) *MembershipTypeRepository {
	return &MembershipTypeRepository{db: db}
}

// GetByID gets a membership type by ID
func (r *MembershipTypeRepository) GetByID(ctx context.Context, id uint) (*models.MembershipType, error) {
	var membershipType models.MembershipType
	if err := r.db.WithContext(ctx).First(&membershipType, id).Error; err != nil {
		return nil, err
	}
	return &membershipType, nil
}

// List lists all membership types ordered by ID
func (r *MembershipTypeRepository) List(ctx context.Context) ([]*models.MembershipType, error) {
	var membershipTypes []*models.MembershipType
	err := r.db.WithContext(ctx).Order("id").Find(&membershipTypes).Error
	return membershipTypes, err
}

// GenreRepository handles genre data access
type GenreRepository struct {
	db *gorm.DB
}

// NewGenreRepository creates a new genre repository
func NewGenreRepository(db *gorm.DB) *GenreRepository {
	return &GenreRepository{db: db}
}

// List lists all genres ordered by ID
func (r *GenreRepository) List(ctx context.Context) ([]*models.Genre, error) {
	var genres []*models.Genre
	err := r.db.WithContext(ctx).Order("id").Find(&genres).Error
	return genres, err
}

// BookRepository handles book data access
type BookRepository struct {
	db *gorm.DB
}

// NewBookRepository creates a new book repository
func NewBookRepository(db *gorm.DB) *BookRepository {
	return &BookRepository{db: db}
}

// GetByID gets a book by ID with its genre
func (r *BookRepository) GetByID(ctx context.Context, id uint) (*models.Book, error) {
	var book models.Book
	if err := r.db.WithContext(ctx).Preload("Genre").First(&book, id).Error; err != nil {
		return nil, err
	}
	return &book, nil
}

// List lists books with pagination, optionally filtered by genre
func (r *BookRepository) List(ctx context.Context, genreID uint, offset, limit int) ([]*models.Book, int64, error) {
	var books []*models.Book
	var total int64

	query := r.db.WithContext(ctx).Model(&models.Book{})
	if genreID > 0 {
		query = query.Where("genre_id = ?", genreID)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if err := query.
		Preload("Genre").
		Order("id").
		Offset(offset).
		Limit(limit).
		Find(&books).Error; err != nil {
		return nil, 0, err
	}

	return books, total, nil
}
