package services

import (
	"context"
	"errors"

	"libapp/internal/adapters/persistence/models"
	"libapp/internal/adapters/persistence/repositories"
	"libapp/internal/core/domain"
	"libapp/internal/pkg/pagination"

	"gorm.io/gorm"
)

// CatalogService serves the read side of the seeded lookup and catalog tables
type CatalogService struct {
	membershipTypeRepo *repositories.MembershipTypeRepository
	genreRepo          *repositories.GenreRepository
	bookRepo           *repositories.BookRepository
}

// NewCatalogService creates a new catalog service
func NewCatalogService(
	membershipTypeRepo *repositories.MembershipTypeRepository,
	genreRepo *repositories.GenreRepository,
	bookRepo *repositories.BookRepository,
) *CatalogService {
	return &CatalogService{
		membershipTypeRepo: membershipTypeRepo,
		genreRepo:          genreRepo,
		bookRepo:           bookRepo,
	}
}

// ListBooksInput represents list books input
type ListBooksInput struct {
	GenreID uint
	Page    int
	Limit   int
}

// ListMembershipTypes lists all membership tiers
func (s *CatalogService) ListMembershipTypes(ctx context.Context) ([]*models.MembershipType, error) {
	return s.membershipTypeRepo.List(ctx)
}

// ListGenres lists all genres
func (s *CatalogService) ListGenres(ctx context.Context) ([]*models.Genre, error) {
	return s.genreRepo.List(ctx)
}

// ListBooks lists books with pagination
func (s *CatalogService) ListBooks(ctx context.Context, input *ListBooksInput) ([]*models.Book, *pagination.Meta, error) {
	params := pagination.New(input.Page, input.Limit)

	books, total, err := s.bookRepo.List(ctx, input.GenreID, params.Offset, params.Limit)
	if err != nil {
		return nil, nil, err
	}
	return books, pagination.GetMeta(params, total), nil
}

// GetBook gets a book by ID
func (s *CatalogService) GetBook(ctx context.Context, id uint) (*models.Book, error) {
	book, err := s.bookRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrBookNotFound
		}
		return nil, err
	}
	return book, nil
}
