package repositories

import (
	"context"
	"fmt"
	"sync"

	"libapp/internal/adapters/persistence/models"
	"libapp/internal/core/domain"

	"gorm.io/gorm"
)

// SeedStore stages baseline rows in memory and writes them in one transaction.
type SeedStore struct {
	db *gorm.DB

	mu              sync.Mutex
	membershipTypes []models.MembershipType
	genres          []models.Genre
	books           []models.Book
}

// NewSeedStore creates a new seed store
func NewSeedStore(db *gorm.DB) *SeedStore {
	return &SeedStore{db: db}
}

// IsEmpty reports whether a collection holds no rows at all.
// Soft-deleted rows count as present.
func (s *SeedStore) IsEmpty(ctx context.Context, collection domain.Collection) (bool, error) {
	switch collection {
	case domain.CollectionMembershipTypes,
		domain.CollectionRoles,
		domain.CollectionCustomers,
		domain.CollectionGenres,
		domain.CollectionBooks:
	default:
		return false, fmt.Errorf("%w: %q", domain.ErrUnknownCollection, collection)
	}

	var count int64
	if err := s.db.WithContext(ctx).Table(string(collection)).Limit(1).Count(&count).Error; err != nil {
		return false, fmt.Errorf("count %s: %w", collection, err)
	}
	return count == 0, nil
}

// AddMembershipTypes stages membership tiers for the next SaveChanges
func (s *SeedStore) AddMembershipTypes(rows ...models.MembershipType) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.membershipTypes = append(s.membershipTypes, rows...)
}

// AddGenres stages genres for the next SaveChanges
func (s *SeedStore) AddGenres(rows ...models.Genre) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.genres = append(s.genres, rows...)
}

// AddBooks stages books for the next SaveChanges
func (s *SeedStore) AddBooks(rows ...models.Book) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.books = append(s.books, rows...)
}

// Pending returns the number of staged rows
func (s *SeedStore) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.membershipTypes) + len(s.genres) + len(s.books)
}

// Discard drops every staged row without writing it
func (s *SeedStore) Discard() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reset()
}

func (s *SeedStore) reset() {
	s.membershipTypes = nil
	s.genres = nil
	s.books = nil
}

// SaveChanges writes every staged row in one transaction, membership types
// first, then genres, then books. The stage is cleared whether or not the
// transaction commits, so a failed batch is never replayed.
func (s *SeedStore) SaveChanges(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	membershipTypes := s.membershipTypes
	genres := s.genres
	books := s.books
	s.reset()

	if len(membershipTypes)+len(genres)+len(books) == 0 {
		return nil
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if len(membershipTypes) > 0 {
			if err := tx.Create(&membershipTypes).Error; err != nil {
				return fmt.Errorf("insert membership types: %w", err)
			}
		}
		if len(genres) > 0 {
			if err := tx.Create(&genres).Error; err != nil {
				return fmt.Errorf("insert genres: %w", err)
			}
		}
		if len(books) > 0 {
			if err := tx.Omit("Genre").Create(&books).Error; err != nil {
				return fmt.Errorf("insert books: %w", err)
			}
		}
		return nil
	})
	return err
}
