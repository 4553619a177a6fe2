package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"libapp/internal/adapters/persistence/repositories"
	"libapp/internal/config"
	"libapp/internal/core/domain"
	"libapp/internal/fixtures"
	"libapp/internal/pkg/logger"

	"gorm.io/gorm"
)

// SeedService populates an empty database with the baseline fixture set.
// Every collection is seeded only when it holds no rows, so running it
// again against a populated database changes nothing.
type SeedService struct {
	store    SeedStore
	accounts AccountManager
	set      *fixtures.Set
	log      *logger.Logger
	now      func() time.Time

	mu sync.Mutex
}

// SeedOption customizes a SeedService
type SeedOption func(*SeedService)

// WithClock sets the clock used to stamp books' date added
func WithClock(now func() time.Time) SeedOption {
	return func(s *SeedService) {
		s.now = now
	}
}

// NewSeedService creates a new seed service
func NewSeedService(store SeedStore, accounts AccountManager, set *fixtures.Set, log *logger.Logger, opts ...SeedOption) *SeedService {
	s := &SeedService{
		store:    store,
		accounts: accounts,
		set:      set,
		log:      log,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// NewSeeder wires a SeedService over db with a gorm seed store and the identity service
func NewSeeder(db *gorm.DB, cfg *config.Config, set *fixtures.Set, log *logger.Logger) *SeedService {
	identity := NewIdentityService(
		repositories.NewCustomerRepository(db),
		repositories.NewRoleRepository(db),
		repositories.NewRefreshTokenRepository(db),
		repositories.NewMembershipTypeRepository(db),
		cfg,
		log,
	)
	return NewSeedService(repositories.NewSeedStore(db), identity, set, log)
}

// SeedReport lists which collections a run populated and which it left alone
type SeedReport struct {
	Seeded  []domain.Collection `json:"seeded"`
	Skipped []domain.Collection `json:"skipped"`
}

// WasSeeded reports whether the run populated the collection
func (r *SeedReport) WasSeeded(c domain.Collection) bool {
	for _, s := range r.Seeded {
		if s == c {
			return true
		}
	}
	return false
}

// Initialize runs the seed steps in dependency order and commits staged rows.
// The first failure aborts the run and discards anything still staged; rows
// already committed stay in place.
func (s *SeedService) Initialize(ctx context.Context) (_ *SeedReport, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	defer func() {
		if err != nil {
			s.store.Discard()
		}
	}()

	steps := []struct {
		collection domain.Collection
		run        func(context.Context) error
	}{
		{domain.CollectionMembershipTypes, s.seedMembershipTypes},
		{domain.CollectionRoles, s.seedRoles},
		{domain.CollectionCustomers, s.seedCustomers},
		{domain.CollectionGenres, s.seedGenres},
		{domain.CollectionBooks, s.seedBooks},
	}

	report := &SeedReport{}
	for _, step := range steps {
		stepCtx := s.log.WithField(ctx, "collection", string(step.collection))

		empty, err := s.store.IsEmpty(ctx, step.collection)
		if err != nil {
			return report, fmt.Errorf("check %s: %w", step.collection, err)
		}
		if !empty {
			s.log.Debug(stepCtx, "collection not empty, skipping")
			report.Skipped = append(report.Skipped, step.collection)
			continue
		}

		if err := step.run(ctx); err != nil {
			s.log.Error(stepCtx, "seed step failed", err)
			return report, fmt.Errorf("seed %s: %w", step.collection, err)
		}
		s.log.Info(stepCtx, "collection seeded")
		report.Seeded = append(report.Seeded, step.collection)
	}

	if err := s.store.SaveChanges(ctx); err != nil {
		s.log.Error(ctx, "saving seed data failed", err)
		return report, fmt.Errorf("save changes: %w", err)
	}

	s.log.Info(s.log.WithFields(ctx, map[string]any{
		"seeded":  len(report.Seeded),
		"skipped": len(report.Skipped),
	}), "seed complete")
	return report, nil
}

// Customers reference membership types, so these are committed right away.
func (s *SeedService) seedMembershipTypes(ctx context.Context) error {
	s.store.AddMembershipTypes(s.set.MembershipTypeModels()...)
	return s.store.SaveChanges(ctx)
}

func (s *SeedService) seedRoles(ctx context.Context) error {
	for _, name := range s.set.Roles {
		if _, err := s.accounts.CreateRole(ctx, name); err != nil {
			return fmt.Errorf("create role %s: %w", name, err)
		}
	}
	return nil
}

func (s *SeedService) seedCustomers(ctx context.Context) error {
	for _, c := range s.set.Customers {
		exists, err := s.accounts.RoleExists(ctx, c.Role)
		if err != nil {
			return fmt.Errorf("%s: %w", c.Email, err)
		}
		if !exists {
			return fmt.Errorf("%s: %w: %s", c.Email, domain.ErrRoleMissing, c.Role)
		}

		customer, err := s.accounts.CreateAccount(ctx, &CreateAccountInput{
			Name:             c.Name,
			Email:            c.Email,
			UserName:         c.Email,
			Password:         c.Password,
			MembershipTypeID: c.MembershipTypeID,
			EmailConfirmed:   true,
		})
		if err != nil {
			return fmt.Errorf("create account %s: %w", c.Email, err)
		}

		if err := s.accounts.AddToRole(ctx, customer, c.Role); err != nil {
			return fmt.Errorf("add %s to role %s: %w", c.Email, c.Role, err)
		}
	}
	return nil
}

func (s *SeedService) seedGenres(_ context.Context) error {
	s.store.AddGenres(s.set.GenreModels()...)
	return nil
}

func (s *SeedService) seedBooks(_ context.Context) error {
	s.store.AddBooks(s.set.BookModels(s.now())...)
	return nil
}
