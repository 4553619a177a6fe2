package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"libapp/internal/adapters/persistence/models"
	"libapp/internal/adapters/persistence/repositories"
	"libapp/internal/core/domain"
	"libapp/internal/fixtures"
	"libapp/internal/pkg/logger"
	"libapp/internal/pkg/testdb"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"pgregory.net/rapid"
)

func defaultFixtures(t testing.TB) *fixtures.Set {
	t.Helper()
	set, err := fixtures.Default()
	require.NoError(t, err)
	return set
}

func newDBSeeder(t *testing.T, db *gorm.DB, opts ...SeedOption) *SeedService {
	t.Helper()
	return NewSeedService(
		repositories.NewSeedStore(db),
		newIdentityService(t, db),
		defaultFixtures(t),
		logger.Nop(),
		opts...,
	)
}

func assertBaselineCounts(t *testing.T, db *gorm.DB) {
	t.Helper()
	assert.EqualValues(t, 4, countRows(t, db, "membership_types"))
	assert.EqualValues(t, 3, countRows(t, db, "roles"))
	assert.EqualValues(t, 3, countRows(t, db, "customers"))
	assert.EqualValues(t, 3, countRows(t, db, "customer_roles"))
	assert.EqualValues(t, 8, countRows(t, db, "genres"))
	assert.EqualValues(t, 8, countRows(t, db, "books"))
}

func TestSeedService_InitializeEmptyDatabase(t *testing.T) {
	db := testdb.New(t)
	added := time.Date(2024, 3, 1, 9, 30, 0, 0, time.UTC)
	seeder := newDBSeeder(t, db, WithClock(func() time.Time { return added }))

	report, err := seeder.Initialize(context.Background())
	require.NoError(t, err)
	assert.Equal(t, domain.SeedOrder, report.Seeded)
	assert.Empty(t, report.Skipped)
	assertBaselineCounts(t, db)

	var yearly models.MembershipType
	require.NoError(t, db.First(&yearly, 4).Error)
	assert.Equal(t, "Yearly", yearly.Name)
	assert.True(t, decimal.NewFromInt(300).Equal(yearly.SignUpFee))
	assert.Equal(t, 12, yearly.DurationInMonths)
	assert.Equal(t, 20, yearly.DiscountRate)

	var books []models.Book
	require.NoError(t, db.Find(&books).Error)
	for _, b := range books {
		assert.EqualValues(t, 1, b.GenreID)
		assert.True(t, added.Equal(b.DateAdded), "date_added %s", b.DateAdded)
	}

	var customer models.Customer
	require.NoError(t, db.Where("normalized_email = ?", "ala.bala@gmail.com").First(&customer).Error)
	assert.True(t, customer.EmailConfirmed)
	assert.False(t, customer.LockoutEnabled)
	assert.EqualValues(t, 1, customer.MembershipTypeID)
}

func TestSeedService_Idempotent(t *testing.T) {
	db := testdb.New(t)
	seeder := newDBSeeder(t, db)
	ctx := context.Background()

	_, err := seeder.Initialize(ctx)
	require.NoError(t, err)

	report, err := seeder.Initialize(ctx)
	require.NoError(t, err)
	assert.Empty(t, report.Seeded)
	assert.Equal(t, domain.SeedOrder, report.Skipped)
	assertBaselineCounts(t, db)
}

func TestSeedService_PrePopulatedMembershipTypesUntouched(t *testing.T) {
	db := testdb.New(t)
	existing := models.MembershipType{ID: 1, Name: "Legacy", SignUpFee: decimal.NewFromInt(5), DurationInMonths: 2, DiscountRate: 1}
	require.NoError(t, db.Create(&existing).Error)

	report, err := newDBSeeder(t, db).Initialize(context.Background())
	require.NoError(t, err)
	assert.False(t, report.WasSeeded(domain.CollectionMembershipTypes))
	assert.True(t, report.WasSeeded(domain.CollectionCustomers))

	var all []models.MembershipType
	require.NoError(t, db.Find(&all).Error)
	require.Len(t, all, 1)
	assert.Equal(t, "Legacy", all[0].Name)
	assert.True(t, decimal.NewFromInt(5).Equal(all[0].SignUpFee))
}

func TestSeedService_ReferentialIntegrity(t *testing.T) {
	db := testdb.New(t)
	_, err := newDBSeeder(t, db).Initialize(context.Background())
	require.NoError(t, err)

	var orphanRoles int64
	require.NoError(t, db.Table("customer_roles").
		Joins("LEFT JOIN roles ON roles.id = customer_roles.role_id").
		Where("roles.id IS NULL").
		Count(&orphanRoles).Error)
	assert.Zero(t, orphanRoles)

	var orphanBooks int64
	require.NoError(t, db.Table("books").
		Joins("LEFT JOIN genres ON genres.id = books.genre_id").
		Where("genres.id IS NULL").
		Count(&orphanBooks).Error)
	assert.Zero(t, orphanBooks)

	var customersWithoutRole int64
	require.NoError(t, db.Table("customers").
		Where("NOT EXISTS (SELECT 1 FROM customer_roles WHERE customer_roles.customer_id = customers.id)").
		Count(&customersWithoutRole).Error)
	assert.Zero(t, customersWithoutRole)
}

func TestSeedService_SeededCredentials(t *testing.T) {
	db := testdb.New(t)
	ctx := context.Background()
	identity := newIdentityService(t, db)
	seeder := NewSeedService(repositories.NewSeedStore(db), identity, defaultFixtures(t), logger.Nop())

	_, err := seeder.Initialize(ctx)
	require.NoError(t, err)

	customer, err := identity.CheckPassword(ctx, "dawid.sosin@gmail.com", "qwerty123!")
	require.NoError(t, err)
	assert.Equal(t, []string{"User"}, customer.ToResponse().Roles)

	_, err = identity.CheckPassword(ctx, "dawid.sosin@gmail.com", "qwerty124!")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	owner, err := identity.SignIn(ctx, &LoginInput{Username: "ala.bala@gmail.com", Password: "qwerty12356@"})
	require.NoError(t, err)
	assert.Equal(t, []string{"Owner"}, owner.Customer.Roles)
}

func TestSeedService_DuplicateEmailAborts(t *testing.T) {
	db := testdb.New(t)
	set := defaultFixtures(t)
	// skip Validate so the duplicate reaches the identity service
	set.Customers = append(set.Customers, set.Customers[0])

	seeder := NewSeedService(repositories.NewSeedStore(db), newIdentityService(t, db), set, logger.Nop())
	report, err := seeder.Initialize(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrDuplicateEmail)
	assert.Contains(t, err.Error(), set.Customers[0].Email)
	assert.False(t, report.WasSeeded(domain.CollectionCustomers))

	// steps after the failure never ran
	assert.Zero(t, countRows(t, db, "genres"))
	assert.Zero(t, countRows(t, db, "books"))
}

func TestSeedService_MissingRole(t *testing.T) {
	db := testdb.New(t)
	identity := newIdentityService(t, db)
	_, err := identity.CreateRole(context.Background(), "Admin")
	require.NoError(t, err)

	seeder := NewSeedService(repositories.NewSeedStore(db), identity, defaultFixtures(t), logger.Nop())
	_, err = seeder.Initialize(context.Background())
	assert.ErrorIs(t, err, domain.ErrRoleMissing)
	assert.Zero(t, countRows(t, db, "customers"))
}

// fakeStore keeps row counts per collection in memory.
type fakeStore struct {
	rows     map[domain.Collection]int
	staged   map[domain.Collection]int
	saves    int
	discards int
	emptyErr error
	saveErr  error
}

func newFakeStore() *fakeStore {
	return &fakeStore{rows: map[domain.Collection]int{}, staged: map[domain.Collection]int{}}
}

func (f *fakeStore) IsEmpty(_ context.Context, c domain.Collection) (bool, error) {
	if f.emptyErr != nil {
		return false, f.emptyErr
	}
	return f.rows[c] == 0, nil
}

func (f *fakeStore) AddMembershipTypes(rows ...models.MembershipType) {
	f.staged[domain.CollectionMembershipTypes] += len(rows)
}

func (f *fakeStore) AddGenres(rows ...models.Genre) {
	f.staged[domain.CollectionGenres] += len(rows)
}

func (f *fakeStore) AddBooks(rows ...models.Book) {
	f.staged[domain.CollectionBooks] += len(rows)
}

func (f *fakeStore) SaveChanges(context.Context) error {
	staged := f.staged
	f.staged = map[domain.Collection]int{}
	if f.saveErr != nil {
		return f.saveErr
	}
	f.saves++
	for c, n := range staged {
		f.rows[c] += n
	}
	return nil
}

func (f *fakeStore) Discard() {
	f.discards++
	f.staged = map[domain.Collection]int{}
}

// fakeAccounts records roles and accounts and writes counts into the shared store.
type fakeAccounts struct {
	store     *fakeStore
	roles     map[string]bool
	createErr error
	addErr    error
}

func newFakeAccounts(store *fakeStore) *fakeAccounts {
	return &fakeAccounts{store: store, roles: map[string]bool{}}
}

func (f *fakeAccounts) CreateRole(_ context.Context, name string) (*models.Role, error) {
	f.roles[fixtures.NormalizeRole(name)] = true
	f.store.rows[domain.CollectionRoles]++
	return &models.Role{Name: name}, nil
}

func (f *fakeAccounts) RoleExists(_ context.Context, name string) (bool, error) {
	return f.roles[fixtures.NormalizeRole(name)], nil
}

func (f *fakeAccounts) CreateAccount(_ context.Context, in *CreateAccountInput) (*models.Customer, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	f.store.rows[domain.CollectionCustomers]++
	return &models.Customer{Email: in.Email}, nil
}

func (f *fakeAccounts) AddToRole(context.Context, *models.Customer, string) error {
	return f.addErr
}

func TestSeedService_IdentityFailureReported(t *testing.T) {
	store := newFakeStore()
	accounts := newFakeAccounts(store)
	accounts.createErr = ErrDuplicateEmail

	_, err := NewSeedService(store, accounts, defaultFixtures(t), logger.Nop()).Initialize(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrDuplicateEmail)
	assert.Contains(t, err.Error(), "dawid.sosin@gmail.com")
}

func TestSeedService_RoleAssignmentFailureAborts(t *testing.T) {
	store := newFakeStore()
	accounts := newFakeAccounts(store)
	accounts.addErr = ErrRoleNotFound

	report, err := NewSeedService(store, accounts, defaultFixtures(t), logger.Nop()).Initialize(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrRoleNotFound)
	assert.Contains(t, err.Error(), "add dawid.sosin@gmail.com to role user")
	assert.False(t, report.WasSeeded(domain.CollectionCustomers))
	assert.False(t, report.WasSeeded(domain.CollectionGenres))
	assert.False(t, report.WasSeeded(domain.CollectionBooks))
	assert.Zero(t, store.rows[domain.CollectionGenres])
	assert.Zero(t, store.rows[domain.CollectionBooks])
	assert.Equal(t, 1, store.discards)
}

func TestSeedService_RetryAfterFailure(t *testing.T) {
	db := testdb.New(t)
	seeder := newDBSeeder(t, db)
	ctx := context.Background()

	// books check fails after genres were staged
	require.NoError(t, db.Migrator().DropTable(&models.Book{}))
	_, err := seeder.Initialize(ctx)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "check books")
	assert.Zero(t, countRows(t, db, "genres"))

	require.NoError(t, db.AutoMigrate(&models.Book{}))
	report, err := seeder.Initialize(ctx)
	require.NoError(t, err)
	assert.True(t, report.WasSeeded(domain.CollectionGenres))
	assert.True(t, report.WasSeeded(domain.CollectionBooks))
	assert.False(t, report.WasSeeded(domain.CollectionCustomers))
	assertBaselineCounts(t, db)
}

func TestSeedService_StoreErrors(t *testing.T) {
	boom := errors.New("connection reset")

	t.Run("is empty", func(t *testing.T) {
		store := newFakeStore()
		store.emptyErr = boom
		_, err := NewSeedService(store, newFakeAccounts(store), defaultFixtures(t), logger.Nop()).Initialize(context.Background())
		assert.ErrorIs(t, err, boom)
	})

	t.Run("save changes", func(t *testing.T) {
		store := newFakeStore()
		store.saveErr = boom
		report, err := NewSeedService(store, newFakeAccounts(store), defaultFixtures(t), logger.Nop()).Initialize(context.Background())
		assert.ErrorIs(t, err, boom)
		assert.Empty(t, report.Seeded)
	})
}

func TestSeedService_OnlyEmptyCollectionsSeeded(t *testing.T) {
	set := defaultFixtures(t)
	want := map[domain.Collection]int{
		domain.CollectionMembershipTypes: len(set.MembershipTypes),
		domain.CollectionRoles:           len(set.Roles),
		domain.CollectionCustomers:       len(set.Customers),
		domain.CollectionGenres:          len(set.Genres),
		domain.CollectionBooks:           len(set.Books),
	}

	rapid.Check(t, func(rt *rapid.T) {
		store := newFakeStore()
		accounts := newFakeAccounts(store)
		// roles are pre-populated as a whole so customer fixtures can resolve them
		if rapid.Bool().Draw(rt, "prepopulate roles") {
			for _, name := range set.Roles {
				_, _ = accounts.CreateRole(context.Background(), name)
			}
		}

		pre := map[domain.Collection]int{domain.CollectionRoles: store.rows[domain.CollectionRoles]}
		for _, c := range []domain.Collection{
			domain.CollectionMembershipTypes,
			domain.CollectionCustomers,
			domain.CollectionGenres,
			domain.CollectionBooks,
		} {
			n := rapid.IntRange(0, 3).Draw(rt, string(c))
			store.rows[c] = n
			pre[c] = n
		}

		seeder := NewSeedService(store, accounts, set, logger.Nop())
		report, err := seeder.Initialize(context.Background())
		require.NoError(rt, err)

		for _, c := range domain.SeedOrder {
			if pre[c] > 0 {
				assert.Equal(rt, pre[c], store.rows[c], "%s was not empty and must be untouched", c)
				assert.False(rt, report.WasSeeded(c))
			} else {
				assert.Equal(rt, want[c], store.rows[c], "%s", c)
				assert.True(rt, report.WasSeeded(c))
			}
		}

		after := map[domain.Collection]int{}
		for c, n := range store.rows {
			after[c] = n
		}
		again, err := seeder.Initialize(context.Background())
		require.NoError(rt, err)
		assert.Empty(rt, again.Seeded)
		assert.Equal(rt, after, store.rows)
	})
}
