package repositories

import (
	"context"
	"testing"
	"time"

	"libapp/internal/adapters/persistence/models"
	"libapp/internal/core/domain"
	"libapp/internal/pkg/testdb"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSeedStore_IsEmpty(t *testing.T) {
	db := testdb.New(t)
	store := NewSeedStore(db)
	ctx := context.Background()

	for _, c := range domain.SeedOrder {
		empty, err := store.IsEmpty(ctx, c)
		require.NoError(t, err)
		assert.True(t, empty, c)
	}

	require.NoError(t, db.Create(&models.Genre{ID: 1, Name: "Fantasy"}).Error)

	empty, err := store.IsEmpty(ctx, domain.CollectionGenres)
	require.NoError(t, err)
	assert.False(t, empty)

	_, err = store.IsEmpty(ctx, domain.Collection("loans"))
	assert.ErrorIs(t, err, domain.ErrUnknownCollection)
}

func TestSeedStore_IsEmptyCountsSoftDeleted(t *testing.T) {
	db := testdb.New(t)
	store := NewSeedStore(db)
	ctx := context.Background()

	require.NoError(t, db.Create(&models.MembershipType{ID: 1, Name: "Monthly"}).Error)
	customer := &models.Customer{
		ID:                 "c1",
		Name:               "Gone",
		Email:              "gone@example.com",
		NormalizedEmail:    "gone@example.com",
		UserName:           "gone@example.com",
		NormalizedUserName: "gone@example.com",
		MembershipTypeID:   1,
		SecurityStamp:      "stamp",
		PasswordHash:       "hash",
	}
	require.NoError(t, db.Create(customer).Error)
	require.NoError(t, db.Delete(customer).Error)

	empty, err := store.IsEmpty(ctx, domain.CollectionCustomers)
	require.NoError(t, err)
	assert.False(t, empty)
}

func TestSeedStore_SaveChanges(t *testing.T) {
	db := testdb.New(t)
	store := NewSeedStore(db)
	ctx := context.Background()
	added := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	store.AddMembershipTypes(models.MembershipType{ID: 2, Name: "Monthly", SignUpFee: decimal.NewFromInt(30), DurationInMonths: 1, DiscountRate: 10})
	store.AddGenres(models.Genre{ID: 1, Name: "Fantasy"}, models.Genre{ID: 2, Name: "Horror"})
	store.AddBooks(models.Book{GenreID: 1, Name: "Dune", AuthorName: "Frank Herbert", ReleaseDate: added, DateAdded: added, NumberInStock: 3})
	assert.Equal(t, 4, store.Pending())

	require.NoError(t, store.SaveChanges(ctx))
	assert.Zero(t, store.Pending())

	var mt models.MembershipType
	require.NoError(t, db.First(&mt, 2).Error)
	assert.True(t, decimal.NewFromInt(30).Equal(mt.SignUpFee))

	var genres, books int64
	require.NoError(t, db.Model(&models.Genre{}).Count(&genres).Error)
	require.NoError(t, db.Model(&models.Book{}).Count(&books).Error)
	assert.EqualValues(t, 2, genres)
	assert.EqualValues(t, 1, books)

	// nothing staged
	require.NoError(t, store.SaveChanges(ctx))
}

func TestSeedStore_SaveChangesRollsBack(t *testing.T) {
	db := testdb.New(t)
	store := NewSeedStore(db)
	ctx := context.Background()

	require.NoError(t, db.Create(&models.Genre{ID: 1, Name: "Fantasy"}).Error)

	store.AddMembershipTypes(models.MembershipType{ID: 1, Name: "Pay as You Go"})
	store.AddGenres(models.Genre{ID: 1, Name: "Duplicate"})

	err := store.SaveChanges(ctx)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "insert genres")

	var count int64
	require.NoError(t, db.Model(&models.MembershipType{}).Count(&count).Error)
	assert.Zero(t, count, "membership type insert must roll back")
	assert.Zero(t, store.Pending(), "a failed batch must not be replayed")

	// the next batch starts clean
	store.AddGenres(models.Genre{ID: 2, Name: "Horror"})
	require.NoError(t, store.SaveChanges(ctx))
	require.NoError(t, db.Model(&models.Genre{}).Count(&count).Error)
	assert.EqualValues(t, 2, count)
}

func TestSeedStore_Discard(t *testing.T) {
	db := testdb.New(t)
	store := NewSeedStore(db)

	store.AddGenres(models.Genre{ID: 1, Name: "Fantasy"})
	store.AddBooks(models.Book{GenreID: 1, Name: "Dune", AuthorName: "Frank Herbert"})
	require.Equal(t, 2, store.Pending())

	store.Discard()
	assert.Zero(t, store.Pending())
	require.NoError(t, store.SaveChanges(context.Background()))

	var count int64
	require.NoError(t, db.Model(&models.Genre{}).Count(&count).Error)
	assert.Zero(t, count)
}
