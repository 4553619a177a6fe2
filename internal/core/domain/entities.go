package domain

// Collection names a seeded table
type Collection string

const (
	CollectionMembershipTypes Collection = "membership_types"
	CollectionRoles           Collection = "roles"
	CollectionCustomers       Collection = "customers"
	CollectionGenres          Collection = "genres"
	CollectionBooks           Collection = "books"
)

// SeedOrder is the fixed order in which collections are seeded
var SeedOrder = []Collection{
	CollectionMembershipTypes,
	CollectionRoles,
	CollectionCustomers,
	CollectionGenres,
	CollectionBooks,
}

// Normalized role names used for authorization
const (
	RoleUser         = "user"
	RoleStoreManager = "storemanager"
	RoleOwner        = "owner"
)
