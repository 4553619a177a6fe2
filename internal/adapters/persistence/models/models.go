package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ============================================================
// Lookup Tables
// ============================================================

// MembershipType represents membership_types table
type MembershipType struct {
	ID               uint            `gorm:"primaryKey;autoIncrement:false" json:"id"`
	Name             string          `gorm:"size:100;not null" json:"name"`
	SignUpFee        decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"sign_up_fee"`
	DurationInMonths int             `gorm:"not null" json:"duration_in_months"`
	DiscountRate     int             `gorm:"not null" json:"discount_rate"`
}

func (MembershipType) TableName() string {
	return "membership_types"
}

// Genre represents genres table
type Genre struct {
	ID   uint   `gorm:"primaryKey;autoIncrement:false" json:"id"`
	Name string `gorm:"size:100;not null" json:"name"`
}

func (Genre) TableName() string {
	return "genres"
}

// ============================================================
// Catalog
// ============================================================

// Book represents books table
type Book struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	GenreID       uint      `gorm:"index;not null" json:"genre_id"`
	Genre         *Genre    `gorm:"foreignKey:GenreID" json:"genre,omitempty"`
	Name          string    `gorm:"size:255;not null" json:"name"`
	AuthorName    string    `gorm:"size:255;not null" json:"author_name"`
	ReleaseDate   time.Time `gorm:"not null" json:"release_date"`
	DateAdded     time.Time `gorm:"not null" json:"date_added"`
	NumberInStock int       `gorm:"not null;default:0" json:"number_in_stock"`
}

func (Book) TableName() string {
	return "books"
}

// ============================================================
// Identity Tables
// ============================================================

// Role represents roles table
type Role struct {
	ID             string `gorm:"primaryKey;size:36" json:"id"`
	Name           string `gorm:"size:100;not null" json:"name"`
	NormalizedName string `gorm:"uniqueIndex;size:100;not null" json:"normalized_name"`
}

func (Role) TableName() string {
	return "roles"
}

// Customer represents customers table (application user)
type Customer struct {
	ID                 string          `gorm:"primaryKey;size:36" json:"id"`
	Name               string          `gorm:"size:255;not null" json:"name"`
	Email              string          `gorm:"size:256;not null" json:"email"`
	NormalizedEmail    string          `gorm:"uniqueIndex;size:256;not null" json:"-"`
	UserName           string          `gorm:"size:256;not null" json:"user_name"`
	NormalizedUserName string          `gorm:"uniqueIndex;size:256;not null" json:"-"`
	MembershipTypeID   uint            `gorm:"index;not null" json:"membership_type_id"`
	MembershipType     *MembershipType `gorm:"foreignKey:MembershipTypeID" json:"membership_type,omitempty"`
	EmailConfirmed     bool            `gorm:"default:false" json:"email_confirmed"`
	LockoutEnabled     bool            `gorm:"default:false" json:"lockout_enabled"`
	SecurityStamp      string          `gorm:"size:36;not null" json:"-"`
	PasswordHash       string          `gorm:"size:255;not null" json:"-"`
	Roles              []Role          `gorm:"many2many:customer_roles;joinForeignKey:CustomerID;joinReferences:RoleID" json:"roles,omitempty"`
	CreatedAt          time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt          time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt          gorm.DeletedAt  `gorm:"index" json:"-"`
}

func (Customer) TableName() string {
	return "customers"
}

// CustomerResponse DTO
type CustomerResponse struct {
	ID               string    `json:"id"`
	Name             string    `json:"name"`
	Email            string    `json:"email"`
	UserName         string    `json:"user_name"`
	MembershipTypeID uint      `json:"membership_type_id"`
	Roles            []string  `json:"roles"`
	CreatedAt        time.Time `json:"created_at"`
}

func (c *Customer) ToResponse() *CustomerResponse {
	roles := make([]string, 0, len(c.Roles))
	for _, r := range c.Roles {
		roles = append(roles, r.Name)
	}
	return &CustomerResponse{
		ID:               c.ID,
		Name:             c.Name,
		Email:            c.Email,
		UserName:         c.UserName,
		MembershipTypeID: c.MembershipTypeID,
		Roles:            roles,
		CreatedAt:        c.CreatedAt,
	}
}

// CustomerRole represents customer_roles join table
type CustomerRole struct {
	CustomerID string `gorm:"primaryKey;size:36"`
	RoleID     string `gorm:"primaryKey;size:36"`
}

func (CustomerRole) TableName() string {
	return "customer_roles"
}

// RefreshToken represents refresh_tokens table
type RefreshToken struct {
	ID         uint       `gorm:"primaryKey" json:"id"`
	CustomerID string     `gorm:"index;size:36;not null" json:"customer_id"`
	TokenHash  string     `gorm:"size:255;not null;index" json:"-"`
	ExpiresAt  time.Time  `gorm:"not null" json:"expires_at"`
	CreatedAt  time.Time  `gorm:"autoCreateTime" json:"created_at"`
	RevokedAt  *time.Time `gorm:"index" json:"revoked_at"`
}

func (RefreshToken) TableName() string {
	return "refresh_tokens"
}

func (rt *RefreshToken) IsExpired() bool {
	return time.Now().After(rt.ExpiresAt)
}

// AutoMigrate runs auto migration for all tables
func AutoMigrate(db *gorm.DB) error {
	if err := db.SetupJoinTable(&Customer{}, "Roles", &CustomerRole{}); err != nil {
		return err
	}
	return db.AutoMigrate(
		// Lookup
		&MembershipType{},
		&Genre{},
		// Catalog
		&Book{},
		// Identity
		&Role{},
		&Customer{},
		&CustomerRole{},
		&RefreshToken{},
	)
}
