// Package fixtures loads the declarative baseline data used by the seeder.
package fixtures

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"reflect"
	"strings"
	"time"

	"libapp/internal/adapters/persistence/models"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
	"go.uber.org/multierr"
	"gopkg.in/yaml.v3"
)

//go:embed default.yaml
var defaultYAML []byte

// ErrUnknownReference is returned when a record points at an id or role the set does not define.
var ErrUnknownReference = errors.New("unknown reference")

// ErrDuplicate is returned when a key appears twice in one collection.
var ErrDuplicate = errors.New("duplicate key")

// Set is the full collection of seed records.
type Set struct {
	MembershipTypes []MembershipType `yaml:"membership_types" validate:"dive"`
	Roles           []string         `yaml:"roles" validate:"dive,required,max=100"`
	Customers       []Customer       `yaml:"customers" validate:"dive"`
	Genres          []Genre          `yaml:"genres" validate:"dive"`
	Books           []Book           `yaml:"books" validate:"dive"`
}

type MembershipType struct {
	ID               uint            `yaml:"id" validate:"required"`
	Name             string          `yaml:"name" validate:"required,max=100"`
	SignUpFee        decimal.Decimal `yaml:"sign_up_fee"`
	DurationInMonths int             `yaml:"duration_in_months" validate:"gte=0"`
	DiscountRate     int             `yaml:"discount_rate" validate:"gte=0,lte=100"`
}

// Customer is a demo account. Password is plaintext here and hashed by the identity service.
type Customer struct {
	Name             string `yaml:"name" validate:"required,max=255"`
	Email            string `yaml:"email" validate:"required,email"`
	Password         string `yaml:"password" validate:"required"`
	MembershipTypeID uint   `yaml:"membership_type_id" validate:"required"`
	// Role is matched case-insensitively against Roles.
	Role string `yaml:"role" validate:"required"`
}

type Genre struct {
	ID   uint   `yaml:"id" validate:"required"`
	Name string `yaml:"name" validate:"required,max=100"`
}

type Book struct {
	GenreID       uint      `yaml:"genre_id" validate:"required"`
	Name          string    `yaml:"name" validate:"required,max=255"`
	AuthorName    string    `yaml:"author_name" validate:"required,max=255"`
	ReleaseDate   time.Time `yaml:"release_date" validate:"required"`
	NumberInStock int       `yaml:"number_in_stock" validate:"gte=0"`
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		tag := strings.SplitN(f.Tag.Get("yaml"), ",", 2)[0]
		if tag == "" {
			return f.Name
		}
		return tag
	})
	return v
}

// Default returns the embedded fixture set.
func Default() (*Set, error) {
	return Parse(defaultYAML)
}

// LoadFile reads and validates a fixture file from disk.
func LoadFile(path string) (*Set, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read fixtures %s: %w", path, err)
	}
	return Parse(data)
}

// Load returns the file at path, or the embedded default when path is empty.
func Load(path string) (*Set, error) {
	if path == "" {
		return Default()
	}
	return LoadFile(path)
}

// Parse decodes and validates a YAML fixture document.
func Parse(data []byte) (*Set, error) {
	var set Set
	if err := yaml.Unmarshal(data, &set); err != nil {
		return nil, fmt.Errorf("decode fixtures: %w", err)
	}
	if err := set.Validate(); err != nil {
		return nil, err
	}
	return &set, nil
}

// Validate checks field constraints and cross-references, reporting every problem found.
func (s *Set) Validate() error {
	var errs error

	if err := validate.Struct(s); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			for _, fe := range verrs {
				errs = multierr.Append(errs, fmt.Errorf("%s: failed %q", fe.Namespace(), fe.Tag()))
			}
		} else {
			errs = multierr.Append(errs, err)
		}
	}

	membershipIDs := make(map[uint]bool, len(s.MembershipTypes))
	for i, mt := range s.MembershipTypes {
		if membershipIDs[mt.ID] {
			errs = multierr.Append(errs, fmt.Errorf("membership_types[%d].id %d: %w", i, mt.ID, ErrDuplicate))
		}
		membershipIDs[mt.ID] = true
		if mt.SignUpFee.IsNegative() {
			errs = multierr.Append(errs, fmt.Errorf("membership_types[%d].sign_up_fee must not be negative", i))
		}
	}

	roles := make(map[string]bool, len(s.Roles))
	for i, r := range s.Roles {
		key := NormalizeRole(r)
		if roles[key] {
			errs = multierr.Append(errs, fmt.Errorf("roles[%d] %q: %w", i, r, ErrDuplicate))
		}
		roles[key] = true
	}

	emails := make(map[string]bool, len(s.Customers))
	for i, c := range s.Customers {
		key := strings.ToLower(c.Email)
		if emails[key] {
			errs = multierr.Append(errs, fmt.Errorf("customers[%d].email %q: %w", i, c.Email, ErrDuplicate))
		}
		emails[key] = true
		if !membershipIDs[c.MembershipTypeID] {
			errs = multierr.Append(errs, fmt.Errorf("customers[%d].membership_type_id %d: %w", i, c.MembershipTypeID, ErrUnknownReference))
		}
		if c.Role != "" && !roles[NormalizeRole(c.Role)] {
			errs = multierr.Append(errs, fmt.Errorf("customers[%d].role %q: %w", i, c.Role, ErrUnknownReference))
		}
	}

	genreIDs := make(map[uint]bool, len(s.Genres))
	for i, g := range s.Genres {
		if genreIDs[g.ID] {
			errs = multierr.Append(errs, fmt.Errorf("genres[%d].id %d: %w", i, g.ID, ErrDuplicate))
		}
		genreIDs[g.ID] = true
	}

	for i, b := range s.Books {
		if !genreIDs[b.GenreID] {
			errs = multierr.Append(errs, fmt.Errorf("books[%d].genre_id %d: %w", i, b.GenreID, ErrUnknownReference))
		}
	}

	return errs
}

// NormalizeRole returns the lookup key used for role names.
func NormalizeRole(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// MembershipTypeModels converts the membership tiers to persistence rows.
func (s *Set) MembershipTypeModels() []models.MembershipType {
	rows := make([]models.MembershipType, 0, len(s.MembershipTypes))
	for _, mt := range s.MembershipTypes {
		rows = append(rows, models.MembershipType{
			ID:               mt.ID,
			Name:             mt.Name,
			SignUpFee:        mt.SignUpFee,
			DurationInMonths: mt.DurationInMonths,
			DiscountRate:     mt.DiscountRate,
		})
	}
	return rows
}

// GenreModels converts the genres to persistence rows.
func (s *Set) GenreModels() []models.Genre {
	rows := make([]models.Genre, 0, len(s.Genres))
	for _, g := range s.Genres {
		rows = append(rows, models.Genre{ID: g.ID, Name: g.Name})
	}
	return rows
}

// BookModels converts the books to persistence rows stamped with addedAt.
func (s *Set) BookModels(addedAt time.Time) []models.Book {
	rows := make([]models.Book, 0, len(s.Books))
	for _, b := range s.Books {
		rows = append(rows, models.Book{
			GenreID:       b.GenreID,
			Name:          b.Name,
			AuthorName:    b.AuthorName,
			ReleaseDate:   b.ReleaseDate,
			DateAdded:     addedAt,
			NumberInStock: b.NumberInStock,
		})
	}
	return rows
}
