package domain

import "errors"

// Common domain errors
var (
	ErrInvalidInput       = errors.New("invalid input")
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// Catalog errors
var (
	ErrBookNotFound           = errors.New("book not found")
	ErrMembershipTypeNotFound = errors.New("membership type not found")
)

// Seed errors
var (
	ErrUnknownCollection = errors.New("unknown collection")
	ErrRoleMissing       = errors.New("role required by customer fixture does not exist")
)
