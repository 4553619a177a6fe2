package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"libapp/internal/adapters/persistence/models"
	"libapp/internal/adapters/persistence/repositories"
	"libapp/internal/config"
	"libapp/internal/core/domain"
	"libapp/internal/pkg/jwt"
	"libapp/internal/pkg/logger"
	"libapp/internal/pkg/pagination"
	"libapp/internal/pkg/password"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Identity errors
var (
	ErrCustomerNotFound       = errors.New("customer not found")
	ErrInvalidCredentials     = domain.ErrInvalidCredentials
	ErrRoleAlreadyExists      = errors.New("role already exists")
	ErrRoleNotFound           = errors.New("role not found")
	ErrAlreadyInRole          = errors.New("customer already in role")
	ErrPasswordPolicy         = errors.New("password does not meet policy")
	ErrDuplicateEmail         = errors.New("email already registered")
	ErrDuplicateUserName      = errors.New("user name already taken")
	ErrMembershipTypeNotFound = domain.ErrMembershipTypeNotFound
	ErrInvalidToken           = errors.New("invalid token")
	ErrTokenExpired           = errors.New("token expired")
)

// IdentityService handles accounts, roles and token issuance
type IdentityService struct {
	customerRepo       repositories.CustomerRepository
	roleRepo           repositories.RoleRepository
	refreshTokenRepo   repositories.RefreshTokenRepository
	membershipTypeRepo *repositories.MembershipTypeRepository
	cfg                *config.Config
	log                *logger.Logger
}

// NewIdentityService creates a new identity service
func NewIdentityService(
	customerRepo repositories.CustomerRepository,
	roleRepo repositories.RoleRepository,
	refreshTokenRepo repositories.RefreshTokenRepository,
	membershipTypeRepo *repositories.MembershipTypeRepository,
	cfg *config.Config,
	log *logger.Logger,
) *IdentityService {
	return &IdentityService{
		customerRepo:       customerRepo,
		roleRepo:           roleRepo,
		refreshTokenRepo:   refreshTokenRepo,
		membershipTypeRepo: membershipTypeRepo,
		cfg:                cfg,
		log:                log,
	}
}

// LoginInput represents login input
type LoginInput struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// TokenPair represents access and refresh tokens
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// AuthResponse represents authentication response
type AuthResponse struct {
	Customer     *models.CustomerResponse `json:"customer"`
	AccessToken  string                   `json:"access_token"`
	RefreshToken string                   `json:"refresh_token"`
}

func normalize(value string) string {
	return strings.ToLower(strings.TrimSpace(value))
}

// CreateRole creates a role with a fresh UUID
func (s *IdentityService) CreateRole(ctx context.Context, name string) (*models.Role, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: role name is empty", domain.ErrInvalidInput)
	}

	exists, err := s.RoleExists(ctx, name)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, fmt.Errorf("%w: %s", ErrRoleAlreadyExists, name)
	}

	role := &models.Role{
		ID:             uuid.NewString(),
		Name:           name,
		NormalizedName: normalize(name),
	}
	if err := s.roleRepo.Create(ctx, role); err != nil {
		return nil, err
	}

	s.log.Info(s.log.WithField(ctx, "role", role.Name), "role created")
	return role, nil
}

// RoleExists reports whether a role with the given name exists, ignoring case
func (s *IdentityService) RoleExists(ctx context.Context, name string) (bool, error) {
	_, err := s.roleRepo.GetByNormalizedName(ctx, normalize(name))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// ListRoles lists all roles
func (s *IdentityService) ListRoles(ctx context.Context) ([]*models.Role, error) {
	return s.roleRepo.List(ctx)
}

// CreateAccount validates and stores a new customer with a hashed password
func (s *IdentityService) CreateAccount(ctx context.Context, input *CreateAccountInput) (*models.Customer, error) {
	// 1. Password policy
	if !password.ValidatePassword(input.Password, s.cfg.Identity.MinPasswordLength) {
		return nil, ErrPasswordPolicy
	}

	userName := input.UserName
	if userName == "" {
		userName = input.Email
	}
	normalizedEmail := normalize(input.Email)
	normalizedUserName := normalize(userName)

	// 2. Uniqueness
	exists, err := s.customerRepo.ExistsByNormalizedEmail(ctx, normalizedEmail)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrDuplicateEmail
	}

	exists, err = s.customerRepo.ExistsByNormalizedUserName(ctx, normalizedUserName)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrDuplicateUserName
	}

	// 3. Membership type must exist
	if _, err := s.membershipTypeRepo.GetByID(ctx, input.MembershipTypeID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: %d", ErrMembershipTypeNotFound, input.MembershipTypeID)
		}
		return nil, err
	}

	// 4. Hash password
	hashedPassword, err := password.HashWithCost(input.Password, s.cfg.Identity.BcryptCost)
	if err != nil {
		return nil, err
	}

	// 5. Create customer
	customer := &models.Customer{
		ID:                 uuid.NewString(),
		Name:               strings.TrimSpace(input.Name),
		Email:              strings.TrimSpace(input.Email),
		NormalizedEmail:    normalizedEmail,
		UserName:           strings.TrimSpace(userName),
		NormalizedUserName: normalizedUserName,
		MembershipTypeID:   input.MembershipTypeID,
		EmailConfirmed:     input.EmailConfirmed,
		SecurityStamp:      uuid.NewString(),
		PasswordHash:       hashedPassword,
	}
	if err := s.customerRepo.Create(ctx, customer); err != nil {
		return nil, err
	}

	s.log.Info(s.log.WithField(ctx, "customer_id", customer.ID), "account created")
	return customer, nil
}

// AddToRole assigns an existing role to a customer
func (s *IdentityService) AddToRole(ctx context.Context, customer *models.Customer, roleName string) error {
	role, err := s.roleRepo.GetByNormalizedName(ctx, normalize(roleName))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("%w: %s", ErrRoleNotFound, roleName)
		}
		return err
	}

	has, err := s.roleRepo.HasCustomer(ctx, customer.ID, role.ID)
	if err != nil {
		return err
	}
	if has {
		return fmt.Errorf("%w: %s", ErrAlreadyInRole, role.Name)
	}

	if err := s.roleRepo.AddCustomer(ctx, customer.ID, role.ID); err != nil {
		return err
	}
	customer.Roles = append(customer.Roles, *role)
	return nil
}

// CheckPassword returns the customer when email and password match
func (s *IdentityService) CheckPassword(ctx context.Context, email, plain string) (*models.Customer, error) {
	customer, err := s.customerRepo.GetByNormalizedEmail(ctx, normalize(email))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if !password.Verify(plain, customer.PasswordHash) {
		return nil, ErrInvalidCredentials
	}
	return customer, nil
}

// SignIn authenticates a customer by user name and issues tokens
func (s *IdentityService) SignIn(ctx context.Context, input *LoginInput) (*AuthResponse, error) {
	// 1. Find customer by user name
	customer, err := s.customerRepo.GetByNormalizedUserName(ctx, normalize(input.Username))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	// 2. Verify password
	if !password.Verify(input.Password, customer.PasswordHash) {
		return nil, ErrInvalidCredentials
	}

	// 3. Issue tokens
	resp, err := s.issue(ctx, customer)
	if err != nil {
		return nil, err
	}

	s.log.Info(s.log.WithField(ctx, "customer_id", customer.ID), "customer signed in")
	return resp, nil
}

// Refresh rotates a refresh token and issues a new token pair
func (s *IdentityService) Refresh(ctx context.Context, refreshToken string) (*AuthResponse, error) {
	// 1. Validate refresh token JWT
	claims, err := jwt.ValidateRefreshToken(refreshToken, s.cfg.JWT.RefreshSecret)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, ErrInvalidToken
	}

	// 2. Find the unrevoked token by hash
	storedToken, err := s.refreshTokenRepo.GetByTokenHash(ctx, password.HashToken(refreshToken))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidToken
		}
		return nil, err
	}
	if storedToken.CustomerID != claims.CustomerID {
		return nil, ErrInvalidToken
	}
	if storedToken.IsExpired() {
		return nil, ErrTokenExpired
	}

	// 3. Load customer
	customer, err := s.customerRepo.GetByID(ctx, claims.CustomerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCustomerNotFound
		}
		return nil, err
	}

	// 4. Revoke old refresh token (rotation)
	if err := s.refreshTokenRepo.Revoke(ctx, storedToken.ID); err != nil {
		return nil, err
	}

	return s.issue(ctx, customer)
}

// SignOut revokes the refresh token
func (s *IdentityService) SignOut(ctx context.Context, refreshToken string) error {
	return s.refreshTokenRepo.RevokeByTokenHash(ctx, password.HashToken(refreshToken))
}

// SignOutAll revokes every refresh token of a customer
func (s *IdentityService) SignOutAll(ctx context.Context, customerID string) error {
	return s.refreshTokenRepo.RevokeAllByCustomerID(ctx, customerID)
}

// ValidateAccessToken validates an access token
func (s *IdentityService) ValidateAccessToken(accessToken string) (*jwt.Claims, error) {
	return jwt.ValidateAccessToken(accessToken, s.cfg.JWT.Secret)
}

// GetCustomer gets a customer by ID
func (s *IdentityService) GetCustomer(ctx context.Context, id string) (*models.Customer, error) {
	customer, err := s.customerRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCustomerNotFound
		}
		return nil, err
	}
	return customer, nil
}

// ListCustomers lists customers with pagination
func (s *IdentityService) ListCustomers(ctx context.Context, page, limit int) ([]*models.CustomerResponse, *pagination.Meta, error) {
	params := pagination.New(page, limit)

	customers, total, err := s.customerRepo.List(ctx, params.Offset, params.Limit)
	if err != nil {
		return nil, nil, err
	}

	out := make([]*models.CustomerResponse, len(customers))
	for i, c := range customers {
		out[i] = c.ToResponse()
	}
	return out, pagination.GetMeta(params, total), nil
}

func (s *IdentityService) issue(ctx context.Context, customer *models.Customer) (*AuthResponse, error) {
	tokens, err := s.generateTokens(customer)
	if err != nil {
		return nil, err
	}
	if err := s.storeRefreshToken(ctx, customer.ID, tokens.RefreshToken); err != nil {
		return nil, err
	}
	return &AuthResponse{
		Customer:     customer.ToResponse(),
		AccessToken:  tokens.AccessToken,
		RefreshToken: tokens.RefreshToken,
	}, nil
}

// generateTokens generates access and refresh tokens
func (s *IdentityService) generateTokens(customer *models.Customer) (*TokenPair, error) {
	roles := make([]string, 0, len(customer.Roles))
	for _, r := range customer.Roles {
		roles = append(roles, r.NormalizedName)
	}

	accessToken, err := jwt.GenerateAccessToken(
		customer.ID,
		customer.Email,
		roles,
		s.cfg.JWT.Secret,
		s.cfg.JWT.Issuer,
		s.cfg.JWT.AccessTokenMins,
	)
	if err != nil {
		return nil, err
	}

	refreshToken, err := jwt.GenerateRefreshToken(
		customer.ID,
		uuid.NewString(),
		s.cfg.JWT.RefreshSecret,
		s.cfg.JWT.Issuer,
		s.cfg.JWT.RefreshTokenDays,
	)
	if err != nil {
		return nil, err
	}

	return &TokenPair{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
	}, nil
}

// storeRefreshToken stores the hash of a refresh token
func (s *IdentityService) storeRefreshToken(ctx context.Context, customerID, refreshToken string) error {
	token := &models.RefreshToken{
		CustomerID: customerID,
		TokenHash:  password.HashToken(refreshToken),
		ExpiresAt:  jwt.GetExpiryTime(s.cfg.JWT.RefreshTokenDays),
	}
	return s.refreshTokenRepo.Create(ctx, token)
}
