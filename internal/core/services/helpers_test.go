package services

import (
	"testing"

	"libapp/internal/adapters/persistence/repositories"
	"libapp/internal/config"
	"libapp/internal/pkg/logger"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

func testConfig() *config.Config {
	return &config.Config{
		App: config.AppConfig{Mode: config.AppModeDev},
		JWT: config.JWTConfig{
			Secret:           "test_secret",
			RefreshSecret:    "test_refresh_secret",
			Issuer:           "libapp-test",
			AccessTokenMins:  15,
			RefreshTokenDays: 7,
		},
		Identity: config.IdentityConfig{
			BcryptCost:        bcrypt.MinCost,
			MinPasswordLength: 8,
		},
	}
}

func newIdentityService(t *testing.T, db *gorm.DB) *IdentityService {
	t.Helper()
	return NewIdentityService(
		repositories.NewCustomerRepository(db),
		repositories.NewRoleRepository(db),
		repositories.NewRefreshTokenRepository(db),
		repositories.NewMembershipTypeRepository(db),
		testConfig(),
		logger.Nop(),
	)
}

func countRows(t *testing.T, db *gorm.DB, table string) int64 {
	t.Helper()
	var n int64
	require.NoError(t, db.Table(table).Count(&n).Error)
	return n
}
