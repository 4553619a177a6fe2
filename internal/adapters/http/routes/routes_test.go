package routes

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"libapp/internal/adapters/http/middleware"
	"libapp/internal/config"
	"libapp/internal/core/services"
	"libapp/internal/fixtures"
	"libapp/internal/pkg/logger"
	"libapp/internal/pkg/testdb"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Meta    *struct {
		Total      int64 `json:"total"`
		TotalPages int   `json:"total_pages"`
	} `json:"meta"`
	Error string `json:"error"`
}

func newTestApp(t *testing.T) *fiber.App {
	t.Helper()

	cfg := &config.Config{
		App: config.AppConfig{Mode: config.AppModeDev},
		JWT: config.JWTConfig{
			Secret:           "test_secret",
			RefreshSecret:    "test_refresh_secret",
			Issuer:           "libapp-test",
			AccessTokenMins:  15,
			RefreshTokenDays: 7,
		},
		Identity: config.IdentityConfig{BcryptCost: bcrypt.MinCost, MinPasswordLength: 8},
		Cookie:   config.CookieConfig{SameSite: "Lax"},
	}
	log := logger.Nop()
	db := testdb.New(t)

	set, err := fixtures.Default()
	require.NoError(t, err)
	seeder := services.NewSeeder(db, cfg, set, log)
	_, err = seeder.Initialize(context.Background())
	require.NoError(t, err)

	app := fiber.New(fiber.Config{ErrorHandler: middleware.CustomErrorHandler})
	middleware.Setup(app, cfg, log)
	Setup(app, db, cfg, seeder, log)
	return app
}

func do(t *testing.T, app *fiber.App, req *http.Request) (*http.Response, envelope) {
	t.Helper()
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	_ = resp.Body.Close()

	var env envelope
	if len(body) > 0 && strings.HasPrefix(resp.Header.Get(fiber.HeaderContentType), fiber.MIMEApplicationJSON) {
		require.NoError(t, json.Unmarshal(body, &env), string(body))
	}
	return resp, env
}

func get(path, token string) *http.Request {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if token != "" {
		req.Header.Set(fiber.HeaderAuthorization, "Bearer "+token)
	}
	return req
}

func login(t *testing.T, app *fiber.App, username, password string) (string, *http.Response) {
	t.Helper()
	body := `{"username":"` + username + `","password":"` + password + `"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", strings.NewReader(body))
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)

	resp, env := do(t, app, req)
	require.Equal(t, http.StatusOK, resp.StatusCode, env.Error)

	var auth services.AuthResponse
	require.NoError(t, json.Unmarshal(env.Data, &auth))
	require.NotEmpty(t, auth.AccessToken)
	return auth.AccessToken, resp
}

func TestHealthRoutes(t *testing.T) {
	app := newTestApp(t)

	resp, _ := do(t, app, get("/", ""))
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, _ = do(t, app, get("/health", ""))
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.NotEmpty(t, resp.Header.Get(fiber.HeaderXRequestID))
}

func TestCatalogRoutes(t *testing.T) {
	app := newTestApp(t)

	resp, env := do(t, app, get("/api/v1/genres", ""))
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get(fiber.HeaderCacheControl), "max-age=600")
	var genres struct {
		Genres []struct {
			ID   uint   `json:"id"`
			Name string `json:"name"`
		} `json:"genres"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &genres))
	assert.Len(t, genres.Genres, 8)

	resp, env = do(t, app, get("/api/v1/membership-types", ""))
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(env.Data), "Pay as You Go")

	resp, env = do(t, app, get("/api/v1/books?limit=3&page=3", ""))
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.NotNil(t, env.Meta)
	assert.EqualValues(t, 8, env.Meta.Total)
	assert.Equal(t, 3, env.Meta.TotalPages)
	var books []map[string]any
	require.NoError(t, json.Unmarshal(env.Data, &books))
	assert.Len(t, books, 2)

	resp, _ = do(t, app, get("/api/v1/books?genre_id=x", ""))
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, _ = do(t, app, get("/api/v1/books/1", ""))
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, _ = do(t, app, get("/api/v1/books/999", ""))
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, _ = do(t, app, get("/api/v1/books/abc", ""))
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestAuthRoutes(t *testing.T) {
	app := newTestApp(t)

	body := `{"username":"dawid.sosin@gmail.com","password":"wrong-password"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", strings.NewReader(body))
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	resp, _ := do(t, app, req)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	token, loginResp := login(t, app, "dawid.sosin@gmail.com", "qwerty123!")

	resp, env := do(t, app, get("/api/v1/auth/me", token))
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(env.Data), `"roles":["User"]`)

	resp, _ = do(t, app, get("/api/v1/auth/me", ""))
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	var refreshCookie *http.Cookie
	for _, c := range loginResp.Cookies() {
		if c.Name == "refresh_token" {
			refreshCookie = c
		}
	}
	require.NotNil(t, refreshCookie)

	req = httptest.NewRequest(http.MethodPost, "/api/v1/auth/refresh", nil)
	req.AddCookie(&http.Cookie{Name: refreshCookie.Name, Value: refreshCookie.Value})
	resp, _ = do(t, app, req)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	// rotated: the first refresh token is no longer accepted
	req = httptest.NewRequest(http.MethodPost, "/api/v1/auth/refresh", nil)
	req.AddCookie(&http.Cookie{Name: refreshCookie.Name, Value: refreshCookie.Value})
	resp, _ = do(t, app, req)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp, _ = do(t, app, httptest.NewRequest(http.MethodPost, "/api/v1/auth/logout", nil))
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func refreshCookieOf(t *testing.T, resp *http.Response) *http.Cookie {
	t.Helper()
	for _, c := range resp.Cookies() {
		if c.Name == "refresh_token" {
			return &http.Cookie{Name: c.Name, Value: c.Value}
		}
	}
	t.Fatal("refresh_token cookie not set")
	return nil
}

func TestLogoutAllRevokesEverySession(t *testing.T) {
	app := newTestApp(t)

	token, first := login(t, app, "ala.bala@gmail.com", "qwerty12356@")
	_, second := login(t, app, "ala.bala@gmail.com", "qwerty12356@")

	resp, _ := do(t, app, httptest.NewRequest(http.MethodPost, "/api/v1/auth/logout-all", nil))
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/logout-all", nil)
	req.Header.Set(fiber.HeaderAuthorization, "Bearer "+token)
	resp, _ = do(t, app, req)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	for _, loginResp := range []*http.Response{first, second} {
		req = httptest.NewRequest(http.MethodPost, "/api/v1/auth/refresh", nil)
		req.AddCookie(refreshCookieOf(t, loginResp))
		resp, _ = do(t, app, req)
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	}
}

func TestCustomerRoutesRequireStaffRole(t *testing.T) {
	app := newTestApp(t)

	userToken, _ := login(t, app, "dawid.sosin@gmail.com", "qwerty123!")
	managerToken, _ := login(t, app, "jooooe.doge@gmail.com", "test123!")

	resp, _ := do(t, app, get("/api/v1/customers", ""))
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp, _ = do(t, app, get("/api/v1/customers", userToken))
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp, env := do(t, app, get("/api/v1/customers", managerToken))
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.NotNil(t, env.Meta)
	assert.EqualValues(t, 3, env.Meta.Total)
	assert.NotContains(t, string(env.Data), "password")

	resp, env = do(t, app, get("/api/v1/roles", managerToken))
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(env.Data), "StoreManager")
}

func TestAdminSeedRequiresOwner(t *testing.T) {
	app := newTestApp(t)

	managerToken, _ := login(t, app, "jooooe.doge@gmail.com", "test123!")
	ownerToken, _ := login(t, app, "ala.bala@gmail.com", "qwerty12356@")

	req := httptest.NewRequest(http.MethodPost, "/api/v1/admin/seed", nil)
	req.Header.Set(fiber.HeaderAuthorization, "Bearer "+managerToken)
	resp, _ := do(t, app, req)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	req = httptest.NewRequest(http.MethodPost, "/api/v1/admin/seed", nil)
	req.Header.Set(fiber.HeaderAuthorization, "Bearer "+ownerToken)
	resp, env := do(t, app, req)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var report services.SeedReport
	require.NoError(t, json.Unmarshal(env.Data, &report))
	assert.Empty(t, report.Seeded)
	assert.Len(t, report.Skipped, 5)
}
