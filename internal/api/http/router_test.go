package http

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/spec-kit/store-management/internal/api/http/handlers"
	"github.com/spec-kit/store-management/internal/auth"
	"github.com/spec-kit/store-management/internal/config"
	"github.com/spec-kit/store-management/internal/domain"
	"github.com/spec-kit/store-management/internal/observability"
	"github.com/spec-kit/store-management/internal/repository"
	"github.com/spec-kit/store-management/internal/service"
)

type stubUserRepository struct {
	users  map[string]*domain.User
	nextID int64
}

func newStubUserRepository() *stubUserRepository {
	return &stubUserRepository{users: map[string]*domain.User{}, nextID: 1}
}

func (r *stubUserRepository) Create(_ context.Context, user *domain.User) error {
	if _, ok := r.users[user.Username]; ok {
		return &pgconn.PgError{Code: pgerrcode.UniqueViolation, ConstraintName: "users_username_key"}
	}
	user.ID = r.nextID
	r.nextID++
	user.CreatedAt = time.Now()
	user.UpdatedAt = user.CreatedAt
	r.users[user.Username] = user
	return nil
}

func (r *stubUserRepository) Update(_ context.Context, user *domain.User) error {
	r.users[user.Username] = user
	return nil
}

func (r *stubUserRepository) GetByID(_ context.Context, id int64) (*domain.User, error) {
	for _, user := range r.users {
		if user.ID == id {
			return user, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r *stubUserRepository) GetByUsername(_ context.Context, username string) (*domain.User, error) {
	user, ok := r.users[username]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return user, nil
}

func (r *stubUserRepository) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	for _, user := range r.users {
		if user.Email == email {
			return user, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r *stubUserRepository) ExistsByUsername(_ context.Context, username string) (bool, error) {
	_, ok := r.users[username]
	return ok, nil
}

func (r *stubUserRepository) ExistsByEmail(_ context.Context, email string) (bool, error) {
	for _, user := range r.users {
		if user.Email == email {
			return true, nil
		}
	}
	return false, nil
}

func (r *stubUserRepository) ListByRole(_ context.Context, role domain.Role) ([]domain.User, error) {
	var out []domain.User
	for _, user := range r.users {
		if user.Role == role {
			out = append(out, *user)
		}
	}
	return out, nil
}

func (r *stubUserRepository) ListEnabled(_ context.Context) ([]domain.User, error) {
	var out []domain.User
	for _, user := range r.users {
		if user.Enabled {
			out = append(out, *user)
		}
	}
	return out, nil
}

func (r *stubUserRepository) Count(_ context.Context) (int64, error) {
	return int64(len(r.users)), nil
}

type stubProductRepository struct {
	products map[int64]*domain.Product
	nextID   int64
}

func newStubProductRepository() *stubProductRepository {
	return &stubProductRepository{products: map[int64]*domain.Product{}, nextID: 1}
}

func (r *stubProductRepository) Create(_ context.Context, product *domain.Product) error {
	product.ID = r.nextID
	r.nextID++
	product.CreatedAt = time.Now()
	product.UpdatedAt = product.CreatedAt
	r.products[product.ID] = product
	return nil
}

func (r *stubProductRepository) Update(_ context.Context, product *domain.Product) error {
	if _, ok := r.products[product.ID]; !ok {
		return pgx.ErrNoRows
	}
	r.products[product.ID] = product
	return nil
}

func (r *stubProductRepository) Delete(_ context.Context, id int64) error {
	if _, ok := r.products[id]; !ok {
		return pgx.ErrNoRows
	}
	delete(r.products, id)
	return nil
}

func (r *stubProductRepository) GetByID(_ context.Context, id int64) (*domain.Product, error) {
	product, ok := r.products[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return product, nil
}

func (r *stubProductRepository) GetByName(_ context.Context, name string) (*domain.Product, error) {
	for _, product := range r.products {
		if strings.EqualFold(product.Name, name) {
			return product, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r *stubProductRepository) List(_ context.Context, _ repository.ProductPage) ([]domain.Product, int64, error) {
	var out []domain.Product
	for _, product := range r.products {
		out = append(out, *product)
	}
	return out, int64(len(out)), nil
}

func (r *stubProductRepository) SearchByName(_ context.Context, _ string) ([]domain.Product, error) {
	return nil, nil
}

func (r *stubProductRepository) ListByCategory(_ context.Context, _ string) ([]domain.Product, error) {
	return nil, nil
}

func (r *stubProductRepository) ListAvailable(_ context.Context) ([]domain.Product, error) {
	return nil, nil
}

func (r *stubProductRepository) Count(_ context.Context) (int64, error) {
	return int64(len(r.products)), nil
}

type testEnv struct {
	app      *fiber.App
	auth     *service.AuthService
	users    *stubUserRepository
	products *stubProductRepository
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	userRepo := newStubUserRepository()
	productRepo := newStubProductRepository()

	authCfg := config.AuthConfig{
		JWTSecret:             "test-secret",
		AccessTokenTTLMinutes: 60,
		BcryptCost:            bcrypt.MinCost,
	}
	logger := zap.NewNop()
	authService := service.NewAuthService(authCfg, userRepo, nil, logger)
	userService := service.NewUserService(userRepo, nil, logger)
	productService := service.NewProductService(productRepo, nil, nil, logger)

	app := fiber.New()
	RegisterMiddlewares(app, logger, observability.NewMetrics(), 0)
	RegisterRoutes(app, RouteConfig{
		Health:         handlers.NewHealthHandler("store-management", "test", nil, nil),
		Auth:           handlers.NewAuthHandler(authService),
		Users:          handlers.NewUsersHandler(userService),
		Products:       handlers.NewProductsHandler(productService),
		AuthMiddleware: auth.NewMiddleware(authService.TokenManager(), PublicPaths),
		Policy:         auth.NewPolicy(auth.DefaultRules()),
	})

	return &testEnv{app: app, auth: authService, users: userRepo, products: productRepo}
}

func (e *testEnv) request(t *testing.T, method, path, token string, body any) *http.Response {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(encoded)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	}
	if token != "" {
		req.Header.Set(fiber.HeaderAuthorization, "Bearer "+token)
	}

	resp, err := e.app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func (e *testEnv) login(t *testing.T, username, password string) string {
	t.Helper()

	resp := e.request(t, fiber.MethodPost, "/api/auth/login", "", fiber.Map{
		"username": username,
		"password": password,
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var payload struct {
		Data struct {
			Token string `json:"token"`
		} `json:"data"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&payload))
	require.NotEmpty(t, payload.Data.Token)
	return payload.Data.Token
}

func TestRegisterLoginAndAccess(t *testing.T) {
	env := newTestEnv(t)

	// seed one product so reads have something to return
	require.NoError(t, env.products.Create(context.Background(), &domain.Product{
		Name: "Laptop", Price: 999.99, Quantity: 5, Category: "Electronics",
	}))

	resp := env.request(t, fiber.MethodPost, "/api/auth/register", "", fiber.Map{
		"username": "alice",
		"email":    "alice@x.com",
		"password": "secret1",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	token := env.login(t, "alice", "secret1")

	t.Run("read endpoint with token", func(t *testing.T) {
		resp := env.request(t, fiber.MethodGet, "/api/products", token, nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)
	})

	t.Run("read endpoint without token", func(t *testing.T) {
		resp := env.request(t, fiber.MethodGet, "/api/products", "", nil)
		require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("destructive endpoint with employee token", func(t *testing.T) {
		resp := env.request(t, fiber.MethodDelete, "/api/products/1", token, nil)
		require.Equal(t, http.StatusForbidden, resp.StatusCode)
	})

	t.Run("admin endpoint with employee token", func(t *testing.T) {
		resp := env.request(t, fiber.MethodGet, "/api/users", token, nil)
		require.Equal(t, http.StatusForbidden, resp.StatusCode)
	})

	t.Run("duplicate registration", func(t *testing.T) {
		resp := env.request(t, fiber.MethodPost, "/api/auth/register", "", fiber.Map{
			"username": "alice",
			"email":    "alice2@x.com",
			"password": "secret1",
		})
		require.Equal(t, http.StatusConflict, resp.StatusCode)
	})
}

func TestAdminAccess(t *testing.T) {
	env := newTestEnv(t)

	require.NoError(t, env.products.Create(context.Background(), &domain.Product{
		Name: "Laptop", Price: 999.99, Quantity: 5, Category: "Electronics",
	}))

	resp := env.request(t, fiber.MethodPost, "/api/auth/register", "", fiber.Map{
		"username": "root",
		"email":    "root@x.com",
		"password": "secret1",
		"role":     "ADMIN",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	token := env.login(t, "root", "secret1")

	t.Run("admin deletes product", func(t *testing.T) {
		resp := env.request(t, fiber.MethodDelete, "/api/products/1", token, nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)
	})

	t.Run("admin lists users", func(t *testing.T) {
		resp := env.request(t, fiber.MethodGet, "/api/users", token, nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)
	})

	t.Run("admin changes a role", func(t *testing.T) {
		resp := env.request(t, fiber.MethodPost, "/api/auth/register", "", fiber.Map{
			"username": "bob", "email": "bob@x.com", "password": "secret1",
		})
		require.Equal(t, http.StatusCreated, resp.StatusCode)

		bob, err := env.users.GetByUsername(context.Background(), "bob")
		require.NoError(t, err)

		resp = env.request(t, fiber.MethodPut, fmt.Sprintf("/api/users/%d/role", bob.ID), token, fiber.Map{"role": "MANAGER"})
		require.Equal(t, http.StatusOK, resp.StatusCode)
		require.Equal(t, domain.RoleManager, bob.Role)
	})
}

func TestTokenFailuresAreGeneric(t *testing.T) {
	env := newTestEnv(t)

	resp := env.request(t, fiber.MethodPost, "/api/auth/register", "", fiber.Map{
		"username": "alice", "email": "alice@x.com", "password": "secret1",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	expired, _, err := env.auth.TokenManager().Issue("alice", domain.RoleEmployee, time.Now().Add(-2*time.Hour))
	require.NoError(t, err)

	foreign := auth.NewTokenManager("other-secret", 60)
	badSig, _, err := foreign.Issue("alice", domain.RoleEmployee, time.Now())
	require.NoError(t, err)

	message := func(resp *http.Response) string {
		var payload struct {
			Error struct {
				Message string `json:"message"`
			} `json:"error"`
		}
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&payload))
		return payload.Error.Message
	}

	missingResp := env.request(t, fiber.MethodGet, "/api/products", "", nil)
	expiredResp := env.request(t, fiber.MethodGet, "/api/products", expired, nil)
	badSigResp := env.request(t, fiber.MethodGet, "/api/products", badSig, nil)
	garbageResp := env.request(t, fiber.MethodGet, "/api/products", "garbage", nil)

	require.Equal(t, http.StatusUnauthorized, missingResp.StatusCode)
	require.Equal(t, http.StatusUnauthorized, expiredResp.StatusCode)
	require.Equal(t, http.StatusUnauthorized, badSigResp.StatusCode)
	require.Equal(t, http.StatusUnauthorized, garbageResp.StatusCode)

	// no oracle: every failure mode carries the same message
	want := message(missingResp)
	require.Equal(t, want, message(expiredResp))
	require.Equal(t, want, message(badSigResp))
	require.Equal(t, want, message(garbageResp))
}

func TestLoginFailures(t *testing.T) {
	env := newTestEnv(t)

	resp := env.request(t, fiber.MethodPost, "/api/auth/register", "", fiber.Map{
		"username": "alice", "email": "alice@x.com", "password": "secret1",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	t.Run("wrong password", func(t *testing.T) {
		resp := env.request(t, fiber.MethodPost, "/api/auth/login", "", fiber.Map{
			"username": "alice", "password": "wrong",
		})
		require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("unknown user gets the same response", func(t *testing.T) {
		wrongPw := env.request(t, fiber.MethodPost, "/api/auth/login", "", fiber.Map{
			"username": "alice", "password": "wrong",
		})
		unknown := env.request(t, fiber.MethodPost, "/api/auth/login", "", fiber.Map{
			"username": "nobody", "password": "wrong",
		})
		require.Equal(t, wrongPw.StatusCode, unknown.StatusCode)

		var a, b map[string]any
		require.NoError(t, json.NewDecoder(wrongPw.Body).Decode(&a))
		require.NoError(t, json.NewDecoder(unknown.Body).Decode(&b))
		require.Equal(t, a, b)
	})

	t.Run("disabled account", func(t *testing.T) {
		user, err := env.users.GetByUsername(context.Background(), "alice")
		require.NoError(t, err)
		user.Enabled = false
		defer func() { user.Enabled = true }()

		resp := env.request(t, fiber.MethodPost, "/api/auth/login", "", fiber.Map{
			"username": "alice", "password": "secret1",
		})
		require.Equal(t, http.StatusForbidden, resp.StatusCode)
	})
}
