package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	cartapp "github.com/sadsod/storefront/internal/application/cart"
	catalogapp "github.com/sadsod/storefront/internal/application/catalog"
	identityapp "github.com/sadsod/storefront/internal/application/identity"
	shippingapp "github.com/sadsod/storefront/internal/application/shipping"
	tradeapp "github.com/sadsod/storefront/internal/application/trade"
	"github.com/sadsod/storefront/internal/domain/catalog"
	"github.com/sadsod/storefront/internal/infrastructure/auth"
	"github.com/sadsod/storefront/internal/infrastructure/cache"
	"github.com/sadsod/storefront/internal/infrastructure/config"
	"github.com/sadsod/storefront/internal/infrastructure/persistence"
	"github.com/sadsod/storefront/internal/infrastructure/storage"
	"github.com/sadsod/storefront/internal/interfaces/http/dto"
	"github.com/sadsod/storefront/internal/interfaces/http/middleware"
	"github.com/stretchr/testify/require"
)

const (
	testSessionCookie = "sadsod_session"
	testAdminUsername = "admin"
	testAdminPassword = "secret123"
)

// testEnv wires real services over a throwaway SQLite database
type testEnv struct {
	t           *testing.T
	engine      *gin.Engine
	db          *persistence.Database
	productRepo *persistence.GormProductRepository
	session     string

	catalog       *CatalogHandler
	cart          *CartHandler
	checkout      *CheckoutHandler
	shipping      *ShippingHandler
	auth          *AuthHandler
	adminProducts *AdminProductHandler
	adminOrders   *AdminOrderHandler

	jwt       *auth.JWTService
	blacklist *auth.InMemoryTokenBlacklist
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db, err := persistence.NewDatabase(&config.DatabaseConfig{
		Driver: "sqlite",
		Path:   filepath.Join(t.TempDir(), "sadsod.db"),
	}, nil)
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate())
	t.Cleanup(func() { _ = db.Close() })

	productRepo := persistence.NewGormProductRepository(db.DB)
	orderRepo := persistence.NewGormOrderRepository(db.DB)
	rateRepo := persistence.NewGormShippingRateRepository(db.DB)
	subRegionRepo := persistence.NewGormSubRegionRepository(db.DB)
	adminRepo := persistence.NewGormAdminUserRepository(db.DB)

	carts := cache.NewInMemoryCartStore(time.Hour)
	images := catalogapp.NewImageService(storage.NewStubObjectStorage(""), 15*time.Minute)
	jwtService := auth.NewJWTService(config.JWTConfig{
		Secret:                "test-secret-key-at-least-32-bytes-long",
		AccessTokenExpiration: time.Hour,
		Issuer:                "sadsod-test",
	})
	blacklist := auth.NewInMemoryTokenBlacklist()

	productService := catalogapp.NewProductService(productRepo, images, nil)
	cartService := cartapp.NewCartService(carts, productRepo, images)
	checkoutService := tradeapp.NewCheckoutService(
		persistence.NewGormUnitOfWork(db.DB),
		carts,
		tradeapp.CheckoutConfig{
			OrderPrefix:    "SADSOD",
			StockPolicy:    catalog.StockPolicyClamp,
			MaxAttempts:    3,
			IdempotencyTTL: time.Hour,
		},
		nil,
		tradeapp.WithIdempotencyStore(cache.NewInMemoryIdempotencyStore()),
	)
	orderService := tradeapp.NewOrderService(orderRepo, productRepo, nil)
	shippingService := shippingapp.NewShippingService(rateRepo, subRegionRepo)
	authService := identityapp.NewAuthService(adminRepo, jwtService, blacklist, nil)

	_, err = authService.EnsureAdmin(context.Background(), testAdminUsername, testAdminPassword)
	require.NoError(t, err)

	env := &testEnv{
		t:             t,
		engine:        gin.New(),
		db:            db,
		productRepo:   productRepo,
		session:       uuid.NewString(),
		catalog:       NewCatalogHandler(productService),
		cart:          NewCartHandler(cartService),
		checkout:      NewCheckoutHandler(checkoutService, orderService),
		shipping:      NewShippingHandler(shippingService),
		auth:          NewAuthHandler(authService),
		adminProducts: NewAdminProductHandler(productService, images),
		adminOrders:   NewAdminOrderHandler(orderService),
		jwt:           jwtService,
		blacklist:     blacklist,
	}
	env.engine.Use(middleware.RequestID())
	env.engine.Use(middleware.Session(middleware.SessionConfig{CookieName: testSessionCookie}))
	return env
}

// adminGroup returns a route group behind JWT authentication
func (e *testEnv) adminGroup() *gin.RouterGroup {
	return e.engine.Group("/admin", middleware.JWTAuthMiddlewareWithConfig(middleware.JWTMiddlewareConfig{
		JWTService:     e.jwt,
		TokenBlacklist: e.blacklist,
	}))
}

func (e *testEnv) seedProduct(attrs catalog.ProductAttributes) *catalog.Product {
	e.t.Helper()
	product, err := catalog.NewProduct(attrs)
	require.NoError(e.t, err)
	require.NoError(e.t, e.productRepo.Save(context.Background(), product))
	return product
}

func (e *testEnv) token() string {
	e.t.Helper()
	access, err := e.jwt.GenerateAccessToken(uuid.New(), testAdminUsername)
	require.NoError(e.t, err)
	return access.Token
}

type requestOption func(*http.Request)

func withHeader(key, value string) requestOption {
	return func(r *http.Request) { r.Header.Set(key, value) }
}

func withBearer(token string) requestOption {
	return withHeader(middleware.AuthHeaderKey, middleware.BearerPrefix+token)
}

// do serves a request carrying the env's session cookie
func (e *testEnv) do(method, target string, body any, opts ...requestOption) *httptest.ResponseRecorder {
	e.t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(e.t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, target, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.AddCookie(&http.Cookie{Name: testSessionCookie, Value: e.session})
	for _, opt := range opts {
		opt(req)
	}

	w := httptest.NewRecorder()
	e.engine.ServeHTTP(w, req)
	return w
}

// decodeData unmarshals the data field of a success response into out
func decodeData(t *testing.T, w *httptest.ResponseRecorder, out any) dto.Response {
	t.Helper()
	var envelope struct {
		dto.Response
		Data json.RawMessage `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope), w.Body.String())
	if out != nil {
		require.NoError(t, json.Unmarshal(envelope.Data, out))
	}
	return envelope.Response
}

func errorCode(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	resp := decodeResponse(t, w)
	require.NotNil(t, resp.Error, w.Body.String())
	return resp.Error.Code
}

func int64Ptr(v int64) *int64 {
	return &v
}

func shoe(name, slug, category string, price, stock int64) catalog.ProductAttributes {
	return catalog.ProductAttributes{
		Name:     name,
		Slug:     slug,
		Category: category,
		Price:    price,
		Stock:    stock,
	}
}
