package adminapi

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/haider-deku/3d-marketplace/config"
	"github.com/haider-deku/3d-marketplace/internal/app"
	"github.com/haider-deku/3d-marketplace/internal/domain"
	"github.com/haider-deku/3d-marketplace/internal/webserver"
)

type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Code    string          `json:"code"`
	Count   *int            `json:"count"`
	Data    json.RawMessage `json:"data"`
	Error   json.RawMessage `json:"error"`
}

type testServer struct {
	t  *testing.T
	e  *echo.Echo
	db *gorm.DB
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	cfg := config.DefaultAppConfig()
	cfg.Commerce.BcryptCost = bcrypt.MinCost
	application := app.NewApplication(cfg)
	application.OverrideDB(db)
	require.NoError(t, application.MigrateDB(false))
	application.InitServices()

	Init()
	srv := webserver.NewAdminServer(application)
	return &testServer{t: t, e: srv.Echo(), db: db}
}

func (s *testServer) do(method, path string, body interface{}) (int, envelope) {
	s.t.Helper()
	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(s.t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	s.e.ServeHTTP(rec, req)

	var env envelope
	if rec.Body.Len() > 0 {
		require.NoError(s.t, json.Unmarshal(rec.Body.Bytes(), &env), rec.Body.String())
	}
	return rec.Code, env
}

func decode(t *testing.T, raw json.RawMessage, v interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(raw, v), string(raw))
}

type idOnly struct {
	ID string `json:"id"`
}

func (s *testServer) createCategory(name string) string {
	s.t.Helper()
	code, env := s.do(http.MethodPost, "/api/category", map[string]string{"categName": name})
	require.Equal(s.t, http.StatusCreated, code, env.Message)
	var out idOnly
	decode(s.t, env.Data, &out)
	return out.ID
}

func (s *testServer) createProduct(name, categoryID string, pricing ...map[string]interface{}) string {
	s.t.Helper()
	code, env := s.do(http.MethodPost, "/api/products", map[string]interface{}{
		"productName": name,
		"type":        "catalogue",
		"category":    categoryID,
		"pricing":     pricing,
		"images":      []string{name + ".png"},
	})
	require.Equal(s.t, http.StatusCreated, code, env.Message)
	var out idOnly
	decode(s.t, env.Data, &out)
	return out.ID
}

func (s *testServer) createClient(username string) string {
	s.t.Helper()
	code, env := s.do(http.MethodPost, "/api/client", map[string]string{
		"username": username,
		"email":    username + "@Example.com",
		"password": "secret123",
	})
	require.Equal(s.t, http.StatusCreated, code, env.Message)
	var out idOnly
	decode(s.t, env.Data, &out)
	return out.ID
}

func size(name string, price float64) map[string]interface{} {
	return map[string]interface{}{"size": name, "price": price}
}

func TestHealthAndWelcome(t *testing.T) {
	s := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	s.e.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"OK"`)
	assert.NotEmpty(t, rec.Header().Get("X-Request-Id"))

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	rec = httptest.NewRecorder()
	s.e.ServeHTTP(rec, req)
	assert.Contains(t, rec.Body.String(), "Welcome to 3D Marketplace API")
}

func TestUnknownRouteUsesEnvelope(t *testing.T) {
	s := newTestServer(t)
	code, env := s.do(http.MethodGet, "/api/nothing-here", nil)
	assert.Equal(t, http.StatusNotFound, code)
	assert.False(t, env.Success)
	assert.Equal(t, "NOT_FOUND", env.Code)
}

func TestCartToOrderFlow(t *testing.T) {
	s := newTestServer(t)
	cat := s.createCategory("Figures")
	p1 := s.createProduct("P1", cat, size("small", 6), size("medium", 10))
	client := s.createClient("buyer1")

	code, env := s.do(http.MethodGet, "/api/carts/"+client, nil)
	require.Equal(t, http.StatusOK, code)
	assert.JSONEq(t, `{"clientId":"`+client+`","items":[],"totalPrice":0}`, string(env.Data))

	code, env = s.do(http.MethodPost, "/api/carts/add", map[string]interface{}{
		"clientId": client, "productId": p1, "size": "medium", "quantity": 2,
	})
	require.Equal(t, http.StatusOK, code, env.Message)
	assert.Equal(t, "Item added to cart", env.Message)

	code, env = s.do(http.MethodGet, "/api/carts/"+client, nil)
	require.Equal(t, http.StatusOK, code)
	var view struct {
		Items []struct {
			ProductID    string  `json:"productId"`
			ProductName  string  `json:"productName"`
			CategName    string  `json:"categName"`
			PricePerUnit float64 `json:"pricePerUnit"`
			ItemTotal    float64 `json:"itemTotal"`
		} `json:"items"`
		TotalPrice float64 `json:"totalPrice"`
	}
	decode(t, env.Data, &view)
	require.Len(t, view.Items, 1)
	assert.Equal(t, p1, view.Items[0].ProductID)
	assert.Equal(t, "Figures", view.Items[0].CategName)
	assert.Equal(t, 10.0, view.Items[0].PricePerUnit)
	assert.Equal(t, 20.0, view.TotalPrice)

	code, env = s.do(http.MethodPost, "/api/orders/checkout", map[string]string{"clientId": client})
	require.Equal(t, http.StatusCreated, code, env.Message)
	assert.Equal(t, "Order created successfully. Cart has been cleared.", env.Message)
	var order struct {
		ID         string  `json:"id"`
		ClientID   string  `json:"clientId"`
		Status     string  `json:"status"`
		TotalPrice float64 `json:"totalPrice"`
		Items      []struct {
			ProductID string  `json:"productId"`
			Size      string  `json:"size"`
			Quantity  int     `json:"quantity"`
			Price     float64 `json:"price"`
		} `json:"items"`
	}
	decode(t, env.Data, &order)
	assert.Equal(t, client, order.ClientID)
	assert.Equal(t, "pending", order.Status)
	assert.Equal(t, 20.0, order.TotalPrice)
	require.Len(t, order.Items, 1)
	assert.Equal(t, 10.0, order.Items[0].Price)

	code, env = s.do(http.MethodGet, "/api/carts/"+client, nil)
	require.Equal(t, http.StatusOK, code)
	decode(t, env.Data, &view)
	assert.Empty(t, view.Items)

	code, env = s.do(http.MethodPost, "/api/orders/checkout", map[string]string{"clientId": client})
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "Cart is empty. Cannot create order.", env.Message)

	code, env = s.do(http.MethodPut, "/api/orders/"+order.ID+"/status", map[string]string{"status": "shipped"})
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "Invalid status. Must be one of: pending, processing, completed, cancelled", env.Message)

	code, env = s.do(http.MethodPut, "/api/orders/"+order.ID+"/status", map[string]string{"status": "processing"})
	require.Equal(t, http.StatusOK, code)
	decode(t, env.Data, &order)
	assert.Equal(t, "processing", order.Status)

	code, env = s.do(http.MethodGet, "/api/orders/client/"+client, nil)
	require.Equal(t, http.StatusOK, code)
	require.NotNil(t, env.Count)
	assert.Equal(t, 1, *env.Count)

	code, _ = s.do(http.MethodDelete, "/api/orders/"+order.ID, nil)
	assert.Equal(t, http.StatusOK, code)
	code, env = s.do(http.MethodGet, "/api/orders/"+order.ID, nil)
	assert.Equal(t, http.StatusNotFound, code)
	assert.Equal(t, "Order not found", env.Message)
}

func TestCartErrors(t *testing.T) {
	s := newTestServer(t)
	cat := s.createCategory("Parts")
	p := s.createProduct("Gear", cat, size("small", 1))
	client := s.createClient("buyer2")

	code, env := s.do(http.MethodGet, "/api/carts/not-a-number", nil)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "INVALID_ID", env.Code)

	code, env = s.do(http.MethodGet, "/api/carts/123", nil)
	assert.Equal(t, http.StatusNotFound, code)
	assert.Equal(t, "Client not found", env.Message)

	code, env = s.do(http.MethodPost, "/api/carts/add", map[string]interface{}{
		"clientId": client, "productId": p, "size": "large",
	})
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "Size 'large' not available for this product. Available sizes: small", env.Message)

	code, env = s.do(http.MethodPost, "/api/carts/add", map[string]interface{}{"clientId": client})
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "VALIDATION_ERROR", env.Code)

	code, env = s.do(http.MethodPut, "/api/carts/update", map[string]interface{}{
		"clientId": client, "productId": p, "size": "small", "quantity": 3,
	})
	assert.Equal(t, http.StatusNotFound, code)
	assert.Equal(t, "Cart not found", env.Message)

	code, _ = s.do(http.MethodPost, "/api/carts/add", map[string]interface{}{
		"clientId": client, "productId": p, "size": "small",
	})
	require.Equal(t, http.StatusOK, code)

	code, env = s.do(http.MethodPut, "/api/carts/update", map[string]interface{}{
		"clientId": client, "productId": p, "size": "small", "quantity": 0,
	})
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "Quantity must be at least 1", env.Message)

	code, env = s.do(http.MethodDelete, "/api/carts/remove", map[string]interface{}{
		"clientId": client, "productId": p, "size": "medium",
	})
	assert.Equal(t, http.StatusNotFound, code)
	assert.Equal(t, "Item not found in cart", env.Message)

	code, env = s.do(http.MethodDelete, "/api/carts/remove", map[string]interface{}{
		"clientId": client, "productId": p, "size": "small",
	})
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "Item removed from cart", env.Message)

	code, env = s.do(http.MethodDelete, "/api/carts/clear/"+client, nil)
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "Cart cleared", env.Message)
}

func TestProductValidation(t *testing.T) {
	s := newTestServer(t)
	cat := s.createCategory("Home")

	tests := []struct {
		name    string
		body    map[string]interface{}
		status  int
		message string
	}{
		{"no pricing", map[string]interface{}{"productName": "Vase", "type": "custom", "category": cat}, http.StatusBadRequest, "Product must have at least one pricing option"},
		{"bad size", map[string]interface{}{"productName": "Vase", "type": "custom", "category": cat, "pricing": []interface{}{size("xl", 1)}}, http.StatusBadRequest, "Invalid size. Must be one of: small, medium, large"},
		{"negative price", map[string]interface{}{"productName": "Vase", "type": "custom", "category": cat, "pricing": []interface{}{size("small", -1)}}, http.StatusBadRequest, "Each pricing option must have a valid price (>= 0)"},
		{"missing price", map[string]interface{}{"productName": "Vase", "type": "custom", "category": cat, "pricing": []interface{}{map[string]string{"size": "small"}}}, http.StatusBadRequest, "Each pricing option must have a valid price (>= 0)"},
		{"duplicate size", map[string]interface{}{"productName": "Vase", "type": "custom", "category": cat, "pricing": []interface{}{size("small", 1), size("small", 2)}}, http.StatusBadRequest, "Duplicate size found in pricing options"},
		{"bad type", map[string]interface{}{"productName": "Vase", "type": "service", "category": cat, "pricing": []interface{}{size("small", 1)}}, http.StatusBadRequest, `Type must be either "custom" or "catalogue"`},
		{"unknown category", map[string]interface{}{"productName": "Vase", "type": "custom", "category": "99", "pricing": []interface{}{size("small", 1)}}, http.StatusNotFound, "Category not found"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, env := s.do(http.MethodPost, "/api/products", tt.body)
			assert.Equal(t, tt.status, code)
			assert.Equal(t, tt.message, env.Message)
		})
	}
	var count int64
	require.NoError(t, s.db.Model(&domain.Product{}).Count(&count).Error)
	assert.Equal(t, int64(0), count)
}

func TestProductQueriesAndUpdate(t *testing.T) {
	s := newTestServer(t)
	home := s.createCategory("Home")
	toys := s.createCategory("Toys")
	vase := s.createProduct("Vase", home, size("small", 3), size("large", 9))
	s.createProduct("Robot", toys, size("medium", 15))

	code, env := s.do(http.MethodGet, "/api/products", nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, 2, *env.Count)

	code, env = s.do(http.MethodGet, "/api/products/category/"+home, nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, 1, *env.Count)

	code, _ = s.do(http.MethodGet, "/api/products/category/12345", nil)
	assert.Equal(t, http.StatusNotFound, code)

	code, env = s.do(http.MethodGet, "/api/products/category-name/Toys", nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, 1, *env.Count)

	code, env = s.do(http.MethodGet, "/api/products/type/catalogue", nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, 2, *env.Count)

	code, _ = s.do(http.MethodGet, "/api/products/type/service", nil)
	assert.Equal(t, http.StatusBadRequest, code)

	code, env = s.do(http.MethodPut, "/api/products/"+vase, map[string]interface{}{
		"category": toys,
		"pricing":  []interface{}{size("medium", 4)},
	})
	require.Equal(t, http.StatusOK, code, env.Message)
	var updated struct {
		Category  string `json:"category"`
		CategName string `json:"categName"`
		Pricing   []struct {
			Size  string  `json:"size"`
			Price float64 `json:"price"`
		} `json:"pricing"`
	}
	decode(t, env.Data, &updated)
	assert.Equal(t, toys, updated.Category)
	assert.Equal(t, "Toys", updated.CategName)
	require.Len(t, updated.Pricing, 1)
	assert.Equal(t, "medium", updated.Pricing[0].Size)

	code, env = s.do(http.MethodGet, "/api/products/"+vase, nil)
	require.Equal(t, http.StatusOK, code)
	decode(t, env.Data, &updated)
	require.Len(t, updated.Pricing, 1)
	assert.Equal(t, 4.0, updated.Pricing[0].Price)

	code, _ = s.do(http.MethodDelete, "/api/products/"+vase, nil)
	assert.Equal(t, http.StatusOK, code)
	code, env = s.do(http.MethodDelete, "/api/products/"+vase, nil)
	assert.Equal(t, http.StatusNotFound, code)
	assert.Equal(t, "Product not found", env.Message)
}

func TestCategoryRenameAndResync(t *testing.T) {
	s := newTestServer(t)
	cat := s.createCategory("Minis")
	p := s.createProduct("Orc", cat, size("small", 2))

	code, env := s.do(http.MethodPost, "/api/category", map[string]string{"categName": " Minis "})
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "CATEGORY_EXISTS", env.Code)

	code, _ = s.do(http.MethodPut, "/api/category/"+cat, map[string]string{"categName": "Miniatures"})
	require.Equal(t, http.StatusOK, code)

	var stored domain.Product
	id, _ := strconv.ParseInt(p, 10, 64)
	require.NoError(t, s.db.First(&stored, id).Error)
	assert.Equal(t, "Minis", stored.CategName)

	code, env = s.do(http.MethodPost, "/api/products/"+p+"/resync-category", nil)
	require.Equal(t, http.StatusOK, code, env.Message)
	require.NoError(t, s.db.First(&stored, id).Error)
	assert.Equal(t, "Miniatures", stored.CategName)

	code, env = s.do(http.MethodPost, "/api/category/"+cat+"/resync-products", nil)
	require.Equal(t, http.StatusOK, code)
	assert.JSONEq(t, `{"updated":1}`, string(env.Data))

	code, _ = s.do(http.MethodDelete, "/api/category/"+cat, nil)
	assert.Equal(t, http.StatusOK, code)
	code, env = s.do(http.MethodGet, "/api/category/"+cat, nil)
	assert.Equal(t, http.StatusNotFound, code)
	assert.Equal(t, "Category not found", env.Message)
}

func TestClientAccounts(t *testing.T) {
	s := newTestServer(t)
	id := s.createClient("maker")

	code, env := s.do(http.MethodGet, "/api/client/"+id, nil)
	require.Equal(t, http.StatusOK, code)
	assert.NotContains(t, string(env.Data), "password")
	assert.Contains(t, string(env.Data), `"email":"maker@example.com"`)

	code, env = s.do(http.MethodPost, "/api/client", map[string]string{
		"username": "other", "email": "MAKER@example.com", "password": "secret123",
	})
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "Client with this email or username already exists", env.Message)

	code, env = s.do(http.MethodPost, "/api/client", map[string]string{
		"username": "x", "email": "not-an-email", "password": "1",
	})
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "VALIDATION_ERROR", env.Code)

	code, env = s.do(http.MethodPut, "/api/client/"+id, map[string]string{"password": "newsecret"})
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "Client updated successfully", env.Message)

	code, _ = s.do(http.MethodDelete, "/api/client/"+id, nil)
	assert.Equal(t, http.StatusOK, code)
	code, env = s.do(http.MethodGet, "/api/client/"+id, nil)
	assert.Equal(t, http.StatusNotFound, code)
	assert.Equal(t, "Client not found", env.Message)
}

func TestAdminAccounts(t *testing.T) {
	s := newTestServer(t)
	code, env := s.do(http.MethodPost, "/api/admin", map[string]string{"username": "alice", "password": "secret123"})
	require.Equal(t, http.StatusCreated, code)
	var alice idOnly
	decode(t, env.Data, &alice)

	code, _ = s.do(http.MethodPost, "/api/admin", map[string]string{"username": "bob", "password": "secret123"})
	require.Equal(t, http.StatusCreated, code)

	code, env = s.do(http.MethodPost, "/api/admin", map[string]string{"username": "bob", "password": "secret123"})
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "Admin with this username already exists", env.Message)

	code, env = s.do(http.MethodPut, "/api/admin/"+alice.ID, map[string]string{"username": "bob"})
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "Username already in use by another admin", env.Message)

	code, env = s.do(http.MethodGet, "/api/admin", nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, 2, *env.Count)
	assert.NotContains(t, string(env.Data), "password")
}

func TestUniquenessCheckFailureIsReported(t *testing.T) {
	s := newTestServer(t)
	err := s.db.Callback().Query().Before("gorm:query").Register("test:fail_lookup", func(tx *gorm.DB) {
		switch tx.Statement.Table {
		case "category", "client", "admin":
			_ = tx.AddError(errors.New("lookup unavailable"))
		}
	})
	require.NoError(t, err)

	tests := []struct {
		name    string
		path    string
		body    map[string]string
		message string
		model   interface{}
	}{
		{"category", "/api/category", map[string]string{"categName": "Tools"}, "Error creating Category", &domain.Category{}},
		{"client", "/api/client", map[string]string{"username": "maker", "email": "maker@example.com", "password": "secret123"}, "Error creating client", &domain.Client{}},
		{"admin", "/api/admin", map[string]string{"username": "alice", "password": "secret123"}, "Error creating admin", &domain.Admin{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, env := s.do(http.MethodPost, tt.path, tt.body)
			assert.Equal(t, http.StatusInternalServerError, code)
			assert.Equal(t, "DATABASE_ERROR", env.Code)
			assert.Equal(t, tt.message, env.Message)
			assert.Contains(t, string(env.Error), "lookup unavailable")
		})
	}

	require.NoError(t, s.db.Callback().Query().Remove("test:fail_lookup"))
	for _, tt := range tests {
		var n int64
		require.NoError(t, s.db.Model(tt.model).Count(&n).Error)
		assert.Equal(t, int64(0), n, tt.name)
	}
}
