package v1

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"math"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/divinecoid/sabkabazaar/internal/model"
	"github.com/divinecoid/sabkabazaar/internal/notify"
	"github.com/divinecoid/sabkabazaar/internal/payment"
	"github.com/divinecoid/sabkabazaar/internal/service"
	"github.com/divinecoid/sabkabazaar/internal/testutil"
	"github.com/divinecoid/sabkabazaar/pkg/middleware"
)

const gatewaySecret = "rzp_secret"

type sqlPinger struct{ db *sql.DB }

func (p sqlPinger) Ping(ctx context.Context) error { return p.db.PingContext(ctx) }

type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Errors  json.RawMessage `json:"errors"`
	Meta    MetaData        `json:"meta"`
}

type apiFixture struct {
	t      *testing.T
	db     *gorm.DB
	router *gin.Engine
	tokens *service.TokenIssuer

	// gatewayAmount is what the fake gateway reports for any fetched order.
	gatewayAmount int64
}

func newAPIFixture(t *testing.T) *apiFixture {
	t.Helper()
	gin.SetMode(gin.TestMode)

	f := &apiFixture{t: t, db: testutil.NewDB(t)}
	logger := testutil.Logger()

	gateway := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch {
		case r.Method == http.MethodPost && r.URL.Path == "/orders":
			var body map[string]any
			_ = json.NewDecoder(r.Body).Decode(&body)
			_ = json.NewEncoder(w).Encode(map[string]any{
				"id": "order_gw1", "amount": body["amount"], "currency": body["currency"], "status": "created",
			})
		case r.Method == http.MethodGet && strings.HasPrefix(r.URL.Path, "/orders/"):
			_ = json.NewEncoder(w).Encode(map[string]any{
				"id": strings.TrimPrefix(r.URL.Path, "/orders/"), "amount": f.gatewayAmount, "currency": "INR", "status": "paid",
			})
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(gateway.Close)

	f.tokens = service.NewTokenIssuer(testutil.KeyManager(t, false), time.Hour)
	auth := service.NewAuthService(f.db, f.tokens, logger)
	auth.SetHashCost(bcrypt.MinCost)

	bus := notify.NewBus(logger)
	orders := service.NewOrderService(f.db, bus, logger)
	client := payment.NewClient(payment.Config{
		KeyID:         "rzp_test_key",
		KeySecret:     gatewaySecret,
		BaseURL:       gateway.URL,
		RetryInterval: time.Millisecond,
	}, logger)

	sqlDB, err := f.db.DB()
	require.NoError(t, err)

	f.router = gin.New()
	f.router.Use(RequestID())
	RegisterRoutes(f.router.Group("/api"), Deps{
		Auth:     auth,
		Cart:     service.NewCartService(f.db, logger),
		Orders:   orders,
		Payments: service.NewPaymentService(client, orders, bus, logger, "INR", 10_000_000),
		Products: service.NewProductService(f.db, logger),
		Reviews:  service.NewReviewService(f.db),
		DB:       sqlPinger{sqlDB},
		Logger:   logger,
	})
	return f
}

func (f *apiFixture) token(user *model.User) string {
	f.t.Helper()
	session, err := f.tokens.Issue(user.ID)
	require.NoError(f.t, err)
	return session.Token
}

func (f *apiFixture) do(method, path, token string, body any) (*httptest.ResponseRecorder, envelope) {
	f.t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(f.t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)

	var env envelope
	require.NoError(f.t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	return w, env
}

func decode[T any](t *testing.T, raw json.RawMessage) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(raw, &v))
	return v
}

type orderData struct {
	Order model.Order `json:"order"`
}

func TestCreateOrderComputesTotalServerSide(t *testing.T) {
	f := newAPIFixture(t)
	user := testutil.CreateUser(t, f.db, testutil.Email(1), false)
	p := testutil.CreateProduct(t, f.db, "Notebook", 100, 10)

	w, env := f.do(http.MethodPost, "/api/orders", f.token(user), gin.H{
		"items": []gin.H{{"productId": p.ID, "quantity": 2, "price": 1}},
		"total": 200,
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.True(t, env.Success)

	order := decode[orderData](t, env.Data).Order
	assert.Equal(t, int64(200), order.Total)
	assert.Equal(t, model.OrderStatusPending, order.Status)
	require.Len(t, order.Items, 1)
	assert.Equal(t, 2, order.Items[0].Quantity)
	assert.Equal(t, int64(100), order.Items[0].Price)
	assert.Equal(t, 8, testutil.Stock(t, f.db, p.ID))
}

func TestCreateOrderRejectsOverdraw(t *testing.T) {
	f := newAPIFixture(t)
	user := testutil.CreateUser(t, f.db, testutil.Email(1), false)
	p := testutil.CreateProduct(t, f.db, "Notebook", 100, 1)

	w, env := f.do(http.MethodPost, "/api/orders", f.token(user), gin.H{
		"items": []gin.H{{"productId": p.ID, "quantity": 2}},
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.False(t, env.Success)
	assert.Equal(t, 1, testutil.Stock(t, f.db, p.ID))

	w, _ = f.do(http.MethodPost, "/api/orders", f.token(user), gin.H{"items": []gin.H{}})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, _ = f.do(http.MethodPost, "/api/orders", f.token(user), gin.H{
		"items": []gin.H{{"productId": p.ID, "quantity": math.MaxInt64}, {"productId": p.ID, "quantity": 2}},
	})
	assert.Equal(t, http.StatusBadRequest, w.Code, w.Body.String())
	assert.Equal(t, 1, testutil.Stock(t, f.db, p.ID))
}

func TestUpdateStatusRejectsUnknownStatus(t *testing.T) {
	f := newAPIFixture(t)
	admin := testutil.CreateUser(t, f.db, testutil.Email(1), true)
	buyer := testutil.CreateUser(t, f.db, testutil.Email(2), false)
	p := testutil.CreateProduct(t, f.db, "Notebook", 100, 10)

	_, env := f.do(http.MethodPost, "/api/orders", f.token(buyer), gin.H{
		"items": []gin.H{{"productId": p.ID, "quantity": 1}},
	})
	order := decode[orderData](t, env.Data).Order

	w, env := f.do(http.MethodPut, "/api/orders/"+order.ID+"/status", f.token(admin), gin.H{"status": "INVALID"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.False(t, env.Success)

	var stored model.Order
	require.NoError(t, f.db.First(&stored, "id = ?", order.ID).Error)
	assert.Equal(t, model.OrderStatusPending, stored.Status)

	w, env = f.do(http.MethodPut, "/api/orders/"+order.ID+"/status", f.token(admin), gin.H{"status": "SHIPPED"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, model.OrderStatusShipped, decode[orderData](t, env.Data).Order.Status)

	w, _ = f.do(http.MethodPut, "/api/orders/"+order.ID+"/status", f.token(admin), gin.H{"status": "PENDING"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, _ = f.do(http.MethodPut, "/api/orders/missing/status", f.token(admin), gin.H{"status": "SHIPPED"})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestAuthFailuresAreUniform(t *testing.T) {
	f := newAPIFixture(t)
	ghost := &model.User{ID: "00000000-0000-0000-0000-000000000000"}

	for _, token := range []string{"", "garbage", f.token(ghost)} {
		w, env := f.do(http.MethodGet, "/api/orders", token, nil)
		assert.Equal(t, http.StatusUnauthorized, w.Code, token)
		assert.Equal(t, "Unauthorized", env.Message)
		assert.False(t, env.Success)
	}
}

func TestAdminAndOwnershipChecks(t *testing.T) {
	f := newAPIFixture(t)
	buyer := testutil.CreateUser(t, f.db, testutil.Email(1), false)
	other := testutil.CreateUser(t, f.db, testutil.Email(2), false)
	admin := testutil.CreateUser(t, f.db, testutil.Email(3), true)
	p := testutil.CreateProduct(t, f.db, "Notebook", 100, 10)

	_, env := f.do(http.MethodPost, "/api/orders", f.token(buyer), gin.H{
		"items": []gin.H{{"productId": p.ID, "quantity": 1}},
	})
	order := decode[orderData](t, env.Data).Order

	w, _ := f.do(http.MethodGet, "/api/orders/all", f.token(buyer), nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w, _ = f.do(http.MethodPut, "/api/orders/"+order.ID+"/status", f.token(buyer), gin.H{"status": "SHIPPED"})
	assert.Equal(t, http.StatusForbidden, w.Code)

	w, _ = f.do(http.MethodGet, "/api/orders/"+order.ID, f.token(other), nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w, _ = f.do(http.MethodPost, "/api/orders/"+order.ID+"/cancel", f.token(other), nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w, _ = f.do(http.MethodGet, "/api/orders/"+order.ID, f.token(admin), nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w, env = f.do(http.MethodGet, "/api/orders/all", f.token(admin), nil)
	require.Equal(t, http.StatusOK, w.Code)
	all := decode[struct {
		Orders []model.Order `json:"orders"`
	}](t, env.Data)
	assert.Len(t, all.Orders, 1)

	w, env = f.do(http.MethodPost, "/api/orders/"+order.ID+"/cancel", f.token(buyer), nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, model.OrderStatusCancelled, decode[orderData](t, env.Data).Order.Status)
	assert.Equal(t, 10, testutil.Stock(t, f.db, p.ID))
}

func TestSignupLoginAndSession(t *testing.T) {
	f := newAPIFixture(t)
	creds := gin.H{"email": "Asha@Example.com", "password": "correct horse", "name": "Asha"}

	w, env := f.do(http.MethodPost, "/api/signup", "", creds)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.NotContains(t, string(env.Data), "password")

	w, _ = f.do(http.MethodPost, "/api/signup", "", creds)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, _ = f.do(http.MethodPost, "/api/signup", "", gin.H{"email": "long@example.com", "password": strings.Repeat("p", 80), "name": "Long"})
	assert.Equal(t, http.StatusBadRequest, w.Code, w.Body.String())

	w, env = f.do(http.MethodPost, "/api/signup", "", gin.H{"email": "not-an-email", "password": "x", "name": ""})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Invalid request parameters", env.Message)

	w, _ = f.do(http.MethodPost, "/api/login", "", gin.H{"email": "asha@example.com", "password": "wrong password"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w, env = f.do(http.MethodPost, "/api/login", "", gin.H{"email": "asha@example.com", "password": "correct horse"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	login := decode[struct {
		Token     string    `json:"token"`
		ExpiresAt time.Time `json:"expiresAt"`
	}](t, env.Data)
	assert.NotEmpty(t, login.Token)

	var cookie *http.Cookie
	for _, c := range w.Result().Cookies() {
		if c.Name == middleware.TokenCookie {
			cookie = c
		}
	}
	require.NotNil(t, cookie)
	assert.True(t, cookie.HttpOnly)
	assert.Equal(t, login.Token, cookie.Value)

	req := httptest.NewRequest(http.MethodGet, "/api/me", nil)
	req.AddCookie(cookie)
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	var me envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &me))
	user := decode[struct {
		User *model.User `json:"user"`
	}](t, me.Data).User
	require.NotNil(t, user)
	assert.Equal(t, "asha@example.com", user.Email)

	w, env = f.do(http.MethodGet, "/api/me", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"user":null}`, string(env.Data))

	w, _ = f.do(http.MethodGet, "/api/me", "garbage", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestPaymentFlow(t *testing.T) {
	f := newAPIFixture(t)
	user := testutil.CreateUser(t, f.db, testutil.Email(1), false)
	p := testutil.CreateProduct(t, f.db, "Headphones", 150000, 5)
	f.gatewayAmount = 300000

	w, env := f.do(http.MethodGet, "/api/razorpay-key", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"key":"rzp_test_key"}`, string(env.Data))

	w, env = f.do(http.MethodPost, "/api/create-razorpay-order", "", gin.H{"amount": 300000})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	created := decode[struct {
		OrderID  string `json:"orderId"`
		Amount   int64  `json:"amount"`
		Currency string `json:"currency"`
	}](t, env.Data)
	assert.Equal(t, "order_gw1", created.OrderID)
	assert.Equal(t, int64(300000), created.Amount)
	assert.Equal(t, "INR", created.Currency)

	body := gin.H{
		"razorpayOrderId":   created.OrderID,
		"razorpayPaymentId": "pay_1",
		"razorpaySignature": "deadbeef",
		"items":             []gin.H{{"productId": p.ID, "quantity": 2}},
	}
	w, _ = f.do(http.MethodPost, "/api/razorpay/verify", f.token(user), body)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, 5, testutil.Stock(t, f.db, p.ID))

	body["razorpaySignature"] = payment.Signature(gatewaySecret, created.OrderID, "pay_1")
	w, env = f.do(http.MethodPost, "/api/razorpay/verify", f.token(user), body)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	verified := decode[struct {
		Success bool        `json:"success"`
		OrderID string      `json:"orderId"`
		Order   model.Order `json:"order"`
	}](t, env.Data)
	assert.True(t, verified.Success)
	assert.Equal(t, model.OrderStatusProcessing, verified.Order.Status)
	assert.Equal(t, int64(300000), verified.Order.Total)
	assert.Equal(t, 3, testutil.Stock(t, f.db, p.ID))

	w, env = f.do(http.MethodPost, "/api/razorpay/verify", f.token(user), body)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, verified.OrderID, decode[struct {
		OrderID string `json:"orderId"`
	}](t, env.Data).OrderID)
	assert.Equal(t, int64(1), testutil.Count(t, f.db, &model.Order{}))

	w, _ = f.do(http.MethodPost, "/api/razorpay/verify", "", body)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestPaymentVerifiedAfterStockRanOut(t *testing.T) {
	f := newAPIFixture(t)
	user := testutil.CreateUser(t, f.db, testutil.Email(1), false)
	rival := testutil.CreateUser(t, f.db, testutil.Email(2), false)
	p := testutil.CreateProduct(t, f.db, "Last one", 150000, 1)
	f.gatewayAmount = 150000

	w, _ := f.do(http.MethodPost, "/api/orders", f.token(rival), gin.H{
		"items": []gin.H{{"productId": p.ID, "quantity": 1}},
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	body := gin.H{
		"razorpayOrderId":   "order_gw1",
		"razorpayPaymentId": "pay_captured",
		"razorpaySignature": payment.Signature(gatewaySecret, "order_gw1", "pay_captured"),
		"items":             []gin.H{{"productId": p.ID, "quantity": 1}},
	}
	w, env := f.do(http.MethodPost, "/api/razorpay/verify", f.token(user), body)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	order := decode[orderData](t, env.Data).Order
	assert.Equal(t, model.OrderStatusCancelled, order.Status)
	assert.Equal(t, model.CancelReasonOutOfStock, order.CancelReason)
	require.NotNil(t, order.PaymentID)
	assert.Equal(t, "pay_captured", *order.PaymentID)
	assert.Equal(t, 0, testutil.Stock(t, f.db, p.ID))

	w, _ = f.do(http.MethodPost, "/api/razorpay/verify", f.token(user), body)
	require.Equal(t, http.StatusOK, w.Code)
	var recorded int64
	require.NoError(t, f.db.Model(&model.Order{}).Where("payment_id = ?", "pay_captured").Count(&recorded).Error)
	assert.Equal(t, int64(1), recorded)
}

func TestPaymentAmountMismatch(t *testing.T) {
	f := newAPIFixture(t)
	user := testutil.CreateUser(t, f.db, testutil.Email(1), false)
	p := testutil.CreateProduct(t, f.db, "Headphones", 150000, 5)
	f.gatewayAmount = 100

	w, _ := f.do(http.MethodPost, "/api/razorpay/verify", f.token(user), gin.H{
		"razorpayOrderId":   "order_x",
		"razorpayPaymentId": "pay_x",
		"razorpaySignature": payment.Signature(gatewaySecret, "order_x", "pay_x"),
		"items":             []gin.H{{"productId": p.ID, "quantity": 1}},
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, int64(0), testutil.Count(t, f.db, &model.Order{}))
}

func TestCartEndpoints(t *testing.T) {
	f := newAPIFixture(t)
	user := testutil.CreateUser(t, f.db, testutil.Email(1), false)
	p := testutil.CreateProduct(t, f.db, "Notebook", 250, 3)
	token := f.token(user)

	w, _ := f.do(http.MethodPost, "/api/cart", token, gin.H{"productId": p.ID})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	w, _ = f.do(http.MethodPost, "/api/cart", token, gin.H{"productId": p.ID, "quantity": 5})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	w, _ = f.do(http.MethodPost, "/api/cart", token, gin.H{"productId": p.ID, "quantity": math.MaxInt64})
	assert.Equal(t, http.StatusBadRequest, w.Code, w.Body.String())

	w, env := f.do(http.MethodGet, "/api/cart", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	cart := decode[service.Cart](t, env.Data)
	require.Len(t, cart.Items, 1)
	assert.Equal(t, 1, cart.Items[0].Quantity)
	assert.Equal(t, int64(250), cart.Subtotal)

	w, _ = f.do(http.MethodDelete, "/api/cart", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, int64(0), testutil.Count(t, f.db, &model.CartItem{}))
}

func TestHealthAndRequestID(t *testing.T) {
	f := newAPIFixture(t)

	req := httptest.NewRequest(http.MethodGet, "/api/healthz", nil)
	req.Header.Set(RequestIDHeader, "req-42")
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "req-42", w.Header().Get(RequestIDHeader))
	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	assert.Equal(t, "req-42", env.Meta.RequestID)
	assert.NotEmpty(t, env.Meta.Timestamp)
}

func TestCatalogImportAndReviews(t *testing.T) {
	f := newAPIFixture(t)
	admin := testutil.CreateUser(t, f.db, testutil.Email(1), true)
	buyer := testutil.CreateUser(t, f.db, testutil.Email(2), false)

	wb := excelize.NewFile()
	defer wb.Close()
	require.NoError(t, wb.SetSheetName("Sheet1", service.ProductSheet))
	require.NoError(t, wb.SetSheetRow(service.ProductSheet, "A1", &[]interface{}{"name", "category", "price", "description", "stock"}))
	require.NoError(t, wb.SetSheetRow(service.ProductSheet, "A2", &[]interface{}{"Brass Lamp", "decor", "1,499.00", "Hand cast", "4"}))
	xlsx, err := wb.WriteToBuffer()
	require.NoError(t, err)

	upload := func(token string) *httptest.ResponseRecorder {
		var body bytes.Buffer
		mw := multipart.NewWriter(&body)
		part, err := mw.CreateFormFile("file", "products.xlsx")
		require.NoError(t, err)
		_, err = part.Write(xlsx.Bytes())
		require.NoError(t, err)
		require.NoError(t, mw.Close())

		req := httptest.NewRequest(http.MethodPost, "/api/products/import", &body)
		req.Header.Set("Content-Type", mw.FormDataContentType())
		req.Header.Set("Authorization", "Bearer "+token)
		w := httptest.NewRecorder()
		f.router.ServeHTTP(w, req)
		return w
	}

	assert.Equal(t, http.StatusForbidden, upload(f.token(buyer)).Code)
	w := upload(f.token(admin))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w, env := f.do(http.MethodGet, "/api/products?category=decor", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	page := decode[service.ProductPage](t, env.Data)
	require.Len(t, page.Products, 1)
	lamp := page.Products[0]
	assert.Equal(t, int64(149900), lamp.Price)

	w, _ = f.do(http.MethodGet, "/api/products?limit=abc", "", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, _ = f.do(http.MethodGet, "/api/products/"+lamp.ID, "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	w, _ = f.do(http.MethodGet, "/api/products/missing", "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	reviewPath := "/api/products/" + lamp.ID + "/reviews"
	w, _ = f.do(http.MethodPost, reviewPath, f.token(buyer), gin.H{"rating": 5, "comment": "Lovely"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	w, _ = f.do(http.MethodPost, reviewPath, f.token(buyer), gin.H{"rating": 4})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	w, _ = f.do(http.MethodPost, reviewPath, f.token(admin), gin.H{"rating": 9})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, env = f.do(http.MethodGet, reviewPath, "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	reviews := decode[struct {
		Reviews []model.Review `json:"reviews"`
	}](t, env.Data).Reviews
	require.Len(t, reviews, 1)

	w, _ = f.do(http.MethodDelete, "/api/reviews/"+reviews[0].ID, f.token(admin), nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	w, _ = f.do(http.MethodDelete, "/api/reviews/"+reviews[0].ID, f.token(buyer), nil)
	assert.Equal(t, http.StatusOK, w.Code)
}
