package controllers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Mahbub-Sajon/srs-publications-server/internal/cart"
	"github.com/Mahbub-Sajon/srs-publications-server/internal/orders"
	"github.com/Mahbub-Sajon/srs-publications-server/internal/payments"
	"github.com/Mahbub-Sajon/srs-publications-server/internal/products"
	"github.com/Mahbub-Sajon/srs-publications-server/internal/statistics"
	"github.com/Mahbub-Sajon/srs-publications-server/internal/users"
	pkgerrors "github.com/Mahbub-Sajon/srs-publications-server/pkg/errors"
	"github.com/Mahbub-Sajon/srs-publications-server/pkg/logger"
)

func testLogger() *logger.Logger {
	return logger.New(logger.Options{ServiceName: "controllers-test", Level: logger.ParseLevel("error"), Output: &bytes.Buffer{}})
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func errorCode(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	body := decodeBody(t, rec)
	envelope, ok := body["error"].(map[string]any)
	require.True(t, ok, "missing error envelope: %s", rec.Body.String())
	return envelope["code"].(string)
}

type stubPinger struct{ err error }

func (s stubPinger) Ping(context.Context) error { return s.err }

func TestRootAndHealth(t *testing.T) {
	rec := httptest.NewRecorder()
	Root()(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "srs-publication is publishing", rec.Body.String())

	rec = httptest.NewRecorder()
	HealthLive("test")(rec, httptest.NewRequest(http.MethodGet, "/health/live", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "test", rec.Header().Get("X-SRS-Env"))

	rec = httptest.NewRecorder()
	HealthReady("test", testLogger(),
		Dependency{Name: "db", Pinger: stubPinger{}},
		Dependency{Name: "redis"},
	)(rec, httptest.NewRequest(http.MethodGet, "/health/ready", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	checks := decodeBody(t, rec)["checks"].(map[string]any)
	assert.Equal(t, map[string]any{"db": "ok"}, checks)

	rec = httptest.NewRecorder()
	HealthReady("test", testLogger(),
		Dependency{Name: "db", Pinger: stubPinger{err: errors.New("down")}},
	)(rec, httptest.NewRequest(http.MethodGet, "/health/ready", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Equal(t, string(pkgerrors.CodeDependency), errorCode(t, rec))
}

type stubUsers struct {
	created   users.CreateUserInput
	updated   [2]string
	isAdmin   bool
	promoted  uuid.UUID
	deleteErr error
}

func (s *stubUsers) CreateUser(_ context.Context, in users.CreateUserInput) (*users.UserDTO, error) {
	if in.Email == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "Name and email are required")
	}
	s.created = in
	return &users.UserDTO{ID: uuid.MustParse("00000000-0000-0000-0000-000000000001"), Name: in.Name, Email: in.Email}, nil
}

func (s *stubUsers) ListUsers(context.Context) ([]users.UserDTO, error) {
	return []users.UserDTO{{Name: "a"}}, nil
}

func (s *stubUsers) GetUserByEmail(_ context.Context, email string) (*users.UserDTO, error) {
	if email != "a@b.test" {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "User not found")
	}
	return &users.UserDTO{Email: email}, nil
}

func (s *stubUsers) UpdateUserName(_ context.Context, email, name string) error {
	s.updated = [2]string{email, name}
	return nil
}

func (s *stubUsers) DeleteUserByID(context.Context, uuid.UUID) error { return s.deleteErr }

func (s *stubUsers) PromoteToAdmin(_ context.Context, id uuid.UUID) (*users.UpdateResult, error) {
	s.promoted = id
	return &users.UpdateResult{Acknowledged: true, MatchedCount: 1, ModifiedCount: 1}, nil
}

func (s *stubUsers) IsAdmin(context.Context, string) (bool, error) { return s.isAdmin, nil }

func usersRouter(svc users.Service) http.Handler {
	logg := testLogger()
	r := chi.NewRouter()
	r.Post("/api/users", CreateUser(svc, logg))
	r.Get("/api/users", ListUsers(svc, logg))
	r.Get("/api/users/admin/{email}", CheckAdmin(svc, logg))
	r.Get("/api/users/{email}", GetUser(svc, logg))
	r.Put("/api/users/{email}", UpdateUser(svc, logg))
	r.Delete("/api/users/{id}", DeleteUser(svc, logg))
	r.Patch("/users/admin/{id}", PromoteUser(svc, logg))
	return r
}

func TestUserControllers(t *testing.T) {
	svc := &stubUsers{isAdmin: true}
	router := usersRouter(svc)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/users", strings.NewReader(`{"name":"Ada","email":"ada@b.test"}`)))
	assert.Equal(t, http.StatusCreated, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, "User created successfully", body["message"])
	assert.Equal(t, "00000000-0000-0000-0000-000000000001", body["userId"])

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/users", strings.NewReader(`{"name":"Ada"}`)))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/users/admin/a@b.test", nil))
	assert.JSONEq(t, `{"isAdmin":true}`, rec.Body.String())

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/users/missing@b.test", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPut, "/api/users/a%40b.test", strings.NewReader(`{"name":"New"}`)))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, [2]string{"a@b.test", "New"}, svc.updated)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/api/users/not-a-uuid", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	svc.deleteErr = pkgerrors.New(pkgerrors.CodeNotFound, "User not found")
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/api/users/"+uuid.NewString(), nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	id := uuid.New()
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPatch, "/users/admin/"+id.String(), nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, id, svc.promoted)
}

type stubProducts struct{ created products.CreateProductInput }

func (s *stubProducts) CreateProduct(_ context.Context, in products.CreateProductInput) (*products.ProductDTO, error) {
	s.created = in
	return &products.ProductDTO{ID: uuid.MustParse("00000000-0000-0000-0000-0000000000aa")}, nil
}

func (s *stubProducts) ListProducts(context.Context) ([]products.ProductDTO, error) {
	return []products.ProductDTO{}, nil
}

func (s *stubProducts) GetProduct(context.Context, uuid.UUID) (*products.ProductDTO, error) {
	return nil, pkgerrors.New(pkgerrors.CodeNotFound, "Product not found")
}

func errorEnvelope(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	envelope, ok := decodeBody(t, rec)["error"].(map[string]any)
	require.True(t, ok, "missing error envelope: %s", rec.Body.String())
	return envelope
}

func TestRequestValidationRejectsMissingFields(t *testing.T) {
	logg := testLogger()
	productSvc := &stubProducts{}
	orderSvc := &stubOrders{}
	paymentSvc := &stubPayments{}
	r := chi.NewRouter()
	r.Post("/api/users", CreateUser(&stubUsers{}, logg))
	r.Put("/api/users/{email}", UpdateUser(&stubUsers{}, logg))
	r.Post("/products", CreateProduct(productSvc, logg))
	r.Post("/api/cart", AddToCart(&stubCart{}, logg))
	r.Post("/api/orders", PlaceOrder(orderSvc, logg))
	r.Post("/create-payment", CreatePayment(paymentSvc, logg))

	cases := []struct {
		name    string
		method  string
		path    string
		body    string
		message string
		details map[string]any
	}{
		{
			name: "user without email", method: http.MethodPost, path: "/api/users",
			body:    `{"name":"Ada","email":"  "}`,
			message: "Name and email are required",
			details: map[string]any{"email": "is required"},
		},
		{
			name: "rename to blank", method: http.MethodPut, path: "/api/users/a@b.test",
			body:    `{"name":""}`,
			message: "Name is required",
			details: map[string]any{"name": "is required"},
		},
		{
			name: "product with zero quantity", method: http.MethodPost, path: "/products",
			body:    `{"image":"b.png","title":"Book","author":"A","quantity":0,"price":"12.50","category":"c","description":"d"}`,
			message: "All fields are required",
			details: map[string]any{"quantity": "is required"},
		},
		{
			name: "cart without item", method: http.MethodPost, path: "/api/cart",
			body:    `{"userId":"u1"}`,
			message: "User ID and item are required",
			details: map[string]any{"item": "is required"},
		},
		{
			name: "order with zero total", method: http.MethodPost, path: "/api/orders",
			body:    `{"userId":"u1","items":[],"address":"x","phone":"1","totalPrice":"0"}`,
			message: "All fields are required",
			details: map[string]any{"totalPrice": "is required"},
		},
		{
			name: "order missing everything", method: http.MethodPost, path: "/api/orders",
			body:    `{}`,
			message: "All fields are required",
			details: map[string]any{
				"userId": "is required", "items": "is required", "address": "is required",
				"phone": "is required", "totalPrice": "is required",
			},
		},
		{
			name: "payment without order data", method: http.MethodPost, path: "/create-payment",
			body:    `{}`,
			message: "Order data is required",
			details: map[string]any{"orderData": "is required"},
		},
		{
			name: "payment with negative total", method: http.MethodPost, path: "/create-payment",
			body:    `{"orderData":{"totalPrice":-5}}`,
			message: "Order data is required",
			details: map[string]any{"orderData.totalPrice": "must be greater than 0"},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			r.ServeHTTP(rec, httptest.NewRequest(tc.method, tc.path, strings.NewReader(tc.body)))
			require.Equal(t, http.StatusBadRequest, rec.Code)
			envelope := errorEnvelope(t, rec)
			assert.Equal(t, string(pkgerrors.CodeValidation), envelope["code"])
			assert.Equal(t, tc.message, envelope["message"])
			assert.Equal(t, tc.details, envelope["details"])
		})
	}

	assert.Zero(t, productSvc.created)
	assert.Zero(t, orderSvc.input.UserID)
	assert.Zero(t, paymentSvc.order.TotalPrice)
}

func TestProductControllers_AcceptNumericStrings(t *testing.T) {
	svc := &stubProducts{}
	logg := testLogger()
	r := chi.NewRouter()
	r.Post("/products", CreateProduct(svc, logg))
	r.Get("/products", ListProducts(svc, logg))
	r.Get("/api/products/{productId}", GetProduct(svc, logg))

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/products",
		strings.NewReader(`{"image":"b.png","title":"Book","author":"A","quantity":"7","price":"12.50","category":"c","description":"d"}`)))
	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "Product added successfully", decodeBody(t, rec)["message"])
	assert.Equal(t, 7, svc.created.Quantity)
	assert.True(t, decimal.RequireFromString("12.5").Equal(svc.created.Price))

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/products", nil))
	assert.JSONEq(t, `[]`, rec.Body.String())

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/products/bad", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/products/"+uuid.NewString(), nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

type stubCart struct {
	result   cart.AddResult
	cleared  string
	clearErr error
}

func (s *stubCart) AddItem(context.Context, string, map[string]any) (*cart.AddResult, error) {
	res := s.result
	return &res, nil
}

func (s *stubCart) ListItems(context.Context, string) ([]cart.CartItemDTO, error) {
	return []cart.CartItemDTO{}, nil
}

func (s *stubCart) ClearCart(_ context.Context, userID string) error {
	s.cleared = userID
	return s.clearErr
}

func TestCartControllers(t *testing.T) {
	svc := &stubCart{result: cart.AddResult{Created: true, CartItemID: uuid.MustParse("00000000-0000-0000-0000-0000000000bb")}}
	logg := testLogger()
	r := chi.NewRouter()
	r.Post("/api/cart", AddToCart(svc, logg))
	r.Get("/cart/{userId}", ListCart(svc, logg))
	r.Delete("/cart/{userId}", ClearCart(svc, logg))

	payload := `{"userId":"u1","item":{"_id":"p1","title":"Book"}}`
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/cart", strings.NewReader(payload)))
	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.JSONEq(t, `{"message":"Item added to cart","cartItemId":"00000000-0000-0000-0000-0000000000bb"}`, rec.Body.String())

	svc.result = cart.AddResult{}
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/cart", strings.NewReader(payload)))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"message":"Item quantity updated in cart"}`, rec.Body.String())

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/cart/u1", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "u1", svc.cleared)

	svc.clearErr = pkgerrors.New(pkgerrors.CodeNotFound, "Cart not found")
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/cart/u2", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

type stubOrders struct {
	input  orders.PlaceOrderInput
	result orders.PlaceOrderResult
}

func (s *stubOrders) PlaceOrder(_ context.Context, in orders.PlaceOrderInput) (*orders.PlaceOrderResult, error) {
	s.input = in
	res := s.result
	return &res, nil
}

func TestPlaceOrder(t *testing.T) {
	discounted := 85.0
	svc := &stubOrders{result: orders.PlaceOrderResult{OrderID: uuid.MustParse("00000000-0000-0000-0000-0000000000cc"), DiscountedPrice: &discounted}}

	rec := httptest.NewRecorder()
	PlaceOrder(svc, testLogger())(rec, httptest.NewRequest(http.MethodPost, "/api/orders",
		strings.NewReader(`{"userId":"u1","items":[{"_id":"p1"}],"address":"x","phone":"1","totalPrice":"100"}`)))
	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.JSONEq(t, `{"message":"Order placed successfully with discount","orderId":"00000000-0000-0000-0000-0000000000cc","discountedPrice":85}`, rec.Body.String())
	assert.True(t, decimal.NewFromInt(100).Equal(svc.input.TotalPrice))
	assert.Len(t, svc.input.Items, 1)
}

type stubPayments struct {
	order      payments.OrderData
	callback   payments.Callback
	initErr    error
	confirmErr error
	ipnDup     bool
}

func (s *stubPayments) InitiatePayment(_ context.Context, order payments.OrderData) (*payments.InitiateResult, error) {
	s.order = order
	if s.initErr != nil {
		return nil, s.initErr
	}
	return &payments.InitiateResult{TranID: "t1", GatewayPageURL: "https://gw.test/pay/t1"}, nil
}

func (s *stubPayments) ConfirmPayment(_ context.Context, cb payments.Callback) (*payments.ConfirmResult, error) {
	s.callback = cb
	if s.confirmErr != nil {
		return nil, s.confirmErr
	}
	return &payments.ConfirmResult{TranID: cb.TranID, RedirectURL: "https://shop.test/success/" + cb.TranID}, nil
}

func (s *stubPayments) HandleIPN(_ context.Context, cb payments.Callback) (*payments.ConfirmResult, error) {
	s.callback = cb
	if s.confirmErr != nil {
		return nil, s.confirmErr
	}
	return &payments.ConfirmResult{TranID: cb.TranID, AlreadyConfirmed: s.ipnDup}, nil
}

func (s *stubPayments) ConfirmSettled(context.Context, string, string, string) (*payments.ConfirmResult, error) {
	return nil, errors.New("unused")
}

func (s *stubPayments) FailURL() string   { return "https://shop.test/fail" }
func (s *stubPayments) CancelURL() string { return "https://shop.test/cancel" }

func (s *stubPayments) GetByTransactionID(_ context.Context, tranID string) (*payments.PaymentDTO, error) {
	if tranID != "t1" {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "Payment not found")
	}
	return &payments.PaymentDTO{TranID: tranID}, nil
}

func (s *stubPayments) ListByEmail(_ context.Context, email string) ([]payments.PaymentDTO, error) {
	if email == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "Email is required")
	}
	return []payments.PaymentDTO{}, nil
}

type stubStatistics struct{ report *statistics.Report }

func (s stubStatistics) ComputeStatistics(context.Context) (*statistics.Report, error) {
	return s.report, nil
}

func paymentsRouter(svc payments.Service, stats statistics.Service) http.Handler {
	logg := testLogger()
	r := chi.NewRouter()
	r.Post("/create-payment", CreatePayment(svc, logg))
	r.Post("/success", PaymentSuccess(svc, logg))
	r.Post("/fail", PaymentFail(svc))
	r.Post("/cancel", PaymentCancel(svc))
	r.Post("/ipn", PaymentIPN(svc, logg))
	r.Get("/api/payments", ListPaymentsByEmail(svc, logg))
	r.Get("/api/payments/statistics", PaymentStatistics(stats, logg))
	r.Get("/api/payments/transaction/{transactionId}", GetPaymentByTransaction(svc, logg))
	return r
}

func TestCreatePayment(t *testing.T) {
	svc := &stubPayments{}
	router := paymentsRouter(svc, stubStatistics{})

	body := `{"orderData":{"userId":"u1","userName":"Ada","items":[{"title":"Book","author":"A","quantity":"2"}],` +
		`"address":"x","phone":"017","totalPrice":250,"createdAt":"2025-03-14T10:00:00.000Z","email":"a@b.test","productId":"p1"}}`
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/create-payment", strings.NewReader(body)))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"GatewayPageUrl":"https://gw.test/pay/t1"}`, rec.Body.String())
	assert.Equal(t, "Ada", svc.order.UserName)
	assert.Equal(t, 2, svc.order.Items[0].Quantity)
	assert.True(t, decimal.NewFromInt(250).Equal(svc.order.TotalPrice))
	assert.Equal(t, 2025, svc.order.CreatedAt.Year())

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/create-payment", strings.NewReader(`{}`)))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	svc.initErr = pkgerrors.New(pkgerrors.CodeDependency, "Error initiating payment")
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/create-payment", strings.NewReader(body)))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Equal(t, string(pkgerrors.CodeDependency), errorCode(t, rec))
}

func formRequest(path string, values url.Values) *http.Request {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(values.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return req
}

func TestPaymentCallbacks(t *testing.T) {
	svc := &stubPayments{}
	router := paymentsRouter(svc, stubStatistics{})
	form := url.Values{"status": {"VALID"}, "tran_id": {"t1"}, "val_id": {"v1"}, "amount": {"250.00"}}

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, formRequest("/success", form))
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "https://shop.test/success/t1", rec.Header().Get("Location"))
	assert.Equal(t, "v1", svc.callback.ValID)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, formRequest("/ipn", form))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"confirmed","tran_id":"t1"}`, rec.Body.String())

	svc.ipnDup = true
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, formRequest("/ipn", form))
	assert.JSONEq(t, `{"status":"already_confirmed","tran_id":"t1"}`, rec.Body.String())

	svc.confirmErr = pkgerrors.New(pkgerrors.CodeUnauthorized, "Unauthorized Payment")
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, formRequest("/success", url.Values{"status": {"FAILED"}}))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	for path, want := range map[string]string{"/fail": "https://shop.test/fail", "/cancel": "https://shop.test/cancel"} {
		rec = httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, path, nil))
		assert.Equal(t, http.StatusSeeOther, rec.Code, path)
		assert.Equal(t, want, rec.Header().Get("Location"), path)
	}
}

func TestPaymentReads(t *testing.T) {
	report := &statistics.Report{BestSellers: []statistics.Leader{{Name: "Book", TotalSales: decimal.NewFromInt(10), QuantitySold: 1}}}
	router := paymentsRouter(&stubPayments{}, stubStatistics{report: report})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/payments", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/payments?email=a@b.test", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/payments/transaction/t1", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "t1", decodeBody(t, rec)["tran_id"])

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/payments/transaction/zz", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/payments/statistics", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	stats := decodeBody(t, rec)
	assert.Len(t, stats["bestSellers"], 1)
	assert.Len(t, stats["halfYearlySales"], 0)
}
