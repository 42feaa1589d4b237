package validators

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pkgerrors "github.com/Mahbub-Sajon/srs-publications-server/pkg/errors"
)

type userBody struct {
	Name  string `json:"name" validate:"required"`
	Email string `json:"email" validate:"required,email"`
}

func TestDecodeJSONBodyIgnoresUnknownFields(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/api/users", strings.NewReader(`{"name":"Alice","email":"a@x.com","photo":"x.png"}`))
	var body userBody
	require.NoError(t, DecodeJSONBody(req, &body))
	assert.Equal(t, "Alice", body.Name)
}

func TestDecodeJSONBodyValidation(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/api/users", strings.NewReader(`{"name":""}`))
	var body userBody
	err := DecodeJSONBody(req, &body)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeValidation, typed.Code())
	assert.Equal(t, map[string]string{"name": "is required", "email": "is required"}, typed.Details())

	req = httptest.NewRequest(http.MethodPost, "/api/users", strings.NewReader(``))
	assert.True(t, pkgerrors.IsCode(DecodeJSONBody(req, &body), pkgerrors.CodeValidation))

	req = httptest.NewRequest(http.MethodPost, "/api/users", strings.NewReader(`{`))
	assert.True(t, pkgerrors.IsCode(DecodeJSONBody(req, &body), pkgerrors.CodeValidation))
}

type listingBody struct {
	Title string `json:"title" validate:"notblank"`
	Stock Number `json:"stock" validate:"nonzero"`
	Price Number `json:"price" validate:"positive"`
}

func (listingBody) ValidationMessage() string { return "All fields are required" }

func TestStructCustomRules(t *testing.T) {
	err := Struct(&listingBody{Title: "  ", Stock: Number{Set: true}, Price: Number{Value: decimal.NewFromInt(-1), Set: true}})
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, "All fields are required", typed.Message())
	assert.Equal(t, map[string]string{
		"title": "is required",
		"stock": "is required",
		"price": "must be greater than 0",
	}, typed.Details())

	ok := listingBody{
		Title: "Book",
		Stock: Number{Value: decimal.NewFromInt(3), Set: true},
		Price: Number{Value: decimal.RequireFromString("0.5"), Set: true},
	}
	assert.NoError(t, Struct(&ok))
}

func TestStructDefaultMessage(t *testing.T) {
	typed := pkgerrors.As(Struct(&userBody{Name: "Ada"}))
	require.NotNil(t, typed)
	assert.Equal(t, "validation failed", typed.Message())
}

func TestNumberAcceptsNumbersAndStrings(t *testing.T) {
	var body struct {
		Quantity Number `json:"quantity"`
		Price    Number `json:"price"`
		Missing  Number `json:"missing"`
		Blank    Number `json:"blank"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"quantity":"12","price":450.5,"missing":null,"blank":" "}`), &body))
	assert.Equal(t, 12, body.Quantity.Int())
	assert.Equal(t, "450.5", body.Price.Value.String())
	assert.True(t, body.Missing.IsZero())
	assert.False(t, body.Blank.Set)

	assert.Error(t, json.Unmarshal([]byte(`{"quantity":"twelve"}`), &body))
}

func TestDecodeFormReadsURLEncodedAndJSON(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/success", strings.NewReader("status=VALID&tran_id=abc"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	form, err := DecodeForm(req)
	require.NoError(t, err)
	assert.Equal(t, "VALID", form.Get("status"))
	assert.Equal(t, "abc", form.Get("tran_id"))

	req = httptest.NewRequest(http.MethodPost, "/ipn", strings.NewReader(`{"status":"VALID","amount":450,"val_id":null}`))
	req.Header.Set("Content-Type", "application/json; charset=utf-8")
	form, err = DecodeForm(req)
	require.NoError(t, err)
	assert.Equal(t, "450", form.Get("amount"))
	assert.False(t, form.Has("val_id"))
}

func withURLParam(req *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
}

func TestPathHelpers(t *testing.T) {
	req := withURLParam(httptest.NewRequest(http.MethodGet, "/", nil), "email", "a%40x.com")
	assert.Equal(t, "a@x.com", PathString(req, "email"))

	req = withURLParam(httptest.NewRequest(http.MethodGet, "/", nil), "id", "not-a-uuid")
	_, err := PathUUID(req, "id")
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, "Invalid ID format", typed.Message())

	req = withURLParam(httptest.NewRequest(http.MethodGet, "/", nil), "id", "0b8f7c0e-4d0e-4f55-9a3b-1d2f3c4b5a69")
	id, err := PathUUID(req, "id")
	require.NoError(t, err)
	assert.Equal(t, "0b8f7c0e-4d0e-4f55-9a3b-1d2f3c4b5a69", id.String())
}

func TestParseQueryInt(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/?limit=5", nil)
	v, err := ParseQueryInt(req, "limit", 10, 1, 50)
	require.NoError(t, err)
	assert.Equal(t, 5, v)

	v, err = ParseQueryInt(httptest.NewRequest(http.MethodGet, "/", nil), "limit", 10, 1, 50)
	require.NoError(t, err)
	assert.Equal(t, 10, v)

	_, err = ParseQueryInt(httptest.NewRequest(http.MethodGet, "/?limit=99", nil), "limit", 10, 1, 50)
	assert.Error(t, err)
}
