package products

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/Mahbub-Sajon/srs-publications-server/pkg/db/models"
	pkgerrors "github.com/Mahbub-Sajon/srs-publications-server/pkg/errors"
)

func newTestService(t *testing.T) Service {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{SkipDefaultTransaction: true})
	require.NoError(t, err)
	require.NoError(t, conn.AutoMigrate(&models.Product{}))

	svc, err := NewService(NewRepository(conn))
	require.NoError(t, err)
	return svc
}

func validInput() CreateProductInput {
	return CreateProductInput{
		Image:       "https://img.test/cover.png",
		Title:       "Padma Nadir Majhi",
		Category:    "Novel",
		Quantity:    12,
		Price:       decimal.RequireFromString("350.50"),
		Description: "A classic",
		Author:      "Manik Bandopadhyay",
	}
}

func TestCreateListAndGetProduct(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	created, err := svc.CreateProduct(ctx, validInput())
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, created.ID)
	assert.Equal(t, 350.5, created.Price)

	list, err := svc.ListProducts(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "Padma Nadir Majhi", list[0].Title)

	got, err := svc.GetProduct(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, 12, got.Quantity)
	assert.Equal(t, "Manik Bandopadhyay", got.Author)
}

func TestCreateProductRejectsMissingFields(t *testing.T) {
	svc := newTestService(t)

	in := validInput()
	in.Author = "  "
	in.Quantity = 0
	_, err := svc.CreateProduct(context.Background(), in)
	require.Error(t, err)

	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeValidation, typed.Code())
	assert.Equal(t, "All fields are required", typed.Message())
	details, ok := typed.Details().(map[string]string)
	require.True(t, ok)
	assert.Contains(t, details, "author")
	assert.Contains(t, details, "quantity")

	list, err := svc.ListProducts(context.Background())
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestGetProductNotFound(t *testing.T) {
	svc := newTestService(t)
	_, err := svc.GetProduct(context.Background(), uuid.New())
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))
}

func TestListProductsEmptyIsNotNil(t *testing.T) {
	svc := newTestService(t)
	list, err := svc.ListProducts(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, list)
}
