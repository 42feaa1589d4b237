package orders

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/Mahbub-Sajon/srs-publications-server/pkg/db"
	"github.com/Mahbub-Sajon/srs-publications-server/pkg/db/models"
	"github.com/Mahbub-Sajon/srs-publications-server/pkg/enums"
	pkgerrors "github.com/Mahbub-Sajon/srs-publications-server/pkg/errors"
	"github.com/Mahbub-Sajon/srs-publications-server/pkg/outbox"
	"github.com/Mahbub-Sajon/srs-publications-server/pkg/outbox/payloads"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{SkipDefaultTransaction: true})
	require.NoError(t, err)
	require.NoError(t, conn.AutoMigrate(&models.Order{}, &models.OutboxEvent{}))
	return conn
}

func newTestService(t *testing.T, conn *gorm.DB, rate float64) Service {
	t.Helper()
	svc, err := NewService(NewRepository(conn), db.NewFromConn(conn), outbox.NewService(outbox.NewRepository(conn), nil), rate)
	require.NoError(t, err)
	return svc
}

func validOrder() PlaceOrderInput {
	return PlaceOrderInput{
		UserID:     "u1",
		Items:      []map[string]any{{"_id": "p1", "title": "Book", "quantity": float64(2)}},
		Address:    "Mirpur, Dhaka",
		Phone:      "01700000000",
		TotalPrice: decimal.RequireFromString("200"),
	}
}

func TestPlaceOrderAppliesDiscountAndEmitsEvent(t *testing.T) {
	conn := newTestDB(t)
	svc := newTestService(t, conn, 0.15)

	res, err := svc.PlaceOrder(context.Background(), validOrder())
	require.NoError(t, err)
	require.NotNil(t, res.DiscountedPrice)
	assert.Equal(t, 170.0, *res.DiscountedPrice)

	var stored models.Order
	require.NoError(t, conn.First(&stored, "id = ?", res.OrderID).Error)
	assert.True(t, stored.TotalPrice.Equal(decimal.RequireFromString("170")))
	assert.Len(t, stored.Items, 1)

	var events []models.OutboxEvent
	require.NoError(t, conn.Find(&events).Error)
	require.Len(t, events, 1)
	assert.Equal(t, enums.EventOrderPlaced, events[0].EventType)
	assert.Equal(t, res.OrderID, events[0].AggregateID)

	envelope, err := outbox.DecodeEnvelope(events[0].Payload)
	require.NoError(t, err)
	assert.Equal(t, "u1", envelope.Actor.UserID)

	var data payloads.OrderPlacedEvent
	require.NoError(t, json.Unmarshal(envelope.Data, &data))
	assert.Equal(t, 1, data.ItemCount)
	assert.True(t, data.TotalPrice.Equal(decimal.RequireFromString("170")))
}

func TestPlaceOrderWithoutDiscount(t *testing.T) {
	conn := newTestDB(t)
	svc := newTestService(t, conn, 0)

	res, err := svc.PlaceOrder(context.Background(), validOrder())
	require.NoError(t, err)
	assert.Nil(t, res.DiscountedPrice)

	var stored models.Order
	require.NoError(t, conn.First(&stored, "id = ?", res.OrderID).Error)
	assert.True(t, stored.TotalPrice.Equal(decimal.RequireFromString("200")))
}

func TestPlaceOrderRejectsMissingFieldsBeforeWriting(t *testing.T) {
	cases := map[string]func(*PlaceOrderInput){
		"userId":     func(in *PlaceOrderInput) { in.UserID = "" },
		"items":      func(in *PlaceOrderInput) { in.Items = nil },
		"address":    func(in *PlaceOrderInput) { in.Address = " " },
		"phone":      func(in *PlaceOrderInput) { in.Phone = "" },
		"totalPrice": func(in *PlaceOrderInput) { in.TotalPrice = decimal.Zero },
	}

	for field, mutate := range cases {
		t.Run(field, func(t *testing.T) {
			conn := newTestDB(t)
			svc := newTestService(t, conn, 0.15)

			in := validOrder()
			mutate(&in)
			_, err := svc.PlaceOrder(context.Background(), in)
			require.Error(t, err)

			typed := pkgerrors.As(err)
			require.NotNil(t, typed)
			assert.Equal(t, pkgerrors.CodeValidation, typed.Code())
			assert.Contains(t, typed.Details(), field)

			var count int64
			require.NoError(t, conn.Model(&models.Order{}).Count(&count).Error)
			assert.Zero(t, count)
		})
	}
}

type failingEmitter struct{}

func (failingEmitter) Emit(context.Context, *gorm.DB, outbox.DomainEvent) error {
	return errors.New("outbox down")
}

func TestPlaceOrderRollsBackWhenEventFails(t *testing.T) {
	conn := newTestDB(t)
	svc, err := NewService(NewRepository(conn), db.NewFromConn(conn), failingEmitter{}, 0.15)
	require.NoError(t, err)

	_, err = svc.PlaceOrder(context.Background(), validOrder())
	require.Error(t, err)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeInternal))

	var count int64
	require.NoError(t, conn.Model(&models.Order{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestNewServiceRejectsBadDiscount(t *testing.T) {
	conn := newTestDB(t)
	_, err := NewService(NewRepository(conn), db.NewFromConn(conn), failingEmitter{}, 1)
	require.Error(t, err)
}

func TestApplyDiscountRoundsToCents(t *testing.T) {
	got := ApplyDiscount(decimal.RequireFromString("99.99"), decimal.NewFromFloat(0.15))
	assert.Equal(t, "84.99", got.StringFixed(2))
}
