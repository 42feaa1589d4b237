package payments

import (
	"net/url"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/Mahbub-Sajon/srs-publications-server/pkg/db/models"
)

// OrderItem is the part of a checkout line the gateway request needs.
type OrderItem struct {
	Title    string
	Author   string
	Quantity int
}

// OrderData is the checkout payload behind POST /create-payment.
type OrderData struct {
	UserID     string
	UserName   string
	Items      []OrderItem
	Address    string
	Phone      string
	TotalPrice decimal.Decimal
	CreatedAt  time.Time
	Email      string
	ProductID  string
}

// InitiateResult carries the hosted checkout redirect.
type InitiateResult struct {
	TranID         string
	GatewayPageURL string
}

// Callback is a gateway notification posted to /success or /ipn.
type Callback struct {
	Status string
	TranID string
	ValID  string
	Amount string
	Form   url.Values
}

// CallbackFromForm reads the fields the confirmation needs off a posted form.
func CallbackFromForm(form url.Values) Callback {
	return Callback{
		Status: form.Get("status"),
		TranID: form.Get("tran_id"),
		ValID:  form.Get("val_id"),
		Amount: form.Get("amount"),
		Form:   form,
	}
}

// ConfirmResult describes the outcome of a confirmation.
type ConfirmResult struct {
	TranID           string
	AlreadyConfirmed bool
	RedirectURL      string
}

// PaymentDTO keeps the payment document field names.
type PaymentDTO struct {
	ID          uuid.UUID `json:"_id"`
	CusName     string    `json:"cus_name"`
	TranID      string    `json:"tran_id"`
	TotalAmount float64   `json:"total_amount"`
	CusID       string    `json:"cus_id"`
	CusEmail    string    `json:"cus_email"`
	CusAdd      string    `json:"cus_add"`
	CusPhone    string    `json:"cus_phone"`
	ProductID   string    `json:"product_id"`
	ProductName string    `json:"product_name"`
	Author      string    `json:"author"`
	Quantity    string    `json:"quantity"`
	Time        time.Time `json:"time"`
	Status      string    `json:"status"`
}

func FromModel(p *models.Payment) *PaymentDTO {
	if p == nil {
		return nil
	}
	return &PaymentDTO{
		ID:          p.ID,
		CusName:     p.CusName,
		TranID:      p.TranID,
		TotalAmount: p.TotalAmount.InexactFloat64(),
		CusID:       p.CusID,
		CusEmail:    p.CusEmail,
		CusAdd:      p.CusAdd,
		CusPhone:    p.CusPhone,
		ProductID:   p.ProductID,
		ProductName: p.ProductName,
		Author:      p.Author,
		Quantity:    p.Quantity,
		Time:        p.InitiatedAt,
		Status:      p.Status.String(),
	}
}
