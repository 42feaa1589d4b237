package controllers

import (
	"net/http"
	"strings"
	"time"

	"github.com/Mahbub-Sajon/srs-publications-server/api/responses"
	"github.com/Mahbub-Sajon/srs-publications-server/api/validators"
	"github.com/Mahbub-Sajon/srs-publications-server/internal/payments"
	"github.com/Mahbub-Sajon/srs-publications-server/internal/statistics"
	"github.com/Mahbub-Sajon/srs-publications-server/pkg/logger"
)

type orderItemPayload struct {
	Title    string            `json:"title"`
	Author   string            `json:"author"`
	Quantity validators.Number `json:"quantity"`
}

type orderDataPayload struct {
	UserID     string             `json:"userId"`
	UserName   string             `json:"userName"`
	Items      []orderItemPayload `json:"items"`
	Address    string             `json:"address"`
	Phone      string             `json:"phone"`
	TotalPrice validators.Number  `json:"totalPrice" validate:"positive"`
	CreatedAt  string             `json:"createdAt"`
	Email      string             `json:"email"`
	ProductID  string             `json:"productId"`
}

type createPaymentRequest struct {
	OrderData *orderDataPayload `json:"orderData" validate:"required"`
}

func (createPaymentRequest) ValidationMessage() string { return "Order data is required" }

type createPaymentResponse struct {
	GatewayPageURL string `json:"GatewayPageUrl"`
}

func (p *orderDataPayload) toOrderData() payments.OrderData {
	items := make([]payments.OrderItem, 0, len(p.Items))
	for _, item := range p.Items {
		items = append(items, payments.OrderItem{
			Title:    item.Title,
			Author:   item.Author,
			Quantity: item.Quantity.Int(),
		})
	}
	return payments.OrderData{
		UserID:     p.UserID,
		UserName:   p.UserName,
		Items:      items,
		Address:    p.Address,
		Phone:      p.Phone,
		TotalPrice: p.TotalPrice.Value,
		CreatedAt:  parseCreatedAt(p.CreatedAt),
		Email:      p.Email,
		ProductID:  p.ProductID,
	}
}

// parseCreatedAt returns the zero time for missing or unparseable input.
func parseCreatedAt(raw string) time.Time {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}
	}
	if ts, err := time.Parse(time.RFC3339Nano, raw); err == nil {
		return ts
	}
	return time.Time{}
}

func CreatePayment(svc payments.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req createPaymentRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		result, err := svc.InitiatePayment(r.Context(), req.OrderData.toOrderData())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteOK(w, createPaymentResponse{GatewayPageURL: result.GatewayPageURL})
	}
}

// PaymentSuccess handles the browser-facing gateway callback.
func PaymentSuccess(svc payments.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		form, err := validators.DecodeForm(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		result, err := svc.ConfirmPayment(r.Context(), payments.CallbackFromForm(form))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		http.Redirect(w, r, result.RedirectURL, http.StatusSeeOther)
	}
}

func PaymentFail(svc payments.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, svc.FailURL(), http.StatusSeeOther)
	}
}

func PaymentCancel(svc payments.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, svc.CancelURL(), http.StatusSeeOther)
	}
}

// PaymentIPN acknowledges the gateway's server-to-server notification.
func PaymentIPN(svc payments.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		form, err := validators.DecodeForm(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		result, err := svc.HandleIPN(r.Context(), payments.CallbackFromForm(form))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		status := "confirmed"
		if result.AlreadyConfirmed {
			status = "already_confirmed"
		}
		responses.WriteOK(w, map[string]string{"status": status, "tran_id": result.TranID})
	}
}

func ListPaymentsByEmail(svc payments.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		email := validators.SanitizeString(r.URL.Query().Get("email"), 320)
		list, err := svc.ListByEmail(r.Context(), email)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteOK(w, list)
	}
}

func GetPaymentByTransaction(svc payments.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		payment, err := svc.GetByTransactionID(r.Context(), validators.PathString(r, "transactionId"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteOK(w, payment)
	}
}

func PaymentStatistics(svc statistics.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		report, err := svc.ComputeStatistics(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteOK(w, report.DTO())
	}
}
