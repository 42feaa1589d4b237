package controllers

import (
	"net/http"

	"github.com/Mahbub-Sajon/srs-publications-server/api/responses"
	"github.com/Mahbub-Sajon/srs-publications-server/api/validators"
	"github.com/Mahbub-Sajon/srs-publications-server/internal/orders"
	"github.com/Mahbub-Sajon/srs-publications-server/pkg/logger"
)

// placeOrderRequest treats a zero total as missing.
type placeOrderRequest struct {
	UserID     string            `json:"userId" validate:"notblank"`
	Items      []map[string]any  `json:"items" validate:"required"`
	Address    string            `json:"address" validate:"notblank"`
	Phone      string            `json:"phone" validate:"notblank"`
	TotalPrice validators.Number `json:"totalPrice" validate:"nonzero"`
}

func (placeOrderRequest) ValidationMessage() string { return "All fields are required" }

type placeOrderResponse struct {
	Message         string   `json:"message"`
	OrderID         string   `json:"orderId"`
	DiscountedPrice *float64 `json:"discountedPrice,omitempty"`
}

func PlaceOrder(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req placeOrderRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		result, err := svc.PlaceOrder(r.Context(), orders.PlaceOrderInput{
			UserID:     req.UserID,
			Items:      req.Items,
			Address:    req.Address,
			Phone:      req.Phone,
			TotalPrice: req.TotalPrice.Value,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		message := "Order placed successfully"
		if result.DiscountedPrice != nil {
			message = "Order placed successfully with discount"
		}
		responses.WriteJSON(w, http.StatusCreated, placeOrderResponse{
			Message:         message,
			OrderID:         result.OrderID.String(),
			DiscountedPrice: result.DiscountedPrice,
		})
	}
}
