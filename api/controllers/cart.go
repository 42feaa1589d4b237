package controllers

import (
	"net/http"

	"github.com/Mahbub-Sajon/srs-publications-server/api/responses"
	"github.com/Mahbub-Sajon/srs-publications-server/api/validators"
	"github.com/Mahbub-Sajon/srs-publications-server/internal/cart"
	"github.com/Mahbub-Sajon/srs-publications-server/pkg/logger"
)

type addToCartRequest struct {
	UserID string         `json:"userId" validate:"notblank"`
	Item   map[string]any `json:"item" validate:"required"`
}

func (addToCartRequest) ValidationMessage() string { return "User ID and item are required" }

func AddToCart(svc cart.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req addToCartRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		result, err := svc.AddItem(r.Context(), req.UserID, req.Item)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if !result.Created {
			responses.WriteOK(w, map[string]string{"message": "Item quantity updated in cart"})
			return
		}
		responses.WriteJSON(w, http.StatusCreated, map[string]any{
			"message":    "Item added to cart",
			"cartItemId": result.CartItemID,
		})
	}
}

func ListCart(svc cart.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		items, err := svc.ListItems(r.Context(), validators.PathString(r, "userId"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteOK(w, items)
	}
}

func ClearCart(svc cart.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := svc.ClearCart(r.Context(), validators.PathString(r, "userId")); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteOK(w, map[string]string{"message": "Cart cleared successfully"})
	}
}
