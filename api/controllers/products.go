package controllers

import (
	"net/http"

	"github.com/Mahbub-Sajon/srs-publications-server/api/responses"
	"github.com/Mahbub-Sajon/srs-publications-server/api/validators"
	"github.com/Mahbub-Sajon/srs-publications-server/internal/products"
	"github.com/Mahbub-Sajon/srs-publications-server/pkg/logger"
)

// createProductRequest accepts quantity and price as numbers or numeric strings.
type createProductRequest struct {
	Image       string            `json:"image" validate:"notblank"`
	Title       string            `json:"title" validate:"notblank"`
	Category    string            `json:"category" validate:"notblank"`
	Quantity    validators.Number `json:"quantity" validate:"nonzero"`
	Price       validators.Number `json:"price" validate:"nonzero"`
	Description string            `json:"description" validate:"notblank"`
	Author      string            `json:"author" validate:"notblank"`
}

func (createProductRequest) ValidationMessage() string { return "All fields are required" }

func (req createProductRequest) toInput() products.CreateProductInput {
	return products.CreateProductInput{
		Image:       req.Image,
		Title:       req.Title,
		Category:    req.Category,
		Quantity:    req.Quantity.Int(),
		Price:       req.Price.Value,
		Description: req.Description,
		Author:      req.Author,
	}
}

func CreateProduct(svc products.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req createProductRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		product, err := svc.CreateProduct(r.Context(), req.toInput())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteJSON(w, http.StatusCreated, map[string]any{
			"message":   "Product added successfully",
			"productId": product.ID,
		})
	}
}

func ListProducts(svc products.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		list, err := svc.ListProducts(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteOK(w, list)
	}
}

func GetProduct(svc products.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.PathUUID(r, "productId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		product, err := svc.GetProduct(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteOK(w, product)
	}
}
