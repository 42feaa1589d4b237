package cart

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/Mahbub-Sajon/srs-publications-server/pkg/db"
	"github.com/Mahbub-Sajon/srs-publications-server/pkg/db/models"
	pkgerrors "github.com/Mahbub-Sajon/srs-publications-server/pkg/errors"
)

const (
	identityKey = "_id"
	quantityKey = "quantity"

	uniqueUserItem = "ux_cart_items_user_item"
)

type cartRepository interface {
	IncrementQuantity(ctx context.Context, userID, itemID string) (int64, error)
	Insert(ctx context.Context, item *models.CartItem) error
	ListByUser(ctx context.Context, userID string) ([]models.CartItem, error)
	DeleteByUser(ctx context.Context, userID string) (int64, error)
}

// Service exposes cart operations.
type Service interface {
	AddItem(ctx context.Context, userID string, item map[string]any) (*AddResult, error)
	ListItems(ctx context.Context, userID string) ([]CartItemDTO, error)
	ClearCart(ctx context.Context, userID string) error
}

type service struct {
	repo cartRepository
}

// NewService builds a cart service backed by the provided repository.
func NewService(repo cartRepository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("cart repository required")
	}
	return &service{repo: repo}, nil
}

// AddItem increments the quantity of an existing (userID, item identity) row
// by exactly one, or inserts the snapshot with quantity 1. Any quantity on
// the incoming snapshot is ignored.
func (s *service) AddItem(ctx context.Context, userID string, item map[string]any) (*AddResult, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" || item == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "User ID and item are required")
	}
	itemID := ItemIdentity(item)
	if itemID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "User ID and item are required").
			WithDetails(map[string]string{"item._id": "is required"})
	}

	updated, err := s.repo.IncrementQuantity(ctx, userID, itemID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "Error adding item to cart")
	}
	if updated > 0 {
		return &AddResult{}, nil
	}

	row := &models.CartItem{
		UserID:   userID,
		ItemID:   itemID,
		Item:     snapshot(item),
		Quantity: 1,
	}
	if err := s.repo.Insert(ctx, row); err != nil {
		if !db.IsUniqueViolation(err, uniqueUserItem) {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "Error adding item to cart")
		}
		// lost the insert race; the winner's row takes the increment
		if _, err := s.repo.IncrementQuantity(ctx, userID, itemID); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "Error adding item to cart")
		}
		return &AddResult{}, nil
	}
	return &AddResult{Created: true, CartItemID: row.ID}, nil
}

func (s *service) ListItems(ctx context.Context, userID string) ([]CartItemDTO, error) {
	rows, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "Error fetching cart items")
	}
	out := make([]CartItemDTO, 0, len(rows))
	for i := range rows {
		out = append(out, *FromModel(&rows[i]))
	}
	return out, nil
}

func (s *service) ClearCart(ctx context.Context, userID string) error {
	deleted, err := s.repo.DeleteByUser(ctx, userID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "Error clearing cart")
	}
	if deleted == 0 {
		return pkgerrors.New(pkgerrors.CodeNotFound, "No items found in cart")
	}
	return nil
}

// ItemIdentity renders item["_id"] as the string the cart is keyed on.
func ItemIdentity(item map[string]any) string {
	raw, ok := item[identityKey]
	if !ok || raw == nil {
		return ""
	}
	switch v := raw.(type) {
	case string:
		return strings.TrimSpace(v)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	default:
		return fmt.Sprint(v)
	}
}

func snapshot(item map[string]any) map[string]any {
	out := make(map[string]any, len(item))
	for k, v := range item {
		if k == quantityKey {
			continue
		}
		out[k] = v
	}
	return out
}
