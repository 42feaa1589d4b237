package products

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Mahbub-Sajon/srs-publications-server/pkg/db/models"
	pkgerrors "github.com/Mahbub-Sajon/srs-publications-server/pkg/errors"
)

type productRepository interface {
	Create(ctx context.Context, product *models.Product) error
	List(ctx context.Context) ([]models.Product, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.Product, error)
}

// Service exposes catalog operations.
type Service interface {
	CreateProduct(ctx context.Context, input CreateProductInput) (*ProductDTO, error)
	ListProducts(ctx context.Context) ([]ProductDTO, error)
	GetProduct(ctx context.Context, id uuid.UUID) (*ProductDTO, error)
}

type service struct {
	repo productRepository
}

func NewService(repo productRepository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("product repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) CreateProduct(ctx context.Context, input CreateProductInput) (*ProductDTO, error) {
	input = normalize(input)
	if err := validateCreate(input); err != nil {
		return nil, err
	}

	product := input.ToModel()
	if err := s.repo.Create(ctx, product); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "Error adding product")
	}
	return FromModel(product), nil
}

func (s *service) ListProducts(ctx context.Context) ([]ProductDTO, error) {
	rows, err := s.repo.List(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "Error fetching products")
	}
	out := make([]ProductDTO, 0, len(rows))
	for i := range rows {
		out = append(out, *FromModel(&rows[i]))
	}
	return out, nil
}

func (s *service) GetProduct(ctx context.Context, id uuid.UUID) (*ProductDTO, error) {
	product, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "Product not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "Error fetching product")
	}
	return FromModel(product), nil
}

func normalize(in CreateProductInput) CreateProductInput {
	in.Image = strings.TrimSpace(in.Image)
	in.Title = strings.TrimSpace(in.Title)
	in.Category = strings.TrimSpace(in.Category)
	in.Description = strings.TrimSpace(in.Description)
	in.Author = strings.TrimSpace(in.Author)
	return in
}

// validateCreate keeps the storefront rule that a zero quantity or price
// counts as missing.
func validateCreate(in CreateProductInput) error {
	missing := map[string]string{}
	for field, value := range map[string]string{
		"image":       in.Image,
		"title":       in.Title,
		"category":    in.Category,
		"description": in.Description,
		"author":      in.Author,
	} {
		if value == "" {
			missing[field] = "is required"
		}
	}
	if in.Quantity == 0 {
		missing["quantity"] = "is required"
	}
	if in.Price.IsZero() {
		missing["price"] = "is required"
	}
	if len(missing) > 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "All fields are required").WithDetails(missing)
	}
	return nil
}
