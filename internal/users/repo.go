package users

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Mahbub-Sajon/srs-publications-server/internal/repo"
	"github.com/Mahbub-Sajon/srs-publications-server/pkg/db/models"
	"github.com/Mahbub-Sajon/srs-publications-server/pkg/enums"
)

// Repository exposes user-related persistence operations.
type Repository struct {
	repo.Base
}

// NewRepository constructs a users repo bound to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{Base: repo.NewBase(db)}
}

// Create inserts a new user.
func (r *Repository) Create(ctx context.Context, user *models.User) error {
	return r.DB(ctx).Create(user).Error
}

// List returns every user in registration order.
func (r *Repository) List(ctx context.Context) ([]models.User, error) {
	var rows []models.User
	if err := r.DB(ctx).Order("created_at ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// FindByEmail returns the oldest user registered with email.
func (r *Repository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	err := r.DB(ctx).
		Where("email = ?", email).
		Order("created_at ASC").
		First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// UpdateNameByEmail renames the oldest user registered with email and
// reports how many rows matched.
func (r *Repository) UpdateNameByEmail(ctx context.Context, email, name string) (int64, error) {
	db := r.DB(ctx)
	oldest := db.Session(&gorm.Session{NewDB: true}).
		Model(&models.User{}).
		Select("id").
		Where("email = ?", email).
		Order("created_at ASC").
		Limit(1)

	res := db.Model(&models.User{}).
		Where("id = (?)", oldest).
		UpdateColumn("name", name)
	return res.RowsAffected, res.Error
}

// DeleteByID removes the user and reports the deleted row count.
func (r *Repository) DeleteByID(ctx context.Context, id uuid.UUID) (int64, error) {
	res := r.DB(ctx).Where("id = ?", id).Delete(&models.User{})
	return res.RowsAffected, res.Error
}

// PromoteToAdmin sets role to admin. matched counts the user row, modified
// counts it only when the role actually changed.
func (r *Repository) PromoteToAdmin(ctx context.Context, id uuid.UUID) (matched, modified int64, err error) {
	db := r.DB(ctx)
	if err := db.Model(&models.User{}).Where("id = ?", id).Count(&matched).Error; err != nil {
		return 0, 0, err
	}
	if matched == 0 {
		return 0, 0, nil
	}

	res := db.Model(&models.User{}).
		Where("id = ? AND (role IS NULL OR role <> ?)", id, enums.UserRoleAdmin).
		UpdateColumn("role", enums.UserRoleAdmin)
	if res.Error != nil {
		return matched, 0, res.Error
	}
	return matched, res.RowsAffected, nil
}

// RoleByEmail returns the role of the oldest user with email, or nil when the
// user or the role is absent.
func (r *Repository) RoleByEmail(ctx context.Context, email string) (*string, error) {
	user, err := r.FindByEmail(ctx, email)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return user.Role, nil
}
