package users

import (
	"time"

	"github.com/google/uuid"

	"github.com/Mahbub-Sajon/srs-publications-server/pkg/db/models"
)

// UserDTO keeps the document field names the storefront reads.
type UserDTO struct {
	ID        uuid.UUID `json:"_id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Role      *string   `json:"role,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// CreateUserInput holds the data required to register a user.
type CreateUserInput struct {
	Name  string
	Email string
}

// UpdateResult mirrors the update acknowledgement the admin panel expects.
type UpdateResult struct {
	Acknowledged  bool    `json:"acknowledged"`
	MatchedCount  int64   `json:"matchedCount"`
	ModifiedCount int64   `json:"modifiedCount"`
	UpsertedCount int64   `json:"upsertedCount"`
	UpsertedID    *string `json:"upsertedId"`
}

func FromModel(u *models.User) *UserDTO {
	if u == nil {
		return nil
	}
	return &UserDTO{
		ID:        u.ID,
		Name:      u.Name,
		Email:     u.Email,
		Role:      u.Role,
		CreatedAt: u.CreatedAt,
	}
}

func (c CreateUserInput) ToModel() *models.User {
	return &models.User{
		Name:  c.Name,
		Email: c.Email,
	}
}
