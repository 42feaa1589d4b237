package users

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Mahbub-Sajon/srs-publications-server/pkg/db/models"
	"github.com/Mahbub-Sajon/srs-publications-server/pkg/enums"
	pkgerrors "github.com/Mahbub-Sajon/srs-publications-server/pkg/errors"
)

type usersRepository interface {
	Create(ctx context.Context, user *models.User) error
	List(ctx context.Context) ([]models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	UpdateNameByEmail(ctx context.Context, email, name string) (int64, error)
	DeleteByID(ctx context.Context, id uuid.UUID) (int64, error)
	PromoteToAdmin(ctx context.Context, id uuid.UUID) (int64, int64, error)
	RoleByEmail(ctx context.Context, email string) (*string, error)
}

// Service covers storefront accounts and the admin role flag.
type Service interface {
	CreateUser(ctx context.Context, input CreateUserInput) (*UserDTO, error)
	ListUsers(ctx context.Context) ([]UserDTO, error)
	GetUserByEmail(ctx context.Context, email string) (*UserDTO, error)
	UpdateUserName(ctx context.Context, email, name string) error
	DeleteUserByID(ctx context.Context, id uuid.UUID) error
	PromoteToAdmin(ctx context.Context, id uuid.UUID) (*UpdateResult, error)
	IsAdmin(ctx context.Context, email string) (bool, error)
}

type service struct {
	repo usersRepository
}

func NewService(repo usersRepository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("users repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) CreateUser(ctx context.Context, input CreateUserInput) (*UserDTO, error) {
	input.Name = strings.TrimSpace(input.Name)
	input.Email = strings.TrimSpace(input.Email)
	if input.Name == "" || input.Email == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "Name and email are required")
	}

	user := input.ToModel()
	if err := s.repo.Create(ctx, user); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "Error adding user")
	}
	return FromModel(user), nil
}

func (s *service) ListUsers(ctx context.Context) ([]UserDTO, error) {
	rows, err := s.repo.List(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "Error fetching users")
	}
	out := make([]UserDTO, 0, len(rows))
	for i := range rows {
		out = append(out, *FromModel(&rows[i]))
	}
	return out, nil
}

func (s *service) GetUserByEmail(ctx context.Context, email string) (*UserDTO, error) {
	user, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "User not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "Error fetching user")
	}
	return FromModel(user), nil
}

func (s *service) UpdateUserName(ctx context.Context, email, name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "Name is required")
	}
	matched, err := s.repo.UpdateNameByEmail(ctx, email, name)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "Error updating user")
	}
	if matched == 0 {
		return pkgerrors.New(pkgerrors.CodeNotFound, "User not found")
	}
	return nil
}

func (s *service) DeleteUserByID(ctx context.Context, id uuid.UUID) error {
	deleted, err := s.repo.DeleteByID(ctx, id)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "Error deleting user")
	}
	if deleted != 1 {
		return pkgerrors.New(pkgerrors.CodeNotFound, "User not found")
	}
	return nil
}

func (s *service) PromoteToAdmin(ctx context.Context, id uuid.UUID) (*UpdateResult, error) {
	matched, modified, err := s.repo.PromoteToAdmin(ctx, id)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "Error updating user")
	}
	return &UpdateResult{
		Acknowledged:  true,
		MatchedCount:  matched,
		ModifiedCount: modified,
	}, nil
}

func (s *service) IsAdmin(ctx context.Context, email string) (bool, error) {
	role, err := s.repo.RoleByEmail(ctx, email)
	if err != nil {
		return false, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "Error checking admin status")
	}
	return role != nil && *role == enums.UserRoleAdmin.String(), nil
}
