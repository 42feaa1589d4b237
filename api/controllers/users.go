package controllers

import (
	"net/http"

	"github.com/Mahbub-Sajon/srs-publications-server/api/responses"
	"github.com/Mahbub-Sajon/srs-publications-server/api/validators"
	"github.com/Mahbub-Sajon/srs-publications-server/internal/users"
	"github.com/Mahbub-Sajon/srs-publications-server/pkg/logger"
)

type createUserRequest struct {
	Name  string `json:"name" validate:"notblank"`
	Email string `json:"email" validate:"notblank"`
}

func (createUserRequest) ValidationMessage() string { return "Name and email are required" }

type updateUserRequest struct {
	Name string `json:"name" validate:"notblank"`
}

func (updateUserRequest) ValidationMessage() string { return "Name is required" }

func CreateUser(svc users.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req createUserRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		user, err := svc.CreateUser(r.Context(), users.CreateUserInput{Name: req.Name, Email: req.Email})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteJSON(w, http.StatusCreated, map[string]any{
			"message": "User created successfully",
			"userId":  user.ID,
		})
	}
}

func ListUsers(svc users.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		list, err := svc.ListUsers(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteOK(w, list)
	}
}

func GetUser(svc users.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, err := svc.GetUserByEmail(r.Context(), validators.PathString(r, "email"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteOK(w, user)
	}
}

func UpdateUser(svc users.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req updateUserRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if err := svc.UpdateUserName(r.Context(), validators.PathString(r, "email"), req.Name); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteOK(w, map[string]string{"message": "User updated successfully"})
	}
}

func DeleteUser(svc users.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.PathUUID(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if err := svc.DeleteUserByID(r.Context(), id); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteOK(w, map[string]string{"message": "User deleted successfully"})
	}
}

func PromoteUser(svc users.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.PathUUID(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		result, err := svc.PromoteToAdmin(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteOK(w, result)
	}
}

func CheckAdmin(svc users.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		isAdmin, err := svc.IsAdmin(r.Context(), validators.PathString(r, "email"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteOK(w, map[string]bool{"isAdmin": isAdmin})
	}
}
