package handlers

import (
	"context"
	"net/http"

	"github.com/sbilibin2017/user-registry/internal/models"
)

//go:generate mockgen -source=delete_user.go -destination=mock_delete_user.go -package=handlers

// UserDeleter defines the interface that the service must implement.
type UserDeleter interface {
	DeleteUser(ctx context.Context, id int64) (*models.User, error)
}

// NewDeleteUserHandler returns an HTTP handler soft-deleting a user.
// @Summary Delete a user
// @Description Marks the user deleted. The record and its email stay reserved. Repeated calls succeed.
// @Tags users
// @Produce json
// @Param id path int true "User ID"
// @Success 200 {object} models.User
// @Failure 400 {object} handlers.ErrorResponse "Invalid id"
// @Failure 404 {object} handlers.ErrorResponse "User not found"
// @Failure 503 {object} handlers.ErrorResponse "Store unavailable"
// @Router /users/{id} [delete]
func NewDeleteUserHandler(svc UserDeleter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := userIDParam(r)
		if err != nil {
			writeError(w, r, err)
			return
		}

		user, err := svc.DeleteUser(r.Context(), id)
		if err != nil {
			writeError(w, r, err)
			return
		}

		writeJSON(w, http.StatusOK, user)
	}
}
