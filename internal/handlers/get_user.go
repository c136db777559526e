package handlers

import (
	"context"
	"net/http"

	"github.com/sbilibin2017/user-registry/internal/models"
)

//go:generate mockgen -source=get_user.go -destination=mock_get_user.go -package=handlers

// UserGetter defines the interface that the service must implement.
type UserGetter interface {
	GetUser(ctx context.Context, id int64) (*models.User, error)
}

// NewGetUserHandler returns an HTTP handler fetching one user.
// @Summary Get a user
// @Description Returns a user by id. Soft-deleted users are returned with status deleted.
// @Tags users
// @Produce json
// @Param id path int true "User ID"
// @Success 200 {object} models.User
// @Failure 400 {object} handlers.ErrorResponse "Invalid id"
// @Failure 404 {object} handlers.ErrorResponse "User not found"
// @Failure 503 {object} handlers.ErrorResponse "Store unavailable"
// @Router /users/{id} [get]
func NewGetUserHandler(svc UserGetter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := userIDParam(r)
		if err != nil {
			writeError(w, r, err)
			return
		}

		user, err := svc.GetUser(r.Context(), id)
		if err != nil {
			writeError(w, r, err)
			return
		}

		writeJSON(w, http.StatusOK, user)
	}
}
