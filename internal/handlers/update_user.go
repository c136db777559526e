package handlers

import (
	"context"
	"net/http"

	"github.com/sbilibin2017/user-registry/internal/models"
)

//go:generate mockgen -source=update_user.go -destination=mock_update_user.go -package=handlers

// UserUpdater defines the interface that the service must implement.
type UserUpdater interface {
	UpdateUser(ctx context.Context, id int64, upd models.UserUpdate) (*models.User, error)
}

// UpdateUserRequest is a partial user. Omitted fields are left untouched
// swagger:model UpdateUserRequest
type UpdateUserRequest struct {
	// default: jane_doe
	Username *string `json:"username,omitempty"`

	// default: jane@example.com
	Email *string `json:"email,omitempty"`

	// Replaces the stored document
	UserData models.UserData `json:"user_data,omitempty" swaggertype:"object"`

	// active or inactive; deleted is ignored, use DELETE instead
	Status *models.UserStatus `json:"status,omitempty" enums:"active,inactive"`
}

// NewUpdateUserHandler returns an HTTP handler applying a partial update.
// @Summary Update a user
// @Description Applies the given fields. A status of deleted is ignored; deleted users cannot be updated.
// @Tags users
// @Accept json
// @Produce json
// @Param id path int true "User ID"
// @Param updateUserRequest body handlers.UpdateUserRequest true "Fields to change"
// @Success 200 {object} models.User
// @Failure 400 {object} handlers.ErrorResponse "Invalid request"
// @Failure 404 {object} handlers.ErrorResponse "User not found"
// @Failure 409 {object} handlers.ErrorResponse "Email already registered or user deleted"
// @Failure 413 {object} handlers.ErrorResponse "Request body too large"
// @Failure 503 {object} handlers.ErrorResponse "Store unavailable"
// @Router /users/{id} [put]
// @Router /users/{id} [patch]
func NewUpdateUserHandler(svc UserUpdater) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := userIDParam(r)
		if err != nil {
			writeError(w, r, err)
			return
		}

		var req UpdateUserRequest
		if err := decodeBody(w, r, &req); err != nil {
			writeError(w, r, err)
			return
		}

		user, err := svc.UpdateUser(r.Context(), id, models.UserUpdate{
			Username: req.Username,
			Email:    req.Email,
			UserData: req.UserData,
			Status:   req.Status,
		})
		if err != nil {
			writeError(w, r, err)
			return
		}

		writeJSON(w, http.StatusOK, user)
	}
}
