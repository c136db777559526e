package handlers

import (
	"context"
	"net/http"

	"github.com/sbilibin2017/user-registry/internal/models"
)

//go:generate mockgen -source=create_user.go -destination=mock_create_user.go -package=handlers

// UserCreator defines the interface that the service must implement.
type UserCreator interface {
	CreateUser(ctx context.Context, in models.CreateUserInput) (*models.User, error)
}

// CreateUserRequest represents the JSON body delivered by the new-user webhook
// swagger:model CreateUserRequest
type CreateUserRequest struct {
	// Username
	// required: true
	// default: john_doe
	Username string `json:"username"`

	// Email, unique across all users
	// required: true
	// default: john@example.com
	Email string `json:"email"`

	// Arbitrary JSON object stored as is
	UserData models.UserData `json:"user_data" swaggertype:"object"`
}

// NewCreateUserHandler returns an HTTP handler for the new-user webhook.
// @Summary Receive a new user
// @Description Validates and stores a user pushed by an external system. Emails are unique, soft-deleted users included.
// @Tags users
// @Accept json
// @Produce json
// @Param createUserRequest body handlers.CreateUserRequest true "New user"
// @Success 201 {object} models.User "User created"
// @Failure 400 {object} handlers.ErrorResponse "Invalid request"
// @Failure 409 {object} handlers.ErrorResponse "Email already registered"
// @Failure 413 {object} handlers.ErrorResponse "Request body too large"
// @Failure 503 {object} handlers.ErrorResponse "Store unavailable"
// @Router /webhook/new-user [post]
func NewCreateUserHandler(svc UserCreator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req CreateUserRequest
		if err := decodeBody(w, r, &req); err != nil {
			writeError(w, r, err)
			return
		}

		user, err := svc.CreateUser(r.Context(), models.CreateUserInput{
			Username: req.Username,
			Email:    req.Email,
			UserData: req.UserData,
		})
		if err != nil {
			writeError(w, r, err)
			return
		}

		writeJSON(w, http.StatusCreated, user)
	}
}
