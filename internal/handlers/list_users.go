package handlers

import (
	"context"
	"net/http"
	"strconv"

	"github.com/sbilibin2017/user-registry/internal/models"
)

//go:generate mockgen -source=list_users.go -destination=mock_list_users.go -package=handlers

// UserLister defines the interface that the service must implement.
type UserLister interface {
	ListUsers(ctx context.Context, in models.ListUsersInput) (*models.UserPage, error)
}

// NewListUsersHandler returns an HTTP handler listing users page by page.
// @Summary List users
// @Description Returns a page of users ordered by id. Deleted users are left out unless status_filter=deleted.
// @Tags users
// @Produce json
// @Param limit query int false "Page size, clamped to the configured maximum" default(10)
// @Param offset query int false "Rows to skip" default(0)
// @Param status_filter query string false "Only users with this status" Enums(active, inactive, deleted)
// @Success 200 {object} models.UserPage
// @Failure 400 {object} handlers.ErrorResponse "Invalid query"
// @Failure 503 {object} handlers.ErrorResponse "Store unavailable"
// @Router /users [get]
func NewListUsersHandler(svc UserLister) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		in, err := parseListQuery(r)
		if err != nil {
			writeError(w, r, err)
			return
		}

		page, err := svc.ListUsers(r.Context(), in)
		if err != nil {
			writeError(w, r, err)
			return
		}

		writeJSON(w, http.StatusOK, page)
	}
}

func parseListQuery(r *http.Request) (models.ListUsersInput, error) {
	q := r.URL.Query()
	var in models.ListUsersInput

	verr := &models.ValidationError{Fields: map[string]string{}}
	if v := q.Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			verr.Fields["limit"] = "must be an integer"
		}
		in.Limit = n
	}
	if v := q.Get("offset"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			verr.Fields["offset"] = "must be an integer"
		}
		in.Offset = n
	}
	if len(verr.Fields) > 0 {
		return in, verr
	}

	if v := q.Get("status_filter"); v != "" {
		status := models.UserStatus(v)
		in.StatusFilter = &status
	}
	return in, nil
}
