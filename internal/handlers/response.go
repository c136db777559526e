package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/sbilibin2017/user-registry/internal/logger"
	"github.com/sbilibin2017/user-registry/internal/models"
)

// maxBodyBytes caps JSON request bodies.
const maxBodyBytes = 1 << 20

// errBodyTooLarge is returned by decodeBody when the body exceeds maxBodyBytes.
var errBodyTooLarge = errors.New("request body too large")

// ErrorResponse is the body of every failed request
// swagger:model ErrorResponse
type ErrorResponse struct {
	// Error message
	// default: User not found
	Error string `json:"error"`

	// Per-field validation messages
	Fields map[string]string `json:"fields,omitempty"`
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError maps a service error to its HTTP status. Caller errors become
// 4xx, store failures 503 and anything unexpected 500.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	var verr *models.ValidationError
	switch {
	case errors.As(err, &verr):
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "Validation failed", Fields: verr.Fields})
	case errors.Is(err, errBodyTooLarge):
		writeJSON(w, http.StatusRequestEntityTooLarge, ErrorResponse{Error: "Request body too large"})
	case errors.Is(err, models.ErrUserNotFound):
		writeJSON(w, http.StatusNotFound, ErrorResponse{Error: "User not found"})
	case errors.Is(err, models.ErrDuplicateEmail):
		writeJSON(w, http.StatusConflict, ErrorResponse{Error: "Email already registered"})
	case errors.Is(err, models.ErrUserDeleted):
		writeJSON(w, http.StatusConflict, ErrorResponse{Error: "User is deleted"})
	case errors.Is(err, models.ErrStoreUnavailable):
		logger.Log.Errorw("store unavailable", "method", r.Method, "uri", r.RequestURI, "err", err)
		writeJSON(w, http.StatusServiceUnavailable, ErrorResponse{Error: "Service unavailable"})
	default:
		logger.Log.Errorw("internal server error", "method", r.Method, "uri", r.RequestURI, "err", err)
		writeJSON(w, http.StatusInternalServerError, ErrorResponse{Error: "Internal server error"})
	}
}

// decodeBody decodes a JSON request body into dst.
func decodeBody(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return errBodyTooLarge
		}
		return models.NewValidationError("body", "invalid JSON body")
	}
	return nil
}

// userIDParam reads the {id} path parameter.
func userIDParam(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, models.NewValidationError("id", "must be a positive integer")
	}
	return id, nil
}
