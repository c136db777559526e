package handlers

import "net/http"

// RootResponse is the service banner
// swagger:model RootResponse
type RootResponse struct {
	// default: User registry webhook API
	Message string `json:"message"`
}

// NewRootHandler returns the service banner handler.
// @Summary Service banner
// @Tags system
// @Produce json
// @Success 200 {object} handlers.RootResponse
// @Router / [get]
func NewRootHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, RootResponse{Message: "User registry webhook API"})
	}
}
