package controllers

import (
	"net/http"

	"eventplatform/internal/delivery/http/helpers"
)

// Health godoc
// @Summary Liveness check
// @Tags health
// @Produce json
// @Success 200 {object} helpers.APIResponse
// @Router /api/health [get]
func Health(w http.ResponseWriter, r *http.Request) {
	helpers.WriteJSONSuccess(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"message": "Event Platform API is running",
	})
}
