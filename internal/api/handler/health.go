package handler

import (
	"net/http"

	"github.com/mcoot/lanterngame/internal/api/response"
)

type healthResponse struct {
	Status string `json:"status"`
}

// Health handles GET /api/v1/health
func Health(w http.ResponseWriter, _ *http.Request) {
	response.JSON(w, http.StatusOK, healthResponse{Status: "ok"})
}
