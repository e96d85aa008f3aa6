package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/readpref"
)

const healthCheckTimeout = 2 * time.Second

// HealthHandler serves GET /health, used both by operators and as the
// Consul check endpoint.
type HealthHandler struct {
	client *mongo.Client
	logger *zerolog.Logger
}

// NewHealthHandler creates a new HealthHandler.
func NewHealthHandler(client *mongo.Client, logger *zerolog.Logger) *HealthHandler {
	return &HealthHandler{client: client, logger: logger}
}

type healthResponse struct {
	Status   string `json:"status"`
	Database string `json:"database"`
}

func (h *HealthHandler) Check(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), healthCheckTimeout)
	defer cancel()

	if err := h.client.Ping(ctx, readpref.Primary()); err != nil {
		h.logger.Error().Err(err).Msg("health check failed")
		respondJSON(w, http.StatusServiceUnavailable, healthResponse{Status: "unavailable", Database: "down"})
		return
	}

	respondJSON(w, http.StatusOK, healthResponse{Status: "ok", Database: "up"})
}
