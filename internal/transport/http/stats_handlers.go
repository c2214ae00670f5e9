package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// StatsHandlers serves the read-only snapshot of live connections.
type StatsHandlers struct {
	hub Hub
	log *zerolog.Logger
}

// NewStatsHandlers creates a new stats handlers instance.
func NewStatsHandlers(hub Hub, logger *zerolog.Logger) *StatsHandlers {
	return &StatsHandlers{hub: hub, log: logger}
}

// CommunityStatsResponse is one community entry of the stats response.
type CommunityStatsResponse struct {
	Name      string `json:"name"`
	UserCount int    `json:"userCount"`
}

// StatsResponse represents the stats response body.
type StatsResponse struct {
	TotalUsers  int                      `json:"totalUsers"`
	Communities []CommunityStatsResponse `json:"communities"`
}

// ErrorResponse represents an error response body.
type ErrorResponse struct {
	Error string `json:"error"`
}

// Stats returns total authenticated connections and per-community member counts.
// GET /api/stats
func (h *StatsHandlers) Stats(c *gin.Context) {
	snapshot, err := h.hub.Stats(c.Request.Context())
	if err != nil {
		h.log.Error().Err(err).Msg("failed to read hub stats")
		c.JSON(http.StatusServiceUnavailable, ErrorResponse{Error: "stats unavailable"})
		return
	}

	resp := StatsResponse{
		TotalUsers:  snapshot.TotalUsers,
		Communities: make([]CommunityStatsResponse, 0, len(snapshot.Communities)),
	}
	for _, cs := range snapshot.Communities {
		resp.Communities = append(resp.Communities, CommunityStatsResponse{Name: cs.Name, UserCount: cs.UserCount})
	}
	c.JSON(http.StatusOK, resp)
}
