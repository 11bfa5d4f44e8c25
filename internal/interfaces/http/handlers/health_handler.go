package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"tapmove.backend/internal/infrastructure/ledger"
	"tapmove.backend/internal/interfaces/http/response"
)

// Sweeper reports the background expiry loop's state.
type Sweeper interface {
	Running() bool
	Interval() time.Duration
}

// HealthHandler serves liveness and public network configuration.
type HealthHandler struct {
	sweeper Sweeper
	network ledger.NetworkConfig
}

func NewHealthHandler(sweeper Sweeper, network ledger.NetworkConfig) *HealthHandler {
	return &HealthHandler{sweeper: sweeper, network: network}
}

// Health reports service liveness
// GET /health
func (h *HealthHandler) Health(c *gin.Context) {
	body := gin.H{
		"status":    "ok",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	}
	if h.sweeper != nil {
		body["sweeper"] = gin.H{
			"running":  h.sweeper.Running(),
			"interval": h.sweeper.Interval().String(),
		}
	}
	response.Success(c, http.StatusOK, body)
}

// Config returns the public network configuration for wallet clients
// GET /config
func (h *HealthHandler) Config(c *gin.Context) {
	response.Success(c, http.StatusOK, h.network)
}
