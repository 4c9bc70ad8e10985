package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// GeneratorStatus reports whether the model client has a credential.
type GeneratorStatus interface {
	Configured() bool
}

type HealthHandler struct {
	generator GeneratorStatus
}

func NewHealthHandler(generator GeneratorStatus) *HealthHandler {
	return &HealthHandler{generator: generator}
}

// Health handles GET /health.
func (h *HealthHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":           "ok",
		"timestamp":        time.Now().UTC().Format(time.RFC3339),
		"geminiConfigured": h.generator != nil && h.generator.Configured(),
	})
}
