package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/pontovivo/ponto_vivo_app/internal/core/ports"
)

// RegisterHandlers wires every API route group under /api/v1.
func RegisterHandlers(v1 *gin.RouterGroup, stateService ports.StateSvcFacade, authService ports.AuthSvcFacade, jwtSecret string) {
	registerStateRoutes(v1, stateService, jwtSecret)
	registerAuthRoutes(v1, authService, stateService)
}

// Health godoc
// @Summary Health check
// @Tags health
// @Produce json
// @Success 200 {object} map[string]string
// @Router /health [get]
func Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
