package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"property-marketplace/internal/logger"
)

type HealthChecker interface {
	Health() error
}

type HealthHandler struct {
	storage HealthChecker
}

func NewHealthHandler(storage HealthChecker) *HealthHandler {
	return &HealthHandler{storage: storage}
}

func (h *HealthHandler) Check(c *gin.Context) {
	if err := h.storage.Health(); err != nil {
		logger.Error("Health check failed", zap.Error(err))
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status":   "unhealthy",
			"database": "unreachable",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":   "healthy",
		"database": "connected",
	})
}
