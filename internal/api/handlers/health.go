package handlers

import (
	"database/sql"
	"net/http"
	"securevault/internal/models"

	"github.com/gin-gonic/gin"
)

type HealthHandler struct {
	db *sql.DB
}

func NewHealthHandler(db *sql.DB) *HealthHandler {
	return &HealthHandler{db: db}
}

// Health godoc
// @Summary Health check
// @Description Returns the health status of the API and its database
// @Tags health
// @Accept json
// @Produce json
// @Success 200 {object} models.HealthResponse
// @Failure 503 {object} models.HealthResponse "Service unavailable"
// @Router /health [get]
func (h *HealthHandler) Health(c *gin.Context) {
	// Check database connection
	if err := h.db.PingContext(c.Request.Context()); err != nil {
		c.JSON(http.StatusServiceUnavailable, models.HealthResponse{
			Status:   "unhealthy",
			Database: "disconnected",
		})
		return
	}

	c.JSON(http.StatusOK, models.HealthResponse{
		Status:   "healthy",
		Database: "connected",
	})
}
