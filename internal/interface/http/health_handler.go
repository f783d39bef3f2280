package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// Health GET /api/health
func Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"message":   "Server is running",
		"timestamp": time.Now().UTC(),
	})
}
