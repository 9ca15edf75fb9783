package handlers

import (
	"net/http"
	"runtime"
	"time"

	"github.com/gin-gonic/gin"
)

type HealthHandler struct {
	env      string
	database string
}

func NewHealthHandler(env, database string) *HealthHandler {
	return &HealthHandler{env: env, database: database}
}

// Health check endpoint
func (h *HealthHandler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":      "healthy",
		"timestamp":   time.Now().Unix(),
		"environment": h.env,
		"database":    h.database,
	})
}

// Metrics endpoint
func (h *HealthHandler) Metrics(c *gin.Context) {
	var mem runtime.MemStats
	runtime.ReadMemStats(&mem)
	c.JSON(http.StatusOK, gin.H{
		"goroutines": runtime.NumGoroutine(),
		"heap_alloc": mem.HeapAlloc,
		"timestamp":  time.Now().Unix(),
	})
}
