package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/pageza/nutriscan/backend/internal/service"
)

// HealthCheck returns the health status of the API
func HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"message": "NutriScan API is running",
		"version": "v1.0.0",
	})
}

// Deps are the services behind the HTTP surface
type Deps struct {
	Diary      *service.DiaryService
	Recognizer service.Recognizer
	// Hub enables the live feed when set
	Hub *service.RealtimeHub
	// WriteLimiter guards diary appends when set
	WriteLimiter gin.HandlerFunc
}

// RegisterRoutes registers all API routes
func RegisterRoutes(router *gin.Engine, deps Deps) {
	router.GET("/health", HealthCheck)
	router.GET("/api/health", HealthCheck)

	api := router.Group("/api")

	diaryHandler := NewDiaryHandler(deps.Diary, deps.Recognizer, deps.WriteLimiter)
	diaryHandler.RegisterRoutes(api)

	if deps.Hub != nil {
		NewRealtimeHandler(deps.Hub).RegisterRoutes(api)
	}
}
