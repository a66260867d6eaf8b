package api

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/pageza/nutriscan/backend/internal/models"
	"github.com/pageza/nutriscan/backend/internal/service"
	"github.com/pageza/nutriscan/backend/internal/store"
)

// DiaryHandler serves the diary, the catalog and recognition
type DiaryHandler struct {
	diary        *service.DiaryService
	recognizer   service.Recognizer
	writeLimiter gin.HandlerFunc
}

// NewDiaryHandler creates a DiaryHandler; writeLimiter may be nil
func NewDiaryHandler(diary *service.DiaryService, recognizer service.Recognizer, writeLimiter gin.HandlerFunc) *DiaryHandler {
	return &DiaryHandler{
		diary:        diary,
		recognizer:   recognizer,
		writeLimiter: writeLimiter,
	}
}

func (h *DiaryHandler) RegisterRoutes(router *gin.RouterGroup) {
	write := []gin.HandlerFunc{}
	if h.writeLimiter != nil {
		write = append(write, h.writeLimiter)
	}

	diary := router.Group("/diary")
	{
		diary.GET("", h.ListEntries)
		diary.POST("", append(write, h.CreateEntry)...)
		diary.GET("/stats", h.GetStats)
	}

	foods := router.Group("/foods")
	{
		foods.GET("", h.ListFoods)
		foods.GET("/:key", h.GetFood)
	}

	if h.recognizer != nil {
		router.POST("/recognize", h.Recognize)
	}
}

// CreateEntry appends an entry and answers with its id
func (h *DiaryHandler) CreateEntry(c *gin.Context) {
	var req models.CreateEntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body: " + err.Error()})
		return
	}

	entry, err := h.diary.CreateEntry(c.Request.Context(), &req)
	if err != nil {
		h.storeError(c, err)
		return
	}

	c.JSON(http.StatusOK, models.CreateEntryResponse{Success: true, ID: entry.ID})
}

// ListEntries returns every stored entry
func (h *DiaryHandler) ListEntries(c *gin.Context) {
	entries, err := h.diary.ListEntries(c.Request.Context())
	if err != nil {
		h.storeError(c, err)
		return
	}
	c.JSON(http.StatusOK, entries)
}

// GetStats returns today's aggregation
func (h *DiaryHandler) GetStats(c *gin.Context) {
	summary, err := h.diary.TodaySummary(c.Request.Context())
	if err != nil {
		h.storeError(c, err)
		return
	}
	c.JSON(http.StatusOK, summary)
}

func (h *DiaryHandler) ListFoods(c *gin.Context) {
	c.JSON(http.StatusOK, models.Catalog())
}

func (h *DiaryHandler) GetFood(c *gin.Context) {
	food, err := service.LookupFood(c.Param("key"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Food not found"})
		return
	}
	c.JSON(http.StatusOK, models.CatalogEntry{Key: c.Param("key"), Food: food})
}

// Recognize runs the configured recognizer on an inline image
func (h *DiaryHandler) Recognize(c *gin.Context) {
	var req models.RecognizeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body: " + err.Error()})
		return
	}

	candidates, err := h.recognizer.Recognize(c.Request.Context(), req.Image)
	if err != nil {
		if errors.Is(err, service.ErrInvalidDataURI) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		log.Printf("[DiaryHandler] Recognition failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Recognition failed"})
		return
	}
	if candidates == nil {
		candidates = []models.Candidate{}
	}

	c.JSON(http.StatusOK, models.RecognizeResponse{Candidates: candidates})
}

func (h *DiaryHandler) storeError(c *gin.Context, err error) {
	if errors.Is(err, store.ErrCorruptStore) {
		log.Printf("[DiaryHandler] Diary store is corrupt: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Diary store is corrupt"})
		return
	}
	log.Printf("[DiaryHandler] Store operation failed: %v", err)
	c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to access diary"})
}
