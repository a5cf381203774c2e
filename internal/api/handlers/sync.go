package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"prestasync/internal/logger"
	"prestasync/internal/models"
)

// SyncRequester enqueues a sync pass for the worker to pick up.
type SyncRequester interface {
	Enqueue(trigger models.SyncTrigger) error
}

type SyncHandler struct {
	db        *gorm.DB
	logger    *logger.Logger
	requester SyncRequester
}

func NewSyncHandler(db *gorm.DB, logger *logger.Logger, requester SyncRequester) *SyncHandler {
	return &SyncHandler{
		db:        db,
		logger:    logger,
		requester: requester,
	}
}

func (h *SyncHandler) Trigger(c *gin.Context) {
	var body struct {
		TriggeredBy models.SyncTrigger `json:"triggered_by"`
	}
	if err := c.ShouldBindJSON(&body); err != nil && err.Error() != "EOF" {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if body.TriggeredBy == "" {
		body.TriggeredBy = models.SyncTriggeredManual
	}

	if err := h.requester.Enqueue(body.TriggeredBy); err != nil {
		h.logger.Error("Failed to enqueue sync request: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to enqueue sync"})
		return
	}

	c.JSON(http.StatusAccepted, gin.H{"status": "queued"})
}

func (h *SyncHandler) ListRuns(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))

	var runs []models.SyncRun
	if err := h.db.Order("created_at DESC").Limit(limit).Find(&runs).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch sync runs"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": runs})
}

func (h *SyncHandler) GetRun(c *gin.Context) {
	id := c.Param("id")

	var run models.SyncRun
	if err := h.db.First(&run, "id = ?", id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			c.JSON(http.StatusNotFound, gin.H{"error": "Sync run not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch sync run"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": run})
}
