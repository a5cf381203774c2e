package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"prestasync/internal/logger"
	"prestasync/internal/models"
)

type CollectionHandler struct {
	db     *gorm.DB
	logger *logger.Logger
}

func NewCollectionHandler(db *gorm.DB, logger *logger.Logger) *CollectionHandler {
	return &CollectionHandler{
		db:     db,
		logger: logger,
	}
}

func (h *CollectionHandler) List(c *gin.Context) {
	var collections []models.Collection

	if err := h.db.Order("title").Find(&collections).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch collections"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": collections})
}

func (h *CollectionHandler) Get(c *gin.Context) {
	id := c.Param("id")

	var collection models.Collection
	if err := h.db.First(&collection, "id = ?", id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			c.JSON(http.StatusNotFound, gin.H{"error": "Collection not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch collection"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": collection})
}
