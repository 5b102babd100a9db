package handlers

import (
	"log"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/bougzy/cojf/internal/cache"
	"github.com/bougzy/cojf/internal/models"
	"github.com/bougzy/cojf/internal/storage"
)

// MediaStore is the document side of the media gateway. Satisfied by
// *repository.MediaRepository.
type MediaStore interface {
	Create(m *models.MediaRecord) error
	GetByID(id uuid.UUID) (*models.MediaRecord, error)
	List(collection string, limit int) ([]models.MediaRecord, error)
	IncrementViews(id uuid.UUID) error
	IncrementDownloads(id uuid.UUID) error
	Delete(id uuid.UUID) error
}

type MediaHandler struct {
	media MediaStore
	blobs storage.BlobStore
	redis *cache.RedisClient

	uploadRate  int
	uploadBurst int
}

func NewMediaHandler(media MediaStore, blobs storage.BlobStore, redis *cache.RedisClient, uploadRate, uploadBurst int) *MediaHandler {
	return &MediaHandler{
		media:       media,
		blobs:       blobs,
		redis:       redis,
		uploadRate:  uploadRate,
		uploadBurst: uploadBurst,
	}
}

// ListSermons returns sermon records, newest first
func (h *MediaHandler) ListSermons(c *gin.Context) {
	h.list(c, models.CollectionSermons)
}

// ListMedia returns general media records, newest first
func (h *MediaHandler) ListMedia(c *gin.Context) {
	h.list(c, models.CollectionMedia)
}

func (h *MediaHandler) list(c *gin.Context, collection string) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))

	records, err := h.media.List(collection, limit)
	if err != nil {
		ErrorResponse(c, http.StatusInternalServerError, "Failed to list records")
		return
	}

	c.JSON(http.StatusOK, records)
}

// GetSermon returns a single record by id
func (h *MediaHandler) GetSermon(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		ErrorResponse(c, http.StatusBadRequest, "Invalid id")
		return
	}

	record, err := h.media.GetByID(id)
	if err != nil {
		ErrorResponse(c, http.StatusInternalServerError, "Failed to get record")
		return
	}
	if record == nil {
		ErrorResponse(c, http.StatusNotFound, "Record not found")
		return
	}

	c.JSON(http.StatusOK, record)
}

// CreateSermon saves sermon metadata. The file itself goes through Upload.
func (h *MediaHandler) CreateSermon(c *gin.Context) {
	var req models.CreateMediaRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		ErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	showOnSermons := true
	if req.ShowOnSermons != nil {
		showOnSermons = *req.ShowOnSermons
	}

	record := &models.MediaRecord{
		Collection:    models.CollectionSermons,
		Title:         req.Title,
		Preacher:      req.Preacher,
		Category:      req.Category,
		Description:   req.Description,
		MediaType:     req.MediaType,
		MediaURL:      req.MediaURL,
		FilePath:      req.FilePath,
		ShowOnSermons: showOnSermons,
	}

	if err := h.media.Create(record); err != nil {
		ErrorResponse(c, http.StatusInternalServerError, "Failed to create record")
		return
	}

	c.JSON(http.StatusCreated, record)
}

// Upload streams a media file into blob storage and returns its location
func (h *MediaHandler) Upload(c *gin.Context) {
	userID, _ := c.Get("user_id")
	uid := userID.(uuid.UUID)

	// Redis-backed token bucket; skipped when running without redis
	if h.redis != nil {
		allowed, err := h.redis.AllowAction(uid, "upload", h.uploadRate, h.uploadBurst)
		if err != nil {
			log.Printf("Upload rate limiter unavailable: %v", err)
		} else if !allowed {
			ErrorResponse(c, http.StatusTooManyRequests, "Upload limit reached, try again shortly")
			return
		}
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		ErrorResponse(c, http.StatusBadRequest, "file is required")
		return
	}

	folder := c.DefaultPostForm("folder", models.CollectionSermons)

	f, err := fileHeader.Open()
	if err != nil {
		ErrorResponse(c, http.StatusBadRequest, "Failed to read upload")
		return
	}
	defer f.Close()

	var lastLogged float64
	result, err := h.blobs.Upload(c.Request.Context(), f, fileHeader.Size, fileHeader.Filename, folder, func(pct float64) {
		if pct-lastLogged >= 25 || pct >= 100 {
			lastLogged = pct
			log.Printf("Upload %s: %.0f%%", fileHeader.Filename, pct)
		}
	})
	if err != nil {
		ErrorResponse(c, http.StatusInternalServerError, "Failed to store upload")
		return
	}

	c.JSON(http.StatusCreated, result)
}

// DeleteSermon removes a record. When a file_path query parameter is given
// the blob is deleted first, and any blob failure is logged and ignored so
// the document delete always proceeds.
func (h *MediaHandler) DeleteSermon(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		ErrorResponse(c, http.StatusBadRequest, "Invalid id")
		return
	}

	if filePath := c.Query("file_path"); filePath != "" {
		if err := h.blobs.Delete(c.Request.Context(), filePath); err != nil {
			log.Printf("Blob may already be gone, continuing delete: %v", err)
		}
	}

	if err := h.media.Delete(id); err != nil {
		ErrorResponse(c, http.StatusInternalServerError, "Failed to delete record")
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "deleted"})
}

// IncrementViews bumps the views counter
func (h *MediaHandler) IncrementViews(c *gin.Context) {
	h.increment(c, h.media.IncrementViews)
}

// IncrementDownloads bumps the downloads counter
func (h *MediaHandler) IncrementDownloads(c *gin.Context) {
	h.increment(c, h.media.IncrementDownloads)
}

func (h *MediaHandler) increment(c *gin.Context, fn func(uuid.UUID) error) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		ErrorResponse(c, http.StatusBadRequest, "Invalid id")
		return
	}

	if err := fn(id); err != nil {
		ErrorResponse(c, http.StatusInternalServerError, "Failed to update counter")
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
