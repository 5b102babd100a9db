package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/bougzy/cojf/internal/livestream"
	"github.com/bougzy/cojf/internal/models"
	"github.com/bougzy/cojf/internal/repository"
)

type LivestreamHandler struct {
	controller *livestream.Controller
}

func NewLivestreamHandler(controller *livestream.Controller) *LivestreamHandler {
	return &LivestreamHandler{controller: controller}
}

// GoLive starts a stream, force-stopping any prior one first
func (h *LivestreamHandler) GoLive(c *gin.Context) {
	var req models.GoLiveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		ErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	state, err := h.controller.GoLive(req)
	if err != nil {
		if errors.Is(err, repository.ErrStaleStream) {
			ErrorResponse(c, http.StatusConflict, "Another stream transition is in progress")
			return
		}
		ErrorResponse(c, http.StatusInternalServerError, "Failed to go live")
		return
	}

	c.JSON(http.StatusCreated, state)
}

// Stop ends the current stream and archives it
func (h *LivestreamHandler) Stop(c *gin.Context) {
	if err := h.controller.StopStream(); err != nil {
		if errors.Is(err, repository.ErrStaleStream) {
			ErrorResponse(c, http.StatusConflict, "Another stream transition is in progress")
			return
		}
		ErrorResponse(c, http.StatusInternalServerError, "Failed to stop stream")
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "stopped"})
}

// SaveRecording materializes a finished stream as a sermon record
func (h *LivestreamHandler) SaveRecording(c *gin.Context) {
	var req models.RecordingData
	if err := c.ShouldBindJSON(&req); err != nil {
		ErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	record, err := h.controller.SaveRecording(req)
	if err != nil {
		ErrorResponse(c, http.StatusInternalServerError, "Failed to save recording")
		return
	}

	c.JSON(http.StatusCreated, record)
}

// Current returns the current stream state; null when nothing was ever live
func (h *LivestreamHandler) Current(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"stream": h.controller.CurrentStream()})
}

// History returns past streams, most recently ended first
func (h *LivestreamHandler) History(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	c.JSON(http.StatusOK, h.controller.PastStreams(limit))
}

// GetSettings returns the livestream settings singleton
func (h *LivestreamHandler) GetSettings(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"settings": h.controller.Settings()})
}

// UpdateSettings merges fields into the settings singleton
func (h *LivestreamHandler) UpdateSettings(c *gin.Context) {
	var data map[string]interface{}
	if err := c.ShouldBindJSON(&data); err != nil {
		ErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	settings, err := h.controller.UpdateSettings(data)
	if err != nil {
		ErrorResponse(c, http.StatusInternalServerError, "Failed to update settings")
		return
	}

	c.JSON(http.StatusOK, gin.H{"settings": settings})
}
