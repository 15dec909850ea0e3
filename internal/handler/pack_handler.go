package handler

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/yourorg/tagpack-service/internal/service"
	"github.com/yourorg/tagpack-service/internal/utils"
)

// PackHandler ingests TagPacks and ActorPacks posted as YAML bodies
type PackHandler struct {
	ingestService *service.IngestService
	maxBodyBytes  int64
	logger        *zap.Logger
}

// NewPackHandler creates a new pack handler
func NewPackHandler(ingestService *service.IngestService, maxBodyBytes int64, logger *zap.Logger) *PackHandler {
	return &PackHandler{
		ingestService: ingestService,
		maxBodyBytes:  maxBodyBytes,
		logger:        logger,
	}
}

// InsertTagPack handles uploading a TagPack
// POST /api/v1/tagpacks?uri=
func (h *PackHandler) InsertTagPack(c *gin.Context) {
	body, ok := h.readBody(c)
	if !ok {
		return
	}

	result, err := h.ingestService.IngestTagPack(c.Request.Context(), c.Query("uri"), body)
	if err != nil {
		sendServiceError(c, h.logger, err, "Failed to insert tagpack")
		return
	}

	c.JSON(http.StatusCreated, gin.H{"data": result})
}

// InsertActorPack handles uploading an ActorPack
// POST /api/v1/actorpacks?uri=
func (h *PackHandler) InsertActorPack(c *gin.Context) {
	body, ok := h.readBody(c)
	if !ok {
		return
	}

	result, err := h.ingestService.IngestActorPack(c.Request.Context(), c.Query("uri"), body)
	if err != nil {
		sendServiceError(c, h.logger, err, "Failed to insert actorpack")
		return
	}

	c.JSON(http.StatusCreated, gin.H{"data": result})
}

func (h *PackHandler) readBody(c *gin.Context) ([]byte, bool) {
	body, err := io.ReadAll(http.MaxBytesReader(c.Writer, c.Request.Body, h.maxBodyBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			utils.SendErrorResponse(c, http.StatusRequestEntityTooLarge, "Pack exceeds the maximum body size")
			return nil, false
		}
		utils.SendErrorResponse(c, http.StatusBadRequest, "Failed to read request body")
		return nil, false
	}

	if len(body) == 0 {
		utils.SendErrorResponse(c, http.StatusBadRequest, "Request body is empty")
		return nil, false
	}

	return body, true
}
