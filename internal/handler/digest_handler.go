package handler

import (
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/yourorg/tagpack-service/internal/middleware"
	"github.com/yourorg/tagpack-service/internal/service"
)

// DigestHandler serves tag digests
type DigestHandler struct {
	digestService *service.DigestService
	logger        *zap.Logger
}

// NewDigestHandler creates a new digest handler
func NewDigestHandler(digestService *service.DigestService, logger *zap.Logger) *DigestHandler {
	return &DigestHandler{
		digestService: digestService,
		logger:        logger,
	}
}

// GetDigest handles computing the digest of a subject
// GET /api/v1/tag-digest/{subject}?network=
func (h *DigestHandler) GetDigest(c *gin.Context) {
	body, err := h.digestService.GetDigest(
		c.Request.Context(),
		c.Param("subject"),
		c.Query("network"),
		middleware.Groups(c),
	)
	if err != nil {
		sendServiceError(c, h.logger, err, "Failed to compute tag digest")
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": json.RawMessage(body)})
}
