package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/yourorg/tagpack-service/internal/middleware"
	"github.com/yourorg/tagpack-service/internal/service"
	"github.com/yourorg/tagpack-service/internal/utils"
)

// TagHandler handles tag-related HTTP requests
type TagHandler struct {
	tagService *service.TagService
	logger     *zap.Logger
}

// NewTagHandler creates a new tag handler
func NewTagHandler(tagService *service.TagService, logger *zap.Logger) *TagHandler {
	return &TagHandler{
		tagService: tagService,
		logger:     logger,
	}
}

// ListTags handles listing the tags of a subject
// GET /api/v1/tags/{subject}?network=&page=&limit=
func (h *TagHandler) ListTags(c *gin.Context) {
	params := utils.ParsePaginationParams(c, 50, 500)

	tags, total, err := h.tagService.ListTags(
		c.Request.Context(),
		c.Param("subject"),
		c.Query("network"),
		middleware.Groups(c),
		params.Page,
		params.Limit,
	)
	if err != nil {
		sendServiceError(c, h.logger, err, "Failed to fetch tags")
		return
	}

	utils.SendPaginatedResponse(c, http.StatusOK, tags, total, params)
}
