package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/yourorg/tagpack-service/internal/service"
)

// ActorHandler handles actor lookups
type ActorHandler struct {
	actorService *service.ActorService
	logger       *zap.Logger
}

// NewActorHandler creates a new actor handler
func NewActorHandler(actorService *service.ActorService, logger *zap.Logger) *ActorHandler {
	return &ActorHandler{
		actorService: actorService,
		logger:       logger,
	}
}

// GetActor handles retrieving a single actor
// GET /api/v1/actors/{id}
func (h *ActorHandler) GetActor(c *gin.Context) {
	actor, err := h.actorService.GetActor(c.Request.Context(), c.Param("id"))
	if err != nil {
		sendServiceError(c, h.logger, err, "Failed to fetch actor")
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": actor})
}
