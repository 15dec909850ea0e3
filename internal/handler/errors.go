package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/yourorg/tagpack-service/internal/service"
	"github.com/yourorg/tagpack-service/internal/utils"
)

// sendServiceError maps service errors to HTTP status codes. Unexpected
// errors are logged and hidden behind fallback.
func sendServiceError(c *gin.Context, logger *zap.Logger, err error, fallback string) {
	switch {
	case errors.Is(err, service.ErrInvalidSubject), errors.Is(err, service.ErrInvalidPack):
		utils.SendErrorResponse(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrNotFound):
		utils.SendErrorResponse(c, http.StatusNotFound, err.Error())
	default:
		logger.Error(fallback, zap.Error(err), zap.String("path", c.Request.URL.Path))
		utils.SendErrorResponse(c, http.StatusInternalServerError, fallback)
	}
}
