package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/yourorg/tagpack-service/internal/middleware"
)

// Handlers groups the HTTP handlers mounted by NewRouter
type Handlers struct {
	Digest *DigestHandler
	Tag    *TagHandler
	Actor  *ActorHandler
	Pack   *PackHandler
}

// RouterOptions holds the middleware settings of the router
type RouterOptions struct {
	Verifier    *middleware.TokenVerifier
	CuratorRole string
	RateLimiter *middleware.RateLimiter
	RateLimit   int
}

// NewRouter sets up the gin engine with every route of the service
func NewRouter(h Handlers, opts RouterOptions, logger *zap.Logger) *gin.Engine {
	router := gin.New()

	// Use middlewares
	router.Use(gin.Recovery())
	router.Use(middleware.Logger(logger))
	if opts.RateLimiter != nil {
		router.Use(middleware.RateLimit(opts.RateLimiter, opts.RateLimit))
	}

	// Health check
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	v1 := router.Group("/api/v1")

	public := v1.Group("")
	public.Use(middleware.Authenticate(opts.Verifier, false, logger))
	{
		public.GET("/tag-digest/:subject", h.Digest.GetDigest)
		public.GET("/tags/:subject", h.Tag.ListTags)
		public.GET("/actors/:id", h.Actor.GetActor)
	}

	curated := v1.Group("")
	curated.Use(middleware.Authenticate(opts.Verifier, true, logger))
	curated.Use(middleware.RequireRole(opts.CuratorRole))
	{
		curated.POST("/tagpacks", h.Pack.InsertTagPack)
		curated.POST("/actorpacks", h.Pack.InsertActorPack)
	}

	return router
}
