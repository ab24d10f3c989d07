package http

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/mikiasgoitom/likes/internal/handler/http/middleware"
	"github.com/mikiasgoitom/likes/internal/infrastructure/metrics"
	usecasecontract "github.com/mikiasgoitom/likes/internal/usecase/contract"
)

type Router struct {
	likeHandler    *LikeHandler
	tokenService   usecasecontract.ITokenService
	logger         usecasecontract.IAppLogger
	metrics        *metrics.Metrics
	allowedOrigins []string
}

// NewRouter wires the like handlers. m may be nil, in which case no metrics
// are collected or exposed.
func NewRouter(likeUsecase usecasecontract.ILikeUseCase, tokenService usecasecontract.ITokenService, validator usecasecontract.IValidator, logger usecasecontract.IAppLogger, m *metrics.Metrics, allowedOrigins []string) *Router {
	var recorder WriteRecorder
	if m != nil {
		recorder = m
	}
	return &Router{
		likeHandler:    NewLikeHandler(likeUsecase, validator, recorder),
		tokenService:   tokenService,
		logger:         logger,
		metrics:        m,
		allowedOrigins: allowedOrigins,
	}
}

func (r *Router) SetupRoutes(router *gin.Engine) {
	corsConfig := cors.Config{
		AllowOrigins:     r.allowedOrigins,
		AllowMethods:     []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "Accept", middleware.RequestIDHeader},
		ExposeHeaders:    []string{"Content-Length", middleware.RequestIDHeader},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	// browsers refuse credentialed responses to a wildcard origin
	if len(r.allowedOrigins) == 0 || (len(r.allowedOrigins) == 1 && r.allowedOrigins[0] == "*") {
		corsConfig.AllowOrigins = nil
		corsConfig.AllowAllOrigins = true
		corsConfig.AllowCredentials = false
	}
	router.Use(cors.New(corsConfig))
	router.Use(middleware.RequestID(r.logger))

	if r.metrics != nil {
		router.Use(r.metrics.GinMiddleware())
		router.GET("/metrics", gin.WrapH(r.metrics.Handler()))
	}
	router.GET("/healthz", func(c *gin.Context) {
		MessageHandler(c, http.StatusOK, "ok")
	})

	// API v1 routes
	v1 := router.Group("/api/v1")

	// Public routes (no authentication required)
	likes := v1.Group("/likes/:namespace/:type/:id")
	{
		likes.GET("/count", r.likeHandler.GetLikesCountHandler)
		likes.GET("/likers", r.likeHandler.GetLikersHandler)
	}
	v1.GET("/users/:userID/likes/:namespace/:type", r.likeHandler.GetUserLikedIDsHandler)

	// Protected routes (authentication required)
	protected := v1.Group("/likes/:namespace/:type/:id")
	protected.Use(middleware.AuthMiddleWare(r.tokenService))
	{
		protected.POST("", r.likeHandler.AddLikeHandler)
		protected.DELETE("", r.likeHandler.RemoveLikeHandler)
		protected.GET("/me", r.likeHandler.HasLikedHandler)
	}
}
