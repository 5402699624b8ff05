package apiHttp

import (
	"time"

	internalV1 "github.com/firetrack/backend/internal/api/http/internal/v1"
	"github.com/firetrack/backend/internal/config"
	"github.com/firetrack/backend/internal/metrics"
	"github.com/firetrack/backend/internal/service"
	"github.com/firetrack/backend/pkg/limiter"
	"github.com/firetrack/backend/pkg/logger"
	"github.com/firetrack/backend/pkg/validator"

	ginzap "github.com/gin-contrib/zap"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Handler struct {
	services *service.Services
	config   *config.Config
}

func NewHandlers(services *service.Services, cfg *config.Config) *Handler {
	return &Handler{
		services: services,
		config:   cfg,
	}
}

func (h *Handler) Init() *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()

	validator.RegisterGinValidator()

	router.Use(
		ginzap.Ginzap(logger.Logger(), time.RFC3339, true),
		limiter.Limit(h.config.Limiter.RPS, h.config.Limiter.Burst, h.config.Limiter.TTL),
		corsMiddleware(h.config.HttpServer.AllowedOrigins),
	)
	router.Use(ginzap.RecoveryWithZap(logger.Logger(), true))

	if h.config.HttpServer.MetricsEnabled {
		metrics.MustRegister()
		router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	}

	h.initAPI(router)

	return router
}

func (h *Handler) initAPI(router *gin.Engine) {
	internalHandlersV1 := internalV1.NewHandler(h.services, h.config)
	api := router.Group("/api")
	internalHandlersV1.Init(api)
}
