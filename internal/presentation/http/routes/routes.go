package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sangkips/schoolfee-receipts/internal/application/service"
	"github.com/sangkips/schoolfee-receipts/internal/config"
	domainRepo "github.com/sangkips/schoolfee-receipts/internal/domain/repository"
	"github.com/sangkips/schoolfee-receipts/internal/presentation/http/handler"
	"github.com/sangkips/schoolfee-receipts/internal/presentation/http/middleware"
	"github.com/sangkips/schoolfee-receipts/pkg/logger"
)

// Handlers holds all the HTTP handlers used for route registration.
type Handlers struct {
	Receipt *handler.ReceiptHandler
}

// Deps holds shared dependencies needed by the routes.
type Deps struct {
	Cfg             *config.Config
	Log             *logger.Logger
	IdempotencyRepo domainRepo.IdempotencyRepository
	RateLimiter     *middleware.ClientRateLimiter
	Renderer        *service.RenderService
}

// Setup creates the Gin router and registers all routes.
func Setup(h *Handlers, deps *Deps) *gin.Engine {
	router := gin.New()

	router.Use(middleware.LoggerMiddleware(deps.Log))
	router.Use(middleware.Recovery(deps.Log))
	router.Use(middleware.CORSMiddleware(&deps.Cfg.CORS))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":   "ok",
			"service":  deps.Cfg.App.Name,
			"renderer": deps.Renderer.Status(),
		})
	})

	v1 := router.Group("/api/v1")
	if deps.RateLimiter != nil {
		v1.Use(deps.RateLimiter.Middleware())
	}
	registerReceiptRoutes(v1, h, deps)

	return router
}

func registerReceiptRoutes(v1 *gin.RouterGroup, h *Handlers, deps *Deps) {
	idempotent := middleware.Idempotency(middleware.IdempotencyConfig{
		Repo: deps.IdempotencyRepo,
		Log:  deps.Log,
	})

	receipts := v1.Group("/receipts")
	{
		receipts.GET("", h.Receipt.List)
		receipts.POST("", idempotent, h.Receipt.Create)
		receipts.GET("/next-number", h.Receipt.NextNumber)
		receipts.GET("/export", h.Receipt.Export)
		receipts.GET("/:id", h.Receipt.Get)
		receipts.PUT("/:id", h.Receipt.Update)
		receipts.DELETE("/:id", h.Receipt.Delete)
		receipts.GET("/:id/pdf", h.Receipt.Download)
	}
}
