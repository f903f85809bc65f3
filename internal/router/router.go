package router

import (
	"github.com/gin-gonic/gin"

	"tradelens/internal/handler"
	"tradelens/internal/middleware"
)

// Options holds the cross-cutting settings for Setup.
type Options struct {
	AllowedOrigins []string
	// Verifier enables bearer auth on /api/v1 when non-nil.
	Verifier *middleware.TokenVerifier
}

// Setup configures the Gin engine with all routes and middleware.
func Setup(
	opts Options,
	comparisonH *handler.ComparisonHandler,
	exportH *handler.ExportHandler,
	healthH *handler.HealthHandler,
) *gin.Engine {
	r := gin.New()

	// Global middleware
	r.Use(middleware.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())
	r.Use(middleware.CORS(opts.AllowedOrigins))

	// Health checks
	r.GET("/healthz", healthH.Liveness)
	r.GET("/readyz", healthH.Readiness)

	v1 := r.Group("/api/v1")
	v1.GET("/info", healthH.Info)

	protected := v1.Group("")
	if opts.Verifier != nil {
		protected.Use(middleware.Auth(opts.Verifier))
	}

	protected.POST("/upload", comparisonH.Upload)
	protected.POST("/compare", comparisonH.Compare)
	protected.GET("/fields", comparisonH.Fields)
	protected.GET("/status/:id", comparisonH.Status)
	protected.GET("/results/:id", comparisonH.Result)

	sessions := protected.Group("/sessions")
	sessions.GET("/:id", comparisonH.GetSession)
	sessions.DELETE("/:id", comparisonH.DeleteSession)

	protected.POST("/export/:id", exportH.Export)

	return r
}
