package api

import (
	"alcyxob/fitplan/internal/metrics"
	"alcyxob/fitplan/internal/service"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
)

// Deps bundles what the HTTP layer needs.
type Deps struct {
	CORSOrigin     string
	PlanService    service.PlanService
	CatalogService service.CatalogService
	ExportService  service.ExportService
	Generator      GeneratorStatus
	Metrics        *metrics.Metrics
	Logger         *slog.Logger
}

// NewRouter builds a gin engine with the standard middleware chain and all routes.
func NewRouter(deps Deps) *gin.Engine {
	router := gin.New()
	router.Use(Recovery(deps.Logger), RequestLogger(deps.Logger), MetricsMiddleware(deps.Metrics))
	SetupRoutes(router, deps)
	return router
}

func SetupRoutes(router *gin.Engine, deps Deps) {
	planHandler := NewPlanHandler(deps.PlanService, deps.CatalogService, deps.Logger)
	exportHandler := NewExportHandler(deps.ExportService, deps.Logger)
	healthHandler := NewHealthHandler(deps.Generator)

	router.Use(CORSMiddleware(deps.CORSOrigin))

	router.NoRoute(func(c *gin.Context) {
		abortWithError(c, http.StatusNotFound, "Not found")
	})

	router.GET("/health", healthHandler.Health)
	router.GET("/metrics", gin.WrapH(deps.Metrics.Handler()))

	// --- Generation ---
	router.POST("/ai/plan", planHandler.GeneratePlan)

	// --- Saved Plans ---
	plans := router.Group("/plans")
	{
		plans.GET("", planHandler.ListPlans)
		plans.POST("", planHandler.SavePlan)
		// Static segment, registered alongside /:id.
		plans.GET("/export.csv", exportHandler.ExportPlans)
		plans.GET("/:id", planHandler.GetPlan)
		plans.DELETE("/:id", planHandler.DeletePlan)
		plans.GET("/:id/export.csv", exportHandler.ExportPlan)
		plans.POST("/:id/archive", exportHandler.ArchivePlan)
	}
}
