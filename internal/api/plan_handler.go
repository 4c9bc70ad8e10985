// internal/api/plan_handler.go
package api

import (
	"alcyxob/fitplan/internal/domain"
	"alcyxob/fitplan/internal/extract"
	"alcyxob/fitplan/internal/llm"
	"alcyxob/fitplan/internal/service"
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
)

type PlanHandler struct {
	planService    service.PlanService
	catalogService service.CatalogService
	logger         *slog.Logger
}

func NewPlanHandler(planService service.PlanService, catalogService service.CatalogService, logger *slog.Logger) *PlanHandler {
	return &PlanHandler{
		planService:    planService,
		catalogService: catalogService,
		logger:         logger,
	}
}

// --- DTOs ---

// GeneratePlanRequest is the questionnaire posted by the planner UI.
type GeneratePlanRequest struct {
	Age         int      `json:"age" binding:"required,min=16,max=100"`
	Level       string   `json:"level" binding:"required,oneof=beginner intermediate advanced"`
	Goal        string   `json:"goal" binding:"required,oneof=fat_loss muscle_gain performance"`
	DaysPerWeek int      `json:"daysPerWeek" binding:"required,min=1,max=7"`
	Constraints string   `json:"constraints"`
	Height      *float64 `json:"height"`
	Weight      *float64 `json:"weight"`
}

func (r GeneratePlanRequest) toDomain() domain.Questionnaire {
	return domain.Questionnaire{
		Age:         r.Age,
		Level:       domain.Level(r.Level),
		Goal:        domain.Goal(r.Goal),
		DaysPerWeek: r.DaysPerWeek,
		Constraints: r.Constraints,
		Height:      r.Height,
		Weight:      r.Weight,
	}
}

// --- Handler Methods ---

// GeneratePlan handles POST /ai/plan.
func (h *PlanHandler) GeneratePlan(c *gin.Context) {
	var req GeneratePlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	// A started generation runs to completion even if the caller disconnects.
	ctx := context.WithoutCancel(c.Request.Context())
	plan, err := h.planService.Generate(ctx, req.toDomain())
	if err != nil {
		code, msg := generationStatus(err)
		h.logger.Error("Plan generation failed", "status", code, "error", err)
		abortWithError(c, code, msg)
		return
	}

	c.JSON(http.StatusOK, plan)
}

// generationStatus maps a generation failure to an HTTP status and a message
// safe to show to the user.
func generationStatus(err error) (int, string) {
	var upstream *llm.UpstreamError
	switch {
	case errors.Is(err, domain.ErrInvalidQuestionnaire):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, llm.ErrMissingCredential):
		return http.StatusInternalServerError, "Plan generation is not configured on the server"
	case errors.Is(err, llm.ErrTimeout):
		return http.StatusBadGateway, "The plan generator took too long to answer, please try again"
	case errors.As(err, &upstream), errors.Is(err, llm.ErrNetwork):
		return http.StatusBadGateway, "The plan generator is unavailable, please try again"
	case errors.Is(err, llm.ErrInvalidResponse), errors.Is(err, extract.ErrParse):
		return http.StatusBadGateway, "The plan generator returned an unreadable plan, please try again"
	default:
		return http.StatusInternalServerError, "Failed to generate plan"
	}
}

// ListPlans handles GET /plans.
func (h *PlanHandler) ListPlans(c *gin.Context) {
	plans, err := h.catalogService.ListPlans(c.Request.Context())
	if err != nil {
		h.logger.Error("Failed to list plans", "error", err)
		abortWithError(c, http.StatusInternalServerError, "Failed to retrieve plans")
		return
	}
	c.JSON(http.StatusOK, plans)
}

// SavePlan handles POST /plans. Saving an existing id replaces that plan.
func (h *PlanHandler) SavePlan(c *gin.Context) {
	var plan domain.Plan
	if err := c.ShouldBindJSON(&plan); err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid plan body: "+err.Error())
		return
	}

	stored, err := h.catalogService.SavePlan(c.Request.Context(), &plan)
	if err != nil {
		if errors.Is(err, service.ErrInvalidPlan) {
			abortWithError(c, http.StatusBadRequest, err.Error())
		} else {
			h.logger.Error("Failed to save plan", "plan_id", plan.ID, "error", err)
			abortWithError(c, http.StatusInternalServerError, "Failed to save plan")
		}
		return
	}
	c.JSON(http.StatusOK, stored)
}

// GetPlan handles GET /plans/:id.
func (h *PlanHandler) GetPlan(c *gin.Context) {
	plan, err := h.catalogService.GetPlan(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, service.ErrPlanNotFound) {
			abortWithError(c, http.StatusNotFound, err.Error())
		} else {
			h.logger.Error("Failed to get plan", "plan_id", c.Param("id"), "error", err)
			abortWithError(c, http.StatusInternalServerError, "Failed to retrieve plan")
		}
		return
	}
	c.JSON(http.StatusOK, plan)
}

// DeletePlan handles DELETE /plans/:id.
func (h *PlanHandler) DeletePlan(c *gin.Context) {
	if err := h.catalogService.DeletePlan(c.Request.Context(), c.Param("id")); err != nil {
		if errors.Is(err, service.ErrPlanNotFound) {
			abortWithError(c, http.StatusNotFound, err.Error())
		} else {
			h.logger.Error("Failed to delete plan", "plan_id", c.Param("id"), "error", err)
			abortWithError(c, http.StatusInternalServerError, "Failed to delete plan")
		}
		return
	}
	c.Status(http.StatusNoContent)
}
