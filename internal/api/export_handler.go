package api

import (
	"alcyxob/fitplan/internal/export"
	"alcyxob/fitplan/internal/service"
	"alcyxob/fitplan/internal/storage"
	"errors"
	"log/slog"
	"mime"
	"net/http"

	"github.com/gin-gonic/gin"
)

type ExportHandler struct {
	exportService service.ExportService
	logger        *slog.Logger
}

func NewExportHandler(exportService service.ExportService, logger *slog.Logger) *ExportHandler {
	return &ExportHandler{exportService: exportService, logger: logger}
}

// ExportPlans handles GET /plans/export.csv.
func (h *ExportHandler) ExportPlans(c *gin.Context) {
	body, err := h.exportService.PlansCSV(c.Request.Context())
	if err != nil {
		h.logger.Error("Failed to export plans", "error", err)
		abortWithError(c, http.StatusInternalServerError, "Failed to export plans")
		return
	}
	c.Header("Content-Disposition", attachment("plans.csv"))
	c.Data(http.StatusOK, export.ContentType, body)
}

// ExportPlan handles GET /plans/:id/export.csv.
func (h *ExportHandler) ExportPlan(c *gin.Context) {
	id := c.Param("id")
	body, err := h.exportService.PlanCSV(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, service.ErrPlanNotFound) {
			abortWithError(c, http.StatusNotFound, err.Error())
		} else {
			h.logger.Error("Failed to export plan", "plan_id", id, "error", err)
			abortWithError(c, http.StatusInternalServerError, "Failed to export plan")
		}
		return
	}
	c.Header("Content-Disposition", attachment(id+".csv"))
	c.Data(http.StatusOK, export.ContentType, body)
}

// ArchivePlan handles POST /plans/:id/archive.
func (h *ExportHandler) ArchivePlan(c *gin.Context) {
	id := c.Param("id")
	url, err := h.exportService.Archive(c.Request.Context(), id)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrPlanNotFound):
			abortWithError(c, http.StatusNotFound, err.Error())
		case errors.Is(err, storage.ErrNotConfigured):
			abortWithError(c, http.StatusServiceUnavailable, "Plan archiving is not enabled")
		default:
			h.logger.Error("Failed to archive plan", "plan_id", id, "error", err)
			abortWithError(c, http.StatusBadGateway, "Failed to archive plan")
		}
		return
	}
	c.JSON(http.StatusOK, gin.H{"url": url})
}

// attachment builds a Content-Disposition value, quoting the file name as needed.
func attachment(filename string) string {
	return mime.FormatMediaType("attachment", map[string]string{"filename": filename})
}
