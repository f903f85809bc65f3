package handler

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"tradelens/internal/domain"
	"tradelens/internal/report"
	"tradelens/internal/service"
)

// ExportHandler serves report downloads.
type ExportHandler struct {
	svc service.ReportService
}

// NewExportHandler creates a new ExportHandler.
func NewExportHandler(svc service.ReportService) *ExportHandler {
	return &ExportHandler{svc: svc}
}

// Export handles POST /api/v1/export/:id?format=csv|json|xlsx|pdf
// @Summary Download a comparison report
// @Tags export
// @Produce octet-stream
// @Param id path string true "Session ID"
// @Param format query string false "csv (default), json, xlsx or pdf"
// @Success 200 {file} file
// @Failure 400 {object} APIResponse "Unsupported format"
// @Failure 404 {object} APIResponse "Session not found"
// @Failure 409 {object} APIResponse "Session not completed"
// @Router /export/{id} [post]
func (h *ExportHandler) Export(c *gin.Context) {
	id, ok := parseSessionID(c)
	if !ok {
		return
	}

	format, err := report.ParseFormat(c.DefaultQuery("format", string(domain.ExportFormatCSV)))
	if err != nil {
		HandleError(c, err)
		return
	}

	out, err := h.svc.Export(c.Request.Context(), id, format)
	if err != nil {
		HandleError(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, out.FileName))
	c.Data(http.StatusOK, out.ContentType, out.Data)
}
