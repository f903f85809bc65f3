package handler

import (
	"log"
	"mime/multipart"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"tradelens/internal/domain"
	"tradelens/internal/middleware"
	"tradelens/internal/service"
)

const (
	formFieldInvoice      = "commercial_invoice"
	formFieldBillOfLading = "bill_of_lading"
)

// CompareRequest is the body of POST /compare.
type CompareRequest struct {
	SessionID         string                    `json:"session_id"`
	CommercialInvoice *domain.ExtractedDocument `json:"commercial_invoice" binding:"required"`
	BillOfLading      *domain.ExtractedDocument `json:"bill_of_lading" binding:"required"`
}

// fieldResponse describes one canonical field with its effective threshold.
type fieldResponse struct {
	Name         string  `json:"name"`
	Type         string  `json:"type"`
	Category     string  `json:"category"`
	Weight       float64 `json:"weight"`
	Critical     bool    `json:"critical"`
	Threshold    float64 `json:"threshold"`
	InvoiceField string  `json:"invoiceField"`
	BLField      string  `json:"blField"`
}

// ComparisonHandler handles upload, comparison and session endpoints.
type ComparisonHandler struct {
	svc service.ComparisonService
}

// NewComparisonHandler creates a new ComparisonHandler.
func NewComparisonHandler(svc service.ComparisonService) *ComparisonHandler {
	return &ComparisonHandler{svc: svc}
}

// Upload handles POST /api/v1/upload
// @Summary Upload and compare an invoice and a bill of lading
// @Description Extracts both documents (PDF, JPG, PNG or extracted JSON) and compares them field by field
// @Tags comparison
// @Accept multipart/form-data
// @Produce json
// @Param commercial_invoice formData file true "Commercial invoice"
// @Param bill_of_lading formData file true "Bill of lading"
// @Success 201 {object} APIResponse{data=service.UploadResult}
// @Failure 400 {object} APIResponse "Missing file or unsupported type"
// @Failure 413 {object} APIResponse "File too large"
// @Failure 422 {object} APIResponse "Extraction failed"
// @Failure 429 {object} APIResponse "Extraction rate limited"
// @Router /upload [post]
func (h *ComparisonHandler) Upload(c *gin.Context) {
	invoiceFile, invoiceHeader, err := c.Request.FormFile(formFieldInvoice)
	if err != nil {
		RespondError(c, http.StatusBadRequest, "MISSING_FILE", formFieldInvoice+" file is required")
		return
	}
	defer func() { _ = invoiceFile.Close() }()

	bolFile, bolHeader, err := c.Request.FormFile(formFieldBillOfLading)
	if err != nil {
		RespondError(c, http.StatusBadRequest, "MISSING_FILE", formFieldBillOfLading+" file is required")
		return
	}
	defer func() { _ = bolFile.Close() }()

	result, err := h.svc.Upload(c.Request.Context(), service.UploadInput{
		Invoice:      fileInput(invoiceFile, invoiceHeader),
		BillOfLading: fileInput(bolFile, bolHeader),
	})
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondCreated(c, result)
}

func fileInput(f multipart.File, h *multipart.FileHeader) service.FileInput {
	return service.FileInput{Name: h.Filename, Size: h.Size, Reader: f}
}

// Compare handles POST /api/v1/compare
// @Summary Compare two already-extracted documents
// @Tags comparison
// @Accept json
// @Produce json
// @Param body body CompareRequest true "Extracted documents"
// @Success 200 {object} APIResponse{data=service.CompareResult}
// @Failure 400 {object} APIResponse "Invalid request"
// @Router /compare [post]
func (h *ComparisonHandler) Compare(c *gin.Context) {
	var req CompareRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_REQUEST", err.Error())
		return
	}

	input := service.CompareInput{
		Invoice:      *req.CommercialInvoice,
		BillOfLading: *req.BillOfLading,
	}
	if req.SessionID != "" {
		id, err := uuid.Parse(req.SessionID)
		if err != nil {
			RespondError(c, http.StatusBadRequest, "INVALID_ID", "invalid session ID")
			return
		}
		input.SessionID = &id
	}

	result, err := h.svc.Compare(c.Request.Context(), input)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, result)
}

// GetSession handles GET /api/v1/sessions/:id
// @Summary Get a comparison session
// @Tags sessions
// @Produce json
// @Param id path string true "Session ID"
// @Success 200 {object} APIResponse{data=domain.ComparisonSession}
// @Failure 404 {object} APIResponse "Session not found"
// @Router /sessions/{id} [get]
func (h *ComparisonHandler) GetSession(c *gin.Context) {
	id, ok := parseSessionID(c)
	if !ok {
		return
	}

	session, err := h.svc.GetSession(c.Request.Context(), id)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, session)
}

// DeleteSession handles DELETE /api/v1/sessions/:id
// @Summary Delete a comparison session and its stored files
// @Tags sessions
// @Produce json
// @Param id path string true "Session ID"
// @Success 200 {object} APIResponse
// @Failure 404 {object} APIResponse "Session not found"
// @Router /sessions/{id} [delete]
func (h *ComparisonHandler) DeleteSession(c *gin.Context) {
	id, ok := parseSessionID(c)
	if !ok {
		return
	}

	if err := h.svc.DeleteSession(c.Request.Context(), id); err != nil {
		HandleError(c, err)
		return
	}

	log.Printf("comparisonHandler.DeleteSession: session %s deleted by %q", id, middleware.GetSubject(c))
	RespondOK(c, gin.H{"message": "session deleted"})
}

// Status handles GET /api/v1/status/:id
// @Summary Get processing status of a comparison job
// @Tags sessions
// @Produce json
// @Param id path string true "Job ID"
// @Success 200 {object} APIResponse{data=service.StatusReport}
// @Failure 404 {object} APIResponse "Session not found"
// @Router /status/{id} [get]
func (h *ComparisonHandler) Status(c *gin.Context) {
	id, ok := parseSessionID(c)
	if !ok {
		return
	}

	status, err := h.svc.Status(c.Request.Context(), id)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, status)
}

// Result handles GET /api/v1/results/:id
// @Summary Get the comparison result of a completed session
// @Tags sessions
// @Produce json
// @Param id path string true "Session ID"
// @Success 200 {object} APIResponse{data=comparison.Result}
// @Failure 404 {object} APIResponse "Session not found"
// @Failure 409 {object} APIResponse "Session not completed"
// @Router /results/{id} [get]
func (h *ComparisonHandler) Result(c *gin.Context) {
	id, ok := parseSessionID(c)
	if !ok {
		return
	}

	result, err := h.svc.Result(c.Request.Context(), id)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, result)
}

// Fields handles GET /api/v1/fields
// @Summary List the canonical comparison fields
// @Tags comparison
// @Produce json
// @Success 200 {object} APIResponse
// @Router /fields [get]
func (h *ComparisonHandler) Fields(c *gin.Context) {
	table := h.svc.Fields()
	out := make([]fieldResponse, 0, len(table))
	for _, f := range table {
		out = append(out, fieldResponse{
			Name:         f.Name,
			Type:         string(f.Type),
			Category:     string(f.Category),
			Weight:       f.EffectiveWeight(),
			Critical:     f.Critical,
			Threshold:    f.EffectiveThreshold(),
			InvoiceField: f.InvoiceField,
			BLField:      f.BLField,
		})
	}
	RespondOK(c, out)
}

// parseSessionID reads the :id path parameter. On failure the error response
// has already been written.
func parseSessionID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_ID", "invalid session ID")
		return uuid.Nil, false
	}
	return id, true
}
