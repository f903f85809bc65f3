package handler_test

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"tradelens/internal/domain"
	"tradelens/internal/handler"
	"tradelens/internal/service"
	"tradelens/mocks"
)

func exportContext(id, query string) (*gin.Context, *httptest.ResponseRecorder) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request, _ = http.NewRequest(http.MethodPost, "/api/v1/export/"+id+query, http.NoBody)
	c.Params = gin.Params{{Key: "id", Value: id}}
	return c, w
}

func TestExportHandler_Export(t *testing.T) {
	svc := new(mocks.MockReportService)
	h := handler.NewExportHandler(svc)
	id := uuid.New()
	svc.On("Export", mock.Anything, id, domain.ExportFormatXLSX).Return(&service.ExportedReport{
		FileName:    "comparison_" + id.String() + "_2025-03-01.xlsx",
		ContentType: "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
		Data:        []byte("PK..."),
	}, nil)

	c, w := exportContext(id.String(), "?format=xlsx")
	h.Export(c)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, `attachment; filename="comparison_`+id.String()+`_2025-03-01.xlsx"`, w.Header().Get("Content-Disposition"))
	assert.Equal(t, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", w.Header().Get("Content-Type"))
	assert.Equal(t, "PK...", w.Body.String())
}

func TestExportHandler_Export_PDF(t *testing.T) {
	svc := new(mocks.MockReportService)
	h := handler.NewExportHandler(svc)
	id := uuid.New()
	svc.On("Export", mock.Anything, id, domain.ExportFormatPDF).
		Return(&service.ExportedReport{FileName: "r.pdf", ContentType: "application/pdf", Data: []byte("%PDF-1.3")}, nil)

	c, w := exportContext(id.String(), "?format=pdf")
	h.Export(c)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/pdf", w.Header().Get("Content-Type"))
	svc.AssertExpectations(t)
}

func TestExportHandler_DefaultsToCSV(t *testing.T) {
	svc := new(mocks.MockReportService)
	h := handler.NewExportHandler(svc)
	id := uuid.New()
	svc.On("Export", mock.Anything, id, domain.ExportFormatCSV).
		Return(&service.ExportedReport{FileName: "r.csv", ContentType: "text/csv; charset=utf-8", Data: []byte("a,b\n")}, nil)

	c, w := exportContext(id.String(), "")
	h.Export(c)

	assert.Equal(t, http.StatusOK, w.Code)
	svc.AssertExpectations(t)
}

func TestExportHandler_Errors(t *testing.T) {
	id := uuid.New()
	tests := []struct {
		name       string
		id         string
		query      string
		svcErr     error
		wantStatus int
		wantCode   string
	}{
		{"docx_unsupported", id.String(), "?format=docx", nil, http.StatusBadRequest, "UNSUPPORTED_EXPORT_FORMAT"},
		{"invalid_id", "abc", "", nil, http.StatusBadRequest, "INVALID_ID"},
		{"not_found", id.String(), "", domain.ErrSessionNotFound, http.StatusNotFound, "SESSION_NOT_FOUND"},
		{"not_completed", id.String(), "", domain.ErrSessionNotCompleted, http.StatusConflict, "SESSION_NOT_COMPLETED"},
		{"internal", id.String(), "", errors.New("disk full"), http.StatusInternalServerError, "INTERNAL_ERROR"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(mocks.MockReportService)
			h := handler.NewExportHandler(svc)
			if tt.svcErr != nil {
				svc.On("Export", mock.Anything, mock.Anything, mock.Anything).Return(nil, tt.svcErr)
			}

			c, w := exportContext(tt.id, tt.query)
			h.Export(c)

			assert.Equal(t, tt.wantStatus, w.Code)
			assert.Equal(t, tt.wantCode, decodeResponse(t, w).Error.Code)
		})
	}
}
