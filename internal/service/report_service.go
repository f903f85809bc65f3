package service

import (
	"bytes"
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"tradelens/internal/domain"
	"tradelens/internal/port"
	"tradelens/internal/report"
)

// ExportedReport is a rendered report ready for download.
type ExportedReport struct {
	FileName    string
	ContentType string
	Data        []byte
}

// ReportService renders completed sessions as downloadable reports.
type ReportService interface {
	Export(ctx context.Context, sessionID uuid.UUID, format domain.ExportFormat) (*ExportedReport, error)
}

type reportService struct {
	repo    port.SessionRepository
	storage port.ObjectStorage
	bucket  string
	now     func() time.Time
}

// NewReportService creates a new ReportService. Every export is also archived
// in storage under the session's reports prefix.
func NewReportService(repo port.SessionRepository, storage port.ObjectStorage, bucket string) ReportService {
	return &reportService{repo: repo, storage: storage, bucket: bucket, now: time.Now}
}

func (s *reportService) Export(ctx context.Context, sessionID uuid.UUID, format domain.ExportFormat) (*ExportedReport, error) {
	if _, err := report.ParseFormat(string(format)); err != nil {
		return nil, err
	}

	session, err := s.repo.GetByID(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	payload, err := loadResult(session)
	if err != nil {
		return nil, err
	}

	rendered, err := report.Render(format, report.Document{
		Session:      session,
		Result:       payload.Result,
		Invoice:      payload.Invoice,
		BillOfLading: payload.BillOfLading,
		GeneratedAt:  s.now().UTC(),
	})
	if err != nil {
		return nil, fmt.Errorf("reportService.Export: %w", err)
	}

	key := report.ArchiveKey(session, format)
	if _, err := s.storage.Upload(ctx, port.UploadInput{
		Bucket:      s.bucket,
		Key:         key,
		Body:        bytes.NewReader(rendered.Data),
		ContentType: rendered.ContentType,
		Size:        int64(len(rendered.Data)),
		Metadata: map[string]string{
			port.MetadataSessionID:    session.ID.String(),
			port.MetadataReportFormat: string(format),
		},
	}); err != nil {
		log.Printf("reportService.Export: archiving %s failed: %v", key, err)
	}

	log.Printf("reportService.Export: session %s exported as %s (%d bytes)", session.ID, format, len(rendered.Data))
	return &ExportedReport{
		FileName:    rendered.FileName,
		ContentType: rendered.ContentType,
		Data:        rendered.Data,
	}, nil
}
