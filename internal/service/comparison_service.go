package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"tradelens/internal/comparison"
	"tradelens/internal/domain"
	"tradelens/internal/port"
)

// FileInput is one uploaded document.
type FileInput struct {
	Name   string
	Size   int64
	Reader io.Reader
}

// UploadInput is the DTO for a two-document upload.
type UploadInput struct {
	Invoice      FileInput
	BillOfLading FileInput
}

// UploadResult is returned once both documents are extracted and compared.
// JobID and SessionID are the same value.
type UploadResult struct {
	JobID        uuid.UUID                 `json:"job_id"`
	SessionID    uuid.UUID                 `json:"session_id"`
	Invoice      *domain.ExtractedDocument `json:"invoice_data"`
	BillOfLading *domain.ExtractedDocument `json:"bl_data"`
	Result       *comparison.Result        `json:"result"`
	ProcessingMS int64                     `json:"processing_ms"`
}

// CompareInput carries documents extracted elsewhere. A nil SessionID allocates a new session.
type CompareInput struct {
	SessionID    *uuid.UUID
	Invoice      domain.ExtractedDocument
	BillOfLading domain.ExtractedDocument
}

// CompareResult is the outcome of Compare.
type CompareResult struct {
	SessionID uuid.UUID          `json:"session_id"`
	Result    *comparison.Result `json:"result"`
}

// StatusReport describes where a session is in its lifecycle.
type StatusReport struct {
	JobID    uuid.UUID            `json:"job_id"`
	Status   domain.SessionStatus `json:"status"`
	Stage    string               `json:"stage"`
	Progress int                  `json:"progress"`
	Message  string               `json:"message"`
}

// ComparisonServiceConfig holds upload limits and the storage bucket.
type ComparisonServiceConfig struct {
	Bucket        string
	MaxFileSizeMB int64
	// TraceFields logs every field comparison; enabled at log level debug.
	TraceFields bool
}

// ComparisonService defines the reconciliation contract.
type ComparisonService interface {
	Upload(ctx context.Context, input UploadInput) (*UploadResult, error)
	Compare(ctx context.Context, input CompareInput) (*CompareResult, error)
	GetSession(ctx context.Context, id uuid.UUID) (*domain.ComparisonSession, error)
	DeleteSession(ctx context.Context, id uuid.UUID) error
	Status(ctx context.Context, id uuid.UUID) (*StatusReport, error)
	Result(ctx context.Context, id uuid.UUID) (*comparison.Result, error)
	Fields() comparison.FieldTable
}

// Comparer runs the field comparison; *comparison.Engine implements it.
type Comparer interface {
	Compare(ctx context.Context, a, b domain.ExtractedDocument) (*comparison.Result, error)
	Fields() comparison.FieldTable
}

type comparisonService struct {
	engine    Comparer
	extractor port.DocumentExtractor
	storage   port.ObjectStorage
	repo      port.SessionRepository
	cfg       ComparisonServiceConfig
	now       func() time.Time
}

// NewComparisonService creates a new ComparisonService implementation.
func NewComparisonService(
	engine Comparer,
	extractor port.DocumentExtractor,
	storage port.ObjectStorage,
	repo port.SessionRepository,
	cfg ComparisonServiceConfig,
) ComparisonService {
	return &comparisonService{
		engine:    engine,
		extractor: extractor,
		storage:   storage,
		repo:      repo,
		cfg:       cfg,
		now:       time.Now,
	}
}

// validatedFile is an upload that passed extension, size and content checks.
type validatedFile struct {
	docType     domain.DocumentType
	ext         string
	contentType string
	data        []byte
}

func (s *comparisonService) validateFile(docType domain.DocumentType, in FileInput) (*validatedFile, error) {
	if in.Reader == nil {
		return nil, fmt.Errorf("%s: %w", docType.Label(), domain.ErrInvalidDocument)
	}

	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(in.Name), "."))
	fileType, ok := domain.AllowedExtensions[ext]
	if !ok {
		return nil, fmt.Errorf("%s: %w", docType.Label(), domain.ErrUnsupportedFileType)
	}

	maxBytes := s.cfg.MaxFileSizeMB * 1024 * 1024
	if in.Size > maxBytes {
		return nil, fmt.Errorf("%s: %w", docType.Label(), domain.ErrFileTooLarge)
	}
	data, err := io.ReadAll(io.LimitReader(in.Reader, maxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", docType.Label(), err)
	}
	if int64(len(data)) > maxBytes {
		return nil, fmt.Errorf("%s: %w", docType.Label(), domain.ErrFileTooLarge)
	}

	contentType := domain.AllowedFileTypes[fileType]
	if !contentMatches(fileType, contentType, data) {
		return nil, fmt.Errorf("%s: %w", docType.Label(), domain.ErrFileContentMismatch)
	}

	return &validatedFile{docType: docType, ext: string(fileType), contentType: contentType, data: data}, nil
}

// contentMatches checks magic bytes against the declared type. JSON has no
// signature, so it must parse instead.
func contentMatches(fileType domain.FileType, contentType string, data []byte) bool {
	if fileType == domain.FileTypeJSON {
		return json.Valid(data)
	}
	head := data
	if len(head) > 512 {
		head = head[:512]
	}
	return http.DetectContentType(head) == contentType
}

func fileKey(id uuid.UUID, docType domain.DocumentType, ext string) string {
	return fmt.Sprintf("sessions/%s/%s.%s", id, docType, ext)
}

func (s *comparisonService) Upload(ctx context.Context, input UploadInput) (*UploadResult, error) {
	started := s.now()

	invoiceFile, err := s.validateFile(domain.DocumentTypeInvoice, input.Invoice)
	if err != nil {
		return nil, err
	}
	bolFile, err := s.validateFile(domain.DocumentTypeBillOfLading, input.BillOfLading)
	if err != nil {
		return nil, err
	}

	session := &domain.ComparisonSession{
		ID:     uuid.New(),
		Status: domain.SessionStatusProcessing,
	}
	session.InvoiceFileKey = fileKey(session.ID, invoiceFile.docType, invoiceFile.ext)
	session.BOLFileKey = fileKey(session.ID, bolFile.docType, bolFile.ext)

	log.Printf("comparisonService.Upload: session %s invoice=%s (%d bytes) bl=%s (%d bytes)",
		session.ID, input.Invoice.Name, len(invoiceFile.data), input.BillOfLading.Name, len(bolFile.data))

	if err := s.repo.Create(ctx, session); err != nil {
		log.Printf("comparisonService.Upload: failed to create session: %v", err)
		return nil, fmt.Errorf("creating session: %w", err)
	}

	for _, f := range []struct {
		key  string
		file *validatedFile
	}{
		{session.InvoiceFileKey, invoiceFile},
		{session.BOLFileKey, bolFile},
	} {
		_, err := s.storage.Upload(ctx, port.UploadInput{
			Bucket:      s.cfg.Bucket,
			Key:         f.key,
			Body:        bytes.NewReader(f.file.data),
			ContentType: f.file.contentType,
			Size:        int64(len(f.file.data)),
			Metadata: map[string]string{
				port.MetadataSessionID:    session.ID.String(),
				port.MetadataDocumentType: string(f.file.docType),
			},
		})
		if err != nil {
			log.Printf("comparisonService.Upload: storage upload failed for %s: %v", f.key, err)
			s.markFailed(ctx, session, started, "storing "+f.file.docType.Label()+" failed")
			return nil, domain.ErrUploadFailed
		}
	}

	var invoice, bol *domain.ExtractedDocument
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		doc, err := s.extract(gctx, invoiceFile)
		invoice = doc
		return err
	})
	g.Go(func() error {
		doc, err := s.extract(gctx, bolFile)
		bol = doc
		return err
	})
	if err := g.Wait(); err != nil {
		log.Printf("comparisonService.Upload: extraction failed for session %s: %v", session.ID, err)
		s.markFailed(ctx, session, started, err.Error())
		return nil, fmt.Errorf("%w: %w", domain.ErrExtractionFailed, err)
	}

	result, err := s.engine.Compare(s.withHooks(ctx, session.ID), *invoice, *bol)
	if err != nil {
		log.Printf("comparisonService.Upload: comparison failed for session %s: %v", session.ID, err)
		s.markFailed(ctx, session, started, err.Error())
		return nil, err
	}

	if err := storeResult(session, invoice, bol, result); err != nil {
		log.Printf("comparisonService.Upload: encoding result for session %s: %v", session.ID, err)
		s.markFailed(ctx, session, started, "storing comparison result failed")
		return nil, err
	}
	session.ProcessingMS = s.now().Sub(started).Milliseconds()
	if err := s.repo.Update(ctx, session); err != nil {
		log.Printf("comparisonService.Upload: saving session %s: %v", session.ID, err)
		s.markFailed(ctx, session, started, "saving comparison result failed")
		return nil, fmt.Errorf("updating session: %w", err)
	}

	return &UploadResult{
		JobID:        session.ID,
		SessionID:    session.ID,
		Invoice:      invoice,
		BillOfLading: bol,
		Result:       result,
		ProcessingMS: session.ProcessingMS,
	}, nil
}

func (s *comparisonService) extract(ctx context.Context, f *validatedFile) (*domain.ExtractedDocument, error) {
	doc, err := s.extractor.Extract(ctx, port.ExtractInput{
		FileBytes:    f.data,
		ContentType:  f.contentType,
		DocumentType: f.docType,
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", f.docType.Label(), err)
	}
	if doc.DocumentType != f.docType {
		return nil, fmt.Errorf("%s: %w: extractor returned %q", f.docType.Label(), domain.ErrInvalidDocument, doc.DocumentType)
	}
	return doc, nil
}

func (s *comparisonService) markFailed(ctx context.Context, session *domain.ComparisonSession, started time.Time, msg string) {
	session.Status = domain.SessionStatusFailed
	session.ErrorMessage = msg
	session.ProcessingMS = s.now().Sub(started).Milliseconds()
	if err := s.repo.Update(ctx, session); err != nil {
		log.Printf("comparisonService: failed to mark session %s failed: %v", session.ID, err)
	}
}

func (s *comparisonService) withHooks(ctx context.Context, sessionID uuid.UUID) context.Context {
	hooks := comparison.Hooks{
		Logf: func(format string, args ...any) {
			log.Printf("comparisonService[%s]: "+format, append([]any{sessionID}, args...)...)
		},
	}
	if s.cfg.TraceFields {
		hooks.OnField = func(fc comparison.FieldComparison) {
			log.Printf("comparisonService[%s]: field %s %s (%.2f) %s", sessionID, fc.Field, fc.Match, fc.Confidence, fc.Notes)
		}
	}
	return comparison.WithHooks(ctx, hooks)
}

func (s *comparisonService) Compare(ctx context.Context, input CompareInput) (*CompareResult, error) {
	started := s.now()
	if err := input.Invoice.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", domain.DocumentTypeInvoice.Label(), err)
	}
	if err := input.BillOfLading.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", domain.DocumentTypeBillOfLading.Label(), err)
	}

	id := uuid.New()
	if input.SessionID != nil {
		id = *input.SessionID
	}

	result, err := s.engine.Compare(s.withHooks(ctx, id), input.Invoice, input.BillOfLading)
	if err != nil {
		return nil, err
	}

	session, exists, err := s.sessionForCompare(ctx, input.SessionID, id)
	if err != nil {
		return nil, err
	}
	invoice, bol := input.Invoice, input.BillOfLading
	if invoice.DocumentType != domain.DocumentTypeInvoice {
		invoice, bol = bol, invoice
	}
	if err := storeResult(session, &invoice, &bol, result); err != nil {
		return nil, err
	}
	session.ProcessingMS = s.now().Sub(started).Milliseconds()

	if exists {
		err = s.repo.Update(ctx, session)
	} else {
		err = s.repo.Create(ctx, session)
	}
	if err != nil {
		return nil, fmt.Errorf("saving session: %w", err)
	}

	log.Printf("comparisonService.Compare: session %s overall risk %s", session.ID, result.Summary.OverallRisk)
	return &CompareResult{SessionID: session.ID, Result: result}, nil
}

// sessionForCompare loads the named session when it exists, otherwise returns
// a fresh one carrying id.
func (s *comparisonService) sessionForCompare(ctx context.Context, requested *uuid.UUID, id uuid.UUID) (*domain.ComparisonSession, bool, error) {
	if requested != nil {
		existing, err := s.repo.GetByID(ctx, id)
		switch {
		case err == nil:
			return existing, true, nil
		case !errors.Is(err, domain.ErrSessionNotFound):
			return nil, false, fmt.Errorf("loading session: %w", err)
		}
	}
	return &domain.ComparisonSession{ID: id, Status: domain.SessionStatusProcessing}, false, nil
}

func (s *comparisonService) GetSession(ctx context.Context, id uuid.UUID) (*domain.ComparisonSession, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *comparisonService) DeleteSession(ctx context.Context, id uuid.UUID) error {
	log.Printf("comparisonService.DeleteSession: deleting session %s", id)

	session, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := deleteSessionObjects(ctx, s.storage, s.cfg.Bucket, session); err != nil {
		log.Printf("comparisonService.DeleteSession: failed to delete stored files: %v", err)
		return fmt.Errorf("deleting from storage: %w", err)
	}
	return s.repo.Delete(ctx, id)
}

func (s *comparisonService) Status(ctx context.Context, id uuid.UUID) (*StatusReport, error) {
	session, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	r := &StatusReport{JobID: session.ID, Status: session.Status}
	switch session.Status {
	case domain.SessionStatusCompleted:
		r.Stage, r.Progress, r.Message = "completed", 100, "Comparison completed"
	case domain.SessionStatusFailed:
		r.Stage, r.Progress, r.Message = "failed", 100, session.ErrorMessage
	default:
		r.Stage, r.Progress, r.Message = "processing", 0, "Documents are being processed"
	}
	return r, nil
}

func (s *comparisonService) Result(ctx context.Context, id uuid.UUID) (*comparison.Result, error) {
	session, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	payload, err := loadResult(session)
	if err != nil {
		return nil, err
	}
	return payload.Result, nil
}

func (s *comparisonService) Fields() comparison.FieldTable {
	return s.engine.Fields()
}
