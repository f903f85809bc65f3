package sqlstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"tradelens/internal/domain"
	"tradelens/internal/port"
)

const sessionColumns = `id, status, invoice_file_key, bol_file_key, invoice_data, bol_data,
	comparisons, summary, overall_risk, error_message, processing_ms, result_hash,
	created_at, updated_at`

type sessionRepo struct {
	db *sqlx.DB

	insertQuery  string
	getQuery     string
	updateQuery  string
	deleteQuery  string
	listOldQuery string
}

// NewSessionRepo creates a SQL-backed SessionRepository.
func NewSessionRepo(db *sqlx.DB) port.SessionRepository {
	return &sessionRepo{
		db: db,
		insertQuery: db.Rebind(`INSERT INTO comparison_sessions (` + sessionColumns + `)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`),
		getQuery: db.Rebind(`SELECT ` + sessionColumns + ` FROM comparison_sessions WHERE id = ?`),
		updateQuery: db.Rebind(`UPDATE comparison_sessions SET
			status = ?, invoice_file_key = ?, bol_file_key = ?, invoice_data = ?, bol_data = ?,
			comparisons = ?, summary = ?, overall_risk = ?, error_message = ?, processing_ms = ?,
			result_hash = ?, updated_at = ?
			WHERE id = ?`),
		deleteQuery: db.Rebind(`DELETE FROM comparison_sessions WHERE id = ?`),
		listOldQuery: db.Rebind(`SELECT ` + sessionColumns + ` FROM comparison_sessions
			WHERE created_at < ? ORDER BY created_at ASC LIMIT ?`),
	}
}

// jsonOrNull stores absent JSON payloads as a JSON null so the columns never hold SQL NULL.
func jsonOrNull(raw json.RawMessage) []byte {
	if len(raw) == 0 {
		return []byte("null")
	}
	return raw
}

func (r *sessionRepo) Create(ctx context.Context, s *domain.ComparisonSession) error {
	now := time.Now().UTC()
	if s.CreatedAt.IsZero() {
		s.CreatedAt = now
	}
	s.UpdatedAt = now

	_, err := r.db.ExecContext(ctx, r.insertQuery,
		s.ID, s.Status, s.InvoiceFileKey, s.BOLFileKey,
		jsonOrNull(s.InvoiceData), jsonOrNull(s.BOLData), jsonOrNull(s.Comparisons), jsonOrNull(s.Summary),
		s.OverallRisk, s.ErrorMessage, s.ProcessingMS, s.ResultHash, s.CreatedAt, s.UpdatedAt)
	if err != nil {
		return fmt.Errorf("sessionRepo.Create: %w", err)
	}
	return nil
}

func (r *sessionRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.ComparisonSession, error) {
	var s domain.ComparisonSession
	if err := r.db.GetContext(ctx, &s, r.getQuery, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrSessionNotFound
		}
		return nil, fmt.Errorf("sessionRepo.GetByID: %w", err)
	}
	return &s, nil
}

func (r *sessionRepo) Update(ctx context.Context, s *domain.ComparisonSession) error {
	s.UpdatedAt = time.Now().UTC()
	res, err := r.db.ExecContext(ctx, r.updateQuery,
		s.Status, s.InvoiceFileKey, s.BOLFileKey,
		jsonOrNull(s.InvoiceData), jsonOrNull(s.BOLData), jsonOrNull(s.Comparisons), jsonOrNull(s.Summary),
		s.OverallRisk, s.ErrorMessage, s.ProcessingMS, s.ResultHash, s.UpdatedAt, s.ID)
	if err != nil {
		return fmt.Errorf("sessionRepo.Update: %w", err)
	}
	return expectOneRow(res, "sessionRepo.Update")
}

func (r *sessionRepo) Delete(ctx context.Context, id uuid.UUID) error {
	res, err := r.db.ExecContext(ctx, r.deleteQuery, id)
	if err != nil {
		return fmt.Errorf("sessionRepo.Delete: %w", err)
	}
	return expectOneRow(res, "sessionRepo.Delete")
}

func (r *sessionRepo) ListCreatedBefore(ctx context.Context, cutoff time.Time, limit int) ([]domain.ComparisonSession, error) {
	var sessions []domain.ComparisonSession
	if err := r.db.SelectContext(ctx, &sessions, r.listOldQuery, cutoff.UTC(), limit); err != nil {
		return nil, fmt.Errorf("sessionRepo.ListCreatedBefore: %w", err)
	}
	return sessions, nil
}

func (r *sessionRepo) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

func expectOneRow(res sql.Result, op string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s rows affected: %w", op, err)
	}
	if n == 0 {
		return domain.ErrSessionNotFound
	}
	return nil
}
