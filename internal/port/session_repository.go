package port

import (
	"context"
	"time"

	"github.com/google/uuid"

	"tradelens/internal/domain"
)

// SessionRepository defines the contract for comparison session persistence.
type SessionRepository interface {
	Create(ctx context.Context, session *domain.ComparisonSession) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.ComparisonSession, error)
	Update(ctx context.Context, session *domain.ComparisonSession) error
	Delete(ctx context.Context, id uuid.UUID) error
	// ListCreatedBefore returns up to limit sessions created before cutoff, oldest first.
	ListCreatedBefore(ctx context.Context, cutoff time.Time, limit int) ([]domain.ComparisonSession, error)
	Ping(ctx context.Context) error
}
