package sqlstore_test

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tradelens/internal/config"
	"tradelens/internal/domain"
	"tradelens/internal/port"
	"tradelens/internal/repository/sqlstore"
)

func newTestRepo(t *testing.T) (port.SessionRepository, *sqlx.DB) {
	t.Helper()
	db, err := sqlstore.NewDB(&config.DBConfig{
		Driver: "sqlite",
		Path:   filepath.Join(t.TempDir(), "sessions.db"),
	})
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	ddl, err := os.ReadFile("../../../db/migrations/sqlite/000001_create_comparison_sessions.up.sql")
	require.NoError(t, err)
	_, err = db.Exec(string(ddl))
	require.NoError(t, err)

	return sqlstore.NewSessionRepo(db), db
}

func TestNewDB_UnsupportedDriver(t *testing.T) {
	_, err := sqlstore.NewDB(&config.DBConfig{Driver: "oracle"})
	assert.Error(t, err)
}

func TestSessionRepo_CreateAndGet(t *testing.T) {
	repo, _ := newTestRepo(t)
	ctx := context.Background()

	s := &domain.ComparisonSession{
		ID:             uuid.New(),
		Status:         domain.SessionStatusProcessing,
		InvoiceFileKey: "sessions/x/invoice.pdf",
	}
	require.NoError(t, repo.Create(ctx, s))
	assert.False(t, s.CreatedAt.IsZero())
	assert.False(t, s.UpdatedAt.IsZero())

	got, err := repo.GetByID(ctx, s.ID)
	require.NoError(t, err)
	assert.Equal(t, s.ID, got.ID)
	assert.Equal(t, domain.SessionStatusProcessing, got.Status)
	assert.Equal(t, "sessions/x/invoice.pdf", got.InvoiceFileKey)
	assert.JSONEq(t, "null", string(got.Summary))
	assert.WithinDuration(t, s.CreatedAt, got.CreatedAt, time.Millisecond)
}

func TestSessionRepo_GetByID_NotFound(t *testing.T) {
	repo, _ := newTestRepo(t)
	_, err := repo.GetByID(context.Background(), uuid.New())
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)
}

func TestSessionRepo_Update(t *testing.T) {
	repo, _ := newTestRepo(t)
	ctx := context.Background()

	s := &domain.ComparisonSession{ID: uuid.New(), Status: domain.SessionStatusProcessing}
	require.NoError(t, repo.Create(ctx, s))

	s.Status = domain.SessionStatusCompleted
	s.Summary = json.RawMessage(`{"overallRisk":"LOW"}`)
	s.Comparisons = json.RawMessage(`[]`)
	s.OverallRisk = "LOW"
	s.ProcessingMS = 42
	s.ResultHash = "abc"
	require.NoError(t, repo.Update(ctx, s))

	got, err := repo.GetByID(ctx, s.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.SessionStatusCompleted, got.Status)
	assert.JSONEq(t, `{"overallRisk":"LOW"}`, string(got.Summary))
	assert.JSONEq(t, `[]`, string(got.Comparisons))
	assert.Equal(t, int64(42), got.ProcessingMS)
	assert.Equal(t, "abc", got.ResultHash)

	t.Run("missing_row", func(t *testing.T) {
		err := repo.Update(ctx, &domain.ComparisonSession{ID: uuid.New()})
		assert.ErrorIs(t, err, domain.ErrSessionNotFound)
	})
}

func TestSessionRepo_Delete(t *testing.T) {
	repo, _ := newTestRepo(t)
	ctx := context.Background()

	s := &domain.ComparisonSession{ID: uuid.New(), Status: domain.SessionStatusFailed}
	require.NoError(t, repo.Create(ctx, s))
	require.NoError(t, repo.Delete(ctx, s.ID))

	_, err := repo.GetByID(ctx, s.ID)
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)
	assert.ErrorIs(t, repo.Delete(ctx, s.ID), domain.ErrSessionNotFound)
}

func TestSessionRepo_ListCreatedBefore(t *testing.T) {
	repo, _ := newTestRepo(t)
	ctx := context.Background()
	base := time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC)

	var ids []uuid.UUID
	for i := 0; i < 4; i++ {
		s := &domain.ComparisonSession{
			ID:        uuid.New(),
			Status:    domain.SessionStatusCompleted,
			CreatedAt: base.Add(time.Duration(i) * time.Hour),
		}
		require.NoError(t, repo.Create(ctx, s))
		ids = append(ids, s.ID)
	}

	old, err := repo.ListCreatedBefore(ctx, base.Add(150*time.Minute), 10)
	require.NoError(t, err)
	require.Len(t, old, 3)
	assert.Equal(t, ids[0], old[0].ID)
	assert.Equal(t, ids[2], old[2].ID)

	limited, err := repo.ListCreatedBefore(ctx, base.Add(150*time.Minute), 2)
	require.NoError(t, err)
	require.Len(t, limited, 2)
	assert.Equal(t, ids[0], limited[0].ID)

	none, err := repo.ListCreatedBefore(ctx, base, 10)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestSessionRepo_Ping(t *testing.T) {
	repo, _ := newTestRepo(t)
	assert.NoError(t, repo.Ping(context.Background()))
}
