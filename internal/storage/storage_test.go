package storage

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/InQaaaaGit/smart_filter.git/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestNewStorage(t *testing.T) {
	logger := zap.NewNop()

	t.Run("memory by default", func(t *testing.T) {
		s, err := NewStorage(&config.Config{}, logger)
		require.NoError(t, err)
		defer s.Close()
		assert.IsType(t, &MemoryStorage{}, s)
	})

	t.Run("file when path is set", func(t *testing.T) {
		cfg := &config.Config{FileStoragePath: filepath.Join(t.TempDir(), "decisions.json")}
		s, err := NewStorage(cfg, logger)
		require.NoError(t, err)
		defer s.Close()
		assert.IsType(t, &FileStorage{}, s)
	})
}

// TestPostgresStorage требует доступный PostgreSQL в TEST_DATABASE_DSN
func TestPostgresStorage(t *testing.T) {
	dsn := os.Getenv("TEST_DATABASE_DSN")
	if dsn == "" {
		t.Skip("TEST_DATABASE_DSN is not set")
	}

	ps, err := NewPostgresStorage(dsn, zap.NewNop())
	require.NoError(t, err)
	defer ps.Close()

	ctx := context.Background()
	require.NoError(t, ps.CheckConnection(ctx))

	d := newDecision(1)
	d.ID = "6f1c3c55-3b8e-4a63-a4f6-3d1f4b2f7a10"
	_, _ = ps.db.ExecContext(ctx, `DELETE FROM decisions WHERE id = $1`, d.ID)
	require.NoError(t, ps.Save(ctx, d))

	got, err := ps.Get(ctx, d.ID)
	require.NoError(t, err)
	assert.Equal(t, d.SourceURL, got.SourceURL)
	assert.Equal(t, d.Status, got.Status)

	_, err = ps.Get(ctx, "missing")
	assert.ErrorIs(t, err, ErrDecisionNotFound)

	recent, err := ps.Recent(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, recent, 1)

	long := newDecision(2)
	long.ID = "0b8f5d7e-1c1d-4a53-9a63-5b3f0f0e2b11"
	long.Category = strings.Repeat("c", 4096)
	long.ContentType = "image/png; " + strings.Repeat("p", 1024)
	_, _ = ps.db.ExecContext(ctx, `DELETE FROM decisions WHERE id = $1`, long.ID)
	require.NoError(t, ps.Save(ctx, long))

	got, err = ps.Get(ctx, long.ID)
	require.NoError(t, err)
	assert.Equal(t, long.Category, got.Category)
	assert.Equal(t, long.ContentType, got.ContentType)
}

func TestPostgresSchemaUnboundedText(t *testing.T) {
	for _, column := range []string{"category TEXT", "content_type TEXT"} {
		assert.Contains(t, createTableSQL, column)
		assert.Contains(t, widenColumnsSQL, strings.Split(column, " ")[0]+" TYPE TEXT")
	}
	assert.NotContains(t, createTableSQL, "VARCHAR(255)")
}
