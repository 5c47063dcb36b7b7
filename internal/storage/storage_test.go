package storage

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sazadakthar786/Software-failure-detection/internal/types"
)

func TestNewStorage(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "db", "sfd.db")

	store, err := NewStorage(ctx, &Config{Path: path})
	require.NoError(t, err)
	defer func() { _ = store.Close() }()

	sample := &types.MetricSample{CPU: 12, Memory: 34, Status: types.StatusHealthy}
	require.NoError(t, store.AppendMetric(ctx, sample))

	latest, err := store.LatestMetric(ctx)
	require.NoError(t, err)
	require.NotNil(t, latest)
	assert.Equal(t, sample.ID, latest.ID)
}

func TestNewStorageBadPath(t *testing.T) {
	dir := t.TempDir()
	// A directory where the database file should be
	_, err := NewStorage(context.Background(), &Config{Path: dir})
	assert.Error(t, err)
}

func TestDefaultConfig(t *testing.T) {
	assert.Equal(t, ".sfd/sfd.db", DefaultConfig().Path)
}
